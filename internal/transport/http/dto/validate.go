package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/baechuer/account-service/internal/domain"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report json field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("role", validateRole)

	english := en.New()
	trans, _ = ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)
	_ = validate.RegisterTranslation("role", trans,
		func(t ut.Translator) error {
			return t.Add("role", "{0} must be either user or admin", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("role", fe.Field())
			return msg
		},
	)
}

func validateRole(fl validator.FieldLevel) bool {
	_, err := domain.ParseRole(fl.Field().String())
	return err == nil
}

// validateStruct runs the struct tags and returns the first failure as a
// domain validation error.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return domain.ErrInvalidJSON(err)
	}
	fe := ves[0]
	de := fieldError(fe)
	if de.Meta == nil {
		de.Meta = map[string]string{}
	}
	// human readable, e.g. "password must be at least 5 characters in length"
	de.Meta["detail"] = fe.Translate(trans)
	return de
}

func fieldError(fe validator.FieldError) *domain.Error {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(field)
	case "email":
		return domain.ErrInvalidField(field, "invalid_format")
	case "min":
		return domain.ErrInvalidField(field, "min_length_"+fe.Param())
	case "max":
		return domain.ErrInvalidField(field, "max_length_"+fe.Param())
	case "role":
		return domain.ErrInvalidRole(fe.Value().(string))
	default:
		return domain.ErrInvalidField(field, fe.Tag())
	}
}
