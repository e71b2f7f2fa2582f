package http_handlers

import (
	"net/http"

	"github.com/baechuer/account-service/internal/application/auth"
	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/metrics"
	"github.com/baechuer/account-service/internal/transport/http/dto"
	"github.com/baechuer/account-service/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginStatus(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	response.OK(w, dto.LoginResponse{
		Message:     "login successful",
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
	})
}

// loginStatus keeps the status label set small.
func loginStatus(err error) string {
	switch code := domain.Code(err); code {
	case "invalid_credentials", "account_inactive", "email_not_verified":
		return code
	default:
		return "error"
	}
}
