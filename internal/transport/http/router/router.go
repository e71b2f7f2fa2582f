package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/account-service/internal/domain"
	http_handlers "github.com/baechuer/account-service/internal/transport/http/handlers"
	"github.com/baechuer/account-service/internal/transport/http/middleware"
	"github.com/baechuer/account-service/internal/transport/http/response"
)

// RateLimits are per client IP. A zero Limit disables that route's limit.
type RateLimits struct {
	Register middleware.FixedWindowConfig
	Login    middleware.FixedWindowConfig
	Forgot   middleware.FixedWindowConfig
	Reset    middleware.FixedWindowConfig
}

func DefaultRateLimits() RateLimits {
	return RateLimits{
		Register: middleware.FixedWindowConfig{RouteKey: "register", Limit: 5, Window: time.Minute},
		Login:    middleware.FixedWindowConfig{RouteKey: "login", Limit: 10, Window: time.Minute},
		Forgot:   middleware.FixedWindowConfig{RouteKey: "forgot", Limit: 3, Window: 10 * time.Minute},
		Reset:    middleware.FixedWindowConfig{RouteKey: "reset", Limit: 5, Window: time.Minute},
	}
}

type Deps struct {
	Health  *http_handlers.HealthHandler
	Account *http_handlers.AccountHandler
	Auth    *http_handlers.AuthHandler

	Verifier middleware.TokenVerifier
	// Limiter may be nil; routes then use the in-process limiter.
	Limiter middleware.RateLimiter
	Limits  RateLimits
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Account == nil {
		return nil, fmt.Errorf("nil Account handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Verifier == nil {
		return nil, fmt.Errorf("nil token verifier")
	}

	writeErr := response.WriteError
	authn := middleware.Authenticate(deps.Verifier, writeErr)
	adminOnly := middleware.RequireRole(domain.AdminOnly, writeErr)
	anyRole := middleware.RequireRole(domain.AnyRole, writeErr)
	limit := func(cfg middleware.FixedWindowConfig) func(http.Handler) http.Handler {
		return middleware.RateLimitFixedWindow(deps.Limiter, cfg, writeErr)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics)
	r.Use(middleware.AccessLog)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, r, domain.New(domain.KindNotFound, "route_not_found", "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusMethodNotAllowed, response.ErrorBody{Error: response.ErrorPayload{
			Code:      "method_not_allowed",
			Message:   "method not allowed",
			RequestID: response.RequestIDFromContext(r),
		}})
	})

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.With(limit(deps.Limits.Login)).Post("/login", deps.Auth.Login)
		r.Get("/verify/{token}", deps.Account.Verify)
		r.With(limit(deps.Limits.Forgot)).Post("/forgot-password", deps.Account.ForgotPassword)
		r.With(limit(deps.Limits.Reset)).Post("/reset-password/{token}", deps.Account.ResetPassword)
	})

	r.Route("/user", func(r chi.Router) {
		r.With(limit(deps.Limits.Register)).Post("/register", deps.Account.Register)

		r.With(authn, anyRole).Get("/profile", deps.Account.Profile)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Use(adminOnly)

			r.Get("/", deps.Account.List)
			r.Get("/details", deps.Account.Details)
			r.Patch("/{id}/role", deps.Account.UpdateRole)
			r.Patch("/{id}/deactivate", deps.Account.Deactivate)
			r.Patch("/{id}/activate", deps.Account.Activate)
			r.Delete("/{id}", deps.Account.Delete)
		})
	})

	return r, nil
}
