package http_handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/logger"
	"github.com/baechuer/account-service/internal/metrics"
	"github.com/baechuer/account-service/internal/transport/http/dto"
	"github.com/baechuer/account-service/internal/transport/http/middleware"
	"github.com/baechuer/account-service/internal/transport/http/response"
)

type AccountHandler struct {
	svc *account.Service
}

func NewAccountHandler(svc *account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// Register handles POST /user/register. Self-registered accounts are
// always plain users.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Register(r.Context(), req.Email, req.Password, domain.RoleUser)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	metrics.RegistrationsTotal.Inc()

	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("user_registered")

	response.Created(w, dto.MessageResponse{Message: "registration successful, check your mail to verify your account"})
}

// Verify handles GET /auth/verify/{token}.
func (h *AccountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.VerifyAccount(r.Context(), chi.URLParam(r, "token")); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.MessageResponse{Message: "account verified"})
}

func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.MessageResponse{Message: "check your mail"})
}

func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.NewPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.MessageResponse{Message: "password reset successful"})
}

// ---- admin ----

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListAll(r.Context())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, users)
}

func (h *AccountHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateRoleRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	msg := "role unchanged"
	if res.Changed {
		msg = "role updated to " + string(res.User.Role)
	}
	response.OK(w, dto.RoleUpdateResponse{Message: msg, Changed: res.Changed})
}

func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.MessageResponse{Message: "account deactivated"})
}

func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Activate(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.MessageResponse{Message: "account activated"})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.MessageResponse{Message: "account deleted"})
}

// Details handles GET /user/details?email=.
func (h *AccountHandler) Details(w http.ResponseWriter, r *http.Request) {
	q := dto.DetailsQuery{Email: r.URL.Query().Get("email")}
	if err := q.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	view, err := h.svc.GetDetailsByEmail(r.Context(), q.Email)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, view)
}

// Profile handles GET /user/profile for the token's own account.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	view, err := h.svc.GetProfile(r.Context(), uid)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, view)
}
