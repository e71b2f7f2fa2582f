package dto

import "strings"

// Passwords are capped at 72 bytes, the most bcrypt will hash.

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=5,max=72"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

func (r *ResetPasswordRequest) Validate() error {
	return validateStruct(r)
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

func (r *UpdateRoleRequest) Validate() error {
	return validateStruct(r)
}

// DetailsQuery is read from the query string, not a body.
type DetailsQuery struct {
	Email string `json:"email" validate:"required"`
}

func (q *DetailsQuery) Validate() error {
	q.Email = strings.TrimSpace(q.Email)
	return validateStruct(q)
}
