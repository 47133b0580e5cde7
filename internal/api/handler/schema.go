package handler

import "github.com/launchkit/boilerplate/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Role / promotion ---

type adminCountResponse struct {
	Count int `json:"count"`
}

type promoteRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type promoteResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// --- Auth ---

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signUpRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type signInResponse struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

type signUpResponse struct {
	User *domain.User `json:"user"`
}
