package dto

import "github.com/spec-kit/issuetrack/internal/domain"

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest payload.
type RegisterRequest struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	PhoneNumber string      `json:"phone_number"`
	Role        domain.Role `json:"role"`
}

// UserResponse mirrors the backend's user representation.
type UserResponse struct {
	ID          WireID      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phone_number"`
	Role        domain.Role `json:"role"`
}

// LoginResponse carries the issued token and the authenticated user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MessageResponse is the backend's error/confirmation envelope.
type MessageResponse struct {
	Message string `json:"message"`
}
