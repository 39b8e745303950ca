package auth

import (
	"github.com/mehtakaran9/librarium-backend/internal/members"
)

// LoginRequest contains the credentials submitted to /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest contains the payload for onboarding a new member.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty"`
	Password string  `json:"password" validate:"required,min=8"`
}

// LoginResponse carries the minted token plus the member profile.
type LoginResponse struct {
	AccessToken string            `json:"access_token"`
	Member      members.MemberDTO `json:"member"`
}
