package auth

import (
	"github.com/bijaykarki4742/summer-class-web/identity"
)

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SignInRequest carries password credentials.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse carries either the new session or the provider's reason
// for refusing it.
type SignInResponse struct {
	Session       *identity.Session `json:"session,omitempty"`
	Error         string            `json:"error,omitempty"`
	Status        int               `json:"status,omitempty"`
	NotConfigured bool              `json:"not_configured,omitempty"`
}

// GetProfileRequest asks for the profile of the token's owner.
type GetProfileRequest struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// UpdateProfileRequest writes the profile of the token's owner.
type UpdateProfileRequest struct {
	Token     string  `json:"token"`
	UserID    string  `json:"user_id"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// ProfileResponse wraps a profile row.
type ProfileResponse struct {
	Profile identity.Profile `json:"profile"`
}
