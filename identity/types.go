// Package identity talks to a hosted GoTrue-compatible identity provider
// (Supabase Auth) and its PostgREST profiles table.
package identity

import "time"

// User is the provider's view of an account.
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Role             string         `json:"role,omitempty"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// FullName returns the full_name stored in the user metadata, if any.
func (u User) FullName() string {
	if name, ok := u.UserMetadata["full_name"].(string); ok {
		return name
	}
	return ""
}

// Session is the token material issued on sign-in.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// expiryMargin refreshes sessions slightly before the provider rejects them.
const expiryMargin = 10 * time.Second

// Expired reports whether the access token is (nearly) past its expiry.
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return !now.Add(expiryMargin).Before(time.Unix(s.ExpiresAt, 0))
}

// SignUpResult holds the outcome of SignUp. Session is nil when the provider
// requires the email address to be confirmed first.
type SignUpResult struct {
	User    *User
	Session *Session
}

// UserAttributes are the fields UpdateUser may change.
type UserAttributes struct {
	Email    string         `json:"email,omitempty"`
	Password string         `json:"password,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Profile is a row of the provider-hosted profiles table.
type Profile struct {
	ID        string     `json:"id"`
	FullName  *string    `json:"full_name"`
	AvatarURL *string    `json:"avatar_url"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ProfileUpdate is the body written to a profile row.
type ProfileUpdate struct {
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthEvent names a session change.
type AuthEvent string

// Session change events, named as the provider's SDKs name them.
const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEvent = "USER_UPDATED"
)

// Listener receives session changes. session is nil after sign-out.
type Listener func(event AuthEvent, session *Session)
