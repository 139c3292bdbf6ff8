package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bijaykarki4742/summer-class-web/identity"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	ValidateToken(ctx context.Context, token string) (*identity.Claims, error)
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
	GetProfile(ctx context.Context, token, userID string) (*identity.Profile, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*identity.Profile, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*identity.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"validate-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, mapServiceError("validate-token", err)
	}

	if !resp.Valid {
		if resp.Error == identity.ErrExpiredToken.Error() {
			return nil, identity.ErrExpiredToken
		}
		if resp.Error == identity.ErrNotConfigured.Error() {
			return nil, identity.ErrNotConfigured
		}
		return nil, identity.ErrInvalidToken
	}

	return &identity.Claims{
		UserID: resp.UserID,
		Email:  resp.Email,
		Role:   resp.Role,
	}, nil
}

// SignIn exchanges credentials for a session. A refusal by the provider comes
// back as *identity.APIError carrying the provider's message.
func (a *AuthAdapter) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	req := SignInRequest{Email: email, Password: password}
	var resp SignInResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"sign-in",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, mapServiceError("sign-in", err)
	}

	if resp.NotConfigured {
		return nil, identity.ErrNotConfigured
	}
	if resp.Session == nil {
		return nil, &identity.APIError{Status: resp.Status, Message: resp.Error}
	}
	return resp.Session, nil
}

// GetProfile reads the profile of userID.
func (a *AuthAdapter) GetProfile(ctx context.Context, token, userID string) (*identity.Profile, error) {
	req := GetProfileRequest{Token: token, UserID: userID}
	var resp ProfileResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-profile",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, mapServiceError("get-profile", err)
	}
	return &resp.Profile, nil
}

// UpdateProfile writes the profile named in req.
func (a *AuthAdapter) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*identity.Profile, error) {
	var resp ProfileResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-profile",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, mapServiceError("update-profile", err)
	}
	return &resp.Profile, nil
}

// mapServiceError restores the identity sentinels that only survive the
// request-reply hop as text.
func mapServiceError(service string, err error) error {
	msg := err.Error()
	for _, sentinel := range []error{
		identity.ErrNotConfigured,
		identity.ErrProfileNotFound,
		identity.ErrExpiredToken,
		identity.ErrInvalidToken,
	} {
		if strings.Contains(msg, sentinel.Error()) {
			return sentinel
		}
	}
	return fmt.Errorf("%s request failed: %w", service, err)
}

