package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bijaykarki4742/summer-class-web/config"
	"github.com/bijaykarki4742/summer-class-web/identity"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthModule fronts the hosted identity provider for the rest of the
// application.
type AuthModule struct {
	cfg      *config.Config
	client   *identity.Client
	verifier identity.TokenVerifier
	mode     string
	now      func() time.Time
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(cfg *config.Config) *AuthModule {
	return &AuthModule{cfg: cfg, now: time.Now}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start builds the provider client and picks a token verifier: local HS256
// verification when a JWT secret is configured, a provider round trip
// otherwise.
func (m *AuthModule) Start(_ context.Context) error {
	m.client = identity.NewClientFromConfig(m.cfg)
	if !m.client.Configured() {
		log.Println("[auth] Warning: identity provider is not configured, auth endpoints will report it")
	}

	if m.cfg.Identity.JWTSecret != "" {
		m.verifier = identity.NewJWTVerifier(m.cfg.Identity.JWTSecret)
		m.mode = "jwt"
	} else {
		m.verifier = identity.NewProviderVerifier(m.client)
		m.mode = "provider"
	}

	log.Printf("[auth] Module started (token verification: %s)", m.mode)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "not started",
		}
	}
	if !m.client.Configured() {
		// Degraded, not down: tasks keep working without auth.
		return mono.HealthStatus{
			Healthy: true,
			Message: identity.ErrNotConfigured.Error(),
			Details: map[string]any{"configured": false},
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"configured":   true,
			"verification": m.mode,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"validate-token",
		json.Unmarshal,
		json.Marshal,
		m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"sign-in",
		json.Unmarshal,
		json.Marshal,
		m.handleSignIn,
	); err != nil {
		return fmt.Errorf("failed to register sign-in service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"get-profile",
		json.Unmarshal,
		json.Marshal,
		m.handleGetProfile,
	); err != nil {
		return fmt.Errorf("failed to register get-profile service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"update-profile",
		json.Unmarshal,
		json.Marshal,
		m.handleUpdateProfile,
	); err != nil {
		return fmt.Errorf("failed to register update-profile service: %w", err)
	}

	log.Printf("[auth] Registered services: validate-token, sign-in, get-profile, update-profile")
	return nil
}

// handleValidateToken handles token validation.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	if m.mode == "provider" && !m.client.Configured() {
		return ValidateTokenResponse{Valid: false, Error: identity.ErrNotConfigured.Error()}, nil
	}

	claims, err := m.verifier.Verify(ctx, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrExpiredToken):
			return ValidateTokenResponse{Valid: false, Error: identity.ErrExpiredToken.Error()}, nil
		case errors.Is(err, identity.ErrInvalidToken):
			return ValidateTokenResponse{Valid: false, Error: identity.ErrInvalidToken.Error()}, nil
		default:
			// Provider unreachable: a failure, not a verdict on the token.
			return ValidateTokenResponse{}, err
		}
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// handleSignIn relays a password sign-in. Refusals travel in the response
// so the provider's message reaches the caller intact.
func (m *AuthModule) handleSignIn(ctx context.Context, req SignInRequest, _ *mono.Msg) (SignInResponse, error) {
	session, err := m.client.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrNotConfigured) {
			return SignInResponse{NotConfigured: true, Error: err.Error()}, nil
		}
		var apiErr *identity.APIError
		if errors.As(err, &apiErr) {
			return SignInResponse{Error: apiErr.Message, Status: apiErr.Status}, nil
		}
		return SignInResponse{}, err
	}
	return SignInResponse{Session: session}, nil
}

func (m *AuthModule) handleGetProfile(ctx context.Context, req GetProfileRequest, _ *mono.Msg) (ProfileResponse, error) {
	profile, err := m.client.GetProfile(ctx, req.Token, req.UserID)
	if err != nil {
		return ProfileResponse{}, err
	}
	return ProfileResponse{Profile: *profile}, nil
}

func (m *AuthModule) handleUpdateProfile(ctx context.Context, req UpdateProfileRequest, _ *mono.Msg) (ProfileResponse, error) {
	profile, err := m.client.UpdateProfile(ctx, req.Token, req.UserID, identity.ProfileUpdate{
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		UpdatedAt: m.now().UTC(),
	})
	if err != nil {
		return ProfileResponse{}, err
	}
	return ProfileResponse{Profile: *profile}, nil
}
