package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/bijaykarki4742/summer-class-web/config"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// OAuthModule runs third-party sign-in flows.
type OAuthModule struct {
	cfg    *config.Config
	opts   []GoogleOption
	google *GoogleOAuth
}

var _ mono.Module = (*OAuthModule)(nil)
var _ mono.ServiceProviderModule = (*OAuthModule)(nil)
var _ mono.HealthCheckableModule = (*OAuthModule)(nil)

// NewModule creates an OAuthModule. opts are applied to the Google flow.
func NewModule(cfg *config.Config, opts ...GoogleOption) *OAuthModule {
	return &OAuthModule{cfg: cfg, opts: opts}
}

// Name returns the module name.
func (m *OAuthModule) Name() string {
	return "oauth"
}

// Start builds the Google flow when a client is configured.
func (m *OAuthModule) Start(_ context.Context) error {
	if !m.cfg.GoogleConfigured() {
		log.Println("[oauth] Warning: Google OAuth is not configured")
		return nil
	}
	g, err := NewGoogleOAuth(m.cfg.Google, m.opts...)
	if err != nil {
		return err
	}
	m.google = g
	log.Printf("[oauth] Module started (redirect: %s)", m.cfg.Google.RedirectURI)
	return nil
}

// Stop shuts down the module.
func (m *OAuthModule) Stop(_ context.Context) error {
	log.Println("[oauth] Module stopped")
	return nil
}

// Health reports whether Google sign-in is available.
func (m *OAuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.google == nil {
		return mono.HealthStatus{
			Healthy: true,
			Message: ErrNotConfigured.Error(),
			Details: map[string]any{"google": false},
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"google":  true,
			"pending": m.google.Pending(),
		},
	}
}

// RegisterServices registers the OAuth request-reply services.
func (m *OAuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "google-auth-url", json.Unmarshal, json.Marshal, m.googleAuthURL,
	); err != nil {
		return fmt.Errorf("failed to register google-auth-url service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "google-exchange", json.Unmarshal, json.Marshal, m.googleExchange,
	); err != nil {
		return fmt.Errorf("failed to register google-exchange service: %w", err)
	}

	log.Printf("[oauth] Registered services: google-auth-url, google-exchange")
	return nil
}

func (m *OAuthModule) googleAuthURL(_ context.Context, _ AuthURLRequest, _ *mono.Msg) (AuthURLResponse, error) {
	if m.google == nil {
		return AuthURLResponse{}, ErrNotConfigured
	}
	url, state := m.google.AuthURL()
	return AuthURLResponse{URL: url, State: state}, nil
}

func (m *OAuthModule) googleExchange(ctx context.Context, req ExchangeRequest, _ *mono.Msg) (ExchangeResponse, error) {
	if m.google == nil {
		return ExchangeResponse{}, ErrNotConfigured
	}
	user, err := m.google.Exchange(ctx, req.Code, req.State)
	if err != nil {
		log.Printf("[oauth] Google sign-in failed: %v", err)
		return ExchangeResponse{}, err
	}
	log.Printf("[oauth] Google sign-in for %s", user.Email)
	return ExchangeResponse{User: *user}, nil
}
