package oauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bijaykarki4742/summer-class-web/config"
	nanoid "github.com/jaevor/go-nanoid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	// ErrNotConfigured is returned when no Google OAuth client is set up.
	ErrNotConfigured = errors.New("google oauth is not configured")
	// ErrInvalidState is returned for an unknown, reused or expired state.
	ErrInvalidState = errors.New("invalid oauth state")
	// ErrMissingCode is returned when the callback carries no code.
	ErrMissingCode = errors.New("authorization code is required")
)

const (
	// DefaultStateTTL bounds how long a sign-in may sit on Google's consent page.
	DefaultStateTTL = 10 * time.Minute

	stateLength = 32
)

// Scopes requested from Google.
var Scopes = []string{"openid", "email", "profile"}

// UserInfo is the Google profile returned after a successful exchange.
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Locale        string `json:"locale,omitempty"`
}

type pendingAuth struct {
	verifier string
	expires  time.Time
}

// GoogleOAuth runs the authorization-code flow with PKCE. Each state is
// single use and remembers the verifier its challenge was derived from.
type GoogleOAuth struct {
	config           *oauth2.Config
	userinfoEndpoint string
	ttl              time.Duration
	newState         func() string
	now              func() time.Time

	mu      sync.Mutex
	pending map[string]pendingAuth
}

// GoogleOption configures GoogleOAuth.
type GoogleOption func(*GoogleOAuth)

// WithEndpoints points the flow at other authorization, token and userinfo
// endpoints.
func WithEndpoints(authURL, tokenURL, userinfoURL string) GoogleOption {
	return func(g *GoogleOAuth) {
		g.config.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
		g.userinfoEndpoint = userinfoURL
	}
}

// WithStateTTL overrides DefaultStateTTL.
func WithStateTTL(ttl time.Duration) GoogleOption {
	return func(g *GoogleOAuth) {
		g.ttl = ttl
	}
}

// NewGoogleOAuth creates the flow for the client in cfg.
func NewGoogleOAuth(cfg config.GoogleConfig, opts ...GoogleOption) (*GoogleOAuth, error) {
	gen, err := nanoid.Standard(stateLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create state generator: %w", err)
	}

	g := &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
		ttl:      DefaultStateTTL,
		newState: gen,
		now:      time.Now,
		pending:  make(map[string]pendingAuth),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// AuthURL starts a sign-in and returns the consent page URL with its state.
func (g *GoogleOAuth) AuthURL() (authURL, state string) {
	state = g.newState()
	verifier := oauth2.GenerateVerifier()

	g.mu.Lock()
	now := g.now()
	for s, p := range g.pending {
		if now.After(p.expires) {
			delete(g.pending, s)
		}
	}
	g.pending[state] = pendingAuth{verifier: verifier, expires: now.Add(g.ttl)}
	g.mu.Unlock()

	return g.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), state
}

// Exchange completes a sign-in: it consumes state, trades code for a token
// and fetches the user's profile.
func (g *GoogleOAuth) Exchange(ctx context.Context, code, state string) (*UserInfo, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	g.mu.Lock()
	p, ok := g.pending[state]
	delete(g.pending, state)
	g.mu.Unlock()
	if !ok || g.now().After(p.expires) {
		return nil, ErrInvalidState
	}

	token, err := g.config.Exchange(ctx, code, oauth2.VerifierOption(p.verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	opts := []option.ClientOption{
		option.WithHTTPClient(g.config.Client(ctx, token)),
	}
	if g.userinfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.userinfoEndpoint))
	}
	svc, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}

	user := &UserInfo{
		ID:         info.Id,
		Email:      info.Email,
		Name:       info.Name,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
		Locale:     info.Locale,
	}
	if info.VerifiedEmail != nil {
		user.VerifiedEmail = *info.VerifiedEmail
	}
	return user, nil
}

// Pending returns the number of sign-ins waiting for their callback.
func (g *GoogleOAuth) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
