// Package session tracks who is signed in on this client. A Controller is
// built once by the entry point and handed to every view that needs it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/bijaykarki4742/summer-class-web/identity"
)

// State is where the controller is in its lifecycle.
type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "uninitialized"
	}
}

var (
	// ErrSessionLoading is returned by Guard until the first session check settles.
	ErrSessionLoading = errors.New("session is still loading")
	// ErrNotAuthenticated is returned by Guard when nobody is signed in.
	ErrNotAuthenticated = errors.New("sign in required")
)

// User-facing messages.
const (
	msgUnexpected          = "An unexpected error occurred"
	msgInvalidCredentials  = "Invalid email or password"
	msgEmailNotConfirmed   = "Email not confirmed. Please check your email and click the confirmation link before signing in."
	msgConfirmAccount      = "Please check your email and confirm your account."
	msgSignUpConfirm       = "Account created successfully! Please check your email to confirm your account before signing in."
	msgSignUpDone          = "Account created successfully!"
	msgResetSent           = "If an account exists, a reset email has been sent."
	msgPasswordUpdated     = "Password updated successfully"
	msgPasswordTooShort    = "Password must be at least 6 characters"
	msgPasswordMismatch    = "Passwords do not match"
	minPasswordLength      = 6
	resetPasswordRoutePath = "/reset-password"
)

// Result is the outcome of a user action, ready to show as-is.
type Result struct {
	Success bool
	Error   string
	Message string
}

// Provider is the identity surface the controller drives. *identity.Auth
// implements it.
type Provider interface {
	Configured() bool
	GetSession(ctx context.Context) (*identity.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error)
	SignUp(ctx context.Context, email, password, fullName string) (*identity.SignUpResult, error)
	SignOut(ctx context.Context) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, password string) (*identity.User, error)
	OnAuthStateChange(fn identity.Listener) (unsubscribe func())
}

var _ Provider = (*identity.Auth)(nil)

// Snapshot is a consistent view of the controller.
type Snapshot struct {
	State      State
	User       *identity.User
	Session    *identity.Session
	Configured bool
}

// Controller holds the current session and relays provider results.
type Controller struct {
	provider Provider
	siteURL  string
	logger   *slog.Logger

	mu          sync.Mutex
	state       State
	session     *identity.Session
	unsubscribe func()
	watchers    map[int]func(Snapshot)
	nextWatch   int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithSiteURL sets the base URL password-reset links return to.
func WithSiteURL(siteURL string) Option {
	return func(c *Controller) {
		c.siteURL = strings.TrimRight(siteURL, "/")
	}
}

// New creates a controller in the Uninitialized state.
func New(provider Provider, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		logger:   slog.Default(),
		watchers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start restores any existing session, settles the state and then follows
// provider session changes until Close.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.state != Uninitialized {
		c.mu.Unlock()
		return
	}
	c.state = Loading
	c.mu.Unlock()

	if !c.provider.Configured() {
		c.logger.Warn("identity provider is not configured, authentication will not work")
		c.settle(nil)
		return
	}

	session, err := c.provider.GetSession(ctx)
	if err != nil {
		c.logger.Error("failed to get session", "error", err)
	}
	c.settle(session)

	unsubscribe := c.provider.OnAuthStateChange(func(event identity.AuthEvent, s *identity.Session) {
		c.logger.Debug("auth state changed", "event", event)
		if s == nil && event != identity.EventSignedOut {
			return
		}
		c.settle(s)
	})
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
}

// Close stops following provider changes.
func (c *Controller) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// settle records s (nil means signed out) and tells watchers. Settling the
// session already held is a no-op.
func (c *Controller) settle(s *identity.Session) {
	state := Unauthenticated
	if s != nil {
		state = Authenticated
	}

	c.mu.Lock()
	if c.state == state && c.session == s {
		c.mu.Unlock()
		return
	}
	c.session = s
	c.state = state
	snap := c.snapshotLocked()
	watchers := make([]func(Snapshot), 0, len(c.watchers))
	for _, fn := range c.watchers {
		watchers = append(watchers, fn)
	}
	c.mu.Unlock()

	for _, fn := range watchers {
		fn(snap)
	}
}

// Subscribe calls fn after every state change until the returned func runs.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextWatch
	c.nextWatch++
	c.watchers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.watchers, id)
			c.mu.Unlock()
		})
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      c.state,
		Session:    c.session,
		Configured: c.provider.Configured(),
	}
	if c.session != nil {
		user := c.session.User
		snap.User = &user
	}
	return snap
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsAuthenticated reports whether someone is signed in.
func (c *Controller) IsAuthenticated() bool {
	return c.State() == Authenticated
}

// User returns the signed-in user, or nil.
func (c *Controller) User() *identity.User {
	return c.Snapshot().User
}

// Guard decides whether protected content may render: ErrSessionLoading
// while the first check runs, ErrNotAuthenticated once settled without a user.
func (c *Controller) Guard() error {
	switch c.State() {
	case Authenticated:
		return nil
	case Unauthenticated:
		return ErrNotAuthenticated
	default:
		return ErrSessionLoading
	}
}

// SignIn signs in with email and password.
func (c *Controller) SignIn(ctx context.Context, email, password string) Result {
	if !c.provider.Configured() {
		return Result{Error: identity.ErrNotConfigured.Error()}
	}

	session, err := c.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		c.logger.Error("sign in failed", "email", email, "error", err)
		var apiErr *identity.APIError
		if !errors.As(err, &apiErr) {
			return Result{Error: msgUnexpected}
		}
		switch {
		case strings.Contains(apiErr.Message, "Email not confirmed"):
			return Result{Error: msgEmailNotConfirmed, Message: msgConfirmAccount}
		case strings.Contains(apiErr.Message, "Invalid login credentials"):
			return Result{Error: msgInvalidCredentials}
		default:
			return Result{Error: apiErr.Message}
		}
	}

	c.settle(session)
	return Result{Success: true}
}

// SignUp registers an account. Without an immediate session the user is
// asked to confirm their address first.
func (c *Controller) SignUp(ctx context.Context, email, password, fullName string) Result {
	if !c.provider.Configured() {
		return Result{Error: identity.ErrNotConfigured.Error()}
	}

	result, err := c.provider.SignUp(ctx, email, password, fullName)
	if err != nil {
		c.logger.Error("sign up failed", "email", email, "error", err)
		return failure(err)
	}
	if result.Session == nil {
		return Result{Success: true, Message: msgSignUpConfirm}
	}
	c.settle(result.Session)
	return Result{Success: true, Message: msgSignUpDone}
}

// SignOut signs out at the provider and clears local state even when the
// provider call fails.
func (c *Controller) SignOut(ctx context.Context) {
	if err := c.provider.SignOut(ctx); err != nil {
		c.logger.Error("sign out failed", "error", err)
	}
	c.settle(nil)
}

// RequestPasswordReset mails a recovery link for email.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) Result {
	if !c.provider.Configured() {
		return Result{Error: identity.ErrNotConfigured.Error()}
	}

	var redirectTo string
	if c.siteURL != "" {
		redirectTo = c.siteURL + resetPasswordRoutePath
	}
	if err := c.provider.ResetPasswordForEmail(ctx, email, redirectTo); err != nil {
		c.logger.Error("password reset request failed", "email", email, "error", err)
		return failure(err)
	}
	return Result{Success: true, Message: msgResetSent}
}

// UpdatePassword sets a new password for the signed-in user.
func (c *Controller) UpdatePassword(ctx context.Context, password string) Result {
	if !c.provider.Configured() {
		return Result{Error: identity.ErrNotConfigured.Error()}
	}

	if _, err := c.provider.UpdatePassword(ctx, password); err != nil {
		c.logger.Error("update password failed", "error", err)
		if errors.Is(err, identity.ErrNoSession) {
			return Result{Error: ErrNotAuthenticated.Error()}
		}
		return failure(err)
	}
	return Result{Success: true, Message: msgPasswordUpdated}
}

// ValidateNewPassword checks a new password and its confirmation before it
// is sent.
func ValidateNewPassword(password, confirm string) error {
	if len(password) < minPasswordLength {
		return errors.New(msgPasswordTooShort)
	}
	if password != confirm {
		return errors.New(msgPasswordMismatch)
	}
	return nil
}

// failure relays a provider message, or a generic one for transport faults.
func failure(err error) Result {
	var apiErr *identity.APIError
	if errors.As(err, &apiErr) {
		return Result{Error: apiErr.Message}
	}
	return Result{Error: msgUnexpected}
}
