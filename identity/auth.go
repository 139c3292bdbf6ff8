package identity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Auth is the explicitly constructed session holder used by clients. It
// combines a stateless Client with a SessionStore and notifies listeners of
// every session change.
type Auth struct {
	client *Client
	store  SessionStore
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// AuthOption configures Auth.
type AuthOption func(*Auth)

// WithLogger sets the logger used for background failures.
func WithLogger(logger *slog.Logger) AuthOption {
	return func(a *Auth) {
		a.logger = logger
	}
}

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) AuthOption {
	return func(a *Auth) {
		a.now = now
	}
}

// NewAuth creates a session holder. A nil store keeps the session in memory.
func NewAuth(client *Client, store SessionStore, opts ...AuthOption) *Auth {
	if store == nil {
		store = NewMemoryStore()
	}
	a := &Auth{
		client:    client,
		store:     store,
		logger:    slog.Default(),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Client returns the underlying stateless client.
func (a *Auth) Client() *Client {
	return a.client
}

// Configured reports whether a provider is available.
func (a *Auth) Configured() bool {
	return a.client.Configured()
}

// OnAuthStateChange registers fn and returns a function that removes it.
func (a *Auth) OnAuthStateChange(fn Listener) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, id)
			a.mu.Unlock()
		})
	}
}

func (a *Auth) notify(event AuthEvent, session *Session) {
	a.mu.Lock()
	listeners := make([]Listener, 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(event, session)
	}
}

// GetSession returns the stored session, refreshing it when the access token
// has expired. It returns nil, nil when no one is signed in.
func (a *Auth) GetSession(ctx context.Context) (*Session, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}
	session, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	if session == nil || !session.Expired(a.now()) {
		return session, nil
	}

	refreshed, err := a.client.RefreshSession(ctx, session.RefreshToken)
	if err != nil {
		a.logger.Warn("session refresh failed, signing out", "error", err)
		if clearErr := a.store.Clear(); clearErr != nil {
			return nil, clearErr
		}
		a.notify(EventSignedOut, nil)
		return nil, nil
	}
	if err := a.store.Save(refreshed); err != nil {
		return nil, err
	}
	a.notify(EventTokenRefreshed, refreshed)
	return refreshed, nil
}

// AccessToken returns the current access token, or ErrNoSession.
func (a *Auth) AccessToken(ctx context.Context) (string, error) {
	session, err := a.GetSession(ctx)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrNoSession
	}
	return session.AccessToken, nil
}

// SignInWithPassword signs in and stores the new session.
func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	session, err := a.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := a.store.Save(session); err != nil {
		return nil, err
	}
	a.notify(EventSignedIn, session)
	return session, nil
}

// SignUp registers an account with the given full name. When the provider
// issues a session right away it is stored and listeners are told.
func (a *Auth) SignUp(ctx context.Context, email, password, fullName string) (*SignUpResult, error) {
	var data map[string]any
	if fullName != "" {
		data = map[string]any{"full_name": fullName}
	}
	result, err := a.client.SignUp(ctx, email, password, data)
	if err != nil {
		return nil, err
	}
	if result.Session != nil {
		if err := a.store.Save(result.Session); err != nil {
			return nil, err
		}
		a.notify(EventSignedIn, result.Session)
	}
	return result, nil
}

// SignOut revokes the session at the provider and always clears it locally.
// The revocation error, if any, is returned after the local state is gone.
func (a *Auth) SignOut(ctx context.Context) error {
	session, err := a.store.Load()
	if err != nil {
		a.logger.Warn("failed to load session during sign-out", "error", err)
	}

	var revokeErr error
	if session != nil && a.Configured() {
		revokeErr = a.client.SignOut(ctx, session.AccessToken)
	}
	if err := a.store.Clear(); err != nil {
		return err
	}
	a.notify(EventSignedOut, nil)
	return revokeErr
}

// ResetPasswordForEmail sends a recovery link that lands on redirectTo.
func (a *Auth) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	return a.client.ResetPasswordForEmail(ctx, email, redirectTo)
}

// UpdatePassword sets a new password for the signed-in user.
func (a *Auth) UpdatePassword(ctx context.Context, password string) (*User, error) {
	token, err := a.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	user, err := a.client.UpdateUser(ctx, token, UserAttributes{Password: password})
	if err != nil {
		return nil, err
	}

	session, err := a.store.Load()
	if err == nil && session != nil {
		session.User = *user
		if err := a.store.Save(session); err != nil {
			return nil, err
		}
	}
	a.notify(EventUserUpdated, session)
	return user, nil
}
