package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bijaykarki4742/summer-class-web/config"
	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 10 * time.Second

// Client is a stateless REST client for the provider. Every method takes the
// credentials it needs; nothing is cached.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a client for the provider at baseURL using the public
// (anon) API key. An empty baseURL or key yields an unconfigured client.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig returns a configured client, or an unconfigured one
// when cfg does not describe a usable provider.
func NewClientFromConfig(cfg *config.Config, opts ...Option) *Client {
	if !cfg.IdentityConfigured() {
		return NewClient("", "", opts...)
	}
	return NewClient(cfg.Identity.URL, cfg.Identity.AnonKey, opts...)
}

// Configured reports whether the client can reach a provider.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// SignInWithPassword exchanges an email and password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session Session
	if err := c.do(ctx, request{
		method: fiber.MethodPost,
		path:   "/auth/v1/token?grant_type=password",
		body:   body,
	}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RefreshSession trades a refresh token for a new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var session Session
	if err := c.do(ctx, request{
		method: fiber.MethodPost,
		path:   "/auth/v1/token?grant_type=refresh_token",
		body:   body,
	}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignUp registers a new account. data is stored as user metadata.
func (c *Client) SignUp(ctx context.Context, email, password string, data map[string]any) (*SignUpResult, error) {
	body := map[string]any{"email": email, "password": password}
	if len(data) > 0 {
		body["data"] = data
	}

	// The provider answers with a session when no confirmation is needed,
	// and with the bare user otherwise.
	var raw json.RawMessage
	if err := c.do(ctx, request{
		method: fiber.MethodPost,
		path:   "/auth/v1/signup",
		body:   body,
	}, &raw); err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err == nil && session.AccessToken != "" {
		return &SignUpResult{User: &session.User, Session: &session}, nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode sign-up response: %w", err)
	}
	return &SignUpResult{User: &user}, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, request{
		method: fiber.MethodPost,
		path:   "/auth/v1/logout",
		token:  accessToken,
	}, nil)
}

// ResetPasswordForEmail asks the provider to mail a recovery link that lands
// on redirectTo.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	path := "/auth/v1/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return c.do(ctx, request{
		method: fiber.MethodPost,
		path:   path,
		body:   map[string]string{"email": email},
	}, nil)
}

// GetUser returns the user that owns accessToken. The provider rejects
// expired or forged tokens.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.do(ctx, request{
		method: fiber.MethodGet,
		path:   "/auth/v1/user",
		token:  accessToken,
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser changes attributes of the user that owns accessToken.
func (c *Client) UpdateUser(ctx context.Context, accessToken string, attrs UserAttributes) (*User, error) {
	var user User
	if err := c.do(ctx, request{
		method: fiber.MethodPut,
		path:   "/auth/v1/user",
		token:  accessToken,
		body:   attrs,
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetProfile reads the profiles row of userID as the owner of accessToken.
func (c *Client) GetProfile(ctx context.Context, accessToken, userID string) (*Profile, error) {
	var profiles []Profile
	if err := c.do(ctx, request{
		method: fiber.MethodGet,
		path:   "/rest/v1/profiles?select=*&id=eq." + url.QueryEscape(userID),
		token:  accessToken,
	}, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrProfileNotFound
	}
	return &profiles[0], nil
}

// UpdateProfile writes the profiles row of userID and returns the result.
func (c *Client) UpdateProfile(ctx context.Context, accessToken, userID string, update ProfileUpdate) (*Profile, error) {
	var profiles []Profile
	if err := c.do(ctx, request{
		method:  fiber.MethodPatch,
		path:    "/rest/v1/profiles?id=eq." + url.QueryEscape(userID),
		token:   accessToken,
		body:    update,
		headers: map[string]string{"Prefer": "return=representation"},
	}, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrProfileNotFound
	}
	return &profiles[0], nil
}

type request struct {
	method  string
	path    string
	token   string
	body    any
	headers map[string]string
}

// do sends req and decodes a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return context.DeadlineExceeded
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.AcquireAgent()
	httpReq := agent.Request()
	httpReq.Header.SetMethod(req.method)
	httpReq.SetRequestURI(c.baseURL + req.path)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("invalid provider url: %w", err)
	}

	token := req.token
	if token == "" {
		token = c.apiKey
	}
	agent.Set("apikey", c.apiKey)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	for k, v := range req.headers {
		agent.Set(k, v)
	}
	if req.body != nil {
		agent.JSON(req.body)
	}
	agent.Timeout(timeout)

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("identity provider request failed: %w", errors.Join(errs...))
	}
	if status < 200 || status > 299 {
		return parseAPIError(status, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}
