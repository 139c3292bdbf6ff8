package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// OAuthPort is what the HTTP layer uses to run the Google flow.
type OAuthPort interface {
	GoogleAuthURL(ctx context.Context) (string, error)
	GoogleExchange(ctx context.Context, code, state string) (*UserInfo, error)
}

type oauthAdapter struct {
	container mono.ServiceContainer
}

// NewOAuthAdapter creates an OAuthPort backed by container.
func NewOAuthAdapter(container mono.ServiceContainer) OAuthPort {
	if container == nil {
		panic("oauth adapter requires non-nil ServiceContainer")
	}
	return &oauthAdapter{container: container}
}

func (a *oauthAdapter) GoogleAuthURL(ctx context.Context) (string, error) {
	req := AuthURLRequest{}
	var resp AuthURLResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "google-auth-url", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return "", mapServiceError("google-auth-url", err)
	}
	return resp.URL, nil
}

func (a *oauthAdapter) GoogleExchange(ctx context.Context, code, state string) (*UserInfo, error) {
	req := ExchangeRequest{Code: code, State: state}
	var resp ExchangeResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "google-exchange", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, mapServiceError("google-exchange", err)
	}
	return &resp.User, nil
}

func mapServiceError(service string, err error) error {
	msg := err.Error()
	for _, sentinel := range []error{ErrNotConfigured, ErrInvalidState, ErrMissingCode} {
		if strings.Contains(msg, sentinel.Error()) {
			return sentinel
		}
	}
	return fmt.Errorf("%s service call failed: %w", service, err)
}
