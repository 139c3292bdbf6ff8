package identity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/utils"
)

var (
	// ErrNotConfigured is returned by every call when no provider is configured.
	ErrNotConfigured = errors.New("identity provider is not properly configured")
	// ErrNoSession is returned when an operation needs a signed-in user.
	ErrNoSession = errors.New("no active session")
	// ErrProfileNotFound is returned when the profiles table has no row for a user.
	ErrProfileNotFound = errors.New("profile not found")
)

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity provider error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("identity provider error %d: %s", e.Status, e.Message)
}

// ProviderMessage returns the human-readable message the provider sent, or
// the error text for anything else.
func ProviderMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// parseAPIError reads the several error shapes GoTrue and PostgREST use.
func parseAPIError(status int, body []byte) *APIError {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
		ErrorCode        string `json:"error_code"`
		Code             any    `json:"code"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = utils.StatusMessage(status)
		return apiErr
	}

	apiErr.Code = payload.ErrorCode
	if apiErr.Code == "" {
		if code, ok := payload.Code.(string); ok {
			apiErr.Code = code
		}
	}
	for _, msg := range []string{payload.Msg, payload.ErrorDescription, payload.Message, payload.Error} {
		if msg != "" {
			apiErr.Message = msg
			break
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = utils.StatusMessage(status)
	}
	return apiErr
}
