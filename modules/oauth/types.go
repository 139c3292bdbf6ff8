package oauth

// AuthURLRequest starts a Google sign-in.
type AuthURLRequest struct{}

// AuthURLResponse carries the consent page URL.
type AuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// ExchangeRequest carries the callback parameters.
type ExchangeRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// ExchangeResponse carries the signed-in Google user.
type ExchangeResponse struct {
	User UserInfo `json:"user"`
}
