package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

const defaultHTTPTimeout = 10 * time.Second

var (
	// ErrAuthorizationDenied is returned when the user refused consent or the
	// provider redirected back with an error.
	ErrAuthorizationDenied = errors.New("authorization denied by user or provider")

	// ErrMissingCallbackParams is returned when the callback lacks the code or
	// verifier needed to complete the exchange.
	ErrMissingCallbackParams = errors.New("missing callback parameters")
)

// Identity is the raw profile handed back by a provider after the
// authorization exchange, before any local normalization.
type Identity struct {
	ID          string
	DisplayName string
	Username    string
	Emails      []string
	Photos      []string
	Link        string

	// Token and TokenSecret are only set by OAuth 1.0a providers.
	Token       string
	TokenSecret string

	// Raw is the provider's JSON profile, kept verbatim.
	Raw map[string]any
}

// BeginResult describes where to send the user and what must be remembered
// until the provider calls back.
type BeginResult struct {
	URL string
	// Key identifies the pending authorization on callback: the OAuth 2.0
	// state, or the OAuth 1.0a request token.
	Key string
	// Secret is the OAuth 1.0a request token secret; empty for OAuth 2.0.
	Secret string
}

// CallbackParams carries the provider's redirect query and the secret stored
// by Begin.
type CallbackParams struct {
	Query  url.Values
	Secret string
}

// Authenticator runs one provider's authorization exchange.
type Authenticator interface {
	// Begin starts an authorization. state is used as the CSRF token by
	// OAuth 2.0 providers and ignored by OAuth 1.0a providers.
	Begin(ctx context.Context, state string) (BeginResult, error)

	// CallbackKey extracts the pending-authorization key from the callback query.
	CallbackKey(query url.Values) string

	// Complete exchanges the callback for the user's raw profile.
	Complete(ctx context.Context, params CallbackParams) (*Identity, error)
}

func newHTTPClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
