// Package strategy binds each OAuth provider to its profile store: it runs the
// provider exchange, normalizes the returned identity and upserts it keyed by
// the provider-assigned id.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/shared/provider"
)

var (
	// ErrProviderAuthentication is returned when the provider exchange fails
	// or yields an unusable profile. Callers redirect to the failure endpoint.
	ErrProviderAuthentication = errors.New("provider authentication failed")

	// ErrMalformedProfile is returned when the provider profile has no id.
	ErrMalformedProfile = errors.New("malformed provider profile")
)

// Strategy authenticates users through one provider.
type Strategy interface {
	// Name is the route segment of the provider, e.g. "facebook".
	Name() string

	// Kind is the session tag of the principals this strategy produces.
	Kind() model.IdentityKind

	Begin(ctx context.Context, state string) (provider.BeginResult, error)
	CallbackKey(query url.Values) string

	// Authenticate completes the provider exchange and returns the upserted
	// profile. Provider failures match ErrProviderAuthentication; store
	// failures are returned as is.
	Authenticate(ctx context.Context, params provider.CallbackParams) (model.Principal, error)
}

// Registry looks strategies up by name.
type Registry map[string]Strategy

// NewRegistry indexes strategies by Name. Nil entries are skipped so that
// unconfigured providers can be passed through unconditionally.
func NewRegistry(strategies ...Strategy) Registry {
	r := make(Registry, len(strategies))
	for _, s := range strategies {
		if s != nil {
			r[s.Name()] = s
		}
	}
	return r
}

// Get returns the strategy registered under name.
func (r Registry) Get(name string) (Strategy, bool) {
	s, ok := r[name]
	return s, ok
}

func completeExchange(
	ctx context.Context,
	authenticator provider.Authenticator,
	params provider.CallbackParams,
) (*provider.Identity, error) {
	identity, err := authenticator.Complete(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderAuthentication, err)
	}
	if identity == nil || identity.ID == "" {
		return nil, fmt.Errorf("%w: %w", ErrProviderAuthentication, ErrMalformedProfile)
	}
	return identity, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
