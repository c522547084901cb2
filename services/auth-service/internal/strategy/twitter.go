package strategy

import (
	"context"
	"net/url"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/siwic-api/shared/provider"
)

type TwitterStrategy struct {
	provider provider.Authenticator
	profiles repository.TwitterProfileRepository
}

func NewTwitterStrategy(
	authenticator provider.Authenticator,
	profiles repository.TwitterProfileRepository,
) *TwitterStrategy {
	return &TwitterStrategy{provider: authenticator, profiles: profiles}
}

func (s *TwitterStrategy) Name() string { return "twitter" }

func (s *TwitterStrategy) Kind() model.IdentityKind { return model.KindTwitter }

func (s *TwitterStrategy) Begin(ctx context.Context, state string) (provider.BeginResult, error) {
	return s.provider.Begin(ctx, state)
}

func (s *TwitterStrategy) CallbackKey(query url.Values) string {
	return s.provider.CallbackKey(query)
}

func (s *TwitterStrategy) Authenticate(
	ctx context.Context,
	params provider.CallbackParams,
) (model.Principal, error) {
	identity, err := completeExchange(ctx, s.provider, params)
	if err != nil {
		return nil, err
	}

	profile, err := s.Upsert(ctx, identity)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Upsert stores identity and its user-context token pair as the latest
// snapshot for its Twitter id. The display name falls back to the handle.
func (s *TwitterStrategy) Upsert(ctx context.Context, identity *provider.Identity) (*model.TwitterProfile, error) {
	if identity.ID == "" {
		return nil, ErrMalformedProfile
	}

	name := identity.DisplayName
	if name == "" {
		name = identity.Username
	}

	return s.profiles.UpsertProfile(ctx, repository.UpsertTwitterProfileParams{
		TwitterID:        identity.ID,
		Name:             name,
		Username:         identity.Username,
		OAuthToken:       identity.Token,
		OAuthTokenSecret: identity.TokenSecret,
		ProfileRaw:       identity.Raw,
	})
}
