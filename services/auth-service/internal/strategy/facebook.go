package strategy

import (
	"context"
	"net/url"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/siwic-api/shared/provider"
)

type FacebookStrategy struct {
	provider provider.Authenticator
	profiles repository.FacebookProfileRepository
}

func NewFacebookStrategy(
	authenticator provider.Authenticator,
	profiles repository.FacebookProfileRepository,
) *FacebookStrategy {
	return &FacebookStrategy{provider: authenticator, profiles: profiles}
}

func (s *FacebookStrategy) Name() string { return "facebook" }

func (s *FacebookStrategy) Kind() model.IdentityKind { return model.KindFacebook }

func (s *FacebookStrategy) Begin(ctx context.Context, state string) (provider.BeginResult, error) {
	return s.provider.Begin(ctx, state)
}

func (s *FacebookStrategy) CallbackKey(query url.Values) string {
	return s.provider.CallbackKey(query)
}

func (s *FacebookStrategy) Authenticate(
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

// Upsert stores identity as the latest snapshot for its Facebook id.
func (s *FacebookStrategy) Upsert(ctx context.Context, identity *provider.Identity) (*model.FacebookProfile, error) {
	if identity.ID == "" {
		return nil, ErrMalformedProfile
	}

	link := identity.Link
	if link == "" {
		link = "https://facebook.com/" + identity.ID
	}

	return s.profiles.UpsertProfile(ctx, repository.UpsertFacebookProfileParams{
		FacebookID:  identity.ID,
		Name:        identity.DisplayName,
		ProfileLink: link,
		Email:       first(identity.Emails),
		ProfilePic:  first(identity.Photos),
		Raw:         identity.Raw,
	})
}
