package strategy

import (
	"context"
	"net/url"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/siwic-api/shared/provider"
)

type GoogleStrategy struct {
	provider provider.Authenticator
	profiles repository.GoogleProfileRepository
}

func NewGoogleStrategy(
	authenticator provider.Authenticator,
	profiles repository.GoogleProfileRepository,
) *GoogleStrategy {
	return &GoogleStrategy{provider: authenticator, profiles: profiles}
}

func (s *GoogleStrategy) Name() string { return "google" }

func (s *GoogleStrategy) Kind() model.IdentityKind { return model.KindGoogle }

func (s *GoogleStrategy) Begin(ctx context.Context, state string) (provider.BeginResult, error) {
	return s.provider.Begin(ctx, state)
}

func (s *GoogleStrategy) CallbackKey(query url.Values) string {
	return s.provider.CallbackKey(query)
}

func (s *GoogleStrategy) Authenticate(
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

// Upsert stores identity as the latest snapshot for its Google id.
func (s *GoogleStrategy) Upsert(ctx context.Context, identity *provider.Identity) (*model.GoogleProfile, error) {
	if identity.ID == "" {
		return nil, ErrMalformedProfile
	}

	return s.profiles.UpsertProfile(ctx, repository.UpsertGoogleProfileParams{
		GoogleID:   identity.ID,
		Name:       identity.DisplayName,
		Email:      first(identity.Emails),
		ProfilePic: first(identity.Photos),
		Profile:    identity.Raw,
	})
}
