package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/siwic-api/shared/provider"
)

// Notifier receives best-effort side effects. Implementations must not block.
type Notifier interface {
	Notify(payload any)
	Welcome(address, name string)
}

// TwitterEnricher fetches public data about a Twitter user with an app-only
// token. *provider.TwitterAPIClient implements it.
type TwitterEnricher interface {
	GetUser(ctx context.Context, id string) (*provider.TwitterUser, error)
	RecentTweets(ctx context.Context, id string) ([]provider.Tweet, error)
}

// CallbackUsecase finishes a provider login for an authenticated profile.
type CallbackUsecase interface {
	// Reconcile enriches principal where the provider supports it, projects
	// it into the response payload and notifies the webhook.
	Reconcile(ctx context.Context, principal model.Principal) (*CallbackResult, error)
}

// CallbackResult is the outcome of a provider login. Principal reflects the
// stored record after enrichment.
type CallbackResult struct {
	Principal model.Principal
	Source    string
	Profile   any
}

const (
	sourceFacebook = "facebook"
	sourceGoogle   = "google"
	sourceTwitter  = "twitter"
)

type callbackUsecase struct {
	logger      *zerolog.Logger
	twitterRepo repository.TwitterProfileRepository
	enricher    TwitterEnricher
	notifier    Notifier
}

// NewCallbackUsecase creates the reconciler. A nil enricher disables
// Twitter enrichment.
func NewCallbackUsecase(
	logger *zerolog.Logger,
	twitterRepo repository.TwitterProfileRepository,
	enricher TwitterEnricher,
	notifier Notifier,
) CallbackUsecase {
	return &callbackUsecase{
		logger:      logger,
		twitterRepo: twitterRepo,
		enricher:    enricher,
		notifier:    notifier,
	}
}

func (u *callbackUsecase) Reconcile(ctx context.Context, principal model.Principal) (*CallbackResult, error) {
	switch p := principal.(type) {
	case *model.FacebookProfile, *model.GoogleProfile:
	case *model.TwitterProfile:
		saved, err := u.reconcileTwitter(ctx, p)
		if err != nil {
			return nil, err
		}
		principal = saved
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPrincipal, principal)
	}

	source, profile, err := ProjectPrincipal(principal)
	if err != nil {
		return nil, err
	}

	u.notifier.Notify(profile)

	return &CallbackResult{Principal: principal, Source: source, Profile: profile}, nil
}

// ProjectPrincipal returns the source tag and public payload of principal.
// An unresolved identity projects to its raw session reference.
func ProjectPrincipal(principal model.Principal) (string, any, error) {
	switch p := principal.(type) {
	case *model.FacebookProfile:
		if p != nil {
			return sourceFacebook, projectFacebook(p), nil
		}
	case *model.GoogleProfile:
		if p != nil {
			return sourceGoogle, projectGoogle(p), nil
		}
	case *model.TwitterProfile:
		if p != nil {
			return sourceTwitter, projectTwitter(p), nil
		}
	case *model.LocalAccount:
		if p != nil {
			return sourceLocal, projectAccount(p), nil
		}
	case model.UnresolvedIdentity:
		return string(p.Ref.Kind), p.Ref, nil
	}

	return "", nil, fmt.Errorf("%w: %T", ErrUnsupportedPrincipal, principal)
}

// reconcileTwitter runs both enrichment steps, each failing independently,
// then re-reads the record so the payload reflects what was stored.
func (u *callbackUsecase) reconcileTwitter(
	ctx context.Context,
	profile *model.TwitterProfile,
) (*model.TwitterProfile, error) {
	if u.enricher != nil {
		if err := u.enrichMetrics(ctx, profile.TwitterID); err != nil {
			u.logger.Warn().Err(err).Str("twitter_id", profile.TwitterID).Msg("twitter user lookup failed")
		}
		if err := u.enrichRecentTweets(ctx, profile.TwitterID); err != nil {
			u.logger.Warn().Err(err).Str("twitter_id", profile.TwitterID).Msg("twitter tweet fetch failed")
		}
	}

	saved, err := u.twitterRepo.GetProfileByTwitterID(ctx, profile.TwitterID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return profile, nil
		}
		return nil, err
	}

	return saved, nil
}

func (u *callbackUsecase) enrichMetrics(ctx context.Context, twitterID string) error {
	user, err := u.enricher.GetUser(ctx, twitterID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	var metrics model.TwitterMetrics
	if m := user.PublicMetrics; m != nil {
		metrics.FollowersCount = intPtr(m.FollowersCount)
		metrics.TweetCount = intPtr(m.TweetCount)
		metrics.ListedCount = intPtr(m.ListedCount)
		metrics.MediaCount = m.MediaCount
	}
	if user.ProfileImageURL != "" {
		url := user.ProfileImageURL
		metrics.ProfileImageURL = &url
	}

	return u.twitterRepo.UpdateMetrics(ctx, twitterID, metrics)
}

func (u *callbackUsecase) enrichRecentTweets(ctx context.Context, twitterID string) error {
	tweets, err := u.enricher.RecentTweets(ctx, twitterID)
	if err != nil {
		return err
	}
	if tweets == nil {
		return nil
	}

	return u.twitterRepo.SetRecentTweetCount(ctx, twitterID, len(tweets))
}

func intPtr(v int) *int {
	return &v
}

func projectFacebook(p *model.FacebookProfile) payload.FacebookProfileResponse {
	return payload.FacebookProfileResponse{
		ID:            p.FacebookID,
		Name:          p.Name,
		ProfileLink:   p.ProfileLink,
		Email:         p.Email,
		NumberOfPosts: p.NumberOfPosts,
		ProfilePic:    p.ProfilePic,
		Source:        sourceFacebook,
	}
}

func projectGoogle(p *model.GoogleProfile) payload.GoogleProfileResponse {
	return payload.GoogleProfileResponse{
		ID:         p.GoogleID,
		Name:       p.Name,
		Email:      p.Email,
		Profile:    p.Profile,
		ProfilePic: p.ProfilePic,
		Source:     sourceGoogle,
	}
}

func projectTwitter(p *model.TwitterProfile) payload.TwitterProfileResponse {
	recent := 0
	if p.RecentTweetCount != nil {
		recent = *p.RecentTweetCount
	}

	return payload.TwitterProfileResponse{
		ID:               p.TwitterID,
		Name:             p.Name,
		Username:         p.Username,
		FollowersCount:   p.FollowersCount,
		TweetCount:       p.TweetCount,
		ListedCount:      p.ListedCount,
		MediaCount:       p.MediaCount,
		RecentTweetCount: recent,
		Source:           sourceTwitter,
	}
}
