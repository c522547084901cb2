package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/siwic-api/shared/auth"
)

// SessionUsecase converts principals to and from the compact reference kept
// in the session cookie.
type SessionUsecase interface {
	// Serialize classifies principal and returns its session reference.
	Serialize(principal model.Principal) (model.SessionIdentity, error)

	// Deserialize resolves ref against the store of its kind. Unknown kinds,
	// malformed ids and missing records yield model.UnresolvedIdentity.
	Deserialize(ctx context.Context, ref model.SessionIdentity) (model.Principal, error)

	// IssueToken signs the session reference of principal.
	IssueToken(principal model.Principal) (string, error)

	// ParseClaims extracts the session reference from verified token claims.
	ParseClaims(claims jwt.MapClaims) (model.SessionIdentity, error)
}

var (
	ErrUnsupportedPrincipal = errors.New("unsupported principal")
	ErrInvalidSession       = errors.New("invalid session")
)

const claimKind = "kind"

type sessionUsecase struct {
	accountRepo  repository.AccountRepository
	facebookRepo repository.FacebookProfileRepository
	googleRepo   repository.GoogleProfileRepository
	twitterRepo  repository.TwitterProfileRepository
	jwtAuth      auth.JWTAuthenticator
	sessionCfg   config.SessionConfig
}

func NewSessionUsecase(
	accountRepo repository.AccountRepository,
	facebookRepo repository.FacebookProfileRepository,
	googleRepo repository.GoogleProfileRepository,
	twitterRepo repository.TwitterProfileRepository,
	jwtAuth auth.JWTAuthenticator,
	sessionCfg config.SessionConfig,
) SessionUsecase {
	return &sessionUsecase{
		accountRepo:  accountRepo,
		facebookRepo: facebookRepo,
		googleRepo:   googleRepo,
		twitterRepo:  twitterRepo,
		jwtAuth:      jwtAuth,
		sessionCfg:   sessionCfg,
	}
}

func (u *sessionUsecase) Serialize(principal model.Principal) (model.SessionIdentity, error) {
	// Case order is the classification priority.
	switch p := principal.(type) {
	case *model.FacebookProfile:
		if p != nil {
			return model.SessionIdentity{ID: p.ID.Hex(), Kind: model.KindFacebook}, nil
		}
	case *model.GoogleProfile:
		if p != nil {
			return model.SessionIdentity{ID: p.ID.Hex(), Kind: model.KindGoogle}, nil
		}
	case *model.TwitterProfile:
		if p != nil {
			return model.SessionIdentity{ID: p.ID.Hex(), Kind: model.KindTwitter}, nil
		}
	case *model.LocalAccount:
		if p != nil {
			return model.SessionIdentity{ID: p.ID.Hex(), Kind: model.KindLocal}, nil
		}
	case model.UnresolvedIdentity:
		return p.Ref, nil
	}

	return model.SessionIdentity{}, fmt.Errorf("%w: %T", ErrUnsupportedPrincipal, principal)
}

func (u *sessionUsecase) Deserialize(ctx context.Context, ref model.SessionIdentity) (model.Principal, error) {
	unresolved := model.UnresolvedIdentity{Ref: ref}

	if _, err := bson.ObjectIDFromHex(ref.ID); err != nil {
		return unresolved, nil
	}

	principal, err := u.lookup(ctx, ref)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return unresolved, nil
		}
		return nil, err
	}
	if principal == nil {
		return unresolved, nil
	}

	return principal, nil
}

// lookup returns a nil Principal for kinds without a store.
func (u *sessionUsecase) lookup(ctx context.Context, ref model.SessionIdentity) (model.Principal, error) {
	switch ref.Kind {
	case model.KindLocal:
		account, err := u.accountRepo.GetAccount(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return account, nil
	case model.KindFacebook:
		profile, err := u.facebookRepo.GetProfile(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return profile, nil
	case model.KindGoogle:
		profile, err := u.googleRepo.GetProfile(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return profile, nil
	case model.KindTwitter:
		profile, err := u.twitterRepo.GetProfile(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return profile, nil
	}

	return nil, nil
}

func (u *sessionUsecase) IssueToken(principal model.Principal) (string, error) {
	ref, err := u.Serialize(principal)
	if err != nil {
		return "", err
	}

	return u.jwtAuth.Issue(ref.ID, map[string]any{claimKind: string(ref.Kind)}, u.sessionCfg.TTL, u.sessionCfg.Secret)
}

func (u *sessionUsecase) ParseClaims(claims jwt.MapClaims) (model.SessionIdentity, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return model.SessionIdentity{}, ErrInvalidSession
	}

	kind, _ := claims[claimKind].(string)
	if !model.IdentityKind(kind).Valid() {
		return model.SessionIdentity{}, ErrInvalidSession
	}

	return model.SessionIdentity{ID: sub, Kind: model.IdentityKind(kind)}, nil
}
