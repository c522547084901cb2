package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository/repositorytest"
	"github.com/vasapolrittideah/siwic-api/shared/auth"
)

type sessionFixture struct {
	usecase  SessionUsecase
	jwtAuth  auth.JWTAuthenticator
	accounts *repositorytest.Accounts
	facebook *repositorytest.FacebookProfiles
	google   *repositorytest.GoogleProfiles
	twitter  *repositorytest.TwitterProfiles
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		jwtAuth:  auth.NewJWTAuthenticator("siwic-auth", "siwic-auth"),
		accounts: repositorytest.NewAccounts(),
		facebook: repositorytest.NewFacebookProfiles(),
		google:   repositorytest.NewGoogleProfiles(),
		twitter:  repositorytest.NewTwitterProfiles(),
	}
	f.usecase = NewSessionUsecase(f.accounts, f.facebook, f.google, f.twitter, f.jwtAuth, config.SessionConfig{
		Secret: "test-secret",
		TTL:    time.Hour,
	})
	return f
}

func TestSerialize(t *testing.T) {
	id := bson.NewObjectID()
	u := newSessionFixture().usecase

	tests := []struct {
		name      string
		principal model.Principal
		want      model.SessionIdentity
		wantErr   error
	}{
		{name: "facebook", principal: &model.FacebookProfile{ID: id}, want: model.SessionIdentity{ID: id.Hex(), Kind: model.KindFacebook}},
		{name: "google", principal: &model.GoogleProfile{ID: id}, want: model.SessionIdentity{ID: id.Hex(), Kind: model.KindGoogle}},
		{name: "twitter", principal: &model.TwitterProfile{ID: id}, want: model.SessionIdentity{ID: id.Hex(), Kind: model.KindTwitter}},
		{name: "local", principal: &model.LocalAccount{ID: id}, want: model.SessionIdentity{ID: id.Hex(), Kind: model.KindLocal}},
		{
			name:      "unresolved passes through",
			principal: model.UnresolvedIdentity{Ref: model.SessionIdentity{ID: "x", Kind: "mystery"}},
			want:      model.SessionIdentity{ID: "x", Kind: "mystery"},
		},
		{name: "nil", principal: nil, wantErr: ErrUnsupportedPrincipal},
		{name: "typed nil", principal: (*model.GoogleProfile)(nil), wantErr: ErrUnsupportedPrincipal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := u.Serialize(tt.principal)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDeserialize(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture()

	account, err := f.accounts.CreateAccount(ctx, &model.LocalAccount{Username: "alice"})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	google, err := f.google.UpsertProfile(ctx, repository.UpsertGoogleProfileParams{GoogleID: "g-1", Name: "Alice"})
	if err != nil {
		t.Fatalf("seed google: %v", err)
	}

	t.Run("resolves each kind", func(t *testing.T) {
		for _, p := range []model.Principal{account, google} {
			ref, err := f.usecase.Serialize(p)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			got, err := f.usecase.Deserialize(ctx, ref)
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			if got.Kind() != p.Kind() || got.Identifier() != p.Identifier() {
				t.Errorf("round trip = %v/%v, want %v/%v", got.Kind(), got.Identifier(), p.Kind(), p.Identifier())
			}
		}
	})

	passThrough := []struct {
		name string
		ref  model.SessionIdentity
	}{
		{"unknown kind", model.SessionIdentity{ID: account.ID.Hex(), Kind: "linkedin"}},
		{"malformed id", model.SessionIdentity{ID: "not-hex", Kind: model.KindLocal}},
		{"not found", model.SessionIdentity{ID: bson.NewObjectID().Hex(), Kind: model.KindTwitter}},
	}
	for _, tt := range passThrough {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.usecase.Deserialize(ctx, tt.ref)
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			unresolved, ok := got.(model.UnresolvedIdentity)
			if !ok {
				t.Fatalf("got %T, want model.UnresolvedIdentity", got)
			}
			if unresolved.Ref != tt.ref {
				t.Errorf("ref = %+v, want %+v", unresolved.Ref, tt.ref)
			}
		})
	}

	t.Run("store error propagates", func(t *testing.T) {
		storeErr := errors.New("store down")
		f.facebook.Err = storeErr
		defer func() { f.facebook.Err = nil }()

		_, err := f.usecase.Deserialize(ctx, model.SessionIdentity{ID: bson.NewObjectID().Hex(), Kind: model.KindFacebook})
		if !errors.Is(err, storeErr) {
			t.Errorf("err = %v, want store error", err)
		}
	})
}

func TestIssueTokenRoundTrip(t *testing.T) {
	f := newSessionFixture()
	id := bson.NewObjectID()

	token, err := f.usecase.IssueToken(&model.TwitterProfile{ID: id})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := f.jwtAuth.Verify(token, "test-secret")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	ref, err := f.usecase.ParseClaims(claims)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	want := model.SessionIdentity{ID: id.Hex(), Kind: model.KindTwitter}
	if ref != want {
		t.Errorf("ref = %+v, want %+v", ref, want)
	}
}

func TestParseClaimsRejects(t *testing.T) {
	u := newSessionFixture().usecase

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"no subject", jwt.MapClaims{"kind": "user"}},
		{"unknown kind", jwt.MapClaims{"sub": "abc", "kind": "linkedin"}},
		{"kind not a string", jwt.MapClaims{"sub": "abc", "kind": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := u.ParseClaims(tt.claims); !errors.Is(err, ErrInvalidSession) {
				t.Errorf("err = %v, want ErrInvalidSession", err)
			}
		})
	}
}
