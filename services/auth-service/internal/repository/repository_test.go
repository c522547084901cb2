package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/siwic-api/shared/database"
	"github.com/vasapolrittideah/siwic-api/shared/logger"
)

// testDatabase returns a throwaway database on MONGO_TEST_URI and drops it
// when the test ends.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, uri)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	db := client.Database(fmt.Sprintf("siwic_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	return db
}

func TestFacebookProfileUpsertIsIdempotent(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewFacebookProfileMongoRepository(ctx, logger.Nop(), db)

	params := UpsertFacebookProfileParams{
		FacebookID:  "fb-1",
		Name:        "Alice",
		ProfileLink: "https://facebook.com/fb-1",
		Email:       "alice@example.com",
		Raw:         map[string]any{"id": "fb-1"},
	}

	first, err := repo.UpsertProfile(ctx, params)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	params.Name = "Alice B."
	params.Email = ""
	second, err := repo.UpsertProfile(ctx, params)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("upsert created a second record: %s != %s", first.ID.Hex(), second.ID.Hex())
	}
	if second.Name != "Alice B." {
		t.Errorf("name = %q, want overwritten value", second.Name)
	}
	if second.Email != "alice@example.com" {
		t.Errorf("email = %q, want value kept when absent", second.Email)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed on update")
	}

	count, err := db.Collection(facebookProfileCollection).CountDocuments(ctx, map[string]any{"facebook_id": "fb-1"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("records = %d, want 1", count)
	}
}

func TestTwitterProfileConcurrentUpserts(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewTwitterProfileMongoRepository(ctx, logger.Nop(), db)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpsertProfile(ctx, UpsertTwitterProfileParams{
				TwitterID:  "tw-1",
				Name:       fmt.Sprintf("name-%d", i),
				ProfileRaw: map[string]any{},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("upsert: %v", err)
		}
	}

	count, err := db.Collection(twitterProfileCollection).CountDocuments(ctx, map[string]any{"twitter_id": "tw-1"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("records = %d, want 1", count)
	}
}

func TestTwitterProfileMetrics(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewTwitterProfileMongoRepository(ctx, logger.Nop(), db)

	if _, err := repo.UpsertProfile(ctx, UpsertTwitterProfileParams{TwitterID: "tw-2", Name: "Bob"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	followers := 42
	if err := repo.UpdateMetrics(ctx, "tw-2", model.TwitterMetrics{FollowersCount: &followers}); err != nil {
		t.Fatalf("update metrics: %v", err)
	}
	if err := repo.SetRecentTweetCount(ctx, "tw-2", 3); err != nil {
		t.Fatalf("recent tweets: %v", err)
	}

	profile, err := repo.GetProfileByTwitterID(ctx, "tw-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.FollowersCount == nil || *profile.FollowersCount != 42 {
		t.Errorf("followers = %v, want 42", profile.FollowersCount)
	}
	if profile.TweetCount != nil {
		t.Errorf("tweet count = %v, want null", *profile.TweetCount)
	}
	if profile.RecentTweetCount == nil || *profile.RecentTweetCount != 3 {
		t.Errorf("recent tweet count = %v, want 3", profile.RecentTweetCount)
	}
	if profile.Name != "Bob" {
		t.Errorf("name = %q, want Bob", profile.Name)
	}
}

func TestAccountUniqueness(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewAccountMongoRepository(ctx, logger.Nop(), db)

	if _, err := repo.CreateAccount(ctx, &model.LocalAccount{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("create alice: %v", err)
	}
	// Two accounts without email or mobile must not collide on the sparse indexes.
	if _, err := repo.CreateAccount(ctx, &model.LocalAccount{Username: "bob", PasswordHash: "x"}); err != nil {
		t.Fatalf("create bob: %v", err)
	}

	_, err := repo.CreateAccount(ctx, &model.LocalAccount{Username: "alice", PasswordHash: "y"})
	if !mongo.IsDuplicateKeyError(err) {
		t.Fatalf("err = %v, want duplicate key", err)
	}

	tests := []struct {
		name   string
		params IdentifierParams
		want   bool
	}{
		{"taken username", IdentifierParams{Username: "alice"}, true},
		{"free username", IdentifierParams{Username: "carol"}, false},
		{"any field taken", IdentifierParams{Username: "carol", Email: "alice@example.com"}, true},
		{"empty", IdentifierParams{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ExistsAny(ctx, tt.params)
			if err != nil {
				t.Fatalf("exists: %v", err)
			}
			if got != tt.want {
				t.Errorf("exists = %v, want %v", got, tt.want)
			}
		})
	}

	account, err := repo.GetAccountByIdentifier(ctx, "bob")
	if err != nil {
		t.Fatalf("get by identifier: %v", err)
	}
	if account.Username != "bob" {
		t.Errorf("username = %q, want bob", account.Username)
	}
}

func TestOAuthStateConsumedOnce(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewOAuthStateMongoRepository(ctx, logger.Nop(), db)

	_, err := repo.CreateState(ctx, &model.OAuthState{
		Key:       "state-1",
		Provider:  "facebook",
		ExpiresAt: time.Now().Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = repo.CreateState(ctx, &model.OAuthState{
		Key:       "state-expired",
		Provider:  "facebook",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("create expired: %v", err)
	}

	if _, err := repo.ConsumeState(ctx, "google", "state-1"); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("other provider: err = %v, want ErrStateNotFound", err)
	}
	if _, err := repo.ConsumeState(ctx, "facebook", "state-1"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if _, err := repo.ConsumeState(ctx, "facebook", "state-1"); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("second consume: err = %v, want ErrStateNotFound", err)
	}
	if _, err := repo.ConsumeState(ctx, "facebook", "state-expired"); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("expired: err = %v, want ErrStateNotFound", err)
	}
}
