package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
)

const (
	facebookProfileCollection = "facebook_profiles"
	googleProfileCollection   = "google_profiles"
	twitterProfileCollection  = "twitter_profiles"
)

// FacebookProfileRepository defines the interface for Facebook profile snapshots.
type FacebookProfileRepository interface {
	UpsertProfile(ctx context.Context, params UpsertFacebookProfileParams) (*model.FacebookProfile, error)
	GetProfile(ctx context.Context, id string) (*model.FacebookProfile, error)
	GetProfileByFacebookID(ctx context.Context, facebookID string) (*model.FacebookProfile, error)
}

// UpsertFacebookProfileParams holds the fields written on every Facebook
// login. Empty optional fields leave the stored value untouched.
type UpsertFacebookProfileParams struct {
	FacebookID    string
	Name          string
	ProfileLink   string
	Email         string
	ProfilePic    string
	NumberOfPosts *int
	Raw           map[string]any
}

// GoogleProfileRepository defines the interface for Google profile snapshots.
type GoogleProfileRepository interface {
	UpsertProfile(ctx context.Context, params UpsertGoogleProfileParams) (*model.GoogleProfile, error)
	GetProfile(ctx context.Context, id string) (*model.GoogleProfile, error)
	GetProfileByGoogleID(ctx context.Context, googleID string) (*model.GoogleProfile, error)
}

// UpsertGoogleProfileParams holds the fields written on every Google login.
type UpsertGoogleProfileParams struct {
	GoogleID   string
	Name       string
	Email      string
	ProfilePic string
	Profile    map[string]any
}

// TwitterProfileRepository defines the interface for Twitter profile snapshots.
type TwitterProfileRepository interface {
	UpsertProfile(ctx context.Context, params UpsertTwitterProfileParams) (*model.TwitterProfile, error)
	GetProfile(ctx context.Context, id string) (*model.TwitterProfile, error)
	GetProfileByTwitterID(ctx context.Context, twitterID string) (*model.TwitterProfile, error)

	// UpdateMetrics merges the public metrics into the record for twitterID.
	// Nil metrics are stored as null.
	UpdateMetrics(ctx context.Context, twitterID string, metrics model.TwitterMetrics) error

	// SetRecentTweetCount stores the number of recently fetched tweets.
	SetRecentTweetCount(ctx context.Context, twitterID string, count int) error
}

// UpsertTwitterProfileParams holds the fields written on every Twitter login.
type UpsertTwitterProfileParams struct {
	TwitterID        string
	Name             string
	Username         string
	OAuthToken       string
	OAuthTokenSecret string
	ProfileRaw       map[string]any
}

type facebookProfileMongoRepository struct {
	db *mongo.Database
}

type googleProfileMongoRepository struct {
	db *mongo.Database
}

type twitterProfileMongoRepository struct {
	db *mongo.Database
}

// NewFacebookProfileMongoRepository creates a new MongoDB repository for Facebook profiles.
func NewFacebookProfileMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) FacebookProfileRepository {
	createProviderIDIndex(ctx, logger, db.Collection(facebookProfileCollection), "facebook_id")
	return &facebookProfileMongoRepository{db: db}
}

// NewGoogleProfileMongoRepository creates a new MongoDB repository for Google profiles.
func NewGoogleProfileMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) GoogleProfileRepository {
	createProviderIDIndex(ctx, logger, db.Collection(googleProfileCollection), "google_id")
	return &googleProfileMongoRepository{db: db}
}

// NewTwitterProfileMongoRepository creates a new MongoDB repository for Twitter profiles.
func NewTwitterProfileMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) TwitterProfileRepository {
	createProviderIDIndex(ctx, logger, db.Collection(twitterProfileCollection), "twitter_id")
	return &twitterProfileMongoRepository{db: db}
}

func createProviderIDIndex(ctx context.Context, logger *zerolog.Logger, collection *mongo.Collection, field string) {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logger.Fatal().Err(err).Str("collection", collection.Name()).Msg("failed to create profile indexes")
	}
}

// upsertOne sets fields on the document matching filter, inserting it when
// absent, and decodes the post-update document into out. Two first-time
// upserts racing on the same key make one of them fail the unique index; that
// one is re-issued once and then matches the inserted document.
func upsertOne(ctx context.Context, collection *mongo.Collection, filter, fields bson.M, out any) error {
	now := time.Now()
	fields["updated_at"] = now

	update := bson.M{
		"$set":         fields,
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	if mongo.IsDuplicateKeyError(err) {
		err = collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	}

	return err
}

func findByHexID(ctx context.Context, collection *mongo.Collection, id string, out any) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	return collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(out)
}

func setIfPresent(fields bson.M, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

func (r *facebookProfileMongoRepository) UpsertProfile(
	ctx context.Context,
	params UpsertFacebookProfileParams,
) (*model.FacebookProfile, error) {
	fields := bson.M{
		"name":         params.Name,
		"profile_link": params.ProfileLink,
		"raw":          params.Raw,
	}
	setIfPresent(fields, "email", params.Email)
	setIfPresent(fields, "profile_pic", params.ProfilePic)
	if params.NumberOfPosts != nil {
		fields["number_of_posts"] = *params.NumberOfPosts
	}

	var profile model.FacebookProfile
	err := upsertOne(
		ctx,
		r.db.Collection(facebookProfileCollection),
		bson.M{"facebook_id": params.FacebookID},
		fields,
		&profile,
	)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *facebookProfileMongoRepository) GetProfile(ctx context.Context, id string) (*model.FacebookProfile, error) {
	var profile model.FacebookProfile
	if err := findByHexID(ctx, r.db.Collection(facebookProfileCollection), id, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *facebookProfileMongoRepository) GetProfileByFacebookID(
	ctx context.Context,
	facebookID string,
) (*model.FacebookProfile, error) {
	var profile model.FacebookProfile
	err := r.db.Collection(facebookProfileCollection).
		FindOne(ctx, bson.M{"facebook_id": facebookID}).
		Decode(&profile)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *googleProfileMongoRepository) UpsertProfile(
	ctx context.Context,
	params UpsertGoogleProfileParams,
) (*model.GoogleProfile, error) {
	fields := bson.M{
		"name":    params.Name,
		"profile": params.Profile,
	}
	setIfPresent(fields, "email", params.Email)
	setIfPresent(fields, "profile_pic", params.ProfilePic)

	var profile model.GoogleProfile
	err := upsertOne(
		ctx,
		r.db.Collection(googleProfileCollection),
		bson.M{"google_id": params.GoogleID},
		fields,
		&profile,
	)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *googleProfileMongoRepository) GetProfile(ctx context.Context, id string) (*model.GoogleProfile, error) {
	var profile model.GoogleProfile
	if err := findByHexID(ctx, r.db.Collection(googleProfileCollection), id, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *googleProfileMongoRepository) GetProfileByGoogleID(
	ctx context.Context,
	googleID string,
) (*model.GoogleProfile, error) {
	var profile model.GoogleProfile
	err := r.db.Collection(googleProfileCollection).
		FindOne(ctx, bson.M{"google_id": googleID}).
		Decode(&profile)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *twitterProfileMongoRepository) UpsertProfile(
	ctx context.Context,
	params UpsertTwitterProfileParams,
) (*model.TwitterProfile, error) {
	fields := bson.M{
		"name":               params.Name,
		"oauth_token":        params.OAuthToken,
		"oauth_token_secret": params.OAuthTokenSecret,
		"profile_raw":        params.ProfileRaw,
	}
	setIfPresent(fields, "username", params.Username)

	var profile model.TwitterProfile
	err := upsertOne(
		ctx,
		r.db.Collection(twitterProfileCollection),
		bson.M{"twitter_id": params.TwitterID},
		fields,
		&profile,
	)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *twitterProfileMongoRepository) GetProfile(ctx context.Context, id string) (*model.TwitterProfile, error) {
	var profile model.TwitterProfile
	if err := findByHexID(ctx, r.db.Collection(twitterProfileCollection), id, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *twitterProfileMongoRepository) GetProfileByTwitterID(
	ctx context.Context,
	twitterID string,
) (*model.TwitterProfile, error) {
	var profile model.TwitterProfile
	err := r.db.Collection(twitterProfileCollection).
		FindOne(ctx, bson.M{"twitter_id": twitterID}).
		Decode(&profile)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *twitterProfileMongoRepository) UpdateMetrics(
	ctx context.Context,
	twitterID string,
	metrics model.TwitterMetrics,
) error {
	fields := bson.M{
		"followers_count":   metrics.FollowersCount,
		"tweet_count":       metrics.TweetCount,
		"listed_count":      metrics.ListedCount,
		"media_count":       metrics.MediaCount,
		"profile_image_url": metrics.ProfileImageURL,
	}

	var profile model.TwitterProfile
	return upsertOne(
		ctx,
		r.db.Collection(twitterProfileCollection),
		bson.M{"twitter_id": twitterID},
		fields,
		&profile,
	)
}

func (r *twitterProfileMongoRepository) SetRecentTweetCount(ctx context.Context, twitterID string, count int) error {
	var profile model.TwitterProfile
	return upsertOne(
		ctx,
		r.db.Collection(twitterProfileCollection),
		bson.M{"twitter_id": twitterID},
		bson.M{"recent_tweet_count": count},
		&profile,
	)
}
