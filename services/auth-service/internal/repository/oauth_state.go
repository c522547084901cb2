package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/model"
)

// ErrStateNotFound is returned when a pending authorization is unknown,
// expired, already consumed or belongs to another provider.
var ErrStateNotFound = errors.New("oauth state not found")

// OAuthStateRepository defines the interface for pending provider authorizations.
type OAuthStateRepository interface {
	// CreateState stores a pending authorization.
	CreateState(ctx context.Context, state *model.OAuthState) (*model.OAuthState, error)

	// ConsumeState removes and returns the unexpired pending authorization
	// for provider and key. Each state can be consumed once.
	ConsumeState(ctx context.Context, provider, key string) (*model.OAuthState, error)
}

const oauthStateCollection = "oauth_states"

type oauthStateMongoRepository struct {
	db *mongo.Database
}

// NewOAuthStateMongoRepository creates a new MongoDB repository for pending authorizations.
func NewOAuthStateMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) OAuthStateRepository {
	collection := db.Collection(oauthStateCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create oauth state indexes")
	}

	return &oauthStateMongoRepository{db: db}
}

func (r *oauthStateMongoRepository) CreateState(
	ctx context.Context,
	state *model.OAuthState,
) (*model.OAuthState, error) {
	state.CreatedAt = time.Now()

	result, err := r.db.Collection(oauthStateCollection).InsertOne(ctx, state)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		state.ID = objectID
	}

	return state, nil
}

func (r *oauthStateMongoRepository) ConsumeState(
	ctx context.Context,
	provider, key string,
) (*model.OAuthState, error) {
	// The TTL monitor runs about once a minute, so expiry is checked here too.
	filter := bson.M{
		"key":        key,
		"provider":   provider,
		"expires_at": bson.M{"$gt": time.Now()},
	}

	var state model.OAuthState
	err := r.db.Collection(oauthStateCollection).FindOneAndDelete(ctx, filter).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStateNotFound
		}
		return nil, err
	}

	return &state, nil
}
