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

// AccountRepository defines the interface for local account database operations.
type AccountRepository interface {
	// CreateAccount inserts a new account. A collision on username, email or
	// mobile is reported as a duplicate key error (mongo.IsDuplicateKeyError).
	CreateAccount(ctx context.Context, account *model.LocalAccount) (*model.LocalAccount, error)

	// GetAccount retrieves an account by its hex id.
	GetAccount(ctx context.Context, id string) (*model.LocalAccount, error)

	// GetAccountByIdentifier retrieves the account whose username, email or
	// mobile equals identifier.
	GetAccountByIdentifier(ctx context.Context, identifier string) (*model.LocalAccount, error)

	// ExistsAny reports whether any account already holds one of the
	// non-empty identifiers.
	ExistsAny(ctx context.Context, params IdentifierParams) (bool, error)
}

// IdentifierParams holds the unique identifier fields of an account. Empty
// fields are ignored.
type IdentifierParams struct {
	Username string
	Email    string
	Mobile   string
}

const accountCollection = "accounts"

type accountMongoRepository struct {
	db *mongo.Database
}

// NewAccountMongoRepository creates a new MongoDB repository for local accounts.
func NewAccountMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) AccountRepository {
	collection := db.Collection(accountCollection)

	// Sparse: accounts without the field are not indexed, so several accounts
	// may omit e.g. mobile while present values stay unique.
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "mobile", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create account indexes")
	}

	return &accountMongoRepository{db: db}
}

func (r *accountMongoRepository) CreateAccount(
	ctx context.Context,
	account *model.LocalAccount,
) (*model.LocalAccount, error) {
	account.CreatedAt = time.Now()

	result, err := r.db.Collection(accountCollection).InsertOne(ctx, account)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		account.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return account, nil
}

func (r *accountMongoRepository) GetAccount(ctx context.Context, id string) (*model.LocalAccount, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var account model.LocalAccount
	if err := r.db.Collection(accountCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountMongoRepository) GetAccountByIdentifier(
	ctx context.Context,
	identifier string,
) (*model.LocalAccount, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
		bson.M{"mobile": identifier},
	}}

	var account model.LocalAccount
	if err := r.db.Collection(accountCollection).FindOne(ctx, filter).Decode(&account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountMongoRepository) ExistsAny(ctx context.Context, params IdentifierParams) (bool, error) {
	// Only present fields take part: matching on an empty value would hit
	// every account that omits the field.
	clauses := bson.A{}
	if params.Username != "" {
		clauses = append(clauses, bson.M{"username": params.Username})
	}
	if params.Email != "" {
		clauses = append(clauses, bson.M{"email": params.Email})
	}
	if params.Mobile != "" {
		clauses = append(clauses, bson.M{"mobile": params.Mobile})
	}
	if len(clauses) == 0 {
		return false, nil
	}

	count, err := r.db.Collection(accountCollection).CountDocuments(
		ctx,
		bson.M{"$or": clauses},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
