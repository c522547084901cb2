package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OAuthState is a pending provider authorization. Key is the OAuth 2.0
// state value or the OAuth 1.0a request token; Secret is the request token
// secret and is empty for OAuth 2.0 providers.
type OAuthState struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Key       string        `bson:"key"`
	Provider  string        `bson:"provider"`
	Secret    string        `bson:"secret,omitempty"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
}
