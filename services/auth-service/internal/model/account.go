package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// LocalAccount represents a username/password account registered directly
// with the service. Username, Email and Mobile are optional individually but
// at least one is set; each is unique among accounts when present.
type LocalAccount struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Username     string        `bson:"username,omitempty"`
	Email        string        `bson:"email,omitempty"`
	Mobile       string        `bson:"mobile,omitempty"`
	PasswordHash string        `bson:"password_hash"`

	Name        string     `bson:"name,omitempty"`
	Gender      string     `bson:"gender,omitempty"`
	DateOfBirth *time.Time `bson:"date_of_birth,omitempty"`
	HomeTown    string     `bson:"home_town,omitempty"`
	Profession  string     `bson:"profession,omitempty"`

	ProofDocument       string `bson:"proof_document,omitempty"`
	ProofDocumentNumber string `bson:"proof_document_number,omitempty"`

	// Linked provider references are informational and never resolved.
	FacebookProfileID string   `bson:"facebook_profile_id,omitempty"`
	FacebookPages     []string `bson:"facebook_pages"`
	InstaProfileID    string   `bson:"insta_profile_id,omitempty"`
	TwitterProfileID  string   `bson:"twitter_profile_id,omitempty"`
	GoogleProfileID   string   `bson:"google_profile_id,omitempty"`
	YoutubeProfileID  string   `bson:"youtube_profile_id,omitempty"`
	YoutubeChannels   []string `bson:"youtube_channels"`
	WhatsappProfileID string   `bson:"whatsapp_profile_id,omitempty"`
	WhatsappChannels  []string `bson:"whatsapp_channels"`

	CreatedAt time.Time `bson:"created_at"`
}

func (a *LocalAccount) Kind() IdentityKind { return KindLocal }

func (a *LocalAccount) Identifier() bson.ObjectID { return a.ID }
