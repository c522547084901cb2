package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// FacebookProfile is the latest snapshot of a Facebook identity, one per
// FacebookID.
type FacebookProfile struct {
	ID            bson.ObjectID  `bson:"_id,omitempty"`
	FacebookID    string         `bson:"facebook_id"`
	Name          string         `bson:"name"`
	ProfileLink   string         `bson:"profile_link"`
	Email         string         `bson:"email,omitempty"`
	ProfilePic    string         `bson:"profile_pic,omitempty"`
	NumberOfPosts *int           `bson:"number_of_posts,omitempty"`
	Raw           map[string]any `bson:"raw"`
	CreatedAt     time.Time      `bson:"created_at"`
	UpdatedAt     time.Time      `bson:"updated_at"`
}

func (p *FacebookProfile) Kind() IdentityKind { return KindFacebook }

func (p *FacebookProfile) Identifier() bson.ObjectID { return p.ID }

// GoogleProfile is the latest snapshot of a Google identity, one per GoogleID.
type GoogleProfile struct {
	ID         bson.ObjectID  `bson:"_id,omitempty"`
	GoogleID   string         `bson:"google_id"`
	Name       string         `bson:"name"`
	Email      string         `bson:"email,omitempty"`
	ProfilePic string         `bson:"profile_pic,omitempty"`
	Profile    map[string]any `bson:"profile"`
	CreatedAt  time.Time      `bson:"created_at"`
	UpdatedAt  time.Time      `bson:"updated_at"`
}

func (p *GoogleProfile) Kind() IdentityKind { return KindGoogle }

func (p *GoogleProfile) Identifier() bson.ObjectID { return p.ID }

// TwitterProfile is the latest snapshot of a Twitter/X identity, one per
// TwitterID. Metric fields stay nil until enrichment fills them in.
type TwitterProfile struct {
	ID               bson.ObjectID  `bson:"_id,omitempty"`
	TwitterID        string         `bson:"twitter_id"`
	Name             string         `bson:"name"`
	Username         string         `bson:"username,omitempty"`
	OAuthToken       string         `bson:"oauth_token"`
	OAuthTokenSecret string         `bson:"oauth_token_secret"`
	ProfileRaw       map[string]any `bson:"profile_raw"`

	FollowersCount   *int    `bson:"followers_count"`
	TweetCount       *int    `bson:"tweet_count"`
	ListedCount      *int    `bson:"listed_count"`
	MediaCount       *int    `bson:"media_count"`
	ProfileImageURL  *string `bson:"profile_image_url"`
	RecentTweetCount *int    `bson:"recent_tweet_count"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (p *TwitterProfile) Kind() IdentityKind { return KindTwitter }

func (p *TwitterProfile) Identifier() bson.ObjectID { return p.ID }

// TwitterMetrics is the enrichment merged into a TwitterProfile from the
// v2 user lookup. Nil fields are stored as null.
type TwitterMetrics struct {
	FollowersCount  *int
	TweetCount      *int
	ListedCount     *int
	MediaCount      *int
	ProfileImageURL *string
}
