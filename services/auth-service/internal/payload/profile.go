package payload

// FacebookProfileResponse is the projection of a Facebook login.
type FacebookProfileResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ProfileLink   string `json:"profileLink"`
	Email         string `json:"email,omitempty"`
	NumberOfPosts *int   `json:"numberOfPosts,omitempty"`
	ProfilePic    string `json:"profilePic,omitempty"`
	Source        string `json:"source"`
}

// GoogleProfileResponse is the projection of a Google login.
type GoogleProfileResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email,omitempty"`
	Profile    map[string]any `json:"profile"`
	ProfilePic string         `json:"profilePic,omitempty"`
	Source     string         `json:"source"`
}

// TwitterProfileResponse is the projection of a Twitter login. Metrics that
// were never fetched are null; RecentTweetCount defaults to 0.
type TwitterProfileResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Username         string `json:"username"`
	FollowersCount   *int   `json:"followers_count"`
	TweetCount       *int   `json:"tweet_count"`
	ListedCount      *int   `json:"listed_count"`
	MediaCount       *int   `json:"media_count"`
	RecentTweetCount int    `json:"recent_tweet_count"`
	Source           string `json:"source"`
}

// CallbackResponse wraps the projection of a successful provider login.
type CallbackResponse struct {
	OK      bool   `json:"ok"`
	Source  string `json:"source"`
	Profile any    `json:"profile"`
}

// SessionResponse describes the identity behind the session cookie.
type SessionResponse struct {
	OK       bool   `json:"ok"`
	Kind     string `json:"kind"`
	Identity any    `json:"identity"`
}

type StatusResponse struct {
	OK bool `json:"ok"`
}
