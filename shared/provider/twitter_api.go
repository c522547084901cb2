package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// TwitterPublicMetrics mirrors the v2 public_metrics user field.
type TwitterPublicMetrics struct {
	FollowersCount int  `json:"followers_count"`
	FollowingCount int  `json:"following_count"`
	TweetCount     int  `json:"tweet_count"`
	ListedCount    int  `json:"listed_count"`
	MediaCount     *int `json:"media_count,omitempty"`
}

// TwitterUser is the subset of the v2 user object used for enrichment.
type TwitterUser struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Username        string                `json:"username"`
	ProfileImageURL string                `json:"profile_image_url"`
	Verified        bool                  `json:"verified"`
	PublicMetrics   *TwitterPublicMetrics `json:"public_metrics"`
}

// Tweet is the subset of the v2 tweet object returned by the timeline lookup.
type Tweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// TwitterAPIClient calls the Twitter v2 REST API with an app bearer token.
type TwitterAPIClient struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
}

// NewTwitterAPIClient creates a bearer-authenticated v2 client. baseURL may
// be empty to use the production API.
func NewTwitterAPIClient(baseURL, bearerToken string, httpClient *http.Client) *TwitterAPIClient {
	return &TwitterAPIClient{
		baseURL:     firstNonEmpty(baseURL, defaultTwitterAPIURL),
		bearerToken: bearerToken,
		httpClient:  newHTTPClient(httpClient),
	}
}

// GetUser looks up a user by id. A nil user with a nil error means the API
// answered without a data object.
func (c *TwitterAPIClient) GetUser(ctx context.Context, id string) (*TwitterUser, error) {
	endpoint := fmt.Sprintf("%s/2/users/%s?user.fields=public_metrics,profile_image_url,verified",
		c.baseURL, url.PathEscape(id))

	var body struct {
		Data *TwitterUser `json:"data"`
	}
	if err := c.get(ctx, endpoint, &body); err != nil {
		return nil, err
	}

	return body.Data, nil
}

// RecentTweets fetches up to five of the user's latest tweets. The slice is
// nil when the response carried no data array.
func (c *TwitterAPIClient) RecentTweets(ctx context.Context, id string) ([]Tweet, error) {
	endpoint := fmt.Sprintf("%s/2/users/%s/tweets?max_results=5&tweet.fields=public_metrics,created_at",
		c.baseURL, url.PathEscape(id))

	var body struct {
		Data []Tweet `json:"data"`
	}
	if err := c.get(ctx, endpoint, &body); err != nil {
		return nil, err
	}

	return body.Data, nil
}

func (c *TwitterAPIClient) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("twitter api: unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
