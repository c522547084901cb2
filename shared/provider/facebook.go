package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const (
	defaultFacebookGraphURL = "https://graph.facebook.com/v19.0"
	facebookProfileFields   = "id,name,email,link,picture.type(large)"
)

var defaultFacebookScopes = []string{"email", "public_profile", "user_posts"}

// FacebookConfig configures the Facebook Login client.
type FacebookConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string

	// Endpoint and GraphURL default to the production Facebook endpoints.
	Endpoint   oauth2.Endpoint
	GraphURL   string
	HTTPClient *http.Client
}

// FacebookProvider authenticates users with Facebook Login and reads their
// Graph API profile.
type FacebookProvider struct {
	oauth      *oauth2.Config
	graphURL   string
	httpClient *http.Client
}

// NewFacebookProvider creates a Facebook authenticator.
func NewFacebookProvider(cfg FacebookConfig) *FacebookProvider {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = facebook.Endpoint
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultFacebookScopes
	}

	return &FacebookProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		graphURL:   firstNonEmpty(cfg.GraphURL, defaultFacebookGraphURL),
		httpClient: newHTTPClient(cfg.HTTPClient),
	}
}

func (p *FacebookProvider) Begin(_ context.Context, state string) (BeginResult, error) {
	return BeginResult{URL: p.oauth.AuthCodeURL(state), Key: state}, nil
}

func (p *FacebookProvider) CallbackKey(query url.Values) string {
	return query.Get("state")
}

func (p *FacebookProvider) Complete(ctx context.Context, params CallbackParams) (*Identity, error) {
	if params.Query.Get("error") != "" {
		return nil, ErrAuthorizationDenied
	}
	code := params.Query.Get("code")
	if code == "" {
		return nil, ErrMissingCallbackParams
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange facebook code: %w", err)
	}

	raw, err := getJSON(ctx, p.oauth.Client(ctx, token), p.graphURL+"/me?fields="+url.QueryEscape(facebookProfileFields))
	if err != nil {
		return nil, fmt.Errorf("fetch facebook profile: %w", err)
	}

	return parseFacebookProfile(raw), nil
}

func parseFacebookProfile(raw map[string]any) *Identity {
	var picture string
	if pic, ok := raw["picture"].(map[string]any); ok {
		if data, ok := pic["data"].(map[string]any); ok {
			picture = stringField(data, "url")
		}
	}

	return &Identity{
		ID:          stringField(raw, "id"),
		DisplayName: stringField(raw, "name"),
		Link:        stringField(raw, "link"),
		Emails:      nonEmpty(stringField(raw, "email")),
		Photos:      nonEmpty(picture),
		Raw:         raw,
	}
}

func getJSON(ctx context.Context, client *http.Client, endpoint string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	return out, nil
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
