package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dghubble/oauth1"
	"github.com/dghubble/oauth1/twitter"
)

const defaultTwitterAPIURL = "https://api.twitter.com"

// TwitterConfig configures the Sign in with Twitter (OAuth 1.0a) client.
type TwitterConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	CallbackURL    string

	// Endpoint and APIURL default to the production Twitter endpoints.
	Endpoint   oauth1.Endpoint
	APIURL     string
	HTTPClient *http.Client
}

// TwitterProvider authenticates users with Twitter's OAuth 1.0a flow and
// reads their account through verify_credentials.
type TwitterProvider struct {
	config     *oauth1.Config
	apiURL     string
	httpClient *http.Client
}

// NewTwitterProvider creates a Twitter authenticator.
func NewTwitterProvider(cfg TwitterConfig) *TwitterProvider {
	endpoint := cfg.Endpoint
	if endpoint.RequestTokenURL == "" {
		endpoint = twitter.AuthenticateEndpoint
	}

	return &TwitterProvider{
		config: &oauth1.Config{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			CallbackURL:    cfg.CallbackURL,
			Endpoint:       endpoint,
		},
		apiURL:     firstNonEmpty(cfg.APIURL, defaultTwitterAPIURL),
		httpClient: newHTTPClient(cfg.HTTPClient),
	}
}

// Begin obtains a request token. The state argument is not used: Twitter
// echoes the request token back as oauth_token instead.
func (p *TwitterProvider) Begin(_ context.Context, _ string) (BeginResult, error) {
	requestToken, requestSecret, err := p.config.RequestToken()
	if err != nil {
		return BeginResult{}, fmt.Errorf("twitter request token: %w", err)
	}

	authURL, err := p.config.AuthorizationURL(requestToken)
	if err != nil {
		return BeginResult{}, err
	}

	return BeginResult{URL: authURL.String(), Key: requestToken, Secret: requestSecret}, nil
}

func (p *TwitterProvider) CallbackKey(query url.Values) string {
	if denied := query.Get("denied"); denied != "" {
		return denied
	}
	return query.Get("oauth_token")
}

func (p *TwitterProvider) Complete(ctx context.Context, params CallbackParams) (*Identity, error) {
	if params.Query.Get("denied") != "" {
		return nil, ErrAuthorizationDenied
	}
	requestToken := params.Query.Get("oauth_token")
	verifier := params.Query.Get("oauth_verifier")
	if requestToken == "" || verifier == "" {
		return nil, ErrMissingCallbackParams
	}

	accessToken, accessSecret, err := p.config.AccessToken(requestToken, params.Secret, verifier)
	if err != nil {
		return nil, fmt.Errorf("twitter access token: %w", err)
	}

	ctx = context.WithValue(ctx, oauth1.HTTPClient, p.httpClient)
	client := p.config.Client(ctx, oauth1.NewToken(accessToken, accessSecret))

	raw, err := getJSON(ctx, client, p.apiURL+"/1.1/account/verify_credentials.json?include_email=true&skip_status=true")
	if err != nil {
		return nil, fmt.Errorf("fetch twitter profile: %w", err)
	}

	identity := parseTwitterCredentials(raw)
	identity.Token = accessToken
	identity.TokenSecret = accessSecret

	return identity, nil
}

func parseTwitterCredentials(raw map[string]any) *Identity {
	return &Identity{
		ID:          firstNonEmpty(stringField(raw, "id_str"), stringField(raw, "id")),
		DisplayName: stringField(raw, "name"),
		Username:    stringField(raw, "screen_name"),
		Emails:      nonEmpty(stringField(raw, "email")),
		Photos:      nonEmpty(stringField(raw, "profile_image_url_https")),
		Raw:         raw,
	}
}
