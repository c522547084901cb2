package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrInvalidGoogleAudience = errors.New("invalid google audience")
)

var defaultGoogleScopes = []string{"profile", "email"}

// GoogleConfig configures the Google sign-in client.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string

	// Endpoint and APIEndpoint default to the production Google endpoints.
	Endpoint    oauth2.Endpoint
	APIEndpoint string
	HTTPClient  *http.Client
}

// GoogleOAuthProvider authenticates users with Google and reads their
// userinfo profile.
type GoogleOAuthProvider struct {
	oauth       *oauth2.Config
	apiEndpoint string
	httpClient  *http.Client
}

// NewGoogleOAuthProvider creates a Google authenticator.
func NewGoogleOAuthProvider(cfg GoogleConfig) *GoogleOAuthProvider {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultGoogleScopes
	}

	return &GoogleOAuthProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		apiEndpoint: cfg.APIEndpoint,
		httpClient:  newHTTPClient(cfg.HTTPClient),
	}
}

func (p *GoogleOAuthProvider) Begin(_ context.Context, state string) (BeginResult, error) {
	return BeginResult{URL: p.oauth.AuthCodeURL(state), Key: state}, nil
}

func (p *GoogleOAuthProvider) CallbackKey(query url.Values) string {
	return query.Get("state")
}

func (p *GoogleOAuthProvider) Complete(ctx context.Context, params CallbackParams) (*Identity, error) {
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
		return nil, fmt.Errorf("exchange google code: %w", err)
	}

	opts := []option.ClientOption{option.WithHTTPClient(p.oauth.Client(ctx, token))}
	if p.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(p.apiEndpoint))
	}

	oauth2Service, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	if err := p.validateAudience(ctx, oauth2Service, token.AccessToken); err != nil {
		return nil, err
	}

	userInfo, err := oauth2Service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch google userinfo: %w", err)
	}

	return parseGoogleUserinfo(userInfo)
}

// validateAudience rejects access tokens that were not issued to this client.
func (p *GoogleOAuthProvider) validateAudience(ctx context.Context, svc *googleoauth2.Service, accessToken string) error {
	tokenInfo, err := svc.Tokeninfo().AccessToken(accessToken).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("google tokeninfo: %w", err)
	}

	if tokenInfo.Audience != p.oauth.ClientID && tokenInfo.IssuedTo != p.oauth.ClientID {
		return ErrInvalidGoogleAudience
	}

	return nil
}

func parseGoogleUserinfo(info *googleoauth2.Userinfo) (*Identity, error) {
	encoded, err := json.Marshal(info)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(encoded, &raw); err != nil {
		return nil, err
	}

	return &Identity{
		ID:          info.Id,
		DisplayName: info.Name,
		Emails:      nonEmpty(info.Email),
		Photos:      nonEmpty(info.Picture),
		Raw:         raw,
	}, nil
}
