package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/siwic-api/shared/mailer"
)

// AuthServiceConfig holds the configuration of the auth service.
type AuthServiceConfig struct {
	Port          int    `env:"PORT"           envDefault:"5000"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`
	PostbackURL   string `env:"POSTBACK_URL"   envDefault:"http://localhost:3000/userProfile"`

	Mongo     MongoConfig
	Session   SessionConfig
	Facebook  FacebookConfig
	Google    GoogleConfig
	Twitter   TwitterConfig
	Worker    WorkerConfig
	Log       LogConfig
	Discovery DiscoveryConfig
	Mail      mailer.Config

	OAuthStateTTL time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
}

type MongoConfig struct {
	URI    string `env:"MONGO_URI"`
	DBName string `env:"DB_NAME"   envDefault:"siwic"`
}

// SessionConfig configures the signed session cookie.
type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET"`
	CookieName   string        `env:"SESSION_COOKIE_NAME"   envDefault:"siwic_session"`
	TTL          time.Duration `env:"SESSION_TTL"           envDefault:"24h"`
	Issuer       string        `env:"SESSION_ISSUER"        envDefault:"siwic-auth"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

type FacebookConfig struct {
	AppID       string `env:"FACEBOOK_APP_ID"`
	AppSecret   string `env:"FACEBOOK_APP_SECRET"`
	CallbackURL string `env:"FACEBOOK_CALLBACK_URL"`
}

// Enabled reports whether Facebook login is configured.
func (c FacebookConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != ""
}

type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	CallbackURL  string `env:"GOOGLE_CALLBACK_URL"`
}

// Enabled reports whether Google login is configured.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type TwitterConfig struct {
	APIKey       string `env:"TWITTER_API_KEY"`
	APIKeySecret string `env:"TWITTER_API_KEY_SECRET"`
	CallbackURL  string `env:"TWITTER_CALLBACK_URL"`

	// BearerToken enables profile enrichment after login.
	BearerToken string `env:"TWITTER_BEARER_TOKEN"`
}

// Enabled reports whether Twitter login is configured.
func (c TwitterConfig) Enabled() bool {
	return c.APIKey != "" && c.APIKeySecret != ""
}

type WorkerConfig struct {
	Count     int `env:"WORKER_COUNT"      envDefault:"4"`
	QueueSize int `env:"WORKER_QUEUE_SIZE" envDefault:"256"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// DiscoveryConfig configures optional Consul registration and the gRPC
// health endpoint. Both are off when their address or port is unset.
type DiscoveryConfig struct {
	ConsulAddress  string `env:"CONSUL_ADDRESS"`
	ServiceName    string `env:"SERVICE_NAME"     envDefault:"auth-service"`
	ServiceHost    string `env:"SERVICE_HOST"     envDefault:"localhost"`
	GRPCHealthPort int    `env:"GRPC_HEALTH_PORT"`
}

// NewAuthServiceConfig loads the configuration from environment variables
// and exits the process when it is invalid.
func NewAuthServiceConfig(logger *zerolog.Logger) *AuthServiceConfig {
	cfg, err := Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load auth service configuration")
	}

	return cfg
}

// Load parses and validates the configuration from environment variables.
func Load() (*AuthServiceConfig, error) {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AuthServiceConfig) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("missing SESSION_SECRET environment variable")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.OAuthStateTTL <= 0 {
		return fmt.Errorf("OAUTH_STATE_TTL must be positive")
	}
	if c.Worker.Count <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	if c.Worker.QueueSize < 0 {
		return fmt.Errorf("WORKER_QUEUE_SIZE must not be negative")
	}
	if c.Mail.Enabled() {
		if err := c.Mail.Validate(); err != nil {
			return err
		}
	}
	if c.PostbackURL != "" {
		if _, err := url.ParseRequestURI(c.PostbackURL); err != nil {
			return fmt.Errorf("invalid POSTBACK_URL: %w", err)
		}
	}
	if c.Facebook.Enabled() && c.Facebook.CallbackURL == "" {
		return fmt.Errorf("missing FACEBOOK_CALLBACK_URL environment variable")
	}
	if c.Google.Enabled() && c.Google.CallbackURL == "" {
		return fmt.Errorf("missing GOOGLE_CALLBACK_URL environment variable")
	}
	if c.Twitter.Enabled() && c.Twitter.CallbackURL == "" {
		return fmt.Errorf("missing TWITTER_CALLBACK_URL environment variable")
	}

	return nil
}
