package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the immutable process configuration, loaded once at startup
// and injected into every component. No package reads the environment
// on its own.
type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"3330"`

	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"auth"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET"`

	// TTLs are configured in seconds, matching the token expiry claims.
	AccessTokenTTL  int `env:"ACCESS_TOKEN_TTL" envDefault:"3600"`
	RefreshTokenTTL int `env:"REFRESH_TOKEN_TTL" envDefault:"604800"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	MailFrom        string `env:"MAIL_FROM" envDefault:"noreply@localhost"`
	MailProductName string `env:"MAIL_PRODUCT_NAME" envDefault:"auth-service"`
	MailProductURL  string `env:"MAIL_PRODUCT_URL" envDefault:"http://localhost:3330/"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.AccessTokenSecret == "" {
		return errors.New("config: ACCESS_TOKEN_SECRET is required")
	}
	if c.RefreshTokenSecret == "" {
		return errors.New("config: REFRESH_TOKEN_SECRET is required")
	}
	// Distinct secrets keep an access token from ever verifying as a
	// refresh token and vice versa.
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("config: access and refresh secrets must differ")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	return nil
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenTTL) * time.Second
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTL) * time.Second
}
