package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Local session token signing. All four values are required; the server
	// refuses to start without them (Validate).
	JWTSecretKey             string `mapstructure:"JWT_SECRET_KEY"`
	JWTAlgorithm             string `mapstructure:"JWT_ALGORITHM"`
	AccessTokenExpireMinutes int    `mapstructure:"JWT_ACCESS_TOKEN_EXPIRE_MINUTES"`
	RefreshTokenExpireDays   int    `mapstructure:"JWT_REFRESH_TOKEN_EXPIRE_DAYS"`

	// External identity provider (Firebase-style). Tokens are verified against
	// the provider's published JWKS; FirebaseJWKSURL overrides the default
	// Google securetoken endpoint for testing.
	FirebaseProjectID string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseJWKSURL   string `mapstructure:"FIREBASE_JWKS_URL"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", 15)
	v.SetDefault("JWT_REFRESH_TOKEN_EXPIRE_DAYS", 7)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("JWT_SECRET_KEY")
	v.BindEnv("JWT_ALGORITHM")
	v.BindEnv("JWT_ACCESS_TOKEN_EXPIRE_MINUTES")
	v.BindEnv("JWT_REFRESH_TOKEN_EXPIRE_DAYS")
	v.BindEnv("FIREBASE_PROJECT_ID")
	v.BindEnv("FIREBASE_JWKS_URL")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: server is running in DEVELOPMENT mode (ENV=development).")
		if cfg.FirebaseProjectID == "" {
			log.Println("WARNING: FIREBASE_PROJECT_ID is empty; provider sign-in is unavailable until it is set.")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. The token service
// cannot operate half-configured, so every signing parameter is required up
// front rather than surfacing on the first request.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.JWTAlgorithm == "" {
		return fmt.Errorf("JWT_ALGORITHM is required")
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("JWT_ALGORITHM must be one of HS256, HS384, HS512, got %q", c.JWTAlgorithm)
	}
	if c.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessTokenExpireMinutes)
	}
	if c.RefreshTokenExpireDays <= 0 {
		return fmt.Errorf("JWT_REFRESH_TOKEN_EXPIRE_DAYS must be positive, got %d", c.RefreshTokenExpireDays)
	}
	if !c.IsDev() && c.FirebaseProjectID == "" {
		return fmt.Errorf(
			"FIREBASE_PROJECT_ID must be set when ENV is not \"development\" (current ENV=%q). "+
				"Refusing to start without external identity provider configuration", c.Env)
	}
	return nil
}
