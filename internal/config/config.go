package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Session  SessionConfig
	OAuth    OAuthConfig
	Storage  StorageConfig
	Upload   UploadConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	FrontendURL    string
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host          string
	Port          string
	Namespace     string
	Database      string
	User          string
	Password      string
	MigrationsDir string
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	LinkStateTTL time.Duration
	Issuer       string
}

// SessionConfig holds server-side session settings
type SessionConfig struct {
	TTL           time.Duration
	TouchInterval time.Duration
}

// OAuthConfig holds OAuth provider settings
type OAuthConfig struct {
	Google GoogleOAuthConfig
}

// GoogleOAuthConfig holds Google OAuth settings
type GoogleOAuthConfig struct {
	ClientID          string
	ClientSecret      string
	RedirectURI       string
	UpdateRedirectURI string
}

// StorageConfig holds object storage settings
type StorageConfig struct {
	Bucket     string
	Region     string
	CDNBaseURL string
}

// UploadConfig bounds incoming image uploads
type UploadConfig struct {
	MaxFiles    int
	MaxFileSize int64
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "8000"),
			Namespace:     getEnv("DB_NAMESPACE", "fallguys"),
			Database:      getEnv("DB_DATABASE", "main"),
			User:          getEnv("DB_USER", "root"),
			Password:      getEnv("DB_PASSWORD", "root"),
			MigrationsDir: getEnv("DB_MIGRATIONS_DIR", "migrations"),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET_KEY", ""),
			TokenTTL:     getDurationEnv("JWT_TOKEN_TTL", time.Hour),
			LinkStateTTL: getDurationEnv("JWT_LINK_STATE_TTL", time.Hour),
			Issuer:       getEnv("JWT_ISSUER", "fall-guys-maps"),
		},
		Session: SessionConfig{
			TTL:           getDurationEnv("SESSION_TTL", 14*24*time.Hour),
			TouchInterval: getDurationEnv("SESSION_TOUCH_INTERVAL", 24*time.Hour),
		},
		OAuth: OAuthConfig{
			Google: GoogleOAuthConfig{
				ClientID:          getEnv("GOOGLE_CLIENT_ID", ""),
				ClientSecret:      getEnv("GOOGLE_CLIENT_SECRET", ""),
				RedirectURI:       getEnv("GOOGLE_REDIRECT_URI", ""),
				UpdateRedirectURI: getEnv("GOOGLE_UPDATE_REDIRECT_URI", ""),
			},
		},
		Storage: StorageConfig{
			Bucket:     getEnv("BUCKET_NAME", ""),
			Region:     getEnv("BUCKET_REGION", ""),
			CDNBaseURL: getEnv("CLOUDFRONT_DOMAIN", ""),
		},
		Upload: UploadConfig{
			MaxFiles:    getIntEnv("UPLOAD_MAX_FILES", 3),
			MaxFileSize: int64(getIntEnv("UPLOAD_MAX_FILE_BYTES", 1<<20)),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}
	if c.Server.FrontendURL == "" {
		errs = append(errs, errors.New("FRONTEND_URL is required"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// Token signing validation
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TOKEN_TTL must be positive"))
	}
	if c.Auth.LinkStateTTL <= 0 {
		errs = append(errs, errors.New("JWT_LINK_STATE_TTL must be positive"))
	}

	// Session validation
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Session.TouchInterval <= 0 || c.Session.TouchInterval >= c.Session.TTL {
		errs = append(errs, errors.New("SESSION_TOUCH_INTERVAL must be positive and shorter than SESSION_TTL"))
	}

	// OAuth validation - login is the only way in, so Google must be configured
	if err := c.OAuth.Google.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("Google OAuth: %w", err))
	}

	// Storage validation
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("BUCKET_NAME is required"))
	}
	if c.Storage.Region == "" {
		errs = append(errs, errors.New("BUCKET_REGION is required"))
	}
	if c.Storage.CDNBaseURL == "" {
		errs = append(errs, errors.New("CLOUDFRONT_DOMAIN is required"))
	}

	// Upload validation
	if c.Upload.MaxFiles <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_FILES must be positive"))
	}
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_FILE_BYTES must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// IsConfigured returns true if any Google OAuth field is set
func (g GoogleOAuthConfig) IsConfigured() bool {
	return g.ClientID != "" || g.ClientSecret != "" || g.RedirectURI != ""
}

// Validate checks that all required Google OAuth fields are present
func (g GoogleOAuthConfig) Validate() error {
	var missing []string
	if g.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if g.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if g.RedirectURI == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URI")
	}
	if g.UpdateRedirectURI == "" {
		missing = append(missing, "GOOGLE_UPDATE_REDIRECT_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
