package config

import (
	"strings"
	"testing"
	"time"
)

func validBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Env:            "development",
			AllowedOrigins: []string{"http://localhost:3000"},
			FrontendURL:    "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "fallguys",
			Database:  "main",
		},
		Auth: AuthConfig{
			JWTSecret:    "test-secret",
			TokenTTL:     time.Hour,
			LinkStateTTL: time.Hour,
			Issuer:       "fall-guys-maps",
		},
		Session: SessionConfig{
			TTL:           14 * 24 * time.Hour,
			TouchInterval: 24 * time.Hour,
		},
		OAuth: OAuthConfig{
			Google: GoogleOAuthConfig{
				ClientID:          "client-id",
				ClientSecret:      "client-secret",
				RedirectURI:       "http://localhost:8080/api/public/user/auth/google/redirect",
				UpdateRedirectURI: "http://localhost:8080/api/user/auth/google/update/redirect",
			},
		},
		Storage: StorageConfig{
			Bucket:     "maps-bucket",
			Region:     "eu-central-1",
			CDNBaseURL: "https://cdn.example.com",
		},
		Upload: UploadConfig{
			MaxFiles:    3,
			MaxFileSize: 1 << 20,
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	cfg := validBaseConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidServerEnv(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Env = "invalid"

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for invalid SERVER_ENV")
	}
	if !strings.Contains(err.Error(), "SERVER_ENV") {
		t.Errorf("expected error to mention SERVER_ENV, got: %v", err)
	}
}

func TestConfig_Validate_MissingPort(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Port = ""

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for missing SERVER_PORT")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected error to mention SERVER_PORT, got: %v", err)
	}
}

func TestConfig_Validate_MissingJWTSecret(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Auth.JWTSecret = ""

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for missing JWT_SECRET_KEY")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET_KEY") {
		t.Errorf("expected error to mention JWT_SECRET_KEY, got: %v", err)
	}
}

func TestConfig_Validate_TouchIntervalLongerThanTTL(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Session.TouchInterval = cfg.Session.TTL + time.Hour

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for touch interval exceeding session TTL")
	}
	if !strings.Contains(err.Error(), "SESSION_TOUCH_INTERVAL") {
		t.Errorf("expected error to mention SESSION_TOUCH_INTERVAL, got: %v", err)
	}
}

func TestConfig_Validate_IncompleteGoogleOAuth(t *testing.T) {
	cfg := validBaseConfig()
	cfg.OAuth.Google.ClientSecret = ""

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for incomplete Google OAuth config")
	}
	if !strings.Contains(err.Error(), "GOOGLE_CLIENT_SECRET") {
		t.Errorf("expected error to mention GOOGLE_CLIENT_SECRET, got: %v", err)
	}
}

func TestConfig_Validate_MissingStorage(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Storage.Bucket = ""
	cfg.Storage.CDNBaseURL = ""

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for missing storage config")
	}
	if !strings.Contains(err.Error(), "BUCKET_NAME") {
		t.Errorf("expected error to mention BUCKET_NAME, got: %v", err)
	}
	if !strings.Contains(err.Error(), "CLOUDFRONT_DOMAIN") {
		t.Errorf("expected error to mention CLOUDFRONT_DOMAIN, got: %v", err)
	}
}

func TestConfig_Validate_CollectsMultipleErrors(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Port = ""
	cfg.Database.Host = ""
	cfg.Auth.JWTSecret = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for multiple invalid fields")
	}
	for _, want := range []string{"SERVER_PORT", "DB_HOST", "JWT_SECRET_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got: %v", want, err)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := validBaseConfig()
	if cfg.IsProduction() {
		t.Error("development config should not report production")
	}

	cfg.Server.Env = "production"
	if !cfg.IsProduction() {
		t.Error("production config should report production")
	}
}
