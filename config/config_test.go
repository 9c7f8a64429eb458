package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT", "ENV", "ALLOWED_ORIGINS", "JWT_SECRET", "SESSION_TTL",
		"MONGODB_URI", "MONGODB_DATABASE", "REDIS_ADDR", "REDIS_DB",
		"CAFES_FILE", "ADMIN_KEY_HASH", "DEFAULT_CENTER_LNG",
		"DEFAULT_CENTER_LAT", "NEARBY_RADIUS_KM",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, errs := Load("")
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}

	if cfg.Port != DefaultPort {
		t.Errorf("Expected port %s, got %s", DefaultPort, cfg.Port)
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("Expected TTL %s, got %s", DefaultSessionTTL, cfg.SessionTTL)
	}
	if cfg.DefaultCenterLng != 73.8567 || cfg.DefaultCenterLat != 18.5204 {
		t.Errorf("Expected Pune as default center, got %v,%v", cfg.DefaultCenterLng, cfg.DefaultCenterLat)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, DefaultAllowedOrigins) {
		t.Errorf("Unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.Addr())
	}
}

func TestLoadMissingSecret(t *testing.T) {
	clearEnv(t)

	_, errs := Load("")
	found := false
	for _, err := range errs {
		if errors.Is(err, ErrMissingJWTSecret) {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected ErrMissingJWTSecret, got %v", errs)
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
port: "9090"
jwt_secret: from-file
session_ttl: 2h
redis_addr: redis:6379
redis_db: 3
nearby_radius_km: 1.5
allowed_origins:
  - https://cafes.example.com
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, errs := Load(path)
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}

	if cfg.Port != "7070" {
		t.Errorf("Expected env to override port, got %s", cfg.Port)
	}
	if cfg.JWTSecret != "from-file" {
		t.Errorf("Expected secret from file, got %q", cfg.JWTSecret)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("Expected 2h TTL, got %s", cfg.SessionTTL)
	}
	if cfg.RedisAddr != "redis:6379" || cfg.RedisDB != 3 {
		t.Errorf("Unexpected redis settings: %s/%d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.NearbyRadiusKm != 1.5 {
		t.Errorf("Expected radius 1.5, got %v", cfg.NearbyRadiusKm)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("Expected %v, got %v", want, cfg.AllowedOrigins)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_DB", "zero")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("NEARBY_RADIUS_KM", "-1")

	_, errs := Load("")
	if len(errs) != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", len(errs), errs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, errs := Load(filepath.Join(t.TempDir(), "nope.yaml")); len(errs) != 1 {
		t.Errorf("Expected a single load error, got %v", errs)
	}
}
