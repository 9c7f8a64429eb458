// Package config loads server settings from an optional YAML file, an
// optional .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Port string
	Env  string

	AllowedOrigins []string

	JWTSecret  string
	SessionTTL time.Duration

	// MongoDB is optional; without it cafes are read from CafesFile.
	MongoURI      string
	MongoDatabase string

	// Redis is optional; without it sessions and the geo index stay in memory.
	RedisAddr string
	RedisDB   int

	CafesFile string

	// AdminKeyHash is a bcrypt hash of the key accepted by /admin endpoints.
	// Admin endpoints are disabled when empty.
	AdminKeyHash string

	DefaultCenterLng float64
	DefaultCenterLat float64
	NearbyRadiusKm   float64
}

const (
	DefaultPort           = "8080"
	DefaultEnv            = "development"
	DefaultSessionTTL     = 24 * time.Hour
	DefaultMongoDatabase  = "cafe_db"
	DefaultCafesFile      = "./data/cafes.json"
	DefaultCenterLng      = 73.8567 // Pune
	DefaultCenterLat      = 18.5204
	DefaultNearbyRadiusKm = 3.0
)

var DefaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Load builds the configuration. configFilePath may be empty. Every problem
// found is returned so they can be reported together.
func Load(configFilePath string) (*Config, []error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment only")
	}

	k := koanf.New(".")
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	var errs []error

	redisDB, err := envInt("REDIS_DB", k, "redis_db", 0)
	if err != nil {
		errs = append(errs, err)
	}
	sessionTTL, err := envDuration("SESSION_TTL", k, "session_ttl", DefaultSessionTTL)
	if err != nil {
		errs = append(errs, err)
	}
	centerLng, err := envFloat("DEFAULT_CENTER_LNG", k, "default_center_lng", DefaultCenterLng)
	if err != nil {
		errs = append(errs, err)
	}
	centerLat, err := envFloat("DEFAULT_CENTER_LAT", k, "default_center_lat", DefaultCenterLat)
	if err != nil {
		errs = append(errs, err)
	}
	radius, err := envFloat("NEARBY_RADIUS_KM", k, "nearby_radius_km", DefaultNearbyRadiusKm)
	if err != nil {
		errs = append(errs, err)
	}

	cfg := &Config{
		Port:             envString("PORT", k, "port", DefaultPort),
		Env:              envString("ENV", k, "env", DefaultEnv),
		AllowedOrigins:   envList("ALLOWED_ORIGINS", k, "allowed_origins", DefaultAllowedOrigins),
		JWTSecret:        envString("JWT_SECRET", k, "jwt_secret", ""),
		SessionTTL:       sessionTTL,
		MongoURI:         envString("MONGODB_URI", k, "mongodb_uri", ""),
		MongoDatabase:    envString("MONGODB_DATABASE", k, "mongodb_database", DefaultMongoDatabase),
		RedisAddr:        envString("REDIS_ADDR", k, "redis_addr", ""),
		RedisDB:          redisDB,
		CafesFile:        envString("CAFES_FILE", k, "cafes_file", DefaultCafesFile),
		AdminKeyHash:     envString("ADMIN_KEY_HASH", k, "admin_key_hash", ""),
		DefaultCenterLng: centerLng,
		DefaultCenterLat: centerLat,
		NearbyRadiusKm:   radius,
	}

	errs = append(errs, cfg.Validate()...)
	return cfg, errs
}

// Validate reports missing or out-of-range settings.
func (c *Config) Validate() []error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if c.NearbyRadiusKm <= 0 {
		errs = append(errs, fmt.Errorf("NEARBY_RADIUS_KM must be positive, got %v", c.NearbyRadiusKm))
	}
	return errs
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func envString(name string, k *koanf.Koanf, key, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	if v := k.String(key); v != "" {
		return v
	}
	return def
}

func envList(name string, k *koanf.Koanf, key string, def []string) []string {
	if v := os.Getenv(name); v != "" {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	if k.Exists(key) {
		return k.Strings(key)
	}
	return def
}

func envInt(name string, k *koanf.Koanf, key string, def int) (int, error) {
	if v := os.Getenv(name); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return def, fmt.Errorf("%s must be an integer: %w", name, err)
		}
		return n, nil
	}
	if k.Exists(key) {
		return k.Int(key), nil
	}
	return def, nil
}

func envFloat(name string, k *koanf.Koanf, key string, def float64) (float64, error) {
	if v := os.Getenv(name); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return def, fmt.Errorf("%s must be a number: %w", name, err)
		}
		return f, nil
	}
	if k.Exists(key) {
		return k.Float64(key), nil
	}
	return def, nil
}

func envDuration(name string, k *koanf.Koanf, key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" && k.Exists(key) {
		raw = k.String(key)
	}
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s must be a duration like 24h: %w", name, err)
	}
	return d, nil
}
