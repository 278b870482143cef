// Package config loads the service configuration from a YAML file, a .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// PathEnv names the environment variable holding the config file path.
	PathEnv = "MATCHMAKER_CONFIG"

	StoreFile     = "file"
	StorePostgres = "postgres"
)

// DefaultPath is used when PathEnv is unset.
var DefaultPath = filepath.Join("internal", "matchmaker", "config", "config.yaml")

// Config struct for YAML configuration. Every key can be overridden by an
// environment variable of the same name.
type Config struct {
	GRPCPort int `yaml:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT"`

	// Store selects the shard store: "file" or "postgres".
	Store   string `yaml:"STORE"`
	DataDir string `yaml:"DATA_DIR"`
	// SeedDB imports DataDir into an empty postgres store on startup.
	SeedDB bool `yaml:"SEED_DB"`

	DBHost     string `yaml:"DB_HOST"`
	DBPort     int    `yaml:"DB_PORT"`
	DBUser     string `yaml:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`

	// Empty KafkaBrokers disables events.
	KafkaBrokers []string `yaml:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC"`
	ReplicaID    string   `yaml:"REPLICA_ID"`

	// Empty RedisURL disables the recommendation cache.
	RedisURL string        `yaml:"REDIS_URL"`
	CacheTTL time.Duration `yaml:"CACHE_TTL"`

	ReloadInterval time.Duration `yaml:"RELOAD_INTERVAL"`
	// RateLimit is the allowed recommendation requests per second; 0 disables limiting.
	RateLimit float64 `yaml:"RATE_LIMIT"`
	RateBurst int     `yaml:"RATE_BURST"`

	JWTSecret      string        `yaml:"JWT_SECRET"`
	StartupTimeout time.Duration `yaml:"STARTUP_TIMEOUT"`
}

// Default returns the configuration used for unset keys.
func Default() Config {
	return Config{
		GRPCPort:       50051,
		HTTPPort:       8080,
		Store:          StoreFile,
		DataDir:        filepath.Join("data", "companies"),
		DBPort:         5432,
		DBSSLMode:      "disable",
		Topic:          "matchmaker.catalog",
		CacheTTL:       10 * time.Minute,
		ReloadInterval: 5 * time.Minute,
		RateBurst:      20,
		StartupTimeout: 30 * time.Second,
	}
}

// Load reads the configuration. The file at PathEnv (or DefaultPath) is
// optional only when PathEnv is unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	path, explicit := os.LookupEnv(PathEnv)
	if !explicit {
		path = DefaultPath
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		d := Default()
		cfg, err = &d, nil
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML file on top of Default.
func LoadFile(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.GRPCPort <= 0 || c.HTTPPort <= 0:
		return errors.New("GRPC_PORT and HTTP_PORT must be positive")
	case c.GRPCPort == c.HTTPPort:
		return errors.New("GRPC_PORT and HTTP_PORT must differ")
	case c.Store != StoreFile && c.Store != StorePostgres:
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreFile, StorePostgres, c.Store)
	case c.Store == StoreFile && c.DataDir == "":
		return errors.New("DATA_DIR is required for the file store")
	case c.Store == StorePostgres && (c.DBHost == "" || c.DBName == ""):
		return errors.New("DB_HOST and DB_NAME are required for the postgres store")
	case len(c.KafkaBrokers) > 0 && c.Topic == "":
		return errors.New("TOPIC is required when KAFKA_BROKERS is set")
	case c.ReloadInterval < time.Second:
		return errors.New("RELOAD_INTERVAL must be at least 1s")
	case c.RateLimit < 0 || c.RateBurst < 0:
		return errors.New("RATE_LIMIT and RATE_BURST must not be negative")
	case c.JWTSecret == "":
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// EventsEnabled reports whether Kafka is configured.
func (c *Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

// CacheEnabled reports whether Redis is configured.
func (c *Config) CacheEnabled() bool { return c.RedisURL != "" }

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	setters := map[string]func(string) error{
		"GRPC_PORT":       intSetter(&c.GRPCPort),
		"HTTP_PORT":       intSetter(&c.HTTPPort),
		"STORE":           stringSetter(&c.Store),
		"DATA_DIR":        stringSetter(&c.DataDir),
		"SEED_DB":         boolSetter(&c.SeedDB),
		"DB_HOST":         stringSetter(&c.DBHost),
		"DB_PORT":         intSetter(&c.DBPort),
		"DB_USER":         stringSetter(&c.DBUser),
		"DB_PASSWORD":     stringSetter(&c.DBPassword),
		"DB_NAME":         stringSetter(&c.DBName),
		"DB_SSLMODE":      stringSetter(&c.DBSSLMode),
		"KAFKA_BROKERS":   listSetter(&c.KafkaBrokers),
		"TOPIC":           stringSetter(&c.Topic),
		"REPLICA_ID":      stringSetter(&c.ReplicaID),
		"REDIS_URL":       stringSetter(&c.RedisURL),
		"CACHE_TTL":       durationSetter(&c.CacheTTL),
		"RELOAD_INTERVAL": durationSetter(&c.ReloadInterval),
		"RATE_LIMIT":      floatSetter(&c.RateLimit),
		"RATE_BURST":      intSetter(&c.RateBurst),
		"JWT_SECRET":      stringSetter(&c.JWTSecret),
		"STARTUP_TIMEOUT": durationSetter(&c.StartupTimeout),
	}
	for key, set := range setters {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		if err := set(strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}

func stringSetter(dst *string) func(string) error {
	return func(v string) error { *dst = v; return nil }
}

func intSetter(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func floatSetter(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func boolSetter(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func durationSetter(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

// listSetter splits a comma separated list, dropping blanks.
func listSetter(dst *[]string) func(string) error {
	return func(v string) error {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*dst = out
		return nil
	}
}
