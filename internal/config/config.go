package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/garnizeh/campus/pkg/ollama"
)

// DefaultJWTSecret is only accepted when CAMPUS_ENV=development.
const DefaultJWTSecret = "supersecretkey"

// EnvPrefix namespaces every environment variable read by LoadConfig.
const EnvPrefix = "CAMPUS_"

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	Addr          string        `yaml:"addr" env:"ADDR" envDefault:":8080"`
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET" envDefault:"supersecretkey"`
	APITimeout    time.Duration `yaml:"timeout" env:"TIMEOUT" envDefault:"15s"`
	DatabasePath  string        `yaml:"database_path" env:"DATABASE_PATH" envDefault:"campus.db"`
	TokenDuration time.Duration `yaml:"token_duration" env:"TOKEN_DURATION" envDefault:"1h"`
	// Store selects the entity store: sqlite or memory.
	Store    string `yaml:"store" env:"STORE" envDefault:"sqlite"`
	Workers  int    `yaml:"workers" env:"WORKERS" envDefault:"2"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" envDefault:"info"`
	// Seed loads the demo users and projects at startup.
	Seed bool `yaml:"seed" env:"SEED"`

	EngineConfig EngineConfig  `yaml:"engine" envPrefix:"ENGINE_"`
	Ollama       ollama.Config `yaml:"ollama" envPrefix:"OLLAMA_"`
}

// EngineConfig controls the generative model used for ideas and mentor
// matching. With Enabled=false every request is answered by the heuristics.
type EngineConfig struct {
	Enabled     bool          `yaml:"enabled" env:"ENABLED" envDefault:"true"`
	Model       string        `yaml:"model" env:"MODEL" envDefault:"llama3.1:8b"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT" envDefault:"20s"`
	Temperature float64       `yaml:"temperature" env:"TEMPERATURE" envDefault:"0.7"`
}

// LoadConfig builds the configuration from, in increasing precedence:
// defaults, a .env file in the working directory, CAMPUS_* environment
// variables and the YAML file at path (skipped when path is empty).
func LoadConfig(path string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg := &Config{Ollama: ollama.DefaultConfig()}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether CAMPUS_ENV is set to development.
func IsDevelopment() bool {
	return os.Getenv(EnvPrefix+"ENV") == "development"
}

// Validate checks the configuration and fills the defaults a hand-built
// Config may lack.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == DefaultJWTSecret && !IsDevelopment() {
		return errors.New("jwt_secret uses the built-in default; set CAMPUS_JWT_SECRET or CAMPUS_ENV=development")
	}

	switch c.Store {
	case "":
		c.Store = StoreSQLite
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreSQLite, StoreMemory)
	}
	if c.Store == StoreSQLite && c.DatabasePath == "" {
		return errors.New("database_path is required for the sqlite store")
	}

	if c.EngineConfig.Enabled && c.EngineConfig.Model == "" {
		return errors.New("engine.model is required when the engine is enabled")
	}
	if c.EngineConfig.Timeout <= 0 {
		c.EngineConfig.Timeout = 20 * time.Second
	}

	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = time.Hour
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}

	c.Ollama = c.Ollama.WithDefaults()
	return nil
}
