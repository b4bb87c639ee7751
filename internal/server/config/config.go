// Package config resolves server settings from the environment, an optional .env file
// and command-line flags, in increasing order of precedence.
package config

import (
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DevJWTSecret is the fixed secret used in dev mode so tokens survive restarts
const DevJWTSecret = "dev-secret-minimum-32-characters-long"

const minSecretLength = 32

// Config holds the resolved server settings
type Config struct {
	APIHost      string        `env:"CHARFORGE_API_HOST" envDefault:"localhost"`
	APIPort      int           `env:"CHARFORGE_API_PORT" envDefault:"8080"`
	Dev          bool          `env:"CHARFORGE_DEV" envDefault:"false"`
	StoragePath  string        `env:"CHARFORGE_STORAGE_PATH"`
	PIDPath      string        `env:"CHARFORGE_PID"`
	PIDLock      bool          `env:"CHARFORGE_PID_LOCK" envDefault:"false"`
	JWTSecret    string        `env:"CHARFORGE_JWT_SECRET"`
	PollInterval time.Duration `env:"CHARFORGE_POLL_INTERVAL" envDefault:"25s"`
	EnvFile      string        `env:"-"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses args, loads the env file named by -env-file (default .env, missing is fine),
// reads the environment and finally applies any flags that were explicitly set.
func Load(name string, args []string) (Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var (
		apiHost      = fs.String("api-host", "localhost", "API server host")
		apiPort      = fs.Int("api-port", 8080, "API server port")
		dev          = fs.Bool("dev", false, "Development mode (relaxed rate limits, fixed JWT secret)")
		storagePath  = fs.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		pidPath      = fs.String("pid", "", "Optional path to write PID file")
		pidLock      = fs.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
		envFile      = fs.String("env-file", ".env", "Optional dotenv file loaded before reading the environment")
		jwtSecret    = fs.String("jwt-secret", "", "HS256 signing secret (random per start if empty outside dev mode)")
		pollInterval = fs.Duration("poll-interval", 25*time.Second, "Maximum wait for moderator roll long-polls")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.EnvFile = *envFile

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api-host":
			cfg.APIHost = *apiHost
		case "api-port":
			cfg.APIPort = *apiPort
		case "dev":
			cfg.Dev = *dev
		case "storage-path":
			cfg.StoragePath = *storagePath
		case "pid":
			cfg.PIDPath = *pidPath
		case "pid-lock":
			cfg.PIDLock = *pidLock
		case "jwt-secret":
			cfg.JWTSecret = *jwtSecret
		case "poll-interval":
			cfg.PollInterval = *pollInterval
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	if c.PIDLock && c.PIDPath == "" {
		return errors.New("-pid-lock flag requires the -pid flag to be set")
	}
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("api port out of range: %d", c.APIPort)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive: %s", c.PollInterval)
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	return nil
}

// Addr returns host:port for the API listener
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// Secret returns the configured JWT secret, the fixed dev secret, or 32 fresh random bytes
func (c Config) Secret() ([]byte, error) {
	switch {
	case c.JWTSecret != "":
		return []byte(c.JWTSecret), nil
	case c.Dev:
		return []byte(DevJWTSecret), nil
	}
	secret := make([]byte, minSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate jwt secret: %w", err)
	}
	return secret, nil
}
