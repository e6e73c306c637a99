package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultGitHubAPIURL = "https://api.github.com"
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 8000
	DefaultLogLevel     = "info"
)

// Config holds process settings read from the environment.
type Config struct {
	GitHubToken     string
	GitHubAPIURL    string
	Host            string
	Port            int
	LogLevel        string
	UpstreamTimeout time.Duration
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (Config, error) {
	cfg := Config{
		GitHubToken:  os.Getenv("GITHUB_TOKEN"),
		GitHubAPIURL: getenv("GITHUB_API_URL", DefaultGitHubAPIURL),
		Host:         getenv("HOST", DefaultHost),
		Port:         DefaultPort,
		LogLevel:     getenv("LOG_LEVEL", DefaultLogLevel),
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: %w", v, err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: must not be negative", v)
		}
		cfg.UpstreamTimeout = d
	}

	return cfg, nil
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
