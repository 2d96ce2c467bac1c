package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "pnregistry-dbinit/internal/shared/errors"

	"github.com/caarlos0/env/v6"
)

// DefaultRetrySeconds is used when RETRY_CONNECTION_SECONDS is unset, not a
// number, or not positive.
const DefaultRetrySeconds = 5

// MaxRetrySeconds is the largest interval a time.Duration can hold
const MaxRetrySeconds = math.MaxInt64 / int64(time.Second)

// RetrySeconds is the connection retry interval in whole seconds. It never
// fails to parse: unusable input falls back to DefaultRetrySeconds.
type RetrySeconds int

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (r *RetrySeconds) UnmarshalText(text []byte) error {
	*r = RetrySeconds(ParseRetrySeconds(string(text)))
	return nil
}

// Duration returns the interval as a time.Duration
func (r RetrySeconds) Duration() time.Duration {
	return time.Duration(r) * time.Second
}

// ParseRetrySeconds reads the leading integer of raw (surrounding whitespace
// and a sign allowed, trailing garbage ignored, so "7s" is 7). Anything that
// does not yield a positive integer up to MaxRetrySeconds returns
// DefaultRetrySeconds.
func ParseRetrySeconds(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return DefaultRetrySeconds
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 || int64(n) > MaxRetrySeconds {
		return DefaultRetrySeconds
	}
	return n
}

// ConnectionConfig holds the MongoDB connection parameters and the target
// database and collection. Immutable for the run.
type ConnectionConfig struct {
	Host         string       `env:"PN_REGISTRY_API_MONGODB_HOST" envDefault:"localhost"`
	Port         string       `env:"PN_REGISTRY_API_MONGODB_PORT" envDefault:"27017"`
	Username     string       `env:"PN_REGISTRY_API_MONGODB_USERNAME"`
	Password     string       `env:"PN_REGISTRY_API_MONGODB_PASSWORD"`
	Database     string       `env:"PN_REGISTRY_API_MONGODB_DATABASE"`
	Collection   string       `env:"PN_REGISTRY_API_MONGODB_COLLECTION"`
	RetrySeconds RetrySeconds `env:"RETRY_CONNECTION_SECONDS" envDefault:"5"`

	// RetryMaxAttempts bounds the connection attempts; 0 retries forever.
	RetryMaxAttempts uint64        `env:"RETRY_MAX_ATTEMPTS" envDefault:"0"`
	ConnectTimeout   time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
}

// URI builds the mongodb:// connection string. Credentials are only
// included when a username is configured.
func (c ConnectionConfig) URI() string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.Host, c.Port),
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	return u.String()
}

// RedactedURI is URI with the password masked, for logging.
func (c ConnectionConfig) RedactedURI() string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.Host, c.Port),
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, "xxxxx")
	}
	return u.String()
}

// LockConfig configures the optional Redis run lock. The lock is disabled
// when Host is empty.
type LockConfig struct {
	Host     string        `env:"INIT_LOCK_REDIS_HOST"`
	Port     string        `env:"INIT_LOCK_REDIS_PORT" envDefault:"6379"`
	Password string        `env:"INIT_LOCK_REDIS_PASSWORD"`
	Database int           `env:"INIT_LOCK_REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"INIT_LOCK_TTL" envDefault:"2m"`

	EnableTLS bool `env:"INIT_LOCK_REDIS_TLS" envDefault:"false"`
}

// Enabled reports whether a lock backend is configured
func (l LockConfig) Enabled() bool {
	return l.Host != ""
}

// GetAddr returns the host:port address of the Redis server
func (l LockConfig) GetAddr() string {
	return net.JoinHostPort(l.Host, l.Port)
}

// Config holds all configuration for one bootstrap run.
type Config struct {
	Connection ConnectionConfig
	Lock       LockConfig

	// StrictExitCode turns a failed seed insert into a non-zero exit.
	StrictExitCode bool   `env:"STRICT_EXIT_CODE" envDefault:"false"`
	DryRun         bool   `env:"DRY_RUN" envDefault:"false"`
	SeedFile       string `env:"SEED_FILE"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	// Nested Connection and Lock structs are parsed by env as well
	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.NewConfigurationError("failed to load configuration from environment").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields a run cannot proceed without and normalizes
// the retry interval.
func (c *Config) Validate() error {
	if c.Connection.RetrySeconds <= 0 {
		c.Connection.RetrySeconds = DefaultRetrySeconds
	}
	if c.Connection.ConnectTimeout <= 0 {
		c.Connection.ConnectTimeout = 10 * time.Second
	}
	if c.Lock.TTL <= 0 {
		c.Lock.TTL = 2 * time.Minute
	}

	var errs []error
	if strings.TrimSpace(c.Connection.Database) == "" {
		errs = append(errs, apperrors.ErrMissingDatabase)
	}
	if strings.TrimSpace(c.Connection.Collection) == "" {
		errs = append(errs, apperrors.ErrMissingCollection)
	}
	if c.Connection.Port != "" {
		if p, err := strconv.Atoi(c.Connection.Port); err != nil || p < 1 || p > 65535 {
			errs = append(errs, fmt.Errorf("invalid mongodb port %q", c.Connection.Port))
		}
	}
	if len(errs) > 0 {
		return apperrors.NewConfigurationError("invalid configuration").WithCause(errors.Join(errs...))
	}
	return nil
}

// DefaultConfig returns a Config with default values for local development.
func DefaultConfig() *Config {
	return &Config{
		Connection: ConnectionConfig{
			Host:           "localhost",
			Port:           "27017",
			RetrySeconds:   DefaultRetrySeconds,
			ConnectTimeout: 10 * time.Second,
		},
		Lock: LockConfig{
			Port: "6379",
			TTL:  2 * time.Minute,
		},
	}
}
