// Package config loads service configuration with koanf.
//
// Layers, lowest precedence first: struct defaults, an optional YAML file,
// environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Report   ReportConfig   `koanf:"report"`
	Log      LogConfig      `koanf:"log"`
	Postgres PostgresConfig `koanf:"postgres"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// UpstreamConfig describes the watch-time reporting API.
type UpstreamConfig struct {
	URL     string        `koanf:"url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// WindowDays bounds the range covered by a single request.
	WindowDays       int     `koanf:"window_days" validate:"min=1"`
	FetchConcurrency int     `koanf:"fetch_concurrency" validate:"min=1,max=16"`
	RateLimit        float64 `koanf:"rate_limit" validate:"min=0"` // requests per second, 0 = unlimited
	IgnoreStaff      bool    `koanf:"ignore_staff"`

	// BreakerMaxFailures consecutive failed windows open the breaker; 0 disables it.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout" validate:"gt=0"`
}

type ReportConfig struct {
	// Timezone is used for the local dates of the CSV filename.
	Timezone string `koanf:"timezone" validate:"required"`

	// AllowedEmailDomains, when non-empty, drops events whose email does not
	// end with "@<domain>" before any other filter runs.
	AllowedEmailDomains []string `koanf:"allowed_email_domains" validate:"dive,hostname"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type PostgresConfig struct {
	// DSN empty disables the export audit trail.
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"min=1"`
}

var (
	ErrInvalidTimezone = errors.New("invalid report timezone")

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Validate checks struct tags and cross-field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Report.Timezone)
	}
	return nil
}

// Location returns the report time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
