package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/watchtime/config.yaml",
}

const (
	ConfigPathEnvVar = "CONFIG_PATH"
	EnvPrefix        = "WATCHTIME_"
)

// sections are the top-level keys an env var name can map into.
var sections = []string{"server", "upstream", "report", "log", "postgres"}

// sliceConfigPaths arrive from env as comma-separated strings.
var sliceConfigPaths = []string{
	"report.allowed_email_domains",
}

// legacyEnv keeps the variable names the deployment already uses.
var legacyEnv = map[string]string{
	"POSTGRES_DSN": "postgres.dsn",
	"LOG_LEVEL":    "log.level",
	"LOG_FORMAT":   "log.format",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 5 * time.Second,
		},
		Upstream: UpstreamConfig{
			URL:                "https://watchtime.projetodesenvolve.online/watchtime",
			Timeout:            15 * time.Second,
			WindowDays:         7,
			FetchConcurrency:   1,
			RateLimit:          0,
			IgnoreStaff:        true,
			BreakerMaxFailures: 0,
			BreakerOpenTimeout: 30 * time.Second,
		},
		Report: ReportConfig{
			Timezone:            "America/Sao_Paulo",
			AllowedEmailDomains: []string{},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Postgres: PostgresConfig{
			DSN:          "",
			MaxOpenConns: 5,
		},
	}
}

// Load builds the configuration from defaults, the config file found via
// CONFIG_PATH or DefaultConfigPaths, and the environment.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit file path; "" skips the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	// Prefixed variables win over legacy names.
	for name, key := range legacyEnv {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(EnvPrefix + envSuffix(key)); set {
			continue
		}
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps WATCHTIME_UPSTREAM_WINDOW_DAYS to upstream.window_days.
// Unknown sections are returned unchanged and ignored by Unmarshal.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, s := range sections {
		if strings.HasPrefix(key, s+"_") {
			return s + "." + strings.TrimPrefix(key, s+"_")
		}
	}
	return key
}

// envSuffix is the inverse of envTransformFunc without the prefix.
func envSuffix(path string) string {
	return strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
