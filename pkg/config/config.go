// Package config loads the settings shared by the ramstk commands from a
// YAML file, then applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/ramstk-analysis/pkg/validation"
)

// Config holds the process configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat  string           `yaml:"log_format" validate:"oneof=json text"`
	Allocation AllocationConfig `yaml:"allocation"`
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	History    HistoryConfig    `yaml:"history"`
}

// AllocationConfig controls the apportionment engine.
type AllocationConfig struct {
	// Chaining is "chain" (each sibling's goal feeds the next) or
	// "independent" (every sibling sees the parent goal).
	Chaining string `yaml:"chaining" validate:"oneof=chain independent"`

	// DefaultMissionTime is used for nodes that carry no mission time.
	DefaultMissionTime float64 `yaml:"default_mission_time" validate:"gte=0"`
}

// DatabaseConfig locates the program database. An empty URL means the tree
// is loaded from a fixture file instead.
type DatabaseConfig struct {
	URL        string `yaml:"url" validate:"omitempty,url"`
	RevisionID int    `yaml:"revision_id" validate:"min=1"`
}

// ServerConfig configures cmd/ramstk-server.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`

	// EventsURL is the mangos listen address of the event bridge, for
	// example "tcp://127.0.0.1:40899". Empty disables the bridge.
	EventsURL string `yaml:"events_url"`

	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig switches the server to HTTPS. Without a certificate and key a
// self-signed certificate for Hosts is generated at startup.
type TLSConfig struct {
	Enabled  bool     `yaml:"enabled"`
	CertFile string   `yaml:"cert_file" validate:"required_with=KeyFile"`
	KeyFile  string   `yaml:"key_file" validate:"required_with=CertFile"`
	CAFile   string   `yaml:"ca_file"`
	Hosts    []string `yaml:"hosts"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// HistoryConfig sizes the in-memory calculation history.
type HistoryConfig struct {
	// Size is the number of events kept. Zero disables the history.
	Size int `yaml:"size" validate:"gte=0,lte=1000000"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		Allocation: AllocationConfig{
			Chaining:           "chain",
			DefaultMissionTime: 100.0,
		},
		Database: DatabaseConfig{
			RevisionID: 1,
		},
		Server: ServerConfig{
			Addr: ":8080",
			TLS: TLSConfig{
				Hosts: []string{"localhost", "127.0.0.1"},
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		History: HistoryConfig{
			Size: 1000,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
//
//	LOG_LEVEL, RAMSTK_LOG_LEVEL, RAMSTK_LOG_FORMAT
//	RAMSTK_CHAINING, RAMSTK_MISSION_TIME
//	RAMSTK_DATABASE_URL (or DATABASE_URL), RAMSTK_REVISION_ID
//	RAMSTK_ADDR, RAMSTK_EVENTS_URL, RAMSTK_METRICS_ENABLED
//	RAMSTK_HISTORY_SIZE
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && v != "" {
				*dst = v
			}
		}
	}

	str(&c.LogLevel, "LOG_LEVEL", "RAMSTK_LOG_LEVEL")
	str(&c.LogFormat, "RAMSTK_LOG_FORMAT")
	str(&c.Allocation.Chaining, "RAMSTK_CHAINING")
	str(&c.Database.URL, "DATABASE_URL", "RAMSTK_DATABASE_URL")
	str(&c.Server.Addr, "RAMSTK_ADDR")
	str(&c.Server.EventsURL, "RAMSTK_EVENTS_URL")

	var errs []error
	if v, ok := lookup("RAMSTK_MISSION_TIME"); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RAMSTK_MISSION_TIME: %w", err))
		} else {
			c.Allocation.DefaultMissionTime = f
		}
	}
	if v, ok := lookup("RAMSTK_REVISION_ID"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("RAMSTK_REVISION_ID: %w", err))
		} else {
			c.Database.RevisionID = n
		}
	}
	if v, ok := lookup("RAMSTK_METRICS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("RAMSTK_METRICS_ENABLED: %w", err))
		} else {
			c.Metrics.Enabled = b
		}
	}

	if v, ok := lookup("RAMSTK_HISTORY_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("RAMSTK_HISTORY_SIZE: %w", err))
		} else {
			c.History.Size = n
		}
	}

	return errors.Join(errs...)
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
