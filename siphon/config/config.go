// Package config holds the tunables of a siphon engine and loads them from
// a YAML file and SIPHON_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultChangeBuffer is the capacity of the change relay.
	DefaultChangeBuffer = 100
	// DefaultActionBuffer is the capacity of the action relay.
	DefaultActionBuffer = 100
	// DefaultSubscriberBuffer is the per-observer state backlog.
	DefaultSubscriberBuffer = 256
	// DefaultActionWorkers is the number of partitions for keyed actions.
	DefaultActionWorkers = 1
	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	envPrefix = "SIPHON_"
)

// Settings sizes the buffers of one engine instance and carries the
// process-level knobs the CLI reads.
type Settings struct {
	ChangeBuffer     int    `yaml:"change_buffer" env:"CHANGE_BUFFER"`
	ActionBuffer     int    `yaml:"action_buffer" env:"ACTION_BUFFER"`
	SubscriberBuffer int    `yaml:"subscriber_buffer" env:"SUBSCRIBER_BUFFER"`
	ActionWorkers    int    `yaml:"action_workers" env:"ACTION_WORKERS"`
	LogLevel         string `yaml:"log_level" env:"LOG_LEVEL"`

	// OTelEndpoint is the OTLP/HTTP collector URL. Tracing is off when empty.
	OTelEndpoint string `yaml:"otel_endpoint" env:"OTEL_ENDPOINT"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		ChangeBuffer:     DefaultChangeBuffer,
		ActionBuffer:     DefaultActionBuffer,
		SubscriberBuffer: DefaultSubscriberBuffer,
		ActionWorkers:    DefaultActionWorkers,
		LogLevel:         DefaultLogLevel,
	}
}

// Normalize replaces non-positive sizes and an empty level with defaults.
func (s Settings) Normalize() Settings {
	d := Default()
	if s.ChangeBuffer <= 0 {
		s.ChangeBuffer = d.ChangeBuffer
	}
	if s.ActionBuffer <= 0 {
		s.ActionBuffer = d.ActionBuffer
	}
	if s.SubscriberBuffer <= 0 {
		s.SubscriberBuffer = d.SubscriberBuffer
	}
	if s.ActionWorkers <= 0 {
		s.ActionWorkers = d.ActionWorkers
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
	return s
}

// Load reads settings from path (if non-empty and present), then applies
// SIPHON_* environment overrides, then normalizes.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &s); err != nil {
				return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
			}
		}
	}
	if err := ApplyEnv(&s); err != nil {
		return Settings{}, err
	}
	return s.Normalize(), nil
}

// ApplyEnv overrides fields of s from SIPHON_* environment variables.
func ApplyEnv(s *Settings) error {
	if err := env.ParseWithOptions(s, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
