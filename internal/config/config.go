package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the runtime settings of the calculator API. Values come from
// the process environment, optionally seeded from a .env file by cmd/api.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration

	SessionTTL    time.Duration
	SweepInterval time.Duration
	MaxSessions   int

	// OTLPLogs tees application logs to the OTLP log exporter.
	OTLPLogs bool
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		ShutdownTimeout: 5 * time.Second,
		SessionTTL:      30 * time.Minute,
		SweepInterval:   time.Minute,
		MaxSessions:     10000,
	}
}

// FromEnv overlays environment variables on Default.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup("HTTP_ADDR"); ok && v != "" {
		cfg.Addr = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
		{"SESSION_TTL", &cfg.SessionTTL},
		{"SESSION_SWEEP_INTERVAL", &cfg.SweepInterval},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		if parsed <= 0 {
			return Config{}, fmt.Errorf("parse %s: must be positive, got %s", d.key, v)
		}
		*d.dst = parsed
	}

	if v, ok := lookup("SESSION_MAX"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse SESSION_MAX: %w", err)
		}
		cfg.MaxSessions = n
	}

	if v, ok := lookup("OTEL_LOGS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse OTEL_LOGS_ENABLED: %w", err)
		}
		cfg.OTLPLogs = b
	}

	return cfg, nil
}
