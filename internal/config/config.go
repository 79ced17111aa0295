package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	HTTPTimeout time.Duration
	LogLevel    slog.Level

	// SheetsBaseURL is the host serving published documents; tests point it
	// at a local fake.
	SheetsBaseURL string

	// ProbeMaxGID bounds the gid probe used when every listing strategy
	// comes up empty.
	ProbeMaxGID int
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	probe := 20
	if v := os.Getenv("PROBE_MAX_GID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			probe = n
		}
	}
	return Config{
		Port:          envOr("PORT", "8080"),
		HTTPTimeout:   to,
		LogLevel:      lvl,
		SheetsBaseURL: envOr("SHEETS_BASE_URL", "https://docs.google.com"),
		ProbeMaxGID:   probe,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
