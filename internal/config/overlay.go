package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files into the process environment. Missing files
// are not an error; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// OverlayEnv applies environment overrides on top of cfg.
func OverlayEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("HOST", &cfg.App.Host)
	num("PORT", &cfg.App.Port)
	str("NEWSDESK_DATA_DIR", &cfg.App.DataDir)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	num("HEARTBEAT_SECONDS", &cfg.Stream.HeartbeatSeconds)
	num("ARTICLE_TTL_HOURS", &cfg.Articles.TTLHours)
	num("CLEANUP_INTERVAL_MINUTES", &cfg.Cleanup.IntervalMinutes)
	str("CRON_SECRET", &cfg.Cleanup.Secret)
}
