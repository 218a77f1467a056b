package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.App.Host = strings.TrimSpace(out.App.Host)
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))
	out.Log.Format = strings.ToLower(strings.TrimSpace(out.Log.Format))

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if strings.TrimSpace(out.App.DataDir) == "" {
		res.addErr("app.data_dir is required")
	}

	switch out.Log.Level {
	case "debug", "info", "warn", "error":
	case "":
		out.Log.Level = "info"
	default:
		res.addErr("log.level must be one of debug, info, warn, error (got %q)", out.Log.Level)
	}
	switch out.Log.Format {
	case "console", "json":
	case "":
		out.Log.Format = "console"
	default:
		res.addErr("log.format must be console or json (got %q)", out.Log.Format)
	}

	// heartbeat sanity
	if out.Stream.HeartbeatSeconds <= 0 {
		res.addErr("stream.heartbeat_seconds must be > 0")
	} else if out.Stream.HeartbeatSeconds > 120 {
		res.addWarn("stream.heartbeat_seconds is %d; proxies commonly drop idle streams after 60-120s.", out.Stream.HeartbeatSeconds)
	}

	if out.Articles.TTLHours <= 0 {
		res.addErr("articles.ttl_hours must be > 0")
	}

	if out.Cleanup.IntervalMinutes < 0 {
		res.addErr("cleanup.interval_minutes must be >= 0")
	} else if out.Cleanup.IntervalMinutes == 0 {
		res.addWarn("cleanup.interval_minutes is 0; expired articles are only removed via the cleanup endpoint or command.")
	}

	if out.RateLimit.MutationsPerSecond < 0 {
		res.addErr("rate_limit.mutations_per_second must be >= 0")
	}
	if out.RateLimit.MutationsPerSecond > 0 && out.RateLimit.Burst <= 0 {
		res.addErr("rate_limit.burst must be > 0 when rate limiting is enabled")
	}

	return out, res
}
