package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Host    string `yaml:"host" json:"host"`
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Log struct {
		Level  string `yaml:"level" json:"level"`   // debug | info | warn | error
		Format string `yaml:"format" json:"format"` // console | json
	} `yaml:"log" json:"log"`

	Stream struct {
		HeartbeatSeconds int    `yaml:"heartbeat_seconds" json:"heartbeat_seconds"`
		ConnectedMessage string `yaml:"connected_message" json:"connected_message"`
	} `yaml:"stream" json:"stream"`

	Articles struct {
		TTLHours int `yaml:"ttl_hours" json:"ttl_hours"`
	} `yaml:"articles" json:"articles"`

	Cleanup struct {
		IntervalMinutes int    `yaml:"interval_minutes" json:"interval_minutes"` // 0 disables the in-process job
		KeyringAccount  string `yaml:"keyring_account" json:"keyring_account"`
		Secret          string `yaml:"-" json:"-"` // CRON_SECRET only, never persisted
	} `yaml:"cleanup" json:"cleanup"`

	RateLimit struct {
		MutationsPerSecond float64 `yaml:"mutations_per_second" json:"mutations_per_second"` // 0 disables
		Burst              int     `yaml:"burst" json:"burst"`
		TrustProxy         bool    `yaml:"trust_proxy" json:"trust_proxy"` // key on X-Forwarded-For
	} `yaml:"rate_limit" json:"rate_limit"`
}

func Default() Config {
	var cfg Config
	cfg.App.Host = "127.0.0.1"
	cfg.App.Port = 3000
	cfg.App.DataDir = "."
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	cfg.Stream.HeartbeatSeconds = 30
	cfg.Stream.ConnectedMessage = "Connected to news article updates"
	cfg.Articles.TTLHours = 7 * 24
	cfg.Cleanup.IntervalMinutes = 60
	cfg.Cleanup.KeyringAccount = "cleanup"
	cfg.RateLimit.MutationsPerSecond = 5
	cfg.RateLimit.Burst = 10
	return cfg
}

// Load reads path over the defaults; keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Stream.HeartbeatSeconds) * time.Second
}

func (c Config) ArticleTTL() time.Duration {
	return time.Duration(c.Articles.TTLHours) * time.Hour
}

func (c Config) CleanupInterval() time.Duration {
	return time.Duration(c.Cleanup.IntervalMinutes) * time.Minute
}
