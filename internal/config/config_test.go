package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval())
	assert.Equal(t, 7*24*time.Hour, cfg.ArticleTTL())
	assert.Equal(t, time.Hour, cfg.CleanupInterval())
}

func TestEnsureUserConfig_WritesDefaultsOnce(t *testing.T) {
	dir := t.TempDir()

	path, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.App.DataDir)
	assert.Equal(t, 3000, cfg.App.Port)

	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 8080\n"), 0o644))
	again, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 30, cfg.Stream.HeartbeatSeconds, "absent keys keep defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOverlayEnv(t *testing.T) {
	env := map[string]string{
		"PORT":              "9090",
		"LOG_LEVEL":         "debug",
		"HEARTBEAT_SECONDS": "15",
		"CRON_SECRET":       "s3cret",
		"ARTICLE_TTL_HOURS": "not-a-number",
	}
	cfg := Default()
	OverlayEnv(&cfg, func(k string) string { return env[k] })

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 15, cfg.Stream.HeartbeatSeconds)
	assert.Equal(t, "s3cret", cfg.Cleanup.Secret)
	assert.Equal(t, 7*24, cfg.Articles.TTLHours)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("NEWSDESK_TEST_DOTENV=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("NEWSDESK_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("NEWSDESK_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	cfg.App.Port = 0
	cfg.Log.Level = " DEBUG "
	cfg.Log.Format = "xml"
	cfg.Stream.HeartbeatSeconds = 600
	cfg.Cleanup.IntervalMinutes = 0

	out, res := NormalizeAndValidate(cfg)
	assert.False(t, res.OK())
	assert.Equal(t, "debug", out.Log.Level)
	assert.Contains(t, res.Errors, "app.port must be 1..65535")
	assert.Len(t, res.Errors, 2)
	assert.Len(t, res.Warnings, 2)

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}

func TestSaveAtomic_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := Default()
	cfg.Articles.TTLHours = 0

	require.Error(t, SaveAtomic(path, cfg))
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveAtomic_KeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, SaveAtomic(path, Default()))

	cfg := Default()
	cfg.App.Port = 4000
	require.NoError(t, SaveAtomic(path, cfg))

	_, err := os.Stat(path + ".bak")
	require.NoError(t, err)
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, got.App.Port)
}
