package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "newsdesk dev (unknown)\n", out)
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	dir := t.TempDir()
	o := &rootOptions{dataDir: dir, port: 4100, logLevel: "DEBUG"}

	cfg, path, _, err := loadConfig(o)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), path)
	assert.Equal(t, dir, cfg.App.DataDir)
	assert.Equal(t, 4100, cfg.App.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	o := &rootOptions{dataDir: t.TempDir(), logFormat: "xml"}
	_, _, _, err := loadConfig(o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}

func TestCleanupCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "--data-dir", dir, "--log-format", "json", "--log-level", "error", "cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 0 expired articles")
}

func TestCleanupCommand_RefusesWhileLocked(t *testing.T) {
	dir := t.TempDir()
	lock := dataLock(dir)
	locked, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	t.Cleanup(func() { _ = lock.Unlock() })

	_, err = run(t, "--data-dir", dir, "--log-level", "error", "cleanup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/api/cron/cleanup")
}
