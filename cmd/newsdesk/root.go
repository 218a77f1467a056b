package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"newsdesk-engine/internal/config"
	"newsdesk-engine/internal/logging"
)

type rootOptions struct {
	dataDir    string
	configPath string
	logLevel   string
	logFormat  string
	host       string
	port       int
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           "newsdesk",
		Short:         "News article API with live SSE and WebSocket updates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.dataDir, "data-dir", "", "directory for config.yml, the database and the lock file (env NEWSDESK_DATA_DIR)")
	pf.StringVar(&o.configPath, "config", "", "config file (default <data-dir>/config.yml)")
	pf.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	pf.StringVar(&o.logFormat, "log-format", "", "console or json (env LOG_FORMAT)")

	root.AddCommand(
		newServeCmd(o),
		newCleanupCmd(o),
		newSecretCmd(o),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves the config the same way for every subcommand:
// defaults, then the yaml file, then .env and the environment, then flags.
func loadConfig(o *rootOptions) (config.Config, string, []string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, "", nil, fmt.Errorf("load .env: %w", err)
	}

	dataDir := o.dataDir
	if dataDir == "" {
		dataDir = strings.TrimSpace(os.Getenv("NEWSDESK_DATA_DIR"))
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return config.Config{}, "", nil, err
	}

	cfgPath := o.configPath
	if cfgPath == "" {
		p, err := config.EnsureUserConfig(dataDir)
		if err != nil {
			return config.Config{}, "", nil, fmt.Errorf("config bootstrap failed: %w", err)
		}
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, "", nil, fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	config.OverlayEnv(&cfg, os.Getenv)
	if o.configPath == "" || o.dataDir != "" {
		cfg.App.DataDir = dataDir
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if o.host != "" {
		cfg.App.Host = o.host
	}
	if o.port != 0 {
		cfg.App.Port = o.port
	}

	cfg, vr := config.NormalizeAndValidate(cfg)
	if !vr.OK() {
		return cfg, cfgPath, vr.Warnings, errors.New("invalid config:\n- " + strings.Join(vr.Errors, "\n- "))
	}
	return cfg, cfgPath, vr.Warnings, nil
}

func setupLogger(cfg config.Config, warnings []string) zerolog.Logger {
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	logging.SetDefault(logger)
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}
	return logger
}

func dataLock(dataDir string) *flock.Flock {
	return flock.New(filepath.Join(dataDir, "newsdesk.lock"))
}
