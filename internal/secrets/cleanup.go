package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"

	"newsdesk-engine/internal/config"
)

const (
	// Service groups the engine's secrets in the OS keychain.
	KeyringService = "newsdesk"
)

var ErrNoCleanupSecret = errors.New("cleanup secret not found (set CRON_SECRET or store it in the keychain)")

// CleanupSecret returns the bearer secret that guards the cleanup endpoint.
// CRON_SECRET (already overlaid into cfg) wins over the keychain entry.
func CleanupSecret(cfg config.Config) (string, error) {
	if s := strings.TrimSpace(cfg.Cleanup.Secret); s != "" {
		return s, nil
	}
	if acct := strings.TrimSpace(cfg.Cleanup.KeyringAccount); acct != "" {
		s, err := keyring.Get(KeyringService, acct)
		if err == nil && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", ErrNoCleanupSecret
}

func SetCleanupSecret(keyringAccount, secret string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(secret) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, secret)
}

func DeleteCleanupSecret(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}
