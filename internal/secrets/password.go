package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups the app's secrets in the OS keychain.
	KeyringService = "jobsearch"

	AdzunaAccount = "jobsearch:adzuna:app_key"
	HunterAccount = "jobsearch:hunter:api_key"
)

var ErrNotFound = errors.New("secret not found (set it in keychain or via env)")

// envFor maps keyring accounts to the env var that overrides them.
var envFor = map[string]string{
	AdzunaAccount: "ADZUNA_APP_KEY",
	HunterAccount: "HUNTER_API_KEY",
}

// Get returns the secret for account: env var first, then the OS keychain.
func Get(account string) (string, error) {
	if name, ok := envFor[account]; ok {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	if strings.TrimSpace(account) == "" {
		return "", ErrNotFound
	}
	v, err := keyring.Get(KeyringService, account)
	if err != nil || strings.TrimSpace(v) == "" {
		return "", ErrNotFound
	}
	return v, nil
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func AdzunaAppKey() (string, error) { return Get(AdzunaAccount) }

func HunterAPIKey() (string, error) { return Get(HunterAccount) }

// Has reports whether account resolves to a value, without exposing it.
func Has(account string) bool {
	_, err := Get(account)
	return err == nil
}
