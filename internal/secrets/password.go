package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups this app's secrets in the OS keychain.
	KeyringService = "outreach-engine"
)

// MailPassword prefers the OS keychain and falls back to the env-provided
// value (EMAIL_PASSWORD), matching how the rest of config handles secrets.
func MailPassword(keyringAccount, envFallback string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if envFallback != "" {
		return envFallback, nil
	}
	return "", errors.New("mail password not found (set it in keychain or via EMAIL_PASSWORD)")
}

func SetMailPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteMailPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func SMTPKeyringAccount(username, host string) string {
	return fmt.Sprintf("outreach:smtp:%s@%s", username, host)
}

func IMAPKeyringAccount(username, host string) string {
	return fmt.Sprintf("outreach:imap:%s@%s", username, host)
}
