package config

import (
	"fmt"
	"os"
	"strings"
)

// Secrets come from the environment (or a .env file loaded by main), never
// from config.yml. Passwords may instead live in the OS keychain; see
// internal/secrets.
type Secrets struct {
	SearchAPIKey  string // RAPIDAPI_KEY
	MailUser      string // EMAIL_USER
	MailPassword  string // EMAIL_PASSWORD (fallback when keychain is empty)
	CronSecret    string // CRON_SECRET
	ApplicantName string // APPLICANT_NAME
}

func LoadSecrets() Secrets {
	return Secrets{
		SearchAPIKey:  strings.TrimSpace(os.Getenv("RAPIDAPI_KEY")),
		MailUser:      strings.TrimSpace(os.Getenv("EMAIL_USER")),
		MailPassword:  os.Getenv("EMAIL_PASSWORD"),
		CronSecret:    strings.TrimSpace(os.Getenv("CRON_SECRET")),
		ApplicantName: strings.TrimSpace(os.Getenv("APPLICANT_NAME")),
	}
}

// RequireForDispatch reports the secrets dispatch cannot run without.
// Missing ones are fatal at startup, not discovered mid-run.
func (s Secrets) RequireForDispatch() error {
	var missing []string
	if s.MailUser == "" {
		missing = append(missing, "EMAIL_USER")
	}
	if s.ApplicantName == "" {
		missing = append(missing, "APPLICANT_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s Secrets) RequireForIngest() error {
	if s.SearchAPIKey == "" {
		return fmt.Errorf("missing required env: RAPIDAPI_KEY")
	}
	return nil
}
