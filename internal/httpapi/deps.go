package httpapi

import (
	"database/sql"
	"sync/atomic"

	"outreach-engine/internal/config"
	"outreach-engine/internal/events"
	"outreach-engine/internal/mail"
	"outreach-engine/internal/runlock"
	"outreach-engine/internal/search"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic store so PUT /config takes effect without a restart
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Secrets config.Secrets

	Searcher search.Searcher

	// NewSender resolves the SMTP password at run time (keychain first), so
	// a password stored via the API is picked up without a restart.
	NewSender func() (mail.Sender, error)

	Lock *runlock.Lock
}
