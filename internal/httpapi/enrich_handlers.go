package httpapi

import (
	"net/http"

	"outreach-engine/internal/config"
	"outreach-engine/internal/enrich"
	"outreach-engine/internal/replies"
	"outreach-engine/internal/secrets"
)

type EnrichHandler struct {
	Deps Deps
}

// Run scans records without a contact address and tries to find one on the
// company's page. Synchronous; the run is bounded by enrich.max_per_run.
func (h EnrichHandler) Run(w http.ResponseWriter, r *http.Request) {
	cfg := h.Deps.CfgVal.Load().(config.Config)
	if !cfg.Enrich.Enabled {
		WriteError(w, r, http.StatusBadRequest, "Enrichment is disabled in config", nil)
		return
	}

	sum, err := enrich.New().Run(r.Context(), h.Deps.DB, cfg.Enrich.MaxPerRun)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Enrichment run failed", err)
		return
	}

	WriteSuccess(w, http.StatusOK, "Enrichment completed", Envelope{
		"checked": sum.Checked,
		"found":   sum.Found,
	})
}

type RepliesHandler struct {
	Deps Deps
}

// Check polls the configured mailbox for replies from contacted addresses.
func (h RepliesHandler) Check(w http.ResponseWriter, r *http.Request) {
	cfg := h.Deps.CfgVal.Load().(config.Config)
	if !cfg.IMAP.Enabled {
		WriteError(w, r, http.StatusBadRequest, "IMAP reply checking is disabled in config", nil)
		return
	}

	password, err := secrets.MailPassword(
		secrets.IMAPKeyringAccount(cfg.IMAP.Username, cfg.IMAP.Host),
		h.Deps.Secrets.MailPassword,
	)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "IMAP password unavailable", err)
		return
	}

	sum, err := replies.Check(r.Context(), h.Deps.DB, replies.Config{
		Host:     cfg.IMAP.Host,
		Port:     cfg.IMAP.Port,
		Username: cfg.IMAP.Username,
		Password: password,
		Mailbox:  cfg.IMAP.Mailbox,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Reply check failed", err)
		return
	}

	WriteSuccess(w, http.StatusOK, "Reply check completed", Envelope{
		"scanned": sum.Scanned,
		"matched": sum.Matched,
	})
}
