package httpapi

import (
	"errors"
	"net/http"

	"outreach-engine/internal/config"
	"outreach-engine/internal/events"
	"outreach-engine/internal/ingest"
	"outreach-engine/internal/runlock"
)

type IngestHandler struct {
	Deps Deps
}

// Run executes one ingestion pass synchronously and reports its counters,
// like the cron endpoint it replaces.
func (h IngestHandler) Run(w http.ResponseWriter, r *http.Request) {
	cfg := h.Deps.CfgVal.Load().(config.Config)

	if err := h.Deps.Secrets.RequireForIngest(); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Ingestion is not configured", err)
		return
	}

	release, err := h.Deps.Lock.Acquire()
	if err != nil {
		if errors.Is(err, runlock.ErrBusy) {
			WriteError(w, r, http.StatusConflict, "A run is already in progress", nil)
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "Failed to acquire run lock", err)
		return
	}
	defer release()

	sum, err := ingest.Run(r.Context(), h.Deps.DB, cfg, h.Deps.Searcher)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Failed to refresh jobs", err)
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Deps.Hub.Publish(events.MakeEvent(reqID, events.TypeIngestDone, sum))

	WriteSuccess(w, http.StatusOK, "Jobs refreshed successfully", Envelope{
		"stats": sum,
	})
}
