package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"outreach-engine/internal/config"
	"outreach-engine/internal/dispatch"
	"outreach-engine/internal/events"
	"outreach-engine/internal/runlock"
	"outreach-engine/internal/store"
)

type DispatchHandler struct {
	Deps Deps
}

type manualSendReq struct {
	// "pending" (skip already-Sent) or "all" (re-send; duplicates will be
	// sent). Empty falls back to the configured policy.
	Policy string `json:"policy"`
}

// RunScheduled is the cron-triggered variant (secret enforced in the
// router); it always uses the configured resend policy.
func (h DispatchHandler) RunScheduled(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "")
}

// RunManual is the unauthenticated manual trigger with an optional policy
// override in the body.
func (h DispatchHandler) RunManual(w http.ResponseWriter, r *http.Request) {
	var req manualSendReq
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body is fine
	h.run(w, r, req.Policy)
}

func (h DispatchHandler) run(w http.ResponseWriter, r *http.Request, policyOverride string) {
	cfg := h.Deps.CfgVal.Load().(config.Config)

	if err := h.Deps.Secrets.RequireForDispatch(); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Dispatch is not configured", err)
		return
	}

	policy := cfg.Dispatch.Resend
	if policyOverride != "" {
		if policyOverride != config.ResendPending && policyOverride != config.ResendAll {
			WriteError(w, r, http.StatusBadRequest,
				fmt.Sprintf("policy must be %q or %q", config.ResendPending, config.ResendAll), nil)
			return
		}
		policy = policyOverride
	}

	sender, err := h.Deps.NewSender()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Mail transport unavailable", err)
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

	rep, err := dispatch.Run(r.Context(), h.Deps.DB, sender, dispatch.Options{
		Cap:            cfg.Dispatch.Cap,
		SendInterval:   time.Duration(cfg.Dispatch.SendIntervalSeconds) * time.Second,
		OnlyPending:    policy == config.ResendPending,
		AttachmentPath: cfg.Dispatch.AttachmentPath,
		ApplicantName:  h.Deps.Secrets.ApplicantName,
		FromAddr:       h.Deps.Secrets.MailUser,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Send run failed", err)
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Deps.Hub.Publish(events.MakeEvent(reqID, events.TypeDispatchDone, rep))

	WriteSuccess(w, http.StatusOK,
		fmt.Sprintf("Send completed: %d sent, %d failed", rep.Sent, rep.Failed),
		Envelope{
			"sent":      rep.Sent,
			"failed":    rep.Failed,
			"results":   rep.Results,
			"timestamp": rep.Timestamp,
		})
}

// Reset bulk-clears Sent status so the next run re-emails everyone.
func (h DispatchHandler) Reset(w http.ResponseWriter, r *http.Request) {
	n, err := dispatch.Reset(r.Context(), h.Deps.DB)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Failed to reset emails", err)
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Deps.Hub.Publish(events.MakeEvent(reqID, events.TypeReset, map[string]any{"resetCount": n}))

	msg := "No sent emails to reset"
	if n > 0 {
		msg = fmt.Sprintf("Successfully reset %d emails", n)
	}
	WriteSuccess(w, http.StatusOK, msg, Envelope{"resetCount": n})
}

// SentCounts backs the reset screen: how many are Sent vs Not Sent.
func (h DispatchHandler) SentCounts(w http.ResponseWriter, r *http.Request) {
	stats, err := store.CountStats(r.Context(), h.Deps.DB, time.Now())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Failed to fetch sent count", err)
		return
	}
	WriteSuccess(w, http.StatusOK, "ok", Envelope{
		"sentCount":    stats.SentTotal,
		"notSentCount": stats.NotSentTotal,
		"totalCount":   stats.TotalWithEmail,
	})
}
