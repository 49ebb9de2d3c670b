package httpapi

import (
	"net/http"
	"time"

	"outreach-engine/internal/config"
	"outreach-engine/internal/schedule"
	"outreach-engine/internal/store"
)

type StatusHandler struct {
	Deps Deps
}

// Get reports dispatch stats, the last run, and the next trigger time. The
// next-run value is a label computed from the clock, not scheduler state.
func (h StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg := h.Deps.CfgVal.Load().(config.Config)
	now := time.Now()

	stats, err := store.CountStats(r.Context(), h.Deps.DB, now)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Failed to fetch cron status", err)
		return
	}

	last, err := store.LastRun(r.Context(), h.Deps.DB, store.RunKindDispatch)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Failed to fetch cron status", err)
		return
	}

	var lastExecution any
	if last != nil {
		lastExecution = map[string]any{
			"executedAt": last.ExecutedAt,
			"sent":       last.Sent,
			"failed":     last.Failed,
		}
	}

	var nextScheduled any
	if len(cfg.Schedule.Hours) > 0 {
		nextScheduled = schedule.NextRun(now, cfg.Schedule.Hours).Format(time.RFC3339)
	}

	WriteSuccess(w, http.StatusOK, "ok", Envelope{
		"cronActive":        cfg.Schedule.Enabled,
		"nextScheduledTime": nextScheduled,
		"lastExecution":     lastExecution,
		"stats": map[string]any{
			"totalWithEmail": stats.TotalWithEmail,
			"todaySent":      stats.SentToday,
			"pendingEmails":  stats.Pending,
			"schedules":      schedule.Labels(cfg.Schedule.Hours),
		},
	})
}
