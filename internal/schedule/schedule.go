package schedule

import (
	"context"
	"log"
	"sort"
	"time"
)

// NextRun scans the configured UTC trigger hours forward from now and wraps
// to the first hour tomorrow when none remain today. Pure function of the
// clock; the HTTP status endpoint uses it as a label even when the internal
// runner is disabled.
func NextRun(now time.Time, hours []int) time.Time {
	if len(hours) == 0 {
		return time.Time{}
	}

	hs := append([]int(nil), hours...)
	sort.Ints(hs)

	now = now.UTC()
	for _, h := range hs {
		t := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, time.UTC)
		if t.After(now) {
			return t
		}
	}

	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), hs[0], 0, 0, 0, time.UTC)
}

// Labels renders the trigger hours for the status payload.
func Labels(hours []int) []string {
	hs := append([]int(nil), hours...)
	sort.Ints(hs)

	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, time.Date(0, 1, 1, h, 0, 0, 0, time.UTC).Format("3:04 PM")+" UTC")
	}
	return out
}

type Task func(ctx context.Context) error

// RunAtHours sleeps until each trigger hour and invokes the task, until the
// context ends. Errors are logged and the loop keeps going.
func RunAtHours(ctx context.Context, hours []int, name string, task Task) {
	for {
		next := NextRun(time.Now(), hours)
		if next.IsZero() {
			log.Printf("[%s] no trigger hours configured; runner idle", name)
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := task(ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
		}
	}
}
