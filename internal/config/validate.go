package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything a caller
// should surface before accepting the config.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Search.Queries = trimList(out.Search.Queries)
	out.Search.Region = strings.TrimSpace(out.Search.Region)
	out.Dispatch.Resend = strings.ToLower(strings.TrimSpace(out.Dispatch.Resend))
	if out.Dispatch.Resend == "" {
		out.Dispatch.Resend = ResendPending
	}
	if out.Search.NumPages <= 0 {
		out.Search.NumPages = 1
	}
	if out.Dispatch.Cap <= 0 {
		out.Dispatch.Cap = 50
	}
	if out.Dispatch.SendIntervalSeconds <= 0 {
		out.Dispatch.SendIntervalSeconds = 3
	}
	if out.Enrich.MaxPerRun <= 0 {
		out.Enrich.MaxPerRun = 25
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if strings.TrimSpace(out.Search.Host) == "" {
		res.addErr("search.host is required")
	}
	if len(out.Search.Queries) == 0 {
		res.addWarn("search.queries is empty; ingestion runs will fetch nothing.")
	}

	if out.Dispatch.Resend != ResendPending && out.Dispatch.Resend != ResendAll {
		res.addErr("dispatch.resend must be %q or %q", ResendPending, ResendAll)
	}
	if out.Dispatch.Resend == ResendAll {
		res.addWarn("dispatch.resend=all will email already-contacted companies again.")
	}
	if out.Dispatch.SendIntervalSeconds < 2 {
		res.addWarn("dispatch.send_interval_seconds is very low (%d) and may trip the transport's rate limit.", out.Dispatch.SendIntervalSeconds)
	}

	if strings.TrimSpace(out.SMTP.Host) == "" {
		res.addErr("smtp.host is required")
	}
	if out.SMTP.Port == 0 {
		res.addErr("smtp.port is required")
	}

	if out.IMAP.Enabled {
		if strings.TrimSpace(out.IMAP.Host) == "" {
			res.addErr("imap.host is required when imap.enabled=true")
		}
		if out.IMAP.Port == 0 {
			res.addErr("imap.port is required when imap.enabled=true")
		}
		if strings.TrimSpace(out.IMAP.Username) == "" {
			res.addErr("imap.username is required when imap.enabled=true")
		}
		if strings.TrimSpace(out.IMAP.Mailbox) == "" {
			res.addErr("imap.mailbox is required when imap.enabled=true")
		}
	}

	if out.Schedule.Enabled && len(out.Schedule.Hours) == 0 {
		res.addErr("schedule.hours must name at least one UTC hour when schedule.enabled=true")
	}
	for _, h := range out.Schedule.Hours {
		if h < 0 || h > 23 {
			res.addErr("schedule.hours entry %d is out of range 0..23", h)
		}
	}

	return out, res
}
