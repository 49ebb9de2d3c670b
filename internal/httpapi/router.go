package httpapi

import "net/http"

// NewMux returns the raw mux so main() can wrap it with the middleware chain.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()
	secret := d.Secrets.CronSecret

	// Ingestion
	ih := IngestHandler{Deps: d}
	mux.HandleFunc("/cron/refresh-jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: requireSecret(secret, ih.Run),
	}))

	// Dispatch
	dh := DispatchHandler{Deps: d}
	mux.HandleFunc("/cron/send-emails", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: requireSecret(secret, dh.RunScheduled),
	}))
	mux.HandleFunc("/send-emails", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.RunManual,
	}))
	mux.HandleFunc("/reset-emails", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  dh.SentCounts,
		http.MethodPost: dh.Reset,
	}))

	// Status
	sth := StatusHandler{Deps: d}
	mux.HandleFunc("/cron/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sth.Get,
	}))

	// Companies
	coh := CompaniesHandler{Deps: d}
	mux.HandleFunc("/companies", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  coh.Get,
		http.MethodPost: coh.Save,
	}))

	// Enrichment and replies
	eh := EnrichHandler{Deps: d}
	mux.HandleFunc("/enrich", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: eh.Run,
	}))
	rh := RepliesHandler{Deps: d}
	mux.HandleFunc("/replies/check", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Check,
	}))

	// Config
	ch := ConfigHandler{Deps: d}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	seh := SecretsHandler{Deps: d}
	mux.HandleFunc("/api/secrets/smtp", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: seh.SetSMTPPassword,
	}))

	// SSE events
	evh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: evh.ServeSSE,
	}))

	// Maintenance
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))
	dbh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dbh.Checkpoint,
	}))

	return mux
}
