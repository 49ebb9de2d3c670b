package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"outreach-engine/internal/config"
	"outreach-engine/internal/dispatch"
	"outreach-engine/internal/events"
	"outreach-engine/internal/httpapi"
	"outreach-engine/internal/ingest"
	"outreach-engine/internal/mail"
	"outreach-engine/internal/runlock"
	"outreach-engine/internal/schedule"
	"outreach-engine/internal/search"
	"outreach-engine/internal/secrets"
	"outreach-engine/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	dataDir := os.Getenv("OUTREACH_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !v.OK() {
		log.Fatalf("config invalid (%s): %v", userCfgPath, v.Errors)
	}
	cfgVal.Store(cfg)

	sec := config.LoadSecrets()
	if sec.CronSecret == "" {
		log.Printf("[main] CRON_SECRET not set; scheduled trigger routes are disabled")
	}

	dbPath := filepath.Join(dataDir, "outreach.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	lock := runlock.New(dataDir)
	hub := events.NewHub()
	searcher := search.NewClient(cfg.Search.Host, sec.SearchAPIKey)

	// Resolve the SMTP password per send batch, keychain first. A password
	// stored via the API is picked up without a restart.
	newSender := func() (mail.Sender, error) {
		c := cfgVal.Load().(config.Config)
		account := secrets.SMTPKeyringAccount(c.SMTP.Username, c.SMTP.Host)
		pw, err := secrets.MailPassword(account, sec.MailPassword)
		if err != nil {
			return nil, fmt.Errorf("smtp password: %w", err)
		}
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     c.SMTP.Host,
			Port:     c.SMTP.Port,
			Username: c.SMTP.Username,
			Password: pw,
			FromName: c.SMTP.FromName,
			FromAddr: sec.MailUser,
		})
	}

	deps := httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		Secrets:     sec,
		Searcher:    searcher,
		NewSender:   newSender,
		Lock:        lock,
	}

	mux := httpapi.NewMux(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Schedule.Enabled {
		g.Go(func() error {
			runScheduledBatches(ctx, deps)
			return nil
		})
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[main] engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.Cors,
			httpapi.RequestID,
			httpapi.AccessLog,
			httpapi.Recover,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

// runScheduledBatches replaces the external cron when schedule.enabled is
// true: at each configured hour it refreshes job postings, then runs one
// dispatch batch. Errors end the pass, not the runner.
func runScheduledBatches(ctx context.Context, deps httpapi.Deps) {
	task := func(ctx context.Context) error {
		cfg := deps.CfgVal.Load().(config.Config)

		release, err := deps.Lock.Acquire()
		if err != nil {
			return fmt.Errorf("run already in progress: %w", err)
		}
		defer release()

		if err := deps.Secrets.RequireForIngest(); err == nil {
			sum, err := ingest.Run(ctx, deps.DB, cfg, deps.Searcher)
			if err != nil {
				log.Printf("[schedule] ingest failed: %v", err)
			} else {
				log.Printf("[schedule] ingest done saved=%d skipped=%d", sum.Saved, sum.Skipped)
			}
		}

		if err := deps.Secrets.RequireForDispatch(); err != nil {
			return nil
		}
		sender, err := deps.NewSender()
		if err != nil {
			return err
		}
		rep, err := dispatch.Run(ctx, deps.DB, sender, dispatch.Options{
			Cap:            cfg.Dispatch.Cap,
			SendInterval:   time.Duration(cfg.Dispatch.SendIntervalSeconds) * time.Second,
			OnlyPending:    cfg.Dispatch.Resend == config.ResendPending,
			AttachmentPath: cfg.Dispatch.AttachmentPath,
			ApplicantName:  deps.Secrets.ApplicantName,
			FromAddr:       deps.Secrets.MailUser,
		})
		if err != nil {
			return err
		}
		log.Printf("[schedule] dispatch done sent=%d failed=%d", rep.Sent, rep.Failed)
		return nil
	}

	cfg := deps.CfgVal.Load().(config.Config)
	schedule.RunAtHours(ctx, cfg.Schedule.Hours, "schedule", task)
}
