package dispatch

import (
	"context"
	"database/sql"
	"log"
	"time"

	"golang.org/x/time/rate"

	"outreach-engine/internal/mail"
	"outreach-engine/internal/store"
)

type Result struct {
	Company string `json:"company"`
	Email   string `json:"email"`
	Status  string `json:"status"` // sent | failed
	Error   string `json:"error,omitempty"`
}

type Report struct {
	Sent      int       `json:"sent"`
	Failed    int       `json:"failed"`
	Results   []Result  `json:"results"`
	Timestamp time.Time `json:"timestamp"`
}

type Options struct {
	Cap            int
	SendInterval   time.Duration // spacing between sends; transport rate limit
	OnlyPending    bool          // resend policy: true skips already-Sent records
	AttachmentPath string
	ApplicantName  string
	FromAddr       string
}

// Run selects up to Cap records with a contact address (serial order),
// renders the cover letter per record, and sends one at a time. Sends are
// spaced by a limiter rather than a bare sleep, but still strictly
// sequential; failures are recorded and skipped, never retried here. An
// unsent record stays eligible for the next run.
func Run(ctx context.Context, db *sql.DB, sender mail.Sender, opts Options) (Report, error) {
	rep := Report{Results: []Result{}}

	if opts.Cap <= 0 {
		opts.Cap = 50
	}
	if opts.SendInterval <= 0 {
		opts.SendInterval = 3 * time.Second
	}

	records, err := store.ListEligible(ctx, db, store.ListEligibleOpts{
		OnlyPending: opts.OnlyPending,
		Limit:       opts.Cap,
	})
	if err != nil {
		return rep, err
	}

	if len(records) == 0 {
		log.Printf("[dispatch] no companies with email addresses found")
		rep.Timestamp = time.Now().UTC()
		return rep, nil
	}

	log.Printf("[dispatch] candidates=%d only_pending=%v cap=%d",
		len(records), opts.OnlyPending, opts.Cap)

	// Burst 1: first send goes immediately, the rest are spaced out.
	lim := rate.NewLimiter(rate.Every(opts.SendInterval), 1)

	for _, rec := range records {
		if err := lim.Wait(ctx); err != nil {
			// context cancelled mid-run; report what happened so far
			return rep, err
		}

		subject, text, html, err := mail.RenderLetter(mail.LetterParams{
			CompanyName:   rec.CompanyName,
			RoleTitle:     rec.RoleTitle,
			ApplicantName: opts.ApplicantName,
			ContactEmail:  opts.FromAddr,
		})
		if err != nil {
			rep.Failed++
			rep.Results = append(rep.Results, Result{
				Company: rec.CompanyName, Email: rec.ContactEmail,
				Status: "failed", Error: err.Error(),
			})
			log.Printf("[dispatch] render failed company=%q err=%v", rec.CompanyName, err)
			continue
		}

		err = sender.Send(ctx, mail.Message{
			To:             rec.ContactEmail,
			Subject:        subject,
			Text:           text,
			HTML:           html,
			AttachmentPath: opts.AttachmentPath,
		})
		if err != nil {
			rep.Failed++
			rep.Results = append(rep.Results, Result{
				Company: rec.CompanyName, Email: rec.ContactEmail,
				Status: "failed", Error: err.Error(),
			})
			log.Printf("[dispatch] send failed company=%q email=%q err=%v",
				rec.CompanyName, rec.ContactEmail, err)
			continue
		}

		now := time.Now().UTC()
		if err := store.MarkSent(ctx, db, rec.ID, now); err != nil {
			// The mail is out; count it sent and surface the store error.
			log.Printf("[dispatch] mark sent failed id=%d err=%v", rec.ID, err)
		}

		rep.Sent++
		rep.Results = append(rep.Results, Result{
			Company: rec.CompanyName, Email: rec.ContactEmail, Status: "sent",
		})
		log.Printf("[dispatch] sent company=%q email=%q", rec.CompanyName, rec.ContactEmail)
	}

	rep.Timestamp = time.Now().UTC()
	log.Printf("[dispatch] done sent=%d failed=%d", rep.Sent, rep.Failed)

	if err := store.InsertRunLog(ctx, db, store.RunLog{
		Kind:       store.RunKindDispatch,
		ExecutedAt: rep.Timestamp,
		Sent:       rep.Sent,
		Failed:     rep.Failed,
	}); err != nil {
		log.Printf("[dispatch] run log failed err=%v", err)
	}

	return rep, nil
}

// Reset re-enables every Sent record for another pass.
func Reset(ctx context.Context, db *sql.DB) (int64, error) {
	n, err := store.ResetSent(ctx, db)
	if err != nil {
		return 0, err
	}
	log.Printf("[dispatch] reset sent records=%d", n)
	return n, nil
}
