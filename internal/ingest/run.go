package ingest

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/search"
	"outreach-engine/internal/store"
)

type Summary struct {
	Total     int       `json:"total"`
	Saved     int       `json:"saved"`
	Skipped   int       `json:"skipped"`
	Timestamp time.Time `json:"timestamp"`
}

// Run fetches every configured keyword sequentially (the API is rate
// limited; no fan-out), merges results by external job id, and persists the
// previously-unseen ones. A failed keyword contributes zero results, a
// failed insert is skipped and logged; the run itself only fails on a dead
// store.
func Run(ctx context.Context, db *sql.DB, cfg config.Config, s search.Searcher) (Summary, error) {
	var sum Summary

	var all []domain.Posting
	seen := map[string]bool{}

	for _, kw := range cfg.Search.Queries {
		query := kw
		if cfg.Search.Region != "" {
			query = kw + " " + cfg.Search.Region
		}

		log.Printf("[ingest] fetching query=%q", query)
		results, err := s.Search(ctx, query, cfg.Search.NumPages)
		if err != nil {
			log.Printf("[ingest] fetch failed query=%q err=%v", query, err)
			continue
		}

		for _, p := range results {
			if p.JobID == "" || seen[p.JobID] {
				continue
			}
			seen[p.JobID] = true
			all = append(all, p)
		}
	}

	sum.Total = len(all)
	log.Printf("[ingest] unique postings=%d", sum.Total)

	fallbackRegion := regionFallback(cfg.Search.Region)

	for _, p := range all {
		exists, err := store.Exists(ctx, db, p.JobID, p.EmployerName, p.Title)
		if err != nil {
			// Bias toward re-inserting over silently dropping; the unique
			// index catches the true duplicates.
			log.Printf("[ingest] exists check failed job_id=%q err=%v", p.JobID, err)
			exists = false
		}
		if exists {
			sum.Skipped++
			continue
		}

		rec := domain.CompanyRecord{
			ExternalJobID: p.JobID,
			CompanyName:   p.EmployerName,
			RoleTitle:     p.Title,
			Website:       p.ApplyLink,
			Location:      p.Location(fallbackRegion),
			MailStatus:    domain.MailNotSent,
		}

		if err := store.InsertCompany(ctx, db, &rec); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				sum.Skipped++
				continue
			}
			log.Printf("[ingest] insert failed job_id=%q company=%q err=%v",
				p.JobID, p.EmployerName, err)
			continue
		}
		sum.Saved++
	}

	sum.Timestamp = time.Now().UTC()
	log.Printf("[ingest] done total=%d saved=%d skipped=%d", sum.Total, sum.Saved, sum.Skipped)

	if err := store.InsertRunLog(ctx, db, store.RunLog{
		Kind:       store.RunKindIngest,
		ExecutedAt: sum.Timestamp,
		Saved:      sum.Saved,
		Skipped:    sum.Skipped,
	}); err != nil {
		log.Printf("[ingest] run log failed err=%v", err)
	}

	return sum, nil
}

// regionFallback turns the query qualifier ("in UAE") into the location
// default used when a posting carries no city/country.
func regionFallback(region string) string {
	r := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(region), "in "))
	if r == "" {
		return "UAE"
	}
	return r
}
