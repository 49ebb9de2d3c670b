package enrich

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"outreach-engine/internal/store"
)

var reEmail = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

type Summary struct {
	Checked int `json:"checked"`
	Found   int `json:"found"`
}

type Enricher struct {
	hc  *http.Client
	lim *HostLimiter
}

func New() *Enricher {
	return &Enricher{
		hc:  &http.Client{Timeout: 15 * time.Second},
		lim: NewHostLimiter(1.0, 2),
	}
}

// Run walks records that still have no contact address, fetches their stored
// website/apply page, and backfills the first plausible email it finds.
// Strictly best-effort: any failure just moves on to the next record.
func (e *Enricher) Run(ctx context.Context, db *sql.DB, maxRecords int) (Summary, error) {
	var sum Summary

	records, err := store.MissingContactEmail(ctx, db, maxRecords)
	if err != nil {
		return sum, err
	}

	for _, rec := range records {
		sum.Checked++

		addr, err := e.findEmail(ctx, rec.Website)
		if err != nil {
			log.Printf("[enrich] fetch failed company=%q url=%q err=%v",
				rec.CompanyName, rec.Website, err)
			continue
		}
		if addr == "" {
			continue
		}

		ok, err := store.SetContactEmail(ctx, db, rec.ID, addr)
		if err != nil {
			log.Printf("[enrich] backfill failed company=%q err=%v", rec.CompanyName, err)
			continue
		}
		if ok {
			sum.Found++
			log.Printf("[enrich] found company=%q email=%q", rec.CompanyName, addr)
		}
	}

	log.Printf("[enrich] done checked=%d found=%d", sum.Checked, sum.Found)
	return sum, nil
}

func (e *Enricher) findEmail(ctx context.Context, pageURL string) (string, error) {
	if err := e.lim.WaitURL(ctx, pageURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "OutreachEngine/1.0 (+local)")

	res, err := e.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return "", nil // page gone; nothing to learn
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", err
	}

	// mailto anchors first; they are almost always real contact addresses
	var found string
	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		addr = strings.TrimSpace(addr)
		if plausibleEmail(addr) {
			found = addr
			return false
		}
		return true
	})
	if found != "" {
		return found, nil
	}

	// fall back to email-shaped text anywhere on the page
	for _, m := range reEmail.FindAllString(doc.Text(), -1) {
		if plausibleEmail(m) {
			return m, nil
		}
	}
	return "", nil
}

func plausibleEmail(addr string) bool {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" || !strings.Contains(addr, "@") {
		return false
	}
	// asset filenames and tracker addresses match the regex too
	for _, bad := range []string{".png", ".jpg", ".gif", ".svg", "example.com", "sentry", "no-reply", "noreply"} {
		if strings.Contains(addr, bad) {
			return false
		}
	}
	return true
}
