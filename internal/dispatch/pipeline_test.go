package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/ingest"
	"outreach-engine/internal/store"
)

type stubSearch struct {
	byQuery map[string][]domain.Posting
}

func (s stubSearch) Search(ctx context.Context, query string, numPages int) ([]domain.Posting, error) {
	return s.byQuery[query], nil
}

// Full pass: two keywords with one overlapping posting, enrichment of two
// records with addresses by hand, then a capped send run.
func TestIngestThenDispatch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var cfg config.Config
	cfg.Search.Queries = []string{"Frontend Developer", "React Developer"}
	cfg.Search.Region = "in UAE"

	p := func(id, company string) domain.Posting {
		return domain.Posting{JobID: id, Title: "Dev", EmployerName: company, Country: "AE"}
	}
	searcher := stubSearch{byQuery: map[string][]domain.Posting{
		"Frontend Developer in UAE": {p("j1", "Acme"), p("j2", "Globex"), p("j3", "Initech")},
		"React Developer in UAE":    {p("j3", "Initech"), p("j4", "Umbrella"), p("j5", "Stark")},
	}}

	sum, err := ingest.Run(ctx, db.Pool, cfg, searcher)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Saved)

	// Only two records get a contact address.
	for _, jobID := range []string{"j1", "j4"} {
		rec, err := store.GetByKey(ctx, db.Pool, jobID, "", "")
		require.NoError(t, err)
		ok, err := store.SetContactEmail(ctx, db.Pool, rec.ID, "hr-"+jobID+"@example.test")
		require.NoError(t, err)
		require.True(t, ok)
	}

	opts := fastOpts()
	opts.Cap = 10

	sender := &fakeSender{}
	rep, err := Run(ctx, db.Pool, sender, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Sent)
	assert.Zero(t, rep.Failed)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "hr-j1@example.test", sender.sent[0].To)
	assert.Equal(t, "hr-j4@example.test", sender.sent[1].To)

	stats, err := store.CountStats(ctx, db.Pool, rep.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.SentTotal)
	assert.Zero(t, stats.Pending)
}
