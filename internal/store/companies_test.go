package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-engine/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func testRecord(jobID, company, role, email string) domain.CompanyRecord {
	return domain.CompanyRecord{
		ExternalJobID: jobID,
		CompanyName:   company,
		RoleTitle:     role,
		ContactEmail:  email,
		Location:      "Dubai, UAE",
	}
}

func TestInsertCompanySerialsAreMonotonic(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i, id := range []string{"j1", "j2", "j3"} {
		rec := testRecord(id, "Co "+id, "Dev", "")
		require.NoError(t, InsertCompany(ctx, db.Pool, &rec))
		assert.Equal(t, int64(i+1), rec.SerialNo)
		assert.NotZero(t, rec.ID)
	}
}

func TestInsertCompanyDefaults(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := testRecord("j1", "Acme", "Dev", "")
	require.NoError(t, InsertCompany(ctx, db.Pool, &rec))

	got, err := GetByKey(ctx, db.Pool, "j1", "", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.MailNotSent, got.MailStatus)
	assert.Nil(t, got.MailSentAt)
	assert.Equal(t, "No Idea", got.InterviewStatus)
	assert.Equal(t, "No", got.VisitedOffice)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestInsertCompanyDuplicateJobID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := testRecord("j1", "Acme", "Dev", "")
	require.NoError(t, InsertCompany(ctx, db.Pool, &rec))

	dup := testRecord("j1", "Other Co", "Other Role", "")
	err := InsertCompany(ctx, db.Pool, &dup)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestExists(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := testRecord("j1", "Acme", "Frontend Developer", "")
	require.NoError(t, InsertCompany(ctx, db.Pool, &rec))

	tests := []struct {
		name                  string
		jobID, company, title string
		want                  bool
	}{
		{"by job id", "j1", "", "", true},
		{"by company and title", "", "Acme", "Frontend Developer", true},
		{"same company different title", "", "Acme", "Backend Developer", false},
		{"unknown job id", "j2", "zzz", "zzz", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Exists(ctx, db.Pool, tt.jobID, tt.company, tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmptyJobIDsDoNotCollide(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a := testRecord("", "Acme", "Dev", "")
	b := testRecord("", "Globex", "Dev", "")
	require.NoError(t, InsertCompany(ctx, db.Pool, &a))
	require.NoError(t, InsertCompany(ctx, db.Pool, &b))
}

func TestMarkSentAndReset(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a := testRecord("j1", "Acme", "Dev", "a@acme.test")
	b := testRecord("j2", "Globex", "Dev", "b@globex.test")
	require.NoError(t, InsertCompany(ctx, db.Pool, &a))
	require.NoError(t, InsertCompany(ctx, db.Pool, &b))

	sentAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, MarkSent(ctx, db.Pool, a.ID, sentAt))

	got, err := GetByKey(ctx, db.Pool, "j1", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.MailSent, got.MailStatus)
	require.NotNil(t, got.MailSentAt)
	assert.Equal(t, sentAt, got.MailSentAt.UTC())

	// The other record is untouched.
	other, err := GetByKey(ctx, db.Pool, "j2", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.MailNotSent, other.MailStatus)
	assert.Nil(t, other.MailSentAt)

	n, err := ResetSent(ctx, db.Pool)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err = GetByKey(ctx, db.Pool, "j1", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.MailNotSent, got.MailStatus)
	assert.Nil(t, got.MailSentAt)

	// Nothing left to reset.
	n, err = ResetSent(ctx, db.Pool)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListEligible(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	noMail := testRecord("j1", "NoMail", "Dev", "")
	sent := testRecord("j2", "AlreadySent", "Dev", "sent@x.test")
	pending := testRecord("j3", "Pending", "Dev", "pending@x.test")
	require.NoError(t, InsertCompany(ctx, db.Pool, &noMail))
	require.NoError(t, InsertCompany(ctx, db.Pool, &sent))
	require.NoError(t, InsertCompany(ctx, db.Pool, &pending))
	require.NoError(t, MarkSent(ctx, db.Pool, sent.ID, time.Now()))

	got, err := ListEligible(ctx, db.Pool, ListEligibleOpts{OnlyPending: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pending", got[0].CompanyName)

	got, err = ListEligible(ctx, db.Pool, ListEligibleOpts{OnlyPending: false})
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Serial order, ascending.
	assert.Equal(t, "AlreadySent", got[0].CompanyName)
	assert.Equal(t, "Pending", got[1].CompanyName)
}

func TestListEligibleLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := testRecord("", "Co"+string(rune('A'+i)), "Dev", "x@x.test")
		require.NoError(t, InsertCompany(ctx, db.Pool, &rec))
	}

	got, err := ListEligible(ctx, db.Pool, ListEligibleOpts{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].SerialNo)
}

func TestSetContactEmailOnlyWhenEmpty(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := testRecord("j1", "Acme", "Dev", "")
	require.NoError(t, InsertCompany(ctx, db.Pool, &rec))

	ok, err := SetContactEmail(ctx, db.Pool, rec.ID, "hr@acme.test")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = SetContactEmail(ctx, db.Pool, rec.ID, "other@acme.test")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := GetByKey(ctx, db.Pool, "j1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "hr@acme.test", got.ContactEmail)
}

func TestMarkReplied(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := testRecord("j1", "Acme", "Dev", "hr@acme.test")
	require.NoError(t, InsertCompany(ctx, db.Pool, &rec))
	require.NoError(t, MarkSent(ctx, db.Pool, rec.ID, time.Now()))

	n, err := MarkReplied(ctx, db.Pool, "hr@acme.test")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Second pass is a no-op.
	n, err = MarkReplied(ctx, db.Pool, "hr@acme.test")
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := GetByKey(ctx, db.Pool, "j1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Replied", got.InterviewStatus)
}

func TestCountStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sentToday := testRecord("j1", "A", "Dev", "a@x.test")
	sentOld := testRecord("j2", "B", "Dev", "b@x.test")
	pending := testRecord("j3", "C", "Dev", "c@x.test")
	noMail := testRecord("j4", "D", "Dev", "")
	require.NoError(t, InsertCompany(ctx, db.Pool, &sentToday))
	require.NoError(t, InsertCompany(ctx, db.Pool, &sentOld))
	require.NoError(t, InsertCompany(ctx, db.Pool, &pending))
	require.NoError(t, InsertCompany(ctx, db.Pool, &noMail))
	require.NoError(t, MarkSent(ctx, db.Pool, sentToday.ID, now))
	require.NoError(t, MarkSent(ctx, db.Pool, sentOld.ID, now.AddDate(0, 0, -2)))

	s, err := CountStats(ctx, db.Pool, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.TotalWithEmail)
	assert.Equal(t, int64(1), s.SentToday)
	assert.Equal(t, int64(1), s.Pending)
	assert.Equal(t, int64(2), s.SentTotal)
	assert.Equal(t, int64(2), s.NotSentTotal)
}

func TestRunLogs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	last, err := LastRun(ctx, db.Pool, RunKindDispatch)
	require.NoError(t, err)
	assert.Nil(t, last)

	first := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, InsertRunLog(ctx, db.Pool, RunLog{
		Kind: RunKindDispatch, ExecutedAt: first, Sent: 3, Failed: 1,
	}))
	require.NoError(t, InsertRunLog(ctx, db.Pool, RunLog{
		Kind: RunKindDispatch, ExecutedAt: first.Add(4 * time.Hour), Sent: 5,
	}))
	require.NoError(t, InsertRunLog(ctx, db.Pool, RunLog{
		Kind: RunKindIngest, ExecutedAt: first.Add(6 * time.Hour), Saved: 9,
	}))

	last, err = LastRun(ctx, db.Pool, RunKindDispatch)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, 5, last.Sent)
	assert.Equal(t, first.Add(4*time.Hour), last.ExecutedAt)
}
