package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/mail"
	"outreach-engine/internal/runlock"
	"outreach-engine/internal/store"
)

type stubSearcher struct {
	postings []domain.Posting
}

func (s stubSearcher) Search(ctx context.Context, query string, numPages int) ([]domain.Posting, error) {
	return s.postings, nil
}

type stubSender struct {
	sent []mail.Message
}

func (s *stubSender) Send(ctx context.Context, msg mail.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

const testSecret = "cron-secret-for-tests"

func newTestDeps(t *testing.T, searcher stubSearcher, sender *stubSender) Deps {
	t.Helper()

	dir := t.TempDir()
	db, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	var cfg config.Config
	cfg.App.Port = 38471
	cfg.Search.Host = "jsearch.test"
	cfg.Search.Queries = []string{"Frontend Developer"}
	cfg.Search.Region = "in UAE"
	cfg.Search.NumPages = 1
	cfg.Dispatch.Cap = 50
	cfg.Dispatch.SendIntervalSeconds = 1
	cfg.Dispatch.Resend = config.ResendPending
	cfg.Schedule.Hours = []int{8, 12, 14, 18}

	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	return Deps{
		DB:     db.Pool,
		Hub:    events.NewHub(),
		CfgVal: &cfgVal,
		Secrets: config.Secrets{
			SearchAPIKey:  "test-key",
			MailUser:      "me@example.test",
			ApplicantName: "Jane Example",
			CronSecret:    testSecret,
		},
		Searcher:  searcher,
		NewSender: func() (mail.Sender, error) { return sender, nil },
		Lock:      runlock.New(dir),
	}
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	var out map[string]any
	if rr.Body.Len() > 0 {
		_ = json.Unmarshal(rr.Body.Bytes(), &out)
	}
	return rr, out
}

func bearer(secret string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + secret}
}

func TestCronRoutesRequireSecret(t *testing.T) {
	deps := newTestDeps(t, stubSearcher{}, &stubSender{})
	mux := NewMux(deps)

	tests := []struct {
		name   string
		header map[string]string
	}{
		{"no header", nil},
		{"wrong secret", bearer("nope")},
		{"missing bearer prefix", map[string]string{"Authorization": testSecret}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := doJSON(t, mux, http.MethodPost, "/cron/refresh-jobs", nil, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, false, body["success"])

			rr, _ = doJSON(t, mux, http.MethodGet, "/cron/send-emails", nil, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestCronRoutesDisabledWithoutSecret(t *testing.T) {
	deps := newTestDeps(t, stubSearcher{}, &stubSender{})
	deps.Secrets.CronSecret = ""
	mux := NewMux(deps)

	// An empty configured secret must not make "Bearer " a valid credential.
	rr, _ := doJSON(t, mux, http.MethodPost, "/cron/refresh-jobs", nil, bearer(""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefreshJobsIngests(t *testing.T) {
	searcher := stubSearcher{postings: []domain.Posting{
		{JobID: "j1", Title: "Frontend Developer", EmployerName: "Acme", Country: "AE"},
		{JobID: "j2", Title: "Frontend Developer", EmployerName: "Globex", Country: "AE"},
	}}
	deps := newTestDeps(t, searcher, &stubSender{})
	mux := NewMux(deps)

	rr, body := doJSON(t, mux, http.MethodPost, "/cron/refresh-jobs", nil, bearer(testSecret))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Jobs refreshed successfully", body["message"])

	stats, ok := body["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), stats["saved"])

	// Second run skips everything.
	_, body = doJSON(t, mux, http.MethodPost, "/cron/refresh-jobs", nil, bearer(testSecret))
	stats = body["stats"].(map[string]any)
	assert.Equal(t, float64(0), stats["saved"])
	assert.Equal(t, float64(2), stats["skipped"])
}

func TestSendEmailsManual(t *testing.T) {
	sender := &stubSender{}
	deps := newTestDeps(t, stubSearcher{}, sender)
	mux := NewMux(deps)

	rec := domain.CompanyRecord{
		ExternalJobID: "j1", CompanyName: "Acme", RoleTitle: "Dev",
		ContactEmail: "hr@acme.test",
	}
	require.NoError(t, store.InsertCompany(context.Background(), deps.DB, &rec))

	rr, body := doJSON(t, mux, http.MethodPost, "/send-emails", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Send completed: 1 sent, 0 failed", body["message"])
	assert.Equal(t, float64(1), body["sent"])
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "hr@acme.test", sender.sent[0].To)
}

func TestSendEmailsRejectsBadPolicy(t *testing.T) {
	deps := newTestDeps(t, stubSearcher{}, &stubSender{})
	mux := NewMux(deps)

	rr, _ := doJSON(t, mux, http.MethodPost, "/send-emails",
		map[string]string{"policy": "everyone"}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSaveCompanyAndDuplicate(t *testing.T) {
	deps := newTestDeps(t, stubSearcher{}, &stubSender{})
	mux := NewMux(deps)

	payload := map[string]string{
		"jobId":         "j1",
		"companyName":   "Acme",
		"companyDetail": "Frontend Developer",
		"companyMail":   "hr@acme.test",
	}

	rr, body := doJSON(t, mux, http.MethodPost, "/companies", payload, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Job saved successfully", body["message"])
	assert.Equal(t, false, body["duplicate"])
	assert.Equal(t, float64(1), body["serialNo"])

	rr, body = doJSON(t, mux, http.MethodPost, "/companies", payload, nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Job already exists in database", body["message"])
	assert.Equal(t, true, body["duplicate"])
}

func TestCompaniesExistenceProbe(t *testing.T) {
	deps := newTestDeps(t, stubSearcher{}, &stubSender{})
	mux := NewMux(deps)

	rec := domain.CompanyRecord{ExternalJobID: "j1", CompanyName: "Acme", RoleTitle: "Dev"}
	require.NoError(t, store.InsertCompany(context.Background(), deps.DB, &rec))

	rr, body := doJSON(t, mux, http.MethodGet, "/companies?jobId=j1", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["exists"])

	rr, body = doJSON(t, mux, http.MethodGet, "/companies?jobId=j9", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, body["exists"])
	assert.Nil(t, body["job"])
}

func TestCompaniesList(t *testing.T) {
	deps := newTestDeps(t, stubSearcher{}, &stubSender{})
	mux := NewMux(deps)

	rr, body := doJSON(t, mux, http.MethodGet, "/companies", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), body["count"])

	rec := domain.CompanyRecord{ExternalJobID: "j1", CompanyName: "Acme", RoleTitle: "Dev"}
	require.NoError(t, store.InsertCompany(context.Background(), deps.DB, &rec))

	_, body = doJSON(t, mux, http.MethodGet, "/companies", nil, nil)
	assert.Equal(t, float64(1), body["count"])
}

func TestResetEmailsRoundTrip(t *testing.T) {
	deps := newTestDeps(t, stubSearcher{}, &stubSender{})
	mux := NewMux(deps)

	rec := domain.CompanyRecord{
		ExternalJobID: "j1", CompanyName: "Acme", RoleTitle: "Dev",
		ContactEmail: "hr@acme.test",
	}
	require.NoError(t, store.InsertCompany(context.Background(), deps.DB, &rec))
	require.NoError(t, store.MarkSent(context.Background(), deps.DB, rec.ID, time.Now()))

	rr, body := doJSON(t, mux, http.MethodGet, "/reset-emails", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), body["sentCount"])

	rr, body = doJSON(t, mux, http.MethodPost, "/reset-emails", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Successfully reset 1 emails", body["message"])
	assert.Equal(t, float64(1), body["resetCount"])

	_, body = doJSON(t, mux, http.MethodGet, "/reset-emails", nil, nil)
	assert.Equal(t, float64(0), body["sentCount"])

	_, body = doJSON(t, mux, http.MethodPost, "/reset-emails", nil, nil)
	assert.Equal(t, "No sent emails to reset", body["message"])
}

func TestCronStatus(t *testing.T) {
	deps := newTestDeps(t, stubSearcher{}, &stubSender{})
	mux := NewMux(deps)

	rr, body := doJSON(t, mux, http.MethodGet, "/cron/status", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["nextScheduledTime"])
	assert.Nil(t, body["lastExecution"])

	stats, ok := body["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(0), stats["totalWithEmail"])
	schedules, ok := stats["schedules"].([]any)
	require.True(t, ok)
	assert.Len(t, schedules, 4)
	assert.Equal(t, "8:00 AM UTC", schedules[0])
}

func TestMethodNotAllowed(t *testing.T) {
	deps := newTestDeps(t, stubSearcher{}, &stubSender{})
	mux := NewMux(deps)

	rr, _ := doJSON(t, mux, http.MethodDelete, "/companies", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
