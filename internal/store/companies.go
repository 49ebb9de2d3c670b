package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"outreach-engine/internal/domain"
)

// ErrDuplicate means a record with the same external job id (or the same
// company/title pair) is already present.
var ErrDuplicate = errors.New("record already exists")

// Exists checks by external job id OR by the (company, title) pair, matching
// how ingestion and the save endpoint dedup.
func Exists(ctx context.Context, db *sql.DB, jobID, companyName, roleTitle string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `
SELECT 1 FROM companies
WHERE (external_job_id != '' AND external_job_id = ?)
   OR (company_name = ? AND role_title = ?)
LIMIT 1;`,
		jobID, companyName, roleTitle,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertCompany assigns the next serial (max+1, read-then-write; callers
// serialize runs via runlock) and inserts. Callers run Exists first; the
// unique index on external_job_id is the backstop, surfacing as
// ErrDuplicate.
func InsertCompany(ctx context.Context, db *sql.DB, rec *domain.CompanyRecord) error {
	var maxSerial sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(serial_no) FROM companies;`).Scan(&maxSerial); err != nil {
		return err
	}
	rec.SerialNo = maxSerial.Int64 + 1

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.MailStatus == "" {
		rec.MailStatus = domain.MailNotSent
	}
	if rec.InterviewStatus == "" {
		rec.InterviewStatus = "No Idea"
	}
	if rec.VisitedOffice == "" {
		rec.VisitedOffice = "No"
	}

	res, err := db.ExecContext(ctx, `
INSERT INTO companies (
  external_job_id, company_name, role_title, website, contact_phone,
  contact_email, location, mail_status, interview_status, visited_office,
  is_favorite, serial_no, created_at, updated_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		rec.ExternalJobID, rec.CompanyName, rec.RoleTitle, rec.Website,
		rec.ContactPhone, rec.ContactEmail, rec.Location, string(rec.MailStatus),
		rec.InterviewStatus, rec.VisitedOffice, boolToInt(rec.IsFavorite),
		rec.SerialNo, rec.CreatedAt.Format(time.RFC3339), rec.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	rec.ID, _ = res.LastInsertId()
	return nil
}

type ListEligibleOpts struct {
	OnlyPending bool // skip records already marked Sent
	Limit       int
}

// ListEligible returns records with a non-empty contact email, serial asc.
func ListEligible(ctx context.Context, db *sql.DB, opts ListEligibleOpts) ([]domain.CompanyRecord, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}

	where := `WHERE contact_email != ''`
	if opts.OnlyPending {
		where += ` AND mail_status != 'Sent'`
	}

	rows, err := db.QueryContext(ctx, `
SELECT `+companyColumns+`
FROM companies
`+where+`
ORDER BY serial_no ASC
LIMIT ?;`, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCompanies(rows)
}

// ListCompanies returns every record, newest serial first (display order).
func ListCompanies(ctx context.Context, db *sql.DB) ([]domain.CompanyRecord, error) {
	rows, err := db.QueryContext(ctx, `
SELECT `+companyColumns+`
FROM companies
ORDER BY serial_no DESC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCompanies(rows)
}

// GetByKey fetches by external job id, or by the (company, title) pair when
// jobID is empty.
func GetByKey(ctx context.Context, db *sql.DB, jobID, companyName, roleTitle string) (*domain.CompanyRecord, error) {
	var row *sql.Row
	if jobID != "" {
		row = db.QueryRowContext(ctx, `
SELECT `+companyColumns+`
FROM companies WHERE external_job_id = ? LIMIT 1;`, jobID)
	} else {
		row = db.QueryRowContext(ctx, `
SELECT `+companyColumns+`
FROM companies WHERE company_name = ? AND role_title = ? LIMIT 1;`, companyName, roleTitle)
	}

	rec, err := scanCompany(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkSent flips the record to Sent. A failed transport send never reaches
// here, so an unsent record is left byte-for-byte untouched.
func MarkSent(ctx context.Context, db *sql.DB, id int64, at time.Time) error {
	_, err := db.ExecContext(ctx, `
UPDATE companies
SET mail_status = 'Sent', mail_sent_at = ?, updated_at = ?
WHERE id = ?;`,
		at.UTC().Format(time.RFC3339), at.UTC().Format(time.RFC3339), id)
	return err
}

// ResetSent bulk-clears Sent status and the sent timestamp; returns rows
// affected.
func ResetSent(ctx context.Context, db *sql.DB) (int64, error) {
	res, err := db.ExecContext(ctx, `
UPDATE companies
SET mail_status = 'Not Sent', mail_sent_at = NULL, updated_at = ?
WHERE mail_status = 'Sent';`,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetContactEmail backfills an address only when the field is still empty,
// so enrichment never clobbers a manual entry.
func SetContactEmail(ctx context.Context, db *sql.DB, id int64, email string) (bool, error) {
	res, err := db.ExecContext(ctx, `
UPDATE companies
SET contact_email = ?, updated_at = ?
WHERE id = ? AND contact_email = '';`,
		strings.TrimSpace(email), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkReplied flips interview status for every record contacted at addr.
func MarkReplied(ctx context.Context, db *sql.DB, addr string) (int64, error) {
	res, err := db.ExecContext(ctx, `
UPDATE companies
SET interview_status = 'Replied', updated_at = ?
WHERE contact_email = ? AND mail_status = 'Sent' AND interview_status != 'Replied';`,
		time.Now().UTC().Format(time.RFC3339), strings.TrimSpace(addr))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ContactedEmails lists distinct addresses the engine has written to.
func ContactedEmails(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `
SELECT DISTINCT contact_email FROM companies
WHERE contact_email != '' AND mail_status = 'Sent';`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out[strings.ToLower(e)] = true
	}
	return out, rows.Err()
}

// MissingContactEmail lists records enrichment can still help, serial asc.
func MissingContactEmail(ctx context.Context, db *sql.DB, limit int) ([]domain.CompanyRecord, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := db.QueryContext(ctx, `
SELECT `+companyColumns+`
FROM companies
WHERE contact_email = '' AND website != ''
ORDER BY serial_no ASC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCompanies(rows)
}

type Stats struct {
	TotalWithEmail int64 `json:"totalWithEmail"`
	SentToday      int64 `json:"todaySent"`
	Pending        int64 `json:"pendingEmails"`
	SentTotal      int64 `json:"sentCount"`
	NotSentTotal   int64 `json:"notSentCount"`
}

func CountStats(ctx context.Context, db *sql.DB, now time.Time) (Stats, error) {
	var s Stats
	startOfDay := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)

	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM companies WHERE contact_email != '';`,
	).Scan(&s.TotalWithEmail); err != nil {
		return s, err
	}
	if err := db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM companies
WHERE mail_status = 'Sent' AND mail_sent_at >= ?;`,
		startOfDay.Format(time.RFC3339),
	).Scan(&s.SentToday); err != nil {
		return s, err
	}
	if err := db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM companies
WHERE contact_email != '' AND mail_status != 'Sent';`,
	).Scan(&s.Pending); err != nil {
		return s, err
	}
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM companies WHERE mail_status = 'Sent';`,
	).Scan(&s.SentTotal); err != nil {
		return s, err
	}
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM companies WHERE mail_status != 'Sent';`,
	).Scan(&s.NotSentTotal); err != nil {
		return s, err
	}
	return s, nil
}

// ---- scanning ----

const companyColumns = `id, external_job_id, company_name, role_title, website,
  contact_phone, contact_email, location, mail_status, mail_sent_at,
  interview_status, visited_office, is_favorite, serial_no, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*domain.CompanyRecord, error) {
	var rec domain.CompanyRecord
	var status string
	var sentAt sql.NullString
	var fav int
	var createdStr, updatedStr string

	if err := row.Scan(
		&rec.ID, &rec.ExternalJobID, &rec.CompanyName, &rec.RoleTitle,
		&rec.Website, &rec.ContactPhone, &rec.ContactEmail, &rec.Location,
		&status, &sentAt, &rec.InterviewStatus, &rec.VisitedOffice,
		&fav, &rec.SerialNo, &createdStr, &updatedStr,
	); err != nil {
		return nil, err
	}

	rec.MailStatus = domain.MailStatus(status)
	rec.IsFavorite = fav != 0
	if sentAt.Valid && sentAt.String != "" {
		if t, err := time.Parse(time.RFC3339, sentAt.String); err == nil {
			rec.MailSentAt = &t
		}
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return &rec, nil
}

func scanCompanies(rows *sql.Rows) ([]domain.CompanyRecord, error) {
	var out []domain.CompanyRecord
	for rows.Next() {
		rec, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed")
}
