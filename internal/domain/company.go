package domain

import "time"

type MailStatus string

const (
	MailNotSent MailStatus = "Not Sent"
	MailSent    MailStatus = "Sent"
)

// CompanyRecord is one discovered job/company pairing. Contact fields start
// empty and get filled in manually or by enrichment.
type CompanyRecord struct {
	ID              int64      `json:"id"`
	ExternalJobID   string     `json:"jobId"`
	CompanyName     string     `json:"companyName"`
	RoleTitle       string     `json:"companyDetail"`
	Website         string     `json:"companyWebsite"`
	ContactPhone    string     `json:"companyContact"`
	ContactEmail    string     `json:"companyMail"`
	Location        string     `json:"companyLocation"`
	MailStatus      MailStatus `json:"mailSent"`
	MailSentAt      *time.Time `json:"mailSentAt,omitempty"`
	InterviewStatus string     `json:"interview"`
	VisitedOffice   string     `json:"visitedOffice"`
	IsFavorite      bool       `json:"isFavorite"`
	SerialNo        int64      `json:"serialNo"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
