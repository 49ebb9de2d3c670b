package domain

// Posting is a single result from the search API, field names per the
// upstream wire format.
type Posting struct {
	JobID             string   `json:"job_id"`
	Title             string   `json:"job_title"`
	EmployerName      string   `json:"employer_name"`
	EmployerLogo      string   `json:"employer_logo,omitempty"`
	City              string   `json:"job_city,omitempty"`
	Country           string   `json:"job_country"`
	EmploymentType    string   `json:"job_employment_type,omitempty"`
	IsRemote          bool     `json:"job_is_remote"`
	MinSalary         *float64 `json:"job_min_salary,omitempty"`
	MaxSalary         *float64 `json:"job_max_salary,omitempty"`
	SalaryCurrency    string   `json:"job_salary_currency,omitempty"`
	PostedAtTimestamp *int64   `json:"job_posted_at_timestamp,omitempty"`
	Publisher         string   `json:"job_publisher,omitempty"`
	Description       string   `json:"job_description,omitempty"`
	ApplyLink         string   `json:"job_apply_link"`
}

// Location renders "city, country" with a region fallback for postings that
// carry neither.
func (p Posting) Location(fallback string) string {
	switch {
	case p.City != "" && p.Country != "":
		return p.City + ", " + p.Country
	case p.Country != "":
		return p.Country
	default:
		return fallback
	}
}
