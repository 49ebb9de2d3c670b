package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/store"
)

type CompaniesHandler struct {
	Deps Deps
}

// Get doubles as list and existence probe, keyed by jobId or the
// companyName+jobTitle pair, mirroring the save endpoint it replaces.
func (h CompaniesHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobID := q.Get("jobId")
	companyName := q.Get("companyName")
	jobTitle := q.Get("jobTitle")

	if jobID != "" || (companyName != "" && jobTitle != "") {
		rec, err := store.GetByKey(r.Context(), h.Deps.DB, jobID, companyName, jobTitle)
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "Failed to check job", err)
			return
		}

		var job any
		if rec != nil {
			job = map[string]any{
				"companyName":   rec.CompanyName,
				"companyDetail": rec.RoleTitle,
				"serialNo":      rec.SerialNo,
			}
		}
		WriteJSON(w, http.StatusOK, Envelope{"exists": rec != nil, "job": job})
		return
	}

	records, err := store.ListCompanies(r.Context(), h.Deps.DB)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Failed to fetch jobs", err)
		return
	}
	if records == nil {
		records = []domain.CompanyRecord{}
	}
	WriteSuccess(w, http.StatusOK, "ok", Envelope{
		"data":  records,
		"count": len(records),
	})
}

type saveRecordReq struct {
	JobID         string `json:"jobId"`
	CompanyName   string `json:"companyName"`
	CompanyDetail string `json:"companyDetail"`
	Website       string `json:"companyWebsite"`
	ContactPhone  string `json:"companyContact"`
	ContactEmail  string `json:"companyMail"`
	Location      string `json:"companyLocation"`
}

// Save inserts one record (manual entry or a UI-side save); duplicates get
// 409 rather than a second row.
func (h CompaniesHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRecordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	exists, err := store.Exists(r.Context(), h.Deps.DB, req.JobID, req.CompanyName, req.CompanyDetail)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Failed to save job", err)
		return
	}
	if exists {
		WriteJSON(w, http.StatusConflict, Envelope{
			"success":   false,
			"message":   "Job already exists in database",
			"duplicate": true,
		})
		return
	}

	rec := domain.CompanyRecord{
		ExternalJobID: req.JobID,
		CompanyName:   req.CompanyName,
		RoleTitle:     req.CompanyDetail,
		Website:       req.Website,
		ContactPhone:  req.ContactPhone,
		ContactEmail:  req.ContactEmail,
		Location:      req.Location,
		MailStatus:    domain.MailNotSent,
	}
	if err := store.InsertCompany(r.Context(), h.Deps.DB, &rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			WriteJSON(w, http.StatusConflict, Envelope{
				"success":   false,
				"message":   "Job already exists in database",
				"duplicate": true,
			})
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "Failed to save job", err)
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Deps.Hub.Publish(events.MakeEvent(reqID, events.TypeRecordSaved, map[string]any{
		"id": rec.ID, "serialNo": rec.SerialNo,
	}))

	WriteJSON(w, http.StatusCreated, Envelope{
		"success":   true,
		"message":   "Job saved successfully",
		"id":        rec.ID,
		"serialNo":  rec.SerialNo,
		"duplicate": false,
	})
}
