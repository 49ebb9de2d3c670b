package httpapi

import (
	"encoding/json"
	"net/http"

	"outreach-engine/internal/config"
	"outreach-engine/internal/secrets"
)

type SecretsHandler struct {
	Deps Deps
}

type setSMTPPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) SetSMTPPassword(w http.ResponseWriter, r *http.Request) {
	var req setSMTPPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	cfg := h.Deps.CfgVal.Load().(config.Config)
	account := secrets.SMTPKeyringAccount(cfg.SMTP.Username, cfg.SMTP.Host)
	if err := secrets.SetMailPassword(account, req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "Failed to store password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
