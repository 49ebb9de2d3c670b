package httpapi

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"outreach-engine/internal/config"
)

type ConfigHandler struct {
	Deps Deps
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cur := h.Deps.CfgVal.Load().(config.Config)
	writeJSON(w, cur)
}

func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var incoming config.Config
	if err := dec.Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if dec.More() {
		WriteError(w, r, http.StatusBadRequest, "Invalid JSON: trailing data", nil)
		return
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		// structured errors so the caller can show them per-field
		WriteJSON(w, http.StatusBadRequest, vr)
		return
	}

	if err := config.SaveAtomic(h.Deps.UserCfgPath, normalized); err != nil {
		WriteError(w, r, http.StatusBadRequest, "Failed to save config", err)
		return
	}

	saved, err := h.Deps.LoadCfg()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Saved but reload failed", err)
		return
	}
	h.Deps.CfgVal.Store(saved)
	writeJSON(w, saved)
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.Deps.UserCfgPath)
	writeJSON(w, map[string]any{"path": abs})
}
