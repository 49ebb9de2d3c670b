package httpapi

import (
	"encoding/json"
	"net/http"
)

// Every endpoint answers the same envelope: a success flag, a human message,
// then operation-specific fields.
type Envelope map[string]any

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteSuccess(w http.ResponseWriter, status int, message string, extra Envelope) {
	e := Envelope{"success": true, "message": message}
	for k, v := range extra {
		e[k] = v
	}
	WriteJSON(w, status, e)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	e := Envelope{"success": false, "message": message}
	if err != nil {
		e["error"] = err.Error()
	}
	if id := RequestIDFrom(r.Context()); id != "" {
		e["request_id"] = id
	}
	WriteJSON(w, status, e)
}
