package utils

import (
	"encoding/json"
	"net/http"
)

type M map[string]any

// RespondWithJSON writes data with the given status.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// RespondWithRaw writes an already encoded JSON body, used for cached responses.
func RespondWithRaw(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// Success and Fail write the {success, ...} envelope used by the package,
// contact, booking and action endpoints.
func Success(w http.ResponseWriter, statusCode int, body M) {
	out := M{"success": true}
	for k, v := range body {
		out[k] = v
	}
	RespondWithJSON(w, statusCode, out)
}

func Fail(w http.ResponseWriter, statusCode int, msg string) {
	RespondWithJSON(w, statusCode, M{"success": false, "error": msg})
}

// OK and NotOK write the {ok, ...} envelope of the itinerary and auth endpoints.
func OK(w http.ResponseWriter, statusCode int, body M) {
	out := M{"ok": true}
	for k, v := range body {
		out[k] = v
	}
	RespondWithJSON(w, statusCode, out)
}

func NotOK(w http.ResponseWriter, statusCode int, msg string) {
	RespondWithJSON(w, statusCode, M{"ok": false, "error": msg})
}
