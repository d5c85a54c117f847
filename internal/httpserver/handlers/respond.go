package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/linkjump/internal/domain"
)

// maxBodyBytes caps request bodies of the resolution routes.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Path  string `json:"path,omitempty"`
	Type  string `json:"type,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeMalformed reports a handler tree that failed to parse, with its location.
func writeMalformed(w http.ResponseWriter, err *domain.MalformedHandlerError) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error: err.Error(),
		Path:  err.Path,
		Type:  err.Type,
	})
}

// decodeBody reads a JSON body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// boolParam reads a boolean query parameter, def when absent or invalid.
func boolParam(r *http.Request, key string, def bool) bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

