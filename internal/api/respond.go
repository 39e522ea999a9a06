package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"datadesk/m/internal/auth"
	"datadesk/m/internal/export"
	"datadesk/m/internal/store"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	respondError(w, http.StatusUnauthorized, message)
}

func respondCSV(w http.ResponseWriter, records []export.Record) error {
	body, err := export.ToCSV(records)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
	return nil
}

// wantsCSV reports whether the caller asked for ?response_format=csv.
func wantsCSV(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("response_format")), "csv")
}

// pathID parses the {id} URL parameter. Ids that are not positive integers
// cannot match any row.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// fail maps domain errors onto HTTP statuses. notFound is the message used
// for store.ErrNotFound.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		respondError(w, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrConflict):
		respondError(w, http.StatusConflict, "Username is taken")
	case errors.Is(err, store.ErrUserHasEntries):
		respondError(w, http.StatusConflict, "User still owns data entries")
	case errors.Is(err, store.ErrUnknownUser):
		respondError(w, http.StatusUnprocessableEntity, "user_id does not reference an existing user")
	case errors.Is(err, auth.ErrPasswordTooLong):
		respondError(w, http.StatusBadRequest, "password must be at most 72 bytes")
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
