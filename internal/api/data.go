package api

import (
	"errors"
	"net/http"

	"datadesk/m/domain"
	"datadesk/m/internal/export"
	"datadesk/m/internal/store"
)

type dataRequest struct {
	Content *string `json:"content"`
	Format  *string `json:"format"`
	UserID  *int64  `json:"user_id"`
}

func (d dataRequest) input() (store.EntryInput, error) {
	if d.Content == nil || d.Format == nil || d.UserID == nil {
		return store.EntryInput{}, errors.New("content, format and user_id are required")
	}
	return store.EntryInput{Content: *d.Content, Format: *d.Format, UserID: *d.UserID}, nil
}

type dataResponse struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
	Format  string `json:"format"`
	UserID  int64  `json:"user_id"`
}

func newDataResponse(e domain.DataEntry) dataResponse {
	return dataResponse{ID: e.ID, Content: e.Content, Format: e.Format, UserID: e.UserID}
}

func (d dataResponse) record() export.Record {
	return export.Record{
		{Key: "id", Value: d.ID},
		{Key: "content", Value: d.Content},
		{Key: "format", Value: d.Format},
		{Key: "user_id", Value: d.UserID},
	}
}

func decodeEntry(w http.ResponseWriter, r *http.Request) (store.EntryInput, bool) {
	var req dataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return store.EntryInput{}, false
	}
	in, err := req.input()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return store.EntryInput{}, false
	}
	return in, true
}

// createEntry stores the payload as given, including a user_id that may
// belong to someone other than the caller.
func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeEntry(w, r)
	if !ok {
		return
	}
	var entry domain.DataEntry
	err := h.withStore(r.Context(), func(s *store.Store) error {
		created, err := s.CreateEntry(r.Context(), in)
		if err != nil {
			return err
		}
		entry = created
		return nil
	})
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	respondJSON(w, http.StatusCreated, newDataResponse(entry))
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	var entries []domain.DataEntry
	err := h.withStore(r.Context(), func(s *store.Store) error {
		var err error
		entries, err = s.ListEntries(r.Context())
		return err
	})
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	out := make([]dataResponse, len(entries))
	for i, e := range entries {
		out[i] = newDataResponse(e)
	}

	if wantsCSV(r) {
		records := make([]export.Record, len(out))
		for i, e := range out {
			records[i] = e.record()
		}
		if err := respondCSV(w, records); err != nil {
			h.fail(w, r, err, "")
		}
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusNotFound, "Data entry not found")
		return
	}
	var entry domain.DataEntry
	err := h.withStore(r.Context(), func(s *store.Store) error {
		var err error
		entry, err = s.GetEntry(r.Context(), id)
		return err
	})
	if err != nil {
		h.fail(w, r, err, "Data entry not found")
		return
	}
	respondJSON(w, http.StatusOK, newDataResponse(entry))
}

func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusNotFound, "Data entry not found")
		return
	}
	in, ok := decodeEntry(w, r)
	if !ok {
		return
	}
	var entry domain.DataEntry
	err := h.withStore(r.Context(), func(s *store.Store) error {
		updated, err := s.UpdateEntry(r.Context(), id, in)
		if err != nil {
			return err
		}
		entry = updated
		return nil
	})
	if err != nil {
		h.fail(w, r, err, "Data entry not found")
		return
	}
	respondJSON(w, http.StatusOK, newDataResponse(entry))
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusNotFound, "Data entry not found")
		return
	}
	err := h.withStore(r.Context(), func(s *store.Store) error {
		return s.DeleteEntry(r.Context(), id)
	})
	if err != nil {
		h.fail(w, r, err, "Data entry not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"detail": "Data entry deleted"})
}
