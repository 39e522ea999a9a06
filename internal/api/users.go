package api

import (
	"bytes"
	"net/http"

	"datadesk/m/domain"
	"datadesk/m/internal/chart"
	"datadesk/m/internal/export"
	"datadesk/m/internal/store"
)

// userResponse is the public shape of a user; the password hash has no field here.
type userResponse struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

func newUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

func (u userResponse) record() export.Record {
	return export.Record{
		{Key: "id", Value: u.ID},
		{Key: "username", Value: u.Username},
		{Key: "role", Value: u.Role},
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	var users []domain.User
	err := h.withStore(r.Context(), func(s *store.Store) error {
		var err error
		users, err = s.ListUsers(r.Context())
		return err
	})
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = newUserResponse(u)
	}

	if wantsCSV(r) {
		records := make([]export.Record, len(out))
		for i, u := range out {
			records[i] = u.record()
		}
		if err := respondCSV(w, records); err != nil {
			h.fail(w, r, err, "")
		}
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) rolesChart(w http.ResponseWriter, r *http.Request) {
	var counts []store.RoleCount
	err := h.withStore(r.Context(), func(s *store.Store) error {
		var err error
		counts, err = s.RoleCounts(r.Context())
		return err
	})
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	var buf bytes.Buffer
	if err := chart.RoleChart(&buf, counts); err != nil {
		h.fail(w, r, err, "")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	var user domain.User
	err := h.withStore(r.Context(), func(s *store.Store) error {
		var err error
		user, err = s.GetUser(r.Context(), id)
		return err
	})
	if err != nil {
		h.fail(w, r, err, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	var user domain.User
	err = h.withStore(r.Context(), func(s *store.Store) error {
		updated, err := s.UpdateUser(r.Context(), id, req.Username, hashed)
		if err != nil {
			return err
		}
		user = updated
		return nil
	})
	if err != nil {
		h.fail(w, r, err, "User not found")
		return
	}

	admin, _ := userFrom(r.Context())
	h.logger.Info("user updated", "user_id", user.ID, "by", admin.Username)
	respondJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	err := h.withStore(r.Context(), func(s *store.Store) error {
		return s.DeleteUser(r.Context(), id)
	})
	if err != nil {
		h.fail(w, r, err, "User not found")
		return
	}

	admin, _ := userFrom(r.Context())
	h.logger.Info("user deleted", "user_id", id, "by", admin.Username)
	respondJSON(w, http.StatusOK, map[string]string{"detail": "User deleted"})
}
