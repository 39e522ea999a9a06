package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"datadesk/m/domain"
	"datadesk/m/internal/auth"
	"datadesk/m/internal/store"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c credentialsRequest) validate() error {
	if strings.TrimSpace(c.Username) == "" || c.Password == "" {
		return errors.New("username and password are required")
	}
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
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
		if _, err := s.GetUserByUsername(r.Context(), req.Username); err == nil {
			return store.ErrConflict
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		created, err := s.CreateUser(r.Context(), req.Username, hashed, domain.RoleUser)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	h.respondToken(w, r, user)
}

// login accepts the OAuth2 password form (username, password) or the same
// fields as JSON.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if isForm(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			respondError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.New(h.db).GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondUnauthorized(w, "Invalid credentials")
			return
		}
		h.fail(w, r, err, "")
		return
	}
	if !h.hasher.Verify(req.Password, user.HashedPassword) {
		respondUnauthorized(w, "Invalid credentials")
		return
	}

	h.respondToken(w, r, user)
}

func (h *Handler) respondToken(w http.ResponseWriter, r *http.Request, user domain.User) {
	token, expires, err := h.tokens.Issue(auth.Claims{Username: user.Username, Role: user.Role})
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(time.Until(expires).Round(time.Second) / time.Second),
	})
}

func isForm(r *http.Request) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded")
}
