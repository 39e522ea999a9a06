package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"datadesk/m/domain"
	"datadesk/m/internal/auth"
	"datadesk/m/internal/store"
)

type ctxKey string

const (
	ctxClaims ctxKey = "claims"
	ctxUser   ctxKey = "user"
)

func claimsFrom(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(ctxClaims).(auth.Claims)
	return c, ok
}

func userFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxUser).(domain.User)
	return u, ok
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// authenticate validates the bearer token and stores its claims on the request.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondUnauthorized(w, "Not authenticated")
			return
		}
		claims, err := h.tokens.Validate(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredCredential) {
				respondUnauthorized(w, "Token expired")
				return
			}
			respondUnauthorized(w, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loadUser resolves the authenticated username to its current user record.
// Tokens of users deleted after issuance are rejected.
func (h *Handler) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r.Context())
		if !ok {
			respondUnauthorized(w, "Not authenticated")
			return
		}
		user, err := store.New(h.db).GetUserByUsername(r.Context(), claims.Username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondUnauthorized(w, "User not found")
				return
			}
			h.fail(w, r, err, "")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin rejects callers whose role is not admin. The stored user's role
// wins over the token claim when loadUser ran first.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var role domain.Role
		if u, ok := userFrom(r.Context()); ok {
			role = u.Role
		} else if c, ok := claimsFrom(r.Context()); ok {
			role = c.Role
		} else {
			respondUnauthorized(w, "Not authenticated")
			return
		}
		if role != domain.RoleAdmin {
			respondError(w, http.StatusForbidden, "Admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			h.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
