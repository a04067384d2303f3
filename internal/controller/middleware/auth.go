// Package middleware contains HTTP middleware for the controller.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"driveplane/internal/auth"
	"driveplane/internal/drive"
	"driveplane/internal/logger"
	"driveplane/internal/store"
	"driveplane/pkg/api"

	"github.com/google/uuid"
)

type accountKey struct{}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.ErrorResponse{
		Error: message,
		Code:  http.StatusText(status),
	})
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware resolves the caller's account from its API key.
func AuthMiddleware(s store.AccountStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				writeError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}
			key, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			account, err := s.GetAccountByAPIKeyHash(r.Context(), auth.HashKey(key))
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if account == nil {
				writeError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}

			ctx := NewContextWithAccount(r.Context(), account)
			ctx = logger.WithActorID(ctx, account.ID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewContextWithAccount stores account in ctx the way AuthMiddleware does.
func NewContextWithAccount(ctx context.Context, account *store.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFromContext returns the authenticated account.
func AccountFromContext(ctx context.Context) (*store.Account, bool) {
	account, ok := ctx.Value(accountKey{}).(*store.Account)
	return account, ok && account != nil
}

// AccountIDFromContext returns the authenticated account id, or uuid.Nil.
func AccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	account, ok := AccountFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return account.ID, true
}

// ActorFromContext returns the engine actor for the authenticated account.
func ActorFromContext(ctx context.Context) (drive.Actor, bool) {
	account, ok := AccountFromContext(ctx)
	if !ok {
		return drive.Actor{}, false
	}
	return drive.Actor{ID: account.ID, Role: account.Role}, true
}

// RequireRole rejects authenticated callers without the given role.
// It must run after AuthMiddleware.
func RequireRole(role store.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, ok := AccountFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if account.Role != role {
				writeError(w, http.StatusForbidden, "Requires "+string(role)+" role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
