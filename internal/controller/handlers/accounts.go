package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"driveplane/internal/auth"
	"driveplane/internal/store"
	"driveplane/pkg/api"

	"github.com/google/uuid"
)

// CreateAccount handles POST /accounts (system secret only).
// It generates a new API key, hashes it for storage, and returns the raw key ONCE.
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		h.httpError(w, "Name is required", http.StatusBadRequest)
		return
	}
	role := store.Role(strings.ToLower(req.Role))
	if role != store.RoleAdmin && role != store.RoleUser {
		h.httpError(w, "Role must be admin or user", http.StatusBadRequest)
		return
	}

	apiKey, err := auth.GenerateKey()
	if err != nil {
		h.httpError(w, "Entropy failure", http.StatusInternalServerError)
		return
	}

	account := &store.Account{
		ID:        uuid.New(),
		Name:      req.Name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreateAccount(ctx, account, auth.HashKey(apiKey)); err != nil {
		h.logger.ErrorContext(ctx, "failed to create account", "error", err)
		h.httpError(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	// Return the raw key. This is the only time the caller sees it.
	h.respondJson(w, http.StatusCreated, api.CreateAccountResponse{
		ID:     account.ID.String(),
		Name:   account.Name,
		Role:   string(account.Role),
		ApiKey: apiKey,
	})
}
