// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"driveplane/internal/controller/middleware"
	"driveplane/internal/drive"
	"driveplane/internal/store"
	"driveplane/pkg/api"

	"github.com/google/uuid"
)

// StoreFactory combines the store interfaces the handlers use directly.
type StoreFactory interface {
	Ping(ctx context.Context) error
	store.AccountStore
}

// Engine is the drive service as seen by the HTTP layer.
type Engine interface {
	StartSession(ctx context.Context, actor drive.Actor, userID uuid.UUID, tier string) (*drive.Queue, error)
	GetQueue(ctx context.Context, actor drive.Actor, sessionID uuid.UUID) (*drive.Queue, error)
	Progress(ctx context.Context, actor drive.Actor, sessionID uuid.UUID) (drive.Progress, error)
	PreviewCombo(ctx context.Context, actor drive.Actor, sessionID uuid.UUID, spec drive.InsertionSpec) (*drive.Preview, error)
	InsertCombo(ctx context.Context, actor drive.Actor, sessionID uuid.UUID, spec drive.InsertionSpec, expectedVersion *int64) (*drive.InsertResult, error)
	BeginPurchase(ctx context.Context, actor drive.Actor, taskID uuid.UUID, expectedVersion *int64) (*store.TaskItem, error)
	CompleteTask(ctx context.Context, actor drive.Actor, taskID uuid.UUID, outcome drive.PurchaseOutcome, expectedVersion *int64) (*drive.CompletionResult, error)
	SubmitRating(ctx context.Context, actor drive.Actor, taskID uuid.UUID, rt drive.RatingType, payload drive.RatingPayload) (*store.CompensationRecord, error)
	ResetSession(ctx context.Context, actor drive.Actor, sessionID uuid.UUID, expectedVersion *int64) (*drive.Queue, error)
	Ledger(ctx context.Context, actor drive.Actor, sessionID uuid.UUID) ([]store.CompensationRecord, error)
	PutTier(ctx context.Context, actor drive.Actor, cfg *store.TierConfig) error
	ListTiers(ctx context.Context) ([]store.TierConfig, error)
	AddProduct(ctx context.Context, actor drive.Actor, product *store.Product) error
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store  StoreFactory
	engine Engine
	logger *slog.Logger
}

// New creates a new Handlers instance.
func New(s StoreFactory, engine Engine, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{store: s, engine: engine, logger: logger}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// engineError maps a drive error onto a status code. Unclassified and
// integrity errors are logged and their message is not exposed.
func (h *Handlers) engineError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch drive.KindOf(err) {
	case drive.KindValidation:
		status = http.StatusBadRequest
	case drive.KindForbidden:
		status = http.StatusForbidden
	case drive.KindNotFound:
		status = http.StatusNotFound
	case drive.KindConflict:
		status = http.StatusConflict
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "kind", drive.KindOf(err).String(), "error", err)
		h.respondJson(w, http.StatusInternalServerError, api.ErrorResponse{
			Error:   "Internal server error",
			Code:    strconv.Itoa(http.StatusInternalServerError),
			Details: drive.CodeOf(err),
		})
		return
	}

	h.respondJson(w, status, api.ErrorResponse{
		Error:   err.Error(),
		Code:    strconv.Itoa(status),
		Details: drive.CodeOf(err),
	})
}

// actor returns the authenticated caller or writes 401.
func (h *Handlers) actor(w http.ResponseWriter, r *http.Request) (drive.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
	}
	return actor, ok
}

// pathID parses the {id} path value or writes 400.
func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid "+what+" id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// decode reads an optional JSON body. An empty body leaves v untouched.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
