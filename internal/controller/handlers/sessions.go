package handlers

import (
	"encoding/json"
	"net/http"

	"driveplane/internal/drive"
	"driveplane/internal/store"
	"driveplane/pkg/api"

	"github.com/google/uuid"
)

// StartSession handles POST /sessions.
// Users start their own session. Admins may pass user_id to start one on a user's behalf.
func (h *Handlers) StartSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req api.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Tier == "" {
		h.httpError(w, "Tier is required", http.StatusBadRequest)
		return
	}

	userID := actor.ID
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			h.httpError(w, "Invalid user id", http.StatusBadRequest)
			return
		}
		userID = parsed
	} else if actor.Role != store.RoleUser {
		h.httpError(w, "user_id is required when an admin starts a session", http.StatusBadRequest)
		return
	}

	q, err := h.engine.StartSession(r.Context(), actor, userID, req.Tier)
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusCreated, toSession(q))
}

// GetSession handles GET /sessions/{id}.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(w, r, "session")
	if !ok {
		return
	}

	q, err := h.engine.GetQueue(r.Context(), actor, sessionID)
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toSession(q))
}

// GetProgress handles GET /sessions/{id}/progress.
func (h *Handlers) GetProgress(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(w, r, "session")
	if !ok {
		return
	}

	p, err := h.engine.Progress(r.Context(), actor, sessionID)
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toProgress(p))
}

// ResetSession handles POST /sessions/{id}/reset (admin only).
func (h *Handlers) ResetSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(w, r, "session")
	if !ok {
		return
	}

	var req api.VersionRequest
	if !h.decode(w, r, &req) {
		return
	}

	q, err := h.engine.ResetSession(r.Context(), actor, sessionID, req.ExpectedVersion)
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toSession(q))
}

// GetLedger handles GET /sessions/{id}/ledger.
func (h *Handlers) GetLedger(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(w, r, "session")
	if !ok {
		return
	}

	records, err := h.engine.Ledger(r.Context(), actor, sessionID)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	resp := api.LedgerResponse{
		SessionID: sessionID.String(),
		Records:   make([]api.CompensationRecord, 0, len(records)),
	}
	var amount, refunded float64
	for _, rec := range records {
		resp.Records = append(resp.Records, toRecord(rec))
		amount += rec.Amount
		refunded += rec.Refund
	}
	resp.TotalAmount = drive.RoundCents(amount)
	resp.TotalRefunded = drive.RoundCents(refunded)
	h.respondJson(w, http.StatusOK, resp)
}
