package handlers

import (
	"encoding/json"
	"net/http"

	"driveplane/internal/drive"
	"driveplane/pkg/api"

	"github.com/google/uuid"
)

// comboSpec turns a request body into an insertion spec.
func comboSpec(req *api.ComboRequest) (drive.InsertionSpec, string) {
	anchor, err := drive.ParseAnchor(req.Anchor)
	if err != nil {
		return drive.InsertionSpec{}, "Invalid anchor"
	}

	spec := drive.InsertionSpec{
		Anchor:           anchor,
		Position:         req.Position,
		ComboName:        req.Name,
		ComboDescription: req.Description,
		ProductIDs:       make([]uuid.UUID, 0, len(req.ProductIDs)),
	}
	if req.AnchorTaskID != "" {
		if spec.AnchorTaskID, err = uuid.Parse(req.AnchorTaskID); err != nil {
			return drive.InsertionSpec{}, "Invalid anchor task id"
		}
	}
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return drive.InsertionSpec{}, "Invalid product id"
		}
		spec.ProductIDs = append(spec.ProductIDs, id)
	}
	return spec, ""
}

func (h *Handlers) readCombo(w http.ResponseWriter, r *http.Request) (uuid.UUID, *api.ComboRequest, drive.InsertionSpec, bool) {
	sessionID, ok := h.pathID(w, r, "session")
	if !ok {
		return uuid.Nil, nil, drive.InsertionSpec{}, false
	}

	var req api.ComboRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return uuid.Nil, nil, drive.InsertionSpec{}, false
	}

	spec, problem := comboSpec(&req)
	if problem != "" {
		h.httpError(w, problem, http.StatusBadRequest)
		return uuid.Nil, nil, drive.InsertionSpec{}, false
	}
	return sessionID, &req, spec, true
}

// PreviewCombo handles POST /sessions/{id}/combos/preview (admin only).
// It renders the queue an insertion would produce without writing anything.
func (h *Handlers) PreviewCombo(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sessionID, _, spec, ok := h.readCombo(w, r)
	if !ok {
		return
	}

	preview, err := h.engine.PreviewCombo(r.Context(), actor, sessionID, spec)
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toPreview(preview))
}

// InsertCombo handles POST /sessions/{id}/combos (admin only).
func (h *Handlers) InsertCombo(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sessionID, req, spec, ok := h.readCombo(w, r)
	if !ok {
		return
	}

	res, err := h.engine.InsertCombo(r.Context(), actor, sessionID, spec, req.ExpectedVersion)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.respondJson(w, http.StatusCreated, api.InsertComboResponse{
		Success:       true,
		TaskID:        res.Task.ID.String(),
		AssignedOrder: res.AssignedOrder,
		ShiftedCount:  res.ShiftedCount,
		Version:       res.Version,
		Progress:      toProgress(res.Progress),
		Warnings:      res.Warnings,
	})
}
