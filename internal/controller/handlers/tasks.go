package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"driveplane/internal/drive"
	"driveplane/pkg/api"
)

// BeginPurchase handles POST /tasks/{id}/purchase.
func (h *Handlers) BeginPurchase(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	taskID, ok := h.pathID(w, r, "task")
	if !ok {
		return
	}

	var req api.VersionRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.engine.BeginPurchase(r.Context(), actor, taskID, req.ExpectedVersion)
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, api.BeginPurchaseResponse{Success: true, Task: toTask(task)})
}

// CompleteTask handles POST /tasks/{id}/complete.
// A failed outcome keeps the task current so the purchase can be retried.
func (h *Handlers) CompleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	taskID, ok := h.pathID(w, r, "task")
	if !ok {
		return
	}

	var req api.CompleteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	outcome := drive.PurchaseOutcome(strings.ToLower(req.PurchaseOutcome))
	if outcome == "" {
		outcome = drive.PurchaseSucceeded
	}

	res, err := h.engine.CompleteTask(r.Context(), actor, taskID, outcome, req.ExpectedVersion)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	resp := api.CompleteTaskResponse{
		Success:           outcome == drive.PurchaseSucceeded,
		Task:              toTask(&res.Task),
		CompensatedAmount: res.CompensatedAmount,
		Refund:            res.Refund,
		Version:           res.Version,
		Progress:          toProgress(res.Progress),
	}
	if res.NewCurrentTaskID != nil {
		id := res.NewCurrentTaskID.String()
		resp.NewCurrentTaskID = &id
	}
	h.respondJson(w, http.StatusOK, resp)
}

// SubmitRating handles POST /tasks/{id}/rating.
func (h *Handlers) SubmitRating(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	taskID, ok := h.pathID(w, r, "task")
	if !ok {
		return
	}

	var req api.RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	record, err := h.engine.SubmitRating(r.Context(), actor, taskID,
		drive.RatingType(strings.ToLower(req.RatingType)),
		drive.RatingPayload{Stars: req.Stars, ReviewText: req.ReviewText, GeneratedText: req.GeneratedText},
	)
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusCreated, api.RatingResponse{Success: true, BonusAmount: record.Amount})
}
