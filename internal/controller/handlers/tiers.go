package handlers

import (
	"encoding/json"
	"net/http"

	"driveplane/internal/store"
	"driveplane/pkg/api"
)

// PutTier handles PUT /tiers/{name} (admin only).
func (h *Handlers) PutTier(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req api.TierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg := &store.TierConfig{
		TierName:       r.PathValue("name"),
		QuantityLimit:  req.QuantityLimit,
		NumSingleTasks: req.NumSingleTasks,
		NumComboTasks:  req.NumComboTasks,
		MinPriceSingle: req.MinPriceSingle,
		MaxPriceSingle: req.MaxPriceSingle,
		MinPriceCombo:  req.MinPriceCombo,
		MaxPriceCombo:  req.MaxPriceCombo,
		CommissionRate: req.CommissionRate,
		IsActive:       req.IsActive == nil || *req.IsActive,
	}

	if err := h.engine.PutTier(r.Context(), actor, cfg); err != nil {
		h.engineError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toTier(cfg))
}

// ListTiers handles GET /tiers.
func (h *Handlers) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.engine.ListTiers(r.Context())
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	resp := make([]api.TierResponse, 0, len(tiers))
	for i := range tiers {
		resp = append(resp, toTier(&tiers[i]))
	}
	h.respondJson(w, http.StatusOK, resp)
}
