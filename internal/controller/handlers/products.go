package handlers

import (
	"encoding/json"
	"net/http"

	"driveplane/internal/store"
	"driveplane/pkg/api"
)

// CreateProduct handles POST /products (admin only).
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req api.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product := &store.Product{
		Name:       req.Name,
		Price:      req.Price,
		Commission: req.Commission,
	}
	if err := h.engine.AddProduct(r.Context(), actor, product); err != nil {
		h.engineError(w, r, err)
		return
	}

	h.respondJson(w, http.StatusCreated, api.ProductResponse{
		ID:         product.ID.String(),
		Name:       product.Name,
		Price:      product.Price,
		Commission: product.Commission,
	})
}
