package handlers

import "net/http"

// Healthz is a liveness probe.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	h.respondJson(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Readyz reports whether new sessions can be served: the database must answer
// and the tier catalog must be readable.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.httpError(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}

	tiers, err := h.engine.ListTiers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "readiness: tier catalog unreadable", "error", err)
		h.httpError(w, "Tier catalog unavailable", http.StatusServiceUnavailable)
		return
	}

	active := 0
	for _, t := range tiers {
		if t.IsActive {
			active++
		}
	}
	h.respondJson(w, http.StatusOK, map[string]any{"status": "ready", "active_tiers": active})
}
