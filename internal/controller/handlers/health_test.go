package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"driveplane/internal/store"
)

func TestProbes(t *testing.T) {
	tiers := func() ([]store.TierConfig, error) {
		return []store.TierConfig{{TierName: "Bronze", IsActive: true}, {TierName: "Legacy"}}, nil
	}

	tests := []struct {
		name           string
		endpoint       string
		pingErr        error
		listTiers      func() ([]store.TierConfig, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Healthz Always OK",
			endpoint:       "/healthz",
			expectedStatus: http.StatusOK,
			expectedBody:   "healthy",
		},
		{
			name:           "Readyz Success",
			endpoint:       "/readyz",
			listTiers:      tiers,
			expectedStatus: http.StatusOK,
			expectedBody:   `"active_tiers":1`,
		},
		{
			name:           "Readyz Database Fail",
			endpoint:       "/readyz",
			pingErr:        errors.New("db down"),
			listTiers:      tiers,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "Database unavailable",
		},
		{
			name:     "Readyz Tier Catalog Fail",
			endpoint: "/readyz",
			listTiers: func() ([]store.TierConfig, error) {
				return nil, errors.New("relation tier_configs does not exist")
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "Tier catalog unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&mockStore{pingErr: tt.pingErr}, &mockEngine{listTiers: tt.listTiers}, nil)

			req := httptest.NewRequest(http.MethodGet, tt.endpoint, nil)
			rr := httptest.NewRecorder()

			if tt.endpoint == "/healthz" {
				h.Healthz(rr, req)
			} else {
				h.Readyz(rr, req)
			}

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.expectedBody) {
				t.Errorf("handler returned unexpected body: got %s want substring %s", rr.Body.String(), tt.expectedBody)
			}
		})
	}
}
