package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"driveplane/internal/drive"
	"driveplane/internal/store"
	"driveplane/pkg/api"

	"github.com/google/uuid"
)

func TestStartSession(t *testing.T) {
	otherUser := uuid.New()

	tests := []struct {
		name           string
		account        *store.Account
		body           string
		engineErr      error
		expectedStatus int
		expectedUser   uuid.UUID
	}{
		{
			name:           "User Starts Own Session",
			account:        testUser,
			body:           `{"tier": "bronze"}`,
			expectedStatus: http.StatusCreated,
			expectedUser:   testUser.ID,
		},
		{
			name:           "Admin Starts For User",
			account:        testAdmin,
			body:           `{"tier": "bronze", "user_id": "` + otherUser.String() + `"}`,
			expectedStatus: http.StatusCreated,
			expectedUser:   otherUser,
		},
		{
			name:           "Admin Without User",
			account:        testAdmin,
			body:           `{"tier": "bronze"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing Tier",
			account:        testUser,
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid User ID",
			account:        testAdmin,
			body:           `{"tier": "bronze", "user_id": "abc"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown Tier",
			account:        testUser,
			body:           `{"tier": "diamond"}`,
			engineErr:      drive.ErrUnknownTier,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Already Running",
			account:        testUser,
			body:           `{"tier": "bronze"}`,
			engineErr:      drive.ErrSessionExists,
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser uuid.UUID
			engine := &mockEngine{
				startSession: func(actor drive.Actor, userID uuid.UUID, tier string) (*drive.Queue, error) {
					gotUser = userID
					if tt.engineErr != nil {
						return nil, tt.engineErr
					}
					return testQueue(), nil
				},
			}
			h := New(&mockStore{}, engine, nil)

			rr := httptest.NewRecorder()
			h.StartSession(rr, newRequest(http.MethodPost, "/sessions", tt.body, tt.account, ""))

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %d but want %d: %s", rr.Code, tt.expectedStatus, rr.Body)
			}
			if tt.expectedStatus == http.StatusCreated && gotUser != tt.expectedUser {
				t.Errorf("session started for %s, want %s", gotUser, tt.expectedUser)
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	q := testQueue()
	engine := &mockEngine{
		getQueue: func(id uuid.UUID) (*drive.Queue, error) {
			if id != q.Session.ID {
				return nil, drive.ErrSessionNotFound
			}
			return q, nil
		},
	}
	h := New(&mockStore{}, engine, nil)

	rr := httptest.NewRecorder()
	h.GetSession(rr, newRequest(http.MethodGet, "/sessions/x", "", testUser, q.Session.ID.String()))
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}

	var resp api.SessionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(resp.Tasks))
	}
	if resp.CurrentTaskID == nil || *resp.CurrentTaskID != q.Items[0].ID.String() {
		t.Errorf("unexpected current task: %v", resp.CurrentTaskID)
	}
	if resp.Progress.OriginalRequired != 3 || resp.Version != 1 {
		t.Errorf("unexpected session summary: %+v", resp)
	}

	rr = httptest.NewRecorder()
	h.GetSession(rr, newRequest(http.MethodGet, "/sessions/x", "", testUser, uuid.NewString()))
	if rr.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGetProgress(t *testing.T) {
	engine := &mockEngine{
		progress: func(uuid.UUID) (drive.Progress, error) {
			return drive.Progress{OriginalCompleted: 1, OriginalRequired: 4, AllCompleted: 2, AllTotal: 5, ComboTotal: 1, ComboCompleted: 1, Percent: 25}, nil
		},
	}
	h := New(&mockStore{}, engine, nil)

	rr := httptest.NewRecorder()
	h.GetProgress(rr, newRequest(http.MethodGet, "/sessions/x/progress", "", testUser, uuid.NewString()))

	var resp api.Progress
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Percent != 25 || resp.ComboCompleted != 1 {
		t.Errorf("unexpected progress: %+v", resp)
	}
}

func TestResetSession(t *testing.T) {
	var gotVersion *int64
	engine := &mockEngine{
		resetSession: func(id uuid.UUID, expected *int64) (*drive.Queue, error) {
			gotVersion = expected
			if expected != nil && *expected != 1 {
				return nil, drive.ErrConcurrentModification
			}
			q := testQueue()
			q.Session.Status = store.SessionStatusReset
			return q, nil
		},
	}
	h := New(&mockStore{}, engine, nil)

	// No body means no version check
	rr := httptest.NewRecorder()
	h.ResetSession(rr, newRequest(http.MethodPost, "/sessions/x/reset", "", testAdmin, uuid.NewString()))
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}
	if gotVersion != nil {
		t.Errorf("expected no version, got %d", *gotVersion)
	}

	rr = httptest.NewRecorder()
	h.ResetSession(rr, newRequest(http.MethodPost, "/sessions/x/reset", `{"expected_version": 7}`, testAdmin, uuid.NewString()))
	if rr.Code != http.StatusConflict {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusConflict)
	}

	rr = httptest.NewRecorder()
	h.ResetSession(rr, newRequest(http.MethodPost, "/sessions/x/reset", `{bad`, testAdmin, uuid.NewString()))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGetLedger(t *testing.T) {
	sessionID := uuid.New()
	engine := &mockEngine{
		ledger: func(id uuid.UUID) ([]store.CompensationRecord, error) {
			return []store.CompensationRecord{
				{ID: 1, TaskItemID: uuid.New(), DriveSessionID: id, Type: store.CompensationPurchase, Amount: 1.1, Refund: 22, TierAtTime: "Bronze", CreatedAt: time.Now()},
				{ID: 2, TaskItemID: uuid.New(), DriveSessionID: id, Type: store.CompensationRatingBonus, Amount: 0.2, TierAtTime: "Bronze", CreatedAt: time.Now()},
			}, nil
		},
	}
	h := New(&mockStore{}, engine, nil)

	rr := httptest.NewRecorder()
	h.GetLedger(rr, newRequest(http.MethodGet, "/sessions/x/ledger", "", testUser, sessionID.String()))
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}

	var resp api.LedgerResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(resp.Records))
	}
	if resp.TotalAmount != 1.3 || resp.TotalRefunded != 22 {
		t.Errorf("unexpected totals: amount %v refunded %v", resp.TotalAmount, resp.TotalRefunded)
	}
	if resp.Records[1].Type != "RATING_BONUS" {
		t.Errorf("unexpected record type %s", resp.Records[1].Type)
	}
}
