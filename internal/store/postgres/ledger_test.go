package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"driveplane/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

func TestAppendCompensation_SetsID(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	record := &store.CompensationRecord{
		TaskItemID:     uuid.New(),
		DriveSessionID: uuid.New(),
		Type:           store.CompensationPurchase,
		Amount:         2.5,
		Refund:         50,
		TierAtTime:     "Bronze",
		CreatedAt:      time.Now(),
	}

	mock.ExpectQuery(`INSERT INTO compensation_records`).
		WithArgs(record.TaskItemID, record.DriveSessionID, store.CompensationPurchase, 2.5, 50.0, "Bronze", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	if err := s.AppendCompensation(context.Background(), nil, record); err != nil {
		t.Fatalf("AppendCompensation failed: %v", err)
	}
	if record.ID != 17 {
		t.Errorf("expected id 17, got %d", record.ID)
	}
}

func TestAppendCompensation_DuplicateRating(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	record := &store.CompensationRecord{
		TaskItemID: uuid.New(),
		Type:       store.CompensationRatingBonus,
		Amount:     0.9,
		TierAtTime: "Gold",
	}

	mock.ExpectQuery(`INSERT INTO compensation_records`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := s.AppendCompensation(context.Background(), nil, record)
	if !errors.Is(err, store.ErrDuplicateRatingBonus) {
		t.Errorf("expected ErrDuplicateRatingBonus, got %v", err)
	}
}

func TestHasRatingBonus(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	taskID := uuid.New()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(taskID, store.CompensationRatingBonus).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.HasRatingBonus(context.Background(), nil, taskID)
	if err != nil {
		t.Fatalf("HasRatingBonus failed: %v", err)
	}
	if !ok {
		t.Error("expected rating bonus to exist")
	}
}

func TestListCompensation(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	sessionID := uuid.New()
	taskID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT id, task_item_id, drive_session_id, type, amount, refund, tier_at_time, created_at\s+FROM compensation_records`).
		WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_item_id", "drive_session_id", "type", "amount", "refund", "tier_at_time", "created_at"}).
			AddRow(int64(1), taskID.String(), sessionID.String(), "PURCHASE", 1.5, 30.0, "Silver", now).
			AddRow(int64(2), taskID.String(), sessionID.String(), "RATING_BONUS", 0.7, 0.0, "Silver", now))

	records, err := s.ListCompensation(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("ListCompensation failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Type != store.CompensationRatingBonus || records[1].Amount != 0.7 {
		t.Errorf("unexpected second record: %+v", records[1])
	}
}
