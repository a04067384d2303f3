package postgres

import (
	"context"
	"fmt"

	"driveplane/internal/store"

	"github.com/google/uuid"
)

// AppendCompensation inserts a ledger entry. Entries are never updated or deleted.
func (s *Store) AppendCompensation(ctx context.Context, tx store.DBTransaction, record *store.CompensationRecord) error {
	query := `
		INSERT INTO compensation_records (task_item_id, drive_session_id, type, amount, refund, tier_at_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := s.getExecutor(tx).QueryRowContext(ctx, query,
		record.TaskItemID, record.DriveSessionID, record.Type,
		record.Amount, record.Refund, record.TierAtTime, record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		if isUniqueViolation(err) && record.Type == store.CompensationRatingBonus {
			return fmt.Errorf("task item %s: %w", record.TaskItemID, store.ErrDuplicateRatingBonus)
		}
		return fmt.Errorf("failed to append compensation: %w", err)
	}
	return nil
}

func (s *Store) HasRatingBonus(ctx context.Context, tx store.DBTransaction, taskItemID uuid.UUID) (bool, error) {
	var exists bool
	err := s.getExecutor(tx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM compensation_records WHERE task_item_id = $1 AND type = $2
		)
	`, taskItemID, store.CompensationRatingBonus).Scan(&exists)
	return exists, err
}

func (s *Store) ListCompensation(ctx context.Context, sessionID uuid.UUID) ([]store.CompensationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_item_id, drive_session_id, type, amount, refund, tier_at_time, created_at
		FROM compensation_records
		WHERE drive_session_id = $1
		ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.CompensationRecord
	for rows.Next() {
		var r store.CompensationRecord
		if err := rows.Scan(&r.ID, &r.TaskItemID, &r.DriveSessionID, &r.Type,
			&r.Amount, &r.Refund, &r.TierAtTime, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
