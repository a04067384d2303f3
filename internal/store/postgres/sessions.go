package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"driveplane/internal/store"

	"github.com/google/uuid"
)

const sessionColumns = "id, user_id, tier_at_start, status, original_tasks_required, version, created_at, updated_at"

const taskColumns = `id, drive_session_id, order_in_drive, kind, status, products,
	combo_name, combo_description, attempts, purchase_in_flight, created_at, updated_at`

// CreateSession inserts a session row and all of its initial task items.
func (s *Store) CreateSession(ctx context.Context, tx store.DBTransaction, session *store.DriveSession, items []store.TaskItem) error {
	executor := s.getExecutor(tx)

	_, err := executor.ExecContext(ctx, `
		INSERT INTO drive_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		session.ID, session.UserID, session.TierAtStart, session.Status,
		session.OriginalTasksRequired, session.Version, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", session.UserID, store.ErrOpenSessionExists)
		}
		return fmt.Errorf("failed to insert session %s: %w", session.ID, err)
	}

	for i := range items {
		if err := s.InsertTaskItem(ctx, executor, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func scanSession(row rowScanner) (*store.DriveSession, error) {
	var sess store.DriveSession
	err := row.Scan(
		&sess.ID, &sess.UserID, &sess.TierAtStart, &sess.Status,
		&sess.OriginalTasksRequired, &sess.Version, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetSession reads a session without locking it.
// Concurrent writers are caught by the version check in UpdateSession.
func (s *Store) GetSession(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.DriveSession, error) {
	query := "SELECT " + sessionColumns + " FROM drive_sessions WHERE id = $1"

	sess, err := scanSession(s.getExecutor(tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return sess, nil
}

func (s *Store) GetActiveSessionForUser(ctx context.Context, userID uuid.UUID) (*store.DriveSession, error) {
	query := "SELECT " + sessionColumns + ` FROM drive_sessions
		WHERE user_id = $1 AND status <> $2
		ORDER BY created_at DESC
		LIMIT 1`

	sess, err := scanSession(s.db.QueryRowContext(ctx, query, userID, store.SessionStatusCompleted))
	if err != nil {
		return nil, notFound(err)
	}
	return sess, nil
}

func scanTaskItem(row rowScanner) (*store.TaskItem, error) {
	var item store.TaskItem
	var products []byte
	err := row.Scan(
		&item.ID, &item.DriveSessionID, &item.OrderInDrive, &item.Kind, &item.Status, &products,
		&item.ComboName, &item.ComboDescription, &item.Attempts, &item.PurchaseInFlight,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(products, &item.Products); err != nil {
		return nil, fmt.Errorf("task item %s: invalid products: %w", item.ID, err)
	}
	return &item, nil
}

func (s *Store) ListTaskItems(ctx context.Context, tx store.DBTransaction, sessionID uuid.UUID) ([]store.TaskItem, error) {
	rows, err := s.getExecutor(tx).QueryContext(ctx,
		"SELECT "+taskColumns+" FROM task_items WHERE drive_session_id = $1 ORDER BY order_in_drive ASC",
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []store.TaskItem
	for rows.Next() {
		item, err := scanTaskItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *Store) GetTaskItem(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.TaskItem, error) {
	item, err := scanTaskItem(s.getExecutor(tx).QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM task_items WHERE id = $1", id))
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

// ShiftOrders renumbers the queue suffix in a single statement.
// The (session, order) unique constraint is deferred, so the intermediate
// duplicate orders are never checked.
func (s *Store) ShiftOrders(ctx context.Context, tx store.DBTransaction, sessionID uuid.UUID, fromOrder int) (int64, error) {
	res, err := s.getExecutor(tx).ExecContext(ctx, `
		UPDATE task_items
		SET order_in_drive = order_in_drive + 1, updated_at = NOW()
		WHERE drive_session_id = $1 AND order_in_drive >= $2
	`, sessionID, fromOrder)
	if err != nil {
		return 0, fmt.Errorf("failed to shift orders from %d: %w", fromOrder, err)
	}
	return res.RowsAffected()
}

func (s *Store) InsertTaskItem(ctx context.Context, tx store.DBTransaction, item *store.TaskItem) error {
	products, err := json.Marshal(item.Products)
	if err != nil {
		return err
	}

	_, err = s.getExecutor(tx).ExecContext(ctx, `
		INSERT INTO task_items (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		item.ID, item.DriveSessionID, item.OrderInDrive, item.Kind, item.Status, products,
		item.ComboName, item.ComboDescription, item.Attempts, item.PurchaseInFlight,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task item %s: %w", item.ID, err)
	}
	return nil
}

func (s *Store) UpdateTaskItemState(ctx context.Context, tx store.DBTransaction, item *store.TaskItem) error {
	res, err := s.getExecutor(tx).ExecContext(ctx, `
		UPDATE task_items
		SET status = $1, attempts = $2, purchase_in_flight = $3, updated_at = $4
		WHERE id = $5
	`, item.Status, item.Attempts, item.PurchaseInFlight, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update task item %s: %w", item.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task item %s: %w", item.ID, store.ErrNotFound)
	}
	return nil
}

// UpdateSession writes the session status only if nobody else moved the version.
func (s *Store) UpdateSession(ctx context.Context, tx store.DBTransaction, session *store.DriveSession, expectedVersion int64) error {
	now := time.Now().UTC()
	res, err := s.getExecutor(tx).ExecContext(ctx, `
		UPDATE drive_sessions
		SET status = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4
	`, session.Status, now, session.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", session.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s at version %d: %w", session.ID, expectedVersion, store.ErrVersionConflict)
	}

	session.Version = expectedVersion + 1
	session.UpdatedAt = now
	return nil
}

// CountSessionsByStatus returns the number of sessions in each status.
func (s *Store) CountSessionsByStatus(ctx context.Context) (map[store.SessionStatus]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM drive_sessions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	defer rows.Close()

	counts := make(map[store.SessionStatus]int64)
	for rows.Next() {
		var status store.SessionStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
