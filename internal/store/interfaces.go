package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// AccountStore handles retrieving caller identities for authentication.
type AccountStore interface {
	// CreateAccount inserts a new account with its hashed API key.
	CreateAccount(ctx context.Context, account *Account, hashedKey string) error

	// GetAccountByAPIKeyHash returns an account by its API key hash.
	GetAccountByAPIKeyHash(ctx context.Context, hash string) (*Account, error)
}

// TierStore persists tier policy rows.
type TierStore interface {
	// GetTier returns a tier by name, case-insensitively. Inactive rows are returned too.
	GetTier(ctx context.Context, name string) (*TierConfig, error)

	// ListTiers returns every tier ordered by name.
	ListTiers(ctx context.Context) ([]TierConfig, error)

	// UpsertTier creates or replaces a tier row.
	UpsertTier(ctx context.Context, tier *TierConfig) error
}

// CatalogStore supplies live product records at task creation time.
type CatalogStore interface {
	CreateProduct(ctx context.Context, product *Product) error

	// GetProducts returns the products for the given ids, in the order requested.
	GetProducts(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// ListProductsInBand returns products priced within [min, max], ordered by price.
	ListProductsInBand(ctx context.Context, min, max float64) ([]Product, error)

	// ListProducts returns the whole catalog ordered by price.
	ListProducts(ctx context.Context) ([]Product, error)
}

// SessionStore handles drive sessions and their task items.
type SessionStore interface {
	// CreateSession inserts a session together with its initial task items.
	CreateSession(ctx context.Context, tx DBTransaction, session *DriveSession, items []TaskItem) error

	// GetSession returns a session. Pass a tx to read inside a transaction.
	GetSession(ctx context.Context, tx DBTransaction, id uuid.UUID) (*DriveSession, error)

	// GetActiveSessionForUser returns the user's newest non-completed session.
	GetActiveSessionForUser(ctx context.Context, userID uuid.UUID) (*DriveSession, error)

	// ListTaskItems returns all items of a session ordered by order_in_drive.
	ListTaskItems(ctx context.Context, tx DBTransaction, sessionID uuid.UUID) ([]TaskItem, error)

	// GetTaskItem returns a single item.
	GetTaskItem(ctx context.Context, tx DBTransaction, id uuid.UUID) (*TaskItem, error)

	// ShiftOrders moves every item at or after fromOrder one position down the queue.
	// Returns the number of rows shifted.
	ShiftOrders(ctx context.Context, tx DBTransaction, sessionID uuid.UUID, fromOrder int) (int64, error)

	// InsertTaskItem adds a new item to a session.
	InsertTaskItem(ctx context.Context, tx DBTransaction, item *TaskItem) error

	// UpdateTaskItemState writes status, attempts and in-flight flag of an item.
	UpdateTaskItemState(ctx context.Context, tx DBTransaction, item *TaskItem) error

	// UpdateSession conditionally writes the session status and bumps its version.
	// It returns ErrVersionConflict when the stored version differs from expectedVersion.
	UpdateSession(ctx context.Context, tx DBTransaction, session *DriveSession, expectedVersion int64) error
}

// LedgerStore is the append-only compensation ledger.
type LedgerStore interface {
	// AppendCompensation inserts a record and sets its ID.
	// Returns ErrDuplicateRatingBonus when a rating bonus already exists for the task item.
	AppendCompensation(ctx context.Context, tx DBTransaction, record *CompensationRecord) error

	// HasRatingBonus reports whether the task item already received a rating bonus.
	HasRatingBonus(ctx context.Context, tx DBTransaction, taskItemID uuid.UUID) (bool, error)

	// ListCompensation returns the session ledger, oldest first.
	ListCompensation(ctx context.Context, sessionID uuid.UUID) ([]CompensationRecord, error)
}
