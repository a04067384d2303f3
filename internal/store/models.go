// Package store contains the database layer for driveplane.
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the state of a drive session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusReset     SessionStatus = "RESET"
)

// DriveSession is one user's run through an ordered queue of purchase tasks.
// OriginalTasksRequired is copied from the tier at creation and never changes.
type DriveSession struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	TierAtStart           string
	Status                SessionStatus
	OriginalTasksRequired int
	// Version is the optimistic concurrency token. Every mutation bumps it.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskKind distinguishes quota tasks from admin-inserted combos.
type TaskKind string

const (
	TaskKindOriginal TaskKind = "ORIGINAL"
	TaskKindCombo    TaskKind = "COMBO"
)

// TaskStatus represents the state of a single queue position.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCurrent   TaskStatus = "CURRENT"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusFailed    TaskStatus = "FAILED"
)

// ProductRef is a product snapshot frozen when the task was created.
type ProductRef struct {
	ProductID  uuid.UUID `json:"product_id"`
	SlotIndex  int       `json:"slot_index"`
	Price      float64   `json:"price"`
	Commission float64   `json:"commission"`
}

// TaskItem is one position in a session's queue.
type TaskItem struct {
	ID               uuid.UUID
	DriveSessionID   uuid.UUID
	OrderInDrive     int
	Kind             TaskKind
	Status           TaskStatus
	Products         []ProductRef
	ComboName        string
	ComboDescription string
	// Attempts counts failed purchases on this item.
	Attempts         int
	PurchaseInFlight bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsCombo reports whether the item was inserted by an administrator.
func (t *TaskItem) IsCombo() bool {
	return t.Kind == TaskKindCombo
}

// TierConfig is the admin-managed policy row for a tier.
type TierConfig struct {
	TierName       string
	QuantityLimit  int
	NumSingleTasks int
	NumComboTasks  int
	MinPriceSingle float64
	MaxPriceSingle float64
	MinPriceCombo  float64
	MaxPriceCombo  float64
	CommissionRate float64
	IsActive       bool
	UpdatedAt      time.Time
}

// Validate checks the price band invariant. It is applied when a tier is written.
func (c *TierConfig) Validate() error {
	if c.TierName == "" {
		return fmt.Errorf("tier name is required")
	}
	if c.QuantityLimit < 1 {
		return fmt.Errorf("tier %s: quantity limit must be at least 1", c.TierName)
	}
	if c.NumSingleTasks < 0 || c.NumComboTasks < 0 {
		return fmt.Errorf("tier %s: task counts must not be negative", c.TierName)
	}
	if c.MinPriceSingle > c.MaxPriceSingle {
		return fmt.Errorf("tier %s: single price band %.2f > %.2f", c.TierName, c.MinPriceSingle, c.MaxPriceSingle)
	}
	if c.MinPriceCombo > c.MaxPriceCombo {
		return fmt.Errorf("tier %s: combo price band %.2f > %.2f", c.TierName, c.MinPriceCombo, c.MaxPriceCombo)
	}
	if c.CommissionRate < 0 {
		return fmt.Errorf("tier %s: commission rate must not be negative", c.TierName)
	}
	return nil
}

// CompensationType is the reason a ledger entry was written.
type CompensationType string

const (
	CompensationPurchase    CompensationType = "PURCHASE"
	CompensationRatingBonus CompensationType = "RATING_BONUS"
)

// CompensationRecord is an append-only ledger entry.
type CompensationRecord struct {
	ID             int64
	TaskItemID     uuid.UUID
	DriveSessionID uuid.UUID
	Type           CompensationType
	Amount         float64
	// Refund is the restored principal of a PURCHASE entry. Zero for bonuses.
	Refund     float64
	TierAtTime string
	CreatedAt  time.Time
}

// Product is a catalog row. Tasks never read it after creation.
type Product struct {
	ID         uuid.UUID
	Name       string
	Price      float64
	Commission float64
	CreatedAt  time.Time
}

// Role is the caller role supplied by the auth layer.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Account is an API identity.
type Account struct {
	ID        uuid.UUID
	Name      string
	Role      Role
	CreatedAt time.Time
}
