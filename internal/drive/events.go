package drive

import (
	"context"

	"driveplane/internal/store"

	"github.com/google/uuid"
)

// Event names the mutation that produced an Update.
type Event string

const (
	EventSessionStarted Event = "session_started"
	EventComboInserted  Event = "combo_inserted"
	EventPurchaseBegun  Event = "purchase_begun"
	EventTaskCompleted  Event = "task_completed"
	EventPurchaseFailed Event = "purchase_failed"
	EventRatingBonus    Event = "rating_bonus"
	EventSessionReset   Event = "session_reset"
)

// Update is the post-mutation payload handed to the UI layer.
type Update struct {
	Event                  Event
	SessionID              uuid.UUID
	UserID                 uuid.UUID
	TaskID                 uuid.UUID
	Version                int64
	Progress               Progress
	NewlyCompensatedAmount float64
}

// Notifier receives updates after a mutation has committed.
type Notifier interface {
	Notify(ctx context.Context, update Update) error
}

// Metrics records engine activity.
type Metrics interface {
	ComboInserted(ctx context.Context, shifted int)
	TaskCompleted(ctx context.Context, kind store.TaskKind)
	Compensated(ctx context.Context, kind store.CompensationType, amount float64)
	Conflict(ctx context.Context, op string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Update) error { return nil }

type nopMetrics struct{}

func (nopMetrics) ComboInserted(context.Context, int)                           {}
func (nopMetrics) TaskCompleted(context.Context, store.TaskKind)                {}
func (nopMetrics) Compensated(context.Context, store.CompensationType, float64) {}
func (nopMetrics) Conflict(context.Context, string)                             {}
