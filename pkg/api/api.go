// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and Controller.
package api

import "time"

// CreateAccountRequest is the request body for creating an account.
type CreateAccountRequest struct {
	Name string `json:"name"`
	// Role is "admin" or "user".
	Role string `json:"role"`
}

// CreateAccountResponse is returned once; the raw key is never shown again.
type CreateAccountResponse struct {
	ID     string `json:"account_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	ApiKey string `json:"api_key"`
}

// TierRequest is the body of PUT /tiers/{name}.
type TierRequest struct {
	QuantityLimit  int     `json:"quantity_limit"`
	NumSingleTasks int     `json:"num_single_tasks"`
	NumComboTasks  int     `json:"num_combo_tasks"`
	MinPriceSingle float64 `json:"min_price_single"`
	MaxPriceSingle float64 `json:"max_price_single"`
	MinPriceCombo  float64 `json:"min_price_combo"`
	MaxPriceCombo  float64 `json:"max_price_combo"`
	CommissionRate float64 `json:"commission_rate"`
	// IsActive defaults to true when omitted.
	IsActive *bool `json:"is_active,omitempty"`
}

// TierResponse represents a tier config.
type TierResponse struct {
	TierName       string    `json:"tier_name"`
	QuantityLimit  int       `json:"quantity_limit"`
	NumSingleTasks int       `json:"num_single_tasks"`
	NumComboTasks  int       `json:"num_combo_tasks"`
	MinPriceSingle float64   `json:"min_price_single"`
	MaxPriceSingle float64   `json:"max_price_single"`
	MinPriceCombo  float64   `json:"min_price_combo"`
	MaxPriceCombo  float64   `json:"max_price_combo"`
	CommissionRate float64   `json:"commission_rate"`
	IsActive       bool      `json:"is_active"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateProductRequest adds a catalog product.
type CreateProductRequest struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Commission float64 `json:"commission"`
}

// ProductResponse represents a catalog product.
type ProductResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Commission float64 `json:"commission"`
}

// StartSessionRequest starts a drive session.
type StartSessionRequest struct {
	Tier string `json:"tier"`
	// UserID lets an admin start a session for a user. Users omit it.
	UserID string `json:"user_id,omitempty"`
}

// ProductRef is a product snapshot frozen into a task.
type ProductRef struct {
	ProductID  string  `json:"product_id"`
	SlotIndex  int     `json:"slot_index"`
	Price      float64 `json:"price"`
	Commission float64 `json:"commission"`
}

// TaskResponse represents one task item.
type TaskResponse struct {
	ID               string       `json:"id"`
	OrderInDrive     int          `json:"order_in_drive"`
	Kind             string       `json:"kind"`
	Status           string       `json:"status"`
	Products         []ProductRef `json:"products"`
	ComboName        string       `json:"combo_name,omitempty"`
	ComboDescription string       `json:"combo_description,omitempty"`
	Attempts         int          `json:"attempts"`
	PurchaseInFlight bool         `json:"purchase_in_flight"`
}

// Progress is the completion summary of a session.
type Progress struct {
	OriginalCompleted int `json:"original_completed"`
	OriginalRequired  int `json:"original_required"`
	ComboCompleted    int `json:"combo_completed"`
	ComboTotal        int `json:"combo_total"`
	AllCompleted      int `json:"all_completed"`
	AllTotal          int `json:"all_total"`
	Percent           int `json:"percent"`
}

// SessionResponse is a queue snapshot.
type SessionResponse struct {
	ID                    string         `json:"id"`
	UserID                string         `json:"user_id"`
	TierAtStart           string         `json:"tier_at_start"`
	Status                string         `json:"status"`
	OriginalTasksRequired int            `json:"original_tasks_required"`
	Version               int64          `json:"version"`
	CurrentTaskID         *string        `json:"current_task_id,omitempty"`
	Tasks                 []TaskResponse `json:"tasks"`
	Progress              Progress       `json:"progress"`
	CreatedAt             time.Time      `json:"created_at"`
}

// ComboRequest is the body of combo insertion and preview.
type ComboRequest struct {
	// Anchor is BEGINNING, AFTER_CURRENT, END, AFTER_TASK or CUSTOM.
	Anchor       string   `json:"anchor"`
	AnchorTaskID string   `json:"anchor_task_id,omitempty"`
	Position     int      `json:"position,omitempty"`
	ProductIDs   []string `json:"product_ids"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	// ExpectedVersion rejects the insert if the session moved since it was read.
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// InsertComboResponse reports a committed insertion.
type InsertComboResponse struct {
	Success       bool     `json:"success"`
	TaskID        string   `json:"task_id"`
	AssignedOrder int      `json:"assigned_order"`
	ShiftedCount  int      `json:"shifted_count"`
	Version       int64    `json:"version"`
	Progress      Progress `json:"progress"`
	Warnings      []string `json:"warnings,omitempty"`
}

// PreviewEntry is one row of a preview queue.
type PreviewEntry struct {
	TaskID     string   `json:"task_id,omitempty"`
	Order      int      `json:"order"`
	Kind       string   `json:"kind"`
	Status     string   `json:"status"`
	ProductIDs []string `json:"product_ids"`
	Total      float64  `json:"total"`
	IsNew      bool     `json:"is_new"`
}

// PreviewResponse is the queue an insertion would produce.
type PreviewResponse struct {
	SessionID      string         `json:"session_id"`
	Version        int64          `json:"version"`
	RequestedOrder int            `json:"requested_order"`
	AssignedOrder  int            `json:"assigned_order"`
	ShiftedCount   int            `json:"shifted_count"`
	Entries        []PreviewEntry `json:"entries"`
	Progress       Progress       `json:"progress"`
	Warnings       []string       `json:"warnings,omitempty"`
}

// VersionRequest carries an optional optimistic-concurrency token.
type VersionRequest struct {
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// CompleteTaskRequest reports the outcome of a purchase.
type CompleteTaskRequest struct {
	// PurchaseOutcome is "success" or "failed".
	PurchaseOutcome string `json:"purchase_outcome"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// CompleteTaskResponse reports the effect of a completion.
type CompleteTaskResponse struct {
	Success           bool         `json:"success"`
	Task              TaskResponse `json:"task"`
	NewCurrentTaskID  *string      `json:"new_current_task_id,omitempty"`
	CompensatedAmount float64      `json:"compensated_amount"`
	Refund            float64      `json:"refund"`
	Version           int64        `json:"version"`
	Progress          Progress     `json:"progress"`
}

// BeginPurchaseResponse confirms a purchase has started.
type BeginPurchaseResponse struct {
	Success bool         `json:"success"`
	Task    TaskResponse `json:"task"`
}

// RatingRequest submits a review for a completed task.
type RatingRequest struct {
	// RatingType is "manual" or "ai".
	RatingType    string `json:"rating_type"`
	Stars         int    `json:"stars,omitempty"`
	ReviewText    string `json:"review_text,omitempty"`
	GeneratedText string `json:"generated_text,omitempty"`
}

// RatingResponse reports the granted bonus.
type RatingResponse struct {
	Success     bool    `json:"success"`
	BonusAmount float64 `json:"bonus_amount"`
}

// CompensationRecord is one ledger entry.
type CompensationRecord struct {
	ID         int64     `json:"id"`
	TaskItemID string    `json:"task_item_id"`
	Type       string    `json:"type"`
	Amount     float64   `json:"amount"`
	Refund     float64   `json:"refund"`
	TierAtTime string    `json:"tier_at_time"`
	CreatedAt  time.Time `json:"created_at"`
}

// LedgerResponse lists a session's compensation records with totals.
type LedgerResponse struct {
	SessionID     string               `json:"session_id"`
	Records       []CompensationRecord `json:"records"`
	TotalAmount   float64              `json:"total_amount"`
	TotalRefunded float64              `json:"total_refunded"`
}

// DriveUpdate is the webhook payload sent after every committed mutation.
type DriveUpdate struct {
	Event                  string   `json:"event"`
	SessionID              string   `json:"session_id"`
	UserID                 string   `json:"user_id"`
	TaskID                 string   `json:"task_id,omitempty"`
	Version                int64    `json:"version"`
	Progress               Progress `json:"progress"`
	NewlyCompensatedAmount float64  `json:"newly_compensated_amount"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Success is always false; it lets clients branch on one field for every response.
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
