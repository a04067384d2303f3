// Package drive implements the drive task sequence and progress engine.
package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"driveplane/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Store combines the persistence interfaces the engine needs.
type Store interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	store.SessionStore
	store.LedgerStore
	store.CatalogStore
	store.TierStore
}

// Actor is the authenticated caller. The engine trusts the role it is given.
type Actor struct {
	ID   uuid.UUID
	Role store.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == store.RoleAdmin
}

// PurchaseOutcome is what the user reports when finishing a purchase attempt.
type PurchaseOutcome string

const (
	PurchaseSucceeded PurchaseOutcome = "success"
	PurchaseFailed    PurchaseOutcome = "failed"
)

// ServiceConfig holds the collaborators of a Service.
type ServiceConfig struct {
	TierCacheTTL time.Duration
	Purchase     PurchaseFlowHandler
	Notifier     Notifier
	Metrics      Metrics
	Logger       *slog.Logger
}

// Service is the authoritative entry point for every drive operation.
// Each mutating call runs in one transaction and is guarded by the session version.
type Service struct {
	store    Store
	tiers    *TierPolicy
	seq      *Sequencer
	preview  *Previewer
	purchase PurchaseFlowHandler
	notifier Notifier
	metrics  Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewService wires a Service. Zero-valued collaborators get safe defaults.
func NewService(st Store, cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Purchase == nil {
		cfg.Purchase = StandardPurchaseFlow{}
	}
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}

	seq := NewSequencer()
	return &Service{
		store:    st,
		tiers:    NewTierPolicy(st, cfg.TierCacheTTL, cfg.Logger),
		seq:      seq,
		preview:  NewPreviewer(seq),
		purchase: cfg.Purchase,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		tracer:   otel.Tracer("driveplane/drive"),
	}
}

// Tiers exposes the tier policy.
func (s *Service) Tiers() *TierPolicy {
	return s.tiers
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}

func requireOwner(actor Actor, session *store.DriveSession) error {
	if actor.Role != store.RoleUser || actor.ID != session.UserID {
		return fmt.Errorf("%w: only the session owner may do this", ErrForbidden)
	}
	return nil
}

func requireReader(actor Actor, session *store.DriveSession) error {
	if actor.IsAdmin() || actor.ID == session.UserID {
		return nil
	}
	return fmt.Errorf("%w: not your session", ErrForbidden)
}

// loadQueue reads a session and its items through tx (nil reads outside a transaction).
func (s *Service) loadQueue(ctx context.Context, tx store.DBTransaction, sessionID uuid.UUID) (*Queue, error) {
	sess, err := s.store.GetSession(ctx, tx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	items, err := s.store.ListTaskItems(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewQueue(*sess, items), nil
}

// loadQueueForTask finds the session owning taskID and loads it.
func (s *Service) loadQueueForTask(ctx context.Context, tx store.DBTransaction, taskID uuid.UUID) (*Queue, error) {
	item, err := s.store.GetTaskItem(ctx, tx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
		}
		return nil, err
	}
	return s.loadQueue(ctx, tx, item.DriveSessionID)
}

func checkVersion(q *Queue, expected *int64) error {
	if expected != nil && *expected != q.Session.Version {
		return fmt.Errorf("%w: expected version %d, found %d", ErrConcurrentModification, *expected, q.Session.Version)
	}
	return nil
}

// writeStateChanges persists status changes between before and after.
// Demotions are written first so the single-CURRENT index never sees two.
func (s *Service) writeStateChanges(ctx context.Context, tx store.DBTransaction, before, after *Queue) error {
	var changed []store.TaskItem
	for _, item := range after.Items {
		prev, ok := before.Task(item.ID)
		if !ok {
			continue
		}
		if prev.Status != item.Status || prev.Attempts != item.Attempts || prev.PurchaseInFlight != item.PurchaseInFlight {
			changed = append(changed, item)
		}
	}

	sort.SliceStable(changed, func(i, j int) bool {
		return changed[i].Status != store.TaskStatusCurrent && changed[j].Status == store.TaskStatusCurrent
	})

	for i := range changed {
		if err := s.store.UpdateTaskItemState(ctx, tx, &changed[i]); err != nil {
			return err
		}
	}
	return nil
}

// commitSession validates the queue, bumps the version and commits.
func (s *Service) commitSession(ctx context.Context, tx store.Tx, q *Queue, readVersion int64, op string) error {
	if err := Validate(q); err != nil {
		s.logger.ErrorContext(ctx, "refusing to commit corrupt queue",
			"session_id", q.Session.ID, "op", op, "error", err)
		return err
	}
	if err := s.store.UpdateSession(ctx, tx, &q.Session, readVersion); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			s.metrics.Conflict(ctx, op)
			return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
		}
		return err
	}
	return tx.Commit()
}

func (s *Service) notify(ctx context.Context, event Event, q *Queue, taskID uuid.UUID, amount float64) {
	update := Update{
		Event:                  event,
		SessionID:              q.Session.ID,
		UserID:                 q.Session.UserID,
		TaskID:                 taskID,
		Version:                q.Session.Version,
		Progress:               ComputeProgress(q),
		NewlyCompensatedAmount: amount,
	}
	if err := s.notifier.Notify(ctx, update); err != nil {
		s.logger.WarnContext(ctx, "failed to deliver update",
			"session_id", q.Session.ID, "event", event, "error", err)
	}
}

// StartSession creates a drive session for userID on tierName.
// Users may only start their own session; admins may start one for anybody.
func (s *Service) StartSession(ctx context.Context, actor Actor, userID uuid.UUID, tierName string) (*Queue, error) {
	ctx, span := s.startSpan(ctx, "drive.start_session", attribute.String("tier", tierName))
	defer span.End()

	if !actor.IsAdmin() && actor.ID != userID {
		return nil, fmt.Errorf("%w: cannot start a session for another user", ErrForbidden)
	}

	existing, err := s.store.GetActiveSessionForUser(ctx, userID)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, existing.ID)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	cfg, err := s.tiers.Resolve(ctx, tierName)
	if err != nil {
		return nil, err
	}

	products, err := s.store.ListProductsInBand(ctx, cfg.MinPriceSingle, cfg.MaxPriceSingle)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		s.logger.WarnContext(ctx, "no products inside single price band, using whole catalog", "tier", cfg.TierName)
		if products, err = s.store.ListProducts(ctx); err != nil {
			return nil, err
		}
	}

	q, err := s.seq.NewSession(userID, cfg, products)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateSession(ctx, tx, &q.Session, q.Items); err != nil {
		if errors.Is(err, store.ErrOpenSessionExists) {
			return nil, fmt.Errorf("%w: %v", ErrSessionExists, err)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "drive session started",
		"session_id", q.Session.ID, "user_id", userID, "tier", cfg.TierName, "tasks", q.Len())
	s.notify(ctx, EventSessionStarted, q, uuid.Nil, 0)
	return q, nil
}

// GetQueue returns a snapshot of a session queue.
func (s *Service) GetQueue(ctx context.Context, actor Actor, sessionID uuid.UUID) (*Queue, error) {
	q, err := s.loadQueue(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireReader(actor, &q.Session); err != nil {
		return nil, err
	}
	return q, nil
}

// Progress computes progress from a lock-free snapshot.
func (s *Service) Progress(ctx context.Context, actor Actor, sessionID uuid.UUID) (Progress, error) {
	q, err := s.GetQueue(ctx, actor, sessionID)
	if err != nil {
		return Progress{}, err
	}
	return ComputeProgress(q), nil
}

// fetchComboProducts snapshots catalog products for a combo.
func (s *Service) fetchComboProducts(ctx context.Context, ids []uuid.UUID) ([]store.Product, error) {
	products, err := s.store.GetProducts(ctx, ids)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrProductNotFound, err)
		}
		return nil, err
	}
	return products, nil
}

// PreviewCombo shows the queue an insertion would produce, without writing anything.
func (s *Service) PreviewCombo(ctx context.Context, actor Actor, sessionID uuid.UUID, spec InsertionSpec) (*Preview, error) {
	ctx, span := s.startSpan(ctx, "drive.preview_combo", attribute.String("session.id", sessionID.String()))
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	q, err := s.loadQueue(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	products, err := s.fetchComboProducts(ctx, spec.ProductIDs)
	if err != nil {
		return nil, err
	}

	cfg, err := s.tiers.ResolveForSession(ctx, q.Session.TierAtStart)
	if err != nil {
		s.logger.WarnContext(ctx, "previewing without tier bands", "tier", q.Session.TierAtStart, "error", err)
		cfg = nil
	}

	return s.preview.BuildPreview(q, spec, products, cfg)
}

// InsertResult reports a committed combo insertion.
type InsertResult struct {
	Task          store.TaskItem
	AssignedOrder int
	ShiftedCount  int
	Version       int64
	Progress      Progress
	Warnings      []string
}

// InsertCombo inserts an admin combo task into a session queue.
// expectedVersion, when set, must match the version the admin previewed.
func (s *Service) InsertCombo(ctx context.Context, actor Actor, sessionID uuid.UUID, spec InsertionSpec, expectedVersion *int64) (*InsertResult, error) {
	ctx, span := s.startSpan(ctx, "drive.insert_combo",
		attribute.String("session.id", sessionID.String()),
		attribute.String("anchor", string(spec.Anchor)),
	)
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	products, err := s.fetchComboProducts(ctx, spec.ProductIDs)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	before, err := s.loadQueue(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(before, expectedVersion); err != nil {
		s.metrics.Conflict(ctx, "insert_combo")
		return nil, err
	}

	q := before.Clone()
	requested, err := s.seq.ResolveInsertionOrder(q, spec)
	if err != nil {
		return nil, err
	}
	item := s.seq.NewComboItem(q.Session.ID, spec, products)
	out, err := s.seq.InsertTaskAtOrder(q, requested, item)
	if err != nil {
		return nil, err
	}
	inserted, _ := q.Task(item.ID)

	shifted, err := s.store.ShiftOrders(ctx, tx, sessionID, out.Order)
	if err != nil {
		return nil, err
	}
	if int(shifted) != out.Shifted {
		s.metrics.Conflict(ctx, "insert_combo")
		return nil, fmt.Errorf("%w: shifted %d rows, expected %d", ErrConcurrentModification, shifted, out.Shifted)
	}
	if err := s.writeStateChanges(ctx, tx, before, q); err != nil {
		return nil, err
	}
	if err := s.store.InsertTaskItem(ctx, tx, inserted); err != nil {
		return nil, err
	}
	if err := s.commitSession(ctx, tx, q, before.Session.Version, "insert_combo"); err != nil {
		return nil, err
	}

	var cfg *store.TierConfig
	if resolved, err := s.tiers.ResolveForSession(ctx, q.Session.TierAtStart); err == nil {
		cfg = resolved
	}

	result := &InsertResult{
		Task:          *inserted,
		AssignedOrder: out.Order,
		ShiftedCount:  out.Shifted,
		Version:       q.Session.Version,
		Progress:      ComputeProgress(q),
		Warnings:      comboWarnings(q, *inserted, out, cfg),
	}

	s.metrics.ComboInserted(ctx, out.Shifted)
	s.logger.InfoContext(ctx, "combo inserted",
		"session_id", sessionID, "task_id", inserted.ID, "order", out.Order,
		"requested_order", out.RequestedOrder, "shifted", out.Shifted, "admin_id", actor.ID)
	s.notify(ctx, EventComboInserted, q, inserted.ID, 0)
	return result, nil
}

// BeginPurchase marks the CURRENT task as having a purchase in flight.
func (s *Service) BeginPurchase(ctx context.Context, actor Actor, taskID uuid.UUID, expectedVersion *int64) (*store.TaskItem, error) {
	ctx, span := s.startSpan(ctx, "drive.begin_purchase", attribute.String("task.id", taskID.String()))
	defer span.End()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	before, err := s.loadQueueForTask(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, &before.Session); err != nil {
		return nil, err
	}
	if err := checkVersion(before, expectedVersion); err != nil {
		return nil, err
	}

	q := before.Clone()
	task, err := s.seq.BeginPurchase(q, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.writeStateChanges(ctx, tx, before, q); err != nil {
		return nil, err
	}
	if err := s.commitSession(ctx, tx, q, before.Session.Version, "begin_purchase"); err != nil {
		return nil, err
	}

	s.notify(ctx, EventPurchaseBegun, q, taskID, 0)
	return task, nil
}

// CompletionResult reports the effect of a purchase attempt.
type CompletionResult struct {
	Task              store.TaskItem
	NewCurrentTaskID  *uuid.UUID
	CompensatedAmount float64
	Refund            float64
	Version           int64
	Progress          Progress
}

// CompleteTask records the outcome of a purchase on the CURRENT task.
// A failed purchase keeps the task CURRENT with its retry counter raised.
// A successful one completes it, advances the pointer and credits the ledger.
func (s *Service) CompleteTask(ctx context.Context, actor Actor, taskID uuid.UUID, outcome PurchaseOutcome, expectedVersion *int64) (*CompletionResult, error) {
	ctx, span := s.startSpan(ctx, "drive.complete_task",
		attribute.String("task.id", taskID.String()),
		attribute.String("outcome", string(outcome)),
	)
	defer span.End()

	if outcome != PurchaseSucceeded && outcome != PurchaseFailed {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	before, err := s.loadQueueForTask(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, &before.Session); err != nil {
		return nil, err
	}
	if err := checkVersion(before, expectedVersion); err != nil {
		return nil, err
	}

	q := before.Clone()
	result := &CompletionResult{}

	if outcome == PurchaseFailed {
		task, err := s.seq.MarkFailed(q, taskID)
		if err != nil {
			return nil, err
		}
		result.Task = *task
		id := task.ID
		result.NewCurrentTaskID = &id
	} else {
		cfg, err := s.tiers.ResolveForSession(ctx, q.Session.TierAtStart)
		if err != nil {
			return nil, err
		}

		next, err := s.seq.AdvanceOnCompletion(q, taskID)
		if err != nil {
			return nil, err
		}
		task, _ := q.Task(taskID)
		result.Task = *task
		if next != nil {
			id := next.ID
			result.NewCurrentTaskID = &id
		}

		ret, err := s.purchase.Settle(ctx, task, cfg)
		if err != nil {
			return nil, err
		}
		record := &store.CompensationRecord{
			TaskItemID:     task.ID,
			DriveSessionID: q.Session.ID,
			Type:           store.CompensationPurchase,
			Amount:         ret.Commission,
			Refund:         ret.Refund,
			TierAtTime:     cfg.TierName,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.store.AppendCompensation(ctx, tx, record); err != nil {
			return nil, err
		}
		result.CompensatedAmount = ret.Commission
		result.Refund = ret.Refund
	}

	if err := s.writeStateChanges(ctx, tx, before, q); err != nil {
		return nil, err
	}
	if err := s.commitSession(ctx, tx, q, before.Session.Version, "complete_task"); err != nil {
		return nil, err
	}

	result.Version = q.Session.Version
	result.Progress = ComputeProgress(q)

	if outcome == PurchaseFailed {
		s.logger.InfoContext(ctx, "purchase failed",
			"session_id", q.Session.ID, "task_id", taskID, "attempts", result.Task.Attempts)
		s.notify(ctx, EventPurchaseFailed, q, taskID, 0)
		return result, nil
	}

	s.metrics.TaskCompleted(ctx, result.Task.Kind)
	s.metrics.Compensated(ctx, store.CompensationPurchase, result.CompensatedAmount)
	s.logger.InfoContext(ctx, "task completed",
		"session_id", q.Session.ID, "task_id", taskID, "kind", result.Task.Kind,
		"commission", result.CompensatedAmount, "session_status", q.Session.Status)
	s.notify(ctx, EventTaskCompleted, q, taskID, result.CompensatedAmount)
	return result, nil
}

// SubmitRating validates a review of a completed task and credits the tier bonus once.
func (s *Service) SubmitRating(ctx context.Context, actor Actor, taskID uuid.UUID, rt RatingType, payload RatingPayload) (*store.CompensationRecord, error) {
	ctx, span := s.startSpan(ctx, "drive.submit_rating",
		attribute.String("task.id", taskID.String()),
		attribute.String("rating.type", string(rt)),
	)
	defer span.End()

	if err := ValidateRating(rt, payload); err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	q, err := s.loadQueueForTask(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, &q.Session); err != nil {
		return nil, err
	}

	task, _ := q.Task(taskID)
	if task.Status != store.TaskStatusCompleted {
		return nil, fmt.Errorf("%w: %s is %s", ErrTaskNotCompleted, taskID, task.Status)
	}

	rated, err := s.store.HasRatingBonus(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}
	if rated {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRating, taskID)
	}

	amount, err := ComputeRatingBonus(q.Session.TierAtStart, rt)
	if err != nil {
		return nil, err
	}

	record := &store.CompensationRecord{
		TaskItemID:     taskID,
		DriveSessionID: q.Session.ID,
		Type:           store.CompensationRatingBonus,
		Amount:         amount,
		TierAtTime:     q.Session.TierAtStart,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.AppendCompensation(ctx, tx, record); err != nil {
		if errors.Is(err, store.ErrDuplicateRatingBonus) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRating, taskID)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.metrics.Compensated(ctx, store.CompensationRatingBonus, amount)
	s.logger.InfoContext(ctx, "rating bonus granted",
		"session_id", q.Session.ID, "task_id", taskID, "rating_type", rt, "amount", amount)
	s.notify(ctx, EventRatingBonus, q, taskID, amount)
	return record, nil
}

// ResetSession returns every task to PENDING. Combos and the ledger are kept.
func (s *Service) ResetSession(ctx context.Context, actor Actor, sessionID uuid.UUID, expectedVersion *int64) (*Queue, error) {
	ctx, span := s.startSpan(ctx, "drive.reset_session", attribute.String("session.id", sessionID.String()))
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	before, err := s.loadQueue(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(before, expectedVersion); err != nil {
		return nil, err
	}

	q := before.Clone()
	s.seq.Reset(q)

	if err := s.writeStateChanges(ctx, tx, before, q); err != nil {
		return nil, err
	}
	if err := s.commitSession(ctx, tx, q, before.Session.Version, "reset_session"); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "drive session reset", "session_id", sessionID, "admin_id", actor.ID, "tasks", q.Len())
	s.notify(ctx, EventSessionReset, q, uuid.Nil, 0)
	return q, nil
}

// Ledger returns the compensation records of a session.
func (s *Service) Ledger(ctx context.Context, actor Actor, sessionID uuid.UUID) ([]store.CompensationRecord, error) {
	sess, err := s.store.GetSession(ctx, nil, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	if err := requireReader(actor, sess); err != nil {
		return nil, err
	}
	return s.store.ListCompensation(ctx, sessionID)
}

// PutTier validates and writes a tier config.
func (s *Service) PutTier(ctx context.Context, actor Actor, cfg *store.TierConfig) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.tiers.Put(ctx, cfg); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "tier config written", "tier", cfg.TierName, "admin_id", actor.ID)
	return nil
}

func (s *Service) ListTiers(ctx context.Context) ([]store.TierConfig, error) {
	return s.tiers.List(ctx)
}

// AddProduct adds a catalog product. Existing tasks keep their snapshots.
func (s *Service) AddProduct(ctx context.Context, actor Actor, product *store.Product) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if product.Name == "" || product.Price < 0 || product.Commission < 0 {
		return fmt.Errorf("%w: product needs a name and non-negative prices", ErrInvalidProduct)
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	product.Price = RoundCents(product.Price)
	product.Commission = RoundCents(product.Commission)
	return s.store.CreateProduct(ctx, product)
}
