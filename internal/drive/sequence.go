package drive

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"driveplane/internal/store"

	"github.com/google/uuid"
)

// Queue is a session together with its task items sorted by order.
// Engine operations mutate a Queue in memory; Service persists the result.
type Queue struct {
	Session store.DriveSession
	Items   []store.TaskItem
}

// NewQueue copies items and sorts them by OrderInDrive.
func NewQueue(session store.DriveSession, items []store.TaskItem) *Queue {
	q := &Queue{Session: session, Items: make([]store.TaskItem, len(items))}
	copy(q.Items, items)
	sort.SliceStable(q.Items, func(i, j int) bool {
		return q.Items[i].OrderInDrive < q.Items[j].OrderInDrive
	})
	return q
}

// Clone returns a deep copy, product slices included.
func (q *Queue) Clone() *Queue {
	c := &Queue{Session: q.Session, Items: make([]store.TaskItem, len(q.Items))}
	for i, item := range q.Items {
		item.Products = append([]store.ProductRef(nil), item.Products...)
		c.Items[i] = item
	}
	return c
}

func (q *Queue) Len() int {
	return len(q.Items)
}

func (q *Queue) indexOf(id uuid.UUID) int {
	for i := range q.Items {
		if q.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Task returns the item with the given id.
func (q *Queue) Task(id uuid.UUID) (*store.TaskItem, bool) {
	i := q.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return &q.Items[i], true
}

func (q *Queue) currentIndex() int {
	for i := range q.Items {
		if q.Items[i].Status == store.TaskStatusCurrent {
			return i
		}
	}
	return -1
}

// Current returns the CURRENT item, if any.
func (q *Queue) Current() (*store.TaskItem, bool) {
	i := q.currentIndex()
	if i < 0 {
		return nil, false
	}
	return &q.Items[i], true
}

// purchaseInFlight reports whether the current item already has a purchase started or retried.
func (q *Queue) purchaseInFlight() bool {
	cur, ok := q.Current()
	return ok && (cur.PurchaseInFlight || cur.Attempts > 0)
}

// Anchor names the reference point of a combo insertion.
type Anchor string

const (
	AnchorBeginning    Anchor = "BEGINNING"
	AnchorAfterCurrent Anchor = "AFTER_CURRENT"
	AnchorEnd          Anchor = "END"
	AnchorAfterTask    Anchor = "AFTER_TASK"
	AnchorCustom       Anchor = "CUSTOM"
)

// ParseAnchor accepts anchors case-insensitively, with dashes or underscores.
func ParseAnchor(s string) (Anchor, error) {
	a := Anchor(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	switch a {
	case AnchorBeginning, AnchorAfterCurrent, AnchorEnd, AnchorAfterTask, AnchorCustom:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown anchor %q", ErrInvalidCombo, s)
}

// InsertionSpec is a transient combo insertion request.
type InsertionSpec struct {
	Anchor Anchor
	// AnchorTaskID is used with AnchorAfterTask.
	AnchorTaskID uuid.UUID
	// Position is used with AnchorCustom.
	Position         int
	ProductIDs       []uuid.UUID
	ComboName        string
	ComboDescription string
}

// Validate checks the request shape. It does not look at any queue.
func (s InsertionSpec) Validate() error {
	if len(s.ProductIDs) == 0 {
		return fmt.Errorf("%w: at least one product is required", ErrInvalidCombo)
	}
	if strings.TrimSpace(s.ComboName) == "" {
		return fmt.Errorf("%w: combo name is required", ErrInvalidCombo)
	}
	if s.Anchor == AnchorAfterTask && s.AnchorTaskID == uuid.Nil {
		return fmt.Errorf("%w: AFTER_TASK needs a task id", ErrInvalidCombo)
	}
	return nil
}

// Sequencer owns the queue rules: creation, insertion, renumbering and pointer movement.
type Sequencer struct {
	now   func() time.Time
	newID func() uuid.UUID
}

// NewSequencer returns a Sequencer using the wall clock and random UUIDs.
func NewSequencer() *Sequencer {
	return &Sequencer{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.New,
	}
}

// NewSession builds a session with cfg.QuantityLimit original tasks.
// Products are assigned round-robin; the first task is CURRENT.
// A zero quota yields an already COMPLETED session.
func (s *Sequencer) NewSession(userID uuid.UUID, cfg *store.TierConfig, products []store.Product) (*Queue, error) {
	n := cfg.QuantityLimit
	if n > 0 && len(products) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoProducts, cfg.TierName)
	}

	now := s.now()
	q := &Queue{
		Session: store.DriveSession{
			ID:                    s.newID(),
			UserID:                userID,
			TierAtStart:           cfg.TierName,
			Status:                store.SessionStatusActive,
			OriginalTasksRequired: n,
			Version:               1,
			CreatedAt:             now,
			UpdatedAt:             now,
		},
		Items: make([]store.TaskItem, 0, n),
	}
	if n <= 0 {
		// nothing to work through
		q.Session.Status = store.SessionStatusCompleted
		return q, nil
	}

	for i := 0; i < n; i++ {
		p := products[i%len(products)]
		status := store.TaskStatusPending
		if i == 0 {
			status = store.TaskStatusCurrent
		}
		q.Items = append(q.Items, store.TaskItem{
			ID:             s.newID(),
			DriveSessionID: q.Session.ID,
			OrderInDrive:   i + 1,
			Kind:           store.TaskKindOriginal,
			Status:         status,
			Products:       []store.ProductRef{snapshot(p, 0)},
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return q, nil
}

func snapshot(p store.Product, slot int) store.ProductRef {
	return store.ProductRef{
		ProductID:  p.ID,
		SlotIndex:  slot,
		Price:      p.Price,
		Commission: p.Commission,
	}
}

// NewComboItem builds an unplaced COMBO item with frozen product snapshots.
func (s *Sequencer) NewComboItem(sessionID uuid.UUID, spec InsertionSpec, products []store.Product) store.TaskItem {
	now := s.now()
	refs := make([]store.ProductRef, len(products))
	for i, p := range products {
		refs[i] = snapshot(p, i)
	}
	return store.TaskItem{
		ID:               s.newID(),
		DriveSessionID:   sessionID,
		Kind:             store.TaskKindCombo,
		Status:           store.TaskStatusPending,
		Products:         refs,
		ComboName:        spec.ComboName,
		ComboDescription: spec.ComboDescription,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ResolveInsertionOrder maps an anchor to a concrete 1-based position.
func (s *Sequencer) ResolveInsertionOrder(q *Queue, spec InsertionSpec) (int, error) {
	count := q.Len()
	switch spec.Anchor {
	case AnchorBeginning:
		return 1, nil
	case AnchorEnd:
		return count + 1, nil
	case AnchorAfterCurrent:
		cur, ok := q.Current()
		if !ok {
			return count + 1, nil
		}
		return cur.OrderInDrive + 1, nil
	case AnchorAfterTask:
		task, ok := q.Task(spec.AnchorTaskID)
		if !ok {
			return 0, fmt.Errorf("%w: anchor %s", ErrTaskNotFound, spec.AnchorTaskID)
		}
		return task.OrderInDrive + 1, nil
	case AnchorCustom:
		if spec.Position < 1 || spec.Position > count+1 {
			return 0, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidPosition, spec.Position, count+1)
		}
		return spec.Position, nil
	default:
		return 0, fmt.Errorf("%w: unknown anchor %q", ErrInvalidCombo, spec.Anchor)
	}
}

// EffectiveInsertionOrder moves a request at or before the current task to just after it
// once a purchase on the current task is in flight.
func (s *Sequencer) EffectiveInsertionOrder(q *Queue, requested int) int {
	cur, ok := q.Current()
	if ok && q.purchaseInFlight() && requested <= cur.OrderInDrive {
		return cur.OrderInDrive + 1
	}
	return requested
}

// InsertOutcome describes an applied insertion.
type InsertOutcome struct {
	RequestedOrder int
	Order          int
	Shifted        int
	// PointerMoved is set when the new item took over the CURRENT pointer.
	PointerMoved bool
}

// InsertTaskAtOrder places item at order, shifting every item at or after it by one.
// An item placed at or before the current task becomes CURRENT itself.
func (s *Sequencer) InsertTaskAtOrder(q *Queue, order int, item store.TaskItem) (InsertOutcome, error) {
	out := InsertOutcome{RequestedOrder: order}
	if order < 1 || order > q.Len()+1 {
		return out, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidPosition, order, q.Len()+1)
	}
	order = s.EffectiveInsertionOrder(q, order)
	out.Order = order

	now := s.now()
	curIdx := q.currentIndex()

	for i := range q.Items {
		if q.Items[i].OrderInDrive >= order {
			q.Items[i].OrderInDrive++
			q.Items[i].UpdatedAt = now
			out.Shifted++
		}
	}

	item.DriveSessionID = q.Session.ID
	item.OrderInDrive = order
	item.Status = store.TaskStatusPending
	item.UpdatedAt = now

	if curIdx >= 0 && order < q.Items[curIdx].OrderInDrive {
		q.Items[curIdx].Status = store.TaskStatusPending
		item.Status = store.TaskStatusCurrent
		out.PointerMoved = true
	}

	q.Items = append(q.Items, item)
	sort.SliceStable(q.Items, func(i, j int) bool {
		return q.Items[i].OrderInDrive < q.Items[j].OrderInDrive
	})

	if curIdx < 0 {
		out.PointerMoved = s.promoteNext(q, now)
	}
	return out, nil
}

// promoteNext makes the lowest-order PENDING item CURRENT when nothing is CURRENT.
func (s *Sequencer) promoteNext(q *Queue, now time.Time) bool {
	if q.currentIndex() >= 0 {
		return false
	}
	for i := range q.Items {
		if q.Items[i].Status == store.TaskStatusPending {
			q.Items[i].Status = store.TaskStatusCurrent
			q.Items[i].UpdatedAt = now
			return true
		}
	}
	return false
}

func (s *Sequencer) requireCurrent(q *Queue, taskID uuid.UUID) (*store.TaskItem, error) {
	task, ok := q.Task(taskID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.Status != store.TaskStatusCurrent {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotCurrentTask, taskID, task.Status)
	}
	return task, nil
}

// AdvanceOnCompletion completes the CURRENT task and moves the pointer to the next PENDING one.
// It returns the new CURRENT item, or nil when the queue is exhausted.
func (s *Sequencer) AdvanceOnCompletion(q *Queue, taskID uuid.UUID) (*store.TaskItem, error) {
	task, err := s.requireCurrent(q, taskID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task.Status = store.TaskStatusCompleted
	task.PurchaseInFlight = false
	task.UpdatedAt = now

	s.promoteNext(q, now)
	s.refreshStatus(q)

	next, ok := q.Current()
	if !ok {
		return nil, nil
	}
	return next, nil
}

// refreshStatus marks the session COMPLETED once every original task is done.
// A reset session becomes ACTIVE again with its first completion.
func (s *Sequencer) refreshStatus(q *Queue) {
	remaining := 0
	for _, item := range q.Items {
		if item.Kind == store.TaskKindOriginal && item.Status != store.TaskStatusCompleted {
			remaining++
		}
	}
	switch {
	case remaining == 0:
		q.Session.Status = store.SessionStatusCompleted
	case q.Session.Status == store.SessionStatusReset:
		q.Session.Status = store.SessionStatusActive
	}
}

// MarkFailed records a failed purchase on the CURRENT task. The task stays CURRENT for a retry.
func (s *Sequencer) MarkFailed(q *Queue, taskID uuid.UUID) (*store.TaskItem, error) {
	task, err := s.requireCurrent(q, taskID)
	if err != nil {
		return nil, err
	}
	task.Attempts++
	task.PurchaseInFlight = false
	task.UpdatedAt = s.now()
	return task, nil
}

// BeginPurchase flags a purchase as started on the CURRENT task.
// From then on insertions cannot land at or before it.
func (s *Sequencer) BeginPurchase(q *Queue, taskID uuid.UUID) (*store.TaskItem, error) {
	task, err := s.requireCurrent(q, taskID)
	if err != nil {
		return nil, err
	}
	task.PurchaseInFlight = true
	task.UpdatedAt = s.now()
	return task, nil
}

// Reset returns every item to PENDING and the pointer to order 1.
// Combo items stay in place.
func (s *Sequencer) Reset(q *Queue) {
	now := s.now()
	for i := range q.Items {
		item := &q.Items[i]
		item.Status = store.TaskStatusPending
		item.Attempts = 0
		item.PurchaseInFlight = false
		item.UpdatedAt = now
	}
	if len(q.Items) > 0 {
		q.Items[0].Status = store.TaskStatusCurrent
	}
	q.Session.Status = store.SessionStatusReset
}

// Validate checks that orders are exactly 1..N and at most one item is CURRENT.
func Validate(q *Queue) error {
	current := 0
	for i, item := range q.Items {
		if item.OrderInDrive != i+1 {
			return fmt.Errorf("%w: position %d holds order %d", ErrCorruptQueue, i+1, item.OrderInDrive)
		}
		if item.Status == store.TaskStatusCurrent {
			current++
		}
	}
	if current > 1 {
		return fmt.Errorf("%w: %d current tasks", ErrCorruptQueue, current)
	}
	return nil
}
