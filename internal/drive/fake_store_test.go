package drive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"driveplane/internal/store"

	"github.com/google/uuid"
)

var errFakeExec = errors.New("fake tx does not run SQL")

type fakeTx struct {
	s         *fakeStore
	snapshot  fakeState
	committed bool
}

func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errFakeExec
}

func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errFakeExec
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	if t.s.commitErr != nil {
		return t.s.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.committed {
		t.s.state = t.snapshot
		t.committed = true
	}
	return nil
}

type fakeState struct {
	sessions map[uuid.UUID]store.DriveSession
	items    map[uuid.UUID]store.TaskItem
	ledger   []store.CompensationRecord
}

func (st fakeState) clone() fakeState {
	c := fakeState{
		sessions: make(map[uuid.UUID]store.DriveSession, len(st.sessions)),
		items:    make(map[uuid.UUID]store.TaskItem, len(st.items)),
		ledger:   append([]store.CompensationRecord(nil), st.ledger...),
	}
	for k, v := range st.sessions {
		c.sessions[k] = v
	}
	for k, v := range st.items {
		v.Products = append([]store.ProductRef(nil), v.Products...)
		c.items[k] = v
	}
	return c
}

// fakeStore is an in-memory Store that enforces the same uniqueness rules as the schema.
type fakeStore struct {
	state    fakeState
	tiers    map[string]store.TierConfig
	products []store.Product
	nextID   int64

	tierReads int
	commitErr error
	// beforeCreateSession runs inside CreateSession, before the open-session check.
	beforeCreateSession func(s *fakeStore)
	// beforeUpdateSession runs inside UpdateSession, before the version check.
	beforeUpdateSession func(s *fakeStore, sessionID uuid.UUID)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		state: fakeState{
			sessions: map[uuid.UUID]store.DriveSession{},
			items:    map[uuid.UUID]store.TaskItem{},
		},
		tiers: map[string]store.TierConfig{},
	}
}

func (s *fakeStore) BeginTx(context.Context) (store.Tx, error) {
	return &fakeTx{s: s, snapshot: s.state.clone()}, nil
}

func (s *fakeStore) GetTier(_ context.Context, name string) (*store.TierConfig, error) {
	s.tierReads++
	t, ok := s.tiers[strings.ToLower(name)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *fakeStore) ListTiers(context.Context) ([]store.TierConfig, error) {
	var out []store.TierConfig
	for _, t := range s.tiers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TierName < out[j].TierName })
	return out, nil
}

func (s *fakeStore) UpsertTier(_ context.Context, tier *store.TierConfig) error {
	s.tiers[strings.ToLower(tier.TierName)] = *tier
	return nil
}

func (s *fakeStore) CreateProduct(_ context.Context, p *store.Product) error {
	s.products = append(s.products, *p)
	return nil
}

func (s *fakeStore) GetProducts(_ context.Context, ids []uuid.UUID) ([]store.Product, error) {
	var out []store.Product
	for _, id := range ids {
		found := false
		for _, p := range s.products {
			if p.ID == id {
				out = append(out, p)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
		}
	}
	return out, nil
}

func (s *fakeStore) ListProductsInBand(_ context.Context, min, max float64) ([]store.Product, error) {
	var out []store.Product
	for _, p := range s.products {
		if p.Price >= min && p.Price <= max {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (s *fakeStore) ListProducts(context.Context) ([]store.Product, error) {
	out := append([]store.Product(nil), s.products...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (s *fakeStore) checkOneCurrent(item store.TaskItem) error {
	if item.Status != store.TaskStatusCurrent {
		return nil
	}
	for _, other := range s.state.items {
		if other.ID != item.ID && other.DriveSessionID == item.DriveSessionID && other.Status == store.TaskStatusCurrent {
			return fmt.Errorf("unique violation: session %s already has current task %s", item.DriveSessionID, other.ID)
		}
	}
	return nil
}

func (s *fakeStore) CreateSession(ctx context.Context, tx store.DBTransaction, session *store.DriveSession, items []store.TaskItem) error {
	if s.beforeCreateSession != nil {
		s.beforeCreateSession(s)
	}
	if session.Status != store.SessionStatusCompleted {
		if _, err := s.GetActiveSessionForUser(ctx, session.UserID); err == nil {
			return store.ErrOpenSessionExists
		}
	}
	s.state.sessions[session.ID] = *session
	for i := range items {
		if err := s.InsertTaskItem(ctx, tx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStore) GetSession(_ context.Context, _ store.DBTransaction, id uuid.UUID) (*store.DriveSession, error) {
	sess, ok := s.state.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sess, nil
}

func (s *fakeStore) GetActiveSessionForUser(_ context.Context, userID uuid.UUID) (*store.DriveSession, error) {
	for _, sess := range s.state.sessions {
		if sess.UserID == userID && sess.Status != store.SessionStatusCompleted {
			return &sess, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) ListTaskItems(_ context.Context, _ store.DBTransaction, sessionID uuid.UUID) ([]store.TaskItem, error) {
	var out []store.TaskItem
	for _, item := range s.state.items {
		if item.DriveSessionID == sessionID {
			item.Products = append([]store.ProductRef(nil), item.Products...)
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderInDrive < out[j].OrderInDrive })
	return out, nil
}

func (s *fakeStore) GetTaskItem(_ context.Context, _ store.DBTransaction, id uuid.UUID) (*store.TaskItem, error) {
	item, ok := s.state.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (s *fakeStore) ShiftOrders(_ context.Context, _ store.DBTransaction, sessionID uuid.UUID, fromOrder int) (int64, error) {
	var n int64
	for id, item := range s.state.items {
		if item.DriveSessionID == sessionID && item.OrderInDrive >= fromOrder {
			item.OrderInDrive++
			s.state.items[id] = item
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) InsertTaskItem(_ context.Context, _ store.DBTransaction, item *store.TaskItem) error {
	if err := s.checkOneCurrent(*item); err != nil {
		return err
	}
	s.state.items[item.ID] = *item
	return nil
}

func (s *fakeStore) UpdateTaskItemState(_ context.Context, _ store.DBTransaction, item *store.TaskItem) error {
	stored, ok := s.state.items[item.ID]
	if !ok {
		return store.ErrNotFound
	}
	if err := s.checkOneCurrent(*item); err != nil {
		return err
	}
	stored.Status = item.Status
	stored.Attempts = item.Attempts
	stored.PurchaseInFlight = item.PurchaseInFlight
	stored.UpdatedAt = item.UpdatedAt
	s.state.items[item.ID] = stored
	return nil
}

func (s *fakeStore) UpdateSession(_ context.Context, _ store.DBTransaction, session *store.DriveSession, expectedVersion int64) error {
	if s.beforeUpdateSession != nil {
		s.beforeUpdateSession(s, session.ID)
	}
	stored, ok := s.state.sessions[session.ID]
	if !ok || stored.Version != expectedVersion {
		return fmt.Errorf("session %s: %w", session.ID, store.ErrVersionConflict)
	}
	stored.Status = session.Status
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = time.Now().UTC()
	s.state.sessions[session.ID] = stored
	session.Version = stored.Version
	return nil
}

func (s *fakeStore) AppendCompensation(_ context.Context, _ store.DBTransaction, record *store.CompensationRecord) error {
	if record.Type == store.CompensationRatingBonus {
		for _, r := range s.state.ledger {
			if r.TaskItemID == record.TaskItemID && r.Type == store.CompensationRatingBonus {
				return store.ErrDuplicateRatingBonus
			}
		}
	}
	s.nextID++
	record.ID = s.nextID
	s.state.ledger = append(s.state.ledger, *record)
	return nil
}

func (s *fakeStore) HasRatingBonus(_ context.Context, _ store.DBTransaction, taskItemID uuid.UUID) (bool, error) {
	for _, r := range s.state.ledger {
		if r.TaskItemID == taskItemID && r.Type == store.CompensationRatingBonus {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ListCompensation(_ context.Context, sessionID uuid.UUID) ([]store.CompensationRecord, error) {
	var out []store.CompensationRecord
	for _, r := range s.state.ledger {
		if r.DriveSessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// recordingNotifier keeps every update it receives.
type recordingNotifier struct {
	updates []Update
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, u Update) error {
	n.updates = append(n.updates, u)
	return n.err
}

func (n *recordingNotifier) events() []Event {
	out := make([]Event, len(n.updates))
	for i, u := range n.updates {
		out[i] = u.Event
	}
	return out
}
