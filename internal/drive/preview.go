package drive

import (
	"fmt"

	"driveplane/internal/store"

	"github.com/google/uuid"
)

// PreviewEntry is one row of a what-if queue.
type PreviewEntry struct {
	TaskID     uuid.UUID
	Order      int
	Kind       store.TaskKind
	Status     store.TaskStatus
	ProductIDs []uuid.UUID
	Total      float64
	IsNew      bool
}

// Preview is the queue an insertion would produce. Nothing is written to build it.
type Preview struct {
	SessionID uuid.UUID
	// Version is the session version the preview was computed against.
	Version        int64
	RequestedOrder int
	AssignedOrder  int
	ShiftedCount   int
	Entries        []PreviewEntry
	Progress       Progress
	Warnings       []string
}

// Previewer renders insertions on a copy of the queue.
type Previewer struct {
	seq *Sequencer
}

func NewPreviewer(seq *Sequencer) *Previewer {
	return &Previewer{seq: seq}
}

// BuildPreview resolves spec against q and applies it to a clone.
// cfg may be nil, in which case no band warnings are produced.
func (p *Previewer) BuildPreview(q *Queue, spec InsertionSpec, products []store.Product, cfg *store.TierConfig) (*Preview, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	draft := q.Clone()
	requested, err := p.seq.ResolveInsertionOrder(draft, spec)
	if err != nil {
		return nil, err
	}

	item := p.seq.NewComboItem(draft.Session.ID, spec, products)
	out, err := p.seq.InsertTaskAtOrder(draft, requested, item)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		SessionID:      q.Session.ID,
		Version:        q.Session.Version,
		RequestedOrder: requested,
		AssignedOrder:  out.Order,
		ShiftedCount:   out.Shifted,
		Entries:        make([]PreviewEntry, 0, draft.Len()),
		Progress:       ComputeProgress(draft),
		Warnings:       comboWarnings(draft, item, out, cfg),
	}

	for _, it := range draft.Items {
		entry := PreviewEntry{
			TaskID: it.ID,
			Order:  it.OrderInDrive,
			Kind:   it.Kind,
			Status: it.Status,
			IsNew:  it.ID == item.ID,
		}
		for _, ref := range it.Products {
			entry.ProductIDs = append(entry.ProductIDs, ref.ProductID)
			entry.Total += ref.Price
		}
		entry.Total = RoundCents(entry.Total)
		if entry.IsNew {
			entry.TaskID = uuid.Nil
		}
		preview.Entries = append(preview.Entries, entry)
	}

	return preview, nil
}

// comboWarnings lists advisory problems with an insertion. None of them block it.
func comboWarnings(q *Queue, item store.TaskItem, out InsertOutcome, cfg *store.TierConfig) []string {
	var warnings []string

	if out.Order != out.RequestedOrder {
		warnings = append(warnings, fmt.Sprintf(
			"purchase in flight on current task: requested order %d moved to %d", out.RequestedOrder, out.Order))
	}
	if cfg == nil {
		return warnings
	}

	isCombo := len(item.Products) > 1
	for _, ref := range item.Products {
		if err := ValidateProductAgainstTier(ref.Price, isCombo, cfg); err != nil {
			warnings = append(warnings, fmt.Sprintf("product %s: %v", ref.ProductID, err))
		}
	}

	if cfg.NumComboTasks > 0 {
		combos := 0
		for _, it := range q.Items {
			if it.IsCombo() {
				combos++
			}
		}
		if combos > cfg.NumComboTasks {
			warnings = append(warnings, fmt.Sprintf(
				"session would hold %d combo tasks, tier %s suggests %d", combos, cfg.TierName, cfg.NumComboTasks))
		}
	}
	return warnings
}
