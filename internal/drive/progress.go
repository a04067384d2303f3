package drive

import (
	"math"

	"driveplane/internal/store"
)

// Progress is the completion summary of a drive session.
// Percent counts original tasks only and is measured against the quota
// fixed at session start, so combo insertions never move it.
type Progress struct {
	OriginalCompleted int
	OriginalRequired  int
	ComboCompleted    int
	ComboTotal        int
	AllCompleted      int
	AllTotal          int
	Percent           int
}

// ComputeProgress derives progress from a queue snapshot.
func ComputeProgress(q *Queue) Progress {
	p := Progress{
		OriginalRequired: q.Session.OriginalTasksRequired,
		AllTotal:         len(q.Items),
	}

	for _, item := range q.Items {
		done := item.Status == store.TaskStatusCompleted
		if item.Kind == store.TaskKindCombo {
			p.ComboTotal++
		}
		if !done {
			continue
		}
		p.AllCompleted++
		if item.Kind == store.TaskKindOriginal {
			p.OriginalCompleted++
		} else {
			p.ComboCompleted++
		}
	}

	if p.OriginalRequired > 0 {
		pct := int(math.Round(100 * float64(p.OriginalCompleted) / float64(p.OriginalRequired)))
		p.Percent = min(max(pct, 0), 100)
	}
	return p
}
