package reconcile

import (
	"github.com/google/uuid"

	"github.com/yungbote/daybook/internal/types"
)

// Report is the outcome of one reconciliation pass. Re-running the same
// descriptor must yield Changes() == 0.
type Report struct {
	EntryID          uuid.UUID `json:"entry_id"`
	Date             string    `json:"date"`
	Mode             Mode      `json:"mode"`
	EntryCreated     bool      `json:"entry_created"`
	EntryResurrected bool      `json:"entry_resurrected"`
	EntryUpdated     bool      `json:"entry_updated"`
	Deltas           []*Delta  `json:"deltas"`
}

// Delta returns the per-kind delta, or an empty one when the kind saw no
// activity.
func (r *Report) Delta(kind types.EntityKind) *Delta {
	for _, d := range r.Deltas {
		if d.Kind == kind {
			return d
		}
	}
	return &Delta{Kind: kind}
}

// Changes counts every row-level change the pass made.
func (r *Report) Changes() int {
	total := 0
	if r.EntryCreated {
		total++
	}
	if r.EntryResurrected {
		total++
	}
	if r.EntryUpdated {
		total++
	}
	for _, d := range r.Deltas {
		total += d.Changes()
	}
	return total
}
