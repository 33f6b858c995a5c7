package reconcile

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos/links"
	"github.com/yungbote/daybook/internal/ingestion"
	"github.com/yungbote/daybook/internal/types"
)

// Mode selects the reconciliation semantics for one pass.
type Mode string

const (
	// ModeReplace makes the declared set authoritative: associations not
	// declared are removed, missing ones added, role metadata refreshed.
	ModeReplace Mode = "replace"
	// ModeMerge only adds: target set is the union of current and
	// declared. Used by append-only ingestion paths.
	ModeMerge Mode = "merge"
)

// Delta is the per-kind outcome of one processor pass. A second pass
// over unchanged input must produce an all-zero delta.
type Delta struct {
	Kind        types.EntityKind
	Added       int
	Removed     int
	Updated     int
	Created     int
	Resurrected int
	Tombstoned  int

	// Touched holds every entity id the declared set resolved to; the
	// reconciler refreshes computed aggregates for them.
	Touched []uuid.UUID
	// RemovedTargets holds entity ids that lost an association in this
	// pass; the reconciler tombstones any that hit zero references.
	RemovedTargets []uuid.UUID
}

func (d *Delta) Changes() int {
	return d.Added + d.Removed + d.Updated + d.Created + d.Resurrected + d.Tombstoned
}

// Processor reconciles one relationship kind for one entry. Composite
// kinds (scenes, references) emit extra deltas for the entity kinds they
// resolve along the way, so aggregate refresh and orphan tombstoning see
// every touched entity.
type Processor interface {
	Kind() types.EntityKind
	Apply(ctx context.Context, tx *gorm.DB, entry *types.Entry, desc *ingestion.EntryDescriptor, mode Mode) ([]*Delta, error)
}

// target is one resolved declared spec.
type target struct {
	id      uuid.UUID
	role    string
	outcome Outcome
}

// resolveFunc translates an entry's declared specs for one kind into
// resolved targets. It may apply kind-specific canonical state (poem
// versions) and reports such updates in its second return value. Any
// resolution failure aborts the whole processor call: partial
// association sets are never committed.
type resolveFunc func(ctx context.Context, tx *gorm.DB, entry *types.Entry, desc *ingestion.EntryDescriptor) ([]target, int, error)

// linkProcessor reconciles the uniform (owner, target, role) junction
// kinds by set difference. Removals run before additions so an entity
// renamed through a disambiguator change never collides on the unique
// pair index.
type linkProcessor[L any, P links.Ptr[L]] struct {
	kind    types.EntityKind
	repo    *links.Repo[L, P]
	resolve resolveFunc
	build   func(ownerID, targetID uuid.UUID, role string) P
}

func (p *linkProcessor[L, P]) Kind() types.EntityKind { return p.kind }

func (p *linkProcessor[L, P]) Apply(ctx context.Context, tx *gorm.DB, entry *types.Entry, desc *ingestion.EntryDescriptor, mode Mode) ([]*Delta, error) {
	delta := &Delta{Kind: p.kind}

	targets, updated, err := p.resolve(ctx, tx, entry, desc)
	if err != nil {
		return nil, err
	}
	delta.Updated += updated

	if err := applyLinkSet(ctx, tx, p.repo, entry.ID, targets, mode, p.build, delta); err != nil {
		return nil, err
	}
	return []*Delta{delta}, nil
}

// applyLinkSet reconciles one owner's junction rows against the resolved
// targets by set difference, accumulating into delta. Scene sub-links
// (scene people, scene narrated dates) share it with the entry-side
// processors.
func applyLinkSet[L any, P links.Ptr[L]](
	ctx context.Context,
	tx *gorm.DB,
	repo *links.Repo[L, P],
	ownerID uuid.UUID,
	targets []target,
	mode Mode,
	build func(ownerID, targetID uuid.UUID, role string) P,
	delta *Delta,
) error {
	want := make(map[uuid.UUID]target, len(targets))
	order := make([]uuid.UUID, 0, len(targets))
	for _, t := range targets {
		if _, ok := want[t.id]; ok {
			continue
		}
		want[t.id] = t
		order = append(order, t.id)
		switch t.outcome {
		case OutcomeCreated:
			delta.Created++
		case OutcomeResurrected:
			delta.Resurrected++
		}
	}

	current, err := repo.ListByOwner(ctx, tx, ownerID)
	if err != nil {
		return err
	}
	curByTarget := make(map[uuid.UUID]P, len(current))
	for _, link := range current {
		curByTarget[link.TargetID()] = link
	}

	if mode == ModeReplace {
		var removals []uuid.UUID
		for tid := range curByTarget {
			if _, ok := want[tid]; !ok {
				removals = append(removals, tid)
			}
		}
		if len(removals) > 0 {
			if err := repo.DeleteByOwnerAndTargets(ctx, tx, ownerID, removals); err != nil {
				return err
			}
			delta.Removed += len(removals)
			delta.RemovedTargets = append(delta.RemovedTargets, removals...)
		}
	}

	var adds []P
	for _, tid := range order {
		t := want[tid]
		delta.Touched = append(delta.Touched, tid)
		cur, ok := curByTarget[tid]
		if !ok {
			adds = append(adds, build(ownerID, tid, t.role))
			continue
		}
		// Role metadata follows the declared value on kept links, but a
		// bare mention (empty role) never clears a stored one.
		if mode == ModeReplace && t.role != "" && t.role != cur.RoleMeta() {
			if err := repo.UpdateRole(ctx, tx, cur.LinkID(), t.role); err != nil {
				return err
			}
			delta.Updated++
		}
	}
	if len(adds) > 0 {
		if err := repo.Create(ctx, tx, adds); err != nil {
			return err
		}
		delta.Added += len(adds)
	}
	return nil
}
