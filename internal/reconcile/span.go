package reconcile

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/data/repos/links"
	"github.com/yungbote/daybook/internal/ingestion"
	"github.com/yungbote/daybook/internal/types"
)

// spanProcessor reconciles thread and arc membership. Members are kept
// in chronological order of their entry dates: insertion ranks the entry
// among current members and opens a position gap there, never appends.
// A declared part that contradicts that rank is an ordering violation
// and aborts the pass with the member list unchanged.
type spanProcessor[L any, P interface{ *L }] struct {
	kind    types.EntityKind
	set     *repos.Set
	members *links.MemberRepo[L, P]

	specs   func(d *ingestion.EntryDescriptor) []ingestion.SpanSpec
	resolve func(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (uuid.UUID, string, Outcome, error)

	groupID  func(m P) uuid.UUID
	entryID  func(m P) uuid.UUID
	position func(m P) int
	build    func(groupID, entryID uuid.UUID, pos int) P
}

func (p *spanProcessor[L, P]) Kind() types.EntityKind { return p.kind }

func (p *spanProcessor[L, P]) Apply(ctx context.Context, tx *gorm.DB, entry *types.Entry, desc *ingestion.EntryDescriptor, mode Mode) ([]*Delta, error) {
	delta := &Delta{Kind: p.kind}

	type declaredSpan struct {
		name string
		part *int
	}
	declared := map[uuid.UUID]declaredSpan{}
	var order []uuid.UUID
	for _, spec := range p.specs(desc) {
		id, name, outcome, err := p.resolve(ctx, tx, spec.Spec)
		if err != nil {
			return nil, err
		}
		if _, ok := declared[id]; ok {
			continue
		}
		declared[id] = declaredSpan{name: name, part: spec.Part}
		order = append(order, id)
		countOutcome(delta, outcome)
		delta.Touched = append(delta.Touched, id)
	}

	memberships, err := p.members.ListByEntry(ctx, tx, entry.ID)
	if err != nil {
		return nil, err
	}
	current := map[uuid.UUID]P{}
	for _, m := range memberships {
		current[p.groupID(m)] = m
	}

	if mode == ModeReplace {
		for gid, m := range current {
			if _, ok := declared[gid]; ok {
				continue
			}
			if err := p.members.DeleteByGroupAndEntries(ctx, tx, gid, []uuid.UUID{entry.ID}); err != nil {
				return nil, err
			}
			// Close the position gap left by the removed member.
			if err := p.members.ShiftFrom(ctx, tx, gid, p.position(m)+1, -1); err != nil {
				return nil, err
			}
			delta.Removed++
			delta.RemovedTargets = append(delta.RemovedTargets, gid)
		}
	}

	for _, gid := range order {
		span := declared[gid]
		if m, ok := current[gid]; ok {
			// Already a member; a declared part must agree with the
			// maintained chronological position.
			if span.part != nil && *span.part != p.position(m)+1 {
				return nil, &OrderingViolationError{
					Kind:         p.kind,
					SpanName:     span.name,
					EntryDate:    entry.DateKey(),
					DeclaredPart: *span.part,
					ExpectedPart: p.position(m) + 1,
				}
			}
			continue
		}
		rank, err := p.chronologicalRank(ctx, tx, gid, entry)
		if err != nil {
			return nil, err
		}
		if span.part != nil && *span.part != rank+1 {
			return nil, &OrderingViolationError{
				Kind:         p.kind,
				SpanName:     span.name,
				EntryDate:    entry.DateKey(),
				DeclaredPart: *span.part,
				ExpectedPart: rank + 1,
			}
		}
		if err := p.members.ShiftFrom(ctx, tx, gid, rank, 1); err != nil {
			return nil, err
		}
		if err := p.members.Create(ctx, tx, p.build(gid, entry.ID, rank)); err != nil {
			return nil, err
		}
		delta.Added++
	}

	return []*Delta{delta}, nil
}

// chronologicalRank counts current members whose entry date precedes the
// entry's. Entry dates are unique, so the rank is unambiguous.
func (p *spanProcessor[L, P]) chronologicalRank(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, entry *types.Entry) (int, error) {
	members, err := p.members.ListByGroup(ctx, tx, groupID)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, p.entryID(m))
	}
	entries, err := p.set.Entries.GetByIDs(ctx, tx, ids)
	if err != nil {
		return 0, err
	}
	rank := 0
	for _, e := range entries {
		if e.Date.Before(entry.Date) {
			rank++
		}
	}
	return rank, nil
}
