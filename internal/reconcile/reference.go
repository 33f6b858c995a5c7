package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/ingestion"
	"github.com/yungbote/daybook/internal/pkg/digest"
	"github.com/yungbote/daybook/internal/types"
)

// referenceProcessor reconciles entry-owned quotes. Every declared
// reference must name a resolvable source: a reference with no source is
// rejected, never created with a null one. Sources are resolved here and
// reported in their own delta so their aggregates and orphan checks run.
type referenceProcessor struct {
	set *repos.Set
	res *Resolver
}

func (p *referenceProcessor) Kind() types.EntityKind { return types.KindReference }

type wantedReference struct {
	sourceID uuid.UUID
	quote    string
	dg       string
	speaker  string
	ordinal  int
}

func (p *referenceProcessor) Apply(ctx context.Context, tx *gorm.DB, entry *types.Entry, desc *ingestion.EntryDescriptor, mode Mode) ([]*Delta, error) {
	refDelta := &Delta{Kind: types.KindReference}
	srcDelta := &Delta{Kind: types.KindReferenceSource}

	want := map[string]*wantedReference{}
	var order []string
	for i, spec := range desc.References {
		quote := strings.TrimSpace(spec.Quote)
		if quote == "" {
			return nil, &InvalidAssociationError{
				Kind:       types.KindReference,
				Descriptor: spec.Source.Name,
				Reason:     "empty quote",
			}
		}
		if strings.TrimSpace(spec.Source.Name) == "" {
			return nil, &InvalidAssociationError{
				Kind:       types.KindReference,
				Descriptor: quote,
				Reason:     "reference requires a resolvable source",
			}
		}
		src, outcome, err := p.res.ReferenceSource(ctx, tx, spec.Source)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case OutcomeCreated:
			srcDelta.Created++
		case OutcomeResurrected:
			srcDelta.Resurrected++
		}
		srcDelta.Touched = append(srcDelta.Touched, src.ID)

		dg := digest.Of(quote)
		key := fmt.Sprintf("%s:%s", src.ID, dg)
		if _, ok := want[key]; ok {
			continue
		}
		want[key] = &wantedReference{sourceID: src.ID, quote: quote, dg: dg, speaker: spec.Speaker, ordinal: i}
		order = append(order, key)
	}

	current, err := p.set.References.ListByEntry(ctx, tx, entry.ID)
	if err != nil {
		return nil, err
	}
	curByKey := make(map[string]*types.Reference, len(current))
	for _, ref := range current {
		curByKey[fmt.Sprintf("%s:%s", ref.SourceID, ref.QuoteDigest)] = ref
	}

	if mode == ModeReplace {
		var removeIDs []uuid.UUID
		for key, ref := range curByKey {
			if _, ok := want[key]; !ok {
				removeIDs = append(removeIDs, ref.ID)
				srcDelta.RemovedTargets = append(srcDelta.RemovedTargets, ref.SourceID)
			}
		}
		if len(removeIDs) > 0 {
			if err := p.set.References.DeleteByIDs(ctx, tx, removeIDs); err != nil {
				return nil, err
			}
			refDelta.Removed += len(removeIDs)
		}
	}

	for _, key := range order {
		w := want[key]
		cur, ok := curByKey[key]
		if !ok {
			row := &types.Reference{
				ID:          uuid.New(),
				EntryID:     entry.ID,
				SourceID:    w.sourceID,
				Quote:       w.quote,
				QuoteDigest: w.dg,
				Speaker:     w.speaker,
				Ordinal:     w.ordinal,
			}
			if err := p.set.References.Create(ctx, tx, row); err != nil {
				return nil, err
			}
			refDelta.Added++
			continue
		}
		if mode == ModeReplace && (cur.Speaker != w.speaker || cur.Ordinal != w.ordinal) {
			cur.Speaker = w.speaker
			cur.Ordinal = w.ordinal
			if err := p.set.References.Save(ctx, tx, cur); err != nil {
				return nil, err
			}
			refDelta.Updated++
		}
	}

	return []*Delta{refDelta, srcDelta}, nil
}
