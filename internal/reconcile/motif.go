package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/ingestion"
	"github.com/yungbote/daybook/internal/pkg/textkey"
	"github.com/yungbote/daybook/internal/types"
)

// motifProcessor reconciles motif instances: each records the motif plus
// a textual locator inside the entry. Duplicate instances (same motif,
// same locator, same entry) collapse idempotently on the unique index.
type motifProcessor struct {
	set *repos.Set
	res *Resolver
}

func (p *motifProcessor) Kind() types.EntityKind { return types.KindMotif }

func (p *motifProcessor) Apply(ctx context.Context, tx *gorm.DB, entry *types.Entry, desc *ingestion.EntryDescriptor, mode Mode) ([]*Delta, error) {
	delta := &Delta{Kind: types.KindMotif}

	type wantedInstance struct {
		motifID    uuid.UUID
		locator    string
		locatorKey string
	}
	want := map[string]wantedInstance{}
	var order []string
	for _, spec := range desc.Motifs {
		motif, outcome, err := p.res.Motif(ctx, tx, spec.Spec)
		if err != nil {
			return nil, err
		}
		countOutcome(delta, outcome)
		delta.Touched = append(delta.Touched, motif.ID)

		locator := strings.TrimSpace(spec.Locator)
		locatorKey := textkey.Normalize(locator)
		key := fmt.Sprintf("%s:%s", motif.ID, locatorKey)
		if _, ok := want[key]; ok {
			continue
		}
		want[key] = wantedInstance{motifID: motif.ID, locator: locator, locatorKey: locatorKey}
		order = append(order, key)
	}

	current, err := p.set.MotifInstances.ListByEntry(ctx, tx, entry.ID)
	if err != nil {
		return nil, err
	}
	curByKey := make(map[string]*types.MotifInstance, len(current))
	for _, inst := range current {
		curByKey[fmt.Sprintf("%s:%s", inst.MotifID, inst.LocatorKey)] = inst
	}

	if mode == ModeReplace {
		var removeIDs []uuid.UUID
		for key, inst := range curByKey {
			if _, ok := want[key]; !ok {
				removeIDs = append(removeIDs, inst.ID)
				delta.RemovedTargets = append(delta.RemovedTargets, inst.MotifID)
			}
		}
		if len(removeIDs) > 0 {
			if err := p.set.MotifInstances.DeleteByIDs(ctx, tx, removeIDs); err != nil {
				return nil, err
			}
			delta.Removed += len(removeIDs)
		}
	}

	var adds []*types.MotifInstance
	for _, key := range order {
		if _, ok := curByKey[key]; ok {
			continue
		}
		w := want[key]
		adds = append(adds, &types.MotifInstance{
			ID:         uuid.New(),
			MotifID:    w.motifID,
			EntryID:    entry.ID,
			LocatorKey: w.locatorKey,
			Locator:    w.locator,
		})
	}
	if len(adds) > 0 {
		inserted, err := p.set.MotifInstances.CreateIgnoreDuplicates(ctx, tx, adds)
		if err != nil {
			return nil, err
		}
		delta.Added += inserted
	}

	return []*Delta{delta}, nil
}
