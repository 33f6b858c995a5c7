// Package reconcile is the relationship-reconciliation engine: it takes
// a parsed entry descriptor, resolves every declared association against
// the canonical entity catalog, and applies the result to the relational
// store with create/update/delete semantics that converge under
// re-processing.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/ingestion"
	pkgerrors "github.com/yungbote/daybook/internal/pkg/errors"
	"github.com/yungbote/daybook/internal/pkg/keylock"
	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

var tracer = otel.Tracer("github.com/yungbote/daybook/internal/reconcile")

// Reconciler runs all relationship processors for one entry inside one
// transaction: every processor succeeds or the entry's whole pass rolls
// back. One writer at a time per entry; concurrent passes over different
// entries proceed in parallel and serialize only on shared natural keys
// inside the resolver.
type Reconciler struct {
	db         *gorm.DB
	set        *repos.Set
	resolver   *Resolver
	processors map[types.EntityKind]Processor
	entryLocks *keylock.KeyLock
	log        *logger.Logger
}

func New(db *gorm.DB, set *repos.Set, baseLog *logger.Logger) *Reconciler {
	resolver := NewResolver(set, keylock.New(), baseLog)
	return &Reconciler{
		db:         db,
		set:        set,
		resolver:   resolver,
		processors: buildProcessors(set, resolver),
		entryLocks: keylock.New(),
		log:        baseLog.With("component", "Reconciler"),
	}
}

// Resolver exposes the shared resolver for the merge-back path, which
// re-resolves renamed references through the same dedup rules.
func (r *Reconciler) Resolver() *Resolver { return r.resolver }

func (r *Reconciler) Reconcile(ctx context.Context, desc *ingestion.EntryDescriptor, mode Mode) (*Report, error) {
	if desc == nil || desc.Date.IsZero() {
		return nil, fmt.Errorf("%w: descriptor missing entry date", pkgerrors.ErrInvalidArgument)
	}
	if mode == "" {
		mode = ModeReplace
	}
	if mode != ModeReplace && mode != ModeMerge {
		return nil, fmt.Errorf("%w: unknown reconciliation mode %q", pkgerrors.ErrInvalidArgument, mode)
	}

	dateKey := desc.Date.Format("2006-01-02")
	ctx, span := tracer.Start(ctx, "reconcile.entry", trace.WithAttributes(
		attribute.String("entry.date", dateKey),
		attribute.String("reconcile.mode", string(mode)),
	))
	defer span.End()

	unlock := r.entryLocks.Lock("entry:" + dateKey)
	defer unlock()

	report := &Report{Date: dateKey, Mode: mode}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := r.upsertEntry(ctx, tx, desc, report)
		if err != nil {
			return err
		}
		report.EntryID = entry.ID

		collected := map[types.EntityKind]*Delta{}
		for _, kind := range processingOrder {
			proc, ok := r.processors[kind]
			if !ok {
				continue
			}
			deltas, err := proc.Apply(ctx, tx, entry, desc, mode)
			if err != nil {
				return err
			}
			for _, d := range deltas {
				mergeDelta(collected, d)
			}
		}

		// Entities that lost their last reference this pass enter the
		// tombstone grace period now; physical purge is the sweeper's.
		for _, kind := range processingOrder {
			delta, ok := collected[kind]
			if !ok || len(delta.RemovedTargets) == 0 {
				continue
			}
			n, err := r.tombstoneOrphans(ctx, tx, kind, delta.RemovedTargets)
			if err != nil {
				return err
			}
			delta.Tombstoned += n
		}

		for _, kind := range processingOrder {
			delta, ok := collected[kind]
			if !ok {
				continue
			}
			touched := append(append([]uuid.UUID{}, delta.Touched...), delta.RemovedTargets...)
			if err := r.refreshAggregates(ctx, tx, kind, touched); err != nil {
				return err
			}
		}

		for _, kind := range processingOrder {
			if delta, ok := collected[kind]; ok {
				report.Deltas = append(report.Deltas, delta)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	r.log.Info("entry reconciled",
		"date", dateKey,
		"mode", string(mode),
		"changes", report.Changes(),
	)
	return report, nil
}

func (r *Reconciler) upsertEntry(ctx context.Context, tx *gorm.DB, desc *ingestion.EntryDescriptor, report *Report) (*types.Entry, error) {
	existing, err := r.set.Entries.GetByDateAny(ctx, tx, desc.Date)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		entry := &types.Entry{
			ID:            uuid.New(),
			Date:          desc.Date,
			ContentDigest: desc.ContentDigest,
			WordCount:     desc.WordCount,
		}
		if err := r.set.Entries.Create(ctx, tx, entry); err != nil {
			return nil, err
		}
		report.EntryCreated = true
		return entry, nil
	}
	if existing.DeletedAt.Valid {
		if err := r.set.Entries.Restore(ctx, tx, existing.ID); err != nil {
			return nil, err
		}
		existing.DeletedAt = gorm.DeletedAt{}
		report.EntryResurrected = true
	}
	if existing.ContentDigest != desc.ContentDigest || existing.WordCount != desc.WordCount {
		updates := map[string]interface{}{
			"content_digest": desc.ContentDigest,
			"word_count":     desc.WordCount,
		}
		if err := r.set.Entries.UpdateFields(ctx, tx, existing.ID, updates); err != nil {
			return nil, err
		}
		existing.ContentDigest = desc.ContentDigest
		existing.WordCount = desc.WordCount
		report.EntryUpdated = true
	}
	return existing, nil
}

func mergeDelta(collected map[types.EntityKind]*Delta, d *Delta) {
	if d == nil {
		return
	}
	cur, ok := collected[d.Kind]
	if !ok {
		collected[d.Kind] = d
		return
	}
	cur.Added += d.Added
	cur.Removed += d.Removed
	cur.Updated += d.Updated
	cur.Created += d.Created
	cur.Resurrected += d.Resurrected
	cur.Tombstoned += d.Tombstoned
	cur.Touched = append(cur.Touched, d.Touched...)
	cur.RemovedTargets = append(cur.RemovedTargets, d.RemovedTargets...)
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
