// Package sweeper runs the maintenance half of the entity lifecycle:
// active entities with zero remaining references are tombstoned, and
// tombstoned entities whose grace period elapsed with zero references
// throughout are physically purged. It runs single-threaded and never
// inline during reconciliation.
package sweeper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/data/repos/catalog"
	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

type Sweeper struct {
	db    *gorm.DB
	set   *repos.Set
	grace time.Duration
	log   *logger.Logger
}

func New(db *gorm.DB, set *repos.Set, grace time.Duration, baseLog *logger.Logger) *Sweeper {
	return &Sweeper{db: db, set: set, grace: grace, log: baseLog.With("component", "Sweeper")}
}

// Result summarizes one sweep pass.
type Result struct {
	Tombstoned map[types.EntityKind]int `json:"tombstoned"`
	Purged     map[types.EntityKind]int `json:"purged"`
	Skipped    int                      `json:"skipped"`
}

func newResult() *Result {
	return &Result{
		Tombstoned: map[types.EntityKind]int{},
		Purged:     map[types.EntityKind]int{},
	}
}

// sweepRow is the kind-independent view of a candidate entity.
type sweepRow struct {
	id   uuid.UUID
	name string
}

// catalogSweep adapts one catalog kind to the sweep loop.
type catalogSweep struct {
	kind        types.EntityKind
	listLive    func(ctx context.Context, tx *gorm.DB) ([]sweepRow, error)
	listExpired func(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]sweepRow, error)
	tombstone   func(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	purge       func(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	// onPurge cleans up rows owned by the entity (poem versions).
	onPurge func(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

func adapt[E any, P catalog.Ptr[E]](repo *catalog.Repo[E, P], onPurge func(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error) catalogSweep {
	kind := P(new(E)).EntityKind()
	toRows := func(rows []P) []sweepRow {
		out := make([]sweepRow, 0, len(rows))
		for _, row := range rows {
			out = append(out, sweepRow{id: row.GetID(), name: row.GetName()})
		}
		return out
	}
	return catalogSweep{
		kind: kind,
		listLive: func(ctx context.Context, tx *gorm.DB) ([]sweepRow, error) {
			rows, err := repo.ListLive(ctx, tx)
			if err != nil {
				return nil, err
			}
			return toRows(rows), nil
		},
		listExpired: func(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]sweepRow, error) {
			rows, err := repo.ListTombstonedBefore(ctx, tx, cutoff)
			if err != nil {
				return nil, err
			}
			return toRows(rows), nil
		},
		tombstone: repo.TombstoneByIDs,
		purge:     repo.PurgeByIDs,
		onPurge:   onPurge,
	}
}

func (s *Sweeper) kinds() []catalogSweep {
	return []catalogSweep{
		adapt(s.set.People, nil),
		adapt(s.set.Cities, nil),
		adapt(s.set.Locations, nil),
		adapt(s.set.Events, nil),
		adapt(s.set.Tags, nil),
		adapt(s.set.Themes, nil),
		adapt(s.set.Poems, func(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
			return s.set.PoemVersions.DeleteByPoemIDs(ctx, tx, ids)
		}),
		adapt(s.set.ReferenceSources, nil),
		adapt(s.set.NarratedDates, nil),
		adapt(s.set.Threads, nil),
		adapt(s.set.Arcs, nil),
		adapt(s.set.Motifs, nil),
	}
}

// Sweep runs one full pass: tombstone zero-reference actives, then purge
// tombstoned entities past the grace window. The purge re-checks the
// reference count inside its own transaction; a reference that appeared
// since the snapshot aborts the purge for that entity and is logged as
// skipped, not treated as an error.
func (s *Sweeper) Sweep(ctx context.Context) (*Result, error) {
	result := newResult()
	cutoff := time.Now().UTC().Add(-s.grace)

	for _, k := range s.kinds() {
		if err := s.tombstoneStragglers(ctx, k, result); err != nil {
			return nil, err
		}
		if err := s.purgeExpired(ctx, k, cutoff, result); err != nil {
			return nil, err
		}
	}
	if err := s.purgeExpiredScenes(ctx, cutoff, result); err != nil {
		return nil, err
	}

	s.log.Info("sweep complete",
		"tombstoned", result.Tombstoned,
		"purged", result.Purged,
		"skipped", result.Skipped,
	)
	return result, nil
}

// tombstoneStragglers catches live entities that lost their references
// outside a reconciliation pass (manual row surgery, partial restores).
func (s *Sweeper) tombstoneStragglers(ctx context.Context, k catalogSweep, result *Result) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := k.listLive(ctx, tx)
		if err != nil {
			return err
		}
		var orphans []uuid.UUID
		for _, row := range rows {
			n, err := s.set.RefCounts.Count(ctx, tx, k.kind, row.id)
			if err != nil {
				return err
			}
			if n == 0 {
				orphans = append(orphans, row.id)
			}
		}
		if len(orphans) == 0 {
			return nil
		}
		if err := k.tombstone(ctx, tx, orphans); err != nil {
			return err
		}
		result.Tombstoned[k.kind] += len(orphans)
		return nil
	})
}

func (s *Sweeper) purgeExpired(ctx context.Context, k catalogSweep, cutoff time.Time, result *Result) error {
	// Snapshot outside the per-entity transactions; each purge re-checks.
	candidates, err := k.listExpired(ctx, s.db, cutoff)
	if err != nil {
		return err
	}
	for _, row := range candidates {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			n, err := s.set.RefCounts.Count(ctx, tx, k.kind, row.id)
			if err != nil {
				return err
			}
			if n > 0 {
				result.Skipped++
				s.log.Warn("purge skipped, references reappeared",
					"kind", string(k.kind),
					"name", row.name,
					"refs", n,
				)
				return nil
			}
			if k.onPurge != nil {
				if err := k.onPurge(ctx, tx, []uuid.UUID{row.id}); err != nil {
					return err
				}
			}
			if err := s.set.Fingerprints.DeleteByEntity(ctx, tx, k.kind, []uuid.UUID{row.id}); err != nil {
				return err
			}
			if err := k.purge(ctx, tx, []uuid.UUID{row.id}); err != nil {
				return err
			}
			result.Purged[k.kind]++
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// purgeExpiredScenes removes tombstoned scenes past the grace window
// along with their scene-side junctions. A scene has no external
// references; its tombstone marks the entry's withdrawal of the
// declaration, so no re-check can resurrect it here.
func (s *Sweeper) purgeExpiredScenes(ctx context.Context, cutoff time.Time, result *Result) error {
	candidates, err := s.set.Scenes.ListTombstonedBefore(ctx, s.db, cutoff)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(candidates))
		for _, scene := range candidates {
			ids = append(ids, scene.ID)
		}
		if err := s.set.ScenePeople.DeleteByOwnerIDs(ctx, tx, ids); err != nil {
			return err
		}
		if err := s.set.SceneNarratedDates.DeleteByOwnerIDs(ctx, tx, ids); err != nil {
			return err
		}
		if err := s.set.Scenes.PurgeByIDs(ctx, tx, ids); err != nil {
			return err
		}
		result.Purged[types.KindScene] += len(ids)
		return nil
	})
}
