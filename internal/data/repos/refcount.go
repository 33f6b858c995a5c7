package repos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

// RefCounter reports how many association records still point at an
// entity. Both the reconciler (inline tombstoning after removals) and the
// sweeper (purge safety re-check) depend on the same counting rules, so
// they live in one place.
type RefCounter interface {
	Count(ctx context.Context, tx *gorm.DB, kind types.EntityKind, id uuid.UUID) (int64, error)
}

type refCounter struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRefCounter(db *gorm.DB, baseLog *logger.Logger) RefCounter {
	return &refCounter{db: db, log: baseLog.With("repo", "RefCounter")}
}

func (r *refCounter) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *refCounter) Count(ctx context.Context, tx *gorm.DB, kind types.EntityKind, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	t := r.tx(tx).WithContext(ctx)
	switch kind {
	case types.KindPerson:
		return sumCounts(t,
			count(t, &types.EntryPerson{}, "person_id", id),
			count(t, &types.ScenePerson{}, "person_id", id),
		)
	case types.KindCity:
		// Locations hold a structural FK to their city; a city with
		// dependent locations is never an orphan, tombstoned or not.
		return sumCounts(t,
			count(t, &types.EntryCity{}, "city_id", id),
			countUnscoped(t, &types.Location{}, "city_id", id),
		)
	case types.KindLocation:
		return sumCounts(t,
			count(t, &types.EntryLocation{}, "location_id", id),
			countUnscoped(t, &types.Scene{}, "location_id", id),
		)
	case types.KindEvent:
		return sumCounts(t,
			count(t, &types.EntryEvent{}, "event_id", id),
			countUnscoped(t, &types.Scene{}, "event_id", id),
		)
	case types.KindTag:
		return sumCounts(t, count(t, &types.EntryTag{}, "tag_id", id))
	case types.KindTheme:
		return sumCounts(t, count(t, &types.EntryTheme{}, "theme_id", id))
	case types.KindPoem:
		return sumCounts(t, count(t, &types.EntryPoem{}, "poem_id", id))
	case types.KindReferenceSource:
		return sumCounts(t, count(t, &types.Reference{}, "source_id", id))
	case types.KindNarratedDate:
		return sumCounts(t,
			count(t, &types.EntryNarratedDate{}, "narrated_date_id", id),
			count(t, &types.SceneNarratedDate{}, "narrated_date_id", id),
		)
	case types.KindThread:
		return sumCounts(t, count(t, &types.ThreadEntry{}, "thread_id", id))
	case types.KindArc:
		return sumCounts(t, count(t, &types.ArcEntry{}, "arc_id", id))
	case types.KindMotif:
		return sumCounts(t, count(t, &types.MotifInstance{}, "motif_id", id))
	case types.KindScene:
		// A scene's only "reference" is the declaration on its entry;
		// removal tombstones it directly, so a tombstoned scene counts
		// as unreferenced.
		return 0, nil
	default:
		return 0, fmt.Errorf("refcount: unknown entity kind %q", kind)
	}
}

type countResult struct {
	n   int64
	err error
}

func count(t *gorm.DB, model interface{}, col string, id uuid.UUID) countResult {
	var n int64
	err := t.Model(model).Where(fmt.Sprintf("%s = ?", col), id).Count(&n).Error
	return countResult{n: n, err: err}
}

func countUnscoped(t *gorm.DB, model interface{}, col string, id uuid.UUID) countResult {
	var n int64
	err := t.Unscoped().Model(model).Where(fmt.Sprintf("%s = ?", col), id).Count(&n).Error
	return countResult{n: n, err: err}
}

func sumCounts(_ *gorm.DB, results ...countResult) (int64, error) {
	var total int64
	for _, res := range results {
		if res.err != nil {
			return 0, res.err
		}
		total += res.n
	}
	return total, nil
}
