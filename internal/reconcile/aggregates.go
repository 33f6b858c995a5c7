package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/types"
)

// aggregateSource maps a kind to the entry-side junction its computed
// fields are derived from. Mention counts come from the full reference
// count (scene-side links included); first/last appearance from the
// dates of live entries on the entry-side junction.
type aggregateSource struct {
	table     string
	targetCol string
	countCol  string
}

var aggregateSources = map[types.EntityKind]aggregateSource{
	types.KindPerson:          {"entry_person", "person_id", "mention_count"},
	types.KindCity:            {"entry_city", "city_id", "mention_count"},
	types.KindLocation:        {"entry_location", "location_id", "mention_count"},
	types.KindEvent:           {"entry_event", "event_id", "mention_count"},
	types.KindTag:             {"entry_tag", "tag_id", "usage_count"},
	types.KindTheme:           {"entry_theme", "theme_id", "mention_count"},
	types.KindPoem:            {"entry_poem", "poem_id", "mention_count"},
	types.KindReferenceSource: {"reference", "source_id", "mention_count"},
	types.KindNarratedDate:    {"entry_narrated_date", "narrated_date_id", "mention_count"},
	types.KindThread:          {"thread_entry", "thread_id", "mention_count"},
	types.KindArc:             {"arc_entry", "arc_id", "mention_count"},
	types.KindMotif:           {"motif_instance", "motif_id", "mention_count"},
}

// refreshAggregates recomputes the computed fields of every touched
// entity of one kind. Computed fields are derived solely from
// associations; nothing outside this path writes them.
func (r *Reconciler) refreshAggregates(ctx context.Context, tx *gorm.DB, kind types.EntityKind, ids []uuid.UUID) error {
	src, ok := aggregateSources[kind]
	if !ok {
		// Scenes and references carry no aggregates.
		return nil
	}
	for _, id := range uniqueIDs(ids) {
		n, err := r.set.RefCounts.Count(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		first, last, err := r.appearance(ctx, tx, src, id)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			src.countCol: n,
			"first_seen": first,
			"last_seen":  last,
		}
		if err := r.updateEntityFields(ctx, tx, kind, id, updates); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) appearance(ctx context.Context, tx *gorm.DB, src aggregateSource, id uuid.UUID) (*time.Time, *time.Time, error) {
	var entries []*types.Entry
	err := tx.WithContext(ctx).
		Model(&types.Entry{}).
		Joins(fmt.Sprintf("JOIN %s j ON j.entry_id = entry.id", src.table)).
		Where(fmt.Sprintf("j.%s = ?", src.targetCol), id).
		Order("entry.date ASC").
		Find(&entries).Error
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		return nil, nil, nil
	}
	first := entries[0].Date
	last := entries[len(entries)-1].Date
	return &first, &last, nil
}

// tombstoneOrphans soft-deletes entities of one kind whose reference
// count dropped to zero during this pass. The grace period before
// physical removal belongs to the sweeper.
func (r *Reconciler) tombstoneOrphans(ctx context.Context, tx *gorm.DB, kind types.EntityKind, ids []uuid.UUID) (int, error) {
	var orphans []uuid.UUID
	for _, id := range uniqueIDs(ids) {
		n, err := r.set.RefCounts.Count(ctx, tx, kind, id)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) == 0 {
		return 0, nil
	}
	if err := r.tombstoneEntities(ctx, tx, kind, orphans); err != nil {
		return 0, err
	}
	return len(orphans), nil
}

func (r *Reconciler) tombstoneEntities(ctx context.Context, tx *gorm.DB, kind types.EntityKind, ids []uuid.UUID) error {
	switch kind {
	case types.KindPerson:
		return r.set.People.TombstoneByIDs(ctx, tx, ids)
	case types.KindCity:
		return r.set.Cities.TombstoneByIDs(ctx, tx, ids)
	case types.KindLocation:
		return r.set.Locations.TombstoneByIDs(ctx, tx, ids)
	case types.KindEvent:
		return r.set.Events.TombstoneByIDs(ctx, tx, ids)
	case types.KindTag:
		return r.set.Tags.TombstoneByIDs(ctx, tx, ids)
	case types.KindTheme:
		return r.set.Themes.TombstoneByIDs(ctx, tx, ids)
	case types.KindPoem:
		return r.set.Poems.TombstoneByIDs(ctx, tx, ids)
	case types.KindReferenceSource:
		return r.set.ReferenceSources.TombstoneByIDs(ctx, tx, ids)
	case types.KindNarratedDate:
		return r.set.NarratedDates.TombstoneByIDs(ctx, tx, ids)
	case types.KindScene:
		return r.set.Scenes.TombstoneByIDs(ctx, tx, ids)
	case types.KindThread:
		return r.set.Threads.TombstoneByIDs(ctx, tx, ids)
	case types.KindArc:
		return r.set.Arcs.TombstoneByIDs(ctx, tx, ids)
	case types.KindMotif:
		return r.set.Motifs.TombstoneByIDs(ctx, tx, ids)
	case types.KindReference:
		// References are entry-owned rows, hard-deleted with their entry.
		return nil
	default:
		return fmt.Errorf("reconcile: unknown entity kind %q", kind)
	}
}

func (r *Reconciler) updateEntityFields(ctx context.Context, tx *gorm.DB, kind types.EntityKind, id uuid.UUID, updates map[string]interface{}) error {
	switch kind {
	case types.KindPerson:
		return r.set.People.UpdateFields(ctx, tx, id, updates)
	case types.KindCity:
		return r.set.Cities.UpdateFields(ctx, tx, id, updates)
	case types.KindLocation:
		return r.set.Locations.UpdateFields(ctx, tx, id, updates)
	case types.KindEvent:
		return r.set.Events.UpdateFields(ctx, tx, id, updates)
	case types.KindTag:
		return r.set.Tags.UpdateFields(ctx, tx, id, updates)
	case types.KindTheme:
		return r.set.Themes.UpdateFields(ctx, tx, id, updates)
	case types.KindPoem:
		return r.set.Poems.UpdateFields(ctx, tx, id, updates)
	case types.KindReferenceSource:
		return r.set.ReferenceSources.UpdateFields(ctx, tx, id, updates)
	case types.KindNarratedDate:
		return r.set.NarratedDates.UpdateFields(ctx, tx, id, updates)
	case types.KindThread:
		return r.set.Threads.UpdateFields(ctx, tx, id, updates)
	case types.KindArc:
		return r.set.Arcs.UpdateFields(ctx, tx, id, updates)
	case types.KindMotif:
		return r.set.Motifs.UpdateFields(ctx, tx, id, updates)
	default:
		return fmt.Errorf("reconcile: kind %q has no updatable aggregates", kind)
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
