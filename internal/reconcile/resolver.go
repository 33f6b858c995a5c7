package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/data/repos/catalog"
	"github.com/yungbote/daybook/internal/ingestion"
	"github.com/yungbote/daybook/internal/pkg/keylock"
	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/pkg/textkey"
	"github.com/yungbote/daybook/internal/types"
)

// Outcome says how a resolve call satisfied a spec.
type Outcome int

const (
	OutcomeExisting Outcome = iota
	OutcomeCreated
	OutcomeResurrected
)

// Resolver maps natural-key descriptors onto canonical entity rows:
// exact live match first, then ambiguity detection, then tombstone
// resurrection, then creation. A lock keyed by the normalized name
// serializes in-process create-or-resolve races; across transactions the
// partial unique index on (name_key, disambiguator) is the backstop, and
// an insert that loses that race adopts the committed row instead.
type Resolver struct {
	set  *repos.Set
	keys *keylock.KeyLock
	log  *logger.Logger
}

func NewResolver(set *repos.Set, keys *keylock.KeyLock, baseLog *logger.Logger) *Resolver {
	return &Resolver{set: set, keys: keys, log: baseLog.With("component", "Resolver")}
}

func (r *Resolver) Person(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (*types.Person, Outcome, error) {
	return resolveCatalog(ctx, tx, r.set.People, r.keys, spec, nil)
}

func (r *Resolver) City(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (*types.City, Outcome, error) {
	return resolveCatalog(ctx, tx, r.set.Cities, r.keys, spec, nil)
}

// Location resolves the declared city first; the city link is structural
// and set at creation (or filled in when the stored row has none).
func (r *Resolver) Location(ctx context.Context, tx *gorm.DB, spec ingestion.LocationSpec) (*types.Location, Outcome, error) {
	var cityID *uuid.UUID
	if spec.City != nil && strings.TrimSpace(spec.City.Name) != "" {
		city, _, err := r.City(ctx, tx, *spec.City)
		if err != nil {
			return nil, 0, err
		}
		id := city.ID
		cityID = &id
	}
	loc, outcome, err := resolveCatalog(ctx, tx, r.set.Locations, r.keys, spec.Spec, func(row *types.Location) {
		row.CityID = cityID
	})
	if err != nil {
		return nil, 0, err
	}
	if outcome != OutcomeCreated && loc.CityID == nil && cityID != nil {
		if err := r.set.Locations.UpdateFields(ctx, tx, loc.ID, map[string]interface{}{"city_id": *cityID}); err != nil {
			return nil, 0, err
		}
		loc.CityID = cityID
	}
	return loc, outcome, nil
}

func (r *Resolver) Event(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (*types.Event, Outcome, error) {
	return resolveCatalog(ctx, tx, r.set.Events, r.keys, spec, nil)
}

func (r *Resolver) Tag(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (*types.Tag, Outcome, error) {
	return resolveCatalog(ctx, tx, r.set.Tags, r.keys, spec, nil)
}

func (r *Resolver) Theme(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (*types.Theme, Outcome, error) {
	return resolveCatalog(ctx, tx, r.set.Themes, r.keys, spec, nil)
}

func (r *Resolver) Poem(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (*types.Poem, Outcome, error) {
	return resolveCatalog(ctx, tx, r.set.Poems, r.keys, spec, nil)
}

func (r *Resolver) ReferenceSource(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (*types.ReferenceSource, Outcome, error) {
	return resolveCatalog(ctx, tx, r.set.ReferenceSources, r.keys, spec, nil)
}

// NarratedDate expects the yyyy-mm-dd form as the display name; the
// model parses the date out of the normalized key.
func (r *Resolver) NarratedDate(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (*types.NarratedDate, Outcome, error) {
	name := strings.TrimSpace(spec.Name)
	if _, err := parseDay(name); err != nil {
		return nil, 0, &InvalidAssociationError{
			Kind:       types.KindNarratedDate,
			Descriptor: spec.Name,
			Reason:     "narrated dates must be yyyy-mm-dd",
		}
	}
	return resolveCatalog(ctx, tx, r.set.NarratedDates, r.keys, spec, nil)
}

func (r *Resolver) Thread(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (*types.Thread, Outcome, error) {
	return resolveCatalog(ctx, tx, r.set.Threads, r.keys, spec, nil)
}

func (r *Resolver) Arc(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (*types.Arc, Outcome, error) {
	return resolveCatalog(ctx, tx, r.set.Arcs, r.keys, spec, nil)
}

func (r *Resolver) Motif(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (*types.Motif, Outcome, error) {
	return resolveCatalog(ctx, tx, r.set.Motifs, r.keys, spec, nil)
}

func resolveCatalog[E any, P catalog.Ptr[E]](
	ctx context.Context,
	tx *gorm.DB,
	repo *catalog.Repo[E, P],
	keys *keylock.KeyLock,
	spec ingestion.Spec,
	init func(P),
) (P, Outcome, error) {
	var none P
	kind := P(new(E)).EntityKind()

	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return none, 0, &InvalidAssociationError{Kind: kind, Descriptor: spec.Name, Reason: "empty name"}
	}
	nameKey := textkey.Normalize(name)
	dis := textkey.Normalize(spec.Disambiguator)

	unlock := keys.Lock(fmt.Sprintf("%s:%s", kind, nameKey))
	defer unlock()

	// Exact live key.
	live, err := repo.FindLiveByKey(ctx, tx, nameKey, dis)
	if err != nil {
		return none, 0, err
	}
	var found P
	if len(live) > 0 {
		found = live[0]
	}

	// No disambiguator given: a single live row under this name is an
	// unambiguous match even if it carries one; more than one is the
	// caller's problem.
	if found == nil && dis == "" {
		candidates, err := repo.FindLiveByName(ctx, tx, nameKey)
		if err != nil {
			return none, 0, err
		}
		if len(candidates) > 1 {
			labels := make([]string, 0, len(candidates))
			for _, c := range candidates {
				_, cd := c.NaturalKey()
				label := c.GetName()
				if cd != "" {
					label = fmt.Sprintf("%s (%s)", label, cd)
				}
				labels = append(labels, label)
			}
			return none, 0, &AmbiguousReferenceError{Kind: kind, Name: name, Candidates: labels}
		}
		if len(candidates) == 1 {
			found = candidates[0]
		}
	}

	if found != nil {
		if found.ApplyEditable(spec.Attrs) {
			if err := repo.Save(ctx, tx, found); err != nil {
				return none, 0, err
			}
		}
		return found, OutcomeExisting, nil
	}

	// Tombstoned row with the same key: resurrect rather than duplicate.
	dead, err := repo.FindTombstonedByKey(ctx, tx, nameKey, dis)
	if err != nil {
		return none, 0, err
	}
	if len(dead) > 0 {
		row := dead[0]
		if err := repo.Restore(ctx, tx, row.GetID()); err != nil {
			return none, 0, err
		}
		if row.ApplyEditable(spec.Attrs) {
			updates := map[string]interface{}{}
			for col, val := range row.EditableFields() {
				updates[col] = val
			}
			if err := repo.UpdateFields(ctx, tx, row.GetID(), updates); err != nil {
				return none, 0, err
			}
		}
		return row, OutcomeResurrected, nil
	}

	row := P(new(E))
	row.EnsureID()
	row.SetIdentity(name, nameKey, dis)
	row.ApplyEditable(spec.Attrs)
	if init != nil {
		init(row)
	}
	created, err := repo.CreateIfAbsent(ctx, tx, row)
	if err != nil {
		return none, 0, err
	}
	if created {
		return row, OutcomeCreated, nil
	}
	// A concurrent transaction committed the same natural key between our
	// live lookup and the insert; adopt its row.
	live, err = repo.FindLiveByKey(ctx, tx, nameKey, dis)
	if err != nil {
		return none, 0, err
	}
	if len(live) == 0 {
		return none, 0, fmt.Errorf("resolve %s %q: natural key conflict but no live row", kind, name)
	}
	return live[0], OutcomeExisting, nil
}
