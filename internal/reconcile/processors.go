package reconcile

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/ingestion"
	"github.com/yungbote/daybook/internal/pkg/digest"
	"github.com/yungbote/daybook/internal/types"
)

// buildProcessors wires one processor per relationship kind. Reference
// sources have no processor of their own: they are resolved as a
// prerequisite inside the reference processor.
func buildProcessors(set *repos.Set, res *Resolver) map[types.EntityKind]Processor {
	procs := map[types.EntityKind]Processor{}

	procs[types.KindPerson] = &linkProcessor[types.EntryPerson, *types.EntryPerson]{
		kind: types.KindPerson,
		repo: set.EntryPeople,
		resolve: func(ctx context.Context, tx *gorm.DB, _ *types.Entry, d *ingestion.EntryDescriptor) ([]target, int, error) {
			out := make([]target, 0, len(d.People))
			for _, spec := range d.People {
				p, outcome, err := res.Person(ctx, tx, spec)
				if err != nil {
					return nil, 0, err
				}
				out = append(out, target{id: p.ID, role: spec.Role, outcome: outcome})
			}
			return out, 0, nil
		},
		build: func(ownerID, targetID uuid.UUID, role string) *types.EntryPerson {
			return &types.EntryPerson{ID: uuid.New(), EntryID: ownerID, PersonID: targetID, Relation: role}
		},
	}

	procs[types.KindCity] = &linkProcessor[types.EntryCity, *types.EntryCity]{
		kind: types.KindCity,
		repo: set.EntryCities,
		resolve: func(ctx context.Context, tx *gorm.DB, _ *types.Entry, d *ingestion.EntryDescriptor) ([]target, int, error) {
			out := make([]target, 0, len(d.Cities))
			for _, spec := range d.Cities {
				c, outcome, err := res.City(ctx, tx, spec)
				if err != nil {
					return nil, 0, err
				}
				out = append(out, target{id: c.ID, role: spec.Role, outcome: outcome})
			}
			return out, 0, nil
		},
		build: func(ownerID, targetID uuid.UUID, role string) *types.EntryCity {
			return &types.EntryCity{ID: uuid.New(), EntryID: ownerID, CityID: targetID, Role: role}
		},
	}

	procs[types.KindLocation] = &linkProcessor[types.EntryLocation, *types.EntryLocation]{
		kind: types.KindLocation,
		repo: set.EntryLocations,
		resolve: func(ctx context.Context, tx *gorm.DB, _ *types.Entry, d *ingestion.EntryDescriptor) ([]target, int, error) {
			out := make([]target, 0, len(d.Locations))
			for _, spec := range d.Locations {
				l, outcome, err := res.Location(ctx, tx, spec)
				if err != nil {
					return nil, 0, err
				}
				out = append(out, target{id: l.ID, role: spec.Role, outcome: outcome})
			}
			return out, 0, nil
		},
		build: func(ownerID, targetID uuid.UUID, role string) *types.EntryLocation {
			return &types.EntryLocation{ID: uuid.New(), EntryID: ownerID, LocationID: targetID, Role: role}
		},
	}

	procs[types.KindEvent] = &linkProcessor[types.EntryEvent, *types.EntryEvent]{
		kind: types.KindEvent,
		repo: set.EntryEvents,
		resolve: func(ctx context.Context, tx *gorm.DB, _ *types.Entry, d *ingestion.EntryDescriptor) ([]target, int, error) {
			out := make([]target, 0, len(d.Events))
			for _, spec := range d.Events {
				e, outcome, err := res.Event(ctx, tx, spec)
				if err != nil {
					return nil, 0, err
				}
				out = append(out, target{id: e.ID, role: spec.Role, outcome: outcome})
			}
			return out, 0, nil
		},
		build: func(ownerID, targetID uuid.UUID, role string) *types.EntryEvent {
			return &types.EntryEvent{ID: uuid.New(), EntryID: ownerID, EventID: targetID, Role: role}
		},
	}

	procs[types.KindTag] = &linkProcessor[types.EntryTag, *types.EntryTag]{
		kind: types.KindTag,
		repo: set.EntryTags,
		resolve: func(ctx context.Context, tx *gorm.DB, _ *types.Entry, d *ingestion.EntryDescriptor) ([]target, int, error) {
			out := make([]target, 0, len(d.Tags))
			for _, spec := range d.Tags {
				t, outcome, err := res.Tag(ctx, tx, spec)
				if err != nil {
					return nil, 0, err
				}
				out = append(out, target{id: t.ID, role: spec.Role, outcome: outcome})
			}
			return out, 0, nil
		},
		build: func(ownerID, targetID uuid.UUID, role string) *types.EntryTag {
			return &types.EntryTag{ID: uuid.New(), EntryID: ownerID, TagID: targetID, Role: role}
		},
	}

	procs[types.KindTheme] = &linkProcessor[types.EntryTheme, *types.EntryTheme]{
		kind: types.KindTheme,
		repo: set.EntryThemes,
		resolve: func(ctx context.Context, tx *gorm.DB, _ *types.Entry, d *ingestion.EntryDescriptor) ([]target, int, error) {
			out := make([]target, 0, len(d.Themes))
			for _, spec := range d.Themes {
				t, outcome, err := res.Theme(ctx, tx, spec)
				if err != nil {
					return nil, 0, err
				}
				out = append(out, target{id: t.ID, role: spec.Role, outcome: outcome})
			}
			return out, 0, nil
		},
		build: func(ownerID, targetID uuid.UUID, role string) *types.EntryTheme {
			return &types.EntryTheme{ID: uuid.New(), EntryID: ownerID, ThemeID: targetID, Role: role}
		},
	}

	procs[types.KindNarratedDate] = &linkProcessor[types.EntryNarratedDate, *types.EntryNarratedDate]{
		kind: types.KindNarratedDate,
		repo: set.EntryNarratedDates,
		resolve: func(ctx context.Context, tx *gorm.DB, _ *types.Entry, d *ingestion.EntryDescriptor) ([]target, int, error) {
			out := make([]target, 0, len(d.NarratedDates))
			for _, spec := range d.NarratedDates {
				n, outcome, err := res.NarratedDate(ctx, tx, spec)
				if err != nil {
					return nil, 0, err
				}
				out = append(out, target{id: n.ID, role: spec.Role, outcome: outcome})
			}
			return out, 0, nil
		},
		build: func(ownerID, targetID uuid.UUID, role string) *types.EntryNarratedDate {
			return &types.EntryNarratedDate{ID: uuid.New(), EntryID: ownerID, NarratedDateID: targetID, Role: role}
		},
	}

	procs[types.KindPoem] = &linkProcessor[types.EntryPoem, *types.EntryPoem]{
		kind: types.KindPoem,
		repo: set.EntryPoems,
		resolve: func(ctx context.Context, tx *gorm.DB, _ *types.Entry, d *ingestion.EntryDescriptor) ([]target, int, error) {
			out := make([]target, 0, len(d.Poems))
			versions := 0
			for _, spec := range d.Poems {
				p, outcome, err := res.Poem(ctx, tx, spec.Spec)
				if err != nil {
					return nil, 0, err
				}
				appended, err := appendPoemVersion(ctx, tx, set, p, spec.Content)
				if err != nil {
					return nil, 0, err
				}
				if appended {
					versions++
				}
				out = append(out, target{id: p.ID, role: spec.Role, outcome: outcome})
			}
			return out, versions, nil
		},
		build: func(ownerID, targetID uuid.UUID, role string) *types.EntryPoem {
			return &types.EntryPoem{ID: uuid.New(), EntryID: ownerID, PoemID: targetID, Role: role}
		},
	}

	procs[types.KindReference] = &referenceProcessor{set: set, res: res}
	procs[types.KindScene] = &sceneProcessor{set: set, res: res}

	procs[types.KindThread] = &spanProcessor[types.ThreadEntry, *types.ThreadEntry]{
		kind:    types.KindThread,
		set:     set,
		members: set.ThreadEntries,
		specs:   func(d *ingestion.EntryDescriptor) []ingestion.SpanSpec { return d.Threads },
		resolve: func(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (uuid.UUID, string, Outcome, error) {
			t, outcome, err := res.Thread(ctx, tx, spec)
			if err != nil {
				return uuid.Nil, "", 0, err
			}
			return t.ID, t.Name, outcome, nil
		},
		groupID:  func(m *types.ThreadEntry) uuid.UUID { return m.ThreadID },
		entryID:  func(m *types.ThreadEntry) uuid.UUID { return m.EntryID },
		position: func(m *types.ThreadEntry) int { return m.Position },
		build: func(groupID, entryID uuid.UUID, pos int) *types.ThreadEntry {
			return &types.ThreadEntry{ID: uuid.New(), ThreadID: groupID, EntryID: entryID, Position: pos}
		},
	}

	procs[types.KindArc] = &spanProcessor[types.ArcEntry, *types.ArcEntry]{
		kind:    types.KindArc,
		set:     set,
		members: set.ArcEntries,
		specs:   func(d *ingestion.EntryDescriptor) []ingestion.SpanSpec { return d.Arcs },
		resolve: func(ctx context.Context, tx *gorm.DB, spec ingestion.Spec) (uuid.UUID, string, Outcome, error) {
			a, outcome, err := res.Arc(ctx, tx, spec)
			if err != nil {
				return uuid.Nil, "", 0, err
			}
			return a.ID, a.Name, outcome, nil
		},
		groupID:  func(m *types.ArcEntry) uuid.UUID { return m.ArcID },
		entryID:  func(m *types.ArcEntry) uuid.UUID { return m.EntryID },
		position: func(m *types.ArcEntry) int { return m.Position },
		build: func(groupID, entryID uuid.UUID, pos int) *types.ArcEntry {
			return &types.ArcEntry{ID: uuid.New(), ArcID: groupID, EntryID: entryID, Position: pos}
		},
	}

	procs[types.KindMotif] = &motifProcessor{set: set, res: res}

	return procs
}

// appendPoemVersion writes a new immutable version row when the declared
// content digest differs from the latest stored one. Existing versions
// are never edited in place.
func appendPoemVersion(ctx context.Context, tx *gorm.DB, set *repos.Set, poem *types.Poem, content string) (bool, error) {
	if strings.TrimSpace(content) == "" {
		return false, nil
	}
	dg := digest.Of(content)
	latest, err := set.PoemVersions.GetLatest(ctx, tx, poem.ID)
	if err != nil {
		return false, err
	}
	if latest != nil && latest.ContentDigest == dg {
		return false, nil
	}
	seq := 1
	if latest != nil {
		seq = latest.Seq + 1
	}
	version := &types.PoemVersion{
		ID:            uuid.New(),
		PoemID:        poem.ID,
		Seq:           seq,
		Content:       content,
		ContentDigest: dg,
	}
	if err := set.PoemVersions.Create(ctx, tx, version); err != nil {
		return false, err
	}
	if err := set.Poems.UpdateFields(ctx, tx, poem.ID, map[string]interface{}{"latest_seq": seq}); err != nil {
		return false, err
	}
	poem.LatestSeq = seq
	return true, nil
}
