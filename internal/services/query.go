package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/daybook/internal/clients/redis"
	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/data/repos/catalog"
	"github.com/yungbote/daybook/internal/data/repos/links"
	pkgerrors "github.com/yungbote/daybook/internal/pkg/errors"
	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

// QueryService is the read path for entries and entity note-page views.
// Views are cached briefly; the write path invalidates on commit.
type QueryService interface {
	ListEntries(ctx context.Context, from, to *time.Time) ([]*types.Entry, error)
	GetEntryView(ctx context.Context, date string) (*EntryView, error)
	ListEntities(ctx context.Context, kind types.EntityKind) ([]EntitySummary, error)
	GetEntityView(ctx context.Context, kind types.EntityKind, id uuid.UUID) (*EntityView, error)
}

// AssocView is one resolved association as a note page renders it.
type AssocView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role,omitempty"`
}

type SceneView struct {
	Scene         *types.Scene `json:"scene"`
	People        []AssocView  `json:"people,omitempty"`
	NarratedDates []AssocView  `json:"narrated_dates,omitempty"`
}

type SpanView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
}

type MotifView struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Locator string    `json:"locator,omitempty"`
}

// EntryView is one entry with every reconciled relationship resolved to
// names.
type EntryView struct {
	Entry         *types.Entry       `json:"entry"`
	People        []AssocView        `json:"people,omitempty"`
	Cities        []AssocView        `json:"cities,omitempty"`
	Locations     []AssocView        `json:"locations,omitempty"`
	Events        []AssocView        `json:"events,omitempty"`
	Tags          []AssocView        `json:"tags,omitempty"`
	Themes        []AssocView        `json:"themes,omitempty"`
	NarratedDates []AssocView        `json:"narrated_dates,omitempty"`
	Poems         []AssocView        `json:"poems,omitempty"`
	References    []*types.Reference `json:"references,omitempty"`
	Scenes        []SceneView        `json:"scenes,omitempty"`
	Threads       []SpanView         `json:"threads,omitempty"`
	Arcs          []SpanView         `json:"arcs,omitempty"`
	Motifs        []MotifView        `json:"motifs,omitempty"`
}

// EntitySummary is one catalog row in a listing.
type EntitySummary struct {
	ID            uuid.UUID        `json:"id"`
	Kind          types.EntityKind `json:"kind"`
	Name          string           `json:"name"`
	Disambiguator string           `json:"disambiguator,omitempty"`
}

// EntityView is one entity's note-page payload: the full row (computed
// aggregates included) plus the dates of entries it appears in.
type EntityView struct {
	Kind       types.EntityKind `json:"kind"`
	Entity     interface{}      `json:"entity"`
	EntryDates []string         `json:"entry_dates,omitempty"`
}

type queryService struct {
	log   *logger.Logger
	set   *repos.Set
	cache *redis.Cache
}

func NewQueryService(log *logger.Logger, set *repos.Set, cache *redis.Cache) QueryService {
	return &queryService{log: log.With("service", "QueryService"), set: set, cache: cache}
}

func (s *queryService) ListEntries(ctx context.Context, from, to *time.Time) ([]*types.Entry, error) {
	return s.set.Entries.List(ctx, nil, from, to)
}

func (s *queryService) GetEntryView(ctx context.Context, date string) (*EntryView, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be yyyy-mm-dd", pkgerrors.ErrInvalidArgument, date)
	}

	var cached EntryView
	if s.cache.Get(ctx, redis.EntryKey(date), &cached) {
		return &cached, nil
	}

	entry, err := s.set.Entries.GetByDate(ctx, nil, day)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: no entry dated %s", pkgerrors.ErrNotFound, date)
	}

	view := &EntryView{Entry: entry}
	if view.People, err = assocViews(ctx, s.set.EntryPeople, s.set.People, entry.ID); err != nil {
		return nil, err
	}
	if view.Cities, err = assocViews(ctx, s.set.EntryCities, s.set.Cities, entry.ID); err != nil {
		return nil, err
	}
	if view.Locations, err = assocViews(ctx, s.set.EntryLocations, s.set.Locations, entry.ID); err != nil {
		return nil, err
	}
	if view.Events, err = assocViews(ctx, s.set.EntryEvents, s.set.Events, entry.ID); err != nil {
		return nil, err
	}
	if view.Tags, err = assocViews(ctx, s.set.EntryTags, s.set.Tags, entry.ID); err != nil {
		return nil, err
	}
	if view.Themes, err = assocViews(ctx, s.set.EntryThemes, s.set.Themes, entry.ID); err != nil {
		return nil, err
	}
	if view.NarratedDates, err = assocViews(ctx, s.set.EntryNarratedDates, s.set.NarratedDates, entry.ID); err != nil {
		return nil, err
	}
	if view.Poems, err = assocViews(ctx, s.set.EntryPoems, s.set.Poems, entry.ID); err != nil {
		return nil, err
	}
	if view.References, err = s.set.References.ListByEntry(ctx, nil, entry.ID); err != nil {
		return nil, err
	}
	if view.Scenes, err = s.sceneViews(ctx, entry.ID); err != nil {
		return nil, err
	}
	if view.Threads, err = spanViews(ctx, s.set.ThreadEntries, s.set.Threads, entry.ID,
		func(m *types.ThreadEntry) (uuid.UUID, int) { return m.ThreadID, m.Position }); err != nil {
		return nil, err
	}
	if view.Arcs, err = spanViews(ctx, s.set.ArcEntries, s.set.Arcs, entry.ID,
		func(m *types.ArcEntry) (uuid.UUID, int) { return m.ArcID, m.Position }); err != nil {
		return nil, err
	}
	if view.Motifs, err = s.motifViews(ctx, entry.ID); err != nil {
		return nil, err
	}

	s.cache.Set(ctx, redis.EntryKey(date), view)
	return view, nil
}

func (s *queryService) ListEntities(ctx context.Context, kind types.EntityKind) ([]EntitySummary, error) {
	switch kind {
	case types.KindPerson:
		return summaries(ctx, s.set.People)
	case types.KindCity:
		return summaries(ctx, s.set.Cities)
	case types.KindLocation:
		return summaries(ctx, s.set.Locations)
	case types.KindEvent:
		return summaries(ctx, s.set.Events)
	case types.KindTag:
		return summaries(ctx, s.set.Tags)
	case types.KindTheme:
		return summaries(ctx, s.set.Themes)
	case types.KindPoem:
		return summaries(ctx, s.set.Poems)
	case types.KindReferenceSource:
		return summaries(ctx, s.set.ReferenceSources)
	case types.KindNarratedDate:
		return summaries(ctx, s.set.NarratedDates)
	case types.KindThread:
		return summaries(ctx, s.set.Threads)
	case types.KindArc:
		return summaries(ctx, s.set.Arcs)
	case types.KindMotif:
		return summaries(ctx, s.set.Motifs)
	default:
		return nil, fmt.Errorf("%w: kind %q is not listable", pkgerrors.ErrInvalidArgument, kind)
	}
}

func (s *queryService) GetEntityView(ctx context.Context, kind types.EntityKind, id uuid.UUID) (*EntityView, error) {
	key := redis.EntityKey(string(kind), id.String())
	var cached EntityView
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	entity, err := s.loadEntity(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, fmt.Errorf("%w: %s %s", pkgerrors.ErrNotFound, kind, id)
	}

	view := &EntityView{Kind: kind, Entity: entity}
	if view.EntryDates, err = s.entryDates(ctx, kind, id); err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, view)
	return view, nil
}

func (s *queryService) loadEntity(ctx context.Context, kind types.EntityKind, id uuid.UUID) (interface{}, error) {
	switch kind {
	case types.KindPerson:
		return row(s.set.People.GetByID(ctx, nil, id))
	case types.KindCity:
		return row(s.set.Cities.GetByID(ctx, nil, id))
	case types.KindLocation:
		return row(s.set.Locations.GetByID(ctx, nil, id))
	case types.KindEvent:
		return row(s.set.Events.GetByID(ctx, nil, id))
	case types.KindTag:
		return row(s.set.Tags.GetByID(ctx, nil, id))
	case types.KindTheme:
		return row(s.set.Themes.GetByID(ctx, nil, id))
	case types.KindPoem:
		return row(s.set.Poems.GetByID(ctx, nil, id))
	case types.KindReferenceSource:
		return row(s.set.ReferenceSources.GetByID(ctx, nil, id))
	case types.KindNarratedDate:
		return row(s.set.NarratedDates.GetByID(ctx, nil, id))
	case types.KindThread:
		return row(s.set.Threads.GetByID(ctx, nil, id))
	case types.KindArc:
		return row(s.set.Arcs.GetByID(ctx, nil, id))
	case types.KindMotif:
		return row(s.set.Motifs.GetByID(ctx, nil, id))
	case types.KindScene:
		return row(s.set.Scenes.GetByID(ctx, nil, id))
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", pkgerrors.ErrInvalidArgument, kind)
	}
}

// row flattens a typed nil into an untyped nil so the caller's nil check
// works across kinds.
func row[E any](e *E, err error) (interface{}, error) {
	if err != nil || e == nil {
		return nil, err
	}
	return e, nil
}

// entryDates lists the dates of entries directly linked to the entity.
// Kinds without an entry-side junction (scenes, sources) return nothing.
func (s *queryService) entryDates(ctx context.Context, kind types.EntityKind, id uuid.UUID) ([]string, error) {
	var (
		entryIDs []uuid.UUID
		err      error
	)
	switch kind {
	case types.KindPerson:
		entryIDs, err = owners(ctx, s.set.EntryPeople, id)
	case types.KindCity:
		entryIDs, err = owners(ctx, s.set.EntryCities, id)
	case types.KindLocation:
		entryIDs, err = owners(ctx, s.set.EntryLocations, id)
	case types.KindEvent:
		entryIDs, err = owners(ctx, s.set.EntryEvents, id)
	case types.KindTag:
		entryIDs, err = owners(ctx, s.set.EntryTags, id)
	case types.KindTheme:
		entryIDs, err = owners(ctx, s.set.EntryThemes, id)
	case types.KindNarratedDate:
		entryIDs, err = owners(ctx, s.set.EntryNarratedDates, id)
	case types.KindPoem:
		entryIDs, err = owners(ctx, s.set.EntryPoems, id)
	default:
		return nil, nil
	}
	if err != nil || len(entryIDs) == 0 {
		return nil, err
	}

	entries, err := s.set.Entries.GetByIDs(ctx, nil, entryIDs)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		dates = append(dates, e.Date.Format("2006-01-02"))
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *queryService) sceneViews(ctx context.Context, entryID uuid.UUID) ([]SceneView, error) {
	scenes, err := s.set.Scenes.ListByEntry(ctx, nil, entryID)
	if err != nil {
		return nil, err
	}
	out := make([]SceneView, 0, len(scenes))
	for _, sc := range scenes {
		sv := SceneView{Scene: sc}
		if sv.People, err = assocViews(ctx, s.set.ScenePeople, s.set.People, sc.ID); err != nil {
			return nil, err
		}
		if sv.NarratedDates, err = assocViews(ctx, s.set.SceneNarratedDates, s.set.NarratedDates, sc.ID); err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, nil
}

func (s *queryService) motifViews(ctx context.Context, entryID uuid.UUID) ([]MotifView, error) {
	instances, err := s.set.MotifInstances.ListByEntry(ctx, nil, entryID)
	if err != nil || len(instances) == 0 {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(instances))
	for _, in := range instances {
		ids = append(ids, in.MotifID)
	}
	motifs, err := s.set.Motifs.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	names := map[uuid.UUID]string{}
	for _, m := range motifs {
		names[m.ID] = m.Name
	}
	out := make([]MotifView, 0, len(instances))
	for _, in := range instances {
		out = append(out, MotifView{ID: in.MotifID, Name: names[in.MotifID], Locator: in.Locator})
	}
	return out, nil
}

// owners lists the owning entry ids of every junction row pointing at
// the target entity.
func owners[L any, P links.Ptr[L]](ctx context.Context, lr *links.Repo[L, P], targetID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := lr.ListByTarget(ctx, nil, targetID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, l := range rows {
		ids = append(ids, l.OwnerID())
	}
	return ids, nil
}

// assocViews joins one junction table with its catalog table into
// name+role views.
func assocViews[L any, PL links.Ptr[L], E any, PE catalog.Ptr[E]](ctx context.Context, lr *links.Repo[L, PL], cr *catalog.Repo[E, PE], ownerID uuid.UUID) ([]AssocView, error) {
	rows, err := lr.ListByOwner(ctx, nil, ownerID)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, l := range rows {
		ids = append(ids, l.TargetID())
	}
	entities, err := cr.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	names := map[uuid.UUID]string{}
	for _, e := range entities {
		names[e.GetID()] = e.GetName()
	}
	out := make([]AssocView, 0, len(rows))
	for _, l := range rows {
		out = append(out, AssocView{ID: l.TargetID(), Name: names[l.TargetID()], Role: l.RoleMeta()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func spanViews[L any, P interface{ *L }, E any, PE catalog.Ptr[E]](ctx context.Context, mr *links.MemberRepo[L, P], cr *catalog.Repo[E, PE], entryID uuid.UUID, unpack func(P) (uuid.UUID, int)) ([]SpanView, error) {
	members, err := mr.ListByEntry(ctx, nil, entryID)
	if err != nil || len(members) == 0 {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		gid, _ := unpack(m)
		ids = append(ids, gid)
	}
	groups, err := cr.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	names := map[uuid.UUID]string{}
	for _, g := range groups {
		names[g.GetID()] = g.GetName()
	}
	out := make([]SpanView, 0, len(members))
	for _, m := range members {
		gid, pos := unpack(m)
		out = append(out, SpanView{ID: gid, Name: names[gid], Position: pos})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func summaries[E any, P catalog.Ptr[E]](ctx context.Context, repo *catalog.Repo[E, P]) ([]EntitySummary, error) {
	rows, err := repo.ListLive(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]EntitySummary, 0, len(rows))
	for _, r := range rows {
		_, dis := r.NaturalKey()
		out = append(out, EntitySummary{
			ID:            r.GetID(),
			Kind:          r.EntityKind(),
			Name:          r.GetName(),
			Disambiguator: dis,
		})
	}
	return out, nil
}
