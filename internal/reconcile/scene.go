package reconcile

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/ingestion"
	"github.com/yungbote/daybook/internal/pkg/textkey"
	"github.com/yungbote/daybook/internal/types"
)

// sceneProcessor reconciles the one-to-many scene relationship. Scenes
// are deduplicated per entry by title key, never globally; removing a
// scene from an entry tombstones it directly since the declaration on
// its entry is its only reference. The declared scene cascades: its
// location, event, people and narrated dates are resolved here and the
// scene-side junctions reconciled against them.
type sceneProcessor struct {
	set *repos.Set
	res *Resolver
}

func (p *sceneProcessor) Kind() types.EntityKind { return types.KindScene }

func (p *sceneProcessor) Apply(ctx context.Context, tx *gorm.DB, entry *types.Entry, desc *ingestion.EntryDescriptor, mode Mode) ([]*Delta, error) {
	sceneDelta := &Delta{Kind: types.KindScene}
	personDelta := &Delta{Kind: types.KindPerson}
	dateDelta := &Delta{Kind: types.KindNarratedDate}
	locDelta := &Delta{Kind: types.KindLocation}
	eventDelta := &Delta{Kind: types.KindEvent}

	seen := map[string]bool{}
	for i, spec := range desc.Scenes {
		title := strings.TrimSpace(spec.Title)
		if title == "" {
			return nil, &InvalidAssociationError{
				Kind:       types.KindScene,
				Descriptor: spec.Summary,
				Reason:     "scene requires a title",
			}
		}
		titleKey := textkey.Normalize(title)
		if seen[titleKey] {
			continue
		}
		seen[titleKey] = true

		scene, err := p.applyScene(ctx, tx, entry, title, titleKey, i, spec, mode,
			sceneDelta, personDelta, dateDelta, locDelta, eventDelta)
		if err != nil {
			return nil, err
		}
		sceneDelta.Touched = append(sceneDelta.Touched, scene.ID)
	}

	if mode == ModeReplace {
		if err := p.removeUndeclared(ctx, tx, entry, seen, sceneDelta, personDelta, dateDelta, locDelta, eventDelta); err != nil {
			return nil, err
		}
	}

	return []*Delta{sceneDelta, personDelta, dateDelta, locDelta, eventDelta}, nil
}

func (p *sceneProcessor) applyScene(
	ctx context.Context,
	tx *gorm.DB,
	entry *types.Entry,
	title, titleKey string,
	ordinal int,
	spec ingestion.SceneSpec,
	mode Mode,
	sceneDelta, personDelta, dateDelta, locDelta, eventDelta *Delta,
) (*types.Scene, error) {
	var locationID, eventID *uuid.UUID
	if spec.Location != nil && strings.TrimSpace(spec.Location.Name) != "" {
		loc, outcome, err := p.res.Location(ctx, tx, *spec.Location)
		if err != nil {
			return nil, err
		}
		countOutcome(locDelta, outcome)
		locDelta.Touched = append(locDelta.Touched, loc.ID)
		id := loc.ID
		locationID = &id
	}
	if spec.Event != nil && strings.TrimSpace(spec.Event.Name) != "" {
		ev, outcome, err := p.res.Event(ctx, tx, *spec.Event)
		if err != nil {
			return nil, err
		}
		countOutcome(eventDelta, outcome)
		eventDelta.Touched = append(eventDelta.Touched, ev.ID)
		id := ev.ID
		eventID = &id
	}

	rows, err := p.set.Scenes.FindByEntryAndTitle(ctx, tx, entry.ID, titleKey, true)
	if err != nil {
		return nil, err
	}
	var scene *types.Scene
	for _, row := range rows {
		if !row.IsTombstoned() {
			scene = row
			break
		}
	}
	switch {
	case scene != nil:
		updates := map[string]interface{}{}
		if scene.Title != title {
			updates["title"] = title
		}
		if scene.Ordinal != ordinal {
			updates["ordinal"] = ordinal
		}
		if scene.TimeOfDay != spec.TimeOfDay && spec.TimeOfDay != "" {
			updates["time_of_day"] = spec.TimeOfDay
		}
		if !uuidPtrEqual(scene.LocationID, locationID) && locationID != nil {
			updates["location_id"] = *locationID
		}
		if !uuidPtrEqual(scene.EventID, eventID) && eventID != nil {
			updates["event_id"] = *eventID
		}
		if spec.Summary != "" && scene.Summary != spec.Summary {
			updates["summary"] = spec.Summary
		}
		if len(updates) > 0 {
			if err := updateScene(ctx, tx, p.set, scene, updates); err != nil {
				return nil, err
			}
			sceneDelta.Updated++
		}
	case len(rows) > 0:
		// Tombstoned scene under the same title: resurrect.
		scene = rows[0]
		if err := p.set.Scenes.Restore(ctx, tx, scene.ID); err != nil {
			return nil, err
		}
		scene.DeletedAt = gorm.DeletedAt{}
		updates := map[string]interface{}{
			"title":   title,
			"ordinal": ordinal,
		}
		if spec.TimeOfDay != "" {
			updates["time_of_day"] = spec.TimeOfDay
		}
		if locationID != nil {
			updates["location_id"] = *locationID
		}
		if eventID != nil {
			updates["event_id"] = *eventID
		}
		if spec.Summary != "" {
			updates["summary"] = spec.Summary
		}
		if err := updateScene(ctx, tx, p.set, scene, updates); err != nil {
			return nil, err
		}
		sceneDelta.Resurrected++
	default:
		scene = &types.Scene{
			ID:         uuid.New(),
			EntryID:    entry.ID,
			Title:      title,
			TitleKey:   titleKey,
			Ordinal:    ordinal,
			TimeOfDay:  spec.TimeOfDay,
			LocationID: locationID,
			EventID:    eventID,
			Summary:    spec.Summary,
		}
		if err := p.set.Scenes.Create(ctx, tx, scene); err != nil {
			return nil, err
		}
		sceneDelta.Created++
	}

	// Scene-side junctions: the scene's declared people and narrated
	// dates are authoritative for the scene the same way the entry's
	// lists are for the entry.
	people := make([]target, 0, len(spec.People))
	for _, ps := range spec.People {
		person, outcome, err := p.res.Person(ctx, tx, ps)
		if err != nil {
			return nil, err
		}
		people = append(people, target{id: person.ID, role: ps.Role, outcome: outcome})
	}
	if err := applyLinkSet(ctx, tx, p.set.ScenePeople, scene.ID, people, mode,
		func(ownerID, targetID uuid.UUID, role string) *types.ScenePerson {
			return &types.ScenePerson{ID: uuid.New(), SceneID: ownerID, PersonID: targetID, Role: role}
		}, personDelta); err != nil {
		return nil, err
	}

	dates := make([]target, 0, len(spec.NarratedDates))
	for _, ds := range spec.NarratedDates {
		nd, outcome, err := p.res.NarratedDate(ctx, tx, ds)
		if err != nil {
			return nil, err
		}
		dates = append(dates, target{id: nd.ID, role: ds.Role, outcome: outcome})
	}
	if err := applyLinkSet(ctx, tx, p.set.SceneNarratedDates, scene.ID, dates, mode,
		func(ownerID, targetID uuid.UUID, role string) *types.SceneNarratedDate {
			return &types.SceneNarratedDate{ID: uuid.New(), SceneID: ownerID, NarratedDateID: targetID, Role: role}
		}, dateDelta); err != nil {
		return nil, err
	}

	return scene, nil
}

// removeUndeclared tombstones live scenes the entry no longer declares
// and hard-deletes their junctions, reporting the junction targets so
// orphan checks run for them.
func (p *sceneProcessor) removeUndeclared(
	ctx context.Context,
	tx *gorm.DB,
	entry *types.Entry,
	declared map[string]bool,
	sceneDelta, personDelta, dateDelta, locDelta, eventDelta *Delta,
) error {
	current, err := p.set.Scenes.ListByEntry(ctx, tx, entry.ID)
	if err != nil {
		return err
	}
	var gone []uuid.UUID
	for _, scene := range current {
		if !declared[scene.TitleKey] {
			gone = append(gone, scene.ID)
			if scene.LocationID != nil {
				locDelta.RemovedTargets = append(locDelta.RemovedTargets, *scene.LocationID)
			}
			if scene.EventID != nil {
				eventDelta.RemovedTargets = append(eventDelta.RemovedTargets, *scene.EventID)
			}
		}
	}
	if len(gone) == 0 {
		return nil
	}
	for _, sceneID := range gone {
		links, err := p.set.ScenePeople.ListByOwner(ctx, tx, sceneID)
		if err != nil {
			return err
		}
		for _, l := range links {
			personDelta.RemovedTargets = append(personDelta.RemovedTargets, l.PersonID)
		}
		dlinks, err := p.set.SceneNarratedDates.ListByOwner(ctx, tx, sceneID)
		if err != nil {
			return err
		}
		for _, l := range dlinks {
			dateDelta.RemovedTargets = append(dateDelta.RemovedTargets, l.NarratedDateID)
		}
	}
	if err := p.set.ScenePeople.DeleteByOwnerIDs(ctx, tx, gone); err != nil {
		return err
	}
	if err := p.set.SceneNarratedDates.DeleteByOwnerIDs(ctx, tx, gone); err != nil {
		return err
	}
	if err := p.set.Scenes.TombstoneByIDs(ctx, tx, gone); err != nil {
		return err
	}
	sceneDelta.Tombstoned += len(gone)
	return nil
}

func updateScene(ctx context.Context, tx *gorm.DB, set *repos.Set, scene *types.Scene, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if err := set.Scenes.UpdateFields(ctx, tx, scene.ID, updates); err != nil {
		return err
	}
	applySceneUpdates(scene, updates)
	return nil
}

func applySceneUpdates(scene *types.Scene, updates map[string]interface{}) {
	if v, ok := updates["title"].(string); ok {
		scene.Title = v
	}
	if v, ok := updates["ordinal"].(int); ok {
		scene.Ordinal = v
	}
	if v, ok := updates["time_of_day"].(string); ok {
		scene.TimeOfDay = v
	}
	if v, ok := updates["location_id"].(uuid.UUID); ok {
		id := v
		scene.LocationID = &id
	}
	if v, ok := updates["event_id"].(uuid.UUID); ok {
		id := v
		scene.EventID = &id
	}
	if v, ok := updates["summary"].(string); ok {
		scene.Summary = v
	}
}

func countOutcome(delta *Delta, outcome Outcome) {
	switch outcome {
	case OutcomeCreated:
		delta.Created++
	case OutcomeResurrected:
		delta.Resurrected++
	}
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
