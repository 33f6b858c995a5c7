package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos/catalog"
	"github.com/yungbote/daybook/internal/data/repos/journal"
	"github.com/yungbote/daybook/internal/data/repos/links"
	syncrepo "github.com/yungbote/daybook/internal/data/repos/sync"
	"github.com/yungbote/daybook/internal/pkg/logger"
)

type EntryRepo = journal.EntryRepo
type SceneRepo = journal.SceneRepo
type ReferenceRepo = journal.ReferenceRepo

type PersonRepo = catalog.PersonRepo
type CityRepo = catalog.CityRepo
type LocationRepo = catalog.LocationRepo
type EventRepo = catalog.EventRepo
type TagRepo = catalog.TagRepo
type ThemeRepo = catalog.ThemeRepo
type PoemRepo = catalog.PoemRepo
type PoemVersionRepo = catalog.PoemVersionRepo
type ReferenceSourceRepo = catalog.ReferenceSourceRepo
type NarratedDateRepo = catalog.NarratedDateRepo
type ThreadRepo = catalog.ThreadRepo
type ArcRepo = catalog.ArcRepo
type MotifRepo = catalog.MotifRepo

type EntryPersonRepo = links.EntryPersonRepo
type EntryCityRepo = links.EntryCityRepo
type EntryLocationRepo = links.EntryLocationRepo
type EntryEventRepo = links.EntryEventRepo
type EntryTagRepo = links.EntryTagRepo
type EntryThemeRepo = links.EntryThemeRepo
type EntryNarratedDateRepo = links.EntryNarratedDateRepo
type EntryPoemRepo = links.EntryPoemRepo
type ScenePersonRepo = links.ScenePersonRepo
type SceneNarratedDateRepo = links.SceneNarratedDateRepo
type ThreadEntryRepo = links.ThreadEntryRepo
type ArcEntryRepo = links.ArcEntryRepo
type MotifInstanceRepo = links.MotifInstanceRepo

type MergeFingerprintRepo = syncrepo.MergeFingerprintRepo

func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return journal.NewEntryRepo(db, baseLog)
}
func NewSceneRepo(db *gorm.DB, baseLog *logger.Logger) SceneRepo {
	return journal.NewSceneRepo(db, baseLog)
}
func NewReferenceRepo(db *gorm.DB, baseLog *logger.Logger) ReferenceRepo {
	return journal.NewReferenceRepo(db, baseLog)
}

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) *PersonRepo {
	return catalog.NewPersonRepo(db, baseLog)
}
func NewCityRepo(db *gorm.DB, baseLog *logger.Logger) *CityRepo {
	return catalog.NewCityRepo(db, baseLog)
}
func NewLocationRepo(db *gorm.DB, baseLog *logger.Logger) *LocationRepo {
	return catalog.NewLocationRepo(db, baseLog)
}
func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) *EventRepo {
	return catalog.NewEventRepo(db, baseLog)
}
func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) *TagRepo {
	return catalog.NewTagRepo(db, baseLog)
}
func NewThemeRepo(db *gorm.DB, baseLog *logger.Logger) *ThemeRepo {
	return catalog.NewThemeRepo(db, baseLog)
}
func NewPoemRepo(db *gorm.DB, baseLog *logger.Logger) *PoemRepo {
	return catalog.NewPoemRepo(db, baseLog)
}
func NewPoemVersionRepo(db *gorm.DB, baseLog *logger.Logger) PoemVersionRepo {
	return catalog.NewPoemVersionRepo(db, baseLog)
}
func NewReferenceSourceRepo(db *gorm.DB, baseLog *logger.Logger) *ReferenceSourceRepo {
	return catalog.NewReferenceSourceRepo(db, baseLog)
}
func NewNarratedDateRepo(db *gorm.DB, baseLog *logger.Logger) *NarratedDateRepo {
	return catalog.NewNarratedDateRepo(db, baseLog)
}
func NewThreadRepo(db *gorm.DB, baseLog *logger.Logger) *ThreadRepo {
	return catalog.NewThreadRepo(db, baseLog)
}
func NewArcRepo(db *gorm.DB, baseLog *logger.Logger) *ArcRepo {
	return catalog.NewArcRepo(db, baseLog)
}
func NewMotifRepo(db *gorm.DB, baseLog *logger.Logger) *MotifRepo {
	return catalog.NewMotifRepo(db, baseLog)
}

func NewEntryPersonRepo(db *gorm.DB, baseLog *logger.Logger) *EntryPersonRepo {
	return links.NewEntryPersonRepo(db, baseLog)
}
func NewEntryCityRepo(db *gorm.DB, baseLog *logger.Logger) *EntryCityRepo {
	return links.NewEntryCityRepo(db, baseLog)
}
func NewEntryLocationRepo(db *gorm.DB, baseLog *logger.Logger) *EntryLocationRepo {
	return links.NewEntryLocationRepo(db, baseLog)
}
func NewEntryEventRepo(db *gorm.DB, baseLog *logger.Logger) *EntryEventRepo {
	return links.NewEntryEventRepo(db, baseLog)
}
func NewEntryTagRepo(db *gorm.DB, baseLog *logger.Logger) *EntryTagRepo {
	return links.NewEntryTagRepo(db, baseLog)
}
func NewEntryThemeRepo(db *gorm.DB, baseLog *logger.Logger) *EntryThemeRepo {
	return links.NewEntryThemeRepo(db, baseLog)
}
func NewEntryNarratedDateRepo(db *gorm.DB, baseLog *logger.Logger) *EntryNarratedDateRepo {
	return links.NewEntryNarratedDateRepo(db, baseLog)
}
func NewEntryPoemRepo(db *gorm.DB, baseLog *logger.Logger) *EntryPoemRepo {
	return links.NewEntryPoemRepo(db, baseLog)
}
func NewScenePersonRepo(db *gorm.DB, baseLog *logger.Logger) *ScenePersonRepo {
	return links.NewScenePersonRepo(db, baseLog)
}
func NewSceneNarratedDateRepo(db *gorm.DB, baseLog *logger.Logger) *SceneNarratedDateRepo {
	return links.NewSceneNarratedDateRepo(db, baseLog)
}
func NewThreadEntryRepo(db *gorm.DB, baseLog *logger.Logger) *ThreadEntryRepo {
	return links.NewThreadEntryRepo(db, baseLog)
}
func NewArcEntryRepo(db *gorm.DB, baseLog *logger.Logger) *ArcEntryRepo {
	return links.NewArcEntryRepo(db, baseLog)
}
func NewMotifInstanceRepo(db *gorm.DB, baseLog *logger.Logger) MotifInstanceRepo {
	return links.NewMotifInstanceRepo(db, baseLog)
}

func NewMergeFingerprintRepo(db *gorm.DB, baseLog *logger.Logger) MergeFingerprintRepo {
	return syncrepo.NewMergeFingerprintRepo(db, baseLog)
}

// Set bundles every repo the reconciliation engine touches. Wiring it
// once in main keeps the construction noise out of the services.
type Set struct {
	Entries    EntryRepo
	Scenes     SceneRepo
	References ReferenceRepo

	People           *PersonRepo
	Cities           *CityRepo
	Locations        *LocationRepo
	Events           *EventRepo
	Tags             *TagRepo
	Themes           *ThemeRepo
	Poems            *PoemRepo
	PoemVersions     PoemVersionRepo
	ReferenceSources *ReferenceSourceRepo
	NarratedDates    *NarratedDateRepo
	Threads          *ThreadRepo
	Arcs             *ArcRepo
	Motifs           *MotifRepo

	EntryPeople        *EntryPersonRepo
	EntryCities        *EntryCityRepo
	EntryLocations     *EntryLocationRepo
	EntryEvents        *EntryEventRepo
	EntryTags          *EntryTagRepo
	EntryThemes        *EntryThemeRepo
	EntryNarratedDates *EntryNarratedDateRepo
	EntryPoems         *EntryPoemRepo
	ScenePeople        *ScenePersonRepo
	SceneNarratedDates *SceneNarratedDateRepo
	ThreadEntries      *ThreadEntryRepo
	ArcEntries         *ArcEntryRepo
	MotifInstances     MotifInstanceRepo

	Fingerprints MergeFingerprintRepo
	RefCounts    RefCounter
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) *Set {
	return &Set{
		Entries:    NewEntryRepo(db, baseLog),
		Scenes:     NewSceneRepo(db, baseLog),
		References: NewReferenceRepo(db, baseLog),

		People:           NewPersonRepo(db, baseLog),
		Cities:           NewCityRepo(db, baseLog),
		Locations:        NewLocationRepo(db, baseLog),
		Events:           NewEventRepo(db, baseLog),
		Tags:             NewTagRepo(db, baseLog),
		Themes:           NewThemeRepo(db, baseLog),
		Poems:            NewPoemRepo(db, baseLog),
		PoemVersions:     NewPoemVersionRepo(db, baseLog),
		ReferenceSources: NewReferenceSourceRepo(db, baseLog),
		NarratedDates:    NewNarratedDateRepo(db, baseLog),
		Threads:          NewThreadRepo(db, baseLog),
		Arcs:             NewArcRepo(db, baseLog),
		Motifs:           NewMotifRepo(db, baseLog),

		EntryPeople:        NewEntryPersonRepo(db, baseLog),
		EntryCities:        NewEntryCityRepo(db, baseLog),
		EntryLocations:     NewEntryLocationRepo(db, baseLog),
		EntryEvents:        NewEntryEventRepo(db, baseLog),
		EntryTags:          NewEntryTagRepo(db, baseLog),
		EntryThemes:        NewEntryThemeRepo(db, baseLog),
		EntryNarratedDates: NewEntryNarratedDateRepo(db, baseLog),
		EntryPoems:         NewEntryPoemRepo(db, baseLog),
		ScenePeople:        NewScenePersonRepo(db, baseLog),
		SceneNarratedDates: NewSceneNarratedDateRepo(db, baseLog),
		ThreadEntries:      NewThreadEntryRepo(db, baseLog),
		ArcEntries:         NewArcEntryRepo(db, baseLog),
		MotifInstances:     NewMotifInstanceRepo(db, baseLog),

		Fingerprints: NewMergeFingerprintRepo(db, baseLog),
		RefCounts:    NewRefCounter(db, baseLog),
	}
}
