package links

import (
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

type EntryPersonRepo = Repo[types.EntryPerson, *types.EntryPerson]
type EntryCityRepo = Repo[types.EntryCity, *types.EntryCity]
type EntryLocationRepo = Repo[types.EntryLocation, *types.EntryLocation]
type EntryEventRepo = Repo[types.EntryEvent, *types.EntryEvent]
type EntryTagRepo = Repo[types.EntryTag, *types.EntryTag]
type EntryThemeRepo = Repo[types.EntryTheme, *types.EntryTheme]
type EntryNarratedDateRepo = Repo[types.EntryNarratedDate, *types.EntryNarratedDate]
type EntryPoemRepo = Repo[types.EntryPoem, *types.EntryPoem]
type ScenePersonRepo = Repo[types.ScenePerson, *types.ScenePerson]
type SceneNarratedDateRepo = Repo[types.SceneNarratedDate, *types.SceneNarratedDate]

func NewEntryPersonRepo(db *gorm.DB, baseLog *logger.Logger) *EntryPersonRepo {
	return NewRepo[types.EntryPerson, *types.EntryPerson](db, baseLog, "EntryPersonRepo", "entry_id", "person_id", "relation")
}
func NewEntryCityRepo(db *gorm.DB, baseLog *logger.Logger) *EntryCityRepo {
	return NewRepo[types.EntryCity, *types.EntryCity](db, baseLog, "EntryCityRepo", "entry_id", "city_id", "role")
}
func NewEntryLocationRepo(db *gorm.DB, baseLog *logger.Logger) *EntryLocationRepo {
	return NewRepo[types.EntryLocation, *types.EntryLocation](db, baseLog, "EntryLocationRepo", "entry_id", "location_id", "role")
}
func NewEntryEventRepo(db *gorm.DB, baseLog *logger.Logger) *EntryEventRepo {
	return NewRepo[types.EntryEvent, *types.EntryEvent](db, baseLog, "EntryEventRepo", "entry_id", "event_id", "role")
}
func NewEntryTagRepo(db *gorm.DB, baseLog *logger.Logger) *EntryTagRepo {
	return NewRepo[types.EntryTag, *types.EntryTag](db, baseLog, "EntryTagRepo", "entry_id", "tag_id", "role")
}
func NewEntryThemeRepo(db *gorm.DB, baseLog *logger.Logger) *EntryThemeRepo {
	return NewRepo[types.EntryTheme, *types.EntryTheme](db, baseLog, "EntryThemeRepo", "entry_id", "theme_id", "role")
}
func NewEntryNarratedDateRepo(db *gorm.DB, baseLog *logger.Logger) *EntryNarratedDateRepo {
	return NewRepo[types.EntryNarratedDate, *types.EntryNarratedDate](db, baseLog, "EntryNarratedDateRepo", "entry_id", "narrated_date_id", "role")
}
func NewEntryPoemRepo(db *gorm.DB, baseLog *logger.Logger) *EntryPoemRepo {
	return NewRepo[types.EntryPoem, *types.EntryPoem](db, baseLog, "EntryPoemRepo", "entry_id", "poem_id", "role")
}
func NewScenePersonRepo(db *gorm.DB, baseLog *logger.Logger) *ScenePersonRepo {
	return NewRepo[types.ScenePerson, *types.ScenePerson](db, baseLog, "ScenePersonRepo", "scene_id", "person_id", "role")
}
func NewSceneNarratedDateRepo(db *gorm.DB, baseLog *logger.Logger) *SceneNarratedDateRepo {
	return NewRepo[types.SceneNarratedDate, *types.SceneNarratedDate](db, baseLog, "SceneNarratedDateRepo", "scene_id", "narrated_date_id", "role")
}
