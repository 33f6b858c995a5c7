package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

type PersonRepo = Repo[types.Person, *types.Person]
type CityRepo = Repo[types.City, *types.City]
type LocationRepo = Repo[types.Location, *types.Location]
type EventRepo = Repo[types.Event, *types.Event]
type TagRepo = Repo[types.Tag, *types.Tag]
type ThemeRepo = Repo[types.Theme, *types.Theme]
type PoemRepo = Repo[types.Poem, *types.Poem]
type ReferenceSourceRepo = Repo[types.ReferenceSource, *types.ReferenceSource]
type NarratedDateRepo = Repo[types.NarratedDate, *types.NarratedDate]
type ThreadRepo = Repo[types.Thread, *types.Thread]
type ArcRepo = Repo[types.Arc, *types.Arc]
type MotifRepo = Repo[types.Motif, *types.Motif]

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) *PersonRepo {
	return NewRepo[types.Person, *types.Person](db, baseLog, "PersonRepo")
}
func NewCityRepo(db *gorm.DB, baseLog *logger.Logger) *CityRepo {
	return NewRepo[types.City, *types.City](db, baseLog, "CityRepo")
}
func NewLocationRepo(db *gorm.DB, baseLog *logger.Logger) *LocationRepo {
	return NewRepo[types.Location, *types.Location](db, baseLog, "LocationRepo")
}
func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) *EventRepo {
	return NewRepo[types.Event, *types.Event](db, baseLog, "EventRepo")
}
func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) *TagRepo {
	return NewRepo[types.Tag, *types.Tag](db, baseLog, "TagRepo")
}
func NewThemeRepo(db *gorm.DB, baseLog *logger.Logger) *ThemeRepo {
	return NewRepo[types.Theme, *types.Theme](db, baseLog, "ThemeRepo")
}
func NewPoemRepo(db *gorm.DB, baseLog *logger.Logger) *PoemRepo {
	return NewRepo[types.Poem, *types.Poem](db, baseLog, "PoemRepo")
}
func NewReferenceSourceRepo(db *gorm.DB, baseLog *logger.Logger) *ReferenceSourceRepo {
	return NewRepo[types.ReferenceSource, *types.ReferenceSource](db, baseLog, "ReferenceSourceRepo")
}
func NewNarratedDateRepo(db *gorm.DB, baseLog *logger.Logger) *NarratedDateRepo {
	return NewRepo[types.NarratedDate, *types.NarratedDate](db, baseLog, "NarratedDateRepo")
}
func NewThreadRepo(db *gorm.DB, baseLog *logger.Logger) *ThreadRepo {
	return NewRepo[types.Thread, *types.Thread](db, baseLog, "ThreadRepo")
}
func NewArcRepo(db *gorm.DB, baseLog *logger.Logger) *ArcRepo {
	return NewRepo[types.Arc, *types.Arc](db, baseLog, "ArcRepo")
}
func NewMotifRepo(db *gorm.DB, baseLog *logger.Logger) *MotifRepo {
	return NewRepo[types.Motif, *types.Motif](db, baseLog, "MotifRepo")
}
