package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scene is a narrative unit that belongs to exactly one entry. Scenes are
// deduplicated by (entry, title key) rather than globally. The event link
// is the one-to-many event-per-scene relationship; the tag-like
// event-per-entry relationship lives in entry_event.
type Scene struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID  uuid.UUID `gorm:"type:uuid;not null;index:idx_scene_key" json:"entry_id"`
	Entry    *Entry    `gorm:"constraint:OnDelete:CASCADE;foreignKey:EntryID;references:ID" json:"entry,omitempty"`
	Title    string    `gorm:"column:title;not null" json:"title"`
	TitleKey string    `gorm:"column:title_key;not null;index:idx_scene_key" json:"title_key"`
	Ordinal  int       `gorm:"column:ordinal;not null;default:0" json:"ordinal"`

	TimeOfDay  string     `gorm:"column:time_of_day" json:"time_of_day"`
	LocationID *uuid.UUID `gorm:"type:uuid;index" json:"location_id,omitempty"`
	Location   *Location  `gorm:"constraint:OnDelete:SET NULL;foreignKey:LocationID;references:ID" json:"location,omitempty"`
	EventID    *uuid.UUID `gorm:"type:uuid;index" json:"event_id,omitempty"`
	Event      *Event     `gorm:"constraint:OnDelete:SET NULL;foreignKey:EventID;references:ID" json:"event,omitempty"`

	// Editable.
	Summary string `gorm:"column:summary" json:"summary"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Scene) TableName() string { return "scene" }

func (s *Scene) EntityKind() EntityKind { return KindScene }
func (s *Scene) GetID() uuid.UUID       { return s.ID }
func (s *Scene) IsTombstoned() bool     { return s.DeletedAt.Valid }

func (s *Scene) EnsureID() {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
}

func (s *Scene) EditableFields() map[string]string {
	return map[string]string{"summary": s.Summary}
}

func (s *Scene) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&s.Summary, attrs, "summary", &changed)
	return changed
}
