package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event participates in two distinct relationship kinds: a many-to-many
// tag-like link on entries (entry_event) and a one-to-many link on scenes
// (scene.event_id).
type Event struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_event_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_event_key" json:"disambiguator"`

	Notes string `gorm:"column:notes" json:"notes"`

	MentionCount int `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Event) TableName() string { return "event" }

func (e *Event) EntityKind() EntityKind       { return KindEvent }
func (e *Event) GetID() uuid.UUID             { return e.ID }
func (e *Event) GetName() string              { return e.Name }
func (e *Event) NaturalKey() (string, string) { return e.NameKey, e.Disambiguator }
func (e *Event) IsTombstoned() bool           { return e.DeletedAt.Valid }

func (e *Event) EnsureID() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
}

func (e *Event) SetIdentity(name, nameKey, disambiguator string) {
	e.Name, e.NameKey, e.Disambiguator = name, nameKey, disambiguator
}

func (e *Event) EditableFields() map[string]string {
	return map[string]string{"notes": e.Notes}
}

func (e *Event) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&e.Notes, attrs, "notes", &changed)
	return changed
}
