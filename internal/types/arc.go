package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Arc is a long-form storyline, wider than a thread, with the same
// chronological membership rules.
type Arc struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_arc_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_arc_key" json:"disambiguator"`

	Description string `gorm:"column:description" json:"description"`

	MentionCount int `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Arc) TableName() string { return "arc" }

func (a *Arc) EntityKind() EntityKind       { return KindArc }
func (a *Arc) GetID() uuid.UUID             { return a.ID }
func (a *Arc) GetName() string              { return a.Name }
func (a *Arc) NaturalKey() (string, string) { return a.NameKey, a.Disambiguator }
func (a *Arc) IsTombstoned() bool           { return a.DeletedAt.Valid }

func (a *Arc) EnsureID() {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
}

func (a *Arc) SetIdentity(name, nameKey, disambiguator string) {
	a.Name, a.NameKey, a.Disambiguator = name, nameKey, disambiguator
}

func (a *Arc) EditableFields() map[string]string {
	return map[string]string{"description": a.Description}
}

func (a *Arc) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&a.Description, attrs, "description", &changed)
	return changed
}
