package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_tag_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_tag_key" json:"disambiguator"`

	Notes string `gorm:"column:notes" json:"notes"`

	UsageCount int `gorm:"column:usage_count;not null;default:0" json:"usage_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Tag) TableName() string { return "tag" }

func (t *Tag) EntityKind() EntityKind       { return KindTag }
func (t *Tag) GetID() uuid.UUID             { return t.ID }
func (t *Tag) GetName() string              { return t.Name }
func (t *Tag) NaturalKey() (string, string) { return t.NameKey, t.Disambiguator }
func (t *Tag) IsTombstoned() bool           { return t.DeletedAt.Valid }

func (t *Tag) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
}

func (t *Tag) SetIdentity(name, nameKey, disambiguator string) {
	t.Name, t.NameKey, t.Disambiguator = name, nameKey, disambiguator
}

func (t *Tag) EditableFields() map[string]string {
	return map[string]string{"notes": t.Notes}
}

func (t *Tag) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&t.Notes, attrs, "notes", &changed)
	return changed
}
