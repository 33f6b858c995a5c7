package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Theme struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_theme_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_theme_key" json:"disambiguator"`

	Description string `gorm:"column:description" json:"description"`

	MentionCount int `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Theme) TableName() string { return "theme" }

func (t *Theme) EntityKind() EntityKind       { return KindTheme }
func (t *Theme) GetID() uuid.UUID             { return t.ID }
func (t *Theme) GetName() string              { return t.Name }
func (t *Theme) NaturalKey() (string, string) { return t.NameKey, t.Disambiguator }
func (t *Theme) IsTombstoned() bool           { return t.DeletedAt.Valid }

func (t *Theme) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
}

func (t *Theme) SetIdentity(name, nameKey, disambiguator string) {
	t.Name, t.NameKey, t.Disambiguator = name, nameKey, disambiguator
}

func (t *Theme) EditableFields() map[string]string {
	return map[string]string{"description": t.Description}
}

func (t *Theme) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&t.Description, attrs, "description", &changed)
	return changed
}
