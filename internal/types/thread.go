package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Thread is a storyline spanning multiple entries. Member entries are kept
// in chronological order of their entry dates.
type Thread struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_thread_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_thread_key" json:"disambiguator"`

	Description string `gorm:"column:description" json:"description"`

	MentionCount int `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Thread) TableName() string { return "thread" }

func (t *Thread) EntityKind() EntityKind       { return KindThread }
func (t *Thread) GetID() uuid.UUID             { return t.ID }
func (t *Thread) GetName() string              { return t.Name }
func (t *Thread) NaturalKey() (string, string) { return t.NameKey, t.Disambiguator }
func (t *Thread) IsTombstoned() bool           { return t.DeletedAt.Valid }

func (t *Thread) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
}

func (t *Thread) SetIdentity(name, nameKey, disambiguator string) {
	t.Name, t.NameKey, t.Disambiguator = name, nameKey, disambiguator
}

func (t *Thread) EditableFields() map[string]string {
	return map[string]string{"description": t.Description}
}

func (t *Thread) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&t.Description, attrs, "description", &changed)
	return changed
}
