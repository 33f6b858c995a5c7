package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Person struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_person_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_person_key" json:"disambiguator"`

	// Editable (owned by the note-page representation).
	Relation string `gorm:"column:relation" json:"relation"`
	Notes    string `gorm:"column:notes" json:"notes"`

	// Computed.
	MentionCount int `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Person) TableName() string { return "person" }

func (p *Person) EntityKind() EntityKind       { return KindPerson }
func (p *Person) GetID() uuid.UUID             { return p.ID }
func (p *Person) GetName() string              { return p.Name }
func (p *Person) NaturalKey() (string, string) { return p.NameKey, p.Disambiguator }
func (p *Person) IsTombstoned() bool           { return p.DeletedAt.Valid }

func (p *Person) EnsureID() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
}

func (p *Person) SetIdentity(name, nameKey, disambiguator string) {
	p.Name, p.NameKey, p.Disambiguator = name, nameKey, disambiguator
}

func (p *Person) EditableFields() map[string]string {
	return map[string]string{"relation": p.Relation, "notes": p.Notes}
}

func (p *Person) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&p.Relation, attrs, "relation", &changed)
	applyString(&p.Notes, attrs, "notes", &changed)
	return changed
}
