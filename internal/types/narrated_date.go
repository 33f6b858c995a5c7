package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NarratedDate is a calendar day the narrative talks about, as opposed to
// the day an entry was written. Its natural key is the yyyy-mm-dd form.
type NarratedDate struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_narrated_date_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_narrated_date_key" json:"disambiguator"`

	Date  time.Time `gorm:"type:date;not null;index" json:"date"`
	Notes string    `gorm:"column:notes" json:"notes"`

	MentionCount int `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (NarratedDate) TableName() string { return "narrated_date" }

func (n *NarratedDate) EntityKind() EntityKind       { return KindNarratedDate }
func (n *NarratedDate) GetID() uuid.UUID             { return n.ID }
func (n *NarratedDate) GetName() string              { return n.Name }
func (n *NarratedDate) NaturalKey() (string, string) { return n.NameKey, n.Disambiguator }
func (n *NarratedDate) IsTombstoned() bool           { return n.DeletedAt.Valid }

func (n *NarratedDate) EnsureID() {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
}

func (n *NarratedDate) SetIdentity(name, nameKey, disambiguator string) {
	n.Name, n.NameKey, n.Disambiguator = name, nameKey, disambiguator
	if d, err := time.Parse("2006-01-02", nameKey); err == nil {
		n.Date = d
	}
}

func (n *NarratedDate) EditableFields() map[string]string {
	return map[string]string{"notes": n.Notes}
}

func (n *NarratedDate) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&n.Notes, attrs, "notes", &changed)
	return changed
}
