package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Motif struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_motif_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_motif_key" json:"disambiguator"`

	Notes string `gorm:"column:notes" json:"notes"`

	MentionCount int `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Motif) TableName() string { return "motif" }

func (m *Motif) EntityKind() EntityKind       { return KindMotif }
func (m *Motif) GetID() uuid.UUID             { return m.ID }
func (m *Motif) GetName() string              { return m.Name }
func (m *Motif) NaturalKey() (string, string) { return m.NameKey, m.Disambiguator }
func (m *Motif) IsTombstoned() bool           { return m.DeletedAt.Valid }

func (m *Motif) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

func (m *Motif) SetIdentity(name, nameKey, disambiguator string) {
	m.Name, m.NameKey, m.Disambiguator = name, nameKey, disambiguator
}

func (m *Motif) EditableFields() map[string]string {
	return map[string]string{"notes": m.Notes}
}

func (m *Motif) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&m.Notes, attrs, "notes", &changed)
	return changed
}

// MotifInstance pins a motif to a textual locator inside one entry.
// Duplicate instances (same motif, same entry, same locator) collapse
// idempotently on the unique index.
type MotifInstance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MotifID    uuid.UUID `gorm:"type:uuid;not null;index:idx_motif_instance,unique" json:"motif_id"`
	Motif      *Motif    `gorm:"constraint:OnDelete:CASCADE;foreignKey:MotifID;references:ID" json:"motif,omitempty"`
	EntryID    uuid.UUID `gorm:"type:uuid;not null;index:idx_motif_instance,unique" json:"entry_id"`
	Entry      *Entry    `gorm:"constraint:OnDelete:CASCADE;foreignKey:EntryID;references:ID" json:"entry,omitempty"`
	LocatorKey string    `gorm:"column:locator_key;not null;index:idx_motif_instance,unique" json:"locator_key"`
	Locator    string    `gorm:"column:locator;not null" json:"locator"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (MotifInstance) TableName() string { return "motif_instance" }
