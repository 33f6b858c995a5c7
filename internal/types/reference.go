package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferenceSource is the canonical work (book, film, conversation) a
// quoted reference comes from.
type ReferenceSource struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_reference_source_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_reference_source_key" json:"disambiguator"`

	Author string `gorm:"column:author" json:"author"`
	Notes  string `gorm:"column:notes" json:"notes"`

	MentionCount int `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ReferenceSource) TableName() string { return "reference_source" }

func (s *ReferenceSource) EntityKind() EntityKind       { return KindReferenceSource }
func (s *ReferenceSource) GetID() uuid.UUID             { return s.ID }
func (s *ReferenceSource) GetName() string              { return s.Name }
func (s *ReferenceSource) NaturalKey() (string, string) { return s.NameKey, s.Disambiguator }
func (s *ReferenceSource) IsTombstoned() bool           { return s.DeletedAt.Valid }

func (s *ReferenceSource) EnsureID() {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
}

func (s *ReferenceSource) SetIdentity(name, nameKey, disambiguator string) {
	s.Name, s.NameKey, s.Disambiguator = name, nameKey, disambiguator
}

func (s *ReferenceSource) EditableFields() map[string]string {
	return map[string]string{"author": s.Author, "notes": s.Notes}
}

func (s *ReferenceSource) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&s.Author, attrs, "author", &changed)
	applyString(&s.Notes, attrs, "notes", &changed)
	return changed
}

// Reference is an entry-owned quote. It is never created without a
// resolvable source; its dedup key is (entry, source, quote digest).
type Reference struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_reference_dedup,unique" json:"entry_id"`
	Entry       *Entry           `gorm:"constraint:OnDelete:CASCADE;foreignKey:EntryID;references:ID" json:"entry,omitempty"`
	SourceID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_reference_dedup,unique" json:"source_id"`
	Source      *ReferenceSource `gorm:"constraint:OnDelete:CASCADE;foreignKey:SourceID;references:ID" json:"source,omitempty"`
	Quote       string           `gorm:"column:quote;not null" json:"quote"`
	QuoteDigest string           `gorm:"column:quote_digest;not null;index:idx_reference_dedup,unique" json:"quote_digest"`
	Speaker     string           `gorm:"column:speaker" json:"speaker"`
	Ordinal     int              `gorm:"column:ordinal;not null;default:0" json:"ordinal"`
	CreatedAt   time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null" json:"updated_at"`
}

func (Reference) TableName() string { return "reference" }
