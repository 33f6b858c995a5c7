package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Poem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_poem_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_poem_key" json:"disambiguator"`

	Notes string `gorm:"column:notes" json:"notes"`

	// LatestSeq is the sequence number of the newest version row.
	LatestSeq    int `gorm:"column:latest_seq;not null;default:0" json:"latest_seq"`
	MentionCount int `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Poem) TableName() string { return "poem" }

func (p *Poem) EntityKind() EntityKind       { return KindPoem }
func (p *Poem) GetID() uuid.UUID             { return p.ID }
func (p *Poem) GetName() string              { return p.Name }
func (p *Poem) NaturalKey() (string, string) { return p.NameKey, p.Disambiguator }
func (p *Poem) IsTombstoned() bool           { return p.DeletedAt.Valid }

func (p *Poem) EnsureID() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
}

func (p *Poem) SetIdentity(name, nameKey, disambiguator string) {
	p.Name, p.NameKey, p.Disambiguator = name, nameKey, disambiguator
}

func (p *Poem) EditableFields() map[string]string {
	return map[string]string{"notes": p.Notes}
}

func (p *Poem) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&p.Notes, attrs, "notes", &changed)
	return changed
}

// PoemVersion rows are append-only history; once created they are never
// edited in place. A new row is appended whenever a declared poem's
// content digest differs from the latest version.
type PoemVersion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PoemID        uuid.UUID `gorm:"type:uuid;not null;index:idx_poem_version,unique" json:"poem_id"`
	Seq           int       `gorm:"column:seq;not null;index:idx_poem_version,unique" json:"seq"`
	Content       string    `gorm:"column:content;not null" json:"content"`
	ContentDigest string    `gorm:"column:content_digest;not null" json:"content_digest"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (PoemVersion) TableName() string { return "poem_version" }
