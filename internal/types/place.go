package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type City struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_city_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_city_key" json:"disambiguator"`

	Country string `gorm:"column:country" json:"country"`
	Notes   string `gorm:"column:notes" json:"notes"`

	MentionCount int `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (City) TableName() string { return "city" }

func (c *City) EntityKind() EntityKind       { return KindCity }
func (c *City) GetID() uuid.UUID             { return c.ID }
func (c *City) GetName() string              { return c.Name }
func (c *City) NaturalKey() (string, string) { return c.NameKey, c.Disambiguator }
func (c *City) IsTombstoned() bool           { return c.DeletedAt.Valid }

func (c *City) EnsureID() {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
}

func (c *City) SetIdentity(name, nameKey, disambiguator string) {
	c.Name, c.NameKey, c.Disambiguator = name, nameKey, disambiguator
}

func (c *City) EditableFields() map[string]string {
	return map[string]string{"country": c.Country, "notes": c.Notes}
}

func (c *City) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&c.Country, attrs, "country", &changed)
	applyString(&c.Notes, attrs, "notes", &changed)
	return changed
}

// Location is a place within (optionally) a city. The city link is
// structural: it is resolved once at creation and only changes through a
// disambiguator rename, never through editable merge-back.
type Location struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NameKey       string    `gorm:"column:name_key;not null;uniqueIndex:idx_location_key,where:deleted_at IS NULL" json:"name_key"`
	Disambiguator string    `gorm:"column:disambiguator;not null;default:'';uniqueIndex:idx_location_key" json:"disambiguator"`

	CityID *uuid.UUID `gorm:"type:uuid;index" json:"city_id,omitempty"`
	City   *City      `gorm:"constraint:OnDelete:SET NULL;foreignKey:CityID;references:ID" json:"city,omitempty"`

	Notes string `gorm:"column:notes" json:"notes"`

	MentionCount int `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Appearance

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Location) TableName() string { return "location" }

func (l *Location) EntityKind() EntityKind       { return KindLocation }
func (l *Location) GetID() uuid.UUID             { return l.ID }
func (l *Location) GetName() string              { return l.Name }
func (l *Location) NaturalKey() (string, string) { return l.NameKey, l.Disambiguator }
func (l *Location) IsTombstoned() bool           { return l.DeletedAt.Valid }

func (l *Location) EnsureID() {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
}

func (l *Location) SetIdentity(name, nameKey, disambiguator string) {
	l.Name, l.NameKey, l.Disambiguator = name, nameKey, disambiguator
}

func (l *Location) EditableFields() map[string]string {
	return map[string]string{"notes": l.Notes}
}

func (l *Location) ApplyEditable(attrs map[string]string) bool {
	changed := false
	applyString(&l.Notes, attrs, "notes", &changed)
	return changed
}
