package types

import (
	"time"

	"github.com/google/uuid"
)

// Association records. Each is a (owner id, target id) pair, unique per
// pair, optionally carrying role metadata. The entry side owns them: the
// entry's declared set is authoritative on every reconciliation pass, so
// removals are hard deletes (the tombstone lifecycle applies to entities,
// not to links).

// Link is the uniform view the links repo and the reconcile processors
// share across junction tables.
type Link interface {
	LinkID() uuid.UUID
	OwnerID() uuid.UUID
	TargetID() uuid.UUID
	RoleMeta() string
	SetRoleMeta(role string)
}

type EntryPerson struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID   uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_person,unique" json:"entry_id"`
	PersonID  uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_person,unique" json:"person_id"`
	Relation  string    `gorm:"column:relation" json:"relation"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EntryPerson) TableName() string { return "entry_person" }

func (l *EntryPerson) LinkID() uuid.UUID    { return l.ID }
func (l *EntryPerson) OwnerID() uuid.UUID   { return l.EntryID }
func (l *EntryPerson) TargetID() uuid.UUID  { return l.PersonID }
func (l *EntryPerson) RoleMeta() string     { return l.Relation }
func (l *EntryPerson) SetRoleMeta(r string) { l.Relation = r }

type EntryCity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID   uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_city,unique" json:"entry_id"`
	CityID    uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_city,unique" json:"city_id"`
	Role      string    `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EntryCity) TableName() string { return "entry_city" }

func (l *EntryCity) LinkID() uuid.UUID    { return l.ID }
func (l *EntryCity) OwnerID() uuid.UUID   { return l.EntryID }
func (l *EntryCity) TargetID() uuid.UUID  { return l.CityID }
func (l *EntryCity) RoleMeta() string     { return l.Role }
func (l *EntryCity) SetRoleMeta(r string) { l.Role = r }

type EntryLocation struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID    uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_location,unique" json:"entry_id"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_location,unique" json:"location_id"`
	Role       string    `gorm:"column:role" json:"role"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (EntryLocation) TableName() string { return "entry_location" }

func (l *EntryLocation) LinkID() uuid.UUID    { return l.ID }
func (l *EntryLocation) OwnerID() uuid.UUID   { return l.EntryID }
func (l *EntryLocation) TargetID() uuid.UUID  { return l.LocationID }
func (l *EntryLocation) RoleMeta() string     { return l.Role }
func (l *EntryLocation) SetRoleMeta(r string) { l.Role = r }

// EntryEvent is the many-to-many, tag-like half of the event relationship.
type EntryEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID   uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_event,unique" json:"entry_id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_event,unique" json:"event_id"`
	Role      string    `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EntryEvent) TableName() string { return "entry_event" }

func (l *EntryEvent) LinkID() uuid.UUID    { return l.ID }
func (l *EntryEvent) OwnerID() uuid.UUID   { return l.EntryID }
func (l *EntryEvent) TargetID() uuid.UUID  { return l.EventID }
func (l *EntryEvent) RoleMeta() string     { return l.Role }
func (l *EntryEvent) SetRoleMeta(r string) { l.Role = r }

type EntryTag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID   uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_tag,unique" json:"entry_id"`
	TagID     uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_tag,unique" json:"tag_id"`
	Role      string    `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EntryTag) TableName() string { return "entry_tag" }

func (l *EntryTag) LinkID() uuid.UUID    { return l.ID }
func (l *EntryTag) OwnerID() uuid.UUID   { return l.EntryID }
func (l *EntryTag) TargetID() uuid.UUID  { return l.TagID }
func (l *EntryTag) RoleMeta() string     { return l.Role }
func (l *EntryTag) SetRoleMeta(r string) { l.Role = r }

type EntryTheme struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID   uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_theme,unique" json:"entry_id"`
	ThemeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_theme,unique" json:"theme_id"`
	Role      string    `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EntryTheme) TableName() string { return "entry_theme" }

func (l *EntryTheme) LinkID() uuid.UUID    { return l.ID }
func (l *EntryTheme) OwnerID() uuid.UUID   { return l.EntryID }
func (l *EntryTheme) TargetID() uuid.UUID  { return l.ThemeID }
func (l *EntryTheme) RoleMeta() string     { return l.Role }
func (l *EntryTheme) SetRoleMeta(r string) { l.Role = r }

type EntryNarratedDate struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID        uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_narrated_date,unique" json:"entry_id"`
	NarratedDateID uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_narrated_date,unique" json:"narrated_date_id"`
	Role           string    `gorm:"column:role" json:"role"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (EntryNarratedDate) TableName() string { return "entry_narrated_date" }

func (l *EntryNarratedDate) LinkID() uuid.UUID    { return l.ID }
func (l *EntryNarratedDate) OwnerID() uuid.UUID   { return l.EntryID }
func (l *EntryNarratedDate) TargetID() uuid.UUID  { return l.NarratedDateID }
func (l *EntryNarratedDate) RoleMeta() string     { return l.Role }
func (l *EntryNarratedDate) SetRoleMeta(r string) { l.Role = r }

type EntryPoem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID   uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_poem,unique" json:"entry_id"`
	PoemID    uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_poem,unique" json:"poem_id"`
	Role      string    `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EntryPoem) TableName() string { return "entry_poem" }

func (l *EntryPoem) LinkID() uuid.UUID    { return l.ID }
func (l *EntryPoem) OwnerID() uuid.UUID   { return l.EntryID }
func (l *EntryPoem) TargetID() uuid.UUID  { return l.PoemID }
func (l *EntryPoem) RoleMeta() string     { return l.Role }
func (l *EntryPoem) SetRoleMeta(r string) { l.Role = r }

// Scene-side junctions share the Link shape with the scene as owner.

type ScenePerson struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SceneID   uuid.UUID `gorm:"type:uuid;not null;index:idx_scene_person,unique" json:"scene_id"`
	PersonID  uuid.UUID `gorm:"type:uuid;not null;index:idx_scene_person,unique" json:"person_id"`
	Role      string    `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ScenePerson) TableName() string { return "scene_person" }

func (l *ScenePerson) LinkID() uuid.UUID    { return l.ID }
func (l *ScenePerson) OwnerID() uuid.UUID   { return l.SceneID }
func (l *ScenePerson) TargetID() uuid.UUID  { return l.PersonID }
func (l *ScenePerson) RoleMeta() string     { return l.Role }
func (l *ScenePerson) SetRoleMeta(r string) { l.Role = r }

type SceneNarratedDate struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SceneID        uuid.UUID `gorm:"type:uuid;not null;index:idx_scene_narrated_date,unique" json:"scene_id"`
	NarratedDateID uuid.UUID `gorm:"type:uuid;not null;index:idx_scene_narrated_date,unique" json:"narrated_date_id"`
	Role           string    `gorm:"column:role" json:"role"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (SceneNarratedDate) TableName() string { return "scene_narrated_date" }

func (l *SceneNarratedDate) LinkID() uuid.UUID    { return l.ID }
func (l *SceneNarratedDate) OwnerID() uuid.UUID   { return l.SceneID }
func (l *SceneNarratedDate) TargetID() uuid.UUID  { return l.NarratedDateID }
func (l *SceneNarratedDate) RoleMeta() string     { return l.Role }
func (l *SceneNarratedDate) SetRoleMeta(r string) { l.Role = r }

// ThreadEntry and ArcEntry carry an explicit position; members are kept in
// entry-date order and positions are renumbered on insertion.

type ThreadEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID  uuid.UUID `gorm:"type:uuid;not null;index:idx_thread_entry,unique" json:"thread_id"`
	EntryID   uuid.UUID `gorm:"type:uuid;not null;index:idx_thread_entry,unique" json:"entry_id"`
	Position  int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ThreadEntry) TableName() string { return "thread_entry" }

type ArcEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ArcID     uuid.UUID `gorm:"type:uuid;not null;index:idx_arc_entry,unique" json:"arc_id"`
	EntryID   uuid.UUID `gorm:"type:uuid;not null;index:idx_arc_entry,unique" json:"entry_id"`
	Position  int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ArcEntry) TableName() string { return "arc_entry" }
