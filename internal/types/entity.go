// Package types holds the GORM models for the archive's relational store.
//
// Canonical entities (people, places, events, ...) are deduplicated by
// natural key: a normalized name plus an optional disambiguator. The
// invariant is that no two non-tombstoned rows of one kind share a key;
// the reconcile.Resolver enforces it under a per-key lock. DeletedAt is
// the tombstone timestamp of the active/tombstoned/purged lifecycle.
package types

import (
	"time"

	"github.com/google/uuid"
)

type EntityKind string

const (
	KindPerson          EntityKind = "person"
	KindCity            EntityKind = "city"
	KindLocation        EntityKind = "location"
	KindEvent           EntityKind = "event"
	KindTag             EntityKind = "tag"
	KindTheme           EntityKind = "theme"
	KindPoem            EntityKind = "poem"
	KindReferenceSource EntityKind = "reference_source"
	KindReference       EntityKind = "reference"
	KindNarratedDate    EntityKind = "narrated_date"
	KindScene           EntityKind = "scene"
	KindThread          EntityKind = "thread"
	KindArc             EntityKind = "arc"
	KindMotif           EntityKind = "motif"
)

// ParseEntityKind validates a kind string from an API path.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch k := EntityKind(s); k {
	case KindPerson, KindCity, KindLocation, KindEvent, KindTag, KindTheme,
		KindPoem, KindReferenceSource, KindReference, KindNarratedDate,
		KindScene, KindThread, KindArc, KindMotif:
		return k, true
	}
	return "", false
}

// CatalogEntity is implemented by every canonical entity model that is
// resolved by natural key. Editable fields may be written from resolution
// input and from note-page merge-back; computed fields (mention counts,
// first/last seen) are written only by the reconciler's aggregate refresh.
type CatalogEntity interface {
	EntityKind() EntityKind
	GetID() uuid.UUID
	EnsureID()
	GetName() string
	// NaturalKey returns (name_key, disambiguator).
	NaturalKey() (string, string)
	SetIdentity(name, nameKey, disambiguator string)
	IsTombstoned() bool

	// EditableFields returns a copy of the fields the note-page
	// representation owns, keyed by field name.
	EditableFields() map[string]string
	// ApplyEditable sets any editable fields present in attrs and
	// reports whether anything changed. Unknown keys are ignored.
	ApplyEditable(attrs map[string]string) bool
}

// Appearance is the computed first/last seen pair shared by entity kinds.
type Appearance struct {
	FirstSeen *time.Time `gorm:"column:first_seen" json:"first_seen,omitempty"`
	LastSeen  *time.Time `gorm:"column:last_seen" json:"last_seen,omitempty"`
}

func applyString(dst *string, attrs map[string]string, key string, changed *bool) {
	v, ok := attrs[key]
	if !ok || v == *dst {
		return
	}
	*dst = v
	*changed = true
}
