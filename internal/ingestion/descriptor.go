// Package ingestion turns authored source documents (a YAML metadata
// block followed by the entry body) into the per-entry descriptor the
// reconciler consumes. It has no consistency obligations of its own:
// everything it emits is re-validated by the reconcile engine.
package ingestion

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Spec is the common declared reference: a display name, an optional
// disambiguator for colliding names, optional role metadata carried on
// the association, and extra attributes forwarded to the resolver's
// editable-field refresh.
type Spec struct {
	Name          string            `yaml:"name" json:"name"`
	Disambiguator string            `yaml:"disambiguator,omitempty" json:"disambiguator,omitempty"`
	Role          string            `yaml:"role,omitempty" json:"role,omitempty"`
	Attrs         map[string]string `yaml:"attrs,omitempty" json:"attrs,omitempty"`
}

// UnmarshalYAML accepts both the scalar shorthand ("Alice") and the full
// mapping form ({name: Alice, disambiguator: dentist}).
func (s *Spec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		s.Name = value.Value
		return nil
	}
	type plain Spec
	return value.Decode((*plain)(s))
}

// LocationSpec may name the city the location sits in; the city is
// resolved as its own entity before the location is created.
type LocationSpec struct {
	Spec `yaml:",inline"`
	City *Spec `yaml:"city,omitempty" json:"city,omitempty"`
}

func (s *LocationSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		s.Name = value.Value
		return nil
	}
	type plain LocationSpec
	return value.Decode((*plain)(s))
}

// ReferenceSpec declares a quoted reference. The source is mandatory: a
// reference without a resolvable source is rejected, never created with
// a null source.
type ReferenceSpec struct {
	Source  Spec   `yaml:"source" json:"source"`
	Quote   string `yaml:"quote" json:"quote"`
	Speaker string `yaml:"speaker,omitempty" json:"speaker,omitempty"`
}

// PoemSpec declares a poem draft. Content is versioned append-only: a new
// version row is written only when the content digest differs from the
// latest stored version.
type PoemSpec struct {
	Spec    `yaml:",inline"`
	Content string `yaml:"content" json:"content"`
}

// SceneSpec declares a narrative scene owned by this entry. Scenes are
// deduplicated per entry by title, not globally.
type SceneSpec struct {
	Title         string        `yaml:"title" json:"title"`
	TimeOfDay     string        `yaml:"time_of_day,omitempty" json:"time_of_day,omitempty"`
	Summary       string        `yaml:"summary,omitempty" json:"summary,omitempty"`
	Location      *LocationSpec `yaml:"location,omitempty" json:"location,omitempty"`
	Event         *Spec         `yaml:"event,omitempty" json:"event,omitempty"`
	People        []Spec        `yaml:"people,omitempty" json:"people,omitempty"`
	NarratedDates []Spec        `yaml:"narrated_dates,omitempty" json:"narrated_dates,omitempty"`
}

// SpanSpec declares membership of this entry in a thread or arc. Part,
// when set, asserts the entry's 1-based position among members; a part
// that contradicts chronological entry order is an ordering violation.
type SpanSpec struct {
	Spec `yaml:",inline"`
	Part *int `yaml:"part,omitempty" json:"part,omitempty"`
}

func (s *SpanSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		s.Name = value.Value
		return nil
	}
	type plain SpanSpec
	return value.Decode((*plain)(s))
}

// MotifSpec declares one motif instance: the motif plus a textual locator
// (an excerpt or a scene reference). Duplicate instances with the same
// locator collapse idempotently.
type MotifSpec struct {
	Spec    `yaml:",inline"`
	Locator string `yaml:"locator,omitempty" json:"locator,omitempty"`
}

func (s *MotifSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		s.Name = value.Value
		return nil
	}
	type plain MotifSpec
	return value.Decode((*plain)(s))
}

// EntryDescriptor is everything the reconciler needs for one entry: its
// date, body fingerprint, and the declared association lists.
type EntryDescriptor struct {
	Date          time.Time `json:"date"`
	ContentDigest string    `json:"content_digest"`
	WordCount     int       `json:"word_count"`

	People        []Spec          `json:"people,omitempty"`
	Cities        []Spec          `json:"cities,omitempty"`
	Locations     []LocationSpec  `json:"locations,omitempty"`
	Events        []Spec          `json:"events,omitempty"`
	Tags          []Spec          `json:"tags,omitempty"`
	Themes        []Spec          `json:"themes,omitempty"`
	References    []ReferenceSpec `json:"references,omitempty"`
	Poems         []PoemSpec      `json:"poems,omitempty"`
	NarratedDates []Spec          `json:"narrated_dates,omitempty"`
	Scenes        []SceneSpec     `json:"scenes,omitempty"`
	Threads       []SpanSpec      `json:"threads,omitempty"`
	Arcs          []SpanSpec      `json:"arcs,omitempty"`
	Motifs        []MotifSpec     `json:"motifs,omitempty"`
}
