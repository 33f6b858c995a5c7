package ingestion

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/daybook/internal/pkg/digest"
)

const frontMatterDelim = "---"

type frontMatter struct {
	Date          string          `yaml:"date"`
	People        []Spec          `yaml:"people"`
	Cities        []Spec          `yaml:"cities"`
	Locations     []LocationSpec  `yaml:"locations"`
	Events        []Spec          `yaml:"events"`
	Tags          []Spec          `yaml:"tags"`
	Themes        []Spec          `yaml:"themes"`
	References    []ReferenceSpec `yaml:"references"`
	Poems         []PoemSpec      `yaml:"poems"`
	NarratedDates []Spec          `yaml:"narrated_dates"`
	Scenes        []SceneSpec     `yaml:"scenes"`
	Threads       []SpanSpec      `yaml:"threads"`
	Arcs          []SpanSpec      `yaml:"arcs"`
	Motifs        []MotifSpec     `yaml:"motifs"`
}

// ParseDocument splits an authored document into its YAML metadata block
// and body, and builds the entry descriptor. The body contributes only
// the word count and content digest.
func ParseDocument(raw string) (*EntryDescriptor, error) {
	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, err
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return nil, fmt.Errorf("parse metadata block: %w", err)
	}
	if fm.Date == "" {
		return nil, fmt.Errorf("metadata block missing date")
	}
	date, err := time.Parse("2006-01-02", fm.Date)
	if err != nil {
		return nil, fmt.Errorf("parse entry date %q: %w", fm.Date, err)
	}

	return &EntryDescriptor{
		Date:          date,
		ContentDigest: digest.Of(body),
		WordCount:     len(strings.Fields(body)),

		People:        fm.People,
		Cities:        fm.Cities,
		Locations:     fm.Locations,
		Events:        fm.Events,
		Tags:          fm.Tags,
		Themes:        fm.Themes,
		References:    fm.References,
		Poems:         fm.Poems,
		NarratedDates: fm.NarratedDates,
		Scenes:        fm.Scenes,
		Threads:       fm.Threads,
		Arcs:          fm.Arcs,
		Motifs:        fm.Motifs,
	}, nil
}

func splitFrontMatter(raw string) (meta, body string, err error) {
	s := strings.TrimLeft(raw, "\uFEFF\n\r ")
	if !strings.HasPrefix(s, frontMatterDelim) {
		return "", "", fmt.Errorf("document has no metadata block")
	}
	rest := s[len(frontMatterDelim):]
	idx := strings.Index(rest, "\n"+frontMatterDelim)
	if idx < 0 {
		return "", "", fmt.Errorf("metadata block not terminated")
	}
	meta = rest[:idx]
	body = rest[idx+len("\n"+frontMatterDelim):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	return meta, body, nil
}
