package ingestion

import (
	"strings"
	"testing"

	"github.com/yungbote/daybook/internal/pkg/digest"
)

const sampleDoc = `---
date: 2024-03-15
people:
  - Alice
  - name: Bob
    disambiguator: dentist
    role: physician
cities:
  - Paris
locations:
  - name: Café de Flore
    city: Paris
tags: [travel]
threads:
  - name: spring trip
    part: 2
motifs:
  - name: the river
    locator: "paragraph 3"
---
We walked along the Seine and talked for hours.
`

func TestParseDocument(t *testing.T) {
	desc, err := ParseDocument(sampleDoc)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if got := desc.Date.Format("2006-01-02"); got != "2024-03-15" {
		t.Fatalf("date=%s, want 2024-03-15", got)
	}
	if desc.WordCount != 9 {
		t.Fatalf("word count=%d, want 9", desc.WordCount)
	}
	if want := digest.Of("We walked along the Seine and talked for hours."); desc.ContentDigest != want {
		t.Fatalf("content digest=%s, want %s", desc.ContentDigest, want)
	}

	if len(desc.People) != 2 {
		t.Fatalf("people=%d, want 2", len(desc.People))
	}
	if desc.People[0].Name != "Alice" {
		t.Fatalf("scalar shorthand person=%q, want Alice", desc.People[0].Name)
	}
	if desc.People[1].Disambiguator != "dentist" || desc.People[1].Role != "physician" {
		t.Fatalf("mapping form person=%+v", desc.People[1])
	}

	if len(desc.Locations) != 1 || desc.Locations[0].City == nil || desc.Locations[0].City.Name != "Paris" {
		t.Fatalf("locations=%+v", desc.Locations)
	}
	if len(desc.Tags) != 1 || desc.Tags[0].Name != "travel" {
		t.Fatalf("tags=%+v", desc.Tags)
	}
	if len(desc.Threads) != 1 || desc.Threads[0].Part == nil || *desc.Threads[0].Part != 2 {
		t.Fatalf("threads=%+v", desc.Threads)
	}
	if len(desc.Motifs) != 1 || desc.Motifs[0].Locator != "paragraph 3" {
		t.Fatalf("motifs=%+v", desc.Motifs)
	}
}

func TestParseDocumentStripsByteOrderMark(t *testing.T) {
	desc, err := ParseDocument("\uFEFF" + sampleDoc)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if got := desc.Date.Format("2006-01-02"); got != "2024-03-15" {
		t.Fatalf("date=%s, want 2024-03-15", got)
	}
}

func TestParseDocumentDigestStableAcrossTrailingWhitespace(t *testing.T) {
	a, err := ParseDocument(sampleDoc)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	b, err := ParseDocument(sampleDoc + "\n\n")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if a.ContentDigest != b.ContentDigest {
		t.Fatalf("digest changed on trailing whitespace: %s vs %s", a.ContentDigest, b.ContentDigest)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "no_front_matter", raw: "just text", want: "no metadata block"},
		{name: "unterminated", raw: "---\ndate: 2024-01-01\n", want: "not terminated"},
		{name: "missing_date", raw: "---\npeople: [Alice]\n---\nbody", want: "missing date"},
		{name: "bad_date", raw: "---\ndate: 15-03-2024\n---\nbody", want: "parse entry date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDocument(tc.raw)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error=%q, want substring %q", err.Error(), tc.want)
			}
		})
	}
}
