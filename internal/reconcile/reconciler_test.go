package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/data/repos/testutil"
	"github.com/yungbote/daybook/internal/ingestion"
	"github.com/yungbote/daybook/internal/types"
)

func newTestReconciler(t *testing.T) (*Reconciler, *repos.Set) {
	t.Helper()
	conn := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(conn, log)
	return New(conn, set, log), set
}

func mustParse(t *testing.T, doc string) *ingestion.EntryDescriptor {
	t.Helper()
	desc, err := ingestion.ParseDocument(doc)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return desc
}

func reconcileDoc(t *testing.T, r *Reconciler, doc string, mode Mode) *Report {
	t.Helper()
	report, err := r.Reconcile(context.Background(), mustParse(t, doc), mode)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	return report
}

func livePerson(t *testing.T, set *repos.Set, nameKey string) *types.Person {
	t.Helper()
	rows, err := set.People.FindLiveByName(context.Background(), nil, nameKey)
	if err != nil {
		t.Fatalf("find person %q: %v", nameKey, err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one live %q, got %d", nameKey, len(rows))
	}
	return rows[0]
}

const travelDoc = `---
date: 2024-03-15
people:
  - Alice
  - name: Bob
    role: travel companion
cities:
  - Paris
locations:
  - name: Café de Flore
    city: Paris
tags: [travel]
themes: [friendship]
---
We walked along the Seine and talked for hours.
`

func TestReconcileCreatesEverything(t *testing.T) {
	r, set := newTestReconciler(t)
	ctx := context.Background()

	report := reconcileDoc(t, r, travelDoc, ModeReplace)

	if !report.EntryCreated {
		t.Fatalf("expected entry created, report=%+v", report)
	}
	if d := report.Delta(types.KindPerson); d.Created != 2 || d.Added != 2 {
		t.Fatalf("person delta=%+v, want 2 created, 2 added", d)
	}

	alice := livePerson(t, set, "alice")
	if alice.MentionCount != 1 {
		t.Fatalf("alice mention count=%d, want 1", alice.MentionCount)
	}
	if alice.FirstSeen == nil || alice.FirstSeen.Format("2006-01-02") != "2024-03-15" {
		t.Fatalf("alice first seen=%v, want 2024-03-15", alice.FirstSeen)
	}

	// Role metadata lands on the link, not the entity.
	entry, err := set.Entries.GetByDate(ctx, nil, date(t, "2024-03-15"))
	if err != nil || entry == nil {
		t.Fatalf("entry lookup: %v, %v", entry, err)
	}
	links, err := set.EntryPeople.ListByOwner(ctx, nil, entry.ID)
	if err != nil {
		t.Fatalf("list entry people: %v", err)
	}
	bob := livePerson(t, set, "bob")
	foundRole := false
	for _, l := range links {
		if l.PersonID == bob.ID && l.Relation == "travel companion" {
			foundRole = true
		}
	}
	if !foundRole {
		t.Fatalf("expected bob link with role, links=%+v", links)
	}

	// Location picked up its structural city.
	locs, err := set.Locations.FindLiveByName(ctx, nil, "cafe de flore")
	if err != nil || len(locs) != 1 {
		t.Fatalf("location lookup: %v, %v", locs, err)
	}
	if locs[0].CityID == nil {
		t.Fatalf("location has no city id")
	}
}

func TestReconcileIdempotent(t *testing.T) {
	r, _ := newTestReconciler(t)

	reconcileDoc(t, r, travelDoc, ModeReplace)
	second := reconcileDoc(t, r, travelDoc, ModeReplace)

	if n := second.Changes(); n != 0 {
		t.Fatalf("second pass made %d changes, want 0: %+v", n, second.Deltas)
	}
}

func TestReplaceRemovesUndeclaredAndTombstonesOrphans(t *testing.T) {
	r, set := newTestReconciler(t)
	ctx := context.Background()

	reconcileDoc(t, r, travelDoc, ModeReplace)

	// Same date, Bob no longer declared.
	report := reconcileDoc(t, r, `---
date: 2024-03-15
people: [Alice]
cities: [Paris]
locations:
  - name: Café de Flore
    city: Paris
tags: [travel]
themes: [friendship]
---
We walked along the Seine and talked for hours.
`, ModeReplace)

	d := report.Delta(types.KindPerson)
	if d.Removed != 1 || d.Tombstoned != 1 {
		t.Fatalf("person delta=%+v, want 1 removed, 1 tombstoned", d)
	}

	// Bob lost his last reference and entered the grace period.
	tombstoned, err := set.People.FindTombstonedByKey(ctx, nil, "bob", "")
	if err != nil || len(tombstoned) != 1 {
		t.Fatalf("tombstoned bob lookup: %v, %v", tombstoned, err)
	}
	// Alice is untouched.
	if alice := livePerson(t, set, "alice"); alice.MentionCount != 1 {
		t.Fatalf("alice mention count=%d, want 1", alice.MentionCount)
	}
}

func TestMergeModeOnlyAdds(t *testing.T) {
	r, set := newTestReconciler(t)

	reconcileDoc(t, r, travelDoc, ModeReplace)
	report := reconcileDoc(t, r, `---
date: 2024-03-15
people: [Carol]
---
We walked along the Seine and talked for hours.
`, ModeMerge)

	d := report.Delta(types.KindPerson)
	if d.Added != 1 || d.Removed != 0 {
		t.Fatalf("person delta=%+v, want 1 added, 0 removed", d)
	}
	for _, key := range []string{"alice", "bob", "carol"} {
		livePerson(t, set, key)
	}
}

func TestMentionCountAndAppearanceAcrossEntries(t *testing.T) {
	r, set := newTestReconciler(t)

	reconcileDoc(t, r, `---
date: 2024-03-15
people: [Alice]
---
first
`, ModeReplace)
	reconcileDoc(t, r, `---
date: 2024-05-01
people: [Alice]
---
second
`, ModeReplace)

	alice := livePerson(t, set, "alice")
	if alice.MentionCount != 2 {
		t.Fatalf("mention count=%d, want 2", alice.MentionCount)
	}
	if alice.FirstSeen.Format("2006-01-02") != "2024-03-15" {
		t.Fatalf("first seen=%v", alice.FirstSeen)
	}
	if alice.LastSeen.Format("2006-01-02") != "2024-05-01" {
		t.Fatalf("last seen=%v", alice.LastSeen)
	}
}

func TestBareMentionKeepsStoredRole(t *testing.T) {
	r, set := newTestReconciler(t)
	ctx := context.Background()

	reconcileDoc(t, r, `---
date: 2024-03-15
people:
  - name: Alice
    role: friend
---
body
`, ModeReplace)

	// Bare re-mention: stored role must survive.
	reconcileDoc(t, r, `---
date: 2024-03-15
people: [Alice]
---
body
`, ModeReplace)

	entry, err := set.Entries.GetByDate(ctx, nil, date(t, "2024-03-15"))
	if err != nil || entry == nil {
		t.Fatalf("entry lookup: %v, %v", entry, err)
	}
	links, _ := set.EntryPeople.ListByOwner(ctx, nil, entry.ID)
	if len(links) != 1 || links[0].Relation != "friend" {
		t.Fatalf("links=%+v, want role friend kept", links)
	}

	// A different declared role does update.
	report := reconcileDoc(t, r, `---
date: 2024-03-15
people:
  - name: Alice
    role: colleague
---
body
`, ModeReplace)
	if d := report.Delta(types.KindPerson); d.Updated != 1 {
		t.Fatalf("person delta=%+v, want 1 updated", d)
	}
	links, _ = set.EntryPeople.ListByOwner(ctx, nil, entry.ID)
	if len(links) != 1 || links[0].Relation != "colleague" {
		t.Fatalf("links=%+v, want role colleague", links)
	}
}

func TestDisambiguatorSeparatesAndBareNameIsAmbiguous(t *testing.T) {
	r, set := newTestReconciler(t)

	reconcileDoc(t, r, `---
date: 2024-03-15
people:
  - name: Bob
    disambiguator: dentist
  - name: Bob
    disambiguator: neighbor
---
body
`, ModeReplace)

	rows, err := set.People.FindLiveByName(context.Background(), nil, "bob")
	if err != nil || len(rows) != 2 {
		t.Fatalf("expected two live bobs, got %d (%v)", len(rows), err)
	}

	_, err = r.Reconcile(context.Background(), mustParse(t, `---
date: 2024-03-16
people: [Bob]
---
body
`), ModeReplace)
	var ambiguous *AmbiguousReferenceError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousReferenceError, got %v", err)
	}
	if ambiguous.Kind != types.KindPerson || len(ambiguous.Candidates) != 2 {
		t.Fatalf("ambiguous=%+v", ambiguous)
	}

	// The failed pass must not have created an entry.
	entry, err := set.Entries.GetByDate(context.Background(), nil, date(t, "2024-03-16"))
	if err != nil {
		t.Fatalf("entry lookup: %v", err)
	}
	if entry != nil {
		t.Fatalf("failed pass leaked an entry: %+v", entry)
	}
}

func TestEntryContentUpdateOnly(t *testing.T) {
	r, set := newTestReconciler(t)

	reconcileDoc(t, r, `---
date: 2024-03-15
---
old body
`, ModeReplace)
	report := reconcileDoc(t, r, `---
date: 2024-03-15
---
new body with more words
`, ModeReplace)

	if !report.EntryUpdated || report.EntryCreated {
		t.Fatalf("report=%+v, want updated not created", report)
	}
	entry, err := set.Entries.GetByDate(context.Background(), nil, date(t, "2024-03-15"))
	if err != nil || entry == nil {
		t.Fatalf("entry lookup: %v, %v", entry, err)
	}
	if entry.WordCount != 5 {
		t.Fatalf("word count=%d, want 5", entry.WordCount)
	}
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}
