package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/daybook/internal/types"
)

func TestPoemVersioning(t *testing.T) {
	r, set := newTestReconciler(t)
	ctx := context.Background()

	reconcileDoc(t, r, `---
date: 2024-03-15
poems:
  - name: Riverlight
    content: |
      the water keeps
      what the day forgets
---
body
`, ModeReplace)

	poems, err := set.Poems.FindLiveByName(ctx, nil, "riverlight")
	if err != nil || len(poems) != 1 {
		t.Fatalf("poem lookup: %v, %v", poems, err)
	}
	poem := poems[0]
	if poem.LatestSeq != 1 {
		t.Fatalf("latest seq=%d, want 1", poem.LatestSeq)
	}

	// Identical content: no new version.
	second := reconcileDoc(t, r, `---
date: 2024-03-15
poems:
  - name: Riverlight
    content: |
      the water keeps
      what the day forgets
---
body
`, ModeReplace)
	if n := second.Changes(); n != 0 {
		t.Fatalf("identical content made %d changes", n)
	}

	// Revised content appends a version and never rewrites history.
	third := reconcileDoc(t, r, `---
date: 2024-03-15
poems:
  - name: Riverlight
    content: |
      the water keeps
      what the day lets go
---
body
`, ModeReplace)
	if d := third.Delta(types.KindPoem); d.Updated != 1 {
		t.Fatalf("poem delta=%+v, want 1 updated", d)
	}

	versions, err := set.PoemVersions.ListByPoem(ctx, nil, poem.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("versions=%d, want 2", len(versions))
	}
	if versions[0].Seq == versions[1].Seq {
		t.Fatalf("duplicate seq: %+v", versions)
	}
}

func TestReferenceResolvesSourceAndDedupes(t *testing.T) {
	r, set := newTestReconciler(t)
	ctx := context.Background()

	doc := `---
date: 2024-03-15
references:
  - source: Letters to a Young Poet
    quote: "Live the questions now."
    speaker: Rilke
---
body
`
	report := reconcileDoc(t, r, doc, ModeReplace)
	if d := report.Delta(types.KindReferenceSource); d.Created != 1 {
		t.Fatalf("source delta=%+v, want 1 created", d)
	}

	sources, err := set.ReferenceSources.FindLiveByName(ctx, nil, "letters to a young poet")
	if err != nil || len(sources) != 1 {
		t.Fatalf("source lookup: %v, %v", sources, err)
	}
	if sources[0].MentionCount != 1 {
		t.Fatalf("source mention count=%d, want 1", sources[0].MentionCount)
	}

	// Same quote again: deduped on (entry, source, digest).
	second := reconcileDoc(t, r, doc, ModeReplace)
	if n := second.Changes(); n != 0 {
		t.Fatalf("re-reconcile made %d changes", n)
	}

	entry, err := set.Entries.GetByDate(ctx, nil, date(t, "2024-03-15"))
	if err != nil || entry == nil {
		t.Fatalf("entry lookup: %v, %v", entry, err)
	}
	refs, err := set.References.ListByEntry(ctx, nil, entry.ID)
	if err != nil || len(refs) != 1 {
		t.Fatalf("references=%v, %v, want 1", refs, err)
	}
	if refs[0].Speaker != "Rilke" {
		t.Fatalf("speaker=%q", refs[0].Speaker)
	}
}

func TestReferenceWithoutQuoteRejected(t *testing.T) {
	r, _ := newTestReconciler(t)

	_, err := r.Reconcile(context.Background(), mustParse(t, `---
date: 2024-03-15
references:
  - source: Some Book
---
body
`), ModeReplace)
	var invalid *InvalidAssociationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidAssociationError, got %v", err)
	}
}

func TestSceneCascadeAndRemoval(t *testing.T) {
	r, set := newTestReconciler(t)
	ctx := context.Background()

	reconcileDoc(t, r, `---
date: 2024-03-15
scenes:
  - title: Morning at the market
    time_of_day: morning
    location:
      name: Marché Bastille
      city: Paris
    people: [Alice]
    narrated_dates: ["2024-03-14"]
---
body
`, ModeReplace)

	entry, err := set.Entries.GetByDate(ctx, nil, date(t, "2024-03-15"))
	if err != nil || entry == nil {
		t.Fatalf("entry lookup: %v, %v", entry, err)
	}
	scenes, err := set.Scenes.ListByEntry(ctx, nil, entry.ID)
	if err != nil || len(scenes) != 1 {
		t.Fatalf("scenes=%v, %v, want 1", scenes, err)
	}
	scene := scenes[0]
	if scene.LocationID == nil {
		t.Fatalf("scene location not resolved")
	}

	// Cascaded people landed as scene-side links and entity rows.
	people, err := set.ScenePeople.ListByOwner(ctx, nil, scene.ID)
	if err != nil || len(people) != 1 {
		t.Fatalf("scene people=%v, %v, want 1", people, err)
	}
	alice := livePerson(t, set, "alice")
	if people[0].PersonID != alice.ID {
		t.Fatalf("scene person=%s, want alice %s", people[0].PersonID, alice.ID)
	}

	// Idempotence.
	second := reconcileDoc(t, r, `---
date: 2024-03-15
scenes:
  - title: Morning at the market
    time_of_day: morning
    location:
      name: Marché Bastille
      city: Paris
    people: [Alice]
    narrated_dates: ["2024-03-14"]
---
body
`, ModeReplace)
	if n := second.Changes(); n != 0 {
		t.Fatalf("second pass made %d changes", n)
	}

	// Dropping the scene tombstones it; its declaration was its only
	// reference.
	third := reconcileDoc(t, r, `---
date: 2024-03-15
---
body
`, ModeReplace)
	if d := third.Delta(types.KindScene); d.Tombstoned != 1 {
		t.Fatalf("scene delta=%+v, want 1 tombstoned", d)
	}
	scenes, _ = set.Scenes.ListByEntry(ctx, nil, entry.ID)
	if len(scenes) != 0 {
		t.Fatalf("live scenes=%d, want 0", len(scenes))
	}
}

func TestMotifInstancesCollapseOnLocator(t *testing.T) {
	r, set := newTestReconciler(t)
	ctx := context.Background()

	doc := `---
date: 2024-03-15
motifs:
  - name: the river
    locator: "paragraph 3"
  - name: the river
    locator: "paragraph 7"
---
body
`
	report := reconcileDoc(t, r, doc, ModeReplace)
	d := report.Delta(types.KindMotif)
	if d.Created != 1 || d.Added != 2 {
		t.Fatalf("motif delta=%+v, want 1 created, 2 added", d)
	}

	second := reconcileDoc(t, r, doc, ModeReplace)
	if n := second.Changes(); n != 0 {
		t.Fatalf("second pass made %d changes", n)
	}

	entry, err := set.Entries.GetByDate(ctx, nil, date(t, "2024-03-15"))
	if err != nil || entry == nil {
		t.Fatalf("entry lookup: %v, %v", entry, err)
	}
	instances, err := set.MotifInstances.ListByEntry(ctx, nil, entry.ID)
	if err != nil || len(instances) != 2 {
		t.Fatalf("instances=%v, %v, want 2", instances, err)
	}
}

func TestThreadChronologicalOrdering(t *testing.T) {
	r, set := newTestReconciler(t)
	ctx := context.Background()

	// Reconcile out of date order; positions must follow entry dates.
	reconcileDoc(t, r, `---
date: 2024-05-01
threads: [spring trip]
---
later
`, ModeReplace)
	reconcileDoc(t, r, `---
date: 2024-03-15
threads: [spring trip]
---
earlier
`, ModeReplace)

	threads, err := set.Threads.FindLiveByName(ctx, nil, "spring trip")
	if err != nil || len(threads) != 1 {
		t.Fatalf("thread lookup: %v, %v", threads, err)
	}
	members, err := set.ThreadEntries.ListByGroup(ctx, nil, threads[0].ID)
	if err != nil || len(members) != 2 {
		t.Fatalf("members=%v, %v, want 2", members, err)
	}

	byPos := map[int]string{}
	for _, m := range members {
		entry, err := set.Entries.GetByID(ctx, nil, m.EntryID)
		if err != nil || entry == nil {
			t.Fatalf("member entry lookup: %v, %v", entry, err)
		}
		byPos[m.Position] = entry.DateKey()
	}
	if byPos[0] != "2024-03-15" || byPos[1] != "2024-05-01" {
		t.Fatalf("positions=%v, want chronological", byPos)
	}
}

func TestThreadDeclaredPartViolation(t *testing.T) {
	r, set := newTestReconciler(t)
	ctx := context.Background()

	reconcileDoc(t, r, `---
date: 2024-03-15
threads: [spring trip]
---
first
`, ModeReplace)

	// 2024-04-01 ranks second; declaring part 1 contradicts chronology.
	_, err := r.Reconcile(ctx, mustParse(t, `---
date: 2024-04-01
threads:
  - name: spring trip
    part: 1
---
second
`), ModeReplace)
	var ordering *OrderingViolationError
	if !errors.As(err, &ordering) {
		t.Fatalf("expected OrderingViolationError, got %v", err)
	}
	if ordering.DeclaredPart != 1 || ordering.ExpectedPart != 2 {
		t.Fatalf("ordering=%+v", ordering)
	}

	// Rolled back: member list unchanged.
	threads, _ := set.Threads.FindLiveByName(ctx, nil, "spring trip")
	members, _ := set.ThreadEntries.ListByGroup(ctx, nil, threads[0].ID)
	if len(members) != 1 {
		t.Fatalf("members=%d after failed pass, want 1", len(members))
	}

	// The correct part is accepted.
	report := reconcileDoc(t, r, `---
date: 2024-04-01
threads:
  - name: spring trip
    part: 2
---
second
`, ModeReplace)
	if d := report.Delta(types.KindThread); d.Added != 1 {
		t.Fatalf("thread delta=%+v, want 1 added", d)
	}
}
