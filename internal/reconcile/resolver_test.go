package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/data/repos/testutil"
	"github.com/yungbote/daybook/internal/ingestion"
	"github.com/yungbote/daybook/internal/types"
)

func TestResolverResurrectsTombstonedKey(t *testing.T) {
	r, set := newTestReconciler(t)
	ctx := context.Background()

	reconcileDoc(t, r, `---
date: 2024-03-15
people:
  - name: Alice
    attrs:
      relation: friend
---
body
`, ModeReplace)
	alice := livePerson(t, set, "alice")

	if err := set.People.TombstoneByIDs(ctx, nil, []uuid.UUID{alice.ID}); err != nil {
		t.Fatalf("tombstone: %v", err)
	}

	report := reconcileDoc(t, r, `---
date: 2024-04-01
people:
  - name: Alice
    attrs:
      notes: back again
---
body
`, ModeMerge)
	if d := report.Delta(types.KindPerson); d.Resurrected != 1 || d.Created != 0 {
		t.Fatalf("person delta=%+v, want 1 resurrected", d)
	}

	revived := livePerson(t, set, "alice")
	if revived.ID != alice.ID {
		t.Fatalf("resurrection changed identity: %s -> %s", alice.ID, revived.ID)
	}
	if revived.Relation != "friend" || revived.Notes != "back again" {
		t.Fatalf("editable fields=%+v", revived)
	}
	if revived.IsTombstoned() {
		t.Fatalf("still tombstoned after resurrection")
	}
}

func TestResolverAttrsRefreshExisting(t *testing.T) {
	r, set := newTestReconciler(t)

	reconcileDoc(t, r, `---
date: 2024-03-15
people: [Alice]
---
body
`, ModeReplace)
	reconcileDoc(t, r, `---
date: 2024-04-01
people:
  - name: Alice
    attrs:
      relation: sister
---
body
`, ModeReplace)

	alice := livePerson(t, set, "alice")
	if alice.Relation != "sister" {
		t.Fatalf("relation=%q, want sister", alice.Relation)
	}
}

func TestResolverRejectsInvalidNarratedDate(t *testing.T) {
	r, _ := newTestReconciler(t)

	_, err := r.Reconcile(context.Background(), mustParse(t, `---
date: 2024-03-15
narrated_dates: ["march 14th"]
---
body
`), ModeReplace)
	var invalid *InvalidAssociationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidAssociationError, got %v", err)
	}
	if invalid.Kind != types.KindNarratedDate {
		t.Fatalf("kind=%s", invalid.Kind)
	}
}

func TestResolverConcurrentEntriesShareOneCity(t *testing.T) {
	conn := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(conn, log)
	r := New(conn, set, log)

	// SQLite allows one writer at a time; a single pooled connection
	// serializes the transactions while the goroutines still race through
	// the resolver and its key locks.
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	docs := []string{
		"---\ndate: 2024-03-15\ncities: [Paris]\n---\na\n",
		"---\ndate: 2024-03-16\ncities: [Paris]\n---\nb\n",
	}
	errs := make([]error, len(docs))
	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc string) {
			defer wg.Done()
			desc, err := ingestion.ParseDocument(doc)
			if err != nil {
				errs[i] = err
				return
			}
			_, errs[i] = r.Reconcile(context.Background(), desc, ModeReplace)
		}(i, doc)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("reconcile %d: %v", i, err)
		}
	}

	rows, err := set.Cities.FindLiveByName(context.Background(), nil, "paris")
	if err != nil {
		t.Fatalf("find paris: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("live paris rows=%d, want 1", len(rows))
	}
	if rows[0].MentionCount != 2 {
		t.Fatalf("mention count=%d, want 2", rows[0].MentionCount)
	}
}

func TestResolverSharedKeyAcrossEntries(t *testing.T) {
	r, set := newTestReconciler(t)

	// Two entries, same city in different spellings: one row.
	reconcileDoc(t, r, `---
date: 2024-03-15
cities: ["Paris"]
---
a
`, ModeReplace)
	reconcileDoc(t, r, `---
date: 2024-04-01
cities: ["  PARIS "]
---
b
`, ModeReplace)

	rows, err := set.Cities.FindLiveByName(context.Background(), nil, "paris")
	if err != nil || len(rows) != 1 {
		t.Fatalf("cities=%d (%v), want 1", len(rows), err)
	}
	if rows[0].MentionCount != 2 {
		t.Fatalf("mention count=%d, want 2", rows[0].MentionCount)
	}
}
