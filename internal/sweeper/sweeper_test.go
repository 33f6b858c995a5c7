package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/data/repos/testutil"
	"github.com/yungbote/daybook/internal/ingestion"
	"github.com/yungbote/daybook/internal/pkg/textkey"
	"github.com/yungbote/daybook/internal/reconcile"
	"github.com/yungbote/daybook/internal/types"
)

func newTestEnv(t *testing.T, grace time.Duration) (*Sweeper, *reconcile.Reconciler, *repos.Set, *gorm.DB) {
	t.Helper()
	conn := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(conn, log)
	return New(conn, set, grace, log), reconcile.New(conn, set, log), set, conn
}

func reconcileDoc(t *testing.T, r *reconcile.Reconciler, doc string) {
	t.Helper()
	desc, err := ingestion.ParseDocument(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := r.Reconcile(context.Background(), desc, reconcile.ModeReplace); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
}

func createPerson(t *testing.T, set *repos.Set, name string) *types.Person {
	t.Helper()
	p := &types.Person{}
	p.EnsureID()
	p.SetIdentity(name, textkey.Normalize(name), "")
	if err := set.People.Create(context.Background(), nil, p); err != nil {
		t.Fatalf("create person: %v", err)
	}
	return p
}

func TestSweepTombstonesZeroReferenceStragglers(t *testing.T) {
	sw, _, set, _ := newTestEnv(t, time.Hour)
	ctx := context.Background()

	orphan := createPerson(t, set, "Nobody")

	result, err := sw.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Tombstoned[types.KindPerson] != 1 {
		t.Fatalf("tombstoned=%v, want 1 person", result.Tombstoned)
	}
	// Inside the grace window: not purged.
	if result.Purged[types.KindPerson] != 0 {
		t.Fatalf("purged=%v, want none", result.Purged)
	}

	rows, err := set.People.GetByIDs(ctx, nil, []uuid.UUID{orphan.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("person lookup: %v, %v", rows, err)
	}
	if !rows[0].IsTombstoned() {
		t.Fatalf("expected tombstone on %s", rows[0].Name)
	}
}

func TestSweepPurgesExpiredTombstones(t *testing.T) {
	sw, _, set, _ := newTestEnv(t, 0)
	ctx := context.Background()

	gone := createPerson(t, set, "Forgotten")
	if err := set.People.TombstoneByIDs(ctx, nil, []uuid.UUID{gone.ID}); err != nil {
		t.Fatalf("tombstone: %v", err)
	}
	// The tombstone timestamp must fall before the sweep cutoff.
	time.Sleep(5 * time.Millisecond)

	result, err := sw.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Purged[types.KindPerson] != 1 {
		t.Fatalf("purged=%v, want 1 person", result.Purged)
	}

	rows, err := set.People.GetByIDs(ctx, nil, []uuid.UUID{gone.ID})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("row survived purge: %+v", rows)
	}
}

func TestSweepSkipsPurgeWhenReferencesReappear(t *testing.T) {
	sw, r, set, _ := newTestEnv(t, 0)
	ctx := context.Background()

	reconcileDoc(t, r, `---
date: 2024-03-15
people: [Alice]
---
body
`)
	alice, err := set.People.FindLiveByName(ctx, nil, "alice")
	if err != nil || len(alice) != 1 {
		t.Fatalf("alice lookup: %v, %v", alice, err)
	}

	// Tombstoned by hand while her entry link still exists: the purge
	// re-check must refuse.
	if err := set.People.TombstoneByIDs(ctx, nil, []uuid.UUID{alice[0].ID}); err != nil {
		t.Fatalf("tombstone: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	result, err := sw.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Skipped != 1 {
		t.Fatalf("skipped=%d, want 1", result.Skipped)
	}
	if result.Purged[types.KindPerson] != 0 {
		t.Fatalf("purged=%v, want none", result.Purged)
	}

	rows, _ := set.People.GetByIDs(ctx, nil, []uuid.UUID{alice[0].ID})
	if len(rows) != 1 {
		t.Fatalf("row purged despite live reference")
	}
}

func TestSweepPurgesPoemWithVersions(t *testing.T) {
	sw, r, set, _ := newTestEnv(t, 0)
	ctx := context.Background()

	reconcileDoc(t, r, `---
date: 2024-03-15
poems:
  - name: Riverlight
    content: some lines
---
body
`)
	poems, err := set.Poems.FindLiveByName(ctx, nil, "riverlight")
	if err != nil || len(poems) != 1 {
		t.Fatalf("poem lookup: %v, %v", poems, err)
	}
	poemID := poems[0].ID

	// Withdraw the declaration: the poem loses its last reference and
	// is tombstoned inline by the reconciler.
	reconcileDoc(t, r, `---
date: 2024-03-15
---
body
`)
	time.Sleep(5 * time.Millisecond)

	result, err := sw.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Purged[types.KindPoem] != 1 {
		t.Fatalf("purged=%v, want 1 poem", result.Purged)
	}

	versions, err := set.PoemVersions.ListByPoem(ctx, nil, poemID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("versions survived purge: %d", len(versions))
	}
}

func TestSweepPurgesTombstonedScenes(t *testing.T) {
	sw, r, set, _ := newTestEnv(t, 0)
	ctx := context.Background()

	reconcileDoc(t, r, `---
date: 2024-03-15
scenes:
  - title: Morning at the market
    people: [Alice]
---
body
`)
	// Drop the scene: tombstoned, junctions hard-deleted.
	reconcileDoc(t, r, `---
date: 2024-03-15
---
body
`)
	time.Sleep(5 * time.Millisecond)

	result, err := sw.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Purged[types.KindScene] != 1 {
		t.Fatalf("purged=%v, want 1 scene", result.Purged)
	}

	entry, err := set.Entries.GetByDate(ctx, nil, mustDate(t, "2024-03-15"))
	if err != nil || entry == nil {
		t.Fatalf("entry lookup: %v, %v", entry, err)
	}
	tombstoned, err := set.Scenes.ListTombstonedBefore(ctx, nil, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("list tombstoned scenes: %v", err)
	}
	if len(tombstoned) != 0 {
		t.Fatalf("scenes survived purge: %d", len(tombstoned))
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}
