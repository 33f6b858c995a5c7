package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/daybook/internal/data/repos/testutil"
	"github.com/yungbote/daybook/internal/types"
)

func newCityRepo(t *testing.T) *Repo[types.City, *types.City] {
	t.Helper()
	return NewRepo[types.City, *types.City](testutil.DB(t), testutil.Logger(t), "CityRepo")
}

func city(name, dis string) *types.City {
	c := &types.City{ID: uuid.New()}
	c.SetIdentity(name, name, dis)
	return c
}

func TestCreateIfAbsentNoOpOnLiveKey(t *testing.T) {
	repo := newCityRepo(t)
	ctx := context.Background()

	first := city("paris", "")
	created, err := repo.CreateIfAbsent(ctx, nil, first)
	if err != nil || !created {
		t.Fatalf("first insert: created=%v, err=%v", created, err)
	}

	// Same live natural key: the insert must not take and must not abort
	// the connection's transaction state.
	dup := city("paris", "")
	created, err = repo.CreateIfAbsent(ctx, nil, dup)
	if err != nil {
		t.Fatalf("conflicting insert: %v", err)
	}
	if created {
		t.Fatalf("conflicting insert reported created")
	}

	rows, err := repo.FindLiveByKey(ctx, nil, "paris", "")
	if err != nil || len(rows) != 1 {
		t.Fatalf("live rows=%d (%v), want 1", len(rows), err)
	}
	if rows[0].ID != first.ID {
		t.Fatalf("surviving row=%s, want %s", rows[0].ID, first.ID)
	}
}

func TestCreateIfAbsentDistinctDisambiguators(t *testing.T) {
	repo := newCityRepo(t)
	ctx := context.Background()

	for _, dis := range []string{"", "france", "texas"} {
		created, err := repo.CreateIfAbsent(ctx, nil, city("paris", dis))
		if err != nil || !created {
			t.Fatalf("insert dis=%q: created=%v, err=%v", dis, created, err)
		}
	}
}

func TestCreateIfAbsentIgnoresTombstonedKey(t *testing.T) {
	repo := newCityRepo(t)
	ctx := context.Background()

	dead := city("atlantis", "")
	if _, err := repo.CreateIfAbsent(ctx, nil, dead); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.TombstoneByIDs(ctx, nil, []uuid.UUID{dead.ID}); err != nil {
		t.Fatalf("tombstone: %v", err)
	}

	// The partial index covers live rows only; a tombstoned key does not
	// block a fresh insert.
	created, err := repo.CreateIfAbsent(ctx, nil, city("atlantis", ""))
	if err != nil || !created {
		t.Fatalf("insert over tombstone: created=%v, err=%v", created, err)
	}
}
