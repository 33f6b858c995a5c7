package journal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/daybook/internal/data/repos/testutil"
	"github.com/yungbote/daybook/internal/types"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse day %q: %v", s, err)
	}
	return d
}

func seedEntry(t *testing.T, repo EntryRepo, date time.Time) *types.Entry {
	t.Helper()
	row := &types.Entry{ID: uuid.New(), Date: date, ContentDigest: "d", WordCount: 1}
	if err := repo.Create(context.Background(), nil, row); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	return row
}

// The date column holds a full timestamp, so the lookup must match the
// calendar day regardless of how the driver serializes it.
func TestEntryGetByDateMatchesStoredRow(t *testing.T) {
	repo := NewEntryRepo(testutil.DB(t), testutil.Logger(t))
	ctx := context.Background()

	created := seedEntry(t, repo, day(t, "2024-03-15"))

	got, err := repo.GetByDate(ctx, nil, day(t, "2024-03-15"))
	if err != nil {
		t.Fatalf("GetByDate: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("GetByDate=%+v, want row %s", got, created.ID)
	}

	missing, err := repo.GetByDate(ctx, nil, day(t, "2024-03-16"))
	if err != nil || missing != nil {
		t.Fatalf("neighboring day: %+v, %v, want nil", missing, err)
	}
}

func TestEntryGetByDateAnySeesTombstones(t *testing.T) {
	repo := NewEntryRepo(testutil.DB(t), testutil.Logger(t))
	ctx := context.Background()

	created := seedEntry(t, repo, day(t, "2024-03-15"))
	if err := repo.TombstoneByIDs(ctx, nil, []uuid.UUID{created.ID}); err != nil {
		t.Fatalf("tombstone: %v", err)
	}

	live, err := repo.GetByDate(ctx, nil, day(t, "2024-03-15"))
	if err != nil || live != nil {
		t.Fatalf("tombstoned row visible to GetByDate: %+v, %v", live, err)
	}
	any, err := repo.GetByDateAny(ctx, nil, day(t, "2024-03-15"))
	if err != nil {
		t.Fatalf("GetByDateAny: %v", err)
	}
	if any == nil || any.ID != created.ID {
		t.Fatalf("GetByDateAny=%+v, want row %s", any, created.ID)
	}
}

func TestEntryListDateRangeInclusive(t *testing.T) {
	repo := NewEntryRepo(testutil.DB(t), testutil.Logger(t))
	ctx := context.Background()

	seedEntry(t, repo, day(t, "2024-03-14"))
	mid := seedEntry(t, repo, day(t, "2024-03-15"))
	last := seedEntry(t, repo, day(t, "2024-03-16"))

	from := day(t, "2024-03-15")
	to := day(t, "2024-03-16")
	rows, err := repo.List(ctx, nil, &from, &to)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d, want 2", len(rows))
	}
	if rows[0].ID != mid.ID || rows[1].ID != last.ID {
		t.Fatalf("range rows=[%s %s], want [%s %s]", rows[0].ID, rows[1].ID, mid.ID, last.ID)
	}
}
