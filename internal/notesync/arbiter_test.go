package notesync

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/data/repos/testutil"
	"github.com/yungbote/daybook/internal/pkg/textkey"
	"github.com/yungbote/daybook/internal/types"
)

func newTestArbiter(t *testing.T) (*Arbiter, *repos.Set) {
	t.Helper()
	conn := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(conn, log)
	return New(conn, set, log), set
}

func seedPerson(t *testing.T, set *repos.Set, name, relation string) *types.Person {
	t.Helper()
	p := &types.Person{Relation: relation}
	p.EnsureID()
	p.SetIdentity(name, textkey.Normalize(name), "")
	if err := set.People.Create(context.Background(), nil, p); err != nil {
		t.Fatalf("create person: %v", err)
	}
	return p
}

func TestMergeWithoutBaselineTakesNoteEdits(t *testing.T) {
	a, set := newTestArbiter(t)
	ctx := context.Background()

	alice := seedPerson(t, set, "Alice", "friend")

	result, err := a.Merge(ctx, types.KindPerson, alice.ID, NoteState{
		Fields: map[string]string{"relation": "collaborator"},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if result.Err() != nil {
		t.Fatalf("unexpected conflicts: %+v", result.Conflicts)
	}
	if result.Applied["relation"] != "collaborator" {
		t.Fatalf("applied=%v", result.Applied)
	}

	row, err := set.People.GetByID(ctx, nil, alice.ID)
	if err != nil || row == nil {
		t.Fatalf("reload: %v, %v", row, err)
	}
	if row.Relation != "collaborator" {
		t.Fatalf("relation=%q, want collaborator", row.Relation)
	}

	fp, err := set.Fingerprints.Get(ctx, nil, types.KindPerson, alice.ID)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if fp == nil || len(fp.Baseline) == 0 {
		t.Fatalf("baseline not recorded after clean merge")
	}
}

func TestMergeConflictKeepsStoreAndFingerprint(t *testing.T) {
	a, set := newTestArbiter(t)
	ctx := context.Background()

	alice := seedPerson(t, set, "Alice", "friend")

	// Establish a baseline, then diverge both sides from it.
	if _, err := a.Merge(ctx, types.KindPerson, alice.ID, NoteState{Fields: map[string]string{}}); err != nil {
		t.Fatalf("baseline merge: %v", err)
	}
	if err := set.People.UpdateFields(ctx, nil, alice.ID, map[string]interface{}{"relation": "mentor"}); err != nil {
		t.Fatalf("store edit: %v", err)
	}

	result, err := a.Merge(ctx, types.KindPerson, alice.ID, NoteState{
		Fields: map[string]string{"relation": "rival"},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	var conflict *MergeConflictError
	if !errors.As(result.Err(), &conflict) {
		t.Fatalf("expected merge conflict, got %v", result.Err())
	}
	if len(conflict.Conflicts) != 1 || conflict.Conflicts[0].Field != "relation" {
		t.Fatalf("conflicts=%+v", conflict.Conflicts)
	}
	c := conflict.Conflicts[0]
	if c.Base != "friend" || c.Store != "mentor" || c.Note != "rival" {
		t.Fatalf("conflict versions: %+v", c)
	}

	row, _ := set.People.GetByID(ctx, nil, alice.ID)
	if row.Relation != "mentor" {
		t.Fatalf("store value lost: relation=%q", row.Relation)
	}

	// The fingerprint must not advance, so retrying the same divergent
	// note still conflicts instead of sliding through.
	retry, err := a.Merge(ctx, types.KindPerson, alice.ID, NoteState{
		Fields: map[string]string{"relation": "rival"},
	})
	if err != nil {
		t.Fatalf("retry merge: %v", err)
	}
	if retry.Err() == nil {
		t.Fatalf("retry resolved silently")
	}
}

func TestMergeAgreementIsNotAConflict(t *testing.T) {
	a, set := newTestArbiter(t)
	ctx := context.Background()

	alice := seedPerson(t, set, "Alice", "friend")
	if _, err := a.Merge(ctx, types.KindPerson, alice.ID, NoteState{Fields: map[string]string{}}); err != nil {
		t.Fatalf("baseline merge: %v", err)
	}
	if err := set.People.UpdateFields(ctx, nil, alice.ID, map[string]interface{}{"relation": "mentor"}); err != nil {
		t.Fatalf("store edit: %v", err)
	}

	result, err := a.Merge(ctx, types.KindPerson, alice.ID, NoteState{
		Fields: map[string]string{"relation": "mentor"},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if result.Err() != nil {
		t.Fatalf("agreeing edits flagged as conflict: %+v", result.Conflicts)
	}
	if len(result.Applied) != 0 {
		t.Fatalf("nothing should need applying, got %v", result.Applied)
	}
}

func TestMergeIgnoresComputedAndUnknownFields(t *testing.T) {
	a, set := newTestArbiter(t)
	ctx := context.Background()

	alice := seedPerson(t, set, "Alice", "friend")

	result, err := a.Merge(ctx, types.KindPerson, alice.ID, NoteState{
		Fields: map[string]string{
			"mention_count": "99",
			"first_seen":    "1999-01-01",
			"nonsense":      "x",
		},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(result.Applied) != 0 || result.Err() != nil {
		t.Fatalf("computed fields leaked into merge: %+v", result)
	}
}

func TestMergeRename(t *testing.T) {
	a, set := newTestArbiter(t)
	ctx := context.Background()

	alice := seedPerson(t, set, "Alice", "friend")

	result, err := a.Merge(ctx, types.KindPerson, alice.ID, NoteState{Name: "Alicia"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !result.Renamed {
		t.Fatalf("rename not applied: %+v", result)
	}

	rows, err := set.People.FindLiveByKey(ctx, nil, "alicia", "")
	if err != nil || len(rows) != 1 {
		t.Fatalf("renamed lookup: %v, %v", rows, err)
	}
	if rows[0].Name != "Alicia" || rows[0].ID != alice.ID {
		t.Fatalf("renamed row: %+v", rows[0])
	}
}

func TestMergeRenameCollisionConflicts(t *testing.T) {
	a, set := newTestArbiter(t)
	ctx := context.Background()

	alice := seedPerson(t, set, "Alice", "friend")
	seedPerson(t, set, "Alicia", "cousin")

	result, err := a.Merge(ctx, types.KindPerson, alice.ID, NoteState{Name: "Alicia"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if result.Renamed {
		t.Fatalf("rename stole an occupied key")
	}
	var conflict *MergeConflictError
	if !errors.As(result.Err(), &conflict) {
		t.Fatalf("expected name conflict, got %v", result.Err())
	}
	if conflict.Conflicts[0].Field != "name" {
		t.Fatalf("conflicts=%+v", conflict.Conflicts)
	}

	row, _ := set.People.GetByID(ctx, nil, alice.ID)
	if row.Name != "Alice" {
		t.Fatalf("name changed despite collision: %q", row.Name)
	}
}

func TestMergeUnknownEntityID(t *testing.T) {
	a, _ := newTestArbiter(t)

	_, err := a.Merge(context.Background(), types.KindPerson, uuid.New(), NoteState{})
	if err == nil {
		t.Fatalf("expected not-found error")
	}
}
