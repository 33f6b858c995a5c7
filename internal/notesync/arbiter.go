// Package notesync governs merge-back from the generated note pages.
// Computed fields always come from the relational store; editable fields
// come from the note page unless both sides diverged from the last
// merged baseline, in which case the arbiter flags a conflict and keeps
// the store value. No field is ever silently overwritten in both
// directions.
package notesync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/data/repos"
	"github.com/yungbote/daybook/internal/data/repos/catalog"
	"github.com/yungbote/daybook/internal/pkg/digest"
	pkgerrors "github.com/yungbote/daybook/internal/pkg/errors"
	"github.com/yungbote/daybook/internal/pkg/keylock"
	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/pkg/textkey"
	"github.com/yungbote/daybook/internal/types"
)

// NoteState carries one edited note page's values for a single entity.
// Fields holds editable field values keyed by field name; keys the
// entity does not own as editable are ignored (computed fields are
// display-only on note pages). A non-empty Name requests a rename.
type NoteState struct {
	Name          string            `json:"name,omitempty"`
	Disambiguator string            `json:"disambiguator,omitempty"`
	Fields        map[string]string `json:"fields"`
}

// FieldConflict reports one field both sides changed to different values
// since the last merge. The store value is kept.
type FieldConflict struct {
	Field string `json:"field"`
	Base  string `json:"base"`
	Store string `json:"store"`
	Note  string `json:"note"`
}

// MergeConflictError surfaces divergent edits with both versions; it is
// never auto-resolved.
type MergeConflictError struct {
	Kind      types.EntityKind
	EntityID  uuid.UUID
	Conflicts []FieldConflict
}

func (e *MergeConflictError) Error() string {
	fields := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		fields = append(fields, c.Field)
	}
	return fmt.Sprintf("merge conflict on %s %s: fields [%s] changed on both sides",
		e.Kind, e.EntityID, strings.Join(fields, ", "))
}

// Result is the outcome of one merge call.
type Result struct {
	Kind      types.EntityKind  `json:"kind"`
	EntityID  uuid.UUID         `json:"entity_id"`
	Applied   map[string]string `json:"applied"`
	Conflicts []FieldConflict   `json:"conflicts,omitempty"`
	Renamed   bool              `json:"renamed"`
}

// Err returns the conflict error when the merge flagged any, nil
// otherwise.
func (r *Result) Err() error {
	if len(r.Conflicts) == 0 {
		return nil
	}
	return &MergeConflictError{Kind: r.Kind, EntityID: r.EntityID, Conflicts: r.Conflicts}
}

type Arbiter struct {
	db   *gorm.DB
	set  *repos.Set
	keys *keylock.KeyLock
	log  *logger.Logger
}

func New(db *gorm.DB, set *repos.Set, baseLog *logger.Logger) *Arbiter {
	return &Arbiter{db: db, set: set, keys: keylock.New(), log: baseLog.With("component", "Arbiter")}
}

// snapshot is the kind-independent view of the stored entity.
type snapshot struct {
	id         uuid.UUID
	name       string
	nameKey    string
	dis        string
	tombstoned bool
	editable   map[string]string
}

type handle struct {
	kind      types.EntityKind
	renamable bool
	load      func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*snapshot, error)
	update    func(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	// collides reports whether a different live entity already holds
	// the natural key.
	collides func(ctx context.Context, tx *gorm.DB, nameKey, dis string, selfID uuid.UUID) (bool, error)
}

func catalogHandle[E any, P catalog.Ptr[E]](repo *catalog.Repo[E, P]) handle {
	kind := P(new(E)).EntityKind()
	return handle{
		kind:      kind,
		renamable: true,
		load: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*snapshot, error) {
			row, err := repo.GetByID(ctx, tx, id)
			if err != nil || row == nil {
				return nil, err
			}
			key, dis := row.NaturalKey()
			return &snapshot{
				id:         row.GetID(),
				name:       row.GetName(),
				nameKey:    key,
				dis:        dis,
				tombstoned: row.IsTombstoned(),
				editable:   row.EditableFields(),
			}, nil
		},
		update: repo.UpdateFields,
		collides: func(ctx context.Context, tx *gorm.DB, nameKey, dis string, selfID uuid.UUID) (bool, error) {
			rows, err := repo.FindLiveByKey(ctx, tx, nameKey, dis)
			if err != nil {
				return false, err
			}
			for _, row := range rows {
				if row.GetID() != selfID {
					return true, nil
				}
			}
			return false, nil
		},
	}
}

func (a *Arbiter) sceneHandle() handle {
	return handle{
		kind: types.KindScene,
		load: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*snapshot, error) {
			row, err := a.set.Scenes.GetByID(ctx, tx, id)
			if err != nil || row == nil {
				return nil, err
			}
			return &snapshot{
				id:         row.ID,
				name:       row.Title,
				nameKey:    row.TitleKey,
				tombstoned: row.IsTombstoned(),
				editable:   row.EditableFields(),
			}, nil
		},
		update: a.set.Scenes.UpdateFields,
	}
}

func (a *Arbiter) handleFor(kind types.EntityKind) (handle, error) {
	switch kind {
	case types.KindPerson:
		return catalogHandle(a.set.People), nil
	case types.KindCity:
		return catalogHandle(a.set.Cities), nil
	case types.KindLocation:
		return catalogHandle(a.set.Locations), nil
	case types.KindEvent:
		return catalogHandle(a.set.Events), nil
	case types.KindTag:
		return catalogHandle(a.set.Tags), nil
	case types.KindTheme:
		return catalogHandle(a.set.Themes), nil
	case types.KindPoem:
		return catalogHandle(a.set.Poems), nil
	case types.KindReferenceSource:
		return catalogHandle(a.set.ReferenceSources), nil
	case types.KindNarratedDate:
		return catalogHandle(a.set.NarratedDates), nil
	case types.KindThread:
		return catalogHandle(a.set.Threads), nil
	case types.KindArc:
		return catalogHandle(a.set.Arcs), nil
	case types.KindMotif:
		return catalogHandle(a.set.Motifs), nil
	case types.KindScene:
		return a.sceneHandle(), nil
	default:
		return handle{}, fmt.Errorf("%w: kind %q has no note-page representation", pkgerrors.ErrInvalidArgument, kind)
	}
}

// Merge applies one note page's edits to the stored entity using a
// three-way diff against the last-merged baseline. Conflicted fields
// keep the store value and the fingerprint is not advanced, so the
// conflict stays visible until a human resolves it.
func (a *Arbiter) Merge(ctx context.Context, kind types.EntityKind, entityID uuid.UUID, note NoteState) (*Result, error) {
	h, err := a.handleFor(kind)
	if err != nil {
		return nil, err
	}

	result := &Result{Kind: kind, EntityID: entityID, Applied: map[string]string{}}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap, err := h.load(ctx, tx, entityID)
		if err != nil {
			return err
		}
		if snap == nil {
			return fmt.Errorf("%w: %s %s", pkgerrors.ErrNotFound, kind, entityID)
		}

		baseline, err := a.baseline(ctx, tx, kind, entityID, snap)
		if err != nil {
			return err
		}

		merged := make(map[string]string, len(snap.editable))
		for k, v := range snap.editable {
			merged[k] = v
		}
		updates := map[string]interface{}{}
		for field, noteVal := range note.Fields {
			storeVal, editable := snap.editable[field]
			if !editable {
				// Computed or unknown: store wins unconditionally.
				continue
			}
			base := baseline[field]
			if noteVal == base {
				continue
			}
			if storeVal != base && storeVal != noteVal {
				result.Conflicts = append(result.Conflicts, FieldConflict{
					Field: field, Base: base, Store: storeVal, Note: noteVal,
				})
				continue
			}
			if storeVal != noteVal {
				merged[field] = noteVal
				updates[field] = noteVal
				result.Applied[field] = noteVal
			}
		}

		if err := a.applyRename(ctx, tx, h, snap, note, updates, result); err != nil {
			return err
		}

		if len(updates) > 0 {
			if err := h.update(ctx, tx, entityID, updates); err != nil {
				return err
			}
		}

		if len(result.Conflicts) == 0 {
			if err := a.advanceFingerprint(ctx, tx, kind, entityID, merged); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.log.Info("note merge",
		"kind", string(kind),
		"entity", entityID.String(),
		"applied", len(result.Applied),
		"conflicts", len(result.Conflicts),
	)
	return result, nil
}

// applyRename re-resolves a renamed reference against the natural-key
// rules: the new key must not belong to a different live entity.
func (a *Arbiter) applyRename(ctx context.Context, tx *gorm.DB, h handle, snap *snapshot, note NoteState, updates map[string]interface{}, result *Result) error {
	name := strings.TrimSpace(note.Name)
	if !h.renamable || name == "" {
		return nil
	}
	nameKey := textkey.Normalize(name)
	dis := textkey.Normalize(note.Disambiguator)
	if note.Disambiguator == "" {
		dis = snap.dis
	}
	if nameKey == snap.nameKey && dis == snap.dis && name == snap.name {
		return nil
	}

	unlock := a.keys.Lock(fmt.Sprintf("%s:%s", h.kind, nameKey))
	defer unlock()

	taken, err := h.collides(ctx, tx, nameKey, dis, snap.id)
	if err != nil {
		return err
	}
	if taken {
		result.Conflicts = append(result.Conflicts, FieldConflict{
			Field: "name", Base: snap.name, Store: snap.name, Note: note.Name,
		})
		return nil
	}
	updates["name"] = name
	updates["name_key"] = nameKey
	updates["disambiguator"] = dis
	result.Renamed = true
	return nil
}

func (a *Arbiter) baseline(ctx context.Context, tx *gorm.DB, kind types.EntityKind, entityID uuid.UUID, snap *snapshot) (map[string]string, error) {
	fp, err := a.set.Fingerprints.Get(ctx, tx, kind, entityID)
	if err != nil {
		return nil, err
	}
	if fp == nil || len(fp.Baseline) == 0 {
		// No recorded merge yet: treat the stored state as the common
		// ancestor, so an untouched store accepts the note's edits.
		return snap.editable, nil
	}
	var baseline map[string]string
	if err := json.Unmarshal(fp.Baseline, &baseline); err != nil {
		return nil, fmt.Errorf("decode merge baseline for %s %s: %w", kind, entityID, err)
	}
	return baseline, nil
}

func (a *Arbiter) advanceFingerprint(ctx context.Context, tx *gorm.DB, kind types.EntityKind, entityID uuid.UUID, merged map[string]string) error {
	raw, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return a.set.Fingerprints.Upsert(ctx, tx, &types.MergeFingerprint{
		EntityKind: kind,
		EntityID:   entityID,
		Baseline:   datatypes.JSON(raw),
		Digest:     digest.Of(string(raw)),
		MergedAt:   time.Now().UTC(),
	})
}
