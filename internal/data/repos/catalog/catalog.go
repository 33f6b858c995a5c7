// Package catalog persists the canonical entity kinds. Every kind shares
// the same natural-key shape (name_key + disambiguator) and tombstone
// lifecycle, so one repo implementation covers all of them; the per-kind
// constructors below pin the concrete model types.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

// Ptr constrains P to a pointer to a catalog entity model.
type Ptr[E any] interface {
	*E
	types.CatalogEntity
}

type Repo[E any, P Ptr[E]] struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo[E any, P Ptr[E]](db *gorm.DB, baseLog *logger.Logger, name string) *Repo[E, P] {
	return &Repo[E, P]{db: db, log: baseLog.With("repo", name)}
}

func (r *Repo[E, P]) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *Repo[E, P]) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (P, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *Repo[E, P]) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]P, error) {
	var out []P
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).Unscoped().
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindLiveByKey returns non-tombstoned rows with the exact natural key.
// The uniqueness invariant means at most one row, but callers see a slice
// so invariant violations surface instead of hiding.
func (r *Repo[E, P]) FindLiveByKey(ctx context.Context, tx *gorm.DB, nameKey, disambiguator string) ([]P, error) {
	var out []P
	if nameKey == "" {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).
		Where("name_key = ? AND disambiguator = ?", nameKey, disambiguator).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindLiveByName returns non-tombstoned rows sharing the normalized name,
// regardless of disambiguator. Used for ambiguity detection.
func (r *Repo[E, P]) FindLiveByName(ctx context.Context, tx *gorm.DB, nameKey string) ([]P, error) {
	var out []P
	if nameKey == "" {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).
		Where("name_key = ?", nameKey).
		Order("disambiguator ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo[E, P]) FindTombstonedByKey(ctx context.Context, tx *gorm.DB, nameKey, disambiguator string) ([]P, error) {
	var out []P
	if nameKey == "" {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).Unscoped().
		Where("name_key = ? AND disambiguator = ? AND deleted_at IS NOT NULL", nameKey, disambiguator).
		Order("deleted_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo[E, P]) Create(ctx context.Context, tx *gorm.DB, row P) error {
	if row == nil {
		return nil
	}
	row.EnsureID()
	return r.tx(tx).WithContext(ctx).Create(row).Error
}

// CreateIfAbsent inserts row unless a live row already holds its natural
// key, and reports whether the insert took effect. The conflict target is
// the partial unique index on (name_key, disambiguator), so a concurrent
// transaction committing the same key turns this into a no-op instead of
// aborting the enclosing transaction.
func (r *Repo[E, P]) CreateIfAbsent(ctx context.Context, tx *gorm.DB, row P) (bool, error) {
	if row == nil {
		return false, nil
	}
	row.EnsureID()
	res := r.tx(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "name_key"}, {Name: "disambiguator"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "deleted_at IS NULL"}}},
			DoNothing:   true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repo[E, P]) Save(ctx context.Context, tx *gorm.DB, row P) error {
	if row == nil {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Save(row).Error
}

func (r *Repo[E, P]) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return r.tx(tx).WithContext(ctx).
		Model(P(new(E))).
		Where("id = ?", id).
		Updates(updates).Error
}

// Restore clears the tombstone timestamp: the shared resurrection path.
func (r *Repo[E, P]) Restore(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Unscoped().
		Model(P(new(E))).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted_at": nil, "updated_at": time.Now().UTC()}).Error
}

func (r *Repo[E, P]) TombstoneByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Where("id IN ?", ids).Delete(P(new(E))).Error
}

func (r *Repo[E, P]) PurgeByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Unscoped().Where("id IN ?", ids).Delete(P(new(E))).Error
}

func (r *Repo[E, P]) ListLive(ctx context.Context, tx *gorm.DB) ([]P, error) {
	var out []P
	if err := r.tx(tx).WithContext(ctx).
		Order("name_key ASC, disambiguator ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo[E, P]) ListTombstonedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]P, error) {
	var out []P
	if err := r.tx(tx).WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo[E, P]) ListTombstoned(ctx context.Context, tx *gorm.DB) ([]P, error) {
	var out []P
	if err := r.tx(tx).WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
