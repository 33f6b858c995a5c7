package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

// SceneRepo persists scenes. Scenes belong to exactly one entry and are
// deduplicated by (entry_id, title_key) rather than by a global key.
type SceneRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Scene) error
	Save(ctx context.Context, tx *gorm.DB, row *types.Scene) error

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Scene, error)
	ListByEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.Scene, error)
	FindByEntryAndTitle(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, titleKey string, includeTombstoned bool) ([]*types.Scene, error)

	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Restore(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	TombstoneByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	PurgeByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	ListTombstonedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Scene, error)

	CountByLocation(ctx context.Context, tx *gorm.DB, locationID uuid.UUID) (int64, error)
	CountByEvent(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) (int64, error)
}

type sceneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSceneRepo(db *gorm.DB, baseLog *logger.Logger) SceneRepo {
	return &sceneRepo{db: db, log: baseLog.With("repo", "SceneRepo")}
}

func (r *sceneRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sceneRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Scene) error {
	if row == nil || row.EntryID == uuid.Nil {
		return nil
	}
	row.EnsureID()
	return r.tx(tx).WithContext(ctx).Create(row).Error
}

func (r *sceneRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Scene) error {
	if row == nil {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Save(row).Error
}

func (r *sceneRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Scene, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Scene
	if err := r.tx(tx).WithContext(ctx).Unscoped().Where("id = ?", id).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sceneRepo) ListByEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.Scene, error) {
	var out []*types.Scene
	if entryID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("ordinal ASC, title_key ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sceneRepo) FindByEntryAndTitle(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, titleKey string, includeTombstoned bool) ([]*types.Scene, error) {
	var out []*types.Scene
	if entryID == uuid.Nil || titleKey == "" {
		return out, nil
	}
	q := r.tx(tx).WithContext(ctx)
	if includeTombstoned {
		q = q.Unscoped()
	}
	if err := q.Where("entry_id = ? AND title_key = ?", entryID, titleKey).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sceneRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return r.tx(tx).WithContext(ctx).
		Model(&types.Scene{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *sceneRepo) Restore(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Unscoped().
		Model(&types.Scene{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted_at": nil, "updated_at": time.Now().UTC()}).Error
}

func (r *sceneRepo) TombstoneByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&types.Scene{}).Error
}

func (r *sceneRepo) PurgeByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Unscoped().Where("id IN ?", ids).Delete(&types.Scene{}).Error
}

func (r *sceneRepo) ListTombstonedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Scene, error) {
	var out []*types.Scene
	if err := r.tx(tx).WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sceneRepo) CountByLocation(ctx context.Context, tx *gorm.DB, locationID uuid.UUID) (int64, error) {
	var n int64
	if locationID == uuid.Nil {
		return 0, nil
	}
	err := r.tx(tx).WithContext(ctx).
		Model(&types.Scene{}).
		Where("location_id = ?", locationID).
		Count(&n).Error
	return n, err
}

func (r *sceneRepo) CountByEvent(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) (int64, error) {
	var n int64
	if eventID == uuid.Nil {
		return 0, nil
	}
	err := r.tx(tx).WithContext(ctx).
		Model(&types.Scene{}).
		Where("event_id = ?", eventID).
		Count(&n).Error
	return n, err
}
