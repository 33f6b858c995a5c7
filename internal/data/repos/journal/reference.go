package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

// ReferenceRepo persists entry-owned quotes. References never exist
// without a source; the processor enforces that before any row reaches
// this repo.
type ReferenceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Reference) error
	Save(ctx context.Context, tx *gorm.DB, row *types.Reference) error

	ListByEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.Reference, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	DeleteByEntryIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) error
	CountBySource(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) (int64, error)
}

type referenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReferenceRepo(db *gorm.DB, baseLog *logger.Logger) ReferenceRepo {
	return &referenceRepo{db: db, log: baseLog.With("repo", "ReferenceRepo")}
}

func (r *referenceRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *referenceRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Reference) error {
	if row == nil || row.EntryID == uuid.Nil || row.SourceID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.tx(tx).WithContext(ctx).Create(row).Error
}

func (r *referenceRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Reference) error {
	if row == nil {
		return nil
	}
	row.UpdatedAt = time.Now().UTC()
	return r.tx(tx).WithContext(ctx).Save(row).Error
}

func (r *referenceRepo) ListByEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.Reference, error) {
	var out []*types.Reference
	if entryID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("ordinal ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *referenceRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&types.Reference{}).Error
}

func (r *referenceRepo) DeleteByEntryIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Where("entry_id IN ?", entryIDs).Delete(&types.Reference{}).Error
}

func (r *referenceRepo) CountBySource(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) (int64, error) {
	var n int64
	if sourceID == uuid.Nil {
		return 0, nil
	}
	err := r.tx(tx).WithContext(ctx).
		Model(&types.Reference{}).
		Where("source_id = ?", sourceID).
		Count(&n).Error
	return n, err
}
