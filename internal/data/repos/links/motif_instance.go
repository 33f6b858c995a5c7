package links

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

type MotifInstanceRepo interface {
	// CreateIgnoreDuplicates collapses duplicate (motif, entry, locator)
	// instances on the unique index and reports how many rows landed.
	CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.MotifInstance) (int, error)

	ListByEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.MotifInstance, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	DeleteByEntryIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) error
	CountByMotif(ctx context.Context, tx *gorm.DB, motifID uuid.UUID) (int64, error)
}

type motifInstanceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMotifInstanceRepo(db *gorm.DB, baseLog *logger.Logger) MotifInstanceRepo {
	return &motifInstanceRepo{db: db, log: baseLog.With("repo", "MotifInstanceRepo")}
}

func (r *motifInstanceRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *motifInstanceRepo) CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.MotifInstance) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	res := r.tx(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "motif_id"}, {Name: "entry_id"}, {Name: "locator_key"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *motifInstanceRepo) ListByEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.MotifInstance, error) {
	var out []*types.MotifInstance
	if entryID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *motifInstanceRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&types.MotifInstance{}).Error
}

func (r *motifInstanceRepo) DeleteByEntryIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Where("entry_id IN ?", entryIDs).Delete(&types.MotifInstance{}).Error
}

func (r *motifInstanceRepo) CountByMotif(ctx context.Context, tx *gorm.DB, motifID uuid.UUID) (int64, error) {
	var n int64
	if motifID == uuid.Nil {
		return 0, nil
	}
	err := r.tx(tx).WithContext(ctx).
		Model(&types.MotifInstance{}).
		Where("motif_id = ?", motifID).
		Count(&n).Error
	return n, err
}
