package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

type MergeFingerprintRepo interface {
	Get(ctx context.Context, tx *gorm.DB, kind types.EntityKind, entityID uuid.UUID) (*types.MergeFingerprint, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.MergeFingerprint) error
	DeleteByEntity(ctx context.Context, tx *gorm.DB, kind types.EntityKind, entityIDs []uuid.UUID) error
}

type mergeFingerprintRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMergeFingerprintRepo(db *gorm.DB, baseLog *logger.Logger) MergeFingerprintRepo {
	return &mergeFingerprintRepo{db: db, log: baseLog.With("repo", "MergeFingerprintRepo")}
}

func (r *mergeFingerprintRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *mergeFingerprintRepo) Get(ctx context.Context, tx *gorm.DB, kind types.EntityKind, entityID uuid.UUID) (*types.MergeFingerprint, error) {
	if kind == "" || entityID == uuid.Nil {
		return nil, nil
	}
	var out []*types.MergeFingerprint
	if err := r.tx(tx).WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", kind, entityID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *mergeFingerprintRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.MergeFingerprint) error {
	if row == nil || row.EntityKind == "" || row.EntityID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return r.tx(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "entity_kind"}, {Name: "entity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"baseline",
				"digest",
				"merged_at",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *mergeFingerprintRepo) DeleteByEntity(ctx context.Context, tx *gorm.DB, kind types.EntityKind, entityIDs []uuid.UUID) error {
	if kind == "" || len(entityIDs) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).
		Where("entity_kind = ? AND entity_id IN ?", kind, entityIDs).
		Delete(&types.MergeFingerprint{}).Error
}
