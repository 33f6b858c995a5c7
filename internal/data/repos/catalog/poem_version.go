package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

// PoemVersionRepo is append-only: versions are never updated or deleted
// except when their poem is purged.
type PoemVersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.PoemVersion) error
	GetLatest(ctx context.Context, tx *gorm.DB, poemID uuid.UUID) (*types.PoemVersion, error)
	ListByPoem(ctx context.Context, tx *gorm.DB, poemID uuid.UUID) ([]*types.PoemVersion, error)
	DeleteByPoemIDs(ctx context.Context, tx *gorm.DB, poemIDs []uuid.UUID) error
}

type poemVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPoemVersionRepo(db *gorm.DB, baseLog *logger.Logger) PoemVersionRepo {
	return &poemVersionRepo{db: db, log: baseLog.With("repo", "PoemVersionRepo")}
}

func (r *poemVersionRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *poemVersionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.PoemVersion) error {
	if row == nil || row.PoemID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.tx(tx).WithContext(ctx).Create(row).Error
}

func (r *poemVersionRepo) GetLatest(ctx context.Context, tx *gorm.DB, poemID uuid.UUID) (*types.PoemVersion, error) {
	if poemID == uuid.Nil {
		return nil, nil
	}
	var out []*types.PoemVersion
	if err := r.tx(tx).WithContext(ctx).
		Where("poem_id = ?", poemID).
		Order("seq DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *poemVersionRepo) ListByPoem(ctx context.Context, tx *gorm.DB, poemID uuid.UUID) ([]*types.PoemVersion, error) {
	var out []*types.PoemVersion
	if poemID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).
		Where("poem_id = ?", poemID).
		Order("seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *poemVersionRepo) DeleteByPoemIDs(ctx context.Context, tx *gorm.DB, poemIDs []uuid.UUID) error {
	if len(poemIDs) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).
		Where("poem_id IN ?", poemIDs).
		Delete(&types.PoemVersion{}).Error
}
