// Package links persists association records. The uniform (owner, target,
// role) junctions share one generic repo; membership tables that carry a
// position (threads, arcs) and motif instances have their own repos.
package links

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

// Ptr constrains P to a pointer to a junction model.
type Ptr[L any] interface {
	*L
	types.Link
}

type Repo[L any, P Ptr[L]] struct {
	db        *gorm.DB
	log       *logger.Logger
	ownerCol  string
	targetCol string
	roleCol   string
}

func NewRepo[L any, P Ptr[L]](db *gorm.DB, baseLog *logger.Logger, name, ownerCol, targetCol, roleCol string) *Repo[L, P] {
	return &Repo[L, P]{
		db:        db,
		log:       baseLog.With("repo", name),
		ownerCol:  ownerCol,
		targetCol: targetCol,
		roleCol:   roleCol,
	}
}

func (r *Repo[L, P]) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *Repo[L, P]) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]P, error) {
	var out []P
	if ownerID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).
		Where(fmt.Sprintf("%s = ?", r.ownerCol), ownerID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo[L, P]) ListByTarget(ctx context.Context, tx *gorm.DB, targetID uuid.UUID) ([]P, error) {
	var out []P
	if targetID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).
		Where(fmt.Sprintf("%s = ?", r.targetCol), targetID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo[L, P]) Create(ctx context.Context, tx *gorm.DB, rows []P) error {
	if len(rows) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Create(&rows).Error
}

func (r *Repo[L, P]) UpdateRole(ctx context.Context, tx *gorm.DB, id uuid.UUID, role string) error {
	if id == uuid.Nil {
		return nil
	}
	return r.tx(tx).WithContext(ctx).
		Model(P(new(L))).
		Where("id = ?", id).
		Updates(map[string]interface{}{r.roleCol: role, "updated_at": time.Now().UTC()}).Error
}

func (r *Repo[L, P]) DeleteByOwnerAndTargets(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, targetIDs []uuid.UUID) error {
	if ownerID == uuid.Nil || len(targetIDs) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).
		Where(fmt.Sprintf("%s = ? AND %s IN ?", r.ownerCol, r.targetCol), ownerID, targetIDs).
		Delete(P(new(L))).Error
}

func (r *Repo[L, P]) DeleteByOwnerIDs(ctx context.Context, tx *gorm.DB, ownerIDs []uuid.UUID) error {
	if len(ownerIDs) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).
		Where(fmt.Sprintf("%s IN ?", r.ownerCol), ownerIDs).
		Delete(P(new(L))).Error
}

func (r *Repo[L, P]) CountByTarget(ctx context.Context, tx *gorm.DB, targetID uuid.UUID) (int64, error) {
	var n int64
	if targetID == uuid.Nil {
		return 0, nil
	}
	err := r.tx(tx).WithContext(ctx).
		Model(P(new(L))).
		Where(fmt.Sprintf("%s = ?", r.targetCol), targetID).
		Count(&n).Error
	return n, err
}
