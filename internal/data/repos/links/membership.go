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

// MemberRepo persists ordered span membership (threads and arcs). Members
// carry an explicit position that mirrors chronological entry order; the
// span processor decides positions, this repo only stores and shifts them.
type MemberRepo[L any, P interface{ *L }] struct {
	db       *gorm.DB
	log      *logger.Logger
	groupCol string
}

type ThreadEntryRepo = MemberRepo[types.ThreadEntry, *types.ThreadEntry]
type ArcEntryRepo = MemberRepo[types.ArcEntry, *types.ArcEntry]

func NewThreadEntryRepo(db *gorm.DB, baseLog *logger.Logger) *ThreadEntryRepo {
	return &ThreadEntryRepo{db: db, log: baseLog.With("repo", "ThreadEntryRepo"), groupCol: "thread_id"}
}

func NewArcEntryRepo(db *gorm.DB, baseLog *logger.Logger) *ArcEntryRepo {
	return &ArcEntryRepo{db: db, log: baseLog.With("repo", "ArcEntryRepo"), groupCol: "arc_id"}
}

func (r *MemberRepo[L, P]) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *MemberRepo[L, P]) ListByGroup(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) ([]P, error) {
	var out []P
	if groupID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).
		Where(fmt.Sprintf("%s = ?", r.groupCol), groupID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MemberRepo[L, P]) ListByEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]P, error) {
	var out []P
	if entryID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).
		Where("entry_id = ?", entryID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MemberRepo[L, P]) Create(ctx context.Context, tx *gorm.DB, row P) error {
	if row == nil {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Create(row).Error
}

// ShiftFrom opens (delta=+1) or closes (delta=-1) a position gap at
// fromPos for all members of the group at or after it.
func (r *MemberRepo[L, P]) ShiftFrom(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, fromPos, delta int) error {
	if groupID == uuid.Nil || delta == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).
		Model(P(new(L))).
		Where(fmt.Sprintf("%s = ? AND position >= ?", r.groupCol), groupID, fromPos).
		Updates(map[string]interface{}{
			"position":   gorm.Expr("position + ?", delta),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *MemberRepo[L, P]) DeleteByGroupAndEntries(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, entryIDs []uuid.UUID) error {
	if groupID == uuid.Nil || len(entryIDs) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).
		Where(fmt.Sprintf("%s = ? AND entry_id IN ?", r.groupCol), groupID, entryIDs).
		Delete(P(new(L))).Error
}

func (r *MemberRepo[L, P]) DeleteByEntryIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).
		Where("entry_id IN ?", entryIDs).
		Delete(P(new(L))).Error
}

func (r *MemberRepo[L, P]) CountByGroup(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) (int64, error) {
	var n int64
	if groupID == uuid.Nil {
		return 0, nil
	}
	err := r.tx(tx).WithContext(ctx).
		Model(P(new(L))).
		Where(fmt.Sprintf("%s = ?", r.groupCol), groupID).
		Count(&n).Error
	return n, err
}
