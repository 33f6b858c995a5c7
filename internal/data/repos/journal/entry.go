package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

type EntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Entry) error
	Save(ctx context.Context, tx *gorm.DB, row *types.Entry) error

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entry, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Entry, error)
	GetByDate(ctx context.Context, tx *gorm.DB, date time.Time) (*types.Entry, error)
	// GetByDateAny also sees tombstoned rows: the unique date index means
	// a tombstoned entry must be resurrected, never recreated.
	GetByDateAny(ctx context.Context, tx *gorm.DB, date time.Time) (*types.Entry, error)

	List(ctx context.Context, tx *gorm.DB, from, to *time.Time) ([]*types.Entry, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Restore(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	TombstoneByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type entryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return &entryRepo{db: db, log: baseLog.With("repo", "EntryRepo")}
}

func (r *entryRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *entryRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Entry) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.tx(tx).WithContext(ctx).Create(row).Error
}

func (r *entryRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Entry) error {
	if row == nil {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Save(row).Error
}

func (r *entryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Entry, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *entryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Entry, error) {
	var out []*types.Entry
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(tx).WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// dayRange returns the half-open UTC interval covering date's calendar
// day. Entries are stored as full timestamps, so an equality match on
// the formatted day would never hit.
func dayRange(date time.Time) (time.Time, time.Time) {
	d := date.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func (r *entryRepo) GetByDate(ctx context.Context, tx *gorm.DB, date time.Time) (*types.Entry, error) {
	var out []*types.Entry
	start, end := dayRange(date)
	if err := r.tx(tx).WithContext(ctx).
		Where("date >= ? AND date < ?", start, end).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *entryRepo) GetByDateAny(ctx context.Context, tx *gorm.DB, date time.Time) (*types.Entry, error) {
	var out []*types.Entry
	start, end := dayRange(date)
	if err := r.tx(tx).WithContext(ctx).Unscoped().
		Where("date >= ? AND date < ?", start, end).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *entryRepo) List(ctx context.Context, tx *gorm.DB, from, to *time.Time) ([]*types.Entry, error) {
	q := r.tx(tx).WithContext(ctx)
	if from != nil {
		start, _ := dayRange(*from)
		q = q.Where("date >= ?", start)
	}
	if to != nil {
		_, end := dayRange(*to)
		q = q.Where("date < ?", end)
	}
	var out []*types.Entry
	if err := q.Order("date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *entryRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return r.tx(tx).WithContext(ctx).
		Model(&types.Entry{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *entryRepo) Restore(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Unscoped().
		Model(&types.Entry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted_at": nil, "updated_at": time.Now().UTC()}).Error
}

func (r *entryRepo) TombstoneByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.tx(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&types.Entry{}).Error
}
