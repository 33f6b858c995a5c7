package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry is one dated unit of source material. One entry per calendar day.
// Entries are mutated only through the reconciler; a reconciliation pass
// either fully succeeds or is rolled back.
type Entry struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Date          time.Time      `gorm:"type:date;uniqueIndex;not null" json:"date"`
	ContentDigest string         `gorm:"column:content_digest;not null" json:"content_digest"`
	WordCount     int            `gorm:"column:word_count;not null;default:0" json:"word_count"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Entry) TableName() string { return "entry" }

// DateKey is the canonical yyyy-mm-dd form used for locks and lookups.
func (e *Entry) DateKey() string { return e.Date.Format("2006-01-02") }
