package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MergeFingerprint is the per-entity last-merged baseline the sync arbiter
// diffs against. Baseline holds the editable field map as it looked after
// the last successful merge; Digest is its stable hash.
type MergeFingerprint struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EntityKind EntityKind     `gorm:"column:entity_kind;not null;index:idx_merge_fingerprint,unique" json:"entity_kind"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_merge_fingerprint,unique" json:"entity_id"`
	Baseline   datatypes.JSON `gorm:"column:baseline;type:jsonb" json:"baseline"`
	Digest     string         `gorm:"column:digest;not null" json:"digest"`
	MergedAt   time.Time      `gorm:"column:merged_at;not null" json:"merged_at"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

func (MergeFingerprint) TableName() string { return "merge_fingerprint" }
