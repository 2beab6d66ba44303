package models

import "time"

// PointsReason says why a ledger entry exists.
type PointsReason string

const (
	ReasonTaskComplete PointsReason = "task_complete"
	ReasonManualAward  PointsReason = "manual_award"
	ReasonRedemption   PointsReason = "redemption"
)

// PointsHistoryEntry is an append-only ledger record. Entries are never
// updated or deleted; totals are sums over this table.
//
// TaskID is set only for task_complete entries, and the unique index on it
// is what guarantees at-most-one automatic award per task — the store, not
// the application, arbitrates concurrent completion attempts.
type PointsHistoryEntry struct {
	ID           string       `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string       `gorm:"type:uuid;index;not null" json:"user_id"`
	PointsEarned int64        `gorm:"not null" json:"points_earned"`
	Reason       PointsReason `gorm:"not null" json:"reason"`
	TaskID       *string      `gorm:"type:uuid;uniqueIndex" json:"task_id,omitempty"`
	AwardedBy    *string      `gorm:"type:uuid" json:"awarded_by,omitempty"`
	Notes        *string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (PointsHistoryEntry) TableName() string {
	return "points_history"
}
