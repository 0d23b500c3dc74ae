package models

import (
	"time"
)

// EditHistoryEntry keeps the pre-edit values of a topic or comment.
// Rows are append-only.
type EditHistoryEntry struct {
	ID              string     `gorm:"type:varchar(36);primaryKey;column:id"`
	TargetKind      TargetKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_forum_edit_history_target,priority:1;column:target_kind"`
	TargetID        string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_forum_edit_history_target,priority:2;column:target_id"`
	EditNumber      int        `gorm:"not null;uniqueIndex:idx_forum_edit_history_target,priority:3;column:edit_number"`
	PreviousTitle   *string    `gorm:"type:varchar(200);column:previous_title"`
	PreviousContent string     `gorm:"type:text;not null;column:previous_content"`
	EditedBy        string     `gorm:"type:varchar(64);not null;column:edited_by"`
	CreatedAt       time.Time  `gorm:"not null;autoCreateTime:false;column:created_at"`
}

// TableName specifies the table name for EditHistoryEntry
func (EditHistoryEntry) TableName() string {
	return "forum_edit_history"
}
