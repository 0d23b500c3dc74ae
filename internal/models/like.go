package models

import (
	"time"
)

// TargetKind distinguishes topics from comments in shared tables
type TargetKind string

// Target kinds
const (
	KindTopic   TargetKind = "topic"
	KindComment TargetKind = "comment"
)

// Like is a single user's like on a topic or comment.
// Its existence is the only signal of "liked".
type Like struct {
	TargetKind TargetKind `gorm:"type:varchar(16);primaryKey;column:target_kind"`
	TargetID   string     `gorm:"type:varchar(36);primaryKey;column:target_id"`
	UserID     string     `gorm:"type:varchar(64);primaryKey;column:user_id"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime:false;column:created_at"`
}

// TableName specifies the table name for Like
func (Like) TableName() string {
	return "forum_likes"
}
