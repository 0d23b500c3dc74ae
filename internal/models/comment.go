package models

import (
	"time"
)

// Comment represents a reply to a topic, optionally nested under another comment
type Comment struct {
	ID               string     `gorm:"type:varchar(36);primaryKey;column:id"`
	TopicID          string     `gorm:"type:varchar(36);not null;index:idx_forum_comments_topic_created,priority:1;column:topic_id"`
	ParentID         *string    `gorm:"type:varchar(36);index;column:parent_id"`
	Content          string     `gorm:"type:text;not null;column:content"`
	AuthorID         string     `gorm:"type:varchar(64);not null;index;column:author_id"`
	CreatedAt        time.Time  `gorm:"not null;index:idx_forum_comments_topic_created,priority:2;autoCreateTime:false;column:created_at"`
	UpdatedAt        time.Time  `gorm:"not null;autoUpdateTime:false;column:updated_at"`
	Deleted          bool       `gorm:"not null;default:false;column:deleted"`
	EditCount        int        `gorm:"not null;default:0;column:edit_count"`
	IsSpoiler        bool       `gorm:"not null;default:false;column:is_spoiler"`
	SpoilerFor       *string    `gorm:"type:varchar(100);column:spoiler_for"`
	SpoilerExpiresAt *time.Time `gorm:"column:spoiler_expires_at"`

	// Relationships
	Topic  *Topic   `gorm:"foreignKey:TopicID;references:ID"`
	Parent *Comment `gorm:"foreignKey:ParentID;references:ID"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "forum_comments"
}
