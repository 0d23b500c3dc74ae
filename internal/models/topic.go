package models

import (
	"time"
)

// Topic represents a top-level forum post
type Topic struct {
	ID               string     `gorm:"type:varchar(36);primaryKey;column:id"`
	Title            string     `gorm:"type:varchar(200);not null;column:title"`
	Content          string     `gorm:"type:text;not null;column:content"`
	AuthorID         string     `gorm:"type:varchar(64);not null;index;column:author_id"`
	CreatedAt        time.Time  `gorm:"not null;index;autoCreateTime:false;column:created_at"`
	UpdatedAt        time.Time  `gorm:"not null;autoUpdateTime:false;column:updated_at"`
	Deleted          bool       `gorm:"not null;default:false;index;column:deleted"`
	Pinned           bool       `gorm:"not null;default:false;column:pinned"`
	Locked           bool       `gorm:"not null;default:false;column:locked"`
	EditCount        int        `gorm:"not null;default:0;column:edit_count"`
	IsSpoiler        bool       `gorm:"not null;default:false;column:is_spoiler"`
	SpoilerFor       *string    `gorm:"type:varchar(100);column:spoiler_for"`
	SpoilerExpiresAt *time.Time `gorm:"column:spoiler_expires_at"`
	ImageURL         *string    `gorm:"type:varchar(1024);column:image_url"`
	ImageKey         *string    `gorm:"type:varchar(255);column:image_key"`
}

// TableName specifies the table name for Topic
func (Topic) TableName() string {
	return "forum_topics"
}

// HasImage reports whether the topic references an externally stored image
func (t *Topic) HasImage() bool {
	return t.ImageKey != nil && *t.ImageKey != ""
}
