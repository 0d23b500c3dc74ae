package forum

import (
	"context"
	"time"

	"github.com/fansite/forum/internal/models"
)

// TopicQuery selects a page of non-deleted topics
type TopicQuery struct {
	Search string
	SortBy string
	Offset int
	Limit  int
}

// TopicEdit is a conditional topic update. It only applies while the row
// still has ExpectedEditCount, is not deleted or locked, and was created
// at or after WindowStart.
type TopicEdit struct {
	ID                string
	ExpectedEditCount int
	WindowStart       time.Time
	Title             string
	Content           string
	ClearImage        bool
	History           *models.EditHistoryEntry
	Now               time.Time
}

// CommentEdit is the comment counterpart of TopicEdit
type CommentEdit struct {
	ID                string
	ExpectedEditCount int
	WindowStart       time.Time
	Content           string
	History           *models.EditHistoryEntry
	Now               time.Time
}

// Store is the persistence boundary of the forum.
// Getters return nil, nil when the row does not exist.
type Store interface {
	CreateTopic(ctx context.Context, topic *models.Topic) error
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
	ListTopics(ctx context.Context, q TopicQuery) ([]*models.Topic, int64, error)
	// ApplyTopicEdit reports false when the conditional update matched no row
	ApplyTopicEdit(ctx context.Context, edit TopicEdit) (bool, error)
	SoftDeleteTopic(ctx context.Context, id string, now time.Time) error
	SetTopicFlag(ctx context.Context, id, flag string, value bool, now time.Time) error
	CountComments(ctx context.Context, topicIDs []string) (map[string]int64, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, topicID string, offset, limit int) ([]*models.Comment, int64, error)
	ApplyCommentEdit(ctx context.Context, edit CommentEdit) (bool, error)
	SoftDeleteComment(ctx context.Context, id string, now time.Time) error

	// ToggleLike inserts or deletes the like row in one transaction and
	// returns whether the row exists afterwards. A lost insert race is
	// reported as ErrDuplicateLike.
	ToggleLike(ctx context.Context, kind models.TargetKind, targetID, userID string, now time.Time) (bool, error)
	HasLike(ctx context.Context, kind models.TargetKind, targetID, userID string) (bool, error)
	CountLikes(ctx context.Context, kind models.TargetKind, targetID string) (int64, error)
	ListLikes(ctx context.Context, kind models.TargetKind, targetIDs []string) ([]*models.Like, error)

	SweepExpiredSpoilers(ctx context.Context, kind models.TargetKind, now time.Time) (int64, error)
	ListEditHistory(ctx context.Context, kind models.TargetKind, targetID string) ([]*models.EditHistoryEntry, error)
	LookupUsers(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// ImageStore is the external image blob store
type ImageStore interface {
	Upload(ctx context.Context, base64Image string) (*ImageRef, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// Topic flags settable by moderators
const (
	FlagPinned = "pinned"
	FlagLocked = "locked"
)
