package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fansite/forum/internal/forum"
	"github.com/fansite/forum/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Store implements forum.Store on top of GORM
type Store struct {
	*TopicRepository
	*CommentRepository
	*LikeRepository
	*HistoryRepository
	*UserRepository
}

var _ forum.Store = (*Store)(nil)

// NewStore builds the forum store from a database handle
func NewStore(db *gorm.DB) *Store {
	repo := NewRepository(db)
	return &Store{
		TopicRepository:   NewTopicRepository(repo),
		CommentRepository: NewCommentRepository(repo),
		LikeRepository:    NewLikeRepository(repo),
		HistoryRepository: NewHistoryRepository(repo),
		UserRepository:    NewUserRepository(repo),
	}
}

// SweepExpiredSpoilers clears spoiler tags whose expiry lies before now
func (s *Store) SweepExpiredSpoilers(ctx context.Context, kind models.TargetKind, now time.Time) (int64, error) {
	var model interface{}
	switch kind {
	case models.KindTopic:
		model = &models.Topic{}
	case models.KindComment:
		model = &models.Comment{}
	default:
		return 0, fmt.Errorf("unknown target kind %q", kind)
	}

	res := s.TopicRepository.db.WithContext(ctx).
		Model(model).
		Where("is_spoiler = ? AND spoiler_expires_at IS NOT NULL AND spoiler_expires_at < ?", true, now).
		Updates(map[string]interface{}{
			"is_spoiler":         false,
			"spoiler_for":        nil,
			"spoiler_expires_at": nil,
		})
	return res.RowsAffected, res.Error
}

// TopicRepository provides topic-related database operations
type TopicRepository struct {
	*Repository
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(repo *Repository) *TopicRepository {
	return &TopicRepository{Repository: repo}
}

// CreateTopic inserts a topic
func (r *TopicRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

// GetTopic retrieves a topic by ID, deleted or not
func (r *TopicRepository) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&topic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &topic, nil
}

// ListTopics retrieves a page of non-deleted topics with pinned topics first
func (r *TopicRepository) ListTopics(ctx context.Context, q forum.TopicQuery) ([]*models.Topic, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Topic{}).Where("deleted = ?", false)
	if q.Search != "" {
		base = base.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(q.Search))+"%")
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var topics []*models.Topic
	if err := base.
		Order(topicOrder(q.SortBy)).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&topics).Error; err != nil {
		return nil, 0, err
	}
	return topics, total, nil
}

// ApplyTopicEdit updates a topic and appends its history row in one transaction.
// It reports false when the row no longer satisfies the edit conditions.
func (r *TopicRepository) ApplyTopicEdit(ctx context.Context, edit forum.TopicEdit) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":      edit.Title,
			"content":    edit.Content,
			"edit_count": gorm.Expr("edit_count + 1"),
			"updated_at": edit.Now,
		}
		if edit.ClearImage {
			updates["image_url"] = nil
			updates["image_key"] = nil
		}

		res := tx.Model(&models.Topic{}).
			Where("id = ? AND edit_count = ? AND deleted = ? AND locked = ? AND created_at >= ?",
				edit.ID, edit.ExpectedEditCount, false, false, edit.WindowStart).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if edit.History != nil {
			if err := tx.Create(edit.History).Error; err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// SoftDeleteTopic marks a topic deleted and drops its image reference.
// Title and content stay in storage.
func (r *TopicRepository) SoftDeleteTopic(ctx context.Context, id string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted":    true,
			"image_url":  nil,
			"image_key":  nil,
			"updated_at": now,
		}).Error
}

// SetTopicFlag sets the pinned or locked flag of a topic
func (r *TopicRepository) SetTopicFlag(ctx context.Context, id, flag string, value bool, now time.Time) error {
	switch flag {
	case forum.FlagPinned, forum.FlagLocked:
	default:
		return fmt.Errorf("unknown topic flag %q", flag)
	}
	return r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			flag:         value,
			"updated_at": now,
		}).Error
}

// CountComments counts the non-deleted comments of each topic
func (r *TopicRepository) CountComments(ctx context.Context, topicIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(topicIDs))
	if len(topicIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TopicID string
		Count   int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("topic_id, COUNT(*) AS count").
		Where("topic_id IN ? AND deleted = ?", topicIDs, false).
		Group("topic_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.TopicID] = row.Count
	}
	return counts, nil
}

func topicOrder(sortBy string) string {
	switch sortBy {
	case forum.SortOldest:
		return "pinned DESC, created_at ASC, id ASC"
	case forum.SortPopular:
		return fmt.Sprintf("pinned DESC, (SELECT COUNT(*) FROM forum_likes WHERE forum_likes.target_kind = '%s' AND forum_likes.target_id = forum_topics.id) DESC, created_at DESC, id DESC", models.KindTopic)
	default:
		return "pinned DESC, created_at DESC, id DESC"
	}
}

// escapeLike escapes LIKE wildcards so search terms match literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
