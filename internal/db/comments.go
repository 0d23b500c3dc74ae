package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fansite/forum/internal/forum"
	"github.com/fansite/forum/internal/models"
)

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// CreateComment inserts a comment
func (r *CommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetComment retrieves a comment by ID, deleted or not
func (r *CommentRepository) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// ListComments retrieves a page of a topic's comments, newest first, deleted included
func (r *CommentRepository) ListComments(ctx context.Context, topicID string, offset, limit int) ([]*models.Comment, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("topic_id = ?", topicID).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*models.Comment
	if err := base.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ApplyCommentEdit updates a comment and appends its history row in one transaction
func (r *CommentRepository) ApplyCommentEdit(ctx context.Context, edit forum.CommentEdit) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Comment{}).
			Where("id = ? AND edit_count = ? AND deleted = ? AND created_at >= ?",
				edit.ID, edit.ExpectedEditCount, false, edit.WindowStart).
			Updates(map[string]interface{}{
				"content":    edit.Content,
				"edit_count": gorm.Expr("edit_count + 1"),
				"updated_at": edit.Now,
			})
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

// SoftDeleteComment marks a comment deleted; content stays in storage
func (r *CommentRepository) SoftDeleteComment(ctx context.Context, id string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted":    true,
			"updated_at": now,
		}).Error
}
