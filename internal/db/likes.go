package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fansite/forum/internal/forum"
	"github.com/fansite/forum/internal/models"
)

// LikeRepository provides like-related database operations
type LikeRepository struct {
	*Repository
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(repo *Repository) *LikeRepository {
	return &LikeRepository{Repository: repo}
}

// ToggleLike deletes the like row if present, inserts it otherwise.
// It returns whether the user likes the target afterwards.
func (r *LikeRepository) ToggleLike(ctx context.Context, kind models.TargetKind, targetID, userID string, now time.Time) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("target_kind = ? AND target_id = ? AND user_id = ?", kind, targetID, userID).
			Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		if err := tx.Create(&models.Like{
			TargetKind: kind,
			TargetID:   targetID,
			UserID:     userID,
			CreatedAt:  now,
		}).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, forum.ErrDuplicateLike
		}
		return false, err
	}
	return liked, nil
}

// HasLike reports whether a user likes a target
func (r *LikeRepository) HasLike(ctx context.Context, kind models.TargetKind, targetID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("target_kind = ? AND target_id = ? AND user_id = ?", kind, targetID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountLikes counts the likes of a target
func (r *LikeRepository) CountLikes(ctx context.Context, kind models.TargetKind, targetID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Count(&count).Error
	return count, err
}

// ListLikes retrieves the like rows of several targets
func (r *LikeRepository) ListLikes(ctx context.Context, kind models.TargetKind, targetIDs []string) ([]*models.Like, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}
	var likes []*models.Like
	if err := r.db.WithContext(ctx).
		Where("target_kind = ? AND target_id IN ?", kind, targetIDs).
		Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}
