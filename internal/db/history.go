package db

import (
	"context"

	"github.com/fansite/forum/internal/models"
)

// HistoryRepository provides read access to edit history
type HistoryRepository struct {
	*Repository
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(repo *Repository) *HistoryRepository {
	return &HistoryRepository{Repository: repo}
}

// ListEditHistory retrieves the history of a target in edit order
func (r *HistoryRepository) ListEditHistory(ctx context.Context, kind models.TargetKind, targetID string) ([]*models.EditHistoryEntry, error) {
	var entries []*models.EditHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Order("edit_number ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// UserRepository reads the site's user directory
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// LookupUsers retrieves users by ID, keyed by ID. Unknown IDs are absent.
func (r *UserRepository) LookupUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []*models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}
