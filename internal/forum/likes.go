package forum

import (
	"context"
	"errors"
	"fmt"

	"github.com/fansite/forum/internal/models"
)

// LikeLedger toggles per-user likes. Counts always come from the like rows
// themselves, never from a cached counter.
type LikeLedger struct {
	store   Store
	clock   Clock
	metrics *metrics
}

// LikeSummary is the like state of one target as seen by a viewer
type LikeSummary struct {
	Count          int64
	ViewerHasLiked bool
}

// Toggle flips the like of userID on targetID and returns the new state and count
func (l *LikeLedger) Toggle(ctx context.Context, kind models.TargetKind, targetID, userID string) (*LikeResult, error) {
	liked, err := l.store.ToggleLike(ctx, kind, targetID, userID, l.clock.Now())
	if errors.Is(err, ErrDuplicateLike) {
		// A concurrent toggle by the same user won the insert; report what is stored now
		liked, err = l.store.HasLike(ctx, kind, targetID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	count, err := l.store.CountLikes(ctx, kind, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	l.metrics.liked(ctx, kind, liked)

	return &LikeResult{Liked: liked, LikeCount: count}, nil
}

// Summaries loads the like rows of all targetIDs in one query and groups them
func (l *LikeLedger) Summaries(ctx context.Context, kind models.TargetKind, targetIDs []string, viewerID string) (map[string]LikeSummary, error) {
	result := make(map[string]LikeSummary, len(targetIDs))
	if len(targetIDs) == 0 {
		return result, nil
	}

	likes, err := l.store.ListLikes(ctx, kind, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}

	for _, like := range likes {
		summary := result[like.TargetID]
		summary.Count++
		if viewerID != "" && like.UserID == viewerID {
			summary.ViewerHasLiked = true
		}
		result[like.TargetID] = summary
	}

	return result, nil
}
