package forum

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fansite/forum/internal/models"
)

// QueryService composes search, ordering and offset pagination over topics and comments
type QueryService struct {
	store        Store
	clock        Clock
	policy       EditPolicy
	spoilers     *SpoilerLifecycle
	likes        *LikeLedger
	defaultLimit int
	maxLimit     int
}

// ListTopics returns one page of non-deleted topics, pinned topics first
func (q *QueryService) ListTopics(ctx context.Context, viewer *Actor, req ListTopicsRequest) (*TopicPage, error) {
	sortBy, err := normalizeSort(req.SortBy)
	if err != nil {
		return nil, err
	}
	page, limit := q.bounds(req.Page, req.Limit)

	q.spoilers.Sweep(ctx, models.KindTopic)

	topics, total, err := q.store.ListTopics(ctx, TopicQuery{
		Search: strings.TrimSpace(req.Search),
		SortBy: sortBy,
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	views, err := q.topicViews(ctx, viewer, topics)
	if err != nil {
		return nil, err
	}

	return &TopicPage{Topics: views, Pagination: newPagination(page, limit, total)}, nil
}

// ListComments returns one page of a topic's comments, newest first.
// Deleted comments are included, masked, so replies keep their parent.
func (q *QueryService) ListComments(ctx context.Context, viewer *Actor, req ListCommentsRequest) (*CommentPage, error) {
	topicID := strings.TrimSpace(req.TopicID)
	if topicID == "" {
		return nil, invalid("topicId", "is required")
	}
	page, limit := q.bounds(req.Page, req.Limit)

	topic, err := q.store.GetTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic: %w", err)
	}
	if topic == nil {
		return nil, ErrNotFound
	}

	q.spoilers.Sweep(ctx, models.KindComment)

	comments, total, err := q.store.ListComments(ctx, topicID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	views, err := q.commentViews(ctx, viewer, comments)
	if err != nil {
		return nil, err
	}

	return &CommentPage{Comments: views, Pagination: newPagination(page, limit, total)}, nil
}

func (q *QueryService) topicViews(ctx context.Context, viewer *Actor, topics []*models.Topic) ([]*TopicView, error) {
	views := make([]*TopicView, 0, len(topics))
	if len(topics) == 0 {
		return views, nil
	}

	ids := make([]string, len(topics))
	authorIDs := make([]string, 0, len(topics))
	for i, t := range topics {
		ids[i] = t.ID
		if !t.Deleted {
			authorIDs = append(authorIDs, t.AuthorID)
		}
	}

	likes, err := q.likes.Summaries(ctx, models.KindTopic, ids, viewer.id())
	if err != nil {
		return nil, err
	}
	commentCounts, err := q.store.CountComments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	authors, err := q.store.LookupUsers(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}

	now := q.clock.Now()
	for _, t := range topics {
		v := newTopicView(t, authors[t.AuthorID])
		like := likes[t.ID]
		v.LikeCount = like.Count
		v.UserHasLiked = like.ViewerHasLiked
		v.CommentCount = commentCounts[t.ID]
		q.applyTopicDecision(v, t, viewer, now)
		v.expireSpoiler(now)
		views = append(views, v)
	}
	return views, nil
}

func (q *QueryService) commentViews(ctx context.Context, viewer *Actor, comments []*models.Comment) ([]*CommentView, error) {
	views := make([]*CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	ids := make([]string, len(comments))
	authorIDs := make([]string, 0, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		if !c.Deleted {
			authorIDs = append(authorIDs, c.AuthorID)
		}
	}

	likes, err := q.likes.Summaries(ctx, models.KindComment, ids, viewer.id())
	if err != nil {
		return nil, err
	}
	authors, err := q.store.LookupUsers(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}

	now := q.clock.Now()
	for _, c := range comments {
		v := newCommentView(c, authors[c.AuthorID])
		like := likes[c.ID]
		v.LikeCount = like.Count
		v.UserHasLiked = like.ViewerHasLiked
		q.applyCommentDecision(v, c, viewer, now)
		v.expireSpoiler(now)
		views = append(views, v)
	}
	return views, nil
}

func (q *QueryService) applyTopicDecision(v *TopicView, t *models.Topic, viewer *Actor, now time.Time) {
	d := q.policy.Decide(TopicEditState(t), now)
	v.RemainingEdits = d.RemainingEdits
	v.EditWindowEndsAt = d.WindowEndsAt
	v.CanEdit = d.Allowed && viewer.id() != "" && viewer.id() == t.AuthorID
}

func (q *QueryService) applyCommentDecision(v *CommentView, c *models.Comment, viewer *Actor, now time.Time) {
	d := q.policy.Decide(CommentEditState(c), now)
	v.RemainingEdits = d.RemainingEdits
	v.EditWindowEndsAt = d.WindowEndsAt
	v.CanEdit = d.Allowed && viewer.id() != "" && viewer.id() == c.AuthorID
}

func (q *QueryService) bounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = q.defaultLimit
	}
	if limit > q.maxLimit {
		limit = q.maxLimit
	}
	return page, limit
}

func normalizeSort(sortBy string) (string, error) {
	switch s := strings.ToLower(strings.TrimSpace(sortBy)); s {
	case "":
		return SortLatest, nil
	case SortLatest, SortOldest, SortPopular:
		return s, nil
	default:
		return "", invalid("sortBy", "must be one of latest, oldest, popular")
	}
}

func newPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
