package forum

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fansite/forum/internal/models"
	"github.com/fansite/forum/pkg/logging"
	"github.com/fansite/forum/pkg/telemetry"
)

// Config holds the lifecycle limits of the forum
type Config struct {
	EditWindow      time.Duration
	MaxEdits        int
	DefaultPageSize int
	MaxPageSize     int
}

// Service exposes the public topic/comment operations.
// Every call receives the actor explicitly; nil means anonymous.
type Service struct {
	store     Store
	images    ImageStore
	clock     Clock
	policy    EditPolicy
	guard     ModerationGuard
	sanitizer *Sanitizer
	spoilers  *SpoilerLifecycle
	likes     *LikeLedger
	query     *QueryService
	logger    *zap.Logger
	metrics   *metrics
}

// NewService wires the forum components. A nil clock uses the system clock
// and a nil logger uses the global one.
func NewService(store Store, images ImageStore, clock Clock, logger *zap.Logger, cfg Config) *Service {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = logging.WithComponent("forum")
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}

	m := newMetrics(telemetry.Meter())
	policy := NewEditPolicy(cfg.EditWindow, cfg.MaxEdits)
	spoilers := &SpoilerLifecycle{store: store, clock: clock, logger: logger, metrics: m}
	likes := &LikeLedger{store: store, clock: clock, metrics: m}

	return &Service{
		store:     store,
		images:    images,
		clock:     clock,
		policy:    policy,
		sanitizer: NewSanitizer(),
		spoilers:  spoilers,
		likes:     likes,
		query: &QueryService{
			store:        store,
			clock:        clock,
			policy:       policy,
			spoilers:     spoilers,
			likes:        likes,
			defaultLimit: cfg.DefaultPageSize,
			maxLimit:     cfg.MaxPageSize,
		},
		logger:  logger,
		metrics: m,
	}
}

// Policy returns the edit policy in force
func (s *Service) Policy() EditPolicy {
	return s.policy
}

// ListTopics returns a page of topics
func (s *Service) ListTopics(ctx context.Context, viewer *Actor, req ListTopicsRequest) (*TopicPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.list_topics")
	defer span.End()

	return s.query.ListTopics(ctx, viewer, req)
}

// GetTopic returns a single topic; deleted topics come back masked
func (s *Service) GetTopic(ctx context.Context, viewer *Actor, id string) (*TopicView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.get_topic")
	defer span.End()

	s.spoilers.Sweep(ctx, models.KindTopic)

	topic, err := s.loadTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.topicView(ctx, viewer, topic)
}

// CreateTopic creates a topic owned by the actor
func (s *Service) CreateTopic(ctx context.Context, actor *Actor, req CreateTopicRequest) (*TopicView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.create_topic")
	defer span.End()

	if err := s.guard.AssertAuthenticated(actor); err != nil {
		return nil, err
	}

	title := s.sanitizer.Title(req.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	content := s.sanitizer.Content(req.Content)
	if err := validateContent(content); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	spoiler, err := resolveSpoiler(req.SpoilerInput, now, s.sanitizer)
	if err != nil {
		return nil, err
	}

	image, uploaded, err := s.resolveImage(ctx, req)
	if err != nil {
		return nil, err
	}

	topic := &models.Topic{
		ID:               uuid.NewString(),
		Title:            title,
		Content:          content,
		AuthorID:         actor.UserID,
		CreatedAt:        now,
		UpdatedAt:        now,
		IsSpoiler:        spoiler.IsSpoiler,
		SpoilerFor:       spoiler.SpoilerFor,
		SpoilerExpiresAt: spoiler.ExpiresAt,
	}
	if image != nil {
		topic.ImageURL = &image.URL
		topic.ImageKey = &image.Key
	}

	if err := s.store.CreateTopic(ctx, topic); err != nil {
		if uploaded {
			s.releaseImage(ctx, image.Key)
		}
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	s.logger.Info("Topic created",
		zap.String("topic_id", topic.ID),
		zap.String("author_id", topic.AuthorID),
		zap.Bool("spoiler", topic.IsSpoiler))

	return s.topicView(ctx, actor, topic)
}

// EditTopic changes the title and content of a topic within the edit policy
func (s *Service) EditTopic(ctx context.Context, actor *Actor, id string, req EditTopicRequest) (*TopicView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.edit_topic")
	defer span.End()

	if err := s.guard.AssertAuthenticated(actor); err != nil {
		return nil, err
	}

	title := s.sanitizer.Title(req.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	content := s.sanitizer.Content(req.Content)
	if err := validateContent(content); err != nil {
		return nil, err
	}

	topic, err := s.loadLiveTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AssertCanEdit(actor, topic.AuthorID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.policy.Check(TopicEditState(topic), now); err != nil {
		s.metrics.rejected(ctx, models.KindTopic, err)
		return nil, err
	}
	if title == topic.Title && content == topic.Content {
		s.metrics.rejected(ctx, models.KindTopic, ErrNoChange)
		return nil, ErrNoChange
	}

	previousTitle := topic.Title
	applied, err := s.store.ApplyTopicEdit(ctx, TopicEdit{
		ID:                topic.ID,
		ExpectedEditCount: topic.EditCount,
		WindowStart:       s.policy.WindowStart(now),
		Title:             title,
		Content:           content,
		ClearImage:        topic.HasImage(),
		History: &models.EditHistoryEntry{
			ID:              uuid.NewString(),
			TargetKind:      models.KindTopic,
			TargetID:        topic.ID,
			EditNumber:      topic.EditCount + 1,
			PreviousTitle:   &previousTitle,
			PreviousContent: topic.Content,
			EditedBy:        actor.UserID,
			CreatedAt:       now,
		},
		Now: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit topic: %w", err)
	}
	if !applied {
		err := s.topicConflict(ctx, topic.ID, now)
		s.metrics.rejected(ctx, models.KindTopic, err)
		return nil, err
	}

	if topic.HasImage() {
		s.releaseImage(ctx, *topic.ImageKey)
	}
	s.metrics.edited(ctx, models.KindTopic)

	s.logger.Info("Topic edited",
		zap.String("topic_id", topic.ID),
		zap.Int("edit_number", topic.EditCount+1))

	updated, err := s.loadTopic(ctx, topic.ID)
	if err != nil {
		return nil, err
	}
	return s.topicView(ctx, actor, updated)
}

// DeleteTopic soft-deletes a topic and releases its image
func (s *Service) DeleteTopic(ctx context.Context, actor *Actor, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "forum.delete_topic")
	defer span.End()

	if err := s.guard.AssertAuthenticated(actor); err != nil {
		return err
	}
	topic, err := s.loadLiveTopic(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.AssertCanDelete(actor, topic.AuthorID); err != nil {
		return err
	}

	if err := s.store.SoftDeleteTopic(ctx, topic.ID, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}
	if topic.HasImage() {
		s.releaseImage(ctx, *topic.ImageKey)
	}

	s.logger.Info("Topic deleted",
		zap.String("topic_id", topic.ID),
		zap.String("actor_id", actor.UserID),
		zap.Bool("by_admin", actor.UserID != topic.AuthorID))
	return nil
}

// SetTopicPinned pins or unpins a topic
func (s *Service) SetTopicPinned(ctx context.Context, actor *Actor, id string, pinned bool) (*TopicView, error) {
	return s.setTopicFlag(ctx, actor, id, FlagPinned, pinned)
}

// SetTopicLocked locks or unlocks a topic
func (s *Service) SetTopicLocked(ctx context.Context, actor *Actor, id string, locked bool) (*TopicView, error) {
	return s.setTopicFlag(ctx, actor, id, FlagLocked, locked)
}

func (s *Service) setTopicFlag(ctx context.Context, actor *Actor, id, flag string, value bool) (*TopicView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.set_topic_"+flag)
	defer span.End()

	if err := s.guard.AssertAdmin(actor); err != nil {
		return nil, err
	}
	topic, err := s.loadLiveTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetTopicFlag(ctx, topic.ID, flag, value, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("failed to set topic %s: %w", flag, err)
	}

	s.logger.Info("Topic flag changed",
		zap.String("topic_id", topic.ID),
		zap.String("flag", flag),
		zap.Bool("value", value))

	updated, err := s.loadTopic(ctx, topic.ID)
	if err != nil {
		return nil, err
	}
	return s.topicView(ctx, actor, updated)
}

// ToggleTopicLike flips the actor's like on a topic
func (s *Service) ToggleTopicLike(ctx context.Context, actor *Actor, topicID string) (*LikeResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.toggle_topic_like")
	defer span.End()

	if err := s.guard.AssertAuthenticated(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(topicID) == "" {
		return nil, invalid("topicId", "is required")
	}
	topic, err := s.loadLiveTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return s.likes.Toggle(ctx, models.KindTopic, topic.ID, actor.UserID)
}

// TopicHistory lists the edit history of a topic, oldest edit first
func (s *Service) TopicHistory(ctx context.Context, actor *Actor, id string) ([]*HistoryEntryView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.topic_history")
	defer span.End()

	if err := s.guard.AssertAuthenticated(actor); err != nil {
		return nil, err
	}
	topic, err := s.loadTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AssertCanViewHistory(actor, topic.AuthorID); err != nil {
		return nil, err
	}
	return s.history(ctx, models.KindTopic, topic.ID)
}

// ListComments returns a page of comments of a topic
func (s *Service) ListComments(ctx context.Context, viewer *Actor, req ListCommentsRequest) (*CommentPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.list_comments")
	defer span.End()

	return s.query.ListComments(ctx, viewer, req)
}

// CreateComment adds a comment, optionally as a reply to another comment of the same topic
func (s *Service) CreateComment(ctx context.Context, actor *Actor, req CreateCommentRequest) (*CommentView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.create_comment")
	defer span.End()

	if err := s.guard.AssertAuthenticated(actor); err != nil {
		return nil, err
	}

	topicID := strings.TrimSpace(req.TopicID)
	if topicID == "" {
		return nil, invalid("topicId", "is required")
	}
	content := s.sanitizer.Content(req.Content)
	if err := validateContent(content); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	spoiler, err := resolveSpoiler(req.SpoilerInput, now, s.sanitizer)
	if err != nil {
		return nil, err
	}

	topic, err := s.loadLiveTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic.Locked {
		return nil, ErrLocked
	}

	var parentID *string
	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) != "" {
		parent, err := s.store.GetComment(ctx, strings.TrimSpace(*req.ParentID))
		if err != nil {
			return nil, fmt.Errorf("failed to load parent comment: %w", err)
		}
		if parent == nil || parent.TopicID != topic.ID {
			return nil, invalid("parentId", "must reference a comment in the same topic")
		}
		parentID = &parent.ID
	}

	comment := &models.Comment{
		ID:               uuid.NewString(),
		TopicID:          topic.ID,
		ParentID:         parentID,
		Content:          content,
		AuthorID:         actor.UserID,
		CreatedAt:        now,
		UpdatedAt:        now,
		IsSpoiler:        spoiler.IsSpoiler,
		SpoilerFor:       spoiler.SpoilerFor,
		SpoilerExpiresAt: spoiler.ExpiresAt,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.logger.Info("Comment created",
		zap.String("comment_id", comment.ID),
		zap.String("topic_id", comment.TopicID),
		zap.Bool("reply", parentID != nil))

	return s.commentView(ctx, actor, comment)
}

// EditComment changes the content of a comment within the edit policy
func (s *Service) EditComment(ctx context.Context, actor *Actor, id string, req EditCommentRequest) (*CommentView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.edit_comment")
	defer span.End()

	if err := s.guard.AssertAuthenticated(actor); err != nil {
		return nil, err
	}
	content := s.sanitizer.Content(req.Content)
	if err := validateContent(content); err != nil {
		return nil, err
	}

	comment, err := s.loadLiveComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AssertCanEdit(actor, comment.AuthorID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.policy.Check(CommentEditState(comment), now); err != nil {
		s.metrics.rejected(ctx, models.KindComment, err)
		return nil, err
	}
	if content == comment.Content {
		s.metrics.rejected(ctx, models.KindComment, ErrNoChange)
		return nil, ErrNoChange
	}

	applied, err := s.store.ApplyCommentEdit(ctx, CommentEdit{
		ID:                comment.ID,
		ExpectedEditCount: comment.EditCount,
		WindowStart:       s.policy.WindowStart(now),
		Content:           content,
		History: &models.EditHistoryEntry{
			ID:              uuid.NewString(),
			TargetKind:      models.KindComment,
			TargetID:        comment.ID,
			EditNumber:      comment.EditCount + 1,
			PreviousContent: comment.Content,
			EditedBy:        actor.UserID,
			CreatedAt:       now,
		},
		Now: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit comment: %w", err)
	}
	if !applied {
		err := s.commentConflict(ctx, comment.ID, now)
		s.metrics.rejected(ctx, models.KindComment, err)
		return nil, err
	}
	s.metrics.edited(ctx, models.KindComment)

	updated, err := s.loadComment(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	return s.commentView(ctx, actor, updated)
}

// DeleteComment soft-deletes a comment; replies keep pointing at it
func (s *Service) DeleteComment(ctx context.Context, actor *Actor, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "forum.delete_comment")
	defer span.End()

	if err := s.guard.AssertAuthenticated(actor); err != nil {
		return err
	}
	comment, err := s.loadLiveComment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.AssertCanDelete(actor, comment.AuthorID); err != nil {
		return err
	}
	if err := s.store.SoftDeleteComment(ctx, comment.ID, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.logger.Info("Comment deleted",
		zap.String("comment_id", comment.ID),
		zap.String("actor_id", actor.UserID))
	return nil
}

// ToggleCommentLike flips the actor's like on a comment
func (s *Service) ToggleCommentLike(ctx context.Context, actor *Actor, commentID string) (*LikeResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.toggle_comment_like")
	defer span.End()

	if err := s.guard.AssertAuthenticated(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(commentID) == "" {
		return nil, invalid("commentId", "is required")
	}
	comment, err := s.loadLiveComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return s.likes.Toggle(ctx, models.KindComment, comment.ID, actor.UserID)
}

// CommentHistory lists the edit history of a comment, oldest edit first
func (s *Service) CommentHistory(ctx context.Context, actor *Actor, id string) ([]*HistoryEntryView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.comment_history")
	defer span.End()

	if err := s.guard.AssertAuthenticated(actor); err != nil {
		return nil, err
	}
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AssertCanViewHistory(actor, comment.AuthorID); err != nil {
		return nil, err
	}
	return s.history(ctx, models.KindComment, comment.ID)
}

// SweepExpiredSpoilers clears expired spoiler tags on topics and comments
// and returns the number of rows cleared
func (s *Service) SweepExpiredSpoilers(ctx context.Context) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.sweep_spoilers")
	defer span.End()

	var total int64
	now := s.clock.Now()
	for _, kind := range []models.TargetKind{models.KindTopic, models.KindComment} {
		n, err := s.store.SweepExpiredSpoilers(ctx, kind, now)
		if err != nil {
			return total, fmt.Errorf("failed to sweep %s spoilers: %w", kind, err)
		}
		s.metrics.swept(ctx, kind, n)
		total += n
	}
	return total, nil
}

func (s *Service) loadTopic(ctx context.Context, id string) (*models.Topic, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	topic, err := s.store.GetTopic(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic: %w", err)
	}
	if topic == nil {
		return nil, ErrNotFound
	}
	return topic, nil
}

// loadLiveTopic treats a soft-deleted topic as missing. Every mutation loads
// its target here, so expired spoilers are cleared before the write.
func (s *Service) loadLiveTopic(ctx context.Context, id string) (*models.Topic, error) {
	s.spoilers.Sweep(ctx, models.KindTopic)
	topic, err := s.loadTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	if topic.Deleted {
		return nil, ErrNotFound
	}
	return topic, nil
}

func (s *Service) loadComment(ctx context.Context, id string) (*models.Comment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	comment, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	if comment == nil {
		return nil, ErrNotFound
	}
	return comment, nil
}

func (s *Service) loadLiveComment(ctx context.Context, id string) (*models.Comment, error) {
	s.spoilers.Sweep(ctx, models.KindComment)
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.Deleted {
		return nil, ErrNotFound
	}
	return comment, nil
}

// topicConflict explains why a conditional topic update matched nothing
func (s *Service) topicConflict(ctx context.Context, id string, now time.Time) error {
	current, err := s.loadTopic(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Check(TopicEditState(current), now); err != nil {
		return err
	}
	return ErrEditConflict
}

func (s *Service) commentConflict(ctx context.Context, id string, now time.Time) error {
	current, err := s.loadComment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Check(CommentEditState(current), now); err != nil {
		return err
	}
	return ErrEditConflict
}

func (s *Service) topicView(ctx context.Context, viewer *Actor, topic *models.Topic) (*TopicView, error) {
	views, err := s.query.topicViews(ctx, viewer, []*models.Topic{topic})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *Service) commentView(ctx context.Context, viewer *Actor, comment *models.Comment) (*CommentView, error) {
	views, err := s.query.commentViews(ctx, viewer, []*models.Comment{comment})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *Service) history(ctx context.Context, kind models.TargetKind, id string) ([]*HistoryEntryView, error) {
	entries, err := s.store.ListEditHistory(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load edit history: %w", err)
	}
	views := make([]*HistoryEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, &HistoryEntryView{
			EditNumber:      e.EditNumber,
			PreviousTitle:   e.PreviousTitle,
			PreviousContent: e.PreviousContent,
			EditedBy:        e.EditedBy,
			EditedAt:        e.CreatedAt,
		})
	}
	return views, nil
}

// resolveImage returns the image to attach to a new topic and whether it was uploaded here
func (s *Service) resolveImage(ctx context.Context, req CreateTopicRequest) (*ImageRef, bool, error) {
	imageURL := strings.TrimSpace(req.ImageURL)
	imageKey := strings.TrimSpace(req.ImageKey)

	switch {
	case strings.TrimSpace(req.Image) != "":
		payload := strings.TrimSpace(req.Image)
		if err := validateImagePayload(payload); err != nil {
			return nil, false, err
		}
		if s.images == nil {
			return nil, false, &UpstreamError{Service: "image store", Err: errors.New("not configured")}
		}
		ref, err := s.images.Upload(ctx, payload)
		if err != nil {
			return nil, false, &UpstreamError{Service: "image store", Err: err}
		}
		return ref, true, nil
	case imageURL != "" && imageKey != "":
		return &ImageRef{URL: imageURL, Key: imageKey}, false, nil
	case imageURL != "":
		return nil, false, invalid("imageKey", "is required with imageUrl")
	case imageKey != "":
		return nil, false, invalid("imageUrl", "is required with imageKey")
	}
	return nil, false, nil
}

// validateImagePayload accepts raw base64 or a base64 data URL whose
// decoded size is at most MaxImagePayload. The size is checked before decoding.
func validateImagePayload(payload string) error {
	if strings.HasPrefix(payload, "data:") {
		i := strings.Index(payload, ";base64,")
		if i < 0 {
			return invalid("image", "must be a base64 data URL")
		}
		payload = payload[i+len(";base64,"):]
	}
	padding := len(payload) - len(strings.TrimRight(payload, "="))
	if base64.StdEncoding.DecodedLen(len(payload))-padding > MaxImagePayload {
		return invalid("image", "must be at most %d bytes", MaxImagePayload)
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return invalid("image", "must be base64 encoded")
	}
	return nil
}

// releaseImage deletes an image from the image store. Failures are logged:
// an orphaned image is preferred over a blocked edit or delete.
func (s *Service) releaseImage(ctx context.Context, key string) {
	if s.images == nil || key == "" {
		return
	}
	deleted, err := s.images.Delete(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to release image", zap.String("image_key", key), zap.Error(err))
		return
	}
	if !deleted {
		s.logger.Warn("Image store did not delete image", zap.String("image_key", key))
	}
}
