package forum_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fansite/forum/internal/db"
	"github.com/fansite/forum/internal/forum"
	"github.com/fansite/forum/internal/models"
	"github.com/fansite/forum/pkg/config"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) Upload(ctx context.Context, image string) (*forum.ImageRef, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forum.ImageRef), args.Error(1)
}

func (m *mockImageStore) Delete(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type harness struct {
	svc    *forum.Service
	store  *db.Store
	db     *db.DB
	clock  *fakeClock
	images *mockImageStore
}

var (
	alice = &forum.Actor{UserID: "alice", Role: forum.RoleUser}
	bob   = &forum.Actor{UserID: "bob", Role: forum.RoleUser}
	admin = &forum.Actor{UserID: "mod", Role: forum.RoleAdmin}
)

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithStore(t, func(s *db.Store) forum.Store { return s })
}

// newHarnessWithStore puts wrap in front of the sqlite store the service uses;
// h.store still reaches the underlying rows directly
func newHarnessWithStore(t *testing.T, wrap func(*db.Store) forum.Store) *harness {
	t.Helper()
	database, err := db.New(&config.DatabaseConfig{
		Driver: "sqlite",
		URL:    fmt.Sprintf("file:forum-%s?mode=memory&cache=shared", uuid.NewString()),
	}, "ERROR")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, database.Create(&models.User{ID: "alice", Username: "Alice"}).Error)

	h := &harness{
		store:  db.NewStore(database.DB),
		db:     database,
		clock:  &fakeClock{now: t0},
		images: &mockImageStore{},
	}
	h.svc = forum.NewService(wrap(h.store), h.images, h.clock, zap.NewNop(), forum.Config{
		EditWindow:      time.Hour,
		MaxEdits:        5,
		DefaultPageSize: 10,
		MaxPageSize:     50,
	})
	return h
}

func (h *harness) createTopic(t *testing.T, actor *forum.Actor, title string) *forum.TopicView {
	t.Helper()
	v, err := h.svc.CreateTopic(context.Background(), actor, forum.CreateTopicRequest{
		Title:   title,
		Content: "content of " + title,
	})
	require.NoError(t, err)
	return v
}

func TestCreateTopic(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	v, err := h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{
		Title:   "  <b>T1</b> ",
		Content: "C1<script>x()</script>",
	})
	require.NoError(t, err)
	assert.Equal(t, "T1", v.Title)
	assert.Equal(t, "C1<script>x()</script>", v.Content)
	assert.NotContains(t, v.ContentHTML, "<script")
	require.NotNil(t, v.Username)
	assert.Equal(t, "Alice", *v.Username)
	assert.Zero(t, v.EditCount)
	assert.Equal(t, 5, v.RemainingEdits)
	assert.True(t, v.CanEdit)
	assert.Equal(t, t0.Add(time.Hour), v.EditWindowEndsAt)
}

func TestCreateTopic_Rejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.CreateTopic(ctx, nil, forum.CreateTopicRequest{})
	assert.ErrorIs(t, err, forum.ErrUnauthenticated)

	_, err = h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{Title: "  ", Content: "x"})
	var verr *forum.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	_, err = h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{Title: "x", Content: "y", ImageURL: "https://img/x"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "imageKey", verr.Field)
}

func TestCreateTopic_Upload(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.images.On("Upload", mock.Anything, "aGVsbG8=").
		Return(&forum.ImageRef{URL: "https://img/k1", Key: "k1"}, nil).Once()
	v, err := h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{Title: "pic", Content: "see", Image: "aGVsbG8="})
	require.NoError(t, err)
	require.NotNil(t, v.ImageURL)
	assert.Equal(t, "https://img/k1", *v.ImageURL)

	h.images.On("Upload", mock.Anything, "Ym9vbQ==").Return(nil, errors.New("boom")).Once()
	_, err = h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{Title: "pic", Content: "see", Image: "Ym9vbQ=="})
	assert.True(t, forum.IsUpstreamError(err))

	_, err = h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{Title: "pic", Content: "see", Image: "not base64!"})
	assert.True(t, forum.IsValidationError(err))

	h.images.AssertExpectations(t)
}

func TestEditTopic_Cap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	topic := h.createTopic(t, alice, "capped")

	for i := 1; i <= 5; i++ {
		h.clock.Advance(time.Minute)
		v, err := h.svc.EditTopic(ctx, alice, topic.ID, forum.EditTopicRequest{
			Title:   fmt.Sprintf("capped v%d", i),
			Content: topic.Content,
		})
		require.NoError(t, err)
		assert.Equal(t, i, v.EditCount)
		assert.Equal(t, 5-i, v.RemainingEdits)
	}

	_, err := h.svc.EditTopic(ctx, alice, topic.ID, forum.EditTopicRequest{Title: "capped v6", Content: topic.Content})
	assert.ErrorIs(t, err, forum.ErrMaxEditsReached)

	history, err := h.svc.TopicHistory(ctx, alice, topic.ID)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, "capped", *history[0].PreviousTitle)
	assert.Equal(t, 5, history[4].EditNumber)
}

func TestEditTopic_Window(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	early := h.createTopic(t, alice, "early")
	h.clock.Advance(59 * time.Minute)
	_, err := h.svc.EditTopic(ctx, alice, early.ID, forum.EditTopicRequest{Title: "early b", Content: early.Content})
	require.NoError(t, err)

	late := h.createTopic(t, alice, "late")
	h.clock.Advance(61 * time.Minute)
	_, err = h.svc.EditTopic(ctx, alice, late.ID, forum.EditTopicRequest{Title: "late b", Content: late.Content})
	assert.ErrorIs(t, err, forum.ErrEditWindowExpired)

	v, err := h.svc.GetTopic(ctx, alice, late.ID)
	require.NoError(t, err)
	assert.False(t, v.CanEdit)
}

func TestEditTopic_NoChange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	topic := h.createTopic(t, alice, "same")

	_, err := h.svc.EditTopic(ctx, alice, topic.ID, forum.EditTopicRequest{Title: " same ", Content: topic.Content + "  "})
	assert.ErrorIs(t, err, forum.ErrNoChange)

	v, err := h.svc.GetTopic(ctx, alice, topic.ID)
	require.NoError(t, err)
	assert.Zero(t, v.EditCount)

	history, err := h.svc.TopicHistory(ctx, alice, topic.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestEditTopic_Guards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	topic := h.createTopic(t, alice, "mine")
	req := forum.EditTopicRequest{Title: "theirs", Content: "changed"}

	_, err := h.svc.EditTopic(ctx, nil, topic.ID, forum.EditTopicRequest{})
	assert.ErrorIs(t, err, forum.ErrUnauthenticated)

	_, err = h.svc.EditTopic(ctx, bob, topic.ID, req)
	assert.ErrorIs(t, err, forum.ErrForbidden)

	_, err = h.svc.EditTopic(ctx, admin, topic.ID, req)
	assert.ErrorIs(t, err, forum.ErrForbidden)

	_, err = h.svc.EditTopic(ctx, alice, "missing", req)
	assert.ErrorIs(t, err, forum.ErrNotFound)

	_, err = h.svc.SetTopicLocked(ctx, admin, topic.ID, true)
	require.NoError(t, err)
	_, err = h.svc.EditTopic(ctx, alice, topic.ID, req)
	assert.ErrorIs(t, err, forum.ErrLocked)
}

func TestEditTopic_ReleasesImage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	topic, err := h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{
		Title: "pic", Content: "see", ImageURL: "https://img/k9", ImageKey: "k9",
	})
	require.NoError(t, err)

	h.images.On("Delete", mock.Anything, "k9").Return(false, errors.New("gone")).Once()
	v, err := h.svc.EditTopic(ctx, alice, topic.ID, forum.EditTopicRequest{Title: "pic", Content: "see more"})
	require.NoError(t, err)
	assert.Nil(t, v.ImageURL)

	h.images.AssertExpectations(t)
}

func TestToggleTopicLike(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	topic := h.createTopic(t, alice, "likeable")

	res, err := h.svc.ToggleTopicLike(ctx, bob, topic.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikeCount)

	v, err := h.svc.GetTopic(ctx, bob, topic.ID)
	require.NoError(t, err)
	assert.True(t, v.UserHasLiked)
	assert.Equal(t, int64(1), v.LikeCount)

	res, err = h.svc.ToggleTopicLike(ctx, bob, topic.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Zero(t, res.LikeCount)

	_, err = h.svc.ToggleTopicLike(ctx, nil, topic.ID)
	assert.ErrorIs(t, err, forum.ErrUnauthenticated)

	_, err = h.svc.ToggleTopicLike(ctx, bob, "")
	assert.True(t, forum.IsValidationError(err))
}

func TestDeleteTopic(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	mine := h.createTopic(t, alice, "doomed")
	other := h.createTopic(t, alice, "moderated")

	assert.ErrorIs(t, h.svc.DeleteTopic(ctx, bob, mine.ID), forum.ErrForbidden)
	require.NoError(t, h.svc.DeleteTopic(ctx, alice, mine.ID))
	require.NoError(t, h.svc.DeleteTopic(ctx, admin, other.ID))
	assert.ErrorIs(t, h.svc.DeleteTopic(ctx, alice, mine.ID), forum.ErrNotFound)

	v, err := h.svc.GetTopic(ctx, alice, mine.ID)
	require.NoError(t, err)
	assert.True(t, v.Deleted)
	assert.Equal(t, forum.DeletedTitle, v.Title)
	assert.Equal(t, forum.DeletedContent, v.Content)
	assert.Nil(t, v.AuthorID)
	assert.Nil(t, v.Username)
	assert.False(t, v.CanEdit)

	stored, err := h.store.GetTopic(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "doomed", stored.Title)

	page, err := h.svc.ListTopics(ctx, nil, forum.ListTopicsRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Topics)

	_, err = h.svc.ToggleTopicLike(ctx, bob, mine.ID)
	assert.ErrorIs(t, err, forum.ErrNotFound)
}

func TestListTopics_PinnedFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a := h.createTopic(t, alice, "A")
	h.clock.Advance(2 * time.Minute)
	c := h.createTopic(t, alice, "C")
	h.clock.Advance(2 * time.Minute)
	b := h.createTopic(t, alice, "B")

	for _, id := range []string{a.ID, c.ID} {
		_, err := h.svc.SetTopicPinned(ctx, admin, id, true)
		require.NoError(t, err)
	}
	_, err := h.svc.SetTopicPinned(ctx, alice, b.ID, true)
	assert.ErrorIs(t, err, forum.ErrForbidden)

	page, err := h.svc.ListTopics(ctx, nil, forum.ListTopicsRequest{SortBy: "latest"})
	require.NoError(t, err)
	require.Len(t, page.Topics, 3)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, []string{page.Topics[0].ID, page.Topics[1].ID, page.Topics[2].ID})
	assert.Equal(t, forum.Pagination{Page: 1, Limit: 10, Total: 3, TotalPages: 1}, page.Pagination)

	page, err = h.svc.ListTopics(ctx, nil, forum.ListTopicsRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Topics, 1)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	_, err = h.svc.ListTopics(ctx, nil, forum.ListTopicsRequest{SortBy: "hottest"})
	assert.True(t, forum.IsValidationError(err))
}

func TestSpoilerExpiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	topic, err := h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{
		Title:        "finale",
		Content:      "who dies",
		SpoilerInput: forum.SpoilerInput{IsSpoiler: true, SpoilerFor: "S3", SpoilerDurationDays: 1},
	})
	require.NoError(t, err)
	assert.True(t, topic.IsSpoiler)

	h.clock.Advance(24*time.Hour + time.Second)

	page, err := h.svc.ListTopics(ctx, nil, forum.ListTopicsRequest{})
	require.NoError(t, err)
	require.Len(t, page.Topics, 1)
	assert.False(t, page.Topics[0].IsSpoiler)
	assert.Nil(t, page.Topics[0].SpoilerFor)
	assert.Nil(t, page.Topics[0].SpoilerExpiresAt)

	stored, err := h.store.GetTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSpoiler)
	assert.Nil(t, stored.SpoilerExpiresAt)
}

func TestComments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	topic := h.createTopic(t, alice, "thread")
	elsewhere := h.createTopic(t, alice, "elsewhere")

	root, err := h.svc.CreateComment(ctx, bob, forum.CreateCommentRequest{TopicID: topic.ID, Content: "first"})
	require.NoError(t, err)

	h.clock.Advance(time.Minute)
	reply, err := h.svc.CreateComment(ctx, alice, forum.CreateCommentRequest{TopicID: topic.ID, ParentID: &root.ID, Content: "reply"})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	_, err = h.svc.CreateComment(ctx, alice, forum.CreateCommentRequest{TopicID: elsewhere.ID, ParentID: &root.ID, Content: "lost"})
	var verr *forum.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "parentId", verr.Field)

	edited, err := h.svc.EditComment(ctx, bob, root.ID, forum.EditCommentRequest{Content: "first!"})
	require.NoError(t, err)
	assert.Equal(t, 1, edited.EditCount)

	_, err = h.svc.ToggleCommentLike(ctx, alice, root.ID)
	require.NoError(t, err)

	require.NoError(t, h.svc.DeleteComment(ctx, admin, root.ID))
	_, err = h.svc.EditComment(ctx, bob, root.ID, forum.EditCommentRequest{Content: "again"})
	assert.ErrorIs(t, err, forum.ErrNotFound)

	page, err := h.svc.ListComments(ctx, alice, forum.ListCommentsRequest{TopicID: topic.ID})
	require.NoError(t, err)
	require.Len(t, page.Comments, 2)
	assert.Equal(t, reply.ID, page.Comments[0].ID)
	masked := page.Comments[1]
	assert.Equal(t, forum.DeletedContent, masked.Content)
	assert.Nil(t, masked.AuthorID)
	assert.Equal(t, int64(1), masked.LikeCount)
	assert.Equal(t, root.ID, *page.Comments[0].ParentID)

	v, err := h.svc.GetTopic(ctx, nil, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.CommentCount)

	_, err = h.svc.ListComments(ctx, nil, forum.ListCommentsRequest{})
	assert.True(t, forum.IsValidationError(err))
}

func TestCreateComment_LockedTopic(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	topic := h.createTopic(t, alice, "closed")

	existing, err := h.svc.CreateComment(ctx, bob, forum.CreateCommentRequest{TopicID: topic.ID, Content: "early"})
	require.NoError(t, err)

	_, err = h.svc.SetTopicLocked(ctx, admin, topic.ID, true)
	require.NoError(t, err)

	_, err = h.svc.CreateComment(ctx, bob, forum.CreateCommentRequest{TopicID: topic.ID, Content: "late"})
	assert.ErrorIs(t, err, forum.ErrLocked)

	// existing comments stay editable
	_, err = h.svc.EditComment(ctx, bob, existing.ID, forum.EditCommentRequest{Content: "early edit"})
	assert.NoError(t, err)
}

func TestHistory_Access(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	topic := h.createTopic(t, alice, "audited")

	comment, err := h.svc.CreateComment(ctx, alice, forum.CreateCommentRequest{TopicID: topic.ID, Content: "v1"})
	require.NoError(t, err)
	_, err = h.svc.EditComment(ctx, alice, comment.ID, forum.EditCommentRequest{Content: "v2"})
	require.NoError(t, err)

	_, err = h.svc.CommentHistory(ctx, bob, comment.ID)
	assert.ErrorIs(t, err, forum.ErrForbidden)

	history, err := h.svc.CommentHistory(ctx, admin, comment.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "v1", history[0].PreviousContent)
	assert.Nil(t, history[0].PreviousTitle)
	assert.Equal(t, "alice", history[0].EditedBy)
}

func TestScenario_EditThenDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	topic, err := h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{Title: "T1", Content: "C1"})
	require.NoError(t, err)

	h.clock.Advance(10 * time.Minute)
	v, err := h.svc.EditTopic(ctx, alice, topic.ID, forum.EditTopicRequest{Title: "T1b", Content: "C1"})
	require.NoError(t, err)
	assert.Equal(t, 1, v.EditCount)
	assert.Equal(t, 4, v.RemainingEdits)

	h.clock.Advance(10 * time.Minute)
	require.NoError(t, h.svc.DeleteTopic(ctx, alice, topic.ID))

	v, err = h.svc.GetTopic(ctx, alice, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.DeletedContent, v.Content)
	assert.False(t, v.CanEdit)
	assert.Zero(t, v.RemainingEdits)

	_, err = h.svc.EditTopic(ctx, alice, topic.ID, forum.EditTopicRequest{Title: "T1c", Content: "C1"})
	assert.ErrorIs(t, err, forum.ErrNotFound)
}

func TestSweepExpiredSpoilers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	topic := h.createTopic(t, alice, "host")

	spoiler := forum.SpoilerInput{IsSpoiler: true, SpoilerFor: "S4", SpoilerDurationDays: 2}
	_, err := h.svc.CreateComment(ctx, bob, forum.CreateCommentRequest{TopicID: topic.ID, Content: "twist", SpoilerInput: spoiler})
	require.NoError(t, err)
	_, err = h.svc.CreateTopic(ctx, bob, forum.CreateTopicRequest{Title: "twist", Content: "twist", SpoilerInput: spoiler})
	require.NoError(t, err)

	cleared, err := h.svc.SweepExpiredSpoilers(ctx)
	require.NoError(t, err)
	assert.Zero(t, cleared)

	h.clock.Advance(72 * time.Hour)
	cleared, err = h.svc.SweepExpiredSpoilers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)
}

func TestCreateTopic_StoresTextAsTyped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	content := "It's here\n\n> a quote\n\n`a < b`"
	v, err := h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{Title: "Tom & Jerry", Content: content})
	require.NoError(t, err)
	assert.Contains(t, v.ContentHTML, "<blockquote>")
	assert.Contains(t, v.ContentHTML, "<code>a &lt; b</code>")

	stored, err := h.store.GetTopic(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry", stored.Title)
	assert.Equal(t, content, stored.Content)

	page, err := h.svc.ListTopics(ctx, nil, forum.ListTopicsRequest{Search: "tom & jerry"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Pagination.Total)

	// resubmitting the stored text is a no-op, not a new edit
	_, err = h.svc.EditTopic(ctx, alice, v.ID, forum.EditTopicRequest{Title: "Tom & Jerry", Content: content})
	assert.ErrorIs(t, err, forum.ErrNoChange)

	_, err = h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{
		Title:   strings.Repeat("&", forum.MaxTitleLength),
		Content: strings.Repeat("'", forum.MaxContentLength),
	})
	assert.NoError(t, err)
}

func TestExpiredSpoiler_ClearedOnWrite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	expires := t0.Add(10 * time.Minute)
	topic, err := h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{
		Title:        "teaser",
		Content:      "big reveal",
		SpoilerInput: forum.SpoilerInput{IsSpoiler: true, SpoilerFor: "S5", SpoilerExpiresAt: &expires},
	})
	require.NoError(t, err)
	comment, err := h.svc.CreateComment(ctx, bob, forum.CreateCommentRequest{
		TopicID:      topic.ID,
		Content:      "no way",
		SpoilerInput: forum.SpoilerInput{IsSpoiler: true, SpoilerFor: "S5", SpoilerExpiresAt: &expires},
	})
	require.NoError(t, err)

	h.clock.Advance(20 * time.Minute)

	_, err = h.svc.EditTopic(ctx, alice, topic.ID, forum.EditTopicRequest{Title: "teaser", Content: "bigger reveal"})
	require.NoError(t, err)
	storedTopic, err := h.store.GetTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.False(t, storedTopic.IsSpoiler)
	assert.Nil(t, storedTopic.SpoilerFor)
	assert.Nil(t, storedTopic.SpoilerExpiresAt)

	_, err = h.svc.ToggleCommentLike(ctx, alice, comment.ID)
	require.NoError(t, err)
	storedComment, err := h.store.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.False(t, storedComment.IsSpoiler)
	assert.Nil(t, storedComment.SpoilerFor)
}
