package forum_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fansite/forum/internal/db"
	"github.com/fansite/forum/internal/forum"
	"github.com/fansite/forum/internal/models"
)

// scriptedStore serves reads from the sqlite store and lets a test script
// the outcome of the writes that can race with other requests
type scriptedStore struct {
	*db.Store
	mock.Mock
}

func (s *scriptedStore) ToggleLike(ctx context.Context, kind models.TargetKind, targetID, userID string, now time.Time) (bool, error) {
	args := s.Called(kind, targetID, userID)
	return args.Bool(0), args.Error(1)
}

func (s *scriptedStore) ApplyTopicEdit(ctx context.Context, edit forum.TopicEdit) (bool, error) {
	args := s.Called(edit.ID, edit.ExpectedEditCount)
	return args.Bool(0), args.Error(1)
}

func (s *scriptedStore) ApplyCommentEdit(ctx context.Context, edit forum.CommentEdit) (bool, error) {
	args := s.Called(edit.ID, edit.ExpectedEditCount)
	return args.Bool(0), args.Error(1)
}

func (s *scriptedStore) SoftDeleteTopic(ctx context.Context, id string, now time.Time) error {
	return s.Called(id).Error(0)
}

func newScriptedHarness(t *testing.T) (*harness, *scriptedStore) {
	t.Helper()
	var scripted *scriptedStore
	h := newHarnessWithStore(t, func(s *db.Store) forum.Store {
		scripted = &scriptedStore{Store: s}
		return scripted
	})
	scripted.Test(t)
	return h, scripted
}

func TestToggleLike_LostInsertRace(t *testing.T) {
	h, store := newScriptedHarness(t)
	ctx := context.Background()
	topic := h.createTopic(t, alice, "contested")

	// the concurrent toggle of the same user got its insert in first
	_, err := h.store.ToggleLike(ctx, models.KindTopic, topic.ID, bob.UserID, t0)
	require.NoError(t, err)
	store.On("ToggleLike", models.KindTopic, topic.ID, bob.UserID).Return(false, forum.ErrDuplicateLike).Once()

	res, err := h.svc.ToggleTopicLike(ctx, bob, topic.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikeCount)
	store.AssertExpectations(t)
}

func TestEditTopic_ConditionalUpdateMissed(t *testing.T) {
	tests := []struct {
		name    string
		meddle  func(t *testing.T, h *harness, id string)
		wantErr error
	}{
		{
			name: "edited concurrently",
			meddle: func(t *testing.T, h *harness, id string) {
				require.NoError(t, h.db.Model(&models.Topic{}).Where("id = ?", id).Update("edit_count", 1).Error)
			},
			wantErr: forum.ErrEditConflict,
		},
		{
			name: "locked concurrently",
			meddle: func(t *testing.T, h *harness, id string) {
				require.NoError(t, h.store.SetTopicFlag(context.Background(), id, forum.FlagLocked, true, t0))
			},
			wantErr: forum.ErrLocked,
		},
		{
			name: "cap reached concurrently",
			meddle: func(t *testing.T, h *harness, id string) {
				require.NoError(t, h.db.Model(&models.Topic{}).Where("id = ?", id).Update("edit_count", 5).Error)
			},
			wantErr: forum.ErrMaxEditsReached,
		},
		{
			name: "deleted concurrently",
			meddle: func(t *testing.T, h *harness, id string) {
				require.NoError(t, h.store.SoftDeleteTopic(context.Background(), id, t0))
			},
			wantErr: forum.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newScriptedHarness(t)
			topic := h.createTopic(t, alice, "racy")

			store.On("ApplyTopicEdit", topic.ID, 0).
				Run(func(mock.Arguments) { tt.meddle(t, h, topic.ID) }).
				Return(false, nil).Once()

			_, err := h.svc.EditTopic(context.Background(), alice, topic.ID, forum.EditTopicRequest{Title: "racy", Content: "changed"})
			assert.ErrorIs(t, err, tt.wantErr)
			store.AssertExpectations(t)
		})
	}
}

func TestEditComment_ConditionalUpdateMissed(t *testing.T) {
	h, store := newScriptedHarness(t)
	ctx := context.Background()
	topic := h.createTopic(t, alice, "thread")
	comment, err := h.svc.CreateComment(ctx, bob, forum.CreateCommentRequest{TopicID: topic.ID, Content: "first"})
	require.NoError(t, err)

	store.On("ApplyCommentEdit", comment.ID, 0).
		Run(func(mock.Arguments) {
			require.NoError(t, h.db.Model(&models.Comment{}).Where("id = ?", comment.ID).Update("edit_count", 1).Error)
		}).
		Return(false, nil).Once()

	_, err = h.svc.EditComment(ctx, bob, comment.ID, forum.EditCommentRequest{Content: "second"})
	assert.ErrorIs(t, err, forum.ErrEditConflict)
	store.AssertExpectations(t)
}

func TestDeleteTopic_KeepsImageWhenWriteFails(t *testing.T) {
	h, store := newScriptedHarness(t)
	ctx := context.Background()

	topic, err := h.svc.CreateTopic(ctx, alice, forum.CreateTopicRequest{
		Title:    "with art",
		Content:  "look",
		ImageURL: "https://images.example/k1",
		ImageKey: "k1",
	})
	require.NoError(t, err)

	store.On("SoftDeleteTopic", topic.ID).Return(errors.New("disk full")).Once()
	assert.Error(t, h.svc.DeleteTopic(ctx, alice, topic.ID))
	h.images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	store.On("SoftDeleteTopic", topic.ID).Return(nil).Once()
	h.images.On("Delete", mock.Anything, "k1").Return(true, nil).Once()
	require.NoError(t, h.svc.DeleteTopic(ctx, alice, topic.ID))
	h.images.AssertExpectations(t)
	store.AssertExpectations(t)
}
