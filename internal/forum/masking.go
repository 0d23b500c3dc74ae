package forum

import (
	"github.com/fansite/forum/internal/models"
)

// Sentinels shown in place of deleted content
const (
	DeletedContent = "[deleted]"
	DeletedTitle   = "[DELETED]"
)

// MaskTopic hides the content and authorship of a deleted topic.
// Views of live topics are returned unchanged; masking twice is a no-op.
func MaskTopic(v *TopicView) *TopicView {
	if v == nil || !v.Deleted {
		return v
	}
	masked := *v
	masked.Title = DeletedTitle
	masked.Content = DeletedContent
	masked.ContentHTML = ""
	masked.AuthorID = nil
	masked.Username = nil
	masked.UserImage = nil
	masked.ImageURL = nil
	masked.CanEdit = false
	return &masked
}

// MaskComment hides the content and authorship of a deleted comment.
// Threading fields (TopicID, ParentID) survive so replies stay attached.
func MaskComment(v *CommentView) *CommentView {
	if v == nil || !v.Deleted {
		return v
	}
	masked := *v
	masked.Content = DeletedContent
	masked.ContentHTML = ""
	masked.AuthorID = nil
	masked.Username = nil
	masked.UserImage = nil
	masked.CanEdit = false
	return &masked
}

func newTopicView(t *models.Topic, author *models.User) *TopicView {
	authorID := t.AuthorID
	v := &TopicView{
		ID:               t.ID,
		Title:            t.Title,
		Content:          t.Content,
		ContentHTML:      RenderContent(t.Content),
		AuthorID:         &authorID,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		Deleted:          t.Deleted,
		Pinned:           t.Pinned,
		Locked:           t.Locked,
		EditCount:        t.EditCount,
		IsSpoiler:        t.IsSpoiler,
		SpoilerFor:       t.SpoilerFor,
		SpoilerExpiresAt: t.SpoilerExpiresAt,
		ImageURL:         t.ImageURL,
	}
	if author != nil {
		username := author.Username
		v.Username = &username
		v.UserImage = author.Image
	}
	return MaskTopic(v)
}

func newCommentView(c *models.Comment, author *models.User) *CommentView {
	authorID := c.AuthorID
	v := &CommentView{
		ID:               c.ID,
		TopicID:          c.TopicID,
		ParentID:         c.ParentID,
		Content:          c.Content,
		ContentHTML:      RenderContent(c.Content),
		AuthorID:         &authorID,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		Deleted:          c.Deleted,
		EditCount:        c.EditCount,
		IsSpoiler:        c.IsSpoiler,
		SpoilerFor:       c.SpoilerFor,
		SpoilerExpiresAt: c.SpoilerExpiresAt,
	}
	if author != nil {
		username := author.Username
		v.Username = &username
		v.UserImage = author.Image
	}
	return MaskComment(v)
}
