package forum

import (
	"time"
)

// Roles understood by the moderation guard
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Field limits
const (
	MaxTitleLength      = 200
	MaxContentLength    = 10000
	MaxSpoilerForLength = 100
	MaxSpoilerDays      = 365
	MaxImagePayload     = 8 << 20
)

// Actor is the authenticated caller of a forum operation; nil means anonymous
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the actor holds the admin role
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

func (a *Actor) id() string {
	if a == nil {
		return ""
	}
	return a.UserID
}

// SpoilerInput is the spoiler part of a create request.
// Expiry is given either as a duration in days or as an absolute time.
type SpoilerInput struct {
	IsSpoiler           bool       `json:"isSpoiler"`
	SpoilerFor          string     `json:"spoilerFor"`
	SpoilerDurationDays int        `json:"spoilerDurationDays"`
	SpoilerExpiresAt    *time.Time `json:"spoilerExpiresAt"`
}

// CreateTopicRequest carries a new topic
type CreateTopicRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	SpoilerInput
	ImageURL string `json:"imageUrl"`
	ImageKey string `json:"imageKey"`
	// Image is a base64 payload uploaded through the image store
	Image string `json:"image"`
}

// EditTopicRequest carries a topic edit
type EditTopicRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateCommentRequest carries a new comment
type CreateCommentRequest struct {
	TopicID  string  `json:"topicId"`
	ParentID *string `json:"parentId"`
	Content  string  `json:"content"`
	SpoilerInput
}

// EditCommentRequest carries a comment edit
type EditCommentRequest struct {
	Content string `json:"content"`
}

// Sort orders for topic listings
const (
	SortLatest  = "latest"
	SortOldest  = "oldest"
	SortPopular = "popular"
)

// ListTopicsRequest selects a page of topics
type ListTopicsRequest struct {
	Page   int
	Limit  int
	SortBy string
	Search string
}

// ListCommentsRequest selects a page of comments of one topic
type ListCommentsRequest struct {
	TopicID string
	Page    int
	Limit   int
}

// ImageRef points at an image held by the external image store
type ImageRef struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// TopicView is the read-boundary representation of a topic
type TopicView struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Content          string     `json:"content"`
	ContentHTML      string     `json:"contentHtml"`
	AuthorID         *string    `json:"authorId"`
	Username         *string    `json:"username"`
	UserImage        *string    `json:"userImage"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	Deleted          bool       `json:"deleted"`
	Pinned           bool       `json:"pinned"`
	Locked           bool       `json:"locked"`
	EditCount        int        `json:"editCount"`
	IsSpoiler        bool       `json:"isSpoiler"`
	SpoilerFor       *string    `json:"spoilerFor"`
	SpoilerExpiresAt *time.Time `json:"spoilerExpiresAt"`
	ImageURL         *string    `json:"imageUrl"`
	LikeCount        int64      `json:"likeCount"`
	CommentCount     int64      `json:"commentCount"`
	UserHasLiked     bool       `json:"userHasLiked"`
	CanEdit          bool       `json:"canEdit"`
	RemainingEdits   int        `json:"remainingEdits"`
	EditWindowEndsAt time.Time  `json:"editWindowEndsAt"`
}

// CommentView is the read-boundary representation of a comment
type CommentView struct {
	ID               string     `json:"id"`
	TopicID          string     `json:"topicId"`
	ParentID         *string    `json:"parentId"`
	Content          string     `json:"content"`
	ContentHTML      string     `json:"contentHtml"`
	AuthorID         *string    `json:"authorId"`
	Username         *string    `json:"username"`
	UserImage        *string    `json:"userImage"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	Deleted          bool       `json:"deleted"`
	EditCount        int        `json:"editCount"`
	IsSpoiler        bool       `json:"isSpoiler"`
	SpoilerFor       *string    `json:"spoilerFor"`
	SpoilerExpiresAt *time.Time `json:"spoilerExpiresAt"`
	LikeCount        int64      `json:"likeCount"`
	UserHasLiked     bool       `json:"userHasLiked"`
	CanEdit          bool       `json:"canEdit"`
	RemainingEdits   int        `json:"remainingEdits"`
	EditWindowEndsAt time.Time  `json:"editWindowEndsAt"`
}

// LikeResult is the outcome of a like toggle
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// Pagination describes an offset page
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// TopicPage is one page of topics
type TopicPage struct {
	Topics     []*TopicView `json:"topics"`
	Pagination Pagination   `json:"pagination"`
}

// CommentPage is one page of comments
type CommentPage struct {
	Comments   []*CommentView `json:"comments"`
	Pagination Pagination     `json:"pagination"`
}

// HistoryEntryView is one edit-history row
type HistoryEntryView struct {
	EditNumber      int       `json:"editNumber"`
	PreviousTitle   *string   `json:"previousTitle,omitempty"`
	PreviousContent string    `json:"previousContent"`
	EditedBy        string    `json:"editedBy"`
	EditedAt        time.Time `json:"editedAt"`
}
