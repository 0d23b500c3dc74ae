package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fansite/forum/internal/forum"
)

type listCommentsQuery struct {
	TopicID string `form:"topicId"`
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
}

type commentLikeRequest struct {
	CommentID string `json:"commentId"`
}

func (r *Router) listComments(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	var q listCommentsQuery
	if err := bindQuery(c, &q); err != nil {
		return 0, nil, err
	}
	page, err := r.svc.ListComments(c.Request.Context(), actor, forum.ListCommentsRequest{
		TopicID: q.TopicID,
		Page:    q.Page,
		Limit:   q.Limit,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, page, nil
}

func (r *Router) createComment(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	var req forum.CreateCommentRequest
	if err := bindJSON(c, &req); err != nil {
		return 0, nil, err
	}
	comment, err := r.svc.CreateComment(c.Request.Context(), actor, req)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, comment, nil
}

func (r *Router) editComment(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	var req forum.EditCommentRequest
	if err := bindJSON(c, &req); err != nil {
		return 0, nil, err
	}
	comment, err := r.svc.EditComment(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, comment, nil
}

func (r *Router) deleteComment(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	if err := r.svc.DeleteComment(c.Request.Context(), actor, c.Param("id")); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, gin.H{"message": "Comment deleted"}, nil
}

func (r *Router) commentHistory(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	history, err := r.svc.CommentHistory(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, gin.H{"history": history}, nil
}

func (r *Router) likeComment(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	var req commentLikeRequest
	if err := bindJSON(c, &req); err != nil {
		return 0, nil, err
	}
	result, err := r.svc.ToggleCommentLike(c.Request.Context(), actor, req.CommentID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, result, nil
}
