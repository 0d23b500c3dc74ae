package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fansite/forum/internal/forum"
)

type listTopicsQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	SortBy string `form:"sortBy"`
	Search string `form:"search"`
}

type flagRequest struct {
	Value *bool `json:"value"`
}

type topicLikeRequest struct {
	TopicID string `json:"topicId"`
}

func (r *Router) listTopics(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	var q listTopicsQuery
	if err := bindQuery(c, &q); err != nil {
		return 0, nil, err
	}
	page, err := r.svc.ListTopics(c.Request.Context(), actor, forum.ListTopicsRequest{
		Page:   q.Page,
		Limit:  q.Limit,
		SortBy: q.SortBy,
		Search: q.Search,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, page, nil
}

func (r *Router) createTopic(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	var req forum.CreateTopicRequest
	if err := bindJSON(c, &req); err != nil {
		return 0, nil, err
	}
	topic, err := r.svc.CreateTopic(c.Request.Context(), actor, req)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, topic, nil
}

func (r *Router) getTopic(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	topic, err := r.svc.GetTopic(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, topic, nil
}

func (r *Router) editTopic(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	var req forum.EditTopicRequest
	if err := bindJSON(c, &req); err != nil {
		return 0, nil, err
	}
	topic, err := r.svc.EditTopic(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, topic, nil
}

func (r *Router) deleteTopic(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	if err := r.svc.DeleteTopic(c.Request.Context(), actor, c.Param("id")); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, gin.H{"message": "Topic deleted"}, nil
}

func (r *Router) topicHistory(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	history, err := r.svc.TopicHistory(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, gin.H{"history": history}, nil
}

func (r *Router) pinTopic(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	value, err := bindFlag(c)
	if err != nil {
		return 0, nil, err
	}
	topic, err := r.svc.SetTopicPinned(c.Request.Context(), actor, c.Param("id"), value)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, topic, nil
}

func (r *Router) lockTopic(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	value, err := bindFlag(c)
	if err != nil {
		return 0, nil, err
	}
	topic, err := r.svc.SetTopicLocked(c.Request.Context(), actor, c.Param("id"), value)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, topic, nil
}

func (r *Router) likeTopic(c *gin.Context, actor *forum.Actor) (int, interface{}, error) {
	var req topicLikeRequest
	if err := bindJSON(c, &req); err != nil {
		return 0, nil, err
	}
	result, err := r.svc.ToggleTopicLike(c.Request.Context(), actor, req.TopicID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, result, nil
}

func bindFlag(c *gin.Context) (bool, error) {
	var req flagRequest
	if err := bindJSON(c, &req); err != nil {
		return false, err
	}
	if req.Value == nil {
		e := NewError(http.StatusBadRequest, CodeValidation, "value: is required")
		e.Field = "value"
		return false, e
	}
	return *req.Value, nil
}
