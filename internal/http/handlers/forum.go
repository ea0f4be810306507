package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/forum-backend/internal/http/response"
	"github.com/yungbote/forum-backend/internal/platform/apierr"
	"github.com/yungbote/forum-backend/internal/platform/logger"
	"github.com/yungbote/forum-backend/internal/services"
)

const (
	msgInvalidBody     = "Invalid request body"
	msgInvalidTopicID  = "Invalid topic id"
	msgInvalidMaxDepth = "Invalid maxDepth"
)

type ForumHandler struct {
	log    *logger.Logger
	topics services.TopicService
}

func NewForumHandler(log *logger.Logger, topics services.TopicService) *ForumHandler {
	return &ForumHandler{log: log.With("handler", "ForumHandler"), topics: topics}
}

type createTopicRequest struct {
	Title string `json:"title"`
	// ParentID of 0 or null means no parent.
	ParentID *int64 `json:"parentId"`
}

// POST /api/forum
func (h *ForumHandler) CreateTopic(c *gin.Context) {
	var req createTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondErr(c, h.log, apierr.New(http.StatusBadRequest, msgInvalidBody, err))
		return
	}
	var parentID *int64
	if req.ParentID != nil && *req.ParentID != 0 {
		parentID = req.ParentID
	}
	created, err := h.topics.CreateTopic(c.Request.Context(), req.Title, parentID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, created)
}

// GET /api/forum
func (h *ForumHandler) ListTopics(c *gin.Context) {
	topics, err := h.topics.ListTopics(c.Request.Context())
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, topics)
}

// GET /api/forum/:id
func (h *ForumHandler) GetTopic(c *gin.Context) {
	id, err := topicID(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	topic, err := h.topics.GetTopic(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, topic)
}

// GET /api/forum/:id/ancestors
func (h *ForumHandler) ListAncestors(c *gin.Context) {
	id, err := topicID(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	out, err := h.topics.ListAncestors(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/forum/:id/descendants?maxDepth=n
func (h *ForumHandler) ListDescendants(c *gin.Context) {
	id, err := topicID(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	maxDepth := 0
	if raw := strings.TrimSpace(c.Query("maxDepth")); raw != "" {
		maxDepth, err = strconv.Atoi(raw)
		if err != nil || maxDepth < 0 {
			response.RespondErr(c, h.log, apierr.New(http.StatusBadRequest, msgInvalidMaxDepth, err))
			return
		}
	}
	out, err := h.topics.ListDescendants(c.Request.Context(), id, maxDepth)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/forum/:id/children
func (h *ForumHandler) ListChildren(c *gin.Context) {
	id, err := topicID(c)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	out, err := h.topics.ListChildren(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

func topicID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil {
		return 0, apierr.New(http.StatusBadRequest, msgInvalidTopicID, err)
	}
	if id <= 0 {
		return 0, apierr.New(http.StatusBadRequest, msgInvalidTopicID, nil)
	}
	return id, nil
}
