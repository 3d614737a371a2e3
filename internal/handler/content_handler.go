package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skilltracker/skilltracker-api/internal/models"
	"github.com/skilltracker/skilltracker-api/internal/service"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
	"github.com/skilltracker/skilltracker-api/pkg/response"
)

// ContentHandler exposes content endpoints.
type ContentHandler struct {
	contents *service.ContentService
	comments *service.CommentService
}

// NewContentHandler constructs ContentHandler.
func NewContentHandler(contents *service.ContentService, comments *service.CommentService) *ContentHandler {
	return &ContentHandler{contents: contents, comments: comments}
}

// Create adds one content item to a draft course.
func (h *ContentHandler) Create(c *gin.Context) {
	var req service.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	detail, err := h.contents.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Get returns one content item with its payload.
func (h *ContentHandler) Get(c *gin.Context) {
	detail, err := h.contents.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Update applies a partial content update.
func (h *ContentHandler) Update(c *gin.Context) {
	var update models.ContentUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	content, err := h.contents.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, content)
}

// Delete removes one content item with its dependents.
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.contents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Comments lists the comments under a content item.
func (h *ContentHandler) Comments(c *gin.Context) {
	comments, err := h.comments.ListByContent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comments)
}

type createCommentBody struct {
	Text string `json:"text" binding:"required"`
}

// AddComment posts a comment under a content item as the caller.
func (h *ContentHandler) AddComment(c *gin.Context) {
	var body createCommentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), service.CreateCommentRequest{
		ContentID: c.Param("id"),
		UserID:    currentUserID(c),
		Text:      body.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}
