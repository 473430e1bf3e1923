package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"newsroom/internal/apperr"
	"newsroom/internal/entity"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) CreateComment(c *gin.Context) {
	var req entity.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	comment, err := h.commentService.Create(ctx, *identity, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusCreated, comment, "Comment created successfully")
}

func (h *HTTPHandler) UpdateComment(c *gin.Context) {
	var req entity.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	comment, err := h.commentService.Update(ctx, *identity, c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, comment, "Comment updated successfully")
}

func (h *HTTPHandler) DeleteComment(c *gin.Context) {
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.commentService.Delete(ctx, *identity, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, nil, "Comment deleted successfully")
}

func (h *HTTPHandler) MarkCommentSpam(c *gin.Context) {
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	comment, err := h.commentService.MarkAsSpam(ctx, *identity, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, comment, "Comment marked as spam")
}

func (h *HTTPHandler) ApproveComment(c *gin.Context) {
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	comment, err := h.commentService.Approve(ctx, *identity, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, comment, "Comment approved")
}

// ListArticleComments serves anonymous readers too; includeSpam and
// includeUnapproved only apply to staff.
func (h *HTTPHandler) ListArticleComments(c *gin.Context) {
	var query entity.CommentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.commentService.ListByArticle(ctx, CurrentIdentity(c), c.Param("articleId"), query)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondPage(c, list.Comments, list.Meta)
}

func (h *HTTPHandler) ListUserComments(c *gin.Context) {
	var params entity.PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		InvalidPayload(c)
		return
	}
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.commentService.ListByUser(ctx, *identity, c.Param("userId"), params)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondPage(c, list.Comments, list.Meta)
}

func (h *HTTPHandler) RecentComments(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, apperr.Validation("limit must be a number", apperr.CodeValidation))
			return
		}
		limit = parsed
	}
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	comments, err := h.commentService.Recent(ctx, *identity, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, comments, "")
}

func (h *HTTPHandler) CommentStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.commentService.Stats(ctx, c.Param("articleId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, stats, "")
}
