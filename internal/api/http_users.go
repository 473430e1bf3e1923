package api

import (
	"context"
	"net/http"
	"time"

	"newsroom/internal/entity"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var query entity.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c)
		return
	}
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.userService.List(ctx, *identity, query)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondPage(c, list.Users, list.Meta)
}

func (h *HTTPHandler) UpdateUserRole(c *gin.Context) {
	var req entity.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userService.UpdateRole(ctx, *identity, c.Param("id"), req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, gin.H{"user": user}, "User role updated successfully")
}

func (h *HTTPHandler) UpdateUserStatus(c *gin.Context) {
	var req entity.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userService.UpdateStatus(ctx, *identity, c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, gin.H{"user": user}, "User status updated successfully")
}
