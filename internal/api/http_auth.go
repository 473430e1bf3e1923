package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"newsroom/internal/apperr"
	"newsroom/internal/entity"
	"newsroom/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.Register(ctx, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusCreated, gin.H{"user": user}, service.MsgRegistered)
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.authService.Login(ctx, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setSessionCookie(c, result.Token)
	Respond(c, http.StatusOK, result, "Login successful")
}

func (h *HTTPHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "")
	Respond(c, http.StatusOK, nil, "Logged out successfully")
}

// setSessionCookie writes the session cookie; an empty token clears it.
func (h *HTTPHandler) setSessionCookie(c *gin.Context, token string) {
	opts := h.authService.CookieOptions()
	maxAge := int(opts.MaxAge / time.Second)
	if token == "" {
		maxAge = -1
	}
	c.SetSameSite(opts.SameSite)
	c.SetCookie(SessionCookieName, token, maxAge, opts.Path, "", opts.Secure, opts.HTTPOnly)
}

func (h *HTTPHandler) Me(c *gin.Context) {
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.GetProfile(ctx, identity.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, gin.H{"user": user}, "Profile retrieved successfully")
}

// VerifyEmail accepts the token from the query string (GET) or the body (POST).
func (h *HTTPHandler) VerifyEmail(c *gin.Context) {
	var req entity.VerifyEmailRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			InvalidPayload(c)
			return
		}
	} else {
		req.Token = c.Query("token")
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	message, err := h.authService.VerifyEmail(ctx, req.Token)
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, nil, message)
}

func (h *HTTPHandler) ResendVerification(c *gin.Context) {
	var req entity.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	message, err := h.authService.ResendVerification(ctx, req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, nil, message)
}

func (h *HTTPHandler) ChangePassword(c *gin.Context) {
	var req entity.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.ChangePassword(ctx, identity.UserID, req); err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, nil, service.MsgPasswordChanged)
}

func (h *HTTPHandler) UpdateProfile(c *gin.Context) {
	var req entity.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.UpdateProfile(ctx, identity.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, gin.H{"user": user}, "Profile updated successfully")
}

// UploadAvatar reads the multipart field "avatar".
func (h *HTTPHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		h.fail(c, apperr.Validation("No file uploaded", apperr.CodeNoFile))
		return
	}
	if fileHeader.Size > service.MaxAvatarBytes {
		h.fail(c, apperr.Validation("File too large (max 1MB)", apperr.CodeInvalidFile))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, apperr.Validation("Failed to read uploaded file", apperr.CodeInvalidFile))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxAvatarBytes+1))
	if err != nil {
		h.fail(c, apperr.Validation("Failed to read uploaded file", apperr.CodeInvalidFile))
		return
	}
	identity := CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	user, err := h.authService.UploadAvatar(ctx, identity.UserID, data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Respond(c, http.StatusOK, gin.H{"user": user}, "Avatar updated successfully")
}

// SubscriptionAccess confirms the caller's session carries an active
// subscription.
func (h *HTTPHandler) SubscriptionAccess(c *gin.Context) {
	identity := CurrentIdentity(c)
	Respond(c, http.StatusOK, gin.H{"userId": identity.UserID, "isSubscriber": identity.IsSubscriber}, "")
}
