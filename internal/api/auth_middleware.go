package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"newsroom/internal/apperr"
	"newsroom/internal/auth"
	"newsroom/internal/entity"
	"newsroom/internal/metrics"

	"github.com/gin-gonic/gin"
)

const (
	currentUserContextKey = "current-user"

	// SessionCookieName is the cookie that carries the session token.
	SessionCookieName = "token"
)

// Authenticate JWT 认证中间件。令牌来自 Authorization: Bearer 头或 token cookie。
// The account is re-loaded so deleted, suspended and banned users are
// rejected, but role and subscriber flag come from the token claims.
func (h *HTTPHandler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := h.identify(c)
		if err != nil {
			h.fail(c, err)
			return
		}
		if identity == nil {
			metrics.ObserveAuthFailure(apperr.CodeAuthRequired)
			h.fail(c, apperr.Authentication("Authentication required", apperr.CodeAuthRequired))
			return
		}
		c.Set(currentUserContextKey, identity)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through anonymously.
func (h *HTTPHandler) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := h.identify(c)
		if err == nil && identity != nil {
			c.Set(currentUserContextKey, identity)
		}
		c.Next()
	}
}

// identify returns nil, nil when the request carries no token.
func (h *HTTPHandler) identify(c *gin.Context) (*auth.Identity, error) {
	token := extractToken(c)
	if token == "" {
		return nil, nil
	}

	claims, err := h.tokens.VerifyToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			metrics.ObserveAuthFailure(apperr.CodeTokenExpired)
			return nil, apperr.Authentication("Token expired", apperr.CodeTokenExpired)
		}
		metrics.ObserveAuthFailure(apperr.CodeInvalidToken)
		return nil, apperr.Authentication("Invalid token", apperr.CodeInvalidToken)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.authService.LoadActiveUser(ctx, claims.UserID); err != nil {
		return nil, err
	}
	identity := claims.Identity()
	return &identity, nil
}

func extractToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// RequireRole 角色白名单守卫，必须链在 Authenticate 之后
func (h *HTTPHandler) RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			h.fail(c, apperr.Authentication("Authentication required", apperr.CodeAuthRequired))
			return
		}
		if !identity.Role.Includes(roles) {
			h.fail(c, apperr.Authorization("Insufficient permissions", apperr.CodeInsufficientPermissions))
			return
		}
		c.Next()
	}
}

// RequirePermission gates a route on one action of the permission table.
func (h *HTTPHandler) RequirePermission(action entity.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			h.fail(c, apperr.Authentication("Authentication required", apperr.CodeAuthRequired))
			return
		}
		if !identity.Role.Can(action) {
			h.fail(c, apperr.Authorization("Insufficient permissions", apperr.CodeInsufficientPermissions))
			return
		}
		c.Next()
	}
}

// RequireSubscriber 订阅守卫。订阅状态在签发令牌时确定，订阅后需重新登录。
func (h *HTTPHandler) RequireSubscriber() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			h.fail(c, apperr.Authentication("Authentication required", apperr.CodeAuthRequired))
			return
		}
		if !identity.IsSubscriber {
			h.fail(c, apperr.Authorization("Active subscription required", apperr.CodeSubscriptionRequired).
				WithDetails(gin.H{"reauthenticate": true}))
			return
		}
		c.Next()
	}
}

// CurrentIdentity 从上下文获取当前认证用户
func CurrentIdentity(c *gin.Context) *auth.Identity {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}
