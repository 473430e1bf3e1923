package api

import (
	"net/http"
	"strings"
	"time"

	"newsroom/internal/auth"
	"newsroom/internal/config"
	"newsroom/internal/entity"
	"newsroom/internal/mail"
	"newsroom/internal/model"
	"newsroom/internal/ratelimit"
	"newsroom/internal/service"
	"newsroom/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg    config.Config
	tokens *auth.Manager

	// 服务层
	authService    *service.AuthService
	commentService *service.CommentService
	userService    *service.UserAdminService
	statsService   *service.StatsService

	// 限流桶
	globalBucket  rateBucket
	authBucket    rateBucket
	commentBucket rateBucket
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, mailer mail.Sender) (*HTTPHandler, error) {
	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL())
	if err != nil {
		return nil, err
	}
	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	authSvc := service.NewAuthService(repo, hasher, tokens, mailer, cfg.IsProduction())
	authSvc.SetVerificationTTL(cfg.VerificationTTL())
	if store != nil {
		authSvc.SetAvatarStorage(store, storage.NewURLResolver(NormalisePublicBase(cfg.StoragePublicBaseURL)))
	}

	return &HTTPHandler{
		cfg:            cfg,
		tokens:         tokens,
		authService:    authSvc,
		commentService: service.NewCommentService(repo, service.CommentOptions{AutoApprove: cfg.CommentAutoApprove, BlockSpam: cfg.CommentBlockSpam}),
		userService:    service.NewUserAdminService(repo),
		statsService:   service.NewStatsService(repo),
		globalBucket:   globalBucketInfo,
		authBucket:     authBucketInfo,
		commentBucket:  commentBucketInfo,
	}, nil
}

// Stats exposes the stats service to background jobs.
func (h *HTTPHandler) Stats() *service.StatsService {
	return h.statsService
}

// SetRateLimiter 启用基于 Redis 的限流。client 为空或配置关闭时不限流。
func (h *HTTPHandler) SetRateLimiter(client *redis.Client) {
	if client == nil || !h.cfg.RateLimitEnabled {
		return
	}
	for _, entry := range []struct {
		bucket *rateBucket
		raw    string
	}{
		{&h.globalBucket, h.cfg.RateLimitGlobal},
		{&h.authBucket, h.cfg.RateLimitAuth},
		{&h.commentBucket, h.cfg.RateLimitComment},
	} {
		rate, err := config.ParseRate(entry.raw)
		if err != nil {
			logrus.WithError(err).WithField("bucket", entry.bucket.name).Warn("invalid rate, bucket disabled")
			continue
		}
		entry.bucket.limiter = ratelimit.NewLimiter(client, "ratelimit:"+entry.bucket.name, rate)
	}
}

// Router builds the gin engine with the middleware chain and every route.
func (h *HTTPHandler) Router() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(h.cfg.TrustedProxies); err != nil {
		logrus.WithError(err).Warn("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(RequestID(), Recovery(h.cfg.IsProduction()), LoggingMiddleware(), CORSMiddleware(h.cfg.CORSOrigins), Metrics())
	h.RegisterRoutes(r)
	r.NoRoute(NotFoundHandler)
	return r
}

// RegisterRoutes 注册 API 路由
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", h.RateLimit(&h.globalBucket))

	authGroup := api.Group("/auth", h.RateLimit(&h.authBucket))
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/verify-email", h.VerifyEmail)
		authGroup.POST("/verify-email", h.VerifyEmail)
		authGroup.POST("/resend-verification", h.ResendVerification)
		authGroup.GET("/me", h.Authenticate(), h.Me)
		authGroup.PUT("/profile", h.Authenticate(), h.UpdateProfile)
		authGroup.POST("/avatar", h.Authenticate(), h.UploadAvatar)
		authGroup.PATCH("/password-change", h.Authenticate(), h.ChangePassword)
		authGroup.GET("/subscription", h.Authenticate(), h.RequireSubscriber(), h.SubscriptionAccess)
	}

	comments := api.Group("/comments")
	{
		comments.GET("/stats/:articleId", h.CommentStats)
		comments.GET("/:articleId", h.OptionalAuth(), h.ListArticleComments)

		member := comments.Group("", h.Authenticate())
		member.POST("", h.RateLimit(&h.commentBucket), h.CreateComment)
		member.PUT("/:id", h.UpdateComment)
		member.DELETE("/:id", h.DeleteComment)
		member.GET("/user", h.ListUserComments)
		member.GET("/user/:userId", h.ListUserComments)

		staff := member.Group("", h.RequireRole(entity.RoleAdmin, entity.RoleModerator))
		staff.POST("/:id/spam", h.MarkCommentSpam)
		staff.POST("/:id/approve", h.ApproveComment)
		staff.GET("/admin/recent", h.RecentComments)
	}

	users := api.Group("/users", h.Authenticate(), h.RequireRole(entity.RoleAdmin, entity.RoleSuperAdmin))
	{
		users.GET("", h.ListUsers)
		users.PUT("/:id/role", h.UpdateUserRole)
		users.PATCH("/:id/status", h.UpdateUserStatus)
	}

	stats := api.Group("/stats", h.Authenticate())
	{
		stats.GET("/dashboard", h.RequirePermission(entity.ActionStatsDashboard), h.DashboardStats)
		stats.GET("/system", h.RequirePermission(entity.ActionStatsSystem), h.SystemStats)
	}
}

// Health 健康检查
func (h *HTTPHandler) Health(c *gin.Context) {
	Respond(c, http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()}, "")
}

// NormalisePublicBase 规范化公共 URL 基础路径
func NormalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}
