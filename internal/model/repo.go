package model

import (
	"context"

	"newsroom/internal/entity"
)

// Repository 定义数据库操作接口
//
// Finders return gorm.ErrRecordNotFound when the row does not exist.
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id string, updates entity.UserUpdates) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id string) (*entity.DbUser, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*entity.DbUser, error)
	GetUserByVerificationSelector(ctx context.Context, selector string) (*entity.DbUser, error)
	ListUsers(ctx context.Context, query entity.UserQuery, page entity.Page) ([]entity.DbUser, int64, error)

	// 订阅
	HasActiveSubscription(ctx context.Context, userID string) (bool, error)

	// 文章（只读）
	GetArticleByID(ctx context.Context, id string) (*entity.DbArticle, error)

	// 评论
	CreateComment(ctx context.Context, comment *entity.DbComment) error
	GetCommentByID(ctx context.Context, id string) (*entity.DbComment, error)
	UpdateComment(ctx context.Context, id string, updates entity.CommentUpdates) error
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, filter entity.CommentFilter, page entity.Page, order entity.CommentOrder) ([]entity.DbComment, int64, error)
	CountComments(ctx context.Context, filter entity.CommentFilter) (int64, error)

	// 统计
	StatsRepository
}

// StatsRepository exposes the aggregate counts behind the admin dashboard.
type StatsRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountUsersByRole(ctx context.Context) ([]entity.GroupCount, error)
	CountUsersByStatus(ctx context.Context) ([]entity.GroupCount, error)
	CountArticles(ctx context.Context) (int64, error)
	CountArticlesByStatus(ctx context.Context) ([]entity.GroupCount, error)
	SumArticleViews(ctx context.Context) (int64, error)
	CountCategories(ctx context.Context) (int64, error)
	CountCommentsByState(ctx context.Context) ([]entity.GroupCount, error)
}
