package sql

import (
	"context"

	"newsroom/internal/entity"
)

type groupRow struct {
	GroupKey string
	Total    int64
}

func (r *GormRepository) groupCount(ctx context.Context, model interface{}, column string) ([]entity.GroupCount, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var rows []groupRow
	err := r.db.WithContext(ctx).
		Model(model).
		Select(column + " AS group_key, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.GroupCount, len(rows))
	for i, row := range rows {
		out[i] = entity.GroupCount{Key: row.GroupKey, Count: row.Total}
	}
	return out, nil
}

func (r *GormRepository) count(ctx context.Context, model interface{}) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(model).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *GormRepository) CountUsersByRole(ctx context.Context) ([]entity.GroupCount, error) {
	return r.groupCount(ctx, &entity.DbUser{}, "role")
}

func (r *GormRepository) CountUsersByStatus(ctx context.Context) ([]entity.GroupCount, error) {
	return r.groupCount(ctx, &entity.DbUser{}, "status")
}

func (r *GormRepository) CountArticles(ctx context.Context) (int64, error) {
	return r.count(ctx, &entity.DbArticle{})
}

func (r *GormRepository) CountArticlesByStatus(ctx context.Context) ([]entity.GroupCount, error) {
	return r.groupCount(ctx, &entity.DbArticle{}, "status")
}

func (r *GormRepository) CountCategories(ctx context.Context) (int64, error) {
	return r.count(ctx, &entity.DbCategory{})
}

// SumArticleViews returns the total view count across all articles.
func (r *GormRepository) SumArticleViews(ctx context.Context) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.DbArticle{}).
		Select("COALESCE(SUM(view_count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

type flagRow struct {
	IsApproved bool
	IsSpam     bool
	Total      int64
}

// CountCommentsByState groups comments by moderation state.
func (r *GormRepository) CountCommentsByState(ctx context.Context) ([]entity.GroupCount, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var rows []flagRow
	err := r.db.WithContext(ctx).
		Model(&entity.DbComment{}).
		Select("is_approved, is_spam, COUNT(*) AS total").
		Group("is_approved, is_spam").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.GroupCount, 0, len(rows))
	for _, row := range rows {
		state := entity.CommentStateFromFlags(row.IsApproved, row.IsSpam)
		out = append(out, entity.GroupCount{Key: string(state), Count: row.Total})
	}
	return out, nil
}
