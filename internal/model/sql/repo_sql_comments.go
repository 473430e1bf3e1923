package sql

import (
	"context"
	"fmt"
	"strings"

	"newsroom/internal/entity"

	"gorm.io/gorm"
)

// CreateComment persists a new comment.
func (r *GormRepository) CreateComment(ctx context.Context, comment *entity.DbComment) error {
	if err := r.ready(); err != nil {
		return err
	}
	if comment == nil {
		return fmt.Errorf("comment is nil")
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetCommentByID loads a comment with its author.
func (r *GormRepository) GetCommentByID(ctx context.Context, id string) (*entity.DbComment, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var comment entity.DbComment
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment applies content and state changes.
func (r *GormRepository) UpdateComment(ctx context.Context, id string, updates entity.CommentUpdates) error {
	if err := r.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("invalid comment")
	}
	values := updates.ToMap()
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbComment{}).Where("id = ?", id).Updates(values).Error
}

// DeleteComment permanently removes a comment.
func (r *GormRepository) DeleteComment(ctx context.Context, id string) error {
	if err := r.ready(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.DbComment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListComments returns one page of comments matching the filter.
func (r *GormRepository) ListComments(ctx context.Context, filter entity.CommentFilter, page entity.Page, order entity.CommentOrder) ([]entity.DbComment, int64, error) {
	if err := r.ready(); err != nil {
		return nil, 0, err
	}

	query := r.commentQuery(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "ASC"
	if order == entity.OrderNewestFirst {
		direction = "DESC"
	}

	var comments []entity.DbComment
	err := query.
		Preload("Author").
		Order("created_at " + direction).
		Order("id " + direction).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// CountComments counts comments matching the filter.
func (r *GormRepository) CountComments(ctx context.Context, filter entity.CommentFilter) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	var total int64
	if err := r.commentQuery(ctx, filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *GormRepository) commentQuery(ctx context.Context, filter entity.CommentFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.DbComment{})
	if filter.ArticleID != "" {
		query = query.Where("article_id = ?", filter.ArticleID)
	}
	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if len(filter.States) > 0 {
		var clause *gorm.DB
		for _, state := range filter.States {
			approved, spam := state.Flags()
			cond := r.db.Where("is_approved = ? AND is_spam = ?", approved, spam)
			if clause == nil {
				clause = cond
			} else {
				clause = clause.Or(cond)
			}
		}
		query = query.Where(clause)
	}
	return query
}
