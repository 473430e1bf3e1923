package sql

import (
	"context"
	"strings"

	"newsroom/internal/entity"

	"gorm.io/gorm"
)

// GetArticleByID loads an article by ID regardless of status.
func (r *GormRepository) GetArticleByID(ctx context.Context, id string) (*entity.DbArticle, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var article entity.DbArticle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}
