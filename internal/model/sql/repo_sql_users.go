package sql

import (
	"context"
	"fmt"
	"strings"

	"newsroom/internal/entity"

	"gorm.io/gorm"
)

// CreateUser persists a new user record.
func (r *GormRepository) CreateUser(ctx context.Context, user *entity.DbUser) error {
	if err := r.ready(); err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateUser updates an existing user entry.
func (r *GormRepository) UpdateUser(ctx context.Context, id string, updates entity.UserUpdates) error {
	if err := r.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("invalid user")
	}
	values := updates.ToMap()
	if len(values) == 0 {
		return nil
	}
	if email, ok := values["email"].(string); ok {
		values["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	return r.db.WithContext(ctx).Model(&entity.DbUser{}).Where("id = ?", id).Updates(values).Error
}

// GetUserByEmail loads a user by email.
func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return r.firstUser(ctx, "email = ?", strings.ToLower(trimmed))
}

// GetUserByID loads a user by ID.
func (r *GormRepository) GetUserByID(ctx context.Context, id string) (*entity.DbUser, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return r.firstUser(ctx, "id = ?", id)
}

// GetUserByGoogleID loads a user linked to a Google account.
func (r *GormRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*entity.DbUser, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(googleID) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return r.firstUser(ctx, "google_id = ?", googleID)
}

// GetUserByVerificationSelector loads the user holding the selector of the
// latest verification token, whether or not it has been redeemed.
func (r *GormRepository) GetUserByVerificationSelector(ctx context.Context, selector string) (*entity.DbUser, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(selector) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return r.firstUser(ctx, "verification_selector = ?", selector)
}

func (r *GormRepository) firstUser(ctx context.Context, query string, args ...interface{}) (*entity.DbUser, error) {
	var user entity.DbUser
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns one page of users, newest first.
func (r *GormRepository) ListUsers(ctx context.Context, params entity.UserQuery, page entity.Page) ([]entity.DbUser, int64, error) {
	if err := r.ready(); err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Model(&entity.DbUser{})
	if params.Role != "" {
		query = query.Where("role = ?", params.Role)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []entity.DbUser
	if err := query.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CountUsers returns total user count.
func (r *GormRepository) CountUsers(ctx context.Context) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbUser{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
