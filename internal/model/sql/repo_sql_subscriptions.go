package sql

import (
	"context"
	"strings"

	"newsroom/internal/entity"
)

// HasActiveSubscription reports whether the user holds an ACTIVE subscription.
func (r *GormRepository) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	if strings.TrimSpace(userID) == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.DbSubscription{}).
		Where("user_id = ? AND status = ?", userID, entity.SubscriptionActive).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
