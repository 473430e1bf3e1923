package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"
)

// DbSubscription links a user to a paid plan. Only ACTIVE rows grant the
// subscriber flag.
type DbSubscription struct {
	ID               string             `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	UserID           string             `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	Plan             string             `gorm:"column:plan;type:varchar(50)" json:"plan"`
	Status           SubscriptionStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	CurrentPeriodEnd *time.Time         `gorm:"column:current_period_end" json:"current_period_end,omitempty"`
}

func (DbSubscription) TableName() string {
	return "subscriptions"
}

func (s *DbSubscription) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
