package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus is the admin-controlled account status.
type UserStatus string

const (
	UserStatusActive UserStatus = "ACTIVE"
	UserStatusBanned UserStatus = "BANNED"
)

// ParseUserStatus converts a raw string into a UserStatus.
func ParseUserStatus(value string) (UserStatus, bool) {
	status := UserStatus(strings.ToUpper(strings.TrimSpace(value)))
	switch status {
	case UserStatusActive, UserStatusBanned:
		return status, true
	default:
		return "", false
	}
}

// DbUser represents a persisted user account.
type DbUser struct {
	ID                    string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	Name                  string     `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Email                 string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash          *string    `gorm:"column:password_hash;type:varchar(255)" json:"-"`
	Role                  Role       `gorm:"column:role;type:varchar(20);index;not null;default:USER" json:"role"`
	Status                UserStatus `gorm:"column:status;type:varchar(20);index;not null;default:ACTIVE" json:"status"`
	IsSuspended           bool       `gorm:"column:is_suspended;not null;default:false" json:"is_suspended"`
	IsVerified            bool       `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	VerificationSelector  *string    `gorm:"column:verification_selector;type:varchar(64);uniqueIndex" json:"-"`
	VerificationTokenHash *string    `gorm:"column:verification_token_hash;type:varchar(255)" json:"-"`
	VerificationExpiresAt *time.Time `gorm:"column:verification_expires_at" json:"-"`
	GoogleID              *string    `gorm:"column:google_id;type:varchar(255);uniqueIndex" json:"-"`
	ProfileImage          string     `gorm:"column:profile_image;type:varchar(512)" json:"profile_image"`
	Bio                   string     `gorm:"column:bio;type:text" json:"bio"`
}

// TableName overrides default pluralised name.
func (DbUser) TableName() string {
	return "users"
}

// BeforeCreate assigns a random id when none is set.
func (u *DbUser) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// CanSignIn reports whether the account may authenticate requests.
func (u *DbUser) CanSignIn() bool {
	return u != nil && !u.IsSuspended && u.Status == UserStatusActive
}

// HasPassword reports whether a usable credential is stored.
func (u *DbUser) HasPassword() bool {
	return u != nil && u.PasswordHash != nil && *u.PasswordHash != "" && *u.PasswordHash != OAuthPasswordSentinel
}

// OAuthPasswordSentinel marks accounts created through an identity provider.
// It is never a valid bcrypt digest, so it cannot match any password.
const OAuthPasswordSentinel = "google-oauth-user"

// UserProfile is the safe projection of a user returned to clients.
type UserProfile struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	IsVerified   bool       `json:"isVerified"`
	IsSubscriber bool       `json:"isSubscriber"`
	ProfileImage string     `json:"profileImage,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// UserQuery supports listing users with pagination.
type UserQuery struct {
	PageParams
	// PageSize is accepted as an alias of Limit.
	PageSize int        `json:"pageSize" form:"pageSize"`
	Role     Role       `json:"role" form:"role"`
	Status   UserStatus `json:"status" form:"status"`
}
