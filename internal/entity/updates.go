package entity

import "time"

// UserUpdates 用户更新字段
type UserUpdates struct {
	Name         *string
	Email        *string
	Bio          *string
	ProfileImage *string
	PasswordHash *string
	Role         *Role
	Status       *UserStatus
	IsVerified   *bool
	GoogleID     *string

	// Verification replaces the outstanding verification token.
	Verification *VerificationToken
	// ClearVerification removes the outstanding verification token.
	ClearVerification bool
	// ConsumeVerification drops the token hash but keeps the selector, so a
	// redeemed link still resolves to its account.
	ConsumeVerification bool
}

// VerificationToken is the stored half of an email verification token.
type VerificationToken struct {
	Selector string
	Hash     string
	// ExpiresAt is optional; zero means the token does not expire.
	ExpiresAt time.Time
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Email != nil {
		updates["email"] = *u.Email
	}
	if u.Bio != nil {
		updates["bio"] = *u.Bio
	}
	if u.ProfileImage != nil {
		updates["profile_image"] = *u.ProfileImage
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.Role != nil {
		updates["role"] = *u.Role
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.IsVerified != nil {
		updates["is_verified"] = *u.IsVerified
	}
	if u.GoogleID != nil {
		updates["google_id"] = *u.GoogleID
	}
	if u.Verification != nil {
		updates["verification_selector"] = u.Verification.Selector
		updates["verification_token_hash"] = u.Verification.Hash
		if u.Verification.ExpiresAt.IsZero() {
			updates["verification_expires_at"] = nil
		} else {
			updates["verification_expires_at"] = u.Verification.ExpiresAt
		}
	} else if u.ClearVerification {
		updates["verification_selector"] = nil
		updates["verification_token_hash"] = nil
		updates["verification_expires_at"] = nil
	} else if u.ConsumeVerification {
		updates["verification_token_hash"] = nil
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// CommentUpdates 评论更新字段
type CommentUpdates struct {
	Content *string
	State   *CommentState
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u CommentUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Content != nil {
		updates["content"] = *u.Content
	}
	if u.State != nil {
		approved, spam := u.State.Flags()
		updates["is_approved"] = approved
		updates["is_spam"] = spam
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u CommentUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
