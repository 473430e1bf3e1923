package entity

import "time"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" form:"token"`
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

// LoginResult is returned after a successful credential check.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserProfile `json:"user"`
}

// OAuthProfile is the identity asserted by an external provider callback.
type OAuthProfile struct {
	ProviderID   string
	Email        string
	Name         string
	ProfileImage string
}

type CreateCommentRequest struct {
	Content   string `json:"content"`
	ArticleID string `json:"articleId"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// CommentListQuery is the query string of an article comment listing.
type CommentListQuery struct {
	PageParams
	IncludeSpam       bool `form:"includeSpam"`
	IncludeUnapproved bool `form:"includeUnapproved"`
}

type CommentStats struct {
	ArticleID     string `json:"articleId"`
	ApprovedCount int64  `json:"approvedCount"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
