package service

import (
	"context"
	"errors"
	"strings"

	"newsroom/internal/apperr"
	"newsroom/internal/auth"
	"newsroom/internal/entity"
	"newsroom/internal/entity/converter"
	"newsroom/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	userListDefaultLimit = 10
	userListMaxLimit     = 50
)

// UserList is one page of user profiles.
type UserList struct {
	Users []entity.UserProfile
	Meta  *entity.Meta
}

// UserAdminService 用户管理服务（ADMIN / SUPERADMIN）
type UserAdminService struct {
	repo model.Repository
}

// NewUserAdminService 创建用户管理服务实例
func NewUserAdminService(repo model.Repository) *UserAdminService {
	return &UserAdminService{repo: repo}
}

// List pages through users, newest first. Without a status filter only
// active accounts are returned.
func (s *UserAdminService) List(ctx context.Context, caller auth.Identity, query entity.UserQuery) (*UserList, error) {
	if !caller.Role.Can(entity.ActionUserList) {
		return nil, apperr.Authorization("Insufficient permissions", apperr.CodeInsufficientPermissions)
	}

	filter := entity.UserQuery{Status: entity.UserStatusActive}
	if raw := strings.TrimSpace(string(query.Role)); raw != "" {
		role, ok := entity.ParseRole(raw)
		if !ok {
			return nil, apperr.Validation("Invalid role", apperr.CodeInvalidRole)
		}
		filter.Role = role
	}
	if raw := strings.TrimSpace(string(query.Status)); raw != "" {
		status, ok := entity.ParseUserStatus(raw)
		if !ok {
			return nil, apperr.Validation("Invalid status", apperr.CodeInvalidStatus)
		}
		filter.Status = status
	}

	limit := query.Limit
	if query.PageSize > 0 {
		limit = query.PageSize
	}
	page := entity.NormalizePage(query.Page, limit, userListDefaultLimit, userListMaxLimit)
	users, total, err := s.repo.ListUsers(ctx, filter, page)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return &UserList{Users: converter.UsersToProfiles(users), Meta: entity.NewMeta(page, total)}, nil
}

// UpdateRole changes another user's role.
func (s *UserAdminService) UpdateRole(ctx context.Context, caller auth.Identity, userID, rawRole string) (*entity.UserProfile, error) {
	if !caller.Role.Can(entity.ActionUserManageRole) {
		return nil, apperr.Authorization("Only SuperAdmins can change user roles.", apperr.CodeNotAuthorized)
	}
	role, ok := entity.ParseRole(rawRole)
	if !ok {
		return nil, apperr.Validation("Invalid role", apperr.CodeInvalidRole)
	}
	userID = strings.TrimSpace(userID)
	if userID == caller.UserID {
		return nil, apperr.Authorization("You cannot change your own role.", apperr.CodeCannotModifySelf)
	}
	target, err := s.loadTarget(ctx, userID)
	if err != nil {
		return nil, err
	}
	// ids may resolve case-insensitively depending on collation
	if target.ID == caller.UserID {
		return nil, apperr.Authorization("You cannot change your own role.", apperr.CodeCannotModifySelf)
	}
	if err := s.repo.UpdateUser(ctx, target.ID, entity.UserUpdates{Role: &role}); err != nil {
		return nil, apperr.Internal("failed to update role", err)
	}
	logrus.WithFields(logrus.Fields{
		"actor_id":  caller.UserID,
		"target_id": target.ID,
		"from":      target.Role,
		"to":        role,
	}).Info("user role changed")
	target.Role = role
	profile := converter.UserToProfile(target, false)
	return &profile, nil
}

// UpdateStatus bans or reactivates another user. Only a SUPERADMIN may
// change the status of a SUPERADMIN.
func (s *UserAdminService) UpdateStatus(ctx context.Context, caller auth.Identity, userID, rawStatus string) (*entity.UserProfile, error) {
	if !caller.Role.Can(entity.ActionUserManageStatus) {
		return nil, apperr.Authorization("You are not authorized to change user status.", apperr.CodeNotAuthorized)
	}
	status, ok := entity.ParseUserStatus(rawStatus)
	if !ok {
		return nil, apperr.Validation("Invalid status", apperr.CodeInvalidStatus)
	}
	userID = strings.TrimSpace(userID)
	if userID == caller.UserID {
		return nil, apperr.Authorization("You cannot change your own status.", apperr.CodeCannotModifySelf)
	}
	target, err := s.loadTarget(ctx, userID)
	if err != nil {
		return nil, err
	}
	// ids may resolve case-insensitively depending on collation
	if target.ID == caller.UserID {
		return nil, apperr.Authorization("You cannot change your own status.", apperr.CodeCannotModifySelf)
	}
	if target.Role == entity.RoleSuperAdmin && !caller.Role.Can(entity.ActionUserManageSuper) {
		return nil, apperr.Authorization("Only SuperAdmins can modify the status of other SuperAdmins.", apperr.CodeNotAuthorized)
	}
	if err := s.repo.UpdateUser(ctx, target.ID, entity.UserUpdates{Status: &status}); err != nil {
		return nil, apperr.Internal("failed to update status", err)
	}
	logrus.WithFields(logrus.Fields{
		"actor_id":  caller.UserID,
		"target_id": target.ID,
		"from":      target.Status,
		"to":        status,
	}).Info("user status changed")
	target.Status = status
	profile := converter.UserToProfile(target, false)
	return &profile, nil
}

func (s *UserAdminService) loadTarget(ctx context.Context, userID string) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found", apperr.CodeUserNotFound)
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}
