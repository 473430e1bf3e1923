package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"newsroom/internal/apperr"
	"newsroom/internal/auth"
	"newsroom/internal/entity"
	"newsroom/internal/entity/converter"
	"newsroom/internal/mail"
	"newsroom/internal/metrics"
	"newsroom/internal/model"
	"newsroom/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	MsgRegistered      = "Registration successful. Please check your email to verify your account."
	MsgEmailVerified   = "Email verified successfully. You can now log in."
	MsgAlreadyVerified = "Email already verified."
	MsgResendGeneric   = "If an account with that email exists and is not verified, a new verification link has been sent."
	MsgPasswordChanged = "Password changed successfully"

	// MaxAvatarBytes bounds avatar uploads.
	MaxAvatarBytes = 1 << 20

	defaultVerificationTTL = time.Hour
)

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	MintToken(id auth.Identity) (string, time.Time, error)
	Expiry() time.Duration
}

// CookieOptions describes the session cookie.
type CookieOptions struct {
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
	Path     string
	MaxAge   time.Duration
}

// AuthService 认证服务，封装注册、登录、邮箱验证与资料管理
type AuthService struct {
	repo         model.Repository
	hasher       auth.Hasher
	tokens       TokenIssuer
	mailer       mail.Sender
	isProduction bool

	avatars    storage.Storage
	avatarURLs storage.URLResolver

	verificationTTL time.Duration
	now             func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthService 创建认证服务实例
func NewAuthService(repo model.Repository, hasher auth.Hasher, tokens TokenIssuer, mailer mail.Sender, isProduction bool) *AuthService {
	return &AuthService{
		repo:         repo,
		hasher:       hasher,
		tokens:       tokens,
		mailer:       mailer,
		isProduction: isProduction,

		verificationTTL: defaultVerificationTTL,
		now:             time.Now,
	}
}

// SetVerificationTTL 设置邮箱验证链接有效期，非正值表示不过期
func (s *AuthService) SetVerificationTTL(ttl time.Duration) {
	s.verificationTTL = ttl
}

// SetAvatarStorage 设置头像存储（可选）
func (s *AuthService) SetAvatarStorage(store storage.Storage, urls storage.URLResolver) {
	s.avatars = store
	s.avatarURLs = urls
}

// Register creates an unverified account and mails its verification link.
func (s *AuthService) Register(ctx context.Context, req entity.RegisterRequest) (*entity.UserProfile, error) {
	req.Name = sanitizeText(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("Missing required fields: name, email, and password.", apperr.CodeMissingFields)
	}
	if err := validateRegistration(&req); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Conflict("Email already registered", apperr.CodeEmailExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("failed to look up user", err)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	token, stored, err := s.newVerificationToken()
	if err != nil {
		return nil, err
	}

	user := &entity.DbUser{
		Name:                  req.Name,
		Email:                 req.Email,
		PasswordHash:          &passwordHash,
		Role:                  entity.RoleUser,
		Status:                entity.UserStatusActive,
		VerificationSelector:  &stored.Selector,
		VerificationTokenHash: &stored.Hash,
	}
	if !stored.ExpiresAt.IsZero() {
		user.VerificationExpiresAt = &stored.ExpiresAt
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Email already registered", apperr.CodeEmailExists)
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, token.Raw); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to send verification email")
		return nil, &apperr.Error{
			Kind:    apperr.KindInternal,
			Code:    apperr.CodeEmailSendFailed,
			Message: "Failed to send verification email",
			Err:     err,
		}
	}

	profile := converter.UserToProfile(user, false)
	return &profile, nil
}

// Login checks credentials and issues a session token. The password is
// verified before any account state is revealed.
func (s *AuthService) Login(ctx context.Context, req entity.LoginRequest) (*entity.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("Missing email or password", apperr.CodeMissingCredentials)
	}

	invalid := apperr.Authentication("Invalid credentials", apperr.CodeInvalidCredentials)
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("failed to look up user", err)
		}
		s.hasher.Compare(req.Password, s.dummyHash())
		metrics.ObserveAuthFailure(invalid.Code)
		return nil, invalid
	}
	if !user.HasPassword() || !s.hasher.Compare(req.Password, *user.PasswordHash) {
		metrics.ObserveAuthFailure(invalid.Code)
		return nil, invalid
	}
	if !user.IsVerified {
		metrics.ObserveAuthFailure(apperr.CodeEmailNotVerified)
		return nil, apperr.Authentication("Account not verified. Please check your email for the verification link.", apperr.CodeEmailNotVerified)
	}
	if !user.CanSignIn() {
		metrics.ObserveAuthFailure(apperr.CodeAccountSuspended)
		return nil, apperr.Authentication("Account suspended. Please contact support.", apperr.CodeAccountSuspended)
	}

	result, err := s.IssueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	metrics.LoginsTotal.Inc()
	return result, nil
}

// IssueSession mints a token for an already authenticated user. The
// subscriber flag is looked up now and frozen into the token.
func (s *AuthService) IssueSession(ctx context.Context, user *entity.DbUser) (*entity.LoginResult, error) {
	isSubscriber, err := s.repo.HasActiveSubscription(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to check subscription", err)
	}
	token, expiresAt, err := s.tokens.MintToken(auth.Identity{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		IsSubscriber: isSubscriber,
	})
	if err != nil {
		return nil, apperr.Internal("failed to mint token", err)
	}
	return &entity.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      converter.UserToProfile(user, isSubscriber),
	}, nil
}

// VerifyEmail redeems a verification token. Redeeming the same token again
// reports that the email is already verified.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) (string, error) {
	if strings.TrimSpace(rawToken) == "" {
		return "", apperr.Validation("Verification token is required", apperr.CodeMissingToken)
	}
	invalid := apperr.NotFound("Invalid or expired verification token", apperr.CodeInvalidToken)

	selector, verifier, err := auth.SplitVerificationToken(rawToken)
	if err != nil {
		return "", invalid
	}
	user, err := s.repo.GetUserByVerificationSelector(ctx, selector)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", invalid
		}
		return "", apperr.Internal("failed to look up verification token", err)
	}

	if user.VerificationTokenHash == nil {
		if user.IsVerified {
			return MsgAlreadyVerified, nil
		}
		return "", invalid
	}
	if !s.hasher.Compare(verifier, *user.VerificationTokenHash) {
		return "", invalid
	}
	if !user.IsVerified && user.VerificationExpiresAt != nil && s.now().After(*user.VerificationExpiresAt) {
		logrus.WithField("user_id", user.ID).Info("verification token expired")
		return "", invalid
	}

	updates := entity.UserUpdates{ConsumeVerification: true}
	msg := MsgAlreadyVerified
	if !user.IsVerified {
		verified := true
		updates.IsVerified = &verified
		msg = MsgEmailVerified
	}
	if err := s.repo.UpdateUser(ctx, user.ID, updates); err != nil {
		return "", apperr.Internal("failed to verify email", err)
	}
	return msg, nil
}

// ResendVerification issues a fresh token for an unverified account. The
// reply is the same whether or not the account exists.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperr.Validation("Email is required", apperr.CodeMissingFields)
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MsgResendGeneric, nil
		}
		return "", apperr.Internal("failed to look up user", err)
	}
	if user.IsVerified {
		return MsgResendGeneric, nil
	}

	token, stored, err := s.newVerificationToken()
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateUser(ctx, user.ID, entity.UserUpdates{Verification: &stored}); err != nil {
		return "", apperr.Internal("failed to store verification token", err)
	}
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, token.Raw); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to resend verification email")
		return "", &apperr.Error{
			Kind:    apperr.KindInternal,
			Code:    apperr.CodeEmailSendFailed,
			Message: "Failed to send verification email",
			Err:     err,
		}
	}
	return MsgResendGeneric, nil
}

// ChangePassword replaces the password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req entity.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return apperr.Validation("Old and new password are required", apperr.CodeMissingFields)
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPassword() {
		return apperr.Authentication("You don't have a password set.", apperr.CodePasswordNotSet)
	}
	if !s.hasher.Compare(req.OldPassword, *user.PasswordHash) {
		return apperr.Authentication("Incorrect old password", apperr.CodeInvalidCredentials)
	}
	if err := validateNewPassword(req.NewPassword); err != nil {
		return err
	}
	digest, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	if err := s.repo.UpdateUser(ctx, user.ID, entity.UserUpdates{PasswordHash: &digest}); err != nil {
		return apperr.Internal("failed to update password", err)
	}
	return nil
}

// GetProfile returns the current profile with a live subscriber flag.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	isSubscriber, err := s.repo.HasActiveSubscription(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to check subscription", err)
	}
	profile := converter.UserToProfile(user, isSubscriber)
	return &profile, nil
}

// UpdateProfile changes name, bio or email of the current user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req entity.UpdateProfileRequest) (*entity.UserProfile, error) {
	if req.Name != nil {
		name := sanitizeText(*req.Name)
		req.Name = &name
	}
	if req.Bio != nil {
		bio := sanitizeText(*req.Bio)
		req.Bio = &bio
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if err := validateProfile(&req); err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := entity.UserUpdates{Name: req.Name, Bio: req.Bio}
	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.repo.GetUserByEmail(ctx, *req.Email)
		switch {
		case err == nil && existing.ID != user.ID:
			return nil, apperr.Conflict("Email already registered", apperr.CodeEmailExists)
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperr.Internal("failed to look up user", err)
		}
		updates.Email = req.Email
	}
	if !updates.IsEmpty() {
		if err := s.repo.UpdateUser(ctx, user.ID, updates); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperr.Conflict("Email already registered", apperr.CodeEmailExists)
			}
			return nil, apperr.Internal("failed to update profile", err)
		}
	}
	return s.GetProfile(ctx, user.ID)
}

// UploadAvatar stores an image and points the profile at it. The previous
// avatar is removed when it lives in the same storage.
func (s *AuthService) UploadAvatar(ctx context.Context, userID string, data []byte, contentType string) (*entity.UserProfile, error) {
	if len(data) == 0 {
		return nil, apperr.Validation("No file uploaded", apperr.CodeNoFile)
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, apperr.Validation("Only image files are allowed", apperr.CodeInvalidFile)
	}
	if len(data) > MaxAvatarBytes {
		return nil, apperr.Validation("File too large (max 1MB)", apperr.CodeInvalidFile)
	}
	// stored type comes from the bytes, not the declared header
	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), avatarTypes...) {
		logrus.WithFields(logrus.Fields{
			"user_id":  userID,
			"declared": contentType,
			"detected": detected.String(),
		}).Warn("avatar rejected by content sniffing")
		return nil, apperr.Validation("Only image files are allowed", apperr.CodeInvalidFile)
	}
	contentType = detected.String()
	if s.avatars == nil {
		return nil, apperr.Internal("avatar storage is not configured", errors.New("storage not configured"))
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := s.avatars.Save(ctx, data, storage.ObjectOptions{
		Folder:      "avatars",
		Name:        "avatar-" + user.ID,
		ContentType: contentType,
	})
	if err != nil {
		return nil, apperr.Internal("failed to store avatar", err)
	}
	url := s.avatarURLs.PublicURL(key)
	if err := s.repo.UpdateUser(ctx, user.ID, entity.UserUpdates{ProfileImage: &url}); err != nil {
		return nil, apperr.Internal("failed to update avatar", err)
	}

	if oldKey, ok := s.avatarURLs.KeyFromURL(user.ProfileImage); ok && oldKey != key {
		if err := s.avatars.Delete(ctx, oldKey); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id": user.ID,
				"key":     oldKey,
			}).Warn("failed to delete previous avatar")
		}
	}
	return s.GetProfile(ctx, user.ID)
}

// avatarTypes are the raster formats accepted as avatars. SVG is excluded
// because it can carry script.
var avatarTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/avif"}

// ResolveOAuthUser finds or creates the account for an identity provider
// callback.
func (s *AuthService) ResolveOAuthUser(ctx context.Context, profile entity.OAuthProfile) (*entity.DbUser, error) {
	providerID := strings.TrimSpace(profile.ProviderID)
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if providerID == "" || email == "" {
		return nil, apperr.Validation("Incomplete identity provider profile", apperr.CodeMissingFields)
	}

	user, err := s.repo.GetUserByGoogleID(ctx, providerID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("failed to look up user", err)
	}

	user, err = s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		verified := true
		if err := s.repo.UpdateUser(ctx, user.ID, entity.UserUpdates{GoogleID: &providerID, IsVerified: &verified}); err != nil {
			return nil, apperr.Internal("failed to link account", err)
		}
		user.GoogleID = &providerID
		user.IsVerified = true
		return user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.Internal("failed to look up user", err)
	}

	name := sanitizeText(profile.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	sentinel := entity.OAuthPasswordSentinel
	user = &entity.DbUser{
		Name:         name,
		Email:        email,
		PasswordHash: &sentinel,
		Role:         entity.RoleUser,
		Status:       entity.UserStatusActive,
		IsVerified:   true,
		GoogleID:     &providerID,
		ProfileImage: profile.ProfileImage,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}
	return user, nil
}

// LoadActiveUser reloads the account behind a verified token.
func (s *AuthService) LoadActiveUser(ctx context.Context, userID string) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Authentication("Authentication failed", apperr.CodeAuthFailed)
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if !user.CanSignIn() {
		return nil, apperr.Authentication("Account suspended. Please contact support.", apperr.CodeAccountSuspended)
	}
	return user, nil
}

// CookieOptions returns the attributes of the session cookie.
func (s *AuthService) CookieOptions() CookieOptions {
	return CookieOptions{
		HTTPOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   s.tokens.Expiry(),
	}
}

func (s *AuthService) loadUser(ctx context.Context, userID string) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found", apperr.CodeUserNotFound)
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

func (s *AuthService) newVerificationToken() (auth.OneTimeToken, entity.VerificationToken, error) {
	token, err := auth.NewOneTimeToken()
	if err != nil {
		return auth.OneTimeToken{}, entity.VerificationToken{}, apperr.Internal("failed to generate verification token", err)
	}
	digest, err := s.hasher.Hash(token.Verifier)
	if err != nil {
		return auth.OneTimeToken{}, entity.VerificationToken{}, apperr.Internal("failed to hash verification token", err)
	}
	stored := entity.VerificationToken{Selector: token.Selector, Hash: digest}
	if s.verificationTTL > 0 {
		stored.ExpiresAt = s.now().Add(s.verificationTTL)
	}
	return token, stored, nil
}

// dummyHash keeps unknown-email logins as slow as wrong-password ones.
func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("newsroom-timing-equaliser")
		if err == nil {
			s.dummyDigest = digest
		}
	})
	return s.dummyDigest
}
