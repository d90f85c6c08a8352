// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gocommerce/shop-backend/internal/apperrors"
	"github.com/gocommerce/shop-backend/internal/config"
	"github.com/gocommerce/shop-backend/internal/models"
	"github.com/gocommerce/shop-backend/internal/utils"
)

const (
	verificationTokenTTL  = 24 * time.Hour
	passwordResetTokenTTL = 15 * time.Minute
)

type AuthService struct {
	db            *gorm.DB
	cfg           *config.Config
	notifications *NotificationService
}

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"-"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,strong_password"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, notifications *NotificationService) *AuthService {
	return &AuthService{
		db:            db,
		cfg:           cfg,
		notifications: notifications,
	}
}

func (s *AuthService) SignUp(req *SignUpRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed", utils.GetValidationErrors(err))
	}

	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("database error", err)
	}

	verificationToken, err := utils.GenerateVerificationCode()
	if err != nil {
		return nil, apperrors.Internal("failed to generate verification token", err)
	}
	expiresAt := time.Now().Add(verificationTokenTTL)

	user := &models.User{
		Name:                       req.Name,
		Email:                      req.Email,
		Role:                       models.RoleUser,
		VerificationToken:          &verificationToken,
		VerificationTokenExpiresAt: &expiresAt,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Internal("failed to create user", err)
	}

	accessToken, err := utils.GenerateJWT(user.ID, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Internal("failed to generate access token", err)
	}

	go s.sendEmail(func() error {
		return s.notifications.SendVerificationEmail(user, verificationToken)
	}, user.Email, "verification")

	return &AuthResponse{User: user, AccessToken: accessToken}, nil
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed", utils.GetValidationErrors(err))
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, apperrors.Internal("database error", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	if !user.IsVerified {
		return nil, apperrors.Forbidden("email address is not verified")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).Warn("Failed to record last login time")
	}

	accessToken, err := utils.GenerateJWT(user.ID, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Internal("failed to generate access token", err)
	}

	return &AuthResponse{User: &user, AccessToken: accessToken}, nil
}

// VerifyEmail consumes a verification token. The token is single-use: it is
// cleared in the same update that marks the account verified.
func (s *AuthService) VerifyEmail(token string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("verification_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("invalid or expired verification token")
		}
		return nil, apperrors.Internal("database error", err)
	}

	if user.VerificationTokenExpiresAt == nil || time.Now().After(*user.VerificationTokenExpiresAt) {
		return nil, apperrors.NotFound("invalid or expired verification token")
	}

	updates := map[string]interface{}{
		"is_verified":                   true,
		"verification_token":            nil,
		"verification_token_expires_at": nil,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal("failed to verify email", err)
	}
	user.IsVerified = true
	user.VerificationToken = nil
	user.VerificationTokenExpiresAt = nil

	go s.sendEmail(func() error {
		return s.notifications.SendWelcomeEmail(&user)
	}, user.Email, "welcome")

	return &user, nil
}

func (s *AuthService) ResendVerificationEmail(req *ResendVerificationRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Validation("validation failed", utils.GetValidationErrors(err))
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Do not reveal whether the address is registered.
			return nil
		}
		return apperrors.Internal("database error", err)
	}

	if user.IsVerified {
		return apperrors.Conflict("email is already verified")
	}
	if user.VerificationTokenExpiresAt != nil && time.Now().Before(*user.VerificationTokenExpiresAt) {
		return apperrors.Conflict("a verification email was already sent, check your inbox")
	}

	verificationToken, err := utils.GenerateVerificationCode()
	if err != nil {
		return apperrors.Internal("failed to generate verification token", err)
	}
	expiresAt := time.Now().Add(verificationTokenTTL)

	updates := map[string]interface{}{
		"verification_token":            verificationToken,
		"verification_token_expires_at": expiresAt,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return apperrors.Internal("failed to store verification token", err)
	}

	go s.sendEmail(func() error {
		return s.notifications.SendVerificationEmail(&user, verificationToken)
	}, user.Email, "verification")

	return nil
}

func (s *AuthService) ChangePassword(userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Validation("validation failed", utils.GetValidationErrors(err))
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Internal("database error", err)
	}

	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return apperrors.Unauthorized("current password is incorrect")
	}
	if user.CheckPassword(req.NewPassword) == nil {
		return apperrors.Validation("new password must be different from the current password", nil)
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperrors.Internal("failed to hash password", err)
	}
	if err := s.db.Model(&user).Update("password_hash", user.PasswordHash).Error; err != nil {
		return apperrors.Internal("failed to update password", err)
	}

	go s.sendEmail(func() error {
		return s.notifications.SendPasswordChangedEmail(&user)
	}, user.Email, "password changed")

	return nil
}

// ForgotPassword always succeeds from the caller's point of view so the
// endpoint cannot be used to probe which addresses are registered.
func (s *AuthService) ForgotPassword(req *ForgotPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Validation("validation failed", utils.GetValidationErrors(err))
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil
	}
	if !user.IsVerified {
		return nil
	}
	// An outstanding token keeps its lease until it expires.
	if user.PasswordResetTokenExpires != nil && time.Now().Before(*user.PasswordResetTokenExpires) {
		return nil
	}

	resetToken, err := utils.GeneratePasswordResetCode()
	if err != nil {
		return apperrors.Internal("failed to generate reset token", err)
	}
	expiresAt := time.Now().Add(passwordResetTokenTTL)

	updates := map[string]interface{}{
		"password_reset_token":         resetToken,
		"password_reset_token_expires": expiresAt,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return apperrors.Internal("failed to store reset token", err)
	}

	go s.sendEmail(func() error {
		return s.notifications.SendPasswordResetEmail(&user, resetToken)
	}, user.Email, "password reset")

	return nil
}

// ResetPassword consumes a reset token and signs the user in, so the caller
// lands with a fresh session instead of having to log in again.
func (s *AuthService) ResetPassword(token string, req *ResetPasswordRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed", utils.GetValidationErrors(err))
	}

	var user models.User
	if err := s.db.Where("password_reset_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("invalid or expired reset token")
		}
		return nil, apperrors.Internal("database error", err)
	}

	if user.PasswordResetTokenExpires == nil || time.Now().After(*user.PasswordResetTokenExpires) {
		return nil, apperrors.NotFound("invalid or expired reset token")
	}

	if user.CheckPassword(req.NewPassword) == nil {
		return nil, apperrors.Validation("new password must be different from the current password", nil)
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	updates := map[string]interface{}{
		"password_hash":                user.PasswordHash,
		"password_reset_token":         nil,
		"password_reset_token_expires": nil,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal("failed to update password", err)
	}
	user.PasswordResetToken = nil
	user.PasswordResetTokenExpires = nil

	accessToken, err := utils.GenerateJWT(user.ID, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Internal("failed to generate access token", err)
	}

	go s.sendEmail(func() error {
		return s.notifications.SendPasswordChangedEmail(&user)
	}, user.Email, "password changed")

	return &AuthResponse{User: &user, AccessToken: accessToken}, nil
}

func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("ShippingAddress").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("database error", err)
	}
	return &user, nil
}

func (s *AuthService) sendEmail(send func() error, email, kind string) {
	if err := send(); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"email": email,
			"kind":  kind,
		}).Error(fmt.Sprintf("Failed to send %s email", kind))
	}
}
