// internal/services/auth_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gocommerce/shop-backend/internal/apperrors"
	"github.com/gocommerce/shop-backend/internal/models"
	"github.com/gocommerce/shop-backend/internal/utils"
)

type AuthServiceSuite struct {
	ServiceSuite
	auth *AuthService
}

func (s *AuthServiceSuite) SetupTest() {
	s.ServiceSuite.SetupTest()
	utils.SetJWTSecret(s.cfg.JWT.SecretKey)
	s.auth = NewAuthService(s.db, s.cfg, NewNotificationService(s.cfg))
}

func TestAuthServiceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed suite in short mode")
	}
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) TestSignUpCreatesUnverifiedUser() {
	resp, err := s.auth.SignUp(&SignUpRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "Password1",
	})
	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)

	var user models.User
	s.Require().NoError(s.db.First(&user, "email = ?", "alice@example.com").Error)
	s.False(user.IsVerified)
	s.Require().NotNil(user.VerificationToken)
	s.Len(*user.VerificationToken, 32)
	s.Require().NotNil(user.VerificationTokenExpiresAt)
	s.WithinDuration(time.Now().Add(24*time.Hour), *user.VerificationTokenExpiresAt, time.Minute)
	s.NotEqual("Password1", user.PasswordHash)
}

func (s *AuthServiceSuite) TestSignUpRejectsDuplicateEmail() {
	s.createUser("alice@example.com", models.RoleUser, true)

	_, err := s.auth.SignUp(&SignUpRequest{
		Name:     "Alice Again",
		Email:    "alice@example.com",
		Password: "Password1",
	})
	s.Require().Error(err)
	s.Equal(apperrors.KindConflict, apperrors.KindOf(err))
}

func (s *AuthServiceSuite) TestSignUpRejectsWeakPassword() {
	_, err := s.auth.SignUp(&SignUpRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password", // no upper case, no digit
	})
	s.Require().Error(err)
	s.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (s *AuthServiceSuite) TestLoginRequiresVerifiedEmail() {
	resp, err := s.auth.SignUp(&SignUpRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "Password1",
	})
	s.Require().NoError(err)

	_, err = s.auth.Login(&LoginRequest{Email: "alice@example.com", Password: "Password1"})
	s.Require().Error(err)
	s.Equal(apperrors.KindForbidden, apperrors.KindOf(err))

	var stored models.User
	s.Require().NoError(s.db.First(&stored, "id = ?", resp.User.ID).Error)
	verified, err := s.auth.VerifyEmail(*stored.VerificationToken)
	s.Require().NoError(err)
	s.True(verified.IsVerified)
	s.Nil(verified.VerificationToken)

	logged, err := s.auth.Login(&LoginRequest{Email: "alice@example.com", Password: "Password1"})
	s.Require().NoError(err)
	s.NotEmpty(logged.AccessToken)
	s.NotNil(logged.User.LastLoginAt)

	claims, err := utils.ValidateJWT(logged.AccessToken)
	s.Require().NoError(err)
	s.Equal(resp.User.ID.String(), claims.UserID)
}

func (s *AuthServiceSuite) TestLoginRejectsWrongPassword() {
	s.createUser("alice@example.com", models.RoleUser, true)

	_, err := s.auth.Login(&LoginRequest{Email: "alice@example.com", Password: "WrongPass1"})
	s.Require().Error(err)
	s.Equal(apperrors.KindUnauthorized, apperrors.KindOf(err))

	_, err = s.auth.Login(&LoginRequest{Email: "nobody@example.com", Password: "Password1"})
	s.Require().Error(err)
	s.Equal(apperrors.KindUnauthorized, apperrors.KindOf(err))
}

func (s *AuthServiceSuite) TestVerifyEmailRejectsExpiredToken() {
	_, err := s.auth.SignUp(&SignUpRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "Password1",
	})
	s.Require().NoError(err)

	var user models.User
	s.Require().NoError(s.db.First(&user, "email = ?", "alice@example.com").Error)
	s.Require().NoError(s.db.Model(&user).
		Update("verification_token_expires_at", time.Now().Add(-time.Hour)).Error)

	_, err = s.auth.VerifyEmail(*user.VerificationToken)
	s.Require().Error(err)
	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func (s *AuthServiceSuite) TestVerifyEmailRejectsUnknownToken() {
	_, err := s.auth.VerifyEmail("deadbeefdeadbeefdeadbeefdeadbeef")
	s.Require().Error(err)
	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func (s *AuthServiceSuite) TestResendVerificationRotatesToken() {
	_, err := s.auth.SignUp(&SignUpRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "Password1",
	})
	s.Require().NoError(err)

	var before models.User
	s.Require().NoError(s.db.First(&before, "email = ?", "alice@example.com").Error)
	s.Require().NoError(s.db.Model(&before).
		Update("verification_token_expires_at", time.Now().Add(-time.Hour)).Error)

	s.Require().NoError(s.auth.ResendVerificationEmail(&ResendVerificationRequest{Email: "alice@example.com"}))

	var after models.User
	s.Require().NoError(s.db.First(&after, "email = ?", "alice@example.com").Error)
	s.NotEqual(*before.VerificationToken, *after.VerificationToken)

	// Old token no longer works, new one does.
	_, err = s.auth.VerifyEmail(*before.VerificationToken)
	s.Require().Error(err)
	_, err = s.auth.VerifyEmail(*after.VerificationToken)
	s.Require().NoError(err)
}

func (s *AuthServiceSuite) TestResendVerificationRefusedWhileTokenStillValid() {
	_, err := s.auth.SignUp(&SignUpRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "Password1",
	})
	s.Require().NoError(err)

	var before models.User
	s.Require().NoError(s.db.First(&before, "email = ?", "alice@example.com").Error)

	err = s.auth.ResendVerificationEmail(&ResendVerificationRequest{Email: "alice@example.com"})
	s.Require().Error(err)
	s.Equal(apperrors.KindConflict, apperrors.KindOf(err))

	// The original token survives untouched.
	var after models.User
	s.Require().NoError(s.db.First(&after, "email = ?", "alice@example.com").Error)
	s.Equal(*before.VerificationToken, *after.VerificationToken)
}

func (s *AuthServiceSuite) TestResendVerificationOnVerifiedAccount() {
	s.createUser("alice@example.com", models.RoleUser, true)

	err := s.auth.ResendVerificationEmail(&ResendVerificationRequest{Email: "alice@example.com"})
	s.Require().Error(err)
	s.Equal(apperrors.KindConflict, apperrors.KindOf(err))
}

func (s *AuthServiceSuite) TestChangePassword() {
	user := s.createUser("alice@example.com", models.RoleUser, true)

	err := s.auth.ChangePassword(user.ID, &ChangePasswordRequest{
		CurrentPassword: "WrongPass1",
		NewPassword:     "NewPassword1",
	})
	s.Require().Error(err)
	s.Equal(apperrors.KindUnauthorized, apperrors.KindOf(err))

	// Reusing the current password is refused.
	err = s.auth.ChangePassword(user.ID, &ChangePasswordRequest{
		CurrentPassword: "Password1",
		NewPassword:     "Password1",
	})
	s.Require().Error(err)
	s.Equal(apperrors.KindValidation, apperrors.KindOf(err))

	s.Require().NoError(s.auth.ChangePassword(user.ID, &ChangePasswordRequest{
		CurrentPassword: "Password1",
		NewPassword:     "NewPassword1",
	}))

	_, err = s.auth.Login(&LoginRequest{Email: "alice@example.com", Password: "NewPassword1"})
	s.Require().NoError(err)
}

func (s *AuthServiceSuite) TestForgotAndResetPassword() {
	user := s.createUser("alice@example.com", models.RoleUser, true)

	// Unknown address: silent success, nothing stored anywhere.
	s.Require().NoError(s.auth.ForgotPassword(&ForgotPasswordRequest{Email: "nobody@example.com"}))

	s.Require().NoError(s.auth.ForgotPassword(&ForgotPasswordRequest{Email: "alice@example.com"}))

	var stored models.User
	s.Require().NoError(s.db.First(&stored, "id = ?", user.ID).Error)
	s.Require().NotNil(stored.PasswordResetToken)
	s.Len(*stored.PasswordResetToken, 20)
	s.Require().NotNil(stored.PasswordResetTokenExpires)
	s.WithinDuration(time.Now().Add(15*time.Minute), *stored.PasswordResetTokenExpires, time.Minute)

	resp, err := s.auth.ResetPassword(*stored.PasswordResetToken, &ResetPasswordRequest{
		NewPassword: "BrandNew1",
	})
	s.Require().NoError(err)

	// The reset hands out a fresh session for the account.
	s.NotEmpty(resp.AccessToken)
	claims, err := utils.ValidateJWT(resp.AccessToken)
	s.Require().NoError(err)
	s.Equal(user.ID.String(), claims.UserID)

	// Token is single-use.
	_, err = s.auth.ResetPassword(*stored.PasswordResetToken, &ResetPasswordRequest{NewPassword: "Another1"})
	s.Require().Error(err)
	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = s.auth.Login(&LoginRequest{Email: "alice@example.com", Password: "BrandNew1"})
	s.Require().NoError(err)
}

func (s *AuthServiceSuite) TestForgotPasswordSkipsUnverifiedUser() {
	user := s.createUser("alice@example.com", models.RoleUser, false)

	s.Require().NoError(s.auth.ForgotPassword(&ForgotPasswordRequest{Email: "alice@example.com"}))

	var stored models.User
	s.Require().NoError(s.db.First(&stored, "id = ?", user.ID).Error)
	s.Nil(stored.PasswordResetToken)
	s.Nil(stored.PasswordResetTokenExpires)
}

func (s *AuthServiceSuite) TestForgotPasswordKeepsLiveToken() {
	user := s.createUser("alice@example.com", models.RoleUser, true)

	s.Require().NoError(s.auth.ForgotPassword(&ForgotPasswordRequest{Email: "alice@example.com"}))
	var first models.User
	s.Require().NoError(s.db.First(&first, "id = ?", user.ID).Error)

	// A second request while the first token is live changes nothing.
	s.Require().NoError(s.auth.ForgotPassword(&ForgotPasswordRequest{Email: "alice@example.com"}))
	var second models.User
	s.Require().NoError(s.db.First(&second, "id = ?", user.ID).Error)
	s.Equal(*first.PasswordResetToken, *second.PasswordResetToken)

	// Once the token expires a new one is minted.
	s.Require().NoError(s.db.Model(&second).
		Update("password_reset_token_expires", time.Now().Add(-time.Minute)).Error)
	s.Require().NoError(s.auth.ForgotPassword(&ForgotPasswordRequest{Email: "alice@example.com"}))
	var third models.User
	s.Require().NoError(s.db.First(&third, "id = ?", user.ID).Error)
	s.NotEqual(*first.PasswordResetToken, *third.PasswordResetToken)
}

func (s *AuthServiceSuite) TestResetPasswordRejectsCurrentPassword() {
	user := s.createUser("alice@example.com", models.RoleUser, true)
	s.Require().NoError(s.auth.ForgotPassword(&ForgotPasswordRequest{Email: "alice@example.com"}))

	var stored models.User
	s.Require().NoError(s.db.First(&stored, "id = ?", user.ID).Error)

	_, err := s.auth.ResetPassword(*stored.PasswordResetToken, &ResetPasswordRequest{
		NewPassword: "Password1",
	})
	s.Require().Error(err)
	s.Equal(apperrors.KindValidation, apperrors.KindOf(err))

	// The token survives the rejected attempt.
	var after models.User
	s.Require().NoError(s.db.First(&after, "id = ?", user.ID).Error)
	s.Require().NotNil(after.PasswordResetToken)
	s.Equal(*stored.PasswordResetToken, *after.PasswordResetToken)
}

func (s *AuthServiceSuite) TestResetPasswordRejectsExpiredToken() {
	user := s.createUser("alice@example.com", models.RoleUser, true)
	s.Require().NoError(s.auth.ForgotPassword(&ForgotPasswordRequest{Email: "alice@example.com"}))

	var stored models.User
	s.Require().NoError(s.db.First(&stored, "id = ?", user.ID).Error)
	s.Require().NoError(s.db.Model(&stored).
		Update("password_reset_token_expires", time.Now().Add(-time.Minute)).Error)

	_, err := s.auth.ResetPassword(*stored.PasswordResetToken, &ResetPasswordRequest{NewPassword: "BrandNew1"})
	s.Require().Error(err)
	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}
