// internal/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gocommerce/shop-backend/internal/config"
	"github.com/gocommerce/shop-backend/internal/i18n"
	"github.com/gocommerce/shop-backend/internal/services"
	"github.com/gocommerce/shop-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// POST /auth/sign-up
func (h *AuthHandler) SignUp(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	authResponse, err := h.authService.SignUp(&req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setSessionCookie(c, authResponse.AccessToken)
	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyAuthSignupSuccess), gin.H{
		"user": authResponse.User,
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	authResponse, err := h.authService.Login(&req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setSessionCookie(c, authResponse.AccessToken)
	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyAuthLoginSuccess), gin.H{
		"user": authResponse.User,
	})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	h.clearSessionCookie(c)
	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyAuthLogoutSuccess), nil)
}

// GET /auth/check-auth
func (h *AuthHandler) CheckAuth(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyAuthAuthenticated), gin.H{
		"user": user,
	})
}

// GET /auth/verify-email/:token
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	user, err := h.authService.VerifyEmail(c.Param("token"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyAuthEmailVerified), gin.H{
		"user": user,
	})
}

// POST /auth/resend-verify-email
func (h *AuthHandler) ResendVerifyEmail(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.authService.ResendVerificationEmail(&req); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyAuthVerifyResent), nil)
}

// POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.authService.ChangePassword(userID, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyAuthPasswordChanged), nil)
}

// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.authService.ForgotPassword(&req); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyAuthForgotPassword), nil)
}

// POST /auth/reset-password/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	authResponse, err := h.authService.ResetPassword(c.Param("token"), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setSessionCookie(c, authResponse.AccessToken)
	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyAuthPasswordReset), gin.H{
		"user": authResponse.User,
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		h.cfg.JWT.CookieName,
		token,
		h.cfg.JWT.AccessTokenTTL*3600,
		"/",
		"",
		h.cfg.JWT.CookieSecure,
		true,
	)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cfg.JWT.CookieName, "", -1, "/", "", h.cfg.JWT.CookieSecure, true)
}
