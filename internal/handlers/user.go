// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocommerce/shop-backend/internal/i18n"
	"github.com/gocommerce/shop-backend/internal/models"
	"github.com/gocommerce/shop-backend/internal/services"
	"github.com/gocommerce/shop-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /user (admin)
func (h *UserHandler) ListUsers(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	params := utils.GetPaginationParams(c)
	result, err := h.userService.ListUsers(params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyUserFetched), result)
}

// GET /user/me
func (h *UserHandler) GetMe(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyUserFetched), gin.H{"user": user})
}

// GET /user/:id (admin)
func (h *UserHandler) GetUser(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "user id"), nil)
		return
	}

	user, svcErr := h.userService.GetUser(userID)
	if svcErr != nil {
		utils.RespondError(c, svcErr)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyUserFetched), gin.H{"user": user})
}

// PATCH /user/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "user id"), nil)
		return
	}

	callerID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}
	role, _ := utils.GetUserRoleFromContext(c)
	isAdmin := role == string(models.RoleAdmin)

	if !isAdmin && callerID != targetID {
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAdminAccessDenied))
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	user, svcErr := h.userService.UpdateUser(targetID, &req, isAdmin)
	if svcErr != nil {
		utils.RespondError(c, svcErr)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyUserUpdated), gin.H{"user": user})
}

// DELETE /user/:id (admin)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "user id"), nil)
		return
	}

	if svcErr := h.userService.DeleteUser(targetID); svcErr != nil {
		utils.RespondError(c, svcErr)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyUserDeleted), nil)
}

// POST /user/me/shipping-address
func (h *UserHandler) SetShippingAddress(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	var req services.ShippingAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	address, err := h.userService.SetShippingAddress(userID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyUserAddressSet), gin.H{
		"shipping_address": address,
	})
}

// DELETE /user/me/shipping-address
func (h *UserHandler) DeleteShippingAddress(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	if err := h.userService.DeleteShippingAddress(userID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyUserAddressDeleted), nil)
}
