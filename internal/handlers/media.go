// internal/handlers/media.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocommerce/shop-backend/internal/i18n"
	"github.com/gocommerce/shop-backend/internal/services"
	"github.com/gocommerce/shop-backend/internal/utils"
)

type MediaHandler struct {
	mediaService *services.MediaService
}

func NewMediaHandler(mediaService *services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// POST /product/:id/media (admin, multipart field "photos")
func (h *MediaHandler) AddMedia(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "product id"), nil)
		return
	}

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "multipart form"), err.Error())
		return
	}
	files := form.File["photos"]

	media, svcErr := h.mediaService.AddMedia(productID, userID, files)
	if svcErr != nil {
		utils.RespondError(c, svcErr)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyMediaAdded), gin.H{"media": media})
}

// DELETE /product/:id/media/:mediaId (admin)
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	productID, mediaID, ok := parseMediaParams(c, lang)
	if !ok {
		return
	}

	if err := h.mediaService.DeleteMedia(productID, mediaID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyMediaDeleted), nil)
}

// PATCH /product/:id/media/:mediaId/default (admin)
func (h *MediaHandler) SetDefaultMedia(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	productID, mediaID, ok := parseMediaParams(c, lang)
	if !ok {
		return
	}

	media, err := h.mediaService.SetDefaultMedia(productID, mediaID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyMediaDefaultSet), gin.H{"media": media})
}

func parseMediaParams(c *gin.Context, lang string) (uuid.UUID, uuid.UUID, bool) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "product id"), nil)
		return uuid.Nil, uuid.Nil, false
	}
	mediaID, err := uuid.Parse(c.Param("mediaId"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "media id"), nil)
		return uuid.Nil, uuid.Nil, false
	}
	return productID, mediaID, true
}
