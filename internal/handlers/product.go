// internal/handlers/product.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocommerce/shop-backend/internal/i18n"
	"github.com/gocommerce/shop-backend/internal/services"
	"github.com/gocommerce/shop-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GET /product
func (h *ProductHandler) ListProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	result, err := h.productService.ListProducts(parseProductFilters(c), utils.GetPaginationParams(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyProductFetched), result)
}

// GET /product/admin (admin)
func (h *ProductHandler) ListProductsForAdmin(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	filters := parseProductFilters(c)
	if published := c.Query("isPublished"); published != "" {
		value, err := strconv.ParseBool(published)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "isPublished"), nil)
			return
		}
		filters.IsPublished = &value
	}

	result, err := h.productService.ListProductsForAdmin(filters, utils.GetPaginationParams(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyProductFetched), result)
}

// GET /product/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "product id"), nil)
		return
	}

	product, svcErr := h.productService.GetProduct(productID)
	if svcErr != nil {
		utils.RespondError(c, svcErr)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyProductFetched), gin.H{"product": product})
}

// POST /product (admin)
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	product, err := h.productService.CreateProduct(userID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyProductCreated), gin.H{"product": product})
}

// PATCH /product/:id (admin)
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "product id"), nil)
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	product, svcErr := h.productService.UpdateProduct(productID, &req)
	if svcErr != nil {
		utils.RespondError(c, svcErr)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyProductUpdated), gin.H{"product": product})
}

// DELETE /product/:id (admin)
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "product id"), nil)
		return
	}

	if svcErr := h.productService.DeleteProduct(productID); svcErr != nil {
		utils.RespondError(c, svcErr)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyProductDeleted), nil)
}

func parseProductFilters(c *gin.Context) services.ProductFilters {
	filters := services.ProductFilters{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
	}
	if minPrice, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil && minPrice > 0 {
		filters.MinPrice = minPrice
	}
	if maxPrice, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil && maxPrice > 0 {
		filters.MaxPrice = maxPrice
	}
	return filters
}
