// internal/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gocommerce/shop-backend/internal/apperrors"
	"github.com/gocommerce/shop-backend/internal/i18n"
	"github.com/gocommerce/shop-backend/internal/models"
	"github.com/gocommerce/shop-backend/internal/services"
	"github.com/gocommerce/shop-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
	gateway      services.CheckoutGateway
}

func NewOrderHandler(orderService *services.OrderService, gateway services.CheckoutGateway) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		gateway:      gateway,
	}
}

// POST /order/checkout/create-checkout-session
func (h *OrderHandler) CreateCheckoutSession(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	var req services.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	checkout, err := h.orderService.CreateCheckoutSession(userID, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyOrderCheckoutCreated), checkout)
}

// POST /order/checkout/webhook
//
// The gateway signs the exact payload bytes, so the body must be read raw;
// any re-serialization would break verification. Unverifiable requests get
// 400 so the gateway retries; events for unknown orders are acknowledged
// with 200 and logged, retrying cannot fix those.
func (h *OrderHandler) HandleWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	event, err := h.gateway.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		logrus.WithError(err).Warn("Rejected unverifiable payment webhook")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if err := h.orderService.ApplyPaymentEvent(event); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) || apperrors.Is(err, apperrors.KindValidation) {
			logrus.WithError(err).WithField("event_type", event.Type).
				Warn("Payment event did not match an order")
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		logrus.WithError(err).Error("Failed to apply payment event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GET /order (admin)
func (h *OrderHandler) ListOrders(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	filters := services.OrderFilters{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
	}

	result, err := h.orderService.ListOrders(filters, utils.GetPaginationParams(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyOrderFetched), result)
}

// GET /order/me
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	result, err := h.orderService.ListUserOrders(userID, utils.GetCursorParams(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyOrderFetched), result)
}

// GET /order/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "order id"), nil)
		return
	}

	callerID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}
	role, _ := utils.GetUserRoleFromContext(c)

	order, svcErr := h.orderService.GetOrder(orderID, callerID, role == string(models.RoleAdmin))
	if svcErr != nil {
		utils.RespondError(c, svcErr)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyOrderFetched), gin.H{"order": order})
}

// PATCH /order/:id (admin)
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "order id"), nil)
		return
	}

	var req services.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, svcErr := h.orderService.UpdateOrder(orderID, &req)
	if svcErr != nil {
		utils.RespondError(c, svcErr)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyOrderUpdated), gin.H{"order": order})
}

// DELETE /order/:id (admin)
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "order id"), nil)
		return
	}

	if svcErr := h.orderService.DeleteOrder(orderID); svcErr != nil {
		utils.RespondError(c, svcErr)
		return
	}

	utils.SuccessResponse(c, i18n.T(lang, i18n.KeyOrderDeleted), nil)
}
