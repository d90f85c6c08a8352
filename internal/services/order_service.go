// internal/services/order_service.go
package services

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gocommerce/shop-backend/internal/apperrors"
	"github.com/gocommerce/shop-backend/internal/database"
	"github.com/gocommerce/shop-backend/internal/models"
	"github.com/gocommerce/shop-backend/internal/utils"
)

type OrderService struct {
	db      *gorm.DB
	gateway CheckoutGateway
}

type CheckoutItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=100"`
}

type CreateCheckoutRequest struct {
	Items []CheckoutItem `json:"items" validate:"required,min=1,max=50,dive"`
}

type CheckoutResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	SessionID   string    `json:"session_id"`
	CheckoutURL string    `json:"checkout_url"`
}

// OrderFilters narrows the admin order listing. Empty strings mean no filter.
type OrderFilters struct {
	Status        string
	PaymentStatus string
}

type OrderListResult struct {
	Orders []models.Order   `json:"orders"`
	Paging utils.PagingInfo `json:"paging"`
}

type UserOrderListResult struct {
	Orders []models.Order   `json:"orders"`
	Paging utils.CursorInfo `json:"paging"`
}

type UpdateOrderRequest struct {
	Status        *models.OrderStatus   `json:"status,omitempty"`
	PaymentStatus *models.PaymentStatus `json:"payment_status,omitempty"`
}

func NewOrderService(db *gorm.DB, gateway CheckoutGateway) *OrderService {
	return &OrderService{db: db, gateway: gateway}
}

// CreateCheckoutSession records a PENDING order and opens a hosted checkout
// session for it. Prices come from the live catalog at call time, never from
// the client. If the gateway call fails after the order was written, the
// PENDING order is left behind; it never becomes payable because no session
// references it.
func (s *OrderService) CreateCheckoutSession(userID uuid.UUID, req *CreateCheckoutRequest) (*CheckoutResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed", utils.GetValidationErrors(err))
	}

	var user models.User
	if err := s.db.Preload("ShippingAddress").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("database error", err)
	}
	if user.ShippingAddress == nil {
		return nil, apperrors.Validation("a shipping address is required before checkout", nil)
	}

	productIDs := make([]uuid.UUID, 0, len(req.Items))
	quantities := make(map[uuid.UUID]int, len(req.Items))
	for _, item := range req.Items {
		if _, seen := quantities[item.ProductID]; seen {
			return nil, apperrors.Validation("duplicate product in checkout items", nil)
		}
		productIDs = append(productIDs, item.ProductID)
		quantities[item.ProductID] = item.Quantity
	}

	var products []models.Product
	if err := s.db.Where("id IN ? AND is_published = ?", productIDs, true).Find(&products).Error; err != nil {
		return nil, apperrors.Internal("failed to load products", err)
	}
	if len(products) != len(productIDs) {
		return nil, apperrors.NotFound("one or more products are unavailable")
	}

	lines := make([]CheckoutLine, 0, len(products))
	for _, product := range products {
		lines = append(lines, CheckoutLine{
			Name:       product.Name,
			UnitAmount: int64(math.Round(product.Price * 100)),
			Quantity:   int64(quantities[product.ID]),
		})
	}

	order := &models.Order{
		UserID:            userID,
		ShippingAddressID: user.ShippingAddress.ID,
		Status:            models.OrderStatusPending,
		PaymentStatus:     models.PaymentStatusPending,
	}
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, product := range products {
			lineItem := models.LineItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  quantities[product.ID],
			}
			if err := tx.Create(&lineItem).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal("failed to create order", err)
	}

	session, err := s.gateway.CreateCheckoutSession(&CheckoutSessionRequest{
		OrderID:       order.ID,
		CustomerEmail: user.Email,
		Lines:         lines,
	})
	if err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).
			Error("Checkout session creation failed, order left pending")
		return nil, apperrors.Integration("failed to create checkout session", err)
	}
	if session.URL == "" {
		logrus.WithField("order_id", order.ID).
			Error("Checkout session has no redirect URL, order left pending")
		return nil, apperrors.Integration("checkout session has no redirect URL", nil)
	}

	if err := s.db.Model(order).Update("checkout_session_id", session.SessionID).Error; err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).
			Warn("Failed to record checkout session id")
	}

	return &CheckoutResponse{
		OrderID:     order.ID,
		SessionID:   session.SessionID,
		CheckoutURL: session.URL,
	}, nil
}

// ApplyPaymentEvent reconciles one verified gateway event with the order it
// references. Processing is idempotent and payment status moves one way:
// once PAID an order never regresses to FAILED, and replayed completion
// events change nothing.
func (s *OrderService) ApplyPaymentEvent(event *PaymentEvent) error {
	if event.Type == PaymentEventIgnored {
		return nil
	}
	if event.OrderID == "" {
		logrus.WithField("event_type", event.Type).
			Warn("Payment event without order reference, skipping")
		return nil
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return apperrors.Validation("malformed order reference in payment event", nil)
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("order not found")
			}
			return err
		}

		switch event.Type {
		case PaymentEventCompleted:
			if order.PaymentStatus == models.PaymentStatusPaid {
				return nil // replayed event
			}
			updates := map[string]interface{}{
				"total_amount":   float64(event.AmountTotal) / 100,
				"payment_status": models.PaymentStatusPaid,
			}
			if order.Status == models.OrderStatusPending {
				updates["status"] = models.OrderStatusPaid
			}
			return tx.Model(&order).Updates(updates).Error

		case PaymentEventFailed:
			if order.PaymentStatus == models.PaymentStatusPaid {
				logrus.WithField("order_id", order.ID).
					Warn("Ignoring failure event for already paid order")
				return nil
			}
			return tx.Model(&order).Update("payment_status", models.PaymentStatusFailed).Error
		}

		return nil
	})
}

func (s *OrderService) ListOrders(filters OrderFilters, params utils.PaginationParams) (*OrderListResult, error) {
	query := s.db.Model(&models.Order{})

	if filters.Status != "" {
		if !models.OrderStatus(filters.Status).Valid() {
			return nil, apperrors.Validation("invalid order status filter", nil)
		}
		query = query.Where("orders.status = ?", filters.Status)
	}
	if filters.PaymentStatus != "" {
		if !models.PaymentStatus(filters.PaymentStatus).Valid() {
			return nil, apperrors.Validation("invalid payment status filter", nil)
		}
		query = query.Where("orders.payment_status = ?", filters.PaymentStatus)
	}
	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Joins("JOIN users ON users.id = orders.user_id").
			Where("users.email ILIKE ? OR users.name ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Internal("failed to count orders", err)
	}

	var orders []models.Order
	query = utils.ApplySort(query, params, []string{"created_at", "total_amount", "status"})
	if err := utils.ApplyPagination(query, params).
		Preload("User").
		Preload("ShippingAddress").
		Preload("LineItems.Product").
		Find(&orders).Error; err != nil {
		return nil, apperrors.Internal("failed to list orders", err)
	}

	return &OrderListResult{
		Orders: orders,
		Paging: utils.NewPagingInfo(total, params),
	}, nil
}

// ListUserOrders pages through the caller's order history with a keyset on
// (created_at DESC, id DESC). The cursor is the id of the last order of the
// previous page; one extra row is fetched to decide whether a next page
// exists.
func (s *OrderService) ListUserOrders(userID uuid.UUID, params utils.CursorParams) (*UserOrderListResult, error) {
	query := s.db.Where("user_id = ?", userID)

	if params.Cursor != "" {
		cursorID, err := uuid.Parse(params.Cursor)
		if err != nil {
			return nil, apperrors.Validation("invalid cursor", nil)
		}
		var anchor models.Order
		if err := s.db.Select("created_at", "id").
			First(&anchor, "id = ? AND user_id = ?", cursorID, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Validation("invalid cursor", nil)
			}
			return nil, apperrors.Internal("database error", err)
		}
		query = query.Where("(created_at, id) < (?, ?)", anchor.CreatedAt, anchor.ID)
	}

	var orders []models.Order
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(params.PageSize + 1).
		Preload("ShippingAddress").
		Preload("LineItems.Product").
		Find(&orders).Error; err != nil {
		return nil, apperrors.Internal("failed to list orders", err)
	}

	paging := utils.CursorInfo{PageSize: params.PageSize}
	if len(orders) > params.PageSize {
		orders = orders[:params.PageSize]
		next := orders[len(orders)-1].ID.String()
		paging.NextCursor = &next
	}

	return &UserOrderListResult{Orders: orders, Paging: paging}, nil
}

func (s *OrderService) GetOrder(orderID, callerID uuid.UUID, callerIsAdmin bool) (*models.Order, error) {
	var order models.Order
	if err := s.db.
		Preload("User").
		Preload("ShippingAddress").
		Preload("LineItems.Product").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.Internal("database error", err)
	}

	if !callerIsAdmin && order.UserID != callerID {
		// Hide the order's existence from other users.
		return nil, apperrors.NotFound("order not found")
	}

	return &order, nil
}

// UpdateOrder is the admin override for fulfilment state. It accepts any
// valid status pair; the monotonic payment rule binds the webhook path, not
// deliberate operator action.
func (s *OrderService) UpdateOrder(orderID uuid.UUID, req *UpdateOrderRequest) (*models.Order, error) {
	if req.Status == nil && req.PaymentStatus == nil {
		return nil, apperrors.Validation("no fields to update", nil)
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.Validation("invalid order status", nil)
		}
		updates["status"] = *req.Status
	}
	if req.PaymentStatus != nil {
		if !req.PaymentStatus.Valid() {
			return nil, apperrors.Validation("invalid payment status", nil)
		}
		updates["payment_status"] = *req.PaymentStatus
	}

	result := s.db.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates)
	if result.Error != nil {
		return nil, apperrors.Internal("failed to update order", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("order not found")
	}

	var order models.Order
	if err := s.db.
		Preload("User").
		Preload("ShippingAddress").
		Preload("LineItems.Product").
		First(&order, "id = ?", orderID).Error; err != nil {
		return nil, apperrors.Internal("database error", err)
	}
	return &order, nil
}

func (s *OrderService) DeleteOrder(orderID uuid.UUID) error {
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Order{}, "id = ?", orderID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("order not found")
		}
		return nil
	})
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return err
		}
		return apperrors.Internal("failed to delete order", err)
	}
	return nil
}
