// internal/models/order.go
package models

import (
	"github.com/google/uuid"
)

// Order is one checkout attempt. TotalAmount stays zero until the gateway
// reports the settled amount; Status/PaymentStatus start PENDING/PENDING and
// are mutated only by the webhook handler or an admin override.
type Order struct {
	BaseModel
	UserID            uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index:idx_orders_user_created,priority:1"`
	ShippingAddressID uuid.UUID     `json:"shipping_address_id" gorm:"type:uuid;not null"`
	TotalAmount       float64       `json:"total_amount" gorm:"type:decimal(10,2);default:0"`
	Status            OrderStatus   `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	PaymentStatus     PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'PENDING';index"`
	CheckoutSessionID string        `json:"checkout_session_id,omitempty" gorm:"size:255"`

	// Relationships
	User            User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ShippingAddress ShippingAddress `json:"shipping_address,omitempty" gorm:"foreignKey:ShippingAddressID"`
	LineItems       []LineItem      `json:"line_items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// LineItem snapshots product id and quantity at order creation. Price is not
// copied; the authoritative amount lives on Order.TotalAmount once paid.
type LineItem struct {
	BaseModel
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
