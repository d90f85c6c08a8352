// internal/services/payment_gateway.go
package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/gocommerce/shop-backend/internal/config"
)

// CheckoutLine is one price/quantity entry of a hosted checkout session.
// UnitAmount is in minor currency units (cents).
type CheckoutLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type CheckoutSessionRequest struct {
	OrderID       uuid.UUID
	CustomerEmail string
	Lines         []CheckoutLine
}

type CheckoutSessionResult struct {
	SessionID string
	URL       string
}

type PaymentEventType string

const (
	PaymentEventCompleted PaymentEventType = "checkout.session.completed"
	PaymentEventFailed    PaymentEventType = "payment_intent.payment_failed"
	PaymentEventIgnored   PaymentEventType = "ignored"
)

// PaymentEvent is a gateway notification reduced to what the order service
// needs. OrderID is empty when the event carries no order correlation.
type PaymentEvent struct {
	Type        PaymentEventType
	OrderID     string
	AmountTotal int64 // minor currency units
}

// CheckoutGateway is the boundary to the hosted-checkout provider. The order
// service depends on this interface only, never on provider types.
type CheckoutGateway interface {
	CreateCheckoutSession(req *CheckoutSessionRequest) (*CheckoutSessionResult, error)
	VerifyEvent(payload []byte, signature string) (*PaymentEvent, error)
}

const orderIDMetadataKey = "order_id"

type stripeGateway struct {
	config *config.Config
}

func NewStripeGateway(config *config.Config) CheckoutGateway {
	stripe.Key = config.Payment.StripeSecretKey
	return &stripeGateway{config: config}
}

func (g *stripeGateway) CreateCheckoutSession(req *CheckoutSessionRequest) (*CheckoutSessionResult, error) {
	currency := g.config.Payment.Currency

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Lines))
	for _, line := range req.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		CustomerEmail: stripe.String(req.CustomerEmail),
		LineItems:     lineItems,
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
					DisplayName: stripe.String("Delivery"),
					Type:        stripe.String("fixed_amount"),
					FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripe.Int64(int64(g.config.Payment.ShippingFee * 100)),
						Currency: stripe.String(currency),
					},
				},
			},
		},
		// Metadata on the payment intent, too, so failed-payment events can
		// be correlated back to the order.
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{},
		SuccessURL:        stripe.String(g.config.Frontend.BaseURL + "/order-status?success=true"),
		CancelURL:         stripe.String(g.config.Frontend.BaseURL + "/cart?canceled=true"),
	}
	params.AddMetadata(orderIDMetadataKey, req.OrderID.String())
	params.PaymentIntentData.Metadata = map[string]string{
		orderIDMetadataKey: req.OrderID.String(),
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSessionResult{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

// VerifyEvent checks the webhook signature against the raw payload bytes and
// reduces the event to a PaymentEvent. Unverifiable payloads return an error
// and must not be interpreted.
func (g *stripeGateway) VerifyEvent(payload []byte, signature string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.config.Payment.StripeWebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("failed to parse checkout session event: %w", err)
		}
		return &PaymentEvent{
			Type:        PaymentEventCompleted,
			OrderID:     sess.Metadata[orderIDMetadataKey],
			AmountTotal: sess.AmountTotal,
		}, nil

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("failed to parse payment intent event: %w", err)
		}
		return &PaymentEvent{
			Type:    PaymentEventFailed,
			OrderID: intent.Metadata[orderIDMetadataKey],
		}, nil

	default:
		return &PaymentEvent{Type: PaymentEventIgnored}, nil
	}
}
