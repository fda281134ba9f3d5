package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"storefront/internal/models"
)

// Webhook failure modes. Signature problems and missing configuration are
// permanent; a provider retry with the same payload can never succeed.
var (
	ErrWebhookSecretNotSet = errors.New("webhook secret is not configured")
	ErrMissingSignature    = errors.New("missing webhook signature")
	ErrSignatureMismatch   = errors.New("webhook signature mismatch")
	ErrMissingOrderID      = errors.New("missing order_id in webhook notes")
)

// handledWebhookEvents is the explicit allow-list of provider events that
// drive the payment-success path. Anything else is acknowledged and logged,
// never silently dropped.
var handledWebhookEvents = map[string]struct{}{
	"payment.captured": {},
	"order.paid":       {},
}

// PaymentService verifies inbound payment-provider webhooks and routes
// recognized events to the order payment-success handler.
type PaymentService struct {
	orders        *OrderService
	webhookSecret string
	provider      string
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(orders *OrderService, webhookSecret string) *PaymentService {
	return &PaymentService{
		orders:        orders,
		webhookSecret: webhookSecret,
		provider:      "razorpay",
	}
}

// VerifySignature checks the hex HMAC-SHA256 of the raw body against the
// signature header. It must run over the exact bytes received, before any
// JSON parsing.
func (s *PaymentService) VerifySignature(rawBody []byte, signature string) error {
	if s.webhookSecret == "" {
		return ErrWebhookSecretNotSet
	}
	if signature == "" {
		return ErrMissingSignature
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

// webhookEvent mirrors the slice of the provider's event schema we read.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string            `json:"id"`
				Status  string            `json:"status"`
				Method  string            `json:"method"`
				Contact string            `json:"contact"`
				Notes   map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID    string            `json:"id"`
				Notes map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// HandleEvent parses an already-verified webhook body and, for allow-listed
// events, invokes the payment-success handler. handled reports whether the
// event was acted on; an unrecognized event returns (false, nil) so the
// handler can acknowledge it.
func (s *PaymentService) HandleEvent(rawBody []byte) (handled bool, err error) {
	var event webhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return false, fmt.Errorf("failed to parse webhook body: %w", err)
	}

	if _, ok := handledWebhookEvents[event.Event]; !ok {
		log.Printf("Ignoring webhook event %q from %s", event.Event, s.provider)
		return false, nil
	}

	// The order ID is a caller contract: it must have been set in the notes
	// when the payment intent was created.
	orderID := event.Payload.Payment.Entity.Notes["order_id"]
	if orderID == "" {
		orderID = event.Payload.Order.Entity.Notes["order_id"]
	}
	if orderID == "" {
		return false, ErrMissingOrderID
	}

	result := models.PaymentResult{
		Provider:  s.provider,
		PaymentID: event.Payload.Payment.Entity.ID,
		Status:    event.Payload.Payment.Entity.Status,
		Method:    event.Payload.Payment.Entity.Method,
		Contact:   event.Payload.Payment.Entity.Contact,
	}

	if err := s.orders.MarkOrderPaid(orderID, result); err != nil {
		return false, fmt.Errorf("payment handler failed for order %s: %w", orderID, err)
	}
	return true, nil
}
