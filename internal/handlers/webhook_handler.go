package handlers

import (
	"errors"
	"log"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives payment-provider webhooks. It is mounted outside
// the authenticated groups; the HMAC signature is the only credential.
type WebhookHandler struct {
	payments *services.PaymentService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(payments *services.PaymentService) *WebhookHandler {
	return &WebhookHandler{
		payments: payments,
	}
}

// RegisterRoutes registers the webhook routes.
func (h *WebhookHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/webhook/razorpay", h.HandleRazorpayWebhook)
}

// HandleRazorpayWebhook verifies the signature over the raw body, then
// dispatches the event. Signature and configuration failures are permanent;
// handler failures return 500 so the provider's retry redelivers.
func (h *WebhookHandler) HandleRazorpayWebhook(c *fiber.Ctx) error {
	rawBody := c.Body()
	signature := c.Get("x-razorpay-signature")

	if err := h.payments.VerifySignature(rawBody, signature); err != nil {
		switch {
		case errors.Is(err, services.ErrWebhookSecretNotSet):
			log.Printf("Webhook rejected: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Webhook is not configured",
			})
		default:
			log.Printf("Webhook signature verification failed: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid signature",
			})
		}
	}

	handled, err := h.payments.HandleEvent(rawBody)
	if err != nil {
		if errors.Is(err, services.ErrMissingOrderID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "missing order_id",
			})
		}
		// 500 on handler failure so the provider redelivers; that retry loop
		// is the only retry mechanism in the system.
		log.Printf("Webhook handler failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Payment handler failed",
		})
	}

	if !handled {
		// Unrecognized events are acknowledged so the provider stops
		// retrying them; HandleEvent already logged the event name.
		return c.JSON(fiber.Map{"status": "ok"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
