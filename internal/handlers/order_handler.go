package handlers

import (
	"errors"
	"log"
	"strings"

	"storefront/internal/legacy"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles the customer-facing order routes: checkout, history,
// cancellation and the COD verification flow. All routes need a session.
type OrderHandler struct {
	orders   *services.OrderService
	cod      *services.CODService
	shipping *services.ShippingService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *services.OrderService, cod *services.CODService, shipping *services.ShippingService) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		cod:      cod,
		shipping: shipping,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/track", h.HandleTrackOrder)
	orderRoutes.Post("/verify-cod", h.HandleVerifyCOD)
	orderRoutes.Post("/resend-cod-verification", h.HandleResendCODVerification)
	orderRoutes.Post("/cancel-order", h.HandleCancelOrder)
	orderRoutes.Post("/item/cancel", h.HandleCancelItem)
	orderRoutes.Post("/item/cancel-request", h.HandleCancelRequest)
}

type checkoutRequest struct {
	AddressID       string `json:"address_id" validate:"required"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=online cod"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// HandleCheckout places an order from the session user's cart. Online
// payments create the order immediately and wait for the webhook; COD starts
// the code-verification flow instead.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "An address_id and payment_method (online or cod) are required",
		})
	}
	userID := middleware.UserID(c)

	if req.PaymentMethod == models.PaymentMethodCOD {
		pendingID, err := h.cod.StartCheckout(c.Context(), userID, req.AddressID)
		if err != nil {
			return h.orderError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"success":          true,
			"message":          "Verification code sent to your email",
			"pending_order_id": pendingID,
		})
	}

	order, err := h.orders.Checkout(userID, req.AddressID, req.PaymentIntentID)
	if err != nil {
		return h.orderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"order":   legacy.FromOrder(*order),
	})
}

// HandleGetMyOrders lists the session user's orders in the legacy shape.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.orders.GetOrdersForUser(middleware.UserID(c))
	if err != nil {
		log.Printf("Error getting orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not retrieve orders",
		})
	}
	views := make([]legacy.LegacyOrder, 0, len(orders))
	for _, o := range orders {
		views = append(views, legacy.FromOrder(o))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"orders":  views,
	})
}

// HandleGetOrderByID retrieves one of the session user's orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.orders.GetOrderByID(c.Params("id"))
	if err != nil {
		return h.orderError(c, err)
	}
	if order.UserID != middleware.UserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "This order belongs to another user",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"order":   legacy.FromOrder(*order),
	})
}

// HandleTrackOrder refreshes carrier tracking for one of the user's orders.
func (h *OrderHandler) HandleTrackOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetOrderByID(c.Params("id"))
	if err != nil {
		return h.orderError(c, err)
	}
	if order.UserID != middleware.UserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "This order belongs to another user",
		})
	}

	updated, err := h.shipping.RefreshTracking(order.ID)
	if err != nil {
		log.Printf("Tracking refresh failed for order %s: %v", order.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Delivery partner is unreachable, please retry",
		})
	}
	return c.JSON(fiber.Map{
		"success":         true,
		"tracking_number": updated.TrackingNumber,
		"delivery_status": updated.DeliveryStatus,
		"order":           legacy.FromOrder(*updated),
	})
}

type codVerifyRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Code    string `json:"code" validate:"required,len=6,numeric"`
}

// HandleVerifyCOD checks the emailed code and promotes the pending COD
// checkout into a real order.
func (h *OrderHandler) HandleVerifyCOD(c *fiber.Ctx) error {
	var req codVerifyRequest
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "An orderId and 6-digit code are required",
		})
	}

	order, err := h.cod.VerifyCode(c.Context(), req.OrderID, req.Code)
	if err != nil {
		if errors.Is(err, services.ErrCODVerificationFailed) {
			// Generic on purpose: wrong and expired look identical.
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Verification failed",
			})
		}
		return h.orderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order confirmed",
		"order":   legacy.FromOrder(*order),
	})
}

// HandleResendCODVerification regenerates and resends the COD code.
func (h *OrderHandler) HandleResendCODVerification(c *fiber.Ctx) error {
	var req struct {
		OrderID string `json:"orderId" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "An orderId is required",
		})
	}

	if err := h.cod.ResendCode(c.Context(), req.OrderID); err != nil {
		if errors.Is(err, services.ErrPendingOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "No pending order to verify",
			})
		}
		log.Printf("Error resending COD code for %s: %v", req.OrderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not resend verification code",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Verification code resent",
	})
}

type orderActionRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	ItemID  string `json:"itemId"`
	Reason  string `json:"reason"`
}

// HandleCancelOrder cancels a whole order while every item is still in a
// pre-dispatch state.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	var req orderActionRequest
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "An orderId is required",
		})
	}

	order, err := h.orders.CancelOrder(req.OrderID, middleware.UserID(c))
	if err != nil {
		return h.orderError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order cancelled",
		"order":   legacy.FromOrder(*order),
	})
}

// HandleCancelItem cancels a single still-cancellable item.
func (h *OrderHandler) HandleCancelItem(c *fiber.Ctx) error {
	var req orderActionRequest
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil || req.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "An orderId and itemId are required",
		})
	}

	order, err := h.orders.CancelItem(req.OrderID, req.ItemID, middleware.UserID(c))
	if err != nil {
		return h.orderError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Item cancelled",
		"order":   legacy.FromOrder(*order),
	})
}

// HandleCancelRequest flags an item for admin review.
func (h *OrderHandler) HandleCancelRequest(c *fiber.Ctx) error {
	var req orderActionRequest
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil || req.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "An orderId and itemId are required",
		})
	}

	order, err := h.orders.RequestItemCancel(req.OrderID, req.ItemID, middleware.UserID(c), req.Reason)
	if err != nil {
		return h.orderError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Cancellation request submitted",
		"order":   legacy.FromOrder(*order),
	})
}

// orderError maps service errors onto the response taxonomy.
func (h *OrderHandler) orderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrOrderNotFound), errors.Is(err, services.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "This order belongs to another user",
		})
	case errors.Is(err, services.ErrNotCancellable), errors.Is(err, services.ErrEmptyCart),
		strings.Contains(err.Error(), "insufficient stock"),
		strings.Contains(err.Error(), "address"):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	default:
		log.Printf("Order operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Order operation failed",
		})
	}
}
