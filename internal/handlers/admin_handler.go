package handlers

import (
	"errors"
	"log"
	"strings"

	"storefront/internal/legacy"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the staff-facing panel routes: order management,
// manifests and content settings. The whole group sits behind the staff
// middleware.
type AdminHandler struct {
	orders   *services.OrderService
	shipping *services.ShippingService
	settings *services.SettingService
	validate *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(orders *services.OrderService, shipping *services.ShippingService, settings *services.SettingService) *AdminHandler {
	return &AdminHandler{
		orders:   orders,
		shipping: shipping,
		settings: settings,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the admin routes.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Patch("/:id/update-status", h.HandleUpdateItemStatus)
	orderRoutes.Post("/:id/manifest", h.HandleCreateManifest)

	settingRoutes := router.Group("/settings")
	settingRoutes.Put("/:key", h.HandlePutSetting)
	settingRoutes.Delete("/:key", h.HandleDeleteSetting)
}

// HandleListOrders lists every order in the admin-normalized legacy shape.
func (h *AdminHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.orders.GetAllOrders()
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not retrieve orders",
		})
	}
	views := make([]legacy.LegacyOrder, 0, len(orders))
	for _, o := range orders {
		views = append(views, legacy.AdminView(o))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"orders":  views,
	})
}

// HandleGetOrder retrieves one order in the admin-normalized legacy shape.
func (h *AdminHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetOrderByID(c.Params("id"))
	if err != nil {
		return h.adminError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"order":   legacy.AdminView(*order),
	})
}

type updateStatusRequest struct {
	Status    string `json:"status" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
}

// HandleUpdateItemStatus sets a single item's status. The status may arrive
// in either vocabulary; it is coerced to the canonical admin form before the
// update, so the mixed-casing drift of the old panel cannot recur.
func (h *AdminHandler) HandleUpdateItemStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "A status and productId are required",
		})
	}

	status := req.Status
	if models.IsWebsiteStatus(status) {
		status = models.MapWebsiteStatusToAdmin(status)
	}

	order, err := h.orders.UpdateItemStatus(c.Params("id"), req.ProductID, status)
	if err != nil {
		if strings.Contains(err.Error(), "invalid item status") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
		return h.adminError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"orderId": order.ID,
		"status":  models.MapWebsiteStatusToAdmin(order.Status),
		"order":   legacy.AdminView(*order),
	})
}

// HandleCreateManifest asks the delivery partner for a label and tracking
// number.
func (h *AdminHandler) HandleCreateManifest(c *fiber.Ctx) error {
	order, err := h.shipping.CreateManifest(c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return h.adminError(c, err)
		}
		log.Printf("Manifest creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Delivery partner is unreachable, please retry",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"manifestId":     order.ManifestID,
		"trackingNumber": order.TrackingNumber,
		"order":          legacy.AdminView(*order),
	})
}

// HandlePutSetting creates or replaces a content setting.
func (h *AdminHandler) HandlePutSetting(c *fiber.Ctx) error {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	setting := models.Setting{Key: c.Params("key"), Value: req.Value}
	if err := h.settings.PutSetting(&setting); err != nil {
		log.Printf("Error saving setting %s: %v", setting.Key, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not save setting",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"setting": setting,
	})
}

// HandleDeleteSetting removes a content setting.
func (h *AdminHandler) HandleDeleteSetting(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := h.settings.DeleteSetting(key); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
		log.Printf("Error deleting setting %s: %v", key, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not delete setting",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Setting deleted",
	})
}

func (h *AdminHandler) adminError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrOrderNotFound), errors.Is(err, services.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	default:
		log.Printf("Admin operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Operation failed",
		})
	}
}
