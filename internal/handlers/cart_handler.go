package handlers

import (
	"log"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the shopping cart. All routes need a
// session.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
}

// HandleGetCart returns the session user's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(middleware.UserID(c))
	if err != nil {
		log.Printf("Error getting cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not retrieve cart",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"cart":    cart,
	})
}

type cartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// HandleAddItem puts a product into the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "A product_id and positive quantity are required",
		})
	}

	cart, err := h.service.AddItem(middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return h.cartError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"cart":    cart,
	})
}

// HandleUpdateItem sets a product's quantity; zero removes it.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req struct {
		Quantity int `json:"quantity" validate:"gte=0"`
	}
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "A non-negative quantity is required",
		})
	}

	cart, err := h.service.UpdateItem(middleware.UserID(c), c.Params("productId"), req.Quantity)
	if err != nil {
		return h.cartError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"cart":    cart,
	})
}

// HandleRemoveItem takes a product out of the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(middleware.UserID(c), c.Params("productId"))
	if err != nil {
		return h.cartError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"cart":    cart,
	})
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.ClearCart(middleware.UserID(c)); err != nil {
		log.Printf("Error clearing cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not clear cart",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Cart cleared",
	})
}

func (h *CartHandler) cartError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"), strings.Contains(msg, "not in the cart"):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": msg,
		})
	case strings.Contains(msg, "insufficient stock"), strings.Contains(msg, "quantity"):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": msg,
		})
	default:
		log.Printf("Cart operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Cart operation failed",
		})
	}
}
