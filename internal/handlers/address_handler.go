package handlers

import (
	"log"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddressHandler handles the address-book routes. All routes need a session.
type AddressHandler struct {
	service  *services.AddressService
	validate *validator.Validate
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the address routes.
func (h *AddressHandler) RegisterRoutes(router fiber.Router) {
	addressRoutes := router.Group("/addresses")
	addressRoutes.Get("/", h.HandleListAddresses)
	addressRoutes.Post("/", h.HandleCreateAddress)
	addressRoutes.Put("/:id", h.HandleUpdateAddress)
	addressRoutes.Delete("/:id", h.HandleDeleteAddress)
}

// HandleListAddresses returns the session user's saved addresses.
func (h *AddressHandler) HandleListAddresses(c *fiber.Ctx) error {
	addresses, err := h.service.ListAddresses(middleware.UserID(c))
	if err != nil {
		log.Printf("Error listing addresses: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not retrieve addresses",
		})
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"addresses": addresses,
	})
}

// HandleCreateAddress saves a new address.
func (h *AddressHandler) HandleCreateAddress(c *fiber.Ctx) error {
	var address models.Address
	if err := c.BodyParser(&address); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	address.ID = ""
	if err := h.validate.Struct(address); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
		})
	}

	if err := h.service.CreateAddress(middleware.UserID(c), &address); err != nil {
		log.Printf("Error creating address: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not save address",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"address": address,
	})
}

// HandleUpdateAddress updates a saved address.
func (h *AddressHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	var address models.Address
	if err := c.BodyParser(&address); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	address.ID = c.Params("id")
	if err := h.validate.Struct(address); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
		})
	}

	if err := h.service.UpdateAddress(middleware.UserID(c), &address); err != nil {
		return h.addressError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"address": address,
	})
}

// HandleDeleteAddress removes a saved address.
func (h *AddressHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	if err := h.service.DeleteAddress(middleware.UserID(c), c.Params("id")); err != nil {
		return h.addressError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Address deleted",
	})
}

func (h *AddressHandler) addressError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": msg,
		})
	case strings.Contains(msg, "does not belong"):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": msg,
		})
	default:
		log.Printf("Address operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Address operation failed",
		})
	}
}
