package handlers

import (
	"log"
	"strings"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SettingHandler exposes the read side of the content settings. Writes live
// on the admin panel routes.
type SettingHandler struct {
	service *services.SettingService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(service *services.SettingService) *SettingHandler {
	return &SettingHandler{
		service: service,
	}
}

// RegisterRoutes registers the public settings routes.
func (h *SettingHandler) RegisterRoutes(router fiber.Router) {
	settingRoutes := router.Group("/settings")
	settingRoutes.Get("/", h.HandleListSettings)
	settingRoutes.Get("/:key", h.HandleGetSetting)
}

// HandleListSettings returns every content setting as a key/value map for
// the storefront to render.
func (h *SettingHandler) HandleListSettings(c *fiber.Ctx) error {
	settings, err := h.service.ListSettings()
	if err != nil {
		log.Printf("Error listing settings: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not retrieve settings",
		})
	}
	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Key] = s.Value
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"settings": values,
	})
}

// HandleGetSetting returns one content setting by key.
func (h *SettingHandler) HandleGetSetting(c *fiber.Ctx) error {
	key := c.Params("key")
	setting, err := h.service.GetSetting(key)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
		log.Printf("Error retrieving setting %s: %v", key, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not retrieve setting",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"setting": setting,
	})
}
