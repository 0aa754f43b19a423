package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/crmkit/department-service/internal/service"
)

// SettingsHandler serves read-only projections of the settings document.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: settingsService}
}

// Get handles GET /settings.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.service.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(settings)
}

// GetLists handles GET /settings/lists.
func (h *SettingsHandler) GetLists(c *fiber.Ctx) error {
	settings, err := h.service.GetLists(c.UserContext())
	if err != nil {
		return err
	}
	lists := settings.Lists
	if lists == nil {
		lists = []bson.M{}
	}
	listsFields := settings.ListsFields
	if listsFields == nil {
		listsFields = []bson.M{}
	}
	return c.JSON(fiber.Map{
		"lists":       lists,
		"listsFields": listsFields,
	})
}

// GetListsFields handles GET /settings/lists/fields.
func (h *SettingsHandler) GetListsFields(c *fiber.Ctx) error {
	settings, err := h.service.GetLists(c.UserContext())
	if err != nil {
		return err
	}
	listsFields := settings.ListsFields
	if listsFields == nil {
		listsFields = []bson.M{}
	}
	return c.JSON(fiber.Map{"listsFields": listsFields})
}

// GetUsersRoles handles GET /settings/users/roles.
func (h *SettingsHandler) GetUsersRoles(c *fiber.Ctx) error {
	roles, err := h.service.GetUsersRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(roles)
}
