package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/department-service/internal/api/dto"
	"github.com/crmkit/department-service/internal/auth"
	"github.com/crmkit/department-service/internal/service"
	apperrors "github.com/crmkit/department-service/pkg/util/errorutil"
)

// DepartmentsHandler exposes the department lifecycle endpoints. Every route
// is scoped to the authenticated caller's company.
type DepartmentsHandler struct {
	service *service.DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departmentService *service.DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{service: departmentService}
}

// List handles GET /departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	departments, err := h.service.FetchDepartments(c.UserContext(), principal.Scope)
	if err != nil {
		return err
	}
	return c.JSON(departments)
}

// Create handles POST /departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	dept, err := h.service.Create(c.UserContext(), principal.Scope, actorOf(principal))
	if err != nil {
		return err
	}
	return c.JSON(dto.CreateDepartmentResponse{Item: *dept})
}

// Rename handles PUT /departments/rename/:departmentId.
func (h *DepartmentsHandler) Rename(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RenameDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.Rename(c.UserContext(), principal.Scope, actorOf(principal), c.Params("departmentId"), req.Name); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "department updated"})
}

// Delete handles DELETE /departments/:departmentId.
func (h *DepartmentsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Delete(c.UserContext(), principal.Scope, actorOf(principal), c.Params("departmentId")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "department deleted"})
}

// ListUsers handles GET /departments/:departmentId/users.
func (h *DepartmentsHandler) ListUsers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	users, err := h.service.ListDepartmentUsers(c.UserContext(), principal.Scope, c.Params("departmentId"))
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// ListFreeUsers handles GET /departments/freeusers.
func (h *DepartmentsHandler) ListFreeUsers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	users, err := h.service.ListFreeUsers(c.UserContext(), principal.Scope)
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// AssignUser handles PUT /departments/:departmentId/:userId.
func (h *DepartmentsHandler) AssignUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.AssignUser(c.UserContext(), principal.Scope, actorOf(principal), c.Params("departmentId"), c.Params("userId"), req.Name); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "user department updated"})
}

// UnassignUser handles DELETE /departments/:departmentId/:userId.
func (h *DepartmentsHandler) UnassignUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.UnassignUser(c.UserContext(), principal.Scope, actorOf(principal), c.Params("departmentId"), c.Params("userId")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "user department updated"})
}

func actorOf(principal *auth.Principal) service.Actor {
	return service.Actor{UserID: principal.User.ID, Name: principal.User.Name}
}
