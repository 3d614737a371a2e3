package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skilltracker/skilltracker-api/internal/models"
	"github.com/skilltracker/skilltracker-api/internal/service"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
	"github.com/skilltracker/skilltracker-api/pkg/response"
)

// UserHandler exposes user and role endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create registers a user with their initial roles.
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Get returns one user.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// Delete removes a user and everything they own.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

type roleRequest struct {
	Role models.RoleKind `json:"role" binding:"required"`
}

// AddRole grants a role.
func (h *UserHandler) AddRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	role, err := h.users.AddRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, role)
}

// RemoveRole revokes a role, subject to the last-role rule.
func (h *UserHandler) RemoveRole(c *gin.Context) {
	kind := models.RoleKind(c.Param("role"))
	if err := h.users.RemoveRole(c.Request.Context(), c.Param("id"), kind); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Roles lists the roles a user holds.
func (h *UserHandler) Roles(c *gin.Context) {
	roles, err := h.users.Roles(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roles)
}
