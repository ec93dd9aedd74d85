package handlers

import (
	"net/http"

	"github.com/anonto42/blogi/backend/internal/apperrors"
	"github.com/anonto42/blogi/backend/internal/middleware"
	"github.com/anonto42/blogi/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterUserRoutes registers user profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/users/me", h.GetMe, requireAuth) // Get own profile
	g.GET("/users/:username", h.GetUser)     // Get other user's profile by username
}

// GetUser returns the public profile of a user by username
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.users.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(c echo.Context) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return apperrors.Unauthenticated("Not authenticated")
	}
	return c.JSON(http.StatusOK, identity.Out())
}
