package router

import (
	"log"

	"github.com/anonto42/blogi/backend/internal/handlers"
	"github.com/anonto42/blogi/backend/internal/middleware"
	"github.com/anonto42/blogi/backend/internal/services"
	"github.com/anonto42/blogi/backend/internal/validators"
	"github.com/labstack/echo/v4"
)

// UploadsPrefix is the URL path stored images are served under.
const UploadsPrefix = "/uploads"

// Dependencies are the services the routes are wired to.
type Dependencies struct {
	Users     *services.UserService
	Posts     *services.PostService
	Guard     middleware.Authenticator
	UploadDir string
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(e)

	// Health check - always accessible
	e.GET("/", handlers.Welcome)
	e.GET("/health", handlers.HealthCheck)

	if deps.UploadDir != "" {
		e.Static(UploadsPrefix, deps.UploadDir)
	}

	api := e.Group("")
	requireAuth := middleware.JWTAuthMiddleware(deps.Guard)

	authHandler := handlers.NewAuthHandler(deps.Users)
	authHandler.RegisterAuthRoutes(api)
	log.Println("Auth routes configured.")

	userHandler := handlers.NewUserHandler(deps.Users)
	userHandler.RegisterUserRoutes(api, requireAuth)
	log.Println("User profile routes configured.")

	postHandler := handlers.NewPostHandler(deps.Posts)
	postHandler.RegisterPostRoutes(api, requireAuth)
	log.Println("Post routes configured.")
}
