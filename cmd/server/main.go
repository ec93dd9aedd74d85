package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/blogi/backend/internal/auth"
	"github.com/anonto42/blogi/backend/internal/codec"
	"github.com/anonto42/blogi/backend/internal/repositories"
	"github.com/anonto42/blogi/backend/internal/router"
	"github.com/anonto42/blogi/backend/internal/services"
	"github.com/anonto42/blogi/backend/internal/storage"
	"github.com/anonto42/blogi/backend/pkg/config"
	"github.com/anonto42/blogi/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	glog "github.com/labstack/gommon/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	ctx := context.Background()

	// Firebase login is optional
	var verifier services.FirebaseVerifier
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		verifier = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	if cfg.IsDevelopment() {
		e.Logger.SetLevel(glog.DEBUG)
	} else {
		e.Logger.SetLevel(glog.INFO)
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	var postRepo repositories.PostRepository
	switch cfg.PostStore {
	case config.PostStoreMongo:
		mongoRepo := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase))
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			log.Fatalf("Failed to create MongoDB indexes: %v", err)
		}
		postRepo = mongoRepo
	default:
		postRepo = repositories.NewPostgresPostRepository(db.Postgres)
	}
	log.Printf("Using %s post store.", cfg.PostStore)

	// --- Initialize Services ---
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}
	guard := auth.NewGuard(tokens, userRepo)

	images, err := storage.NewImageStore(cfg.UploadDir, router.UploadsPrefix)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	userService, err := services.NewUserService(userRepo, auth.NewCredentials(cfg.BcryptCost), tokens, verifier)
	if err != nil {
		log.Fatalf("Failed to create user service: %v", err)
	}
	postService := services.NewPostService(postRepo, userRepo, guard, codec.New(e.Logger), images, e.Logger)

	// Setup global middleware
	config.SetupMiddleware(e, cfg)

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Dependencies{
		Users:     userService,
		Posts:     postService,
		Guard:     guard,
		UploadDir: images.Dir(),
	})

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
