package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/admin"
	"github.com/foodgram-app/backend/internal/api"
	"github.com/foodgram-app/backend/internal/database"
	"github.com/foodgram-app/backend/internal/router"
	"github.com/foodgram-app/backend/internal/server"
	"github.com/foodgram-app/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		// Logout deny-listing degrades gracefully without Redis.
		log.Printf("Redis unavailable, token revocation disabled: %v", err)
		redisClient = nil
	}

	ctx := context.Background()
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}
	if s3Config == nil {
		log.Printf("S3 not configured, storing images under %s", cfg.MediaDir)
	}

	authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
	userService := service.NewUserService(db)
	recipeService := service.NewRecipeService(db)
	relationService := service.NewRelationService(db)
	shoppingService := service.NewShoppingListService(db)
	catalogService := service.NewCatalogService(db)
	imageService := service.NewImageService(s3Config, cfg.MediaDir)

	engine := router.Setup(
		api.NewAuthHandler(authService, userService),
		api.NewUserHandler(userService, relationService, authService),
		api.NewRecipeHandler(recipeService, relationService, shoppingService, imageService, authService),
		api.NewCatalogHandler(catalogService),
		api.NewAdminHandler(admin.New(db), authService),
	)

	srv := server.New(engine, cfg.ServerHost, cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s:%s", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
