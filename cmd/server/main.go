package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labelquest/internal/api"
	"labelquest/internal/app/service"
	"labelquest/internal/common/security"
	"labelquest/internal/domain/repository"
	"labelquest/internal/platform/cache"
	"labelquest/internal/platform/config"
	"labelquest/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	database.Migrate()

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	categoryRepo := repository.NewPgCategoryRepository(database.DB)
	tagRepo := repository.NewPgTagRepository(database.DB)
	imageRepo := repository.NewPgImageRepository(database.DB)
	answerRepo := repository.NewPgAnswerRepository(database.DB)
	statsRepo := repository.NewPgStatsRepository(database.DB)

	// 6. Initialize Services
	adminDirectory := service.NewAdminDirectory(cache.RDB, userRepo, config.AppConfig.AdminCacheTTL)
	authService := service.NewAuthService(userRepo)
	statsService := service.NewStatsService(userRepo, statsRepo, answerRepo, imageRepo)
	rankingService := service.NewRankingService(statsRepo, statsService, adminDirectory, config.AppConfig.DefaultRankingLimit)
	gameService := service.NewGameService(imageRepo, tagRepo, categoryRepo, answerRepo)
	contentService := service.NewContentService(imageRepo, tagRepo, categoryRepo)
	adminService := service.NewAdminService(userRepo, imageRepo, adminDirectory)
	exportService := service.NewExportService(userRepo, categoryRepo, answerRepo, statsService)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, gameService, statsService, rankingService, contentService, adminService, exportService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Printf("Server starting on port %s...\n", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()

	<-stop
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	fmt.Println("Server gracefully stopped.")
}
