package api

import (
	"net/http"
	"time"

	"labelquest/internal/api/handler"
	"labelquest/internal/app/service"
	"labelquest/internal/common/security"
	"labelquest/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/cors"
)

func NewRouter(
	authService *service.AuthService,
	gameService *service.GameService,
	statsService *service.StatsService,
	rankingService *service.RankingService,
	contentService *service.ContentService,
	adminService *service.AdminService,
	exportService *service.ExportService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Use(cors.New(cors.Options{
		AllowedOrigins:   config.AppConfig.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}).Handler)

	// JWT Auth Middleware Setup
	// Verifies a token when present and puts claims in context; routes that
	// require auth add middleware.Authenticator on top.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		// Content routes (categories public, upload authenticated)
		contentHandler := handler.NewContentHandler(contentService)
		contentHandler.RegisterRoutes(v1)

		// Game loop routes (sampling public, answering authenticated)
		gameHandler := handler.NewGameHandler(gameService)
		v1.Route("/game", gameHandler.RegisterRoutes)

		// Stats and ranking routes
		statsHandler := handler.NewStatsHandler(statsService, rankingService)
		statsHandler.RegisterRoutes(v1)

		// Admin console routes
		adminHandler := handler.NewAdminHandler(adminService, contentService, statsService, exportService)
		v1.Route("/admin", adminHandler.RegisterRoutes)
	})

	return r
}
