package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"

	"github.com/svpay/svpay-api/internal/config"
	"github.com/svpay/svpay-api/internal/domain/auth"
	"github.com/svpay/svpay-api/internal/domain/card"
	"github.com/svpay/svpay-api/internal/domain/user"
	"github.com/svpay/svpay-api/internal/middleware"
	"github.com/svpay/svpay-api/internal/pkg/database"
	"github.com/svpay/svpay-api/internal/pkg/jwt"
	"github.com/svpay/svpay-api/internal/pkg/logger"
	"github.com/svpay/svpay-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting SVPAY API")

	db, err := database.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	cardRepo := card.NewRepository(db)

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService)
	cardService := card.NewService(cardRepo)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	cardHandler := card.NewHandler(cardService)

	authMiddleware := middleware.Auth(jwtService)
	useLimiter := httprate.LimitByIP(cfg.UseRateLimit, 1*time.Minute)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/cards", cardHandler.Routes(authMiddleware, useLimiter))
		r.Mount("/transactions", cardHandler.TransactionRoutes(authMiddleware))
		r.Mount("/users", authHandler.UserRoutes(authMiddleware))
		r.Post("/token", authHandler.Login)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
