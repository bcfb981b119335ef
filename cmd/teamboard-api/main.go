package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/sirupsen/logrus"

	"github.com/oguzhan/teamboard-api/internal/config"
	"github.com/oguzhan/teamboard-api/internal/database"
	"github.com/oguzhan/teamboard-api/internal/handlers"
	authmw "github.com/oguzhan/teamboard-api/internal/middleware"
	"github.com/oguzhan/teamboard-api/internal/services"
	"github.com/oguzhan/teamboard-api/internal/sse"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	teamService := services.NewTeamService(db)
	taskService := services.NewTaskService(db)
	emailService := services.NewEmailService(cfg.SMTP)

	hub := sse.NewHub()
	go hub.Run()

	authHandler := handlers.NewAuthHandler(cfg, userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService, userService, emailService, hub)
	taskHandler := handlers.NewTaskHandler(taskService, teamService, hub)
	eventsHandler := handlers.NewEventsHandler(hub, teamService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)

	protected.Get("/teams", teamHandler.List)
	protected.Post("/teams", teamHandler.Create)
	protected.Post("/teams/join", teamHandler.Join)
	protected.Get("/teams/:id", teamHandler.Get)
	protected.Delete("/teams/:id", teamHandler.Delete)
	protected.Post("/teams/:id/leave", teamHandler.Leave)
	protected.Get("/teams/:id/members", teamHandler.GetMembers)
	protected.Post("/teams/:id/invites", teamHandler.SendInvite)

	protected.Get("/teams/:id/tasks", taskHandler.ListByTeam)
	protected.Post("/teams/:id/tasks", taskHandler.Assign)
	protected.Get("/teams/:id/board", taskHandler.Board)
	protected.Patch("/tasks/:id", taskHandler.UpdateStatus)

	protected.Get("/teams/:id/events", eventsHandler.Connect)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			if err := tokenService.CleanupExpired(context.Background()); err != nil {
				log.WithError(err).Warn("refresh token cleanup failed")
			}
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.WithField("addr", addr).Info("Server starting")
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
}
