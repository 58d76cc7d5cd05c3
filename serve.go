package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/blog-be/internal/api"
	"github.com/isdelr/blog-be/internal/auth"
	"github.com/isdelr/blog-be/internal/config"
	"github.com/isdelr/blog-be/internal/database"
	"github.com/isdelr/blog-be/internal/jobs"
	"github.com/isdelr/blog-be/internal/logger"
	"github.com/isdelr/blog-be/internal/services"
	"github.com/isdelr/blog-be/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, _ []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("path", cfg.DatabasePath).Wrap(err)
	}
	defer db.Close()

	if err := database.Migrate(cmd.Context(), db); err != nil {
		return oops.Code("MIGRATION_FAILED").Wrap(err)
	}

	ctx, stopHub := context.WithCancel(context.Background())
	defer stopHub()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Set up services
	eventService := services.NewEventService(db, hub)
	userService := services.NewUserService(db, eventService)
	postService := services.NewPostService(db, eventService)
	commentService := services.NewCommentService(db, eventService)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	// Set up and run the background scheduler
	scheduler, err := jobs.NewScheduler(eventService, cfg.EventPruneSchedule, cfg.EventRetention)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	scheduler.Run()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		DB:             db,
		Hub:            hub,
		Tokens:         tokens,
		UserService:    userService,
		PostService:    postService,
		CommentService: commentService,
		EventService:   eventService,
		CORSOrigins:    cfg.CORSOrigins,
		SecureCookies:  cfg.IsProduction(),
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		scheduler.Stop()
		return oops.Code("SERVER_FAILED").Wrap(err)
	}
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return oops.Code("SERVER_FAILED").Wrap(err)
	}

	log.Info().Msg("Server exiting")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	path := config.DatabasePath()

	cmd.Println("Connecting to database...")
	db, err := database.New(path)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("path", path).Wrap(err)
	}
	defer db.Close()

	cmd.Println("Running migrations...")
	if err := database.Migrate(cmd.Context(), db); err != nil {
		return oops.Code("MIGRATION_FAILED").With("path", path).Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
