package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/config"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/database"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/handler"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/images"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/jobs"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/middleware"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/repository"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/service"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/storage"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Apply schema migrations. The unique indexes they define back
	// every conflict path (duplicate codes, likes, nicknames).
	if err := database.Migrate(ctx, db, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize object storage
	blobStore, err := storage.NewS3Store(ctx, cfg.Storage.Region, cfg.Storage.Bucket)
	if err != nil {
		slog.Error("failed to initialize object storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	uploader := storage.NewUploader(blobStore)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	mapRepo := repository.NewMapRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		Secret:       cfg.Auth.JWTSecret,
		Issuer:       cfg.Auth.Issuer,
		TokenTTL:     cfg.Auth.TokenTTL,
		LinkStateTTL: cfg.Auth.LinkStateTTL,
	})

	authService := service.NewAuthService(service.AuthServiceConfig{
		Users:  userRepo,
		Tokens: tokenService,
		LoginProvider: service.NewGoogleProvider(
			cfg.OAuth.Google.ClientID,
			cfg.OAuth.Google.ClientSecret,
			cfg.OAuth.Google.RedirectURI,
		),
		UpdateProvider: service.NewGoogleProvider(
			cfg.OAuth.Google.ClientID,
			cfg.OAuth.Google.ClientSecret,
			cfg.OAuth.Google.UpdateRedirectURI,
		),
	})

	sessionService := service.NewSessionService(service.SessionServiceConfig{
		Store:         sessionRepo,
		TTL:           cfg.Session.TTL,
		TouchInterval: cfg.Session.TouchInterval,
	})

	mapService := service.NewMapService(service.MapServiceConfig{
		Maps:       mapRepo,
		Likes:      likeRepo,
		Uploader:   uploader,
		Normalize:  images.Normalize,
		CDNBaseURL: cfg.Storage.CDNBaseURL,
	})

	userService := service.NewUserService(service.UserServiceConfig{
		Users:      userRepo,
		Maps:       mapRepo,
		Likes:      likeRepo,
		Uploader:   uploader,
		CDNBaseURL: cfg.Storage.CDNBaseURL,
	})

	// Initialize handlers
	authHandler := handler.NewAuthHandler(handler.AuthHandlerConfig{
		Auth:          authService,
		Sessions:      sessionService,
		Tokens:        tokenService,
		Users:         userRepo,
		FrontendURL:   cfg.Server.FrontendURL,
		SecureCookies: cfg.IsProduction(),
	})
	userHandler := handler.NewUserHandler(userService)
	mapHandler := handler.NewMapHandler(handler.MapHandlerConfig{
		Maps:        mapService,
		MaxFiles:    cfg.Upload.MaxFiles,
		MaxFileSize: cfg.Upload.MaxFileSize,
	})

	// Auth middleware variants: token-gated, session-gated, and
	// optional (public endpoints that personalize when logged in)
	tokenAuth := middleware.RequireToken(tokenService, userRepo)
	sessionAuth := middleware.RequireSession(sessionService, userRepo)
	softAuth := middleware.SoftToken(tokenService, userRepo)

	// Start background jobs
	sessionSweeper := jobs.NewSessionSweeper(sessionService, 1*time.Hour)
	sessionSweeper.Start()
	defer sessionSweeper.Stop()

	// Set up routes
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Sign-in and account-link endpoints
	mux.Handle("GET /api/public/user/auth/google", http.HandlerFunc(authHandler.GoogleLogin))
	mux.Handle("GET /api/public/user/auth/google/redirect", http.HandlerFunc(authHandler.GoogleCallback))
	mux.Handle("GET /api/user/auth/google/update", sessionAuth(http.HandlerFunc(authHandler.GoogleUpdate)))
	mux.Handle("GET /api/public/user/auth/google/update/redirect", http.HandlerFunc(authHandler.GoogleUpdateCallback))
	mux.Handle("GET /api/public/user/login/status", http.HandlerFunc(authHandler.LoginStatus))
	mux.Handle("POST /api/user/logout", sessionAuth(http.HandlerFunc(authHandler.Logout)))

	// User endpoints
	mux.Handle("GET /api/public/user/{userId}", softAuth(http.HandlerFunc(userHandler.GetUser)))
	mux.Handle("GET /api/user/profile", tokenAuth(http.HandlerFunc(userHandler.GetProfile)))
	mux.Handle("PATCH /api/user", tokenAuth(http.HandlerFunc(userHandler.UpdateUser)))
	mux.Handle("DELETE /api/user", sessionAuth(http.HandlerFunc(userHandler.DeleteUser)))

	// Map endpoints
	mux.Handle("GET /api/public/maps", softAuth(http.HandlerFunc(mapHandler.ListMaps)))
	mux.Handle("GET /api/public/maps/{mapId}", softAuth(http.HandlerFunc(mapHandler.GetMap)))
	mux.Handle("POST /api/maps", tokenAuth(http.HandlerFunc(mapHandler.CreateMap)))
	mux.Handle("PATCH /api/maps/{mapId}", tokenAuth(http.HandlerFunc(mapHandler.UpdateMap)))
	mux.Handle("DELETE /api/maps/{mapId}", tokenAuth(http.HandlerFunc(mapHandler.DeleteMap)))
	mux.Handle("POST /api/maps/{mapId}/like", tokenAuth(http.HandlerFunc(mapHandler.LikeMap)))
	mux.Handle("DELETE /api/maps/{mapId}/like", tokenAuth(http.HandlerFunc(mapHandler.UnlikeMap)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
