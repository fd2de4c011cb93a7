// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the folio portfolio API. Without
// arguments it loads configuration, connects to services, sets up routing
// and serves HTTP with graceful shutdown. The hash-password and
// totp-secret subcommands generate admin credentials.
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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"folio/internal/archive"
	"folio/internal/auth"
	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/experience"
	"folio/internal/handlers"
	"folio/internal/ingest"
	"folio/internal/logger"
	"folio/internal/middleware"
	"folio/internal/router"
	"folio/internal/storage"
	"folio/internal/store"
)

const usage = `usage: folio [command]

Commands:
  (none)           run the API server
  hash-password    print ADMIN_PASSWORD_HASH and JWT_SECRET values
  totp-secret      print a new ADMIN_TOTP_SECRET
`

func main() {
	if len(os.Args) > 1 {
		var err error
		switch os.Args[1] {
		case "hash-password":
			err = hashPassword(os.Args[2:], os.Stdin, os.Stdout)
		case "totp-secret":
			err = totpSecret(os.Args[2:], os.Stdout)
		case "-h", "--help", "help":
			fmt.Print(usage)
			return
		default:
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	serve()
}

func serve() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Options{Mode: cfg.Log, Level: cfg.LogLevel}); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Log

	log.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("addr", cfg.Addr()),
		zap.String("db", cfg.DSNSafe()),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	// Initialize data stores.
	blogStore := store.NewBlogStore(db)
	projectStore := store.NewProjectStore(db)
	experienceStore := store.NewExperienceStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	// Connect to Valkey (optional; without it nothing is cached).
	var pageCache *cache.PageCache
	var valkeyClient *redis.Client
	if valkeyClient, err = cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword); err != nil {
		log.Warn("valkey unavailable, page cache disabled", zap.Error(err))
	} else {
		defer valkeyClient.Close()
		pageCache = cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
		log.Info("valkey connected", zap.String("host", cfg.ValkeyHost))
	}
	invalidator := cache.NewInvalidator(pageCache, cacheLogStore)

	// Connect to S3-compatible object storage (optional; uploads are
	// disabled without it).
	var (
		uploader    handlers.Uploader
		assets      handlers.AssetRemover
		resumeStore handlers.ResumeStore
		resumeURL   string
	)
	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		log.Fatal("failed to initialize S3 storage", zap.Error(err))
	}
	if storageClient != nil {
		publisher := storage.NewPublisher(storageClient, cfg.AssetsRoot)
		uploader = ingest.NewService(blogStore, publisher, invalidator, archive.DefaultLimits)
		assets = publisher
		resumeStore = storageClient
		resumeURL = storageClient.FileURL(handlers.ResumeKey)
		log.Info("s3 storage connected",
			zap.String("endpoint", cfg.S3Endpoint),
			zap.String("bucket", storageClient.Bucket()),
		)
	} else {
		log.Warn("s3 storage not configured, blog and resume uploads disabled")
	}

	experienceSvc := experience.NewService(
		experience.NewClient(cfg.LinkedInDataURL, cfg.LinkedInToken),
		experienceStore,
		invalidator,
	)

	authenticator := auth.New(cfg.JWTSecret, cfg.AdminPasswordHash, cfg.AdminTOTPSecret, !cfg.IsDev())
	if !authenticator.Configured() {
		log.Warn("ADMIN_PASSWORD_HASH or JWT_SECRET not set, admin sign-in disabled")
	}

	loginLimiter := middleware.NewRateLimiter(5, time.Minute)
	defer loginLimiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		CORSOrigins:  cfg.CORSOrigins,
		HSTS:         !cfg.IsDev(),
		Ping:         db.PingContext,
		Verifier:     authenticator,
		LoginLimiter: loginLimiter,
		Auth:         handlers.NewAuth(authenticator, "admin"),
		Public:       handlers.NewPublic(blogStore, projectStore, experienceSvc, pageCache, resumeURL),
		Blogs:        handlers.NewBlogs(blogStore, uploader, assets, invalidator, cfg.MaxUploadSize),
		Projects:     handlers.NewProjects(projectStore, invalidator, cfg.MaxImageSize),
		Resume:       handlers.NewResume(resumeStore, cfg.MaxResumeSize),
		Admin:        handlers.NewAdmin(blogStore, projectStore, experienceSvc, cacheLogStore, pageCache),
	})

	// Create the HTTP server. WriteTimeout must cover a large archive
	// upload with its image publishing.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		log.Info("server starting", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutdown signal received", zap.Stringer("signal", sig))

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	// Let pending cache invalidations finish before the pools close.
	invalidator.Wait()
	log.Info("server stopped gracefully")
}
