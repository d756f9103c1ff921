// Package main initializes and starts the Objektverwaltung API server,
// setting up configuration, logging, database connections, blob storage,
// repositories, services, and handlers.
package main

import (
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/tkoehler/objektverwaltung/internal/blob"
	"github.com/tkoehler/objektverwaltung/internal/config"
	"github.com/tkoehler/objektverwaltung/internal/db"
	"github.com/tkoehler/objektverwaltung/internal/logger"
	"github.com/tkoehler/objektverwaltung/internal/repository"
	"github.com/tkoehler/objektverwaltung/internal/server/handler/http"
	"github.com/tkoehler/objektverwaltung/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Remove expired sessions periodically.
	db.StartExpiredSessionCleaner(context.Background(), postgresDB, time.Hour, zapLogger)

	// Initialize S3 blob storage for object images.
	blobStore, err := blob.NewS3Store(context.Background(), blob.Config{
		Endpoint:  options.S3Endpoint,
		Region:    options.S3Region,
		Bucket:    options.S3Bucket,
		AccessKey: options.S3AccessKey,
		SecretKey: options.S3SecretKey,
	})
	if err != nil {
		zapLogger.Fatal("cannot init blob storage", zap.Error(err))
	}

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	sessionRepo := repository.NewPostgresSessionRepository(postgresDB)
	objectRepo := repository.NewPostgresObjectRepository(postgresDB)
	imageRepo := repository.NewPostgresImageRepository(postgresDB)

	// Initialize business-logic services.
	sessionTTL := time.Duration(options.SessionTTLHours) * time.Hour
	authService := service.NewAuthService(userRepo, sessionRepo, sessionTTL, options.BcryptCost)
	userAdminService := service.NewUserAdminService(userRepo, sessionRepo, options.BcryptCost)
	objectService := service.NewObjectService(objectRepo, imageRepo, blobStore)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService}
	usersHandler := &http.UsersHandler{Users: userAdminService}
	objectsHandler := &http.ObjectsHandler{Objects: objectService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, usersHandler, objectsHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

// orDefault returns s, or def if s is empty (stand-in for cmp.Or,
// which requires Go 1.22).
func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
