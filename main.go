package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sharedeck/sharedeck/internal/blob"
	"github.com/sharedeck/sharedeck/internal/chat"
	"github.com/sharedeck/sharedeck/internal/logger"
	"github.com/sharedeck/sharedeck/internal/registry"
	"github.com/sharedeck/sharedeck/internal/relay"
	"github.com/sharedeck/sharedeck/internal/upload"
)

func main() {
	config := LoadConfig()
	log := logger.Init(config.LogLevel)

	if err := os.MkdirAll(config.Storage.TempDir, 0755); err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}

	store, err := blob.NewS3Store(blob.S3Config{
		Endpoint:  config.Blob.Endpoint,
		Region:    config.Blob.Region,
		Bucket:    config.Blob.Bucket,
		AccessKey: config.Blob.AccessKey,
		SecretKey: config.Blob.SecretKey,
	})
	if err != nil {
		log.Fatalf("Failed to create blob store client: %v", err)
	}

	reg := registry.New()
	stager := upload.NewStager(config.Storage.TempDir, log)
	orchestrator := upload.NewOrchestrator(store, reg, stager, config.Server.BaseURL, log)
	rooms := relay.New(log)
	uploader := chat.NewUploader(store, stager, rooms, log)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST"}
	corsConfig.AllowWebSockets = true
	router.Use(cors.New(corsConfig))

	NewAPI(orchestrator, reg, log).RegisterRoutes(router)
	NewHub(rooms, uploader, log).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + config.Server.Port,
		Handler: router,
	}

	go func() {
		log.Noticef("Server listening on :%s", config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Notice("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Forced shutdown: %v", err)
	}
}
