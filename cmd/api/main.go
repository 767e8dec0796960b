package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trailforge/video-service/config"
	"trailforge/video-service/handlers"
	"trailforge/video-service/internal/catalog"
	"trailforge/video-service/internal/mediaprobe"
	"trailforge/video-service/internal/processing"
	"trailforge/video-service/internal/storage"
	"trailforge/video-service/internal/validation"
	"trailforge/video-service/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := config.NewLogger(cfg.Logging)

	supaClient, err := config.NewSupabaseClient(cfg.Supabase)
	if err != nil {
		logger.Fatalf("Failed to initialize Supabase: %v", err)
	}

	catalogClient, err := catalog.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		logger.Fatalf("Failed to initialize catalog client: %v", err)
	}

	blobStore := storage.NewSupabaseBlobStore(supaClient.Storage, cfg.Supabase.VideoBucket, cfg.Probe.Timeout)

	var prober mediaprobe.Prober
	if cfg.Probe.FFProbeEnabled {
		prober = mediaprobe.NewFFProbe(cfg.Probe.Timeout)
	}
	processor := processing.NewProcessor(blobStore, catalogClient, prober, logger)

	validator := validation.New(cfg.Upload.MaxVideoSize, cfg.Upload.MaxThumbnailSize, cfg.Upload.MaxImageSize)

	h := handlers.NewApplicationHandler(logger, blobStore, catalogClient, processor, validator)

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Upload.MaxVideoSize) + (1 << 20),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Range",
	}))
	app.Use(middleware.RequestLogger(logger))

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "video service is healthy",
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API v1 routes
	apiV1 := app.Group("/api/v1")

	apiV1.Post("/videos/upload", h.UploadVideo)
	apiV1.Get("/videos/stream", h.StreamVideo)
	apiV1.Post("/videos/process", h.ProcessVideo)

	apiV1.Post("/videos", h.CreateVideo)
	apiV1.Get("/videos", h.ListVideos)
	apiV1.Get("/videos/:id", h.GetVideo)
	apiV1.Patch("/videos/:id", h.UpdateVideo)
	apiV1.Delete("/videos/:id", h.DeleteVideo)
	apiV1.Post("/videos/:id/interactions", h.RecordInteraction)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
			logger.WithError(err).Error("Shutdown error")
		}
	}()

	logger.Infof("Starting video service API on port %d...", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
