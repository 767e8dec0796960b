package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"trailforge/video-service/internal/catalog"
	"trailforge/video-service/internal/processing"
	"trailforge/video-service/internal/storage"
	"trailforge/video-service/internal/validation"
)

// VideoProcessor defines the operations handlers expect from the
// processing step. This allows for decoupling and easier testing.
type VideoProcessor interface {
	Process(ctx context.Context, req processing.Request) (*processing.Result, error)
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Logger    *logrus.Logger
	Blob      storage.BlobStore
	Catalog   catalog.Store
	Processor VideoProcessor
	Validator *validation.Validator
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(logger *logrus.Logger, blob storage.BlobStore, cat catalog.Store, processor VideoProcessor, validator *validation.Validator) *ApplicationHandler {
	return &ApplicationHandler{
		Logger:    logger,
		Blob:      blob,
		Catalog:   cat,
		Processor: processor,
		Validator: validator,
	}
}
