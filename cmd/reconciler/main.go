// The reconciler is the fix-up sweep for the processing pipeline: it
// scans the catalog for records stuck in pending or failed with no
// thumbnail and re-runs processing for each through a worker pool.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trailforge/video-service/config"
	"trailforge/video-service/internal/catalog"
	"trailforge/video-service/internal/jobs"
	"trailforge/video-service/internal/mediaprobe"
	"trailforge/video-service/internal/processing"
	"trailforge/video-service/internal/storage"
	"trailforge/video-service/internal/worker"
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

	dispatcher := worker.NewDispatcher(cfg.Reconciler.Workers, cfg.Reconciler.QueueSize, logger)
	dispatcher.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	stalled, err := catalogClient.ListStalled(ctx, cfg.Reconciler.BatchLimit)
	cancel()
	if err != nil {
		dispatcher.Stop()
		logger.Fatalf("Failed to list stalled records: %v", err)
	}

	logger.WithField("count", len(stalled)).Info("Stalled video records found")

	for _, record := range stalled {
		job := &jobs.ReprocessVideoJob{
			VideoID:   record.ID,
			VideoURL:  record.VideoURL,
			Title:     record.Title,
			Processor: processor,
			Timeout:   cfg.Reconciler.JobTimeout,
		}
		if !dispatcher.Submit(job) {
			logger.WithField("video_id", record.ID).Warn("Could not enqueue reprocess job")
		}
	}

	// Let in-flight jobs finish; a signal cuts the sweep short.
	done := make(chan struct{})
	go func() {
		dispatcher.Stop()
		close(done)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-done:
		logger.Info("Reconciliation sweep complete")
	case <-sigChan:
		logger.Info("Interrupted, waiting for in-flight jobs")
		<-done
	}
}
