package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cardparse/internal/config"
	"cardparse/internal/handler"
	"cardparse/internal/ocr"
	"cardparse/internal/parsing"
	"cardparse/internal/port"
	"cardparse/internal/repository/postgres"
	"cardparse/internal/router"
	"cardparse/internal/service"
	s3storage "cardparse/internal/storage/s3"
	"cardparse/internal/textextract"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	taskRepo := postgres.NewTaskRepo(db)

	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	engine := newEngine(cfg)
	statementSvc := service.NewStatementService(taskRepo, storage, cfg.S3.Bucket, engine)

	worker := service.NewParseQueueWorker(taskRepo, statementSvc, service.ParseQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
		TaskTimeout:  time.Duration(cfg.Queue.TaskTimeoutSecs) * time.Second,
	})

	statementH := handler.NewStatementHandler(statementSvc, cfg.S3.MaxFileSizeMB)
	healthH := handler.NewHealthHandler(db)

	r := router.New(cfg, statementH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone
	log.Printf("shutdown complete")
	return nil
}

func newEngine(cfg *config.Config) *parsing.Engine {
	var fallback textextract.OCRFallback
	if cfg.OCR.Enabled {
		fallback = ocr.NewExtractor(ocr.Config{
			TesseractPath: cfg.OCR.TesseractPath,
			PdftoppmPath:  cfg.OCR.PdftoppmPath,
			Language:      cfg.OCR.Language,
			PSM:           cfg.OCR.PSM,
			DPI:           cfg.OCR.DPI,
			MaxPages:      cfg.OCR.MaxPages,
		})
	}
	extractor := textextract.New(fallback)
	return parsing.NewEngine(extractor, cfg.Parse.ClassifyWindow, cfg.Parse.ProximityWindow)
}
