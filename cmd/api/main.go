package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ocrapi/internal/config"
	"ocrapi/internal/docstore"
	"ocrapi/internal/extract"
	handlers "ocrapi/internal/http/handler"
	"ocrapi/internal/http/middleware"
	"ocrapi/internal/ocr"
	"ocrapi/internal/otel"
	"ocrapi/internal/queue"
	"ocrapi/internal/service"
	"ocrapi/internal/storage"
	"ocrapi/internal/watch"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Two buckets on the same S3-compatible backend: uploaded documents and
	// derived OCR artifacts.
	source, err := storage.NewMinIO(cfg.MinIO, cfg.MinIO.SourceBucket)
	if err != nil {
		log.Fatalf("failed to initialize source storage: %v", err)
	}
	destination, err := storage.NewMinIO(cfg.MinIO, cfg.MinIO.DestinationBucket)
	if err != nil {
		log.Fatalf("failed to initialize destination storage: %v", err)
	}

	engine, err := ocr.NewHTTPEngine(cfg.Engine)
	if err != nil {
		log.Fatalf("failed to initialize recognition engine client: %v", err)
	}

	store := docstore.NewStore(source, destination, time.Duration(cfg.Pipeline.PresignExpirySec)*time.Second)

	lifecycleSvc := service.NewLifecycleService(store, engine, cfg.MinIO.SourceBucket, cfg.Pipeline.PresignExpirySec)
	completionSvc := service.NewCompletionService(store, engine, service.CompletionOptions{
		Extract:         extract.FromPipeline(cfg.Pipeline),
		StrictTagWrites: cfg.Pipeline.StrictTagWrites,
	})
	resultSvc := service.NewResultService(store, cfg.Pipeline.LargeObjectThreshold)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, source, lifecycleSvc, completionSvc, resultSvc)

	// New objects in the source bucket, whether written through the API or a
	// presigned upload, get submitted for recognition.
	if cfg.Pipeline.WatchSourceBucket {
		listener, ok := source.(storage.EventListener)
		if !ok {
			log.Fatal("source storage does not support bucket notifications")
		}
		watcher := watch.New(listener, lifecycleSvc)
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("bucket watcher stopped: %v", err)
			}
		}()
	}

	// Engine completion notifications arrive on the queue; a handler error
	// leaves the message for redelivery, except unrecognized status values,
	// which redelivery cannot fix.
	if cfg.Queue.URL != "" {
		consumer, err := queue.NewSQSConsumer(ctx, cfg.Queue)
		if err != nil {
			log.Fatalf("failed to initialize completion consumer: %v", err)
		}
		go func() {
			err := consumer.Run(ctx, func(ctx context.Context, msg queue.CompletionMessage) error {
				_, err := completionSvc.Complete(ctx, msg.DocumentID(), msg.Status)
				if errors.Is(err, service.ErrUnknownTerminalStatus) {
					log.Printf("completion for %s carried unrecognized status %q", msg.DocumentID(), msg.Status)
					return nil
				}
				return err
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("completion consumer stopped: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
