package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/leowmjw/go-scoreplot/pkg/http"
	"github.com/leowmjw/go-scoreplot/pkg/render"
	"github.com/leowmjw/go-scoreplot/pkg/source"
	"github.com/leowmjw/go-scoreplot/pkg/temporal"
)

// envOr returns the SCOREPLOT_ prefixed variable, or def when unset.
func envOr(name, def string) string {
	if v, ok := os.LookupEnv("SCOREPLOT_" + name); ok {
		return v
	}
	return def
}

func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	var (
		httpAddr     = flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "HTTP server address")
		temporalAddr = flag.String("temporal-addr", envOr("TEMPORAL_ADDR", ""), "Temporal server address; empty renders in process")
		namespace    = flag.String("namespace", envOr("NAMESPACE", "default"), "Temporal namespace")
		taskQueue    = flag.String("task-queue", envOr("TASK_QUEUE", temporal.DefaultTaskQueue), "Temporal task queue")
		logLevel     = flag.String("log-level", envOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	// Setup logger
	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if envErr != nil {
		logger.Debug("No .env file found, using system environment variables")
	}

	logger.Info("Starting scoreplot service",
		"http_addr", *httpAddr,
		"temporal_addr", *temporalAddr,
		"namespace", *namespace,
		"task_queue", *taskQueue,
	)

	runner := render.NewRunner(logger)
	store := source.NewMemoryStore()
	opts := []http.Option{http.WithStore(store)}

	if *temporalAddr != "" {
		// Create Temporal client
		temporalClient, err := client.Dial(client.Options{
			HostPort:  *temporalAddr,
			Namespace: *namespace,
		})
		if err != nil {
			logger.Error("Failed to create Temporal client", "error", err)
			os.Exit(1)
		}
		defer temporalClient.Close()

		// The worker shares the store so jobs can name uploaded scores
		w := worker.New(temporalClient, *taskQueue, worker.Options{})
		temporal.Register(w, temporal.NewActivities(logger, runner, store))

		// Start worker in background
		go func() {
			logger.Info("Starting Temporal worker", "task_queue", *taskQueue)
			if err := w.Run(worker.InterruptCh()); err != nil {
				logger.Error("Temporal worker failed", "error", err)
				os.Exit(1)
			}
		}()

		opts = append(opts, http.WithTemporal(temporalClient, *taskQueue))
	}

	// Create and start HTTP server
	server := http.NewServer(logger, runner, *httpAddr, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server in background
	go func() {
		if err := server.Start(ctx); err != nil {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Received shutdown signal, stopping services...")

	// Cancel context to stop HTTP server
	cancel()

	logger.Info("scoreplot service stopped")
}
