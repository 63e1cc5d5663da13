// main package for the audio description service.
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

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/book-expert/audio-description-service/internal/api"
	"github.com/book-expert/audio-description-service/internal/config"
	"github.com/book-expert/audio-description-service/internal/enhance"
	"github.com/book-expert/audio-description-service/internal/history"
	"github.com/book-expert/audio-description-service/internal/objectstore"
	"github.com/book-expert/audio-description-service/internal/orchestrator"
	"github.com/book-expert/audio-description-service/internal/quota"
	"github.com/book-expert/audio-description-service/internal/ratelimit"
	"github.com/book-expert/audio-description-service/internal/resultcache"
	"github.com/book-expert/audio-description-service/internal/synthesize"
	"github.com/book-expert/audio-description-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "describe-service.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func buildService(
	cfg *config.Config,
	log *logger.Logger,
) (*orchestrator.Service, *quota.RedisStore, *nats.Conn, error) {
	historyStore, err := history.New(history.Config{
		URL:    cfg.Supabase.URL,
		APIKey: cfg.Supabase.APIKey,
		Table:  cfg.Supabase.HistoryTable,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create history store: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
	})
	usageStore := quota.New(redisClient, cfg.Redis.DailyGenerationLimit)

	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		natsConnection.Close()

		return nil, nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	archive, err := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if err != nil {
		natsConnection.Close()

		return nil, nil, nil, fmt.Errorf("failed to create audio archive: %w", err)
	}

	enhanceTimeout := time.Duration(cfg.Enhancement.TimeoutSeconds) * time.Second
	synthesizeTimeout := time.Duration(cfg.Synthesis.TimeoutSeconds) * time.Second

	service, err := orchestrator.New(orchestrator.Deps{
		Limiter:     ratelimit.New(),
		Cache:       resultcache.New(time.Duration(cfg.Cache.TTLMinutes) * time.Minute),
		Enhancer:    enhance.New(enhance.NewHTTPClient(cfg.Enhancement.BaseURL, enhanceTimeout), enhanceTimeout, log),
		Synthesizer: synthesize.NewClient(cfg.Synthesis.BaseURL, synthesizeTimeout),
		History:     historyStore,
		Usage:       usageStore,
		Archive:     archive,
		Budgets: orchestrator.Budgets{
			EnhanceCalls:     cfg.Enhancement.MaxCallsPerWindow,
			EnhanceWindow:    time.Duration(cfg.Enhancement.WindowSeconds) * time.Second,
			SynthesizeCalls:  cfg.Synthesis.MaxCallsPerWindow,
			SynthesizeWindow: time.Duration(cfg.Synthesis.WindowSeconds) * time.Second,
		},
		AllowGuests: cfg.HTTP.AllowGuests,
		Log:         log,
	})
	if err != nil {
		natsConnection.Close()

		return nil, nil, nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	return service, usageStore, natsConnection, nil
}

func serve(
	ctx context.Context,
	cfg *config.Config,
	service *orchestrator.Service,
	usageStore *quota.RedisStore,
	natsConnection *nats.Conn,
	log *logger.Logger,
) error {
	natsWorker, err := worker.NewNatsWorker(
		natsConnection, cfg.NATS.DescriptionRequestedSubject, service, log,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	router := api.NewRouter(service, usageStore, api.NewHeaderSessions(), log)

	server := &http.Server{
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           router.Engine(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 2)

	go func() {
		errChan <- natsWorker.Run(ctx)
	}()

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr

			return
		}

		errChan <- nil
	}()

	log.System("Audio description service listening on %s, consuming subject %s",
		cfg.HTTP.ListenAddress, cfg.NATS.DescriptionRequestedSubject)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownErr := server.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", shutdownErr)
		}

		return nil
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("service failed: %w", err)
		}

		return nil
	}
}

func run() error {
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, usageStore, natsConnection, err := buildService(cfg, finalLog)
	if err != nil {
		finalLog.Error("Failed to build service: %v", err)

		return err
	}
	defer natsConnection.Close()

	return serve(ctx, cfg, service, usageStore, natsConnection, finalLog)
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
