package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/ethaccount/dats/docs/swagger"
	"github.com/ethaccount/dats/src/app"
	"github.com/rs/zerolog"
)

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Secret
// @description                 Required when API_SECRET is set

const (
	AppName    = "DATS API"
	AppVersion = "0.1.0"
)

func main() {
	// Load .env file if it exists (optional in production)
	if err := app.LoadEnvFile(".env"); err != nil {
		bootLogger := app.InitLogger("info", os.Stderr)
		bootLogger.Fatal().Err(err).Msg("Error loading .env file")
	}

	config, err := app.NewAppConfig()
	if err != nil {
		bootLogger := app.InitLogger("info", os.Stderr)
		bootLogger.Fatal().Err(err).Msg("Invalid configuration")
	}

	swagger.SwaggerInfo.Title = AppName
	swagger.SwaggerInfo.Version = AppVersion
	swagger.SwaggerInfo.Description = fmt.Sprintf("%s for DATS settings accounts on %s", AppName, config.Chain.Name)
	swagger.SwaggerInfo.Host = "localhost:" + *config.Port

	// Create root logger
	logger := app.InitLogger(*config.LogLevel, os.Stdout)

	// Create root context
	rootCtx, rootCancel := context.WithCancel(context.Background())
	rootCtx = logger.WithContext(rootCtx)

	logger.Info().
		Str("version", AppVersion).
		Str("chain", config.Chain.Name).
		Msgf("Launching %s", AppName)

	application, err := app.NewApplication(rootCtx, *config)
	if err != nil {
		rootCancel()
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}

	wg := sync.WaitGroup{}

	wg.Add(1)
	go application.RunHTTPServer(rootCtx, &wg)

	wg.Add(1)
	go runSystemStatsLogger(rootCtx, &wg, logger)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Cancel root context to signal all workers to stop
	rootCancel()

	waitChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitChan)
	}()

	select {
	case <-waitChan:
		logger.Info().Msg("All workers shut down gracefully")
	case <-time.After(15 * time.Second):
		logger.Error().Msg("Timeout waiting for workers to shut down")
	}

	application.Shutdown(rootCtx)

	logger.Info().Msg("Application shutdown complete")
}

// runSystemStatsLogger logs memory and goroutine counts once a minute
func runSystemStatsLogger(ctx context.Context, wg *sync.WaitGroup, logger zerolog.Logger) {
	defer wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("System stats logger shutting down")
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			logger.Debug().
				Uint64("heap_mb", m.HeapInuse/1024/1024).
				Uint64("sys_mb", m.Sys/1024/1024).
				Int("goroutines", runtime.NumGoroutine()).
				Msg("System stats")
		}
	}
}
