package app

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/ethaccount/dats/erc4337"
	"github.com/ethaccount/dats/src/handler"
	"github.com/ethaccount/dats/src/repository"
	"github.com/ethaccount/dats/src/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Application struct {
	config   AppConfig
	database *gorm.DB
	redis    *redis.Client

	blockchain *service.BlockchainService
	bundler    *erc4337.BundlerClient

	ChainID   *big.Int
	Signer    *erc4337.Signer
	Accounts  *service.AccountService
	Assembler *service.AssemblerService
	Execution *service.ExecutionService
	Settings  *service.SettingsService

	// nil unless DB_URL / REDIS_URL are set
	Operations *repository.OperationRepository
	Statuses   *repository.OperationCacheRepository
}

// NewApplication dials the node and the bundler and wires the services. Whatever was opened
// before a failure is closed again.
func NewApplication(ctx context.Context, config AppConfig) (*Application, error) {
	logger := zerolog.Ctx(ctx).With().Str("function", "NewApplication").Logger()

	app := &Application{config: config}
	fail := func(err error) (*Application, error) {
		app.Shutdown(ctx)
		return nil, err
	}

	var err error

	if app.Signer, err = erc4337.NewSigner(*config.SigningKey); err != nil {
		return fail(err)
	}

	if app.blockchain, err = service.DialBlockchainService(ctx, *config.RPCURL, config.EntryPoint); err != nil {
		return fail(err)
	}
	if app.ChainID, err = app.blockchain.ChainID(ctx); err != nil {
		return fail(err)
	}
	if app.ChainID.Cmp(config.Chain.ID) != 0 {
		logger.Warn().
			Str("chain", config.Chain.Name).
			Str("expected_chain_id", config.Chain.ID.String()).
			Str("node_chain_id", app.ChainID.String()).
			Msg("RPC node serves a different chain than configured")
	}

	if app.bundler, err = erc4337.DialBundler(ctx, *config.BundlerURL); err != nil {
		return fail(fmt.Errorf("failed to dial bundler: %w", err))
	}

	// A nil interface makes the assembler estimate gas with the bundler instead.
	var paymaster erc4337.Paymaster
	if config.UsePaymaster {
		var opts []erc4337.PaymasterOption
		if config.SponsorshipPolicyID != nil {
			opts = append(opts, erc4337.WithSponsorshipPolicy(*config.SponsorshipPolicyID))
		}
		paymaster = erc4337.NewPaymasterClient(*config.PaymasterURL, opts...)
	}

	if config.DSN != nil {
		if app.database, err = connectDatabase(ctx, *config.DSN); err != nil {
			return fail(err)
		}
		if err = MigrationUp(*config.DSN, *config.MigrationPath); err != nil {
			return fail(err)
		}
		app.Operations = repository.NewOperationRepository(app.database)
	}

	if config.RedisAddr != nil {
		if app.redis, err = connectRedis(ctx, *config.RedisAddr); err != nil {
			return fail(err)
		}
		app.Statuses = repository.NewOperationCacheRepository(app.redis)
	}

	app.Accounts = service.NewAccountService(app.blockchain, config.FactoryAddress)
	app.Assembler = service.NewAssemblerService(app.blockchain, app.bundler, paymaster, *config.GasPriceTier)
	app.Settings = service.NewSettingsService(app.blockchain, config.DATSAddress)
	app.Execution = service.NewExecutionService(app.Accounts, app.Assembler, app.bundler, app.Signer, service.ExecutionConfig{
		ChainID:      app.ChainID,
		Salt:         config.AccountSalt,
		PollInterval: config.ReceiptPollInterval,
		Timeout:      config.ReceiptTimeout,
	})

	var history service.OperationHistory
	if app.Operations != nil {
		history = app.Operations
	}
	var cache service.StatusCache
	if app.Statuses != nil {
		cache = app.Statuses
	}
	app.Execution.WithHistory(history, cache)

	logger.Info().
		Str("chain", config.Chain.Name).
		Str("chain_id", app.ChainID.String()).
		Str("entry_point", config.EntryPoint.Hex()).
		Str("entry_point_version", config.EntryPointVersion.String()).
		Str("owner", app.Signer.Address().Hex()).
		Bool("sponsored", config.UsePaymaster).
		Bool("history", app.Operations != nil).
		Bool("status_cache", app.Statuses != nil).
		Msg("application initialized")

	return app, nil
}

func (app *Application) Config() AppConfig {
	return app.config
}

func (app *Application) Bundler() erc4337.Bundler {
	return app.bundler
}

func (app *Application) Blockchain() *service.BlockchainService {
	return app.blockchain
}

func connectDatabase(ctx context.Context, dsn string) (*gorm.DB, error) {
	logger := zerolog.Ctx(ctx)

	database, err := gorm.Open(postgresDriver.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connection to database failed: %w", err)
	}

	db, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connection to database failed: %w", err)
	}

	logger.Info().Msg("Database connection established")
	return database, nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connection to redis failed: %w", err)
	}

	zerolog.Ctx(ctx).Info().Msg("Redis connection established")
	return rdb, nil
}

func (app *Application) Shutdown(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("function", "Shutdown").Logger()

	if app.bundler != nil {
		app.bundler.Close()
	}
	if app.blockchain != nil {
		app.blockchain.Close()
	}

	// Close database connection
	if app.database != nil {
		db, err := app.database.DB()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to get underlying database connection")
		} else if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		} else {
			logger.Info().Msg("Database connection closed")
		}
	}

	// Close Redis connection
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close redis connection")
		} else {
			logger.Info().Msg("Redis connection closed")
		}
	}
}

func (app *Application) RunHTTPServer(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := zerolog.Ctx(ctx).With().Str("function", "RunHTTPServer").Logger()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", *app.config.Port),
		Handler:           app.newRouter(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Msgf("HTTP server is on http://localhost:%s/api/v1/health", *app.config.Port)
		logger.Info().Msgf("Swagger UI is on http://localhost:%s/swagger/index.html", *app.config.Port)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Panic().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	logger.Info().Msg("Gracefully shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shutdown HTTP server gracefully")
	} else {
		logger.Info().Msg("HTTP server shutdown complete")
	}
}

func (app *Application) newRouter(ctx context.Context) *gin.Engine {
	// Set to release mode to disable Gin logger
	gin.SetMode(gin.ReleaseMode)

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = *app.config.AllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-API-Secret", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	ginRouter.Use(cors.New(corsConfig))

	handler.RegisterRoutes(ctx, ginRouter, app.handlers())

	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return ginRouter
}

func (app *Application) handlers() *handler.Handlers {
	config := handler.Config{
		ChainID:    app.ChainID.Int64(),
		EntryPoint: app.config.EntryPoint,
	}
	if app.config.APISecret != nil {
		config.APISecret = *app.config.APISecret
	}

	h := handler.NewHandlers(config, app.Accounts, app.Settings)
	if app.Operations != nil {
		var statuses handler.StatusFinder
		if app.Statuses != nil {
			statuses = app.Statuses
		}
		h.WithHistory(app.Operations, statuses)
	}
	return h
}
