package handler

import (
	"context"
	"math/big"

	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethaccount/dats/src/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type AccountResolver interface {
	Resolve(ctx context.Context, owner common.Address, salt *big.Int) (*service.Account, error)
}

type SettingsReader interface {
	Read(ctx context.Context, account common.Address, m *calldata.Method, args ...interface{}) (interface{}, error)
}

type OperationFinder interface {
	FindByHash(ctx context.Context, userOpHash string) (*domain.OperationRecord, error)
	FindBySender(ctx context.Context, sender string, limit int) ([]*domain.OperationRecord, error)
}

type StatusFinder interface {
	GetStatus(ctx context.Context, userOpHash string) (*domain.OperationStatusEntry, error)
}

type Config struct {
	ChainID    int64
	EntryPoint common.Address
	APISecret  string
}

// Handlers serves the HTTP API. History endpoints answer SERVICE_UNAVAILABLE until
// WithHistory is called.
type Handlers struct {
	accounts AccountResolver
	settings SettingsReader

	operations OperationFinder
	statuses   StatusFinder

	chainID    int64
	entryPoint common.Address
	apiSecret  string
}

func NewHandlers(config Config, accounts AccountResolver, settings SettingsReader) *Handlers {
	return &Handlers{
		accounts:   accounts,
		settings:   settings,
		chainID:    config.ChainID,
		entryPoint: config.EntryPoint,
		apiSecret:  config.APISecret,
	}
}

// WithHistory enables the operation endpoints. statuses may be nil.
func (h *Handlers) WithHistory(operations OperationFinder, statuses StatusFinder) *Handlers {
	h.operations = operations
	h.statuses = statuses
	return h
}

func (h *Handlers) logger(ctx context.Context, name string) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("handler", name).Logger()
	return &l
}

// registerValidations adds the hash32 tag: 0x-prefixed hex of exactly 32 bytes.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hash32", func(fl validator.FieldLevel) bool {
			decoded, err := hexutil.Decode(fl.Field().String())
			return err == nil && len(decoded) == common.HashLength
		})
	}
}

func RegisterRoutes(ctx context.Context, router *gin.Engine, h *Handlers) {
	registerValidations()
	SetMiddlewares(ctx, router)

	v1 := router.Group("/api/v1")
	v1.GET("/health", h.handleHealthCheck)

	api := v1.Group("")
	if h.apiSecret != "" {
		api.Use(SharedSecretMiddleware(h.apiSecret))
	}
	{
		api.GET("/account", h.GetAccount)
		api.GET("/methods", h.ListMethods)
		api.POST("/calldata", h.BuildCalldata)
		api.GET("/dats/:method", h.CallDATSView)

		api.GET("/operations", h.ListOperations)
		api.GET("/operations/:hash", h.GetOperation)
	}
}
