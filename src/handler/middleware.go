package handler

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/ethaccount/dats/src/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func SetMiddlewares(ctx context.Context, ginRouter *gin.Engine) {
	ginRouter.Use(LoggerMiddleware(ctx))
}

// LoggerMiddleware attaches a request-scoped logger to the request context.
func LoggerMiddleware(ctx context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		zlog := zerolog.Ctx(ctx).With().
			Str("request_id", uuid.NewString()).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Logger()
		c.Request = c.Request.WithContext(zlog.WithContext(c.Request.Context()))
		c.Next()
	}
}

// SharedSecretMiddleware validates the X-API-Secret header
func SharedSecretMiddleware(apiSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedSecret := c.GetHeader("X-API-Secret")

		if providedSecret == "" {
			respondWithError(c, domain.NewError(
				domain.ErrorCodeAuthNotAuthenticated,
				errors.New("missing API secret header"),
				domain.WithMsg("Missing API secret"),
			))
			return
		}

		if subtle.ConstantTimeCompare([]byte(providedSecret), []byte(apiSecret)) != 1 {
			respondWithError(c, domain.NewError(
				domain.ErrorCodeAuthNotAuthenticated,
				errors.New("invalid API secret provided"),
				domain.WithMsg("Invalid API secret"),
			))
			return
		}

		c.Next()
	}
}
