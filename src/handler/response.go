package handler

import (
	"errors"
	"net/http"

	"github.com/ethaccount/dats/src/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// StandardResponse represents the standard API response format
type StandardResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// respondWithSuccess sends a successful response with the standard format
func respondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, StandardResponse{
		Code:    0,
		Message: "OK",
		Data:    data,
	})
}

// respondWithError sends an error response with the standard format
func respondWithError(c *gin.Context, err error) {
	domainErr := parseDomainError(err)

	// Use the original error message if the domain error has no client message
	message := domainErr.ClientMsg()
	if message == "" {
		message = err.Error()
	}

	response := StandardResponse{
		Code:    mapDomainErrorToCode(domainErr),
		Message: message,
	}

	if detail := domainErr.Detail(); detail != nil {
		response.Error = detail
	}

	zerolog.Ctx(c.Request.Context()).Error().
		Err(err).
		Str("function", "respondWithError").
		Int("error_code", response.Code).
		Msg(response.Message)

	_ = c.Error(err)
	c.AbortWithStatusJSON(domainErr.HTTPStatus(), response)
}

// parseDomainError extracts domain error information
func parseDomainError(err error) domain.DomainError {
	var domainError domain.DomainError
	// An empty domain.DomainError falls back to the default name and status.
	_ = errors.As(err, &domainError)
	return domainError
}

// mapDomainErrorToCode maps domain error codes to API response codes
func mapDomainErrorToCode(domainErr domain.DomainError) int {
	switch domainErr.Name() {
	case domain.ErrorCodeParameterInvalid.Name:
		return 1001
	case domain.ErrorCodeResourceNotFound.Name:
		return 1002
	case domain.ErrorCodeAuthPermissionDenied.Name:
		return 1003
	case domain.ErrorCodeAuthNotAuthenticated.Name:
		return 1004
	case domain.ErrorCodeInternalProcess.Name:
		return 1005
	case domain.ErrorCodeRemoteProcess.Name:
		return 1006
	case domain.ErrorCodePreconditionFailed.Name:
		return 1007
	case domain.ErrorCodeServiceUnavailable.Name:
		return 1008
	default:
		return 1000 // Generic error code
	}
}
