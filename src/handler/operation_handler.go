package handler

import (
	"errors"

	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

var errHistoryDisabled = domain.NewError(domain.ErrorCodeServiceUnavailable,
	errors.New("operation history is not configured"),
	domain.WithMsg("Operation history is not enabled on this server"))

type OperationURI struct {
	Hash string `uri:"hash" binding:"required,hash32"`
}

type OperationResponse struct {
	Record *domain.OperationRecord      `json:"record,omitempty"`
	Live   *domain.OperationStatusEntry `json:"live,omitempty"`
}

// GetOperation godoc
// @Summary Get a user operation
// @Description Stored record and cached live status of a user operation. Either half may be missing: the cached status expires and the record is written best effort.
// @Tags operations
// @Produce json
// @Param hash path string true "User operation hash"
// @Success 200 {object} StandardResponse{data=OperationResponse}
// @Failure 400 {object} StandardResponse
// @Failure 404 {object} StandardResponse
// @Failure 503 {object} StandardResponse
// @Security ApiKeyAuth
// @Router /operations/{hash} [get]
func (h *Handlers) GetOperation(c *gin.Context) {
	if h.operations == nil {
		respondWithError(c, errHistoryDisabled)
		return
	}
	logger := h.logger(c.Request.Context(), "operation").With().Str("func", "GetOperation").Logger()

	var uri OperationURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err,
			domain.WithMsg("Invalid user operation hash")))
		return
	}
	hash := common.HexToHash(uri.Hash).Hex()

	var response OperationResponse

	record, err := h.operations.FindByHash(c.Request.Context(), hash)
	switch {
	case err == nil:
		response.Record = record
	case !domain.HasCode(err, domain.ErrorCodeResourceNotFound):
		respondWithError(c, err)
		return
	}

	if h.statuses != nil {
		entry, err := h.statuses.GetStatus(c.Request.Context(), hash)
		switch {
		case err == nil:
			response.Live = entry
		case !domain.HasCode(err, domain.ErrorCodeResourceNotFound):
			logger.Warn().Err(err).Str("user_op_hash", hash).Msg("failed to read cached status")
		}
	}

	if response.Record == nil && response.Live == nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeResourceNotFound,
			errors.New("no record or cached status for "+hash), domain.WithMsg("user operation not found")))
		return
	}

	respondWithSuccess(c, response)
}

type OperationsQuery struct {
	Sender string `form:"sender" binding:"required"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

// ListOperations godoc
// @Summary List user operations
// @Description Stored operations of a sender, newest first
// @Tags operations
// @Produce json
// @Param sender query string true "Sender address"
// @Param limit query int false "Maximum records, 1 to 200"
// @Success 200 {object} StandardResponse{data=[]domain.OperationRecord}
// @Failure 400 {object} StandardResponse
// @Failure 503 {object} StandardResponse
// @Security ApiKeyAuth
// @Router /operations [get]
func (h *Handlers) ListOperations(c *gin.Context) {
	if h.operations == nil {
		respondWithError(c, errHistoryDisabled)
		return
	}

	var query OperationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("Invalid query parameters")))
		return
	}
	if !common.IsHexAddress(query.Sender) {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid,
			errors.New("sender is not a hex address"), domain.WithMsg("Invalid sender address")))
		return
	}

	records, err := h.operations.FindBySender(c.Request.Context(), common.HexToAddress(query.Sender).Hex(), query.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if records == nil {
		records = []*domain.OperationRecord{}
	}

	respondWithSuccess(c, records)
}
