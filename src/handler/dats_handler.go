package handler

import (
	"errors"
	"fmt"

	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

type DATSViewQuery struct {
	Account string   `form:"account" binding:"required"`
	Args    []string `form:"args"`
}

// DATSViewResponse carries a settings record, a list of records or a count.
type DATSViewResponse struct {
	Method  string      `json:"method"`
	Account string      `json:"account"`
	Result  interface{} `json:"result"`
}

// CallDATSView godoc
// @Summary Read DATS settings
// @Description Call a DATS view method from account. The contract keys records by msg.sender.
// @Tags dats
// @Produce json
// @Param method path string true "View method name"
// @Param account query string true "Account the call is made from"
// @Param args query []string false "Method arguments" collectionFormat(multi)
// @Success 200 {object} StandardResponse{data=DATSViewResponse}
// @Failure 400 {object} StandardResponse
// @Failure 404 {object} StandardResponse
// @Failure 500 {object} StandardResponse
// @Security ApiKeyAuth
// @Router /dats/{method} [get]
func (h *Handlers) CallDATSView(c *gin.Context) {
	logger := h.logger(c.Request.Context(), "dats").With().Str("func", "CallDATSView").Logger()

	m, err := calldata.Lookup(calldata.ContractDATS, c.Param("method"))
	if err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeResourceNotFound, err))
		return
	}
	if !m.View {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid,
			fmt.Errorf("%s is not a view method", m.Name),
			domain.WithMsg("Only view methods can be called")))
		return
	}

	var query DATSViewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("account is required")))
		return
	}
	if !common.IsHexAddress(query.Account) {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid,
			errors.New("account is not a hex address"), domain.WithMsg("Invalid account address")))
		return
	}

	args, err := m.ParseArgs(query.Args)
	if err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err))
		return
	}

	account := common.HexToAddress(query.Account)
	result, err := h.settings.Read(c.Request.Context(), account, m, args...)
	if err != nil {
		logger.Error().Err(err).Str("method", m.Signature()).Msg("view call failed")
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, DATSViewResponse{
		Method:  m.Signature(),
		Account: account.Hex(),
		Result:  result,
	})
}
