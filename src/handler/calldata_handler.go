package handler

import (
	"errors"
	"fmt"

	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type MethodInfo struct {
	Contract  string           `json:"contract"`
	Name      string           `json:"name"`
	Signature string           `json:"signature"`
	Selector  string           `json:"selector"`
	View      bool             `json:"view"`
	Inputs    []calldata.Param `json:"inputs"`
	Outputs   []calldata.Param `json:"outputs"`
}

func toMethodInfo(m *calldata.Method) MethodInfo {
	return MethodInfo{
		Contract:  m.Contract,
		Name:      m.Name,
		Signature: m.Signature(),
		Selector:  m.SelectorHex(),
		View:      m.View,
		Inputs:    m.Inputs,
		Outputs:   m.Outputs,
	}
}

// ListMethods godoc
// @Summary List encodable methods
// @Description Every method in the calldata table, optionally filtered by contract
// @Tags calldata
// @Produce json
// @Param contract query string false "Contract name"
// @Success 200 {object} StandardResponse{data=[]MethodInfo}
// @Failure 400 {object} StandardResponse
// @Security ApiKeyAuth
// @Router /methods [get]
func (h *Handlers) ListMethods(c *gin.Context) {
	methods := calldata.Methods
	if contract := c.Query("contract"); contract != "" {
		if !lo.Contains(calldata.Contracts(), contract) {
			respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid,
				fmt.Errorf("unknown contract %q", contract),
				domain.WithDetail(map[string]interface{}{"contracts": calldata.Contracts()})))
			return
		}
		methods = calldata.ByContract(contract)
	}

	respondWithSuccess(c, lo.Map(methods, func(m *calldata.Method, _ int) MethodInfo {
		return toMethodInfo(m)
	}))
}

type CalldataRequest struct {
	Contract string   `json:"contract" binding:"required"`
	Method   string   `json:"method" binding:"required"`
	Target   string   `json:"target" binding:"required"`
	Args     []string `json:"args"`
}

type CalldataResponse struct {
	Signature     string `json:"signature"`
	Selector      string `json:"selector"`
	Target        string `json:"target"`
	InnerCallData string `json:"innerCallData"`
	CallData      string `json:"callData"`
}

// BuildCalldata godoc
// @Summary Build account calldata
// @Description Encode method(args) and wrap it in the account execute(target, 0, data) call
// @Tags calldata
// @Accept json
// @Produce json
// @Param request body CalldataRequest true "Method and arguments"
// @Success 200 {object} StandardResponse{data=CalldataResponse}
// @Failure 400 {object} StandardResponse
// @Failure 404 {object} StandardResponse
// @Security ApiKeyAuth
// @Router /calldata [post]
func (h *Handlers) BuildCalldata(c *gin.Context) {
	logger := h.logger(c.Request.Context(), "calldata").With().Str("func", "BuildCalldata").Logger()

	var req CalldataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("Invalid request payload")))
		return
	}
	if !common.IsHexAddress(req.Target) {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid,
			errors.New("target is not a hex address"), domain.WithMsg("Invalid target address")))
		return
	}

	m, err := calldata.Lookup(req.Contract, req.Method)
	if err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeResourceNotFound, err))
		return
	}

	args, err := m.ParseArgs(req.Args)
	if err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err))
		return
	}

	inner, err := m.Encode(args...)
	if err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err))
		return
	}
	target := common.HexToAddress(req.Target)
	wrapped, err := calldata.WrapExecute(target, nil, inner)
	if err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeInternalProcess, err))
		return
	}

	logger.Debug().
		Str("method", m.Signature()).
		Str("target", target.Hex()).
		Msg("built calldata")

	respondWithSuccess(c, CalldataResponse{
		Signature:     m.Signature(),
		Selector:      m.SelectorHex(),
		Target:        target.Hex(),
		InnerCallData: hexutil.Encode(inner),
		CallData:      hexutil.Encode(wrapped),
	})
}
