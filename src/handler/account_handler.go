package handler

import (
	"errors"
	"math/big"

	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
)

type AccountQuery struct {
	Owner string `form:"owner" binding:"required"`
	Salt  string `form:"salt"`
	Email string `form:"email"`
}

type AccountResponse struct {
	Owner           string `json:"owner"`
	Salt            string `json:"salt"`
	Sender          string `json:"sender"`
	InitCode        string `json:"initCode"`
	Nonce           string `json:"nonce"`
	DeploymentState string `json:"deploymentState"`
}

// GetAccount godoc
// @Summary Resolve a smart account
// @Description Counterfactual sender of (owner, salt) and whether it is deployed. email takes precedence over salt.
// @Tags account
// @Produce json
// @Param owner query string true "Owner address"
// @Param salt query string false "uint256 salt, decimal or 0x hex"
// @Param email query string false "Email packed into the salt"
// @Success 200 {object} StandardResponse{data=AccountResponse}
// @Failure 400 {object} StandardResponse
// @Failure 500 {object} StandardResponse
// @Security ApiKeyAuth
// @Router /account [get]
func (h *Handlers) GetAccount(c *gin.Context) {
	logger := h.logger(c.Request.Context(), "account").With().Str("func", "GetAccount").Logger()

	var query AccountQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("owner is required")))
		return
	}
	if !common.IsHexAddress(query.Owner) {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid,
			errors.New("owner is not a hex address"), domain.WithMsg("Invalid owner address")))
		return
	}

	salt, err := querySalt(query)
	if err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("Invalid salt")))
		return
	}

	account, err := h.accounts.Resolve(c.Request.Context(), common.HexToAddress(query.Owner), salt)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resolve account")
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, AccountResponse{
		Owner:           account.Owner.Hex(),
		Salt:            account.Salt.String(),
		Sender:          account.Sender.Hex(),
		InitCode:        hexutil.Encode(account.InitCode),
		Nonce:           account.Nonce.String(),
		DeploymentState: account.State.String(),
	})
}

func querySalt(query AccountQuery) (*big.Int, error) {
	if query.Email != "" {
		return calldata.EmailSalt(query.Email)
	}
	if query.Salt == "" {
		return big.NewInt(0), nil
	}
	return calldata.ParseSalt(query.Salt)
}
