package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethaccount/dats/erc4337"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const rpcMethodNotFound = -32601

var gwei = decimal.New(1, 9)

// AssemblerService turns callData into an unsigned, gas-complete UserOperation.
type AssemblerService struct {
	blockchain *BlockchainService
	bundler    erc4337.Bundler
	paymaster  erc4337.Paymaster
	gasTier    string
}

// NewAssemblerService builds the assembler. paymaster may be nil, in which case gas limits
// come from the bundler's estimate and the account pays for itself.
func NewAssemblerService(blockchain *BlockchainService, bundler erc4337.Bundler, paymaster erc4337.Paymaster, gasTier string) *AssemblerService {
	return &AssemblerService{
		blockchain: blockchain,
		bundler:    bundler,
		paymaster:  paymaster,
		gasTier:    gasTier,
	}
}

// logger wraps the execution context with component info
func (a *AssemblerService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("service", "assembler").Logger()
	return &l
}

// Assemble drafts the operation for account and fills its gas and paymaster fields.
func (a *AssemblerService) Assemble(ctx context.Context, account *Account, callData []byte) (*erc4337.UserOperation, error) {
	op, err := a.Draft(ctx, account, callData)
	if err != nil {
		return nil, err
	}
	if err := a.FillGas(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

// Draft builds the operation with live fees, no paymaster and the dummy signature.
func (a *AssemblerService) Draft(ctx context.Context, account *Account, callData []byte) (*erc4337.UserOperation, error) {
	maxFee, tip, err := a.fees(ctx)
	if err != nil {
		return nil, err
	}

	op := &erc4337.UserOperation{
		Sender:               account.Sender,
		Nonce:                (*hexutil.Big)(new(big.Int).Set(account.Nonce)),
		InitCode:             account.OperationInitCode(),
		CallData:             callData,
		CallGasLimit:         (*hexutil.Big)(big.NewInt(0)),
		VerificationGasLimit: (*hexutil.Big)(big.NewInt(0)),
		PreVerificationGas:   (*hexutil.Big)(big.NewInt(0)),
		MaxFeePerGas:         (*hexutil.Big)(maxFee),
		MaxPriorityFeePerGas: (*hexutil.Big)(tip),
		PaymasterAndData:     []byte{},
		Signature:            erc4337.DummySignature,
	}

	a.logger(ctx).Debug().
		Str("sender", account.Sender.Hex()).
		Str("nonce", account.Nonce.String()).
		Str("deployment_state", account.State.String()).
		Int("init_code_len", len(op.InitCode)).
		Int("call_data_len", len(callData)).
		Msg("drafted user operation")

	return op, nil
}

// FillGas asks the paymaster to sponsor op, or the bundler to estimate it when no paymaster
// is configured. A refused sponsorship is returned as is; there is no fallback.
func (a *AssemblerService) FillGas(ctx context.Context, op *erc4337.UserOperation) error {
	entryPoint := a.blockchain.EntryPoint()

	if a.paymaster == nil {
		return a.estimate(ctx, op, entryPoint)
	}

	result, err := a.paymaster.SponsorUserOperation(ctx, op, entryPoint)
	if err != nil {
		a.logger(ctx).Error().Err(err).
			Str("sender", op.Sender.Hex()).
			Msg("paymaster refused to sponsor user operation")
		return remoteError("failed to sponsor user operation", err)
	}
	if err := result.Apply(op); err != nil {
		return remoteError("invalid sponsorship", err)
	}

	a.logger(ctx).Info().
		Str("sender", op.Sender.Hex()).
		Str("call_gas_limit", op.CallGasLimit.ToInt().String()).
		Str("verification_gas_limit", op.VerificationGasLimit.ToInt().String()).
		Str("pre_verification_gas", op.PreVerificationGas.ToInt().String()).
		Int("paymaster_and_data_len", len(op.PaymasterAndData)).
		Msg("user operation sponsored")

	return nil
}

func (a *AssemblerService) estimate(ctx context.Context, op *erc4337.UserOperation, entryPoint common.Address) error {
	estimates, err := a.bundler.EstimateUserOperationGas(ctx, op, entryPoint)
	if err != nil {
		return remoteError("failed to estimate user operation gas", err)
	}
	if estimates.CallGasLimit == nil || estimates.VerificationGasLimit == nil || estimates.PreVerificationGas == nil {
		return domain.NewError(domain.ErrorCodeRemoteProcess, errors.New("gas estimate is missing limits"))
	}

	op.CallGasLimit = estimates.CallGasLimit
	op.VerificationGasLimit = estimates.VerificationGasLimit
	op.PreVerificationGas = estimates.PreVerificationGas

	a.logger(ctx).Info().
		Str("sender", op.Sender.Hex()).
		Str("call_gas_limit", op.CallGasLimit.ToInt().String()).
		Str("verification_gas_limit", op.VerificationGasLimit.ToInt().String()).
		Str("pre_verification_gas", op.PreVerificationGas.ToInt().String()).
		Msg("user operation gas estimated")

	return nil
}

// fees prefers the bundler's gas price tiers and falls back to the node when the bundler
// does not implement pimlico_getUserOperationGasPrice.
func (a *AssemblerService) fees(ctx context.Context) (*big.Int, *big.Int, error) {
	tiers, err := a.bundler.GetUserOperationGasPrice(ctx)
	if err != nil {
		var rpcErr rpc.Error
		if !errors.As(err, &rpcErr) || rpcErr.ErrorCode() != rpcMethodNotFound {
			return nil, nil, remoteError("failed to get user operation gas price", err)
		}

		a.logger(ctx).Warn().Err(err).Msg("bundler has no gas price method, using node fees")
		maxFee, tip, err := a.blockchain.SuggestFees(ctx)
		if err != nil {
			return nil, nil, err
		}
		a.logFees(ctx, "node", maxFee, tip)
		return maxFee, tip, nil
	}

	price, err := tiers.Tier(a.gasTier)
	if err != nil {
		return nil, nil, domain.NewError(domain.ErrorCodeConfigInvalid, err)
	}
	if price.MaxFeePerGas == nil || price.MaxPriorityFeePerGas == nil {
		return nil, nil, domain.NewError(domain.ErrorCodeRemoteProcess,
			fmt.Errorf("gas price tier %q is incomplete", a.gasTier))
	}

	maxFee := new(big.Int).Set(price.MaxFeePerGas.ToInt())
	tip := new(big.Int).Set(price.MaxPriorityFeePerGas.ToInt())
	a.logFees(ctx, a.gasTier, maxFee, tip)
	return maxFee, tip, nil
}

func (a *AssemblerService) logFees(ctx context.Context, source string, maxFee, tip *big.Int) {
	a.logger(ctx).Debug().
		Str("source", source).
		Str("max_fee_per_gas", maxFee.String()).
		Str("max_fee_per_gas_gwei", ToGwei(maxFee).String()).
		Str("max_priority_fee_per_gas", tip.String()).
		Str("max_priority_fee_per_gas_gwei", ToGwei(tip).String()).
		Msg("resolved gas fees")
}

// ToGwei converts a wei amount to gwei.
func ToGwei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, 0).Div(gwei)
}
