package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"
)

// EthClient is the part of ethclient.Client the services read the chain through.
type EthClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	Close()
}

// BlockchainService reads the public chain: EntryPoint nonces, counterfactual addresses,
// contract views and node fees.
type BlockchainService struct {
	client     EthClient
	entryPoint common.Address
}

func NewBlockchainService(client EthClient, entryPoint common.Address) *BlockchainService {
	return &BlockchainService{
		client:     client,
		entryPoint: entryPoint,
	}
}

func DialBlockchainService(ctx context.Context, rpcURL string, entryPoint common.Address) (*BlockchainService, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc %s: %w", rpcURL, err)
	}
	return NewBlockchainService(client, entryPoint), nil
}

// logger wraps the execution context with component info
func (b *BlockchainService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("service", "blockchain").Logger()
	return &l
}

func (b *BlockchainService) Close() {
	b.client.Close()
}

func (b *BlockchainService) EntryPoint() common.Address {
	return b.entryPoint
}

func (b *BlockchainService) ChainID(ctx context.Context) (*big.Int, error) {
	chainID, err := b.client.ChainID(ctx)
	if err != nil {
		return nil, remoteError("failed to get chain id", err)
	}
	return chainID, nil
}

// GetNonce returns the EntryPoint nonce of sender for key 0.
func (b *BlockchainService) GetNonce(ctx context.Context, sender common.Address) (*big.Int, error) {
	values, err := b.call(ctx, common.Address{}, b.entryPoint, calldata.EntryPointGetNonce, sender, big.NewInt(0))
	if err != nil {
		b.logger(ctx).Error().Err(err).
			Str("sender", sender.Hex()).
			Msg("failed to get account nonce")
		return nil, err
	}

	nonce, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getNonce result type %T", values[0])
	}

	b.logger(ctx).Debug().
		Str("sender", sender.Hex()).
		Str("nonce", nonce.String()).
		Msg("fetched account nonce")

	return nonce, nil
}

// GetSenderAddress simulates EntryPoint.getSenderAddress(initCode). The call always reverts;
// the counterfactual address is carried in the SenderAddressResult revert data.
func (b *BlockchainService) GetSenderAddress(ctx context.Context, initCode []byte) (common.Address, error) {
	data, err := calldata.GetSenderAddressCall(initCode)
	if err != nil {
		return common.Address{}, err
	}

	entryPoint := b.entryPoint
	_, err = b.client.CallContract(ctx, ethereum.CallMsg{To: &entryPoint, Data: data}, nil)
	if err == nil {
		return common.Address{}, domain.NewError(domain.ErrorCodeRemoteProcess,
			errors.New("getSenderAddress returned without reverting"))
	}

	revert, ok := revertData(err)
	if !ok {
		b.logger(ctx).Error().Err(err).Msg("getSenderAddress simulation failed without revert data")
		return common.Address{}, remoteError("failed to simulate getSenderAddress", err)
	}

	sender, decodeErr := calldata.DecodeSenderAddressResult(revert)
	if decodeErr != nil {
		b.logger(ctx).Error().Err(err).
			Str("revert_data", hexutil.Encode(revert)).
			Msg("factory rejected the simulated deployment")
		return common.Address{}, domain.NewError(domain.ErrorCodeRemoteProcess,
			fmt.Errorf("factory rejected init code: %w", decodeErr))
	}

	b.logger(ctx).Debug().
		Str("sender", sender.Hex()).
		Msg("resolved counterfactual sender")

	return sender, nil
}

// CallView runs a read-only method with msg.sender set to from and decodes its outputs.
func (b *BlockchainService) CallView(ctx context.Context, from, to common.Address, m *calldata.Method, args ...interface{}) ([]interface{}, error) {
	values, err := b.call(ctx, from, to, m, args...)
	if err != nil {
		b.logger(ctx).Error().Err(err).
			Str("method", m.Signature()).
			Str("from", from.Hex()).
			Str("to", to.Hex()).
			Msg("view call failed")
		return nil, err
	}
	return values, nil
}

func (b *BlockchainService) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	values, err := b.CallView(ctx, common.Address{}, token, calldata.ERC20BalanceOf, account)
	if err != nil {
		return nil, err
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", values[0])
	}
	return balance, nil
}

// SuggestFees derives EIP-1559 fees from the node: maxFee = baseFee*150/100 + tip.
// Chains without a base fee fall back to the legacy gas price for both fields.
func (b *BlockchainService) SuggestFees(ctx context.Context) (maxFee, tip *big.Int, err error) {
	head, err := b.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, remoteError("failed to get latest header", err)
	}

	if head.BaseFee == nil {
		gasPrice, err := b.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, nil, remoteError("failed to get gas price", err)
		}
		return gasPrice, new(big.Int).Set(gasPrice), nil
	}

	tip, err = b.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, remoteError("failed to get gas tip cap", err)
	}

	maxFee = new(big.Int).Mul(head.BaseFee, big.NewInt(150))
	maxFee.Div(maxFee, big.NewInt(100))
	maxFee.Add(maxFee, tip)

	return maxFee, tip, nil
}

func (b *BlockchainService) call(ctx context.Context, from, to common.Address, m *calldata.Method, args ...interface{}) ([]interface{}, error) {
	data, err := m.Encode(args...)
	if err != nil {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid, err)
	}

	result, err := b.client.CallContract(ctx, ethereum.CallMsg{From: from, To: &to, Data: data}, nil)
	if err != nil {
		return nil, remoteError(fmt.Sprintf("failed to call %s", m.Signature()), err)
	}

	values, err := m.DecodeOutputs(result)
	if err != nil {
		return nil, domain.NewError(domain.ErrorCodeRemoteProcess, err)
	}
	if len(values) == 0 {
		return nil, domain.NewError(domain.ErrorCodeRemoteProcess, fmt.Errorf("%s returned no values", m.Signature()))
	}
	return values, nil
}

// revertData extracts the revert payload carried by a JSON-RPC error.
func revertData(err error) ([]byte, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil, false
	}

	switch data := dataErr.ErrorData().(type) {
	case string:
		revert, decodeErr := hexutil.Decode(data)
		if decodeErr != nil || len(revert) == 0 {
			return nil, false
		}
		return revert, true
	case []byte:
		return data, len(data) > 0
	default:
		return nil, false
	}
}

func remoteError(msg string, err error) error {
	return domain.NewError(domain.ErrorCodeRemoteProcess, fmt.Errorf("%s: %w", msg, err))
}
