package erc4337

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrReceiptTimeout is returned when no receipt shows up before the wait deadline.
var ErrReceiptTimeout = errors.New("timed out waiting for user operation receipt")

type GasEstimates struct {
	PreVerificationGas            *hexutil.Big `json:"preVerificationGas"`
	VerificationGasLimit          *hexutil.Big `json:"verificationGasLimit"`
	CallGasLimit                  *hexutil.Big `json:"callGasLimit"`
	PaymasterVerificationGasLimit *hexutil.Big `json:"paymasterVerificationGasLimit,omitempty"`
	PaymasterPostOpGasLimit       *hexutil.Big `json:"paymasterPostOpGasLimit,omitempty"`
}

// GasPrice is one fee tier returned by pimlico_getUserOperationGasPrice.
type GasPrice struct {
	MaxFeePerGas         *hexutil.Big `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big `json:"maxPriorityFeePerGas"`
}

type GasPriceTiers struct {
	Slow     GasPrice `json:"slow"`
	Standard GasPrice `json:"standard"`
	Fast     GasPrice `json:"fast"`
}

// Tier selects slow, standard or fast; anything else is an error.
func (t *GasPriceTiers) Tier(name string) (GasPrice, error) {
	switch name {
	case "slow":
		return t.Slow, nil
	case "standard":
		return t.Standard, nil
	case "fast":
		return t.Fast, nil
	default:
		return GasPrice{}, fmt.Errorf("unknown gas price tier: %q", name)
	}
}

type TransactionReceipt struct {
	BlockHash         common.Hash    `json:"blockHash"`
	BlockNumber       *hexutil.Big   `json:"blockNumber"`
	From              common.Address `json:"from"`
	CumulativeGasUsed *hexutil.Big   `json:"cumulativeGasUsed"`
	GasUsed           *hexutil.Big   `json:"gasUsed"`
	Logs              []*types.Log   `json:"logs"`
	TransactionHash   common.Hash    `json:"transactionHash"`
	TransactionIndex  *hexutil.Big   `json:"transactionIndex"`
	EffectiveGasPrice *hexutil.Big   `json:"effectiveGasPrice"`
}

type UserOperationReceipt struct {
	UserOpHash    common.Hash         `json:"userOpHash"`
	EntryPoint    common.Address      `json:"entryPoint"`
	Sender        common.Address      `json:"sender"`
	Paymaster     common.Address      `json:"paymaster"`
	Nonce         *hexutil.Big        `json:"nonce"`
	Success       bool                `json:"success"`
	Reason        string              `json:"reason,omitempty"`
	ActualGasCost *hexutil.Big        `json:"actualGasCost"`
	ActualGasUsed *hexutil.Big        `json:"actualGasUsed"`
	Receipt       *TransactionReceipt `json:"receipt"`
	Logs          []*types.Log        `json:"logs"`
}

// TxHash is the hash of the bundle transaction that included the operation.
func (r *UserOperationReceipt) TxHash() common.Hash {
	if r.Receipt == nil {
		return common.Hash{}
	}
	return r.Receipt.TransactionHash
}

type Bundler interface {
	ChainId(ctx context.Context) (*big.Int, error)
	SupportedEntryPoints(ctx context.Context) ([]common.Address, error)
	EstimateUserOperationGas(ctx context.Context, op *UserOperation, entryPoint common.Address) (*GasEstimates, error)
	SendUserOperation(ctx context.Context, op *UserOperation, entryPoint common.Address) (common.Hash, error)
	GetUserOperationReceipt(ctx context.Context, userOpHash common.Hash) (*UserOperationReceipt, error)
	GetUserOperationGasPrice(ctx context.Context) (*GasPriceTiers, error)
	WaitForUserOperationReceipt(ctx context.Context, userOpHash common.Hash, pollInterval, timeout time.Duration) (*UserOperationReceipt, error)
	Close()
}

type BundlerClient struct {
	client *rpc.Client
}

func DialBundler(ctx context.Context, rawurl string) (*BundlerClient, error) {
	c, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return NewBundlerClient(c), nil
}

func NewBundlerClient(c *rpc.Client) *BundlerClient {
	return &BundlerClient{c}
}

func (b *BundlerClient) Close() {
	b.client.Close()
}

func (b *BundlerClient) ChainId(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := b.client.CallContext(ctx, &result, "eth_chainId"); err != nil {
		return nil, err
	}
	return (*big.Int)(&result), nil
}

func (b *BundlerClient) SupportedEntryPoints(ctx context.Context) ([]common.Address, error) {
	var result []common.Address
	if err := b.client.CallContext(ctx, &result, "eth_supportedEntryPoints"); err != nil {
		return nil, err
	}
	return result, nil
}

func (b *BundlerClient) EstimateUserOperationGas(ctx context.Context, op *UserOperation, entryPoint common.Address) (*GasEstimates, error) {
	payload, err := WireFormat(op, entryPoint)
	if err != nil {
		return nil, err
	}
	var estimate GasEstimates
	if err := b.client.CallContext(ctx, &estimate, "eth_estimateUserOperationGas", payload, entryPoint); err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (b *BundlerClient) SendUserOperation(ctx context.Context, op *UserOperation, entryPoint common.Address) (common.Hash, error) {
	payload, err := WireFormat(op, entryPoint)
	if err != nil {
		return common.Hash{}, err
	}
	var result common.Hash
	err = b.client.CallContext(ctx, &result, "eth_sendUserOperation", payload, entryPoint)
	return result, err
}

// GetUserOperationReceipt returns nil without error while the operation is still pending.
func (b *BundlerClient) GetUserOperationReceipt(ctx context.Context, userOpHash common.Hash) (*UserOperationReceipt, error) {
	var receipt *UserOperationReceipt
	if err := b.client.CallContext(ctx, &receipt, "eth_getUserOperationReceipt", userOpHash); err != nil {
		return nil, err
	}
	return receipt, nil
}

func (b *BundlerClient) GetUserOperationGasPrice(ctx context.Context) (*GasPriceTiers, error) {
	var tiers GasPriceTiers
	if err := b.client.CallContext(ctx, &tiers, "pimlico_getUserOperationGasPrice"); err != nil {
		return nil, err
	}
	return &tiers, nil
}

// WaitForUserOperationReceipt polls every pollInterval until a receipt is returned, the
// timeout elapses, or ctx is done. Transient RPC errors keep the loop going.
func (b *BundlerClient) WaitForUserOperationReceipt(ctx context.Context, userOpHash common.Hash, pollInterval, timeout time.Duration) (*UserOperationReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		receipt, err := b.GetUserOperationReceipt(ctx, userOpHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, ctx.Err()
			}
			if lastErr != nil && !errors.Is(lastErr, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s (last error: %v)", ErrReceiptTimeout, userOpHash.Hex(), lastErr)
			}
			return nil, fmt.Errorf("%w: %s", ErrReceiptTimeout, userOpHash.Hex())
		case <-ticker.C:
		}
	}
}

// WireFormat returns the JSON-RPC representation of op for the given entry point.
func WireFormat(op *UserOperation, entryPoint common.Address) (interface{}, error) {
	version, err := VersionOf(entryPoint)
	if err != nil {
		return nil, err
	}
	if version.Packed() {
		return op.ToV07()
	}
	return op, nil
}
