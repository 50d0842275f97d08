package service

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethaccount/dats/erc4337"
	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	testEntryPoint = erc4337.EntryPointV06
	testFactory    = common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454")
	testDATS       = common.HexToAddress("0x2FF7940952C5F08288ace086D8dC3bdBE6F1BCCA")
	testToken      = common.HexToAddress("0x00A5Aa31fe45ef1627222b9eFEf7A05f841dC1E3")
	testOwner      = common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")
	// recorded counterfactual sender returned by the mock node
	testSender = common.HexToAddress("0x3cf6b6d1e4c2b4a4d6b1c0f0b0e6a2c9d8e7f6a5")
)

const testPrivateKey = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

// revertError mimics the JSON-RPC error a node returns for a reverted eth_call.
type revertError struct {
	data string
}

func (e *revertError) Error() string          { return "execution reverted" }
func (e *revertError) ErrorCode() int         { return 3 }
func (e *revertError) ErrorData() interface{} { return e.data }

type methodNotFoundError struct{}

func (methodNotFoundError) Error() string  { return "the method pimlico_getUserOperationGasPrice does not exist" }
func (methodNotFoundError) ErrorCode() int { return rpcMethodNotFound }

func senderAddressRevert(sender common.Address) *revertError {
	return &revertError{data: "0x6ca7b806" + common.Bytes2Hex(common.LeftPadBytes(sender.Bytes(), 32))}
}

// fakeEthClient answers contract calls by selector.
type fakeEthClient struct {
	mu       sync.Mutex
	calls    []ethereum.CallMsg
	handlers map[string]func(msg ethereum.CallMsg) ([]byte, error)

	baseFee  *big.Int
	tip      *big.Int
	gasPrice *big.Int
}

func newFakeEthClient() *fakeEthClient {
	return &fakeEthClient{handlers: make(map[string]func(ethereum.CallMsg) ([]byte, error))}
}

func (f *fakeEthClient) on(m *calldata.Method, handler func(msg ethereum.CallMsg) ([]byte, error)) *fakeEthClient {
	f.handlers[m.SelectorHex()] = handler
	return f
}

// withAccount registers a counterfactual sender and its nonce.
func (f *fakeEthClient) withAccount(sender common.Address, nonce int64) *fakeEthClient {
	f.on(calldata.EntryPointGetSenderAddress, func(ethereum.CallMsg) ([]byte, error) {
		return nil, senderAddressRevert(sender)
	})
	return f.on(calldata.EntryPointGetNonce, func(ethereum.CallMsg) ([]byte, error) {
		return calldata.EntryPointGetNonce.EncodeOutputs(big.NewInt(nonce))
	})
}

func (f *fakeEthClient) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(11155111), nil
}

func (f *fakeEthClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, msg)
	f.mu.Unlock()

	if len(msg.Data) < 4 {
		return nil, errors.New("no selector")
	}
	handler, ok := f.handlers[hexutil.Encode(msg.Data[:4])]
	if !ok {
		return nil, errors.New("unexpected call " + hexutil.Encode(msg.Data[:4]))
	}
	return handler(msg)
}

func (f *fakeEthClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1), BaseFee: f.baseFee}, nil
}

func (f *fakeEthClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return f.tip, nil
}

func (f *fakeEthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeEthClient) Close() {}

func (f *fakeEthClient) callsTo(m *calldata.Method) []ethereum.CallMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ethereum.CallMsg
	for _, call := range f.calls {
		if len(call.Data) >= 4 && bytes.Equal(call.Data[:4], m.Selector()) {
			out = append(out, call)
		}
	}
	return out
}

// fakeBundler records submissions and serves canned responses.
type fakeBundler struct {
	mu sync.Mutex

	gasPrice    *erc4337.GasPriceTiers
	gasPriceErr error
	estimates   *erc4337.GasEstimates
	sendErr     error
	receipt     *erc4337.UserOperationReceipt
	receiptErr  error

	sent      []*erc4337.UserOperation
	estimated []*erc4337.UserOperation
}

func (b *fakeBundler) ChainId(ctx context.Context) (*big.Int, error) {
	return big.NewInt(11155111), nil
}

func (b *fakeBundler) SupportedEntryPoints(ctx context.Context) ([]common.Address, error) {
	return []common.Address{testEntryPoint}, nil
}

func (b *fakeBundler) EstimateUserOperationGas(ctx context.Context, op *erc4337.UserOperation, entryPoint common.Address) (*erc4337.GasEstimates, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.estimated = append(b.estimated, op.Copy())
	if b.estimates == nil {
		return nil, errors.New("estimate failed")
	}
	return b.estimates, nil
}

func (b *fakeBundler) SendUserOperation(ctx context.Context, op *erc4337.UserOperation, entryPoint common.Address) (common.Hash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return common.Hash{}, b.sendErr
	}
	b.sent = append(b.sent, op.Copy())
	return erc4337.GetUserOpHash(op, entryPoint, big.NewInt(11155111))
}

func (b *fakeBundler) GetUserOperationReceipt(ctx context.Context, userOpHash common.Hash) (*erc4337.UserOperationReceipt, error) {
	return b.receipt, b.receiptErr
}

func (b *fakeBundler) GetUserOperationGasPrice(ctx context.Context) (*erc4337.GasPriceTiers, error) {
	if b.gasPriceErr != nil {
		return nil, b.gasPriceErr
	}
	return b.gasPrice, nil
}

func (b *fakeBundler) WaitForUserOperationReceipt(ctx context.Context, userOpHash common.Hash, pollInterval, timeout time.Duration) (*erc4337.UserOperationReceipt, error) {
	if b.receiptErr != nil {
		return nil, b.receiptErr
	}
	receipt := *b.receipt
	receipt.UserOpHash = userOpHash
	return &receipt, nil
}

func (b *fakeBundler) Close() {}

func testGasPrice() *erc4337.GasPriceTiers {
	tier := func(maxFee, tip int64) erc4337.GasPrice {
		return erc4337.GasPrice{
			MaxFeePerGas:         (*hexutil.Big)(big.NewInt(maxFee)),
			MaxPriorityFeePerGas: (*hexutil.Big)(big.NewInt(tip)),
		}
	}
	return &erc4337.GasPriceTiers{
		Slow:     tier(1_000_000_000, 100_000_000),
		Standard: tier(2_000_000_000, 200_000_000),
		Fast:     tier(3_000_000_000, 300_000_000),
	}
}

type fakePaymaster struct {
	result *erc4337.SponsorResult
	err    error
	seen   []*erc4337.UserOperation
}

func (p *fakePaymaster) SponsorUserOperation(ctx context.Context, op *erc4337.UserOperation, entryPoint common.Address) (*erc4337.SponsorResult, error) {
	p.seen = append(p.seen, op.Copy())
	return p.result, p.err
}

func testSponsorResult() *erc4337.SponsorResult {
	return &erc4337.SponsorResult{
		PaymasterAndData:     hexutil.MustDecode("0x65b8c906cf61eb52e12b0c68ae0f7d46e3386903aabbcc"),
		PreVerificationGas:   (*hexutil.Big)(big.NewInt(50_000)),
		VerificationGasLimit: (*hexutil.Big)(big.NewInt(400_000)),
		CallGasLimit:         (*hexutil.Big)(big.NewInt(100_000)),
	}
}

type fakeHistory struct {
	records map[string]*domain.OperationRecord
	results map[string]domain.OperationResult
	err     error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{
		records: make(map[string]*domain.OperationRecord),
		results: make(map[string]domain.OperationResult),
	}
}

func (h *fakeHistory) Create(ctx context.Context, record *domain.OperationRecord) error {
	if h.err != nil {
		return h.err
	}
	h.records[record.UserOpHash] = record
	return nil
}

func (h *fakeHistory) UpdateResult(ctx context.Context, userOpHash string, result domain.OperationResult) error {
	if h.err != nil {
		return h.err
	}
	h.results[userOpHash] = result
	return nil
}

type fakeStatusCache struct {
	history map[string][]domain.OperationStatus
	last    map[string]domain.OperationStatusEntry
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{
		history: make(map[string][]domain.OperationStatus),
		last:    make(map[string]domain.OperationStatusEntry),
	}
}

func (c *fakeStatusCache) SetStatus(ctx context.Context, userOpHash string, entry domain.OperationStatusEntry) error {
	c.history[userOpHash] = append(c.history[userOpHash], entry.Status)
	c.last[userOpHash] = entry
	return nil
}
