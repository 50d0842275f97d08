package erc4337

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-resty/resty/v2"
)

// SponsorResult carries the fields a verifying paymaster fills in. v0.6 paymasters return
// paymasterAndData directly; v0.7 paymasters return the split paymaster fields.
type SponsorResult struct {
	PaymasterAndData              hexutil.Bytes   `json:"paymasterAndData"`
	Paymaster                     *common.Address `json:"paymaster"`
	PaymasterData                 hexutil.Bytes   `json:"paymasterData"`
	PaymasterVerificationGasLimit *hexutil.Big    `json:"paymasterVerificationGasLimit"`
	PaymasterPostOpGasLimit       *hexutil.Big    `json:"paymasterPostOpGasLimit"`
	PreVerificationGas            *hexutil.Big    `json:"preVerificationGas"`
	VerificationGasLimit          *hexutil.Big    `json:"verificationGasLimit"`
	CallGasLimit                  *hexutil.Big    `json:"callGasLimit"`
}

// Apply copies the sponsored gas limits and paymaster data onto op.
func (r *SponsorResult) Apply(op *UserOperation) error {
	if r.PreVerificationGas == nil || r.VerificationGasLimit == nil || r.CallGasLimit == nil {
		return fmt.Errorf("sponsor result is missing gas limits")
	}
	op.PreVerificationGas = r.PreVerificationGas
	op.VerificationGasLimit = r.VerificationGasLimit
	op.CallGasLimit = r.CallGasLimit

	switch {
	case len(r.PaymasterAndData) > 0:
		op.PaymasterAndData = r.PaymasterAndData
	case r.Paymaster != nil:
		op.PaymasterAndData = PackPaymasterAndData(*r.Paymaster,
			bigOrZero(r.PaymasterVerificationGasLimit),
			bigOrZero(r.PaymasterPostOpGasLimit),
			r.PaymasterData)
	default:
		return fmt.Errorf("sponsor result has no paymaster data")
	}
	return nil
}

type Paymaster interface {
	SponsorUserOperation(ctx context.Context, op *UserOperation, entryPoint common.Address) (*SponsorResult, error)
}

// RPCError is a JSON-RPC error object returned by the paymaster.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("paymaster rpc error %d: %s (%s)", e.Code, e.Message, string(e.Data))
	}
	return fmt.Sprintf("paymaster rpc error %d: %s", e.Code, e.Message)
}

type jsonrpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// PaymasterClient talks to a hosted paymaster (Pimlico's v2 API) over plain HTTP JSON-RPC.
type PaymasterClient struct {
	url      string
	http     *resty.Client
	policyID string
	nextID   atomic.Uint64
}

type PaymasterOption func(*PaymasterClient)

// WithSponsorshipPolicy attaches a sponsorship policy id to every sponsor request.
func WithSponsorshipPolicy(id string) PaymasterOption {
	return func(p *PaymasterClient) { p.policyID = id }
}

func NewPaymasterClient(url string, opts ...PaymasterOption) *PaymasterClient {
	p := &PaymasterClient{
		url:  url,
		http: resty.New().SetTimeout(30 * time.Second).SetHeader("Content-Type", "application/json"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PaymasterClient) SponsorUserOperation(ctx context.Context, op *UserOperation, entryPoint common.Address) (*SponsorResult, error) {
	payload, err := WireFormat(op, entryPoint)
	if err != nil {
		return nil, err
	}
	params := []interface{}{payload, entryPoint}
	if p.policyID != "" {
		params = append(params, map[string]string{"sponsorshipPolicyId": p.policyID})
	}

	var result SponsorResult
	if err := p.call(ctx, &result, "pm_sponsorUserOperation", params...); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *PaymasterClient) call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	req := jsonrpcRequest{
		JSONRPC: "2.0",
		ID:      p.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	var resp jsonrpcResponse
	res, err := p.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if res.IsError() {
		return fmt.Errorf("%s request failed with http status %d", method, res.StatusCode())
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return fmt.Errorf("%s returned an empty result", method)
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}
