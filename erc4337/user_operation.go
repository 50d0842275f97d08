package erc4337

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DummySignature is a well-formed but invalid SimpleAccount signature. Bundlers and paymasters
// need a signature of realistic length to estimate verification gas.
var DummySignature = hexutil.MustDecode("0xfffffffffffffffffffffffffffffff0000000000000000000000000000000007aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1c")

// UserOperation is the ERC-4337 operation in its v0.6 field layout. Later EntryPoint versions
// derive their packed and RPC forms from it.
type UserOperation struct {
	Sender               common.Address `json:"sender"`
	Nonce                *hexutil.Big   `json:"nonce"`
	InitCode             hexutil.Bytes  `json:"initCode"`
	CallData             hexutil.Bytes  `json:"callData"`
	CallGasLimit         *hexutil.Big   `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big   `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big   `json:"preVerificationGas"`
	MaxFeePerGas         *hexutil.Big   `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big   `json:"maxPriorityFeePerGas"`
	PaymasterAndData     hexutil.Bytes  `json:"paymasterAndData"`
	Signature            hexutil.Bytes  `json:"signature"`
}

// userOperationJSON is the bundler wire shape: every field present, quantities as hex strings.
type userOperationJSON struct {
	Sender               common.Address `json:"sender"`
	Nonce                string         `json:"nonce"`
	InitCode             hexutil.Bytes  `json:"initCode"`
	CallData             hexutil.Bytes  `json:"callData"`
	CallGasLimit         string         `json:"callGasLimit"`
	VerificationGasLimit string         `json:"verificationGasLimit"`
	PreVerificationGas   string         `json:"preVerificationGas"`
	MaxFeePerGas         string         `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string         `json:"maxPriorityFeePerGas"`
	PaymasterAndData     hexutil.Bytes  `json:"paymasterAndData"`
	Signature            hexutil.Bytes  `json:"signature"`
}

// MarshalJSON writes nil quantities as 0x0 and nil byte fields as 0x.
func (uo *UserOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(userOperationJSON{
		Sender:               uo.Sender,
		Nonce:                quantity(uo.Nonce),
		InitCode:             nonNilBytes(uo.InitCode),
		CallData:             nonNilBytes(uo.CallData),
		CallGasLimit:         quantity(uo.CallGasLimit),
		VerificationGasLimit: quantity(uo.VerificationGasLimit),
		PreVerificationGas:   quantity(uo.PreVerificationGas),
		MaxFeePerGas:         quantity(uo.MaxFeePerGas),
		MaxPriorityFeePerGas: quantity(uo.MaxPriorityFeePerGas),
		PaymasterAndData:     nonNilBytes(uo.PaymasterAndData),
		Signature:            nonNilBytes(uo.Signature),
	})
}

// UnmarshalJSON accepts quantities with leading zeros, which hexutil.Big rejects.
func (uo *UserOperation) UnmarshalJSON(data []byte) error {
	var aux userOperationJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	fields := []struct {
		name string
		raw  string
		dst  **hexutil.Big
	}{
		{"nonce", aux.Nonce, &uo.Nonce},
		{"callGasLimit", aux.CallGasLimit, &uo.CallGasLimit},
		{"verificationGasLimit", aux.VerificationGasLimit, &uo.VerificationGasLimit},
		{"preVerificationGas", aux.PreVerificationGas, &uo.PreVerificationGas},
		{"maxFeePerGas", aux.MaxFeePerGas, &uo.MaxFeePerGas},
		{"maxPriorityFeePerGas", aux.MaxPriorityFeePerGas, &uo.MaxPriorityFeePerGas},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		v, err := ParseHexBig(f.raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = (*hexutil.Big)(v)
	}

	uo.Sender = aux.Sender
	uo.InitCode = aux.InitCode
	uo.CallData = aux.CallData
	uo.PaymasterAndData = aux.PaymasterAndData
	uo.Signature = aux.Signature
	return nil
}

// Copy returns a deep copy so a draft can be mutated without touching the original.
func (uo *UserOperation) Copy() *UserOperation {
	cp := *uo
	cp.Nonce = copyBig(uo.Nonce)
	cp.CallGasLimit = copyBig(uo.CallGasLimit)
	cp.VerificationGasLimit = copyBig(uo.VerificationGasLimit)
	cp.PreVerificationGas = copyBig(uo.PreVerificationGas)
	cp.MaxFeePerGas = copyBig(uo.MaxFeePerGas)
	cp.MaxPriorityFeePerGas = copyBig(uo.MaxPriorityFeePerGas)
	cp.InitCode = common.CopyBytes(uo.InitCode)
	cp.CallData = common.CopyBytes(uo.CallData)
	cp.PaymasterAndData = common.CopyBytes(uo.PaymasterAndData)
	cp.Signature = common.CopyBytes(uo.Signature)
	return &cp
}

// Factory returns the factory address encoded in the first 20 bytes of initCode.
func (uo *UserOperation) Factory() (common.Address, bool) {
	if len(uo.InitCode) < common.AddressLength {
		return common.Address{}, false
	}
	return common.BytesToAddress(uo.InitCode[:common.AddressLength]), true
}

// packedUserOp is the v0.7+ on-chain layout used for hashing.
type packedUserOp struct {
	Sender             common.Address
	Nonce              *big.Int
	InitCode           []byte
	CallData           []byte
	AccountGasLimits   [32]byte
	PreVerificationGas *big.Int
	GasFees            [32]byte
	PaymasterAndData   []byte
}

// pack folds the gas limits and fees into their 2x uint128 words. initCode and
// paymasterAndData are already concatenated in this representation.
func (uo *UserOperation) pack() packedUserOp {
	p := packedUserOp{
		Sender:             uo.Sender,
		Nonce:              bigOrZero(uo.Nonce),
		InitCode:           nonNilBytes(uo.InitCode),
		CallData:           nonNilBytes(uo.CallData),
		PreVerificationGas: bigOrZero(uo.PreVerificationGas),
		PaymasterAndData:   nonNilBytes(uo.PaymasterAndData),
	}
	bigOrZero(uo.VerificationGasLimit).FillBytes(p.AccountGasLimits[:16])
	bigOrZero(uo.CallGasLimit).FillBytes(p.AccountGasLimits[16:])
	bigOrZero(uo.MaxPriorityFeePerGas).FillBytes(p.GasFees[:16])
	bigOrZero(uo.MaxFeePerGas).FillBytes(p.GasFees[16:])
	return p
}

// UserOperationV07 is the unpacked RPC shape bundlers expect for EntryPoint v0.7 and v0.8.
type UserOperationV07 struct {
	Sender                        common.Address  `json:"sender"`
	Nonce                         *hexutil.Big    `json:"nonce"`
	Factory                       *common.Address `json:"factory,omitempty"`
	FactoryData                   hexutil.Bytes   `json:"factoryData,omitempty"`
	CallData                      hexutil.Bytes   `json:"callData"`
	CallGasLimit                  *hexutil.Big    `json:"callGasLimit"`
	VerificationGasLimit          *hexutil.Big    `json:"verificationGasLimit"`
	PreVerificationGas            *hexutil.Big    `json:"preVerificationGas"`
	MaxFeePerGas                  *hexutil.Big    `json:"maxFeePerGas"`
	MaxPriorityFeePerGas          *hexutil.Big    `json:"maxPriorityFeePerGas"`
	Paymaster                     *common.Address `json:"paymaster,omitempty"`
	PaymasterVerificationGasLimit *hexutil.Big    `json:"paymasterVerificationGasLimit,omitempty"`
	PaymasterPostOpGasLimit       *hexutil.Big    `json:"paymasterPostOpGasLimit,omitempty"`
	PaymasterData                 hexutil.Bytes   `json:"paymasterData,omitempty"`
	Signature                     hexutil.Bytes   `json:"signature"`
}

// MarshalJSON pads the nonce to 32 bytes so the 192-bit key stays visible.
func (uo *UserOperationV07) MarshalJSON() ([]byte, error) {
	type Alias UserOperationV07
	aux := struct {
		Nonce                         string  `json:"nonce"`
		CallGasLimit                  string  `json:"callGasLimit"`
		VerificationGasLimit          string  `json:"verificationGasLimit"`
		PreVerificationGas            string  `json:"preVerificationGas"`
		MaxFeePerGas                  string  `json:"maxFeePerGas"`
		MaxPriorityFeePerGas          string  `json:"maxPriorityFeePerGas"`
		PaymasterVerificationGasLimit *string `json:"paymasterVerificationGasLimit,omitempty"`
		PaymasterPostOpGasLimit       *string `json:"paymasterPostOpGasLimit,omitempty"`
		*Alias
	}{
		Nonce:                fmt.Sprintf("0x%064x", bigOrZero(uo.Nonce)),
		CallGasLimit:         quantity(uo.CallGasLimit),
		VerificationGasLimit: quantity(uo.VerificationGasLimit),
		PreVerificationGas:   quantity(uo.PreVerificationGas),
		MaxFeePerGas:         quantity(uo.MaxFeePerGas),
		MaxPriorityFeePerGas: quantity(uo.MaxPriorityFeePerGas),
		Alias:                (*Alias)(uo),
	}
	if uo.Paymaster != nil {
		v, p := quantity(uo.PaymasterVerificationGasLimit), quantity(uo.PaymasterPostOpGasLimit)
		aux.PaymasterVerificationGasLimit = &v
		aux.PaymasterPostOpGasLimit = &p
	}
	return json.Marshal(aux)
}

// ToV07 splits initCode into factory/factoryData and paymasterAndData into the paymaster
// address, its two uint128 gas limits and the trailing paymaster data.
func (uo *UserOperation) ToV07() (*UserOperationV07, error) {
	out := &UserOperationV07{
		Sender:               uo.Sender,
		Nonce:                uo.Nonce,
		CallData:             nonNilBytes(uo.CallData),
		CallGasLimit:         uo.CallGasLimit,
		VerificationGasLimit: uo.VerificationGasLimit,
		PreVerificationGas:   uo.PreVerificationGas,
		MaxFeePerGas:         uo.MaxFeePerGas,
		MaxPriorityFeePerGas: uo.MaxPriorityFeePerGas,
		Signature:            nonNilBytes(uo.Signature),
	}

	if len(uo.InitCode) > 0 {
		factory, ok := uo.Factory()
		if !ok {
			return nil, fmt.Errorf("initCode too short: %d bytes", len(uo.InitCode))
		}
		out.Factory = &factory
		out.FactoryData = common.CopyBytes(uo.InitCode[common.AddressLength:])
	}

	if len(uo.PaymasterAndData) > 0 {
		pm, verificationGas, postOpGas, data, err := UnpackPaymasterAndData(uo.PaymasterAndData)
		if err != nil {
			return nil, err
		}
		out.Paymaster = &pm
		out.PaymasterVerificationGasLimit = (*hexutil.Big)(verificationGas)
		out.PaymasterPostOpGasLimit = (*hexutil.Big)(postOpGas)
		out.PaymasterData = data
	}
	return out, nil
}

const paymasterFieldsLength = common.AddressLength + 32

// PackPaymasterAndData builds the v0.7 paymasterAndData: paymaster ++ uint128 verification gas
// ++ uint128 postOp gas ++ data.
func PackPaymasterAndData(paymaster common.Address, verificationGas, postOpGas *big.Int, data []byte) []byte {
	out := make([]byte, paymasterFieldsLength, paymasterFieldsLength+len(data))
	copy(out, paymaster.Bytes())
	orZero(verificationGas).FillBytes(out[20:36])
	orZero(postOpGas).FillBytes(out[36:52])
	return append(out, data...)
}

// UnpackPaymasterAndData is the inverse of PackPaymasterAndData.
func UnpackPaymasterAndData(b []byte) (common.Address, *big.Int, *big.Int, []byte, error) {
	if len(b) < paymasterFieldsLength {
		return common.Address{}, nil, nil, nil, fmt.Errorf("paymasterAndData too short: %d bytes", len(b))
	}
	return common.BytesToAddress(b[:20]),
		new(big.Int).SetBytes(b[20:36]),
		new(big.Int).SetBytes(b[36:52]),
		common.CopyBytes(b[52:]),
		nil
}

// ParseHexBig parses a 0x-prefixed hex quantity (leading zeros allowed) or a plain decimal.
func ParseHexBig(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0x" || s == "0X" {
		return big.NewInt(0), nil
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid quantity: %s", s)
	}
	return v, nil
}

func quantity(v *hexutil.Big) string {
	return fmt.Sprintf("0x%x", bigOrZero(v))
}

func bigOrZero(v *hexutil.Big) *big.Int {
	return orZero((*big.Int)(v))
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func copyBig(v *hexutil.Big) *hexutil.Big {
	if v == nil {
		return nil
	}
	return (*hexutil.Big)(new(big.Int).Set((*big.Int)(v)))
}

func nonNilBytes(b hexutil.Bytes) hexutil.Bytes {
	if b == nil {
		return hexutil.Bytes{}
	}
	return b
}
