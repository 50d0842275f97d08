package calldata

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// ErrIntegerOutOfRange reports a value that does not fit its declared integer width. The ABI
// packer would otherwise reduce it modulo 2^256 without complaint.
var ErrIntegerOutOfRange = errors.New("integer out of range")

// CheckUint fails unless 0 <= v < 2^bits.
func CheckUint(v *big.Int, bits int) error {
	if v.Sign() < 0 {
		return fmt.Errorf("%w: negative value %s", ErrIntegerOutOfRange, v)
	}
	if v.BitLen() > bits {
		return fmt.Errorf("%w: %s overflows uint%d", ErrIntegerOutOfRange, v, bits)
	}
	return nil
}

func checkInt(v *big.Int, bits int) error {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	if v.Cmp(limit) >= 0 || v.Cmp(new(big.Int).Neg(limit)) < 0 {
		return fmt.Errorf("%w: %s overflows int%d", ErrIntegerOutOfRange, v, bits)
	}
	return nil
}

// ParseUint256 accepts a decimal or 0x-prefixed hex integer that fits a uint256.
func ParseUint256(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if err := CheckUint(n, 256); err != nil {
		return nil, err
	}
	return n, nil
}

// checkIntegerArgs validates *big.Int arguments against the declared input widths.
func (m *Method) checkIntegerArgs(args []interface{}) error {
	for i, input := range m.abi.Inputs {
		if i >= len(args) {
			break
		}
		n, ok := args[i].(*big.Int)
		if !ok || n == nil {
			continue
		}
		var err error
		switch input.Type.T {
		case abi.UintTy:
			err = CheckUint(n, input.Type.Size)
		case abi.IntTy:
			err = checkInt(n, input.Type.Size)
		}
		if err != nil {
			return fmt.Errorf("argument %d (%s %s): %w", i, input.Type.String(), input.Name, err)
		}
	}
	return nil
}

// ParseArgs converts textual arguments (CLI flags, JSON strings) into the Go values Encode
// expects. Integers accept decimal or 0x-prefixed hex.
func (m *Method) ParseArgs(raw []string) ([]interface{}, error) {
	if len(raw) != len(m.abi.Inputs) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", m.Signature(), len(m.abi.Inputs), len(raw))
	}

	args := make([]interface{}, len(raw))
	for i, input := range m.abi.Inputs {
		v, err := parseArg(input.Type, strings.TrimSpace(raw[i]))
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s %s): %w", i, input.Type.String(), input.Name, err)
		}
		args[i] = v
	}
	return args, nil
}

func parseArg(t abi.Type, s string) (interface{}, error) {
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil

	case abi.BoolTy:
		return strconv.ParseBool(s)

	case abi.UintTy:
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		if err := CheckUint(n, t.Size); err != nil {
			return nil, err
		}
		goType := t.GetType()
		if goType == bigIntType {
			return n, nil
		}
		return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil

	case abi.BytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes %q: %w", s, err)
		}
		return b, nil

	default:
		return nil, fmt.Errorf("unsupported argument type %s", t.String())
	}
}
