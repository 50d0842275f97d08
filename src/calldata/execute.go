package calldata

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// WrapExecute encodes execute(dest, value, inner) for the smart account.
func WrapExecute(dest common.Address, value *big.Int, inner []byte) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	if inner == nil {
		inner = []byte{}
	}
	return AccountExecute.Encode(dest, value, inner)
}

// UnwrapExecute is the inverse of WrapExecute.
func UnwrapExecute(callData []byte) (common.Address, *big.Int, []byte, error) {
	values, err := AccountExecute.DecodeInputs(callData)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	dest, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, nil, nil, fmt.Errorf("unexpected dest type %T", values[0])
	}
	value, ok := values[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, nil, fmt.Errorf("unexpected value type %T", values[1])
	}
	inner, ok := values[2].([]byte)
	if !ok {
		return common.Address{}, nil, nil, fmt.Errorf("unexpected func type %T", values[2])
	}
	return dest, value, inner, nil
}

// Call encodes m with args and wraps it in execute(target, 0, inner).
func Call(target common.Address, m *Method, args ...interface{}) ([]byte, error) {
	inner, err := m.Encode(args...)
	if err != nil {
		return nil, err
	}
	return WrapExecute(target, big.NewInt(0), inner)
}
