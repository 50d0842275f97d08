package calldata

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var addressType, _ = abi.NewType("address", "", nil)

// SenderAddressResult is the custom error EntryPoint.getSenderAddress reverts with.
var SenderAddressResult = abi.NewError("SenderAddressResult", abi.Arguments{{Name: "sender", Type: addressType}})

var ErrNotSenderAddressResult = errors.New("revert data is not SenderAddressResult")

// EmailSalt turns an email into a salt by reading its UTF-8 bytes as a big-endian integer.
func EmailSalt(email string) (*big.Int, error) {
	if email == "" {
		return nil, errors.New("email must not be empty")
	}
	if len(email) > 32 {
		return nil, fmt.Errorf("%w: email is %d bytes, a uint256 salt holds at most 32", ErrIntegerOutOfRange, len(email))
	}
	return new(big.Int).SetBytes([]byte(email)), nil
}

// ParseSalt accepts a decimal or 0x-prefixed hex integer that fits a uint256.
func ParseSalt(s string) (*big.Int, error) {
	salt, err := ParseUint256(s)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	return salt, nil
}

// InitCode is factory ++ createAccount(owner, salt).
func InitCode(factory, owner common.Address, salt *big.Int) ([]byte, error) {
	create, err := FactoryCreateAccount.Encode(owner, orZero(salt))
	if err != nil {
		return nil, err
	}
	return append(factory.Bytes(), create...), nil
}

// CreateAccountCall has the account call the factory directly.
func CreateAccountCall(factory, owner common.Address, salt *big.Int) ([]byte, error) {
	return Call(factory, FactoryCreateAccount, owner, orZero(salt))
}

// GetSenderAddressCall is the raw EntryPoint.getSenderAddress(initCode) call, not wrapped.
func GetSenderAddressCall(initCode []byte) ([]byte, error) {
	return EntryPointGetSenderAddress.Encode(initCode)
}

// DecodeSenderAddressResult extracts the address from a SenderAddressResult revert.
func DecodeSenderAddressResult(revert []byte) (common.Address, error) {
	if len(revert) < 4 || !bytes.Equal(revert[:4], SenderAddressResult.ID[:4]) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrNotSenderAddressResult, hexutil.Encode(revert))
	}
	values, err := SenderAddressResult.Inputs.Unpack(revert[4:])
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to decode SenderAddressResult: %w", err)
	}
	sender, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected sender type %T", values[0])
	}
	return sender, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
