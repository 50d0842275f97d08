package erc4337

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

var (
	addressType, _ = abi.NewType("address", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)
	bytes32Type, _ = abi.NewType("bytes32", "", nil)

	// abi.encode(userOpHash, entryPoint, chainId), shared by v0.6 and v0.7.
	finalHashArgs = abi.Arguments{
		{Type: bytes32Type},
		{Type: addressType},
		{Type: uint256Type},
	}
)

// GetUserOpHash computes the hash the EntryPoint at entryPoint expects the account to sign.
func GetUserOpHash(op *UserOperation, entryPoint common.Address, chainId *big.Int) (common.Hash, error) {
	version, err := VersionOf(entryPoint)
	if err != nil {
		return common.Hash{}, err
	}
	if chainId == nil || chainId.Sign() <= 0 {
		return common.Hash{}, fmt.Errorf("invalid chain id: %v", chainId)
	}

	switch version {
	case EntryPointV06Version:
		return getUserOpHashV06(op, entryPoint, chainId)
	case EntryPointV07Version:
		return getUserOpHashV07(op, entryPoint, chainId)
	default:
		return getUserOpHashV08(op, entryPoint, chainId)
	}
}

func getUserOpHashV06(op *UserOperation, entryPoint common.Address, chainId *big.Int) (common.Hash, error) {
	args := abi.Arguments{
		{Type: addressType}, // sender
		{Type: uint256Type}, // nonce
		{Type: bytes32Type}, // keccak(initCode)
		{Type: bytes32Type}, // keccak(callData)
		{Type: uint256Type}, // callGasLimit
		{Type: uint256Type}, // verificationGasLimit
		{Type: uint256Type}, // preVerificationGas
		{Type: uint256Type}, // maxFeePerGas
		{Type: uint256Type}, // maxPriorityFeePerGas
		{Type: bytes32Type}, // keccak(paymasterAndData)
	}

	encoded, err := args.Pack(
		op.Sender,
		bigOrZero(op.Nonce),
		crypto.Keccak256Hash(op.InitCode),
		crypto.Keccak256Hash(op.CallData),
		bigOrZero(op.CallGasLimit),
		bigOrZero(op.VerificationGasLimit),
		bigOrZero(op.PreVerificationGas),
		bigOrZero(op.MaxFeePerGas),
		bigOrZero(op.MaxPriorityFeePerGas),
		crypto.Keccak256Hash(op.PaymasterAndData),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode user operation: %w", err)
	}

	return finalHash(crypto.Keccak256Hash(encoded), entryPoint, chainId)
}

func getUserOpHashV07(op *UserOperation, entryPoint common.Address, chainId *big.Int) (common.Hash, error) {
	packed := op.pack()

	args := abi.Arguments{
		{Type: addressType}, // sender
		{Type: uint256Type}, // nonce
		{Type: bytes32Type}, // keccak(initCode)
		{Type: bytes32Type}, // keccak(callData)
		{Type: bytes32Type}, // accountGasLimits
		{Type: uint256Type}, // preVerificationGas
		{Type: bytes32Type}, // gasFees
		{Type: bytes32Type}, // keccak(paymasterAndData)
	}

	encoded, err := args.Pack(
		packed.Sender,
		packed.Nonce,
		crypto.Keccak256Hash(packed.InitCode),
		crypto.Keccak256Hash(packed.CallData),
		packed.AccountGasLimits,
		packed.PreVerificationGas,
		packed.GasFees,
		crypto.Keccak256Hash(packed.PaymasterAndData),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode user operation: %w", err)
	}

	return finalHash(crypto.Keccak256Hash(encoded), entryPoint, chainId)
}

func finalHash(opHash common.Hash, entryPoint common.Address, chainId *big.Int) (common.Hash, error) {
	encoded, err := finalHashArgs.Pack(opHash, entryPoint, chainId)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode final hash: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// getUserOpHashV08 hashes the packed operation as EIP-712 typed data.
func getUserOpHashV08(op *UserOperation, entryPoint common.Address, chainId *big.Int) (common.Hash, error) {
	packed := op.pack()

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"PackedUserOperation": {
				{Name: "sender", Type: "address"},
				{Name: "nonce", Type: "uint256"},
				{Name: "initCode", Type: "bytes"},
				{Name: "callData", Type: "bytes"},
				{Name: "accountGasLimits", Type: "bytes32"},
				{Name: "preVerificationGas", Type: "uint256"},
				{Name: "gasFees", Type: "bytes32"},
				{Name: "paymasterAndData", Type: "bytes"},
			},
		},
		PrimaryType: "PackedUserOperation",
		Domain: apitypes.TypedDataDomain{
			Name:              "ERC4337",
			Version:           "1",
			ChainId:           (*math.HexOrDecimal256)(chainId),
			VerifyingContract: entryPoint.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"sender":             packed.Sender.Hex(),
			"nonce":              packed.Nonce.String(),
			"initCode":           hexutil.Encode(packed.InitCode),
			"callData":           hexutil.Encode(packed.CallData),
			"accountGasLimits":   hexutil.Encode(packed.AccountGasLimits[:]),
			"preVerificationGas": packed.PreVerificationGas.String(),
			"gasFees":            hexutil.Encode(packed.GasFees[:]),
			"paymasterAndData":   hexutil.Encode(packed.PaymasterAndData),
		},
	}

	structHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash struct: %w", err)
	}
	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash domain: %w", err)
	}

	raw := append([]byte{0x19, 0x01}, domainSeparator...)
	raw = append(raw, structHash...)
	return crypto.Keccak256Hash(raw), nil
}
