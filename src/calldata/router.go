package calldata

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Universal router command bytes.
const (
	CommandV3SwapExactIn byte = 0x00
	CommandWrapETH       byte = 0x0b
)

// Router recipient sentinels.
var (
	RecipientMsgSender   = common.HexToAddress("0x0000000000000000000000000000000000000001")
	RecipientAddressThis = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

const maxFee = 1<<24 - 1

var (
	uint256Type, _ = abi.NewType("uint256", "", nil)
	bytesType, _   = abi.NewType("bytes", "", nil)
	boolType, _    = abi.NewType("bool", "", nil)

	wrapETHArgs = abi.Arguments{
		{Name: "recipient", Type: addressType},
		{Name: "amountMin", Type: uint256Type},
	}
	v3SwapExactInArgs = abi.Arguments{
		{Name: "recipient", Type: addressType},
		{Name: "amountIn", Type: uint256Type},
		{Name: "amountOutMin", Type: uint256Type},
		{Name: "path", Type: bytesType},
		{Name: "payerIsUser", Type: boolType},
	}
)

// EncodePath builds a V3 path: token(20) ++ fee(3) ++ token(20) ++ ...
func EncodePath(tokens []common.Address, fees []uint32) ([]byte, error) {
	if len(tokens) < 2 {
		return nil, errors.New("path needs at least two tokens")
	}
	if len(fees) != len(tokens)-1 {
		return nil, fmt.Errorf("path has %d tokens but %d fees", len(tokens), len(fees))
	}

	path := make([]byte, 0, len(tokens)*common.AddressLength+len(fees)*3)
	for i, token := range tokens {
		path = append(path, token.Bytes()...)
		if i < len(fees) {
			fee := fees[i]
			if fee > maxFee {
				return nil, fmt.Errorf("fee %d does not fit in uint24", fee)
			}
			path = append(path, byte(fee>>16), byte(fee>>8), byte(fee))
		}
	}
	return path, nil
}

func WrapETHInput(recipient common.Address, amountMin *big.Int) ([]byte, error) {
	return wrapETHArgs.Pack(recipient, orZero(amountMin))
}

func V3SwapExactInInput(recipient common.Address, amountIn, amountOutMin *big.Int, path []byte, payerIsUser bool) ([]byte, error) {
	return v3SwapExactInArgs.Pack(recipient, orZero(amountIn), orZero(amountOutMin), path, payerIsUser)
}

// SwapParams describes a wrap-ETH-then-swap through a single V3 pool.
type SwapParams struct {
	Router       common.Address
	TokenIn      common.Address
	TokenOut     common.Address
	Fee          uint32
	AmountIn     *big.Int
	AmountOutMin *big.Int
	Deadline     *big.Int
}

// SwapCommands returns the router commands and their inputs: WRAP_ETH into the router
// followed by V3_SWAP_EXACT_IN paid from the router's own balance to the caller.
func SwapCommands(p SwapParams) ([]byte, [][]byte, error) {
	path, err := EncodePath([]common.Address{p.TokenIn, p.TokenOut}, []uint32{p.Fee})
	if err != nil {
		return nil, nil, err
	}
	wrap, err := WrapETHInput(RecipientAddressThis, p.AmountIn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode WRAP_ETH input: %w", err)
	}
	swap, err := V3SwapExactInInput(RecipientMsgSender, p.AmountIn, p.AmountOutMin, path, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode V3_SWAP_EXACT_IN input: %w", err)
	}
	return []byte{CommandWrapETH, CommandV3SwapExactIn}, [][]byte{wrap, swap}, nil
}

// SwapCall wraps router.execute(commands, inputs, deadline) in the account execute call.
func SwapCall(p SwapParams) ([]byte, error) {
	commands, inputs, err := SwapCommands(p)
	if err != nil {
		return nil, err
	}
	return Call(p.Router, RouterExecute, commands, inputs, orZero(p.Deadline))
}
