package calldata

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultMintAmount is what the test token faucet mints per call.
var DefaultMintAmount = big.NewInt(32000000)

func MintCall(token, to common.Address, amount *big.Int) ([]byte, error) {
	return Call(token, ERC20Mint, to, orZero(amount))
}

func ApproveCall(token, spender common.Address, amount *big.Int) ([]byte, error) {
	return Call(token, ERC20Approve, spender, orZero(amount))
}
