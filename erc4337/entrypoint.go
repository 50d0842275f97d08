package erc4337

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// EntryPointVersion identifies the ERC-4337 EntryPoint release an operation targets.
// Hashing and the bundler wire format differ between releases.
type EntryPointVersion int

const (
	EntryPointVersionUnknown EntryPointVersion = iota
	EntryPointV06Version
	EntryPointV07Version
	EntryPointV08Version
)

var (
	EntryPointV06 = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")
	EntryPointV07 = common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")
	EntryPointV08 = common.HexToAddress("0x4337084D9E255Ff0702461CF8895CE9E3b5Ff108")
)

func (v EntryPointVersion) String() string {
	switch v {
	case EntryPointV06Version:
		return "v0.6"
	case EntryPointV07Version:
		return "v0.7"
	case EntryPointV08Version:
		return "v0.8"
	default:
		return "unknown"
	}
}

// Packed reports whether the version uses the PackedUserOperation layout.
func (v EntryPointVersion) Packed() bool {
	return v == EntryPointV07Version || v == EntryPointV08Version
}

// VersionOf maps a canonical EntryPoint deployment to its version.
func VersionOf(entryPoint common.Address) (EntryPointVersion, error) {
	switch entryPoint {
	case EntryPointV06:
		return EntryPointV06Version, nil
	case EntryPointV07:
		return EntryPointV07Version, nil
	case EntryPointV08:
		return EntryPointV08Version, nil
	default:
		return EntryPointVersionUnknown, fmt.Errorf("unsupported entry point: %s", entryPoint.Hex())
	}
}
