package domain

import "math/big"

// DeploymentState tells whether the smart account already exists on chain. It is derived
// from the EntryPoint nonce: an account that never executed an operation has nonce 0.
type DeploymentState int

const (
	NotDeployed DeploymentState = iota
	Deployed
)

func DeploymentStateFromNonce(nonce *big.Int) DeploymentState {
	if nonce == nil || nonce.Sign() == 0 {
		return NotDeployed
	}
	return Deployed
}

// NeedsInitCode reports whether the next operation must carry initCode.
func (s DeploymentState) NeedsInitCode() bool {
	return s == NotDeployed
}

func (s DeploymentState) String() string {
	switch s {
	case NotDeployed:
		return "not_deployed"
	case Deployed:
		return "deployed"
	default:
		return "unknown"
	}
}
