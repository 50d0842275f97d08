package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Settings records stored by the DATS contract, one per user and category.
// Field order follows the contract's return values.

type DDoSSetting struct {
	ID           *big.Int       `json:"id" abi:"id"`
	User         common.Address `json:"user" abi:"user"`
	IsApprove    bool           `json:"isApprove" abi:"isApprove"`
	TrafficScale uint8          `json:"trafficScale" abi:"trafficScale"`
}

type SuperComputerSetting struct {
	ID        *big.Int       `json:"id" abi:"id"`
	User      common.Address `json:"user" abi:"user"`
	IsApprove bool           `json:"isApprove" abi:"isApprove"`
	CPUValue  uint8          `json:"cpuValue" abi:"cpuValue"`
}

type CyberSecuritySetting struct {
	ID                 *big.Int       `json:"id" abi:"id"`
	User               common.Address `json:"user" abi:"user"`
	IsApprove          bool           `json:"isApprove" abi:"isApprove"`
	WebSecurity        bool           `json:"webSecurity" abi:"webSecurity"`
	ServerSecurity     bool           `json:"serverSecurity" abi:"serverSecurity"`
	RansomwareResearch bool           `json:"ransomwareResearch" abi:"ransomwareResearch"`
	MalwareResearch    bool           `json:"malwareResearch" abi:"malwareResearch"`
}

type VulnerabilitySetting struct {
	ID                    *big.Int       `json:"id" abi:"id"`
	User                  common.Address `json:"user" abi:"user"`
	IsApprove             bool           `json:"isApprove" abi:"isApprove"`
	WebPenetration        bool           `json:"webPenetration" abi:"webPenetration"`
	ServerPenetration     bool           `json:"serverPenetration" abi:"serverPenetration"`
	ScadaPenetration      bool           `json:"scadaPenetration" abi:"scadaPenetration"`
	BlockchainPenetration bool           `json:"blockchainPenetration" abi:"blockchainPenetration"`
	ContractPenetration   bool           `json:"contractPenetration" abi:"contractPenetration"`
}

type BlockchainSetting struct {
	ID                      *big.Int       `json:"id" abi:"id"`
	User                    common.Address `json:"user" abi:"user"`
	ApproveAttackPrevention bool           `json:"approveAttackPrevention" abi:"approveAttackPrevention"`
}
