package calldata

import (
	"github.com/ethereum/go-ethereum/common"
)

// Builders for the DATS settings contract. Each returns execute-wrapped calldata.

func SaveDDos(dats common.Address, isApprove bool, trafficScale uint8) ([]byte, error) {
	return Call(dats, DATSSaveDDos, isApprove, trafficScale)
}

func SaveSuperComputer(dats common.Address, isApprove bool, cpuValue uint8) ([]byte, error) {
	return Call(dats, DATSSaveSuperComputer, isApprove, cpuValue)
}

type CyberSecurityInput struct {
	IsApprove          bool
	WebSecurity        bool
	ServerSecurity     bool
	RansomwareResearch bool
	MalwareResearch    bool
}

func SaveCyberSecurity(dats common.Address, in CyberSecurityInput) ([]byte, error) {
	return Call(dats, DATSSaveCyberSecurity,
		in.IsApprove, in.WebSecurity, in.ServerSecurity, in.RansomwareResearch, in.MalwareResearch)
}

type VulnerabilityInput struct {
	IsApprove             bool
	WebPenetration        bool
	ServerPenetration     bool
	ScadaPenetration      bool
	BlockchainPenetration bool
	ContractPenetration   bool
}

func SaveVulnerability(dats common.Address, in VulnerabilityInput) ([]byte, error) {
	return Call(dats, DATSSaveVulnerability,
		in.IsApprove, in.WebPenetration, in.ServerPenetration, in.ScadaPenetration,
		in.BlockchainPenetration, in.ContractPenetration)
}

func SaveBlockchain(dats common.Address, approveAttackPrevention bool) ([]byte, error) {
	return Call(dats, DATSSaveBlockchain, approveAttackPrevention)
}
