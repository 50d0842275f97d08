package calldata

import (
	"fmt"

	"github.com/samber/lo"
)

const (
	ContractAccount    = "account"
	ContractFactory    = "factory"
	ContractEntryPoint = "entrypoint"
	ContractERC20      = "erc20"
	ContractRouter     = "router"
	ContractDATS       = "dats"
)

func param(name, typ string) Param {
	return Param{Name: name, Type: typ}
}

func tupleArray(name string, components []Param) Param {
	return Param{Name: name, Type: "tuple[]", Components: components}
}

// SimpleAccount and SimpleAccountFactory.
var (
	AccountExecute = MustMethod(ContractAccount, "execute", false,
		[]Param{param("dest", "address"), param("value", "uint256"), param("func", "bytes")},
		nil)

	FactoryCreateAccount = MustMethod(ContractFactory, "createAccount", false,
		[]Param{param("owner", "address"), param("salt", "uint256")},
		[]Param{param("ret", "address")})

	FactoryGetAddress = MustMethod(ContractFactory, "getAddress", true,
		[]Param{param("owner", "address"), param("salt", "uint256")},
		[]Param{param("", "address")})
)

// EntryPoint reads used while assembling an operation.
var (
	EntryPointGetNonce = MustMethod(ContractEntryPoint, "getNonce", true,
		[]Param{param("sender", "address"), param("key", "uint192")},
		[]Param{param("nonce", "uint256")})

	// getSenderAddress always reverts with SenderAddressResult(address).
	EntryPointGetSenderAddress = MustMethod(ContractEntryPoint, "getSenderAddress", false,
		[]Param{param("initCode", "bytes")},
		nil)
)

var (
	ERC20BalanceOf = MustMethod(ContractERC20, "balanceOf", true,
		[]Param{param("account", "address")},
		[]Param{param("", "uint256")})

	ERC20Mint = MustMethod(ContractERC20, "mint", false,
		[]Param{param("to", "address"), param("amount", "uint256")},
		nil)

	ERC20Approve = MustMethod(ContractERC20, "approve", false,
		[]Param{param("spender", "address"), param("amount", "uint256")},
		[]Param{param("", "bool")})
)

var RouterExecute = MustMethod(ContractRouter, "execute", false,
	[]Param{param("commands", "bytes"), param("inputs", "bytes[]"), param("deadline", "uint256")},
	nil)

// DATS settings contract. Every record starts with (id, user, isApprove).
var (
	ddosFields = []Param{
		param("id", "uint256"),
		param("user", "address"),
		param("isApprove", "bool"),
		param("trafficScale", "uint8"),
	}
	superComputerFields = []Param{
		param("id", "uint256"),
		param("user", "address"),
		param("isApprove", "bool"),
		param("cpuValue", "uint8"),
	}
	cyberSecurityFields = []Param{
		param("id", "uint256"),
		param("user", "address"),
		param("isApprove", "bool"),
		param("webSecurity", "bool"),
		param("serverSecurity", "bool"),
		param("ransomwareResearch", "bool"),
		param("malwareResearch", "bool"),
	}
	vulnerabilityFields = []Param{
		param("id", "uint256"),
		param("user", "address"),
		param("isApprove", "bool"),
		param("webPenetration", "bool"),
		param("serverPenetration", "bool"),
		param("scadaPenetration", "bool"),
		param("blockchainPenetration", "bool"),
		param("contractPenetration", "bool"),
	}
	blockchainFields = []Param{
		param("id", "uint256"),
		param("user", "address"),
		param("approveAttackPrevention", "bool"),
	}
	countOutput = []Param{param("", "uint256")}
)

var (
	DATSGetAllUserDDosSettings = MustMethod(ContractDATS, "getAllUserDDosSettings", true, nil, []Param{tupleArray("settings", ddosFields)})
	DATSSaveDDos               = MustMethod(ContractDATS, "saveDDos", false, []Param{param("_isApprove", "bool"), param("_trafficScale", "uint8")}, nil)
	DATSGetDDos                = MustMethod(ContractDATS, "getDDos", true, nil, ddosFields)
	DATSGetDDosByUser          = MustMethod(ContractDATS, "getDDosByUser", true, []Param{param("_user", "address")}, ddosFields)
	DATSGetDDosCount           = MustMethod(ContractDATS, "getDDosCount", true, nil, countOutput)

	DATSGetAllUserSuperComputerSettings = MustMethod(ContractDATS, "getAllUserSuperComputerSettings", true, nil, []Param{tupleArray("settings", superComputerFields)})
	DATSSaveSuperComputer               = MustMethod(ContractDATS, "saveSuperComputer", false, []Param{param("_isApprove", "bool"), param("_cpuValue", "uint8")}, nil)
	DATSGetSuperComputer                = MustMethod(ContractDATS, "getSuperComputer", true, nil, superComputerFields)
	DATSGetSuperComputerByUser          = MustMethod(ContractDATS, "getSuperComputerByUser", true, []Param{param("_user", "address")}, superComputerFields)
	DATSGetSuperComputerCount           = MustMethod(ContractDATS, "getSuperComputerCount", true, nil, countOutput)

	DATSGetAllUserCyberSecuritySettings = MustMethod(ContractDATS, "getAllUserCyberSecuritySettings", true, nil, []Param{tupleArray("settings", cyberSecurityFields)})
	DATSSaveCyberSecurity               = MustMethod(ContractDATS, "saveCyberSecurity", false, []Param{
		param("_isApprove", "bool"),
		param("_webSecurity", "bool"),
		param("_serverSecurity", "bool"),
		param("_ransomwareResearch", "bool"),
		param("_malwareResearch", "bool"),
	}, nil)
	DATSGetCyberSecurity      = MustMethod(ContractDATS, "getCyberSecurity", true, nil, cyberSecurityFields)
	DATSGetCyberSecurityCount = MustMethod(ContractDATS, "getCyberSecurityCount", true, nil, countOutput)

	DATSGetAllUserVulnerabilitySettings = MustMethod(ContractDATS, "getAllUserVulnerabilitySettings", true, nil, []Param{tupleArray("settings", vulnerabilityFields)})
	DATSSaveVulnerability               = MustMethod(ContractDATS, "saveVulnerability", false, []Param{
		param("_isApprove", "bool"),
		param("_webPenetration", "bool"),
		param("_serverPenetration", "bool"),
		param("_scadaPenetration", "bool"),
		param("_blockchainPenetration", "bool"),
		param("_contractPenetration", "bool"),
	}, nil)
	DATSGetVulnerability      = MustMethod(ContractDATS, "getVulnerability", true, nil, vulnerabilityFields)
	DATSGetVulnerabilityCount = MustMethod(ContractDATS, "getVulnerabilityCount", true, nil, countOutput)

	DATSGetAllUserBlockchainSettings = MustMethod(ContractDATS, "getAllUserBlockchainSettings", true, nil, []Param{tupleArray("settings", blockchainFields)})
	DATSSaveBlockchain               = MustMethod(ContractDATS, "saveBlockchain", false, []Param{param("_approveAttackPrevention", "bool")}, nil)
	DATSGetBlockchain                = MustMethod(ContractDATS, "getBlockchain", true, nil, blockchainFields)
	DATSGetBlockchainCount           = MustMethod(ContractDATS, "getBlockchainCount", true, nil, countOutput)
)

// Methods is the closed set of contract methods this module knows how to encode.
var Methods = []*Method{
	AccountExecute,
	FactoryCreateAccount,
	FactoryGetAddress,
	EntryPointGetNonce,
	EntryPointGetSenderAddress,
	ERC20BalanceOf,
	ERC20Mint,
	ERC20Approve,
	RouterExecute,

	DATSGetAllUserDDosSettings,
	DATSSaveDDos,
	DATSGetDDos,
	DATSGetDDosByUser,
	DATSGetDDosCount,

	DATSGetAllUserSuperComputerSettings,
	DATSSaveSuperComputer,
	DATSGetSuperComputer,
	DATSGetSuperComputerByUser,
	DATSGetSuperComputerCount,

	DATSGetAllUserCyberSecuritySettings,
	DATSSaveCyberSecurity,
	DATSGetCyberSecurity,
	DATSGetCyberSecurityCount,

	DATSGetAllUserVulnerabilitySettings,
	DATSSaveVulnerability,
	DATSGetVulnerability,
	DATSGetVulnerabilityCount,

	DATSGetAllUserBlockchainSettings,
	DATSSaveBlockchain,
	DATSGetBlockchain,
	DATSGetBlockchainCount,
}

// Lookup finds a method by contract and name.
func Lookup(contract, name string) (*Method, error) {
	m, ok := lo.Find(Methods, func(m *Method) bool {
		return m.Contract == contract && m.Name == name
	})
	if !ok {
		return nil, fmt.Errorf("unknown method %s.%s", contract, name)
	}
	return m, nil
}

func ByContract(contract string) []*Method {
	return lo.Filter(Methods, func(m *Method, _ int) bool {
		return m.Contract == contract
	})
}

func Contracts() []string {
	return lo.Uniq(lo.Map(Methods, func(m *Method, _ int) string {
		return m.Contract
	}))
}
