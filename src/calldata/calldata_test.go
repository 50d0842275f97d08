package calldata

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var datsAddress = common.HexToAddress("0xDEAD00000000000000000000000000000000BEEF")

func TestMethodSelectors(t *testing.T) {
	tests := []struct {
		method    *Method
		signature string
		selector  string
	}{
		{AccountExecute, "execute(address,uint256,bytes)", "0xb61d27f6"},
		{FactoryCreateAccount, "createAccount(address,uint256)", "0x5fbfb9cf"},
		{FactoryGetAddress, "getAddress(address,uint256)", "0x8cb84e18"},
		{EntryPointGetNonce, "getNonce(address,uint192)", "0x35567e1a"},
		{EntryPointGetSenderAddress, "getSenderAddress(bytes)", "0x9b249f69"},
		{ERC20BalanceOf, "balanceOf(address)", "0x70a08231"},
		{ERC20Approve, "approve(address,uint256)", "0x095ea7b3"},
		{ERC20Mint, "mint(address,uint256)", "0x40c10f19"},
		{RouterExecute, "execute(bytes,bytes[],uint256)", "0x3593564c"},
		{DATSSaveDDos, "saveDDos(bool,uint8)", "0xc4a14bb1"},
		{DATSSaveSuperComputer, "saveSuperComputer(bool,uint8)", "0x09778508"},
		{DATSSaveCyberSecurity, "saveCyberSecurity(bool,bool,bool,bool,bool)", "0x10d6cb31"},
		{DATSSaveVulnerability, "saveVulnerability(bool,bool,bool,bool,bool,bool)", "0xe45aff7d"},
		{DATSSaveBlockchain, "saveBlockchain(bool)", "0x564747b2"},
		{DATSGetDDos, "getDDos()", "0xb26a7f17"},
		{DATSGetDDosByUser, "getDDosByUser(address)", "0x02a70ccd"},
		{DATSGetDDosCount, "getDDosCount()", "0x4093a5ba"},
	}

	for _, tt := range tests {
		t.Run(tt.signature, func(t *testing.T) {
			assert.Equal(t, tt.signature, tt.method.Signature())
			assert.Equal(t, tt.selector, tt.method.SelectorHex())
		})
	}

	assert.Equal(t, "0x6ca7b806", hexutil.Encode(SenderAddressResult.ID[:4]))
}

func TestMethodTable(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Methods {
		key := m.Contract + "." + m.Name
		assert.False(t, seen[key], "duplicate method %s", key)
		seen[key] = true
	}

	assert.Len(t, ByContract(ContractDATS), 22)
	assert.ElementsMatch(t,
		[]string{ContractAccount, ContractFactory, ContractEntryPoint, ContractERC20, ContractRouter, ContractDATS},
		Contracts())

	m, err := Lookup(ContractDATS, "getCyberSecurity")
	require.NoError(t, err)
	assert.Equal(t, "(uint256,address,bool,bool,bool,bool,bool)", m.OutputSignature())

	m, err = Lookup(ContractDATS, "getAllUserBlockchainSettings")
	require.NoError(t, err)
	assert.Equal(t, "((uint256,address,bool)[])", m.OutputSignature())

	_, err = Lookup(ContractDATS, "deleteEverything")
	require.Error(t, err)
}

func TestSaveDDos_ExecuteWrapped(t *testing.T) {
	callData, err := SaveDDos(datsAddress, true, 5)
	require.NoError(t, err)

	assert.Equal(t,
		"0xb61d27f6000000000000000000000000dead00000000000000000000000000000000beef"+
			"0000000000000000000000000000000000000000000000000000000000000000"+
			"0000000000000000000000000000000000000000000000000000000000000060"+
			"0000000000000000000000000000000000000000000000000000000000000044"+
			"c4a14bb1"+
			"0000000000000000000000000000000000000000000000000000000000000001"+
			"0000000000000000000000000000000000000000000000000000000000000005"+
			"00000000000000000000000000000000000000000000000000000000",
		hexutil.Encode(callData))

	assert.Equal(t, AccountExecute.Selector(), callData[:4])

	dest, value, inner, err := UnwrapExecute(callData)
	require.NoError(t, err)
	assert.Equal(t, datsAddress, dest)
	assert.Equal(t, 0, value.Sign())

	args, err := DATSSaveDDos.DecodeInputs(inner)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{true, uint8(5)}, args)
}

func TestDATSBuilders_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		build    func() ([]byte, error)
		method   *Method
		expected []interface{}
	}{
		{
			name:     "saveDDos",
			build:    func() ([]byte, error) { return SaveDDos(datsAddress, false, 255) },
			method:   DATSSaveDDos,
			expected: []interface{}{false, uint8(255)},
		},
		{
			name:     "saveSuperComputer",
			build:    func() ([]byte, error) { return SaveSuperComputer(datsAddress, true, 42) },
			method:   DATSSaveSuperComputer,
			expected: []interface{}{true, uint8(42)},
		},
		{
			name: "saveCyberSecurity",
			build: func() ([]byte, error) {
				return SaveCyberSecurity(datsAddress, CyberSecurityInput{
					IsApprove:       true,
					ServerSecurity:  true,
					MalwareResearch: true,
				})
			},
			method:   DATSSaveCyberSecurity,
			expected: []interface{}{true, false, true, false, true},
		},
		{
			name: "saveVulnerability",
			build: func() ([]byte, error) {
				return SaveVulnerability(datsAddress, VulnerabilityInput{
					IsApprove:             true,
					WebPenetration:        true,
					ScadaPenetration:      true,
					ContractPenetration:   true,
					BlockchainPenetration: false,
				})
			},
			method:   DATSSaveVulnerability,
			expected: []interface{}{true, true, false, true, false, true},
		},
		{
			name:     "saveBlockchain",
			build:    func() ([]byte, error) { return SaveBlockchain(datsAddress, true) },
			method:   DATSSaveBlockchain,
			expected: []interface{}{true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			callData, err := tt.build()
			require.NoError(t, err)

			dest, value, inner, err := UnwrapExecute(callData)
			require.NoError(t, err)
			assert.Equal(t, datsAddress, dest)
			assert.Equal(t, 0, value.Sign())

			args, err := tt.method.DecodeInputs(inner)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, args)
		})
	}
}

func TestMethod_EncodeRejectsWrongTypes(t *testing.T) {
	tests := []struct {
		name string
		args []interface{}
	}{
		{name: "int instead of uint8", args: []interface{}{true, 5}},
		{name: "string instead of bool", args: []interface{}{"true", uint8(5)}},
		{name: "missing argument", args: []interface{}{true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DATSSaveDDos.Encode(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "saveDDos(bool,uint8)")
		})
	}
}

func TestMethod_DecodeInputsSelectorMismatch(t *testing.T) {
	inner, err := DATSSaveBlockchain.Encode(true)
	require.NoError(t, err)

	_, err = DATSSaveDDos.DecodeInputs(inner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selector mismatch")

	_, err = DATSSaveDDos.DecodeInputs([]byte{0x01})
	require.Error(t, err)
}

func TestMethod_DecodeOutputs(t *testing.T) {
	user := common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")
	encoded, err := DATSGetDDos.EncodeOutputs(big.NewInt(7), user, true, uint8(3))
	require.NoError(t, err)

	values, err := DATSGetDDos.DecodeOutputs(encoded)
	require.NoError(t, err)
	require.Len(t, values, 4)
	assert.Equal(t, int64(7), values[0].(*big.Int).Int64())
	assert.Equal(t, user, values[1])
	assert.Equal(t, true, values[2])
	assert.Equal(t, uint8(3), values[3])
}

func TestWrapExecute_NilValues(t *testing.T) {
	callData, err := WrapExecute(datsAddress, nil, nil)
	require.NoError(t, err)

	dest, value, inner, err := UnwrapExecute(callData)
	require.NoError(t, err)
	assert.Equal(t, datsAddress, dest)
	assert.Equal(t, 0, value.Sign())
	assert.Empty(t, inner)
}

func TestEmailSalt(t *testing.T) {
	salt, err := EmailSalt("lolumsu@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, "0x6c6f6c756d737540676d61696c2e636f6d", hexutil.EncodeBig(salt))
	assert.Equal(t, "36898603084767727343210614713952730574701", salt.String())

	_, err = EmailSalt("")
	require.Error(t, err)
}

func TestEmailSalt_Width(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "32 bytes fits", email: "abcdefghijklmnopqrst@example.com"},
		{name: "34 bytes", email: "alice.longname@example-company.com", wantErr: true},
		{name: "34 bytes same tail", email: "zzice.longname@example-company.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			salt, err := EmailSalt(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrIntegerOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.LessOrEqual(t, salt.BitLen(), 256)
		})
	}
}

func TestMethod_EncodeRejectsOutOfRange(t *testing.T) {
	maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	owner := common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")

	tests := []struct {
		name    string
		method  *Method
		args    []interface{}
		wantErr bool
	}{
		{name: "max uint256 salt", method: FactoryCreateAccount, args: []interface{}{owner, maxUint256}},
		{name: "2^256 salt", method: FactoryCreateAccount, args: []interface{}{owner, new(big.Int).Add(maxUint256, big.NewInt(1))}, wantErr: true},
		{name: "negative salt", method: FactoryCreateAccount, args: []interface{}{owner, big.NewInt(-1)}, wantErr: true},
		{name: "uint192 key overflow", method: EntryPointGetNonce, args: []interface{}{owner, new(big.Int).Lsh(big.NewInt(1), 192)}, wantErr: true},
		{name: "2^271 mint amount", method: ERC20Mint, args: []interface{}{owner, new(big.Int).Lsh(big.NewInt(1), 270)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.method.Encode(tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrIntegerOutOfRange)
				return
			}
			require.NoError(t, err)
		})
	}

	_, err := InitCode(common.Address{}, owner, new(big.Int).Lsh(big.NewInt(1), 256))
	assert.ErrorIs(t, err, ErrIntegerOutOfRange)
}

func TestInitCode(t *testing.T) {
	factory := common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454")
	owner := common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")

	initCode, err := InitCode(factory, owner, big.NewInt(79))
	require.NoError(t, err)
	require.Len(t, initCode, 20+4+64)
	assert.Equal(t, factory.Bytes(), initCode[:20])
	assert.Equal(t, FactoryCreateAccount.Selector(), initCode[20:24])

	args, err := FactoryCreateAccount.DecodeInputs(initCode[20:])
	require.NoError(t, err)
	assert.Equal(t, owner, args[0])
	assert.Equal(t, int64(79), args[1].(*big.Int).Int64())

	withNilSalt, err := InitCode(factory, owner, nil)
	require.NoError(t, err)
	args, err = FactoryCreateAccount.DecodeInputs(withNilSalt[20:])
	require.NoError(t, err)
	assert.Equal(t, 0, args[1].(*big.Int).Sign())
}

func TestFactoryCalls(t *testing.T) {
	factory := common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454")
	owner := common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")

	for _, tt := range []struct {
		name   string
		build  func(common.Address, common.Address, *big.Int) ([]byte, error)
		method *Method
	}{
		{"createAccount", CreateAccountCall, FactoryCreateAccount},
	} {
		t.Run(tt.name, func(t *testing.T) {
			callData, err := tt.build(factory, owner, big.NewInt(1))
			require.NoError(t, err)

			dest, _, inner, err := UnwrapExecute(callData)
			require.NoError(t, err)
			assert.Equal(t, factory, dest)

			args, err := tt.method.DecodeInputs(inner)
			require.NoError(t, err)
			assert.Equal(t, owner, args[0])
		})
	}
}

func TestDecodeSenderAddressResult(t *testing.T) {
	sender := common.HexToAddress("0x1234567890123456789012345678901234567890")
	revert := append(hexutil.MustDecode("0x6ca7b806"), common.LeftPadBytes(sender.Bytes(), 32)...)

	got, err := DecodeSenderAddressResult(revert)
	require.NoError(t, err)
	assert.Equal(t, sender, got)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "other error", data: append(hexutil.MustDecode("0x08c379a0"), make([]byte, 32)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSenderAddressResult(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotSenderAddressResult))
		})
	}

	_, err = DecodeSenderAddressResult(hexutil.MustDecode("0x6ca7b806"))
	require.Error(t, err)
}

func TestERC20Calls(t *testing.T) {
	token := common.HexToAddress("0x00A5Aa31fe45ef1627222b9eFEf7A05f841dC1E3")
	to := common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")

	callData, err := MintCall(token, to, DefaultMintAmount)
	require.NoError(t, err)
	dest, _, inner, err := UnwrapExecute(callData)
	require.NoError(t, err)
	assert.Equal(t, token, dest)
	args, err := ERC20Mint.DecodeInputs(inner)
	require.NoError(t, err)
	assert.Equal(t, to, args[0])
	assert.Equal(t, int64(32000000), args[1].(*big.Int).Int64())

	callData, err = ApproveCall(token, to, big.NewInt(1))
	require.NoError(t, err)
	_, _, inner, err = UnwrapExecute(callData)
	require.NoError(t, err)
	assert.Equal(t, ERC20Approve.Selector(), inner[:4])

	balanceOf, err := ERC20BalanceOf.Encode(to)
	require.NoError(t, err)
	assert.Equal(t, "0x70a08231000000000000000000000000"+"7e5f4552091a69125d5dfcb7b8c2659029395bdf", hexutil.Encode(balanceOf))
}

func TestParseSalt(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{input: "0", expected: "0"},
		{input: "79", expected: "79"},
		{input: "0x4f", expected: "79"},
		{input: " 12 ", expected: "12"},
		{input: "", wantErr: true},
		{input: "-5", wantErr: true},
		{input: "0xgg", wantErr: true},
		{input: "0x" + strings.Repeat("f", 64), expected: new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)).String()},
		{input: "0x1" + strings.Repeat("0", 64), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			salt, err := ParseSalt(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, salt.String())
		})
	}
}
