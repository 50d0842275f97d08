package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethaccount/dats/erc4337"
	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount(t *testing.T, nonce int64) *Account {
	t.Helper()
	initCode, err := calldata.InitCode(testFactory, testOwner, big.NewInt(0))
	require.NoError(t, err)
	return &Account{
		Owner:    testOwner,
		Salt:     big.NewInt(0),
		Sender:   testSender,
		InitCode: initCode,
		Nonce:    big.NewInt(nonce),
		State:    domain.DeploymentStateFromNonce(big.NewInt(nonce)),
	}
}

func newTestAssembler(client *fakeEthClient, bundler *fakeBundler, paymaster erc4337.Paymaster) *AssemblerService {
	return NewAssemblerService(NewBlockchainService(client, testEntryPoint), bundler, paymaster, "fast")
}

func TestAssembler_Draft_InitCodeFollowsDeploymentState(t *testing.T) {
	callData, err := calldata.SaveDDos(testDATS, true, 5)
	require.NoError(t, err)

	tests := []struct {
		name         string
		nonce        int64
		wantInitCode bool
	}{
		{name: "nonce zero deploys the account", nonce: 0, wantInitCode: true},
		{name: "nonce one omits init code", nonce: 1, wantInitCode: false},
		{name: "large nonce omits init code", nonce: 42, wantInitCode: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := testAccount(t, tt.nonce)
			assembler := newTestAssembler(newFakeEthClient(), &fakeBundler{gasPrice: testGasPrice()}, nil)

			op, err := assembler.Draft(context.Background(), account, callData)
			require.NoError(t, err)

			if tt.wantInitCode {
				assert.Equal(t, hexutil.Bytes(account.InitCode), op.InitCode)
				assert.NotEmpty(t, op.InitCode)
			} else {
				assert.NotNil(t, op.InitCode)
				assert.Empty(t, op.InitCode)
			}
			assert.Equal(t, testSender, op.Sender)
			assert.Equal(t, tt.nonce, op.Nonce.ToInt().Int64())
			assert.Equal(t, hexutil.Bytes(callData), op.CallData)
			assert.Empty(t, op.PaymasterAndData)
			assert.Equal(t, hexutil.Bytes(erc4337.DummySignature), op.Signature)
			assert.Equal(t, int64(3_000_000_000), op.MaxFeePerGas.ToInt().Int64())
			assert.Equal(t, int64(300_000_000), op.MaxPriorityFeePerGas.ToInt().Int64())
		})
	}
}

func TestAssembler_Draft_FallsBackToNodeFees(t *testing.T) {
	client := newFakeEthClient()
	client.baseFee = big.NewInt(10_000_000_000)
	client.tip = big.NewInt(1_000_000_000)

	bundler := &fakeBundler{gasPriceErr: methodNotFoundError{}}
	op, err := newTestAssembler(client, bundler, nil).Draft(context.Background(), testAccount(t, 1), []byte{0x01})
	require.NoError(t, err)

	// 10 gwei * 150 / 100 + 1 gwei
	assert.Equal(t, int64(16_000_000_000), op.MaxFeePerGas.ToInt().Int64())
	assert.Equal(t, int64(1_000_000_000), op.MaxPriorityFeePerGas.ToInt().Int64())
}

func TestAssembler_Draft_LegacyNodeFees(t *testing.T) {
	client := newFakeEthClient()
	client.gasPrice = big.NewInt(7_000_000_000)

	bundler := &fakeBundler{gasPriceErr: methodNotFoundError{}}
	op, err := newTestAssembler(client, bundler, nil).Draft(context.Background(), testAccount(t, 1), []byte{0x01})
	require.NoError(t, err)

	assert.Equal(t, int64(7_000_000_000), op.MaxFeePerGas.ToInt().Int64())
	assert.Equal(t, int64(7_000_000_000), op.MaxPriorityFeePerGas.ToInt().Int64())
}

func TestAssembler_Draft_GasPriceError(t *testing.T) {
	bundler := &fakeBundler{gasPriceErr: errors.New("connection refused")}
	_, err := newTestAssembler(newFakeEthClient(), bundler, nil).Draft(context.Background(), testAccount(t, 1), []byte{0x01})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrorCodeRemoteProcess))
}

func TestAssembler_Assemble_Sponsored(t *testing.T) {
	paymaster := &fakePaymaster{result: testSponsorResult()}
	bundler := &fakeBundler{gasPrice: testGasPrice()}

	op, err := newTestAssembler(newFakeEthClient(), bundler, paymaster).Assemble(context.Background(), testAccount(t, 0), []byte{0x01})
	require.NoError(t, err)

	require.Len(t, paymaster.seen, 1)
	assert.Empty(t, paymaster.seen[0].PaymasterAndData)
	assert.Equal(t, hexutil.Bytes(erc4337.DummySignature), paymaster.seen[0].Signature)

	assert.Equal(t, testSponsorResult().PaymasterAndData, op.PaymasterAndData)
	assert.Equal(t, int64(50_000), op.PreVerificationGas.ToInt().Int64())
	assert.Equal(t, int64(400_000), op.VerificationGasLimit.ToInt().Int64())
	assert.Equal(t, int64(100_000), op.CallGasLimit.ToInt().Int64())
	assert.Empty(t, bundler.estimated)
}

func TestAssembler_Assemble_SponsorshipRefused(t *testing.T) {
	paymaster := &fakePaymaster{err: &erc4337.RPCError{Code: -32500, Message: "sponsorship policy rejected"}}
	bundler := &fakeBundler{gasPrice: testGasPrice(), estimates: &erc4337.GasEstimates{}}

	_, err := newTestAssembler(newFakeEthClient(), bundler, paymaster).Assemble(context.Background(), testAccount(t, 0), []byte{0x01})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrorCodeRemoteProcess))
	assert.Contains(t, err.Error(), "sponsorship policy rejected")

	var rpcErr *erc4337.RPCError
	assert.ErrorAs(t, err, &rpcErr)
	assert.Empty(t, bundler.estimated, "refusal must not fall back to self-paid gas")
}

func TestAssembler_Assemble_IncompleteSponsorship(t *testing.T) {
	paymaster := &fakePaymaster{result: &erc4337.SponsorResult{PaymasterAndData: []byte{0x01}}}
	bundler := &fakeBundler{gasPrice: testGasPrice()}

	_, err := newTestAssembler(newFakeEthClient(), bundler, paymaster).Assemble(context.Background(), testAccount(t, 0), []byte{0x01})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing gas limits")
}

func TestAssembler_Assemble_EstimatesWithoutPaymaster(t *testing.T) {
	bundler := &fakeBundler{
		gasPrice: testGasPrice(),
		estimates: &erc4337.GasEstimates{
			PreVerificationGas:   (*hexutil.Big)(big.NewInt(45_000)),
			VerificationGasLimit: (*hexutil.Big)(big.NewInt(350_000)),
			CallGasLimit:         (*hexutil.Big)(big.NewInt(90_000)),
		},
	}

	op, err := newTestAssembler(newFakeEthClient(), bundler, nil).Assemble(context.Background(), testAccount(t, 3), []byte{0x01})
	require.NoError(t, err)

	require.Len(t, bundler.estimated, 1)
	assert.Equal(t, int64(45_000), op.PreVerificationGas.ToInt().Int64())
	assert.Equal(t, int64(350_000), op.VerificationGasLimit.ToInt().Int64())
	assert.Equal(t, int64(90_000), op.CallGasLimit.ToInt().Int64())
	assert.Empty(t, op.PaymasterAndData)
}

func TestToGwei(t *testing.T) {
	tests := []struct {
		wei      *big.Int
		expected string
	}{
		{wei: big.NewInt(1_000_000_000), expected: "1"},
		{wei: big.NewInt(16_500_000_000), expected: "16.5"},
		{wei: big.NewInt(1), expected: "0.000000001"},
		{wei: nil, expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToGwei(tt.wei).String())
		})
	}
}
