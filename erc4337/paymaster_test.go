package erc4337

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymasterClient_SponsorUserOperation(t *testing.T) {
	paymaster := common.HexToAddress("0x65B8C906cf61eB52E12B0c68AE0f7D46E3386903")

	tests := []struct {
		name               string
		entryPoint         common.Address
		policyID           string
		result             map[string]interface{}
		expectedPMAndData  []byte
		expectedParamCount int
	}{
		{
			name:       "v0.6 sponsor returns paymasterAndData",
			entryPoint: EntryPointV06,
			result: map[string]interface{}{
				"paymasterAndData":     hexutil.Encode(append(paymaster.Bytes(), 0xaa, 0xbb)),
				"preVerificationGas":   "0xc350",
				"verificationGasLimit": "0x30d40",
				"callGasLimit":         "0x186a0",
			},
			expectedPMAndData:  append(paymaster.Bytes(), 0xaa, 0xbb),
			expectedParamCount: 2,
		},
		{
			name:       "v0.7 sponsor returns split paymaster fields",
			entryPoint: EntryPointV07,
			policyID:   "sp_test",
			result: map[string]interface{}{
				"paymaster":                     paymaster.Hex(),
				"paymasterData":                 "0xaabb",
				"paymasterVerificationGasLimit": "0x7a120",
				"paymasterPostOpGasLimit":       "0x186a0",
				"preVerificationGas":            "0xc350",
				"verificationGasLimit":          "0x30d40",
				"callGasLimit":                  "0x186a0",
			},
			expectedPMAndData:  PackPaymasterAndData(paymaster, big.NewInt(0x7a120), big.NewInt(0x186a0), []byte{0xaa, 0xbb}),
			expectedParamCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRPCServer(t, func(call rpcCall) (interface{}, *RPCError) {
				assert.Equal(t, "pm_sponsorUserOperation", call.Method)
				assert.Len(t, call.Params, tt.expectedParamCount)
				if tt.policyID != "" && len(call.Params) == 3 {
					var policy map[string]string
					assert.NoError(t, json.Unmarshal(call.Params[2], &policy))
					assert.Equal(t, tt.policyID, policy["sponsorshipPolicyId"])
				}
				return tt.result, nil
			})

			var opts []PaymasterOption
			if tt.policyID != "" {
				opts = append(opts, WithSponsorshipPolicy(tt.policyID))
			}
			client := NewPaymasterClient(srv.URL, opts...)

			op := sampleUserOperation()
			result, err := client.SponsorUserOperation(context.Background(), op, tt.entryPoint)
			require.NoError(t, err)
			require.NoError(t, result.Apply(op))

			assert.Equal(t, tt.expectedPMAndData, []byte(op.PaymasterAndData))
			assertBig(t, 0xc350, op.PreVerificationGas, "preVerificationGas")
			assertBig(t, 0x30d40, op.VerificationGasLimit, "verificationGasLimit")
			assertBig(t, 0x186a0, op.CallGasLimit, "callGasLimit")
		})
	}
}

func TestPaymasterClient_Errors(t *testing.T) {
	t.Run("json-rpc error", func(t *testing.T) {
		srv := newRPCServer(t, func(call rpcCall) (interface{}, *RPCError) {
			return nil, &RPCError{Code: -32602, Message: "sponsorship denied"}
		})

		_, err := NewPaymasterClient(srv.URL).SponsorUserOperation(context.Background(), sampleUserOperation(), EntryPointV06)
		require.Error(t, err)

		var rpcErr *RPCError
		require.ErrorAs(t, err, &rpcErr)
		assert.Equal(t, -32602, rpcErr.Code)
		assert.Contains(t, err.Error(), "sponsorship denied")
	})

	t.Run("http failure without body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		t.Cleanup(srv.Close)

		_, err := NewPaymasterClient(srv.URL).SponsorUserOperation(context.Background(), sampleUserOperation(), EntryPointV06)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("null result", func(t *testing.T) {
		srv := newRPCServer(t, func(call rpcCall) (interface{}, *RPCError) {
			return nil, nil
		})

		_, err := NewPaymasterClient(srv.URL).SponsorUserOperation(context.Background(), sampleUserOperation(), EntryPointV06)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty result")
	})
}

func TestSponsorResult_Apply(t *testing.T) {
	t.Run("missing gas limits", func(t *testing.T) {
		err := (&SponsorResult{PaymasterAndData: []byte{0x01}}).Apply(sampleUserOperation())
		require.Error(t, err)
	})

	t.Run("missing paymaster data", func(t *testing.T) {
		err := (&SponsorResult{
			PreVerificationGas:   hexBig(1),
			VerificationGasLimit: hexBig(1),
			CallGasLimit:         hexBig(1),
		}).Apply(sampleUserOperation())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no paymaster data")
	})
}
