package repository

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethaccount/dats/erc4337"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethaccount/dats/src/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(t *testing.T, sender common.Address, nonce int64) *domain.OperationRecord {
	t.Helper()

	op := &erc4337.UserOperation{
		Sender:               sender,
		Nonce:                (*hexutil.Big)(big.NewInt(nonce)),
		InitCode:             hexutil.Bytes{},
		CallData:             hexutil.Bytes{0xb6, 0x1d, 0x27, 0xf6},
		CallGasLimit:         (*hexutil.Big)(big.NewInt(100000)),
		VerificationGasLimit: (*hexutil.Big)(big.NewInt(400000)),
		PreVerificationGas:   (*hexutil.Big)(big.NewInt(50000)),
		MaxFeePerGas:         (*hexutil.Big)(big.NewInt(2000000000)),
		MaxPriorityFeePerGas: (*hexutil.Big)(big.NewInt(1000000000)),
		PaymasterAndData:     hexutil.Bytes{},
		Signature:            hexutil.Bytes{0x12, 0x34},
	}
	raw, err := json.Marshal(op)
	require.NoError(t, err)

	hash, err := erc4337.GetUserOpHash(op, erc4337.EntryPointV06, big.NewInt(11155111))
	require.NoError(t, err)

	return &domain.OperationRecord{
		RunID:         uuid.New(),
		ChainId:       11155111,
		EntryPoint:    erc4337.EntryPointV06.Hex(),
		Sender:        sender.Hex(),
		Nonce:         big.NewInt(nonce).String(),
		UserOpHash:    hash.Hex(),
		Action:        "save-ddos",
		Status:        domain.OperationStatusPending,
		UserOperation: raw,
	}
}

func TestOperationRepository_CreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewOperationRepository(db)
	ctx := context.Background()

	sender := common.HexToAddress("0x1234567890123456789012345678901234567890")
	record := newTestRecord(t, sender, 1)
	require.NoError(t, repo.Create(ctx, record))
	assert.NotEqual(t, uuid.Nil, record.ID)

	found, err := repo.FindByHash(ctx, record.UserOpHash)
	require.NoError(t, err)
	assert.Equal(t, record.RunID, found.RunID)
	assert.Equal(t, domain.OperationStatusPending, found.Status)
	assert.Nil(t, found.TxHash)

	op, err := found.GetUserOperation()
	require.NoError(t, err)
	assert.Equal(t, sender, op.Sender)
	assert.Equal(t, int64(1), op.Nonce.ToInt().Int64())

	// the hash is unique
	assert.Error(t, repo.Create(ctx, newTestRecord(t, sender, 1)))
}

func TestOperationRepository_UpdateResult(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewOperationRepository(db)
	ctx := context.Background()

	record := newTestRecord(t, common.HexToAddress("0x1234567890123456789012345678901234567890"), 2)
	require.NoError(t, repo.Create(ctx, record))

	txHash := common.HexToHash("0xabc").Hex()
	require.NoError(t, repo.UpdateResult(ctx, record.UserOpHash, domain.OperationResult{
		Status: domain.OperationStatusFailed,
		TxHash: txHash,
		Error:  "user operation reverted",
	}))

	found, err := repo.FindByHash(ctx, record.UserOpHash)
	require.NoError(t, err)
	assert.Equal(t, domain.OperationStatusFailed, found.Status)
	require.NotNil(t, found.TxHash)
	assert.Equal(t, txHash, *found.TxHash)
	require.NotNil(t, found.Error)
	assert.Equal(t, "user operation reverted", *found.Error)

	err = repo.UpdateResult(ctx, common.HexToHash("0xdead").Hex(), domain.OperationResult{Status: domain.OperationStatusCompleted})
	assert.True(t, domain.HasCode(err, domain.ErrorCodeResourceNotFound))
}

func TestOperationRepository_UpdateResult_RejectsPending(t *testing.T) {
	// rejected before the database is touched
	repo := NewOperationRepository(nil)

	err := repo.UpdateResult(context.Background(), common.HexToHash("0xabc").Hex(), domain.OperationResult{
		Status: domain.OperationStatusPending,
	})
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrorCodeParameterInvalid))
}

func TestOperationRepository_FindBySender(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewOperationRepository(db)
	ctx := context.Background()

	sender := common.HexToAddress("0x1234567890123456789012345678901234567890")
	other := common.HexToAddress("0x0987654321098765432109876543210987654321")
	for nonce := int64(0); nonce < 3; nonce++ {
		require.NoError(t, repo.Create(ctx, newTestRecord(t, sender, nonce)))
	}
	require.NoError(t, repo.Create(ctx, newTestRecord(t, other, 0)))

	records, err := repo.FindBySender(ctx, sender.Hex(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	limited, err := repo.FindBySender(ctx, sender.Hex(), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = repo.FindByHash(ctx, common.HexToHash("0xbeef").Hex())
	assert.True(t, domain.HasCode(err, domain.ErrorCodeResourceNotFound))
}
