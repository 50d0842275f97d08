package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethaccount/dats/src/calldata"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethaccount/dats/src/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	testEntryPoint = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")
	testOwner      = common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")
	testSender     = common.HexToAddress("0x3cf6b6d1e4c2b4a4d6b1c0f0b0e6a2c9d8e7f6a5")
	testDATS       = common.HexToAddress("0x2FF7940952C5F08288ace086D8dC3bdBE6F1BCCA")
	testOpHash     = "0x8f1c2b3a4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8"
)

type fakeAccounts struct {
	nonce int64
	err   error
	salts []*big.Int
}

func (f *fakeAccounts) Resolve(ctx context.Context, owner common.Address, salt *big.Int) (*service.Account, error) {
	f.salts = append(f.salts, salt)
	if f.err != nil {
		return nil, f.err
	}
	nonce := big.NewInt(f.nonce)
	return &service.Account{
		Owner:    owner,
		Salt:     salt,
		Sender:   testSender,
		InitCode: []byte{0xaa, 0xbb},
		Nonce:    nonce,
		State:    domain.DeploymentStateFromNonce(nonce),
	}, nil
}

type fakeSettings struct {
	result  interface{}
	err     error
	methods []*calldata.Method
	args    [][]interface{}
	from    []common.Address
}

func (f *fakeSettings) Read(ctx context.Context, account common.Address, m *calldata.Method, args ...interface{}) (interface{}, error) {
	f.from = append(f.from, account)
	f.methods = append(f.methods, m)
	f.args = append(f.args, args)
	return f.result, f.err
}

type fakeOperations struct {
	records map[string]*domain.OperationRecord
	err     error
	senders []string
	limits  []int
}

func (f *fakeOperations) FindByHash(ctx context.Context, userOpHash string) (*domain.OperationRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[userOpHash]
	if !ok {
		return nil, domain.NewError(domain.ErrorCodeResourceNotFound, errRecordNotFound)
	}
	return record, nil
}

func (f *fakeOperations) FindBySender(ctx context.Context, sender string, limit int) ([]*domain.OperationRecord, error) {
	f.senders = append(f.senders, sender)
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.OperationRecord
	for _, record := range f.records {
		if record.Sender == sender {
			out = append(out, record)
		}
	}
	return out, nil
}

type fakeStatuses struct {
	entries map[string]*domain.OperationStatusEntry
	err     error
}

func (f *fakeStatuses) GetStatus(ctx context.Context, userOpHash string) (*domain.OperationStatusEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	entry, ok := f.entries[userOpHash]
	if !ok {
		return nil, domain.NewError(domain.ErrorCodeResourceNotFound, errRecordNotFound)
	}
	return entry, nil
}

var errRecordNotFound = errors.New("record not found")

func testRecord() *domain.OperationRecord {
	txHash := "0x9d2c1b4a1f7e0a6f3c5b8e2d4a6c8e0f1a3b5c7d9e1f2a4b6c8d0e2f4a6b8c0d"
	return &domain.OperationRecord{
		ChainId:       11155111,
		EntryPoint:    testEntryPoint.Hex(),
		Sender:        testSender.Hex(),
		Nonce:         "1",
		UserOpHash:    testOpHash,
		Action:        "save-ddos",
		Status:        domain.OperationStatusCompleted,
		TxHash:        &txHash,
		UserOperation: json.RawMessage(`{}`),
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2024, 5, 1, 12, 0, 30, 0, time.UTC),
	}
}

type testResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(context.Background(), router, h)
	return router
}

func newTestHandlers(accounts AccountResolver, settings SettingsReader) *Handlers {
	return NewHandlers(Config{ChainID: 11155111, EntryPoint: testEntryPoint}, accounts, settings)
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers ...string) (int, testResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}
