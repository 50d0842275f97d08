package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethaccount/dats/erc4337"
	"github.com/ethaccount/dats/src/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OperationHistory persists submitted operations and their outcome.
type OperationHistory interface {
	Create(ctx context.Context, record *domain.OperationRecord) error
	UpdateResult(ctx context.Context, userOpHash string, result domain.OperationResult) error
}

// StatusCache holds the live status of in-flight operations.
type StatusCache interface {
	SetStatus(ctx context.Context, userOpHash string, entry domain.OperationStatusEntry) error
}

// CallDataBuilder produces the account callData once the sender is known.
type CallDataBuilder func(account *Account) ([]byte, error)

type ExecutionConfig struct {
	ChainID      *big.Int
	Salt         *big.Int
	PollInterval time.Duration
	Timeout      time.Duration
}

type ExecutionService struct {
	accounts  *AccountService
	assembler *AssemblerService
	bundler   erc4337.Bundler
	signer    *erc4337.Signer
	config    ExecutionConfig

	history OperationHistory
	cache   StatusCache
}

type ExecutionResult struct {
	RunID      uuid.UUID                     `json:"runId"`
	Action     string                        `json:"action"`
	Sender     common.Address                `json:"sender"`
	UserOpHash common.Hash                   `json:"userOpHash"`
	TxHash     common.Hash                   `json:"txHash"`
	Success    bool                          `json:"success"`
	Receipt    *erc4337.UserOperationReceipt `json:"receipt"`
}

func NewExecutionService(accounts *AccountService, assembler *AssemblerService, bundler erc4337.Bundler, signer *erc4337.Signer, config ExecutionConfig) *ExecutionService {
	return &ExecutionService{
		accounts:  accounts,
		assembler: assembler,
		bundler:   bundler,
		signer:    signer,
		config:    config,
	}
}

// WithHistory records every submitted operation. Either argument may be nil.
func (s *ExecutionService) WithHistory(history OperationHistory, cache StatusCache) *ExecutionService {
	s.history = history
	s.cache = cache
	return s
}

// logger wraps the execution context with component info
func (s *ExecutionService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("service", "execution").Logger()
	return &l
}

// Account resolves the smart account controlled by the signer.
func (s *ExecutionService) Account(ctx context.Context) (*Account, error) {
	return s.accounts.Resolve(ctx, s.signer.Address(), s.config.Salt)
}

// Execute runs one operation end to end: resolve the sender, assemble, sign, submit and
// wait for the receipt. A reverted operation is reported through Success, not as an error.
func (s *ExecutionService) Execute(ctx context.Context, action string, build CallDataBuilder) (*ExecutionResult, error) {
	runID := uuid.New()
	logger := s.logger(ctx).With().
		Str("run_id", runID.String()).
		Str("action", action).
		Logger()
	ctx = logger.WithContext(ctx)

	account, err := s.Account(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	callData, err := build(account)
	if err != nil {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid, fmt.Errorf("failed to build calldata: %w", err))
	}

	op, err := s.assembler.Assemble(ctx, account, callData)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble user operation: %w", err)
	}

	entryPoint := s.accounts.blockchain.EntryPoint()
	userOpHash, err := s.signer.SignUserOperation(op, entryPoint, s.config.ChainID)
	if err != nil {
		return nil, domain.NewError(domain.ErrorCodeInternalProcess, err)
	}

	logger.Debug().
		Str("user_op_hash", userOpHash.Hex()).
		Msg("user operation signed")

	sentHash, err := s.bundler.SendUserOperation(ctx, op, entryPoint)
	if err != nil {
		logger.Error().Err(err).Msg("bundler rejected user operation")
		return nil, remoteError("failed to send user operation", err)
	}
	if sentHash != userOpHash {
		logger.Warn().
			Str("local_hash", userOpHash.Hex()).
			Str("bundler_hash", sentHash.Hex()).
			Msg("bundler returned a different user operation hash")
	}

	logger.Info().
		Str("user_op_hash", sentHash.Hex()).
		Str("sender", op.Sender.Hex()).
		Msg("user operation submitted")

	s.recordPending(ctx, runID, action, op, entryPoint, sentHash)

	logger.Info().Msg("querying for receipts...")
	receipt, err := s.bundler.WaitForUserOperationReceipt(ctx, sentHash, s.config.PollInterval, s.config.Timeout)
	if err != nil {
		s.recordResult(ctx, sentHash, domain.OperationResult{Status: domain.OperationStatusFailed, Error: err.Error()})
		return nil, remoteError("failed to get user operation receipt", err)
	}

	result := &ExecutionResult{
		RunID:      runID,
		Action:     action,
		Sender:     op.Sender,
		UserOpHash: sentHash,
		TxHash:     receipt.TxHash(),
		Success:    receipt.Success,
		Receipt:    receipt,
	}

	outcome := domain.OperationResult{Status: domain.OperationStatusCompleted, TxHash: result.TxHash.Hex()}
	if !receipt.Success {
		outcome.Status = domain.OperationStatusFailed
		outcome.Error = receipt.Reason
		if outcome.Error == "" {
			outcome.Error = "user operation reverted"
		}
	}
	s.recordResult(ctx, sentHash, outcome)

	event := logger.Info()
	if !receipt.Success {
		event = logger.Warn().Str("reason", receipt.Reason)
	}
	event.
		Str("user_op_hash", sentHash.Hex()).
		Str("tx_hash", result.TxHash.Hex()).
		Bool("success", receipt.Success).
		Str("actual_gas_cost_gwei", ToGwei(receipt.ActualGasCost.ToInt()).String()).
		Msg("receipt found")

	return result, nil
}

// recordPending stores the submitted operation. History is best effort: a failing store is
// logged and the run goes on.
func (s *ExecutionService) recordPending(ctx context.Context, runID uuid.UUID, action string, op *erc4337.UserOperation, entryPoint common.Address, userOpHash common.Hash) {
	if s.history != nil {
		raw, err := json.Marshal(op)
		if err != nil {
			s.logger(ctx).Error().Err(err).Msg("failed to marshal user operation for history")
		} else {
			record := &domain.OperationRecord{
				RunID:         runID,
				ChainId:       s.config.ChainID.Int64(),
				EntryPoint:    entryPoint.Hex(),
				Sender:        op.Sender.Hex(),
				Nonce:         op.Nonce.ToInt().String(),
				UserOpHash:    userOpHash.Hex(),
				Action:        action,
				Status:        domain.OperationStatusPending,
				UserOperation: raw,
			}
			if err := s.history.Create(ctx, record); err != nil {
				s.logger(ctx).Error().Err(err).Msg("failed to record user operation")
			}
		}
	}

	s.cacheStatus(ctx, userOpHash, domain.OperationStatusEntry{Status: domain.OperationStatusPending})
}

func (s *ExecutionService) recordResult(ctx context.Context, userOpHash common.Hash, result domain.OperationResult) {
	if s.history != nil {
		if err := s.history.UpdateResult(ctx, userOpHash.Hex(), result); err != nil {
			s.logger(ctx).Error().Err(err).Msg("failed to record user operation result")
		}
	}

	s.cacheStatus(ctx, userOpHash, domain.OperationStatusEntry{
		Status: result.Status,
		TxHash: result.TxHash,
		Error:  result.Error,
	})
}

func (s *ExecutionService) cacheStatus(ctx context.Context, userOpHash common.Hash, entry domain.OperationStatusEntry) {
	if s.cache == nil {
		return
	}
	entry.UpdatedAt = time.Now().UTC()
	if err := s.cache.SetStatus(ctx, userOpHash.Hex(), entry); err != nil {
		s.logger(ctx).Error().Err(err).Msg("failed to cache user operation status")
	}
}
