package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethaccount/dats/erc4337"
	"github.com/google/uuid"
)

type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
)

func (s OperationStatus) Terminal() bool {
	return s == OperationStatusCompleted || s == OperationStatusFailed
}

// OperationRecord is one submitted UserOperation in the history table.
type OperationRecord struct {
	ID            uuid.UUID       `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	RunID         uuid.UUID       `gorm:"type:uuid;not null" json:"runId"`
	ChainId       int64           `gorm:"not null" json:"chainId"`
	EntryPoint    string          `gorm:"type:varchar(42);not null" json:"entryPoint"`
	Sender        string          `gorm:"type:varchar(42);not null;index" json:"sender"`
	Nonce         string          `gorm:"type:varchar(80);not null" json:"nonce"`
	UserOpHash    string          `gorm:"type:varchar(66);not null;uniqueIndex" json:"userOpHash"`
	Action        string          `gorm:"type:varchar(64);not null" json:"action"`
	Status        OperationStatus `gorm:"type:varchar(16);not null" json:"status"`
	TxHash        *string         `gorm:"type:varchar(66)" json:"txHash,omitempty"`
	Error         *string         `gorm:"type:text" json:"error,omitempty"`
	UserOperation json.RawMessage `gorm:"type:jsonb;not null" json:"userOperation"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (OperationRecord) TableName() string {
	return "user_operations"
}

// GetUserOperation returns the stored operation as a typed struct
func (r *OperationRecord) GetUserOperation() (*erc4337.UserOperation, error) {
	var op erc4337.UserOperation
	if err := json.Unmarshal(r.UserOperation, &op); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user operation: %w", err)
	}
	return &op, nil
}

// OperationResult is the outcome written back once the receipt is known.
type OperationResult struct {
	Status OperationStatus
	TxHash string
	Error  string
}

// OperationStatusEntry is the cached live status of a submitted operation.
type OperationStatusEntry struct {
	Status    OperationStatus `json:"status"`
	TxHash    string          `json:"txHash,omitempty"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
