package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethaccount/dats/src/domain"
	"gorm.io/gorm"
)

const defaultHistoryLimit = 50

type OperationRepository struct {
	db *gorm.DB
}

func NewOperationRepository(db *gorm.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

// Create inserts a submitted operation.
func (r *OperationRepository) Create(ctx context.Context, record *domain.OperationRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create user operation record: %w", err)
	}
	return nil
}

// UpdateResult stores the final status of the operation identified by userOpHash
func (r *OperationRepository) UpdateResult(ctx context.Context, userOpHash string, result domain.OperationResult) error {
	if !result.Status.Terminal() {
		return domain.NewError(domain.ErrorCodeParameterInvalid,
			fmt.Errorf("result status %q is not final", result.Status))
	}

	updates := map[string]interface{}{
		"status":     result.Status,
		"updated_at": time.Now().UTC(),
	}
	if result.TxHash != "" {
		updates["tx_hash"] = result.TxHash
	}
	if result.Error != "" {
		updates["error"] = result.Error
	}

	tx := r.db.WithContext(ctx).
		Model(&domain.OperationRecord{}).
		Where("user_op_hash = ?", userOpHash).
		Updates(updates)
	if tx.Error != nil {
		return fmt.Errorf("failed to update user operation %s: %w", userOpHash, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.NewError(domain.ErrorCodeResourceNotFound,
			fmt.Errorf("user operation %s not found", userOpHash))
	}
	return nil
}

// FindByHash retrieves one operation by its userOpHash
func (r *OperationRepository) FindByHash(ctx context.Context, userOpHash string) (*domain.OperationRecord, error) {
	var record domain.OperationRecord
	if err := r.db.WithContext(ctx).Where("user_op_hash = ?", userOpHash).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.ErrorCodeResourceNotFound, err,
				domain.WithMsg("user operation not found"))
		}
		return nil, err
	}
	return &record, nil
}

// FindBySender retrieves the latest operations of a smart account, newest first
func (r *OperationRepository) FindBySender(ctx context.Context, sender string, limit int) ([]*domain.OperationRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var records []*domain.OperationRecord
	if err := r.db.WithContext(ctx).
		Where("sender = ?", sender).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
