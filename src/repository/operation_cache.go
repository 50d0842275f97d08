package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethaccount/dats/src/domain"
	"github.com/go-redis/redis/v8"
)

const (
	statusKeyPrefix = "userop:status"
	statusTTL       = 24 * time.Hour
)

// OperationCacheRepository keeps the live status of submitted operations in Redis.
type OperationCacheRepository struct {
	redis *redis.Client
}

func NewOperationCacheRepository(redis *redis.Client) *OperationCacheRepository {
	return &OperationCacheRepository{redis: redis}
}

func statusKey(userOpHash string) string {
	return fmt.Sprintf("%s:%s", statusKeyPrefix, userOpHash)
}

// SetStatus stores the status entry with a 24-hour expiration
func (r *OperationCacheRepository) SetStatus(ctx context.Context, userOpHash string, entry domain.OperationStatusEntry) error {
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal status entry: %w", err)
	}

	return r.redis.Set(ctx, statusKey(userOpHash), data, statusTTL).Err()
}

// GetStatus retrieves the cached status of userOpHash
func (r *OperationCacheRepository) GetStatus(ctx context.Context, userOpHash string) (*domain.OperationStatusEntry, error) {
	data, err := r.redis.Get(ctx, statusKey(userOpHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NewError(domain.ErrorCodeResourceNotFound,
				fmt.Errorf("no cached status for %s", userOpHash))
		}
		return nil, err
	}

	var entry domain.OperationStatusEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status entry: %w", err)
	}
	return &entry, nil
}

func (r *OperationCacheRepository) DeleteStatus(ctx context.Context, userOpHash string) error {
	return r.redis.Del(ctx, statusKey(userOpHash)).Err()
}
