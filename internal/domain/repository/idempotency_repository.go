package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an idempotency key by its key string and user ID
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Save stores a key, replacing an expired entry with the same key
	Save(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Reserve inserts a pending key unless a live entry already holds it, and reports
	// whether this caller now owns the key
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	// Release drops a pending key so the request can be retried
	Release(ctx context.Context, key string, userID uuid.UUID) error
	// DeleteExpired removes expired idempotency keys and reports how many were removed
	DeleteExpired(ctx context.Context) (int64, error)
}
