package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
)

// TransactionRepository defines the interface for transaction header operations
type TransactionRepository interface {
	Create(ctx context.Context, txn *entity.Transaction) error
	// Delete removes a header permanently; used to compensate a failed line-item write
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	GetWithSales(ctx context.Context, ownerID, id uuid.UUID) (*entity.Transaction, error)
	// ListCreatedBetween returns headers with from <= created_at <= to
	ListCreatedBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]entity.Transaction, error)
}

// SaleRepository defines the interface for sale line item operations
type SaleRepository interface {
	CreateBatch(ctx context.Context, sales []entity.Sale) error
	List(ctx context.Context, ownerID uuid.UUID, params *SaleFilterParams) ([]entity.Sale, error)
}

// SaleFilterParams bounds sale listings by transaction date; nil means open-ended
type SaleFilterParams struct {
	From *time.Time
	To   *time.Time
}
