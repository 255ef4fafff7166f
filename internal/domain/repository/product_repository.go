package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
)

// ProductRepository defines the interface for product data operations.
// Every method is scoped to the owning account.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query (prevents N+1)
	GetByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error)
	// Update writes only the given columns so concurrent stock counters are not overwritten.
	// Reports false when no owned product matched.
	Update(ctx context.Context, ownerID, id uuid.UUID, fields map[string]interface{}) (bool, error)
	// Delete reports false when no owned product matched
	Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
	List(ctx context.Context, ownerID uuid.UUID, params *ProductFilterParams) ([]entity.Product, error)
	// DecrementStock subtracts quantity from available stock, clamping at zero, and adds the
	// full quantity to total_sold in one statement. Reports false when no owned product matched.
	DecrementStock(ctx context.Context, ownerID, id uuid.UUID, quantity int) (bool, error)
	// AdjustStock adds change (possibly negative) to available stock, clamping at zero.
	AdjustStock(ctx context.Context, ownerID, id uuid.UUID, change int) (bool, error)
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Search   string
	Category string // "" or "all" disables the filter
}
