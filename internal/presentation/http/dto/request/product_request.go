package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/application/service"
)

// CreateProductRequest represents a product creation request.
// stock_quantity is accepted as an alias of available_stock.
type CreateProductRequest struct {
	Name           *string  `json:"name"`
	Category       *string  `json:"category"`
	Price          *float64 `json:"price"`
	AvailableStock *float64 `json:"available_stock"`
	StockQuantity  *float64 `json:"stock_quantity"`
	MaxStock       *float64 `json:"max_stock"`
	MinStock       *float64 `json:"min_stock"`
	Image          *string  `json:"image"`
	Supplier       *string  `json:"supplier"`
}

// ToInput maps the request onto the service input for ownerID
func (r *CreateProductRequest) ToInput(ownerID uuid.UUID) *service.CreateProductInput {
	return &service.CreateProductInput{
		UserID:         ownerID,
		Name:           r.Name,
		Category:       r.Category,
		Price:          r.Price,
		AvailableStock: firstSet(r.AvailableStock, r.StockQuantity),
		MaxStock:       r.MaxStock,
		MinStock:       r.MinStock,
		Image:          r.Image,
		Supplier:       r.Supplier,
	}
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name           *string  `json:"name"`
	Category       *string  `json:"category"`
	Price          *float64 `json:"price"`
	AvailableStock *float64 `json:"available_stock"`
	StockQuantity  *float64 `json:"stock_quantity"`
	MaxStock       *float64 `json:"max_stock"`
	MinStock       *float64 `json:"min_stock"`
	Image          *string  `json:"image"`
	Supplier       *string  `json:"supplier"`
}

// ToInput maps the request onto the service input for one owned product
func (r *UpdateProductRequest) ToInput(ownerID, id uuid.UUID) *service.UpdateProductInput {
	return &service.UpdateProductInput{
		UserID:         ownerID,
		ID:             id,
		Name:           r.Name,
		Category:       r.Category,
		Price:          r.Price,
		AvailableStock: firstSet(r.AvailableStock, r.StockQuantity),
		MaxStock:       r.MaxStock,
		MinStock:       r.MinStock,
		Image:          r.Image,
		Supplier:       r.Supplier,
	}
}

// AdjustStockRequest applies a signed stock correction
type AdjustStockRequest struct {
	Change *float64 `json:"change"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search   string `form:"search"`
	Category string `form:"category"`
}

func firstSet(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
