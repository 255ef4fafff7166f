package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
	"github.com/sangkips/godi-api/internal/domain/enum"
	"github.com/sangkips/godi-api/internal/domain/repository"
	"github.com/sangkips/godi-api/internal/infrastructure/events"
	"github.com/sangkips/godi-api/internal/infrastructure/metrics"
	"github.com/sangkips/godi-api/pkg/apperror"
	"github.com/sangkips/godi-api/pkg/validation"
	"github.com/shopspring/decimal"
)

const minMaxStockMessage = "min_stock cannot be greater than max_stock"

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
	publisher   events.Publisher
	metrics     *metrics.Metrics
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, publisher events.Publisher, m *metrics.Metrics) *ProductService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ProductService{
		productRepo: productRepo,
		publisher:   publisher,
		metrics:     m,
	}
}

// CreateProductInput represents the create product input.
// Numeric fields are floats so non-integral stock is reported as a validation error.
type CreateProductInput struct {
	UserID         uuid.UUID `json:"-"`
	Name           *string   `json:"name" validate:"required,notblank,max=200"`
	Category       *string   `json:"category" validate:"required,category"`
	Price          *float64  `json:"price" validate:"required,gte=0,lte=999999.99"`
	AvailableStock *float64  `json:"available_stock" validate:"omitempty,wholenum,gte=0"`
	MaxStock       *float64  `json:"max_stock" validate:"omitempty,wholenum,gt=0"`
	MinStock       *float64  `json:"min_stock" validate:"omitempty,wholenum,gte=0"`
	Image          *string   `json:"image" validate:"omitempty,max=500"`
	Supplier       *string   `json:"supplier" validate:"omitempty,max=200"`
}

// UpdateProductInput carries only the fields the caller wants to change
type UpdateProductInput struct {
	UserID         uuid.UUID `json:"-"`
	ID             uuid.UUID `json:"-"`
	Name           *string   `json:"name" validate:"omitempty,notblank,max=200"`
	Category       *string   `json:"category" validate:"omitempty,category"`
	Price          *float64  `json:"price" validate:"omitempty,gte=0,lte=999999.99"`
	AvailableStock *float64  `json:"available_stock" validate:"omitempty,wholenum,gte=0"`
	MaxStock       *float64  `json:"max_stock" validate:"omitempty,wholenum,gt=0"`
	MinStock       *float64  `json:"min_stock" validate:"omitempty,wholenum,gte=0"`
	Image          *string   `json:"image" validate:"omitempty,max=500"`
	Supplier       *string   `json:"supplier" validate:"omitempty,max=200"`
}

// CreateProduct validates and stores a new product with total_sold = 0
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	details := validation.Messages(input, "")

	maxStock := entity.DefaultMaxStock
	if input.MaxStock != nil {
		maxStock = int(*input.MaxStock)
	}
	minStock := 0
	if input.MinStock != nil {
		minStock = int(*input.MinStock)
	}
	if minStock > maxStock {
		details = append(details, minMaxStockMessage)
	}
	if len(details) > 0 {
		return nil, apperror.NewValidationError(details)
	}

	product := &entity.Product{
		UserID:   input.UserID,
		Name:     strings.ToUpper(strings.TrimSpace(*input.Name)),
		Category: enum.ProductCategory(*input.Category),
		Price:    decimal.NewFromFloat(*input.Price).Round(currencyPlaces),
		MaxStock: maxStock,
		MinStock: minStock,
		Image:    trimmedOrNil(input.Image),
		Supplier: trimmedOrNil(input.Supplier),
	}
	if input.AvailableStock != nil {
		product.AvailableStock = int(*input.AvailableStock)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperror.NewPersistenceError("Failed to create product", err)
	}

	s.notify(ctx, events.EventProductCreated, product.UserID, product.ID)
	return product, nil
}

// GetProduct retrieves one owned product
func (s *ProductService) GetProduct(ctx context.Context, ownerID, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists the caller's products, newest first
func (s *ProductService) ListProducts(ctx context.Context, ownerID uuid.UUID, params *repository.ProductFilterParams) ([]entity.Product, error) {
	if params != nil {
		params.Search = strings.TrimSpace(params.Search)
	}
	return s.productRepo.List(ctx, ownerID, params)
}

// UpdateProduct merges the supplied fields into an owned product
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	details := validation.Messages(input, "")
	if len(details) > 0 {
		return nil, apperror.NewValidationError(details)
	}

	current, err := s.GetProduct(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	minStock, maxStock := current.MinStock, current.MaxStock

	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		fields["category"] = enum.ProductCategory(*input.Category)
	}
	if input.Price != nil {
		fields["price"] = decimal.NewFromFloat(*input.Price).Round(currencyPlaces)
	}
	if input.AvailableStock != nil {
		fields["available_stock"] = int(*input.AvailableStock)
	}
	if input.MaxStock != nil {
		maxStock = int(*input.MaxStock)
		fields["max_stock"] = maxStock
	}
	if input.MinStock != nil {
		minStock = int(*input.MinStock)
		fields["min_stock"] = minStock
	}
	if input.Image != nil {
		fields["image"] = trimmedOrNil(input.Image)
	}
	if input.Supplier != nil {
		fields["supplier"] = trimmedOrNil(input.Supplier)
	}

	if minStock > maxStock {
		return nil, apperror.NewValidationError([]string{minMaxStockMessage})
	}

	// An empty patch still refreshes updated_at.
	if len(fields) == 0 {
		fields["updated_at"] = time.Now().UTC()
	}

	found, err := s.productRepo.Update(ctx, input.UserID, input.ID, fields)
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to update product", err)
	}
	if !found {
		return nil, apperror.NewNotFoundError("Product")
	}

	s.notify(ctx, events.EventProductUpdated, input.UserID, input.ID)
	return s.GetProduct(ctx, input.UserID, input.ID)
}

// DeleteProduct soft-deletes an owned product. Sales keep their name/category snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, ownerID, id uuid.UUID) error {
	deleted, err := s.productRepo.Delete(ctx, ownerID, id)
	if err != nil {
		return apperror.NewPersistenceError("Failed to delete product", err)
	}
	if !deleted {
		return apperror.NewNotFoundError("Product")
	}

	s.notify(ctx, events.EventProductDeleted, ownerID, id)
	return nil
}

// DecrementStock records quantity units sold: stock drops by quantity (never below zero)
// and total_sold grows by quantity.
func (s *ProductService) DecrementStock(ctx context.Context, ownerID, id uuid.UUID, quantity int) error {
	found, err := s.productRepo.DecrementStock(ctx, ownerID, id, quantity)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NewNotFoundError("Product")
	}

	s.notify(ctx, events.EventStockChanged, ownerID, id)
	return nil
}

// AdjustStock applies a manual stock correction, clamping at zero
func (s *ProductService) AdjustStock(ctx context.Context, ownerID, id uuid.UUID, change float64) (*entity.Product, error) {
	if change == 0 || change != float64(int(change)) || change > 10000 || change < -10000 {
		return nil, apperror.NewValidationError([]string{validation.Message("change", false)})
	}

	found, err := s.productRepo.AdjustStock(ctx, ownerID, id, int(change))
	if err != nil {
		return nil, apperror.NewPersistenceError("Failed to update stock", err)
	}
	if !found {
		return nil, apperror.NewNotFoundError("Product")
	}

	s.notify(ctx, events.EventStockChanged, ownerID, id)
	return s.GetProduct(ctx, ownerID, id)
}

func (s *ProductService) notify(ctx context.Context, t events.EventType, ownerID, entityID uuid.UUID) {
	publishChange(ctx, s.publisher, s.metrics, t, ownerID, entityID)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
