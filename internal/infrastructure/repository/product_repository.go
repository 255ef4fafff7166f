package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
	domainRepo "github.com/sangkips/godi-api/internal/domain/repository"
	"gorm.io/gorm"
)

// likeEscaper makes search text match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) Update(ctx context.Context, ownerID, id uuid.UUID, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *productRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Delete(&entity.Product{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *productRepository) List(ctx context.Context, ownerID uuid.UUID, params *domainRepo.ProductFilterParams) ([]entity.Product, error) {
	query := r.db.WithContext(ctx).Model(&entity.Product{}).Scopes(OwnerScope(ownerID))

	if params != nil {
		if params.Category != "" && !strings.EqualFold(params.Category, "all") {
			query = query.Where("category = ?", params.Category)
		}
		if params.Search != "" {
			query = query.Where("name ILIKE ?", "%"+likeEscaper.Replace(params.Search)+"%")
		}
	}

	products := []entity.Product{}
	err := query.Order("created_at DESC").Order("id DESC").Find(&products).Error
	return products, err
}

// DecrementStock clamps at zero in the database so concurrent sales never observe a negative level.
// UPDATE products SET available_stock = GREATEST(available_stock - q, 0), total_sold = total_sold + q
func (r *productRepository) DecrementStock(ctx context.Context, ownerID, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"available_stock": gorm.Expr("GREATEST(available_stock - ?, 0)", quantity),
			"total_sold":      gorm.Expr("total_sold + ?", quantity),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *productRepository) AdjustStock(ctx context.Context, ownerID, id uuid.UUID, change int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		Update("available_stock", gorm.Expr("GREATEST(available_stock + ?, 0)", change))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
