package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
	domainRepo "github.com/sangkips/godi-api/internal/domain/repository"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) domainRepo.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *entity.Transaction) error {
	return r.db.WithContext(ctx).Omit("Sales").Create(txn).Error
}

func (r *transactionRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Delete(&entity.Transaction{}, "id = ?", id).Error
}

func (r *transactionRepository) GetWithSales(ctx context.Context, ownerID, id uuid.UUID) (*entity.Transaction, error) {
	var txn entity.Transaction
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Preload("Sales", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		First(&txn, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) ListCreatedBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]entity.Transaction, error) {
	txns := []entity.Transaction{}
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at DESC").
		Find(&txns).Error
	return txns, err
}

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale line item repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

// CreateBatch inserts every line item in one statement
func (r *saleRepository) CreateBatch(ctx context.Context, sales []entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&sales).Error
}

func (r *saleRepository) List(ctx context.Context, ownerID uuid.UUID, params *domainRepo.SaleFilterParams) ([]entity.Sale, error) {
	query := r.db.WithContext(ctx).Model(&entity.Sale{}).Scopes(OwnerScope(ownerID))

	if params != nil {
		if params.From != nil {
			query = query.Where("transaction_date >= ?", *params.From)
		}
		if params.To != nil {
			query = query.Where("transaction_date <= ?", *params.To)
		}
	}

	sales := []entity.Sale{}
	err := query.Order("transaction_date DESC").Order("id DESC").Find(&sales).Error
	return sales, err
}
