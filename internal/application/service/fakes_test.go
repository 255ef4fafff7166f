package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
	"github.com/sangkips/godi-api/internal/domain/repository"
	"github.com/sangkips/godi-api/internal/infrastructure/events"
	"github.com/stretchr/testify/mock"
)

// memProductRepo is an in-memory ProductRepository. The mutex plays the part of the
// database's row lock for the single-statement decrement.
type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*entity.Product
	order    []uuid.UUID

	decrementErr error
	updateErr    error
	createErr    error
}

func newMemProductRepo(products ...entity.Product) *memProductRepo {
	r := &memProductRepo{products: map[uuid.UUID]*entity.Product{}}
	for i := range products {
		p := products[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.products[p.ID] = &p
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	r.products[p.ID] = &cp
	r.order = append(r.order, p.ID)
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, ownerID, id uuid.UUID) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.UserID != ownerID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetByIDs(_ context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok && p.UserID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Update(_ context.Context, ownerID, id uuid.UUID, fields map[string]interface{}) (bool, error) {
	if r.updateErr != nil {
		return false, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.UserID != ownerID {
		return false, nil
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "available_stock":
			p.AvailableStock = v.(int)
		case "max_stock":
			p.MaxStock = v.(int)
		case "min_stock":
			p.MinStock = v.(int)
		case "supplier":
			p.Supplier = v.(*string)
		}
	}
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *memProductRepo) Delete(_ context.Context, ownerID, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.UserID != ownerID {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

func (r *memProductRepo) List(_ context.Context, ownerID uuid.UUID, _ *repository.ProductFilterParams) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Product{}
	for i := len(r.order) - 1; i >= 0; i-- {
		if p, ok := r.products[r.order[i]]; ok && p.UserID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) DecrementStock(_ context.Context, ownerID, id uuid.UUID, quantity int) (bool, error) {
	if r.decrementErr != nil {
		return false, r.decrementErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.UserID != ownerID {
		return false, nil
	}
	p.AvailableStock = max(p.AvailableStock-quantity, 0)
	p.TotalSold += quantity
	return true, nil
}

func (r *memProductRepo) AdjustStock(_ context.Context, ownerID, id uuid.UUID, change int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.UserID != ownerID {
		return false, nil
	}
	p.AvailableStock = max(p.AvailableStock+change, 0)
	return true, nil
}

func (r *memProductRepo) get(id uuid.UUID) entity.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.products[id]
}

// MockTransactionRepository is a testify mock of repository.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *entity.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetWithSales(ctx context.Context, ownerID, id uuid.UUID) (*entity.Transaction, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListCreatedBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]entity.Transaction, error) {
	args := m.Called(ctx, ownerID, from, to)
	var txns []entity.Transaction
	if arg0 := args.Get(0); arg0 != nil {
		txns = arg0.([]entity.Transaction)
	}
	return txns, args.Error(1)
}

// MockSaleRepository is a testify mock of repository.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) CreateBatch(ctx context.Context, sales []entity.Sale) error {
	args := m.Called(ctx, sales)
	return args.Error(0)
}

func (m *MockSaleRepository) List(ctx context.Context, ownerID uuid.UUID, params *repository.SaleFilterParams) ([]entity.Sale, error) {
	args := m.Called(ctx, ownerID, params)
	var sales []entity.Sale
	if arg0 := args.Get(0); arg0 != nil {
		sales = arg0.([]entity.Sale)
	}
	return sales, args.Error(1)
}

// assignID mimics the BeforeCreate hook for mocked header inserts
func assignID(args mock.Arguments) {
	args.Get(1).(*entity.Transaction).ID = uuid.New()
}

type capturePublisher struct {
	mu  sync.Mutex
	got []events.ChangeEvent
}

func (c *capturePublisher) Publish(_ context.Context, e events.ChangeEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, e)
	return nil
}

func (c *capturePublisher) types() []events.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.EventType, len(c.got))
	for i, e := range c.got {
		out[i] = e.Type
	}
	return out
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
