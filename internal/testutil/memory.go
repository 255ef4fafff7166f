// Package testutil holds in-memory repository implementations for tests that exercise
// the services and HTTP layer without a database.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
	"github.com/sangkips/godi-api/internal/domain/enum"
	"github.com/sangkips/godi-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Store keeps every table in memory behind one mutex
type Store struct {
	mu           sync.Mutex
	products     []*entity.Product
	transactions []*entity.Transaction
	sales        []entity.Sale
	idempotency  map[string]*entity.IdempotencyKey
	now          func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		idempotency: map[string]*entity.IdempotencyKey{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Products returns the product table as a ProductRepository
func (s *Store) Products() repository.ProductRepository { return productStore{s} }

// Transactions returns the transaction table as a TransactionRepository
func (s *Store) Transactions() repository.TransactionRepository { return transactionStore{s} }

// Sales returns the sale table as a SaleRepository
func (s *Store) Sales() repository.SaleRepository { return saleStore{s} }

// Idempotency returns the idempotency table as an IdempotencyRepository
func (s *Store) Idempotency() repository.IdempotencyRepository { return idempotencyStore{s} }

// TransactionCount reports how many headers are stored
func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

type productStore struct{ s *Store }

func (r productStore) find(ownerID, id uuid.UUID) *entity.Product {
	for _, p := range r.s.products {
		if p.ID == id && p.UserID == ownerID && ownerID != uuid.Nil {
			return p
		}
	}
	return nil
}

func (r productStore) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	r.s.products = append(r.s.products, &cp)
	return nil
}

func (r productStore) GetByID(_ context.Context, ownerID, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p := r.find(ownerID, id); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r productStore) GetByIDs(_ context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Product{}
	for _, id := range ids {
		if p := r.find(ownerID, id); p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r productStore) Update(_ context.Context, ownerID, id uuid.UUID, fields map[string]interface{}) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.find(ownerID, id)
	if p == nil {
		return false, nil
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "category":
			p.Category = v.(enum.ProductCategory)
		case "price":
			p.Price = v.(decimal.Decimal)
		case "available_stock":
			p.AvailableStock = v.(int)
		case "max_stock":
			p.MaxStock = v.(int)
		case "min_stock":
			p.MinStock = v.(int)
		case "image":
			p.Image = v.(*string)
		case "supplier":
			p.Supplier = v.(*string)
		}
	}
	p.UpdatedAt = r.s.now()
	return true, nil
}

func (r productStore) Delete(_ context.Context, ownerID, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, p := range r.s.products {
		if p.ID == id && p.UserID == ownerID {
			r.s.products = append(r.s.products[:i], r.s.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r productStore) List(_ context.Context, ownerID uuid.UUID, params *repository.ProductFilterParams) ([]entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Product{}
	for i := len(r.s.products) - 1; i >= 0; i-- {
		p := r.s.products[i]
		if p.UserID != ownerID {
			continue
		}
		if params != nil {
			if params.Category != "" && !strings.EqualFold(params.Category, "all") && string(p.Category) != params.Category {
				continue
			}
			if params.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) {
				continue
			}
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r productStore) DecrementStock(_ context.Context, ownerID, id uuid.UUID, quantity int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.find(ownerID, id)
	if p == nil {
		return false, nil
	}
	p.AvailableStock = max(p.AvailableStock-quantity, 0)
	p.TotalSold += quantity
	return true, nil
}

func (r productStore) AdjustStock(_ context.Context, ownerID, id uuid.UUID, change int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.find(ownerID, id)
	if p == nil {
		return false, nil
	}
	p.AvailableStock = max(p.AvailableStock+change, 0)
	return true, nil
}

type transactionStore struct{ s *Store }

func (r transactionStore) Create(_ context.Context, txn *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = r.s.now()
	}
	txn.UpdatedAt = txn.CreatedAt
	cp := *txn
	cp.Sales = nil
	r.s.transactions = append(r.s.transactions, &cp)
	return nil
}

func (r transactionStore) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, t := range r.s.transactions {
		if t.ID == id && t.UserID == ownerID {
			r.s.transactions = append(r.s.transactions[:i], r.s.transactions[i+1:]...)
			break
		}
	}
	kept := r.s.sales[:0]
	for _, sale := range r.s.sales {
		if sale.TransactionID != id {
			kept = append(kept, sale)
		}
	}
	r.s.sales = kept
	return nil
}

func (r transactionStore) GetWithSales(_ context.Context, ownerID, id uuid.UUID) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.ID == id && t.UserID == ownerID {
			cp := *t
			for _, sale := range r.s.sales {
				if sale.TransactionID == id {
					cp.Sales = append(cp.Sales, sale)
				}
			}
			return &cp, nil
		}
	}
	return nil, nil
}

func (r transactionStore) ListCreatedBetween(_ context.Context, ownerID uuid.UUID, from, to time.Time) ([]entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Transaction{}
	for _, t := range r.s.transactions {
		if t.UserID == ownerID && !t.CreatedAt.Before(from) && !t.CreatedAt.After(to) {
			out = append(out, *t)
		}
	}
	return out, nil
}

type saleStore struct{ s *Store }

func (r saleStore) CreateBatch(_ context.Context, sales []entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for i := range sales {
		if sales[i].ID == uuid.Nil {
			sales[i].ID = uuid.New()
		}
		sales[i].CreatedAt = now
		r.s.sales = append(r.s.sales, sales[i])
	}
	return nil
}

func (r saleStore) List(_ context.Context, ownerID uuid.UUID, params *repository.SaleFilterParams) ([]entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Sale{}
	for _, sale := range r.s.sales {
		if sale.UserID != ownerID {
			continue
		}
		if params != nil {
			if params.From != nil && sale.TransactionDate.Before(*params.From) {
				continue
			}
			if params.To != nil && sale.TransactionDate.After(*params.To) {
				continue
			}
		}
		out = append(out, sale)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TransactionDate.After(out[j].TransactionDate)
	})
	return out, nil
}

type idempotencyStore struct{ s *Store }

func idempotencyKey(key string, userID uuid.UUID) string {
	return userID.String() + "|" + key
}

func (r idempotencyStore) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if k, ok := r.s.idempotency[idempotencyKey(key, userID)]; ok {
		cp := *k
		return &cp, nil
	}
	return nil, nil
}

func (r idempotencyStore) Save(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *ikey
	r.s.idempotency[idempotencyKey(ikey.Key, ikey.UserID)] = &cp
	return nil
}

func (r idempotencyStore) Reserve(_ context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := idempotencyKey(ikey.Key, ikey.UserID)
	if existing, ok := r.s.idempotency[k]; ok && !existing.ExpiresAt.Before(ikey.CreatedAt) {
		return false, nil
	}
	cp := *ikey
	r.s.idempotency[k] = &cp
	return true, nil
}

func (r idempotencyStore) Release(_ context.Context, key string, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := idempotencyKey(key, userID)
	if existing, ok := r.s.idempotency[k]; ok && existing.IsPending() {
		delete(r.s.idempotency, k)
	}
	return nil
}

func (r idempotencyStore) DeleteExpired(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	var n int64
	for k, v := range r.s.idempotency {
		if v.IsExpired(now) {
			delete(r.s.idempotency, k)
			n++
		}
	}
	return n, nil
}
