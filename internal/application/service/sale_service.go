package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/entity"
	"github.com/sangkips/godi-api/internal/domain/enum"
	"github.com/sangkips/godi-api/internal/domain/repository"
	"github.com/sangkips/godi-api/internal/infrastructure/events"
	"github.com/sangkips/godi-api/internal/infrastructure/metrics"
	"github.com/sangkips/godi-api/pkg/apperror"
	"github.com/sangkips/godi-api/pkg/logger"
	"github.com/sangkips/godi-api/pkg/validation"
)

const (
	saleItemSuffix     = " in sale item"
	emptyItemsMessage  = "Invalid request: items array is required"
	recordSaleFailed   = "Failed to record sale"
	compensationBudget = 5 * time.Second
)

// StockDecrementer lowers a product's stock after a sale is persisted
type StockDecrementer interface {
	DecrementStock(ctx context.Context, ownerID, id uuid.UUID, quantity int) error
}

// SaleService records multi-item sales and exposes sale history
type SaleService struct {
	transactionRepo repository.TransactionRepository
	saleRepo        repository.SaleRepository
	productRepo     repository.ProductRepository
	stock           StockDecrementer
	publisher       events.Publisher
	metrics         *metrics.Metrics
	now             func() time.Time
}

// NewSaleService creates a new sale service
func NewSaleService(
	transactionRepo repository.TransactionRepository,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	stock StockDecrementer,
	publisher events.Publisher,
	m *metrics.Metrics,
) *SaleService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if m == nil {
		m = metrics.New()
	}
	return &SaleService{
		transactionRepo: transactionRepo,
		saleRepo:        saleRepo,
		productRepo:     productRepo,
		stock:           stock,
		publisher:       publisher,
		metrics:         m,
		now:             time.Now,
	}
}

// saleItemFields is the order in which a line's problems are reported
var saleItemFields = []string{"product_id", "quantity", "unit_price"}

// SaleItemInput is one cart line as submitted by the client
type SaleItemInput struct {
	ProductID *string  `json:"product_id" validate:"required,notblank"`
	Quantity  *float64 `json:"quantity" validate:"required,wholenum,gt=0,lte=10000"`
	UnitPrice *float64 `json:"unit_price" validate:"required,gte=0,lte=999999.99"`

	// mistyped holds fields that were present with the wrong JSON type
	mistyped map[string]bool
}

// UnmarshalJSON decodes one line without failing the whole cart. A field of the wrong JSON
// type is remembered and reported as invalid for this line; a line that is not an object
// decodes with every field missing.
func (in *SaleItemInput) UnmarshalJSON(data []byte) error {
	*in = SaleItemInput{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	in.ProductID = decodeItemField[string](fields, "product_id", in)
	in.Quantity = decodeItemField[float64](fields, "quantity", in)
	in.UnitPrice = decodeItemField[float64](fields, "unit_price", in)
	return nil
}

func decodeItemField[T any](fields map[string]json.RawMessage, name string, in *SaleItemInput) *T {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	var v T
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) || json.Unmarshal(raw, &v) != nil {
		if in.mistyped == nil {
			in.mistyped = map[string]bool{}
		}
		in.mistyped[name] = true
		return nil
	}
	return &v
}

// problems returns one message per offending field, in saleItemFields order
func (in *SaleItemInput) problems(productFound func(uuid.UUID) bool) ([]string, uuid.UUID) {
	failed := validation.Failures(in)
	if failed == nil {
		failed = map[string]bool{}
	}
	for field := range in.mistyped {
		failed[field] = false
	}

	var id uuid.UUID
	if _, bad := failed["product_id"]; !bad {
		parsed, err := uuid.Parse(strings.TrimSpace(*in.ProductID))
		switch {
		case err != nil || parsed == uuid.Nil:
			failed["product_id"] = false
		case productFound != nil && !productFound(parsed):
			failed["product_id"] = false
		default:
			id = parsed
		}
	}

	var msgs []string
	for _, field := range saleItemFields {
		if missing, bad := failed[field]; bad {
			msgs = append(msgs, validation.Message(field, missing)+saleItemSuffix)
		}
	}
	return msgs, id
}

// RecordSaleInput represents a checkout
type RecordSaleInput struct {
	UserID        uuid.UUID
	PaymentMethod string
	Items         []SaleItemInput
}

// RecordSaleResult is the persisted header together with its line items
type RecordSaleResult struct {
	Transaction *entity.Transaction `json:"transaction"`
	Sales       []entity.Sale       `json:"sales"`
}

type validatedItem struct {
	product  *entity.Product
	quantity int
	price    LinePrice
}

// RecordSale validates the cart, writes the header and line items, then decrements stock.
// A failed line-item write removes the header again. Stock decrement failures after that
// point are logged and counted but do not fail the sale.
func (s *SaleService) RecordSale(ctx context.Context, input *RecordSaleInput) (*RecordSaleResult, error) {
	items, err := s.validateItems(ctx, input)
	if err != nil {
		return nil, err
	}

	lines := make([]LinePrice, len(items))
	for i, item := range items {
		lines[i] = item.price
	}
	cart := PriceCart(lines)
	paymentMethod := enum.ParsePaymentMethod(input.PaymentMethod)

	txn := &entity.Transaction{
		UserID:        input.UserID,
		Subtotal:      cart.Subtotal,
		Tax:           cart.Tax,
		Total:         cart.Total,
		PaymentMethod: paymentMethod,
		Status:        enum.TransactionStatusCompleted,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		logger.Error(ctx).Err(err).Msg("transaction header insert failed")
		return nil, apperror.NewPersistenceError(recordSaleFailed, err)
	}

	sales := make([]entity.Sale, len(items))
	for i, item := range items {
		sales[i] = entity.Sale{
			TransactionID:   txn.ID,
			UserID:          input.UserID,
			ProductID:       item.product.ID,
			ProductName:     item.product.Name,
			ProductCategory: item.product.Category,
			Quantity:        item.quantity,
			UnitPrice:       item.price.UnitPrice,
			Subtotal:        item.price.Subtotal,
			Tax:             item.price.Tax,
			Total:           item.price.Total,
			PaymentMethod:   paymentMethod,
			TransactionDate: txn.CreatedAt,
		}
	}

	if err := s.saleRepo.CreateBatch(ctx, sales); err != nil {
		logger.Error(ctx).Err(err).Str("transaction_id", txn.ID.String()).Msg("sale line items insert failed")
		s.compensate(ctx, txn)
		return nil, apperror.NewPersistenceError(recordSaleFailed, err)
	}

	s.metrics.SalesRecorded.Inc()
	s.metrics.SaleLineItems.Add(float64(len(sales)))

	s.reconcileStock(ctx, input.UserID, txn.ID, items)

	publishChange(ctx, s.publisher, s.metrics, events.EventSaleRecorded, input.UserID, txn.ID)

	txn.Sales = nil
	return &RecordSaleResult{Transaction: txn, Sales: sales}, nil
}

func (s *SaleService) validateItems(ctx context.Context, input *RecordSaleInput) ([]validatedItem, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewValidationError([]string{emptyItemsMessage})
	}

	// First pass collects well-formed ids so ownership is checked with one query
	lookup := make([]uuid.UUID, 0, len(input.Items))
	for i := range input.Items {
		if _, id := input.Items[i].problems(nil); id != uuid.Nil {
			lookup = append(lookup, id)
		}
	}

	var products []entity.Product
	if len(lookup) > 0 {
		var err error
		products, err = s.productRepo.GetByIDs(ctx, input.UserID, lookup)
		if err != nil {
			return nil, apperror.NewPersistenceError(recordSaleFailed, err)
		}
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}
	owned := func(id uuid.UUID) bool { return productMap[id] != nil }

	var details []string
	items := make([]validatedItem, len(input.Items))
	for i := range input.Items {
		in := &input.Items[i]
		msgs, id := in.problems(owned)
		if len(msgs) > 0 {
			details = append(details, fmt.Sprintf("Item %d: %s", i+1, strings.Join(msgs, ", ")))
			continue
		}
		quantity := int(*in.Quantity)
		items[i] = validatedItem{
			product:  productMap[id],
			quantity: quantity,
			price:    PriceLine(quantity, *in.UnitPrice),
		}
	}
	if len(details) > 0 {
		return nil, apperror.NewValidationError(details)
	}
	return items, nil
}

// compensate removes a header whose line items could not be written. It runs even when the
// request context is already done.
func (s *SaleService) compensate(ctx context.Context, txn *entity.Transaction) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationBudget)
	defer cancel()

	if err := s.transactionRepo.Delete(cctx, txn.UserID, txn.ID); err != nil {
		s.metrics.SaleCompensations.WithLabelValues("failed").Inc()
		logger.Error(ctx).Err(err).
			Str("transaction_id", txn.ID.String()).
			Msg("compensating delete of transaction header failed; orphan header left behind")
		return
	}
	s.metrics.SaleCompensations.WithLabelValues("deleted").Inc()
}

// reconcileStock decrements stock per line item, in cart order
func (s *SaleService) reconcileStock(ctx context.Context, ownerID, txnID uuid.UUID, items []validatedItem) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationBudget)
	defer cancel()

	for _, item := range items {
		if err := s.stock.DecrementStock(sctx, ownerID, item.product.ID, item.quantity); err != nil {
			s.metrics.StockReconcileFailures.Inc()
			logger.Warn(ctx).Err(err).
				Str("transaction_id", txnID.String()).
				Str("product_id", item.product.ID.String()).
				Int("quantity", item.quantity).
				Msg("stock reconciliation warning: sale recorded but stock not decremented")
		}
	}
}

// ListSales returns the caller's line items, newest transaction first
func (s *SaleService) ListSales(ctx context.Context, ownerID uuid.UUID, params *repository.SaleFilterParams) ([]entity.Sale, error) {
	if params != nil && params.From != nil && params.To != nil && params.From.After(*params.To) {
		return nil, apperror.NewValidationError([]string{"start_date cannot be after end_date"})
	}
	return s.saleRepo.List(ctx, ownerID, params)
}

// GetTransaction returns one header with its line items
func (s *SaleService) GetTransaction(ctx context.Context, ownerID, id uuid.UUID) (*entity.Transaction, error) {
	txn, err := s.transactionRepo.GetWithSales(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	return txn, nil
}
