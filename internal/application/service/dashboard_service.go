package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/config"
	"github.com/sangkips/godi-api/internal/domain/entity"
	"github.com/sangkips/godi-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const trendMonths = 6

// DashboardService provides dashboard statistics
type DashboardService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	saleRepo        repository.SaleRepository
	cfg             config.InventoryConfig
	now             func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	productRepo repository.ProductRepository,
	transactionRepo repository.TransactionRepository,
	saleRepo repository.SaleRepository,
	cfg config.InventoryConfig,
) *DashboardService {
	return &DashboardService{
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		saleRepo:        saleRepo,
		cfg:             cfg,
		now:             time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalProducts     int               `json:"totalProducts"`
	TotalStock        int               `json:"totalStock"`
	LowStockProducts  []entity.Product  `json:"lowStockProducts"`
	OverstockProducts []entity.Product  `json:"overstockProducts"`
	MonthlyRevenue    float64           `json:"monthlyRevenue"`
	SalesTrend        []SalesTrendPoint `json:"salesTrend"`
	TopProducts       []entity.Product  `json:"topProducts"`
}

// SalesTrendPoint aggregates one calendar month of line items
type SalesTrendPoint struct {
	Month string  `json:"month"`
	Sales float64 `json:"sales"`
	Items int     `json:"items"`
}

// GetDashboardStats computes the snapshot for ownerID. Month boundaries follow loc.
func (s *DashboardService) GetDashboardStats(ctx context.Context, ownerID uuid.UUID, loc *time.Location) (*DashboardStats, error) {
	if loc == nil {
		loc = time.UTC
	}
	now := s.now().In(loc)

	products, err := s.productRepo.List(ctx, ownerID, nil)
	if err != nil {
		return nil, err
	}

	monthStart := startOfMonth(now)
	txns, err := s.transactionRepo.ListCreatedBetween(ctx, ownerID, monthStart.UTC(), now.UTC())
	if err != nil {
		return nil, err
	}

	trendStart := monthStart.AddDate(0, -(trendMonths - 1), 0)
	from, to := trendStart.UTC(), now.UTC()
	sales, err := s.saleRepo.List(ctx, ownerID, &repository.SaleFilterParams{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalProducts:     len(products),
		TotalStock:        TotalStock(products),
		LowStockProducts:  LowStock(products, s.cfg.LowStockThreshold, s.cfg.DashboardListLimit),
		OverstockProducts: Overstock(products, s.cfg.DashboardListLimit),
		MonthlyRevenue:    Revenue(txns).InexactFloat64(),
		SalesTrend:        SalesTrend(sales, now, trendMonths),
		TopProducts:       TopSellers(products, s.cfg.DashboardTopLimit),
	}, nil
}

// TotalStock sums available stock across all products
func TotalStock(products []entity.Product) int {
	total := 0
	for _, p := range products {
		total += p.AvailableStock
	}
	return total
}

// LowStock returns products at or below threshold, lowest stock first
func LowStock(products []entity.Product, threshold, limit int) []entity.Product {
	out := filterProducts(products, func(p *entity.Product) bool {
		return p.AvailableStock <= threshold
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvailableStock < out[j].AvailableStock
	})
	return capProducts(out, limit)
}

// Overstock returns products at or above their max_stock, highest stock first
func Overstock(products []entity.Product, limit int) []entity.Product {
	out := filterProducts(products, func(p *entity.Product) bool {
		return p.MaxStock > 0 && p.AvailableStock >= p.MaxStock
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvailableStock > out[j].AvailableStock
	})
	return capProducts(out, limit)
}

// TopSellers ranks products with sales by total_sold. Ties keep listing order.
func TopSellers(products []entity.Product, limit int) []entity.Product {
	out := filterProducts(products, func(p *entity.Product) bool {
		return p.TotalSold > 0
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSold > out[j].TotalSold
	})
	return capProducts(out, limit)
}

// Revenue sums transaction totals
func Revenue(txns []entity.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(t.Total)
	}
	return sum
}

// SalesTrend buckets sales into the last months calendar months ending at now's month,
// ascending. Months without sales are reported with zeros.
func SalesTrend(sales []entity.Sale, now time.Time, months int) []SalesTrendPoint {
	loc := now.Location()
	first := startOfMonth(now).AddDate(0, -(months - 1), 0)

	points := make([]SalesTrendPoint, months)
	index := make(map[string]int, months)
	sums := make([]decimal.Decimal, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		points[i].Month = key
		index[key] = i
		sums[i] = decimal.Zero
	}

	for _, sale := range sales {
		i, ok := index[sale.TransactionDate.In(loc).Format("2006-01")]
		if !ok {
			continue
		}
		sums[i] = sums[i].Add(sale.Total)
		points[i].Items += sale.Quantity
	}
	for i := range points {
		points[i].Sales = sums[i].InexactFloat64()
	}
	return points
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func filterProducts(products []entity.Product, keep func(*entity.Product) bool) []entity.Product {
	out := make([]entity.Product, 0)
	for i := range products {
		if keep(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

func capProducts(products []entity.Product, limit int) []entity.Product {
	if limit > 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}
