package enum

// StockStatus is derived from a product's stock levels; it is never stored
type StockStatus string

const (
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOverstock  StockStatus = "overstock"
	StockStatusInStock    StockStatus = "in_stock"
)

// StockStatusFor classifies a stock level against the product's bounds
func StockStatusFor(available, minStock, maxStock int) StockStatus {
	switch {
	case available <= 0:
		return StockStatusOutOfStock
	case available <= minStock:
		return StockStatusLowStock
	case maxStock > 0 && available >= maxStock:
		return StockStatusOverstock
	default:
		return StockStatusInStock
	}
}
