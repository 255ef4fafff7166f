package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultMaxStock applies when a product is created without a max_stock
const DefaultMaxStock = 100

// Product represents a product in the inventory
type Product struct {
	ID             uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID            `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string               `gorm:"size:200;not null" json:"name"`
	Category       enum.ProductCategory `gorm:"size:50;not null;index" json:"category"`
	Price          decimal.Decimal      `gorm:"type:numeric(10,2);not null;default:0" json:"-"`
	AvailableStock int                  `gorm:"not null;default:0" json:"available_stock"`
	MaxStock       int                  `gorm:"not null;default:100" json:"max_stock"`
	MinStock       int                  `gorm:"not null;default:0" json:"min_stock"`
	TotalSold      int                  `gorm:"not null;default:0" json:"total_sold"`
	Image          *string              `gorm:"size:500" json:"image,omitempty"`
	Supplier       *string              `gorm:"size:200" json:"supplier,omitempty"`
	CreatedAt      time.Time            `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	DeletedAt      gorm.DeletedAt       `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// StockStatus classifies the current stock level
func (p *Product) StockStatus() enum.StockStatus {
	return enum.StockStatusFor(p.AvailableStock, p.MinStock, p.MaxStock)
}

// MarshalJSON renders price as a number and adds the derived stock status
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		Price       float64          `json:"price"`
		StockStatus enum.StockStatus `json:"stock_status"`
	}{
		Alias:       Alias(p),
		Price:       p.Price.InexactFloat64(),
		StockStatus: p.StockStatus(),
	})
}
