package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is the header of one checkout; its line items are Sale rows
type Transaction struct {
	ID            uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID              `gorm:"type:uuid;not null;index" json:"user_id"`
	Subtotal      decimal.Decimal        `gorm:"type:numeric(14,2);not null" json:"-"`
	Tax           decimal.Decimal        `gorm:"type:numeric(14,2);not null" json:"-"`
	Total         decimal.Decimal        `gorm:"type:numeric(14,2);not null" json:"-"`
	PaymentMethod enum.PaymentMethod     `gorm:"size:50;not null;default:cash" json:"payment_method"`
	Status        enum.TransactionStatus `gorm:"size:20;not null;default:completed" json:"status"`
	CreatedAt     time.Time              `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`

	// Relationships
	Sales []Sale `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"sales,omitempty"`
}

// MarshalJSON renders money columns as numbers
func (t Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Alias
		Subtotal float64 `json:"subtotal"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
	}{
		Alias:    Alias(t),
		Subtotal: t.Subtotal.InexactFloat64(),
		Tax:      t.Tax.InexactFloat64(),
		Total:    t.Total.InexactFloat64(),
	})
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// Sale is one line item of a Transaction. Product name and category are copied at sale
// time so history survives product edits and deletes.
type Sale struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID   uuid.UUID            `gorm:"type:uuid;not null;index" json:"transaction_id"`
	UserID          uuid.UUID            `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID       uuid.UUID            `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName     string               `gorm:"size:200" json:"product_name"`
	ProductCategory enum.ProductCategory `gorm:"size:50" json:"product_category"`
	Quantity        int                  `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal      `gorm:"type:numeric(10,2);not null" json:"-"`
	Subtotal        decimal.Decimal      `gorm:"type:numeric(14,2);not null" json:"-"`
	Tax             decimal.Decimal      `gorm:"type:numeric(14,2);not null" json:"-"`
	Total           decimal.Decimal      `gorm:"type:numeric(14,2);not null" json:"-"`
	PaymentMethod   enum.PaymentMethod   `gorm:"size:50;not null;default:cash" json:"payment_method"`
	TransactionDate time.Time            `gorm:"not null;index" json:"transaction_date"`
	CreatedAt       time.Time            `json:"created_at"`
}

// MarshalJSON renders money columns as numbers
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Subtotal  float64 `json:"subtotal"`
		Tax       float64 `json:"tax"`
		Total     float64 `json:"total"`
	}{
		Alias:     Alias(s),
		UnitPrice: s.UnitPrice.InexactFloat64(),
		Subtotal:  s.Subtotal.InexactFloat64(),
		Tax:       s.Tax.InexactFloat64(),
		Total:     s.Total.InexactFloat64(),
	})
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}
