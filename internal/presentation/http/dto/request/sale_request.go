package request

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sangkips/godi-api/internal/application/service"
)

// RecordSaleRequest is the checkout body. Items stays raw so a badly typed line is
// reported against its own index instead of failing the whole bind.
type RecordSaleRequest struct {
	Items         json.RawMessage `json:"items"`
	PaymentMethod string          `json:"payment_method"`
}

// ToInput maps the request onto the service input for ownerID. Items that are not a JSON
// array map to no items at all.
func (r *RecordSaleRequest) ToInput(ownerID uuid.UUID) *service.RecordSaleInput {
	var items []service.SaleItemInput
	if err := json.Unmarshal(r.Items, &items); err != nil {
		items = nil
	}
	return &service.RecordSaleInput{
		UserID:        ownerID,
		PaymentMethod: r.PaymentMethod,
		Items:         items,
	}
}

// SaleFilterRequest bounds the sales listing
type SaleFilterRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}
