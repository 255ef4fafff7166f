package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type lineItem struct {
	ProductID *string  `json:"product_id" validate:"required,notblank"`
	Quantity  *float64 `json:"quantity" validate:"required,wholenum,gt=0,lte=10000"`
	UnitPrice *float64 `json:"unit_price" validate:"required,gte=0,lte=999999.99"`
}

type shelfItem struct {
	Name     string `json:"name" validate:"notblank,max=200"`
	Category string `json:"category" validate:"category"`
}

func ptr[T any](v T) *T { return &v }

func TestMessages_Valid(t *testing.T) {
	msgs := Messages(lineItem{ProductID: ptr("abc"), Quantity: ptr(2.0), UnitPrice: ptr(80.0)}, "")

	assert.Empty(t, msgs)
}

func TestMessages_MissingAndInvalidInFieldOrder(t *testing.T) {
	msgs := Messages(lineItem{Quantity: ptr(2.5), UnitPrice: ptr(-1.0)}, " in sale item")

	assert.Equal(t, []string{
		"Field 'product_id' is required in sale item",
		"Invalid value for field 'quantity' in sale item",
		"Invalid value for field 'unit_price' in sale item",
	}, msgs)
}

func TestMessages_Bounds(t *testing.T) {
	cases := []struct {
		name string
		item lineItem
		ok   bool
	}{
		{"quantity zero", lineItem{ptr("p"), ptr(0.0), ptr(1.0)}, false},
		{"quantity max", lineItem{ptr("p"), ptr(10000.0), ptr(1.0)}, true},
		{"quantity over max", lineItem{ptr("p"), ptr(10001.0), ptr(1.0)}, false},
		{"price zero", lineItem{ptr("p"), ptr(1.0), ptr(0.0)}, true},
		{"price max", lineItem{ptr("p"), ptr(1.0), ptr(999999.99)}, true},
		{"price over max", lineItem{ptr("p"), ptr(1.0), ptr(1000000.0)}, false},
		{"blank product", lineItem{ptr("   "), ptr(1.0), ptr(1.0)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, len(Messages(tc.item, "")) == 0)
		})
	}
}

func TestMessages_Category(t *testing.T) {
	assert.Empty(t, Messages(shelfItem{Name: "PEN", Category: "Art Supplies"}, ""))
	assert.Equal(t,
		[]string{"Invalid value for field 'category'"},
		Messages(shelfItem{Name: "PEN", Category: "Toys"}, ""))
}

func TestFailures_ByJSONName(t *testing.T) {
	failed := Failures(lineItem{ProductID: ptr("  "), UnitPrice: ptr(1.0)})

	assert.Equal(t, map[string]bool{"product_id": false, "quantity": true}, failed)
	assert.Nil(t, Failures(lineItem{ProductID: ptr("a"), Quantity: ptr(1.0), UnitPrice: ptr(0.0)}))
}

func TestMustRegister_PanicsOnBadRule(t *testing.T) {
	assert.Panics(t, func() {
		mustRegister(validator.New(), map[string]validator.Func{"": notBlank})
	})
	assert.NotPanics(t, func() { Validator() })
}
