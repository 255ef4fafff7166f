package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ProductCategory is the fixed set of shelf categories a product can belong to
type ProductCategory string

const (
	CategoryNotebooks   ProductCategory = "Notebooks"
	CategoryWriting     ProductCategory = "Writing"
	CategoryArtSupplies ProductCategory = "Art Supplies"
	CategoryPaper       ProductCategory = "Paper"
	CategoryAccessories ProductCategory = "Accessories"
)

// ProductCategories lists every valid category in display order
var ProductCategories = []ProductCategory{
	CategoryNotebooks,
	CategoryWriting,
	CategoryArtSupplies,
	CategoryPaper,
	CategoryAccessories,
}

func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether c is one of ProductCategories
func (c ProductCategory) IsValid() bool {
	for _, v := range ProductCategories {
		if v == c {
			return true
		}
	}
	return false
}

func (c ProductCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(c))
}

func (c *ProductCategory) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*c = ProductCategory(str)
	return nil
}

func (c ProductCategory) Value() (driver.Value, error) {
	return string(c), nil
}

func (c *ProductCategory) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*c = ProductCategory(v)
	case []byte:
		*c = ProductCategory(string(v))
	}
	return nil
}
