package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const maxMenuItemName = 100

// MenuItem is a priced entry of the catalog.
type MenuItem struct {
	ID    int
	Name  string
	Price decimal.Decimal
}

// NewMenuItem trims the name and applies catalog rules before the item is stored.
func NewMenuItem(name string, price decimal.Decimal) (*MenuItem, error) {
	item := &MenuItem{
		Name:  strings.TrimSpace(name),
		Price: price.Round(2),
	}
	var errs ValidationErrors
	switch {
	case item.Name == "":
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	case len(item.Name) > maxMenuItemName:
		errs = append(errs, ValidationError{Field: "name", Message: "name must not exceed 100 characters"})
	}
	if err := ValidatePrice(price); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return item, nil
}

// ValidatePrice rejects negative prices.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ValidationError{Field: "price", Message: "price must not be negative"}
	}
	return nil
}
