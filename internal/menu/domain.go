package menu

import (
	"time"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Category enumerates menu sections.
type Category string

const (
	CategoryAppetizer Category = "appetizer"
	CategoryMain      Category = "main"
	CategoryDessert   Category = "dessert"
	CategoryBeverage  Category = "beverage"
	CategorySpecialty Category = "specialty"
)

// ParseCategory validates a category supplied at the system boundary.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryAppetizer, CategoryMain, CategoryDessert, CategoryBeverage, CategorySpecialty:
		return Category(s), nil
	default:
		return "", shared.Validationf("unknown menu category %q", s)
	}
}

// Item is a dish on the menu. Price and CostPrice are VND amounts.
type Item struct {
	ID          string
	Name        string
	Description string
	Price       int64
	CostPrice   int64
	Category    Category
	Image       string
	Available   bool
	Popular     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Profit is the absolute margin per serving.
func (i Item) Profit() int64 {
	return i.Price - i.CostPrice
}

// ProfitMargin is the margin as a percentage of price. Zero price means
// zero margin rather than a division blowup.
func (i Item) ProfitMargin() float64 {
	if i.Price == 0 {
		return 0
	}
	return float64(i.Price-i.CostPrice) / float64(i.Price) * 100
}

// CreateInput carries the fields for a new dish.
type CreateInput struct {
	Name        string
	Description string
	Price       int64
	CostPrice   int64
	Category    Category
	Image       string
	Popular     bool
}

// UpdateInput carries optional field changes.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *int64
	CostPrice   *int64
	Category    *Category
	Image       *string
	Available   *bool
	Popular     *bool
}

// Filter narrows menu listings.
type Filter struct {
	Category      Category
	AvailableOnly bool
	PopularOnly   bool
}
