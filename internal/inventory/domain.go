package inventory

import (
	"time"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Category enumerates the closed set of inventory item categories.
type Category string

const (
	// CategoryRawMaterial covers base cooking ingredients.
	CategoryRawMaterial Category = "raw-material"
	// CategorySeasoning covers spices and condiments.
	CategorySeasoning Category = "seasoning"
	// CategoryBeverage covers drink stock.
	CategoryBeverage Category = "beverage"
	// CategoryOther is the catch-all bucket.
	CategoryOther Category = "other"
)

// ParseCategory validates a category supplied at the system boundary.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryRawMaterial, CategorySeasoning, CategoryBeverage, CategoryOther:
		return Category(s), nil
	case "":
		return CategoryRawMaterial, nil
	default:
		return "", shared.Validationf("unknown inventory category %q", s)
	}
}

// Item is a stocked ingredient. Quantity is owned by the ledger: item CRUD
// never writes it after creation.
type Item struct {
	ID           string
	Name         string
	Unit         string
	Quantity     int64
	CostPerUnit  int64
	Supplier     string
	Category     Category
	MinimumStock int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock reports whether the item sits at or below its reorder threshold.
func (i Item) IsLowStock() bool {
	return i.Quantity <= i.MinimumStock
}

// TransactionType enumerates ledger entry kinds.
type TransactionType string

const (
	// TransactionImport records stock arriving from a supplier.
	TransactionImport TransactionType = "import"
	// TransactionExport records stock leaving for the kitchen or an order.
	TransactionExport TransactionType = "export"
)

// ParseTransactionType validates a type string from a query parameter.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionImport, TransactionExport:
		return TransactionType(s), nil
	default:
		return "", shared.Validationf("unknown transaction type %q", s)
	}
}

// TransactionLine is one movement within a ledger entry. Name is a snapshot
// taken at transaction time so later renames never rewrite history.
type TransactionLine struct {
	ItemID   string
	Name     string
	Quantity int64
	Cost     int64
}

// Transaction is an immutable ledger entry. There is deliberately no update
// or delete operation anywhere in the package.
type Transaction struct {
	ID          string
	Type        TransactionType
	Lines       []TransactionLine
	TotalAmount int64
	Note        string
	Supplier    string
	OrderID     string
	OrderCode   string
	CreatedBy   string
	CreatedAt   time.Time
}

// ImportLine describes one requested inbound movement. UnitCost nil means
// "use the item's current costPerUnit".
type ImportLine struct {
	ItemID   string
	Quantity int64
	UnitCost *int64
}

// ImportInput describes an import request.
type ImportInput struct {
	Lines     []ImportLine
	Supplier  string
	Note      string
	CreatedBy string
}

// ExportLine describes one requested outbound movement. Cost is never
// accepted from the caller; the ledger prices exports itself.
type ExportLine struct {
	ItemID   string
	Quantity int64
}

// ExportInput describes an export request.
type ExportInput struct {
	Lines     []ExportLine
	OrderID   string
	Note      string
	CreatedBy string
}

// CreateItemInput carries the fields for item creation.
type CreateItemInput struct {
	Name         string
	Unit         string
	Quantity     int64
	CostPerUnit  int64
	Supplier     string
	Category     Category
	MinimumStock int64
}

// UpdateItemInput carries the mutable item fields. Quantity is absent on
// purpose: on-hand counts only move through the ledger.
type UpdateItemInput struct {
	Name         *string
	Unit         *string
	CostPerUnit  *int64
	Supplier     *string
	Category     *Category
	MinimumStock *int64
}

// TransactionFilter selects ledger entries for listing.
type TransactionFilter struct {
	Type    TransactionType
	From    time.Time
	To      time.Time
	OrderID string
	Limit   int
}
