package orders

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Status enumerates the order lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a status string from the boundary.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPreparing, StatusReady, StatusServed, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", shared.Validationf("unknown order status %q", s)
	}
}

var statusRank = map[Status]int{
	StatusPending:   0,
	StatusPreparing: 1,
	StatusReady:     2,
	StatusServed:    3,
	StatusCompleted: 4,
}

// CanTransition reports whether the lifecycle allows moving from one status
// to the next. The chain only moves forward; cancellation is allowed from
// any state that is not already terminal.
func CanTransition(from, to Status) bool {
	if from == StatusCompleted || from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// PaymentStatus enumerates payment states.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// ParsePaymentStatus validates a payment status string.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentUnpaid, PaymentPaid:
		return PaymentStatus(s), nil
	default:
		return "", shared.Validationf("unknown payment status %q", s)
	}
}

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentOther        PaymentMethod = "other"
)

// ParsePaymentMethod validates a payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentBankTransfer, PaymentOther:
		return PaymentMethod(s), nil
	default:
		return "", shared.Validationf("unknown payment method %q", s)
	}
}

// Line is one dish on an order. Name and Price are snapshots taken at
// order time so menu edits never rewrite past orders.
type Line struct {
	MenuItemID string
	Name       string
	Price      int64
	Quantity   int64
	Note       string
}

// Order is a customer order.
type Order struct {
	ID            string
	OrderCode     string
	CustomerName  string
	Phone         string
	Email         string
	Lines         []Line
	ReservationID string
	TotalAmount   int64
	Status        Status
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	ServeTime     time.Time
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrderCode builds a human-quotable code: date plus six random digits.
func NewOrderCode(now time.Time) string {
	return fmt.Sprintf("%s-%06d", now.Format("20060102"), 100000+rand.Intn(900000))
}

// MaskPhone hides the middle digits of a phone number for public views.
func MaskPhone(phone string) string {
	if len(phone) < 7 {
		return phone
	}
	return phone[:4] + "****" + phone[len(phone)-3:]
}

// CreateLine is one requested dish on a new order. Only the menu item id
// and quantity are accepted; pricing comes from the menu.
type CreateLine struct {
	MenuItemID string
	Quantity   int64
	Note       string
}

// CreateInput carries the fields for a new order.
type CreateInput struct {
	CustomerName  string
	Phone         string
	Email         string
	Lines         []CreateLine
	ReservationID string
	Note          string
}

// UpdateInput carries optional order changes.
type UpdateInput struct {
	Status        *Status
	PaymentStatus *PaymentStatus
	PaymentMethod *PaymentMethod
	ServeTime     *time.Time
	Note          *string
}

// Filter narrows order listings.
type Filter struct {
	Status        Status
	PaymentStatus PaymentStatus
	From          time.Time
	To            time.Time
	Limit         int
}
