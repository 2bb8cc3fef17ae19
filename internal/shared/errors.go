package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError marks client input that failed a server-side check.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InsufficientStockError rejects an export that exceeds the on-hand
// quantity. It names the offending item so the caller can surface which
// line failed; no quantities were changed when this error is returned.
type InsufficientStockError struct {
	ItemID    string
	ItemName  string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ItemName, e.Requested, e.Available)
}

// UserSafeMessage converts domain errors into messages safe to show to a
// client. Unknown errors collapse into a generic message.
func UserSafeMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise.Error()
	}
	if errors.Is(err, ErrNotFound) {
		return "requested resource was not found"
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return "invalid email or password"
	}
	return "something went wrong, please try again"
}
