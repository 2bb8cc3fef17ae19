package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationErrors(t *testing.T) {
	err := Validationf("quantity %d is not positive", -1)
	require.True(t, IsValidation(err))
	require.Equal(t, "quantity -1 is not positive", err.Error())

	wrapped := fmt.Errorf("apply import: %w", err)
	require.True(t, IsValidation(wrapped))

	require.False(t, IsValidation(errors.New("boom")))
	require.False(t, IsValidation(nil))
}

func TestInsufficientStockError(t *testing.T) {
	err := &InsufficientStockError{ItemID: "abc", ItemName: "Rice", Requested: 50, Available: 40}
	require.Contains(t, err.Error(), `"Rice"`)
	require.Contains(t, err.Error(), "requested 50")
	require.Contains(t, err.Error(), "available 40")

	var target *InsufficientStockError
	require.True(t, errors.As(fmt.Errorf("export: %w", err), &target))
	require.EqualValues(t, 40, target.Available)
}
