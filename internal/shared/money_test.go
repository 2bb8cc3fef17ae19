package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatVND(t *testing.T) {
	require.Equal(t, "0 ₫", FormatVND(0))
	require.Equal(t, "65.000 ₫", FormatVND(65000))
	require.Equal(t, "1.250.000 ₫", FormatVND(1250000))
	require.Equal(t, "-50.000 ₫", FormatVND(-50000))
}
