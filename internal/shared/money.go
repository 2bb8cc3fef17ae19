package shared

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var vndPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount in Vietnamese đồng with grouping separators,
// e.g. 450000 -> "450.000 ₫". Amounts are whole đồng throughout the system;
// there are no fractional units.
func FormatVND(amount int64) string {
	return vndPrinter.Sprintf("%d ₫", amount)
}
