package loyalty

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"yarey/backend/internal/domain"
)

var thbPrinter = message.NewPrinter(language.English)

// FormatTHB renders an amount with the baht sign and digit grouping,
// dropping the fraction when the amount is whole.
func FormatTHB(a domain.Amount) string {
	if a.Equal(a.Round(0)) {
		return thbPrinter.Sprintf("฿%d", a.IntPart())
	}
	return thbPrinter.Sprintf("฿%.2f", a.Float64())
}
