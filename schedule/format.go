package schedule

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// groupPrinter renders integers with "," grouping; the separator is then
// swapped for a plain space, which the contract template expects.
var groupPrinter = message.NewPrinter(language.English)

// FormatAmount renders a with thousands grouped by a plain space:
// 180000 -> "180 000". No decimal part is ever shown.
func FormatAmount(a Amount) string {
	return strings.ReplaceAll(groupPrinter.Sprintf("%d", int64(a)), ",", " ")
}

// FormatFee renders an optional fee; a nil fee is the empty string.
func FormatFee(fee *Amount) string {
	if fee == nil {
		return ""
	}
	return FormatAmount(*fee)
}
