// Package currency renders Ghana cedi amounts the way the workshop UI shows them.
package currency

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	Code = "GHC"
	// Missing is shown for absent or non-numeric amounts.
	Missing = "—"
)

var printer = message.NewPrinter(language.BritishEnglish)

// Format renders amount as "GHC 1,234.56". amount may be a number, a decimal string as the
// API sends them, or nil.
func Format(amount any) string {
	n, ok := toFloat(amount)
	if !ok {
		return Missing
	}
	return Code + " " + printer.Sprint(number.Decimal(n, number.Scale(2)))
}

func toFloat(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case string:
		if t == "" {
			return 0, false
		}
		s := strings.TrimSpace(t)
		if s == "" {
			// whitespace-only counts as zero
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	case *string:
		if t == nil {
			return 0, false
		}
		return toFloat(*t)
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int32:
		n = float64(t)
	case int64:
		n = float64(t)
	case uint:
		n = float64(t)
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
