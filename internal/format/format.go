// Package format renders numeric values for display. None of its functions
// return errors: values that cannot be rendered degrade to a sentinel or to
// the value as given.
package format

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// NotAvailable is rendered by Value for absent or unrenderable numbers.
const NotAvailable = "N/A"

type Kind string

const (
	KindPlain    Kind = "padrao"
	KindPercent  Kind = "porcentagem"
	KindCurrency Kind = "moeda"
)

var magnitudeUnits = []string{"", "K", "M", "B", "T"}

// Value renders v according to kind. Currency values are prefixed with unit
// and grouped by thousands. Unknown kinds render as plain.
func Value(v *float64, kind Kind, unit string) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return NotAvailable
	}
	switch kind {
	case KindPercent:
		return fmt.Sprintf("%.2f%%", *v)
	case KindCurrency:
		return unit + " " + groupThousands(*v)
	default:
		return fmt.Sprintf("%.2f", *v)
	}
}

// Float is a convenience for passing literals to Value.
func Float(v float64) *float64 { return &v }

// Magnitude abbreviates a number with a K/M/B/T suffix. Anything that cannot
// be read as a number is returned as-is (rendered with fmt), unlike Value
// which falls back to NotAvailable. NaN and infinities count as unreadable.
func Magnitude(v any) string {
	f, ok := toFloat(v)
	if !ok {
		if p, isPtr := v.(*float64); isPtr {
			if p == nil {
				return ""
			}
			return fmt.Sprint(*p)
		}
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}

	for i, unit := range magnitudeUnits {
		if math.Abs(f) < 1000 || i == len(magnitudeUnits)-1 {
			return fmt.Sprintf("%.2f%s", f, unit)
		}
		f /= 1000
	}
	return fmt.Sprintf("%.2f%s", f, magnitudeUnits[len(magnitudeUnits)-1])
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case *float64:
		if n == nil {
			return 0, false
		}
		f = *n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// groupThousands formats v with two decimals and comma-separated thousands.
func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return sign + s
	}
	return sign + humanize.BigComma(n) + "." + frac
}
