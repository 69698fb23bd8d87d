package currency

import (
	"math"
	"strconv"
	"strings"
)

type style struct {
	symbol    string
	separator byte
	suffix    bool
}

var styles = map[string]style{
	"EUR": {symbol: "€", separator: '.', suffix: true},
	"KRW": {symbol: "₩", separator: ',', suffix: false},
	"USD": {symbol: "$", separator: ',', suffix: false},
}

// Format renders a whole amount with the currency's symbol and grouping.
// Unknown codes fall back to "CODE 1,234".
func Format(amount float64, code string) string {
	code = strings.ToUpper(code)
	st, ok := styles[code]
	if !ok {
		st = style{symbol: code, separator: ','}
	}

	rounded := math.Round(amount)
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	digits := group(strconv.FormatFloat(rounded, 'f', 0, 64), st.separator)

	switch {
	case st.suffix:
		return sign + digits + " " + st.symbol
	case ok:
		return sign + st.symbol + digits
	default:
		return sign + st.symbol + " " + digits
	}
}

// FormatEUR renders whole euros the way the widget shows them: "1.295 €".
func FormatEUR(amount float64) string {
	return Format(amount, "EUR")
}

func group(digits string, sep byte) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
