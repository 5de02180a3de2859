package reconcile

import (
	"math"
	"strconv"
	"strings"
)

// FormatCount renders a count as an integer with thousands separators.
// Fractions are truncated toward zero and a missing value renders as "0".
func FormatCount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	n := int64(v)
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + addCommas(s[1:])
	}
	return addCommas(s)
}

func addCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var sb strings.Builder
	pre := n % 3
	if pre > 0 {
		sb.WriteString(s[:pre])
		sb.WriteByte(',')
	}
	for i := pre; i < n; i += 3 {
		sb.WriteString(s[i : i+3])
		if i+3 < n {
			sb.WriteByte(',')
		}
	}
	return sb.String()
}
