// Package rates joins attendance with enrolment and derives attendance rates.
//
// A rate is 100 × attendance / enrolment and is exactly 0 when enrolment is 0
// or missing. Rates keep full precision; only labels are rounded, half to
// even, to a whole percent.
package rates

import (
	"math"
	"strconv"
)

// Rate returns the attendance rate in percent.
func Rate(attendance, enrolment float64) float64 {
	if enrolment == 0 || math.IsNaN(enrolment) || math.IsInf(enrolment, 0) || math.IsNaN(attendance) {
		return 0
	}
	return 100 * attendance / enrolment
}

// Label renders a rate as a whole percent, e.g. "63%".
func Label(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 0
	}
	return strconv.FormatInt(int64(math.RoundToEven(rate)), 10) + "%"
}

// Mean returns the arithmetic mean of rates, or 0 for none.
func Mean(rs []float64) float64 {
	if len(rs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rs {
		sum += r
	}
	return sum / float64(len(rs))
}
