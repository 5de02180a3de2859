package records

import (
	"math"
	"strconv"
	"strings"
)

// Normalize coerces the numeric fields of raw rows. Cells that cannot be read
// as numbers become NaN; no row is dropped.
func Normalize(raw []Raw) []Record {
	out := make([]Record, len(raw))
	for i, r := range raw {
		year, _ := ParseYear(r.Year)
		out[i] = Record{
			School: strings.TrimSpace(r.School),
			Grade:  strings.TrimSpace(r.Grade),
			Level:  strings.TrimSpace(r.Level),
			Term:   strings.TrimSpace(r.Term),
			Year:   year,
			Week:   strings.TrimSpace(r.Week),
			Counts: Counts{
				Boys:  ParseNumber(r.Boys),
				Girls: ParseNumber(r.Girls),
				Total: ParseNumber(r.Total),
			},
		}
	}
	return out
}

// ParseNumber reads a spreadsheet cell as a float. Thousands separators and a
// trailing "%" are accepted. Anything else that does not parse is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "- -" || s == "--" || s == "-" {
		return math.NaN()
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// ParseYear converts a year cell or a year selection to an int. Spreadsheet
// exports sometimes store years as "2024.0", which is accepted.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}

// Missing counts the measures in recs that are NaN.
func Missing(recs []Record) int {
	n := 0
	for _, r := range recs {
		for _, v := range []float64{r.Boys, r.Girls, r.Total} {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// OrZero maps a missing measure to zero.
func OrZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Add returns the element-wise sum of c and o, treating missing measures as
// zero.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Boys:  OrZero(c.Boys) + OrZero(o.Boys),
		Girls: OrZero(c.Girls) + OrZero(o.Girls),
		Total: OrZero(c.Total) + OrZero(o.Total),
	}
}

// Filled returns c with missing measures replaced by zero.
func (c Counts) Filled() Counts {
	return Counts{Boys: OrZero(c.Boys), Girls: OrZero(c.Girls), Total: OrZero(c.Total)}
}
