package records

import (
	"sort"
	"strconv"
	"strings"
)

// Options lists the selectable filter values present in a record set.
type Options struct {
	Years  []int    `json:"years"`
	Terms  []string `json:"terms"`
	Levels []string `json:"levels"`
	Weeks  []string `json:"weeks"`
}

// OptionsFor collects sorted distinct years, terms and levels. Weeks are
// sorted newest first.
func OptionsFor(recs []Record) Options {
	years := make(map[int]bool)
	terms := make(map[string]bool)
	levels := make(map[string]bool)
	weeks := make(map[string]bool)
	for _, r := range recs {
		if r.Year != 0 {
			years[r.Year] = true
		}
		addNonEmpty(terms, r.Term)
		addNonEmpty(levels, r.Level)
		addNonEmpty(weeks, r.Week)
	}

	opts := Options{
		Terms:  sortedKeys(terms),
		Levels: sortedKeys(levels),
		Weeks:  SortWeeks(keys(weeks), true),
	}
	for y := range years {
		opts.Years = append(opts.Years, y)
	}
	sort.Ints(opts.Years)
	return opts
}

// Grades returns the sorted distinct grades recorded for a level.
func Grades(recs []Record, level string) []string {
	set := make(map[string]bool)
	for _, r := range recs {
		if r.Level == level {
			addNonEmpty(set, r.Grade)
		}
	}
	return sortedKeys(set)
}

// Weeks returns the distinct weeks recorded for a year and term, newest first.
func Weeks(recs []Record, year int, term string) []string {
	set := make(map[string]bool)
	for _, r := range Filter(recs, Constraints{Year: year, Term: term}) {
		addNonEmpty(set, r.Week)
	}
	return SortWeeks(keys(set), true)
}

// DefaultTrendWeeks picks the two most recent weeks, returned oldest first.
func DefaultTrendWeeks(recs []Record) []string {
	weeks := OptionsFor(recs).Weeks
	if len(weeks) > 2 {
		weeks = weeks[:2]
	}
	return SortWeeks(weeks, false)
}

// WeekNumber extracts n from a "Week <n>" label. Labels without a trailing
// number sort before every numbered week.
func WeekNumber(week string) int {
	fields := strings.Fields(week)
	if len(fields) == 0 {
		return -1
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return -1
	}
	return n
}

// SortWeeks returns a sorted copy of weeks ordered by week number.
func SortWeeks(weeks []string, newestFirst bool) []string {
	out := append([]string(nil), weeks...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := WeekNumber(out[i]), WeekNumber(out[j])
		if a == b {
			return out[i] < out[j]
		}
		if newestFirst {
			return a > b
		}
		return a < b
	})
	return out
}

func addNonEmpty(set map[string]bool, s string) {
	if s != "" {
		set[s] = true
	}
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := keys(m)
	sort.Strings(out)
	return out
}
