package rates

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/zalepa/fcaschools/catalogue"
	"github.com/zalepa/fcaschools/records"
)

// WeeklySchool is one school's total attendance per week, aligned with
// Weekly.Weeks.
type WeeklySchool struct {
	School     string    `json:"school"`
	Attendance []float64 `json:"attendance"`
}

// Weekly is total attendance summed per (week, school).
type Weekly struct {
	Level   string         `json:"level"`
	Weeks   []string       `json:"weeks"`
	Schools []WeeklySchool `json:"schools"`
}

// WeeklyAttendance sums the attendance totals of level per week and school
// over every row passed in, whatever their year or term. Weeks are in week
// number order. Every catalogue school of level is listed, zero-filled, in
// catalogue order; schools outside the catalogue follow in name order.
func WeeklyAttendance(rows []Merged, cat *catalogue.Catalogue, level string) (*Weekly, error) {
	schools, err := cat.Schools(level)
	if err != nil {
		return nil, errors.Wrap(err, "weekly attendance")
	}

	type cell struct{ school, week string }
	sums := make(map[cell]float64)
	weekSet := make(map[string]bool)
	known := make(map[string]bool, len(schools))
	for _, s := range schools {
		known[s] = true
	}
	extra := make(map[string]bool)
	for _, m := range inLevel(rows, cat, level) {
		if m.Week == "" {
			continue
		}
		weekSet[m.Week] = true
		sums[cell{m.School, m.Week}] += records.OrZero(m.Attendance.Total)
		if !known[m.School] {
			extra[m.School] = true
		}
	}

	weeks := make([]string, 0, len(weekSet))
	for w := range weekSet {
		weeks = append(weeks, w)
	}
	weeks = records.SortWeeks(weeks, false)

	others := make([]string, 0, len(extra))
	for s := range extra {
		others = append(others, s)
	}
	sort.Strings(others)

	w := &Weekly{Level: level, Weeks: weeks}
	for _, s := range append(append([]string(nil), schools...), others...) {
		ws := WeeklySchool{School: s, Attendance: make([]float64, len(weeks))}
		for i, week := range weeks {
			ws.Attendance[i] = sums[cell{s, week}]
		}
		w.Schools = append(w.Schools, ws)
	}
	return w, nil
}
