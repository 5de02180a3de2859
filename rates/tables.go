package rates

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/zalepa/fcaschools/catalogue"
	"github.com/zalepa/fcaschools/reconcile"
	"github.com/zalepa/fcaschools/records"
)

// Row is one school of a rate table.
type Row struct {
	School     string         `json:"school"`
	Attendance records.Counts `json:"attendance"`
	Enrolment  records.Counts `json:"enrolment"`
	Rate       float64        `json:"rate"`
	Label      string         `json:"label"`
}

// Table is a reconciled attendance table with enrolment and rates. The last
// row is the TOTAL row.
type Table struct {
	Level string `json:"level"`
	Rows  []Row  `json:"rows"`
}

// Schools returns the rows without the TOTAL row.
func (t *Table) Schools() []Row {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[:len(t.Rows)-1]
}

// Total returns the TOTAL row.
func (t *Table) Total() Row {
	if len(t.Rows) == 0 {
		return Row{School: catalogue.TotalName, Label: Label(0)}
	}
	return t.Rows[len(t.Rows)-1]
}

// Compute joins a reconciled attendance table with a reconciled enrolment
// table by school. Schools present in only one table get zero for the other
// side. Each row's rate is computed from its own totals, the TOTAL row
// included.
func Compute(attendance, enrolment *reconcile.Table) (*Table, error) {
	if attendance.Level != enrolment.Level {
		return nil, errors.Wrapf(catalogue.ErrConfig, "compute: attendance level %q does not match enrolment level %q",
			attendance.Level, enrolment.Level)
	}

	enr := make(map[string]records.Counts, len(enrolment.Rows))
	for _, r := range enrolment.Schools() {
		enr[r.School] = r.Counts
	}

	t := &Table{Level: attendance.Level, Rows: make([]Row, 0, len(attendance.Rows))}
	used := make(map[string]bool, len(enr))
	for _, r := range attendance.Schools() {
		used[r.School] = true
		t.Rows = append(t.Rows, newRow(r.School, r.Counts, enr[r.School]))
	}
	for _, r := range enrolment.Schools() {
		if !used[r.School] {
			t.Rows = append(t.Rows, newRow(r.School, records.Counts{}, r.Counts))
		}
	}
	t.Rows = append(t.Rows, newRow(catalogue.TotalName, attendance.Total().Counts, enrolment.Total().Counts))
	return t, nil
}

func newRow(school string, att, enr records.Counts) Row {
	att, enr = att.Filled(), enr.Filled()
	rate := Rate(att.Total, enr.Total)
	return Row{School: school, Attendance: att, Enrolment: enr, Rate: rate, Label: Label(rate)}
}

// Summary reconciles the attendance and enrolment sides of merged rows
// against the catalogue for level and computes per-school rates. Callers
// usually pass the rows of a single week. Enrolment is read from the merged
// rows, so duplicate attendance rows for one class count its enrolment once
// per row.
func Summary(rows []Merged, cat *catalogue.Catalogue, level string) (*Table, error) {
	att, enr := split(inLevel(rows, cat, level))
	attTable, err := reconcile.Reconcile(att, cat, level, "")
	if err != nil {
		return nil, err
	}
	enrTable, err := reconcile.Reconcile(enr, cat, level, "")
	if err != nil {
		return nil, err
	}
	return Compute(attTable, enrTable)
}

// inLevel keeps rows of level, or rows of any catalogue level for AllLevels.
func inLevel(rows []Merged, cat *catalogue.Catalogue, level string) []Merged {
	if level != "" && level != records.AllLevels {
		return FilterMerged(rows, records.Constraints{Level: level})
	}
	out := make([]Merged, 0, len(rows))
	for _, m := range rows {
		if cat.Has(m.Level) {
			out = append(out, m)
		}
	}
	return out
}

// Gender groups of a breakdown, in display order.
const (
	Boys    = "Boys"
	Girls   = "Girls"
	Average = "Average"
)

// GenderRate is one bar of the rate-by-gender chart.
type GenderRate struct {
	School     string  `json:"school"`
	Gender     string  `json:"gender"`
	Attendance float64 `json:"attendance"`
	Enrolment  float64 `json:"enrolment"`
	Rate       float64 `json:"rate"`
	Label      string  `json:"label"`
}

// Breakdown returns boys, girls and overall rates per catalogue school. Every
// group is zero-guarded on its own, so a school with girls enrolled but no
// boys still gets a boys rate of 0. Rows are grouped by gender, then school
// order.
func Breakdown(rows []Merged, cat *catalogue.Catalogue, level string) ([]GenderRate, error) {
	t, err := Summary(rows, cat, level)
	if err != nil {
		return nil, err
	}
	schools := t.Schools()
	out := make([]GenderRate, 0, 3*len(schools))
	pick := []struct {
		gender string
		value  func(records.Counts) float64
	}{
		{Boys, func(c records.Counts) float64 { return c.Boys }},
		{Girls, func(c records.Counts) float64 { return c.Girls }},
		{Average, func(c records.Counts) float64 { return c.Total }},
	}
	for _, p := range pick {
		for _, r := range schools {
			a, e := p.value(r.Attendance), p.value(r.Enrolment)
			rate := Rate(a, e)
			out = append(out, GenderRate{
				School:     r.School,
				Gender:     p.gender,
				Attendance: a,
				Enrolment:  e,
				Rate:       rate,
				Label:      Label(rate),
			})
		}
	}
	return out, nil
}

// NoGrade is the grade shown for a school without any rows.
const NoGrade = "N/A"

// GradeRate is one bar of the rate-per-grade chart.
type GradeRate struct {
	School     string  `json:"school"`
	Grade      string  `json:"grade"`
	Level      string  `json:"level"`
	Attendance float64 `json:"attendance"`
	Enrolment  float64 `json:"enrolment"`
	Rate       float64 `json:"rate"`
	Label      string  `json:"label"`
}

// ByGrade lists each merged row of level as a grade bar, grouped in catalogue
// school order. A school with no rows gets a single NoGrade bar at zero.
func ByGrade(rows []Merged, cat *catalogue.Catalogue, level string) ([]GradeRate, error) {
	schools, err := cat.Schools(level)
	if err != nil {
		return nil, errors.Wrap(err, "by grade")
	}
	bySchool := make(map[string][]Merged)
	for _, m := range inLevel(rows, cat, level) {
		bySchool[m.School] = append(bySchool[m.School], m)
	}

	var out []GradeRate
	for _, s := range schools {
		ms := bySchool[s]
		if len(ms) == 0 {
			out = append(out, GradeRate{School: s, Grade: NoGrade, Level: level, Label: Label(0)})
			continue
		}
		for _, m := range ms {
			out = append(out, GradeRate{
				School:     s,
				Grade:      m.Grade,
				Level:      m.Level,
				Attendance: m.Attendance.Total,
				Enrolment:  m.Enrolment.Total,
				Rate:       m.Rate,
				Label:      m.Label,
			})
		}
	}
	return out, nil
}

// TrendPoint is the mean rate of one (school, grade, week).
type TrendPoint struct {
	School  string  `json:"school"`
	Grade   string  `json:"grade"`
	Week    string  `json:"week"`
	Rate    float64 `json:"rate"`
	Label   string  `json:"label"`
	Samples int     `json:"samples"`
}

// Trend averages the already computed per-row rates of level over the given
// weeks, grouped by (school, grade, week). The mean of rates is used, not the
// rate of summed counts, so weeks with small enrolment weigh as much as weeks
// with large enrolment. No weeks selects nothing.
//
// Points are ordered by catalogue school order, then grade, then week number.
// Schools outside the catalogue list for level follow in name order.
func Trend(rows []Merged, cat *catalogue.Catalogue, level string, weeks []string) ([]TrendPoint, error) {
	schools, err := cat.Schools(level)
	if err != nil {
		return nil, errors.Wrap(err, "trend")
	}
	if len(weeks) == 0 {
		return nil, nil
	}

	type groupKey struct{ school, grade, week string }
	groups := make(map[groupKey][]float64)
	var order []groupKey
	for _, m := range FilterMerged(inLevel(rows, cat, level), records.Constraints{Weeks: weeks}) {
		k := groupKey{m.School, m.Grade, m.Week}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], m.Rate)
	}

	out := make([]TrendPoint, 0, len(order))
	for _, k := range order {
		rate := Mean(groups[k])
		out = append(out, TrendPoint{
			School:  k.school,
			Grade:   k.grade,
			Week:    k.week,
			Rate:    rate,
			Label:   Label(rate),
			Samples: len(groups[k]),
		})
	}
	sortPoints(out, schools)
	return out, nil
}

// AcrossWeeks collapses trend points to one point per (school, grade) whose
// rate is the mean of the weekly rates. Week is left empty.
func AcrossWeeks(points []TrendPoint, cat *catalogue.Catalogue, level string) ([]TrendPoint, error) {
	schools, err := cat.Schools(level)
	if err != nil {
		return nil, errors.Wrap(err, "across weeks")
	}
	type groupKey struct{ school, grade string }
	groups := make(map[groupKey][]float64)
	var order []groupKey
	for _, p := range points {
		k := groupKey{p.School, p.Grade}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], p.Rate)
	}
	out := make([]TrendPoint, 0, len(order))
	for _, k := range order {
		rate := Mean(groups[k])
		out = append(out, TrendPoint{School: k.school, Grade: k.grade, Rate: rate, Label: Label(rate), Samples: len(groups[k])})
	}
	sortPoints(out, schools)
	return out, nil
}

func sortPoints(points []TrendPoint, schools []string) {
	pos := make(map[string]int, len(schools))
	for i, s := range schools {
		pos[s] = i
	}
	rank := func(s string) int {
		if i, ok := pos[s]; ok {
			return i
		}
		return len(schools)
	}
	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if ra, rb := rank(a.School), rank(b.School); ra != rb {
			return ra < rb
		}
		if a.School != b.School {
			return a.School < b.School
		}
		if a.Grade != b.Grade {
			return a.Grade < b.Grade
		}
		return records.WeekNumber(a.Week) < records.WeekNumber(b.Week)
	})
}
