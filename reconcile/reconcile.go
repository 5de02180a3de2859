// Package reconcile turns a filtered record set into a complete table with one
// row per catalogue school, zero-filled, in catalogue order, followed by a
// TOTAL row.
package reconcile

import (
	"github.com/pkg/errors"

	"github.com/zalepa/fcaschools/catalogue"
	"github.com/zalepa/fcaschools/records"
)

// Row is one school's measures.
type Row struct {
	School string `json:"school"`
	records.Counts
}

// Table is a reconciled table. The last row is always the TOTAL row.
type Table struct {
	Level string `json:"level"`
	Rows  []Row  `json:"rows"`
}

// Reconcile groups recs by school against the catalogue list for level. An
// empty level or records.AllLevels uses the union of all levels.
//
// When grade is empty the measures of every row for a school are summed.
// When grade is set the records are expected to be filtered to that grade and
// the first row per school is used as is.
//
// Schools missing from recs get a zero row. Schools in recs but not in the
// catalogue are ignored, and so are records of a level the catalogue does not
// declare when the union is used.
func Reconcile(recs []records.Record, cat *catalogue.Catalogue, level, grade string) (*Table, error) {
	schools, err := cat.Schools(level)
	if err != nil {
		return nil, errors.Wrap(err, "reconcile")
	}
	union := level == "" || level == records.AllLevels

	grouped := make(map[string]records.Counts, len(schools))
	for _, r := range recs {
		if union && !cat.Has(r.Level) {
			continue
		}
		c, seen := grouped[r.School]
		switch {
		case grade == "":
			grouped[r.School] = c.Add(r.Counts)
		case !seen:
			grouped[r.School] = r.Counts.Filled()
		}
	}

	t := &Table{Level: level, Rows: make([]Row, 0, len(schools)+1)}
	var total records.Counts
	for _, s := range schools {
		c := grouped[s]
		t.Rows = append(t.Rows, Row{School: s, Counts: c})
		total = total.Add(c)
	}
	t.Rows = append(t.Rows, Row{School: catalogue.TotalName, Counts: total})
	return t, nil
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
		return Row{School: catalogue.TotalName}
	}
	return t.Rows[len(t.Rows)-1]
}

// AllSchools selects the TOTAL row in Lookup.
const AllSchools = "ALL SCHOOLS"

// Lookup returns the row for a school. AllSchools returns the TOTAL row.
func (t *Table) Lookup(school string) (Row, bool) {
	if school == AllSchools {
		school = catalogue.TotalName
	}
	for _, r := range t.Rows {
		if r.School == school {
			return r, true
		}
	}
	return Row{}, false
}

// GenderCount is one bar of a grouped boys/girls chart.
type GenderCount struct {
	School string  `json:"school"`
	Gender string  `json:"gender"`
	Count  float64 `json:"count"`
}

// Melt returns boys rows for every school followed by girls rows, without the
// TOTAL row.
func (t *Table) Melt() []GenderCount {
	schools := t.Schools()
	out := make([]GenderCount, 0, 2*len(schools))
	for _, r := range schools {
		out = append(out, GenderCount{School: r.School, Gender: "Boys", Count: r.Boys})
	}
	for _, r := range schools {
		out = append(out, GenderCount{School: r.School, Gender: "Girls", Count: r.Girls})
	}
	return out
}
