package cmd

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/zalepa/fcaschools/rates"
	"github.com/zalepa/fcaschools/reconcile"
	"github.com/zalepa/fcaschools/records"
)

var validViews = []string{"all", "enrolment", "attendance", "breakdown", "grades", "trend", "weekly"}

// Table implements the "table" subcommand.
func Table(args []string) {
	fs := flag.NewFlagSet("table", flag.ExitOnError)
	q := addQueryFlags(fs)
	view := fs.String("view", "all", "view to print: "+strings.Join(validViews, ", "))

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fcaschools table [workbook] [flags]

Print enrolment and attendance tables for one selection.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  fcaschools table school.xlsx
  fcaschools table school.xlsx --level Primary --term "Term 2" --view attendance
  fcaschools table --config fcaschools.yaml --weeks "Week 3,Week 4" --view trend
`)
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		q.workbook = fs.Arg(0)
	}
	if !contains(validViews, *view) {
		fmt.Fprintf(os.Stderr, "invalid --view %q; valid options: %s\n", *view, strings.Join(validViews, ", "))
		os.Exit(1)
	}

	cfg, err := loadConfig(q.config)
	if err != nil {
		fail("loading config", err)
	}
	s, err := openSession(cfg, q.workbook)
	if err != nil {
		fail("loading data", err)
	}
	if err := printViews(os.Stdout, s, s.resolve(*q), *view); err != nil {
		fail("building tables", err)
	}
}

func printViews(w io.Writer, s *session, c records.Constraints, view string) error {
	title := color.New(color.FgCyan, color.Bold)
	all := view == "all"

	if all || view == "enrolment" {
		t, err := s.enrolment(c)
		if err != nil {
			return err
		}
		title.Fprintf(w, "\nEnrolment: %s\n", describe(c))
		renderEnrolment(w, t)
	}
	if all || view == "attendance" {
		t, err := s.attendance(c)
		if err != nil {
			return err
		}
		title.Fprintf(w, "\nAttendance: %s, %s\n", describe(c), c.Week)
		renderAttendance(w, t)
	}
	if all || view == "breakdown" {
		b, err := s.breakdown(c)
		if err != nil {
			return err
		}
		title.Fprintf(w, "\nAttendance rate by gender: %s, %s\n", describe(c), c.Week)
		renderBreakdown(w, b)
	}
	if all || view == "grades" {
		g, err := s.grades(c)
		if err != nil {
			return err
		}
		title.Fprintf(w, "\nAttendance rate by grade: %s, %s\n", describe(c), c.Week)
		renderGrades(w, g)
	}
	if all || view == "trend" {
		p, err := s.trend(c)
		if err != nil {
			return err
		}
		title.Fprintf(w, "\nAttendance trend: %s, %s\n", describe(c), strings.Join(c.Weeks, ", "))
		avg, err := rates.AcrossWeeks(p, s.cat, c.Level)
		if err != nil {
			return err
		}
		renderTrend(w, p, avg, c.Weeks)
	}
	if all || view == "weekly" {
		wk, err := s.weekly(c)
		if err != nil {
			return err
		}
		title.Fprintf(w, "\nWeekly attendance: %s\n", c.Level)
		renderWeekly(w, wk)
	}
	return nil
}

func renderWeekly(w io.Writer, wk *rates.Weekly) {
	tw := newTable(w, append([]string{"School"}, wk.Weeks...))
	for _, ws := range wk.Schools {
		row := []string{ws.School}
		for _, v := range ws.Attendance {
			row = append(row, reconcile.FormatCount(v))
		}
		tw.Append(row)
	}
	tw.Render()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	return t
}

func renderEnrolment(w io.Writer, t *reconcile.Table) {
	tw := newTable(w, []string{"School", "Boys", "Girls", "Total"})
	for _, r := range t.Schools() {
		tw.Append([]string{r.School, reconcile.FormatCount(r.Boys), reconcile.FormatCount(r.Girls), reconcile.FormatCount(r.Total)})
	}
	tot := t.Total()
	tw.SetFooter([]string{tot.School, reconcile.FormatCount(tot.Boys), reconcile.FormatCount(tot.Girls), reconcile.FormatCount(tot.Total)})
	tw.Render()
}

func renderAttendance(w io.Writer, t *rates.Table) {
	tw := newTable(w, []string{"School", "Boys", "Girls", "Attendance", "Enrolment", "Rate"})
	row := func(r rates.Row) []string {
		return []string{
			r.School,
			reconcile.FormatCount(r.Attendance.Boys),
			reconcile.FormatCount(r.Attendance.Girls),
			reconcile.FormatCount(r.Attendance.Total),
			reconcile.FormatCount(r.Enrolment.Total),
			r.Label,
		}
	}
	for _, r := range t.Schools() {
		tw.Append(row(r))
	}
	tw.SetFooter(row(t.Total()))
	tw.Render()
}

func renderBreakdown(w io.Writer, rows []rates.GenderRate) {
	type triple struct{ boys, girls, avg string }
	bySchool := make(map[string]*triple)
	var order []string
	for _, r := range rows {
		t, ok := bySchool[r.School]
		if !ok {
			t = &triple{}
			bySchool[r.School] = t
			order = append(order, r.School)
		}
		switch r.Gender {
		case rates.Boys:
			t.boys = r.Label
		case rates.Girls:
			t.girls = r.Label
		case rates.Average:
			t.avg = r.Label
		}
	}

	tw := newTable(w, []string{"School", rates.Boys, rates.Girls, rates.Average})
	for _, s := range order {
		t := bySchool[s]
		tw.Append([]string{s, t.boys, t.girls, t.avg})
	}
	tw.Render()
}

func renderGrades(w io.Writer, rows []rates.GradeRate) {
	tw := newTable(w, []string{"School", "Grade", "Attendance", "Enrolment", "Rate"})
	for _, r := range rows {
		tw.Append([]string{r.School, r.Grade, reconcile.FormatCount(r.Attendance), reconcile.FormatCount(r.Enrolment), r.Label})
	}
	tw.Render()
}

// renderTrend prints one row per (school, grade) with the label of every
// week, the mean across weeks and a sparkline.
func renderTrend(w io.Writer, points, avg []rates.TrendPoint, weeks []string) {
	weeks = records.SortWeeks(weeks, false)
	type key struct{ school, grade string }
	byKey := make(map[key]map[string]rates.TrendPoint)
	for _, p := range points {
		k := key{p.School, p.Grade}
		if byKey[k] == nil {
			byKey[k] = make(map[string]rates.TrendPoint)
		}
		byKey[k][p.Week] = p
	}

	header := append([]string{"School", "Grade"}, weeks...)
	header = append(header, "Mean", "Trend")
	tw := newTable(w, header)
	for _, a := range avg {
		week := byKey[key{a.School, a.Grade}]
		row := []string{a.School, a.Grade}
		vals := make([]float64, len(weeks))
		for i, wk := range weeks {
			p, ok := week[wk]
			if !ok {
				row = append(row, "- -")
				vals[i] = math.NaN()
				continue
			}
			row = append(row, p.Label)
			vals[i] = p.Rate
		}
		row = append(row, a.Label, sparkline(vals))
		tw.Append(row)
	}
	tw.Render()
}

func sparkline(values []float64) string {
	blocks := []rune("▁▂▃▄▅▆▇█")
	n := len(blocks)

	// Find min/max ignoring NaN.
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if math.IsInf(min, 1) {
		return strings.Repeat(" ", len(values))
	}

	spread := max - min
	var sb strings.Builder
	for _, v := range values {
		if math.IsNaN(v) {
			sb.WriteRune(' ')
			continue
		}
		idx := 0
		if spread > 0 {
			idx = int((v - min) / spread * float64(n-1))
			if idx >= n {
				idx = n - 1
			}
		} else {
			idx = n / 2
		}
		sb.WriteRune(blocks[idx])
	}
	return sb.String()
}
