package cmd

import (
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/zalepa/fcaschools/rates"
	"github.com/zalepa/fcaschools/reconcile"
	"github.com/zalepa/fcaschools/records"
)

var chartViews = []string{"enrolment", "attendance", "breakdown", "grades", "trend", "weekly"}

var (
	chartBlue = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	chartPink = color.RGBA{R: 227, G: 119, B: 194, A: 255}
	chartGray = color.RGBA{R: 127, G: 127, B: 127, A: 255}
)

// Chart implements the "chart" subcommand.
func Chart(args []string) {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	q := addQueryFlags(fs)
	view := fs.String("view", "attendance", "chart to draw: "+strings.Join(chartViews, ", "))
	out := fs.String("out", "", "output file; the extension picks the format (.png, .svg, .pdf). Default: <view>.png")
	width := fs.Float64("width", 11, "width in inches")
	height := fs.Float64("height", 6, "height in inches")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fcaschools chart [workbook] [flags]

Draw one bar chart for a selection.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  fcaschools chart school.xlsx --view enrolment --level ECDE
  fcaschools chart school.xlsx --view trend --weeks "Week 2,Week 3" --out trend.pdf
  fcaschools chart school.xlsx --view weekly --level "ALL LEVELS" --out weekly.svg
`)
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		q.workbook = fs.Arg(0)
	}
	if !contains(chartViews, *view) {
		fmt.Fprintf(os.Stderr, "invalid --view %q; valid options: %s\n", *view, strings.Join(chartViews, ", "))
		os.Exit(1)
	}
	if *out == "" {
		*out = *view + ".png"
	}

	cfg, err := loadConfig(q.config)
	if err != nil {
		fail("loading config", err)
	}
	s, err := openSession(cfg, q.workbook)
	if err != nil {
		fail("loading data", err)
	}
	p, err := buildChart(s, s.resolve(*q), *view)
	if err != nil {
		fail("building chart", err)
	}
	if err := p.Save(vg.Length(*width)*vg.Inch, vg.Length(*height)*vg.Inch, *out); err != nil {
		fail("writing chart", err)
	}
	fmt.Printf("wrote %s\n", filepath.Clean(*out))
}

// barSeries is one colour of a grouped bar chart.
type barSeries struct {
	name   string
	values []float64
	labels []string
	color  color.Color
}

// barChart is a grouped bar chart with one group per category.
type barChart struct {
	title      string
	yLabel     string
	categories []string
	series     []barSeries
	percent    bool
}

func buildChart(s *session, c records.Constraints, view string) (*plot.Plot, error) {
	var bc barChart
	switch view {
	case "enrolment":
		t, err := s.enrolment(c)
		if err != nil {
			return nil, err
		}
		bc = enrolmentChart(t)
		bc.title = "Enrolment by gender: " + describe(c)
	case "attendance":
		t, err := s.attendance(c)
		if err != nil {
			return nil, err
		}
		bc = attendanceChart(t)
		bc.title = fmt.Sprintf("Attendance rate: %s, %s", describe(c), c.Week)
	case "breakdown":
		b, err := s.breakdown(c)
		if err != nil {
			return nil, err
		}
		bc = breakdownChart(b)
		bc.title = fmt.Sprintf("Attendance rate by gender: %s, %s", describe(c), c.Week)
	case "grades":
		g, err := s.grades(c)
		if err != nil {
			return nil, err
		}
		bc = gradesChart(g)
		bc.title = fmt.Sprintf("Attendance rate by grade: %s, %s", describe(c), c.Week)
	case "trend":
		p, err := s.trend(c)
		if err != nil {
			return nil, err
		}
		bc = trendChart(p, c.Weeks)
		bc.title = fmt.Sprintf("Attendance trend: %s, %s", describe(c), strings.Join(c.Weeks, ", "))
	case "weekly":
		w, err := s.weekly(c)
		if err != nil {
			return nil, err
		}
		return weeklyChart(w, "Weekly attendance by school: "+c.Level)
	default:
		return nil, errors.Errorf("unknown chart %q", view)
	}
	return bc.plot()
}

func enrolmentChart(t *reconcile.Table) barChart {
	bc := barChart{yLabel: "Learners"}
	boys := barSeries{name: "Boys", color: chartBlue}
	girls := barSeries{name: "Girls", color: chartPink}
	for _, g := range t.Melt() {
		switch g.Gender {
		case "Boys":
			bc.categories = append(bc.categories, g.School)
			boys.values = append(boys.values, g.Count)
			boys.labels = append(boys.labels, reconcile.FormatCount(g.Count))
		case "Girls":
			girls.values = append(girls.values, g.Count)
			girls.labels = append(girls.labels, reconcile.FormatCount(g.Count))
		}
	}
	bc.series = []barSeries{boys, girls}
	return bc
}

func attendanceChart(t *rates.Table) barChart {
	bc := barChart{yLabel: "Attendance rate (%)", percent: true}
	s := barSeries{name: "Rate", color: chartBlue}
	for _, r := range t.Rows {
		bc.categories = append(bc.categories, r.School)
		s.values = append(s.values, r.Rate)
		s.labels = append(s.labels, r.Label)
	}
	bc.series = []barSeries{s}
	return bc
}

func breakdownChart(rows []rates.GenderRate) barChart {
	bc := barChart{yLabel: "Attendance rate (%)", percent: true}
	colors := map[string]color.Color{rates.Boys: chartBlue, rates.Girls: chartPink, rates.Average: chartGray}
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.Gender]
		if !ok {
			i = len(bc.series)
			index[r.Gender] = i
			bc.series = append(bc.series, barSeries{name: r.Gender, color: colors[r.Gender]})
		}
		if i == 0 {
			bc.categories = append(bc.categories, r.School)
		}
		bc.series[i].values = append(bc.series[i].values, r.Rate)
		bc.series[i].labels = append(bc.series[i].labels, r.Label)
	}
	return bc
}

func gradesChart(rows []rates.GradeRate) barChart {
	bc := barChart{yLabel: "Attendance rate (%)", percent: true}
	s := barSeries{name: "Rate", color: chartBlue}
	for _, r := range rows {
		bc.categories = append(bc.categories, r.School+"\n"+r.Grade)
		s.values = append(s.values, r.Rate)
		s.labels = append(s.labels, r.Label)
	}
	bc.series = []barSeries{s}
	return bc
}

// trendChart draws one bar per week for every (school, grade).
func trendChart(points []rates.TrendPoint, weeks []string) barChart {
	bc := barChart{yLabel: "Attendance rate (%)", percent: true}
	weeks = records.SortWeeks(weeks, false)
	type key struct{ school, grade string }
	var order []key
	byKey := make(map[key]map[string]rates.TrendPoint)
	for _, p := range points {
		k := key{p.School, p.Grade}
		if byKey[k] == nil {
			byKey[k] = make(map[string]rates.TrendPoint)
			order = append(order, k)
		}
		byKey[k][p.Week] = p
	}
	for _, k := range order {
		bc.categories = append(bc.categories, k.school+"\n"+k.grade)
	}
	for i, w := range weeks {
		s := barSeries{name: w, color: plotutil.Color(i)}
		for _, k := range order {
			p := byKey[k][w]
			s.values = append(s.values, p.Rate)
			s.labels = append(s.labels, rates.Label(p.Rate))
		}
		bc.series = append(bc.series, s)
	}
	return bc
}

// weeklyChart draws one line of total attendance per school across weeks.
func weeklyChart(w *rates.Weekly, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.BackgroundColor = color.White
	p.X.Label.Text = "Week"
	p.Y.Label.Text = "Total attendance"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	p.Y.Min = 0
	p.Y.Tick.Marker = numTicks{}
	if len(w.Weeks) == 0 {
		p.NominalX("(no data)")
		p.Y.Max = 1
		return p, nil
	}

	maxY := 0.0
	for i, ws := range w.Schools {
		pts := make(plotter.XYs, len(ws.Attendance))
		for j, v := range ws.Attendance {
			pts[j] = plotter.XY{X: float64(j), Y: v}
			maxY = math.Max(maxY, v)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "line for %s", ws.School)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "markers for %s", ws.School)
		}
		scatter.Color = plotutil.Color(i)
		scatter.Radius = vg.Points(3)
		scatter.Shape = draw.CircleGlyph{}

		p.Add(line, scatter)
		p.Legend.Add(ws.School, line, scatter)
	}

	p.NominalX(w.Weeks...)
	p.X.Min = -0.5
	p.X.Max = float64(len(w.Weeks)) - 0.5
	if len(w.Weeks) > 6 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	if maxY > 0 {
		p.Y.Max = maxY * 1.15
	} else {
		p.Y.Max = 1
	}
	return p, nil
}

// plot lays the series out side by side within each category.
func (bc barChart) plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = bc.title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.BackgroundColor = color.White
	p.Y.Label.Text = bc.yLabel
	p.Legend.Top = true

	n := len(bc.series)
	if n == 0 || len(bc.categories) == 0 {
		p.NominalX("(no data)")
		p.Y.Min, p.Y.Max = 0, 1
		return p, nil
	}

	barWidth := vg.Points(48) / vg.Length(n)
	if len(bc.categories) > 8 {
		barWidth = vg.Points(24) / vg.Length(n)
	}

	maxY := 0.0
	for i, s := range bc.series {
		vals := make(plotter.Values, len(bc.categories))
		for j := range vals {
			if j < len(s.values) && !math.IsNaN(s.values[j]) {
				vals[j] = s.values[j]
			}
			maxY = math.Max(maxY, vals[j])
		}
		bars, err := plotter.NewBarChart(vals, barWidth)
		if err != nil {
			return nil, errors.Wrapf(err, "bars for %s", s.name)
		}
		bars.Color = s.color
		bars.LineStyle.Width = 0
		offset := (vg.Length(i) - vg.Length(n-1)/2) * barWidth
		bars.Offset = offset
		p.Add(bars)
		if n > 1 {
			p.Legend.Add(s.name, bars)
		}

		if len(s.labels) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(vals))
		labels := make([]string, len(vals))
		for j := range vals {
			xys[j] = plotter.XY{X: float64(j), Y: vals[j]}
			if j < len(s.labels) {
				labels[j] = s.labels[j]
			}
		}
		l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, errors.Wrapf(err, "labels for %s", s.name)
		}
		for k := range l.TextStyle {
			l.TextStyle[k].XAlign = draw.XCenter
			l.TextStyle[k].YAlign = draw.YBottom
			l.TextStyle[k].Font.Size = vg.Points(7)
		}
		l.Offset = vg.Point{X: offset, Y: vg.Points(2)}
		p.Add(l)
	}

	p.NominalX(bc.categories...)
	if len(bc.categories) > 6 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	p.Y.Min = 0
	switch {
	case bc.percent:
		p.Y.Max = math.Max(100, maxY) * 1.1
	case maxY > 0:
		p.Y.Max = maxY * 1.15
	default:
		p.Y.Max = 1
	}
	p.Y.Tick.Marker = numTicks{}
	return p, nil
}

type numTicks struct{}

func (numTicks) Ticks(min, max float64) []plot.Tick {
	t := plot.DefaultTicks{}
	ticks := t.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = formatCompact(ticks[i].Value)
		}
	}
	return ticks
}

func formatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.0fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
