package cmd

import (
	"flag"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/zalepa/fcaschools/catalogue"
	"github.com/zalepa/fcaschools/internal/config"
	"github.com/zalepa/fcaschools/internal/logger"
	"github.com/zalepa/fcaschools/rates"
	"github.com/zalepa/fcaschools/reconcile"
	"github.com/zalepa/fcaschools/records"
	"github.com/zalepa/fcaschools/workbook"
)

// query holds the flags shared by every subcommand. Unset filters are
// resolved against the loaded data by session.resolve.
type query struct {
	config   string
	workbook string
	year     int
	term     string
	level    string
	grade    string
	week     string
	weeks    string
}

func addQueryFlags(fs *flag.FlagSet) *query {
	q := &query{}
	fs.StringVar(&q.config, "config", "", "config file (YAML)")
	fs.StringVar(&q.workbook, "workbook", "", "workbook path (overrides data.workbook)")
	fs.IntVar(&q.year, "year", 0, "year (default: latest)")
	fs.StringVar(&q.term, "term", "", "term (default: latest term of the year)")
	fs.StringVar(&q.level, "level", records.AllLevels, "education level")
	fs.StringVar(&q.grade, "grade", "", "grade within the level (default: all grades)")
	fs.StringVar(&q.week, "week", "", "attendance week (default: most recent)")
	fs.StringVar(&q.weeks, "weeks", "", "comma-separated weeks for trends (default: two most recent)")
	return q
}

// session is one loaded workbook and everything derived from it once.
type session struct {
	cfg    *config.Config
	cat    *catalogue.Catalogue
	data   *records.Dataset
	merged []rates.Merged
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// openSession loads the workbook named by workbookPath, or by the config when
// workbookPath is empty.
func openSession(cfg *config.Config, workbookPath string) (*session, error) {
	path := workbookPath
	if path == "" {
		path = cfg.Data.Workbook
	}
	if path == "" {
		return nil, errors.New("no workbook: pass --workbook or set data.workbook")
	}
	ds, err := workbook.Load(path, workbook.Sheets{
		Enrolment:  cfg.Data.EnrolmentSheet,
		Attendance: cfg.Data.AttendanceSheet,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("loaded %s: %d enrolment rows, %d attendance rows", path, len(ds.Enrolment), len(ds.Attendance))
	return newSession(cfg, ds)
}

func newSession(cfg *config.Config, ds *records.Dataset) (*session, error) {
	merged, err := rates.Join(ds.Attendance, ds.Enrolment, rates.DefaultKeys)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, cat: cfg.SchoolCatalogue(), data: ds, merged: merged}, nil
}

// resolve fills unset filters: the latest year, the latest term recorded in
// that year, the most recent week of that term and its two most recent weeks
// for trends.
func (s *session) resolve(q query) records.Constraints {
	c := records.Constraints{Year: q.year, Term: q.term, Level: q.level, Grade: q.grade, Week: q.week}
	if c.Level == "" {
		c.Level = records.AllLevels
	}

	all := append(append([]records.Record(nil), s.data.Enrolment...), s.data.Attendance...)
	if c.Year == 0 {
		if years := records.OptionsFor(all).Years; len(years) > 0 {
			c.Year = years[len(years)-1]
		}
	}
	if c.Term == "" {
		terms := records.OptionsFor(records.Filter(all, records.Constraints{Year: c.Year})).Terms
		if len(terms) > 0 {
			c.Term = terms[len(terms)-1]
		}
	}

	if c.Week == "" {
		if weeks := records.Weeks(s.data.Attendance, c.Year, c.Term); len(weeks) > 0 {
			c.Week = weeks[0]
		}
	}
	if q.weeks != "" {
		for _, w := range strings.Split(q.weeks, ",") {
			if w = strings.TrimSpace(w); w != "" {
				c.Weeks = append(c.Weeks, w)
			}
		}
	} else {
		c.Weeks = records.DefaultTrendWeeks(records.Filter(s.data.Attendance, records.Constraints{Year: c.Year, Term: c.Term}))
	}
	return c
}

// enrolment reconciles the enrolment of the selected year, term, level and
// grade.
func (s *session) enrolment(c records.Constraints) (*reconcile.Table, error) {
	recs := records.Filter(s.data.Enrolment, records.Constraints{Year: c.Year, Term: c.Term, Level: c.Level, Grade: c.Grade})
	return reconcile.Reconcile(recs, s.cat, c.Level, c.Grade)
}

// week returns the merged rows of the selected week.
func (s *session) week(c records.Constraints) []rates.Merged {
	return rates.FilterMerged(s.merged, records.Constraints{Year: c.Year, Term: c.Term, Grade: c.Grade, Week: c.Week})
}

func (s *session) attendance(c records.Constraints) (*rates.Table, error) {
	return rates.Summary(s.week(c), s.cat, c.Level)
}

func (s *session) breakdown(c records.Constraints) ([]rates.GenderRate, error) {
	return rates.Breakdown(s.week(c), s.cat, c.Level)
}

// grades lists every grade of the selected week, ignoring the grade filter.
func (s *session) grades(c records.Constraints) ([]rates.GradeRate, error) {
	rows := rates.FilterMerged(s.merged, records.Constraints{Year: c.Year, Term: c.Term, Week: c.Week})
	return rates.ByGrade(rows, s.cat, c.Level)
}

// trend averages the selected weeks across every year and term that recorded
// them, so a week label shared by several terms yields one mean per (school,
// grade, week).
func (s *session) trend(c records.Constraints) ([]rates.TrendPoint, error) {
	rows := rates.FilterMerged(s.merged, records.Constraints{Grade: c.Grade})
	return rates.Trend(rows, s.cat, c.Level, c.Weeks)
}

// weekly sums attendance per week and school over the whole workbook.
func (s *session) weekly(c records.Constraints) (*rates.Weekly, error) {
	return rates.WeeklyAttendance(s.merged, s.cat, c.Level)
}

// levels returns the levels a report covers: the selected one, or every
// catalogue level followed by AllLevels.
func (s *session) levels(selected string) []string {
	if selected != "" && selected != records.AllLevels {
		return []string{selected}
	}
	return append(s.cat.Levels(), records.AllLevels)
}

func describe(c records.Constraints) string {
	parts := []string{c.Level, strconv.Itoa(c.Year), c.Term}
	if c.Grade != "" {
		parts = append(parts, c.Grade)
	}
	return strings.Join(parts, " / ")
}
