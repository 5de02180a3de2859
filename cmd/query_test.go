package cmd

import (
	"reflect"
	"testing"

	"github.com/zalepa/fcaschools/catalogue"
	"github.com/zalepa/fcaschools/internal/config"
	"github.com/zalepa/fcaschools/records"
)

func rec(school, grade, level, week string, boys, girls, total float64) records.Record {
	return records.Record{
		School: school, Grade: grade, Level: level, Term: "Term 1", Year: 2024, Week: week,
		Counts: records.Counts{Boys: boys, Girls: girls, Total: total},
	}
}

func testDataset() *records.Dataset {
	return &records.Dataset{
		Enrolment: []records.Record{
			rec("Joy Sch", "Grade 1", "Primary", "", 50, 50, 100),
			rec("Joy Sch", "Grade 2", "Primary", "", 100, 100, 200),
			rec("Hope Sch", "Grade 1", "Primary", "", 30, 30, 60),
			rec("Unity Secondary", "Form 1", "Secondary", "", 40, 40, 80),
		},
		Attendance: []records.Record{
			rec("Joy Sch", "Grade 1", "Primary", "Week 1", 25, 25, 50),
			rec("Joy Sch", "Grade 1", "Primary", "Week 2", 40, 35, 75),
			rec("Joy Sch", "Grade 2", "Primary", "Week 2", 75, 75, 150),
			rec("Hope Sch", "Grade 1", "Primary", "Week 2", 30, 30, 60),
			rec("Unity Secondary", "Form 1", "Secondary", "Week 2", 20, 20, 40),
		},
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Data:    config.DataConfig{EnrolmentSheet: "Enrolment Data", AttendanceSheet: "Attendance Report"},
		Web:     config.WebConfig{Port: "8080"},
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
		Catalogue: []catalogue.Level{
			{Name: "Primary", Schools: []string{"Joy Sch", "Hope Sch"}},
			{Name: "Secondary", Schools: []string{"Unity Secondary"}},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return cfg
}

func testSession(t *testing.T) *session {
	t.Helper()
	s, err := newSession(testConfig(t), testDataset())
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	return s
}

func TestResolveDefaults(t *testing.T) {
	s := testSession(t)
	got := s.resolve(query{})
	want := records.Constraints{
		Year:  2024,
		Term:  "Term 1",
		Level: records.AllLevels,
		Week:  "Week 2",
		Weeks: []string{"Week 1", "Week 2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("resolve() = %+v, want %+v", got, want)
	}
}

func TestResolveExplicit(t *testing.T) {
	s := testSession(t)
	got := s.resolve(query{year: 2023, term: "Term 3", level: "Primary", grade: "Grade 1", week: "Week 9", weeks: "Week 2, ,Week 1"})
	want := records.Constraints{
		Year:  2023,
		Term:  "Term 3",
		Level: "Primary",
		Grade: "Grade 1",
		Week:  "Week 9",
		Weeks: []string{"Week 2", "Week 1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("resolve() = %+v, want %+v", got, want)
	}
}

func TestSessionViews(t *testing.T) {
	s := testSession(t)
	c := s.resolve(query{level: "Primary"})

	enr, err := s.enrolment(c)
	if err != nil {
		t.Fatal(err)
	}
	if got := enr.Total().Total; got != 360 {
		t.Errorf("enrolment total = %v, want 360", got)
	}

	att, err := s.attendance(c)
	if err != nil {
		t.Fatal(err)
	}
	joy := att.Rows[0]
	if joy.School != "Joy Sch" || joy.Label != "75%" {
		t.Errorf("Joy row = %+v, want 75%%", joy)
	}
	if got := att.Total().Label; got != "79%" {
		t.Errorf("total label = %q, want 79%%", got)
	}

	points, err := s.trend(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 4 {
		t.Errorf("got %d trend points, want 4", len(points))
	}

	grades, err := s.grades(s.resolve(query{level: "Primary", grade: "Grade 2"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(grades) != 3 {
		t.Errorf("grades ignores the grade filter: got %d rows, want 3", len(grades))
	}
}

func TestSessionLevels(t *testing.T) {
	s := testSession(t)
	if got, want := s.levels(""), []string{"Primary", "Secondary", records.AllLevels}; !reflect.DeepEqual(got, want) {
		t.Errorf("levels(\"\") = %v, want %v", got, want)
	}
	if got, want := s.levels("Secondary"), []string{"Secondary"}; !reflect.DeepEqual(got, want) {
		t.Errorf("levels(Secondary) = %v, want %v", got, want)
	}
}

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		input []string
		want  []string
	}{
		{[]string{"data.xlsx", "--level", "Primary"}, []string{"--level", "Primary", "data.xlsx"}},
		{[]string{"--year=2024", "data.xlsx"}, []string{"--year=2024", "data.xlsx"}},
		{[]string{"--term", "Term 1", "--", "-odd.xlsx"}, []string{"--term", "Term 1", "-odd.xlsx"}},
	}
	for _, tt := range tests {
		if got := reorderArgs(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("reorderArgs(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func inTerm(r records.Record, term string) records.Record {
	r.Term = term
	return r
}

func TestTrendSpansTerms(t *testing.T) {
	ds := testDataset()
	ds.Enrolment = append(ds.Enrolment, inTerm(rec("Joy Sch", "Grade 1", "Primary", "", 100, 100, 200), "Term 2"))
	ds.Attendance = append(ds.Attendance, inTerm(rec("Joy Sch", "Grade 1", "Primary", "Week 1", 75, 75, 150), "Term 2"))
	s, err := newSession(testConfig(t), ds)
	if err != nil {
		t.Fatal(err)
	}

	points, err := s.trend(s.resolve(query{level: "Primary", weeks: "Week 1"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1: %+v", len(points), points)
	}
	// Term 1 at 50% and Term 2 at 75%.
	if p := points[0]; p.Rate != 62.5 || p.Samples != 2 {
		t.Errorf("Joy Grade 1 Week 1 = %+v, want 62.5 from 2 samples", p)
	}
}

func TestAllLevelsTablesAgree(t *testing.T) {
	ds := testDataset()
	ds.Enrolment = append(ds.Enrolment, rec("Joy Sch", "Baby Class", "Pre-Primary", "", 5, 5, 10))
	ds.Attendance = append(ds.Attendance, rec("Joy Sch", "Baby Class", "Pre-Primary", "Week 2", 4, 4, 8))
	s, err := newSession(testConfig(t), ds)
	if err != nil {
		t.Fatal(err)
	}
	c := s.resolve(query{})

	enr, err := s.enrolment(c)
	if err != nil {
		t.Fatal(err)
	}
	att, err := s.attendance(c)
	if err != nil {
		t.Fatal(err)
	}
	joyEnr, _ := enr.Lookup("Joy Sch")
	if joyEnr.Total != 300 {
		t.Errorf("enrolment table Joy Sch = %v, want 300", joyEnr.Total)
	}
	if got := att.Rows[0].Enrolment.Total; got != joyEnr.Total {
		t.Errorf("attendance summary enrolment = %v, enrolment table = %v", got, joyEnr.Total)
	}
}

func TestSessionWeekly(t *testing.T) {
	s := testSession(t)
	w, err := s.weekly(s.resolve(query{}))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Week 1", "Week 2"}; !reflect.DeepEqual(w.Weeks, want) {
		t.Errorf("weeks = %v, want %v", w.Weeks, want)
	}
	want := map[string][]float64{
		"Joy Sch":         {50, 225},
		"Hope Sch":        {0, 60},
		"Unity Secondary": {0, 40},
	}
	if len(w.Schools) != len(want) {
		t.Fatalf("got %d schools, want %d", len(w.Schools), len(want))
	}
	for _, ws := range w.Schools {
		if !reflect.DeepEqual(ws.Attendance, want[ws.School]) {
			t.Errorf("%s = %v, want %v", ws.School, ws.Attendance, want[ws.School])
		}
	}
}
