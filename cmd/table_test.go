package cmd

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/zalepa/fcaschools/rates"
	"github.com/zalepa/fcaschools/records"
)

func TestPrintViews(t *testing.T) {
	s := testSession(t)
	var buf bytes.Buffer
	if err := printViews(&buf, s, s.resolve(query{level: "Primary"}), "all"); err != nil {
		t.Fatalf("printViews: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Enrolment: Primary / 2024 / Term 1",
		"360", // enrolment TOTAL
		"79%", // attendance TOTAL rate
		"62%", // Joy Grade 1 mean of 50% and 75%
		"Hope Sch",
		"Grade 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Joy Sch") > strings.Index(out, "Hope Sch") {
		t.Error("Joy Sch should print before Hope Sch (catalogue order)")
	}
}

func TestPrintSingleView(t *testing.T) {
	s := testSession(t)
	var buf bytes.Buffer
	if err := printViews(&buf, s, s.resolve(query{level: "Secondary"}), "enrolment"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "Attendance") {
		t.Errorf("enrolment view printed attendance:\n%s", out)
	}
	if !strings.Contains(out, "Unity Secondary") {
		t.Errorf("missing school:\n%s", out)
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		input []float64
		want  string
	}{
		{[]float64{0, 50, 100}, "▁▄█"},
		{[]float64{75, 75}, "▅▅"},
		{[]float64{10, math.NaN(), 20}, "▁ █"},
		{[]float64{math.NaN()}, " "},
	}
	for _, tt := range tests {
		if got := sparkline(tt.input); got != tt.want {
			t.Errorf("sparkline(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStripSchoolSuffix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Joy Sch", "JOY"},
		{"Joy Primary School", "JOY"},
		{"  joy   sch ", "JOY"},
		{"Kalobeyei Settlement Secondary School", "KALOBEYEI SETTLEMENT"},
		{"Kalobeyei Settlement Secondary", "KALOBEYEI SETTLEMENT"},
		{"Brightstar Integrated Secondary", "BRIGHTSTAR INTEGRATED"},
		// No suffix.
		{"The Big Heart Foundation Girls", "THE BIG HEART FOUNDATION GIRLS"},
		// "SCH" inside a word shouldn't be stripped.
		{"Esikiriat", "ESIKIRIAT"},
		{"Schoolhouse", "SCHOOLHOUSE"},
	}
	for _, tt := range tests {
		if got := stripSchoolSuffix(tt.input); got != tt.want {
			t.Errorf("stripSchoolSuffix(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFindUnknownSchools(t *testing.T) {
	s := testSession(t)
	recs := append(s.data.Enrolment,
		rec("Joy Primary School", "Grade 3", "Primary", "", 1, 1, 2),
		rec("Joy Primary School", "Grade 4", "Primary", "", 1, 1, 2),
		rec("Nowhere", "Grade 1", "Primary", "", 1, 1, 2),
		rec("Joy Sch", "Level 1", "Tertiary", "", 1, 1, 2),
	)

	got := findUnknownSchools("Enrolment Data", recs, s.cat)
	if len(got) != 3 {
		t.Fatalf("got %d unknown schools, want 3: %+v", len(got), got)
	}

	joy := got[0]
	if joy.level != "Primary" || joy.name != "Joy Primary School" || joy.rows != 2 {
		t.Errorf("got[0] = %+v", joy)
	}
	if !reflect.DeepEqual(joy.suggest, []string{"Joy Sch"}) {
		t.Errorf("suggest = %v, want [Joy Sch]", joy.suggest)
	}
	if got[1].name != "Nowhere" || got[1].suggest != nil {
		t.Errorf("got[1] = %+v, want Nowhere without a match", got[1])
	}
	if got[2].level != "Tertiary" {
		t.Errorf("got[2].level = %q, want Tertiary", got[2].level)
	}

	var buf bytes.Buffer
	printUnknown(&buf, got, s.cat)
	if !strings.Contains(buf.String(), "(level not in catalogue)") {
		t.Errorf("report does not flag the unknown level:\n%s", buf.String())
	}
}

func TestFindUnknownSchoolsClean(t *testing.T) {
	s := testSession(t)
	if got := findUnknownSchools("Attendance Report", s.data.Attendance, s.cat); len(got) != 0 {
		t.Errorf("got %+v, want none", got)
	}
	var buf bytes.Buffer
	printUnknown(&buf, nil, s.cat)
	if !strings.Contains(buf.String(), "every school") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRenderTrendMissingWeek(t *testing.T) {
	s := testSession(t)
	c := s.resolve(query{level: "Primary"})
	points, err := s.trend(c)
	if err != nil {
		t.Fatal(err)
	}
	avg, err := rates.AcrossWeeks(points, s.cat, c.Level)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	renderTrend(&buf, points, avg, records.SortWeeks(c.Weeks, true))
	out := buf.String()
	if !strings.Contains(out, "- -") {
		t.Errorf("weeks without data should print - -:\n%s", out)
	}
	if strings.Index(out, "Week 1") > strings.Index(out, "Week 2") {
		t.Errorf("weeks should be printed oldest first:\n%s", out)
	}
}
