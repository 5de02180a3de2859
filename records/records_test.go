package records

import (
	"math"
	"reflect"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"12", 12},
		{" 1,234 ", 1234},
		{"45.5", 45.5},
		{"80%", 80},
		{"-3", -3},
	}
	for _, tt := range tests {
		got := ParseNumber(tt.input)
		if got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	for _, s := range []string{"", "- -", "--", "-", "n/a", "abc", "12 boys"} {
		if got := ParseNumber(s); !math.IsNaN(got) {
			t.Errorf("ParseNumber(%q) = %v, want NaN", s, got)
		}
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"2024", 2024, false},
		{" 2025 ", 2025, false},
		{"2024.0", 2024, false},
		{"2024.5", 0, true},
		{"", 0, true},
		{"Select Year", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseYear(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseYear(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseYear(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeKeepsEveryRow(t *testing.T) {
	raw := []Raw{
		{School: "Joy Sch", Grade: "Grade 1", Level: "Primary", Term: "Term 1", Year: "2025", Boys: "10", Girls: "12", Total: "22"},
		{School: " Future Sch ", Grade: "PP1", Level: "ECDE", Term: "Term 1", Year: "bad", Boys: "x", Girls: "", Total: "5"},
	}
	got := Normalize(raw)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Year != 2025 || got[0].Boys != 10 || got[0].Girls != 12 || got[0].Total != 22 {
		t.Errorf("first record = %+v", got[0])
	}
	if got[1].School != "Future Sch" {
		t.Errorf("school = %q, want trimmed name", got[1].School)
	}
	if got[1].Year != 0 {
		t.Errorf("year = %d, want 0 for unparseable year", got[1].Year)
	}
	if !math.IsNaN(got[1].Boys) || !math.IsNaN(got[1].Girls) {
		t.Errorf("expected NaN boys/girls, got %+v", got[1].Counts)
	}
	if got[1].Total != 5 {
		t.Errorf("total = %v, want 5 (read as given)", got[1].Total)
	}
	if n := Missing(got); n != 2 {
		t.Errorf("Missing = %d, want 2", n)
	}
}

func TestNormalizeTotalNotRecomputed(t *testing.T) {
	got := Normalize([]Raw{{Boys: "3", Girls: "4", Total: "10"}})
	if got[0].Total != 10 {
		t.Errorf("total = %v, want 10", got[0].Total)
	}
}

func TestCountsAddSkipsMissing(t *testing.T) {
	a := Counts{Boys: 1, Girls: math.NaN(), Total: 3}
	b := Counts{Boys: math.NaN(), Girls: 2, Total: 4}
	got := a.Add(b)
	want := Counts{Boys: 1, Girls: 2, Total: 7}
	if got != want {
		t.Errorf("Add = %+v, want %+v", got, want)
	}
}

func sample() []Record {
	return []Record{
		{School: "A", Grade: "G1", Level: "Primary", Term: "Term 1", Year: 2024, Week: "Week 1"},
		{School: "B", Grade: "G2", Level: "Primary", Term: "Term 1", Year: 2025, Week: "Week 2"},
		{School: "C", Grade: "PP1", Level: "ECDE", Term: "Term 2", Year: 2025, Week: "Week 10"},
		{School: "D", Grade: "G1", Level: "Primary", Term: "Term 1", Year: 2025, Week: "Week 1"},
	}
}

func schools(recs []Record) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r.School)
	}
	return out
}

func TestFilter(t *testing.T) {
	recs := sample()
	tests := []struct {
		name string
		c    Constraints
		want []string
	}{
		{"no constraints", Constraints{}, []string{"A", "B", "C", "D"}},
		{"year", Constraints{Year: 2025}, []string{"B", "C", "D"}},
		{"year and term", Constraints{Year: 2025, Term: "Term 1"}, []string{"B", "D"}},
		{"level", Constraints{Level: "ECDE"}, []string{"C"}},
		{"all levels is a wildcard", Constraints{Level: AllLevels, Year: 2025}, []string{"B", "C", "D"}},
		{"grade", Constraints{Grade: "G1"}, []string{"A", "D"}},
		{"week", Constraints{Week: "Week 1"}, []string{"A", "D"}},
		{"week set", Constraints{Weeks: []string{"Week 2", "Week 10"}}, []string{"B", "C"}},
		{"no substring match", Constraints{Term: "Term"}, nil},
		{"no match", Constraints{Year: 1999}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schools(Filter(recs, tt.c))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterEmptyResultIsNotNil(t *testing.T) {
	got := Filter(sample(), Constraints{Year: 1999})
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestWeekNumberAndSort(t *testing.T) {
	if n := WeekNumber("Week 12"); n != 12 {
		t.Errorf("WeekNumber = %d, want 12", n)
	}
	if n := WeekNumber("Midterm"); n != -1 {
		t.Errorf("WeekNumber = %d, want -1", n)
	}

	weeks := []string{"Week 2", "Week 10", "Week 1"}
	if got := SortWeeks(weeks, true); !reflect.DeepEqual(got, []string{"Week 10", "Week 2", "Week 1"}) {
		t.Errorf("newest first = %v", got)
	}
	if got := SortWeeks(weeks, false); !reflect.DeepEqual(got, []string{"Week 1", "Week 2", "Week 10"}) {
		t.Errorf("oldest first = %v", got)
	}
	if !reflect.DeepEqual(weeks, []string{"Week 2", "Week 10", "Week 1"}) {
		t.Errorf("input modified: %v", weeks)
	}
}

func TestOptions(t *testing.T) {
	recs := sample()
	opts := OptionsFor(recs)
	if !reflect.DeepEqual(opts.Years, []int{2024, 2025}) {
		t.Errorf("years = %v", opts.Years)
	}
	if !reflect.DeepEqual(opts.Levels, []string{"ECDE", "Primary"}) {
		t.Errorf("levels = %v", opts.Levels)
	}
	if !reflect.DeepEqual(opts.Weeks, []string{"Week 10", "Week 2", "Week 1"}) {
		t.Errorf("weeks = %v", opts.Weeks)
	}
	if got := Grades(recs, "Primary"); !reflect.DeepEqual(got, []string{"G1", "G2"}) {
		t.Errorf("grades = %v", got)
	}
	if got := Weeks(recs, 2025, "Term 1"); !reflect.DeepEqual(got, []string{"Week 2", "Week 1"}) {
		t.Errorf("weeks for term = %v", got)
	}
	if got := DefaultTrendWeeks(recs); !reflect.DeepEqual(got, []string{"Week 2", "Week 10"}) {
		t.Errorf("default trend weeks = %v", got)
	}
}
