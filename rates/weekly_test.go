package rates

import (
	"reflect"
	"testing"

	"github.com/zalepa/fcaschools/records"
)

func weeklyRows(t *testing.T) []Merged {
	t.Helper()
	return merged(t,
		[]records.Record{
			attendance("Joy Sch", "G1", "Primary", "T1", "Week 2", 10, 10, 20),
			attendance("Joy Sch", "G2", "Primary", "T1", "Week 2", 5, 5, 10),
			attendance("Joy Sch", "G1", "Primary", "T2", "Week 10", 8, 7, 15),
			attendance("Bright Sch", "G1", "Primary", "T1", "Week 10", 3, 2, 5),
			attendance("Other Sch", "G1", "Primary", "T1", "Week 2", 2, 2, 4),
			attendance("Brightstar Integrated Secondary", "F1", "Secondary", "T1", "Week 2", 4, 3, 7),
			attendance("Joy Sch", "Baby", "Pre-Primary", "T1", "Week 2", 1, 2, 3),
		},
		nil)
}

func TestWeeklyAttendance(t *testing.T) {
	cat := testCatalogue()
	w, err := WeeklyAttendance(weeklyRows(t), cat, "Primary")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Week 2", "Week 10"}; !reflect.DeepEqual(w.Weeks, want) {
		t.Errorf("weeks = %v, want %v", w.Weeks, want)
	}
	want := []WeeklySchool{
		{School: "Joy Sch", Attendance: []float64{30, 15}},
		{School: "Future Sch", Attendance: []float64{0, 0}},
		{School: "Bright Sch", Attendance: []float64{0, 5}},
		{School: "Other Sch", Attendance: []float64{4, 0}},
	}
	if !reflect.DeepEqual(w.Schools, want) {
		t.Errorf("schools = %+v\nwant %+v", w.Schools, want)
	}
}

func TestWeeklyAttendanceAllLevels(t *testing.T) {
	cat := testCatalogue()
	w, err := WeeklyAttendance(weeklyRows(t), cat, records.AllLevels)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, s := range w.Schools {
		names = append(names, s.School)
		// The undeclared Pre-Primary row is left out.
		if s.School == "Joy Sch" && s.Attendance[0] != 30 {
			t.Errorf("Joy Sch Week 2 = %v, want 30", s.Attendance[0])
		}
	}
	want := []string{"Joy Sch", "Future Sch", "Bright Sch", "Brightstar Integrated Secondary", "Other Sch"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("schools = %v, want %v", names, want)
	}
}

func TestWeeklyAttendanceEmpty(t *testing.T) {
	w, err := WeeklyAttendance(nil, testCatalogue(), "Secondary")
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Weeks) != 0 || len(w.Schools) != 1 || len(w.Schools[0].Attendance) != 0 {
		t.Errorf("got %+v", w)
	}
	if _, err := WeeklyAttendance(nil, testCatalogue(), "Tertiary"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
