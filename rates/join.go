package rates

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/zalepa/fcaschools/catalogue"
	"github.com/zalepa/fcaschools/records"
)

// Key names a field shared by attendance and enrolment records.
type Key string

const (
	KeySchool Key = "school"
	KeyGrade  Key = "grade"
	KeyLevel  Key = "level"
	KeyTerm   Key = "term"
	KeyYear   Key = "year"
)

// DefaultKeys joins a week of attendance to the enrolment of the same class.
var DefaultKeys = []Key{KeySchool, KeyGrade, KeyLevel, KeyTerm, KeyYear}

// Merged is an attendance record with its enrolment and rate.
type Merged struct {
	School     string         `json:"school"`
	Grade      string         `json:"grade"`
	Level      string         `json:"level"`
	Term       string         `json:"term"`
	Year       int            `json:"year"`
	Week       string         `json:"week"`
	Attendance records.Counts `json:"attendance"`
	Enrolment  records.Counts `json:"enrolment"`
	Rate       float64        `json:"rate"`
	Label      string         `json:"label"`
}

// Join attaches enrolment to every attendance record sharing the given keys.
// Every attendance record is kept; when no enrolment matches, enrolment is
// zero and so is the rate. Enrolment records sharing a key are summed.
// Missing measures are read as zero.
//
// An empty key list or a key that neither record shape carries is a
// configuration error.
func Join(attendance, enrolment []records.Record, keys []Key) ([]Merged, error) {
	if len(keys) == 0 {
		return nil, errors.Wrap(catalogue.ErrConfig, "join: no keys")
	}
	for _, k := range keys {
		if !k.valid() {
			return nil, errors.Wrapf(catalogue.ErrConfig, "join: key %q is not a record field", k)
		}
	}

	enr := make(map[string]records.Counts, len(enrolment))
	for _, r := range enrolment {
		k := joinKey(r, keys)
		enr[k] = enr[k].Add(r.Counts)
	}

	out := make([]Merged, 0, len(attendance))
	for _, r := range attendance {
		att := r.Counts.Filled()
		e := enr[joinKey(r, keys)]
		rate := Rate(att.Total, e.Total)
		out = append(out, Merged{
			School:     r.School,
			Grade:      r.Grade,
			Level:      r.Level,
			Term:       r.Term,
			Year:       r.Year,
			Week:       r.Week,
			Attendance: att,
			Enrolment:  e,
			Rate:       rate,
			Label:      Label(rate),
		})
	}
	return out, nil
}

func (k Key) valid() bool {
	switch k {
	case KeySchool, KeyGrade, KeyLevel, KeyTerm, KeyYear:
		return true
	}
	return false
}

func joinKey(r records.Record, keys []Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		switch k {
		case KeySchool:
			parts[i] = r.School
		case KeyGrade:
			parts[i] = r.Grade
		case KeyLevel:
			parts[i] = r.Level
		case KeyTerm:
			parts[i] = r.Term
		case KeyYear:
			parts[i] = strconv.Itoa(r.Year)
		}
	}
	return strings.Join(parts, "\x00")
}

// FilterMerged narrows merged rows with the same constraint semantics as
// records.Filter.
func FilterMerged(rows []Merged, c records.Constraints) []Merged {
	out := make([]Merged, 0, len(rows))
	for _, m := range rows {
		if c.Matches(m.key()) {
			out = append(out, m)
		}
	}
	return out
}

// key returns the identifying fields of m as a record without measures.
func (m Merged) key() records.Record {
	return records.Record{School: m.School, Grade: m.Grade, Level: m.Level, Term: m.Term, Year: m.Year, Week: m.Week}
}

// split returns the attendance and enrolment halves of merged rows as
// records, so each can be reconciled on its own.
func split(rows []Merged) (att, enr []records.Record) {
	att = make([]records.Record, len(rows))
	enr = make([]records.Record, len(rows))
	for i, m := range rows {
		att[i], enr[i] = m.key(), m.key()
		att[i].Counts = m.Attendance
		enr[i].Counts = m.Enrolment
	}
	return att, enr
}
