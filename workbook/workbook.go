// Package workbook reads the enrolment and attendance sheets of a workbook
// into records, and writes reconciled tables back out.
package workbook

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/zalepa/fcaschools/internal/logger"
	"github.com/zalepa/fcaschools/records"
)

// Sheets names the two sheets of a workbook.
type Sheets struct {
	Enrolment  string
	Attendance string
}

// DefaultSheets are the sheet names used by the school data workbook.
var DefaultSheets = Sheets{Enrolment: "Enrolment Data", Attendance: "Attendance Report"}

// Column headers. Matching ignores case, spaces and underscores.
const (
	ColSchool = "School_Name"
	ColGrade  = "Grade_Level"
	ColLevel  = "Education_Level"
	ColTerm   = "Term"
	ColYear   = "Year"
	ColWeek   = "Attendance_Week"
	ColBoys   = "Boys"
	ColGirls  = "Girls"
	ColTotal  = "Total"
)

// ErrMissingColumn is returned when a sheet lacks the school name column.
var ErrMissingColumn = errors.New("missing column")

// Load opens the workbook at path and reads both sheets.
func Load(path string, sheets Sheets) (*records.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer func() { _ = f.Close() }()
	return read(f, sheets)
}

// Read reads both sheets from a workbook stream.
func Read(r io.Reader, sheets Sheets) (*records.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer func() { _ = f.Close() }()
	return read(f, sheets)
}

func read(f *excelize.File, sheets Sheets) (*records.Dataset, error) {
	enrRaw, err := ReadSheet(f, sheets.Enrolment)
	if err != nil {
		return nil, err
	}
	attRaw, err := ReadSheet(f, sheets.Attendance)
	if err != nil {
		return nil, err
	}

	ds := &records.Dataset{
		Enrolment:  records.Normalize(enrRaw),
		Attendance: records.Normalize(attRaw),
	}
	logger.Debug("workbook: %d enrolment rows (%d missing measures), %d attendance rows (%d missing measures)",
		len(ds.Enrolment), records.Missing(ds.Enrolment), len(ds.Attendance), records.Missing(ds.Attendance))
	return ds, nil
}

// ReadSheet returns the raw rows of a sheet. The first row is the header.
// Rows with no cell content at all are skipped; every other row is kept as
// read, whatever its quality.
func ReadSheet(f *excelize.File, sheet string) ([]records.Raw, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, errors.Errorf("sheet %q not found", sheet)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheet)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := headerIndex(rows[0])
	if _, ok := cols[normalizeHeader(ColSchool)]; !ok {
		return nil, errors.Wrapf(ErrMissingColumn, "sheet %q: %s", sheet, ColSchool)
	}

	out := make([]records.Raw, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		cell := func(name string) string {
			i, ok := cols[normalizeHeader(name)]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		out = append(out, records.Raw{
			School: cell(ColSchool),
			Grade:  cell(ColGrade),
			Level:  cell(ColLevel),
			Term:   cell(ColTerm),
			Year:   cell(ColYear),
			Week:   cell(ColWeek),
			Boys:   cell(ColBoys),
			Girls:  cell(ColGirls),
			Total:  cell(ColTotal),
		})
	}
	return out, nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", "")
	return strings.ReplaceAll(h, " ", "")
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
