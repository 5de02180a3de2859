package workbook

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/zalepa/fcaschools/rates"
	"github.com/zalepa/fcaschools/reconcile"
	"github.com/zalepa/fcaschools/records"
)

var header = []interface{}{ColSchool, ColGrade, ColLevel, ColTerm, ColYear, ColWeek, ColBoys, ColGirls, ColTotal}

// Write builds a workbook holding raw enrolment and attendance rows under the
// given sheet names and writes it to w.
func Write(w io.Writer, sheets Sheets, enrolment, attendance []records.Raw) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheets.Enrolment); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	if err := writeRaw(f, sheets.Enrolment, enrolment); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheets.Attendance); err != nil {
		return errors.Wrapf(err, "create sheet %q", sheets.Attendance)
	}
	if err := writeRaw(f, sheets.Attendance, attendance); err != nil {
		return err
	}
	return errors.Wrap(f.Write(w), "write workbook")
}

func writeRaw(f *excelize.File, sheet string, rows []records.Raw) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrapf(err, "write header of %q", sheet)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.School, r.Grade, r.Level, r.Term, r.Year, r.Week, r.Boys, r.Girls, r.Total}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "write row %d of %q", i+2, sheet)
		}
	}
	return nil
}

// Export writes a reconciled enrolment table and an attendance rate table to
// an xlsx file at path, one sheet each. Either table may be nil.
func Export(path string, enrolment *reconcile.Table, attendance *rates.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := true
	sheet := func(name string) error {
		if first {
			first = false
			return f.SetSheetName("Sheet1", name)
		}
		_, err := f.NewSheet(name)
		return err
	}

	if enrolment != nil {
		name := "Enrolment"
		if err := sheet(name); err != nil {
			return errors.Wrap(err, "create enrolment sheet")
		}
		rows := [][]interface{}{{"School", "Boys", "Girls", "Total"}}
		for _, r := range enrolment.Rows {
			c := r.Filled()
			rows = append(rows, []interface{}{r.School, c.Boys, c.Girls, c.Total})
		}
		if err := setRows(f, name, rows); err != nil {
			return err
		}
	}

	if attendance != nil {
		name := "Attendance"
		if err := sheet(name); err != nil {
			return errors.Wrap(err, "create attendance sheet")
		}
		rows := [][]interface{}{{"School", "Attendance Boys", "Attendance Girls", "Attendance Total",
			"Enrolment Total", "Rate", "Label"}}
		for _, r := range attendance.Rows {
			rows = append(rows, []interface{}{r.School, r.Attendance.Boys, r.Attendance.Girls, r.Attendance.Total,
				r.Enrolment.Total, r.Rate, r.Label})
		}
		if err := setRows(f, name, rows); err != nil {
			return err
		}
	}

	if first {
		return errors.New("export: nothing to write")
	}
	return errors.Wrapf(f.SaveAs(path), "save %s", path)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return errors.Wrapf(err, "write row %d of %q", i+1, sheet)
		}
	}
	return nil
}
