package cmd

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/zalepa/fcaschools/internal/logger"
	"github.com/zalepa/fcaschools/rates"
	"github.com/zalepa/fcaschools/reconcile"
	"github.com/zalepa/fcaschools/records"
)

// Landscape letter.
const (
	pageWidth  = 11 * vg.Inch
	pageHeight = 8.5 * vg.Inch
	pdfMargin  = 0.6 * vg.Inch
)

// Report implements the "report" subcommand.
func Report(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	q := addQueryFlags(fs)
	out := fs.String("out", "report.pdf", "output PDF file path")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fcaschools report [workbook] [flags]

Write a PDF report with a section per education level. Without --level every
level is covered, followed by all levels combined.

Flags:
`)
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		q.workbook = fs.Arg(0)
	}

	cfg, err := loadConfig(q.config)
	if err != nil {
		fail("loading config", err)
	}
	s, err := openSession(cfg, q.workbook)
	if err != nil {
		fail("loading data", err)
	}
	pages, err := writeReport(s, s.resolve(*q), *out)
	if err != nil {
		fail("writing report", err)
	}
	fmt.Printf("wrote %s (%d pages)\n", *out, pages)
}

// writeReport renders one PDF per level into a temporary directory and merges
// them into path. It returns the page count of the merged file.
func writeReport(s *session, c records.Constraints, path string) (int, error) {
	dir, err := os.MkdirTemp("", "fcaschools-report-")
	if err != nil {
		return 0, errors.Wrap(err, "temp dir")
	}
	defer os.RemoveAll(dir)

	var parts []string
	for i, level := range s.levels(c.Level) {
		lc := c
		lc.Level = level
		part := filepath.Join(dir, fmt.Sprintf("%02d.pdf", i))
		if err := writeSection(s, lc, part); err != nil {
			return 0, errors.Wrapf(err, "section %s", level)
		}
		parts = append(parts, part)
	}

	if len(parts) == 1 {
		if err := copyFile(parts[0], path); err != nil {
			return 0, err
		}
	} else if err := api.MergeCreateFile(parts, path, false, nil); err != nil {
		return 0, errors.Wrap(err, "merge sections")
	}
	return pageCount(path)
}

// writeSection writes the summary tables and every chart of one level.
func writeSection(s *session, c records.Constraints, path string) error {
	enr, err := s.enrolment(c)
	if err != nil {
		return err
	}
	att, err := s.attendance(c)
	if err != nil {
		return err
	}

	pdf := vgpdf.New(pageWidth, pageHeight)
	drawSummaryPage(pdf, c, enr, att)

	for _, view := range chartViews {
		p, err := buildChart(s, c, view)
		if err != nil {
			return err
		}
		pdf.NextPage()
		dc := draw.New(pdf)
		p.Draw(draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := pdf.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

const (
	summaryRowHeight = 0.24 * vg.Inch
	nameColWidth     = 2.4 * vg.Inch
	valueColWidth    = 1.1 * vg.Inch
)

// drawSummaryPage prints the enrolment and attendance tables side by side.
func drawSummaryPage(c *vgpdf.Canvas, q records.Constraints, enr *reconcile.Table, att *rates.Table) {
	dc := draw.New(c)
	area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
	usableW := area.Max.X - area.Min.X

	yTop := area.Max.Y
	fillText(area, "School enrolment and attendance: "+describe(q), vg.Points(14), area.Min.X, yTop-vg.Points(14), color.Black)
	sub := "Attendance week: " + q.Week
	if q.Week == "" {
		sub = "No attendance recorded"
	}
	fillText(area, sub, vg.Points(10), area.Min.X, yTop-0.35*vg.Inch, color.Gray{Y: 100})

	headerY := yTop - 0.8*vg.Inch
	left := area.Min.X
	right := area.Min.X + usableW/2

	cols := []string{"Enrolment", "Boys", "Girls", "Total"}
	for i, h := range cols {
		fillText(area, h, vg.Points(10), colX(left, i), headerY, color.Gray{Y: 80})
	}
	cols = []string{"Attendance", "Present", "Enrolled", "Rate"}
	for i, h := range cols {
		fillText(area, h, vg.Points(10), colX(right, i), headerY, color.Gray{Y: 80})
	}
	sepY := headerY - vg.Points(6)
	strokeHLine(area, area.Min.X, area.Min.X+usableW, sepY, color.Gray{Y: 180})

	y := sepY - summaryRowHeight*0.75
	for i, r := range enr.Rows {
		ry := y - vg.Length(i)*summaryRowHeight
		if i == len(enr.Rows)-1 {
			strokeHLine(area, left, right-vg.Points(12), ry+summaryRowHeight*0.6, color.Gray{Y: 180})
		}
		fillText(area, r.School, vg.Points(9), colX(left, 0), ry, color.Black)
		fillText(area, reconcile.FormatCount(r.Boys), vg.Points(9), colX(left, 1), ry, color.Black)
		fillText(area, reconcile.FormatCount(r.Girls), vg.Points(9), colX(left, 2), ry, color.Black)
		fillText(area, reconcile.FormatCount(r.Total), vg.Points(9), colX(left, 3), ry, color.Black)
	}
	for i, r := range att.Rows {
		ry := y - vg.Length(i)*summaryRowHeight
		if i == len(att.Rows)-1 {
			strokeHLine(area, right, area.Min.X+usableW, ry+summaryRowHeight*0.6, color.Gray{Y: 180})
		}
		fillText(area, r.School, vg.Points(9), colX(right, 0), ry, color.Black)
		fillText(area, reconcile.FormatCount(r.Attendance.Total), vg.Points(9), colX(right, 1), ry, color.Black)
		fillText(area, reconcile.FormatCount(r.Enrolment.Total), vg.Points(9), colX(right, 2), ry, color.Black)
		fillText(area, r.Label, vg.Points(9), colX(right, 3), ry, color.Black)
	}
}

func colX(x0 vg.Length, i int) vg.Length {
	if i == 0 {
		return x0
	}
	return x0 + nameColWidth + vg.Length(i-1)*valueColWidth*0.8
}

func fillText(c draw.Canvas, txt string, size vg.Length, x, y vg.Length, clr color.Color) {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
	}
	sty.Font.Size = size
	c.FillText(sty, vg.Point{X: x, Y: y}, pdfSafe(txt))
}

func strokeHLine(c draw.Canvas, x0, x1, y vg.Length, clr color.Color) {
	c.StrokeLine2(draw.LineStyle{
		Color: clr,
		Width: vg.Points(0.5),
	}, x0, y, x1, y)
}

func pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open pdf")
	}
	defer f.Close()

	ctx, err := pdfcpu.Read(f, model.NewDefaultConfiguration())
	if err != nil {
		return 0, errors.Wrap(err, "read pdf")
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, errors.Wrap(err, "page count")
	}
	logger.Debug("report: %s has %d pages", path, ctx.PageCount)
	return ctx.PageCount, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// pdfSafe replaces dashes the Liberation font in vgpdf cannot render.
func pdfSafe(s string) string {
	s = strings.ReplaceAll(s, "—", "-")
	return strings.ReplaceAll(s, "–", "-")
}
