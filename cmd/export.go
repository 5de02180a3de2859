package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/zalepa/fcaschools/workbook"
)

// Export implements the "export" subcommand.
func Export(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	q := addQueryFlags(fs)
	out := fs.String("out", "summary.xlsx", "output workbook path")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fcaschools export [workbook] [flags]

Write the reconciled enrolment table and the attendance summary of one
selection to an .xlsx workbook.

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
	c := s.resolve(*q)
	enr, err := s.enrolment(c)
	if err != nil {
		fail("reconciling enrolment", err)
	}
	att, err := s.attendance(c)
	if err != nil {
		fail("computing attendance", err)
	}
	if err := workbook.Export(*out, enr, att); err != nil {
		fail("writing workbook", err)
	}
	fmt.Printf("wrote %s\n", *out)
}
