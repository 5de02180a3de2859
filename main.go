package main

import (
	"fmt"
	"os"

	"github.com/zalepa/fcaschools/cmd"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "table":
		cmd.Table(os.Args[2:])
	case "chart":
		cmd.Chart(os.Args[2:])
	case "report":
		cmd.Report(os.Args[2:])
	case "export":
		cmd.Export(os.Args[2:])
	case "check":
		cmd.Check(os.Args[2:])
	case "web":
		cmd.Web(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: fcaschools <command> [workbook] [flags]

Commands:
  table    Print enrolment and attendance tables
  chart    Draw a bar chart (PNG, SVG or PDF)
  report   Write a PDF report covering every education level
  export   Write reconciled tables to an .xlsx workbook
  check    List school names missing from the catalogue
  web      Start an interactive web dashboard
`)
}
