package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/zalepa/fcaschools/catalogue"
	"github.com/zalepa/fcaschools/records"
)

// schoolSuffixes lists designations that school names carry inconsistently
// across sheets. Order matters: longer suffixes must come first so
// "PRIMARY SCHOOL" is tried before "SCHOOL".
var schoolSuffixes = []string{
	"PRIMARY SCHOOL", "SECONDARY SCHOOL", "JUNIOR SCHOOL", "ECDE CENTRE", "ECD CENTRE",
	"SCHOOL", "SCH", "PRIMARY", "SECONDARY", "ACADEMY", "ECDE", "ECD", "CENTRE",
}

// stripSchoolSuffix removes trailing designations (e.g. "PRIMARY SCHOOL",
// "ECDE") from a school name and returns the uppercased base name.
func stripSchoolSuffix(name string) string {
	upper := strings.Join(strings.Fields(strings.ToUpper(name)), " ")
	for {
		stripped := false
		for _, suffix := range schoolSuffixes {
			if strings.HasSuffix(upper, " "+suffix) {
				upper = upper[:len(upper)-len(suffix)-1]
				stripped = true
				break
			}
		}
		if !stripped {
			return upper
		}
	}
}

// unknownSchool is a school name found in the data of a level that the
// catalogue does not list for that level.
type unknownSchool struct {
	sheet   string
	level   string
	name    string
	rows    int
	suggest []string // catalogue names with the same base name
}

// findUnknownSchools reports every (level, school) of the records whose
// school the catalogue does not list for that level. Rows of undeclared
// levels are reported with the level itself as the problem. Results are
// sorted by level, then name.
func findUnknownSchools(sheet string, recs []records.Record, cat *catalogue.Catalogue) []unknownSchool {
	type key struct{ level, name string }
	counts := make(map[key]int)
	for _, r := range recs {
		counts[key{r.Level, r.School}]++
	}

	known := make(map[string]map[string]bool)
	bases := make(map[string]map[string][]string)
	for _, level := range cat.Levels() {
		schools, err := cat.Schools(level)
		if err != nil {
			continue
		}
		known[level] = make(map[string]bool, len(schools))
		bases[level] = make(map[string][]string)
		for _, s := range schools {
			known[level][s] = true
			b := stripSchoolSuffix(s)
			bases[level][b] = append(bases[level][b], s)
		}
	}

	var out []unknownSchool
	for k, n := range counts {
		if known[k.level][k.name] {
			continue
		}
		u := unknownSchool{sheet: sheet, level: k.level, name: k.name, rows: n}
		if cat.Has(k.level) {
			u.suggest = bases[k.level][stripSchoolSuffix(k.name)]
		}
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].level != out[j].level {
			return out[i].level < out[j].level
		}
		return out[i].name < out[j].name
	})
	return out
}

// Check implements the "check" subcommand.
func Check(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (YAML)")
	workbookPath := fs.String("workbook", "", "workbook path (overrides data.workbook)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fcaschools check [workbook] [flags]

List school names and levels in the workbook that the catalogue does not know.
Rows for such schools are left out of every table. Exits with status 2 when
any are found.

Flags:
`)
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*workbookPath = fs.Arg(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fail("loading config", err)
	}
	s, err := openSession(cfg, *workbookPath)
	if err != nil {
		fail("loading data", err)
	}

	unknown := append(
		findUnknownSchools(cfg.Data.EnrolmentSheet, s.data.Enrolment, s.cat),
		findUnknownSchools(cfg.Data.AttendanceSheet, s.data.Attendance, s.cat)...)
	printUnknown(os.Stdout, unknown, s.cat)
	if len(unknown) > 0 {
		os.Exit(2)
	}
}

func printUnknown(w io.Writer, unknown []unknownSchool, cat *catalogue.Catalogue) {
	if len(unknown) == 0 {
		color.New(color.FgGreen).Fprintln(w, "every school and level is in the catalogue")
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(w, "%d school names are not in the catalogue\n", len(unknown))
	tw := newTable(w, []string{"Sheet", "Level", "School", "Rows", "Catalogue match"})
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, u := range unknown {
		match := strings.Join(u.suggest, ", ")
		if !cat.Has(u.level) {
			match = "(level not in catalogue)"
		}
		tw.Append([]string{u.sheet, u.level, u.name, strconv.Itoa(u.rows), match})
	}
	tw.Render()
}
