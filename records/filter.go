package records

// AllLevels is the level selection that spans every education level.
const AllLevels = "ALL LEVELS"

// Constraints narrows a record set. Zero values are wildcards.
type Constraints struct {
	Year  int
	Term  string
	Level string
	Grade string
	Week  string
	// Weeks keeps records whose week is any of the listed weeks.
	Weeks []string
}

// Matches reports whether r satisfies every constraint. Comparison is exact
// equality; there is no partial matching.
func (c Constraints) Matches(r Record) bool {
	if c.Year != 0 && r.Year != c.Year {
		return false
	}
	if c.Term != "" && r.Term != c.Term {
		return false
	}
	if c.Level != "" && c.Level != AllLevels && r.Level != c.Level {
		return false
	}
	if c.Grade != "" && r.Grade != c.Grade {
		return false
	}
	if c.Week != "" && r.Week != c.Week {
		return false
	}
	if len(c.Weeks) > 0 {
		for _, w := range c.Weeks {
			if r.Week == w {
				return true
			}
		}
		return false
	}
	return true
}

// Filter returns the records matching every constraint, in input order. The
// result is a new slice; recs is not modified.
func Filter(recs []Record, c Constraints) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
