// Package catalogue holds the hand-maintained list of schools per education
// level. The order of levels and of schools within a level is the display
// order of every table keyed by school.
package catalogue

import (
	"github.com/pkg/errors"

	"github.com/zalepa/fcaschools/records"
)

// TotalName is the synthetic school name of the aggregate row.
const TotalName = "TOTAL"

// ErrConfig marks a broken catalogue or join definition, as opposed to sparse
// data which is always absorbed.
var ErrConfig = errors.New("configuration error")

// Level is one education level and its schools in display order.
type Level struct {
	Name    string   `mapstructure:"level" json:"level"`
	Schools []string `mapstructure:"schools" json:"schools"`
}

// Catalogue maps levels to ordered school lists.
type Catalogue struct {
	levels []Level
	index  map[string]int
}

// New builds a catalogue from levels in their declared sequence. Only
// structural problems are reported here; duplicate schools inside a level are
// reported by Schools so the faulty level is named at the point of use.
func New(levels []Level) (*Catalogue, error) {
	if len(levels) == 0 {
		return nil, errors.Wrap(ErrConfig, "catalogue has no levels")
	}
	c := &Catalogue{index: make(map[string]int, len(levels))}
	for i, l := range levels {
		if l.Name == "" {
			return nil, errors.Wrapf(ErrConfig, "catalogue level %d has no name", i+1)
		}
		if l.Name == records.AllLevels {
			return nil, errors.Wrapf(ErrConfig, "%q is reserved and cannot be a level", records.AllLevels)
		}
		if _, dup := c.index[l.Name]; dup {
			return nil, errors.Wrapf(ErrConfig, "level %q declared twice", l.Name)
		}
		c.index[l.Name] = i
		c.levels = append(c.levels, Level{Name: l.Name, Schools: append([]string(nil), l.Schools...)})
	}
	return c, nil
}

// MustNew is like New but panics on error. It is meant for package-level
// catalogues that are known to be valid.
func MustNew(levels []Level) *Catalogue {
	c, err := New(levels)
	if err != nil {
		panic(err)
	}
	return c
}

// Levels returns the level names in declared order.
func (c *Catalogue) Levels() []string {
	names := make([]string, len(c.levels))
	for i, l := range c.levels {
		names[i] = l.Name
	}
	return names
}

// Has reports whether level is declared.
func (c *Catalogue) Has(level string) bool {
	_, ok := c.index[level]
	return ok
}

// Schools returns the canonical school list for a level. An empty level or
// records.AllLevels yields the union across levels.
func (c *Catalogue) Schools(level string) ([]string, error) {
	if level == "" || level == records.AllLevels {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c.Union(), nil
	}
	i, ok := c.index[level]
	if !ok {
		return nil, errors.Wrapf(ErrConfig, "unknown level %q", level)
	}
	schools := c.levels[i].Schools
	if err := checkSchools(level, schools); err != nil {
		return nil, err
	}
	return append([]string(nil), schools...), nil
}

// Union returns every school once, in first-seen order walking the levels in
// declared order.
func (c *Catalogue) Union() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range c.levels {
		for _, s := range l.Schools {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Validate checks every level list.
func (c *Catalogue) Validate() error {
	for _, l := range c.levels {
		if err := checkSchools(l.Name, l.Schools); err != nil {
			return err
		}
	}
	return nil
}

func checkSchools(level string, schools []string) error {
	seen := make(map[string]bool, len(schools))
	for _, s := range schools {
		if s == "" {
			return errors.Wrapf(ErrConfig, "level %q has an empty school name", level)
		}
		if s == TotalName {
			return errors.Wrapf(ErrConfig, "level %q lists the reserved name %q", level, TotalName)
		}
		if seen[s] {
			return errors.Wrapf(ErrConfig, "level %q lists %q more than once", level, s)
		}
		seen[s] = true
	}
	return nil
}
