package records

// Raw is one spreadsheet row as read from either sheet, before any numeric
// coercion. Week is empty for enrolment rows.
type Raw struct {
	School string
	Grade  string
	Level  string
	Term   string
	Year   string
	Week   string
	Boys   string
	Girls  string
	Total  string
}

// Counts holds the three measures carried by every record. A NaN value means
// the source cell could not be read as a number.
type Counts struct {
	Boys  float64 `json:"boys"`
	Girls float64 `json:"girls"`
	Total float64 `json:"total"`
}

// Record is a normalized enrolment or attendance row.
type Record struct {
	School string `json:"school"`
	Grade  string `json:"grade"`
	Level  string `json:"level"`
	Term   string `json:"term"`
	Year   int    `json:"year"`
	Week   string `json:"week,omitempty"`
	Counts
}

// Dataset is the pair of record sets loaded from one workbook. It is never
// modified after loading.
type Dataset struct {
	Enrolment  []Record
	Attendance []Record
}
