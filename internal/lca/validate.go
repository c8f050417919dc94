package lca

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Required Fields
// ---------------------------------------------------------------------------

// requiredField pairs a field name with a presence check. A zero wage counts
// as missing, the same as an empty string.
type requiredField struct {
	name    string
	present func(Record) bool
}

func str(get func(Record) string) func(Record) bool {
	return func(r Record) bool { return get(r) != "" }
}

// requiredFields is checked in order; the first missing field is reported.
var requiredFields = []requiredField{
	{"jobTitle", str(func(r Record) string { return r.JobTitle })},
	{"employerName", str(func(r Record) string { return r.EmployerName })},
	{"caseNumber", str(func(r Record) string { return r.CaseNumber })},
	{"socCode", str(func(r Record) string { return r.SOCCode })},
	{"socTitle", str(func(r Record) string { return r.SOCTitle })},
	{"wageRateFrom", func(r Record) bool { return r.WageRateFrom != 0 }},
	{"wageUnit", str(func(r Record) string { return r.WageUnit })},
	{"employmentStartDate", str(func(r Record) string { return r.EmploymentStartDate })},
	{"employmentEndDate", str(func(r Record) string { return r.EmploymentEndDate })},
	{"worksiteAddress", str(func(r Record) string { return r.WorksiteAddress })},
	{"worksiteCity", str(func(r Record) string { return r.WorksiteCity })},
	{"worksiteState", str(func(r Record) string { return r.WorksiteState })},
	{"worksitePostalCode", str(func(r Record) string { return r.WorksitePostalCode })},
}

// RequiredFields returns the names of the fields Validate insists on.
func RequiredFields() []string {
	names := make([]string, len(requiredFields))
	for i, f := range requiredFields {
		names[i] = f.name
	}
	return names
}

// MissingFields lists every required field that is empty, in check order.
func MissingFields(r Record) []string {
	var missing []string
	for _, f := range requiredFields {
		if !f.present(r) {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate checks that the record can be turned into a notice. It returns an
// *Error naming the first missing field, or a KindInvalid error when the
// worker count is negative or the employment period ends before it starts.
func Validate(r Record) error {
	for _, f := range requiredFields {
		if !f.present(r) {
			return &Error{Kind: KindMissingField, Field: f.name}
		}
	}

	if r.TotalWorkers < 0 {
		return &Error{
			Kind:  KindInvalid,
			Field: "totalWorkers",
			Err:   fmt.Errorf("must be at least 1, got %d", r.TotalWorkers),
		}
	}

	// Unparseable dates are printed verbatim, so only order what parses.
	start, okStart := parseDate(r.EmploymentStartDate)
	end, okEnd := parseDate(r.EmploymentEndDate)
	if okStart && okEnd && end.Before(start) {
		return &Error{
			Kind:  KindInvalid,
			Field: "employmentEndDate",
			Err:   errors.New("employment period ends before it starts"),
		}
	}

	return nil
}
