// Package lca renders the public notice of filing for a Labor Condition
// Application (LCA) as a paginated PDF document.
//
// A Record is validated, laid out clause by clause by a Composer and then
// saved to disk, encoded as a data URL or discarded after a dry run.
package lca

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is one labor condition filing. It is read, never modified.
type Record struct {
	CaseNumber string `json:"caseNumber" yaml:"caseNumber"`

	JobTitle         string `json:"jobTitle" yaml:"jobTitle"`
	SOCCode          string `json:"socCode" yaml:"socCode"`
	SOCTitle         string `json:"socTitle" yaml:"socTitle"`
	FullTimePosition bool   `json:"fullTimePosition" yaml:"fullTimePosition"`

	EmployerName string `json:"employerName" yaml:"employerName"`

	WageRateFrom   float64 `json:"wageRateFrom" yaml:"wageRateFrom"`
	WageRateTo     float64 `json:"wageRateTo" yaml:"wageRateTo"`
	WageUnit       string  `json:"wageUnit" yaml:"wageUnit"`
	PrevailingWage float64 `json:"prevailingWage" yaml:"prevailingWage"`
	PWUnitOfPay    string  `json:"pwUnitOfPay" yaml:"pwUnitOfPay"`
	PWSource       string  `json:"pwSource" yaml:"pwSource"`

	EmploymentStartDate string `json:"employmentStartDate" yaml:"employmentStartDate"`
	EmploymentEndDate   string `json:"employmentEndDate" yaml:"employmentEndDate"`

	WorksiteAddress    string `json:"worksiteAddress" yaml:"worksiteAddress"`
	WorksiteCity       string `json:"worksiteCity" yaml:"worksiteCity"`
	WorksiteState      string `json:"worksiteState" yaml:"worksiteState"`
	WorksitePostalCode string `json:"worksitePostalCode" yaml:"worksitePostalCode"`

	JobDescription string `json:"jobDescription,omitempty" yaml:"jobDescription,omitempty"`
	Requirements   string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	TotalWorkers   int    `json:"totalWorkers,omitempty" yaml:"totalWorkers,omitempty"` // 0 means absent

	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// Workers returns the number of workers sought. An absent count means one.
func (r Record) Workers() int {
	if r.TotalWorkers <= 0 {
		return 1
	}
	return r.TotalWorkers
}

// FixedWage reports whether the record offers a single wage instead of a range.
// A missing upper bound is a fixed wage. Bounds are compared in whole dollars,
// as they are printed.
func (r Record) FixedWage() bool {
	return r.WageRateTo == 0 || math.Round(r.WageRateFrom) == math.Round(r.WageRateTo)
}

// Worksite joins the worksite fields into one line of prose.
func (r Record) Worksite() string {
	return fmt.Sprintf("%s, %s, %s %s",
		r.WorksiteAddress, r.WorksiteCity, r.WorksiteState, r.WorksitePostalCode)
}

// LoadRecord reads a record from a JSON or YAML file, chosen by extension.
func LoadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read record file: %w", err)
	}

	var rec Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &rec)
	default:
		err = json.Unmarshal(data, &rec)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to parse record file: %w", err)
	}

	return rec, nil
}
