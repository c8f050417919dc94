package lca

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Document Layout Constants
// ---------------------------------------------------------------------------

const (
	pageMargin     = 54.0 // 0.75in
	lineHeight     = 15.0
	bodyFontSize   = 11
	titleFontSize  = 14
	footerFontSize = 8
	sectionSpacing = 8.0

	departmentHeader = "U.S. Department of Labor - Employment and Training Administration"

	// DefaultPublicAccessAddress is printed in clause 8 unless configured.
	DefaultPublicAccessAddress = "the principal business office of the employer"
)

var titleLines = []string{
	"NOTICE OF FILING",
	"LABOR CONDITION APPLICATION",
	"FOR H-1B NONIMMIGRANT WORKERS",
}

// referenceNamespace scopes the name-based document references.
var referenceNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:lcanotice:notice"))

func defaultLayout(p Paper) Layout {
	return Layout{
		PageWidth:  p.Width,
		PageHeight: p.Height,
		Margin:     pageMargin,
		LineHeight: lineHeight,
	}
}

// Section is one block of the notice as it was laid out.
type Section struct {
	Number  int // 1-8 for the numbered clauses, 0 otherwise
	Heading string
	Text    string
}

// ---------------------------------------------------------------------------
// Document Content Builders
// ---------------------------------------------------------------------------

// documentReference derives a stable reference from the case number.
// Format: LCA-<uuid v5>
func documentReference(caseNumber string) string {
	return "LCA-" + uuid.NewSHA1(referenceNamespace, []byte(caseNumber)).String()
}

func workerNoun(n int) string {
	if n == 1 {
		return "worker"
	}
	return "workers"
}

func wageClause(r Record) string {
	unit := wageUnit(r.WageUnit)
	recipient := "this worker"
	if r.Workers() > 1 {
		recipient = "these workers"
	}

	if r.FixedWage() {
		return fmt.Sprintf("A wage of %s/%s is being offered to %s.",
			formatCurrency(r.WageRateFrom), unit, recipient)
	}
	return fmt.Sprintf("A wage range of %s to %s/%s is being offered to %s.",
		formatCurrency(r.WageRateFrom), formatCurrency(r.WageRateTo), unit, recipient)
}

// buildClauses returns the eight numbered clauses in their fixed order.
func buildClauses(r Record, publicAccess string) []Section {
	n := r.Workers()
	texts := []string{
		fmt.Sprintf("%s is seeking to employ H-1B nonimmigrant %s as %s through the filing of this Labor Condition Application.",
			r.EmployerName, workerNoun(n), r.JobTitle),
		workerPhrase(n) + " being sought.",
		fmt.Sprintf("The occupational classification is %s (%s).", r.SOCTitle, r.SOCCode),
		wageClause(r),
		fmt.Sprintf("The Labor Condition Application case number is %s.", r.CaseNumber),
		fmt.Sprintf("The period of employment is from %s to %s.",
			formatDate(r.EmploymentStartDate), formatDate(r.EmploymentEndDate)),
		fmt.Sprintf("The place of employment is %s.", r.Worksite()),
		fmt.Sprintf("The Labor Condition Application and the supporting public access file are available for public inspection at %s.",
			publicAccess),
	}

	sections := make([]Section, len(texts))
	for i, t := range texts {
		sections[i] = Section{Number: i + 1, Text: fmt.Sprintf("%d. %s", i+1, t)}
	}
	return sections
}

// buildPositionDetails describes the optional facts of the position.
func buildPositionDetails(r Record) []Section {
	employment := "Part-time position."
	if r.FullTimePosition {
		employment = "Full-time position."
	}
	sections := []Section{{Heading: "Position Details", Text: "Employment type: " + employment}}

	if r.PrevailingWage > 0 {
		pw := fmt.Sprintf("Prevailing wage: %s", formatCurrency(r.PrevailingWage))
		if unit := wageUnit(r.PWUnitOfPay); unit != "" {
			pw += "/" + unit
		}
		if r.PWSource != "" {
			pw += fmt.Sprintf(" (source: %s)", r.PWSource)
		}
		sections = append(sections, Section{Text: pw + "."})
	}
	if d := strings.TrimSpace(r.JobDescription); d != "" {
		sections = append(sections, Section{Heading: "Job Description", Text: d})
	}
	if q := strings.TrimSpace(r.Requirements); q != "" {
		sections = append(sections, Section{Heading: "Requirements", Text: q})
	}
	return sections
}

func buildComplaintsNotice() string {
	return "Complaints alleging misrepresentation of material facts in the Labor Condition Application " +
		"and/or failure to comply with the terms of the Labor Condition Application may be filed with " +
		"any office of the Wage and Hour Division of the United States Department of Labor."
}

func buildPostingNotice(generated time.Time, days int) string {
	first, last := postingWindow(generated, days)
	return fmt.Sprintf("This notice is posted from %s through %s (%d business days).",
		first.Format("01/02/2006"), last.Format("01/02/2006"), days)
}

// buildFooter returns the per-page footer. {nb} is replaced by fpdf with the
// total page count when the document is closed.
func buildFooter(reference string, generated time.Time) func(page int) string {
	date := generated.Format("01/02/2006")
	return func(page int) string {
		return fmt.Sprintf("Generated on %s    %s    Page %d of {nb}", date, reference, page)
	}
}

// ---------------------------------------------------------------------------
// Section Writers
// ---------------------------------------------------------------------------

func writeTitleBlock(c *Composer) (Section, error) {
	c.CheckPageBreak(float64(len(titleLines)+1) * c.layout.LineHeight)

	c.SetFont("B", titleFontSize)
	for _, t := range titleLines {
		if err := c.Line(t, AlignCenter); err != nil {
			return Section{}, err
		}
	}
	c.SetFont("B", bodyFontSize)
	if err := c.Line(departmentHeader, AlignCenter); err != nil {
		return Section{}, err
	}
	c.Space(2 * sectionSpacing)

	return Section{Heading: strings.Join(titleLines, " "), Text: departmentHeader}, nil
}

// writeSection lays out one block. Short blocks are kept on one page; longer
// ones flow line by line across the break.
func writeSection(c *Composer, s Section) error {
	c.SetFont("", bodyFontSize)
	lines := slices.Collect(c.WrapText(s.Text, c.ContentWidth()))

	need := float64(len(lines)) * c.layout.LineHeight
	if s.Heading != "" {
		need += c.layout.LineHeight
	}
	c.CheckPageBreak(need)

	if s.Heading != "" {
		c.SetFont("B", bodyFontSize)
		if err := c.Line(s.Heading, AlignLeft); err != nil {
			return err
		}
		c.SetFont("", bodyFontSize)
	}
	for _, line := range lines {
		if err := c.Line(line, AlignLeft); err != nil {
			return err
		}
	}
	c.Space(sectionSpacing)
	return nil
}

// writeDocument lays out the whole notice and returns its sections in order.
func writeDocument(c *Composer, r Record, o *options, generated time.Time) ([]Section, error) {
	title, err := writeTitleBlock(c)
	if err != nil {
		return nil, err
	}
	sections := []Section{title}

	body := buildClauses(r, o.publicAccess)
	body = append(body, buildPositionDetails(r)...)
	body = append(body,
		Section{Text: buildComplaintsNotice()},
		Section{Text: buildPostingNotice(generated, o.postingDays)},
	)

	for _, s := range body {
		if err := writeSection(c, s); err != nil {
			return nil, err
		}
		c.log.WithField("section", s.Number).Debug("section written")
		sections = append(sections, s)
	}
	return sections, nil
}
