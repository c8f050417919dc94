package lca

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	nonAlnum      = regexp.MustCompile(`[^a-zA-Z0-9]`)
	nonAlnumSpace = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

type options struct {
	now          func() time.Time
	log          logrus.FieldLogger
	publicAccess string
	postingDays  int
	paper        Paper
	font         fontSpec
}

// Option customizes document generation.
type Option func(*options)

// WithClock sets the source of the generation date. Documents generated with
// the same clock reading and record are byte-identical.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// WithPublicAccessAddress sets where the public access file can be inspected.
func WithPublicAccessAddress(addr string) Option {
	return func(o *options) {
		if addr != "" {
			o.publicAccess = addr
		}
	}
}

func WithPostingDays(days int) Option {
	return func(o *options) {
		if days > 0 {
			o.postingDays = days
		}
	}
}

func WithPaper(p Paper) Option {
	return func(o *options) { o.paper = p }
}

// WithFont selects the font family. With a TrueType file the text is
// embedded as UTF-8; without one the family must be a PDF core font.
func WithFont(family, ttfPath string) Option {
	return func(o *options) { o.font = fontSpec{family: family, ttf: ttfPath} }
}

func newOptions(opts []Option) *options {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	o := &options{
		now:          time.Now,
		log:          discard,
		publicAccess: DefaultPublicAccessAddress,
		postingDays:  DefaultPostingDays,
		paper:        PaperLetter,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ---------------------------------------------------------------------------
// Document
// ---------------------------------------------------------------------------

// Document is a composed notice that has not been written out yet.
type Document struct {
	Filename  string
	Reference string
	Layout    Layout
	Pages     int
	Sections  []Section
	Lines     []PlacedLine

	r    *fpdfRenderer
	data []byte
}

// Text returns the unwrapped text of every section, one per line.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Sections)*2)
	for _, s := range d.Sections {
		if s.Heading != "" {
			parts = append(parts, s.Heading)
		}
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n")
}

// Bytes returns the encoded PDF. The first call closes the document.
func (d *Document) Bytes() ([]byte, error) {
	if d.data != nil {
		return d.data, nil
	}
	data, err := d.r.bytes()
	if err != nil {
		return nil, backendError(err)
	}
	d.data = data
	return data, nil
}

// WriteTo implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := d.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Filename derives the artifact name from the case number and job title.
// Format: LCA_<case>_<title>.pdf
func Filename(r Record) string {
	caseNumber := nonAlnum.ReplaceAllString(r.CaseNumber, "_")
	title := nonAlnumSpace.ReplaceAllString(r.JobTitle, "")
	title = whitespace.ReplaceAllString(strings.TrimSpace(title), "_")
	return fmt.Sprintf("LCA_%s_%s.pdf", caseNumber, title)
}

// compose validates the record and lays out the full notice. Nothing is
// rendered for an invalid record.
func compose(r Record, o *options) (*Document, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}

	// Only the generation day is printed, so the PDF dates carry no finer time.
	now := o.now()
	generated := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	layout := defaultLayout(o.paper)
	rend, err := newFPDFRenderer(o.paper, layout, o.font, generated)
	if err != nil {
		return nil, err
	}

	ref := documentReference(r.CaseNumber)
	rend.footer = buildFooter(ref, generated)
	rend.setMetadata(
		"Notice of Filing of Labor Condition Application "+r.CaseNumber,
		r.JobTitle,
		r.EmployerName,
	)

	c := newComposer(rend, layout, o.log.WithField("case", r.CaseNumber))
	sections, err := writeDocument(c, r, o, generated)
	if err != nil {
		return nil, err
	}
	if err := rend.Err(); err != nil {
		return nil, backendError(err)
	}

	return &Document{
		Filename:  Filename(r),
		Reference: ref,
		Layout:    layout,
		Pages:     c.Pages(),
		Sections:  sections,
		Lines:     c.Lines(),
		r:         rend,
	}, nil
}

// ---------------------------------------------------------------------------
// Entry Points
// ---------------------------------------------------------------------------

// Compose lays out the notice for callers that need the document structure
// as well as its bytes.
func Compose(r Record, opts ...Option) (*Document, error) {
	return compose(r, newOptions(opts))
}

// Render returns the PDF bytes and the artifact file name.
func Render(r Record, opts ...Option) ([]byte, string, error) {
	o := newOptions(opts)
	doc, err := compose(r, o)
	if err != nil {
		return nil, "", err
	}
	data, err := doc.Bytes()
	if err != nil {
		return nil, "", err
	}

	o.log.WithFields(logrus.Fields{
		"case":  r.CaseNumber,
		"pages": doc.Pages,
		"bytes": len(data),
	}).Info("LCA document rendered")
	return data, doc.Filename, nil
}

// Save renders the notice into dir and returns the path of the written file.
func Save(r Record, dir string, opts ...Option) (string, error) {
	o := newOptions(opts)
	doc, err := compose(r, o)
	if err != nil {
		return "", err
	}
	data, err := doc.Bytes()
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", environmentError(fmt.Errorf("failed to write %s: %w", path, err))
	}

	o.log.WithFields(logrus.Fields{
		"case":  r.CaseNumber,
		"pages": doc.Pages,
		"path":  path,
	}).Info("LCA document saved")
	return path, nil
}

// Preview renders the notice as a data URL suitable for an embedded viewer.
func Preview(r Record, opts ...Option) (string, error) {
	o := newOptions(opts)
	doc, err := compose(r, o)
	if err != nil {
		return "", err
	}
	data, err := doc.Bytes()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:application/pdf;filename=%s;base64,%s",
		doc.Filename, base64.StdEncoding.EncodeToString(data)), nil
}

// DryRun runs the whole pipeline and reports whether it succeeded.
func DryRun(r Record, opts ...Option) bool {
	o := newOptions(opts)
	doc, err := compose(r, o)
	if err == nil {
		_, err = doc.Bytes()
	}
	if err != nil {
		o.log.WithError(err).Debug("LCA dry run failed")
		return false
	}
	return true
}
