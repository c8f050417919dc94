package lca

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
)

// ---------------------------------------------------------------------------
// PDF backend
// ---------------------------------------------------------------------------

// Paper is a supported page size, in points.
type Paper struct {
	Name   string
	Width  float64
	Height float64
}

var (
	PaperLetter = Paper{Name: "Letter", Width: 612, Height: 792}
	PaperA4     = Paper{Name: "A4", Width: 595.28, Height: 841.89}
)

// PaperByName resolves a configured paper name; unknown names are Letter.
func PaperByName(name string) Paper {
	if name == PaperA4.Name || name == "a4" {
		return PaperA4
	}
	return PaperLetter
}

// fpdfRenderer draws onto a go-pdf/fpdf document. Page breaks are driven by
// the Composer, so fpdf's own automatic breaking is off.
type fpdfRenderer struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
	footer func(page int) string
	closed bool
}

type fontSpec struct {
	family string
	ttf    string // optional UTF-8 TrueType font file
}

func newFPDFRenderer(paper Paper, layout Layout, font fontSpec, created time.Time) (*fpdfRenderer, error) {
	pdf := fpdf.New("P", "pt", paper.Name, "")
	pdf.SetMargins(layout.Margin, layout.Margin, layout.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.AliasNbPages("")

	r := &fpdfRenderer{pdf: pdf, family: font.family}

	if font.ttf != "" {
		if _, err := os.Stat(font.ttf); err != nil {
			return nil, environmentError(fmt.Errorf("font file not available: %w", err))
		}
		if r.family == "" {
			r.family = "NoticeFont"
		}
		pdf.AddUTF8Font(r.family, "", font.ttf)
		pdf.AddUTF8Font(r.family, "B", font.ttf)
		r.tr = func(s string) string { return s }
	} else {
		if r.family == "" {
			r.family = "Helvetica"
		}
		r.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	if err := pdf.Error(); err != nil {
		return nil, environmentError(err)
	}

	pdf.SetFooterFunc(func() {
		if r.footer == nil {
			return
		}
		pdf.SetFont(r.family, "", footerFontSize)
		pdf.SetXY(layout.Margin, layout.PageHeight-layout.Margin/2-footerFontSize/2)
		pdf.CellFormat(layout.PageWidth-2*layout.Margin, footerFontSize,
			r.tr(r.footer(pdf.PageNo())), "", 0, string(AlignCenter), false, 0, "")
	})

	return r, nil
}

func (r *fpdfRenderer) AddPage() {
	r.pdf.AddPage()
}

func (r *fpdfRenderer) SetFont(style string, size float64) {
	r.pdf.SetFont(r.family, style, size)
}

func (r *fpdfRenderer) MeasureText(text string) float64 {
	return r.pdf.GetStringWidth(r.tr(text))
}

func (r *fpdfRenderer) WriteText(text string, x, y, width, height float64, align Align) {
	r.pdf.SetXY(x, y)
	r.pdf.CellFormat(width, height, r.tr(text), "", 0, string(align), false, 0, "")
}

func (r *fpdfRenderer) Err() error {
	return r.pdf.Error()
}

func (r *fpdfRenderer) setMetadata(title, subject, author string) {
	r.pdf.SetTitle(title, true)
	r.pdf.SetSubject(subject, true)
	r.pdf.SetAuthor(author, true)
	r.pdf.SetCreator("lcanotice", false)
}

// output closes the document and writes it to w. fpdf can only do this once.
func (r *fpdfRenderer) output(w io.Writer) error {
	if r.closed {
		return errors.New("document already written")
	}
	r.closed = true
	return r.pdf.Output(w)
}

func (r *fpdfRenderer) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
