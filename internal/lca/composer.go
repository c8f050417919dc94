package lca

import (
	"iter"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
)

// ---------------------------------------------------------------------------
// Layout Types
// ---------------------------------------------------------------------------

// Align is the horizontal placement of a line within the content width.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Measurer reports the rendered width of text in the active font.
type Measurer interface {
	MeasureText(text string) float64
}

// Renderer is what the Composer needs from a PDF backend.
type Renderer interface {
	Measurer
	AddPage()
	SetFont(style string, size float64)
	// WriteText draws one line in the box at (x, y) with the given width and height.
	WriteText(text string, x, y, width, height float64, align Align)
	// Err returns the first backend failure, if any.
	Err() error
}

// Layout holds the fixed page geometry, in points.
type Layout struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	LineHeight float64
}

// PlacedLine records where a line of text ended up.
type PlacedLine struct {
	Page int
	Y    float64
	Text string
}

// ---------------------------------------------------------------------------
// Composer
// ---------------------------------------------------------------------------

// Composer owns the vertical write cursor of one document. It is used by a
// single generation call and then discarded.
type Composer struct {
	r      Renderer
	layout Layout
	log    logrus.FieldLogger

	currentY float64
	page     int
	lines    []PlacedLine
}

func newComposer(r Renderer, layout Layout, log logrus.FieldLogger) *Composer {
	c := &Composer{r: r, layout: layout, log: log}
	c.newPage()
	return c
}

func (c *Composer) newPage() {
	c.r.AddPage()
	c.page++
	c.currentY = c.layout.Margin
	if c.page > 1 {
		c.log.WithField("page", c.page).Debug("page break")
	}
}

// maxY is the lowest position content may reach.
func (c *Composer) maxY() float64 {
	return c.layout.PageHeight - c.layout.Margin
}

// ContentWidth is the page width inside the margins.
func (c *Composer) ContentWidth() float64 {
	return c.layout.PageWidth - 2*c.layout.Margin
}

// Y returns the current cursor position.
func (c *Composer) Y() float64 { return c.currentY }

// Pages returns the number of pages started so far.
func (c *Composer) Pages() int { return c.page }

// Lines returns every line written so far, in order.
func (c *Composer) Lines() []PlacedLine { return c.lines }

// CheckPageBreak starts a new page when requiredSpace does not fit below the
// cursor. A request taller than a whole page only breaks if the cursor is
// not already at the top.
func (c *Composer) CheckPageBreak(requiredSpace float64) {
	if c.currentY+requiredSpace <= c.maxY() {
		return
	}
	if c.currentY == c.layout.Margin {
		return
	}
	c.newPage()
}

// SetFont switches the active font style ("" or "B") and size.
func (c *Composer) SetFont(style string, size float64) {
	c.r.SetFont(style, size)
}

// WriteLine renders text at y without moving the cursor.
func (c *Composer) WriteLine(text string, y float64, align Align) error {
	c.r.WriteText(text, c.layout.Margin, y, c.ContentWidth(), c.layout.LineHeight, align)
	if err := c.r.Err(); err != nil {
		return backendError(err)
	}
	c.lines = append(c.lines, PlacedLine{Page: c.page, Y: y, Text: text})
	return nil
}

// Line writes one line at the cursor, breaking the page first if needed, and
// advances by the line height.
func (c *Composer) Line(text string, align Align) error {
	c.CheckPageBreak(c.layout.LineHeight)
	if err := c.WriteLine(text, c.currentY, align); err != nil {
		return err
	}
	c.currentY += c.layout.LineHeight
	return nil
}

// Paragraph wraps text to the content width and writes it line by line.
func (c *Composer) Paragraph(text string, align Align) error {
	for line := range c.WrapText(text, c.ContentWidth()) {
		if err := c.Line(line, align); err != nil {
			return err
		}
	}
	return nil
}

// Space moves the cursor down by h, never past the bottom margin.
func (c *Composer) Space(h float64) {
	c.currentY = math.Min(c.currentY+h, c.maxY())
}

// WrapText splits text into lines no wider than maxWidth in the active font.
func (c *Composer) WrapText(text string, maxWidth float64) iter.Seq[string] {
	return wrapText(c.r, text, maxWidth)
}

// ---------------------------------------------------------------------------
// Text Wrapping
// ---------------------------------------------------------------------------

// wrapText breaks on whitespace. A single word wider than maxWidth is split
// into chunks that fit; other words are never broken. Explicit newlines start
// new lines and blank lines are kept. The sequence is computed on each
// iteration, so it can be ranged over again.
func wrapText(m Measurer, text string, maxWidth float64) iter.Seq[string] {
	return func(yield func(string) bool) {
		if strings.TrimSpace(text) == "" {
			return
		}
		for _, para := range strings.Split(strings.TrimSpace(text), "\n") {
			words := strings.Fields(para)
			if len(words) == 0 {
				if !yield("") {
					return
				}
				continue
			}

			line := ""
			for _, w := range words {
				if m.MeasureText(w) > maxWidth {
					if line != "" && !yield(line) {
						return
					}
					chunks := splitWord(m, w, maxWidth)
					for _, chunk := range chunks[:len(chunks)-1] {
						if !yield(chunk) {
							return
						}
					}
					line = chunks[len(chunks)-1]
					continue
				}
				if line == "" {
					line = w
					continue
				}
				candidate := line + " " + w
				if m.MeasureText(candidate) <= maxWidth {
					line = candidate
					continue
				}
				if !yield(line) {
					return
				}
				line = w
			}
			if !yield(line) {
				return
			}
		}
	}
}

// splitWord cuts word into the longest rune runs that fit in maxWidth. A rune
// wider than maxWidth on its own still gets a chunk.
func splitWord(m Measurer, word string, maxWidth float64) []string {
	var chunks []string
	var cur []rune
	for _, r := range word {
		if len(cur) > 0 && m.MeasureText(string(cur)+string(r)) > maxWidth {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
	}
	return append(chunks, string(cur))
}
