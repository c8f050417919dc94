package lca

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

// fakeRenderer measures every character as charWidth points.
type fakeRenderer struct {
	charWidth float64
	pages     int
	writes    []string
	err       error
	failAfter int // fail on this write, 0 never
}

func (f *fakeRenderer) MeasureText(text string) float64 {
	return float64(len(text)) * f.charWidth
}

func (f *fakeRenderer) AddPage() { f.pages++ }
func (f *fakeRenderer) SetFont(string, float64) {}
func (f *fakeRenderer) Err() error { return f.err }
func (f *fakeRenderer) WriteText(text string, _, _, _, _ float64, _ Align) {
	f.writes = append(f.writes, text)
	if f.failAfter > 0 && len(f.writes) >= f.failAfter {
		f.err = errors.New("font state corrupted")
	}
}

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// smallLayout fits six lines per page.
var smallLayout = Layout{PageWidth: 200, PageHeight: 140, Margin: 20, LineHeight: 15}

func TestWrapText(t *testing.T) {
	m := &fakeRenderer{charWidth: 1}

	tests := []struct {
		name     string
		text     string
		width    float64
		expected []string
	}{
		{"fits on one line", "short text", 20, []string{"short text"}},
		{"wraps at word boundary", "the quick brown fox jumps", 10, []string{"the quick", "brown fox", "jumps"}},
		{"exact width", "abcde fghij", 11, []string{"abcde fghij"}},
		{"long word is split to fit", "a supercalifragilistic word", 8, []string{"a", "supercal", "ifragili", "stic", "word"}},
		{"split tail joins next word", "abcdefghij k", 4, []string{"abcd", "efgh", "ij k"}},
		{"long url", "see https://example.com/lca/public-access-file", 20,
			[]string{"see", "https://example.com/", "lca/public-access-fi", "le"}},
		{"rune wider than line", "ab", 0.5, []string{"a", "b"}},
		{"collapses spaces", "one    two   three", 9, []string{"one two", "three"}},
		{"keeps explicit newlines", "first line\nsecond", 20, []string{"first line", "second"}},
		{"keeps blank lines", "para one\n\npara two", 20, []string{"para one", "", "para two"}},
		{"empty", "", 20, nil},
		{"whitespace only", "  \n ", 20, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(wrapText(m, tt.text, tt.width))
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("wrapText(%q, %v) mismatch (-want +got):\n%s", tt.text, tt.width, diff)
			}
		})
	}
}

func TestWrapTextLinesFitAndKeepWords(t *testing.T) {
	m := &fakeRenderer{charWidth: 5.5}
	text := strings.Repeat("Labor condition applications protect wages of domestic workers. ", 12)
	const width = 180.0

	var rebuilt []string
	for line := range wrapText(m, text, width) {
		if w := m.MeasureText(line); w > width {
			t.Errorf("line %q is %v wide, max %v", line, w, width)
		}
		rebuilt = append(rebuilt, strings.Fields(line)...)
	}
	if diff := cmp.Diff(strings.Fields(text), rebuilt); diff != "" {
		t.Errorf("wrapping changed the words (-want +got):\n%s", diff)
	}
}

func TestWrapTextRestartable(t *testing.T) {
	m := &fakeRenderer{charWidth: 1}
	seq := wrapText(m, "alpha beta gamma delta epsilon", 11)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second iteration differs (-first +second):\n%s", diff)
	}

	// Stopping early must not disturb later iterations.
	for range seq {
		break
	}
	if got := slices.Collect(seq); len(got) != len(first) {
		t.Errorf("after early stop got %d lines, want %d", len(got), len(first))
	}
}

func TestCheckPageBreak(t *testing.T) {
	r := &fakeRenderer{charWidth: 1}
	c := newComposer(r, smallLayout, testLogger())

	if c.Pages() != 1 || c.Y() != smallLayout.Margin {
		t.Fatalf("new composer: pages=%d y=%v, want 1 and %v", c.Pages(), c.Y(), smallLayout.Margin)
	}

	// Taller than a page while at the top: no blank page.
	c.CheckPageBreak(1000)
	if c.Pages() != 1 {
		t.Errorf("oversized request at top of page added a page")
	}

	for range 6 {
		if err := c.Line("x", AlignLeft); err != nil {
			t.Fatal(err)
		}
	}
	if c.Pages() != 1 {
		t.Fatalf("six lines should fit on one page, got %d pages", c.Pages())
	}

	c.CheckPageBreak(smallLayout.LineHeight)
	if c.Pages() != 2 || c.Y() != smallLayout.Margin {
		t.Errorf("after full page: pages=%d y=%v, want 2 and %v", c.Pages(), c.Y(), smallLayout.Margin)
	}
	if r.pages != 2 {
		t.Errorf("renderer saw %d pages, want 2", r.pages)
	}
}

func TestWriteLineDoesNotAdvance(t *testing.T) {
	c := newComposer(&fakeRenderer{charWidth: 1}, smallLayout, testLogger())
	if err := c.WriteLine("title", 40, AlignCenter); err != nil {
		t.Fatal(err)
	}
	if c.Y() != smallLayout.Margin {
		t.Errorf("WriteLine moved the cursor to %v", c.Y())
	}
	want := []PlacedLine{{Page: 1, Y: 40, Text: "title"}}
	if diff := cmp.Diff(want, c.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestParagraphStaysInsideMargins(t *testing.T) {
	c := newComposer(&fakeRenderer{charWidth: 4}, smallLayout, testLogger())
	text := strings.Repeat("word ", 200)

	for range 3 {
		if err := c.Paragraph(text, AlignLeft); err != nil {
			t.Fatal(err)
		}
		c.Space(30)
		if limit := smallLayout.PageHeight - smallLayout.Margin; c.Y() > limit {
			t.Fatalf("cursor %v below limit %v", c.Y(), limit)
		}
	}

	if c.Pages() < 2 {
		t.Fatalf("expected several pages, got %d", c.Pages())
	}
	for _, l := range c.Lines() {
		if l.Y < smallLayout.Margin || l.Y+smallLayout.LineHeight > smallLayout.PageHeight-smallLayout.Margin {
			t.Errorf("line on page %d at y=%v crosses a margin", l.Page, l.Y)
		}
	}
}

func TestBackendFailureAborts(t *testing.T) {
	r := &fakeRenderer{charWidth: 1, failAfter: 2}
	c := newComposer(r, smallLayout, testLogger())

	err := c.Paragraph("one\ntwo\nthree\nfour", AlignLeft)

	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Kind != KindBackend {
		t.Fatalf("Paragraph() error = %v, want backend *Error", err)
	}
	if len(r.writes) != 2 {
		t.Errorf("writes after failure: got %d, want 2", len(r.writes))
	}
	if len(c.Lines()) != 1 {
		t.Errorf("recorded %d lines, want only the one before the failure", len(c.Lines()))
	}
}
