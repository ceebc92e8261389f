// Package textedit implements selection-aware markdown transforms over plain text.
//
// Offsets are rune offsets, so a span never splits a multi-byte character.
package textedit

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rcliao/draftpad/internal/model"
)

// ErrSpanOutOfRange reports a selection that does not fit the content.
var ErrSpanOutOfRange = errors.New("selection out of range")

// Result is the outcome of a transform.
type Result struct {
	Content string `json:"content"`
	Cursor  int    `json:"cursor"`
}

// CheckSpan returns ErrSpanOutOfRange if either end of span lies outside content.
func CheckSpan(content string, span model.SelectionSpan) error {
	n := utf8.RuneCountInString(content)
	if span.Start < 0 || span.End < 0 || span.Start > n || span.End > n {
		return fmt.Errorf("%w: [%d,%d] in %d runes", ErrSpanOutOfRange, span.Start, span.End, n)
	}
	return nil
}

// Clamp normalizes span so that 0 <= Start <= End <= n.
func Clamp(span model.SelectionSpan, n int) model.SelectionSpan {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > n {
			return n
		}
		return v
	}
	s, e := clamp(span.Start), clamp(span.End)
	if s > e {
		s, e = e, s
	}
	return model.SelectionSpan{Start: s, End: e}
}

// ApplyWrap inserts prefix before the selection and suffix after it.
// The cursor lands after the selected text and before the suffix; with an
// empty selection both markers are inserted around the caret.
func ApplyWrap(content string, span model.SelectionSpan, prefix, suffix string) Result {
	runes := []rune(content)
	span = Clamp(span, len(runes))
	selected := string(runes[span.Start:span.End])

	var sb strings.Builder
	sb.Grow(len(content) + len(prefix) + len(suffix))
	sb.WriteString(string(runes[:span.Start]))
	sb.WriteString(prefix)
	sb.WriteString(selected)
	sb.WriteString(suffix)
	sb.WriteString(string(runes[span.End:]))

	return Result{
		Content: sb.String(),
		Cursor:  span.Start + utf8.RuneCountInString(prefix) + (span.End - span.Start),
	}
}
