package textedit

import (
	"strings"
	"unicode/utf8"
)

// Counts is the status bar summary of a document.
type Counts struct {
	Lines      int `json:"lines"`
	Characters int `json:"characters"`
}

// Stats counts lines and characters. An empty document has one line.
func Stats(content string) Counts {
	return Counts{
		Lines:      strings.Count(content, "\n") + 1,
		Characters: utf8.RuneCountInString(content),
	}
}
