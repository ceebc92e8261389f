// Package chunker splits markdown text into chunks for search indexing and
// extracts the headings and wiki links the index stores alongside them.
package chunker

import (
	"strings"
)

const (
	DefaultTargetSize = 400
	DefaultMinSize    = 100
	DefaultMaxSize    = 600
)

// Options configures chunking behavior.
type Options struct {
	TargetSize int
	MinSize    int
	MaxSize    int
}

// DefaultOptions returns default chunking options.
func DefaultOptions() Options {
	return Options{
		TargetSize: DefaultTargetSize,
		MinSize:    DefaultMinSize,
		MaxSize:    DefaultMaxSize,
	}
}

// ChunkResult is a chunk with its 1-based line range in the original text.
type ChunkResult struct {
	Text      string
	StartLine int
	EndLine   int
}

// Chunk splits a note into search chunks. Notes no longer than MaxSize
// produce a single chunk.
func Chunk(text string, opts Options) []ChunkResult {
	if opts.TargetSize == 0 {
		opts = DefaultOptions()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= opts.MaxSize {
		return []ChunkResult{{Text: text, StartLine: 1, EndLine: strings.Count(text, "\n") + 1}}
	}

	return pack(sections(strings.Split(text, "\n")), opts)
}

// sections groups lines into blocks that start at headings or follow a run
// of two blank lines. Lines inside ``` fences never start a block.
func sections(lines []string) []ChunkResult {
	var (
		out     []ChunkResult
		buf     []string
		start   = 1
		blanks  int
		inFence bool
	)
	emit := func(end int) {
		if t := strings.TrimSpace(strings.Join(buf, "\n")); t != "" {
			out = append(out, ChunkResult{Text: t, StartLine: start, EndLine: end})
		}
		buf = nil
		start = end + 1
	}

	for i, line := range lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if !inFence && len(buf) > 0 {
			switch {
			case strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "```"):
				emit(n - 1)
			case trimmed == "" && blanks > 0:
				emit(n - 1)
			}
		}

		if trimmed == "" {
			blanks++
		} else {
			blanks = 0
		}
		buf = append(buf, line)
	}
	emit(len(lines))
	return out
}

// pack merges neighbouring sections up to TargetSize and splits any that
// exceed MaxSize.
func pack(blocks []ChunkResult, opts Options) []ChunkResult {
	var out []ChunkResult
	var cur *ChunkResult

	flush := func() {
		if cur == nil {
			return
		}
		if len(cur.Text) > opts.MaxSize {
			out = append(out, splitLines(cur.Text, cur.StartLine, opts.TargetSize)...)
		} else {
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, b := range blocks {
		if cur != nil && len(cur.Text)+2+len(b.Text) <= opts.TargetSize {
			cur.Text += "\n\n" + b.Text
			cur.EndLine = b.EndLine
			continue
		}
		flush()
		cur = &b
	}
	flush()
	return out
}

// splitLines cuts text on line boundaries into pieces of about target bytes.
func splitLines(text string, firstLine, target int) []ChunkResult {
	lines := strings.Split(text, "\n")
	var out []ChunkResult
	from, size := 0, 0

	cut := func(to int) {
		if t := strings.TrimSpace(strings.Join(lines[from:to], "\n")); t != "" {
			out = append(out, ChunkResult{Text: t, StartLine: firstLine + from, EndLine: firstLine + to - 1})
		}
		from, size = to, 0
	}

	for i, line := range lines {
		if size+len(line) > target && i > from {
			cut(i)
		}
		size += len(line) + 1
	}
	cut(len(lines))
	return out
}
