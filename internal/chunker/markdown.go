package chunker

import (
	"path"
	"regexp"
	"strings"
)

var wikiLinkRe = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// WikiLinks returns the distinct [[target]] references in text, in order of
// first appearance. An alias after "|" is dropped.
func WikiLinks(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range wikiLinkRe.FindAllStringSubmatch(text, -1) {
		target := m[1]
		if i := strings.IndexByte(target, '|'); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	return out
}

// Title returns the text of the first markdown heading, or filename without
// its extension when there is none.
func Title(text, filename string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		t := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if t != "" {
			return t
		}
	}
	return strings.TrimSuffix(filename, path.Ext(filename))
}
