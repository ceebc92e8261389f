package textedit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownAction is returned by Lookup for names without a registered action.
var ErrUnknownAction = errors.New("unknown action")

// Action is a named toolbar transform.
type Action struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

var actions = map[string]Action{
	"bold":   {Name: "bold", Prefix: "**", Suffix: "**"},
	"italic": {Name: "italic", Prefix: "*", Suffix: "*"},
	"code":   {Name: "code", Prefix: "`", Suffix: "`"},
	"h1":     {Name: "h1", Prefix: "# "},
	"h2":     {Name: "h2", Prefix: "## "},
	"h3":     {Name: "h3", Prefix: "### "},
	"list":   {Name: "list", Prefix: "- "},
	"link":   {Name: "link", Prefix: "[", Suffix: "](url)"},
	"wiki":   {Name: "wiki", Prefix: "[[", Suffix: "]]"},
}

// Lookup returns the action registered under name (case-insensitive).
func Lookup(name string) (Action, error) {
	a, ok := actions[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Action{}, fmt.Errorf("%w %q (valid: %s)", ErrUnknownAction, name, strings.Join(Names(), ", "))
	}
	return a, nil
}

// Names lists the registered action names in sorted order.
func Names() []string {
	names := make([]string, 0, len(actions))
	for n := range actions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
