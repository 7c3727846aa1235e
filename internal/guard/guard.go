// Package guard implements the client-side restricted-content
// pre-filter run before a message is sent.
package guard

import (
	"fmt"
	"regexp"
	"strings"
)

// Result is the outcome of classifying one piece of outbound text.
type Result struct {
	Restricted bool
	Category   string
	Reason     string
}

// category is one named rule in the ordered table. The first category
// whose pattern matches wins; later categories are not consulted.
type category struct {
	name    string
	pattern *regexp.Regexp
}

// Guard classifies outbound text against an ordered rule table.
type Guard struct {
	categories []category
}

// DefaultCategories is the rule order shipped with the widget. The
// word lists here are representative, not the production policy.
var DefaultCategories = []struct {
	Name     string
	Keywords []string
}{
	{"abusive", []string{"idiot", "stupid", "moron", "loser", "shut up"}},
	{"hate", []string{"hate speech", "racial slur", "bigot"}},
	{"spam", []string{"buy now", "click here", "free money", "limited offer"}},
	{"self-harm", []string{"kill myself", "end my life", "hurt myself"}},
}

// New builds a guard from named keyword lists, preserving order.
// Matching is case-insensitive on word boundaries.
func New(rules []struct {
	Name     string
	Keywords []string
}) (*Guard, error) {
	g := &Guard{}
	for _, r := range rules {
		if len(r.Keywords) == 0 {
			continue
		}
		quoted := make([]string, len(r.Keywords))
		for i, kw := range r.Keywords {
			quoted[i] = regexp.QuoteMeta(strings.ToLower(kw))
		}
		expr := `(?i)\b(` + strings.Join(quoted, "|") + `)\b`
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile category %q: %w", r.Name, err)
		}
		g.categories = append(g.categories, category{name: r.Name, pattern: re})
	}
	return g, nil
}

// Default returns a guard built from DefaultCategories.
func Default() *Guard {
	g, err := New(DefaultCategories)
	if err != nil {
		// DefaultCategories is static; a compile failure is a bug.
		panic(err)
	}
	return g
}

// Classify tests text against the rule table in order and returns the
// first matching category. Empty input is never restricted.
func (g *Guard) Classify(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{}
	}
	for _, c := range g.categories {
		if match := c.pattern.FindString(text); match != "" {
			return Result{
				Restricted: true,
				Category:   c.name,
				Reason:     fmt.Sprintf("matched %s keyword %q", c.name, strings.ToLower(match)),
			}
		}
	}
	return Result{}
}
