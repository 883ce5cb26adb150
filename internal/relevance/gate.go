// Package relevance decides whether a question belongs to the tutor's domain.
//
// Matching is plain substring containment over the lower-cased question, so
// short keywords also hit inside unrelated words ("ai" inside "said"). That
// behaviour is kept on purpose; callers that need word boundaries must check
// the matched keywords themselves.
package relevance

import (
	"errors"
	"sort"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// DefaultKeywords is the data / ML / AI / statistics vocabulary of the tutor.
var DefaultKeywords = []string{
	"data", "information", "data science", "machine learning", "deep learning", "neural network",
	"AI", "artificial intelligence", "python", "pandas", "numpy", "regression",
	"classification", "nlp", "natural language processing", "llm", "generative",
	"data analysis", "statistics", "EDA", "SQL", "big data", "analytics",
}

var ErrNoKeywords = errors.New("keyword set is empty")

// Gate is immutable once built and safe for concurrent use.
type Gate struct {
	matcher  *goahocorasick.Machine
	keywords []string
}

// NewGate lower-cases and de-duplicates the keywords, then builds the automaton.
func NewGate(keywords []string) (*Gate, error) {
	normalized := lo.Uniq(lo.FilterMap(keywords, func(k string, _ int) (string, bool) {
		k = strings.ToLower(strings.TrimSpace(k))
		return k, k != ""
	}))
	if len(normalized) == 0 {
		return nil, ErrNoKeywords
	}
	sort.Strings(normalized)

	patterns := lo.Map(normalized, func(k string, _ int) []rune { return []rune(k) })

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Gate{matcher: m, keywords: normalized}, nil
}

// MustDefault builds the gate over DefaultKeywords.
func MustDefault() *Gate {
	g, err := NewGate(DefaultKeywords)
	if err != nil {
		panic(err)
	}
	return g
}

// IsRelevant reports whether any keyword occurs in the lower-cased text.
func (g *Gate) IsRelevant(text string) bool {
	if text == "" {
		return false
	}
	return len(g.matcher.MultiPatternSearch([]rune(strings.ToLower(text)), true)) > 0
}

// Matches returns the distinct keywords found in text, in order of first occurrence.
func (g *Gate) Matches(text string) []string {
	if text == "" {
		return nil
	}
	terms := g.matcher.MultiPatternSearch([]rune(strings.ToLower(text)), false)
	sort.SliceStable(terms, func(i, j int) bool { return terms[i].Pos < terms[j].Pos })

	return lo.Uniq(lo.Map(terms, func(t *goahocorasick.Term, _ int) string { return string(t.Word) }))
}

// Keywords returns a copy of the normalised vocabulary, sorted.
func (g *Gate) Keywords() []string {
	out := make([]string, len(g.keywords))
	copy(out, g.keywords)
	return out
}
