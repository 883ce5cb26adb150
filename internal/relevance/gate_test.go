package relevance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGate_IsRelevant(t *testing.T) {
	req := require.New(t)
	gate := MustDefault()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "empty string", input: "", expected: false},
		{name: "multi-word keyword", input: "Tell me about machine learning models", expected: true},
		{name: "nothing in domain", input: "What's the weather today?", expected: false},
		{name: "upper-case input", input: "PYTHON", expected: true},
		{name: "upper-case keyword in set", input: "how do I write a join in sql", expected: true},
		{name: "mixed case", input: "Explain Neural Network layers", expected: true},
		{name: "substring inside another word", input: "she said hello", expected: true},
		{name: "keyword at the very end", input: "teach me pandas", expected: true},
		{name: "unicode around keyword", input: "¿Qué es la regression lineal? 🤖", expected: true},
		{name: "unicode without keyword", input: "Où est la gare ?", expected: false},
		{name: "whitespace only", input: "   ", expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req.Equal(tc.expected, gate.IsRelevant(tc.input), "input %q", tc.input)
		})
	}
}

func TestGate_Matches(t *testing.T) {
	req := require.New(t)
	gate := MustDefault()

	got := gate.Matches("Big Data analytics with Python and more python")
	req.Contains(got, "big data")
	req.Contains(got, "data")
	req.Contains(got, "analytics")
	req.Contains(got, "python")

	seen := map[string]int{}
	for _, k := range got {
		seen[k]++
	}
	for k, n := range seen {
		req.Equal(1, n, "keyword %q reported more than once", k)
	}

	req.Empty(gate.Matches("What's the weather today?"))
	req.Empty(gate.Matches(""))
}

func TestNewGate_NormalizesKeywords(t *testing.T) {
	req := require.New(t)

	gate, err := NewGate([]string{"SQL", "sql", "  EDA ", ""})
	req.NoError(err)
	req.Equal([]string{"eda", "sql"}, gate.Keywords())

	req.True(gate.IsRelevant("run some EDA first"))
	req.True(gate.IsRelevant("SELECT is SQL"))
	req.False(gate.IsRelevant("nothing to see"))
}

func TestNewGate_Empty(t *testing.T) {
	req := require.New(t)

	_, err := NewGate(nil)
	req.ErrorIs(err, ErrNoKeywords)

	_, err = NewGate([]string{" ", ""})
	req.ErrorIs(err, ErrNoKeywords)
}

func TestGate_KeywordsIsACopy(t *testing.T) {
	req := require.New(t)
	gate := MustDefault()

	kw := gate.Keywords()
	kw[0] = "mutated"
	req.NotEqual("mutated", gate.Keywords()[0])
}
