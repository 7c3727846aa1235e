package guard

import (
	"testing"
)

func TestClassify_Restricted(t *testing.T) {
	g := Default()

	tests := []struct {
		name     string
		input    string
		category string
	}{
		{"abusive lowercase", "you are an idiot", "abusive"},
		{"abusive mixed case", "what an IDIOT move", "abusive"},
		{"spam phrase", "Buy Now and save big", "spam"},
		{"self harm", "i want to hurt myself", "self-harm"},
		{"multi word keyword", "just shut up already", "abusive"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := g.Classify(tc.input)
			if !res.Restricted {
				t.Fatalf("Classify(%q) not restricted, want category %q", tc.input, tc.category)
			}
			if res.Category != tc.category {
				t.Errorf("Classify(%q) category = %q, want %q", tc.input, res.Category, tc.category)
			}
			if res.Reason == "" {
				t.Error("restricted result should carry a reason")
			}
		})
	}
}

func TestClassify_Clean(t *testing.T) {
	g := Default()

	tests := []string{
		"what homes are available near downtown",
		"",
		"   ",
		// Word boundary: keyword embedded in a larger word must not match.
		"idiotproof design",
		"the spammer field is unrelated",
	}

	for _, input := range tests {
		if res := g.Classify(input); res.Restricted {
			t.Errorf("Classify(%q) restricted as %q, want clean", input, res.Category)
		}
	}
}

func TestClassify_FirstCategoryWins(t *testing.T) {
	g, err := New([]struct {
		Name     string
		Keywords []string
	}{
		{"first", []string{"overlap"}},
		{"second", []string{"overlap", "unique"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	res := g.Classify("this text has overlap in both categories")
	if !res.Restricted || res.Category != "first" {
		t.Errorf("Classify() category = %q, want %q (first match wins)", res.Category, "first")
	}

	res = g.Classify("only unique here")
	if !res.Restricted || res.Category != "second" {
		t.Errorf("Classify() category = %q, want %q", res.Category, "second")
	}
}
