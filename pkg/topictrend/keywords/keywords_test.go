package keywords

import "testing"

func TestNormalizeKeywordMatch(t *testing.T) {
	n := Default()

	tests := []struct {
		phrase string
		want   string
	}{
		{"very expensive item", "pricing"},
		{"delivery was late again", "delivery delay"},
		{"food arrived cold", "food cold"},
		{"portion too small", "small quantity"},
		{"drink missing from order", "missing items"},
		{"no coupon applied", "no coupons"},
		{"tasty biryani", "good quality"},
		{"burnt rice", "bad quality"},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			got, ok := n.Normalize(tt.phrase)
			if !ok {
				t.Fatalf("expected match for %q", tt.phrase)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.phrase, got, tt.want)
			}
		})
	}
}

func TestNormalizeNoMatch(t *testing.T) {
	n := Default()
	if topic, ok := n.Normalize("xyz123 unmatched gibberish"); ok {
		t.Fatalf("expected no match, got %q", topic)
	}
	if _, ok := n.Normalize(""); ok {
		t.Fatal("empty phrase should not match")
	}
}

func TestNormalizeTableOrderWins(t *testing.T) {
	// "not good" contains "good", and good quality precedes bad quality.
	n := Default()
	got, ok := n.Normalize("not good at all")
	if !ok || got != "good quality" {
		t.Fatalf("expected table order to pick good quality, got %q (%v)", got, ok)
	}

	// Reversing the table flips the decision; specificity is irrelevant.
	rev := NewNormalizer([]Rule{
		{Topic: "bad quality", Keywords: []string{"not good"}},
		{Topic: "good quality", Keywords: []string{"good"}},
	})
	got, _ = rev.Normalize("not good at all")
	if got != "bad quality" {
		t.Errorf("expected bad quality, got %q", got)
	}
}

func TestNormalizeCaseInsensitive(t *testing.T) {
	n := NewNormalizer([]Rule{{Topic: "pricing", Keywords: []string{"Expensive"}}})
	if got, ok := n.Normalize("VERY EXPENSIVE"); !ok || got != "pricing" {
		t.Errorf("expected pricing, got %q (%v)", got, ok)
	}
}

func TestAddRuleSkipsEmpty(t *testing.T) {
	n := NewNormalizer(nil)
	n.AddRule("", []string{"anything"})
	n.AddRule("pricing", []string{"", "  ", "cost"})

	rules := n.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if len(rules[0].Keywords) != 1 || rules[0].Keywords[0] != "cost" {
		t.Errorf("unexpected keywords %v", rules[0].Keywords)
	}
	if _, ok := n.Normalize("some text"); ok {
		t.Error("blank keywords must not match every phrase")
	}
	if !n.IsPredefined("pricing") || n.IsPredefined("delivery delay") {
		t.Error("IsPredefined mismatch")
	}
}

func TestRulesReturnsCopy(t *testing.T) {
	n := Default()
	rules := n.Rules()
	rules[0].Keywords[0] = "mutated"
	if n.Rules()[0].Keywords[0] == "mutated" {
		t.Error("Rules should return a copy")
	}
}
