// Package keywords maps raw review phrases onto predefined topics using
// ordered substring rules.
package keywords

import "strings"

// Rule binds a canonical topic to the keyword substrings that select it.
type Rule struct {
	Topic    string
	Keywords []string
}

// Normalizer resolves phrases against an ordered rule table.
// The first rule with a keyword contained in the phrase wins, so table order
// is part of the observable behaviour.
type Normalizer struct {
	rules []Rule
}

// NewNormalizer creates a normalizer from rules in priority order.
// Keywords are lowercased; empty keywords and rules without a topic are dropped.
func NewNormalizer(rules []Rule) *Normalizer {
	n := &Normalizer{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		n.AddRule(r.Topic, r.Keywords)
	}
	return n
}

// Default returns a normalizer over the built-in food delivery review table.
func Default() *Normalizer {
	return NewNormalizer(DefaultRules())
}

// AddRule appends a rule at the lowest priority.
func (n *Normalizer) AddRule(topic string, keywords []string) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return
	}
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if strings.TrimSpace(kw) == "" {
			continue
		}
		normalized = append(normalized, kw)
	}
	n.rules = append(n.rules, Rule{Topic: topic, Keywords: normalized})
}

// Normalize returns the predefined topic for phrase, if any rule matches.
func (n *Normalizer) Normalize(phrase string) (string, bool) {
	lower := strings.ToLower(phrase)
	for _, r := range n.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Topic, true
			}
		}
	}
	return "", false
}

// IsPredefined reports whether topic names a rule in the table.
func (n *Normalizer) IsPredefined(topic string) bool {
	for _, r := range n.rules {
		if r.Topic == topic {
			return true
		}
	}
	return false
}

// Rules returns a copy of the table in priority order.
func (n *Normalizer) Rules() []Rule {
	out := make([]Rule, len(n.rules))
	for i, r := range n.rules {
		out[i] = Rule{Topic: r.Topic, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	return []Rule{
		{Topic: "pricing", Keywords: []string{"price", "expensive", "high price", "overpriced", "cost", "value for money", "affordable"}},
		{Topic: "delivery delay", Keywords: []string{"late", "delay", "slow", "waiting", "wait time", "delivery time", "not on time"}},
		{Topic: "food cold", Keywords: []string{"cold", "not hot", "temperature", "chilled", "food arrived cold"}},
		{Topic: "small quantity", Keywords: []string{"small", "less", "portion", "quantity", "not enough", "insufficient"}},
		{Topic: "missing items", Keywords: []string{"missing", "not received", "forgot", "item not delivered", "incomplete"}},
		{Topic: "no coupons", Keywords: []string{"no offer", "no coupon", "no discount", "no promo"}},
		{Topic: "good quality", Keywords: []string{"good", "excellent", "nice", "tasty", "quality maintained"}},
		{Topic: "bad quality", Keywords: []string{"bad", "poor", "stale", "burnt", "not good", "worse"}},
	}
}
