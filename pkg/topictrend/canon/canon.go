// Package canon decides, phrase by phrase, which canonical topic a raw
// review phrase belongs to.
//
// Keyword rules are tried first. Phrases they cannot classify are embedded
// and matched against the learned topics in the store; a phrase with no
// close enough match becomes a new learned topic under its own text.
package canon

import (
	"context"
	"strings"

	"github.com/cognicore/topictrend/internal/logger"
	"github.com/cognicore/topictrend/pkg/topictrend/keywords"
	"github.com/cognicore/topictrend/pkg/topictrend/store"
	"github.com/cognicore/topictrend/pkg/topictrend/vector"
)

// Outcome records which path classified a phrase.
type Outcome int

const (
	// Dropped means the phrase was blank or could not be embedded.
	Dropped Outcome = iota
	// Keyword means a predefined rule matched.
	Keyword
	// Matched means an existing learned topic was close enough.
	Matched
	// Registered means the phrase became a new learned topic.
	Registered
)

func (o Outcome) String() string {
	switch o {
	case Keyword:
		return "keyword"
	case Matched:
		return "matched"
	case Registered:
		return "registered"
	default:
		return "dropped"
	}
}

// Result describes one canonicalization decision.
type Result struct {
	Topic      string
	Outcome    Outcome
	Similarity float64 // best similarity seen on the semantic path
}

// OK reports whether the phrase was assigned a topic.
func (r Result) OK() bool {
	return r.Outcome != Dropped
}

// Stats counts outcomes since the canonicalizer was created.
type Stats struct {
	Keyword         int64
	Matched         int64
	Registered      int64
	Dropped         int64
	EmbedFailures   int64
	PersistFailures int64
}

// Canonicalizer maps phrases onto canonical topics.
type Canonicalizer struct {
	normalizer *keywords.Normalizer
	provider   vector.Provider
	store      *store.TopicStore
	threshold  float64
	stats      Stats
}

// Option configures a Canonicalizer.
type Option func(*Canonicalizer)

// WithThreshold sets the minimum similarity for a semantic match.
func WithThreshold(threshold float64) Option {
	return func(c *Canonicalizer) {
		c.threshold = threshold
	}
}

// New creates a canonicalizer. A nil provider disables the semantic path, so
// only keyword matches are counted.
func New(n *keywords.Normalizer, p vector.Provider, s *store.TopicStore, opts ...Option) *Canonicalizer {
	if n == nil {
		n = keywords.NewNormalizer(nil)
	}
	if p == nil {
		p = vector.Unavailable
	}
	c := &Canonicalizer{
		normalizer: n,
		provider:   p,
		store:      s,
		threshold:  store.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the configured similarity threshold.
func (c *Canonicalizer) Threshold() float64 {
	return c.threshold
}

// Canonicalize returns the canonical topic for phrase, or false when the
// phrase is dropped.
func (c *Canonicalizer) Canonicalize(ctx context.Context, phrase string) (string, bool) {
	res := c.Resolve(ctx, phrase)
	return res.Topic, res.OK()
}

// Resolve classifies phrase and reports how the decision was made.
func (c *Canonicalizer) Resolve(ctx context.Context, phrase string) Result {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		c.stats.Dropped++
		return Result{Outcome: Dropped}
	}

	// Predefined topics live only in the rule table and never reach the store.
	if topic, ok := c.normalizer.Normalize(phrase); ok {
		c.stats.Keyword++
		return Result{Topic: topic, Outcome: Keyword}
	}

	if c.store == nil {
		c.stats.Dropped++
		return Result{Outcome: Dropped}
	}

	emb, err := c.provider.Embed(ctx, phrase)
	if err != nil || emb.IsZero() {
		c.stats.EmbedFailures++
		c.stats.Dropped++
		if err != nil {
			logger.Debug("embedding failed for %q: %v", phrase, err)
		} else {
			logger.Debug("embedding for %q is empty", phrase)
		}
		return Result{Outcome: Dropped}
	}

	hit, found := c.store.Nearest(emb)
	if found && hit.Similarity >= c.threshold {
		c.stats.Matched++
		return Result{Topic: hit.Name, Outcome: Matched, Similarity: hit.Similarity}
	}

	added, err := c.store.Register(ctx, phrase, emb)
	if err != nil {
		if !added {
			c.stats.Dropped++
			logger.Warn("cannot register topic %q: %v", phrase, err)
			return Result{Outcome: Dropped}
		}
		c.stats.PersistFailures++
		logger.Warn("topic %q kept in memory only: %v", phrase, err)
	} else if !added {
		// The phrase is already a learned topic under its own name.
		c.stats.Matched++
		return Result{Topic: phrase, Outcome: Matched, Similarity: hit.Similarity}
	}
	c.stats.Registered++
	logger.Debug("registered topic %q (best similarity %.3f)", phrase, hit.Similarity)
	return Result{Topic: phrase, Outcome: Registered, Similarity: hit.Similarity}
}

// Stats returns a snapshot of the outcome counters.
func (c *Canonicalizer) Stats() Stats {
	return c.stats
}
