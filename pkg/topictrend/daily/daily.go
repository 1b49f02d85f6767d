// Package daily turns one day of reviews into per-topic counts.
package daily

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/topictrend/internal/logger"
	"github.com/cognicore/topictrend/internal/reviews"
	"github.com/cognicore/topictrend/pkg/topictrend/canon"
	"github.com/cognicore/topictrend/pkg/topictrend/extract"
)

// Counts maps a canonical topic to the number of phrases assigned to it.
type Counts map[string]int

// Total returns the sum of all counts.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Canonicalizer assigns phrases to topics. *canon.Canonicalizer satisfies it.
type Canonicalizer interface {
	Canonicalize(ctx context.Context, phrase string) (string, bool)
}

// Aggregate canonicalizes every phrase and counts the topics. Phrases without
// a topic are skipped. The result is never nil.
func Aggregate(ctx context.Context, c Canonicalizer, phrases []string) Counts {
	counts := make(Counts)
	for _, p := range phrases {
		if topic, ok := c.Canonicalize(ctx, p); ok {
			counts[topic]++
		}
	}
	return counts
}

// Result describes one processed day.
type Result struct {
	RunID   ulid.ULID
	Date    Date
	Counts  Counts
	Reviews int
	Phrases int
	Stats   canon.Stats
}

// Processor runs the review to topic pipeline for a day.
type Processor struct {
	Extractor     extract.Extractor
	Canonicalizer *canon.Canonicalizer
	Now           func() time.Time
}

// ProcessDay reads processedDir/<date>.json, extracts phrases from every
// review and aggregates them. A missing or undecodable file yields empty
// counts and a warning. Extraction failures drop only that review.
func (p *Processor) ProcessDay(ctx context.Context, date Date, processedDir string) (Result, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	res := Result{
		RunID:  ulid.MustNew(ulid.Timestamp(now()), ulid.DefaultEntropy()),
		Date:   date,
		Counts: make(Counts),
	}

	path := Path(processedDir, date)
	items, err := reviews.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("no processed reviews for %s", date)
		} else {
			logger.Warn("cannot read %s: %v", path, err)
		}
		return res, nil
	}

	var phrases []string
	for _, r := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if r.Text == "" {
			continue
		}
		res.Reviews++
		ps, err := p.Extractor.Extract(ctx, r.Text)
		if err != nil {
			logger.Warn("phrase extraction failed: %v", err)
			continue
		}
		phrases = append(phrases, ps...)
	}
	res.Phrases = len(phrases)

	before := p.Canonicalizer.Stats()
	res.Counts = Aggregate(ctx, p.Canonicalizer, phrases)
	res.Stats = diff(p.Canonicalizer.Stats(), before)

	logger.Info("%s: %d reviews, %d phrases, %d topics (keyword %d, matched %d, new %d, dropped %d)",
		date, res.Reviews, res.Phrases, len(res.Counts),
		res.Stats.Keyword, res.Stats.Matched, res.Stats.Registered, res.Stats.Dropped)
	if res.Stats.PersistFailures > 0 {
		logger.Warn("%s: %d new topics were not persisted", date, res.Stats.PersistFailures)
	}
	return res, nil
}

func diff(a, b canon.Stats) canon.Stats {
	return canon.Stats{
		Keyword:         a.Keyword - b.Keyword,
		Matched:         a.Matched - b.Matched,
		Registered:      a.Registered - b.Registered,
		Dropped:         a.Dropped - b.Dropped,
		EmbedFailures:   a.EmbedFailures - b.EmbedFailures,
		PersistFailures: a.PersistFailures - b.PersistFailures,
	}
}

// Path returns the file for date under dir. Review files and counts files
// share the naming scheme.
func Path(dir string, date Date) string {
	return filepath.Join(dir, date.String()+".json")
}
