// Package extract turns a review's prose into short candidate topic phrases.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/cognicore/topictrend/pkg/topictrend/ingest"
)

// DefaultMaxWords bounds the length of an extracted phrase.
const DefaultMaxWords = 6

// Extractor returns candidate phrases for one review. An empty result is
// valid; errors mean the review could not be processed at all.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// Func adapts a function to the Extractor interface.
type Func func(ctx context.Context, text string) ([]string, error)

// Extract implements Extractor.
func (f Func) Extract(ctx context.Context, text string) ([]string, error) {
	return f(ctx, text)
}

// Chatter sends a prompt to a chat model.
type Chatter interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

const systemPrompt = "You label customer reviews for a food delivery app. Reply with JSON only."

const userPrompt = `List the customer concerns raised in this review as a JSON array of short phrases, at most 4 words each.

Review:
%q`

// LLM extracts phrases by prompting a chat model.
type LLM struct {
	Client   Chatter
	MaxWords int
}

// Extract implements Extractor.
func (e *LLM) Extract(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	reply, err := e.Client.Chat(ctx, systemPrompt, fmt.Sprintf(userPrompt, text))
	if err != nil {
		return nil, fmt.Errorf("extract phrases: %w", err)
	}
	return ParseReply(reply, e.MaxWords), nil
}

// ParseReply reads a model reply. A JSON array of strings is preferred;
// anything else is read line by line with list markers stripped. Phrases are
// normalized, and empty phrases or phrases longer than maxWords are dropped.
// maxWords <= 0 uses DefaultMaxWords.
func ParseReply(reply string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	text := stripFence(strings.TrimSpace(reply))

	var items []any
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		var out []string
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				continue
			}
			out = appendPhrase(out, s, maxWords)
		}
		return out
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeftFunc(strings.TrimSpace(line), isListMarker)
		out = appendPhrase(out, line, maxWords)
	}
	return out
}

// Clauses is an offline extractor that splits review text at sentence and
// clause punctuation.
type Clauses struct {
	MaxWords int
}

// Extract implements Extractor.
func (c Clauses) Extract(ctx context.Context, text string) ([]string, error) {
	maxWords := c.MaxWords
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	parts := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '.', '!', '?', ';', ',', ':', '\n':
			return true
		}
		return false
	})
	var out []string
	for _, p := range parts {
		out = appendPhrase(out, p, maxWords)
	}
	return out, nil
}

func appendPhrase(out []string, raw string, maxWords int) []string {
	phrase := ingest.NormalizePhrase(raw)
	if phrase == "" || ingest.WordCount(phrase) > maxWords {
		return out
	}
	return append(out, phrase)
}

// stripFence removes a surrounding ``` code fence, including its language tag.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return strings.Trim(text, "`")
	}
	lines = lines[1:]
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isListMarker(r rune) bool {
	return unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' || r == '*' || r == '.' || r == '•' || r == ')'
}
