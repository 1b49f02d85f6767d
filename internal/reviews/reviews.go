package reviews

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cognicore/topictrend/internal/logger"
)

// Raw is a review as delivered by the review source. Some sources use
// "content" for the body, others "text".
type Raw struct {
	Content string   `json:"content"`
	Text    string   `json:"text"`
	Score   *float64 `json:"score"`
}

// Body returns the review body, preferring Content.
func (r Raw) Body() string {
	if r.Content != "" {
		return r.Content
	}
	return r.Text
}

// Review is a cleaned review.
type Review struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// LoadRaw loads raw reviews from a JSON array or JSONL file.
func LoadRaw(path string) ([]Raw, error) {
	return load[Raw](path)
}

// Load loads cleaned reviews from a JSON array or JSONL file.
func Load(path string) ([]Review, error) {
	return load[Review](path)
}

// Save writes reviews as an indented JSON array.
func Save(path string, items []Review) error {
	if items == nil {
		items = []Review{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode reviews: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// load decodes a whole-file JSON array, or falls back to one JSON object per
// line. Malformed JSONL lines are skipped with a warning.
func load[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return items, nil
	}

	var items []T
	lines := strings.Split(string(trimmed), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var item T
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			logger.Warn("skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid items found in %s", path)
	}

	return items, nil
}
