package daily

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cognicore/topictrend/pkg/topictrend/internalerr"
)

// WriteCounts stores counts as a flat JSON object in dir/<date>.json and
// returns the file path.
func WriteCounts(dir string, date Date, counts Counts) (string, error) {
	if counts == nil {
		counts = Counts{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode counts: %w", err)
	}
	path := Path(dir, date)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ReadCounts loads a counts file written by WriteCounts. Anything other than
// a JSON object of non-negative integers is rejected with ErrInvalidInput.
func ReadCounts(path string) (Counts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var counts Counts
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", internalerr.ErrInvalidInput, filepath.Base(path), err)
	}
	if counts == nil {
		return nil, fmt.Errorf("%w: %s is not an object", internalerr.ErrInvalidInput, filepath.Base(path))
	}
	for topic, n := range counts {
		if n < 0 {
			return nil, fmt.Errorf("%w: %s: negative count for %q", internalerr.ErrInvalidInput, filepath.Base(path), topic)
		}
	}
	return counts, nil
}
