package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cognicore/topictrend/internal/logger"
	"github.com/cognicore/topictrend/internal/reviews"
)

// CleanDir cleans every *.json review file in inDir and writes the result
// under the same name in outDir. Reviews without a body or score are dropped.
// A file that cannot be read or decoded is skipped with a warning. It returns
// the names of the files written.
func CleanDir(inDir, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", outDir, err)
	}

	files, err := filepath.Glob(filepath.Join(inDir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var written []string
	for _, path := range files {
		raw, err := reviews.LoadRaw(path)
		if err != nil {
			logger.Warn("skipping %s: %v", path, err)
			continue
		}

		cleaned := CleanReviews(raw)
		name := filepath.Base(path)
		if err := reviews.Save(filepath.Join(outDir, name), cleaned); err != nil {
			return written, err
		}
		logger.Info("cleaned %s: %d of %d reviews kept", name, len(cleaned), len(raw))
		written = append(written, name)
	}
	return written, nil
}

// CleanReviews cleans review bodies and drops reviews lacking text or score.
func CleanReviews(raw []reviews.Raw) []reviews.Review {
	out := make([]reviews.Review, 0, len(raw))
	for _, r := range raw {
		body := r.Body()
		if body == "" || r.Score == nil {
			continue
		}
		out = append(out, reviews.Review{Text: CleanText(body), Score: *r.Score})
	}
	return out
}
