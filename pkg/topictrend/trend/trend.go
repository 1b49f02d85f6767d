// Package trend merges per-day topic counts into a topics by dates matrix.
package trend

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/topictrend/internal/logger"
	"github.com/cognicore/topictrend/pkg/topictrend/daily"
)

// Matrix holds topic counts per day. Rows are topics in lexicographic
// order, columns are days in chronological order, and absent cells are 0.
type Matrix struct {
	topics []string
	dates  []daily.Date
	cells  map[string]map[daily.Date]int
}

// Build creates a matrix from per-day counts. Zero counts are kept as rows
// so a topic seen on any day always appears.
func Build(perDay map[daily.Date]daily.Counts) *Matrix {
	m := &Matrix{cells: make(map[string]map[daily.Date]int)}
	for date, counts := range perDay {
		m.dates = append(m.dates, date)
		for topic, n := range counts {
			row, ok := m.cells[topic]
			if !ok {
				row = make(map[daily.Date]int)
				m.cells[topic] = row
				m.topics = append(m.topics, topic)
			}
			row[date] = n
		}
	}
	sort.Strings(m.topics)
	sort.Slice(m.dates, func(i, j int) bool { return m.dates[i].Before(m.dates[j]) })
	return m
}

// Topics returns the row labels.
func (m *Matrix) Topics() []string {
	return append([]string(nil), m.topics...)
}

// Dates returns the column labels.
func (m *Matrix) Dates() []daily.Date {
	return append([]daily.Date(nil), m.dates...)
}

// Count returns the cell for topic and date, 0 when absent.
func (m *Matrix) Count(topic string, date daily.Date) int {
	return m.cells[topic][date]
}

// Row returns the counts for topic in column order.
func (m *Matrix) Row(topic string) []int {
	row := make([]int, len(m.dates))
	for i, d := range m.dates {
		row[i] = m.Count(topic, d)
	}
	return row
}

// NonZero returns the number of cells with a non-zero count.
func (m *Matrix) NonZero() int {
	n := 0
	for _, row := range m.cells {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// WriteCSV writes a header row "topic,<date>..." followed by one row per
// topic.
func (m *Matrix) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(m.dates)+1)
	header = append(header, "topic")
	for _, d := range m.dates {
		header = append(header, d.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, topic := range m.topics {
		record := make([]string, 0, len(m.dates)+1)
		record = append(record, topic)
		for _, n := range m.Row(topic) {
			record = append(record, strconv.Itoa(n))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadDir reads every <date>.json counts file in dir. Files whose name is not
// a date and files that cannot be decoded are skipped with a warning.
func LoadDir(dir string) (map[daily.Date]daily.Counts, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	perDay := make(map[daily.Date]daily.Counts, len(files))
	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), ".json")
		date, err := daily.ParseDate(name)
		if err != nil {
			logger.Warn("skipping %s: not a dated counts file", filepath.Base(path))
			continue
		}
		counts, err := daily.ReadCounts(path)
		if err != nil {
			logger.Warn("skipping %s: %v", filepath.Base(path), err)
			continue
		}
		perDay[date] = counts
	}
	return perDay, nil
}

// WriteFile writes the matrix as CSV to path, creating parent directories.
func (m *Matrix) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := m.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
