// Package dictionary seeds a history index from text files, one recorded line
// per line of input.
package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/wordhist/pkg/history"
	"github.com/charmbracelet/log"
)

// maxLineSize bounds a single seed line; longer lines fail the load.
const maxLineSize = 1 << 20

// LoadStats counts what a load fed into the index.
type LoadStats struct {
	Files int
	Lines int
	Words int
}

func (s *LoadStats) add(o LoadStats) {
	s.Files += o.Files
	s.Lines += o.Lines
	s.Words += o.Words
}

// LoadText records every line of r into idx. accept filters words the same
// way it does for history.Index.RecordLine.
func LoadText(r io.Reader, idx *history.Index, accept func(string) bool) (LoadStats, error) {
	var stats LoadStats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		stats.Lines++
		stats.Words += idx.RecordLine(scanner.Text(), accept)
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read seed text after %d lines: %w", stats.Lines, err)
	}
	return stats, nil
}

// LoadFile validates and loads one seed file.
func LoadFile(path string, idx *history.Index, accept func(string) bool) (LoadStats, error) {
	if err := ValidateTextFile(path); err != nil {
		return LoadStats{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return LoadStats{}, fmt.Errorf("failed to open seed file %s: %w", path, err)
	}
	defer file.Close()

	start := time.Now()
	stats, err := LoadText(file, idx, accept)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", path, err)
	}
	stats.Files = 1
	log.Debugf("Loaded %s: %d lines, %d words in %v", path, stats.Lines, stats.Words, time.Since(start))
	return stats, nil
}

// LoadFiles loads each path in order. A file that fails is skipped with a
// warning; the returned error joins every failure.
func LoadFiles(paths []string, idx *history.Index, accept func(string) bool) (LoadStats, error) {
	var total LoadStats
	var errs []error

	for _, path := range paths {
		stats, err := LoadFile(path, idx, accept)
		total.add(stats)
		if err != nil {
			log.Warnf("Skipping seed file: %v", err)
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}
