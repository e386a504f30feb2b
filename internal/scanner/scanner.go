// Package scanner walks the table directory and produces metadata-enriched
// candidates for reconciliation. Unreadable files are reported, never fatal;
// output ordering is deterministic regardless of extraction concurrency.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/logging"
	"github.com/keithbphillips/PinballUX/internal/metadata"
	"github.com/keithbphillips/PinballUX/internal/textutil"
)

// Candidate is one scanned table file.
type Candidate struct {
	Path string
	Size int64
	Info metadata.Info
}

// Stem returns the candidate's file name without its extension; scoring and
// matching key off this, not the extracted name.
func (c Candidate) Stem() string {
	return textutil.Stem(filepath.Base(c.Path))
}

// Unreadable is a file the scanner found but could not use.
type Unreadable struct {
	Path string
	Err  error
}

// Result is the outcome of one scan.
type Result struct {
	Candidates  []Candidate
	Unreadable  []Unreadable
	SkippedDirs []string
}

// Scanner walks a table directory tree.
type Scanner struct {
	root       string
	extensions map[string]struct{}
	workers    int
	maxDepth   int
	extractor  metadata.Extractor
	logger     *slog.Logger
}

// New builds a scanner for the configured table directory.
func New(cfg *config.Config, extractor metadata.Extractor, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	extensions := make(map[string]struct{}, len(cfg.Scanner.Extensions))
	for _, ext := range cfg.Scanner.Extensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}
	workers := cfg.Scanner.ExtractWorkers
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		root:       cfg.Paths.TablesDir,
		extensions: extensions,
		workers:    workers,
		maxDepth:   cfg.Scanner.MaxDepth,
		extractor:  extractor,
		logger:     logging.NewComponentLogger(logger, "scanner"),
	}
}

type foundFile struct {
	path string
	size int64
}

// Scan walks the tree, extracts metadata on a worker pool, and returns the
// candidates sorted by path.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("stat tables directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tables path %q is not a directory", s.root)
	}

	result := &Result{}
	var files []foundFile

	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			s.logger.Warn("skipping unreadable entry", logging.String(logging.FieldPath, path), logging.Error(err))
			result.Unreadable = append(result.Unreadable, Unreadable{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == s.root {
				return nil
			}
			if s.maxDepth > 0 && s.depthOf(path) > s.maxDepth {
				s.logger.Debug("depth cap reached", logging.String(logging.FieldPath, path))
				result.SkippedDirs = append(result.SkippedDirs, path)
				return fs.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := s.extensions[ext]; !ok {
			return nil
		}

		// os.Stat follows file symlinks; a dangling link is unreadable.
		fileInfo, statErr := os.Stat(path)
		if statErr != nil {
			s.logger.Warn("skipping unreadable file", logging.String(logging.FieldPath, path), logging.Error(statErr))
			result.Unreadable = append(result.Unreadable, Unreadable{Path: path, Err: statErr})
			return nil
		}
		if !fileInfo.Mode().IsRegular() {
			return nil
		}

		files = append(files, foundFile{path: path, size: fileInfo.Size()})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk tables directory: %w", walkErr)
	}

	candidates, unreadable := s.extractAll(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Candidates = candidates
	result.Unreadable = append(result.Unreadable, unreadable...)

	sort.Slice(result.Candidates, func(i, j int) bool {
		return result.Candidates[i].Path < result.Candidates[j].Path
	})
	sort.Slice(result.Unreadable, func(i, j int) bool {
		return result.Unreadable[i].Path < result.Unreadable[j].Path
	})

	s.logger.Debug("scan complete",
		logging.Int("candidates", len(result.Candidates)),
		logging.Int("unreadable", len(result.Unreadable)),
		logging.Int("skipped_dirs", len(result.SkippedDirs)),
	)
	return result, nil
}

// depthOf counts directory levels below the scan root.
func (s *Scanner) depthOf(path string) int {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

type extraction struct {
	info metadata.Info
	err  error
}

// extractAll runs metadata extraction on a bounded worker pool. Results are
// indexed, not streamed, so candidate order never depends on scheduling.
func (s *Scanner) extractAll(ctx context.Context, files []foundFile) ([]Candidate, []Unreadable) {
	if len(files) == 0 {
		return nil, nil
	}

	extractions := make([]extraction, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				info, err := s.extractor.Extract(ctx, files[idx].path)
				extractions[idx] = extraction{info: info, err: err}
			}
		}()
	}

dispatch:
	for idx := range files {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	var (
		candidates []Candidate
		unreadable []Unreadable
	)
	for idx, file := range files {
		ext := extractions[idx]
		if ext.err != nil {
			s.logger.Warn("metadata extraction failed", logging.String(logging.FieldPath, file.path), logging.Error(ext.err))
			unreadable = append(unreadable, Unreadable{Path: file.path, Err: ext.err})
			continue
		}
		candidates = append(candidates, Candidate{Path: file.path, Size: file.size, Info: ext.info})
	}
	return candidates, unreadable
}
