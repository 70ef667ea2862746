// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package source

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/tm2map/core"
)

// Default file names inside a data directory.
const (
	DefaultTermTableFile    = "sample-namaste.csv"
	DefaultCuratedIndexFile = "search-results.json"
)

// FileSource loads a Dataset from a term table file and a curated index file.
// Both files are read concurrently on a small worker pool.
type FileSource struct {
	termTablePath    string
	curatedIndexPath string
	pool             *ants.Pool
	now              func() time.Time
	logger           *slog.Logger
}

// Option configures a FileSource.
type Option func(*FileSource) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *FileSource) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClock sets the clock used to stamp SnapshotInfo.LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(s *FileSource) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// NewFileSource creates a source reading the given files.
func NewFileSource(termTablePath, curatedIndexPath string, opts ...Option) (*FileSource, error) {
	if termTablePath == "" {
		return nil, ErrTermTablePathRequired
	}
	if curatedIndexPath == "" {
		return nil, ErrCuratedIndexPathRequired
	}

	pool, err := ants.NewPool(2)
	if err != nil {
		return nil, err
	}

	s := &FileSource{
		termTablePath:    termTablePath,
		curatedIndexPath: curatedIndexPath,
		pool:             pool,
		now:              time.Now,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	return s, nil
}

// NewDirSource creates a source reading the default file names from dir.
func NewDirSource(dir string, opts ...Option) (*FileSource, error) {
	return NewFileSource(
		filepath.Join(dir, DefaultTermTableFile),
		filepath.Join(dir, DefaultCuratedIndexFile),
		opts...,
	)
}

type termTableResult struct {
	records []core.TermRecord
	raw     []byte
	found   bool
	err     error
}

type curatedIndexResult struct {
	index core.CuratedIndex
	raw   []byte
	found bool
	err   error
}

// Load reads both files and returns a complete Dataset.
// Missing files yield empty structures; malformed content yields a *DataLoadError.
func (s *FileSource) Load(ctx context.Context) (*core.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		wg      sync.WaitGroup
		terms   termTableResult
		curated curatedIndexResult
	)

	tasks := []func(){
		func() { terms = s.loadTermTable() },
		func() { curated = s.loadCuratedIndex() },
	}
	var submitErr error
	for _, task := range tasks {
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			task()
		}); err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}

	if submitErr != nil {
		return nil, submitErr
	}
	if terms.err != nil {
		return nil, terms.err
	}
	if curated.err != nil {
		return nil, curated.err
	}

	return &core.Dataset{
		Terms:   terms.records,
		Curated: curated.index,
		Info: core.SnapshotInfo{
			Fingerprint:       core.IDFromContent(terms.raw, []byte{0}, curated.raw),
			TermTablePath:     s.termTablePath,
			CuratedIndexPath:  s.curatedIndexPath,
			TermTableFound:    terms.found,
			CuratedIndexFound: curated.found,
			TermCount:         len(terms.records),
			CuratedCount:      len(curated.index.Partial),
			LoadedAt:          s.now().UTC(),
		},
	}, nil
}

// Release releases the worker pool.
// The source should not be used after calling Release.
func (s *FileSource) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

func (s *FileSource) loadTermTable() termTableResult {
	data, found, err := readOptional(s.termTablePath)
	if err != nil {
		return termTableResult{err: &DataLoadError{Source: SourceTermTable, Path: s.termTablePath, Err: err}}
	}
	if !found {
		s.logger.Warn("term table not found, using empty table", "path", s.termTablePath)
		return termTableResult{records: []core.TermRecord{}}
	}

	var records []core.TermRecord
	if strings.EqualFold(filepath.Ext(s.termTablePath), ".xlsx") {
		records, err = ReadTermTableXLSX(bytes.NewReader(data))
	} else {
		records, err = ReadTermTable(bytes.NewReader(data))
	}
	if err != nil {
		return termTableResult{err: withPath(err, s.termTablePath)}
	}

	s.logger.Debug("loaded term table", "path", s.termTablePath, "records", len(records))
	return termTableResult{records: records, raw: data, found: true}
}

func (s *FileSource) loadCuratedIndex() curatedIndexResult {
	data, found, err := readOptional(s.curatedIndexPath)
	if err != nil {
		return curatedIndexResult{err: &DataLoadError{Source: SourceCuratedIndex, Path: s.curatedIndexPath, Err: err}}
	}
	if !found {
		s.logger.Warn("curated index not found, using empty index", "path", s.curatedIndexPath)
		return curatedIndexResult{index: EmptyCuratedIndex()}
	}

	index, err := ReadCuratedIndex(bytes.NewReader(data))
	if err != nil {
		return curatedIndexResult{err: withPath(err, s.curatedIndexPath)}
	}

	s.logger.Debug("loaded curated index", "path", s.curatedIndexPath,
		"exact", len(index.Exact), "partial", len(index.Partial))
	return curatedIndexResult{index: index, raw: data, found: true}
}

// readOptional reads a file, reporting found=false when it does not exist.
func readOptional(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func withPath(err error, path string) error {
	var dle *DataLoadError
	if errors.As(err, &dle) {
		dle.Path = path
		return dle
	}
	return err
}
