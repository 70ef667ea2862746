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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/poiesic/tm2map/core"
	"github.com/poiesic/tm2map/storage"
)

// Placeholder usage figures reported by Stats.
const (
	MockDailyQueries = 142
	MockActiveUsers  = 12
)

// Source produces a complete dataset.
type Source interface {
	Load(ctx context.Context) (*core.Dataset, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (*core.Dataset, error)

// Load calls f(ctx).
func (f SourceFunc) Load(ctx context.Context) (*core.Dataset, error) {
	return f(ctx)
}

// Engine answers searches and translations over the current snapshot.
type Engine struct {
	source    Source
	scores    Scores
	snapshots storage.SnapshotRepository
	logger    *slog.Logger

	current  atomic.Pointer[snapshot]
	reloadMu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithScores overrides the confidence assigned to each kind of match.
func WithScores(scores Scores) Option {
	return func(e *Engine) error {
		if err := scores.Validate(); err != nil {
			return err
		}
		e.scores = scores
		return nil
	}
}

// WithSnapshotRepository records the info of every successful load in repo.
func WithSnapshotRepository(repo storage.SnapshotRepository) Option {
	return func(e *Engine) error {
		e.snapshots = repo
		return nil
	}
}

// NewEngine creates an engine and loads its first snapshot from source.
func NewEngine(ctx context.Context, source Source, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	e := &Engine{
		source: source,
		scores: DefaultScores(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	e.logger = e.logger.With("component", "engine")

	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload loads a new snapshot and swaps it in. On failure the current
// snapshot stays in place and the error is returned. Concurrent calls are
// serialized.
func (e *Engine) Reload(ctx context.Context) error {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	dataset, err := e.source.Load(ctx)
	if err != nil {
		e.logger.Error("reload failed, keeping current snapshot", "err", err)
		return err
	}
	if dataset == nil {
		return ErrEmptyDataset
	}

	next := newSnapshot(dataset)
	previous := e.current.Swap(next)

	args := []any{
		"fingerprint", fmt.Sprintf("%016x", uint64(next.info.Fingerprint)),
		"terms", len(next.terms),
		"curated", len(next.curated),
	}
	if previous != nil && previous.info.Fingerprint == next.info.Fingerprint {
		args = append(args, "unchanged", true)
	}
	e.logger.Info("snapshot loaded", args...)

	if e.snapshots != nil {
		info := next.info
		if err := e.snapshots.SaveSnapshotInfo(ctx, &info); err != nil {
			e.logger.Warn("failed to record snapshot info", "err", err)
		}
	}
	return nil
}

// Snapshot returns the metadata of the current snapshot.
func (e *Engine) Snapshot() core.SnapshotInfo {
	return e.current.Load().info
}

// Search returns up to limit candidates whose label, term or synonyms
// contain query, case-insensitively. Curated matches come first.
// The result is never nil.
func (e *Engine) Search(query string, limit int) []core.MappingResult {
	return e.SearchWithMonitor(query, limit, nil)
}

// SearchWithMonitor is Search with hooks that observe each step.
func (e *Engine) SearchWithMonitor(query string, limit int, monitor SearchMonitor) []core.MappingResult {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query, limit)

	results := []core.MappingResult{}
	if limit <= 0 {
		monitor.Finish(results)
		return results
	}

	snap := e.current.Load()
	q := normalize(query)
	seen := make(map[string]struct{})

	for i := range snap.curated {
		if len(results) >= limit {
			break
		}
		entry := &snap.curated[i]
		if !entry.matches(q) {
			continue
		}
		if _, dup := seen[entry.code]; dup {
			monitor.DuplicateSkipped(entry.code)
			continue
		}
		seen[entry.code] = struct{}{}

		confidence := e.scores.CuratedPartial
		if entry.label == q {
			confidence = e.scores.CuratedExact
		}
		result := core.MappingResult{
			ID:         entry.code,
			Term:       entry.displayLabel,
			Code:       entry.code,
			Match:      entry.match,
			Confidence: confidence,
		}
		results = append(results, result)
		monitor.CuratedHit(result)
	}

	for i := range snap.terms {
		if len(results) >= limit {
			break
		}
		row := &snap.terms[i]
		if !row.matches(q) {
			continue
		}
		if _, dup := seen[row.record.ID]; dup {
			monitor.DuplicateSkipped(row.record.ID)
			continue
		}
		seen[row.record.ID] = struct{}{}

		match := core.NoDirectMatch
		if row.record.Mapped() {
			match = row.record.TargetCode
		}
		result := core.MappingResult{
			ID:         row.record.ID,
			Term:       row.record.Term,
			Code:       row.record.ID,
			Match:      match,
			Confidence: e.scores.Table,
		}
		results = append(results, result)
		monitor.TableHit(result)
	}

	monitor.Finish(results)
	return results
}

// Translate resolves a source code to its target. The term table is
// consulted first, then the curated partial bucket. The boolean is false
// when neither knows the code.
func (e *Engine) Translate(code string) (core.TranslationResult, bool) {
	snap := e.current.Load()

	if i, ok := snap.termsByID[code]; ok {
		record := snap.terms[i].record
		result := core.TranslationResult{
			SourceCode: code,
			SourceTerm: record.Term,
			TargetCode: core.TargetPending,
			System:     core.SystemTM2,
			Status:     core.StatusPending,
		}
		if record.Mapped() {
			result.TargetCode = record.TargetCode
			result.Status = core.StatusMapped
		}
		return result, true
	}

	if i, ok := snap.curatedByCode[code]; ok {
		entry := snap.curated[i]
		result := core.TranslationResult{
			SourceCode: code,
			SourceTerm: entry.displayLabel,
			TargetCode: core.TargetPending,
			System:     core.SystemICD11,
			Status:     core.StatusMapped,
		}
		if len(entry.targetCodes) > 0 {
			result.TargetCode = entry.targetCodes[0]
		}
		return result, true
	}

	return core.TranslationResult{}, false
}

// Stats summarizes the current snapshot.
func (e *Engine) Stats() core.Stats {
	snap := e.current.Load()
	return core.Stats{
		TotalMappings: len(snap.terms) + len(snap.curated),
		DailyQueries:  MockDailyQueries,
		ActiveUsers:   MockActiveUsers,
		FHIRResources: len(snap.terms),
	}
}
