package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/poiesic/tm2map/core"
	"github.com/poiesic/tm2map/source"
	"github.com/poiesic/tm2map/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticSource(dataset *core.Dataset) Source {
	return SourceFunc(func(ctx context.Context) (*core.Dataset, error) {
		return dataset, nil
	})
}

func sampleDataset() *core.Dataset {
	return &core.Dataset{
		Terms: []core.TermRecord{
			{ID: "NAM001", Term: "Jwara", Category: "Ayurveda", Synonyms: "Fever", TargetCode: "MG26"},
			{ID: "NAM003", Term: "Atisara", Category: "Ayurveda", Synonyms: "Diarrhoea"},
			{ID: "NAM004", Term: "Kasa Roga", Synonyms: "Chronic cough"},
			{ID: "NAM005"},
		},
		Curated: core.CuratedIndex{
			Exact: []core.CuratedEntry{
				{Code: "NAM900", Label: "Fever", TargetCodes: []string{"XX01"}},
			},
			Partial: []core.CuratedEntry{
				{Code: "NAM002", Label: "Kasa", Synonyms: []string{"Cough"}, TargetCodes: []string{"MD30"}},
				{Code: "NAM004", Label: "Kasa Roga", Synonyms: []string{"Kasa"}, TargetCodes: []string{"MD31", "MD32"}},
				{Code: "NAM010", Label: "Shotha", Synonyms: []string{"Swelling"}},
			},
		},
		Info: core.SnapshotInfo{Fingerprint: core.IDFromContent([]byte("sample"))},
	}
}

func newTestEngine(t *testing.T, dataset *core.Dataset, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), staticSource(dataset), opts...)
	require.NoError(t, err)
	return engine
}

func TestNewEngine_NilSource(t *testing.T) {
	_, err := NewEngine(context.Background(), nil)
	assert.ErrorIs(t, err, ErrSourceRequired)
}

func TestNewEngine_LoadFailure(t *testing.T) {
	loadErr := errors.New("boom")
	_, err := NewEngine(context.Background(), SourceFunc(func(ctx context.Context) (*core.Dataset, error) {
		return nil, loadErr
	}))
	assert.ErrorIs(t, err, loadErr)
}

func TestNewEngine_NilDataset(t *testing.T) {
	_, err := NewEngine(context.Background(), staticSource(nil))
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestNewEngine_InvalidScores(t *testing.T) {
	_, err := NewEngine(context.Background(), staticSource(sampleDataset()),
		WithScores(Scores{CuratedExact: 1.5, CuratedPartial: 0.5, Table: 0.2}))
	assert.ErrorIs(t, err, ErrInvalidScores)
}

func TestSearch_TableMatchOnSynonym(t *testing.T) {
	engine := newTestEngine(t, sampleDataset())

	results := engine.Search("fever", 10)
	require.Len(t, results, 1)
	assert.Equal(t, core.MappingResult{
		ID:         "NAM001",
		Term:       "Jwara",
		Code:       "NAM001",
		Match:      "MG26",
		Confidence: 0.80,
	}, results[0])
}

func TestSearch_UnmappedTableRow(t *testing.T) {
	engine := newTestEngine(t, sampleDataset())

	results := engine.Search("ATISARA", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "NAM003", results[0].Code)
	assert.Equal(t, core.NoDirectMatch, results[0].Match)
}

func TestSearch_CuratedFirstAndScored(t *testing.T) {
	engine := newTestEngine(t, sampleDataset())

	results := engine.Search("kasa", 10)
	require.Len(t, results, 2)

	// Exact label match
	assert.Equal(t, "NAM002", results[0].ID)
	assert.Equal(t, "Kasa", results[0].Term)
	assert.Equal(t, "MD30", results[0].Match)
	assert.Equal(t, 0.95, results[0].Confidence)

	// Substring match, table row NAM004 deduplicated against it
	assert.Equal(t, "NAM004", results[1].ID)
	assert.Equal(t, "MD31, MD32", results[1].Match)
	assert.Equal(t, 0.85, results[1].Confidence)
}

func TestSearch_CuratedWithoutTargets(t *testing.T) {
	engine := newTestEngine(t, sampleDataset())

	results := engine.Search("swelling", 10)
	require.Len(t, results, 1)
	assert.Equal(t, core.NoDirectMatch, results[0].Match)
}

func TestSearch_ExactBucketIgnored(t *testing.T) {
	dataset := sampleDataset()
	dataset.Terms = nil
	engine := newTestEngine(t, dataset)

	for _, r := range engine.Search("fever", 10) {
		assert.NotEqual(t, "NAM900", r.ID)
	}
}

func TestSearch_ZeroAndNegativeLimit(t *testing.T) {
	engine := newTestEngine(t, sampleDataset())

	for _, query := range []string{"", "kasa", "fever", "nothing"} {
		for _, limit := range []int{0, -1} {
			results := engine.Search(query, limit)
			assert.NotNil(t, results)
			assert.Empty(t, results)
		}
	}
}

func TestSearch_LimitAndUniqueness(t *testing.T) {
	engine := newTestEngine(t, sampleDataset())

	for limit := 1; limit <= 8; limit++ {
		results := engine.Search("", limit)
		assert.LessOrEqual(t, len(results), limit)

		seen := make(map[string]bool)
		for _, r := range results {
			assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
			seen[r.ID] = true
		}
	}
}

func TestSearch_EmptyQueryIsWildcard(t *testing.T) {
	engine := newTestEngine(t, sampleDataset())

	results := engine.Search("", 100)
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	// Curated entries first, table rows after, NAM004 once, NAM005 has no present fields
	assert.Equal(t, []string{"NAM002", "NAM004", "NAM010", "NAM001", "NAM003"}, ids)
}

func TestSearch_ConfidenceOrdering(t *testing.T) {
	scores := DefaultScores()
	assert.Greater(t, scores.CuratedExact, scores.CuratedPartial)
	assert.Greater(t, scores.CuratedPartial, scores.Table)
}

func TestSearch_CustomScores(t *testing.T) {
	engine := newTestEngine(t, sampleDataset(),
		WithScores(Scores{CuratedExact: 1, CuratedPartial: 0.5, Table: 0.25}))

	results := engine.Search("kasa", 10)
	require.Len(t, results, 2)
	assert.Equal(t, 1.0, results[0].Confidence)
	assert.Equal(t, 0.5, results[1].Confidence)
	assert.Equal(t, 0.25, engine.Search("fever", 10)[0].Confidence)
}

func TestSearch_UnicodeCaseFolding(t *testing.T) {
	dataset := &core.Dataset{
		Terms: []core.TermRecord{
			{ID: "SID01", Term: "ÉTAT FÉBRILE", TargetCode: "MG26"},
		},
	}
	engine := newTestEngine(t, dataset)

	results := engine.Search("état", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "SID01", results[0].ID)
}

func TestTranslate(t *testing.T) {
	engine := newTestEngine(t, sampleDataset())

	tests := []struct {
		name  string
		code  string
		want  core.TranslationResult
		found bool
	}{
		{
			name:  "mapped table row",
			code:  "NAM001",
			want:  core.TranslationResult{SourceCode: "NAM001", SourceTerm: "Jwara", TargetCode: "MG26", System: core.SystemTM2, Status: core.StatusMapped},
			found: true,
		},
		{
			name:  "unmapped table row",
			code:  "NAM003",
			want:  core.TranslationResult{SourceCode: "NAM003", SourceTerm: "Atisara", TargetCode: core.TargetPending, System: core.SystemTM2, Status: core.StatusPending},
			found: true,
		},
		{
			name:  "table wins over curated",
			code:  "NAM004",
			want:  core.TranslationResult{SourceCode: "NAM004", SourceTerm: "Kasa Roga", TargetCode: core.TargetPending, System: core.SystemTM2, Status: core.StatusPending},
			found: true,
		},
		{
			name:  "curated entry",
			code:  "NAM002",
			want:  core.TranslationResult{SourceCode: "NAM002", SourceTerm: "Kasa", TargetCode: "MD30", System: core.SystemICD11, Status: core.StatusMapped},
			found: true,
		},
		{
			name:  "curated entry without targets stays mapped",
			code:  "NAM010",
			want:  core.TranslationResult{SourceCode: "NAM010", SourceTerm: "Shotha", TargetCode: core.TargetPending, System: core.SystemICD11, Status: core.StatusMapped},
			found: true,
		},
		{name: "unknown", code: "NAM999"},
		{name: "case sensitive", code: "nam001"},
		{name: "substring of a code", code: "NAM00"},
		{name: "exact bucket ignored", code: "NAM900"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := engine.Translate(tt.code)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_DuplicateIDKeepsFirst(t *testing.T) {
	dataset := &core.Dataset{
		Terms: []core.TermRecord{
			{ID: "NAM001", Term: "First", TargetCode: "A1"},
			{ID: "NAM001", Term: "Second", TargetCode: "B2"},
		},
	}
	engine := newTestEngine(t, dataset)

	got, found := engine.Translate("NAM001")
	require.True(t, found)
	assert.Equal(t, "First", got.SourceTerm)
}

func TestStats(t *testing.T) {
	engine := newTestEngine(t, sampleDataset())

	assert.Equal(t, core.Stats{
		TotalMappings: 7,
		DailyQueries:  MockDailyQueries,
		ActiveUsers:   MockActiveUsers,
		FHIRResources: 4,
	}, engine.Stats())
}

func TestStats_EmptyDataset(t *testing.T) {
	engine := newTestEngine(t, &core.Dataset{})

	stats := engine.Stats()
	assert.Equal(t, 0, stats.TotalMappings)
	assert.Equal(t, 0, stats.FHIRResources)
	assert.Empty(t, engine.Search("", 10))
}

func TestSnapshot(t *testing.T) {
	engine := newTestEngine(t, sampleDataset())

	info := engine.Snapshot()
	assert.Equal(t, core.IDFromContent([]byte("sample")), info.Fingerprint)
	assert.Equal(t, 4, info.TermCount)
	assert.Equal(t, 3, info.CuratedCount)
}

func TestReload_SwapsSnapshot(t *testing.T) {
	dataset := sampleDataset()
	calls := 0
	src := SourceFunc(func(ctx context.Context) (*core.Dataset, error) {
		calls++
		if calls == 1 {
			return dataset, nil
		}
		return &core.Dataset{Terms: []core.TermRecord{{ID: "NEW1", Term: "Fever"}}}, nil
	})
	engine, err := NewEngine(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, "NAM001", engine.Search("fever", 10)[0].ID)

	require.NoError(t, engine.Reload(context.Background()))
	results := engine.Search("fever", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "NEW1", results[0].ID)
	assert.Equal(t, 1, engine.Stats().TotalMappings)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReload_MalformedCuratedKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	termPath := filepath.Join(dir, "terms.csv")
	curatedPath := filepath.Join(dir, "curated.json")
	writeFile(t, termPath, "id,term,category,synonyms,icd11_tm2_code\nNAM001,Jwara,Ayurveda,Fever,MG26\n")
	writeFile(t, curatedPath, `{"partial":[{"code":"NAM002","label":"Kasa","synonyms":["Cough"],"icd11_tm2_codes":["MD30"]}]}`)

	src, err := source.NewFileSource(termPath, curatedPath)
	require.NoError(t, err)
	defer src.Release()

	engine, err := NewEngine(context.Background(), src)
	require.NoError(t, err)

	queries := []string{"fever", "kasa", "cough", ""}
	before := make(map[string][]core.MappingResult)
	for _, q := range queries {
		before[q] = engine.Search(q, 10)
	}
	translated, found := engine.Translate("NAM002")
	require.True(t, found)
	stats := engine.Stats()
	info := engine.Snapshot()

	writeFile(t, curatedPath, `{"partial": [`)
	err = engine.Reload(context.Background())
	require.Error(t, err)
	var loadErr *source.DataLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, source.ErrMalformedCuratedIndex)

	for _, q := range queries {
		assert.Equal(t, before[q], engine.Search(q, 10), "query %q", q)
	}
	after, found := engine.Translate("NAM002")
	assert.True(t, found)
	assert.Equal(t, translated, after)
	assert.Equal(t, stats, engine.Stats())
	assert.Equal(t, info, engine.Snapshot())
}

func TestReload_MissingFilesYieldEmptyEngine(t *testing.T) {
	dir := t.TempDir()
	src, err := source.NewFileSource(filepath.Join(dir, "none.csv"), filepath.Join(dir, "none.json"))
	require.NoError(t, err)
	defer src.Release()

	engine, err := NewEngine(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 0, engine.Stats().TotalMappings)
	assert.Empty(t, engine.Search("anything", 10))
	_, found := engine.Translate("NAM001")
	assert.False(t, found)
}

func TestReload_RecordsSnapshotInfo(t *testing.T) {
	_, snapshotRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	engine := newTestEngine(t, sampleDataset(), WithSnapshotRepository(snapshotRepo))
	require.NoError(t, engine.Reload(context.Background()))

	latest, err := snapshotRepo.LoadSnapshotInfo(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, engine.Snapshot().Fingerprint, latest.Fingerprint)
	assert.Equal(t, 4, latest.TermCount)

	history, err := snapshotRepo.GetSnapshotHistory(context.Background(), 10)
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestReload_SnapshotRepositoryFailureIsNotFatal(t *testing.T) {
	_, snapshotRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	engine := newTestEngine(t, sampleDataset(), WithSnapshotRepository(snapshotRepo))
	require.NoError(t, backend.Close())

	assert.NoError(t, engine.Reload(context.Background()))
}

func TestConcurrentReadsDuringReload(t *testing.T) {
	first := sampleDataset()
	second := &core.Dataset{
		Terms: []core.TermRecord{{ID: "NEW1", Term: "Jwara", Synonyms: "Fever", TargetCode: "MG27"}},
	}
	var mu sync.Mutex
	toggle := false
	src := SourceFunc(func(ctx context.Context) (*core.Dataset, error) {
		mu.Lock()
		defer mu.Unlock()
		toggle = !toggle
		if toggle {
			return first, nil
		}
		return second, nil
	})
	engine, err := NewEngine(context.Background(), src)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = engine.Reload(context.Background())
			}
		}()
	}

	errs := make(chan string, 100)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				// Each snapshot is self-consistent: total mappings matches one of the two datasets
				stats := engine.Stats()
				if stats.TotalMappings != 7 && stats.TotalMappings != 1 {
					errs <- "unexpected total mappings"
					return
				}
				results := engine.Search("fever", 10)
				if len(results) != 1 {
					errs <- "unexpected result count"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

type recordingMonitor struct {
	started    bool
	curated    []string
	table      []string
	duplicates []string
	finished   int
}

func (m *recordingMonitor) Start(_ string, _ int)               { m.started = true }
func (m *recordingMonitor) CuratedHit(r core.MappingResult)     { m.curated = append(m.curated, r.ID) }
func (m *recordingMonitor) TableHit(r core.MappingResult)       { m.table = append(m.table, r.ID) }
func (m *recordingMonitor) DuplicateSkipped(id string)          { m.duplicates = append(m.duplicates, id) }
func (m *recordingMonitor) Finish(results []core.MappingResult) { m.finished = len(results) }

func TestSearchWithMonitor(t *testing.T) {
	engine := newTestEngine(t, sampleDataset())
	monitor := &recordingMonitor{}

	results := engine.SearchWithMonitor("kasa", 10, monitor)
	assert.True(t, monitor.started)
	assert.Equal(t, []string{"NAM002", "NAM004"}, monitor.curated)
	assert.Empty(t, monitor.table)
	assert.Equal(t, []string{"NAM004"}, monitor.duplicates)
	assert.Equal(t, len(results), monitor.finished)
}
