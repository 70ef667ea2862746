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
	"strings"

	"github.com/poiesic/tm2map/core"
)

// snapshot is an immutable, pre-normalized view of a dataset.
type snapshot struct {
	terms         []termRow
	termsByID     map[string]int
	curated       []curatedRow
	curatedByCode map[string]int
	info          core.SnapshotInfo
}

type termRow struct {
	record   core.TermRecord
	term     string
	synonyms string
}

func (r *termRow) matches(query string) bool {
	if r.term != "" && strings.Contains(r.term, query) {
		return true
	}
	return r.synonyms != "" && strings.Contains(r.synonyms, query)
}

type curatedRow struct {
	code         string
	displayLabel string
	label        string
	synonyms     []string
	targetCodes  []string
	match        string
}

func (r *curatedRow) matches(query string) bool {
	return strings.Contains(r.label, query) || containsAny(r.synonyms, query)
}

func newSnapshot(dataset *core.Dataset) *snapshot {
	snap := &snapshot{
		terms:         make([]termRow, 0, len(dataset.Terms)),
		termsByID:     make(map[string]int, len(dataset.Terms)),
		curated:       make([]curatedRow, 0, len(dataset.Curated.Partial)),
		curatedByCode: make(map[string]int, len(dataset.Curated.Partial)),
		info:          dataset.Info,
	}

	for _, record := range dataset.Terms {
		if _, dup := snap.termsByID[record.ID]; !dup {
			snap.termsByID[record.ID] = len(snap.terms)
		}
		snap.terms = append(snap.terms, termRow{
			record:   record,
			term:     normalize(record.Term),
			synonyms: normalize(record.Synonyms),
		})
	}

	for _, entry := range dataset.Curated.Partial {
		if _, dup := snap.curatedByCode[entry.Code]; !dup {
			snap.curatedByCode[entry.Code] = len(snap.curated)
		}
		match := joinCodes(entry.TargetCodes)
		if match == "" {
			match = core.NoDirectMatch
		}
		snap.curated = append(snap.curated, curatedRow{
			code:         entry.Code,
			displayLabel: entry.Label,
			label:        normalize(entry.Label),
			synonyms:     normalizeAll(entry.Synonyms),
			targetCodes:  entry.TargetCodes,
			match:        match,
		})
	}

	snap.info.TermCount = len(snap.terms)
	snap.info.CuratedCount = len(snap.curated)
	return snap
}
