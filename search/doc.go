// Package search provides the mapping engine that answers term searches and
// code translations over a loaded snapshot of the term table and the curated
// match index.
//
// Search scans the curated "partial" bucket first and then complements the
// results with term table rows, deduplicating by id. Each result carries a
// fixed-tier confidence:
//   - an exact curated label match scores Scores.CuratedExact
//   - a curated substring match scores Scores.CuratedPartial
//   - a term table match scores Scores.Table
//
// Results keep that priority order and are never re-sorted by confidence.
//
// The engine holds its snapshot behind an atomic pointer. Reads never block,
// and Reload builds the next snapshot completely before swapping it in, so a
// reader sees either the old or the new snapshot, never a mix. A failed
// reload leaves the current snapshot in place.
package search
