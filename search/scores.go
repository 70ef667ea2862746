package search

import "fmt"

// Scores holds the confidence assigned to each kind of match.
type Scores struct {
	// CuratedExact scores a curated entry whose label equals the query.
	CuratedExact float64
	// CuratedPartial scores a curated entry whose label or synonyms contain the query.
	CuratedPartial float64
	// Table scores a term table row whose term or synonyms contain the query.
	Table float64
}

// DefaultScores returns the standard confidence tiers.
func DefaultScores() Scores {
	return Scores{
		CuratedExact:   0.95,
		CuratedPartial: 0.85,
		Table:          0.80,
	}
}

// Validate checks that every score lies within [0, 1].
func (s Scores) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"CuratedExact", s.CuratedExact},
		{"CuratedPartial", s.CuratedPartial},
		{"Table", s.Table},
	}
	for _, f := range fields {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidScores, f.name, f.value)
		}
	}
	return nil
}
