package search

import "errors"

var (
	// ErrSourceRequired is returned when a data source is not provided.
	ErrSourceRequired = errors.New("data source required")

	// ErrInvalidScores is returned when a confidence score lies outside [0, 1].
	ErrInvalidScores = errors.New("confidence scores must be within [0, 1]")

	// ErrEmptyDataset is returned when a source yields no dataset and no error.
	ErrEmptyDataset = errors.New("source returned no dataset")
)
