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
	"errors"
	"fmt"
)

var (
	// ErrMalformedTermTable indicates the term table could not be parsed.
	ErrMalformedTermTable = errors.New("malformed term table")

	// ErrMalformedCuratedIndex indicates the curated match index could not be parsed.
	ErrMalformedCuratedIndex = errors.New("malformed curated index")

	// ErrMissingColumn indicates a required column is absent from the header.
	ErrMissingColumn = errors.New("required column missing")

	// ErrMissingID indicates a term table row has no id.
	ErrMissingID = errors.New("row has no id")
)

// Source names used in DataLoadError.
const (
	SourceTermTable    = "term table"
	SourceCuratedIndex = "curated index"
)

// DataLoadError reports a source file whose content could not be parsed.
type DataLoadError struct {
	Source string // SourceTermTable or SourceCuratedIndex
	Path   string
	Line   int // 1-based line or row number, 0 when unknown
	Err    error
}

// Error implements the error interface.
func (e *DataLoadError) Error() string {
	msg := "load " + e.Source
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(": line %d", e.Line)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap exposes the underlying error.
func (e *DataLoadError) Unwrap() error { return e.Err }

var (
	// ErrTermTablePathRequired is returned when no term table path is provided.
	ErrTermTablePathRequired = errors.New("term table path required")

	// ErrCuratedIndexPathRequired is returned when no curated index path is provided.
	ErrCuratedIndexPathRequired = errors.New("curated index path required")
)
