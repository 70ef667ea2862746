package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/poiesic/tm2map/core"
)

// Curated index bucket names.
const (
	BucketExact   = "exact"
	BucketPartial = "partial"
)

// ReadCuratedIndex parses a curated match index document.
func ReadCuratedIndex(r io.Reader) (core.CuratedIndex, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.CuratedIndex{}, curatedError(0, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.CuratedIndex{}, curatedError(errorLine(data, err), err)
	}
	if doc == nil {
		return core.CuratedIndex{}, curatedError(0, errors.New("document is null"))
	}

	exact, err := decodeBucket(doc, BucketExact)
	if err != nil {
		return core.CuratedIndex{}, err
	}
	partial, err := decodeBucket(doc, BucketPartial)
	if err != nil {
		return core.CuratedIndex{}, err
	}

	return core.CuratedIndex{Exact: exact, Partial: partial}, nil
}

// EmptyCuratedIndex returns an index with both buckets present and empty.
func EmptyCuratedIndex() core.CuratedIndex {
	return core.CuratedIndex{Exact: []core.CuratedEntry{}, Partial: []core.CuratedEntry{}}
}

func decodeBucket(doc map[string]json.RawMessage, name string) ([]core.CuratedEntry, error) {
	entries := []core.CuratedEntry{}
	raw, ok := doc[name]
	if !ok || isNull(raw) {
		return entries, nil
	}

	var items []curatedEntry
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, curatedError(0, fmt.Errorf("bucket %q: %w", name, err))
	}
	for _, item := range items {
		entries = append(entries, core.CuratedEntry{
			Code:        string(item.Code),
			Label:       string(item.Label),
			Synonyms:    []string(item.Synonyms),
			TargetCodes: []string(item.TargetCodes),
		})
	}
	return entries, nil
}

// curatedEntry is the wire shape of a CuratedEntry.
type curatedEntry struct {
	Code        looseString `json:"code"`
	Label       looseString `json:"label"`
	Synonyms    synonymList `json:"synonyms"`
	TargetCodes codeList    `json:"icd11_tm2_codes"`
}

// looseString accepts strings, numbers, booleans and null.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = looseString(num.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*s = looseString(strconv.FormatBool(b))
		return nil
	}
	return fmt.Errorf("expected a scalar, got %s", truncate(data))
}

// synonymList keeps the position of every element; non-string elements
// become empty strings.
type synonymList []string

func (l *synonymList) UnmarshalJSON(data []byte) error {
	items, err := decodeList(data)
	if err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) != nil {
			s = ""
		}
		out = append(out, s)
	}
	*l = out
	return nil
}

// codeList keeps only string elements.
type codeList []string

func (l *codeList) UnmarshalJSON(data []byte) error {
	items, err := decodeList(data)
	if err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// decodeList accepts an array, a bare scalar or null.
func decodeList(data []byte) ([]json.RawMessage, error) {
	if isNull(data) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return nil, fmt.Errorf("expected a list, got %s", truncate(data))
	}
	return []json.RawMessage{trimmed}, nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func truncate(data []byte) string {
	const limit = 32
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}

// errorLine maps a JSON syntax error offset to a 1-based line number.
func errorLine(data []byte, err error) int {
	var se *json.SyntaxError
	if !errors.As(err, &se) {
		return 0
	}
	offset := int(se.Offset)
	if offset > len(data) {
		offset = len(data)
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}

func curatedError(line int, err error) *DataLoadError {
	return &DataLoadError{
		Source: SourceCuratedIndex,
		Line:   line,
		Err:    fmt.Errorf("%w: %w", ErrMalformedCuratedIndex, err),
	}
}
