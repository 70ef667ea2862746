package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/tm2map/core"
	"github.com/xuri/excelize/v2"
)

// Term table column names.
const (
	ColumnID         = "id"
	ColumnTerm       = "term"
	ColumnCategory   = "category"
	ColumnSynonyms   = "synonyms"
	ColumnTargetCode = "icd11_tm2_code"
)

type column struct {
	name     string
	required bool
}

// termTableSchema lists the recognised columns in their canonical order.
var termTableSchema = []column{
	{name: ColumnID, required: true},
	{name: ColumnTerm, required: true},
	{name: ColumnCategory},
	{name: ColumnSynonyms},
	{name: ColumnTargetCode},
}

// Columns returns the term table header in canonical order.
func Columns() []string {
	names := make([]string, len(termTableSchema))
	for i, c := range termTableSchema {
		names[i] = c.name
	}
	return names
}

// ReadTermTable parses a CSV term table.
func ReadTermTable(r io.Reader) ([]core.TermRecord, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, termTableError(0, fmt.Errorf("%w: no header row", ErrMalformedTermTable))
		}
		return nil, csvError(err)
	}

	b, err := newTableBuilder(header)
	if err != nil {
		return nil, err
	}
	// Every row must have as many fields as the header.
	cr.FieldsPerRecord = len(header)

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := cr.FieldPos(0)
		if err := b.add(row, line); err != nil {
			return nil, err
		}
	}

	return b.records, nil
}

// ReadTermTableXLSX parses a term table from the first sheet of an XLSX workbook.
func ReadTermTableXLSX(r io.Reader) ([]core.TermRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, termTableError(0, fmt.Errorf("%w: %w", ErrMalformedTermTable, err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, termTableError(0, fmt.Errorf("%w: workbook has no sheets", ErrMalformedTermTable))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, termTableError(0, fmt.Errorf("%w: %w", ErrMalformedTermTable, err))
	}
	if len(rows) == 0 {
		return nil, termTableError(0, fmt.Errorf("%w: no header row", ErrMalformedTermTable))
	}

	b, err := newTableBuilder(rows[0])
	if err != nil {
		return nil, err
	}
	for i, row := range rows[1:] {
		// GetRows trims trailing empty cells and keeps blank rows
		if isBlankRow(row) {
			continue
		}
		if err := b.add(row, i+2); err != nil {
			return nil, err
		}
	}

	return b.records, nil
}

// tableBuilder maps raw rows onto TermRecords through a bound header.
type tableBuilder struct {
	index   map[string]int
	records []core.TermRecord
}

func newTableBuilder(header []string) (*tableBuilder, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	for _, c := range termTableSchema {
		if _, ok := index[c.name]; c.required && !ok {
			return nil, termTableError(1, fmt.Errorf("%w: %w: %q", ErrMalformedTermTable, ErrMissingColumn, c.name))
		}
	}

	return &tableBuilder{index: index, records: []core.TermRecord{}}, nil
}

func (b *tableBuilder) add(row []string, line int) error {
	record := core.TermRecord{
		ID:         b.cell(row, ColumnID),
		Term:       b.cell(row, ColumnTerm),
		Category:   b.cell(row, ColumnCategory),
		Synonyms:   b.cell(row, ColumnSynonyms),
		TargetCode: b.cell(row, ColumnTargetCode),
	}
	if record.ID == "" {
		return termTableError(line, fmt.Errorf("%w: %w", ErrMalformedTermTable, ErrMissingID))
	}
	b.records = append(b.records, record)
	return nil
}

// cell returns the trimmed value of a column, or "" when the column is
// absent or the cell holds a missing-value sentinel.
func (b *tableBuilder) cell(row []string, name string) string {
	i, ok := b.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	if core.IsMissingValue(row[i]) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return termTableError(pe.Line, fmt.Errorf("%w: %w", ErrMalformedTermTable, pe.Err))
	}
	return termTableError(0, fmt.Errorf("%w: %w", ErrMalformedTermTable, err))
}

func termTableError(line int, err error) *DataLoadError {
	return &DataLoadError{Source: SourceTermTable, Line: line, Err: err}
}
