package source

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/tm2map/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadTermTable(t *testing.T) {
	input := "id,term,category,synonyms,icd11_tm2_code\n" +
		"NAM001,Jwara,Disease,Fever,MG26\n" +
		"NAM003,Atisara,Disease,\"Diarrhoea, loose stools\",\n" +
		"NAM004,Kampa,Symptom,NaN,NA\n"

	records, err := ReadTermTable(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, core.TermRecord{
		ID: "NAM001", Term: "Jwara", Category: "Disease", Synonyms: "Fever", TargetCode: "MG26",
	}, records[0])
	assert.Equal(t, "Diarrhoea, loose stools", records[1].Synonyms)
	assert.False(t, records[1].Mapped())
	assert.Empty(t, records[2].Synonyms)
	assert.Empty(t, records[2].TargetCode)
}

func TestReadTermTable_HeaderHandling(t *testing.T) {
	t.Run("columns in any order with BOM and case", func(t *testing.T) {
		input := "\ufeffICD11_TM2_Code, Term ,ID\nMG26,Jwara,NAM001\n"
		records, err := ReadTermTable(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "NAM001", records[0].ID)
		assert.Equal(t, "Jwara", records[0].Term)
		assert.Equal(t, "MG26", records[0].TargetCode)
		assert.Empty(t, records[0].Synonyms)
	})

	t.Run("extra columns are ignored", func(t *testing.T) {
		input := "id,term,source\nNAM001,Jwara,Ayurveda\n"
		records, err := ReadTermTable(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
	})

	t.Run("header only is an empty table", func(t *testing.T) {
		records, err := ReadTermTable(strings.NewReader("id,term,category,synonyms,icd11_tm2_code\n"))
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})
}

func TestReadTermTable_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantLine int
	}{
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrMalformedTermTable,
		},
		{
			name:     "missing id column",
			input:    "term,synonyms\nJwara,Fever\n",
			wantErr:  ErrMissingColumn,
			wantLine: 1,
		},
		{
			name:     "missing term column",
			input:    "id,synonyms\nNAM001,Fever\n",
			wantErr:  ErrMissingColumn,
			wantLine: 1,
		},
		{
			name:     "row without id",
			input:    "id,term\nNAM001,Jwara\n,Kasa\n",
			wantErr:  ErrMissingID,
			wantLine: 3,
		},
		{
			name:     "ragged row",
			input:    "id,term,synonyms\nNAM001,Jwara\n",
			wantErr:  ErrMalformedTermTable,
			wantLine: 2,
		},
		{
			name:     "unterminated quote",
			input:   "id,term\nNAM001,\"Jwara\n",
			wantErr: ErrMalformedTermTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ReadTermTable(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, records)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var dle *DataLoadError
			require.ErrorAs(t, err, &dle)
			assert.Equal(t, SourceTermTable, dle.Source)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, dle.Line)
			}
		})
	}
}

func TestReadTermTableXLSX(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"id", "term", "category", "synonyms", "icd11_tm2_code"},
		{"NAM001", "Jwara", "Disease", "Fever", "MG26"},
		{},
		{"NAM003", "Atisara", "Disease", "Diarrhoea"},
	})

	records, err := ReadTermTableXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "MG26", records[0].TargetCode)
	assert.Equal(t, "NAM003", records[1].ID)
	assert.Empty(t, records[1].TargetCode)
}

func TestReadTermTableXLSX_Malformed(t *testing.T) {
	t.Run("not a workbook", func(t *testing.T) {
		_, err := ReadTermTableXLSX(strings.NewReader("id,term\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedTermTable)
	})

	t.Run("missing id in row", func(t *testing.T) {
		data := buildWorkbook(t, [][]any{
			{"id", "term"},
			{"", "Jwara"},
		})
		_, err := ReadTermTableXLSX(bytes.NewReader(data))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingID)

		var dle *DataLoadError
		require.ErrorAs(t, err, &dle)
		assert.Equal(t, 2, dle.Line)
	})
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"id", "term", "category", "synonyms", "icd11_tm2_code"}, Columns())
}

// buildWorkbook writes rows into the first sheet of a new workbook.
func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
