package source

import (
	"strings"
	"testing"

	"github.com/poiesic/tm2map/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCuratedIndex(t *testing.T) {
	input := `{
		"exact": [{"code": "NAM010", "label": "Vata", "synonyms": [], "icd11_tm2_codes": ["SR00"]}],
		"partial": [
			{"code": "NAM002", "label": "Kasa", "synonyms": ["Cough"], "icd11_tm2_codes": ["MD30"]},
			{"code": "NAM005", "label": "Shotha", "synonyms": ["Swelling", "Oedema"], "icd11_tm2_codes": []}
		]
	}`

	index, err := ReadCuratedIndex(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, index.Exact, 1)
	require.Len(t, index.Partial, 2)

	assert.Equal(t, core.CuratedEntry{
		Code: "NAM002", Label: "Kasa", Synonyms: []string{"Cough"}, TargetCodes: []string{"MD30"},
	}, index.Partial[0])
	assert.Empty(t, index.Partial[1].TargetCodes)
}

func TestReadCuratedIndex_Tolerant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, index core.CuratedIndex)
	}{
		{
			name:  "missing buckets",
			input: `{}`,
			check: func(t *testing.T, index core.CuratedIndex) {
				assert.NotNil(t, index.Exact)
				assert.NotNil(t, index.Partial)
				assert.Empty(t, index.Partial)
			},
		},
		{
			name:  "null bucket",
			input: `{"partial": null}`,
			check: func(t *testing.T, index core.CuratedIndex) {
				assert.Empty(t, index.Partial)
			},
		},
		{
			name:  "missing lists",
			input: `{"partial": [{"code": "NAM002", "label": "Kasa"}]}`,
			check: func(t *testing.T, index core.CuratedIndex) {
				require.Len(t, index.Partial, 1)
				assert.Empty(t, index.Partial[0].Synonyms)
				assert.Empty(t, index.Partial[0].TargetCodes)
			},
		},
		{
			name:  "non-string list elements",
			input: `{"partial": [{"code": "NAM002", "label": "Kasa", "synonyms": ["Cough", 7, null], "icd11_tm2_codes": [1, "MD30"]}]}`,
			check: func(t *testing.T, index core.CuratedIndex) {
				require.Len(t, index.Partial, 1)
				assert.Equal(t, []string{"Cough", "", ""}, index.Partial[0].Synonyms)
				assert.Equal(t, []string{"MD30"}, index.Partial[0].TargetCodes)
			},
		},
		{
			name:  "bare string lists and numeric code",
			input: `{"partial": [{"code": 42, "label": "Kasa", "synonyms": "Cough", "icd11_tm2_codes": "MD30"}]}`,
			check: func(t *testing.T, index core.CuratedIndex) {
				require.Len(t, index.Partial, 1)
				assert.Equal(t, "42", index.Partial[0].Code)
				assert.Equal(t, []string{"Cough"}, index.Partial[0].Synonyms)
				assert.Equal(t, []string{"MD30"}, index.Partial[0].TargetCodes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, err := ReadCuratedIndex(strings.NewReader(tt.input))
			require.NoError(t, err)
			tt.check(t, index)
		})
	}
}

func TestReadCuratedIndex_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{name: "empty document", input: ""},
		{name: "syntax error", input: "{\n\"partial\": [\n{\"code\": }\n]}", wantLine: 3},
		{name: "array document", input: `[]`},
		{name: "null document", input: `null`},
		{name: "bucket is not a list", input: `{"partial": {"code": "NAM002"}}`},
		{name: "entry is not an object", input: `{"partial": ["NAM002"]}`},
		{name: "synonyms is an object", input: `{"partial": [{"code": "NAM002", "synonyms": {"a": 1}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCuratedIndex(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedCuratedIndex)

			var dle *DataLoadError
			require.ErrorAs(t, err, &dle)
			assert.Equal(t, SourceCuratedIndex, dle.Source)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, dle.Line)
			}
		})
	}
}
