package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jwara", "jwara"},
		{"KASA ROGA", "kasa roga"},
		{"ÉTAT", "état"},
		{"", ""},
		{"ज्वर", "ज्वर"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalize(tt.in), "normalize(%q)", tt.in)
	}
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny([]string{"cough", "kasa"}, "kas"))
	assert.False(t, containsAny([]string{"cough"}, "fever"))
	assert.False(t, containsAny(nil, ""))
}

func TestJoinCodes(t *testing.T) {
	assert.Equal(t, "", joinCodes(nil))
	assert.Equal(t, "MD30", joinCodes([]string{"MD30"}))
	assert.Equal(t, "MD31, MD32", joinCodes([]string{"MD31", "MD32"}))
}

func TestScoresValidate_Bounds(t *testing.T) {
	assert.NoError(t, DefaultScores().Validate())
	assert.NoError(t, Scores{}.Validate())
	assert.ErrorIs(t, Scores{CuratedExact: -0.1}.Validate(), ErrInvalidScores)
	assert.ErrorIs(t, Scores{Table: 1.01}.Validate(), ErrInvalidScores)
}
