package assets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseLinesSkipComments(t *testing.T) {
	lines, err := ExerciseLines()
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	for _, l := range lines {
		assert.False(t, strings.HasPrefix(l, "#"), l)
		assert.Contains(t, l, "|")
	}
}

func TestRegisterStylesheetIsIdempotent(t *testing.T) {
	a, err := RegisterStylesheet()
	require.NoError(t, err)
	b, err := RegisterStylesheet()
	require.NoError(t, err)
	assert.NotEmpty(t, a.Body)
	assert.Equal(t, a.ETag, b.ETag)
	assert.Same(t, &a.Body[0], &b.Body[0], "registered once, shared afterwards")
}
