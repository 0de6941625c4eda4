package wolfi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePackagesPassesWhenAllKnown(t *testing.T) {
	idx := fakeIndex("nodejs-20", "go")
	err := idx.ValidatePackages([]string{"nodejs-20", "go"})
	assert.NoError(t, err)
}

func TestValidatePackagesReportsUnknownWithSuggestions(t *testing.T) {
	idx := fakeIndex("nodejs-20", "nodejs-22", "go")
	err := idx.ValidatePackages([]string{"go", "nodejs-21"})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Unknown, 1)
	assert.Equal(t, "nodejs-21", verr.Unknown[0].Package)
	assert.Contains(t, verr.Unknown[0].Suggestions, "nodejs-20")
	assert.Contains(t, verr.Unknown[0].Suggestions, "nodejs-22")
}

func TestValidationErrorMessageListsEachUnknownPackage(t *testing.T) {
	err := &ValidationError{Unknown: []UnknownPackage{
		{Package: "rust-nightly", Suggestions: []string{"rust"}},
	}}
	assert.Contains(t, err.Error(), "rust-nightly")
	assert.Contains(t, err.Error(), "did you mean: rust?")
}

func TestDamerauLevenshteinHandlesTransposition(t *testing.T) {
	assert.Equal(t, 0, damerauLevenshtein("nodejs", "nodejs"))
	assert.Equal(t, 1, damerauLevenshtein("nodejs", "nodjes")) // transposed "js"/"je"... adjacent swap
	assert.Equal(t, 1, damerauLevenshtein("go", "gp"))
}

func TestSuggestPrefersStemVersionsOverFuzzyMatches(t *testing.T) {
	idx := fakeIndex("nodejs-18", "nodejs-20", "go")
	suggestions := idx.Suggest("nodejs-19")
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "nodejs-20", suggestions[0], "stem versions come first, highest first")
	assert.Contains(t, suggestions, "nodejs-18")
}
