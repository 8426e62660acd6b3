package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate("tok")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}
	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	id, err := Generate("tok")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "tok-"))
	// NanoID default is 21 characters.
	assert.Len(t, strings.TrimPrefix(id, "tok-"), 21)
}

func TestCode(t *testing.T) {
	seen := make(map[string]bool)
	for range 200 {
		code, err := Code()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(CodeAlphabet, r), "unexpected rune %q in %s", r, code)
		}
		seen[code] = true
	}
	assert.Len(t, seen, 200)
}
