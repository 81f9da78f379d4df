package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("village123")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("village123", hash))
	assert.False(t, CheckPasswordHash("village124", hash))
}

func TestValidatePasswordStrength(t *testing.T) {
	assert.NoError(t, ValidatePasswordStrength("abcdef12"))
	assert.ErrorIs(t, ValidatePasswordStrength("short1"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePasswordStrength("onlyletters"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePasswordStrength("12345678"), ErrWeakPassword)
}

func TestNormalizePage(t *testing.T) {
	page, size, limit, offset := NormalizePage(0, 0)
	assert.Equal(t, []int{1, DefaultPageSize, DefaultPageSize, 0}, []int{page, size, limit, offset})

	page, size, _, offset = NormalizePage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, size)
	assert.Equal(t, 2*MaxPageSize, offset)
}
