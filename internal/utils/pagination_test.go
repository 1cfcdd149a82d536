package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePagination(t *testing.T) {
	meta := CalculatePagination(2, 25, 60)

	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 3, meta.LastPage)
	assert.Equal(t, 26, meta.From)
	assert.Equal(t, 50, meta.To)
	assert.True(t, meta.HasMore)
}

func TestCalculatePaginationEmpty(t *testing.T) {
	meta := CalculatePagination(1, 25, 0)

	assert.Equal(t, 0, meta.From)
	assert.Equal(t, 0, meta.To)
	assert.False(t, meta.HasMore)
}

func TestGetOffset(t *testing.T) {
	assert.Equal(t, 0, GetOffset(1, 25))
	assert.Equal(t, 50, GetOffset(3, 25))
}
