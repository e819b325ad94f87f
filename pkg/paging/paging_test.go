package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceWindows(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page1, meta := Slice(items, 1, 3)
	require.Equal(t, []int{1, 2, 3}, page1)
	assert.Equal(t, 1, meta.From)
	assert.Equal(t, 3, meta.To)
	assert.Equal(t, 3, meta.LastPage)

	page3, meta := Slice(items, 3, 3)
	require.Equal(t, []int{7}, page3)
	assert.Equal(t, 7, meta.From)
	assert.Equal(t, 7, meta.To)
}

func TestSliceOutOfRangePage(t *testing.T) {
	items := []int{1, 2}
	window, meta := Slice(items, 5, 10)
	assert.Empty(t, window)
	assert.Equal(t, 0, meta.From)
	assert.Equal(t, 0, meta.To)
	assert.Equal(t, 2, meta.Total)
}

func TestSliceEmptyInput(t *testing.T) {
	window, meta := Slice([]string{}, 1, 10)
	assert.Empty(t, window)
	assert.Equal(t, 0, meta.From)
	assert.Equal(t, 0, meta.To)
	assert.Equal(t, 1, meta.LastPage)
}

func TestSliceShowAll(t *testing.T) {
	items := []int{1, 2, 3}
	window, meta := Slice(items, 4, ShowAll)
	require.Equal(t, items, window)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 1, meta.From)
	assert.Equal(t, 3, meta.To)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(2, 5, 500, 10))
	assert.Equal(t, 500, Clamp(1000, 5, 500, 10))
	assert.Equal(t, 42, Clamp(42, 5, 500, 10))
	assert.Equal(t, 10, Clamp(0, 5, 500, 10))
	assert.Equal(t, ShowAll, Clamp(ShowAll, 5, 500, 10))
}

func TestOptions(t *testing.T) {
	assert.Nil(t, Options(0))
	assert.Equal(t, []int{ShowAll}, Options(3))
	assert.Equal(t, []int{5, 10, ShowAll}, Options(12))
	assert.Equal(t, []int{5, 10, 25, 50, 100, 250, 500, ShowAll}, Options(1000))
}
