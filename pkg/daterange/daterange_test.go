package daterange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInclusiveRange(t *testing.T) {
	dates := Generate("2025-02-27", "2025-03-02")
	require.Equal(t, []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}, dates)
}

func TestGenerateSingleDay(t *testing.T) {
	assert.Equal(t, []string{"2025-03-02"}, Generate("2025-03-02", "2025-03-02"))
}

func TestGenerateInvalidInput(t *testing.T) {
	assert.Empty(t, Generate("", "2025-03-02"))
	assert.Empty(t, Generate("2025-03-02", ""))
	assert.Empty(t, Generate("not-a-date", "2025-03-02"))
	assert.Empty(t, Generate("2025-03-05", "2025-03-02"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "2025-03-02", Normalize("2025-03-02"))
	assert.Equal(t, "2025-03-02", Normalize("2025-03-02T09:30:00Z"))
	assert.Equal(t, "", Normalize("02/03/2025"))
	assert.Equal(t, "", Normalize(""))
}

func TestIsWeekend(t *testing.T) {
	// 2025-03-01 is a Saturday, 2025-03-02 a Sunday, 2025-03-03 a Monday.
	assert.True(t, IsWeekend("2025-03-01"))
	assert.True(t, IsWeekend("2025-03-02"))
	assert.False(t, IsWeekend("2025-03-03"))
	assert.True(t, IsWeekend("garbage"))
}

func TestWeekdaysExcludesWeekends(t *testing.T) {
	dates := Generate("2025-02-28", "2025-03-04")
	weekdays := Weekdays(dates)
	require.Equal(t, []string{"2025-02-28", "2025-03-03", "2025-03-04"}, weekdays)
	for _, d := range weekdays {
		assert.False(t, IsWeekend(d))
	}
}

func TestMonthGrid(t *testing.T) {
	dates := Generate("2025-02-27", "2025-03-03")
	grid := MonthGrid(dates)
	require.Len(t, grid, 2)

	feb := grid[0]
	assert.Equal(t, "February 2025", feb.Label)
	// 2025-02-01 is a Saturday.
	assert.Equal(t, 6, feb.Offset)
	require.Len(t, feb.Cells, 2)

	march := grid[1]
	assert.Equal(t, "March 2025", march.Label)
	require.Len(t, march.Cells, 3)
	assert.True(t, march.Cells[0].Weekend)
	assert.False(t, march.Cells[2].Weekend)
}

func TestMonthGridSkipsInvalidDates(t *testing.T) {
	grid := MonthGrid([]string{"2025-03-03", "bogus"})
	require.Len(t, grid, 1)
	assert.Len(t, grid[0].Cells, 1)
}
