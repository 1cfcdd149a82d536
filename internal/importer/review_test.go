package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewFixture() []ValidatedRow {
	return []ValidatedRow{
		{Line: 2, Valid: true},
		{Line: 3, Valid: true, Issues: []Issue{{Severity: SeverityWarning, Field: ColLostReason, Message: "empty"}}},
		{Line: 4, Valid: false, Issues: []Issue{{Severity: SeverityError, Field: ColStatus, Message: "missing"}}},
		{Line: 5, Valid: true},
		{Line: 6, Valid: false, Issues: []Issue{
			{Severity: SeverityError, Field: ColAddress, Message: "missing"},
			{Severity: SeverityWarning, Field: ColAppraisalValueLow, Message: "suspicious"},
		}},
	}
}

func TestToggleFilter(t *testing.T) {
	assert.Equal(t, FilterWarnings, ToggleFilter(FilterAll, FilterWarnings))
	assert.Equal(t, FilterErrors, ToggleFilter(FilterWarnings, FilterErrors))
	// Clicking the active filter clears it
	assert.Equal(t, FilterAll, ToggleFilter(FilterWarnings, FilterWarnings))
	assert.Equal(t, FilterAll, ToggleFilter(FilterErrors, FilterErrors))
}

func TestApplyFilterWarnings(t *testing.T) {
	rows := ApplyFilter(reviewFixture(), FilterWarnings)

	// Only valid rows with warnings; rows with errors belong to the error bucket
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Line)
}

func TestApplyFilterErrors(t *testing.T) {
	rows := ApplyFilter(reviewFixture(), FilterErrors)

	require.Len(t, rows, 2)
	assert.Equal(t, 4, rows[0].Line)
	assert.Equal(t, 6, rows[1].Line)
}

func TestApplyFilterAllPreservesOrder(t *testing.T) {
	fixture := reviewFixture()

	rows := ApplyFilter(fixture, FilterAll)

	require.Len(t, rows, len(fixture))
	for i := range fixture {
		assert.Equal(t, fixture[i].Line, rows[i].Line)
	}
}

func TestCountRows(t *testing.T) {
	counts := CountRows(reviewFixture())

	assert.Equal(t, ReviewCounts{Total: 5, Valid: 3, Warnings: 1, Errors: 2}, counts)
}
