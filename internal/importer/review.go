package importer

// FilterMode selects which bucket of validated rows the operator is reviewing
type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterWarnings FilterMode = "warnings"
	FilterErrors   FilterMode = "errors"
)

// ToggleFilter applies toggle semantics: clicking the active filter again
// returns to the full set
func ToggleFilter(current, clicked FilterMode) FilterMode {
	if clicked == current {
		return FilterAll
	}
	return clicked
}

// ApplyFilter partitions the working set without mutating it. Row order is
// preserved within each bucket.
func ApplyFilter(rows []ValidatedRow, mode FilterMode) []ValidatedRow {
	switch mode {
	case FilterWarnings:
		var out []ValidatedRow
		for _, row := range rows {
			if row.Valid && row.HasWarnings() {
				out = append(out, row)
			}
		}
		return out
	case FilterErrors:
		var out []ValidatedRow
		for _, row := range rows {
			if !row.Valid {
				out = append(out, row)
			}
		}
		return out
	default:
		return rows
	}
}

// ReviewCounts summarizes the working set for the review screen
type ReviewCounts struct {
	Total    int `json:"total"`
	Valid    int `json:"valid"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// CountRows tallies the valid/warning/error buckets
func CountRows(rows []ValidatedRow) ReviewCounts {
	counts := ReviewCounts{Total: len(rows)}
	for _, row := range rows {
		if row.Valid {
			counts.Valid++
			if row.HasWarnings() {
				counts.Warnings++
			}
		} else {
			counts.Errors++
		}
	}
	return counts
}
