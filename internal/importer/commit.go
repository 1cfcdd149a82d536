package importer

import (
	"agency-crm/internal/models"
)

// SaleStore persists one past-sale record for a team. Implemented by the
// past-sale repository; narrowed to an interface so the commit loop is
// testable without a database.
type SaleStore interface {
	CreateForTeam(sale *models.PastSale, teamID int) error
}

// ProgressFunc receives the whole-percent completion after each row
type ProgressFunc func(percent int)

// CommitResult pairs the aggregate summary with the IDs of the committed
// records, which the aftercare activation needs
type CommitResult struct {
	Summary      models.ImportSummary
	CommittedIDs []int64
	RowErrors    []string
}

// Commit persists every valid row. A persistence failure on one row is
// counted and logged into RowErrors but never aborts the remainder; warned
// rows are committed and counted in Summary.Warnings.
func Commit(rows []ValidatedRow, teamID int, store SaleStore, progress ProgressFunc) CommitResult {
	var result CommitResult

	valid := make([]ValidatedRow, 0, len(rows))
	for _, row := range rows {
		if row.Valid {
			valid = append(valid, row)
		}
	}

	for i, row := range valid {
		sale := row.Record
		sale.TeamID = teamID

		if err := store.CreateForTeam(&sale, teamID); err != nil {
			result.Summary.Failed++
			result.RowErrors = append(result.RowErrors, err.Error())
		} else {
			result.Summary.Successful++
			if row.HasWarnings() {
				result.Summary.Warnings++
			}
			result.CommittedIDs = append(result.CommittedIDs, sale.ID)
		}

		if progress != nil {
			progress((i + 1) * 100 / len(valid))
		}
	}

	return result
}
