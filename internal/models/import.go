package models

import "time"

// ImportSourceType identifies where the raw rows came from
type ImportSourceType string

const (
	ImportSourceFile  ImportSourceType = "file"
	ImportSourceSheet ImportSourceType = "sheet"
)

// ImportSession tracks one past-sales import from upload to completion
type ImportSession struct {
	ID          int64            `db:"id" json:"id"`
	SessionCode string           `db:"session_code" json:"session_code"`
	UserID      int              `db:"user_id" json:"user_id"`
	TeamID      int              `db:"team_id" json:"team_id"`
	Filename    string           `db:"filename" json:"filename"`
	SourceType  ImportSourceType `db:"source_type" json:"source_type"`

	TotalRows      int `db:"total_rows" json:"total_rows"`
	ValidRows      int `db:"valid_rows" json:"valid_rows"`
	WarningRows    int `db:"warning_rows" json:"warning_rows"`
	ErrorRows      int `db:"error_rows" json:"error_rows"`
	SuccessfulRows int `db:"successful_rows" json:"successful_rows"`
	FailedRows     int `db:"failed_rows" json:"failed_rows"`

	Status       string `db:"status" json:"status"`
	ErrorMessage string `db:"error_message" json:"error_message"`

	AftercareStatus string `db:"aftercare_status" json:"aftercare_status"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ImportSummary holds the aggregate outcome of a commit
type ImportSummary struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Warnings   int `json:"warnings"`
}

// HistoricalTaskMode governs aftercare tasks whose due date is already in the past
type HistoricalTaskMode string

const (
	HistoricalTaskSkip     HistoricalTaskMode = "skip"
	HistoricalTaskComplete HistoricalTaskMode = "complete"
	HistoricalTaskInclude  HistoricalTaskMode = "include"
)

// IsValid checks if a historical task mode is recognized
func (m HistoricalTaskMode) IsValid() bool {
	return m == HistoricalTaskSkip || m == HistoricalTaskComplete || m == HistoricalTaskInclude
}

// AftercareImportOptions is the operator-selected aftercare policy for an import
type AftercareImportOptions struct {
	ActivateAftercare bool               `json:"activate_aftercare"`
	HistoricalMode    HistoricalTaskMode `json:"historical_mode"`
}
