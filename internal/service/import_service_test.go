package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"agency-crm/internal/config"
	"agency-crm/internal/importer"
	"agency-crm/internal/models"
	"agency-crm/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "listing_address,status,lost_reason\n" +
	"3 Beach Parade,withdrawn,Owner relocated\n" +
	"45 Kauri Road,withdrawn,\n" +
	"8 Totara Street,,\n"

func newTestImportService(t *testing.T) (*ImportService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	cfg := &config.Config{
		ImportMaxRows:     5000,
		SheetFetchTimeout: time.Second,
	}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	svc := NewImportService(
		cfg,
		repository.NewPastSaleRepository(sqlxDB),
		repository.NewImportSessionRepository(sqlxDB),
		nil, // redis
		nil, // asynq
		logger,
	)
	return svc, mock
}

func TestBeginFromFileMovesToPreview(t *testing.T) {
	svc, mock := newTestImportService(t)
	mock.ExpectQuery("INSERT INTO import_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	dialog, err := svc.BeginFromFile("sales.csv", strings.NewReader(sampleCSV), 7, 3)

	require.NoError(t, err)
	assert.Equal(t, importer.StepPreview, dialog.Dialog.Step())
	assert.True(t, strings.HasPrefix(dialog.Code, "IMPORT-"))
	assert.Equal(t, int64(5), dialog.SessionID)

	counts := importer.CountRows(dialog.Rows)
	assert.Equal(t, importer.ReviewCounts{Total: 3, Valid: 2, Warnings: 1, Errors: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBeginFromFileRowLimit(t *testing.T) {
	svc, mock := newTestImportService(t)
	svc.cfg.ImportMaxRows = 2

	_, err := svc.BeginFromFile("sales.csv", strings.NewReader(sampleCSV), 7, 3)

	var parseErr *importer.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Reason, "too many rows")
	// No session is recorded for a rejected batch
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleFilterSemantics(t *testing.T) {
	svc, mock := newTestImportService(t)
	mock.ExpectQuery("INSERT INTO import_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	dialog, err := svc.BeginFromFile("sales.csv", strings.NewReader(sampleCSV), 7, 3)
	require.NoError(t, err)

	rows, mode, err := svc.ToggleFilter(dialog.Code, importer.FilterErrors)
	require.NoError(t, err)
	assert.Equal(t, importer.FilterErrors, mode)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].Line)

	// Clicking the active filter again restores the full set
	rows, mode, err = svc.ToggleFilter(dialog.Code, importer.FilterErrors)
	require.NoError(t, err)
	assert.Equal(t, importer.FilterAll, mode)
	assert.Len(t, rows, 3)
}

func TestToAftercareRejectsUnknownMode(t *testing.T) {
	svc, mock := newTestImportService(t)
	mock.ExpectQuery("INSERT INTO import_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	dialog, err := svc.BeginFromFile("sales.csv", strings.NewReader(sampleCSV), 7, 3)
	require.NoError(t, err)

	err = svc.ToAftercare(dialog.Code, models.AftercareImportOptions{
		ActivateAftercare: true,
		HistoricalMode:    "everything",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized historical task mode")
	assert.Equal(t, importer.StepPreview, dialog.Dialog.Step())
}

func TestBackReturnsToPreview(t *testing.T) {
	svc, mock := newTestImportService(t)
	mock.ExpectQuery("INSERT INTO import_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	dialog, err := svc.BeginFromFile("sales.csv", strings.NewReader(sampleCSV), 7, 3)
	require.NoError(t, err)

	require.NoError(t, svc.ToAftercare(dialog.Code, models.AftercareImportOptions{}))
	require.NoError(t, svc.Back(dialog.Code))
	assert.Equal(t, importer.StepPreview, dialog.Dialog.Step())

	// The working set survives the round trip
	require.NoError(t, svc.ToAftercare(dialog.Code, models.AftercareImportOptions{}))
	assert.Len(t, dialog.Rows, 3)
}

func TestCommitLifecycle(t *testing.T) {
	svc, mock := newTestImportService(t)
	mock.ExpectQuery("INSERT INTO import_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	dialog, err := svc.BeginFromFile("sales.csv", strings.NewReader(sampleCSV), 7, 3)
	require.NoError(t, err)
	require.NoError(t, svc.ToAftercare(dialog.Code, models.AftercareImportOptions{}))

	mock.ExpectExec("UPDATE import_sessions SET status").
		WithArgs("importing", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO past_sales").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
	mock.ExpectQuery("INSERT INTO past_sales").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(102))
	mock.ExpectExec("UPDATE import_sessions SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	summary, err := svc.Commit(context.Background(), dialog.Code)

	require.NoError(t, err)
	// The error row is excluded; the warned row commits and is tallied
	assert.Equal(t, models.ImportSummary{Successful: 2, Failed: 0, Warnings: 1}, *summary)
	assert.Equal(t, importer.StepComplete, dialog.Dialog.Step())
	assert.NoError(t, mock.ExpectationsWereMet())

	// A finished dialog cannot be committed twice
	_, err = svc.Commit(context.Background(), dialog.Code)
	assert.Error(t, err)
}

func TestProgressUnavailableWithoutRedis(t *testing.T) {
	svc, _ := newTestImportService(t)

	_, err := svc.Progress(context.Background(), "IMPORT-abc12345")

	assert.Error(t, err)
}

func TestCloseDiscardsDialog(t *testing.T) {
	svc, mock := newTestImportService(t)
	mock.ExpectQuery("INSERT INTO import_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	dialog, err := svc.BeginFromFile("sales.csv", strings.NewReader(sampleCSV), 7, 3)
	require.NoError(t, err)

	svc.Close(dialog.Code)

	_, err = svc.Get(dialog.Code)
	assert.ErrorIs(t, err, ErrDialogNotFound)
}

func TestGetUnknownDialog(t *testing.T) {
	svc, _ := newTestImportService(t)

	_, err := svc.Get("IMPORT-missing1")

	assert.ErrorIs(t, err, ErrDialogNotFound)
}
