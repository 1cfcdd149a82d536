package service

import (
	"agency-crm/internal/config"
	"agency-crm/internal/importer"
	"agency-crm/internal/models"
	"agency-crm/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TaskAftercareActivate is the asynq task type for post-commit aftercare
// activation
const TaskAftercareActivate = "aftercare:activate"

// AftercareTaskPayload is the queued activation request
type AftercareTaskPayload struct {
	SessionID      int64                     `json:"session_id"`
	SessionCode    string                    `json:"session_code"`
	SaleIDs        []int64                   `json:"sale_ids"`
	TeamID         int                       `json:"team_id"`
	UserID         int                       `json:"user_id"`
	HistoricalMode models.HistoricalTaskMode `json:"historical_mode"`
}

// ImportDialog holds one operator's in-memory working set. Rows live only for
// the duration of the dialog; they are never persisted before commit.
type ImportDialog struct {
	Code      string
	Dialog    *importer.Dialog
	Table     *importer.Table
	Rows      []importer.ValidatedRow
	Filter    importer.FilterMode
	Options   models.AftercareImportOptions
	TeamID    int
	UserID    int
	SessionID int64
	Summary   *models.ImportSummary
}

var ErrDialogNotFound = errors.New("import dialog not found")

type ImportService struct {
	cfg         *config.Config
	saleStore   importer.SaleStore
	saleRepo    *repository.PastSaleRepository
	sessionRepo *repository.ImportSessionRepository
	fetcher     *importer.SheetFetcher
	redis       *redis.Client
	asynqClient *asynq.Client
	logger      *logrus.Logger

	mu      sync.Mutex
	dialogs map[string]*ImportDialog
}

func NewImportService(
	cfg *config.Config,
	saleRepo *repository.PastSaleRepository,
	sessionRepo *repository.ImportSessionRepository,
	redisClient *redis.Client,
	asynqClient *asynq.Client,
	logger *logrus.Logger,
) *ImportService {
	return &ImportService{
		cfg:         cfg,
		saleStore:   saleRepo,
		saleRepo:    saleRepo,
		sessionRepo: sessionRepo,
		fetcher:     importer.NewSheetFetcher(cfg.SheetFetchTimeout),
		redis:       redisClient,
		asynqClient: asynqClient,
		logger:      logger,
		dialogs:     make(map[string]*ImportDialog),
	}
}

// BeginFromFile parses an uploaded delimited file and moves the dialog to the
// preview step
func (s *ImportService) BeginFromFile(filename string, r io.Reader, teamID, userID int) (*ImportDialog, error) {
	table, err := importer.ParseFile(filename, r)
	if err != nil {
		return nil, err
	}
	return s.begin(table, filename, models.ImportSourceFile, teamID, userID)
}

// BeginFromSheet fetches a publicly shared spreadsheet and moves the dialog
// to the preview step
func (s *ImportService) BeginFromSheet(ctx context.Context, sheetURL string, teamID, userID int) (*ImportDialog, error) {
	table, err := s.fetcher.Fetch(ctx, sheetURL)
	if err != nil {
		return nil, err
	}
	return s.begin(table, sheetURL, models.ImportSourceSheet, teamID, userID)
}

func (s *ImportService) begin(table *importer.Table, source string, sourceType models.ImportSourceType, teamID, userID int) (*ImportDialog, error) {
	if len(table.Rows) > s.cfg.ImportMaxRows {
		return nil, &importer.ParseError{Reason: fmt.Sprintf("too many rows, the limit is %d", s.cfg.ImportMaxRows)}
	}

	rows := importer.ValidateAll(table.Rows)
	counts := importer.CountRows(rows)

	dialog := &ImportDialog{
		Code:   fmt.Sprintf("IMPORT-%s", uuid.New().String()[:8]),
		Dialog: importer.NewDialog(),
		Table:  table,
		Rows:   rows,
		Filter: importer.FilterAll,
		TeamID: teamID,
		UserID: userID,
	}
	if err := dialog.Dialog.To(importer.StepPreview); err != nil {
		return nil, err
	}

	session := &models.ImportSession{
		SessionCode:     dialog.Code,
		UserID:          userID,
		TeamID:          teamID,
		Filename:        source,
		SourceType:      sourceType,
		TotalRows:       counts.Total,
		ValidRows:       counts.Valid,
		WarningRows:     counts.Warnings,
		ErrorRows:       counts.Errors,
		Status:          "preview",
		AftercareStatus: "none",
	}
	if err := s.sessionRepo.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create import session: %w", err)
	}
	dialog.SessionID = session.ID

	s.mu.Lock()
	s.dialogs[dialog.Code] = dialog
	s.mu.Unlock()

	return dialog, nil
}

// Get returns an active dialog by its session code
func (s *ImportService) Get(code string) (*ImportDialog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dialog, ok := s.dialogs[code]
	if !ok {
		return nil, ErrDialogNotFound
	}
	return dialog, nil
}

// ToggleFilter applies filter toggle semantics and returns the visible rows
func (s *ImportService) ToggleFilter(code string, clicked importer.FilterMode) ([]importer.ValidatedRow, importer.FilterMode, error) {
	dialog, err := s.Get(code)
	if err != nil {
		return nil, "", err
	}

	dialog.Filter = importer.ToggleFilter(dialog.Filter, clicked)
	return importer.ApplyFilter(dialog.Rows, dialog.Filter), dialog.Filter, nil
}

// ToAftercare advances the dialog from preview to the aftercare options step
func (s *ImportService) ToAftercare(code string, opts models.AftercareImportOptions) error {
	dialog, err := s.Get(code)
	if err != nil {
		return err
	}

	if opts.ActivateAftercare && !opts.HistoricalMode.IsValid() {
		return fmt.Errorf("unrecognized historical task mode %q", opts.HistoricalMode)
	}

	if err := dialog.Dialog.To(importer.StepAftercare); err != nil {
		return err
	}
	dialog.Options = opts
	return nil
}

// Back steps from the aftercare screen to preview, the dialog's only legal
// backward edge
func (s *ImportService) Back(code string) error {
	dialog, err := s.Get(code)
	if err != nil {
		return err
	}
	return dialog.Dialog.Back()
}

// Commit persists the valid rows, publishes incremental progress, and queues
// aftercare activation when requested. Persistence failures are per-row; the
// batch always runs to the end.
func (s *ImportService) Commit(ctx context.Context, code string) (*models.ImportSummary, error) {
	dialog, err := s.Get(code)
	if err != nil {
		return nil, err
	}

	if err := dialog.Dialog.To(importer.StepImporting); err != nil {
		return nil, err
	}
	_ = s.sessionRepo.UpdateSessionStatus(dialog.SessionID, "importing")

	result := importer.Commit(dialog.Rows, dialog.TeamID, s.saleStore, func(percent int) {
		s.publishProgress(ctx, dialog.Code, percent)
	})

	for _, rowErr := range result.RowErrors {
		s.logger.WithField("session_code", dialog.Code).Warn("row persistence failed: " + rowErr)
	}

	counts := importer.CountRows(dialog.Rows)
	session := &models.ImportSession{
		ID:              dialog.SessionID,
		TotalRows:       counts.Total,
		ValidRows:       counts.Valid,
		WarningRows:     counts.Warnings,
		ErrorRows:       counts.Errors,
		SuccessfulRows:  result.Summary.Successful,
		FailedRows:      result.Summary.Failed,
		Status:          "completed",
		AftercareStatus: "none",
	}

	// Aftercare activation is an independent unit of failure: queued after the
	// commit, never able to roll it back
	if dialog.Options.ActivateAftercare && result.Summary.Successful > 0 {
		session.AftercareStatus = "queued"
		if err := s.enqueueAftercare(dialog, result.CommittedIDs); err != nil {
			s.logger.WithField("session_code", dialog.Code).WithError(err).Error("failed to queue aftercare activation")
			session.AftercareStatus = "failed"
		}
	}

	if err := s.sessionRepo.UpdateSession(session); err != nil {
		s.logger.WithField("session_code", dialog.Code).WithError(err).Error("failed to update import session")
	}

	if err := dialog.Dialog.To(importer.StepComplete); err != nil {
		return nil, err
	}
	dialog.Summary = &result.Summary

	return &result.Summary, nil
}

func (s *ImportService) enqueueAftercare(dialog *ImportDialog, saleIDs []int64) error {
	if s.asynqClient == nil {
		return errors.New("background job processing is not available")
	}

	payload, err := json.Marshal(AftercareTaskPayload{
		SessionID:      dialog.SessionID,
		SessionCode:    dialog.Code,
		SaleIDs:        saleIDs,
		TeamID:         dialog.TeamID,
		UserID:         dialog.UserID,
		HistoricalMode: dialog.Options.HistoricalMode,
	})
	if err != nil {
		return err
	}

	_, err = s.asynqClient.Enqueue(asynq.NewTask(TaskAftercareActivate, payload))
	return err
}

func (s *ImportService) publishProgress(ctx context.Context, code string, percent int) {
	// Progress reporting is best-effort; a missing Redis never fails a commit
	if s.redis == nil {
		return
	}
	key := fmt.Sprintf("import:progress:%s", code)
	s.redis.Set(ctx, key, strconv.Itoa(percent), 0)
}

// Progress reads the last published completion percentage
func (s *ImportService) Progress(ctx context.Context, code string) (int, error) {
	if s.redis == nil {
		return 0, errors.New("progress tracking is not available")
	}
	value, err := s.redis.Get(ctx, fmt.Sprintf("import:progress:%s", code)).Result()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// Close discards a dialog's working set; a new batch requires a new dialog
func (s *ImportService) Close(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dialogs, code)
}
