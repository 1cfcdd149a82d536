package handler

import (
	"agency-crm/internal/config"
	"agency-crm/internal/importer"
	"agency-crm/internal/models"
	"agency-crm/internal/repository"
	"agency-crm/internal/service"
	"agency-crm/internal/utils"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
)

type ImportHandler struct {
	importService *service.ImportService
	sessionRepo   *repository.ImportSessionRepository
	cfg           *config.Config
}

func NewImportHandler(
	importService *service.ImportService,
	sessionRepo *repository.ImportSessionRepository,
	cfg *config.Config,
) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		sessionRepo:   sessionRepo,
		cfg:           cfg,
	}
}

// UploadFile starts an import dialog from an uploaded delimited file
func (h *ImportHandler) UploadFile(c *fiber.Ctx) error {
	teamID := c.Locals("team_id").(int)
	userID := c.Locals("user_id").(int)

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := filepath.Ext(file.Filename)
	if ext != ".csv" && ext != ".txt" && ext != ".xlsx" && ext != ".xls" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only .csv and .xlsx files are allowed", nil)
	}

	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	src, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read uploaded file", err)
	}
	defer src.Close()

	dialog, err := h.importService.BeginFromFile(file.Filename, src, teamID, userID)
	if err != nil {
		return acquisitionError(c, err)
	}

	return h.previewResponse(c, dialog, "File uploaded successfully")
}

type sheetImportRequest struct {
	URL string `json:"url"`
}

// ImportSheet starts an import dialog from a publicly shared spreadsheet URL
func (h *ImportHandler) ImportSheet(c *fiber.Ctx) error {
	teamID := c.Locals("team_id").(int)
	userID := c.Locals("user_id").(int)

	var req sheetImportRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.URL == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Sheet URL is required", nil)
	}

	dialog, err := h.importService.BeginFromSheet(c.Context(), req.URL, teamID, userID)
	if err != nil {
		return acquisitionError(c, err)
	}

	return h.previewResponse(c, dialog, "Sheet fetched successfully")
}

func (h *ImportHandler) previewResponse(c *fiber.Ctx, dialog *service.ImportDialog, message string) error {
	counts := importer.CountRows(dialog.Rows)
	return utils.SuccessResponse(c, message, fiber.Map{
		"session_code": dialog.Code,
		"step":         dialog.Dialog.Step(),
		"counts":       counts,
		"preview":      previewRows(dialog.Rows, 10),
	})
}

// GetRows returns the review working set, applying filter toggle semantics
func (h *ImportHandler) GetRows(c *fiber.Ctx) error {
	code := c.Params("code")
	clicked := importer.FilterMode(c.Query("filter", string(importer.FilterAll)))

	rows, active, err := h.importService.ToggleFilter(code, clicked)
	if err != nil {
		return dialogError(c, err)
	}

	dialog, err := h.importService.Get(code)
	if err != nil {
		return dialogError(c, err)
	}

	return utils.SuccessResponse(c, "Rows retrieved successfully", fiber.Map{
		"filter": active,
		"counts": importer.CountRows(dialog.Rows),
		"rows":   rows,
	})
}

// SetAftercareOptions records the aftercare policy and advances the dialog
func (h *ImportHandler) SetAftercareOptions(c *fiber.Ctx) error {
	code := c.Params("code")

	var opts models.AftercareImportOptions
	if err := c.BodyParser(&opts); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := h.importService.ToAftercare(code, opts); err != nil {
		return dialogError(c, err)
	}

	return utils.SuccessResponse(c, "Aftercare options saved", fiber.Map{
		"session_code": code,
		"options":      opts,
	})
}

// Back returns the dialog from the aftercare step to the preview
func (h *ImportHandler) Back(c *fiber.Ctx) error {
	code := c.Params("code")
	if err := h.importService.Back(code); err != nil {
		return dialogError(c, err)
	}
	return utils.SuccessResponse(c, "Returned to preview", fiber.Map{"session_code": code})
}

// Commit persists the valid rows and reports the aggregate summary
func (h *ImportHandler) Commit(c *fiber.Ctx) error {
	code := c.Params("code")

	summary, err := h.importService.Commit(c.Context(), code)
	if err != nil {
		return dialogError(c, err)
	}

	return utils.SuccessResponse(c, "Import completed", fiber.Map{
		"session_code": code,
		"summary":      summary,
	})
}

// GetProgress reports live commit progress for large batches
func (h *ImportHandler) GetProgress(c *fiber.Ctx) error {
	code := c.Params("code")

	percent, err := h.importService.Progress(c.Context(), code)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No progress recorded for this import", err)
	}

	return utils.SuccessResponse(c, "Progress retrieved", fiber.Map{
		"session_code": code,
		"progress":     percent,
	})
}

// CloseDialog discards the in-memory working set
func (h *ImportHandler) CloseDialog(c *fiber.Ctx) error {
	code := c.Params("code")
	h.importService.Close(code)
	return utils.SuccessResponse(c, "Import dialog closed", nil)
}

// GetSessions lists the team's past import sessions
func (h *ImportHandler) GetSessions(c *fiber.Ctx) error {
	teamID := c.Locals("team_id").(int)

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	sessions, total, err := h.sessionRepo.GetSessions(teamID, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve import sessions", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.PaginatedResponseBuilder(c, "Sessions retrieved successfully", fiber.Map{
		"sessions": sessions,
	}, pagination)
}

// DownloadTemplate serves the CSV import template
func (h *ImportHandler) DownloadTemplate(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="past_sales_template.csv"`)
	return c.Send(importer.TemplateCSV())
}

// DownloadTemplateXLSX serves the spreadsheet variant of the template
func (h *ImportHandler) DownloadTemplateXLSX(c *fiber.Ctx) error {
	filename := fmt.Sprintf("past_sales_template_%s.xlsx", time.Now().Format("20060102"))
	path := filepath.Join(h.cfg.UploadPath, filename)

	if err := importer.WriteTemplateXLSX(path); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate template", err)
	}

	return c.Download(path, "past_sales_template.xlsx")
}

func previewRows(rows []importer.ValidatedRow, limit int) []importer.ValidatedRow {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

// acquisitionError maps source failures onto user-facing responses, keeping
// "nothing found" / "malformed format" / "sharing problem" distinguishable
func acquisitionError(c *fiber.Ctx, err error) error {
	var parseErr *importer.ParseError
	if errors.As(err, &parseErr) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Could not read the source", err)
	}
	var fetchErr *importer.FetchError
	if errors.As(err, &fetchErr) {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Could not fetch the sheet", err)
	}
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Import failed", err)
}

func dialogError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrDialogNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Import dialog not found", err)
	}
	return utils.ErrorResponse(c, fiber.StatusBadRequest, "Import step not allowed", err)
}
