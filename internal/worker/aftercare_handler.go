package worker

import (
	"agency-crm/internal/config"
	"agency-crm/internal/models"
	"agency-crm/internal/repository"
	"agency-crm/internal/service"
	"agency-crm/internal/utils"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// TaskAftercareActivate mirrors the type the import service enqueues
const TaskAftercareActivate = service.TaskAftercareActivate

type AftercareTaskHandler struct {
	db               *sqlx.DB
	redis            *redis.Client
	cfg              *config.Config
	aftercareService *service.AftercareService
	sessionRepo      *repository.ImportSessionRepository
}

func NewAftercareTaskHandler(db *sqlx.DB, redis *redis.Client, cfg *config.Config) *AftercareTaskHandler {
	saleRepo := repository.NewPastSaleRepository(db)
	aftercareRepo := repository.NewAftercareRepository(db)
	sessionRepo := repository.NewImportSessionRepository(db)

	aftercareService := service.NewAftercareService(aftercareRepo, saleRepo, utils.GetLogger())

	return &AftercareTaskHandler{
		db:               db,
		redis:            redis,
		cfg:              cfg,
		aftercareService: aftercareService,
		sessionRepo:      sessionRepo,
	}
}

// Handle runs one queued aftercare activation. Failures here are logged and
// recorded on the session; they never touch the already-committed sale rows.
func (h *AftercareTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload service.AftercareTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.Printf("Starting aftercare activation for import %s (%d sales)", payload.SessionCode, len(payload.SaleIDs))

	opts := models.AftercareImportOptions{
		ActivateAftercare: true,
		HistoricalMode:    payload.HistoricalMode,
	}

	result, err := h.aftercareService.Activate(payload.SaleIDs, opts, payload.TeamID, payload.UserID)
	if err != nil {
		log.Printf("Aftercare activation failed for import %s: %v", payload.SessionCode, err)
		if updateErr := h.sessionRepo.UpdateAftercareStatus(payload.SessionID, "failed"); updateErr != nil {
			log.Printf("Failed to record aftercare failure for import %s: %v", payload.SessionCode, updateErr)
		}
		// The import itself already committed; do not requeue
		return nil
	}

	if err := h.sessionRepo.UpdateAftercareStatus(payload.SessionID, "completed"); err != nil {
		log.Printf("Failed to record aftercare completion for import %s: %v", payload.SessionCode, err)
	}

	log.Printf("Aftercare activation completed for import %s. Plans: %d, Tasks: %d, Historical: %d, Evergreen: %d",
		payload.SessionCode, result.PlansActivated, result.TasksCreated,
		result.TasksMarkedHistorical, result.EvergreenPlansCreated)

	return nil
}
