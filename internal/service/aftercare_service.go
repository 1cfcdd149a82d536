package service

import (
	"agency-crm/internal/models"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	recentMaxAgeDays = 365  // < 1 year: full-length default plan
	legacyMinAgeDays = 3650 // > 10 years: rolling evergreen plan
)

// AftercareStore persists plans and tasks and loads templates
type AftercareStore interface {
	GetDefaultTemplate(teamID int) (*models.AftercareTemplate, error)
	GetEvergreenTemplate(teamID int) (*models.AftercareTemplate, error)
	CreatePlan(plan *models.AftercarePlan) error
	CreateTask(task *models.AftercareTask) error
}

// SaleLoader loads committed sales for a batch activation
type SaleLoader interface {
	FindByIDs(ids []int64) ([]models.PastSale, error)
}

type AftercareService struct {
	store  AftercareStore
	sales  SaleLoader
	logger *logrus.Logger
	now    func() time.Time
}

func NewAftercareService(store AftercareStore, sales SaleLoader, logger *logrus.Logger) *AftercareService {
	return &AftercareService{
		store:  store,
		sales:  sales,
		logger: logger,
		now:    time.Now,
	}
}

// Classify buckets a settlement date by its age at the reference time
func Classify(settlement, now time.Time) models.AftercareClassification {
	ageDays := int(now.Sub(settlement).Hours() / 24)
	switch {
	case ageDays < recentMaxAgeDays:
		return models.AftercareRecent
	case ageDays > legacyMinAgeDays:
		return models.AftercareLegacy
	default:
		return models.AftercareHistorical
	}
}

// Activate creates aftercare plans for a batch of committed sales. Per-sale
// failures are logged and skipped; the batch never rolls back committed
// records.
func (s *AftercareService) Activate(saleIDs []int64, opts models.AftercareImportOptions, teamID, userID int) (*models.AftercareResult, error) {
	sales, err := s.sales.FindByIDs(saleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load committed sales: %w", err)
	}

	defaultTemplate, err := s.store.GetDefaultTemplate(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load aftercare template: %w", err)
	}
	evergreenTemplate, err := s.store.GetEvergreenTemplate(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load evergreen template: %w", err)
	}

	now := s.now()
	result := &models.AftercareResult{}

	for _, sale := range sales {
		// Withdrawn rows have no settlement date; nothing to schedule
		if sale.SettlementDate == nil {
			continue
		}

		if err := s.activateSale(sale, opts, teamID, userID, defaultTemplate, evergreenTemplate, now, result); err != nil {
			s.logger.WithFields(logrus.Fields{
				"past_sale_id": sale.ID,
				"address":      sale.Address,
			}).WithError(err).Warn("aftercare activation failed for sale, continuing batch")
		}
	}

	return result, nil
}

func (s *AftercareService) activateSale(
	sale models.PastSale,
	opts models.AftercareImportOptions,
	teamID, userID int,
	defaultTemplate, evergreenTemplate *models.AftercareTemplate,
	now time.Time,
	result *models.AftercareResult,
) error {
	classification := Classify(*sale.SettlementDate, now)

	if classification == models.AftercareLegacy {
		return s.activateEvergreen(sale, teamID, userID, evergreenTemplate, now, result)
	}

	plan := &models.AftercarePlan{
		PastSaleID:     sale.ID,
		TemplateID:     defaultTemplate.ID,
		TeamID:         teamID,
		UserID:         userID,
		Classification: classification,
		Status:         "active",
	}
	if err := s.store.CreatePlan(plan); err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	result.PlansActivated++

	for _, templateTask := range defaultTemplate.Tasks {
		dueDate := sale.SettlementDate.AddDate(0, 0, templateTask.OffsetDays)
		task := &models.AftercareTask{
			PlanID:  plan.ID,
			Title:   templateTask.Title,
			DueDate: dueDate,
		}

		// historicalMode governs only tasks already past due at commit time
		if dueDate.Before(now) {
			switch opts.HistoricalMode {
			case models.HistoricalTaskSkip:
				task.Historical = true
			case models.HistoricalTaskComplete:
				task.Completed = true
			case models.HistoricalTaskInclude:
				// created in its normal overdue state
			}
		}

		if err := s.store.CreateTask(task); err != nil {
			return fmt.Errorf("failed to create task %q: %w", task.Title, err)
		}
		result.TasksCreated++
		if task.Historical {
			result.TasksMarkedHistorical++
		}
	}

	return nil
}

// activateEvergreen replaces the fixed-length plan with a rolling annual
// check-in anchored to the next settlement anniversary
func (s *AftercareService) activateEvergreen(
	sale models.PastSale,
	teamID, userID int,
	template *models.AftercareTemplate,
	now time.Time,
	result *models.AftercareResult,
) error {
	plan := &models.AftercarePlan{
		PastSaleID:     sale.ID,
		TemplateID:     template.ID,
		TeamID:         teamID,
		UserID:         userID,
		Classification: models.AftercareLegacy,
		Evergreen:      true,
		Status:         "active",
	}
	if err := s.store.CreatePlan(plan); err != nil {
		return fmt.Errorf("failed to create evergreen plan: %w", err)
	}
	result.PlansActivated++
	result.EvergreenPlansCreated++

	anchor := nextAnniversary(*sale.SettlementDate, now)
	for _, templateTask := range template.Tasks {
		task := &models.AftercareTask{
			PlanID:  plan.ID,
			Title:   templateTask.Title,
			DueDate: anchor.AddDate(0, 0, templateTask.OffsetDays),
		}
		if err := s.store.CreateTask(task); err != nil {
			return fmt.Errorf("failed to create evergreen task %q: %w", task.Title, err)
		}
		result.TasksCreated++
	}

	return nil
}

// nextAnniversary returns the first settlement anniversary after the
// reference time
func nextAnniversary(settlement, now time.Time) time.Time {
	anniversary := settlement.AddDate(now.Year()-settlement.Year(), 0, 0)
	if !anniversary.After(now) {
		anniversary = anniversary.AddDate(1, 0, 0)
	}
	return anniversary
}
