package repository

import (
	"agency-crm/internal/models"

	"github.com/jmoiron/sqlx"
)

type AftercareRepository struct {
	db *sqlx.DB
}

func NewAftercareRepository(db *sqlx.DB) *AftercareRepository {
	return &AftercareRepository{db: db}
}

// GetDefaultTemplate loads the team's fixed-length aftercare template, falling
// back to the shared template (team_id = 0)
func (r *AftercareRepository) GetDefaultTemplate(teamID int) (*models.AftercareTemplate, error) {
	return r.getTemplate(teamID, false)
}

// GetEvergreenTemplate loads the rolling annual check-in template used for
// legacy sales
func (r *AftercareRepository) GetEvergreenTemplate(teamID int) (*models.AftercareTemplate, error) {
	return r.getTemplate(teamID, true)
}

func (r *AftercareRepository) getTemplate(teamID int, evergreen bool) (*models.AftercareTemplate, error) {
	var template models.AftercareTemplate
	query := `SELECT * FROM aftercare_templates
	          WHERE (team_id = $1 OR team_id = 0) AND evergreen = $2
	          ORDER BY team_id DESC LIMIT 1`
	if err := r.db.Get(&template, query, teamID, evergreen); err != nil {
		return nil, err
	}

	tasksQuery := `SELECT * FROM aftercare_template_tasks
	               WHERE template_id = $1 ORDER BY offset_days ASC`
	if err := r.db.Select(&template.Tasks, tasksQuery, template.ID); err != nil {
		return nil, err
	}

	return &template, nil
}

func (r *AftercareRepository) CreatePlan(plan *models.AftercarePlan) error {
	query := `INSERT INTO aftercare_plans (
	            past_sale_id, template_id, team_id, user_id, classification, evergreen, status)
	          VALUES (
	            :past_sale_id, :template_id, :team_id, :user_id, :classification, :evergreen, :status)
	          RETURNING id`
	rows, err := r.db.NamedQuery(query, plan)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&plan.ID); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *AftercareRepository) CreateTask(task *models.AftercareTask) error {
	query := `INSERT INTO aftercare_tasks (plan_id, title, due_date, completed, historical)
	          VALUES (:plan_id, :title, :due_date, :completed, :historical)
	          RETURNING id`
	rows, err := r.db.NamedQuery(query, task)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&task.ID); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *AftercareRepository) GetPlansBySale(pastSaleID int64) ([]models.AftercarePlan, error) {
	var plans []models.AftercarePlan
	query := "SELECT * FROM aftercare_plans WHERE past_sale_id = $1 ORDER BY id"
	if err := r.db.Select(&plans, query, pastSaleID); err != nil {
		return nil, err
	}
	return plans, nil
}
