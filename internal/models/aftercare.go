package models

import "time"

// AftercareClassification buckets a committed sale by settlement age
type AftercareClassification string

const (
	AftercareRecent     AftercareClassification = "recent"     // settled < 1 year ago
	AftercareHistorical AftercareClassification = "historical" // settled 1-10 years ago
	AftercareLegacy     AftercareClassification = "legacy"     // settled > 10 years ago
)

// AftercareTemplate is a reusable plan definition
type AftercareTemplate struct {
	ID        int64     `db:"id" json:"id"`
	TeamID    int       `db:"team_id" json:"team_id"`
	Name      string    `db:"name" json:"name"`
	Evergreen bool      `db:"evergreen" json:"evergreen"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Tasks []AftercareTemplateTask `json:"tasks"`
}

// AftercareTemplateTask is one scheduled touchpoint within a template,
// offset in days from the sale's settlement date
type AftercareTemplateTask struct {
	ID         int64  `db:"id" json:"id"`
	TemplateID int64  `db:"template_id" json:"template_id"`
	Title      string `db:"title" json:"title"`
	OffsetDays int    `db:"offset_days" json:"offset_days"`
}

// AftercarePlan is an activated plan for one past sale
type AftercarePlan struct {
	ID             int64                   `db:"id" json:"id"`
	PastSaleID     int64                   `db:"past_sale_id" json:"past_sale_id"`
	TemplateID     int64                   `db:"template_id" json:"template_id"`
	TeamID         int                     `db:"team_id" json:"team_id"`
	UserID         int                     `db:"user_id" json:"user_id"`
	Classification AftercareClassification `db:"classification" json:"classification"`
	Evergreen      bool                    `db:"evergreen" json:"evergreen"`
	Status         string                  `db:"status" json:"status"`
	CreatedAt      time.Time               `db:"created_at" json:"created_at"`
}

// AftercareTask is one generated touchpoint. Historical tasks are excluded
// from health scoring; completed tasks were pre-marked done at creation.
type AftercareTask struct {
	ID         int64     `db:"id" json:"id"`
	PlanID     int64     `db:"plan_id" json:"plan_id"`
	Title      string    `db:"title" json:"title"`
	DueDate    time.Time `db:"due_date" json:"due_date"`
	Completed  bool      `db:"completed" json:"completed"`
	Historical bool      `db:"historical" json:"historical"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AftercareResult summarizes a batch activation
type AftercareResult struct {
	PlansActivated        int `json:"plans_activated"`
	TasksCreated          int `json:"tasks_created"`
	TasksMarkedHistorical int `json:"tasks_marked_historical"`
	EvergreenPlansCreated int `json:"evergreen_plans_created"`
}
