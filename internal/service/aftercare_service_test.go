package service

import (
	"fmt"
	"testing"
	"time"

	"agency-crm/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAftercareStore struct {
	defaultTemplate   *models.AftercareTemplate
	evergreenTemplate *models.AftercareTemplate
	plans             []*models.AftercarePlan
	tasks             []*models.AftercareTask
	failPlanForSale   int64
}

func (s *fakeAftercareStore) GetDefaultTemplate(teamID int) (*models.AftercareTemplate, error) {
	return s.defaultTemplate, nil
}

func (s *fakeAftercareStore) GetEvergreenTemplate(teamID int) (*models.AftercareTemplate, error) {
	return s.evergreenTemplate, nil
}

func (s *fakeAftercareStore) CreatePlan(plan *models.AftercarePlan) error {
	if s.failPlanForSale != 0 && plan.PastSaleID == s.failPlanForSale {
		return fmt.Errorf("plan insert failed")
	}
	plan.ID = int64(len(s.plans) + 1)
	s.plans = append(s.plans, plan)
	return nil
}

func (s *fakeAftercareStore) CreateTask(task *models.AftercareTask) error {
	task.ID = int64(len(s.tasks) + 1)
	s.tasks = append(s.tasks, task)
	return nil
}

type fakeSaleLoader struct {
	sales []models.PastSale
}

func (l *fakeSaleLoader) FindByIDs(ids []int64) ([]models.PastSale, error) {
	return l.sales, nil
}

func datePtr(t time.Time) *time.Time { return &t }

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newTestAftercareService(store *fakeAftercareStore, loader *fakeSaleLoader) *AftercareService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := NewAftercareService(store, loader, logger)
	svc.now = func() time.Time { return testNow }
	return svc
}

func standardTemplates() (def, evergreen *models.AftercareTemplate) {
	def = &models.AftercareTemplate{
		ID: 1,
		Tasks: []models.AftercareTemplateTask{
			{Title: "Settlement follow-up call", OffsetDays: 7},
			{Title: "Three month check-in", OffsetDays: 90},
			{Title: "Two year anniversary card", OffsetDays: 730},
		},
	}
	evergreen = &models.AftercareTemplate{
		ID: 2,
		Tasks: []models.AftercareTemplateTask{
			{Title: "Annual anniversary call", OffsetDays: 0},
		},
	}
	return def, evergreen
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		ageDays int
		want    models.AftercareClassification
	}{
		{"settled last month", 30, models.AftercareRecent},
		{"just under a year", 364, models.AftercareRecent},
		{"exactly a year", 365, models.AftercareHistorical},
		{"four hundred days", 400, models.AftercareHistorical},
		{"exactly ten years", 3650, models.AftercareHistorical},
		{"over ten years", 3651, models.AftercareLegacy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settlement := testNow.AddDate(0, 0, -tt.ageDays)
			assert.Equal(t, tt.want, Classify(settlement, testNow))
		})
	}
}

func TestActivateRecentSale(t *testing.T) {
	def, evergreen := standardTemplates()
	store := &fakeAftercareStore{defaultTemplate: def, evergreenTemplate: evergreen}
	loader := &fakeSaleLoader{sales: []models.PastSale{
		{ID: 10, Address: "3 Beach Parade", SettlementDate: datePtr(testNow.AddDate(0, 0, -30))},
	}}
	svc := newTestAftercareService(store, loader)

	result, err := svc.Activate([]int64{10}, models.AftercareImportOptions{
		ActivateAftercare: true,
		HistoricalMode:    models.HistoricalTaskSkip,
	}, 7, 3)

	require.NoError(t, err)
	assert.Equal(t, 1, result.PlansActivated)
	assert.Equal(t, 3, result.TasksCreated)
	require.Len(t, store.plans, 1)
	assert.Equal(t, models.AftercareRecent, store.plans[0].Classification)
	assert.False(t, store.plans[0].Evergreen)

	// 7-day task is past due, the later two are still upcoming
	assert.Equal(t, 1, result.TasksMarkedHistorical)
	assert.True(t, store.tasks[0].Historical)
	assert.False(t, store.tasks[1].Historical)
	assert.False(t, store.tasks[2].Historical)
}

func TestActivateHistoricalModes(t *testing.T) {
	// Settled 400 days ago: the 7 and 90 day tasks are past due, the 730 day
	// task is still in the future
	settlement := datePtr(testNow.AddDate(0, 0, -400))

	tests := []struct {
		name           string
		mode           models.HistoricalTaskMode
		wantHistorical int
		wantCompleted  int
	}{
		{"skip marks past-due tasks historical", models.HistoricalTaskSkip, 2, 0},
		{"complete closes past-due tasks", models.HistoricalTaskComplete, 0, 2},
		{"include leaves past-due tasks open", models.HistoricalTaskInclude, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, evergreen := standardTemplates()
			store := &fakeAftercareStore{defaultTemplate: def, evergreenTemplate: evergreen}
			loader := &fakeSaleLoader{sales: []models.PastSale{
				{ID: 11, Address: "45 Kauri Road", SettlementDate: settlement},
			}}
			svc := newTestAftercareService(store, loader)

			result, err := svc.Activate([]int64{11}, models.AftercareImportOptions{
				ActivateAftercare: true,
				HistoricalMode:    tt.mode,
			}, 7, 3)

			require.NoError(t, err)
			assert.Equal(t, models.AftercareHistorical, store.plans[0].Classification)
			assert.Equal(t, 3, result.TasksCreated, "every template task is created regardless of mode")
			assert.Equal(t, tt.wantHistorical, result.TasksMarkedHistorical)

			historical, completed := 0, 0
			for _, task := range store.tasks {
				if task.Historical {
					historical++
				}
				if task.Completed {
					completed++
				}
			}
			assert.Equal(t, tt.wantHistorical, historical)
			assert.Equal(t, tt.wantCompleted, completed)
		})
	}
}

func TestActivateLegacyUsesEvergreenPlan(t *testing.T) {
	def, evergreen := standardTemplates()
	store := &fakeAftercareStore{defaultTemplate: def, evergreenTemplate: evergreen}
	loader := &fakeSaleLoader{sales: []models.PastSale{
		{ID: 12, Address: "8 Totara Street", SettlementDate: datePtr(testNow.AddDate(-11, 0, 0))},
	}}
	svc := newTestAftercareService(store, loader)

	result, err := svc.Activate([]int64{12}, models.AftercareImportOptions{
		ActivateAftercare: true,
		HistoricalMode:    models.HistoricalTaskSkip,
	}, 7, 3)

	require.NoError(t, err)
	assert.Equal(t, 1, result.PlansActivated)
	assert.Equal(t, 1, result.EvergreenPlansCreated)
	require.Len(t, store.plans, 1)
	assert.True(t, store.plans[0].Evergreen)
	assert.Equal(t, models.AftercareLegacy, store.plans[0].Classification)

	// The check-in anchors to the next settlement anniversary, never the past
	require.Len(t, store.tasks, 1)
	assert.True(t, store.tasks[0].DueDate.After(testNow))
	assert.False(t, store.tasks[0].Historical)
}

func TestActivateSkipsSalesWithoutSettlement(t *testing.T) {
	def, evergreen := standardTemplates()
	store := &fakeAftercareStore{defaultTemplate: def, evergreenTemplate: evergreen}
	loader := &fakeSaleLoader{sales: []models.PastSale{
		{ID: 13, Address: "12 Rimu Street", Status: models.SaleStatusWithdrawn},
	}}
	svc := newTestAftercareService(store, loader)

	result, err := svc.Activate([]int64{13}, models.AftercareImportOptions{
		ActivateAftercare: true,
		HistoricalMode:    models.HistoricalTaskSkip,
	}, 7, 3)

	require.NoError(t, err)
	assert.Equal(t, 0, result.PlansActivated)
	assert.Empty(t, store.plans)
}

func TestActivateContinuesAfterPerSaleFailure(t *testing.T) {
	def, evergreen := standardTemplates()
	store := &fakeAftercareStore{defaultTemplate: def, evergreenTemplate: evergreen, failPlanForSale: 20}
	loader := &fakeSaleLoader{sales: []models.PastSale{
		{ID: 20, Address: "1 Fail Lane", SettlementDate: datePtr(testNow.AddDate(0, 0, -30))},
		{ID: 21, Address: "2 Pass Place", SettlementDate: datePtr(testNow.AddDate(0, 0, -30))},
	}}
	svc := newTestAftercareService(store, loader)

	result, err := svc.Activate([]int64{20, 21}, models.AftercareImportOptions{
		ActivateAftercare: true,
		HistoricalMode:    models.HistoricalTaskInclude,
	}, 7, 3)

	require.NoError(t, err)
	assert.Equal(t, 1, result.PlansActivated)
	require.Len(t, store.plans, 1)
	assert.Equal(t, int64(21), store.plans[0].PastSaleID)
}

func TestNextAnniversary(t *testing.T) {
	settlement := time.Date(2012, 3, 15, 0, 0, 0, 0, time.UTC)

	anniversary := nextAnniversary(settlement, testNow)

	assert.Equal(t, time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC), anniversary)

	// An anniversary still ahead this year is used as-is
	early := time.Date(2012, 11, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), nextAnniversary(early, testNow))
}
