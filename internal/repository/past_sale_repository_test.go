package repository

import (
	"testing"

	"agency-crm/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestCreateForTeamAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPastSaleRepository(db)

	mock.ExpectQuery("INSERT INTO past_sales").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	sale := &models.PastSale{Address: "3 Beach Parade", Status: models.SaleStatusWithdrawn}
	err := repo.CreateForTeam(sale, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(42), sale.ID)
	assert.Equal(t, 7, sale.TeamID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDsEmptyInput(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewPastSaleRepository(db)

	sales, err := repo.FindByIDs(nil)

	require.NoError(t, err)
	assert.Nil(t, sales)
}

func TestFindByIDsBatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPastSaleRepository(db)

	mock.ExpectQuery("SELECT \\* FROM past_sales WHERE id IN").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "address", "status"}).
			AddRow(1, 7, "3 Beach Parade", "sold").
			AddRow(2, 7, "45 Kauri Road", "withdrawn"))

	sales, err := repo.FindByIDs([]int64{1, 2})

	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "3 Beach Parade", sales[0].Address)
	assert.Equal(t, models.SaleStatusWithdrawn, sales[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScopedToTeam(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPastSaleRepository(db)

	mock.ExpectExec("DELETE FROM past_sales WHERE id = \\$1 AND team_id = \\$2").
		WithArgs(int64(5), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(5, 7)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
