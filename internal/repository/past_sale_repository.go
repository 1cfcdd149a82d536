package repository

import (
	"agency-crm/internal/models"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type PastSaleRepository struct {
	db *sqlx.DB
}

func NewPastSaleRepository(db *sqlx.DB) *PastSaleRepository {
	return &PastSaleRepository{db: db}
}

// CreateForTeam inserts one past sale owned by the given team
func (r *PastSaleRepository) CreateForTeam(sale *models.PastSale, teamID int) error {
	sale.TeamID = teamID
	query := `INSERT INTO past_sales (
	            team_id, address, suburb, status,
	            appraisal_value_low, appraisal_value_high, listing_price, sale_value,
	            first_contact_date, appraisal_date, listing_signed_date, listing_live_date,
	            unconditional_date, settlement_date, lost_date, lost_reason,
	            vendor_name, vendor_email, vendor_phone, vendor_moved_to, vendor_referral_partner,
	            buyer_name, buyer_email, buyer_phone, buyer_referral_partner, lead_source)
	          VALUES (
	            :team_id, :address, :suburb, :status,
	            :appraisal_value_low, :appraisal_value_high, :listing_price, :sale_value,
	            :first_contact_date, :appraisal_date, :listing_signed_date, :listing_live_date,
	            :unconditional_date, :settlement_date, :lost_date, :lost_reason,
	            :vendor_name, :vendor_email, :vendor_phone, :vendor_moved_to, :vendor_referral_partner,
	            :buyer_name, :buyer_email, :buyer_phone, :buyer_referral_partner, :lead_source)
	          RETURNING id`
	rows, err := r.db.NamedQuery(query, sale)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&sale.ID); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *PastSaleRepository) FindByID(id int64) (*models.PastSale, error) {
	var sale models.PastSale
	query := "SELECT * FROM past_sales WHERE id = $1 LIMIT 1"
	if err := r.db.Get(&sale, query, id); err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindByIDs loads a batch of sales in one query
func (r *PastSaleRepository) FindByIDs(ids []int64) ([]models.PastSale, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT * FROM past_sales WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var sales []models.PastSale
	if err := r.db.Select(&sales, query, args...); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *PastSaleRepository) FindByTeam(teamID, limit, offset int, search string) ([]models.PastSale, int, error) {
	var sales []models.PastSale
	var total int

	whereClause := "WHERE team_id = $1"
	args := []interface{}{teamID}

	if search != "" {
		whereClause += " AND (address ILIKE $2 OR suburb ILIKE $2)"
		args = append(args, "%"+search+"%")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM past_sales %s", whereClause)
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT * FROM past_sales %s
	          ORDER BY settlement_date DESC NULLS LAST, id DESC
	          LIMIT $%d OFFSET $%d`, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	if err := r.db.Select(&sales, query, args...); err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

func (r *PastSaleRepository) Delete(id int64, teamID int) error {
	query := "DELETE FROM past_sales WHERE id = $1 AND team_id = $2"
	_, err := r.db.Exec(query, id, teamID)
	return err
}
