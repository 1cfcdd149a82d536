package repository

import (
	"agency-crm/internal/models"

	"github.com/jmoiron/sqlx"
)

type ImportSessionRepository struct {
	db *sqlx.DB
}

func NewImportSessionRepository(db *sqlx.DB) *ImportSessionRepository {
	return &ImportSessionRepository{db: db}
}

func (r *ImportSessionRepository) CreateSession(session *models.ImportSession) error {
	query := `INSERT INTO import_sessions (
	            session_code, user_id, team_id, filename, source_type,
	            total_rows, valid_rows, warning_rows, error_rows,
	            successful_rows, failed_rows, status, error_message, aftercare_status)
	          VALUES (
	            :session_code, :user_id, :team_id, :filename, :source_type,
	            :total_rows, :valid_rows, :warning_rows, :error_rows,
	            :successful_rows, :failed_rows, :status, :error_message, :aftercare_status)
	          RETURNING id`
	rows, err := r.db.NamedQuery(query, session)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&session.ID); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *ImportSessionRepository) UpdateSession(session *models.ImportSession) error {
	query := `UPDATE import_sessions SET
	            total_rows = :total_rows, valid_rows = :valid_rows,
	            warning_rows = :warning_rows, error_rows = :error_rows,
	            successful_rows = :successful_rows, failed_rows = :failed_rows,
	            status = :status, error_message = :error_message,
	            aftercare_status = :aftercare_status, updated_at = NOW()
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, session)
	return err
}

func (r *ImportSessionRepository) UpdateSessionStatus(id int64, status string) error {
	query := "UPDATE import_sessions SET status = $1, updated_at = NOW() WHERE id = $2"
	_, err := r.db.Exec(query, status, id)
	return err
}

func (r *ImportSessionRepository) UpdateAftercareStatus(id int64, status string) error {
	query := "UPDATE import_sessions SET aftercare_status = $1, updated_at = NOW() WHERE id = $2"
	_, err := r.db.Exec(query, status, id)
	return err
}

func (r *ImportSessionRepository) GetByCode(code string) (*models.ImportSession, error) {
	var session models.ImportSession
	query := "SELECT * FROM import_sessions WHERE session_code = $1 LIMIT 1"
	if err := r.db.Get(&session, query, code); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ImportSessionRepository) GetSessions(teamID, limit, offset int) ([]models.ImportSession, int, error) {
	var sessions []models.ImportSession
	var total int

	if err := r.db.Get(&total, "SELECT COUNT(*) FROM import_sessions WHERE team_id = $1", teamID); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM import_sessions WHERE team_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.Select(&sessions, query, teamID, limit, offset); err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}
