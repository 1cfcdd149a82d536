package worker

import (
	"agency-crm/internal/config"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	// Create aftercare activation task handler
	aftercareHandler := NewAftercareTaskHandler(db, redis, cfg)

	// Register task handlers
	mux.HandleFunc(TaskAftercareActivate, aftercareHandler.Handle)
}
