package router

import (
	"agency-crm/internal/config"
	"agency-crm/internal/handler"
	"agency-crm/internal/middleware"
	"agency-crm/internal/repository"
	"agency-crm/internal/service"
	"agency-crm/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redis *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	saleRepo := repository.NewPastSaleRepository(db)
	sessionRepo := repository.NewImportSessionRepository(db)
	aftercareRepo := repository.NewAftercareRepository(db)

	// Initialize Asynq client (optional - only if Redis is available)
	var asynqClient *asynq.Client
	if redis != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg)
	importService := service.NewImportService(cfg, saleRepo, sessionRepo, redis, asynqClient, utils.GetLogger())

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	importHandler := handler.NewImportHandler(importService, sessionRepo, cfg)
	pastSaleHandler := handler.NewPastSaleHandler(saleRepo, aftercareRepo)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/auth/me", authHandler.Me)

	// Past sales routes
	pastSales := protected.Group("/past-sales")
	pastSales.Get("/", pastSaleHandler.GetPastSales)
	pastSales.Get("/:id", pastSaleHandler.GetPastSale)
	pastSales.Delete("/:id", pastSaleHandler.DeletePastSale)

	// Import routes
	imports := protected.Group("/imports")
	imports.Post("/", importHandler.UploadFile)
	imports.Post("/sheet", importHandler.ImportSheet)
	imports.Get("/", importHandler.GetSessions)
	imports.Get("/template", importHandler.DownloadTemplate)
	imports.Get("/template.xlsx", importHandler.DownloadTemplateXLSX)
	imports.Get("/:code/rows", importHandler.GetRows)
	imports.Post("/:code/aftercare", importHandler.SetAftercareOptions)
	imports.Post("/:code/back", importHandler.Back)
	imports.Post("/:code/commit", importHandler.Commit)
	imports.Get("/:code/progress", importHandler.GetProgress)
	imports.Delete("/:code", importHandler.CloseDialog)
}
