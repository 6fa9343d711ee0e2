package routes

import (
	"libtrack/internal/adapters/http/handlers"
	"libtrack/internal/adapters/http/middleware"
	"libtrack/internal/adapters/persistence/repositories"
	"libtrack/internal/config"
	"libtrack/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. Store handles are built
// here and handed to every service explicitly; nothing reaches for a global.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.OverdueMonitor {
	// Repositories
	copyStore := repositories.NewCopyRepository(db)
	borrowerStore := repositories.NewBorrowerRepository(db)
	ledger := repositories.NewLedgerRepository(db)
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Services
	catalogService := services.NewCatalogService(copyStore)
	borrowerService := services.NewBorrowerService(borrowerStore, copyStore)
	lendingService := services.NewLendingService(copyStore, borrowerStore, ledger, cfg.Lending.LoanPeriodDays)
	historyService := services.NewHistoryService(ledger)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	overdueMonitor := services.NewOverdueMonitor(historyService, cfg.Lending.OverdueSweepSched)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	borrowerHandler := handlers.NewBorrowerHandler(borrowerService, catalogService)
	lendingHandler := handlers.NewLendingHandler(lendingService)
	historyHandler := handlers.NewHistoryHandler(historyService)

	// Health & root
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")
	requireAuth := middleware.AuthMiddleware(cfg)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", requireAuth, authHandler.LogoutAll)
	auth.Get("/me", requireAuth, authHandler.Me)

	// Catalog: reads are public, writes need a staff token
	api.Get("/copies", catalogHandler.ListCopies)
	api.Get("/copies/:id", catalogHandler.GetCopy)
	api.Post("/copies", requireAuth, catalogHandler.AddCopy)
	api.Patch("/copies/:id", requireAuth, catalogHandler.UpdateCopy)
	api.Delete("/copies/:id", requireAuth, catalogHandler.RemoveCopy)
	api.Get("/isbn/:isbn/copies", catalogHandler.CopiesByISBN)
	api.Get("/isbn/:isbn/availability", catalogHandler.ISBNAvailability)

	// Borrowers
	api.Get("/borrowers", borrowerHandler.ListBorrowers)
	api.Get("/borrowers/:id", borrowerHandler.GetBorrower)
	api.Post("/borrowers", requireAuth, borrowerHandler.Register)
	api.Patch("/borrowers/:id", requireAuth, borrowerHandler.UpdateBorrower)
	api.Delete("/borrowers/:id", requireAuth, borrowerHandler.DeleteBorrower)
	api.Get("/borrowers/:id/copies", borrowerHandler.HeldCopies)
	api.Get("/borrowers/:id/loans", historyHandler.CurrentLoans)
	api.Get("/borrowers/:id/overdue", historyHandler.BorrowerOverdue)

	// Lending state machine
	api.Post("/lending/borrow", requireAuth, lendingHandler.Borrow)
	api.Post("/lending/return", requireAuth, lendingHandler.Return)

	// Ledger queries
	api.Get("/history", historyHandler.HistoryInRange)
	api.Get("/history/copies/:id", historyHandler.CopyHistory)
	api.Get("/history/borrowers/:id", historyHandler.BorrowerHistory)
	api.Get("/overdue", requireAuth, historyHandler.AllOverdue)
	api.Get("/stats/popular-copies", historyHandler.PopularCopies)
	api.Get("/stats/active-borrowers", historyHandler.ActiveBorrowers)
	api.Get("/stats/borrowers/:id", historyHandler.BorrowerStats)
	api.Get("/stats/copies/:id", historyHandler.CopyStats)

	return overdueMonitor
}
