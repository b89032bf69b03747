package routes

import (
	"time"

	"coop-passbook/internal/adapters/http/handlers"
	"coop-passbook/internal/adapters/http/middleware"
	"coop-passbook/internal/adapters/persistence/repositories"
	"coop-passbook/internal/config"
	"coop-passbook/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application and returns the
// maturity service so the caller can hand it to the cron trigger.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.MaturityService {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	passbookRepo := repositories.NewPassbookRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	maturityRepo := repositories.NewMaturityRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, cfg)
	memberService := services.NewMemberService(memberRepo, loanRepo)
	ledgerService := services.NewLedgerService(db, passbookRepo)
	loanService := services.NewLoanService(db, loanRepo)
	maturityService := services.NewMaturityService(db, memberRepo, passbookRepo, maturityRepo)
	dashboardService := services.NewDashboardService(db)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	memberHandler := handlers.NewMemberHandler(memberService, ledgerService)
	passbookHandler := handlers.NewPassbookHandler(ledgerService)
	loanHandler := handlers.NewLoanHandler(loanService)
	maturityHandler := handlers.NewMaturityHandler(maturityService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth (public, strict rate limit)
	auth := apiV1.Group("/auth", middleware.NoCacheHeaders())
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)

	// Everything below requires a valid token
	protected := apiV1.Group("", middleware.AuthMiddleware(cfg))

	// Members & passbook
	members := protected.Group("/members")
	members.Post("/", memberHandler.Create)
	members.Get("/", memberHandler.List)
	members.Get("/:id", memberHandler.Get)
	members.Delete("/:id", middleware.AdminOnly(), memberHandler.Delete)
	members.Get("/:id/balance", memberHandler.Balance)
	members.Get("/:id/statement", memberHandler.Statement)
	members.Post("/:id/deposits", passbookHandler.RecordDeposit)
	members.Post("/:id/installments", passbookHandler.RecordInstallment)
	members.Post("/:id/loans", loanHandler.Request)
	members.Get("/:id/loans", loanHandler.ListByMember)

	// Entries
	protected.Get("/entries/:id", passbookHandler.GetEntry)
	protected.Delete("/entries/:id", middleware.AdminOnly(), passbookHandler.DeleteEntry)

	// Loans
	loans := protected.Group("/loans")
	loans.Get("/", loanHandler.List)
	loans.Get("/:id", loanHandler.Get)
	loans.Post("/:id/approve", middleware.AdminOnly(), loanHandler.Approve)
	loans.Post("/:id/reject", middleware.AdminOnly(), loanHandler.Reject)

	// Maturity
	maturity := protected.Group("/maturity")
	maturity.Post("/generate", middleware.AdminOnly(), maturityHandler.Generate)
	maturity.Get("/", maturityHandler.List)
	maturity.Get("/:id", maturityHandler.Get)
	maturity.Patch("/:id/override", middleware.AdminOnly(), maturityHandler.Override)
	maturity.Post("/:id/claim", middleware.AdminOnly(), maturityHandler.Claim)

	// Dashboard (cached briefly, user-specific)
	protected.Get("/dashboard/summary", middleware.PrivateCacheHeaders(30*time.Second), dashboardHandler.Summary)

	return maturityService
}
