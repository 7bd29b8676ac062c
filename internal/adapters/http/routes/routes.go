package routes

import (
	"time"

	"quest-alumni/internal/adapters/http/handlers"
	"quest-alumni/internal/adapters/http/middleware"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/config"
	"quest-alumni/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Options carries the optional infrastructure wired by main. Nil fields
// disable the feature that needs them.
type Options struct {
	Blobs        services.BlobStore
	LimitStorage fiber.Storage
	Cache        handlers.Pinger
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, opts Options) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Services
	auditService := services.NewAuditService(db)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(db, auditService)
	profileService := services.NewProfileService(db, opts.Blobs)
	memberService := services.NewMemberService(db)
	categoryService := services.NewLoanCategoryService(db, auditService)
	loanService := services.NewLoanService(db, services.NewGuarantorChecker(), auditService)
	eventService := services.NewEventService(db, auditService)
	cardService := services.NewCardService(db, opts.Blobs, auditService, cfg.PublicBaseURL)
	dashboardService := services.NewDashboardService(db)

	// Handlers
	healthHandler := handlers.NewHealthHandler(opts.Cache)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	profileHandler := handlers.NewProfileHandler(profileService)
	memberHandler := handlers.NewMemberHandler(memberService)
	categoryHandler := handlers.NewLoanCategoryHandler(categoryService)
	loanHandler := handlers.NewLoanHandler(loanService)
	eventHandler := handlers.NewEventHandler(eventService)
	cardHandler := handlers.NewCardHandler(cardService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health, metrics & docs
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/swagger/*", swagger.HandlerDefault)

	auth := middleware.AuthMiddleware(authService)

	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth
	authRoutes := apiV1.Group("/auth", middleware.NoCacheHeaders())
	authRoutes.Post("/register", middleware.AuthRateLimiter(opts.LimitStorage), authHandler.Register)
	authRoutes.Post("/login", middleware.AuthRateLimiter(opts.LimitStorage), authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Post("/logout-all", auth, authHandler.LogoutAll)
	authRoutes.Get("/me", auth, authHandler.Me)

	// Public QR-linked member page
	apiV1.Get("/public/members/:token", middleware.StrictRateLimiter(opts.LimitStorage), memberHandler.PublicProfile)
	apiV1.Get("/card-template", middleware.PublicCache(5*time.Minute), cardHandler.GetTemplate)

	// Profile
	profile := apiV1.Group("/profile", auth)
	profile.Get("/", profileHandler.GetProfile)
	profile.Patch("/", profileHandler.UpdateProfile)
	profile.Put("/privacy", profileHandler.UpdatePrivacy)
	profile.Put("/contact", profileHandler.UpdateContact)
	profile.Post("/education", profileHandler.AddEducation)
	profile.Delete("/education/:id", profileHandler.DeleteEducation)
	profile.Post("/jobs", profileHandler.AddJob)
	profile.Delete("/jobs/:id", profileHandler.DeleteJob)
	profile.Post("/photo", profileHandler.UploadPhoto)

	// Members
	members := apiV1.Group("/members", auth, middleware.PrivateCacheHeaders(30*time.Second))
	members.Get("/", memberHandler.Directory)
	members.Get("/:id", memberHandler.GetMember)

	// Membership card
	card := apiV1.Group("/membership-card", auth)
	card.Get("/", cardHandler.GetCard)
	card.Post("/regenerate", cardHandler.Regenerate)

	// Loan categories
	categories := apiV1.Group("/loan-categories", auth)
	categories.Get("/", categoryHandler.ListEnabled)
	categories.Get("/:id/preview", categoryHandler.Preview)

	// Loans; static paths before /:id
	loans := apiV1.Group("/loans", auth)
	loans.Get("/eligibility", loanHandler.Eligibility)
	loans.Get("/guarantors", loanHandler.Guarantors)
	loans.Get("/mine", loanHandler.ListMine)
	loans.Get("/manage", middleware.LoanManagerOrAdmin(), loanHandler.Queue)
	loans.Patch("/manage", middleware.LoanManagerOrAdmin(), loanHandler.Manage)
	loans.Post("/manage", middleware.LoanManagerOrAdmin(), loanHandler.Manage)
	loans.Post("/", loanHandler.Submit)
	loans.Get("/:id", loanHandler.Get)
	loans.Get("/:id/repayments", loanHandler.Repayments)
	loans.Get("/:id/history", loanHandler.History)

	// Events
	events := apiV1.Group("/events", auth)
	events.Get("/", eventHandler.List)
	events.Get("/:id", eventHandler.Get)
	events.Get("/:id/participants", eventHandler.ListParticipants)
	events.Post("/", middleware.AdminOnly(), eventHandler.Create)
	events.Patch("/:id", middleware.AdminOnly(), eventHandler.Update)
	events.Delete("/:id", middleware.AdminOnly(), eventHandler.Delete)
	events.Post("/:id/participants", middleware.AdminOnly(), eventHandler.AddParticipant)
	events.Delete("/:id/participants/:userId", middleware.AdminOnly(), eventHandler.RemoveParticipant)
	events.Post("/:id/media", middleware.AdminOnly(), eventHandler.AddMedia)
	events.Delete("/:id/media/:mediaId", middleware.AdminOnly(), eventHandler.DeleteMedia)

	// Dashboards
	dashboard := apiV1.Group("/dashboard", auth, middleware.PrivateCacheHeaders(30*time.Second))
	dashboard.Get("/", dashboardHandler.GetMyDashboard)
	dashboard.Get("/manager", middleware.LoanManagerOrAdmin(), dashboardHandler.GetManagerDashboard)
	dashboard.Get("/admin", middleware.AdminOnly(), dashboardHandler.GetAdminDashboard)

	// Admin
	admin := apiV1.Group("/admin", auth, middleware.AdminOnly())
	admin.Get("/users", userHandler.ListUsers)
	admin.Post("/users", userHandler.CreateUser)
	admin.Get("/users/:id", userHandler.GetUser)
	admin.Patch("/users/:id", userHandler.UpdateUser)
	admin.Get("/loan-categories", categoryHandler.ListAll)
	admin.Post("/loan-categories", categoryHandler.Create)
	admin.Patch("/loan-categories/:id", categoryHandler.Update)
	admin.Put("/card-template", cardHandler.UploadTemplate)
	admin.Delete("/card-template", cardHandler.DeleteTemplate)
}
