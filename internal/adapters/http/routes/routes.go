package routes

import (
	"tanda-xntrust/internal/adapters/http/handlers"
	"tanda-xntrust/internal/adapters/http/middleware"
	"tanda-xntrust/internal/adapters/persistence/repositories"
	"tanda-xntrust/internal/config"
	"tanda-xntrust/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. It returns the score
// service and sweep service so main can manage their background lifecycles.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) (*services.ScoreService, *services.SweepService) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	snapshotRepo := repositories.NewSnapshotRepository(db)
	vouchRepo := repositories.NewVouchRepository(db)
	endorsementRepo := repositories.NewEndorsementRepository(db)
	circleRepo := repositories.NewCircleRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, memberRepo, cfg)
	userService := services.NewUserService(userRepo)
	memberService := services.NewMemberService(memberRepo, eventRepo)

	// Tier change webhook notifier
	notifyService := services.NewNotifyService(cfg)

	// Scoring pipeline: the score service owns the cached snapshots and the
	// invalidation worker; event and vouch writes feed it invalidations.
	scoreService := services.NewScoreService(memberRepo, eventRepo, snapshotRepo, vouchRepo, cfg, notifyService)
	eventService := services.NewEventService(eventRepo, memberRepo, scoreService)
	vouchService := services.NewVouchService(vouchRepo, endorsementRepo, memberRepo, circleRepo, eventRepo, scoreService, cfg)
	eligibilityService := services.NewEligibilityService(memberRepo, circleRepo, eventRepo, scoreService)

	dashboardService := services.NewDashboardService(db)
	sweepService := services.NewSweepService(vouchRepo, refreshTokenRepo, cfg)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	memberHandler := handlers.NewMemberHandler(memberService)
	eventHandler := handlers.NewEventHandler(eventService)
	scoreHandler := handlers.NewScoreHandler(scoreService)
	vouchHandler := handlers.NewVouchHandler(vouchService)
	eligibilityHandler := handlers.NewEligibilityHandler(eligibilityService)
	circleHandler := handlers.NewCircleHandler(circleRepo)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	adminHandler := handlers.NewAdminHandler(sweepService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, memberHandler,
		eventHandler, scoreHandler, vouchHandler, eligibilityHandler,
		circleHandler, dashboardHandler, adminHandler, cfg)

	return scoreService, sweepService
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	memberHandler *handlers.MemberHandler,
	eventHandler *handlers.EventHandler,
	scoreHandler *handlers.ScoreHandler,
	vouchHandler *handlers.VouchHandler,
	eligibilityHandler *handlers.EligibilityHandler,
	circleHandler *handlers.CircleHandler,
	dashboardHandler *handlers.DashboardHandler,
	adminHandler *handlers.AdminHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Tier sheet (public, cacheable)
	router.Get("/tiers", middleware.TierSheetCache(), scoreHandler.GetTiers)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Event ingestion (circle engine and payment processors)
	eventRoutes := router.Group("/events")
	eventRoutes.Use(middleware.AuthMiddleware(cfg))
	eventRoutes.Post("/", middleware.ServiceOnly(), eventHandler.Append)

	// Member routes (Authenticated; self or admin/service per handler)
	memberRoutes := router.Group("/members")
	memberRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMemberRoutes(memberRoutes, memberHandler, eventHandler, scoreHandler,
		vouchHandler, eligibilityHandler)

	// Vouch routes (Authenticated; vouching rights come from tier benefits)
	vouchRoutes := router.Group("/vouches")
	vouchRoutes.Use(middleware.AuthMiddleware(cfg))
	vouchRoutes.Post("/", vouchHandler.Issue)
	vouchRoutes.Delete("/:id", vouchHandler.Revoke)

	// Endorsement routes (Authenticated)
	endorsementRoutes := router.Group("/endorsements")
	endorsementRoutes.Use(middleware.AuthMiddleware(cfg))
	endorsementRoutes.Post("/", vouchHandler.Endorse)

	// Circle catalog (Authenticated, read-only)
	circleRoutes := router.Group("/circles")
	circleRoutes.Use(middleware.AuthMiddleware(cfg))
	circleRoutes.Get("/", circleHandler.List)
	circleRoutes.Get("/:id", circleHandler.Get)

	// Dashboard routes
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	// Admin routes (Admin only)
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, memberHandler, scoreHandler, adminHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate limited against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupMemberRoutes configures member-scoped routes. Score and eligibility
// responses must never be served from intermediary caches.
func setupMemberRoutes(
	router fiber.Router,
	memberHandler *handlers.MemberHandler,
	eventHandler *handlers.EventHandler,
	scoreHandler *handlers.ScoreHandler,
	vouchHandler *handlers.VouchHandler,
	eligibilityHandler *handlers.EligibilityHandler,
) {
	// Registration (circle engine and admins)
	router.Post("/", middleware.ServiceOnly(), memberHandler.Create)

	router.Get("/:memb_no", memberHandler.Get)
	router.Get("/:memb_no/score", middleware.NoCacheHeaders(), scoreHandler.GetScore)
	router.Get("/:memb_no/events", eventHandler.History)
	router.Get("/:memb_no/events/recent", memberHandler.RecentEvents)
	router.Get("/:memb_no/vouches", vouchHandler.ListByMember)
	router.Get("/:memb_no/eligibility/:circle_id", middleware.NoCacheHeaders(), eligibilityHandler.CanJoin)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	// Auto-detect role dashboard (All authenticated users)
	router.Get("/", handler.GetMyDashboard)

	// Member dashboard (All authenticated users)
	router.Get("/me", handler.GetMemberDashboard)

	// Admin dashboard (Admin only)
	router.Get("/admin", middleware.AdminOnly(), handler.GetAdminDashboard)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Put("/:id/role", handler.SetUserRole)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupAdminRoutes configures administrative routes (Admin only)
func setupAdminRoutes(
	router fiber.Router,
	memberHandler *handlers.MemberHandler,
	scoreHandler *handlers.ScoreHandler,
	adminHandler *handlers.AdminHandler,
) {
	router.Get("/members", memberHandler.List)
	router.Patch("/members/:memb_no/active", memberHandler.SetActive)
	router.Post("/members/:memb_no/score/recompute", scoreHandler.Recompute)
	router.Post("/sweep", adminHandler.RunSweep)
}
