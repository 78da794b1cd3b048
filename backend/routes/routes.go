package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"neuralnexus/backend/controllers"
	"neuralnexus/backend/middleware"
	"neuralnexus/backend/services"
	"neuralnexus/backend/utils"
)

type Deps struct {
	Tracker     *services.Tracker
	Tokens      middleware.TokenVerifier
	DB          controllers.Pinger
	Log         *zap.Logger
	CORSOrigins string
}

// NewApp builds the fiber app with the shared middleware chain and all routes.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "neuralnexus",
		ErrorHandler: utils.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.LoggingMiddleware(d.Log))

	SetupRoutes(app, d)
	return app
}

func SetupRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api")

	overviewController := controllers.NewOverviewController(d.DB, d.Log)
	api.Get("/health", overviewController.Health)
	api.Get("/overview/catalog", overviewController.GetCatalog)

	// Auth routes
	authController := controllers.NewAuthController(d.Tracker)
	api.Post("/auth/register", authController.Register)
	api.Post("/auth/login", authController.Login)

	authMiddleware := middleware.AuthMiddleware(d.Tokens)

	// User routes
	userController := controllers.NewUserController(d.Tracker, d.Log)
	progressController := controllers.NewProgressController(d.Tracker)
	user := api.Group("/user", authMiddleware)
	user.Get("/profile", userController.GetProfile)
	user.Put("/profile", userController.UpdateProfile)
	user.Put("/change-password", userController.ChangePassword)
	user.Put("/preferences", userController.UpdatePreferences)
	user.Get("/dashboard", userController.GetDashboard)
	user.Get("/activity", userController.GetActivity)
	user.Post("/activity", userController.LogActivity)
	user.Get("/achievements", userController.GetAchievements)
	user.Post("/session", userController.StartSession)
	user.Get("/progress", progressController.GetProgress)
	user.Get("/daily-stats", progressController.GetDailyStats)

	// Goal routes
	goalController := controllers.NewGoalController(d.Tracker, d.Log)
	goals := api.Group("/goals", authMiddleware)
	goals.Post("/", goalController.CreateGoal)
	goals.Get("/", goalController.ListGoals)
	goals.Get("/:id", goalController.GetGoal)
	goals.Put("/:id", goalController.UpdateGoal)
	goals.Delete("/:id", goalController.DeleteGoal)
	goals.Get("/:id/curriculum", goalController.GetCurriculum)

	analyticsController := controllers.NewAnalyticsController(d.Tracker)
	api.Get("/leaderboard", authMiddleware, analyticsController.GetLeaderboard)
}
