package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/priyotosh-27/CodeMaster/backend/auth"
	"github.com/priyotosh-27/CodeMaster/backend/chat"
	"github.com/priyotosh-27/CodeMaster/backend/config"
	"github.com/priyotosh-27/CodeMaster/backend/controllers"
	"github.com/priyotosh-27/CodeMaster/backend/middleware"
	"github.com/priyotosh-27/CodeMaster/backend/progress"
	"github.com/priyotosh-27/CodeMaster/backend/session"
	"github.com/priyotosh-27/CodeMaster/backend/store"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	credentials := auth.NewService(db)
	profiles := store.NewProfileStore(db)
	progressService := progress.NewService(profiles)
	sessionController := session.NewController(credentials, profiles, progressService)

	// Auth routes
	authController := controllers.NewAuthController(sessionController, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	app.Post("/api/auth/logout", authMiddleware, authController.Logout)

	// User routes
	userController := controllers.NewUserController(profiles, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Progress routes
	progressController := controllers.NewProgressController(db, progressService, profiles, cfg)
	prog := app.Group("/api/progress", authMiddleware)
	prog.Post("/tests", progressController.RecordTestResult)
	prog.Post("/challenges", progressController.RecordSolvedChallenge)
	prog.Post("/notes", progressController.RecordNoteAccess)
	prog.Post("/streak", progressController.IncrementStreak)
	prog.Get("/overview", progressController.GetOverview)

	// Chat proxy and public client config
	chatController := controllers.NewChatController(chat.NewProxy(cfg), cfg)
	app.Post("/api/chat", chatController.SendMessage)
	app.Post("/chat", chatController.SendMessage)
	app.Get("/config", chatController.GetConfig)
}
