package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	controller "taskboard/controllers"
	"taskboard/kanban"
	"taskboard/middleware"
)

// SetupRoutes wires the auth and kanban endpoints. The kanban routes are
// mounted under both /api/kanban and /api so that older frontends built
// against the unprefixed paths keep working.
func SetupRoutes(app *fiber.App, db *gorm.DB, log *logrus.Logger) {
	service := kanban.NewService(db, log)
	boardController := controller.NewBoardController(service, log)
	taskController := controller.NewTaskController(service, log)
	commentController := controller.NewCommentController(service, log)
	dashboardController := controller.NewDashboardController(service, log)

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints
	auth := api.Group("/auth")
	auth.Post("/registration", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Get("/email-check", controller.EmailCheck)

	// Legacy auth aliases
	api.Post("/registration", controller.Register)
	api.Post("/login", controller.Login)
	api.Get("/email-check", controller.EmailCheck)

	registerKanban := func(g fiber.Router) {
		g.Get("/boards", boardController.List)
		g.Post("/boards", boardController.Create)
		g.Get("/boards/:id", boardController.Retrieve)
		g.Patch("/boards/:id", boardController.Update)
		g.Delete("/boards/:id", boardController.Destroy)

		// Specific task routes before the :id wildcard
		g.Get("/tasks/assigned-to-me", taskController.AssignedToMe)
		g.Get("/tasks/reviewing", taskController.Reviewing)
		g.Get("/tasks", taskController.List)
		g.Post("/tasks", taskController.Create)
		g.Get("/tasks/:id", taskController.Retrieve)
		g.Patch("/tasks/:id", taskController.Update)
		g.Delete("/tasks/:id", taskController.Destroy)

		g.Get("/tasks/:id/comments", commentController.ListForTask)
		g.Post("/tasks/:id/comments", commentController.CreateForTask)
		g.Delete("/tasks/:id/comments/:commentID", commentController.Destroy)

		// Legacy flat comments collection
		g.Get("/comments", commentController.CollectionList)
		g.Post("/comments", commentController.CollectionCreate)

		g.Get("/dashboard", dashboardController.Stats)
	}

	registerKanban(api.Group("/kanban", middleware.Protected()))
	registerKanban(api.Group("", middleware.Protected()))
}
