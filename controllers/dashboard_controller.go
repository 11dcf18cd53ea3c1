package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskboard/kanban"
)

type DashboardController struct {
	Service *kanban.Service
	Logger  *logrus.Logger
}

func NewDashboardController(service *kanban.Service, logger *logrus.Logger) *DashboardController {
	return &DashboardController{Service: service, Logger: logger}
}

// Stats returns the actor's aggregate task counters for the dashboard
// widgets.
func (dc *DashboardController) Stats(c *fiber.Ctx) error {
	stats, err := dc.Service.Dashboard(currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
