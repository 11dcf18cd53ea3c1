package controller

import (
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"taskboard/kanban"
	"taskboard/models"
)

// respondError translates a core error into its response body: field-keyed
// maps for validation failures, {"detail": ...} otherwise. Anything that is
// not a kanban.Error is unexpected and gets reported.
func respondError(c *fiber.Ctx, err error) error {
	if e, ok := err.(*kanban.Error); ok {
		if len(e.Fields) > 0 {
			return c.Status(e.Status).JSON(e.Fields)
		}
		return c.Status(e.Status).JSON(fiber.Map{"detail": e.Detail})
	}
	sentry.CaptureException(err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"detail": "Internal server error",
	})
}

func currentUser(c *fiber.Ctx) *models.User {
	return c.Locals("user").(*models.User)
}

// paramID parses a positive integer path parameter. Malformed ids resolve
// to NotFound, same as unknown ones.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, kanban.NotFound()
	}
	return uint(id), nil
}
