package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskboard/kanban"
)

type BoardController struct {
	Service *kanban.Service
	Logger  *logrus.Logger
}

func NewBoardController(service *kanban.Service, logger *logrus.Logger) *BoardController {
	return &BoardController{Service: service, Logger: logger}
}

// List returns the actor's visible boards with fresh counters.
func (bc *BoardController) List(c *fiber.Ctx) error {
	items, err := bc.Service.ListBoards(currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// Create makes a new board owned by the actor.
func (bc *BoardController) Create(c *fiber.Ctx) error {
	var in kanban.BoardCreateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	item, err := bc.Service.CreateBoard(currentUser(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Retrieve returns the detail representation of one board.
func (bc *BoardController) Retrieve(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	detail, err := bc.Service.GetBoard(currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// Update applies a partial update (title and/or member replace-set).
func (bc *BoardController) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in kanban.BoardUpdateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	detail, err := bc.Service.UpdateBoard(currentUser(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// Destroy deletes a board with all of its tasks and comments.
func (bc *BoardController) Destroy(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := bc.Service.DeleteBoard(currentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
