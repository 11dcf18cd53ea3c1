package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskboard/kanban"
)

type TaskController struct {
	Service *kanban.Service
	Logger  *logrus.Logger
}

func NewTaskController(service *kanban.Service, logger *logrus.Logger) *TaskController {
	return &TaskController{Service: service, Logger: logger}
}

// Create accepts both the current and the legacy task vocabulary.
func (tc *TaskController) Create(c *fiber.Ctx) error {
	var in kanban.TaskInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	task, err := tc.Service.CreateTask(currentUser(c), &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": task.ID})
}

// List returns tasks on visible boards; ?assigned_to_me=true narrows to the
// actor's assignments.
func (tc *TaskController) List(c *fiber.Ctx) error {
	assignedToMe := strings.EqualFold(c.Query("assigned_to_me"), "true")
	tasks, err := tc.Service.ListTasks(currentUser(c), assignedToMe)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

// AssignedToMe lists the actor's assigned tasks.
func (tc *TaskController) AssignedToMe(c *fiber.Ctx) error {
	tasks, err := tc.Service.ListAssignedTasks(currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

// Reviewing lists the tasks the actor reviews.
func (tc *TaskController) Reviewing(c *fiber.Ctx) error {
	tasks, err := tc.Service.ListReviewingTasks(currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

// Retrieve returns a single task with its comment count.
func (tc *TaskController) Retrieve(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	detail, err := tc.Service.GetTask(currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// Update applies a partial update to a task.
func (tc *TaskController) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in kanban.TaskInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	if err := tc.Service.UpdateTask(currentUser(c), id, &in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Destroy deletes a task and its comments.
func (tc *TaskController) Destroy(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := tc.Service.DeleteTask(currentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
