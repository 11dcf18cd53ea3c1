package controller

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskboard/kanban"
)

type CommentController struct {
	Service *kanban.Service
	Logger  *logrus.Logger
}

func NewCommentController(service *kanban.Service, logger *logrus.Logger) *CommentController {
	return &CommentController{Service: service, Logger: logger}
}

type commentCreateRequest struct {
	Content string `json:"content"`
}

// ListForTask returns a task's comments, newest first.
func (cc *CommentController) ListForTask(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	comments, err := cc.Service.ListComments(currentUser(c), taskID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateForTask posts a comment authored by the actor.
func (cc *CommentController) CreateForTask(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req commentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	comment, err := cc.Service.CreateComment(currentUser(c), taskID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// Destroy deletes a comment. Author only.
func (cc *CommentController) Destroy(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	commentID, err := paramID(c, "commentID")
	if err != nil {
		return respondError(c, err)
	}
	if err := cc.Service.DeleteComment(currentUser(c), taskID, commentID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type commentCollectionRequest struct {
	Task    json.RawMessage `json:"task"`
	Content string          `json:"content"`
}

// CollectionCreate is the legacy flat endpoint: {task, content}.
func (cc *CommentController) CollectionCreate(c *fiber.Ctx) error {
	var req commentCollectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	taskID, ok := parseFlexibleID(req.Task)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"task": []string{"Task is required"},
		})
	}
	comment, err := cc.Service.CreateComment(currentUser(c), taskID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// CollectionList is the legacy flat listing: ?task=<id>. Without a task
// filter it returns an empty list.
func (cc *CommentController) CollectionList(c *fiber.Ctx) error {
	taskID := c.QueryInt("task")
	if taskID <= 0 {
		return c.JSON([]kanban.CommentOut{})
	}
	comments, err := cc.Service.ListComments(currentUser(c), uint(taskID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// parseFlexibleID accepts a numeric id as a JSON number or string.
func parseFlexibleID(raw json.RawMessage) (uint, bool) {
	if raw == nil {
		return 0, false
	}
	var n uint
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32); err == nil && parsed > 0 {
			return uint(parsed), true
		}
	}
	return 0, false
}
