package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/config"
	"taskboard/models"
	"taskboard/routes"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	config.AppConfig.EncryptionKey = "test-secret-key"

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	config.DB = db

	log := logrus.New()
	log.SetOutput(io.Discard)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	routes.SetupRoutes(app, db, log)
	return app
}

func request(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		buf = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	resp.Body.Close()
	var decoded map[string]interface{}
	if len(raw) > 0 {
		// Lists decode to nil here; tests that need them re-request via
		// requestList.
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func requestList(t *testing.T, app *fiber.App, path, token string) (*http.Response, []map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	resp.Body.Close()
	var decoded []map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("GET %s: expected a JSON array, got %s", path, raw)
	}
	return resp, decoded
}

func register(t *testing.T, app *fiber.App, email, fullname string) (token string, userID uint) {
	t.Helper()
	resp, body := request(t, app, http.MethodPost, "/api/auth/registration", "", fiber.Map{
		"fullname":          fullname,
		"email":             email,
		"password":          "password123",
		"repeated_password": "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("registration for %s returned %d: %v", email, resp.StatusCode, body)
	}
	tok, _ := body["token"].(string)
	if tok == "" {
		t.Fatalf("registration returned no token: %v", body)
	}
	id, _ := body["user_id"].(float64)
	return tok, uint(id)
}

func TestRegistrationAndLogin(t *testing.T) {
	app := newTestApp(t)

	token, _ := register(t, app, "anna@example.com", "Anna Admin")
	if token == "" {
		t.Fatal("expected token from registration")
	}

	// Duplicate email
	resp, body := request(t, app, http.MethodPost, "/api/auth/registration", "", fiber.Map{
		"fullname":          "Anna Again",
		"email":             "anna@example.com",
		"password":          "password123",
		"repeated_password": "password123",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate registration returned %d", resp.StatusCode)
	}
	if _, ok := body["email"]; !ok {
		t.Fatalf("expected email field error, got %v", body)
	}

	// Password mismatch
	resp, body = request(t, app, http.MethodPost, "/api/auth/registration", "", fiber.Map{
		"fullname":          "Ben",
		"email":             "ben@example.com",
		"password":          "password123",
		"repeated_password": "different123",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("mismatched passwords returned %d", resp.StatusCode)
	}
	if _, ok := body["repeated_password"]; !ok {
		t.Fatalf("expected repeated_password field error, got %v", body)
	}

	// Login, canonical field
	resp, body = request(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "anna@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK || body["token"] == "" {
		t.Fatalf("login returned %d: %v", resp.StatusCode, body)
	}

	// Login, legacy username alias on the legacy path
	resp, body = request(t, app, http.MethodPost, "/api/login", "", fiber.Map{
		"username": "anna@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK || body["token"] == "" {
		t.Fatalf("legacy login returned %d: %v", resp.StatusCode, body)
	}

	// Wrong password
	resp, body = request(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "anna@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad credentials returned %d: %v", resp.StatusCode, body)
	}

	// Email check
	resp, _ = request(t, app, http.MethodGet, "/api/auth/email-check?email=anna@example.com", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("email-check for known address returned %d", resp.StatusCode)
	}
	resp, _ = request(t, app, http.MethodGet, "/api/auth/email-check?email=nobody@example.com", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("email-check for unknown address returned %d", resp.StatusCode)
	}
	resp, _ = request(t, app, http.MethodGet, "/api/auth/email-check", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("email-check without param returned %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/boards", "/api/kanban/boards", "/api/dashboard"} {
		resp, _ := request(t, app, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("GET %s without token returned %d", path, resp.StatusCode)
		}
	}

	resp, _ := request(t, app, http.MethodGet, "/api/boards", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token returned %d", resp.StatusCode)
	}
}

func TestBoardCollaborationFlow(t *testing.T) {
	app := newTestApp(t)

	ownerToken, _ := register(t, app, "anna@example.com", "Anna Admin")
	memberToken, memberID := register(t, app, "ben@example.com", "Ben Builder")
	strangerToken, _ := register(t, app, "cleo@example.com", "Cleo Curious")

	// Owner creates a board with one member
	resp, body := request(t, app, http.MethodPost, "/api/kanban/boards", ownerToken, fiber.Map{
		"title":   "Sprint 1",
		"members": []uint{memberID},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("board create returned %d: %v", resp.StatusCode, body)
	}
	boardID := uint(body["id"].(float64))
	if body["member_count"].(float64) != 2 {
		t.Fatalf("expected member_count 2, got %v", body["member_count"])
	}

	boardPath := fmt.Sprintf("/api/kanban/boards/%d", boardID)

	// Member sees the board in their list and its detail
	resp, boards := requestList(t, app, "/api/kanban/boards", memberToken)
	if resp.StatusCode != http.StatusOK || len(boards) != 1 {
		t.Fatalf("member board list: status %d, %d boards", resp.StatusCode, len(boards))
	}
	resp, body = request(t, app, http.MethodGet, boardPath, memberToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("member board detail returned %d", resp.StatusCode)
	}
	if members, ok := body["members"].([]interface{}); !ok || len(members) != 2 {
		t.Fatalf("expected 2 effective members, got %v", body["members"])
	}

	// Stranger: the board does not exist
	resp, _ = request(t, app, http.MethodGet, boardPath, strangerToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("stranger board detail returned %d", resp.StatusCode)
	}
	resp, _ = requestList(t, app, "/api/kanban/boards", strangerToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stranger board list returned %d", resp.StatusCode)
	}
	resp, _ = request(t, app, http.MethodDelete, boardPath, strangerToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("stranger board delete returned %d, want 404", resp.StatusCode)
	}

	// Owner creates a task assigned to the member
	resp, body = request(t, app, http.MethodPost, "/api/kanban/tasks", ownerToken, fiber.Map{
		"board":       boardID,
		"title":       "Set up CI",
		"assignee_id": memberID,
		"priority":    "high",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("task create returned %d: %v", resp.StatusCode, body)
	}
	taskID := uint(body["id"].(float64))
	taskPath := fmt.Sprintf("/api/kanban/tasks/%d", taskID)

	// Member sees comments_count 0, comments, then the count is 1
	resp, body = request(t, app, http.MethodGet, taskPath, memberToken, nil)
	if resp.StatusCode != http.StatusOK || body["comments_count"].(float64) != 0 {
		t.Fatalf("task before comment: status %d, body %v", resp.StatusCode, body)
	}
	resp, body = request(t, app, http.MethodPost, taskPath+"/comments", memberToken, fiber.Map{
		"content": "On it.",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("comment create returned %d: %v", resp.StatusCode, body)
	}
	if body["author"] != "Ben Builder" {
		t.Fatalf("expected author fullname, got %v", body["author"])
	}
	commentID := uint(body["id"].(float64))

	resp, body = request(t, app, http.MethodGet, taskPath, ownerToken, nil)
	if resp.StatusCode != http.StatusOK || body["comments_count"].(float64) != 1 {
		t.Fatalf("task after comment: status %d, body %v", resp.StatusCode, body)
	}

	// Stranger cannot see the task or its comments
	resp, _ = request(t, app, http.MethodGet, taskPath, strangerToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("stranger task detail returned %d", resp.StatusCode)
	}

	// The task shows up for the member under assigned-to-me
	resp, assigned := requestList(t, app, "/api/kanban/tasks/assigned-to-me", memberToken)
	if resp.StatusCode != http.StatusOK || len(assigned) != 1 {
		t.Fatalf("assigned-to-me: status %d, %d tasks", resp.StatusCode, len(assigned))
	}

	// Owner cannot delete someone else's comment; the author can
	commentPath := fmt.Sprintf("%s/comments/%d", taskPath, commentID)
	resp, _ = request(t, app, http.MethodDelete, commentPath, ownerToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("owner deleting member comment returned %d, want 403", resp.StatusCode)
	}
	resp, _ = request(t, app, http.MethodDelete, commentPath, memberToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("author deleting own comment returned %d", resp.StatusCode)
	}

	// Member may rename the board but not delete it
	resp, body = request(t, app, http.MethodPatch, boardPath, memberToken, fiber.Map{
		"title": "Sprint 1 (renamed)",
	})
	if resp.StatusCode != http.StatusOK || body["title"] != "Sprint 1 (renamed)" {
		t.Fatalf("member board rename: status %d, body %v", resp.StatusCode, body)
	}
	resp, _ = request(t, app, http.MethodDelete, boardPath, memberToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("member board delete returned %d, want 403", resp.StatusCode)
	}

	// Owner deletes the board; the task vanishes with it
	resp, _ = request(t, app, http.MethodDelete, boardPath, ownerToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("owner board delete returned %d", resp.StatusCode)
	}
	resp, _ = request(t, app, http.MethodGet, taskPath, ownerToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("task after board delete returned %d, want 404", resp.StatusCode)
	}
}

func TestLegacyTaskPayload(t *testing.T) {
	app := newTestApp(t)

	ownerToken, _ := register(t, app, "anna@example.com", "Anna Admin")
	_, memberID := register(t, app, "ben@example.com", "Ben Builder")

	resp, body := request(t, app, http.MethodPost, "/api/kanban/boards", ownerToken, fiber.Map{
		"title":   "Sprint 1",
		"members": []uint{memberID},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("board create returned %d: %v", resp.StatusCode, body)
	}
	boardID := uint(body["id"].(float64))

	resp, body = request(t, app, http.MethodPost, "/api/tasks", ownerToken, fiber.Map{
		"board":    boardID,
		"title":    "Legacy ticket",
		"column":   "doing",
		"priority": "mid",
		"assignee": memberID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("legacy task create returned %d: %v", resp.StatusCode, body)
	}
	taskID := uint(body["id"].(float64))

	resp, body = request(t, app, http.MethodGet, fmt.Sprintf("/api/tasks/%d", taskID), ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("task detail returned %d", resp.StatusCode)
	}
	if body["status"] != "in-progress" {
		t.Fatalf("expected column doing to map to in-progress, got %v", body["status"])
	}
	if body["priority"] != "medium" {
		t.Fatalf("expected priority mid to map to medium, got %v", body["priority"])
	}
	assignee, ok := body["assignee"].(map[string]interface{})
	if !ok || uint(assignee["id"].(float64)) != memberID {
		t.Fatalf("expected assignee %d, got %v", memberID, body["assignee"])
	}

	// Partial update via the same endpoint: numeric column, null assignee
	resp, body = request(t, app, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", taskID), ownerToken, map[string]interface{}{
		"column":   3,
		"assignee": nil,
	})
	if resp.StatusCode != http.StatusOK || body["ok"] != true {
		t.Fatalf("task patch returned %d: %v", resp.StatusCode, body)
	}
	resp, body = request(t, app, http.MethodGet, fmt.Sprintf("/api/tasks/%d", taskID), ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("task detail returned %d", resp.StatusCode)
	}
	if body["status"] != "done" {
		t.Fatalf("expected column 3 to map to done, got %v", body["status"])
	}
	if body["assignee"] != nil {
		t.Fatalf("expected cleared assignee, got %v", body["assignee"])
	}
}

func TestLegacyCommentsCollection(t *testing.T) {
	app := newTestApp(t)

	token, _ := register(t, app, "anna@example.com", "Anna Admin")
	resp, body := request(t, app, http.MethodPost, "/api/kanban/boards", token, fiber.Map{
		"title": "Sprint 1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("board create returned %d: %v", resp.StatusCode, body)
	}
	boardID := uint(body["id"].(float64))

	resp, body = request(t, app, http.MethodPost, "/api/kanban/tasks", token, fiber.Map{
		"board": boardID,
		"title": "Task",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("task create returned %d: %v", resp.StatusCode, body)
	}
	taskID := uint(body["id"].(float64))

	// Flat create, task id as a string
	resp, body = request(t, app, http.MethodPost, "/api/comments", token, fiber.Map{
		"task":    fmt.Sprintf("%d", taskID),
		"content": "hello",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("flat comment create returned %d: %v", resp.StatusCode, body)
	}

	// Missing task
	resp, body = request(t, app, http.MethodPost, "/api/comments", token, fiber.Map{
		"content": "orphan",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("flat create without task returned %d", resp.StatusCode)
	}
	if _, ok := body["task"]; !ok {
		t.Fatalf("expected task field error, got %v", body)
	}

	// Flat list with and without the filter
	resp, comments := requestList(t, app, fmt.Sprintf("/api/comments?task=%d", taskID), token)
	if resp.StatusCode != http.StatusOK || len(comments) != 1 {
		t.Fatalf("flat list: status %d, %d comments", resp.StatusCode, len(comments))
	}
	resp, comments = requestList(t, app, "/api/comments", token)
	if resp.StatusCode != http.StatusOK || len(comments) != 0 {
		t.Fatalf("unfiltered flat list: status %d, %d comments", resp.StatusCode, len(comments))
	}
}

func TestDashboardEndpoint(t *testing.T) {
	app := newTestApp(t)

	token, _ := register(t, app, "anna@example.com", "Anna Admin")
	resp, body := request(t, app, http.MethodGet, "/api/kanban/dashboard", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard returned %d", resp.StatusCode)
	}
	if body["tickets_total"].(float64) != 0 {
		t.Fatalf("expected empty dashboard, got %v", body)
	}
	byStatus, ok := body["by_status"].(map[string]interface{})
	if !ok || len(byStatus) != 4 {
		t.Fatalf("expected zero-filled by_status with 4 keys, got %v", body["by_status"])
	}
	byPriority, ok := body["by_priority"].(map[string]interface{})
	if !ok || len(byPriority) != 3 {
		t.Fatalf("expected zero-filled by_priority with 3 keys, got %v", body["by_priority"])
	}
}
