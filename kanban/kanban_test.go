package kanban

import (
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/models"
)

// newTestService opens a per-test in-memory database and wraps it in a
// Service with a muted logger.
func newTestService(t *testing.T) *Service {
	t.Helper()
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
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(db, log)
}

func createUser(t *testing.T, db *gorm.DB, email, fullname string) *models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		Fullname:     fullname,
		PasswordHash: "x",
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return &user
}

func createBoard(t *testing.T, s *Service, owner *models.User, title string, members ...uint) *models.Board {
	t.Helper()
	item, err := s.CreateBoard(owner, BoardCreateInput{Title: title, Members: members})
	if err != nil {
		t.Fatalf("failed to create board %q: %v", title, err)
	}
	var board models.Board
	if err := s.DB.First(&board, item.ID).Error; err != nil {
		t.Fatalf("failed to load board: %v", err)
	}
	return &board
}

func createTask(t *testing.T, s *Service, actor *models.User, in *TaskInput) *models.Task {
	t.Helper()
	task, err := s.CreateTask(actor, in)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return task
}

func uintPtr(v uint) *uint    { return &v }
func strPtr(v string) *string { return &v }
func rawID(id uint) []byte    { return []byte(fmt.Sprintf("%d", id)) }
func fieldOf(err error, name string) []string {
	e, ok := err.(*Error)
	if !ok {
		return nil
	}
	return e.Fields[name]
}
