package models

import "time"

// Task status values.
const (
	StatusTodo       = "to-do"
	StatusInProgress = "in-progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Task priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Statuses lists the valid task statuses in board-column order.
var Statuses = []string{StatusTodo, StatusInProgress, StatusReview, StatusDone}

// Priorities lists the valid task priorities.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is one of the known task priorities.
func ValidPriority(p string) bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

// Task is a ticket on a board. Assignee and reviewer must belong to the
// board's effective member set at assignment time.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	BoardID     uint       `gorm:"not null;index:idx_tasks_board_status" json:"board_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"size:20;not null;default:'to-do';index:idx_tasks_board_status" json:"status"`
	Priority    string     `gorm:"size:10;not null;default:'medium'" json:"priority"`
	AssigneeID  *uint      `gorm:"index" json:"assignee_id"`
	ReviewerID  *uint      `gorm:"index" json:"reviewer_id"`
	DueDate     *time.Time `gorm:"type:date;index" json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Board    Board `json:"-"`
	Assignee *User `json:"-"`
	Reviewer *User `json:"-"`
}
