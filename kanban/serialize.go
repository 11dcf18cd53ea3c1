package kanban

import (
	"time"

	"taskboard/models"
)

const dateLayout = "2006-01-02"

// UserMini is the embedded user representation used across responses.
type UserMini struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

// BoardListItem is the board representation in list views and create
// responses. All counts are computed fresh per request.
type BoardListItem struct {
	ID                 uint   `json:"id"`
	Title              string `json:"title"`
	MemberCount        int64  `json:"member_count"`
	TicketCount        int64  `json:"ticket_count"`
	TasksToDoCount     int64  `json:"tasks_to_do_count"`
	TasksHighPrioCount int64  `json:"tasks_high_prio_count"`
	OwnerID            uint   `json:"owner_id"`
}

// TaskOnBoard is a task as embedded in a board detail response.
type TaskOnBoard struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	Assignee      *UserMini `json:"assignee"`
	Reviewer      *UserMini `json:"reviewer"`
	DueDate       *string   `json:"due_date"`
	CommentsCount int64     `json:"comments_count"`
}

// BoardDetail is the full board representation: members are the effective
// member set (owner included exactly once).
type BoardDetail struct {
	ID      uint          `json:"id"`
	Title   string        `json:"title"`
	OwnerID uint          `json:"owner_id"`
	Members []UserMini    `json:"members"`
	Tasks   []TaskOnBoard `json:"tasks"`
}

// TaskDetail is the standalone task representation.
type TaskDetail struct {
	ID            uint      `json:"id"`
	Board         uint      `json:"board"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	Assignee      *UserMini `json:"assignee"`
	Reviewer      *UserMini `json:"reviewer"`
	DueDate       *string   `json:"due_date"`
	CommentsCount int64     `json:"comments_count"`
}

// CommentOut is the comment representation; author is the fullname string.
type CommentOut struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
}

// DashboardStats aggregates the actor's visible tasks; maps are zero-filled
// for every known status and priority.
type DashboardStats struct {
	TicketsTotal int64            `json:"tickets_total"`
	ByPriority   map[string]int64 `json:"by_priority"`
	ByStatus     map[string]int64 `json:"by_status"`
}

func miniUser(u *models.User) *UserMini {
	if u == nil {
		return nil
	}
	return &UserMini{ID: u.ID, Email: u.Email, Fullname: u.Fullname}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func taskOnBoard(t *models.Task, commentsCount int64) TaskOnBoard {
	return TaskOnBoard{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		Assignee:      miniUser(t.Assignee),
		Reviewer:      miniUser(t.Reviewer),
		DueDate:       formatDate(t.DueDate),
		CommentsCount: commentsCount,
	}
}

func taskDetail(t *models.Task, commentsCount int64) TaskDetail {
	return TaskDetail{
		ID:            t.ID,
		Board:         t.BoardID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		Assignee:      miniUser(t.Assignee),
		Reviewer:      miniUser(t.Reviewer),
		DueDate:       formatDate(t.DueDate),
		CommentsCount: commentsCount,
	}
}

func commentOut(c *models.Comment) CommentOut {
	return CommentOut{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		Author:    c.Author.Fullname,
		Content:   c.Content,
	}
}
