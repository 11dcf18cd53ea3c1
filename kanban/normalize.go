package kanban

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"taskboard/models"
)

// TaskInput is the inbound task payload for creates and partial updates.
// Nullable relations use json.RawMessage so that an absent field, an explicit
// null (clear the relation), and a value stay distinguishable. Legacy
// aliases are folded into the canonical fields by Normalize before any
// validation runs.
type TaskInput struct {
	Board       *uint           `json:"board"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	Priority    *string         `json:"priority"`
	AssigneeID  json.RawMessage `json:"assignee_id"`
	ReviewerID  json.RawMessage `json:"reviewer_id"`
	DueDate     json.RawMessage `json:"due_date"`

	// Legacy vocabulary still sent by older clients.
	Assignee json.RawMessage `json:"assignee"`
	Reviewer json.RawMessage `json:"reviewer"`
	Column   json.RawMessage `json:"column"`
}

var columnNames = map[string]string{
	"todo":        models.StatusTodo,
	"to-do":       models.StatusTodo,
	"doing":       models.StatusInProgress,
	"in-progress": models.StatusInProgress,
	"review":      models.StatusReview,
	"done":        models.StatusDone,
}

var columnIndexes = map[int]string{
	0: models.StatusTodo,
	1: models.StatusInProgress,
	2: models.StatusReview,
	3: models.StatusDone,
}

// columnToStatus maps a legacy column value (0..3, or a column name) to a
// status. Unrecognized values fall back to to-do.
func columnToStatus(raw json.RawMessage) string {
	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		if status, ok := columnIndexes[idx]; ok {
			return status
		}
		return models.StatusTodo
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if status, ok := columnNames[strings.ToLower(strings.TrimSpace(name))]; ok {
			return status
		}
	}
	return models.StatusTodo
}

// Normalize rewrites legacy aliases into the canonical vocabulary:
// assignee/reviewer bare ids, numeric or named column values, and the
// mid/med priority spellings.
func (in *TaskInput) Normalize() {
	if in.AssigneeID == nil && in.Assignee != nil {
		in.AssigneeID = in.Assignee
	}
	if in.ReviewerID == nil && in.Reviewer != nil {
		in.ReviewerID = in.Reviewer
	}
	if in.Status == nil && in.Column != nil {
		status := columnToStatus(in.Column)
		in.Status = &status
	}
	if in.Priority != nil {
		switch strings.ToLower(strings.TrimSpace(*in.Priority)) {
		case "mid", "med":
			medium := models.PriorityMedium
			in.Priority = &medium
		}
	}
}

var jsonNull = []byte("null")

// optionalID decodes a nullable user-id field. set is false when the field
// was absent; a null value yields (nil, true). Numeric strings are accepted
// for clients that send ids as strings.
func optionalID(raw json.RawMessage) (id *uint, set bool, ok bool) {
	if len(raw) == 0 {
		return nil, false, true
	}
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil, true, true
	}
	var v uint
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v, true, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, true, true
		}
		if n, err := strconv.ParseUint(s, 10, 32); err == nil {
			v = uint(n)
			return &v, true, true
		}
	}
	return nil, false, false
}

// optionalDate decodes a nullable YYYY-MM-DD date field.
func optionalDate(raw json.RawMessage) (date *time.Time, set bool, ok bool) {
	if len(raw) == 0 {
		return nil, false, true
	}
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil, true, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, false
	}
	if strings.TrimSpace(s) == "" {
		return nil, true, true
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil, false, false
	}
	return &t, true, true
}
