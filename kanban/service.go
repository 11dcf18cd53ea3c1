package kanban

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskboard/models"
)

// Service is the authorization-aware query and mutation layer over boards,
// tasks, and comments. Every method takes the authenticated actor and
// decides visibility and permission before touching the store.
type Service struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{DB: db, Log: log}
}

// BoardCreateInput carries a new board's title and optional member ids.
type BoardCreateInput struct {
	Title   string `json:"title"`
	Members []uint `json:"members"`
}

// BoardUpdateInput is a partial board update. A present members list has
// replace semantics over the explicit membership set.
type BoardUpdateInput struct {
	Title   *string `json:"title"`
	Members *[]uint `json:"members"`
}

// validateTitle trims and bounds-checks a board title.
func validateTitle(title string) (string, *Error) {
	title = strings.TrimSpace(title)
	if n := utf8.RuneCountInString(title); n < 3 || n > 63 {
		return "", Invalid("title", "Title must be between 3 and 63 characters.")
	}
	return title, nil
}

// validateMemberIDs checks that every id resolves to an existing user.
// Unknown ids are collected into one combined error, sorted ascending.
func (s *Service) validateMemberIDs(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var found []uint
	if err := s.DB.Model(&models.User{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	known := make(map[uint]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var missing []uint
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	parts := make([]string, len(missing))
	for i, id := range missing {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return Invalid("members", "Unknown user IDs: "+strings.Join(parts, ", "))
}

// ListBoards returns the actor's visible boards, ordered by id, with fresh
// counters.
func (s *Service) ListBoards(actor *models.User) ([]BoardListItem, error) {
	ids, err := VisibleBoardIDs(s.DB, actor.ID)
	if err != nil {
		return nil, err
	}
	items := make([]BoardListItem, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	var boards []models.Board
	if err := s.DB.Where("id IN ?", ids).Order("id").Find(&boards).Error; err != nil {
		return nil, err
	}
	for i := range boards {
		item, err := BoardSummary(s.DB, &boards[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// CreateBoard creates a board owned by the actor and attaches the given
// member ids. The owner is never written into the membership table.
func (s *Service) CreateBoard(actor *models.User, in BoardCreateInput) (*BoardListItem, error) {
	title, verr := validateTitle(in.Title)
	if verr != nil {
		return nil, verr
	}
	if err := s.validateMemberIDs(in.Members); err != nil {
		return nil, err
	}

	board := models.Board{Title: title, OwnerID: actor.ID}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&board).Error; err != nil {
			return err
		}
		seen := map[uint]struct{}{actor.ID: {}}
		for _, uid := range in.Members {
			if _, ok := seen[uid]; ok {
				continue
			}
			seen[uid] = struct{}{}
			if err := tx.Create(&models.BoardMember{BoardID: board.ID, UserID: uid}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.WithFields(logrus.Fields{"board": board.ID, "owner": actor.ID}).Info("board created")
	return BoardSummary(s.DB, &board)
}

// GetBoard returns the detail representation of a visible board.
func (s *Service) GetBoard(actor *models.User, boardID uint) (*BoardDetail, error) {
	board, err := s.visibleBoard(actor, boardID)
	if err != nil {
		return nil, err
	}
	return s.boardDetail(board)
}

// UpdateBoard applies a partial update. A present members list replaces the
// explicit membership set atomically; the owner is always retained.
func (s *Service) UpdateBoard(actor *models.User, boardID uint, in BoardUpdateInput) (*BoardDetail, error) {
	board, err := s.visibleBoard(actor, boardID)
	if err != nil {
		return nil, err
	}

	var title string
	if in.Title != nil {
		var verr *Error
		title, verr = validateTitle(*in.Title)
		if verr != nil {
			return nil, verr
		}
	}
	if in.Members != nil {
		if err := s.validateMemberIDs(*in.Members); err != nil {
			return nil, err
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if in.Title != nil {
			if err := tx.Model(board).Update("title", title).Error; err != nil {
				return err
			}
		}
		if in.Members != nil {
			return replaceMembers(tx, board, *in.Members)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.boardDetail(board)
}

// replaceMembers sets the explicit membership rows to exactly the desired
// ids. The owner stays implicit: replace never inserts or deletes an owner
// row, so dropping the owner from the list is a no-op.
func replaceMembers(tx *gorm.DB, board *models.Board, ids []uint) error {
	desired := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == board.OwnerID {
			continue
		}
		desired[id] = struct{}{}
	}

	var current []uint
	if err := tx.Model(&models.BoardMember{}).
		Where("board_id = ?", board.ID).
		Pluck("user_id", &current).Error; err != nil {
		return err
	}
	keep := make(map[uint]struct{}, len(current))
	var removed []uint
	for _, uid := range current {
		if _, ok := desired[uid]; ok {
			keep[uid] = struct{}{}
		} else {
			removed = append(removed, uid)
		}
	}
	if len(removed) > 0 {
		if err := tx.Where("board_id = ? AND user_id IN ?", board.ID, removed).
			Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}
	}
	for uid := range desired {
		if _, ok := keep[uid]; ok {
			continue
		}
		member := models.BoardMember{BoardID: board.ID, UserID: uid}
		if err := tx.Where("board_id = ? AND user_id = ?", board.ID, uid).
			FirstOrCreate(&member).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteBoard removes a board with its tasks and their comments in one
// transaction. Owner only.
func (s *Service) DeleteBoard(actor *models.User, boardID uint) error {
	board, err := s.ownedBoard(actor, boardID)
	if err != nil {
		return err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("board_id = ?", board.ID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", board.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", board.ID).Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(board).Error
	})
	if err != nil {
		return err
	}
	s.Log.WithFields(logrus.Fields{"board": board.ID, "owner": actor.ID}).Info("board deleted")
	return nil
}

// boardDetail builds the detail shape: effective members ordered by id and
// all tasks with their comment counts.
func (s *Service) boardDetail(board *models.Board) (*BoardDetail, error) {
	memberSet, err := EffectiveMemberIDs(s.DB, board)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]uint, 0, len(memberSet))
	for id := range memberSet {
		memberIDs = append(memberIDs, id)
	}
	var users []models.User
	if err := s.DB.Where("id IN ?", memberIDs).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	members := make([]UserMini, len(users))
	for i := range users {
		members[i] = *miniUser(&users[i])
	}

	var tasks []models.Task
	if err := s.DB.Preload("Assignee").Preload("Reviewer").
		Where("board_id = ?", board.ID).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	taskIDs := make([]uint, len(tasks))
	for i := range tasks {
		taskIDs[i] = tasks[i].ID
	}
	counts, err := commentCounts(s.DB, taskIDs)
	if err != nil {
		return nil, err
	}
	out := make([]TaskOnBoard, len(tasks))
	for i := range tasks {
		out[i] = taskOnBoard(&tasks[i], counts[tasks[i].ID])
	}

	return &BoardDetail{
		ID:      board.ID,
		Title:   board.Title,
		OwnerID: board.OwnerID,
		Members: members,
		Tasks:   out,
	}, nil
}

// resolveMemberRef validates a nullable assignee/reviewer reference against
// the board's effective member set. Returns the id to store and whether the
// field was present at all; problems are accumulated on verr.
func (s *Service) resolveMemberRef(board *models.Board, field string, raw []byte, verr *Error) (*uint, bool) {
	id, set, ok := optionalID(raw)
	if !ok {
		verr.Add(field, "A valid integer is required.")
		return nil, false
	}
	if !set || id == nil {
		return nil, set
	}
	var count int64
	if err := s.DB.Model(&models.User{}).Where("id = ?", *id).Count(&count).Error; err != nil || count == 0 {
		verr.Add(field, fmt.Sprintf("Unknown user ID: %d", *id))
		return nil, false
	}
	member, err := IsEffectiveMember(s.DB, board, *id)
	if err != nil || !member {
		verr.Add(field, "User is not a member of this board.")
		return nil, false
	}
	return id, true
}

// CreateTask validates and persists a new task on a board visible to the
// actor. The input must already be parsed; Normalize runs here so legacy
// payloads and current ones are treated identically.
func (s *Service) CreateTask(actor *models.User, in *TaskInput) (*models.Task, error) {
	in.Normalize()

	if in.Board == nil {
		return nil, Invalid("board", "This field is required.")
	}
	board, err := s.visibleBoard(actor, *in.Board)
	if err != nil {
		return nil, err
	}

	verr := newValidation()
	task := models.Task{
		BoardID:  board.ID,
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
	}

	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		verr.Add("title", "This field is required.")
	} else {
		task.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		if !models.ValidStatus(*in.Status) {
			verr.Add("status", fmt.Sprintf("%q is not a valid choice.", *in.Status))
		} else {
			task.Status = *in.Status
		}
	}
	if in.Priority != nil {
		if !models.ValidPriority(*in.Priority) {
			verr.Add("priority", fmt.Sprintf("%q is not a valid choice.", *in.Priority))
		} else {
			task.Priority = *in.Priority
		}
	}
	if id, _ := s.resolveMemberRef(board, "assignee_id", in.AssigneeID, verr); id != nil {
		task.AssigneeID = id
	}
	if id, _ := s.resolveMemberRef(board, "reviewer_id", in.ReviewerID, verr); id != nil {
		task.ReviewerID = id
	}
	if due, _, ok := optionalDate(in.DueDate); !ok {
		verr.Add("due_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	} else {
		task.DueDate = due
	}

	if !verr.Empty() {
		return nil, verr
	}
	if err := s.DB.Create(&task).Error; err != nil {
		return nil, err
	}
	s.Log.WithFields(logrus.Fields{"task": task.ID, "board": board.ID}).Info("task created")
	return &task, nil
}

// UpdateTask applies a partial update; only fields present in the payload
// are touched. Explicit nulls clear assignee, reviewer, or due date.
func (s *Service) UpdateTask(actor *models.User, taskID uint, in *TaskInput) error {
	task, board, err := s.visibleTaskBoard(actor, taskID)
	if err != nil {
		return err
	}
	in.Normalize()

	verr := newValidation()
	updates := map[string]interface{}{}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			verr.Add("title", "This field may not be blank.")
		} else {
			updates["title"] = title
		}
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Status != nil {
		if !models.ValidStatus(*in.Status) {
			verr.Add("status", fmt.Sprintf("%q is not a valid choice.", *in.Status))
		} else {
			updates["status"] = *in.Status
		}
	}
	if in.Priority != nil {
		if !models.ValidPriority(*in.Priority) {
			verr.Add("priority", fmt.Sprintf("%q is not a valid choice.", *in.Priority))
		} else {
			updates["priority"] = *in.Priority
		}
	}
	if id, set := s.resolveMemberRef(board, "assignee_id", in.AssigneeID, verr); set {
		updates["assignee_id"] = id
	}
	if id, set := s.resolveMemberRef(board, "reviewer_id", in.ReviewerID, verr); set {
		updates["reviewer_id"] = id
	}
	if due, set, ok := optionalDate(in.DueDate); !ok {
		verr.Add("due_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	} else if set {
		updates["due_date"] = due
	}

	if !verr.Empty() {
		return verr
	}
	if len(updates) == 0 {
		return nil
	}
	return s.DB.Model(task).Updates(updates).Error
}

// visibleTaskBoard loads a task and its board, applying existence hiding.
func (s *Service) visibleTaskBoard(actor *models.User, taskID uint) (*models.Task, *models.Board, error) {
	var task models.Task
	if err := s.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NotFound()
		}
		return nil, nil, err
	}
	board, err := s.visibleBoard(actor, task.BoardID)
	if err != nil {
		return nil, nil, err
	}
	return &task, board, nil
}

// GetTask returns the standalone task representation.
func (s *Service) GetTask(actor *models.User, taskID uint) (*TaskDetail, error) {
	if _, _, err := s.visibleTaskBoard(actor, taskID); err != nil {
		return nil, err
	}
	var task models.Task
	if err := s.DB.Preload("Assignee").Preload("Reviewer").First(&task, taskID).Error; err != nil {
		return nil, err
	}
	counts, err := commentCounts(s.DB, []uint{task.ID})
	if err != nil {
		return nil, err
	}
	detail := taskDetail(&task, counts[task.ID])
	return &detail, nil
}

// DeleteTask deletes a task and its comments atomically. Board owner only;
// members who are not the owner learn the task exists but may not remove it.
func (s *Service) DeleteTask(actor *models.User, taskID uint) error {
	task, board, err := s.visibleTaskBoard(actor, taskID)
	if err != nil {
		return err
	}
	if !CanModify(actor, board) {
		return Forbidden()
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		return err
	}
	s.Log.WithFields(logrus.Fields{"task": task.ID, "board": board.ID}).Info("task deleted")
	return nil
}

// ListTasks returns all tasks on the actor's visible boards, optionally
// filtered to tasks assigned to the actor.
func (s *Service) ListTasks(actor *models.User, assignedToMe bool) ([]TaskDetail, error) {
	boardIDs, err := VisibleBoardIDs(s.DB, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(boardIDs) == 0 {
		return []TaskDetail{}, nil
	}
	q := s.DB.Where("board_id IN ?", boardIDs)
	if assignedToMe {
		q = q.Where("assignee_id = ?", actor.ID)
	}
	return s.taskDetails(q)
}

// ListAssignedTasks returns the tasks where the actor is the assignee.
func (s *Service) ListAssignedTasks(actor *models.User) ([]TaskDetail, error) {
	return s.taskDetails(s.DB.Where("assignee_id = ?", actor.ID))
}

// ListReviewingTasks returns the tasks where the actor is the reviewer.
func (s *Service) ListReviewingTasks(actor *models.User) ([]TaskDetail, error) {
	return s.taskDetails(s.DB.Where("reviewer_id = ?", actor.ID))
}

func (s *Service) taskDetails(q *gorm.DB) ([]TaskDetail, error) {
	var tasks []models.Task
	if err := q.Preload("Assignee").Preload("Reviewer").Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	counts, err := commentCounts(s.DB, ids)
	if err != nil {
		return nil, err
	}
	out := make([]TaskDetail, len(tasks))
	for i := range tasks {
		out[i] = taskDetail(&tasks[i], counts[tasks[i].ID])
	}
	return out, nil
}

// ListComments returns a task's comments, newest first.
func (s *Service) ListComments(actor *models.User, taskID uint) ([]CommentOut, error) {
	if _, _, err := s.visibleTaskBoard(actor, taskID); err != nil {
		return nil, err
	}
	var comments []models.Comment
	if err := s.DB.Preload("Author").
		Where("task_id = ?", taskID).Order("id DESC").Find(&comments).Error; err != nil {
		return nil, err
	}
	out := make([]CommentOut, len(comments))
	for i := range comments {
		out[i] = commentOut(&comments[i])
	}
	return out, nil
}

// CreateComment posts a comment on a visible task. The author is always the
// actor, never client-supplied.
func (s *Service) CreateComment(actor *models.User, taskID uint, content string) (*CommentOut, error) {
	if _, _, err := s.visibleTaskBoard(actor, taskID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, Invalid("content", "Content required")
	}
	comment := models.Comment{TaskID: taskID, AuthorID: actor.ID, Content: content}
	if err := s.DB.Create(&comment).Error; err != nil {
		return nil, err
	}
	comment.Author = *actor
	out := commentOut(&comment)
	return &out, nil
}

// DeleteComment removes a comment. Author only, and the actor must still be
// able to view the parent board.
func (s *Service) DeleteComment(actor *models.User, taskID, commentID uint) error {
	var comment models.Comment
	if err := s.DB.Where("id = ? AND task_id = ?", commentID, taskID).
		First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound()
		}
		return err
	}
	if _, _, err := s.visibleTaskBoard(actor, taskID); err != nil {
		return err
	}
	ok, err := CanDeleteComment(s.DB, actor, &comment)
	if err != nil {
		return err
	}
	if !ok {
		return Forbidden()
	}
	return s.DB.Delete(&comment).Error
}

// Dashboard returns the actor's aggregate task stats.
func (s *Service) Dashboard(actor *models.User) (*DashboardStats, error) {
	return DashboardSummary(s.DB, actor.ID)
}
