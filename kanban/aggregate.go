package kanban

import (
	"sort"

	"gorm.io/gorm"

	"taskboard/models"
)

// The aggregation engine. Every counter is computed fresh from the store per
// request; nothing is denormalized or cached.

// VisibleBoardIDs returns the ids of all boards the user owns or is an
// explicit member of, as a set union de-duplicated at the board level.
func VisibleBoardIDs(db *gorm.DB, userID uint) ([]uint, error) {
	var owned []uint
	if err := db.Model(&models.Board{}).
		Where("owner_id = ?", userID).
		Pluck("id", &owned).Error; err != nil {
		return nil, err
	}
	var member []uint
	if err := db.Model(&models.BoardMember{}).
		Where("user_id = ?", userID).
		Pluck("board_id", &member).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]struct{}, len(owned)+len(member))
	for _, id := range owned {
		set[id] = struct{}{}
	}
	for _, id := range member {
		set[id] = struct{}{}
	}
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// BoardSummary computes the per-board counters for the list representation.
// The owner counts as a member exactly once even if an explicit membership
// row exists for them.
func BoardSummary(db *gorm.DB, board *models.Board) (*BoardListItem, error) {
	members, err := EffectiveMemberIDs(db, board)
	if err != nil {
		return nil, err
	}
	item := &BoardListItem{
		ID:          board.ID,
		Title:       board.Title,
		MemberCount: int64(len(members)),
		OwnerID:     board.OwnerID,
	}
	if err := db.Model(&models.Task{}).
		Where("board_id = ?", board.ID).
		Count(&item.TicketCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).
		Where("board_id = ? AND status = ?", board.ID, models.StatusTodo).
		Count(&item.TasksToDoCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).
		Where("board_id = ? AND priority = ?", board.ID, models.PriorityHigh).
		Count(&item.TasksHighPrioCount).Error; err != nil {
		return nil, err
	}
	return item, nil
}

type groupCount struct {
	Key   string
	Count int64
}

// DashboardSummary computes totals by status and priority over the distinct
// set of tasks on the user's visible boards. Both maps carry every known
// enum value, zero-filled.
func DashboardSummary(db *gorm.DB, userID uint) (*DashboardStats, error) {
	stats := &DashboardStats{
		ByPriority: make(map[string]int64, len(models.Priorities)),
		ByStatus:   make(map[string]int64, len(models.Statuses)),
	}
	for _, p := range models.Priorities {
		stats.ByPriority[p] = 0
	}
	for _, st := range models.Statuses {
		stats.ByStatus[st] = 0
	}

	boardIDs, err := VisibleBoardIDs(db, userID)
	if err != nil {
		return nil, err
	}
	if len(boardIDs) == 0 {
		return stats, nil
	}

	if err := db.Model(&models.Task{}).
		Where("board_id IN ?", boardIDs).
		Count(&stats.TicketsTotal).Error; err != nil {
		return nil, err
	}

	var byPriority []groupCount
	if err := db.Model(&models.Task{}).
		Select("priority AS key, COUNT(id) AS count").
		Where("board_id IN ?", boardIDs).
		Group("priority").
		Scan(&byPriority).Error; err != nil {
		return nil, err
	}
	for _, row := range byPriority {
		stats.ByPriority[row.Key] = row.Count
	}

	var byStatus []groupCount
	if err := db.Model(&models.Task{}).
		Select("status AS key, COUNT(id) AS count").
		Where("board_id IN ?", boardIDs).
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Key] = row.Count
	}
	return stats, nil
}

// commentCounts returns comments-per-task counts for the given task ids.
// Computed at read time, never stored.
func commentCounts(db *gorm.DB, taskIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(taskIDs))
	if len(taskIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		TaskID uint
		Count  int64
	}
	if err := db.Model(&models.Comment{}).
		Select("task_id, COUNT(id) AS count").
		Where("task_id IN ?", taskIDs).
		Group("task_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.TaskID] = row.Count
	}
	return counts, nil
}
