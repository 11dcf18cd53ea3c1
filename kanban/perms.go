package kanban

import (
	"errors"

	"gorm.io/gorm"

	"taskboard/models"
)

// The permission engine. Visibility is membership in the board's effective
// member set; destructive board and task operations are owner-only; comment
// deletion is author-only. Operations addressing a board the actor cannot
// view resolve to NotFound so non-members never learn the board exists.

// EffectiveMemberIDs returns the board's effective member set: the owner id
// unioned with every explicit membership row, de-duplicated.
func EffectiveMemberIDs(db *gorm.DB, board *models.Board) (map[uint]struct{}, error) {
	var ids []uint
	if err := db.Model(&models.BoardMember{}).
		Where("board_id = ?", board.ID).
		Distinct("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]struct{}, len(ids)+1)
	set[board.OwnerID] = struct{}{}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// IsEffectiveMember reports whether userID is the owner or an explicit member.
func IsEffectiveMember(db *gorm.DB, board *models.Board, userID uint) (bool, error) {
	if board.OwnerID == userID {
		return true, nil
	}
	var count int64
	err := db.Model(&models.BoardMember{}).
		Where("board_id = ? AND user_id = ?", board.ID, userID).
		Count(&count).Error
	return count > 0, err
}

// CanView reports whether the actor may see the board at all.
func CanView(db *gorm.DB, actor *models.User, board *models.Board) (bool, error) {
	return IsEffectiveMember(db, board, actor.ID)
}

// CanModify reports whether the actor may perform destructive board
// operations. Owner only.
func CanModify(actor *models.User, board *models.Board) bool {
	return board.OwnerID == actor.ID
}

// CanAccessTask delegates to the visibility of the task's board.
func CanAccessTask(db *gorm.DB, actor *models.User, task *models.Task) (bool, error) {
	var board models.Board
	if err := db.First(&board, task.BoardID).Error; err != nil {
		return false, err
	}
	return CanView(db, actor, &board)
}

// CanDeleteComment requires both authorship and board visibility. The author
// check implies visibility in practice, but a removed member must not keep
// delete rights over a board they can no longer see.
func CanDeleteComment(db *gorm.DB, actor *models.User, comment *models.Comment) (bool, error) {
	if comment.AuthorID != actor.ID {
		return false, nil
	}
	var task models.Task
	if err := db.First(&task, comment.TaskID).Error; err != nil {
		return false, err
	}
	return CanAccessTask(db, actor, &task)
}

// visibleBoard loads a board the actor may view. A missing board and a board
// the actor has no relation to produce the same NotFound outcome.
func (s *Service) visibleBoard(actor *models.User, boardID uint) (*models.Board, error) {
	var board models.Board
	if err := s.DB.First(&board, boardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound()
		}
		return nil, err
	}
	ok, err := CanView(s.DB, actor, &board)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NotFound()
	}
	return &board, nil
}

// ownedBoard loads a board for a destructive operation: NotFound for
// non-members, Forbidden for members who are not the owner.
func (s *Service) ownedBoard(actor *models.User, boardID uint) (*models.Board, error) {
	board, err := s.visibleBoard(actor, boardID)
	if err != nil {
		return nil, err
	}
	if !CanModify(actor, board) {
		return nil, Forbidden()
	}
	return board, nil
}
