package models

import "time"

// Board is a kanban board. The owner is an implicit member and is never
// materialized into the board_members table.
type Board struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Owner       User          `json:"-"`
	Memberships []BoardMember `gorm:"foreignKey:BoardID" json:"memberships,omitempty"`
	Tasks       []Task        `gorm:"foreignKey:BoardID" json:"tasks,omitempty"`
}

// BoardMember is the join table for explicit board memberships,
// unique per (board, user).
type BoardMember struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	BoardID uint      `gorm:"not null;uniqueIndex:idx_board_members_board_user" json:"board_id"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_board_members_board_user" json:"user_id"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`

	// Relations
	Board Board `json:"-"`
	User  User  `json:"-"`
}
