package model

import (
	"time"
)

type Step struct {
	ID          string     `db:"id" json:"id"`
	GoalID      string     `db:"goal_id" json:"goal_id"`
	Title       string     `db:"title" json:"title"`
	IsCompleted bool       `db:"is_completed" json:"is_completed"`
	Order       int        `db:"sort_order" json:"order"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at"`
}
