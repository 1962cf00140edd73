package model

import (
	"time"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusArchived  = "archived"
)

type Goal struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	Season      string     `db:"season" json:"season"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at"`
}

func IsGoalStatus(status string) bool {
	switch status {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusArchived:
		return true
	}
	return false
}

// GoalWithSteps is the read model returned wherever a goal is displayed.
type GoalWithSteps struct {
	*Goal
	Steps           []*Step `json:"steps"`
	Progress        int     `json:"progress"`
	ProgressMessage string  `json:"progress_message"`
	SeasonLabel     string  `json:"season_label"`
	DescriptionHTML string  `json:"description_html,omitempty"`
}
