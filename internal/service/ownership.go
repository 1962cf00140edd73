package service

import (
	"errors"
	"log/slog"

	"github.com/templui/betterme/internal/model"
	"github.com/templui/betterme/internal/repository"
)

// OwnershipGuard answers "does this user own that record". It never returns
// an error: a missing record, someone else's record and a failed query all
// read as false so callers can only ever report "not found".
type OwnershipGuard struct {
	goals repository.GoalRepository
	steps repository.StepRepository
}

func NewOwnershipGuard(goals repository.GoalRepository, steps repository.StepRepository) *OwnershipGuard {
	return &OwnershipGuard{goals: goals, steps: steps}
}

func (g *OwnershipGuard) VerifyGoalOwnership(goalID, userID string) bool {
	if goalID == "" || userID == "" {
		return false
	}

	_, err := g.goals.ByID(userID, goalID)
	if err != nil {
		if !errors.Is(err, repository.ErrGoalNotFound) {
			slog.Error("failed to verify goal ownership", "error", err, "goal_id", goalID, "user_id", userID)
		}
		return false
	}

	return true
}

// StepForUser loads a step and checks its parent goal belongs to userID.
func (g *OwnershipGuard) StepForUser(stepID, userID string) (*model.Step, bool) {
	if stepID == "" || userID == "" {
		return nil, false
	}

	step, err := g.steps.ByID(stepID)
	if err != nil {
		if !errors.Is(err, repository.ErrStepNotFound) {
			slog.Error("failed to load step", "error", err, "step_id", stepID, "user_id", userID)
		}
		return nil, false
	}

	if !g.VerifyGoalOwnership(step.GoalID, userID) {
		return nil, false
	}

	return step, true
}
