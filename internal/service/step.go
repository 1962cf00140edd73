package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/templui/betterme/internal/model"
	"github.com/templui/betterme/internal/repository"
	"github.com/templui/betterme/internal/validation"
)

type StepPatch struct {
	Title       *string
	IsCompleted *bool
	Order       *int
}

type StepService struct {
	steps repository.StepRepository
	guard *OwnershipGuard
	now   func() time.Time
}

func NewStepService(steps repository.StepRepository, guard *OwnershipGuard) *StepService {
	return &StepService{
		steps: steps,
		guard: guard,
		now:   utcNow,
	}
}

func (s *StepService) ListSteps(goalID, userID string) ([]*model.Step, error) {
	if !s.guard.VerifyGoalOwnership(goalID, userID) {
		return nil, repository.ErrGoalNotFound
	}

	steps, err := s.steps.Steps(goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch steps: %w", err)
	}

	return steps, nil
}

// CreateStep appends a step to the goal unless order is given.
func (s *StepService) CreateStep(goalID, userID, title string, order *int) (*model.Step, error) {
	title, err := validation.StepTitle(title)
	if err != nil {
		return nil, err
	}

	if !s.guard.VerifyGoalOwnership(goalID, userID) {
		return nil, repository.ErrGoalNotFound
	}

	now := s.now()
	step := &model.Step{
		ID:        uuid.New().String(),
		GoalID:    goalID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.steps.Create(userID, step, order)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create step: %w", err)
	}

	return step, nil
}

func (s *StepService) UpdateStep(stepID, userID string, patch StepPatch) (*model.Step, error) {
	step, ok := s.guard.StepForUser(stepID, userID)
	if !ok {
		return nil, repository.ErrStepNotFound
	}

	return s.apply(step, userID, patch)
}

// ToggleStep flips the completion flag.
func (s *StepService) ToggleStep(stepID, userID string) (*model.Step, error) {
	step, ok := s.guard.StepForUser(stepID, userID)
	if !ok {
		return nil, repository.ErrStepNotFound
	}

	completed := !step.IsCompleted
	return s.apply(step, userID, StepPatch{IsCompleted: &completed})
}

// DeleteStep removes the step and returns the id of the goal it belonged to.
func (s *StepService) DeleteStep(stepID, userID string) (string, error) {
	step, ok := s.guard.StepForUser(stepID, userID)
	if !ok {
		return "", repository.ErrStepNotFound
	}

	err := s.steps.Delete(userID, stepID)
	if err != nil {
		if errors.Is(err, repository.ErrStepNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to delete step: %w", err)
	}

	return step.GoalID, nil
}

// apply keeps completed_at in line with the flag: set when a step becomes
// complete, cleared when it is reopened.
func (s *StepService) apply(step *model.Step, userID string, patch StepPatch) (*model.Step, error) {
	if patch.Title != nil {
		title, err := validation.StepTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		step.Title = title
	}

	if patch.Order != nil {
		step.Order = *patch.Order
	}

	now := s.now()
	if patch.IsCompleted != nil && *patch.IsCompleted != step.IsCompleted {
		step.IsCompleted = *patch.IsCompleted
		if step.IsCompleted {
			step.CompletedAt = &now
		} else {
			step.CompletedAt = nil
		}
	}

	step.UpdatedAt = now

	err := s.steps.Update(userID, step)
	if err != nil {
		if errors.Is(err, repository.ErrStepNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update step: %w", err)
	}

	return step, nil
}
