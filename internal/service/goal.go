package service

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/templui/betterme/internal/markdown"
	"github.com/templui/betterme/internal/model"
	"github.com/templui/betterme/internal/progress"
	"github.com/templui/betterme/internal/repository"
	"github.com/templui/betterme/internal/season"
	"github.com/templui/betterme/internal/validation"
)

var ErrSeasonNotFound = errors.New("season not found")

type CreateGoalInput struct {
	Title       string
	Description *string
	Season      *string
}

// GoalPatch holds the fields to change; nil fields are left alone.
// An empty Description clears it.
type GoalPatch struct {
	Title       *string
	Description *string
	Status      *string
}

type GoalService struct {
	goals    repository.GoalRepository
	steps    repository.StepRepository
	markdown *markdown.Renderer
	now      func() time.Time
}

func NewGoalService(
	goals repository.GoalRepository,
	steps repository.StepRepository,
	md *markdown.Renderer,
) *GoalService {
	return &GoalService{
		goals:    goals,
		steps:    steps,
		markdown: md,
		now:      utcNow,
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// ListGoals returns the user's goals with steps and progress. Season and
// statuses in the filter are validated.
func (s *GoalService) ListGoals(userID string, filter repository.GoalFilter) ([]*model.GoalWithSteps, error) {
	if filter.Season != "" {
		if _, ok := season.ParseKey(filter.Season); !ok {
			return nil, &validation.Error{Field: "season", Message: "Invalid season"}
		}
	}
	for _, status := range filter.Statuses {
		err := validation.ValidateGoalStatus(status)
		if err != nil {
			return nil, err
		}
	}

	goals, err := s.goals.Goals(userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goals: %w", err)
	}

	return s.withSteps(goals)
}

// CurrentSeasonGoals feeds the dashboard: every goal of the current season,
// newest first.
func (s *GoalService) CurrentSeasonGoals(userID string) ([]*model.GoalWithSteps, season.Season, error) {
	current := season.At(s.now())

	goals, err := s.ListGoals(userID, repository.GoalFilter{
		Season: current.Key(),
		Order:  repository.GoalOrderCreatedDesc,
	})
	if err != nil {
		return nil, current, err
	}

	return goals, current, nil
}

// GoalsBySeason returns every goal filed under key, newest first.
func (s *GoalService) GoalsBySeason(userID, key string) ([]*model.GoalWithSteps, error) {
	if _, ok := season.ParseKey(key); !ok {
		return nil, ErrSeasonNotFound
	}

	return s.ListGoals(userID, repository.GoalFilter{
		Season: key,
		Order:  repository.GoalOrderCreatedDesc,
	})
}

// SeasonGoals returns the active goals of a season, oldest first.
func (s *GoalService) SeasonGoals(userID, key string) ([]*model.GoalWithSteps, error) {
	if _, ok := season.ParseKey(key); !ok {
		return nil, ErrSeasonNotFound
	}

	return s.ListGoals(userID, repository.GoalFilter{
		Season:   key,
		Statuses: []string{model.GoalStatusActive},
		Order:    repository.GoalOrderCreatedAsc,
	})
}

// ArchivedGoals returns completed and archived goals ordered by completion.
func (s *GoalService) ArchivedGoals(userID string) ([]*model.GoalWithSteps, error) {
	return s.ListGoals(userID, repository.GoalFilter{
		Statuses: []string{model.GoalStatusCompleted, model.GoalStatusArchived},
		Order:    repository.GoalOrderCompleted,
	})
}

// Seasons lists the seasons the user has goals in plus the current one,
// newest first. Stored keys that do not parse are skipped.
func (s *GoalService) Seasons(userID string) ([]season.View, error) {
	keys, err := s.goals.Seasons(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seasons: %w", err)
	}

	current := season.At(s.now())
	seasons := []season.Season{current}
	for _, key := range keys {
		sn, ok := season.ParseKey(key)
		if !ok {
			slog.Warn("skipping unparseable season key", "season", key, "user_id", userID)
			continue
		}
		if sn != current {
			seasons = append(seasons, sn)
		}
	}

	slices.SortFunc(seasons, func(a, b season.Season) int {
		switch {
		case b.Before(a):
			return -1
		case a.Before(b):
			return 1
		}
		return 0
	})

	views := make([]season.View, len(seasons))
	for i, sn := range seasons {
		views[i] = sn.View()
	}
	return views, nil
}

func (s *GoalService) GetGoal(goalID, userID string) (*model.GoalWithSteps, error) {
	goal, err := s.goals.ByID(userID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch goal: %w", err)
	}

	steps, err := s.steps.Steps(goal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch steps: %w", err)
	}

	return s.view(goal, steps), nil
}

func (s *GoalService) CreateGoal(userID string, input CreateGoalInput) (*model.GoalWithSteps, error) {
	title, err := validation.GoalTitle(input.Title)
	if err != nil {
		return nil, err
	}

	key := season.At(s.now()).Key()
	if explicit := validation.OptionalText(input.Season); explicit != nil {
		if _, ok := season.ParseKey(*explicit); !ok {
			return nil, &validation.Error{Field: "season", Message: "Invalid season"}
		}
		key = *explicit
	}

	now := s.now()
	goal := &model.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: validation.OptionalText(input.Description),
		Season:      key,
		Status:      model.GoalStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.goals.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	slog.Info("goal created", "goal_id", goal.ID, "user_id", userID, "season", key)
	return s.view(goal, []*model.Step{}), nil
}

// UpdateGoal applies patch. Entering the completed status stamps
// completed_at; leaving it clears the stamp.
func (s *GoalService) UpdateGoal(goalID, userID string, patch GoalPatch) (*model.GoalWithSteps, error) {
	goal, err := s.goals.ByID(userID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch goal: %w", err)
	}

	if patch.Title != nil {
		title, err := validation.GoalTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		goal.Title = title
	}

	if patch.Description != nil {
		goal.Description = validation.OptionalText(patch.Description)
	}

	now := s.now()
	if patch.Status != nil {
		err := validation.ValidateGoalStatus(*patch.Status)
		if err != nil {
			return nil, err
		}

		switch {
		case *patch.Status == model.GoalStatusCompleted && goal.Status != model.GoalStatusCompleted:
			goal.CompletedAt = &now
		case *patch.Status != model.GoalStatusCompleted:
			goal.CompletedAt = nil
		}
		goal.Status = *patch.Status
	}

	goal.UpdatedAt = now

	err = s.goals.Update(goal)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	steps, err := s.steps.Steps(goal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch steps: %w", err)
	}

	return s.view(goal, steps), nil
}

// DeleteGoal removes the goal; its steps go with it.
func (s *GoalService) DeleteGoal(goalID, userID string) error {
	err := s.goals.Delete(userID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	slog.Info("goal deleted", "goal_id", goalID, "user_id", userID)
	return nil
}

func (s *GoalService) withSteps(goals []*model.Goal) ([]*model.GoalWithSteps, error) {
	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}

	byGoal, err := s.steps.StepsByGoalIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch steps: %w", err)
	}

	views := make([]*model.GoalWithSteps, len(goals))
	for i, g := range goals {
		views[i] = s.view(g, byGoal[g.ID])
	}
	return views, nil
}

func (s *GoalService) view(goal *model.Goal, steps []*model.Step) *model.GoalWithSteps {
	if steps == nil {
		steps = []*model.Step{}
	}

	percent := progress.Calculate(steps)
	v := &model.GoalWithSteps{
		Goal:            goal,
		Steps:           steps,
		Progress:        percent,
		ProgressMessage: progress.Message(percent),
	}

	if sn, ok := season.ParseKey(goal.Season); ok {
		v.SeasonLabel = sn.Label()
	}

	if goal.Description != nil && s.markdown != nil {
		html, err := s.markdown.Render(*goal.Description)
		if err != nil {
			slog.Warn("failed to render goal description", "error", err, "goal_id", goal.ID)
		} else {
			v.DescriptionHTML = html
		}
	}

	return v
}
