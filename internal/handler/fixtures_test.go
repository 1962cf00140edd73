package handler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/templui/betterme/internal/model"
	"github.com/templui/betterme/internal/repository"
	"github.com/templui/betterme/internal/service"
)

var listAll = repository.GoalFilter{}

func createGoal(t *testing.T, env *testEnv, user *model.User, title string) *model.GoalWithSteps {
	t.Helper()

	goal, err := env.goalSvc.CreateGoal(user.ID, service.CreateGoalInput{Title: title})
	require.NoError(t, err)
	return goal
}

func createGoalIn(t *testing.T, env *testEnv, user *model.User, title, seasonKey string) *model.GoalWithSteps {
	t.Helper()

	goal, err := env.goalSvc.CreateGoal(user.ID, service.CreateGoalInput{Title: title, Season: &seasonKey})
	require.NoError(t, err)
	return goal
}

func createStep(t *testing.T, env *testEnv, user *model.User, goalID, title string) *model.Step {
	t.Helper()

	step, err := env.stepSvc.CreateStep(goalID, user.ID, title, nil)
	require.NoError(t, err)
	return step
}

func servicePatchStatus(status string) service.GoalPatch {
	return service.GoalPatch{Status: &status}
}
