package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/templui/betterme/internal/db"
	"github.com/templui/betterme/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
	return database
}

var baseTime = time.Date(2025, time.February, 10, 9, 0, 0, 0, time.UTC)

func createUser(t *testing.T, repo UserRepository, email string) *model.User {
	t.Helper()

	user := &model.User{
		ID:         uuid.New().String(),
		ExternalID: "google|" + email,
		Email:      email,
		Theme:      model.ThemeNature,
		CreatedAt:  baseTime,
		UpdatedAt:  baseTime,
	}
	require.NoError(t, repo.Create(user))
	return user
}

func createGoal(t *testing.T, repo GoalRepository, userID, title, season, status string, createdAt time.Time) *model.Goal {
	t.Helper()

	goal := &model.Goal{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Season:    season,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if status == model.GoalStatusCompleted {
		completed := createdAt.Add(time.Hour)
		goal.CompletedAt = &completed
	}
	require.NoError(t, repo.Create(goal))
	return goal
}

func newStep(goalID, title string) *model.Step {
	return &model.Step{
		ID:        uuid.New().String(),
		GoalID:    goalID,
		Title:     title,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
}
