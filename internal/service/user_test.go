package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/betterme/internal/model"
	"github.com/templui/betterme/internal/repository"
	"github.com/templui/betterme/internal/validation"
)

func TestSettings(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "ada@example.com")

	settings, err := env.accounts.Settings(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", settings.Email)
	assert.Equal(t, "Test", settings.DisplayName)
	assert.Equal(t, model.ThemeNature, settings.Theme)
	assert.True(t, settings.PictureUploads)

	_, err = env.accounts.Settings("missing")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "ada@example.com")

	settings, err := env.accounts.UpdateProfile(user.ID, ptr(" Ada "), ptr("Lovelace"))
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", settings.DisplayName)

	settings, err = env.accounts.UpdateProfile(user.ID, ptr(""), nil)
	require.NoError(t, err)
	assert.Nil(t, settings.FirstName)
	assert.Nil(t, settings.LastName)
	assert.Equal(t, "ada@example.com", settings.DisplayName)

	_, err = env.accounts.UpdateProfile(user.ID, ptr(strings.Repeat("a", 101)), nil)
	_, ok := validation.AsError(err)
	assert.True(t, ok)
}

func TestUpdateTheme(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "ada@example.com")

	settings, err := env.accounts.UpdateTheme(user.ID, model.ThemeDark)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, settings.Theme)

	_, err = env.accounts.UpdateTheme(user.ID, "neon")
	_, ok := validation.AsError(err)
	assert.True(t, ok)

	stored, err := env.users.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, stored.Theme)
}

func TestUploadPicture(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "ada@example.com")

	settings, err := env.accounts.UploadPicture(user.ID, fileHeader(t, "me.png", pngBytes))
	require.NoError(t, err)
	require.NotNil(t, settings.Picture)
	assert.True(t, strings.HasPrefix(*settings.Picture, "https://cdn.example.com/pictures/"+user.ID+"/"))

	stored, err := env.users.ByID(user.ID)
	require.NoError(t, err)
	first := *stored.Picture
	assert.True(t, env.storage.has(first))

	_, err = env.accounts.UploadPicture(user.ID, fileHeader(t, "again.png", pngBytes))
	require.NoError(t, err)
	assert.False(t, env.storage.has(first))

	_, err = env.accounts.UploadPicture(user.ID, fileHeader(t, "notes.png", []byte("just text")))
	_, ok := validation.AsError(err)
	assert.True(t, ok)
}

func TestUploadPicture_Disabled(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "ada@example.com")

	accounts := NewUserService(env.users, NewFileService(nil), nil)
	_, err := accounts.UploadPicture(user.ID, fileHeader(t, "me.png", pngBytes))
	assert.ErrorIs(t, err, ErrStorageDisabled)

	settings, err := accounts.Settings(user.ID)
	require.NoError(t, err)
	assert.False(t, settings.PictureUploads)
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "ada@example.com")
	goal := env.goal(t, user.ID, "Learn piano")
	step, err := env.steps.CreateStep(goal.ID, user.ID, "Scales", nil)
	require.NoError(t, err)

	settings, err := env.accounts.UploadPicture(user.ID, fileHeader(t, "me.png", pngBytes))
	require.NoError(t, err)
	require.NotNil(t, settings.Picture)

	require.NoError(t, env.accounts.DeleteAccount(user.ID))

	_, err = env.users.ByID(user.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, ok := env.guard.StepForUser(step.ID, user.ID)
	assert.False(t, ok)
	assert.Empty(t, env.storage.objects)

	assert.ErrorIs(t, env.accounts.DeleteAccount(user.ID), repository.ErrUserNotFound)
}
