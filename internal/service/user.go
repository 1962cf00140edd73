package service

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/templui/betterme/internal/model"
	"github.com/templui/betterme/internal/repository"
	"github.com/templui/betterme/internal/validation"
)

// Settings is the account view returned by /api/me and /api/settings.
type Settings struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	DisplayName    string  `json:"display_name"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Picture        *string `json:"picture"`
	Theme          string  `json:"theme"`
	PictureUploads bool    `json:"picture_uploads"`
}

type UserService struct {
	users repository.UserRepository
	files *FileService
	email *EmailService
	now   func() time.Time
}

func NewUserService(users repository.UserRepository, files *FileService, email *EmailService) *UserService {
	return &UserService{
		users: users,
		files: files,
		email: email,
		now:   utcNow,
	}
}

// View renders user without another database round trip.
func (s *UserService) View(user *model.User) *Settings {
	settings := &Settings{
		ID:             user.ID,
		Email:          user.Email,
		DisplayName:    user.DisplayName(),
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Theme:          user.Theme,
		PictureUploads: s.files.Enabled(),
	}
	if user.Picture != nil {
		url := s.files.URL(*user.Picture)
		settings.Picture = &url
	}
	return settings
}

func (s *UserService) Settings(userID string) (*Settings, error) {
	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	return s.View(user), nil
}

// UpdateProfile sets both names. Blank names are stored as null.
func (s *UserService) UpdateProfile(userID string, firstName, lastName *string) (*Settings, error) {
	first, err := validation.ValidateName("first_name", firstName)
	if err != nil {
		return nil, err
	}
	last, err := validation.ValidateName("last_name", lastName)
	if err != nil {
		return nil, err
	}

	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = first
	user.LastName = last

	return s.save(user, "failed to update profile")
}

func (s *UserService) UpdateTheme(userID, theme string) (*Settings, error) {
	err := validation.ValidateTheme(theme)
	if err != nil {
		return nil, err
	}

	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	user.Theme = theme

	return s.save(user, "failed to update theme")
}

// UploadPicture replaces the profile picture. The previous picture is
// removed from storage once the new one is saved.
func (s *UserService) UploadPicture(userID string, header *multipart.FileHeader) (*Settings, error) {
	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	key, err := s.files.UploadPicture(userID, header)
	if err != nil {
		return nil, err
	}

	previous := user.Picture
	user.Picture = &key

	settings, err := s.save(user, "failed to update picture")
	if err != nil {
		s.files.Delete(key)
		return nil, err
	}

	if previous != nil {
		s.files.Delete(*previous)
	}

	return settings, nil
}

// DeleteAccount removes the user. Goals and steps cascade in the database.
func (s *UserService) DeleteAccount(userID string) error {
	user, err := s.user(userID)
	if err != nil {
		return err
	}

	err = s.users.Delete(userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if user.Picture != nil {
		s.files.Delete(*user.Picture)
	}

	if s.email != nil {
		err = s.email.SendAccountDeletedEmail(user.Email, user.DisplayName())
		if err != nil {
			slog.Warn("failed to send account deleted email", "error", err, "user_id", userID)
		}
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}

func (s *UserService) user(userID string) (*model.User, error) {
	user, err := s.users.ByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) save(user *model.User, failure string) (*Settings, error) {
	user.UpdatedAt = s.now()

	err := s.users.Update(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", failure, err)
	}

	return s.View(user), nil
}
