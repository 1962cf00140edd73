package service

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/templui/betterme/internal/model"
	"github.com/templui/betterme/internal/repository"
	"github.com/templui/betterme/internal/validation"
)

// IdentityService maps a provider identity onto a local user, creating the
// user on first sight.
type IdentityService struct {
	users repository.UserRepository
	email *EmailService
	now   func() time.Time
}

func NewIdentityService(users repository.UserRepository, email *EmailService) *IdentityService {
	return &IdentityService{
		users: users,
		email: email,
		now:   utcNow,
	}
}

// ResolveUser returns the local user for identity, or nil when there is no
// identity or the lookup fails. Failures are logged, never returned.
//
// A user found by email whose stored external id differs is relinked to the
// new id, so signing in with another provider lands on the same account.
func (s *IdentityService) ResolveUser(identity *model.ExternalIdentity) *model.User {
	if identity == nil || identity.ID == "" {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))

	user, err := s.users.ByExternalIDOrEmail(identity.ID, email)
	if err == nil {
		if user.ExternalID != identity.ID {
			user.ExternalID = identity.ID
			user.UpdatedAt = s.now()
			err = s.users.Update(user)
			if err != nil {
				slog.Error("failed to relink external identity", "error", err, "user_id", user.ID, "provider", identity.Provider())
				return nil
			}
			slog.Info("external identity relinked", "user_id", user.ID, "provider", identity.Provider())
		}
		return user
	}

	if !errors.Is(err, repository.ErrUserNotFound) {
		slog.Error("failed to look up user", "error", err, "provider", identity.Provider())
		return nil
	}

	return s.provision(identity, email)
}

func (s *IdentityService) provision(identity *model.ExternalIdentity, email string) *model.User {
	err := validation.ValidateEmail(email)
	if err != nil {
		slog.Warn("identity has no usable email", "error", err, "provider", identity.Provider())
		return nil
	}

	now := s.now()
	user := &model.User{
		ID:         uuid.New().String(),
		ExternalID: identity.ID,
		Email:      email,
		FirstName:  optional(identity.GivenName),
		LastName:   optional(identity.FamilyName),
		Picture:    optional(identity.Picture),
		Theme:      model.ThemeNature,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.users.Create(user)
	if err != nil {
		slog.Error("failed to create user", "error", err, "email", email, "provider", identity.Provider())
		return nil
	}

	slog.Info("new user created", "user_id", user.ID, "email", email, "provider", identity.Provider())

	if s.email != nil {
		err = s.email.SendWelcomeEmail(user.Email, user.DisplayName())
		if err != nil {
			slog.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
		}
	}

	return user
}

func optional(s string) *string {
	return validation.OptionalText(&s)
}
