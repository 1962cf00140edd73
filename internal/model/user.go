package model

import (
	"time"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeNature = "nature"
)

type User struct {
	ID         string    `db:"id" json:"id"`
	ExternalID string    `db:"external_id" json:"-"`
	Email      string    `db:"email" json:"email"`
	FirstName  *string   `db:"first_name" json:"first_name"`
	LastName   *string   `db:"last_name" json:"last_name"`
	Picture    *string   `db:"picture" json:"picture"`
	Theme      string    `db:"theme" json:"theme"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName falls back to the email when no name is set.
func (u *User) DisplayName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 {
		return u.Email
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + " " + parts[1]
}
