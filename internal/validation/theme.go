package validation

import "github.com/templui/betterme/internal/model"

func ValidateTheme(theme string) error {
	switch theme {
	case model.ThemeLight, model.ThemeDark, model.ThemeNature:
		return nil
	}
	return newError("theme", "Invalid theme")
}

func ValidateGoalStatus(status string) error {
	if !model.IsGoalStatus(status) {
		return newError("status", "Invalid status")
	}
	return nil
}
