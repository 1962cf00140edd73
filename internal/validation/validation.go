package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Error is a user-facing validation failure. Message is shown verbatim.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsError reports whether err carries a validation failure.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

const (
	GoalTitleMin = 3
	GoalTitleMax = 100
	StepTitleMin = 2
	StepTitleMax = 200
)

// GoalTitle trims title and checks its length in characters.
func GoalTitle(title string) (string, error) {
	return titleBetween(title, GoalTitleMin, GoalTitleMax)
}

// StepTitle trims title and checks its length in characters.
func StepTitle(title string) (string, error) {
	return titleBetween(title, StepTitleMin, StepTitleMax)
}

func titleBetween(title string, minLen, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(title)
	n := utf8.RuneCountInString(trimmed)

	if n < minLen {
		return "", newError("title", "Title must be at least %d characters", minLen)
	}
	if n > maxLen {
		return "", newError("title", "Title must be at most %d characters", maxLen)
	}

	return trimmed, nil
}

// OptionalText trims s; blank input becomes nil.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
