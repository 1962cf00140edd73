package validation

import (
	"unicode/utf8"
)

const NameMax = 100

// ValidateName checks an optional profile name. Blank names are cleared
// rather than rejected.
func ValidateName(field string, name *string) (*string, error) {
	trimmed := OptionalText(name)
	if trimmed == nil {
		return nil, nil
	}

	if utf8.RuneCountInString(*trimmed) > NameMax {
		return nil, newError(field, "Name is too long (max %d characters)", NameMax)
	}

	return trimmed, nil
}
