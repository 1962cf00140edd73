package validation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestGoalTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{"two chars", "ab", "", "Title must be at least 3 characters"},
		{"three chars", "abc", "abc", ""},
		{"padded", "   Learn piano  ", "Learn piano", ""},
		{"whitespace only", "     ", "", "Title must be at least 3 characters"},
		{"hundred", strings.Repeat("a", 100), strings.Repeat("a", 100), ""},
		{"hundred and one", strings.Repeat("a", 101), "", "Title must be at most 100 characters"},
		{"multibyte counts runes", strings.Repeat("é", 100), strings.Repeat("é", 100), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GoalTitle(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				verr, ok := AsError(err)
				require.True(t, ok)
				assert.Equal(t, "title", verr.Field)
				assert.Equal(t, tt.wantErr, verr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStepTitle(t *testing.T) {
	_, err := StepTitle("a")
	assert.EqualError(t, err, "Title must be at least 2 characters")

	got, err := StepTitle(" ab ")
	require.NoError(t, err)
	assert.Equal(t, "ab", got)

	_, err = StepTitle(strings.Repeat("x", 200))
	assert.NoError(t, err)

	_, err = StepTitle(strings.Repeat("x", 201))
	assert.EqualError(t, err, "Title must be at most 200 characters")
}

func TestOptionalText(t *testing.T) {
	assert.Nil(t, OptionalText(nil))
	assert.Nil(t, OptionalText(ptr("   ")))
	assert.Equal(t, "hi", *OptionalText(ptr("  hi ")))
}

func TestValidateName(t *testing.T) {
	got, err := ValidateName("first_name", ptr("  Ada "))
	require.NoError(t, err)
	assert.Equal(t, "Ada", *got)

	got, err = ValidateName("first_name", ptr(""))
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ValidateName("last_name", ptr(strings.Repeat("n", 101)))
	verr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "last_name", verr.Field)
}

func TestValidateTheme(t *testing.T) {
	for _, theme := range []string{"light", "dark", "nature"} {
		assert.NoError(t, ValidateTheme(theme))
	}
	assert.EqualError(t, ValidateTheme("solarized"), "Invalid theme")
}

func TestValidateGoalStatus(t *testing.T) {
	assert.NoError(t, ValidateGoalStatus("archived"))
	assert.Error(t, ValidateGoalStatus("paused"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ada@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@x.io"))
}

func TestSniff(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	got, err := sniff(bytes.NewReader(png), "me.PNG", ImageConstraints)
	require.NoError(t, err)
	assert.Equal(t, "image/png", got)

	_, err = sniff(bytes.NewReader(png), "me.gif", ImageConstraints)
	assert.Error(t, err)

	_, err = sniff(strings.NewReader("plain text"), "me.png", ImageConstraints)
	verr, ok := AsError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Message, "Invalid file type")
}
