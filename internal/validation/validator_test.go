package validation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/validation"
)

type signupRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,max=254,email"`
}

type titleRequest struct {
	Name  string `json:"name" validate:"required,max=256"`
	Year  *int   `json:"year" validate:"omitempty,notfuture"`
	Score int    `json:"score" validate:"min=1,max=10"`
	Slug  string `json:"slug" validate:"omitempty,max=50,slug"`
}

func intPtr(v int) *int { return &v }

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(signupRequest{Username: "reader.one", Email: "reader@example.com"}))
	assert.NoError(t, v.Validate(titleRequest{Name: "Solaris", Year: intPtr(1961), Score: 10, Slug: "sci-fi_1"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name  string
		req   any
		field string
		msg   string
	}{
		{"missing username", signupRequest{Email: "a@example.com"}, "username", "This field is required."},
		{"invalid email", signupRequest{Username: "alice", Email: "nope"}, "email", "Enter a valid email address."},
		{"bad username chars", signupRequest{Username: "al ice!", Email: "a@example.com"}, "username", "Username contains invalid characters:  !"},
		{"reserved username", signupRequest{Username: "Me", Email: "a@example.com"}, "username", `Username "Me" is reserved.`},
		{"score too low", titleRequest{Name: "x", Score: 0}, "score", "Ensure this value is greater than or equal to 1."},
		{"score too high", titleRequest{Name: "x", Score: 11}, "score", "Ensure this value is less than or equal to 10."},
		{"future year", titleRequest{Name: "x", Score: 5, Year: intPtr(time.Now().Year() + 1)}, "year", "Year cannot be later than the current year."},
		{"bad slug", titleRequest{Name: "x", Score: 5, Slug: "no spaces"}, "slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens."},
		{"long name", titleRequest{Name: strings.Repeat("n", 257), Score: 5}, "name", "Ensure this field has no more than 256 characters."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			fields := domainerrors.FieldsOf(err)
			require.Contains(t, fields, tt.field)
			assert.Equal(t, []string{tt.msg}, fields[tt.field])
		})
	}
}

func TestValidator_ScoreBounds(t *testing.T) {
	v := validation.New()

	for _, score := range []int{1, 10} {
		assert.NoError(t, v.Validate(titleRequest{Name: "x", Score: score}), "score %d", score)
	}
	for _, score := range []int{0, 11} {
		assert.Error(t, v.Validate(titleRequest{Name: "x", Score: score}), "score %d", score)
	}
}

func TestValidator_UsernameCollectsAllMessages(t *testing.T) {
	v := validation.New()

	err := v.Validate(signupRequest{Username: strings.Repeat("u", 151) + "$%", Email: "a@example.com"})
	fields := domainerrors.FieldsOf(err)
	require.Len(t, fields["username"], 2)
	assert.Contains(t, fields["username"][1], "$%")
}

func TestValidator_CollectsEveryField(t *testing.T) {
	v := validation.New()

	err := v.Validate(signupRequest{Username: "", Email: "bad"})
	fields := domainerrors.FieldsOf(err)
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
}
