package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"devhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupBody struct {
	Name     string `json:"name" validate:"required,notblank" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6" msg:"Please enter a password with 6 or more characters"`
}

type jobBody struct {
	Title string  `json:"title" validate:"notblank" msg:"Title is required"`
	From  string  `json:"from" validate:"required,isodate" msg:"From date is required"`
	To    *string `json:"to" validate:"omitempty,isodate"`
	Notes string  `json:"notes" validate:"max=5"`
}

func fieldErrors(t *testing.T, err error) []models.FieldError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	return appErr.Fields
}

func TestStruct_Valid(t *testing.T) {
	t.Parallel()
	v := New()
	to := "2021-06-30"
	assert.NoError(t, v.Struct(signupBody{Name: "Alice", Email: "alice@example.com", Password: "secret1"}))
	assert.NoError(t, v.Struct(&jobBody{Title: "Dev", From: "2020-01-02", To: &to}))
	assert.NoError(t, v.Struct(jobBody{Title: "Dev", From: "2020-01-02T15:04:05Z"}))
}

func TestStruct_FieldMessages(t *testing.T) {
	t.Parallel()
	v := New()

	fields := fieldErrors(t, v.Struct(signupBody{Name: "  ", Email: "nope", Password: "123"}))
	assert.Equal(t, []models.FieldError{
		{Field: "name", Message: "Name is required"},
		{Field: "email", Message: "Please include a valid email"},
		{Field: "password", Message: "Please enter a password with 6 or more characters"},
	}, fields)
}

func TestStruct_DateAndLength(t *testing.T) {
	t.Parallel()
	v := New()
	bad := "yesterday"

	fields := fieldErrors(t, v.Struct(jobBody{Title: "Dev", From: "", To: &bad, Notes: strings.Repeat("x", 6)}))
	require.Len(t, fields, 3)
	assert.Equal(t, models.FieldError{Field: "from", Message: "From date is required"}, fields[0])
	assert.Equal(t, models.FieldError{Field: "to", Message: "To must be a date (YYYY-MM-DD)"}, fields[1])
	assert.Equal(t, models.FieldError{Field: "notes", Message: "Notes must be at most 5 characters"}, fields[2])
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2020-01-02", time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), false},
		{" 2020-01-02 ", time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), false},
		{"2020-01-02T10:00:00+02:00", time.Date(2020, 1, 2, 8, 0, 0, 0, time.UTC), false},
		{"02/01/2020", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}
