package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_UnwrapAndIs(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection reset")
	err := fmt.Errorf("load profile: %w", NewInternalError(cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, CodeInternal))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.Equal(t, CodeInternal, AsAppError(errors.New("boom")).Code)
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		status   int
		expected string
	}{
		{
			name:     "Message",
			err:      NewNotFoundError("Post not found"),
			status:   fiber.StatusNotFound,
			expected: `{"msg":"Post not found","code":"NOT_FOUND"}`,
		},
		{
			name:     "Internal Detail Hidden",
			err:      NewInternalError(errors.New("pq: relation missing")),
			status:   fiber.StatusInternalServerError,
			expected: `{"msg":"Server error","code":"INTERNAL_ERROR"}`,
		},
		{
			name: "Field Errors",
			err: NewFieldValidationError([]FieldError{
				{Field: "status", Message: "Status is required"},
				{Field: "skills", Message: "Skills is required"},
			}),
			status:   fiber.StatusBadRequest,
			expected: `{"errors":[{"field":"status","message":"Status is required"},{"field":"skills","message":"Skills is required"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return RespondWithError(c, tt.status, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, tt.expected, string(body))
		})
	}
}

func TestProfileFields_ApplyAndColumns(t *testing.T) {
	t.Parallel()
	status := "Developer"
	bio := ""
	fields := ProfileFields{
		Status: &status,
		Bio:    &bio,
		Skills: []string{"go", "rust"},
	}

	p := &Profile{Company: "Acme", Bio: "old"}
	fields.Apply(p)

	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, "Developer", p.Status)
	assert.Equal(t, "", p.Bio)
	assert.Equal(t, []string{"go", "rust"}, p.Skills)
	assert.Equal(t, []string{"status", "skills", "bio"}, fields.Columns())
	assert.Equal(t, map[string]any{
		"status": "Developer",
		"skills": []string{"go", "rust"},
		"bio":    "",
	}, fields.Values())
}

func TestNormalize_EncodesEmptyCollections(t *testing.T) {
	t.Parallel()
	p := &Profile{ID: "p1", UserID: "u1"}
	p.Normalize()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"experience":[]`)
	assert.Contains(t, string(b), `"user":{"_id":"u1","name":"","avatar":""}`)

	post := &Post{ID: "x"}
	post.Normalize()
	b, err = json.Marshal(post)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"likes":[]`)
	assert.Contains(t, string(b), `"comments":[]`)
}
