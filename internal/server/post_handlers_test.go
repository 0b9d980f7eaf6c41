package server

import (
	"net/http"
	"strings"
	"testing"

	"devhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostInteractions(t *testing.T) {
	_, app := newTestApp(t, nil)
	alice := register(t, app, "Alice", "alice@example.com")
	bob := register(t, app, "Bob", "bob@example.com")

	resp := call(t, app, http.MethodPost, "/api/posts", alice, map[string]string{"text": "Hello world"})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	var post models.Post
	resp.decode(t, &post)
	assert.Equal(t, "Hello world", post.Text)
	assert.Equal(t, "Alice", post.Name)
	assert.Empty(t, post.Likes)
	assert.Empty(t, post.Comments)

	resp = call(t, app, http.MethodPut, "/api/posts/like/"+post.ID, bob, nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	var likes []models.Like
	resp.decode(t, &likes)
	require.Len(t, likes, 1)

	resp = call(t, app, http.MethodPut, "/api/posts/like/"+post.ID, bob, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	assert.Equal(t, "Post already liked", resp.msg(t))

	resp = call(t, app, http.MethodPut, "/api/posts/unlike/"+post.ID, alice, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	assert.Equal(t, "Post not yet been liked", resp.msg(t))

	resp = call(t, app, http.MethodPut, "/api/posts/comment/"+post.ID, bob, map[string]string{"text": "Nice post"})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	var comments []models.Comment
	resp.decode(t, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "Bob", comments[0].Name)
	commentID := comments[0].ID

	resp = call(t, app, http.MethodDelete, "/api/posts/comment/"+post.ID+"/"+commentID, alice, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
	assert.Equal(t, "User not authorized", resp.msg(t))

	resp = call(t, app, http.MethodDelete, "/api/posts/comment/"+post.ID+"/"+uuid.NewString(), bob, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)
	assert.Equal(t, "Comment does not exist", resp.msg(t))

	resp = call(t, app, http.MethodDelete, "/api/posts/comment/"+post.ID+"/"+commentID, bob, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	resp.decode(t, &comments)
	assert.Empty(t, comments)

	resp = call(t, app, http.MethodPut, "/api/posts/unlike/"+post.ID, bob, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	resp.decode(t, &likes)
	assert.Empty(t, likes)

	resp = call(t, app, http.MethodDelete, "/api/posts/"+post.ID, bob, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
	assert.Equal(t, "User not authorized", resp.msg(t))

	resp = call(t, app, http.MethodDelete, "/api/posts/"+post.ID, alice, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, "Post deleted", resp.msg(t))

	resp = call(t, app, http.MethodGet, "/api/posts/"+post.ID, alice, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)
}

func TestListPosts_NewestFirst(t *testing.T) {
	_, app := newTestApp(t, nil)
	token := register(t, app, "Alice", "alice@example.com")

	for _, text := range []string{"first", "second"} {
		resp := call(t, app, http.MethodPost, "/api/posts", token, map[string]string{"text": text})
		require.Equal(t, fiber.StatusOK, resp.Status)
	}

	resp := call(t, app, http.MethodGet, "/api/posts", token, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	var posts []models.Post
	resp.decode(t, &posts)
	require.Len(t, posts, 2)
	assert.False(t, posts[0].Date.Before(posts[1].Date))
}

func TestPostRoutes_Errors(t *testing.T) {
	_, app := newTestApp(t, nil)
	token := register(t, app, "Alice", "alice@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"blank text", http.MethodPost, "/api/posts", map[string]string{"text": "   "}, fiber.StatusBadRequest},
		{"text too long", http.MethodPost, "/api/posts", map[string]string{"text": strings.Repeat("a", 10001)}, fiber.StatusBadRequest},
		{"malformed id", http.MethodGet, "/api/posts/not-an-id", nil, fiber.StatusNotFound},
		{"unknown id", http.MethodGet, "/api/posts/" + uuid.NewString(), nil, fiber.StatusNotFound},
		{"like unknown", http.MethodPut, "/api/posts/like/" + uuid.NewString(), nil, fiber.StatusNotFound},
		{"comment unknown", http.MethodPut, "/api/posts/comment/" + uuid.NewString(), map[string]string{"text": "hi"}, fiber.StatusNotFound},
		{"delete unknown", http.MethodDelete, "/api/posts/" + uuid.NewString(), nil, fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, app, tt.method, tt.path, token, tt.body)
			assert.Equal(t, tt.status, resp.Status, string(resp.Body))
		})
	}

	resp := call(t, app, http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
}
