package server

import (
	"devhub/internal/middleware"
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{text=string} true "Post text"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.TextRequest
	if err := s.decode(c, &req); err != nil {
		return s.fail(c, err, postNotFoundStatus)
	}

	post, err := s.postService.CreatePost(c.UserContext(), middleware.UserID(c), req.Text)
	if err != nil {
		return s.fail(c, err, postNotFoundStatus)
	}
	return c.JSON(post)
}

// GetPosts handles GET /api/posts
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return s.fail(c, err, postNotFoundStatus)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.fail(c, err, postNotFoundStatus)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete own post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} object{msg=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return s.fail(c, err, postNotFoundStatus)
	}
	return c.JSON(msgResponse{Msg: "Post deleted"})
}

// LikePost handles PUT /api/posts/like/:id
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {array} models.Like
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/like/{id} [put]
func (s *Server) LikePost(c *fiber.Ctx) error {
	likes, err := s.postService.LikePost(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return s.fail(c, err, postNotFoundStatus)
	}
	return c.JSON(likes)
}

// UnlikePost handles PUT /api/posts/unlike/:id
// @Summary Remove own like from a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {array} models.Like
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/unlike/{id} [put]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	likes, err := s.postService.UnlikePost(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return s.fail(c, err, postNotFoundStatus)
	}
	return c.JSON(likes)
}

// AddComment handles PUT /api/posts/comment/:id
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body object{text=string} true "Comment text"
// @Success 200 {array} models.Comment
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/comment/{id} [put]
func (s *Server) AddComment(c *fiber.Ctx) error {
	var req service.TextRequest
	if err := s.decode(c, &req); err != nil {
		return s.fail(c, err, postNotFoundStatus)
	}

	comments, err := s.postService.AddComment(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Text)
	if err != nil {
		return s.fail(c, err, postNotFoundStatus)
	}
	return c.JSON(comments)
}

// RemoveComment handles DELETE /api/posts/comment/:id/:comment_id
// @Summary Delete own comment
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param comment_id path string true "Comment ID"
// @Success 200 {array} models.Comment
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/comment/{id}/{comment_id} [delete]
func (s *Server) RemoveComment(c *fiber.Ctx) error {
	comments, err := s.postService.RemoveComment(c.UserContext(), middleware.UserID(c), c.Params("id"), c.Params("comment_id"))
	if err != nil {
		return s.fail(c, err, postNotFoundStatus)
	}
	return c.JSON(comments)
}
