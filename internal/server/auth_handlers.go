package server

import (
	"devhub/internal/middleware"
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/users
// @Summary Register a new user
// @Description Create an account and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,password=string} true "Registration data"
// @Success 200 {object} object{token=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := s.decode(c, &req); err != nil {
		return s.fail(c, err, fiber.StatusBadRequest)
	}

	token, err := s.userService.Register(c.UserContext(), req)
	if err != nil {
		return s.fail(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(tokenResponse{Token: token})
}

// Login handles POST /api/auth
// @Summary Authenticate user
// @Description Exchange email and password for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{token=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := s.decode(c, &req); err != nil {
		return s.fail(c, err, fiber.StatusBadRequest)
	}

	token, err := s.userService.Login(c.UserContext(), req)
	if err != nil {
		return s.fail(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(tokenResponse{Token: token})
}

// GetAuthUser handles GET /api/auth
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /auth [get]
func (s *Server) GetAuthUser(c *fiber.Ctx) error {
	user, err := s.userService.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return s.fail(c, err, fiber.StatusNotFound)
	}
	return c.JSON(user)
}

// Logout handles POST /api/auth/logout
// @Summary Revoke the current token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{msg=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.sessions.Revoke(c.UserContext(), middleware.Claims(c)); err != nil {
		return s.fail(c, err, fiber.StatusNotFound)
	}
	return c.JSON(msgResponse{Msg: "Logged out"})
}
