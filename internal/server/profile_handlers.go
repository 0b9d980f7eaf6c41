package server

import (
	"log/slog"

	"devhub/internal/middleware"
	"devhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profile/me
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetOwnProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}
	return c.JSON(profile)
}

// UpsertProfile handles POST /api/profile
// @Summary Create or update own profile
// @Description Only supplied fields are written. skills accepts a comma-separated string.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{status=string,skills=string,company=string,website=string,location=string,bio=string,githubusername=string,twitter=string} true "Profile fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /profile [post]
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	var req service.ProfileRequest
	if err := s.decode(c, &req); err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}

	profile, err := s.profileService.UpsertProfile(c.UserContext(), middleware.UserID(c), req.Fields())
	if err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}
	return c.JSON(profile)
}

// GetProfiles handles GET /api/profile
// @Summary List all profiles
// @Tags profile
// @Produce json
// @Success 200 {array} models.Profile
// @Router /profile [get]
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.ListProfiles(c.UserContext())
	if err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}
	return c.JSON(profiles)
}

// GetProfileByUser handles GET /api/profile/user/:user_id
// @Summary Get profile by user id
// @Tags profile
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/user/{user_id} [get]
func (s *Server) GetProfileByUser(c *fiber.Ctx) error {
	profile, err := s.profileService.GetProfileByUser(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}
	return c.JSON(profile)
}

// DeleteAccount handles DELETE /api/profile
// @Summary Delete own profile and account
// @Description Posts written by the user are kept.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{msg=string}
// @Router /profile [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := s.profileService.DeleteAccount(ctx, middleware.UserID(c)); err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}
	if s.sessions.Enabled() {
		if err := s.sessions.Revoke(ctx, middleware.Claims(c)); err != nil {
			s.log.WarnContext(ctx, "failed to revoke token of deleted account", slog.String("error", err.Error()))
		}
	}
	return c.JSON(msgResponse{Msg: "User deleted"})
}

// AddExperience handles PUT /api/profile/experience
// @Summary Add experience
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,company=string,location=string,from=string,to=string,current=bool,description=string} true "Experience"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /profile/experience [put]
func (s *Server) AddExperience(c *fiber.Ctx) error {
	var req service.ExperienceRequest
	if err := s.decode(c, &req); err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}
	entry, err := req.Entry()
	if err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}

	profile, err := s.profileService.AddExperience(c.UserContext(), middleware.UserID(c), entry)
	if err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}
	return c.JSON(profile)
}

// RemoveExperience handles DELETE /api/profile/experience/:exp_id
// @Summary Remove experience
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param exp_id path string true "Experience ID"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/experience/{exp_id} [delete]
func (s *Server) RemoveExperience(c *fiber.Ctx) error {
	profile, err := s.profileService.RemoveExperience(c.UserContext(), middleware.UserID(c), c.Params("exp_id"))
	if err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}
	return c.JSON(profile)
}

// AddEducation handles PUT /api/profile/education
// @Summary Add education
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{school=string,degree=string,fieldofstudy=string,from=string,to=string,current=bool,description=string} true "Education"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /profile/education [put]
func (s *Server) AddEducation(c *fiber.Ctx) error {
	var req service.EducationRequest
	if err := s.decode(c, &req); err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}
	entry, err := req.Entry()
	if err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}

	profile, err := s.profileService.AddEducation(c.UserContext(), middleware.UserID(c), entry)
	if err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}
	return c.JSON(profile)
}

// RemoveEducation handles DELETE /api/profile/education/:education_id
// @Summary Remove education
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param education_id path string true "Education ID"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/education/{education_id} [delete]
func (s *Server) RemoveEducation(c *fiber.Ctx) error {
	profile, err := s.profileService.RemoveEducation(c.UserContext(), middleware.UserID(c), c.Params("education_id"))
	if err != nil {
		return s.fail(c, err, profileNotFoundStatus)
	}
	return c.JSON(profile)
}
