package service

import (
	"context"
	"log/slog"

	"devhub/internal/models"
	"devhub/internal/repository"

	"github.com/google/uuid"
)

const (
	msgNoProfile          = "There is no profile for this user"
	msgProfileNotFound    = "Profile not found"
	msgExperienceNotFound = "Experience not found"
	msgEducationNotFound  = "Education not found"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	log         *slog.Logger
}

func NewProfileService(profileRepo repository.ProfileRepository, userRepo repository.UserRepository, log *slog.Logger) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, userRepo: userRepo, log: log}
}

// GetOwnProfile returns the caller's profile.
func (s *ProfileService) GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, renameNotFound(err, msgNoProfile)
	}
	return profile, nil
}

// UpsertProfile creates the caller's profile or updates the supplied fields.
// A token that outlives its account gets NOT_FOUND instead of an orphan profile.
func (s *ProfileService) UpsertProfile(ctx context.Context, userID string, fields models.ProfileFields) (*models.Profile, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.profileRepo.Upsert(ctx, userID, fields)
}

func (s *ProfileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	return s.profileRepo.List(ctx)
}

// GetProfileByUser returns the public profile of userID.
func (s *ProfileService) GetProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, renameNotFound(err, msgProfileNotFound)
	}
	return profile, nil
}

// DeleteAccount removes the caller's profile and account. Posts stay.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.profileRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "account deleted")
	return nil
}

// AddExperience prepends exp to the caller's experience list.
func (s *ProfileService) AddExperience(ctx context.Context, userID string, exp models.Experience) (*models.Profile, error) {
	exp.ID = uuid.NewString()
	profile, err := s.profileRepo.Update(ctx, userID, func(p *models.Profile) error {
		p.Experience = append([]models.Experience{exp}, p.Experience...)
		return nil
	})
	if err != nil {
		return nil, renameNotFound(err, msgProfileNotFound)
	}
	return profile, nil
}

// RemoveExperience deletes the experience entry expID, keeping the order of the rest.
func (s *ProfileService) RemoveExperience(ctx context.Context, userID, expID string) (*models.Profile, error) {
	return s.removeEntry(ctx, userID, func(p *models.Profile) bool {
		for i, e := range p.Experience {
			if e.ID == expID {
				p.Experience = append(p.Experience[:i:i], p.Experience[i+1:]...)
				return true
			}
		}
		return false
	}, msgExperienceNotFound)
}

// AddEducation prepends edu to the caller's education list.
func (s *ProfileService) AddEducation(ctx context.Context, userID string, edu models.Education) (*models.Profile, error) {
	edu.ID = uuid.NewString()
	profile, err := s.profileRepo.Update(ctx, userID, func(p *models.Profile) error {
		p.Education = append([]models.Education{edu}, p.Education...)
		return nil
	})
	if err != nil {
		return nil, renameNotFound(err, msgProfileNotFound)
	}
	return profile, nil
}

// RemoveEducation deletes the education entry eduID, keeping the order of the rest.
func (s *ProfileService) RemoveEducation(ctx context.Context, userID, eduID string) (*models.Profile, error) {
	return s.removeEntry(ctx, userID, func(p *models.Profile) bool {
		for i, e := range p.Education {
			if e.ID == eduID {
				p.Education = append(p.Education[:i:i], p.Education[i+1:]...)
				return true
			}
		}
		return false
	}, msgEducationNotFound)
}

// removeEntry applies remove to the caller's profile. A missing entry
// reports entryMissing; a missing profile reports msgProfileNotFound.
func (s *ProfileService) removeEntry(ctx context.Context, userID string, remove func(*models.Profile) bool, entryMissing string) (*models.Profile, error) {
	missing := false
	profile, err := s.profileRepo.Update(ctx, userID, func(p *models.Profile) error {
		if !remove(p) {
			missing = true
			return models.NewNotFoundError(entryMissing)
		}
		return nil
	})
	if err != nil {
		if missing {
			return nil, err
		}
		return nil, renameNotFound(err, msgProfileNotFound)
	}
	return profile, nil
}

// renameNotFound replaces the message of a NOT_FOUND error.
func renameNotFound(err error, msg string) error {
	if models.IsCode(err, models.CodeNotFound) {
		return models.NewNotFoundError(msg)
	}
	return err
}
