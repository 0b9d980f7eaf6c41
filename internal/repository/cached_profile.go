package repository

import (
	"context"

	"devhub/internal/cache"
	"devhub/internal/models"
)

const profileKeyspace = "profiles"

type cachedProfileRepository struct {
	ProfileRepository
	cache *cache.Cache
}

// NewCachedProfileRepository serves public profile reads from c and drops
// the affected entries on every write through it.
func NewCachedProfileRepository(inner ProfileRepository, c *cache.Cache) ProfileRepository {
	if !c.Enabled() {
		return inner
	}
	return &cachedProfileRepository{ProfileRepository: inner, cache: c}
}

func (r *cachedProfileRepository) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	var profile *models.Profile
	err := r.cache.Aside(ctx, profileKeyspace, cache.ProfileUserKey(userID), &profile, func() error {
		var err error
		profile, err = r.ProfileRepository.GetByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	// The owner reference is not part of the cached JSON.
	profile.UserID = userID
	return profile, nil
}

func (r *cachedProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.cache.Aside(ctx, profileKeyspace, cache.ProfileListKey(), &profiles, func() error {
		var err error
		profiles, err = r.ProfileRepository.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].User != nil {
			profiles[i].UserID = profiles[i].User.ID
		}
	}
	return profiles, nil
}

func (r *cachedProfileRepository) Upsert(ctx context.Context, userID string, fields models.ProfileFields) (*models.Profile, error) {
	profile, err := r.ProfileRepository.Upsert(ctx, userID, fields)
	if err == nil {
		r.cache.InvalidateProfile(ctx, userID)
	}
	return profile, err
}

func (r *cachedProfileRepository) Update(ctx context.Context, userID string, mutate ProfileMutation) (*models.Profile, error) {
	profile, err := r.ProfileRepository.Update(ctx, userID, mutate)
	if err == nil {
		r.cache.InvalidateProfile(ctx, userID)
	}
	return profile, err
}

func (r *cachedProfileRepository) DeleteByUser(ctx context.Context, userID string) error {
	err := r.ProfileRepository.DeleteByUser(ctx, userID)
	if err == nil {
		r.cache.InvalidateProfile(ctx, userID)
	}
	return err
}
