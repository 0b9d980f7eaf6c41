package repository

import (
	"context"
	"errors"
	"time"

	"devhub/internal/models"
	"devhub/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// profileColumns are written back by a versioned profile update.
var profileColumns = []string{
	"company", "website", "location", "status", "skills", "bio",
	"githubusername", "social", "experience", "education", "version",
}

type profileRepository struct {
	db    *gorm.DB
	users UserRepository
}

// NewProfileRepository returns a ProfileRepository backed by db.
func NewProfileRepository(db *gorm.DB, users UserRepository) ProfileRepository {
	return &profileRepository{db: db, users: users}
}

func (r *profileRepository) load(ctx context.Context, userID string) (*models.Profile, error) {
	if !validID(userID) {
		return nil, models.NewNotFoundError("Profile not found")
	}
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	defer observability.TrackQuery(driverPostgres, "get", "profiles")()

	profile, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := attachUserRefs(ctx, r.users, []*models.Profile{profile}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	defer observability.TrackQuery(driverPostgres, "list", "profiles")()

	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	refs := make([]*models.Profile, len(profiles))
	for i := range profiles {
		refs[i] = &profiles[i]
	}
	if err := attachUserRefs(ctx, r.users, refs); err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return profiles, nil
}

func (r *profileRepository) Upsert(ctx context.Context, userID string, fields models.ProfileFields) (_ *models.Profile, err error) {
	ctx, span := observability.StartStoreSpan(ctx, driverPostgres, "upsert", "profiles")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery(driverPostgres, "upsert", "profiles")()

	profile := models.Profile{
		ID:      uuid.NewString(),
		UserID:  userID,
		Date:    time.Now().UTC(),
		Version: 1,
	}
	fields.Apply(&profile)
	profile.Normalize()

	set := clause.AssignmentColumns(fields.Columns())
	set = append(set, clause.Assignment{
		Column: clause.Column{Name: "version"},
		Value:  gorm.Expr("profiles.version + 1"),
	})

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: set,
	}).Create(&profile).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return r.GetByUser(ctx, userID)
}

func (r *profileRepository) Update(ctx context.Context, userID string, mutate ProfileMutation) (_ *models.Profile, err error) {
	ctx, span := observability.StartStoreSpan(ctx, driverPostgres, "update", "profiles")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery(driverPostgres, "update", "profiles")()

	profile, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	loaded := profile.Version
	if err := mutate(profile); err != nil {
		return nil, err
	}
	profile.Version = loaded + 1

	res := r.db.WithContext(ctx).Model(profile).
		Select(profileColumns).
		Where("version = ?", loaded).
		Updates(profile)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		observability.StaleWrites.WithLabelValues("profiles").Inc()
		return nil, models.NewStaleWriteError("profiles")
	}

	if err := attachUserRefs(ctx, r.users, []*models.Profile{profile}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) DeleteByUser(ctx context.Context, userID string) error {
	if !validID(userID) {
		return nil
	}
	defer observability.TrackQuery(driverPostgres, "delete", "profiles")()

	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
