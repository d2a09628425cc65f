package db

import (
	"context"

	"gorm.io/gorm"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := ProfileModel{
		ID:     profile.ID,
		UserID: profile.UserID,
		Email:  profile.Email,
		Role:   string(profile.Role),
		FirmID: strOrNil(profile.FirmID),
	}
	return translateError(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	if r.db == nil {
		return domain.Profile{}, errDBUnavailable
	}
	var model ProfileModel
	err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error
	if err != nil {
		return domain.Profile{}, translateError(err)
	}
	return toProfile(model), nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, profileID string) (domain.Profile, error) {
	if r.db == nil {
		return domain.Profile{}, errDBUnavailable
	}
	var model ProfileModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", profileID).Error
	if err != nil {
		return domain.Profile{}, translateError(err)
	}
	return toProfile(model), nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	if r.db == nil {
		return domain.Profile{}, errDBUnavailable
	}
	var model ProfileModel
	err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error
	if err != nil {
		return domain.Profile{}, translateError(err)
	}
	return toProfile(model), nil
}

func (r *ProfileRepository) ListByFirm(ctx context.Context, firmID string) ([]domain.Profile, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []ProfileModel
	err := r.db.WithContext(ctx).Where("firm_id = ?", firmID).Order("created_at asc").Find(&models).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]domain.Profile, 0, len(models))
	for _, model := range models {
		out = append(out, toProfile(model))
	}
	return out, nil
}

// JoinFirm binds the profile to a firm with the invited role.
func (r *ProfileRepository) JoinFirm(ctx context.Context, profileID, firmID string, role domain.Role) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&ProfileModel{}).
		Where("id = ?", profileID).
		Updates(map[string]any{"firm_id": firmID, "role": string(role)})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toProfile(model ProfileModel) domain.Profile {
	return domain.Profile{
		ID:     model.ID,
		UserID: model.UserID,
		Email:  model.Email,
		Role:   domain.Role(model.Role),
		FirmID: strOrEmpty(model.FirmID),
	}
}
