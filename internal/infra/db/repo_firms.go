package db

import (
	"context"

	"gorm.io/gorm"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

type FirmRepository struct {
	db *gorm.DB
}

func NewFirmRepository(db *gorm.DB) *FirmRepository {
	return &FirmRepository{db: db}
}

func (r *FirmRepository) Create(ctx context.Context, firm domain.Firm) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := FirmModel{
		ID:        firm.ID,
		Name:      firm.Name,
		Slug:      firm.Slug,
		CreatedAt: firm.CreatedAt,
	}
	return translateError(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *FirmRepository) GetByID(ctx context.Context, firmID string) (domain.Firm, error) {
	if r.db == nil {
		return domain.Firm{}, errDBUnavailable
	}
	var model FirmModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", firmID).Error
	if err != nil {
		return domain.Firm{}, translateError(err)
	}
	return domain.Firm{
		ID:        model.ID,
		Name:      model.Name,
		Slug:      model.Slug,
		CreatedAt: model.CreatedAt,
	}, nil
}
