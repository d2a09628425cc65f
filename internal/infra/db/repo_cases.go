package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

type CaseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

func (r *CaseRepository) Create(ctx context.Context, kase domain.Case) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := toCaseModel(kase)
	return translateError(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *CaseRepository) GetByID(ctx context.Context, firmID, caseID string) (domain.Case, error) {
	if r.db == nil {
		return domain.Case{}, errDBUnavailable
	}
	var model CaseModel
	err := r.db.WithContext(ctx).First(&model, "id = ? AND firm_id = ?", caseID, firmID).Error
	if err != nil {
		return domain.Case{}, translateError(err)
	}
	return toCase(model), nil
}

func (r *CaseRepository) List(ctx context.Context, filter domain.CaseFilter) ([]domain.Case, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Where("firm_id = ?", filter.FirmID)
	if filter.ClientProfileID != "" {
		query = query.Where("client_profile_id = ?", filter.ClientProfileID)
	}
	if filter.AttorneyID != "" {
		query = query.Where("attorney_id = ?", filter.AttorneyID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var models []CaseModel
	err := query.Order("created_at desc").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]domain.Case, 0, len(models))
	for _, model := range models {
		out = append(out, toCase(model))
	}
	return out, nil
}

// UpdateStatus performs a guarded transition: the WHERE clause pins the
// expected current status so concurrent writers conflict instead of racing.
func (r *CaseRepository) UpdateStatus(ctx context.Context, firmID, caseID string, from, to domain.CaseStatus, at time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&CaseModel{}).
		Where("id = ? AND firm_id = ? AND status = ?", caseID, firmID, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": at})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *CaseRepository) AssignAttorney(ctx context.Context, firmID, caseID, attorneyID string, at time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&CaseModel{}).
		Where("id = ? AND firm_id = ?", caseID, firmID).
		Updates(map[string]any{"attorney_id": attorneyID, "updated_at": at})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CaseRepository) AddNote(ctx context.Context, note domain.CaseNote) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := CaseNoteModel{
		ID:              note.ID,
		CaseID:          note.CaseID,
		AuthorProfileID: note.AuthorProfileID,
		Body:            note.Body,
		CreatedAt:       note.CreatedAt,
	}
	return translateError(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *CaseRepository) ListNotes(ctx context.Context, caseID string) ([]domain.CaseNote, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []CaseNoteModel
	err := r.db.WithContext(ctx).Where("case_id = ?", caseID).Order("created_at asc").Find(&models).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]domain.CaseNote, 0, len(models))
	for _, model := range models {
		out = append(out, domain.CaseNote{
			ID:              model.ID,
			CaseID:          model.CaseID,
			AuthorProfileID: model.AuthorProfileID,
			Body:            model.Body,
			CreatedAt:       model.CreatedAt,
		})
	}
	return out, nil
}

func toCaseModel(kase domain.Case) CaseModel {
	return CaseModel{
		ID:              kase.ID,
		FirmID:          kase.FirmID,
		ClientProfileID: kase.ClientProfileID,
		AttorneyID:      strOrNil(kase.AttorneyID),
		FormType:        string(kase.FormType),
		Status:          string(kase.Status),
		Priority:        string(kase.Priority),
		Title:           kase.Title,
		Notes:           kase.Notes,
		CreatedAt:       kase.CreatedAt,
		UpdatedAt:       kase.UpdatedAt,
	}
}

func toCase(model CaseModel) domain.Case {
	return domain.Case{
		ID:              model.ID,
		FirmID:          model.FirmID,
		ClientProfileID: model.ClientProfileID,
		AttorneyID:      strOrEmpty(model.AttorneyID),
		FormType:        domain.FormType(model.FormType),
		Status:          domain.CaseStatus(model.Status),
		Priority:        domain.CasePriority(model.Priority),
		Title:           model.Title,
		Notes:           model.Notes,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
