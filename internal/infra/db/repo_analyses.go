package db

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Create(ctx context.Context, analysis domain.DocumentAnalysis) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model, err := toAnalysisModel(analysis)
	if err != nil {
		return err
	}
	return translateError(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *AnalysisRepository) Update(ctx context.Context, analysis domain.DocumentAnalysis) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model, err := toAnalysisModel(analysis)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&AnalysisModel{}).
		Where("id = ?", analysis.ID).
		Updates(map[string]any{
			"status":           model.Status,
			"summary":          model.Summary,
			"extracted_fields": model.ExtractedFields,
			"input_tokens":     model.InputTokens,
			"output_tokens":    model.OutputTokens,
			"failure_reason":   model.FailureReason,
			"completed_at":     model.CompletedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AnalysisRepository) GetByID(ctx context.Context, analysisID string) (domain.DocumentAnalysis, error) {
	if r.db == nil {
		return domain.DocumentAnalysis{}, errDBUnavailable
	}
	var model AnalysisModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", analysisID).Error
	if err != nil {
		return domain.DocumentAnalysis{}, translateError(err)
	}
	return toAnalysis(model)
}

func (r *AnalysisRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.DocumentAnalysis, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []AnalysisModel
	err := r.db.WithContext(ctx).Where("document_id = ?", documentID).Order("created_at desc").Find(&models).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]domain.DocumentAnalysis, 0, len(models))
	for _, model := range models {
		analysis, err := toAnalysis(model)
		if err != nil {
			return nil, err
		}
		out = append(out, analysis)
	}
	return out, nil
}

func toAnalysisModel(analysis domain.DocumentAnalysis) (AnalysisModel, error) {
	var fields []byte
	if len(analysis.ExtractedFields) > 0 {
		encoded, err := json.Marshal(analysis.ExtractedFields)
		if err != nil {
			return AnalysisModel{}, err
		}
		fields = encoded
	}
	return AnalysisModel{
		ID:              analysis.ID,
		DocumentID:      analysis.DocumentID,
		CaseID:          analysis.CaseID,
		RequestedBy:     analysis.RequestedBy,
		Model:           analysis.Model,
		Status:          string(analysis.Status),
		Summary:         analysis.Summary,
		ExtractedFields: fields,
		InputTokens:     analysis.InputTokens,
		OutputTokens:    analysis.OutputTokens,
		FailureReason:   analysis.FailureReason,
		CreatedAt:       analysis.CreatedAt,
		CompletedAt:     analysis.CompletedAt,
	}, nil
}

func toAnalysis(model AnalysisModel) (domain.DocumentAnalysis, error) {
	var fields map[string]string
	if len(model.ExtractedFields) > 0 {
		if err := json.Unmarshal(model.ExtractedFields, &fields); err != nil {
			return domain.DocumentAnalysis{}, err
		}
	}
	return domain.DocumentAnalysis{
		ID:              model.ID,
		DocumentID:      model.DocumentID,
		CaseID:          model.CaseID,
		RequestedBy:     model.RequestedBy,
		Model:           model.Model,
		Status:          domain.AnalysisStatus(model.Status),
		Summary:         model.Summary,
		ExtractedFields: fields,
		InputTokens:     model.InputTokens,
		OutputTokens:    model.OutputTokens,
		FailureReason:   model.FailureReason,
		CreatedAt:       model.CreatedAt,
		CompletedAt:     model.CompletedAt,
	}, nil
}
