package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc domain.Document) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := DocumentModel{
		ID:            doc.ID,
		CaseID:        doc.CaseID,
		FirmID:        doc.FirmID,
		UploaderID:    doc.UploaderID,
		Filename:      doc.Filename,
		ContentType:   doc.ContentType,
		SizeBytes:     doc.SizeBytes,
		ContentSHA256: doc.ContentSHA256,
		StorageURI:    doc.StorageURI,
		ScanStatus:    string(doc.ScanStatus),
		CreatedAt:     doc.CreatedAt,
	}
	return translateError(r.db.WithContext(ctx).Create(&model).Error)
}

func (r *DocumentRepository) GetByID(ctx context.Context, firmID, documentID string) (domain.Document, error) {
	if r.db == nil {
		return domain.Document{}, errDBUnavailable
	}
	var model DocumentModel
	err := r.db.WithContext(ctx).First(&model, "id = ? AND firm_id = ?", documentID, firmID).Error
	if err != nil {
		return domain.Document{}, translateError(err)
	}
	return toDocument(model), nil
}

func (r *DocumentRepository) ListByCase(ctx context.Context, firmID, caseID string) ([]domain.Document, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []DocumentModel
	err := r.db.WithContext(ctx).
		Where("firm_id = ? AND case_id = ?", firmID, caseID).
		Order("created_at desc").Find(&models).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]domain.Document, 0, len(models))
	for _, model := range models {
		out = append(out, toDocument(model))
	}
	return out, nil
}

// SetScanStatus records a scan verdict. Transitioning to pending clears the
// previous verdict so a rescan starts from a clean slate.
func (r *DocumentRepository) SetScanStatus(ctx context.Context, documentID string, status domain.ScanStatus, signature string, at time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	updates := map[string]any{"scan_status": string(status)}
	if status == domain.ScanPending {
		updates["scan_signature"] = ""
		updates["scanned_at"] = nil
	} else {
		updates["scan_signature"] = signature
		updates["scanned_at"] = at
	}
	result := r.db.WithContext(ctx).Model(&DocumentModel{}).
		Where("id = ?", documentID).
		Updates(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDocument(model DocumentModel) domain.Document {
	return domain.Document{
		ID:            model.ID,
		CaseID:        model.CaseID,
		FirmID:        model.FirmID,
		UploaderID:    model.UploaderID,
		Filename:      model.Filename,
		ContentType:   model.ContentType,
		SizeBytes:     model.SizeBytes,
		ContentSHA256: model.ContentSHA256,
		StorageURI:    model.StorageURI,
		ScanStatus:    domain.ScanStatus(model.ScanStatus),
		ScanSignature: model.ScanSignature,
		ScannedAt:     model.ScannedAt,
		CreatedAt:     model.CreatedAt,
	}
}
