package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

// AnalysisService runs AI document analysis. Analysis is a paid feature
// and only ever sees documents with a clean scan verdict.
type AnalysisService struct {
	Analyses     AnalysisRepository
	Documents    DocumentRepository
	Cases        CaseRepository
	Analyzer     DocumentAnalyzer
	Entitlements Entitlements
	Model        string
	Clock        Clock
}

func NewAnalysisService(analyses AnalysisRepository, documents DocumentRepository, cases CaseRepository, analyzer DocumentAnalyzer, entitlements Entitlements, model string, clock Clock) *AnalysisService {
	return &AnalysisService{
		Analyses:     analyses,
		Documents:    documents,
		Cases:        cases,
		Analyzer:     analyzer,
		Entitlements: entitlements,
		Model:        model,
		Clock:        clock,
	}
}

type RunAnalysisInput struct {
	FirmID      string
	DocumentID  string
	RequestedBy string
	Text        string
}

// Run executes one analysis synchronously. The record is written as
// queued before the model call and updated to completed or failed after,
// so an interrupted run leaves an inspectable row behind.
func (s *AnalysisService) Run(ctx context.Context, in RunAnalysisInput) (domain.DocumentAnalysis, error) {
	if strings.TrimSpace(in.Text) == "" {
		return domain.DocumentAnalysis{}, fmt.Errorf("document text is required: %w", domain.ErrInvalidArgument)
	}
	if s.Analyzer == nil {
		return domain.DocumentAnalysis{}, fmt.Errorf("document analyzer is not configured: %w", domain.ErrUnavailable)
	}
	if err := s.Entitlements.RequireEntitlement(ctx, in.FirmID); err != nil {
		return domain.DocumentAnalysis{}, err
	}
	doc, err := s.Documents.GetByID(ctx, in.FirmID, in.DocumentID)
	if err != nil {
		return domain.DocumentAnalysis{}, err
	}
	if doc.ScanStatus != domain.ScanClean {
		return domain.DocumentAnalysis{}, fmt.Errorf("document scan status is %q: %w", doc.ScanStatus, domain.ErrConflict)
	}
	kase, err := s.Cases.GetByID(ctx, in.FirmID, doc.CaseID)
	if err != nil {
		return domain.DocumentAnalysis{}, err
	}

	analysis := domain.DocumentAnalysis{
		ID:          uuid.NewString(),
		DocumentID:  doc.ID,
		CaseID:      doc.CaseID,
		RequestedBy: in.RequestedBy,
		Model:       s.Model,
		Status:      domain.AnalysisQueued,
		CreatedAt:   s.now(),
	}
	if err := s.Analyses.Create(ctx, analysis); err != nil {
		return domain.DocumentAnalysis{}, err
	}

	output, err := s.Analyzer.Analyze(ctx, kase.FormType, doc.Filename, in.Text)
	completedAt := s.now()
	analysis.CompletedAt = &completedAt
	if err != nil {
		analysis.Status = domain.AnalysisFailed
		analysis.FailureReason = err.Error()
		if updateErr := s.Analyses.Update(ctx, analysis); updateErr != nil {
			return domain.DocumentAnalysis{}, updateErr
		}
		return domain.DocumentAnalysis{}, fmt.Errorf("analyze document %s: %w", doc.ID, err)
	}
	analysis.Status = domain.AnalysisCompleted
	analysis.Summary = output.Summary
	analysis.ExtractedFields = output.ExtractedFields
	analysis.InputTokens = output.InputTokens
	analysis.OutputTokens = output.OutputTokens
	if err := s.Analyses.Update(ctx, analysis); err != nil {
		return domain.DocumentAnalysis{}, err
	}
	return analysis, nil
}

// Get loads one analysis, scoped through its document so a caller from
// another firm sees not found.
func (s *AnalysisService) Get(ctx context.Context, firmID, analysisID string) (domain.DocumentAnalysis, error) {
	analysis, err := s.Analyses.GetByID(ctx, analysisID)
	if err != nil {
		return domain.DocumentAnalysis{}, err
	}
	if _, err := s.Documents.GetByID(ctx, firmID, analysis.DocumentID); err != nil {
		return domain.DocumentAnalysis{}, err
	}
	return analysis, nil
}

func (s *AnalysisService) ListForDocument(ctx context.Context, firmID, documentID string) ([]domain.DocumentAnalysis, error) {
	if _, err := s.Documents.GetByID(ctx, firmID, documentID); err != nil {
		return nil, err
	}
	return s.Analyses.ListByDocument(ctx, documentID)
}

func (s *AnalysisService) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}
