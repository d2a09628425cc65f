package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

// DocumentService registers uploaded documents and drives the scan
// workflow. A document is born in scan status pending and is only served
// back to users once a scan returned clean.
type DocumentService struct {
	Documents DocumentRepository
	Cases     CaseRepository
	Scanner   DocumentScanner
	Clock     Clock
}

func NewDocumentService(documents DocumentRepository, cases CaseRepository, scanner DocumentScanner, clock Clock) *DocumentService {
	return &DocumentService{Documents: documents, Cases: cases, Scanner: scanner, Clock: clock}
}

type RegisterDocumentInput struct {
	FirmID        string
	CaseID        string
	UploaderID    string
	Filename      string
	ContentType   string
	SizeBytes     int64
	ContentSHA256 string
	StorageURI    string
}

func (s *DocumentService) Register(ctx context.Context, in RegisterDocumentInput) (domain.Document, error) {
	if strings.TrimSpace(in.Filename) == "" || in.ContentSHA256 == "" || in.StorageURI == "" {
		return domain.Document{}, fmt.Errorf("filename, content hash, and storage uri are required: %w", domain.ErrInvalidArgument)
	}
	if in.SizeBytes <= 0 {
		return domain.Document{}, fmt.Errorf("size must be positive: %w", domain.ErrInvalidArgument)
	}
	if _, err := s.Cases.GetByID(ctx, in.FirmID, in.CaseID); err != nil {
		return domain.Document{}, err
	}
	doc := domain.Document{
		ID:            ulid.Make().String(),
		CaseID:        in.CaseID,
		FirmID:        in.FirmID,
		UploaderID:    in.UploaderID,
		Filename:      strings.TrimSpace(in.Filename),
		ContentType:   in.ContentType,
		SizeBytes:     in.SizeBytes,
		ContentSHA256: in.ContentSHA256,
		StorageURI:    in.StorageURI,
		ScanStatus:    domain.ScanPending,
		CreatedAt:     s.now(),
	}
	if err := s.Documents.Create(ctx, doc); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, firmID, documentID string) (domain.Document, error) {
	return s.Documents.GetByID(ctx, firmID, documentID)
}

func (s *DocumentService) ListByCase(ctx context.Context, firmID, caseID string) ([]domain.Document, error) {
	if _, err := s.Cases.GetByID(ctx, firmID, caseID); err != nil {
		return nil, err
	}
	return s.Documents.ListByCase(ctx, firmID, caseID)
}

// Scan runs one scan exchange and records the verdict. A scanner failure
// is recorded as status error so the document does not stay pending
// forever; the document can be rescanned later.
func (s *DocumentService) Scan(ctx context.Context, firmID, documentID string) (domain.Document, error) {
	if s.Scanner == nil {
		return domain.Document{}, fmt.Errorf("virus scanner is not configured: %w", domain.ErrUnavailable)
	}
	doc, err := s.Documents.GetByID(ctx, firmID, documentID)
	if err != nil {
		return domain.Document{}, err
	}
	now := s.now()
	verdict, err := s.Scanner.Scan(ctx, doc.StorageURI, doc.ContentSHA256)
	if err != nil {
		if setErr := s.Documents.SetScanStatus(ctx, doc.ID, domain.ScanError, "", now); setErr != nil {
			return domain.Document{}, setErr
		}
		return domain.Document{}, fmt.Errorf("scan document %s: %w", doc.ID, err)
	}
	if err := s.Documents.SetScanStatus(ctx, doc.ID, verdict.Status, verdict.Signature, now); err != nil {
		return domain.Document{}, err
	}
	doc.ScanStatus = verdict.Status
	doc.ScanSignature = verdict.Signature
	doc.ScannedAt = &now
	return doc, nil
}

// Rescan resets the document to pending before running a fresh scan, so a
// reader never sees a stale verdict while the scan is in flight.
func (s *DocumentService) Rescan(ctx context.Context, firmID, documentID string) (domain.Document, error) {
	if s.Scanner == nil {
		return domain.Document{}, fmt.Errorf("virus scanner is not configured: %w", domain.ErrUnavailable)
	}
	doc, err := s.Documents.GetByID(ctx, firmID, documentID)
	if err != nil {
		return domain.Document{}, err
	}
	if err := s.Documents.SetScanStatus(ctx, doc.ID, domain.ScanPending, "", s.now()); err != nil {
		return domain.Document{}, err
	}
	return s.Scan(ctx, firmID, documentID)
}

// EnsureDownloadable gates content access on the scan verdict. Anything
// other than a clean scan blocks the download.
func (s *DocumentService) EnsureDownloadable(doc domain.Document) error {
	if doc.ScanStatus == domain.ScanClean {
		return nil
	}
	return fmt.Errorf("document scan status is %q: %w", doc.ScanStatus, domain.ErrConflict)
}

func (s *DocumentService) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}
