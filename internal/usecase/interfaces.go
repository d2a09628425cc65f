package usecase

import (
	"context"
	"time"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

// Clock lets tests pin time. A nil Clock falls back to time.Now.
type Clock func() time.Time

type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
	GetByID(ctx context.Context, profileID string) (domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (domain.Profile, error)
	ListByFirm(ctx context.Context, firmID string) ([]domain.Profile, error)
	JoinFirm(ctx context.Context, profileID, firmID string, role domain.Role) error
}

type FirmRepository interface {
	Create(ctx context.Context, firm domain.Firm) error
	GetByID(ctx context.Context, firmID string) (domain.Firm, error)
}

type InvitationRepository interface {
	Create(ctx context.Context, invite domain.Invitation) error
	GetByToken(ctx context.Context, token string) (domain.Invitation, error)
	ListByFirm(ctx context.Context, firmID string) ([]domain.Invitation, error)
	MarkAccepted(ctx context.Context, inviteID string, acceptedAt time.Time) error
}

type CaseRepository interface {
	Create(ctx context.Context, kase domain.Case) error
	GetByID(ctx context.Context, firmID, caseID string) (domain.Case, error)
	List(ctx context.Context, filter domain.CaseFilter) ([]domain.Case, error)
	UpdateStatus(ctx context.Context, firmID, caseID string, from, to domain.CaseStatus, at time.Time) error
	AssignAttorney(ctx context.Context, firmID, caseID, attorneyID string, at time.Time) error
	AddNote(ctx context.Context, note domain.CaseNote) error
	ListNotes(ctx context.Context, caseID string) ([]domain.CaseNote, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc domain.Document) error
	GetByID(ctx context.Context, firmID, documentID string) (domain.Document, error)
	ListByCase(ctx context.Context, firmID, caseID string) ([]domain.Document, error)
	SetScanStatus(ctx context.Context, documentID string, status domain.ScanStatus, signature string, at time.Time) error
}

type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub domain.Subscription) error
	GetByFirm(ctx context.Context, firmID string) (domain.Subscription, error)
	GetByStripeSubscription(ctx context.Context, stripeSubID string) (domain.Subscription, error)
}

type AnalysisRepository interface {
	Create(ctx context.Context, analysis domain.DocumentAnalysis) error
	Update(ctx context.Context, analysis domain.DocumentAnalysis) error
	GetByID(ctx context.Context, analysisID string) (domain.DocumentAnalysis, error)
	ListByDocument(ctx context.Context, documentID string) ([]domain.DocumentAnalysis, error)
}

type DocumentScanner interface {
	Scan(ctx context.Context, storageURI, contentSHA256 string) (domain.ScanVerdict, error)
}

type DocumentAnalyzer interface {
	Analyze(ctx context.Context, formType domain.FormType, filename, text string) (domain.AnalysisOutput, error)
}

// Entitlements gates paid features on the firm's subscription state.
type Entitlements interface {
	RequireEntitlement(ctx context.Context, firmID string) error
}
