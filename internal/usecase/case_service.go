package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

// CaseService owns the case lifecycle. Every operation is firm scoped; a
// case id from another firm behaves exactly like a missing case.
type CaseService struct {
	Cases    CaseRepository
	Profiles ProfileRepository
	Clock    Clock
}

func NewCaseService(cases CaseRepository, profiles ProfileRepository, clock Clock) *CaseService {
	return &CaseService{Cases: cases, Profiles: profiles, Clock: clock}
}

type CreateCaseInput struct {
	FirmID          string
	ClientProfileID string
	AttorneyID      string
	FormType        domain.FormType
	Priority        domain.CasePriority
	Title           string
}

func (s *CaseService) Create(ctx context.Context, in CreateCaseInput) (domain.Case, error) {
	if in.FirmID == "" || strings.TrimSpace(in.Title) == "" {
		return domain.Case{}, fmt.Errorf("firm id and title are required: %w", domain.ErrInvalidArgument)
	}
	if !in.FormType.Valid() {
		return domain.Case{}, fmt.Errorf("form type %q: %w", in.FormType, domain.ErrInvalidArgument)
	}
	client, err := s.Profiles.GetByID(ctx, in.ClientProfileID)
	if err != nil {
		return domain.Case{}, fmt.Errorf("client profile: %w", err)
	}
	if client.FirmID != in.FirmID {
		return domain.Case{}, fmt.Errorf("client profile belongs to another firm: %w", domain.ErrInvalidArgument)
	}
	if in.AttorneyID != "" {
		if err := s.checkAttorney(ctx, in.FirmID, in.AttorneyID); err != nil {
			return domain.Case{}, err
		}
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityStandard
	}
	now := s.now()
	kase := domain.Case{
		ID:              uuid.NewString(),
		FirmID:          in.FirmID,
		ClientProfileID: in.ClientProfileID,
		AttorneyID:      in.AttorneyID,
		FormType:        in.FormType,
		Status:          domain.CaseDraft,
		Priority:        priority,
		Title:           strings.TrimSpace(in.Title),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Cases.Create(ctx, kase); err != nil {
		return domain.Case{}, err
	}
	return kase, nil
}

func (s *CaseService) Get(ctx context.Context, firmID, caseID string) (domain.Case, error) {
	return s.Cases.GetByID(ctx, firmID, caseID)
}

func (s *CaseService) List(ctx context.Context, filter domain.CaseFilter) ([]domain.Case, error) {
	if filter.FirmID == "" {
		return nil, fmt.Errorf("firm id is required: %w", domain.ErrInvalidArgument)
	}
	return s.Cases.List(ctx, filter)
}

// ChangeStatus moves a case along the status machine. The repository
// re-checks the from status in the update, so a concurrent transition
// surfaces as ErrConflict rather than a silent overwrite.
func (s *CaseService) ChangeStatus(ctx context.Context, firmID, caseID string, to domain.CaseStatus) (domain.Case, error) {
	if !to.Valid() {
		return domain.Case{}, fmt.Errorf("status %q: %w", to, domain.ErrInvalidArgument)
	}
	kase, err := s.Cases.GetByID(ctx, firmID, caseID)
	if err != nil {
		return domain.Case{}, err
	}
	if !kase.Status.CanTransition(to) {
		return domain.Case{}, fmt.Errorf("case cannot move from %q to %q: %w", kase.Status, to, domain.ErrInvalidArgument)
	}
	now := s.now()
	if err := s.Cases.UpdateStatus(ctx, firmID, caseID, kase.Status, to, now); err != nil {
		return domain.Case{}, err
	}
	kase.Status = to
	kase.UpdatedAt = now
	return kase, nil
}

func (s *CaseService) Assign(ctx context.Context, firmID, caseID, attorneyID string) error {
	if err := s.checkAttorney(ctx, firmID, attorneyID); err != nil {
		return err
	}
	return s.Cases.AssignAttorney(ctx, firmID, caseID, attorneyID, s.now())
}

func (s *CaseService) AddNote(ctx context.Context, firmID, caseID, authorProfileID, body string) (domain.CaseNote, error) {
	if strings.TrimSpace(body) == "" {
		return domain.CaseNote{}, fmt.Errorf("note body is required: %w", domain.ErrInvalidArgument)
	}
	if _, err := s.Cases.GetByID(ctx, firmID, caseID); err != nil {
		return domain.CaseNote{}, err
	}
	note := domain.CaseNote{
		ID:              uuid.NewString(),
		CaseID:          caseID,
		AuthorProfileID: authorProfileID,
		Body:            strings.TrimSpace(body),
		CreatedAt:       s.now(),
	}
	if err := s.Cases.AddNote(ctx, note); err != nil {
		return domain.CaseNote{}, err
	}
	return note, nil
}

func (s *CaseService) Notes(ctx context.Context, firmID, caseID string) ([]domain.CaseNote, error) {
	if _, err := s.Cases.GetByID(ctx, firmID, caseID); err != nil {
		return nil, err
	}
	return s.Cases.ListNotes(ctx, caseID)
}

func (s *CaseService) checkAttorney(ctx context.Context, firmID, attorneyID string) error {
	attorney, err := s.Profiles.GetByID(ctx, attorneyID)
	if err != nil {
		return fmt.Errorf("attorney profile: %w", err)
	}
	if attorney.FirmID != firmID {
		return fmt.Errorf("attorney belongs to another firm: %w", domain.ErrInvalidArgument)
	}
	if attorney.Role != domain.RoleAttorney && attorney.Role != domain.RoleAdmin {
		return fmt.Errorf("profile %s is not an attorney: %w", attorneyID, domain.ErrInvalidArgument)
	}
	return nil
}

func (s *CaseService) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}
