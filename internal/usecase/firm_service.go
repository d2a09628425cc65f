package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

// FirmService manages firms and the invitation flow that brings profiles
// into them. Invitation tokens are ULIDs and are single use.
type FirmService struct {
	Firms       FirmRepository
	Profiles    ProfileRepository
	Invitations InvitationRepository
	Clock       Clock
	InviteTTL   time.Duration
}

func NewFirmService(firms FirmRepository, profiles ProfileRepository, invitations InvitationRepository, inviteTTL time.Duration, clock Clock) *FirmService {
	return &FirmService{
		Firms:       firms,
		Profiles:    profiles,
		Invitations: invitations,
		Clock:       clock,
		InviteTTL:   inviteTTL,
	}
}

func (s *FirmService) Create(ctx context.Context, name, slug string) (domain.Firm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Firm{}, fmt.Errorf("firm name is required: %w", domain.ErrInvalidArgument)
	}
	firm := domain.Firm{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      strings.ToLower(strings.TrimSpace(slug)),
		CreatedAt: s.now(),
	}
	if err := s.Firms.Create(ctx, firm); err != nil {
		return domain.Firm{}, err
	}
	return firm, nil
}

func (s *FirmService) Get(ctx context.Context, firmID string) (domain.Firm, error) {
	return s.Firms.GetByID(ctx, firmID)
}

func (s *FirmService) Members(ctx context.Context, firmID string) ([]domain.Profile, error) {
	return s.Profiles.ListByFirm(ctx, firmID)
}

type InviteInput struct {
	FirmID    string
	Email     string
	Role      domain.Role
	InvitedBy string
}

// Invite mints an open invitation. Admin membership is provisioned out of
// band, never through an invitation.
func (s *FirmService) Invite(ctx context.Context, in InviteInput) (domain.Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return domain.Invitation{}, fmt.Errorf("email is required: %w", domain.ErrInvalidArgument)
	}
	if !in.Role.Valid() || in.Role == domain.RoleAdmin {
		return domain.Invitation{}, fmt.Errorf("role %q cannot be invited: %w", in.Role, domain.ErrInvalidArgument)
	}
	if _, err := s.Firms.GetByID(ctx, in.FirmID); err != nil {
		return domain.Invitation{}, err
	}
	now := s.now()
	invite := domain.Invitation{
		ID:        uuid.NewString(),
		FirmID:    in.FirmID,
		Email:     email,
		Role:      in.Role,
		Token:     ulid.Make().String(),
		InvitedBy: in.InvitedBy,
		Status:    domain.InviteOpen,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}
	if err := s.Invitations.Create(ctx, invite); err != nil {
		return domain.Invitation{}, err
	}
	return invite, nil
}

func (s *FirmService) ListInvitations(ctx context.Context, firmID string) ([]domain.Invitation, error) {
	return s.Invitations.ListByFirm(ctx, firmID)
}

// Accept consumes an invitation and binds the profile to the firm and
// role. MarkAccepted runs first and is guarded on the open status, so two
// racing accepts cannot both succeed.
func (s *FirmService) Accept(ctx context.Context, token, profileID string) (domain.Profile, error) {
	invite, err := s.Invitations.GetByToken(ctx, token)
	if err != nil {
		return domain.Profile{}, err
	}
	if invite.Status != domain.InviteOpen {
		return domain.Profile{}, fmt.Errorf("invitation is %s: %w", invite.Status, domain.ErrConflict)
	}
	now := s.now()
	if invite.ExpiredAt(now) {
		return domain.Profile{}, fmt.Errorf("invitation expired: %w", domain.ErrConflict)
	}
	profile, err := s.Profiles.GetByID(ctx, profileID)
	if err != nil {
		return domain.Profile{}, err
	}
	if !strings.EqualFold(profile.Email, invite.Email) {
		return domain.Profile{}, fmt.Errorf("invitation was issued to a different email: %w", domain.ErrForbidden)
	}
	if err := s.Invitations.MarkAccepted(ctx, invite.ID, now); err != nil {
		return domain.Profile{}, err
	}
	if err := s.Profiles.JoinFirm(ctx, profileID, invite.FirmID, invite.Role); err != nil {
		return domain.Profile{}, err
	}
	profile.FirmID = invite.FirmID
	profile.Role = invite.Role
	return profile, nil
}

func (s *FirmService) ttl() time.Duration {
	if s.InviteTTL > 0 {
		return s.InviteTTL
	}
	return 7 * 24 * time.Hour
}

func (s *FirmService) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}
