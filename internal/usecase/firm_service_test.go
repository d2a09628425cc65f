package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

func newTestFirmService(firms *firmRepoStub, profiles *profileRepoStub, invites *invitationRepoStub) *FirmService {
	return NewFirmService(firms, profiles, invites, 7*24*time.Hour, fixedClock)
}

func TestFirmInvite_OK(t *testing.T) {
	firms := newFirmRepoStub(domain.Firm{ID: "firm-1", Name: "Reyes Law"})
	invites := newInvitationRepoStub()
	svc := newTestFirmService(firms, newProfileRepoStub(), invites)

	invite, err := svc.Invite(context.Background(), InviteInput{
		FirmID:    "firm-1",
		Email:     "  Paralegal@Example.com ",
		Role:      domain.RoleStaff,
		InvitedBy: "admin-1",
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if invite.Email != "paralegal@example.com" {
		t.Fatalf("email = %q, want normalized", invite.Email)
	}
	if invite.Token == "" {
		t.Fatal("expected token")
	}
	if invite.Status != domain.InviteOpen {
		t.Fatalf("status = %q", invite.Status)
	}
	want := testNow.Add(7 * 24 * time.Hour)
	if !invite.ExpiresAt.Equal(want) {
		t.Fatalf("expires at = %v, want %v", invite.ExpiresAt, want)
	}
}

func TestFirmInvite_AdminRoleRejected(t *testing.T) {
	firms := newFirmRepoStub(domain.Firm{ID: "firm-1"})
	svc := newTestFirmService(firms, newProfileRepoStub(), newInvitationRepoStub())

	_, err := svc.Invite(context.Background(), InviteInput{FirmID: "firm-1", Email: "x@y.com", Role: domain.RoleAdmin})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

func TestFirmAccept_OK(t *testing.T) {
	firms := newFirmRepoStub(domain.Firm{ID: "firm-1"})
	profiles := newProfileRepoStub(domain.Profile{ID: "prof-1", Email: "client@example.com", Role: domain.RoleClient})
	invites := newInvitationRepoStub()
	svc := newTestFirmService(firms, profiles, invites)

	invite, err := svc.Invite(context.Background(), InviteInput{
		FirmID: "firm-1", Email: "client@example.com", Role: domain.RoleClient, InvitedBy: "atty-1",
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	profile, err := svc.Accept(context.Background(), invite.Token, "prof-1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if profile.FirmID != "firm-1" || profile.Role != domain.RoleClient {
		t.Fatalf("profile = %+v", profile)
	}
	if invites.invites[invite.ID].Status != domain.InviteAccepted {
		t.Fatal("invitation not marked accepted")
	}
	if len(profiles.joined) != 1 {
		t.Fatal("profile not joined to firm")
	}
}

func TestFirmAccept_SecondUseConflicts(t *testing.T) {
	firms := newFirmRepoStub(domain.Firm{ID: "firm-1"})
	profiles := newProfileRepoStub(domain.Profile{ID: "prof-1", Email: "client@example.com"})
	svc := newTestFirmService(firms, profiles, newInvitationRepoStub())

	invite, err := svc.Invite(context.Background(), InviteInput{FirmID: "firm-1", Email: "client@example.com", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := svc.Accept(context.Background(), invite.Token, "prof-1"); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := svc.Accept(context.Background(), invite.Token, "prof-1"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second accept err = %v, want conflict", err)
	}
}

func TestFirmAccept_Expired(t *testing.T) {
	firms := newFirmRepoStub(domain.Firm{ID: "firm-1"})
	profiles := newProfileRepoStub(domain.Profile{ID: "prof-1", Email: "client@example.com"})
	invites := newInvitationRepoStub()
	svc := newTestFirmService(firms, profiles, invites)

	invite, err := svc.Invite(context.Background(), InviteInput{FirmID: "firm-1", Email: "client@example.com", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	svc.Clock = func() time.Time { return testNow.Add(8 * 24 * time.Hour) }
	if _, err := svc.Accept(context.Background(), invite.Token, "prof-1"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want conflict for expired invite", err)
	}
}

func TestFirmAccept_WrongEmail(t *testing.T) {
	firms := newFirmRepoStub(domain.Firm{ID: "firm-1"})
	profiles := newProfileRepoStub(domain.Profile{ID: "prof-1", Email: "other@example.com"})
	svc := newTestFirmService(firms, profiles, newInvitationRepoStub())

	invite, err := svc.Invite(context.Background(), InviteInput{FirmID: "firm-1", Email: "client@example.com", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := svc.Accept(context.Background(), invite.Token, "prof-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestFirmCreate_RequiresName(t *testing.T) {
	svc := newTestFirmService(newFirmRepoStub(), newProfileRepoStub(), newInvitationRepoStub())
	if _, err := svc.Create(context.Background(), "  ", "slug"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}
