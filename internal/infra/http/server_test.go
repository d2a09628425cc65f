package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rohanbsher/immigration-ai/internal/config"
	"github.com/rohanbsher/immigration-ai/internal/domain"
	"github.com/rohanbsher/immigration-ai/internal/infra/auth/header"
	"github.com/rohanbsher/immigration-ai/internal/infra/ratelimit"
	"github.com/rohanbsher/immigration-ai/internal/usecase"
)

type firmRepoFake struct {
	firms map[string]domain.Firm
}

func (r *firmRepoFake) Create(ctx context.Context, firm domain.Firm) error {
	r.firms[firm.ID] = firm
	return nil
}

func (r *firmRepoFake) GetByID(ctx context.Context, firmID string) (domain.Firm, error) {
	f, ok := r.firms[firmID]
	if !ok {
		return domain.Firm{}, domain.ErrNotFound
	}
	return f, nil
}

type profileRepoFake struct {
	profiles map[string]domain.Profile
}

func (r *profileRepoFake) Create(ctx context.Context, profile domain.Profile) error {
	r.profiles[profile.ID] = profile
	return nil
}

func (r *profileRepoFake) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	for _, p := range r.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return domain.Profile{}, domain.ErrNotFound
}

func (r *profileRepoFake) GetByID(ctx context.Context, profileID string) (domain.Profile, error) {
	p, ok := r.profiles[profileID]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *profileRepoFake) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	for _, p := range r.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return domain.Profile{}, domain.ErrNotFound
}

func (r *profileRepoFake) ListByFirm(ctx context.Context, firmID string) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, p := range r.profiles {
		if p.FirmID == firmID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *profileRepoFake) JoinFirm(ctx context.Context, profileID, firmID string, role domain.Role) error {
	p, ok := r.profiles[profileID]
	if !ok {
		return domain.ErrNotFound
	}
	p.FirmID = firmID
	p.Role = role
	r.profiles[profileID] = p
	return nil
}

type invitationRepoFake struct {
	invites map[string]domain.Invitation
}

func (r *invitationRepoFake) Create(ctx context.Context, invite domain.Invitation) error {
	r.invites[invite.ID] = invite
	return nil
}

func (r *invitationRepoFake) GetByToken(ctx context.Context, token string) (domain.Invitation, error) {
	for _, inv := range r.invites {
		if inv.Token == token {
			return inv, nil
		}
	}
	return domain.Invitation{}, domain.ErrNotFound
}

func (r *invitationRepoFake) ListByFirm(ctx context.Context, firmID string) ([]domain.Invitation, error) {
	var out []domain.Invitation
	for _, inv := range r.invites {
		if inv.FirmID == firmID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *invitationRepoFake) MarkAccepted(ctx context.Context, inviteID string, acceptedAt time.Time) error {
	inv, ok := r.invites[inviteID]
	if !ok {
		return domain.ErrNotFound
	}
	if inv.Status != domain.InviteOpen {
		return domain.ErrConflict
	}
	inv.Status = domain.InviteAccepted
	inv.AcceptedAt = &acceptedAt
	r.invites[inviteID] = inv
	return nil
}

func newTestServer(t *testing.T) (*Server, *firmRepoFake, *profileRepoFake) {
	t.Helper()
	firms := &firmRepoFake{firms: map[string]domain.Firm{}}
	profiles := &profileRepoFake{profiles: map[string]domain.Profile{}}
	invitations := &invitationRepoFake{invites: map[string]domain.Invitation{}}

	cfg := config.Config{
		HTTPAddr:         ":0",
		AuthMode:         "header",
		AdminAPIKey:      "test-admin-key",
		RateLimitMaxKeys: 100,
	}
	firmSvc := usecase.NewFirmService(firms, profiles, invitations, 7*24*time.Hour, nil)
	s := NewServerWithDeps(cfg, ServerDeps{
		Firms:         firmSvc,
		Profiles:      profiles,
		AdminAPIKey:   cfg.AdminAPIKey,
		Authenticator: header.NewAuthenticator(),
		RateLimiter:   ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{MaxKeys: 100}),
	})
	return s, firms, profiles
}

func principalHeaders(req *http.Request, role string) {
	req.Header.Set("X-Principal-Subject", "user-1")
	req.Header.Set("X-Principal-Email", "user@example.com")
	req.Header.Set("X-Principal-Role", role)
	req.Header.Set("X-Principal-Profile", "prof-1")
	req.Header.Set("X-Principal-Firm", "firm-1")
}

func TestServer_Healthz(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestServer_ListFormsThroughGuard(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/forms", nil)
	principalHeaders(req, "client")
	s.r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || len(body.Data) != 9 {
		t.Fatalf("body = %+v", body)
	}
}

func TestServer_MissingPrincipalIs401(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/forms", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != "UNAUTHORIZED" {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestServer_ClientRoleBlockedFromStaffRoute(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/forms/fill", strings.NewReader(`{}`))
	principalHeaders(req, "client")
	s.r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body := decodeErrorBody(t, rec); body.Code != "MISSING_ROLE" {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestServer_WebhookWithoutBillingIs503(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/billing/webhook", strings.NewReader(`{}`)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != "BILLING_UNAVAILABLE" {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestServer_AdminCreateFirmWithKey(t *testing.T) {
	s, firms, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/firms", strings.NewReader(`{"name":"Reyes Law","slug":"reyes-law"}`))
	req.Header.Set("X-Admin-Key", "test-admin-key")
	s.r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(firms.firms) != 1 {
		t.Fatalf("firms = %d", len(firms.firms))
	}
}

func TestServer_AdminCreateFirmWrongKey(t *testing.T) {
	s, firms, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/firms", strings.NewReader(`{"name":"Reyes Law"}`))
	req.Header.Set("X-Admin-Key", "wrong")
	s.r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(firms.firms) != 0 {
		t.Fatal("firm must not be created")
	}
}

func TestServer_AdminRoleSessionAllowed(t *testing.T) {
	s, firms, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/firms", strings.NewReader(`{"name":"Reyes Law"}`))
	principalHeaders(req, "admin")
	s.r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(firms.firms) != 1 {
		t.Fatal("firm should be created by admin session")
	}
}

func TestServer_InviteAndAcceptFlow(t *testing.T) {
	s, firms, profiles := newTestServer(t)
	firms.firms["firm-1"] = domain.Firm{ID: "firm-1", Name: "Reyes Law"}
	profiles.profiles["prof-1"] = domain.Profile{ID: "prof-1", UserID: "user-1", Email: "user@example.com", Role: domain.RoleAttorney, FirmID: "firm-1"}
	profiles.profiles["prof-2"] = domain.Profile{ID: "prof-2", UserID: "user-2", Email: "newclient@example.com", Role: domain.RoleClient}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/firm/invitations", strings.NewReader(`{"email":"newclient@example.com","role":"client"}`))
	principalHeaders(req, "attorney")
	s.r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("invite status = %d, body %s", rec.Code, rec.Body.String())
	}
	var inviteBody struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &inviteBody); err != nil {
		t.Fatalf("decode invite: %v", err)
	}
	if inviteBody.Data.Token == "" {
		t.Fatalf("no token in %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/invitations/accept", strings.NewReader(`{"token":"`+inviteBody.Data.Token+`"}`))
	req.Header.Set("X-Principal-Subject", "user-2")
	req.Header.Set("X-Principal-Email", "newclient@example.com")
	req.Header.Set("X-Principal-Role", "client")
	req.Header.Set("X-Principal-Profile", "prof-2")
	s.r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept status = %d, body %s", rec.Code, rec.Body.String())
	}
	if profiles.profiles["prof-2"].FirmID != "firm-1" {
		t.Fatal("profile not bound to firm after accept")
	}
}

func TestServer_UnknownRouteEnvelope(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != "NOT_FOUND" {
		t.Fatalf("code = %q", body.Code)
	}
}
