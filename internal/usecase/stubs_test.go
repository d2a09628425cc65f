package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type profileRepoStub struct {
	profiles map[string]domain.Profile
	joined   []string
}

func newProfileRepoStub(profiles ...domain.Profile) *profileRepoStub {
	stub := &profileRepoStub{profiles: map[string]domain.Profile{}}
	for _, p := range profiles {
		stub.profiles[p.ID] = p
	}
	return stub
}

func (r *profileRepoStub) Create(ctx context.Context, profile domain.Profile) error {
	r.profiles[profile.ID] = profile
	return nil
}

func (r *profileRepoStub) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	for _, p := range r.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return domain.Profile{}, domain.ErrNotFound
}

func (r *profileRepoStub) GetByID(ctx context.Context, profileID string) (domain.Profile, error) {
	p, ok := r.profiles[profileID]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *profileRepoStub) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	for _, p := range r.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return domain.Profile{}, domain.ErrNotFound
}

func (r *profileRepoStub) ListByFirm(ctx context.Context, firmID string) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, p := range r.profiles {
		if p.FirmID == firmID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *profileRepoStub) JoinFirm(ctx context.Context, profileID, firmID string, role domain.Role) error {
	p, ok := r.profiles[profileID]
	if !ok {
		return domain.ErrNotFound
	}
	p.FirmID = firmID
	p.Role = role
	r.profiles[profileID] = p
	r.joined = append(r.joined, profileID)
	return nil
}

type firmRepoStub struct {
	firms map[string]domain.Firm
}

func newFirmRepoStub(firms ...domain.Firm) *firmRepoStub {
	stub := &firmRepoStub{firms: map[string]domain.Firm{}}
	for _, f := range firms {
		stub.firms[f.ID] = f
	}
	return stub
}

func (r *firmRepoStub) Create(ctx context.Context, firm domain.Firm) error {
	r.firms[firm.ID] = firm
	return nil
}

func (r *firmRepoStub) GetByID(ctx context.Context, firmID string) (domain.Firm, error) {
	f, ok := r.firms[firmID]
	if !ok {
		return domain.Firm{}, domain.ErrNotFound
	}
	return f, nil
}

type invitationRepoStub struct {
	invites map[string]domain.Invitation
}

func newInvitationRepoStub() *invitationRepoStub {
	return &invitationRepoStub{invites: map[string]domain.Invitation{}}
}

func (r *invitationRepoStub) Create(ctx context.Context, invite domain.Invitation) error {
	r.invites[invite.ID] = invite
	return nil
}

func (r *invitationRepoStub) GetByToken(ctx context.Context, token string) (domain.Invitation, error) {
	for _, inv := range r.invites {
		if inv.Token == token {
			return inv, nil
		}
	}
	return domain.Invitation{}, domain.ErrNotFound
}

func (r *invitationRepoStub) ListByFirm(ctx context.Context, firmID string) ([]domain.Invitation, error) {
	var out []domain.Invitation
	for _, inv := range r.invites {
		if inv.FirmID == firmID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *invitationRepoStub) MarkAccepted(ctx context.Context, inviteID string, acceptedAt time.Time) error {
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

type caseRepoStub struct {
	cases map[string]domain.Case
	notes []domain.CaseNote
}

func newCaseRepoStub(cases ...domain.Case) *caseRepoStub {
	stub := &caseRepoStub{cases: map[string]domain.Case{}}
	for _, c := range cases {
		stub.cases[c.ID] = c
	}
	return stub
}

func (r *caseRepoStub) Create(ctx context.Context, kase domain.Case) error {
	r.cases[kase.ID] = kase
	return nil
}

func (r *caseRepoStub) GetByID(ctx context.Context, firmID, caseID string) (domain.Case, error) {
	c, ok := r.cases[caseID]
	if !ok || c.FirmID != firmID {
		return domain.Case{}, domain.ErrNotFound
	}
	return c, nil
}

func (r *caseRepoStub) List(ctx context.Context, filter domain.CaseFilter) ([]domain.Case, error) {
	var out []domain.Case
	for _, c := range r.cases {
		if c.FirmID == filter.FirmID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *caseRepoStub) UpdateStatus(ctx context.Context, firmID, caseID string, from, to domain.CaseStatus, at time.Time) error {
	c, ok := r.cases[caseID]
	if !ok || c.FirmID != firmID {
		return domain.ErrNotFound
	}
	if c.Status != from {
		return domain.ErrConflict
	}
	c.Status = to
	c.UpdatedAt = at
	r.cases[caseID] = c
	return nil
}

func (r *caseRepoStub) AssignAttorney(ctx context.Context, firmID, caseID, attorneyID string, at time.Time) error {
	c, ok := r.cases[caseID]
	if !ok || c.FirmID != firmID {
		return domain.ErrNotFound
	}
	c.AttorneyID = attorneyID
	c.UpdatedAt = at
	r.cases[caseID] = c
	return nil
}

func (r *caseRepoStub) AddNote(ctx context.Context, note domain.CaseNote) error {
	r.notes = append(r.notes, note)
	return nil
}

func (r *caseRepoStub) ListNotes(ctx context.Context, caseID string) ([]domain.CaseNote, error) {
	var out []domain.CaseNote
	for _, n := range r.notes {
		if n.CaseID == caseID {
			out = append(out, n)
		}
	}
	return out, nil
}

type documentRepoStub struct {
	docs map[string]domain.Document
}

func newDocumentRepoStub(docs ...domain.Document) *documentRepoStub {
	stub := &documentRepoStub{docs: map[string]domain.Document{}}
	for _, d := range docs {
		stub.docs[d.ID] = d
	}
	return stub
}

func (r *documentRepoStub) Create(ctx context.Context, doc domain.Document) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *documentRepoStub) GetByID(ctx context.Context, firmID, documentID string) (domain.Document, error) {
	d, ok := r.docs[documentID]
	if !ok || d.FirmID != firmID {
		return domain.Document{}, domain.ErrNotFound
	}
	return d, nil
}

func (r *documentRepoStub) ListByCase(ctx context.Context, firmID, caseID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range r.docs {
		if d.FirmID == firmID && d.CaseID == caseID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *documentRepoStub) SetScanStatus(ctx context.Context, documentID string, status domain.ScanStatus, signature string, at time.Time) error {
	d, ok := r.docs[documentID]
	if !ok {
		return domain.ErrNotFound
	}
	d.ScanStatus = status
	d.ScanSignature = signature
	if status == domain.ScanPending {
		d.ScannedAt = nil
	} else {
		ts := at
		d.ScannedAt = &ts
	}
	r.docs[documentID] = d
	return nil
}

type subscriptionRepoStub struct {
	subs map[string]domain.Subscription
}

func newSubscriptionRepoStub(subs ...domain.Subscription) *subscriptionRepoStub {
	stub := &subscriptionRepoStub{subs: map[string]domain.Subscription{}}
	for _, s := range subs {
		stub.subs[s.FirmID] = s
	}
	return stub
}

func (r *subscriptionRepoStub) Upsert(ctx context.Context, sub domain.Subscription) error {
	r.subs[sub.FirmID] = sub
	return nil
}

func (r *subscriptionRepoStub) GetByFirm(ctx context.Context, firmID string) (domain.Subscription, error) {
	s, ok := r.subs[firmID]
	if !ok {
		return domain.Subscription{}, domain.ErrNotFound
	}
	return s, nil
}

func (r *subscriptionRepoStub) GetByStripeSubscription(ctx context.Context, stripeSubID string) (domain.Subscription, error) {
	for _, s := range r.subs {
		if s.StripeSubscriptionID == stripeSubID {
			return s, nil
		}
	}
	return domain.Subscription{}, domain.ErrNotFound
}

type analysisRepoStub struct {
	records map[string]domain.DocumentAnalysis
}

func newAnalysisRepoStub() *analysisRepoStub {
	return &analysisRepoStub{records: map[string]domain.DocumentAnalysis{}}
}

func (r *analysisRepoStub) Create(ctx context.Context, analysis domain.DocumentAnalysis) error {
	r.records[analysis.ID] = analysis
	return nil
}

func (r *analysisRepoStub) Update(ctx context.Context, analysis domain.DocumentAnalysis) error {
	if _, ok := r.records[analysis.ID]; !ok {
		return domain.ErrNotFound
	}
	r.records[analysis.ID] = analysis
	return nil
}

func (r *analysisRepoStub) GetByID(ctx context.Context, analysisID string) (domain.DocumentAnalysis, error) {
	a, ok := r.records[analysisID]
	if !ok {
		return domain.DocumentAnalysis{}, domain.ErrNotFound
	}
	return a, nil
}

func (r *analysisRepoStub) ListByDocument(ctx context.Context, documentID string) ([]domain.DocumentAnalysis, error) {
	var out []domain.DocumentAnalysis
	for _, a := range r.records {
		if a.DocumentID == documentID {
			out = append(out, a)
		}
	}
	return out, nil
}

type scannerStub struct {
	verdict domain.ScanVerdict
	err     error
	calls   int
}

func (s *scannerStub) Scan(ctx context.Context, storageURI, contentSHA256 string) (domain.ScanVerdict, error) {
	s.calls++
	if s.err != nil {
		return domain.ScanVerdict{}, s.err
	}
	return s.verdict, nil
}

type analyzerStub struct {
	output domain.AnalysisOutput
	err    error
}

func (a *analyzerStub) Analyze(ctx context.Context, formType domain.FormType, filename, text string) (domain.AnalysisOutput, error) {
	if a.err != nil {
		return domain.AnalysisOutput{}, a.err
	}
	return a.output, nil
}

var errScannerDown = errors.New("scanner unavailable")
