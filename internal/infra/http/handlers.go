package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rohanbsher/immigration-ai/internal/domain"
	"github.com/rohanbsher/immigration-ai/internal/usecase"
)

const maxWebhookBytes = 1 << 20

func mustAuth(c *gin.Context) (domain.AuthContext, bool) {
	auth, ok := getAuth(c)
	if !ok {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return domain.AuthContext{}, false
	}
	return auth, ok
}

// caseVisible enforces client scoping: clients only ever see their own
// cases, everyone else in the firm sees all firm cases.
func caseVisible(auth domain.AuthContext, kase domain.Case) bool {
	if auth.Profile.Role == domain.RoleClient {
		return kase.ClientProfileID == auth.Profile.ID
	}
	return true
}

type createCaseRequest struct {
	ClientProfileID string `json:"client_profile_id"`
	AttorneyID      string `json:"attorney_id"`
	FormType        string `json:"form_type"`
	Priority        string `json:"priority"`
	Title           string `json:"title"`
}

func (s *Server) handleCreateCase(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	var req createCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	kase, err := s.cases.Create(c.Request.Context(), usecase.CreateCaseInput{
		FirmID:          auth.Profile.FirmID,
		ClientProfileID: req.ClientProfileID,
		AttorneyID:      req.AttorneyID,
		FormType:        domain.FormType(req.FormType),
		Priority:        domain.CasePriority(req.Priority),
		Title:           req.Title,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusCreated, kase)
}

func (s *Server) handleListCases(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	filter := domain.CaseFilter{
		FirmID:     auth.Profile.FirmID,
		AttorneyID: c.Query("attorney_id"),
		Status:     domain.CaseStatus(c.Query("status")),
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}
	if auth.Profile.Role == domain.RoleClient {
		filter.ClientProfileID = auth.Profile.ID
	}
	cases, err := s.cases.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, cases)
}

func (s *Server) handleGetCase(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	kase, err := s.cases.Get(c.Request.Context(), auth.Profile.FirmID, c.Param("case_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !caseVisible(auth, kase) {
		writeError(c, domain.ErrNotFound)
		return
	}
	writeData(c, http.StatusOK, kase)
}

type caseStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleCaseStatus(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	var req caseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	kase, err := s.cases.ChangeStatus(c.Request.Context(), auth.Profile.FirmID, c.Param("case_id"), domain.CaseStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, kase)
}

type caseAssignRequest struct {
	AttorneyID string `json:"attorney_id"`
}

func (s *Server) handleCaseAssign(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	var req caseAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.cases.Assign(c.Request.Context(), auth.Profile.FirmID, c.Param("case_id"), req.AttorneyID); err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, gin.H{"case_id": c.Param("case_id"), "attorney_id": req.AttorneyID})
}

type caseNoteRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleAddNote(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	var req caseNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	note, err := s.cases.AddNote(c.Request.Context(), auth.Profile.FirmID, c.Param("case_id"), auth.Profile.ID, req.Body)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusCreated, note)
}

func (s *Server) handleListNotes(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	notes, err := s.cases.Notes(c.Request.Context(), auth.Profile.FirmID, c.Param("case_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, notes)
}

type registerDocumentRequest struct {
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	SizeBytes     int64  `json:"size_bytes"`
	ContentSHA256 string `json:"content_sha256"`
	StorageURI    string `json:"storage_uri"`
}

func (s *Server) handleRegisterDocument(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	caseID := c.Param("case_id")
	kase, err := s.cases.Get(c.Request.Context(), auth.Profile.FirmID, caseID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !caseVisible(auth, kase) {
		writeError(c, domain.ErrNotFound)
		return
	}
	var req registerDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	doc, err := s.documents.Register(c.Request.Context(), usecase.RegisterDocumentInput{
		FirmID:        auth.Profile.FirmID,
		CaseID:        caseID,
		UploaderID:    auth.Profile.ID,
		Filename:      req.Filename,
		ContentType:   req.ContentType,
		SizeBytes:     req.SizeBytes,
		ContentSHA256: req.ContentSHA256,
		StorageURI:    req.StorageURI,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	caseID := c.Param("case_id")
	kase, err := s.cases.Get(c.Request.Context(), auth.Profile.FirmID, caseID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !caseVisible(auth, kase) {
		writeError(c, domain.ErrNotFound)
		return
	}
	docs, err := s.documents.ListByCase(c.Request.Context(), auth.Profile.FirmID, caseID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, docs)
}

func (s *Server) getVisibleDocument(c *gin.Context, auth domain.AuthContext) (domain.Document, bool) {
	doc, err := s.documents.Get(c.Request.Context(), auth.Profile.FirmID, c.Param("document_id"))
	if err != nil {
		writeError(c, err)
		return domain.Document{}, false
	}
	if auth.Profile.Role == domain.RoleClient {
		kase, err := s.cases.Get(c.Request.Context(), auth.Profile.FirmID, doc.CaseID)
		if err != nil || !caseVisible(auth, kase) {
			writeError(c, domain.ErrNotFound)
			return domain.Document{}, false
		}
	}
	return doc, true
}

func (s *Server) handleGetDocument(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	doc, ok := s.getVisibleDocument(c, auth)
	if !ok {
		return
	}
	writeData(c, http.StatusOK, doc)
}

func (s *Server) handleDownloadDocument(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	doc, ok := s.getVisibleDocument(c, auth)
	if !ok {
		return
	}
	if err := s.documents.EnsureDownloadable(doc); err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, gin.H{"url": doc.StorageURI})
}

func (s *Server) handleRescanDocument(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	doc, err := s.documents.Rescan(c.Request.Context(), auth.Profile.FirmID, c.Param("document_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, doc)
}

type runAnalysisRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleRunAnalysis(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	var req runAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	analysis, err := s.analyses.Run(c.Request.Context(), usecase.RunAnalysisInput{
		FirmID:      auth.Profile.FirmID,
		DocumentID:  c.Param("document_id"),
		RequestedBy: auth.Profile.ID,
		Text:        req.Text,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusCreated, analysis)
}

func (s *Server) handleListAnalyses(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	analyses, err := s.analyses.ListForDocument(c.Request.Context(), auth.Profile.FirmID, c.Param("document_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, analyses)
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	analysis, err := s.analyses.Get(c.Request.Context(), auth.Profile.FirmID, c.Param("analysis_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, analysis)
}

func (s *Server) handleGetFirm(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	firm, err := s.firms.Get(c.Request.Context(), auth.Profile.FirmID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, firm)
}

func (s *Server) handleListMembers(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	members, err := s.firms.Members(c.Request.Context(), auth.Profile.FirmID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, members)
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) handleInvite(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	invite, err := s.firms.Invite(c.Request.Context(), usecase.InviteInput{
		FirmID:    auth.Profile.FirmID,
		Email:     req.Email,
		Role:      domain.Role(req.Role),
		InvitedBy: auth.Profile.ID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusCreated, invite)
}

func (s *Server) handleListInvitations(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	invites, err := s.firms.ListInvitations(c.Request.Context(), auth.Profile.FirmID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, invites)
}

type acceptInvitationRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleAcceptInvitation(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	profile, err := s.firms.Accept(c.Request.Context(), req.Token, auth.Profile.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, profile)
}

func (s *Server) handleGetSubscription(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	sub, err := s.billing.Subscription(c.Request.Context(), auth.Profile.FirmID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, sub)
}

type checkoutRequest struct {
	Plan       string `json:"plan"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

func (s *Server) handleCheckout(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	if s.payments == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "BILLING_UNAVAILABLE", "billing is not configured")
		return
	}
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	session, err := s.payments.CreateCheckoutSession(c.Request.Context(), auth.Profile.FirmID, domain.Plan(req.Plan), auth.User.Email, req.SuccessURL, req.CancelURL)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusCreated, gin.H{"session_id": session.ID, "url": session.URL})
}

func (s *Server) handleBillingWebhook(c *gin.Context) {
	if s.payments == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "BILLING_UNAVAILABLE", "billing is not configured")
		return
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_PAYLOAD", "could not read payload")
		return
	}
	event, err := s.payments.ParseEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_SIGNATURE", "webhook verification failed")
		return
	}
	if event.Ignored {
		writeData(c, http.StatusOK, gin.H{"received": true})
		return
	}
	err = s.billing.ApplyEvent(c.Request.Context(), usecase.SubscriptionEvent{
		FirmID:           event.FirmID,
		Plan:             event.Plan,
		CustomerID:       event.CustomerID,
		SubscriptionID:   event.SubscriptionID,
		Status:           event.Status,
		CurrentPeriodEnd: event.CurrentPeriodEnd,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, gin.H{"received": true})
}

func (s *Server) handleListForms(c *gin.Context) {
	forms := domain.FormTypes()
	out := make([]string, 0, len(forms))
	for _, f := range forms {
		out = append(out, string(f))
	}
	writeData(c, http.StatusOK, out)
}

type fillFormRequest struct {
	FormType  string            `json:"form_type"`
	FieldData map[string]string `json:"field_data"`
	Flatten   bool              `json:"flatten"`
}

func (s *Server) handleFillForm(c *gin.Context) {
	auth, ok := mustAuth(c)
	if !ok {
		return
	}
	if s.pdf == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "PDF_SERVICE_UNAVAILABLE", "pdf service is not configured")
		return
	}
	if err := s.billing.RequireEntitlement(c.Request.Context(), auth.Profile.FirmID); err != nil {
		writeError(c, err)
		return
	}
	var req fillFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	result, err := s.pdf.Fill(c.Request.Context(), domain.FormType(req.FormType), req.FieldData, req.Flatten)
	if err != nil {
		writeError(c, err)
		return
	}
	if stats, err := json.Marshal(result.Stats); err == nil {
		c.Header("X-Fill-Stats", string(stats))
	}
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}

type adminCreateFirmRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (s *Server) handleAdminCreateFirm(c *gin.Context) {
	var req adminCreateFirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	firm, err := s.firms.Create(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusCreated, firm)
}

type adminCreateProfileRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	FirmID string `json:"firm_id"`
}

func (s *Server) handleAdminCreateProfile(c *gin.Context) {
	var req adminCreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ROLE", "unknown role")
		return
	}
	if req.UserID == "" || req.Email == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "user_id and email are required")
		return
	}
	profile := domain.Profile{
		ID:     uuid.NewString(),
		UserID: req.UserID,
		Email:  req.Email,
		Role:   role,
		FirmID: req.FirmID,
	}
	if err := s.profiles.Create(c.Request.Context(), profile); err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusCreated, profile)
}
