package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rohanbsher/immigration-ai/internal/config"
	"github.com/rohanbsher/immigration-ai/internal/domain"
	"github.com/rohanbsher/immigration-ai/internal/infra/analyzer"
	"github.com/rohanbsher/immigration-ai/internal/infra/auth/header"
	"github.com/rohanbsher/immigration-ai/internal/infra/auth/rbac"
	"github.com/rohanbsher/immigration-ai/internal/infra/auth/token"
	stripebilling "github.com/rohanbsher/immigration-ai/internal/infra/billing/stripe"
	"github.com/rohanbsher/immigration-ai/internal/infra/db"
	"github.com/rohanbsher/immigration-ai/internal/infra/pdffill"
	"github.com/rohanbsher/immigration-ai/internal/infra/policyopa"
	"github.com/rohanbsher/immigration-ai/internal/infra/ratelimit"
	"github.com/rohanbsher/immigration-ai/internal/infra/scanner"
	"github.com/rohanbsher/immigration-ai/internal/usecase"
)

// PaymentProvider is the slice of the Stripe client the handlers use.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, firmID string, plan domain.Plan, customerEmail, successURL, cancelURL string) (stripebilling.CheckoutSession, error)
	ParseEvent(payload []byte, signatureHeader string) (stripebilling.Event, error)
}

// PDFFiller is the slice of the PDF service client the handlers use.
type PDFFiller interface {
	Fill(ctx context.Context, formType domain.FormType, fieldData map[string]string, flatten bool) (pdffill.FillResult, error)
	Health(ctx context.Context) ([]string, error)
}

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	cases     *usecase.CaseService
	documents *usecase.DocumentService
	firms     *usecase.FirmService
	billing   *usecase.BillingService
	analyses  *usecase.AnalysisService

	profiles usecase.ProfileRepository
	payments PaymentProvider
	pdf      PDFFiller

	adminAPIKey string

	authenticator Authenticator
	authorizer    domain.Authorizer
	authInitErr   error

	rateLimiter         domain.RateLimiter
	rateLimitFailClosed bool
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

type ServerDeps struct {
	Cases     *usecase.CaseService
	Documents *usecase.DocumentService
	Firms     *usecase.FirmService
	Billing   *usecase.BillingService
	Analyses  *usecase.AnalysisService

	Profiles usecase.ProfileRepository
	Payments PaymentProvider
	PDF      PDFFiller

	AdminAPIKey   string
	Authenticator Authenticator
	Authorizer    domain.Authorizer
	RateLimiter   domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:           cfg,
		r:             r,
		cases:         deps.Cases,
		documents:     deps.Documents,
		firms:         deps.Firms,
		billing:       deps.Billing,
		analyses:      deps.Analyses,
		profiles:      deps.Profiles,
		payments:      deps.Payments,
		pdf:           deps.PDF,
		adminAPIKey:   deps.AdminAPIKey,
		authenticator: deps.Authenticator,
		authorizer:    deps.Authorizer,
	}
	s.initRateLimit(deps.RateLimiter)
	s.initAuth()
	s.routes()
	return s
}

func (s *Server) initDeps() {
	s.adminAPIKey = s.cfg.AdminAPIKey

	var conn *gorm.DB
	if s.store != nil {
		conn = s.store.DB
	}
	profileRepo := db.NewProfileRepository(conn)
	firmRepo := db.NewFirmRepository(conn)
	invitationRepo := db.NewInvitationRepository(conn)
	caseRepo := db.NewCaseRepository(conn)
	documentRepo := db.NewDocumentRepository(conn)
	subscriptionRepo := db.NewSubscriptionRepository(conn)
	analysisRepo := db.NewAnalysisRepository(conn)
	s.profiles = profileRepo

	// Collaborators stay nil when unconfigured or misconfigured; the
	// affected operations answer 503 instead of running.
	var docScanner usecase.DocumentScanner
	if s.cfg.ScannerURL != "" {
		client, err := scanner.NewClient(s.cfg.ScannerURL, s.cfg.ScannerAPIKey)
		if err != nil {
			log.Printf("scanner client init: %v", err)
		} else {
			docScanner = client
		}
	}
	var docAnalyzer usecase.DocumentAnalyzer
	if s.cfg.AnthropicAPIKey != "" {
		client, err := analyzer.NewClient(s.cfg.AnthropicAPIKey, s.cfg.AnalysisModel)
		if err != nil {
			log.Printf("analyzer client init: %v", err)
		} else {
			docAnalyzer = client
		}
	}
	if s.cfg.StripeSecretKey != "" {
		client, err := stripebilling.NewClient(s.cfg)
		if err != nil {
			log.Printf("stripe client init: %v", err)
		} else {
			s.payments = client
		}
	}
	if s.cfg.PDFServiceURL != "" {
		client, err := pdffill.NewClient(s.cfg.PDFServiceURL, s.cfg.PDFServiceSecret)
		if err != nil {
			log.Printf("pdf fill client init: %v", err)
		} else {
			s.pdf = client
		}
	}

	s.cases = usecase.NewCaseService(caseRepo, profileRepo, nil)
	s.documents = usecase.NewDocumentService(documentRepo, caseRepo, docScanner, nil)
	s.firms = usecase.NewFirmService(firmRepo, profileRepo, invitationRepo, s.cfg.InviteTTL(), nil)
	s.billing = usecase.NewBillingService(subscriptionRepo, nil)
	s.analyses = usecase.NewAnalysisService(analysisRepo, documentRepo, caseRepo, docAnalyzer, s.billing, s.cfg.AnalysisModel, nil)

	s.initRateLimit(nil)
	s.initAuth()
}

func (s *Server) initAuth() {
	if s.authorizer == nil {
		if s.cfg.PolicyBundlePath != "" {
			engine, err := policyopa.NewEngineFromBundlePath(context.Background(), s.cfg.PolicyBundlePath)
			if err != nil {
				s.authInitErr = err
				return
			}
			s.authorizer = engine
		} else {
			s.authorizer = rbac.NewAuthorizer()
		}
	}
	if s.authenticator != nil {
		return
	}
	switch s.cfg.AuthMode {
	case "none":
		return
	case "header":
		s.authenticator = header.NewAuthenticator()
	case "token":
		authenticator, err := token.NewAuthenticator(s.cfg, s.profiles)
		if err != nil {
			s.authInitErr = err
			return
		}
		s.authenticator = authenticator
	case "":
		s.authInitErr = errors.New("AUTH_MODE is required")
	default:
		s.authInitErr = errors.New("unsupported auth mode")
	}
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		mode := "no-db"
		if s.store != nil && s.store.DB != nil {
			mode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})

	anyRole := domain.RoleSet{}
	staffRoles := domain.RoleSet{domain.RoleAttorney, domain.RoleStaff, domain.RoleAdmin}
	attorneyRoles := domain.RoleSet{domain.RoleAttorney, domain.RoleAdmin}

	v1 := s.r.Group("/v1")
	{
		v1.POST("/cases", s.guard("cases:create", ratelimit.Standard, staffRoles, domain.PermCaseWrite, s.handleCreateCase))
		v1.GET("/cases", s.guard("cases:list", ratelimit.Standard, anyRole, domain.PermCaseRead, s.handleListCases))
		v1.GET("/cases/:case_id", s.guard("cases:get", ratelimit.Standard, anyRole, domain.PermCaseRead, s.handleGetCase))
		v1.PATCH("/cases/:case_id/status", s.guard("cases:status", ratelimit.Standard, attorneyRoles, domain.PermCaseWrite, s.handleCaseStatus))
		v1.POST("/cases/:case_id/assign", s.guard("cases:assign", ratelimit.Sensitive, attorneyRoles, domain.PermCaseAssign, s.handleCaseAssign))
		v1.POST("/cases/:case_id/notes", s.guard("cases:notes:add", ratelimit.Standard, staffRoles, domain.PermCaseWrite, s.handleAddNote))
		v1.GET("/cases/:case_id/notes", s.guard("cases:notes:list", ratelimit.Standard, staffRoles, domain.PermCaseRead, s.handleListNotes))

		v1.POST("/cases/:case_id/documents", s.guard("documents:register", ratelimit.Standard, anyRole, domain.PermDocumentSave, s.handleRegisterDocument))
		v1.GET("/cases/:case_id/documents", s.guard("documents:list", ratelimit.Standard, anyRole, domain.PermDocumentRead, s.handleListDocuments))
		v1.GET("/documents/:document_id", s.guard("documents:get", ratelimit.Standard, anyRole, domain.PermDocumentRead, s.handleGetDocument))
		v1.GET("/documents/:document_id/download", s.guard("documents:download", ratelimit.Standard, anyRole, domain.PermDocumentRead, s.handleDownloadDocument))
		v1.POST("/documents/:document_id/scan", s.guard("documents:scan", ratelimit.Sensitive, staffRoles, domain.PermDocumentScan, s.handleRescanDocument))

		v1.POST("/documents/:document_id/analyses", s.guard("analyses:run", ratelimit.AI, staffRoles, domain.PermAnalysisRun, s.handleRunAnalysis))
		v1.GET("/documents/:document_id/analyses", s.guard("analyses:list", ratelimit.Standard, staffRoles, domain.PermAnalysisRead, s.handleListAnalyses))
		v1.GET("/analyses/:analysis_id", s.guard("analyses:get", ratelimit.Standard, staffRoles, domain.PermAnalysisRead, s.handleGetAnalysis))

		v1.GET("/firm", s.guard("firm:get", ratelimit.Standard, anyRole, domain.PermFirmRead, s.handleGetFirm))
		v1.GET("/firm/members", s.guard("firm:members", ratelimit.Standard, staffRoles, domain.PermFirmRead, s.handleListMembers))
		v1.POST("/firm/invitations", s.guard("firm:invite", ratelimit.Sensitive, attorneyRoles, domain.PermInviteSend, s.handleInvite))
		v1.GET("/firm/invitations", s.guard("firm:invitations", ratelimit.Sensitive, attorneyRoles, domain.PermInviteSend, s.handleListInvitations))
		v1.POST("/invitations/accept", s.guard("invitations:accept", ratelimit.Standard, anyRole, domain.PermInviteAccept, s.handleAcceptInvitation))

		v1.GET("/billing/subscription", s.guard("billing:get", ratelimit.Standard, attorneyRoles, domain.PermBillingRead, s.handleGetSubscription))
		v1.POST("/billing/checkout", s.guard("billing:checkout", ratelimit.Sensitive, attorneyRoles, domain.PermBillingWrite, s.handleCheckout))
		v1.POST("/billing/webhook", s.guardPublic("billing:webhook", ratelimit.Webhook, s.handleBillingWebhook))

		v1.GET("/forms", s.guard("forms:list", ratelimit.Standard, anyRole, domain.PermCaseRead, s.handleListForms))
		v1.POST("/forms/fill", s.guard("forms:fill", ratelimit.AI, staffRoles, domain.PermFormFill, s.handleFillForm))

		v1.POST("/admin/firms", s.guardAdmin("admin:firms:create", s.handleAdminCreateFirm))
		v1.POST("/admin/profiles", s.guardAdmin("admin:profiles:create", s.handleAdminCreateProfile))
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found")
	})
}

func (s *Server) Run() error {
	if s.authInitErr != nil {
		return s.authInitErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}
