// Package server assembles the HTTP surface: engine, middleware and the
// per-domain route groups.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/advisorhub/internal/auth"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	"github.com/smallbiznis/advisorhub/internal/auth/token"
	"github.com/smallbiznis/advisorhub/internal/billing"
	billingdomain "github.com/smallbiznis/advisorhub/internal/billing/domain"
	"github.com/smallbiznis/advisorhub/internal/business"
	businessdomain "github.com/smallbiznis/advisorhub/internal/business/domain"
	"github.com/smallbiznis/advisorhub/internal/cache"
	"github.com/smallbiznis/advisorhub/internal/config"
	"github.com/smallbiznis/advisorhub/internal/generation"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	"github.com/smallbiznis/advisorhub/internal/integration"
	integrationdomain "github.com/smallbiznis/advisorhub/internal/integration/domain"
	"github.com/smallbiznis/advisorhub/internal/logger"
	"github.com/smallbiznis/advisorhub/internal/mailer"
	"github.com/smallbiznis/advisorhub/internal/migration"
	"github.com/smallbiznis/advisorhub/internal/observability"
	"github.com/smallbiznis/advisorhub/internal/providers/llm"
	"github.com/smallbiznis/advisorhub/internal/ratelimit"
	"github.com/smallbiznis/advisorhub/internal/subscription"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	"github.com/smallbiznis/advisorhub/internal/workflow"
	workflowdomain "github.com/smallbiznis/advisorhub/internal/workflow/domain"
	"github.com/smallbiznis/advisorhub/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	logger.Module,
	db.Module,
	cache.Module,
	observability.Module,
	mailer.Module,
	llm.Module,
	auth.Module,
	business.Module,
	subscription.Module,
	generation.Module,
	workflow.Module,
	integration.Module,
	billing.Module,
	migration.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *observability.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log.Named("http")))
	r.Use(observability.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger
	tokens *token.Manager

	authSvc         authdomain.Service
	businessSvc     businessdomain.Service
	subscriptionSvc subscriptiondomain.Service
	billingSvc      billingdomain.Service
	generationSvc   generationdomain.Service
	workflowSvc     workflowdomain.Service
	integrationSvc  integrationdomain.Service

	authLimiter *ratelimit.FixedWindow
	aiLimiter   *ratelimit.FixedWindow
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	Tokens          *token.Manager
	AuthSvc         authdomain.Service
	BusinessSvc     businessdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	BillingSvc      billingdomain.Service
	GenerationSvc   generationdomain.Service
	WorkflowSvc     workflowdomain.Service
	IntegrationSvc  integrationdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("server"),
		tokens:          p.Tokens,
		authSvc:         p.AuthSvc,
		businessSvc:     p.BusinessSvc,
		subscriptionSvc: p.SubscriptionSvc,
		billingSvc:      p.BillingSvc,
		generationSvc:   p.GenerationSvc,
		workflowSvc:     p.WorkflowSvc,
		integrationSvc:  p.IntegrationSvc,
		authLimiter:     ratelimit.NewFixedWindow(15*time.Minute, 20),
		aiLimiter:       ratelimit.NewFixedWindow(time.Minute, 30),
	}

	s.registerAuthRoutes()
	s.registerBusinessRoutes()
	s.registerAIRoutes()
	s.registerModuleRoutes()
	s.registerIntegrationRoutes()
	s.registerSubscriptionRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	group := s.engine.Group("/api/auth")
	group.Use(s.RateLimit(s.authLimiter))

	group.POST("/register", s.Register)
	group.POST("/login", s.Login)
	group.POST("/refresh", s.Refresh)
	group.POST("/logout", s.Logout)
	// Email links hit the GET form with ?token=; the POST form serves
	// API clients.
	group.GET("/verify-email", s.VerifyEmail)
	group.POST("/verify-email", s.VerifyEmail)
	group.POST("/forgot-password", s.ForgotPassword)
	group.POST("/reset-password", s.ResetPassword)
	group.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerBusinessRoutes() {
	group := s.engine.Group("/api/businesses")
	group.Use(s.AuthRequired())

	group.GET("", s.ListBusinesses)
	group.POST("", s.CreateBusiness)
	group.GET("/:id", s.GetBusiness)
	group.PUT("/:id", s.UpdateBusiness)
	group.DELETE("/:id", s.DeleteBusiness)
	group.GET("/:id/stats", s.BusinessStats)
}

func (s *Server) registerAIRoutes() {
	group := s.engine.Group("/api/ai")
	group.Use(s.AuthRequired())

	group.GET("/templates/:moduleType", s.ListTemplates)

	scoped := group.Group("")
	scoped.Use(s.BusinessAccess("businessId"))
	scoped.POST("/generate/:businessId", s.RateLimit(s.aiLimiter), s.Generate)
	scoped.GET("/history/:businessId", s.GenerationHistory)
	scoped.GET("/modules/:businessId", s.ListModules)
	scoped.PUT("/modules/:businessId/:moduleType", s.ToggleModule)
}

func (s *Server) registerModuleRoutes() {
	group := s.engine.Group("/api/modules")
	group.Use(s.AuthRequired(), s.BusinessAccess("businessId"), s.RateLimit(s.aiLimiter))

	marketing := group.Group("/marketing/:businessId")
	marketing.POST("/generate", s.GenerateMarketing)
	marketing.POST("/campaigns", s.SaveCampaign)
	marketing.GET("/campaigns", s.ListCampaigns)
	marketing.PUT("/campaigns/:campaignId/schedule", s.ScheduleCampaign)
	marketing.GET("/analytics", s.MarketingAnalytics)

	operations := group.Group("/operations/:businessId")
	operations.POST("/invoices", s.CreateInvoice)
	operations.GET("/invoices", s.ListInvoices)
	operations.POST("/appointments", s.ScheduleAppointment)
	operations.GET("/appointments", s.ListAppointments)

	support := group.Group("/support/:businessId")
	support.POST("/generate", s.GenerateSupportResponse)
	support.POST("/tickets", s.CreateTicket)
	support.GET("/tickets", s.ListTickets)
	support.PUT("/tickets/:ticketId", s.UpdateTicket)
	support.POST("/chat", s.SupportChat)
	support.POST("/faqs", s.UpsertFAQ)
	support.GET("/faqs", s.ListFAQs)
	support.GET("/analytics", s.SupportAnalytics)

	compliance := group.Group("/compliance/:businessId")
	compliance.POST("/checklist", s.GenerateChecklist)
	compliance.POST("/policy", s.GeneratePolicy)
	compliance.POST("/audits", s.CreateAudit)
	compliance.PUT("/audits/:auditId", s.UpdateAudit)
	compliance.GET("/artifacts", s.ListComplianceArtifacts)
	compliance.GET("/regulations", s.Regulations)
	compliance.GET("/analytics", s.ComplianceAnalytics)
}

func (s *Server) registerIntegrationRoutes() {
	group := s.engine.Group("/api/integrations")

	// The OAuth provider redirects here without a bearer token; the
	// signed state carries the business binding.
	group.GET("/callback", s.IntegrationCallback)

	scoped := group.Group("/:businessId")
	scoped.Use(s.AuthRequired(), s.BusinessAccess("businessId"))
	scoped.GET("", s.ListIntegrations)
	scoped.POST("/connect", s.ConnectIntegration)
	scoped.DELETE("/:type", s.DisconnectIntegration)
	scoped.POST("/:type/sync", s.SyncIntegration)
	scoped.GET("/oauth/:type/url", s.IntegrationOAuthURL)
}

func (s *Server) registerSubscriptionRoutes() {
	group := s.engine.Group("/api/subscriptions")

	group.GET("/plans", s.ListPlans)
	group.POST("/webhook", s.StripeWebhook)

	scoped := group.Group("/:businessId")
	scoped.Use(s.AuthRequired(), s.BusinessAccess("businessId"))
	scoped.GET("", s.CurrentSubscription)
	scoped.GET("/history", s.BillingHistory)
	scoped.POST("/checkout", s.CheckoutSubscription)
	scoped.POST("/portal", s.BillingPortal)
	scoped.POST("/cancel", s.CancelSubscription)
}
