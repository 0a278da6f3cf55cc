package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	authrepo "github.com/smallbiznis/advisorhub/internal/auth/repository"
	authservice "github.com/smallbiznis/advisorhub/internal/auth/service"
	"github.com/smallbiznis/advisorhub/internal/auth/token"
	billingservice "github.com/smallbiznis/advisorhub/internal/billing/service"
	"github.com/smallbiznis/advisorhub/internal/billing/stripe"
	businessrepo "github.com/smallbiznis/advisorhub/internal/business/repository"
	businessservice "github.com/smallbiznis/advisorhub/internal/business/service"
	"github.com/smallbiznis/advisorhub/internal/cache"
	"github.com/smallbiznis/advisorhub/internal/config"
	generationrepo "github.com/smallbiznis/advisorhub/internal/generation/repository"
	generationservice "github.com/smallbiznis/advisorhub/internal/generation/service"
	integrationrepo "github.com/smallbiznis/advisorhub/internal/integration/repository"
	integrationservice "github.com/smallbiznis/advisorhub/internal/integration/service"
	"github.com/smallbiznis/advisorhub/internal/mailer"
	"github.com/smallbiznis/advisorhub/internal/migration"
	"github.com/smallbiznis/advisorhub/internal/providers/llm"
	subscriptionrepo "github.com/smallbiznis/advisorhub/internal/subscription/repository"
	subscriptionservice "github.com/smallbiznis/advisorhub/internal/subscription/service"
	workflowrepo "github.com/smallbiznis/advisorhub/internal/workflow/repository"
	workflowservice "github.com/smallbiznis/advisorhub/internal/workflow/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubCompleter struct {
	content string
	tokens  int
}

func (c stubCompleter) Complete(ctx context.Context, system, user string) (llm.Completion, error) {
	return llm.Completion{Content: c.content, Tokens: c.tokens}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	log := zap.NewNop()
	require.NoError(t, migration.Run(db, log))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	cfg := config.Config{
		JWTAccessSecret:   "test-access-secret",
		JWTTokenSecret:    "test-email-secret",
		IntegrationSecret: "0123456789abcdef0123456789abcdef",
		FrontendURL:       "http://localhost:3000",
	}

	mail := mailer.New(mailer.NoOpProvider{}, log, cfg.FrontendURL)
	tokens := token.NewManager(cfg)

	businessSvc := businessservice.New(businessservice.Params{
		DB:      db,
		Log:     log,
		GenID:   node,
		Repo:    businessrepo.Provide(),
		Subs:    subscriptionrepo.Provide(),
		GenRepo: generationrepo.Provide(),
	})
	authSvc := authservice.New(authservice.Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Repo:     authrepo.Provide(),
		Business: businessSvc,
		Tokens:   tokens,
		Mailer:   mail,
	})
	subscriptionSvc := subscriptionservice.New(subscriptionservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  subscriptionrepo.Provide(),
	})
	generationSvc := generationservice.New(generationservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Repo:      generationrepo.Provide(),
		Subs:      subscriptionrepo.Provide(),
		Cache:     cache.NewMemory(),
		Completer: stubCompleter{content: "generated content", tokens: 700},
	})
	workflowSvc := workflowservice.New(workflowservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  workflowrepo.Provide(),
		Gen:   generationSvc,
		Subs:  subscriptionrepo.Provide(),
	})
	integrationSvc := integrationservice.New(integrationservice.Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Repo:   integrationrepo.Provide(),
		Subs:   subscriptionrepo.Provide(),
		Config: cfg,
	})
	billingSvc := billingservice.New(billingservice.Params{
		DB:      db,
		Log:     log,
		GenID:   node,
		Cfg:     cfg,
		Subs:    subscriptionrepo.Provide(),
		BizRepo: businessrepo.Provide(),
		Stripe:  stripe.NewClient(cfg.Stripe),
		Mailer:  mail,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:             engine,
		Cfg:             cfg,
		Log:             log,
		Tokens:          tokens,
		AuthSvc:         authSvc,
		BusinessSvc:     businessSvc,
		SubscriptionSvc: subscriptionSvc,
		BillingSvc:      billingSvc,
		GenerationSvc:   generationSvc,
		WorkflowSvc:     workflowSvc,
		IntegrationSvc:  integrationSvc,
	})
	return srv, db
}

func doJSON(t *testing.T, srv *Server, method, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

// registerOwner registers an owner, marks the email verified and logs
// in, returning the access token and the provisioned business id.
func registerOwner(t *testing.T, srv *Server, db *gorm.DB, email string) (string, snowflake.ID) {
	t.Helper()

	rec, env := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":         email,
		"password":      "correct-horse-battery",
		"first_name":    "Pat",
		"last_name":     "Doe",
		"role":          "SMB_OWNER",
		"business_name": "Pat's Plumbing",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)

	require.NoError(t, db.Model(&authdomain.User{}).Where("email = ?", email).Update("email_verified", true).Error)

	rec, env = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp authdomain.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.NotNil(t, resp.Business)
	return resp.Tokens.AccessToken, resp.Business.ID
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, env := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":      "unverified@example.com",
		"password":   "correct-horse-battery",
		"first_name": "Pat",
		"last_name":  "Doe",
		"role":       "SMB_OWNER",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)

	rec, env = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "unverified@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, env.Success)
	require.Equal(t, "email_not_verified", env.Error)
}

func TestVerifyEmailByLink(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":      "link@example.com",
		"password":   "correct-horse-battery",
		"first_name": "Pat",
		"last_name":  "Doe",
		"role":       "SMB_OWNER",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Mint the same verification token the mailer would have linked.
	mgr := token.NewManager(config.Config{
		JWTAccessSecret: "test-access-secret",
		JWTTokenSecret:  "test-email-secret",
	})
	verify, err := mgr.GenerateEmailToken("link@example.com", token.PurposeEmailVerification, time.Hour)
	require.NoError(t, err)

	rec, env := doJSON(t, srv, http.MethodGet, "/api/auth/verify-email?token="+url.QueryEscape(verify), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "link@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestValidationDetails(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, env := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, env.Success)
	require.Equal(t, "validation_failed", env.Error)

	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Details, &details))
	require.Contains(t, details, "Email")
	require.Contains(t, details, "Password")
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, env := doJSON(t, srv, http.MethodGet, "/api/businesses", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, env.Success)

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/businesses", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	srv, db := newTestServer(t)
	access, _ := registerOwner(t, srv, db, "me@example.com")

	rec, env := doJSON(t, srv, http.MethodGet, "/api/auth/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view authdomain.UserView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Equal(t, "me@example.com", view.Email)
	require.True(t, view.EmailVerified)
}

func TestBusinessAccessGate(t *testing.T) {
	srv, db := newTestServer(t)
	_, bizA := registerOwner(t, srv, db, "alpha@example.com")
	accessB, _ := registerOwner(t, srv, db, "beta@example.com")

	rec, env := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/businesses/%s/stats", bizA), accessB, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "business_access_denied", env.Error)

	rec, _ = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/ai/history/%s", bizA), accessB, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGenerateAndCache(t *testing.T) {
	srv, db := newTestServer(t)
	access, biz := registerOwner(t, srv, db, "gen@example.com")

	body := gin.H{
		"module_type": "MARKETING",
		"prompt":      "ad for a plumbing service",
		"context":     gin.H{"type": "ad_copy"},
	}

	rec, env := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/ai/generate/%s", biz), access, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var first struct {
		Content string `json:"content"`
		Cached  bool   `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &first))
	require.Equal(t, "generated content", first.Content)
	require.False(t, first.Cached)

	rec, env = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/ai/generate/%s", biz), access, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var second struct {
		Cached bool `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &second))
	require.True(t, second.Cached)
}

func TestTemplateCatalog(t *testing.T) {
	srv, db := newTestServer(t)
	access, _ := registerOwner(t, srv, db, "tmpl@example.com")

	rec, env := doJSON(t, srv, http.MethodGet, "/api/ai/templates/MARKETING", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Templates []string `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Contains(t, data.Templates, "ad_copy")

	rec, env = doJSON(t, srv, http.MethodGet, "/api/ai/templates/BOGUS", access, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_module_type", env.Error)
}

func TestPublicPlans(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, env := doJSON(t, srv, http.MethodGet, "/api/subscriptions/plans", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var plans []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	require.Len(t, plans, 4)
}

func TestAuthRateLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	body := gin.H{"email": "limit@example.com", "password": "wrong-password"}
	var rec *httptest.ResponseRecorder
	for i := 0; i < 20; i++ {
		rec, _ = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec, env := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "too_many_requests", env.Error)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestWorkflowTicketRoundTrip(t *testing.T) {
	srv, db := newTestServer(t)
	access, biz := registerOwner(t, srv, db, "tickets@example.com")

	rec, env := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/modules/support/%s/tickets", biz), access, gin.H{
		"subject":     "Billing question",
		"description": "I was charged twice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Artifact struct {
			ID snowflake.ID `json:"id"`
		} `json:"artifact"`
		TicketID string `json:"ticket_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.TicketID)

	rec, _ = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/modules/support/%s/tickets/%s", biz, created.Artifact.ID), access, gin.H{
		"status":   "resolved",
		"response": "Refund issued.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/modules/support/%s/tickets", biz), access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions/webhook", bytes.NewBufferString(`{"type":"invoice.paid"}`))
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
