package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/advisorhub/internal/cache"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	generationrepo "github.com/smallbiznis/advisorhub/internal/generation/repository"
	generationservice "github.com/smallbiznis/advisorhub/internal/generation/service"
	"github.com/smallbiznis/advisorhub/internal/modules"
	"github.com/smallbiznis/advisorhub/internal/providers/llm"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	subscriptionrepo "github.com/smallbiznis/advisorhub/internal/subscription/repository"
	"github.com/smallbiznis/advisorhub/internal/workflow/domain"
	"github.com/smallbiznis/advisorhub/internal/workflow/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubCompleter struct {
	calls   int
	content string
	tokens  int
}

func (c *stubCompleter) Complete(ctx context.Context, system, user string) (llm.Completion, error) {
	c.calls++
	return llm.Completion{Content: c.content, Tokens: c.tokens}, nil
}

type fixture struct {
	svc       *Service
	db        *gorm.DB
	node      *snowflake.Node
	completer *stubCompleter
	business  snowflake.ID
	user      snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Artifact{},
		&generationdomain.Generation{},
		&generationdomain.ModuleUsage{},
		&subscriptiondomain.Subscription{},
		&subscriptiondomain.BillingInvoice{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	completer := &stubCompleter{content: "generated content", tokens: 800}

	gen := generationservice.New(generationservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      generationrepo.Provide(),
		Subs:      subscriptionrepo.Provide(),
		Cache:     cache.NewMemory(),
		Completer: completer,
	})

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Gen:   gen,
		Subs:  subscriptionrepo.Provide(),
	}).(*Service)

	f := &fixture{
		svc:       svc,
		db:        db,
		node:      node,
		completer: completer,
		business:  node.Generate(),
		user:      node.Generate(),
	}
	f.seedSubscription(t, subscriptiondomain.TierSMBPro)
	f.seedModules(t)
	return f
}

func (f *fixture) seedSubscription(t *testing.T, tier subscriptiondomain.Tier) {
	t.Helper()
	now := time.Now().UTC()
	err := subscriptionrepo.Provide().Insert(context.Background(), f.db, &subscriptiondomain.Subscription{
		ID:               f.node.Generate(),
		BusinessID:       f.business,
		Tier:             tier,
		Status:           subscriptiondomain.StatusActive,
		CurrentPeriodEnd: now.Add(30 * 24 * time.Hour),
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	require.NoError(t, err)
}

func (f *fixture) seedModules(t *testing.T) {
	t.Helper()
	now := time.Now().UTC()
	for _, moduleType := range modules.All() {
		err := f.db.Create(&generationdomain.ModuleUsage{
			ID:         f.node.Generate(),
			BusinessID: f.business,
			ModuleType: moduleType,
			Enabled:    true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}).Error
		require.NoError(t, err)
	}
}

func (f *fixture) seedArtifacts(t *testing.T, n int) {
	t.Helper()
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		err := f.db.Create(&domain.Artifact{
			ID:         f.node.Generate(),
			BusinessID: f.business,
			ModuleType: modules.Marketing,
			Category:   domain.CategoryAdCopy,
			Name:       fmt.Sprintf("campaign %d", i),
			Content:    datatypes.JSONMap{"content": "copy"},
			CreatedBy:  f.user,
			CreatedAt:  now,
			UpdatedAt:  now,
		}).Error
		require.NoError(t, err)
	}
}

func TestInvoiceTotal(t *testing.T) {
	items := []domain.InvoiceItem{
		{Description: "consulting", Quantity: decimal.NewFromInt(3), Rate: decimal.RequireFromString("19.99")},
		{Description: "setup fee", Quantity: decimal.RequireFromString("0.5"), Rate: decimal.RequireFromString("100.10")},
	}
	require.Equal(t, "110.02", InvoiceTotal(items).String())
}

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.CreateInvoice(context.Background(), f.business, f.user, domain.CreateInvoiceRequest{
		ClientName:  "Acme Co",
		ClientEmail: "billing@acme.test",
		Items: []domain.InvoiceItem{
			{Description: "consulting", Quantity: decimal.NewFromInt(2), Rate: decimal.RequireFromString("150.00")},
		},
		DueDate: "2026-09-30",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.InvoiceNumber, "INV-"))
	require.Equal(t, "300", result.Total.String())
	require.Equal(t, domain.CategoryInvoice, result.Artifact.Category)

	stored, err := repository.Provide().FindByID(context.Background(), f.db, f.business, result.Artifact.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, result.InvoiceNumber, stored.Content["invoice_number"])
}

func TestCreateTicketDefaultsPriority(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.CreateTicket(context.Background(), f.business, f.user, domain.CreateTicketRequest{
		Subject:     "Login broken",
		Description: "Cannot sign in since yesterday",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.TicketID, "TKT-"))
	require.Equal(t, "medium", result.Artifact.Content["priority"])
	require.Equal(t, "open", result.Artifact.Content["status"])
	require.Equal(t, "generated content", result.Response)
}

func TestUpdateTicketAppendsResponses(t *testing.T) {
	f := newFixture(t)

	ticket, err := f.svc.CreateTicket(context.Background(), f.business, f.user, domain.CreateTicketRequest{
		Subject:     "Refund request",
		Description: "Charged twice",
		Priority:    "high",
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateTicket(context.Background(), f.business, ticket.Artifact.ID, domain.UpdateTicketRequest{
		Status:   "in_progress",
		Response: "Looking into it",
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateTicket(context.Background(), f.business, ticket.Artifact.ID, domain.UpdateTicketRequest{
		Status:   "resolved",
		Response: "Refund issued",
	})
	require.NoError(t, err)

	require.Equal(t, "resolved", updated.Content["status"])
	responses, ok := updated.Content["responses"].([]any)
	require.True(t, ok)
	require.Len(t, responses, 2)
	// Original fields survive the merges.
	require.Equal(t, "Refund request", updated.Content["subject"])
	require.Equal(t, "high", updated.Content["priority"])
}

func TestUpdateTicketUnknownArtifact(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateTicket(context.Background(), f.business, f.node.Generate(), domain.UpdateTicketRequest{Status: "resolved"})
	require.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestSaveCampaignTemplateLimit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&subscriptiondomain.Subscription{}).
		Where("business_id = ?", f.business).
		Update("tier", subscriptiondomain.TierFreeTrial).Error)
	f.seedArtifacts(t, 5)

	_, err := f.svc.SaveCampaign(context.Background(), f.business, f.user, domain.SaveCampaignRequest{
		Name:    "one too many",
		Type:    domain.CategoryAdCopy,
		Content: "buy now",
	})
	require.ErrorIs(t, err, domain.ErrTemplateLimit)
}

func TestScheduleCampaign(t *testing.T) {
	f := newFixture(t)

	campaign, err := f.svc.SaveCampaign(context.Background(), f.business, f.user, domain.SaveCampaignRequest{
		Name:    "spring launch",
		Type:    domain.CategorySocialPost,
		Content: "hello world",
	})
	require.NoError(t, err)

	scheduled, err := f.svc.ScheduleCampaign(context.Background(), f.business, campaign.ID, domain.ScheduleCampaignRequest{
		ScheduledFor: "2026-09-15T09:00:00Z",
		Platform:     "linkedin",
	})
	require.NoError(t, err)
	require.Equal(t, "scheduled", scheduled.Content["status"])
	require.Equal(t, "linkedin", scheduled.Content["platform"])
	require.Equal(t, "hello world", scheduled.Content["content"])
}

func TestGenerateChecklistDefaultsArea(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.GenerateChecklist(context.Background(), f.business, f.user, domain.GenerateChecklistRequest{
		Industry:     "healthcare",
		BusinessType: "clinic",
	})
	require.NoError(t, err)
	require.Equal(t, "healthcare - General Checklist", result.Artifact.Name)
	require.Equal(t, domain.CategoryChecklist, result.Artifact.Category)
}

func TestCreateAndUpdateAudit(t *testing.T) {
	f := newFixture(t)

	audit, err := f.svc.CreateAudit(context.Background(), f.business, f.user, domain.CreateAuditRequest{
		Area:  "Data Privacy",
		Scope: "technology",
	})
	require.NoError(t, err)
	require.Equal(t, "Audit - Data Privacy", audit.Artifact.Name)
	require.Equal(t, "in_progress", audit.Artifact.Content["status"])

	updated, err := f.svc.UpdateAudit(context.Background(), f.business, audit.Artifact.ID, domain.UpdateAuditRequest{
		Status:   "completed",
		Findings: "No material gaps",
	})
	require.NoError(t, err)
	require.Equal(t, "completed", updated.Content["status"])
	require.Equal(t, "No material gaps", updated.Content["findings"])
}

func TestRegulationsFallback(t *testing.T) {
	f := newFixture(t)

	catalog := f.svc.Regulations("finance")
	require.Contains(t, catalog.Regulations, "SOX")

	fallback := f.svc.Regulations("circus")
	require.Equal(t, []string{"GDPR", "CCPA", "OSHA", "ADA"}, fallback.Regulations)
	require.Equal(t, "Common regulations for circus businesses", fallback.Description)
}

func TestUpsertFAQGeneratesMissingAnswer(t *testing.T) {
	f := newFixture(t)

	faq, err := f.svc.UpsertFAQ(context.Background(), f.business, f.user, domain.UpsertFAQRequest{
		Question: "What are your opening hours?",
		Category: "general",
	})
	require.NoError(t, err)
	require.Equal(t, "generated content", faq.Content["answer"])
	require.True(t, faq.IsPublic)
	require.Equal(t, 1, f.completer.calls)

	provided, err := f.svc.UpsertFAQ(context.Background(), f.business, f.user, domain.UpsertFAQRequest{
		Question: "Do you ship internationally?",
		Category: "shipping",
		Answer:   "Yes, worldwide.",
	})
	require.NoError(t, err)
	require.Equal(t, "Yes, worldwide.", provided.Content["answer"])
	require.Equal(t, 1, f.completer.calls)
}
