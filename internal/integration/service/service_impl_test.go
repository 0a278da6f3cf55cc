package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/advisorhub/internal/config"
	"github.com/smallbiznis/advisorhub/internal/integration/domain"
	"github.com/smallbiznis/advisorhub/internal/integration/repository"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	subscriptionrepo "github.com/smallbiznis/advisorhub/internal/subscription/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	business snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Integration{},
		&subscriptiondomain.Subscription{},
		&subscriptiondomain.BillingInvoice{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Subs:  subscriptionrepo.Provide(),
		Config: config.Config{
			FrontendURL:       "http://localhost:3000",
			IntegrationSecret: "test-secret",
			OAuth: config.OAuthConfig{
				GoogleClientID:     "google-client",
				MicrosoftClientID:  "ms-client",
				QuickBooksClientID: "qb-client",
			},
		},
	})

	return &fixture{svc: svc, db: db, node: node, business: node.Generate()}
}

func (f *fixture) seedSubscription(t *testing.T, tier subscriptiondomain.Tier) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, subscriptionrepo.Provide().Insert(context.Background(), f.db, &subscriptiondomain.Subscription{
		ID:               f.node.Generate(),
		BusinessID:       f.business,
		Tier:             tier,
		Status:           subscriptiondomain.StatusTrialing,
		CurrentPeriodEnd: now.Add(14 * 24 * time.Hour),
		CreatedAt:        now,
		UpdatedAt:        now,
	}))
}

func TestConnectMasksCredentials(t *testing.T) {
	f := newFixture(t)
	f.seedSubscription(t, subscriptiondomain.TierFreeTrial)

	v, err := f.svc.Connect(context.Background(), f.business, domain.ConnectRequest{
		Type:        domain.KindGmail,
		Credentials: map[string]any{"access_token": "super-secret"},
	})
	require.NoError(t, err)
	require.True(t, v.Connected)

	var stored domain.Integration
	require.NoError(t, f.db.First(&stored, "business_id = ?", f.business).Error)
	require.NotContains(t, stored.Credentials, "super-secret")

	views, err := f.svc.List(context.Background(), f.business)
	require.NoError(t, err)
	require.Len(t, views, 1)
}

func TestConnectDuplicate(t *testing.T) {
	f := newFixture(t)
	f.seedSubscription(t, subscriptiondomain.TierFreeTrial)

	_, err := f.svc.Connect(context.Background(), f.business, domain.ConnectRequest{
		Type:        domain.KindGmail,
		Credentials: map[string]any{"access_token": "a"},
	})
	require.NoError(t, err)

	_, err = f.svc.Connect(context.Background(), f.business, domain.ConnectRequest{
		Type:        domain.KindGmail,
		Credentials: map[string]any{"access_token": "b"},
	})
	require.ErrorIs(t, err, domain.ErrAlreadyConnected)
}

func TestConnectTierAllowance(t *testing.T) {
	f := newFixture(t)
	// Free trial allows two integrations.
	f.seedSubscription(t, subscriptiondomain.TierFreeTrial)

	for _, kind := range []domain.Kind{domain.KindGmail, domain.KindOutlook} {
		_, err := f.svc.Connect(context.Background(), f.business, domain.ConnectRequest{
			Type:        kind,
			Credentials: map[string]any{"access_token": "x"},
		})
		require.NoError(t, err)
	}

	_, err := f.svc.Connect(context.Background(), f.business, domain.ConnectRequest{
		Type:        domain.KindQuickBooks,
		Credentials: map[string]any{"access_token": "x"},
	})
	require.ErrorIs(t, err, domain.ErrLimitReached)
}

func TestSyncUpdatesLastSync(t *testing.T) {
	f := newFixture(t)
	f.seedSubscription(t, subscriptiondomain.TierFreeTrial)

	_, err := f.svc.Connect(context.Background(), f.business, domain.ConnectRequest{
		Type:        domain.KindQuickBooks,
		Credentials: map[string]any{"access_token": "x"},
	})
	require.NoError(t, err)

	result, err := f.svc.Sync(context.Background(), f.business, domain.KindQuickBooks)
	require.NoError(t, err)
	require.Contains(t, result, "invoices_synced")

	var stored domain.Integration
	require.NoError(t, f.db.First(&stored, "business_id = ?", f.business).Error)
	require.NotNil(t, stored.LastSyncAt)
}

func TestSyncMissingIntegration(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Sync(context.Background(), f.business, domain.KindGmail)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOAuthURLAndCallback(t *testing.T) {
	f := newFixture(t)
	f.seedSubscription(t, subscriptiondomain.TierFreeTrial)

	u, err := f.svc.OAuthURL(context.Background(), f.business, domain.KindGmail)
	require.NoError(t, err)
	require.Contains(t, u, "accounts.google.com")
	require.Contains(t, u, "google-client")
	require.Contains(t, u, "gmail.readonly")

	state := base64.StdEncoding.EncodeToString([]byte(
		fmt.Sprintf(`{"type":"gmail","business_id":"%s"}`, f.business.String()),
	))
	v, err := f.svc.HandleCallback(context.Background(), "auth-code", state)
	require.NoError(t, err)
	require.Equal(t, domain.KindGmail, v.Type)

	views, err := f.svc.List(context.Background(), f.business)
	require.NoError(t, err)
	require.Len(t, views, 1)
}

func TestHandleCallbackBadState(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.HandleCallback(context.Background(), "code", "!!! not base64")
	require.ErrorIs(t, err, domain.ErrInvalidState)
}
