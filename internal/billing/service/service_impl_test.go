package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	"github.com/smallbiznis/advisorhub/internal/billing/domain"
	"github.com/smallbiznis/advisorhub/internal/billing/stripe"
	businessdomain "github.com/smallbiznis/advisorhub/internal/business/domain"
	businessrepo "github.com/smallbiznis/advisorhub/internal/business/repository"
	"github.com/smallbiznis/advisorhub/internal/config"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	"github.com/smallbiznis/advisorhub/internal/mailer"
	"github.com/smallbiznis/advisorhub/internal/modules"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	subscriptionrepo "github.com/smallbiznis/advisorhub/internal/subscription/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const webhookSecret = "whsec_test"

var periodEnd = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

// stripeStub answers the handful of API calls the service makes.
func stripeStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/customers":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "cus_test", "email": "owner@example.test"})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "cs_test", "url": "https://checkout.stripe.test/cs_test"})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/billing_portal/sessions":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "bps_test", "url": "https://billing.stripe.test/bps_test"})
		case r.URL.Path == "/v1/subscriptions/sub_test":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":                   "sub_test",
				"customer":             "cus_test",
				"status":               "active",
				"current_period_end":   periodEnd.Unix(),
				"cancel_at_period_end": r.Method == http.MethodPost,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "no such resource"}})
		}
	}))
}

type fixture struct {
	svc      *Service
	db       *gorm.DB
	node     *snowflake.Node
	business snowflake.ID
	owner    snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&businessdomain.Business{},
		&subscriptiondomain.Subscription{},
		&subscriptiondomain.BillingInvoice{},
		&generationdomain.Generation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	server := stripeStub(t)
	t.Cleanup(server.Close)

	cfg := config.Config{
		FrontendURL: "http://localhost:3000",
		Stripe: config.StripeConfig{
			SecretKey:         "sk_test",
			WebhookSecret:     webhookSecret,
			BaseURL:           server.URL,
			PriceSMBBasic:     "price_smb_basic",
			PriceSMBPro:       "price_smb_pro",
			PriceAdvisorBasic: "price_advisor_basic",
			PriceAdvisorPro:   "price_advisor_pro",
		},
	}

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Cfg:     cfg,
		Subs:    subscriptionrepo.Provide(),
		BizRepo: businessrepo.Provide(),
		Stripe:  stripe.NewClient(cfg.Stripe),
		Mailer:  mailer.New(mailer.NoOpProvider{}, zap.NewNop(), cfg.FrontendURL),
	}).(*Service)

	f := &fixture{svc: svc, db: db, node: node}
	f.seed(t)
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	now := time.Now().UTC()

	f.owner = f.node.Generate()
	require.NoError(t, f.db.Create(&authdomain.User{
		ID:            f.owner,
		Email:         "owner@example.test",
		Password:      "hashed",
		FirstName:     "Olive",
		LastName:      "Owner",
		Role:          authdomain.RoleSMBOwner,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}).Error)

	f.business = f.node.Generate()
	require.NoError(t, businessrepo.Provide().Insert(context.Background(), f.db, &businessdomain.Business{
		ID:        f.business,
		OwnerID:   f.owner,
		Name:      "Corner Bakery",
		CreatedAt: now,
		UpdatedAt: now,
	}))

	require.NoError(t, subscriptionrepo.Provide().Insert(context.Background(), f.db, &subscriptiondomain.Subscription{
		ID:               f.node.Generate(),
		BusinessID:       f.business,
		Tier:             subscriptiondomain.TierFreeTrial,
		Status:           subscriptiondomain.StatusTrialing,
		CurrentPeriodEnd: now.Add(subscriptiondomain.TrialPeriod),
		CreatedAt:        now,
		UpdatedAt:        now,
	}))
}

func (f *fixture) subscription(t *testing.T) *subscriptiondomain.Subscription {
	t.Helper()
	sub, err := subscriptionrepo.Provide().FindByBusinessID(context.Background(), f.db, f.business)
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

func (f *fixture) linkStripe(t *testing.T) {
	t.Helper()
	sub := f.subscription(t)
	customerID := "cus_test"
	subscriptionID := "sub_test"
	sub.StripeCustomerID = &customerID
	sub.StripeSubscriptionID = &subscriptionID
	sub.Status = subscriptiondomain.StatusActive
	sub.Tier = subscriptiondomain.TierSMBPro
	require.NoError(t, subscriptionrepo.Provide().Update(context.Background(), f.db, sub))
}

func (f *fixture) webhook(t *testing.T, payload string) error {
	t.Helper()
	body := []byte(payload)
	header := fmt.Sprintf("t=1700000000,v1=%s", stripe.Sign(body, "1700000000", webhookSecret))
	return f.svc.HandleWebhook(context.Background(), body, header)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	err := f.svc.HandleWebhook(context.Background(), []byte(`{"id":"evt_1","type":"invoice.paid"}`), "t=1,v1=bogus")
	require.ErrorIs(t, err, stripe.ErrInvalidSignature)
}

func TestCheckoutCreatesCustomerAndSession(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Checkout(context.Background(), f.business, "owner@example.test", subscriptiondomain.TierSMBPro)
	require.NoError(t, err)
	require.Equal(t, "cs_test", result.SessionID)
	require.Equal(t, "https://checkout.stripe.test/cs_test", result.CheckoutURL)

	sub := f.subscription(t)
	require.NotNil(t, sub.StripeCustomerID)
	require.Equal(t, "cus_test", *sub.StripeCustomerID)
}

func TestCheckoutRejectsTrialTier(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Checkout(context.Background(), f.business, "owner@example.test", subscriptiondomain.TierFreeTrial)
	require.ErrorIs(t, err, subscriptiondomain.ErrInvalidTier)
}

func TestPortalRequiresBillingAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Portal(context.Background(), f.business)
	require.ErrorIs(t, err, domain.ErrNoBillingAccount)

	f.linkStripe(t)
	result, err := f.svc.Portal(context.Background(), f.business)
	require.NoError(t, err)
	require.Equal(t, "https://billing.stripe.test/bps_test", result.PortalURL)
}

func TestCancelAtPeriodEnd(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Cancel(context.Background(), f.business)
	require.ErrorIs(t, err, domain.ErrNoActiveSubscription)

	f.linkStripe(t)
	result, err := f.svc.Cancel(context.Background(), f.business)
	require.NoError(t, err)
	require.Equal(t, periodEnd, result.CancelAt)

	sub := f.subscription(t)
	require.NotNil(t, sub.CancelAt)
	require.Equal(t, periodEnd, sub.CancelAt.UTC())
}

func TestCheckoutCompletedActivatesTier(t *testing.T) {
	f := newFixture(t)

	// Existing generation history must survive the tier switch untouched.
	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&generationdomain.Generation{
		ID:         f.node.Generate(),
		BusinessID: f.business,
		ModuleType: modules.Marketing,
		Prompt:     "ad",
		Response:   "copy",
		CreatedBy:  f.owner,
		CreatedAt:  now,
	}).Error)

	payload := fmt.Sprintf(`{
		"id": "evt_checkout",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test",
			"customer": "cus_test",
			"subscription": "sub_test",
			"metadata": {"business_id": %q, "tier": "SMB_PRO"}
		}}
	}`, f.business.String())
	require.NoError(t, f.webhook(t, payload))

	sub := f.subscription(t)
	require.Equal(t, subscriptiondomain.TierSMBPro, sub.Tier)
	require.Equal(t, subscriptiondomain.StatusActive, sub.Status)
	require.NotNil(t, sub.StripeSubscriptionID)
	require.Equal(t, "sub_test", *sub.StripeSubscriptionID)
	require.Equal(t, periodEnd, sub.CurrentPeriodEnd.UTC())

	var generations int64
	require.NoError(t, f.db.Model(&generationdomain.Generation{}).Count(&generations).Error)
	require.EqualValues(t, 1, generations)
}

func TestCheckoutCompletedMissingMetadataIsNoOp(t *testing.T) {
	f := newFixture(t)

	payload := `{
		"id": "evt_checkout",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_test", "subscription": "sub_test", "metadata": {}}}
	}`
	require.NoError(t, f.webhook(t, payload))

	sub := f.subscription(t)
	require.Equal(t, subscriptiondomain.TierFreeTrial, sub.Tier)
}

func TestSubscriptionUpdatedMirrorsState(t *testing.T) {
	f := newFixture(t)
	f.linkStripe(t)

	cancelAt := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	payload := fmt.Sprintf(`{
		"id": "evt_update",
		"type": "customer.subscription.updated",
		"data": {"object": {
			"id": "sub_test",
			"customer": "cus_test",
			"status": "past_due",
			"current_period_end": %d,
			"cancel_at": %d
		}}
	}`, periodEnd.Unix(), cancelAt.Unix())
	require.NoError(t, f.webhook(t, payload))

	sub := f.subscription(t)
	require.Equal(t, subscriptiondomain.StatusPastDue, sub.Status)
	require.Equal(t, periodEnd, sub.CurrentPeriodEnd.UTC())
	require.NotNil(t, sub.CancelAt)
	require.Equal(t, cancelAt, sub.CancelAt.UTC())
}

func TestSubscriptionDeletedDowngrades(t *testing.T) {
	f := newFixture(t)
	f.linkStripe(t)

	payload := `{
		"id": "evt_delete",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_test", "customer": "cus_test", "status": "canceled"}}
	}`
	require.NoError(t, f.webhook(t, payload))

	sub := f.subscription(t)
	require.Equal(t, subscriptiondomain.TierFreeTrial, sub.Tier)
	require.Equal(t, subscriptiondomain.StatusCanceled, sub.Status)
	require.Nil(t, sub.StripeSubscriptionID)
}

func TestInvoicePaidAppendsRecord(t *testing.T) {
	f := newFixture(t)
	f.linkStripe(t)

	payload := `{
		"id": "evt_invoice",
		"type": "invoice.paid",
		"data": {"object": {"id": "in_test", "customer": "cus_test", "amount_paid": 19900}}
	}`
	require.NoError(t, f.webhook(t, payload))

	sub := f.subscription(t)
	invoices, err := subscriptionrepo.Provide().ListInvoices(context.Background(), f.db, sub.ID, 10)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.Equal(t, "in_test", invoices[0].StripeInvoiceID)
	require.Equal(t, "199", invoices[0].Amount.String())
	require.Equal(t, "paid", invoices[0].Status)
	require.NotNil(t, invoices[0].PaidAt)
}

func TestPaymentFailedMarksPastDue(t *testing.T) {
	f := newFixture(t)
	f.linkStripe(t)

	payload := `{
		"id": "evt_failed",
		"type": "invoice.payment_failed",
		"data": {"object": {"id": "in_test", "customer": "cus_test", "amount_due": 19900}}
	}`
	require.NoError(t, f.webhook(t, payload))

	sub := f.subscription(t)
	require.Equal(t, subscriptiondomain.StatusPastDue, sub.Status)
}

func TestUncorrelatedEventIsNoOp(t *testing.T) {
	f := newFixture(t)

	payload := `{
		"id": "evt_stray",
		"type": "customer.subscription.updated",
		"data": {"object": {"id": "sub_unknown", "customer": "cus_unknown", "status": "active"}}
	}`
	require.NoError(t, f.webhook(t, payload))

	sub := f.subscription(t)
	require.Equal(t, subscriptiondomain.StatusTrialing, sub.Status)
}

func TestUnhandledEventTypeIgnored(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.webhook(t, `{"id":"evt_x","type":"charge.refunded","data":{"object":{}}}`))
}
