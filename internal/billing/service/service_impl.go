package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/advisorhub/internal/billing/domain"
	"github.com/smallbiznis/advisorhub/internal/billing/stripe"
	businessdomain "github.com/smallbiznis/advisorhub/internal/business/domain"
	"github.com/smallbiznis/advisorhub/internal/config"
	"github.com/smallbiznis/advisorhub/internal/mailer"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Cfg     config.Config
	Subs    subscriptiondomain.Repository
	BizRepo businessdomain.Repository
	Stripe  *stripe.Client
	Mailer  *mailer.Mailer
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	cfg     config.Config
	subs    subscriptiondomain.Repository
	bizRepo businessdomain.Repository
	stripe  *stripe.Client
	mailer  *mailer.Mailer
	now     func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("billing.service"),
		genID:   p.GenID,
		cfg:     p.Cfg,
		subs:    p.Subs,
		bizRepo: p.BizRepo,
		stripe:  p.Stripe,
		mailer:  p.Mailer,
		now:     time.Now,
	}
}

func (s *Service) Checkout(ctx context.Context, businessID snowflake.ID, email string, tier subscriptiondomain.Tier) (domain.CheckoutResult, error) {
	if !subscriptiondomain.PaidTier(tier) {
		return domain.CheckoutResult{}, subscriptiondomain.ErrInvalidTier
	}
	priceID := s.priceFor(tier)
	if priceID == "" {
		return domain.CheckoutResult{}, subscriptiondomain.ErrInvalidTier
	}

	sub, err := s.subs.FindByBusinessID(ctx, s.db, businessID)
	if err != nil {
		return domain.CheckoutResult{}, err
	}
	if sub == nil {
		return domain.CheckoutResult{}, subscriptiondomain.ErrNotFound
	}

	customerID, err := s.ensureCustomer(ctx, sub, email, businessID)
	if err != nil {
		return domain.CheckoutResult{}, err
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		Customer:   customerID,
		PriceID:    priceID,
		SuccessURL: s.cfg.FrontendURL + "/dashboard/billing?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.cfg.FrontendURL + "/dashboard/billing?canceled=true",
		Metadata: map[string]string{
			"business_id": businessID.String(),
			"tier":        string(tier),
		},
	})
	if err != nil {
		return domain.CheckoutResult{}, err
	}

	return domain.CheckoutResult{CheckoutURL: session.URL, SessionID: session.ID}, nil
}

func (s *Service) Portal(ctx context.Context, businessID snowflake.ID) (domain.PortalResult, error) {
	sub, err := s.subs.FindByBusinessID(ctx, s.db, businessID)
	if err != nil {
		return domain.PortalResult{}, err
	}
	if sub == nil || sub.StripeCustomerID == nil {
		return domain.PortalResult{}, domain.ErrNoBillingAccount
	}

	session, err := s.stripe.CreatePortalSession(ctx, *sub.StripeCustomerID, s.cfg.FrontendURL+"/dashboard/billing")
	if err != nil {
		return domain.PortalResult{}, err
	}
	return domain.PortalResult{PortalURL: session.URL}, nil
}

func (s *Service) Cancel(ctx context.Context, businessID snowflake.ID) (domain.CancelResult, error) {
	sub, err := s.subs.FindByBusinessID(ctx, s.db, businessID)
	if err != nil {
		return domain.CancelResult{}, err
	}
	if sub == nil || sub.StripeSubscriptionID == nil {
		return domain.CancelResult{}, domain.ErrNoActiveSubscription
	}

	remote, err := s.stripe.CancelAtPeriodEnd(ctx, *sub.StripeSubscriptionID)
	if err != nil {
		return domain.CancelResult{}, err
	}

	cancelAt := time.Unix(remote.CurrentPeriodEnd, 0).UTC()
	sub.CancelAt = &cancelAt
	sub.UpdatedAt = s.now().UTC()
	if err := s.subs.Update(ctx, s.db, sub); err != nil {
		return domain.CancelResult{}, err
	}

	return domain.CancelResult{
		Message:  "subscription will be canceled at the end of the billing period",
		CancelAt: cancelAt,
	}, nil
}

func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if err := stripe.VerifySignature(payload, signature, s.cfg.Stripe.WebhookSecret); err != nil {
		return err
	}
	event, err := stripe.ParseEvent(payload)
	if err != nil {
		return err
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		return s.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	case "invoice.paid":
		return s.handleInvoicePaid(ctx, event)
	case "invoice.payment_failed":
		return s.handlePaymentFailed(ctx, event)
	default:
		s.log.Debug("ignoring webhook event", zap.String("type", event.Type))
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSessionObject
	if err := decodeObject(event, &session); err != nil {
		return err
	}

	rawBusinessID := session.Metadata["business_id"]
	tier := subscriptiondomain.Tier(session.Metadata["tier"])
	if rawBusinessID == "" || !subscriptiondomain.PaidTier(tier) {
		s.log.Warn("checkout session missing metadata", zap.String("event_id", event.ID))
		return nil
	}
	businessID, err := snowflake.ParseString(rawBusinessID)
	if err != nil {
		s.log.Warn("checkout session has malformed business id", zap.String("event_id", event.ID))
		return nil
	}

	sub, err := s.subs.FindByBusinessID(ctx, s.db, businessID)
	if err != nil {
		return err
	}
	if sub == nil {
		s.log.Warn("no subscription for checkout session",
			zap.String("business_id", rawBusinessID),
			zap.String("event_id", event.ID),
		)
		return nil
	}

	remote, err := s.stripe.RetrieveSubscription(ctx, session.Subscription)
	if err != nil {
		return err
	}

	sub.Tier = tier
	sub.Status = subscriptiondomain.StatusActive
	sub.StripeSubscriptionID = &remote.ID
	if session.Customer != "" {
		customer := session.Customer
		sub.StripeCustomerID = &customer
	}
	sub.CurrentPeriodEnd = time.Unix(remote.CurrentPeriodEnd, 0).UTC()
	sub.UpdatedAt = s.now().UTC()
	if err := s.subs.Update(ctx, s.db, sub); err != nil {
		return err
	}

	if email := s.ownerEmail(ctx, businessID); email != "" {
		s.mailer.SendUpgradeConfirmation(ctx, email, string(tier), generationsLabel(tier))
	}
	return nil
}

func (s *Service) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var remote stripe.SubscriptionObject
	if err := decodeObject(event, &remote); err != nil {
		return err
	}

	sub, err := s.subs.FindByStripeSubscriptionID(ctx, s.db, remote.ID)
	if err != nil {
		return err
	}
	if sub == nil {
		s.log.Warn("no subscription for stripe id", zap.String("stripe_subscription_id", remote.ID))
		return nil
	}

	sub.Status = subscriptiondomain.Status(remote.Status)
	sub.CurrentPeriodEnd = time.Unix(remote.CurrentPeriodEnd, 0).UTC()
	if remote.CancelAt > 0 {
		cancelAt := time.Unix(remote.CancelAt, 0).UTC()
		sub.CancelAt = &cancelAt
	} else {
		sub.CancelAt = nil
	}
	sub.UpdatedAt = s.now().UTC()
	return s.subs.Update(ctx, s.db, sub)
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var remote stripe.SubscriptionObject
	if err := decodeObject(event, &remote); err != nil {
		return err
	}

	sub, err := s.subs.FindByStripeSubscriptionID(ctx, s.db, remote.ID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	sub.Tier = subscriptiondomain.TierFreeTrial
	sub.Status = subscriptiondomain.StatusCanceled
	sub.StripeSubscriptionID = nil
	sub.CancelAt = nil
	sub.UpdatedAt = s.now().UTC()
	return s.subs.Update(ctx, s.db, sub)
}

func (s *Service) handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	var invoice stripe.InvoiceObject
	if err := decodeObject(event, &invoice); err != nil {
		return err
	}

	sub, err := s.subs.FindByStripeCustomerID(ctx, s.db, invoice.Customer)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	now := s.now().UTC()
	record := subscriptiondomain.BillingInvoice{
		ID:              s.genID.Generate(),
		SubscriptionID:  sub.ID,
		StripeInvoiceID: invoice.ID,
		Amount:          decimal.New(invoice.AmountPaid, -2),
		Status:          "paid",
		PaidAt:          &now,
		CreatedAt:       now,
	}
	if invoice.DueDate > 0 {
		dueDate := time.Unix(invoice.DueDate, 0).UTC()
		record.DueDate = &dueDate
	}
	return s.subs.InsertInvoice(ctx, s.db, &record)
}

func (s *Service) handlePaymentFailed(ctx context.Context, event stripe.Event) error {
	var invoice stripe.InvoiceObject
	if err := decodeObject(event, &invoice); err != nil {
		return err
	}

	sub, err := s.subs.FindByStripeCustomerID(ctx, s.db, invoice.Customer)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	sub.Status = subscriptiondomain.StatusPastDue
	sub.UpdatedAt = s.now().UTC()
	if err := s.subs.Update(ctx, s.db, sub); err != nil {
		return err
	}

	if email := s.ownerEmail(ctx, sub.BusinessID); email != "" {
		s.mailer.SendPaymentFailed(ctx, email)
	}
	return nil
}

func (s *Service) ensureCustomer(ctx context.Context, sub *subscriptiondomain.Subscription, email string, businessID snowflake.ID) (string, error) {
	if sub.StripeCustomerID != nil && *sub.StripeCustomerID != "" {
		return *sub.StripeCustomerID, nil
	}

	customer, err := s.stripe.CreateCustomer(ctx, email, businessID.String())
	if err != nil {
		return "", err
	}
	sub.StripeCustomerID = &customer.ID
	sub.UpdatedAt = s.now().UTC()
	if err := s.subs.Update(ctx, s.db, sub); err != nil {
		return "", err
	}
	return customer.ID, nil
}

func (s *Service) ownerEmail(ctx context.Context, businessID snowflake.ID) string {
	business, err := s.bizRepo.FindByID(ctx, s.db, businessID)
	if err != nil || business == nil {
		return ""
	}
	owner, err := s.bizRepo.FindOwner(ctx, s.db, business.OwnerID)
	if err != nil || owner == nil {
		return ""
	}
	return owner.Email
}

func (s *Service) priceFor(tier subscriptiondomain.Tier) string {
	switch tier {
	case subscriptiondomain.TierSMBBasic:
		return s.cfg.Stripe.PriceSMBBasic
	case subscriptiondomain.TierSMBPro:
		return s.cfg.Stripe.PriceSMBPro
	case subscriptiondomain.TierAdvisorBasic:
		return s.cfg.Stripe.PriceAdvisorBasic
	case subscriptiondomain.TierAdvisorPro:
		return s.cfg.Stripe.PriceAdvisorPro
	}
	return ""
}

func generationsLabel(tier subscriptiondomain.Tier) string {
	limits, ok := subscriptiondomain.LimitsFor(tier)
	if !ok {
		return ""
	}
	if limits.GenerationsPerMonth == subscriptiondomain.Unlimited {
		return "Unlimited"
	}
	return strconv.Itoa(limits.GenerationsPerMonth)
}

func decodeObject(event stripe.Event, out any) error {
	if len(event.Data.Object) == 0 {
		return stripe.ErrInvalidPayload
	}
	if err := json.Unmarshal(event.Data.Object, out); err != nil {
		return stripe.ErrInvalidPayload
	}
	return nil
}
