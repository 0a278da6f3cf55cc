package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	now   func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		repo:  p.Repo,
		now:   time.Now,
	}
}

func (s *Service) GetByBusiness(ctx context.Context, businessID snowflake.ID) (domain.CurrentSubscription, error) {
	sub, err := s.repo.FindByBusinessID(ctx, s.db, businessID)
	if err != nil {
		return domain.CurrentSubscription{}, err
	}
	if sub == nil {
		return domain.CurrentSubscription{}, domain.ErrNotFound
	}

	limits, ok := domain.LimitsFor(sub.Tier)
	if !ok {
		return domain.CurrentSubscription{}, domain.ErrInvalidTier
	}

	used, err := s.repo.CountGenerationsSince(ctx, s.db, businessID, monthStart(s.now().UTC()))
	if err != nil {
		return domain.CurrentSubscription{}, err
	}

	usage := domain.Usage{
		Generations:      used,
		GenerationsLimit: limits.GenerationsPerMonth,
	}
	if limits.GenerationsPerMonth > 0 {
		usage.GenerationsPercentage = float64(used) / float64(limits.GenerationsPerMonth) * 100
	}

	invoices, err := s.repo.ListInvoices(ctx, s.db, sub.ID, 12)
	if err != nil {
		return domain.CurrentSubscription{}, err
	}
	if invoices == nil {
		invoices = []domain.BillingInvoice{}
	}

	return domain.CurrentSubscription{
		Subscription: *sub,
		Usage:        usage,
		Limits:       limits,
		Invoices:     invoices,
	}, nil
}

func (s *Service) Plans(ctx context.Context) []domain.Plan {
	return domain.Plans()
}

// monthStart returns midnight UTC on the first day of t's month. Usage
// windows are calendar months, not rolling windows.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
