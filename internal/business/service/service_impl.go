package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	"github.com/smallbiznis/advisorhub/internal/business/domain"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	"github.com/smallbiznis/advisorhub/internal/modules"
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
	Repo    domain.Repository
	Subs    subscriptiondomain.Repository
	GenRepo generationdomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	subs    subscriptiondomain.Repository
	genRepo generationdomain.Repository
	now     func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("business.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		subs:    p.Subs,
		genRepo: p.GenRepo,
		now:     time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID snowflake.ID, role authdomain.Role) ([]domain.Business, error) {
	var (
		businesses []domain.Business
		err        error
	)
	switch role {
	case authdomain.RoleSMBOwner:
		businesses, err = s.repo.ListByOwner(ctx, s.db, userID)
	case authdomain.RoleAdvisor:
		profile, perr := s.repo.FindAdvisorProfileByUser(ctx, s.db, userID)
		if perr != nil {
			return nil, perr
		}
		if profile == nil {
			return nil, domain.ErrAdvisorNotFound
		}
		businesses, err = s.repo.ListByAdvisor(ctx, s.db, profile.ID)
	case authdomain.RoleAdmin:
		businesses, err = s.repo.ListAll(ctx, s.db)
	default:
		return nil, domain.ErrAccessDenied
	}
	if err != nil {
		return nil, err
	}
	if businesses == nil {
		businesses = []domain.Business{}
	}
	return businesses, nil
}

func (s *Service) Get(ctx context.Context, businessID, userID snowflake.ID, role authdomain.Role) (domain.BusinessDetail, error) {
	business, err := s.repo.FindByID(ctx, s.db, businessID)
	if err != nil {
		return domain.BusinessDetail{}, err
	}
	if business == nil {
		return domain.BusinessDetail{}, domain.ErrNotFound
	}
	if err := s.checkAccess(ctx, business, userID, role); err != nil {
		return domain.BusinessDetail{}, err
	}

	detail := domain.BusinessDetail{Business: *business}

	sub, err := s.subs.FindByBusinessID(ctx, s.db, businessID)
	if err != nil {
		return domain.BusinessDetail{}, err
	}
	detail.Subscription = sub

	usages, err := s.genRepo.ListModuleUsage(ctx, s.db, businessID)
	if err != nil {
		return domain.BusinessDetail{}, err
	}
	if usages == nil {
		usages = []generationdomain.ModuleUsage{}
	}
	detail.Modules = usages

	if role != authdomain.RoleSMBOwner {
		owner, err := s.repo.FindOwner(ctx, s.db, business.OwnerID)
		if err != nil {
			return domain.BusinessDetail{}, err
		}
		detail.Owner = owner
	}

	return detail, nil
}

func (s *Service) Create(ctx context.Context, userID snowflake.ID, role authdomain.Role, req domain.CreateBusinessRequest) (domain.Business, error) {
	if role != authdomain.RoleSMBOwner {
		return domain.Business{}, domain.ErrOwnersOnly
	}

	existing, err := s.repo.CountByOwner(ctx, s.db, userID)
	if err != nil {
		return domain.Business{}, err
	}
	if existing > 0 {
		return domain.Business{}, domain.ErrAlreadyExists
	}

	var business domain.Business
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.provision(ctx, tx, userID, req)
		if err != nil {
			return err
		}
		business = created
		return nil
	})
	if err != nil {
		return domain.Business{}, err
	}
	return business, nil
}

func (s *Service) Update(ctx context.Context, businessID, userID snowflake.ID, role authdomain.Role, req domain.UpdateBusinessRequest) (domain.Business, error) {
	business, err := s.repo.FindByID(ctx, s.db, businessID)
	if err != nil {
		return domain.Business{}, err
	}
	if business == nil {
		return domain.Business{}, domain.ErrNotFound
	}
	if err := s.checkAccess(ctx, business, userID, role); err != nil {
		return domain.Business{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != "" {
			business.Name = name
		}
	}
	if req.Industry != nil {
		business.Industry = strings.TrimSpace(*req.Industry)
	}
	if req.Website != nil {
		business.Website = strings.TrimSpace(*req.Website)
	}
	if req.Address != nil {
		business.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		business.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.AdvisorID != nil {
		raw := strings.TrimSpace(*req.AdvisorID)
		if raw == "" {
			business.AdvisorID = nil
		} else {
			advisorID, err := snowflake.ParseString(raw)
			if err != nil {
				return domain.Business{}, domain.ErrAdvisorNotFound
			}
			profile, err := s.repo.FindAdvisorProfileByID(ctx, s.db, advisorID)
			if err != nil {
				return domain.Business{}, err
			}
			if profile == nil {
				return domain.Business{}, domain.ErrAdvisorNotFound
			}
			business.AdvisorID = &profile.ID
		}
	}

	business.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, s.db, business); err != nil {
		return domain.Business{}, err
	}
	return *business, nil
}

func (s *Service) Delete(ctx context.Context, businessID, userID snowflake.ID, role authdomain.Role) error {
	business, err := s.repo.FindByID(ctx, s.db, businessID)
	if err != nil {
		return err
	}
	if business == nil {
		return domain.ErrNotFound
	}
	if business.OwnerID != userID && role != authdomain.RoleAdmin {
		return domain.ErrAccessDenied
	}

	s.log.Info("deleting business and dependents",
		zap.String("business_id", businessID.String()),
	)
	return s.repo.DeleteCascade(ctx, s.db, businessID)
}

func (s *Service) Stats(ctx context.Context, businessID, userID snowflake.ID, role authdomain.Role) (domain.Stats, error) {
	business, err := s.repo.FindByID(ctx, s.db, businessID)
	if err != nil {
		return domain.Stats{}, err
	}
	if business == nil {
		return domain.Stats{}, domain.ErrNotFound
	}
	if err := s.checkAccess(ctx, business, userID, role); err != nil {
		return domain.Stats{}, err
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.repo.Stats(ctx, s.db, businessID, monthStart)
}

func (s *Service) CheckAccess(ctx context.Context, businessID, userID snowflake.ID, role authdomain.Role) error {
	business, err := s.repo.FindByID(ctx, s.db, businessID)
	if err != nil {
		return err
	}
	if business == nil {
		return domain.ErrNotFound
	}
	return s.checkAccess(ctx, business, userID, role)
}

func (s *Service) ProvisionOwner(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, name string) (domain.Business, error) {
	return s.provision(ctx, tx, ownerID, domain.CreateBusinessRequest{Name: name})
}

// provision creates the business, its trial subscription, and one
// enabled module usage row per AI module.
func (s *Service) provision(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, req domain.CreateBusinessRequest) (domain.Business, error) {
	now := s.now().UTC()
	business := domain.Business{
		ID:        s.genID.Generate(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(req.Name),
		Industry:  strings.TrimSpace(req.Industry),
		Website:   strings.TrimSpace(req.Website),
		Address:   strings.TrimSpace(req.Address),
		Phone:     strings.TrimSpace(req.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, tx, &business); err != nil {
		return domain.Business{}, err
	}

	sub := subscriptiondomain.Subscription{
		ID:               s.genID.Generate(),
		BusinessID:       business.ID,
		Tier:             subscriptiondomain.TierFreeTrial,
		Status:           subscriptiondomain.StatusTrialing,
		CurrentPeriodEnd: now.Add(subscriptiondomain.TrialPeriod),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.subs.Insert(ctx, tx, &sub); err != nil {
		return domain.Business{}, err
	}

	for _, moduleType := range modules.All() {
		usage := generationdomain.ModuleUsage{
			ID:         s.genID.Generate(),
			BusinessID: business.ID,
			ModuleType: moduleType,
			Enabled:    true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.WithContext(ctx).Create(&usage).Error; err != nil {
			return domain.Business{}, err
		}
	}

	return business, nil
}

func (s *Service) checkAccess(ctx context.Context, business *domain.Business, userID snowflake.ID, role authdomain.Role) error {
	if role == authdomain.RoleAdmin {
		return nil
	}
	if business.OwnerID == userID {
		return nil
	}
	if role == authdomain.RoleAdvisor && business.AdvisorID != nil {
		profile, err := s.repo.FindAdvisorProfileByUser(ctx, s.db, userID)
		if err != nil {
			return err
		}
		if profile != nil && profile.ID == *business.AdvisorID {
			return nil
		}
	}
	return domain.ErrAccessDenied
}
