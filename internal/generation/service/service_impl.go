package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/advisorhub/internal/cache"
	"github.com/smallbiznis/advisorhub/internal/generation/domain"
	"github.com/smallbiznis/advisorhub/internal/modules"
	"github.com/smallbiznis/advisorhub/internal/providers/llm"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const cacheTTL = time.Hour

// costPerThousandTokens is the provider price used for audit records.
var costPerThousandTokens = decimal.NewFromFloat(0.01)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Subs      subscriptiondomain.Repository
	Cache     cache.Store
	Completer llm.Completer
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	subs      subscriptiondomain.Repository
	cache     cache.Store
	completer llm.Completer
	now       func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("generation.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		subs:      p.Subs,
		cache:     p.Cache,
		completer: p.Completer,
		now:       time.Now,
	}
}

func (s *Service) Generate(ctx context.Context, businessID, userID snowflake.ID, req domain.GenerateRequest) (domain.GenerateResponse, error) {
	if !modules.Valid(req.ModuleType) {
		return domain.GenerateResponse{}, domain.ErrInvalidModule
	}

	if err := s.checkQuota(ctx, businessID); err != nil {
		return domain.GenerateResponse{}, err
	}

	usage, err := s.repo.FindModuleUsage(ctx, s.db, businessID, req.ModuleType)
	if err != nil {
		return domain.GenerateResponse{}, err
	}
	if usage == nil || !usage.Enabled {
		return domain.GenerateResponse{}, domain.ErrModuleNotEnabled
	}

	key, err := cacheKey(req)
	if err != nil {
		return domain.GenerateResponse{}, err
	}
	if cached, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		var resp domain.GenerateResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			s.log.Info("returning cached generation",
				zap.String("business_id", businessID.String()),
				zap.String("module_type", string(req.ModuleType)),
			)
			resp.Cached = true
			return resp, nil
		}
	}

	requestType, _ := req.Context["type"].(string)
	tmpl, ok := domain.TemplateFor(req.ModuleType, requestType)
	if !ok {
		return domain.GenerateResponse{}, domain.ErrInvalidRequestType
	}

	completion, err := s.completer.Complete(ctx, tmpl.System, tmpl.Render(req.Context))
	if err != nil {
		return domain.GenerateResponse{}, err
	}

	metadata := datatypes.JSON("{}")
	if req.Context != nil {
		raw, err := json.Marshal(req.Context)
		if err != nil {
			return domain.GenerateResponse{}, err
		}
		metadata = datatypes.JSON(raw)
	}

	gen := domain.Generation{
		ID:         s.genID.Generate(),
		BusinessID: businessID,
		ModuleType: req.ModuleType,
		Prompt:     req.Prompt,
		Response:   completion.Content,
		Metadata:   metadata,
		Tokens:     completion.Tokens,
		Cost:       cost(completion.Tokens),
		CreatedBy:  userID,
		CreatedAt:  s.now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &gen); err != nil {
			return err
		}
		return s.repo.BumpModuleUsage(ctx, tx, businessID, req.ModuleType)
	})
	if err != nil {
		return domain.GenerateResponse{}, err
	}

	resp := domain.GenerateResponse{
		ID:       gen.ID,
		Content:  gen.Response,
		Metadata: gen.Metadata,
		Tokens:   gen.Tokens,
	}
	if raw, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), cacheTTL); err != nil {
			s.log.Warn("failed to cache generation", zap.Error(err))
		}
	}

	return resp, nil
}

func (s *Service) History(ctx context.Context, businessID snowflake.ID, moduleType modules.Type, limit int) ([]domain.Generation, error) {
	if moduleType != "" && !modules.Valid(moduleType) {
		return nil, domain.ErrInvalidModule
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	gens, err := s.repo.List(ctx, s.db, businessID, moduleType, limit)
	if err != nil {
		return nil, err
	}
	if gens == nil {
		gens = []domain.Generation{}
	}
	return gens, nil
}

func (s *Service) ListModuleUsage(ctx context.Context, businessID snowflake.ID) ([]domain.ModuleUsage, error) {
	usages, err := s.repo.ListModuleUsage(ctx, s.db, businessID)
	if err != nil {
		return nil, err
	}
	if usages == nil {
		usages = []domain.ModuleUsage{}
	}
	return usages, nil
}

func (s *Service) SetModuleEnabled(ctx context.Context, businessID snowflake.ID, moduleType modules.Type, enabled bool) (*domain.ModuleUsage, error) {
	if !modules.Valid(moduleType) {
		return nil, domain.ErrInvalidModule
	}
	usage, err := s.repo.FindModuleUsage(ctx, s.db, businessID, moduleType)
	if err != nil {
		return nil, err
	}
	if usage == nil {
		return nil, domain.ErrModuleNotEnabled
	}
	usage.Enabled = enabled
	usage.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateModuleUsage(ctx, s.db, usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// checkQuota enforces the subscription's monthly generation cap. Usage
// is counted from audit rows since the first of the month, UTC. Status
// is deliberately ignored: a deleted payment subscription downgrades
// the record to the trial tier with status canceled, and that business
// keeps generating within the trial quota.
func (s *Service) checkQuota(ctx context.Context, businessID snowflake.ID) error {
	sub, err := s.subs.FindByBusinessID(ctx, s.db, businessID)
	if err != nil {
		return err
	}
	if sub == nil {
		return domain.ErrNoSubscription
	}

	limits, ok := subscriptiondomain.LimitsFor(sub.Tier)
	if !ok {
		return subscriptiondomain.ErrInvalidTier
	}
	if limits.GenerationsPerMonth == subscriptiondomain.Unlimited {
		return nil
	}

	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	used, err := s.subs.CountGenerationsSince(ctx, s.db, businessID, since)
	if err != nil {
		return err
	}
	if used >= int64(limits.GenerationsPerMonth) {
		return domain.ErrLimitReached
	}
	return nil
}

// cacheKey hashes module, prompt and the canonical JSON encoding of
// the context. Map keys marshal in sorted order, so equal contexts
// hash equally regardless of field order.
func cacheKey(req domain.GenerateRequest) (string, error) {
	ctxJSON, err := json.Marshal(req.Context)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(req.ModuleType))
	h.Write([]byte{'|'})
	h.Write([]byte(req.Prompt))
	h.Write([]byte{'|'})
	h.Write(ctxJSON)
	return "ai:" + hex.EncodeToString(h.Sum(nil)), nil
}

func cost(tokens int) decimal.Decimal {
	return decimal.NewFromInt(int64(tokens)).
		Div(decimal.NewFromInt(1000)).
		Mul(costPerThousandTokens)
}
