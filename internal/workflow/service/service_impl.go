package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	"github.com/smallbiznis/advisorhub/internal/modules"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	"github.com/smallbiznis/advisorhub/internal/workflow/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Gen   generationdomain.Service
	Subs  subscriptiondomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	gen   generationdomain.Service
	subs  subscriptiondomain.Repository
	now   func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("workflow.service"),
		genID: p.GenID,
		repo:  p.Repo,
		gen:   p.Gen,
		subs:  p.Subs,
		now:   time.Now,
	}
}

// saveArtifact persists a module artifact after enforcing the tier's
// template allowance.
func (s *Service) saveArtifact(ctx context.Context, businessID, userID snowflake.ID, moduleType modules.Type, category, name string, content datatypes.JSONMap, isPublic bool) (domain.Artifact, error) {
	if err := s.checkTemplateAllowance(ctx, businessID); err != nil {
		return domain.Artifact{}, err
	}

	now := s.now().UTC()
	artifact := domain.Artifact{
		ID:         s.genID.Generate(),
		BusinessID: businessID,
		ModuleType: moduleType,
		Category:   category,
		Name:       name,
		Content:    content,
		IsPublic:   isPublic,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, &artifact); err != nil {
		return domain.Artifact{}, err
	}
	return artifact, nil
}

func (s *Service) checkTemplateAllowance(ctx context.Context, businessID snowflake.ID) error {
	sub, err := s.subs.FindByBusinessID(ctx, s.db, businessID)
	if err != nil {
		return err
	}
	if sub == nil {
		return domain.ErrTemplateLimit
	}
	limits, ok := subscriptiondomain.LimitsFor(sub.Tier)
	if !ok {
		return subscriptiondomain.ErrInvalidTier
	}
	if limits.TemplatesAllowed == subscriptiondomain.Unlimited {
		return nil
	}
	count, err := s.repo.CountAll(ctx, s.db, businessID)
	if err != nil {
		return err
	}
	if count >= int64(limits.TemplatesAllowed) {
		return domain.ErrTemplateLimit
	}
	return nil
}

// mergeContent applies updates over an artifact's content blob without
// dropping unrelated keys.
func mergeContent(content datatypes.JSONMap, updates map[string]any) datatypes.JSONMap {
	if content == nil {
		content = datatypes.JSONMap{}
	}
	for key, value := range updates {
		content[key] = value
	}
	return content
}

func (s *Service) monthStart() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
