package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"net/url"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/advisorhub/internal/config"
	"github.com/smallbiznis/advisorhub/internal/integration/crypto"
	"github.com/smallbiznis/advisorhub/internal/integration/domain"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type oauthState struct {
	Type       domain.Kind `json:"type"`
	BusinessID string      `json:"business_id"`
	Nonce      string      `json:"nonce"`
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Subs   subscriptiondomain.Repository
	Config config.Config
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	subs  subscriptiondomain.Repository
	cfg   config.Config
	box   *crypto.Box
	now   func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("integration.service"),
		genID: p.GenID,
		repo:  p.Repo,
		subs:  p.Subs,
		cfg:   p.Config,
		box:   crypto.New(p.Config.IntegrationSecret),
		now:   time.Now,
	}
}

func (s *Service) List(ctx context.Context, businessID snowflake.ID) ([]domain.IntegrationView, error) {
	integrations, err := s.repo.ListByBusiness(ctx, s.db, businessID)
	if err != nil {
		return nil, err
	}
	views := make([]domain.IntegrationView, 0, len(integrations))
	for i := range integrations {
		views = append(views, view(&integrations[i]))
	}
	return views, nil
}

func (s *Service) Connect(ctx context.Context, businessID snowflake.ID, req domain.ConnectRequest) (domain.IntegrationView, error) {
	if !domain.ValidKind(req.Type) {
		return domain.IntegrationView{}, domain.ErrUnknownKind
	}

	existing, err := s.repo.FindByBusinessAndType(ctx, s.db, businessID, req.Type)
	if err != nil {
		return domain.IntegrationView{}, err
	}
	if existing != nil {
		return domain.IntegrationView{}, domain.ErrAlreadyConnected
	}

	if err := s.checkAllowance(ctx, businessID); err != nil {
		return domain.IntegrationView{}, err
	}

	raw, err := json.Marshal(req.Credentials)
	if err != nil {
		return domain.IntegrationView{}, err
	}
	sealed, err := s.box.Seal(raw)
	if err != nil {
		return domain.IntegrationView{}, err
	}

	settings := req.Settings
	if settings == nil {
		settings = datatypes.JSONMap{}
	}

	now := s.now().UTC()
	integration := domain.Integration{
		ID:          s.genID.Generate(),
		BusinessID:  businessID,
		Type:        req.Type,
		Credentials: sealed,
		Settings:    settings,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &integration); err != nil {
		return domain.IntegrationView{}, err
	}

	s.log.Info("integration connected",
		zap.String("business_id", businessID.String()),
		zap.String("type", string(req.Type)),
	)
	return view(&integration), nil
}

func (s *Service) Disconnect(ctx context.Context, businessID snowflake.ID, kind domain.Kind) error {
	integration, err := s.repo.FindByBusinessAndType(ctx, s.db, businessID, kind)
	if err != nil {
		return err
	}
	if integration == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, integration.ID)
}

func (s *Service) Sync(ctx context.Context, businessID snowflake.ID, kind domain.Kind) (domain.SyncResult, error) {
	integration, err := s.repo.FindByBusinessAndType(ctx, s.db, businessID, kind)
	if err != nil {
		return nil, err
	}
	if integration == nil {
		return nil, domain.ErrNotFound
	}
	if !integration.Enabled {
		return nil, domain.ErrDisabled
	}

	// Credentials must still open; a failed open means the secret
	// rotated or the row was tampered with.
	if _, err := s.box.Open(integration.Credentials); err != nil {
		return nil, err
	}

	var result domain.SyncResult
	switch integration.Type {
	case domain.KindGmail, domain.KindOutlook:
		result = domain.SyncResult{
			"emails_synced":   rand.Intn(100),
			"last_email_date": s.now().UTC(),
		}
	case domain.KindGoogleCalendar:
		result = domain.SyncResult{
			"events_synced":   rand.Intn(50),
			"upcoming_events": rand.Intn(10),
		}
	case domain.KindQuickBooks:
		result = domain.SyncResult{
			"invoices_synced":     rand.Intn(30),
			"total_revenue":       rand.Intn(100000),
			"outstanding_balance": rand.Intn(10000),
		}
	default:
		return nil, domain.ErrUnknownKind
	}

	now := s.now().UTC()
	integration.LastSyncAt = &now
	integration.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, integration); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) OAuthURL(ctx context.Context, businessID snowflake.ID, kind domain.Kind) (string, error) {
	if !domain.ValidKind(kind) {
		return "", domain.ErrUnknownKind
	}

	stateJSON, err := json.Marshal(oauthState{Type: kind, BusinessID: businessID.String(), Nonce: uuid.NewString()})
	if err != nil {
		return "", err
	}
	state := base64.StdEncoding.EncodeToString(stateJSON)
	redirectURI := s.cfg.FrontendURL + "/integrations/callback"

	values := url.Values{}
	values.Set("redirect_uri", redirectURI)
	values.Set("response_type", "code")
	values.Set("state", state)

	switch kind {
	case domain.KindGmail, domain.KindGoogleCalendar:
		values.Set("client_id", s.cfg.OAuth.GoogleClientID)
		if kind == domain.KindGmail {
			values.Set("scope", "https://www.googleapis.com/auth/gmail.readonly")
		} else {
			values.Set("scope", "https://www.googleapis.com/auth/calendar")
		}
		values.Set("access_type", "offline")
		values.Set("prompt", "consent")
		return "https://accounts.google.com/o/oauth2/v2/auth?" + values.Encode(), nil
	case domain.KindOutlook:
		values.Set("client_id", s.cfg.OAuth.MicrosoftClientID)
		values.Set("scope", "Mail.Read Calendars.Read offline_access")
		return "https://login.microsoftonline.com/common/oauth2/v2.0/authorize?" + values.Encode(), nil
	case domain.KindQuickBooks:
		values.Set("client_id", s.cfg.OAuth.QuickBooksClientID)
		values.Set("scope", "com.intuit.quickbooks.accounting")
		return "https://appcenter.intuit.com/connect/oauth2?" + values.Encode(), nil
	}
	return "", domain.ErrUnknownKind
}

func (s *Service) HandleCallback(ctx context.Context, code, state string) (domain.IntegrationView, error) {
	raw, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return domain.IntegrationView{}, domain.ErrInvalidState
	}
	var parsed oauthState
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.IntegrationView{}, domain.ErrInvalidState
	}
	businessID, err := snowflake.ParseString(parsed.BusinessID)
	if err != nil {
		return domain.IntegrationView{}, domain.ErrInvalidState
	}

	tokens := s.exchangeCode(parsed.Type, code)
	return s.Connect(ctx, businessID, domain.ConnectRequest{
		Type:        parsed.Type,
		Credentials: tokens,
	})
}

// exchangeCode stands in for the provider token endpoints. Real token
// exchange needs registered OAuth apps per provider.
func (s *Service) exchangeCode(kind domain.Kind, code string) map[string]any {
	return map[string]any{
		"access_token":  "mock_access_token",
		"refresh_token": "mock_refresh_token",
		"expires_in":    3600,
	}
}

// checkAllowance enforces the tier's integration count, with -1 as the
// unlimited sentinel.
func (s *Service) checkAllowance(ctx context.Context, businessID snowflake.ID) error {
	sub, err := s.subs.FindByBusinessID(ctx, s.db, businessID)
	if err != nil {
		return err
	}
	if sub == nil {
		return domain.ErrLimitReached
	}
	limits, ok := subscriptiondomain.LimitsFor(sub.Tier)
	if !ok {
		return subscriptiondomain.ErrInvalidTier
	}
	if limits.IntegrationsAllowed == subscriptiondomain.Unlimited {
		return nil
	}

	count, err := s.repo.CountByBusiness(ctx, s.db, businessID)
	if err != nil {
		return err
	}
	if count >= int64(limits.IntegrationsAllowed) {
		return domain.ErrLimitReached
	}
	return nil
}

func view(integration *domain.Integration) domain.IntegrationView {
	v := domain.IntegrationView{
		ID:        integration.ID,
		Type:      integration.Type,
		Settings:  integration.Settings,
		Enabled:   integration.Enabled,
		Connected: true,
	}
	if integration.LastSyncAt != nil {
		v.LastSyncAt = integration.LastSyncAt.UTC().Format(time.RFC3339)
	}
	return v
}
