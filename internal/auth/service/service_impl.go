package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/auth/domain"
	"github.com/smallbiznis/advisorhub/internal/auth/token"
	businessdomain "github.com/smallbiznis/advisorhub/internal/business/domain"
	"github.com/smallbiznis/advisorhub/internal/mailer"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Business businessdomain.Service
	Tokens   *token.Manager
	Mailer   *mailer.Mailer
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	business businessdomain.Service
	tokens   *token.Manager
	mailer   *mailer.Mailer
	now      func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("auth.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		business: p.Business,
		tokens:   p.Tokens,
		mailer:   p.Mailer,
		now:      time.Now,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	if !domain.ValidRole(req.Role) {
		return domain.AuthResponse{}, domain.ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if existing != nil {
		return domain.AuthResponse{}, domain.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	now := s.now().UTC()
	user := domain.User{
		ID:        s.genID.Generate(),
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      req.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var business *domain.BusinessSummary
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertUser(ctx, tx, &user); err != nil {
			return err
		}
		switch user.Role {
		case domain.RoleSMBOwner:
			if name := strings.TrimSpace(req.BusinessName); name != "" {
				created, err := s.business.ProvisionOwner(ctx, tx, user.ID, name)
				if err != nil {
					return err
				}
				business = &domain.BusinessSummary{ID: created.ID, Name: created.Name}
			}
		case domain.RoleAdvisor:
			profile := domain.AdvisorProfile{
				ID:          s.genID.Generate(),
				UserID:      user.ID,
				CompanyName: strings.TrimSpace(req.BusinessName),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.repo.InsertAdvisorProfile(ctx, tx, &profile); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.AuthResponse{}, err
	}

	verification, err := s.tokens.GenerateEmailToken(user.Email, token.PurposeEmailVerification, verificationTokenTTL)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	s.mailer.SendVerification(ctx, user.Email, verification)

	tokens, err := s.issueTokens(ctx, &user)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	return domain.AuthResponse{
		User:     userView(&user),
		Business: business,
		Tokens:   tokens,
	}, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if user == nil {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return domain.AuthResponse{}, domain.ErrEmailNotVerified
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	if err := s.repo.SetLastLogin(ctx, s.db, user.ID, s.now().UTC()); err != nil {
		s.log.Warn("update last login", zap.Error(err))
	}

	resp := domain.AuthResponse{User: userView(user), Tokens: tokens}
	if user.Role == domain.RoleSMBOwner {
		businesses, err := s.business.List(ctx, user.ID, user.Role)
		if err == nil && len(businesses) > 0 {
			resp.Business = &domain.BusinessSummary{
				ID:   businesses[0].ID,
				Name: businesses[0].Name,
			}
		}
	}
	return resp, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	session, err := s.repo.FindSession(ctx, s.db, refreshToken, s.now().UTC())
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", domain.ErrInvalidToken
	}

	user, err := s.repo.FindUserByID(ctx, s.db, session.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}

	return s.tokens.GenerateAccess(user.ID, string(user.Role))
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.DeleteSessionByToken(ctx, s.db, refreshToken)
}

func (s *Service) VerifyEmail(ctx context.Context, raw string) error {
	email, err := s.tokens.ParseEmailToken(raw, token.PurposeEmailVerification)
	if err != nil {
		return domain.ErrInvalidToken
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.EmailVerified {
		return domain.ErrAlreadyVerified
	}

	return s.repo.SetEmailVerified(ctx, s.db, user.ID)
}

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return err
	}
	// Unknown addresses are not revealed; the handler responds the
	// same either way.
	if user == nil {
		return nil
	}

	reset, err := s.tokens.GenerateEmailToken(email, token.PurposePasswordReset, resetTokenTTL)
	if err != nil {
		return err
	}
	s.mailer.SendPasswordReset(ctx, email, reset)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, raw, newPassword string) error {
	email, err := s.tokens.ParseEmailToken(raw, token.PurposePasswordReset)
	if err != nil {
		return domain.ErrInvalidToken
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.SetPassword(ctx, tx, user.ID, string(hashed)); err != nil {
			return err
		}
		return s.repo.DeleteSessionsByUser(ctx, tx, user.ID)
	})
}

func (s *Service) GetUser(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return s.repo.FindUserByID(ctx, s.db, id)
}

func (s *Service) issueTokens(ctx context.Context, user *domain.User) (domain.TokenPair, error) {
	access, err := s.tokens.GenerateAccess(user.ID, string(user.Role))
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.tokens.NewRefreshToken()
	if err != nil {
		return domain.TokenPair{}, err
	}

	now := s.now().UTC()
	session := domain.Session{
		ID:        s.genID.Generate(),
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: now.Add(domain.RefreshTokenTTL),
		CreatedAt: now,
	}
	if err := s.repo.InsertSession(ctx, s.db, &session); err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func userView(user *domain.User) domain.UserView {
	return domain.UserView{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	}
}
