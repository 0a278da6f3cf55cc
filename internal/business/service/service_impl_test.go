package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	"github.com/smallbiznis/advisorhub/internal/business/domain"
	"github.com/smallbiznis/advisorhub/internal/business/repository"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	generationrepo "github.com/smallbiznis/advisorhub/internal/generation/repository"
	integrationdomain "github.com/smallbiznis/advisorhub/internal/integration/domain"
	"github.com/smallbiznis/advisorhub/internal/modules"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	subscriptionrepo "github.com/smallbiznis/advisorhub/internal/subscription/repository"
	workflowdomain "github.com/smallbiznis/advisorhub/internal/workflow/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	svc  *Service
	db   *gorm.DB
	node *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&authdomain.AdvisorProfile{},
		&domain.Business{},
		&subscriptiondomain.Subscription{},
		&subscriptiondomain.BillingInvoice{},
		&generationdomain.Generation{},
		&generationdomain.ModuleUsage{},
		&integrationdomain.Integration{},
		&workflowdomain.Artifact{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		Subs:    subscriptionrepo.Provide(),
		GenRepo: generationrepo.Provide(),
	}).(*Service)

	return &fixture{svc: svc, db: db, node: node}
}

func (f *fixture) seedUser(t *testing.T, role authdomain.Role) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	id := f.node.Generate()
	require.NoError(t, f.db.Create(&authdomain.User{
		ID:            id,
		Email:         fmt.Sprintf("user-%s@example.test", id),
		Password:      "hashed",
		FirstName:     "Test",
		LastName:      "User",
		Role:          role,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}).Error)
	return id
}

func (f *fixture) seedAdvisor(t *testing.T) (userID, profileID snowflake.ID) {
	t.Helper()
	userID = f.seedUser(t, authdomain.RoleAdvisor)
	profileID = f.node.Generate()
	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&authdomain.AdvisorProfile{
		ID:          profileID,
		UserID:      userID,
		CompanyName: "Advisory LLC",
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error)
	return userID, profileID
}

func (f *fixture) createBusiness(t *testing.T, ownerID snowflake.ID) domain.Business {
	t.Helper()
	business, err := f.svc.Create(context.Background(), ownerID, authdomain.RoleSMBOwner, domain.CreateBusinessRequest{
		Name:     "Corner Bakery",
		Industry: "retail",
	})
	require.NoError(t, err)
	return business
}

func TestCreateProvisionsTrial(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, authdomain.RoleSMBOwner)

	business := f.createBusiness(t, owner)
	require.Equal(t, owner, business.OwnerID)

	sub, err := subscriptionrepo.Provide().FindByBusinessID(context.Background(), f.db, business.ID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, subscriptiondomain.TierFreeTrial, sub.Tier)
	require.Equal(t, subscriptiondomain.StatusTrialing, sub.Status)

	var moduleCount int64
	require.NoError(t, f.db.Model(&generationdomain.ModuleUsage{}).
		Where("business_id = ?", business.ID).Count(&moduleCount).Error)
	require.EqualValues(t, len(modules.All()), moduleCount)
}

func TestCreateRestrictions(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, authdomain.RoleSMBOwner)
	advisor, _ := f.seedAdvisor(t)

	_, err := f.svc.Create(context.Background(), advisor, authdomain.RoleAdvisor, domain.CreateBusinessRequest{Name: "Nope"})
	require.ErrorIs(t, err, domain.ErrOwnersOnly)

	f.createBusiness(t, owner)
	_, err = f.svc.Create(context.Background(), owner, authdomain.RoleSMBOwner, domain.CreateBusinessRequest{Name: "Second"})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestAccessMatrix(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, authdomain.RoleSMBOwner)
	admin := f.seedUser(t, authdomain.RoleAdmin)
	stranger := f.seedUser(t, authdomain.RoleSMBOwner)
	assignedUser, assignedProfile := f.seedAdvisor(t)
	otherUser, _ := f.seedAdvisor(t)

	business := f.createBusiness(t, owner)
	profileID := assignedProfile.String()
	_, err := f.svc.Update(context.Background(), business.ID, owner, authdomain.RoleSMBOwner, domain.UpdateBusinessRequest{
		AdvisorID: &profileID,
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, f.svc.CheckAccess(ctx, business.ID, owner, authdomain.RoleSMBOwner))
	require.NoError(t, f.svc.CheckAccess(ctx, business.ID, admin, authdomain.RoleAdmin))
	require.NoError(t, f.svc.CheckAccess(ctx, business.ID, assignedUser, authdomain.RoleAdvisor))
	require.ErrorIs(t, f.svc.CheckAccess(ctx, business.ID, otherUser, authdomain.RoleAdvisor), domain.ErrAccessDenied)
	require.ErrorIs(t, f.svc.CheckAccess(ctx, business.ID, stranger, authdomain.RoleSMBOwner), domain.ErrAccessDenied)
}

func TestUpdateAdvisorAssignment(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, authdomain.RoleSMBOwner)
	_, profileID := f.seedAdvisor(t)
	business := f.createBusiness(t, owner)

	bogus := f.node.Generate().String()
	_, err := f.svc.Update(context.Background(), business.ID, owner, authdomain.RoleSMBOwner, domain.UpdateBusinessRequest{
		AdvisorID: &bogus,
	})
	require.ErrorIs(t, err, domain.ErrAdvisorNotFound)

	raw := profileID.String()
	updated, err := f.svc.Update(context.Background(), business.ID, owner, authdomain.RoleSMBOwner, domain.UpdateBusinessRequest{
		AdvisorID: &raw,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AdvisorID)
	require.Equal(t, profileID, *updated.AdvisorID)

	empty := ""
	updated, err = f.svc.Update(context.Background(), business.ID, owner, authdomain.RoleSMBOwner, domain.UpdateBusinessRequest{
		AdvisorID: &empty,
	})
	require.NoError(t, err)
	require.Nil(t, updated.AdvisorID)
}

func TestListByRole(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, authdomain.RoleSMBOwner)
	otherOwner := f.seedUser(t, authdomain.RoleSMBOwner)
	admin := f.seedUser(t, authdomain.RoleAdmin)
	advisorUser, advisorProfile := f.seedAdvisor(t)

	business := f.createBusiness(t, owner)
	f.createBusiness(t, otherOwner)

	raw := advisorProfile.String()
	_, err := f.svc.Update(context.Background(), business.ID, owner, authdomain.RoleSMBOwner, domain.UpdateBusinessRequest{
		AdvisorID: &raw,
	})
	require.NoError(t, err)

	mine, err := f.svc.List(context.Background(), owner, authdomain.RoleSMBOwner)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	assigned, err := f.svc.List(context.Background(), advisorUser, authdomain.RoleAdvisor)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	require.Equal(t, business.ID, assigned[0].ID)

	all, err := f.svc.List(context.Background(), admin, authdomain.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestGetDetail(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, authdomain.RoleSMBOwner)
	admin := f.seedUser(t, authdomain.RoleAdmin)
	business := f.createBusiness(t, owner)

	asOwner, err := f.svc.Get(context.Background(), business.ID, owner, authdomain.RoleSMBOwner)
	require.NoError(t, err)
	require.Nil(t, asOwner.Owner)
	require.NotNil(t, asOwner.Subscription)
	require.Len(t, asOwner.Modules, len(modules.All()))

	asAdmin, err := f.svc.Get(context.Background(), business.ID, admin, authdomain.RoleAdmin)
	require.NoError(t, err)
	require.NotNil(t, asAdmin.Owner)
	require.Equal(t, owner, asAdmin.Owner.ID)
}

func TestDeleteCascade(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, authdomain.RoleSMBOwner)
	advisorUser, _ := f.seedAdvisor(t)
	business := f.createBusiness(t, owner)

	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&generationdomain.Generation{
		ID:         f.node.Generate(),
		BusinessID: business.ID,
		ModuleType: modules.Marketing,
		Prompt:     "ad",
		Response:   "copy",
		CreatedBy:  owner,
		CreatedAt:  now,
	}).Error)
	require.NoError(t, f.db.Create(&workflowdomain.Artifact{
		ID:         f.node.Generate(),
		BusinessID: business.ID,
		ModuleType: modules.Marketing,
		Category:   workflowdomain.CategoryAdCopy,
		Name:       "spring launch",
		Content:    datatypes.JSONMap{"content": "copy"},
		CreatedBy:  owner,
		CreatedAt:  now,
		UpdatedAt:  now,
	}).Error)
	require.NoError(t, f.db.Create(&integrationdomain.Integration{
		ID:          f.node.Generate(),
		BusinessID:  business.ID,
		Type:        integrationdomain.KindGmail,
		Credentials: "sealed",
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error)

	sub, err := subscriptionrepo.Provide().FindByBusinessID(context.Background(), f.db, business.ID)
	require.NoError(t, err)
	require.NoError(t, subscriptionrepo.Provide().InsertInvoice(context.Background(), f.db, &subscriptiondomain.BillingInvoice{
		ID:             f.node.Generate(),
		SubscriptionID: sub.ID,
		Status:         "paid",
		CreatedAt:      now,
	}))

	// Advisors never delete, even when assigned.
	require.ErrorIs(t,
		f.svc.Delete(context.Background(), business.ID, advisorUser, authdomain.RoleAdvisor),
		domain.ErrAccessDenied)

	require.NoError(t, f.svc.Delete(context.Background(), business.ID, owner, authdomain.RoleSMBOwner))

	for _, model := range []any{
		&domain.Business{},
		&subscriptiondomain.Subscription{},
		&subscriptiondomain.BillingInvoice{},
		&generationdomain.Generation{},
		&generationdomain.ModuleUsage{},
		&integrationdomain.Integration{},
		&workflowdomain.Artifact{},
	} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		require.Zero(t, count, "expected no rows left in %T", model)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, authdomain.RoleSMBOwner)
	business := f.createBusiness(t, owner)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, f.db.Create(&generationdomain.Generation{
			ID:         f.node.Generate(),
			BusinessID: business.ID,
			ModuleType: modules.Marketing,
			Prompt:     fmt.Sprintf("prompt %d", i),
			Response:   "response",
			CreatedBy:  owner,
			CreatedAt:  now,
		}).Error)
	}
	require.NoError(t, f.db.Create(&integrationdomain.Integration{
		ID:          f.node.Generate(),
		BusinessID:  business.ID,
		Type:        integrationdomain.KindQuickBooks,
		Credentials: "sealed",
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error)

	stats, err := f.svc.Stats(context.Background(), business.ID, owner, authdomain.RoleSMBOwner)
	require.NoError(t, err)
	require.EqualValues(t, 3, stats.TotalGenerations)
	require.EqualValues(t, 1, stats.ActiveIntegrations)
	require.EqualValues(t, 3, stats.CurrentMonthUsage)
	require.Zero(t, stats.ArtifactCount)
}
