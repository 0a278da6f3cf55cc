// Package seed provisions a default admin account for local and
// self-hosted installs. Production deployments leave SEED_ADMIN unset.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	"github.com/smallbiznis/advisorhub/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@advisorhub.local"
	defaultAdminPassword = "changeme"
)

// EnsureAdmin creates the default admin user if none exists. The
// account is pre-verified so it can log in immediately.
func EnsureAdmin(db *gorm.DB, node *snowflake.Node, cfg config.Config, log *zap.Logger) error {
	if !cfg.SeedAdmin {
		return nil
	}

	var count int64
	if err := db.Model(&authdomain.User{}).Where("role = ?", authdomain.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := authdomain.User{
		ID:            node.Generate(),
		Email:         defaultAdminEmail,
		Password:      string(hashed),
		FirstName:     "Platform",
		LastName:      "Admin",
		Role:          authdomain.RoleAdmin,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Warn("seeded default admin account, change its password",
		zap.String("email", defaultAdminEmail),
	)
	return nil
}

var Module = fx.Module("seed",
	fx.Invoke(EnsureAdmin),
)
