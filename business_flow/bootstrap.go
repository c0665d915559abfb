package businessflow

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/Thien222/ManageCustomerInBank-BE/config"
	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/repository"
	"github.com/Thien222/ManageCustomerInBank-BE/utils"
	"gorm.io/gorm"
)

// EnsureDefaultAdmin creates the bootstrap admin account on startup when it
// does not exist. The account is created verified and active so the system
// is usable on a fresh database. Idempotent across restarts.
func EnsureDefaultAdmin(ctx context.Context, accountRepo repository.AccountRepository, cfg config.AdminConfig, bcryptCost int, db *gorm.DB) error {
	return repository.WithTransaction(ctx, db, func(txCtx context.Context) error {
		existing, err := accountRepo.ByUsername(txCtx, cfg.Username)
		if err != nil {
			return fmt.Errorf("failed to look up admin account: %w", err)
		}
		if existing != nil {
			return nil
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		role := models.RoleAdmin
		admin := &models.Account{
			Username:      cfg.Username,
			PasswordHash:  string(passwordHash),
			Email:         cfg.Email,
			Role:          &role,
			IsActive:      true,
			EmailVerified: true,
			CreatedAt:     utils.UTCNow(),
			UpdatedAt:     utils.UTCNow(),
		}
		if err := accountRepo.Save(txCtx, admin); err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}

		log.Printf("default admin account %q created", cfg.Username)
		return nil
	})
}
