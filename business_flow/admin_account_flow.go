package businessflow

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/repository"
	"github.com/Thien222/ManageCustomerInBank-BE/utils"
	"gorm.io/gorm"
)

// AdminAccountFlow handles admin approval and management of staff accounts
type AdminAccountFlow interface {
	ListAccounts(ctx context.Context, req *dto.ListAccountsRequest, metadata *ClientMetadata) (*dto.ListAccountsResponse, error)
	GetAccount(ctx context.Context, accountID uint, metadata *ClientMetadata) (*dto.GetAccountResponse, error)
	CreateAccount(ctx context.Context, req *dto.CreateAccountRequest, metadata *ClientMetadata) (*dto.CreateAccountResponse, error)
	ApproveAccount(ctx context.Context, accountID uint, req *dto.ApproveAccountRequest, metadata *ClientMetadata) (*dto.ApproveAccountResponse, error)
	UpdateAccount(ctx context.Context, accountID uint, req *dto.UpdateAccountRequest, metadata *ClientMetadata) (*dto.UpdateAccountResponse, error)
	DeleteAccount(ctx context.Context, accountID uint, metadata *ClientMetadata) (*dto.DeleteAccountResponse, error)
}

// AdminAccountFlowImpl implements the admin account management flow
type AdminAccountFlowImpl struct {
	accountRepo   repository.AccountRepository
	adminUsername string
	bcryptCost    int
	db            *gorm.DB
}

// NewAdminAccountFlow creates a new admin account flow instance
func NewAdminAccountFlow(accountRepo repository.AccountRepository, adminUsername string, bcryptCost int, db *gorm.DB) AdminAccountFlow {
	return &AdminAccountFlowImpl{
		accountRepo:   accountRepo,
		adminUsername: adminUsername,
		bcryptCost:    bcryptCost,
		db:            db,
	}
}

// ListAccounts lists staff accounts. The bootstrap admin account is excluded
// so it never shows up in the approval queue.
func (s *AdminAccountFlowImpl) ListAccounts(ctx context.Context, req *dto.ListAccountsRequest, metadata *ClientMetadata) (*dto.ListAccountsResponse, error) {
	page, pageSize, err := normalizePagination(req.Page, req.PageSize, utils.DefaultPageSize, utils.MaxPageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_ACCOUNTS_VALIDATION_FAILED", "Account listing validation failed", err)
	}

	filter := models.AccountFilter{
		ExcludeUsername: &s.adminUsername,
		IsActive:        req.IsActive,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		if !role.IsValid() {
			return nil, NewBusinessError("LIST_ACCOUNTS_VALIDATION_FAILED", "Account listing validation failed", ErrInvalidRole)
		}
		filter.Role = &role
	}
	if req.Pending != nil && *req.Pending {
		hasRole := false
		filter.HasRole = &hasRole
	}

	total, err := s.accountRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_ACCOUNTS_FAILED", "Account listing failed", err)
	}

	rows, err := s.accountRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_ACCOUNTS_FAILED", "Account listing failed", err)
	}

	accounts := make([]dto.AccountDTO, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, ToAccountDTO(*row))
	}

	return &dto.ListAccountsResponse{
		Message:  "Accounts retrieved",
		Accounts: accounts,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetAccount fetches one staff account. The bootstrap admin stays hidden.
func (s *AdminAccountFlowImpl) GetAccount(ctx context.Context, accountID uint, metadata *ClientMetadata) (*dto.GetAccountResponse, error) {
	account, err := s.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("GET_ACCOUNT_FAILED", "Account lookup failed", err)
	}
	if account == nil || account.Username == s.adminUsername {
		return nil, NewBusinessError("GET_ACCOUNT_FAILED", "Account lookup failed", ErrAccountNotFound)
	}

	return &dto.GetAccountResponse{
		Message: "Account retrieved",
		Account: ToAccountDTO(*account),
	}, nil
}

// CreateAccount lets an admin provision a staff account directly. The account
// skips OTP verification and is usable immediately.
func (s *AdminAccountFlowImpl) CreateAccount(ctx context.Context, req *dto.CreateAccountRequest, metadata *ClientMetadata) (*dto.CreateAccountResponse, error) {
	var account *models.Account

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.accountRepo.ByUsername(txCtx, req.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrUsernameAlreadyExists
		}

		existing, err = s.accountRepo.ByEmail(txCtx, req.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		role := models.Role(req.Role)
		if !role.IsValid() {
			return ErrInvalidRole
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		account = &models.Account{
			Username:      req.Username,
			PasswordHash:  string(passwordHash),
			Email:         req.Email,
			Role:          &role,
			IsActive:      true,
			EmailVerified: true,
		}
		return s.accountRepo.Save(txCtx, account)
	})
	if err != nil {
		return nil, NewBusinessError("CREATE_ACCOUNT_FAILED", "Account creation failed", err)
	}

	return &dto.CreateAccountResponse{
		Message: "Account created",
		Account: ToAccountDTO(*account),
	}, nil
}

// ApproveAccount grants the requested role and activates the account in one
// step, clearing it for login
func (s *AdminAccountFlowImpl) ApproveAccount(ctx context.Context, accountID uint, req *dto.ApproveAccountRequest, metadata *ClientMetadata) (*dto.ApproveAccountResponse, error) {
	var account *models.Account

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		role := models.Role(req.Role)
		if !role.IsValid() {
			return ErrInvalidRole
		}

		var err error
		account, err = s.accountRepo.ByID(txCtx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		if account.Username == s.adminUsername {
			return ErrAdminAccountProtected
		}

		account.Role = &role
		account.IsActive = true
		account.UpdatedAt = utils.UTCNow()

		return s.accountRepo.Update(txCtx, account)
	})
	if err != nil {
		return nil, NewBusinessError("APPROVE_ACCOUNT_FAILED", "Account approval failed", err)
	}

	return &dto.ApproveAccountResponse{
		Message: "Account approved",
		Account: ToAccountDTO(*account),
	}, nil
}

// UpdateAccount grants a role and/or toggles activation. Granting a role and
// the activation flag can change independently here; approval uses
// ApproveAccount.
func (s *AdminAccountFlowImpl) UpdateAccount(ctx context.Context, accountID uint, req *dto.UpdateAccountRequest, metadata *ClientMetadata) (*dto.UpdateAccountResponse, error) {
	var account *models.Account

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		account, err = s.accountRepo.ByID(txCtx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		if account.Username == s.adminUsername {
			return ErrAdminAccountProtected
		}

		if req.Role != nil {
			role := models.Role(*req.Role)
			if !role.IsValid() {
				return ErrInvalidRole
			}
			account.Role = &role
		}
		if req.IsActive != nil {
			account.IsActive = *req.IsActive
		}
		account.UpdatedAt = utils.UTCNow()

		return s.accountRepo.Update(txCtx, account)
	})
	if err != nil {
		return nil, NewBusinessError("UPDATE_ACCOUNT_FAILED", "Account update failed", err)
	}

	return &dto.UpdateAccountResponse{
		Message: "Account updated",
		Account: ToAccountDTO(*account),
	}, nil
}

// DeleteAccount removes a staff account
func (s *AdminAccountFlowImpl) DeleteAccount(ctx context.Context, accountID uint, metadata *ClientMetadata) (*dto.DeleteAccountResponse, error) {
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		account, err := s.accountRepo.ByID(txCtx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		if account.Username == s.adminUsername {
			return ErrAdminAccountProtected
		}
		return s.accountRepo.Delete(txCtx, accountID)
	})
	if err != nil {
		return nil, NewBusinessError("DELETE_ACCOUNT_FAILED", "Account deletion failed", err)
	}

	return &dto.DeleteAccountResponse{
		Message: "Account deleted",
	}, nil
}
