// Package businessflow contains the core business logic and use cases for the case management workflows
package businessflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	"github.com/Thien222/ManageCustomerInBank-BE/app/services"
	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/repository"
	"github.com/Thien222/ManageCustomerInBank-BE/utils"
	"gorm.io/gorm"
)

// AuthFlow handles registration, email verification and login
type AuthFlow interface {
	Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error)
	VerifyOTP(ctx context.Context, req *dto.OTPVerificationRequest, metadata *ClientMetadata) (*dto.OTPVerificationResponse, error)
	ResendOTP(ctx context.Context, req *dto.OTPResendRequest, metadata *ClientMetadata) (*dto.OTPResendResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error)
	Logout(ctx context.Context, token string, metadata *ClientMetadata) error
}

// AuthFlowImpl implements the authentication business flow
type AuthFlowImpl struct {
	accountRepo     repository.AccountRepository
	tokenService    services.TokenService
	notificationSvc services.NotificationService
	bcryptCost      int
	db              *gorm.DB
}

// NewAuthFlow creates a new authentication flow instance
func NewAuthFlow(
	accountRepo repository.AccountRepository,
	tokenService services.TokenService,
	notificationSvc services.NotificationService,
	bcryptCost int,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		accountRepo:     accountRepo,
		tokenService:    tokenService,
		notificationSvc: notificationSvc,
		bcryptCost:      bcryptCost,
		db:              db,
	}
}

// Register creates an unverified, inactive account and emails an OTP.
// The account stays unusable until the email is verified and an admin
// activates it with a role.
func (s *AuthFlowImpl) Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error) {
	var account *models.Account
	var otpCode string

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

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		otpCode, err = generateOTPCode()
		if err != nil {
			return err
		}

		account = &models.Account{
			Username:      req.Username,
			PasswordHash:  string(passwordHash),
			Email:         req.Email,
			IsActive:      false,
			EmailVerified: false,
			OTPCode:       &otpCode,
			OTPExpiresAt:  utils.UTCNowAddPtr(utils.OTPExpiry),
		}
		if err := s.accountRepo.Save(txCtx, account); err != nil {
			return err
		}

		// Delivery failure rolls the account back so the caller can retry the
		// whole registration
		if err := s.notificationSvc.SendOTPEmail(account.Email, account.Username, otpCode); err != nil {
			log.Printf("failed to send OTP email to %s: %v", account.Email, err)
			return fmt.Errorf("failed to deliver OTP email: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("REGISTER_FAILED", "Registration failed", err)
	}

	return &dto.RegisterResponse{
		Message:   "Registration initiated. OTP sent to your email.",
		AccountID: account.ID,
		OTPSent:   true,
		OTPTarget: maskEmail(account.Email),
	}, nil
}

// VerifyOTP confirms the emailed code and marks the email as verified
func (s *AuthFlowImpl) VerifyOTP(ctx context.Context, req *dto.OTPVerificationRequest, metadata *ClientMetadata) (*dto.OTPVerificationResponse, error) {
	var account *models.Account

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		account, err = s.accountRepo.ByEmail(txCtx, req.Email)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		if account.EmailVerified {
			return ErrAlreadyVerified
		}
		if account.OTPCode == nil {
			return ErrNoPendingOTP
		}
		if account.OTPExpired(utils.UTCNow()) {
			return ErrOTPExpired
		}
		if *account.OTPCode != req.OTPCode {
			return ErrInvalidOTPCode
		}

		account.EmailVerified = true
		account.OTPCode = nil
		account.OTPExpiresAt = nil
		account.UpdatedAt = utils.UTCNow()
		return s.accountRepo.Update(txCtx, account)
	})
	if err != nil {
		return nil, NewBusinessError("OTP_VERIFICATION_FAILED", "OTP verification failed", err)
	}

	return &dto.OTPVerificationResponse{
		Message: "Email verified. Your account awaits admin approval.",
		Account: ToAccountDTO(*account),
	}, nil
}

// ResendOTP issues a fresh code for an unverified account
func (s *AuthFlowImpl) ResendOTP(ctx context.Context, req *dto.OTPResendRequest, metadata *ClientMetadata) (*dto.OTPResendResponse, error) {
	var account *models.Account
	var otpCode string

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		account, err = s.accountRepo.ByEmail(txCtx, req.Email)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		if account.EmailVerified {
			return ErrAlreadyVerified
		}

		otpCode, err = generateOTPCode()
		if err != nil {
			return err
		}

		account.OTPCode = &otpCode
		account.OTPExpiresAt = utils.UTCNowAddPtr(utils.OTPExpiry)
		account.UpdatedAt = utils.UTCNow()
		if err := s.accountRepo.Update(txCtx, account); err != nil {
			return err
		}

		if err := s.notificationSvc.SendOTPEmail(account.Email, account.Username, otpCode); err != nil {
			log.Printf("failed to send OTP email to %s: %v", account.Email, err)
			return fmt.Errorf("failed to deliver OTP email: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("OTP_RESEND_FAILED", "OTP resend failed", err)
	}

	return &dto.OTPResendResponse{
		Message:   "A new OTP was sent to your email.",
		OTPSent:   true,
		OTPTarget: maskEmail(account.Email),
	}, nil
}

// Login authenticates by username or email. Verification and activation
// gates run only after the password check so a wrong password never reveals
// account state.
func (s *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	account, err := s.accountRepo.ByUsernameOrEmail(ctx, req.Identifier)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}
	if account == nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", ErrAccountNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", ErrIncorrectPassword)
	}

	// Admin accounts are provisioned out of band and bypass the
	// verification and approval gates
	if !account.IsAdmin() {
		if !account.EmailVerified {
			return nil, NewBusinessError("LOGIN_FAILED", "Login failed", ErrEmailNotVerified)
		}
		if !account.IsActive {
			return nil, NewBusinessError("LOGIN_FAILED", "Login failed", ErrAccountInactive)
		}
	}

	accessToken, refreshToken, err := s.tokenService.GenerateTokens(account.ID, account.Username, account.Role)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	return &dto.LoginResponse{
		Message:      "Login successful",
		Token:        accessToken,
		RefreshToken: refreshToken,
		Account:      ToAccountDTO(*account),
	}, nil
}

// RefreshToken rotates the token pair
func (s *AuthFlowImpl) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error) {
	accessToken, refreshToken, err := s.tokenService.RefreshToken(req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}

	return &dto.RefreshTokenResponse{
		Message:      "Token refreshed",
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes the presented access token
func (s *AuthFlowImpl) Logout(ctx context.Context, token string, metadata *ClientMetadata) error {
	if err := s.tokenService.RevokeToken(token); err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}
	return nil
}

// generateOTPCode returns a cryptographically random 6-digit code
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
