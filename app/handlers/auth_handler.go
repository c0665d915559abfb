// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	"github.com/Thien222/ManageCustomerInBank-BE/app/middleware"
	businessflow "github.com/Thien222/ManageCustomerInBank-BE/business_flow"
	"github.com/Thien222/ManageCustomerInBank-BE/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Register(c fiber.Ctx) error
	VerifyOTP(c fiber.Ctx) error
	ResendOTP(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	Refresh(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authFlow  businessflow.AuthFlow
	validator *validator.Validate
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authFlow businessflow.AuthFlow) *AuthHandler {
	return &AuthHandler{
		authFlow:  authFlow,
		validator: validator.New(),
	}
}

// Register handles the staff registration process
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.authFlow.Register(createRequestContext(c, "/api/v1/auth/register"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsUsernameAlreadyExists(err) {
			return errorResponse(c, fiber.StatusConflict, "Username already exists", "USERNAME_EXISTS", nil)
		}
		if businessflow.IsEmailAlreadyExists(err) {
			return errorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_EXISTS", nil)
		}

		log.Println("Registration failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Registration failed", "REGISTER_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"account_id": result.AccountID,
		"otp_sent":   result.OTPSent,
		"otp_target": result.OTPTarget,
	})
}

// VerifyOTP handles OTP verification for staff registration
func (h *AuthHandler) VerifyOTP(c fiber.Ctx) error {
	var req dto.OTPVerificationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.authFlow.VerifyOTP(createRequestContext(c, "/api/v1/auth/verify-otp"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsAlreadyVerified(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Account is already verified", "ALREADY_VERIFIED", nil)
		}
		if businessflow.IsNoPendingOTP(err) {
			return errorResponse(c, fiber.StatusBadRequest, "No pending OTP found", "NO_PENDING_OTP", nil)
		}
		if businessflow.IsOTPExpired(err) {
			return errorResponse(c, fiber.StatusBadRequest, "OTP expired", "OTP_EXPIRED", nil)
		}
		if businessflow.IsInvalidOTPCode(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid OTP code", "INVALID_OTP_CODE", nil)
		}

		log.Println("OTP verification failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "OTP verification failed", "OTP_VERIFICATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"account": result.Account,
	})
}

// ResendOTP handles resending the registration OTP
func (h *AuthHandler) ResendOTP(c fiber.Ctx) error {
	var req dto.OTPResendRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.authFlow.ResendOTP(createRequestContext(c, "/api/v1/auth/resend-otp"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsAlreadyVerified(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Account is already verified", "ALREADY_VERIFIED", nil)
		}

		log.Println("Resend OTP failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to resend OTP", "RESEND_OTP_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"otp_sent":   result.OTPSent,
		"otp_target": result.OTPTarget,
	})
}

// Login handles staff authentication.
// Missing accounts and wrong passwords share one response so callers cannot
// probe which usernames exist.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.authFlow.Login(createRequestContext(c, "/api/v1/auth/login"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) || businessflow.IsIncorrectPassword(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid username or password", "INVALID_CREDENTIALS", nil)
		}
		if businessflow.IsEmailNotVerified(err) {
			return errorResponse(c, fiber.StatusForbidden, "Email is not verified", "EMAIL_NOT_VERIFIED", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusForbidden, "Account is awaiting admin approval", "ACCOUNT_INACTIVE", nil)
		}

		log.Println("Login failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"access_token":  result.Token,
		"refresh_token": result.RefreshToken,
		"token_type":    "Bearer",
		"expires_in":    utils.AccessTokenTTLSeconds,
		"account":       result.Account,
	})
}

// Refresh rotates the token pair
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.authFlow.RefreshToken(createRequestContext(c, "/api/v1/auth/refresh"), &req, clientMetadata(c))
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Token refresh failed", "REFRESH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"access_token":  result.Token,
		"refresh_token": result.RefreshToken,
		"token_type":    "Bearer",
		"expires_in":    utils.AccessTokenTTLSeconds,
	})
}

// Logout revokes the current access token
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	token, ok := middleware.GetRawTokenFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	if err := h.authFlow.Logout(createRequestContext(c, "/api/v1/auth/logout"), token, clientMetadata(c)); err != nil {
		log.Println("Logout failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Logout failed", "LOGOUT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Logged out", nil)
}

// Health handles health check requests
func (h *AuthHandler) Health(c fiber.Ctx) error {
	return successResponse(c, fiber.StatusOK, "Service is healthy", fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
