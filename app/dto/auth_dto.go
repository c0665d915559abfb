// Package dto contains Data Transfer Objects for API request and response structures
package dto

// RegisterRequest represents the staff registration form data
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// RegisterResponse represents the response after successful registration initiation
type RegisterResponse struct {
	Message   string `json:"message"`
	AccountID uint   `json:"account_id"`
	OTPSent   bool   `json:"otp_sent"`
	OTPTarget string `json:"otp_target"` // Email address (masked for security)
}

// OTPVerificationRequest represents the email OTP verification request
type OTPVerificationRequest struct {
	Email   string `json:"email" validate:"required,email,max=255"`
	OTPCode string `json:"otp_code" validate:"required,len=6,numeric"`
}

// OTPVerificationResponse represents the response after successful OTP verification
type OTPVerificationResponse struct {
	Message string     `json:"message"`
	Account AccountDTO `json:"account"`
}

// OTPResendRequest represents a request for a fresh registration OTP
type OTPResendRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// OTPResendResponse represents the response after a new OTP was issued
type OTPResendResponse struct {
	Message   string `json:"message"`
	OTPSent   bool   `json:"otp_sent"`
	OTPTarget string `json:"otp_target"`
}

// LoginRequest represents the login form data. Identifier accepts either
// username or email.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password" validate:"required,max=128"`
}

// LoginResponse represents the response after successful authentication
type LoginResponse struct {
	Message      string     `json:"message"`
	Token        string     `json:"token"`
	RefreshToken string     `json:"refresh_token"`
	Account      AccountDTO `json:"account"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse represents the response with rotated tokens
type RefreshTokenResponse struct {
	Message      string `json:"message"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// AccountDTO represents staff account data for API responses
type AccountDTO struct {
	ID            uint    `json:"id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	Role          *string `json:"role"`
	IsActive      bool    `json:"is_active"`
	EmailVerified bool    `json:"email_verified"`
	CreatedAt     string  `json:"created_at"`
}
