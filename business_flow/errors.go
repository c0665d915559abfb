// Package businessflow contains the core business logic and use cases for the case management workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account-related errors
	ErrAccountNotFound       = errors.New("account not found")
	ErrAccountInactive       = errors.New("account is inactive")
	ErrEmailNotVerified      = errors.New("email is not verified")
	ErrIncorrectPassword     = errors.New("incorrect password")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrInvalidRole           = errors.New("invalid role")
	ErrAdminAccountProtected = errors.New("default admin account cannot be modified")

	// OTP-related errors
	ErrNoPendingOTP    = errors.New("no pending OTP found")
	ErrInvalidOTPCode  = errors.New("invalid OTP code")
	ErrOTPExpired      = errors.New("OTP has expired")
	ErrAlreadyVerified = errors.New("already verified")

	// Case record errors
	ErrCaseNotFound       = errors.New("case record not found")
	ErrInvalidTransition  = errors.New("transition not allowed from current status")
	ErrTransitionConflict = errors.New("record was modified by another user")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")

	// Report errors
	ErrUnsupportedExportFormat = errors.New("unsupported export format")

	// Chatbot errors
	ErrChatbotUnavailable = errors.New("chatbot is unavailable")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsEmailNotVerified(err error) bool {
	return errors.Is(err, ErrEmailNotVerified)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsUsernameAlreadyExists(err error) bool {
	return errors.Is(err, ErrUsernameAlreadyExists)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsInvalidRole(err error) bool {
	return errors.Is(err, ErrInvalidRole)
}

func IsAdminAccountProtected(err error) bool {
	return errors.Is(err, ErrAdminAccountProtected)
}

func IsNoPendingOTP(err error) bool {
	return errors.Is(err, ErrNoPendingOTP)
}

func IsInvalidOTPCode(err error) bool {
	return errors.Is(err, ErrInvalidOTPCode)
}

func IsOTPExpired(err error) bool {
	return errors.Is(err, ErrOTPExpired)
}

func IsAlreadyVerified(err error) bool {
	return errors.Is(err, ErrAlreadyVerified)
}

func IsCaseNotFound(err error) bool {
	return errors.Is(err, ErrCaseNotFound)
}

func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

func IsTransitionConflict(err error) bool {
	return errors.Is(err, ErrTransitionConflict)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}

func IsUnsupportedExportFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedExportFormat)
}

func IsChatbotUnavailable(err error) bool {
	return errors.Is(err, ErrChatbotUnavailable)
}
