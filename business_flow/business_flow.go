// Package businessflow contains the business logic for the application.
package businessflow

import (
	"fmt"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	"github.com/Thien222/ManageCustomerInBank-BE/config"
	"github.com/Thien222/ManageCustomerInBank-BE/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for logging and tracing
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// Actor identifies the authenticated staff member performing an operation
type Actor struct {
	AccountID uint
	Username  string
	Role      models.Role
}

// redisKey prefixes a cache key with the configured namespace
func redisKey(cfg config.CacheConfig, key string) string {
	return cfg.RedisPrefix + key
}

// ToAccountDTO converts an account model to AccountDTO for API responses
func ToAccountDTO(account models.Account) dto.AccountDTO {
	var role *string
	if account.Role != nil {
		r := string(*account.Role)
		role = &r
	}

	return dto.AccountDTO{
		ID:            account.ID,
		Username:      account.Username,
		Email:         account.Email,
		Role:          role,
		IsActive:      account.IsActive,
		EmailVerified: account.EmailVerified,
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
	}
}

// ToHandoffDTO converts a workflow step to its API shape
func ToHandoffDTO(h models.Handoff) dto.HandoffDTO {
	return dto.HandoffDTO{
		Completed: h.Completed,
		Actor:     h.Actor,
		Note:      h.Note,
	}
}

// ToCaseRecordDTO converts a case record model to CaseRecordDTO for API responses
func ToCaseRecordDTO(record models.CaseRecord) dto.CaseRecordDTO {
	return dto.CaseRecordDTO{
		ID:               record.ID,
		AccountNumber:    record.AccountNumber,
		CIF:              record.CIF,
		CustomerName:     record.CustomerName,
		DisbursedAmount:  record.DisbursedAmount,
		Currency:         record.Currency,
		DisbursementDate: record.DisbursementDate,
		Status:           string(record.Status),
		Department:       record.Department,
		AccountManager:   record.AccountManager,
		ContractNo:       record.ContractNo,
		Note:             record.Note,
		Handover:         ToHandoffDTO(record.Handover),
		Receipt:          ToHandoffDTO(record.Receipt),
		Return:           ToHandoffDTO(record.Return),
		DocumentReceipt:  ToHandoffDTO(record.DocumentReceipt),
		CreatedAt:        record.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        record.UpdatedAt.Format(time.RFC3339),
	}
}

// maskEmail hides most of the local part of an email address
func maskEmail(email string) string {
	at := -1
	for i, c := range email {
		if c == '@' {
			at = i
			break
		}
	}
	if at <= 1 {
		return email
	}
	return fmt.Sprintf("%c***%s", email[0], email[at:])
}

// normalizePagination applies defaults and validates page parameters
func normalizePagination(page, pageSize, defaultSize, maxSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = defaultSize
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > maxSize {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}
