package dto

import "time"

// CreateCaseRecordRequest represents the data for opening a new case record
type CreateCaseRecordRequest struct {
	AccountNumber    string     `json:"account_number" validate:"required,max=32"`
	CIF              string     `json:"cif" validate:"omitempty,max=32"`
	CustomerName     string     `json:"customer_name" validate:"required,max=255"`
	DisbursedAmount  float64    `json:"disbursed_amount" validate:"omitempty,gte=0"`
	Currency         string     `json:"currency" validate:"omitempty,max=8"`
	DisbursementDate *time.Time `json:"disbursement_date" validate:"omitempty"`
	Department       string     `json:"department" validate:"omitempty,max=128"`
	AccountManager   string     `json:"account_manager" validate:"omitempty,max=128"`
	ContractNo       string     `json:"contract_no" validate:"omitempty,max=64"`
	Note             string     `json:"note" validate:"omitempty,max=2000"`
}

// UpdateCaseRecordRequest represents editable descriptive fields of a record.
// Workflow steps change only through the transition endpoints.
type UpdateCaseRecordRequest struct {
	AccountNumber    *string    `json:"account_number,omitempty" validate:"omitempty,max=32"`
	CIF              *string    `json:"cif,omitempty" validate:"omitempty,max=32"`
	CustomerName     *string    `json:"customer_name,omitempty" validate:"omitempty,max=255"`
	DisbursedAmount  *float64   `json:"disbursed_amount,omitempty" validate:"omitempty,gte=0"`
	Currency         *string    `json:"currency,omitempty" validate:"omitempty,max=8"`
	DisbursementDate *time.Time `json:"disbursement_date,omitempty" validate:"omitempty"`
	Department       *string    `json:"department,omitempty" validate:"omitempty,max=128"`
	AccountManager   *string    `json:"account_manager,omitempty" validate:"omitempty,max=128"`
	ContractNo       *string    `json:"contract_no,omitempty" validate:"omitempty,max=64"`
	Note             *string    `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// ListCaseRecordsRequest represents listing filters for case records
type ListCaseRecordsRequest struct {
	Status         *string `query:"status" validate:"omitempty,oneof=new in-progress credit-admin-received credit-admin-rejected credit-admin-returned complete account-manager-rejected"`
	Search         *string `query:"search" validate:"omitempty,max=255"`
	AccountNumber  *string `query:"account_number" validate:"omitempty,max=32"`
	CustomerName   *string `query:"customer_name" validate:"omitempty,max=255"`
	AccountManager *string `query:"account_manager" validate:"omitempty,max=128"`
	Department     *string `query:"department" validate:"omitempty,max=128"`
	Currency       *string `query:"currency" validate:"omitempty,max=8"`
	FromDate       *string `query:"from_date" validate:"omitempty,datetime=2006-01-02"`
	ToDate         *string `query:"to_date" validate:"omitempty,datetime=2006-01-02"`
	Page           int     `query:"page" validate:"omitempty,min=1"`
	PageSize       int     `query:"page_size" validate:"omitempty,min=1,max=100"`
	// Limit is an alias for PageSize kept for older clients
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// TransitionRequest carries the optional note for a workflow transition.
// The acting user comes from the access token, never from the body.
type TransitionRequest struct {
	Note string `json:"note" validate:"omitempty,max=2000"`
}

// HandoffDTO represents one workflow step for API responses
type HandoffDTO struct {
	Completed bool   `json:"completed"`
	Actor     string `json:"actor"`
	Note      string `json:"note"`
}

// CaseRecordDTO represents case record data for API responses
type CaseRecordDTO struct {
	ID               uint       `json:"id"`
	AccountNumber    string     `json:"account_number"`
	CIF              string     `json:"cif,omitempty"`
	CustomerName     string     `json:"customer_name"`
	DisbursedAmount  float64    `json:"disbursed_amount"`
	Currency         string     `json:"currency"`
	DisbursementDate *time.Time `json:"disbursement_date"`
	Status           string     `json:"status"`
	Department       string     `json:"department"`
	AccountManager   string     `json:"account_manager"`
	ContractNo       string     `json:"contract_no"`
	Note             string     `json:"note"`
	Handover         HandoffDTO `json:"handover"`
	Receipt          HandoffDTO `json:"receipt"`
	Return           HandoffDTO `json:"return"`
	DocumentReceipt  HandoffDTO `json:"document_receipt"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
}

// CaseRecordResponse wraps a single case record
type CaseRecordResponse struct {
	Message string        `json:"message"`
	Record  CaseRecordDTO `json:"record"`
}

// ListCaseRecordsResponse represents the paginated record listing
type ListCaseRecordsResponse struct {
	Message  string          `json:"message"`
	Records  []CaseRecordDTO `json:"records"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// DeleteCaseRecordResponse represents the response after record removal
type DeleteCaseRecordResponse struct {
	Message string `json:"message"`
}
