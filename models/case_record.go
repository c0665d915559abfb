// Package models contains domain entities and business models for the case management system
package models

import (
	"time"
)

// CaseStatus is the closed set of workflow states a case record moves through.
// The stored status column is a cache derived from the four handoff steps;
// see CaseRecord.DeriveStatus.
type CaseStatus string

const (
	CaseStatusNew                    CaseStatus = "new"
	CaseStatusInProgress             CaseStatus = "in-progress"
	CaseStatusCreditAdminReceived    CaseStatus = "credit-admin-received"
	CaseStatusCreditAdminRejected    CaseStatus = "credit-admin-rejected"
	CaseStatusCreditAdminReturned    CaseStatus = "credit-admin-returned"
	CaseStatusComplete               CaseStatus = "complete"
	CaseStatusAccountManagerRejected CaseStatus = "account-manager-rejected"
)

// Handoff records one completable workflow step with actor attribution.
// A rejected step keeps Completed=false but records who rejected it, so the
// pair (Completed, Actor) distinguishes untouched / completed / rejected.
type Handoff struct {
	Completed bool   `json:"completed"`
	Actor     string `gorm:"size:128" json:"actor"`
	Note      string `gorm:"type:text" json:"note"`
}

// Touched reports whether the step has ever been acted on
func (h Handoff) Touched() bool {
	return h.Completed || h.Actor != ""
}

type CaseRecord struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	AccountNumber    string     `gorm:"size:32;not null;index:idx_case_records_account_number" json:"account_number"`
	CIF              string     `gorm:"size:32" json:"cif,omitempty"`
	CustomerName     string     `gorm:"size:255;not null" json:"customer_name"`
	DisbursedAmount  float64    `gorm:"index:idx_case_records_disbursed_amount" json:"disbursed_amount"`
	Currency         string     `gorm:"size:8;index:idx_case_records_currency" json:"currency"`
	DisbursementDate *time.Time `gorm:"index:idx_case_records_disbursement_date" json:"disbursement_date"`
	Status           CaseStatus `gorm:"type:varchar(32);not null;default:new;index:idx_case_records_status" json:"status"`
	Department       string     `gorm:"size:128" json:"department"`
	AccountManager   string     `gorm:"size:128" json:"account_manager"` // Loose reference by name, not a foreign key
	ContractNo       string     `gorm:"size:64" json:"contract_no"`
	Note             string     `gorm:"type:text" json:"note"`

	// Workflow steps, one per handoff in the chain
	// board-director -> credit-admin -> account-manager
	Handover        Handoff `gorm:"embedded;embeddedPrefix:handover_" json:"handover"`
	Receipt         Handoff `gorm:"embedded;embeddedPrefix:receipt_" json:"receipt"`
	Return          Handoff `gorm:"embedded;embeddedPrefix:return_" json:"return"`
	DocumentReceipt Handoff `gorm:"embedded;embeddedPrefix:document_receipt_" json:"document_receipt"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_case_records_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CaseRecord) TableName() string {
	return "case_records"
}

// DeriveStatus recomputes the workflow status from the four handoff steps.
// The step flags are authoritative; the status column only caches this value
// for display and filtering. Later steps win over earlier ones.
func (c *CaseRecord) DeriveStatus() CaseStatus {
	switch {
	case c.DocumentReceipt.Completed:
		return CaseStatusComplete
	case c.DocumentReceipt.Touched():
		return CaseStatusAccountManagerRejected
	case c.Return.Completed:
		return CaseStatusCreditAdminReturned
	case c.Receipt.Completed:
		return CaseStatusCreditAdminReceived
	case c.Receipt.Touched():
		return CaseStatusCreditAdminRejected
	case c.Handover.Completed:
		return CaseStatusInProgress
	default:
		return CaseStatusNew
	}
}

// PendingCreditAdminIntake reports whether the record sits in the
// credit-admin inbox: handed over and the receipt step not yet acted on.
// A rejected intake leaves the inbox until the branch hands over again,
// which resets the receipt step. Derived purely from the step flags,
// independent of the status string.
func (c *CaseRecord) PendingCreditAdminIntake() bool {
	return c.Handover.Completed && !c.Receipt.Touched()
}

// CaseRecordFilter represents filter criteria for case record queries.
// String fields match as case-insensitive substrings; Search matches any of
// account number, customer name, account manager, or department.
type CaseRecordFilter struct {
	ID               *uint
	Status           *CaseStatus
	AccountNumber    *string
	CustomerName     *string
	AccountManager   *string
	Department       *string
	Currency         *string
	Search           *string
	DisbursedAfter   *time.Time
	DisbursedBefore  *time.Time
	HasDisbursement  *bool
	PendingIntake    *bool
}
