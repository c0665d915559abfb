// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AccountRepository defines operations for staff accounts
type AccountRepository interface {
	Repository[models.Account, models.AccountFilter]
	ByUsername(ctx context.Context, username string) (*models.Account, error)
	ByEmail(ctx context.Context, email string) (*models.Account, error)
	ByUsernameOrEmail(ctx context.Context, identifier string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id uint) error
}

// CaseRecordRepository defines operations for loan disbursement case records
type CaseRecordRepository interface {
	Repository[models.CaseRecord, models.CaseRecordFilter]
	Update(ctx context.Context, record *models.CaseRecord) error
	Delete(ctx context.Context, id uint) error
	ListPendingCreditAdminIntake(ctx context.Context, limit, offset int) ([]*models.CaseRecord, error)
	CountPendingCreditAdminIntake(ctx context.Context) (int64, error)
	// ApplyTransition performs a conditional update guarded by the allowed
	// source statuses and reports how many rows were touched. Zero rows means
	// the record is missing or another actor moved it first.
	ApplyTransition(ctx context.Context, id uint, allowedFrom []models.CaseStatus, updates map[string]any) (int64, error)
}

// MonthlyBucket is one month of aggregated disbursement data
type MonthlyBucket struct {
	Year        int
	Month       int
	TotalAmount float64
	CaseCount   int64
}

// CurrencyBucket is the aggregate for one currency
type CurrencyBucket struct {
	Currency    string
	TotalAmount float64
	CaseCount   int64
}

// AccountBucket is one record of the top disbursements projection
type AccountBucket struct {
	AccountNumber   string
	CustomerName    string
	DisbursedAmount float64
}

// CompletionStats summarizes workflow completion over a record set
type CompletionStats struct {
	Total     int64
	Completed int64
}

// ReportRepository defines aggregation queries for the financial dashboard and exports
type ReportRepository interface {
	MonthlySeries(ctx context.Context, from, to *time.Time, months int) ([]MonthlyBucket, error)
	CurrencyDistribution(ctx context.Context, from, to *time.Time) ([]CurrencyBucket, error)
	TopAccounts(ctx context.Context, from, to *time.Time, limit int) ([]AccountBucket, error)
	CompletionStats(ctx context.Context, from, to *time.Time) (*CompletionStats, error)
	RecentDetailed(ctx context.Context, from, to *time.Time, limit int) ([]*models.CaseRecord, error)
}
