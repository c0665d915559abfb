package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"gorm.io/gorm"
)

// ReportRepositoryImpl implements ReportRepository interface.
// The monthly series, top disbursements, and export details run over disbursed
// records only; currency and completion aggregates cover every record. All
// queries respect the optional [from, to] date window.
type ReportRepositoryImpl struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

func (r *ReportRepositoryImpl) session(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// disbursedScope restricts a query to disbursed records within the window
func disbursedScope(query *gorm.DB, from, to *time.Time) *gorm.DB {
	query = query.Where("disbursement_date IS NOT NULL")
	return windowScope(query, from, to)
}

// windowScope applies only the optional date bounds. Records with no
// disbursement date pass an unbounded window.
func windowScope(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("disbursement_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("disbursement_date <= ?", *to)
	}
	return query
}

// MonthlySeries returns per-month disbursement totals for the most recent
// months with data, newest first. Months with no disbursements produce no
// bucket.
func (r *ReportRepositoryImpl) MonthlySeries(ctx context.Context, from, to *time.Time, months int) ([]MonthlyBucket, error) {
	db := r.session(ctx)

	query := db.Model(&models.CaseRecord{}).
		Select(
			"EXTRACT(YEAR FROM disbursement_date)::int AS year, " +
				"EXTRACT(MONTH FROM disbursement_date)::int AS month, " +
				"COALESCE(SUM(disbursed_amount), 0) AS total_amount, " +
				"COUNT(*) AS case_count",
		)
	query = disbursedScope(query, from, to)
	query = query.
		Group("year, month").
		Order("year DESC, month DESC")
	if months > 0 {
		query = query.Limit(months)
	}

	var buckets []MonthlyBucket
	if err := query.Scan(&buckets).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly series: %w", err)
	}
	return buckets, nil
}

// CurrencyDistribution returns disbursement totals grouped by currency,
// largest total first. Records that never declared a currency are skipped.
func (r *ReportRepositoryImpl) CurrencyDistribution(ctx context.Context, from, to *time.Time) ([]CurrencyBucket, error) {
	db := r.session(ctx)

	query := db.Model(&models.CaseRecord{}).
		Select("currency, COALESCE(SUM(disbursed_amount), 0) AS total_amount, COUNT(*) AS case_count").
		Where("currency <> ''")
	query = windowScope(query, from, to)
	query = query.
		Group("currency").
		Order("total_amount DESC")

	var buckets []CurrencyBucket
	if err := query.Scan(&buckets).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate currency distribution: %w", err)
	}
	return buckets, nil
}

// TopAccounts returns the individual records with the largest disbursed
// amounts. Same-account records stay separate entries.
func (r *ReportRepositoryImpl) TopAccounts(ctx context.Context, from, to *time.Time, limit int) ([]AccountBucket, error) {
	db := r.session(ctx)

	query := db.Model(&models.CaseRecord{}).
		Select("account_number, customer_name, disbursed_amount")
	query = disbursedScope(query, from, to)
	query = query.Order("disbursed_amount DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var buckets []AccountBucket
	if err := query.Scan(&buckets).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate top accounts: %w", err)
	}
	return buckets, nil
}

// CompletionStats counts all records and how many reached the complete status
func (r *ReportRepositoryImpl) CompletionStats(ctx context.Context, from, to *time.Time) (*CompletionStats, error) {
	db := r.session(ctx)

	query := db.Model(&models.CaseRecord{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed",
			models.CaseStatusComplete,
		)
	query = windowScope(query, from, to)

	var stats CompletionStats
	if err := query.Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate completion stats: %w", err)
	}
	return &stats, nil
}

// RecentDetailed returns the most recently disbursed records for export detail rows
func (r *ReportRepositoryImpl) RecentDetailed(ctx context.Context, from, to *time.Time, limit int) ([]*models.CaseRecord, error) {
	db := r.session(ctx)

	query := db.Model(&models.CaseRecord{})
	query = disbursedScope(query, from, to)
	query = query.Order("disbursement_date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []*models.CaseRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent disbursed records: %w", err)
	}
	return rows, nil
}
