package repository

import (
	"context"
	"fmt"

	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"gorm.io/gorm"
)

// CaseRecordRepositoryImpl implements CaseRecordRepository interface
type CaseRecordRepositoryImpl struct {
	*BaseRepository[models.CaseRecord, models.CaseRecordFilter]
}

// NewCaseRecordRepository creates a new case record repository
func NewCaseRecordRepository(db *gorm.DB) CaseRecordRepository {
	return &CaseRecordRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CaseRecord, models.CaseRecordFilter](db),
	}
}

// Update persists all fields of an existing case record
func (r *CaseRecordRepositoryImpl) Update(ctx context.Context, record *models.CaseRecord) error {
	db, owned, err := r.writeSession(ctx)
	if err != nil {
		return err
	}

	if owned {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(record).Error
	if err != nil {
		return fmt.Errorf("failed to update case record: %w", err)
	}

	return nil
}

// Delete removes a case record by ID
func (r *CaseRecordRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db, owned, err := r.writeSession(ctx)
	if err != nil {
		return err
	}

	if owned {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Delete(&models.CaseRecord{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete case record: %w", err)
	}

	return nil
}

// pendingIntakeCondition selects records handed over by the branch whose
// receipt step has not been acted on. A rejection records the actor, so
// rejected records stay out of the inbox until the next handover resets
// the step.
const pendingIntakeCondition = "handover_completed = ? AND receipt_completed = ? AND receipt_actor = ''"

// ListPendingCreditAdminIntake lists the credit-admin inbox, oldest handover first
func (r *CaseRecordRepositoryImpl) ListPendingCreditAdminIntake(ctx context.Context, limit, offset int) ([]*models.CaseRecord, error) {
	db := r.session(ctx)

	query := db.Model(&models.CaseRecord{}).
		Where(pendingIntakeCondition, true, false).
		Order("updated_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.CaseRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending intake records: %w", err)
	}
	return rows, nil
}

// CountPendingCreditAdminIntake returns the size of the credit-admin inbox
func (r *CaseRecordRepositoryImpl) CountPendingCreditAdminIntake(ctx context.Context) (int64, error) {
	db := r.session(ctx)

	var count int64
	err := db.Model(&models.CaseRecord{}).
		Where(pendingIntakeCondition, true, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending intake records: %w", err)
	}
	return count, nil
}

// ApplyTransition updates a record only while its status is still one of the
// allowed source statuses. Concurrent actors race on the same row; the loser
// sees zero rows affected and must refetch to learn the final state.
func (r *CaseRecordRepositoryImpl) ApplyTransition(ctx context.Context, id uint, allowedFrom []models.CaseStatus, updates map[string]any) (int64, error) {
	db, owned, err := r.writeSession(ctx)
	if err != nil {
		return 0, err
	}

	if owned {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	result := db.Model(&models.CaseRecord{}).
		Where("id = ? AND status IN ?", id, allowedFrom).
		Updates(updates)
	if result.Error != nil {
		err = fmt.Errorf("failed to apply transition: %w", result.Error)
		return 0, err
	}

	return result.RowsAffected, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *CaseRecordRepositoryImpl) applyFilter(query *gorm.DB, filter models.CaseRecordFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.AccountNumber != nil {
		query = query.Where("account_number ILIKE ?", "%"+*filter.AccountNumber+"%")
	}
	if filter.CustomerName != nil {
		query = query.Where("customer_name ILIKE ?", "%"+*filter.CustomerName+"%")
	}
	if filter.AccountManager != nil {
		query = query.Where("account_manager ILIKE ?", "%"+*filter.AccountManager+"%")
	}
	if filter.Department != nil {
		query = query.Where("department ILIKE ?", "%"+*filter.Department+"%")
	}
	if filter.Currency != nil {
		query = query.Where("currency = ?", *filter.Currency)
	}
	if filter.Search != nil {
		pattern := "%" + *filter.Search + "%"
		query = query.Where(
			"account_number ILIKE ? OR customer_name ILIKE ? OR account_manager ILIKE ? OR department ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.DisbursedAfter != nil {
		query = query.Where("disbursement_date >= ?", *filter.DisbursedAfter)
	}
	if filter.DisbursedBefore != nil {
		query = query.Where("disbursement_date <= ?", *filter.DisbursedBefore)
	}
	if filter.HasDisbursement != nil {
		if *filter.HasDisbursement {
			query = query.Where("disbursement_date IS NOT NULL")
		} else {
			query = query.Where("disbursement_date IS NULL")
		}
	}
	if filter.PendingIntake != nil && *filter.PendingIntake {
		query = query.Where(pendingIntakeCondition, true, false)
	}
	return query
}

// ByFilter retrieves case records based on filter criteria
func (r *CaseRecordRepositoryImpl) ByFilter(ctx context.Context, filter models.CaseRecordFilter, orderBy string, limit, offset int) ([]*models.CaseRecord, error) {
	db := r.session(ctx)
	query := db.Model(&models.CaseRecord{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.CaseRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of case records matching filter
func (r *CaseRecordRepositoryImpl) Count(ctx context.Context, filter models.CaseRecordFilter) (int64, error) {
	db := r.session(ctx)
	query := db.Model(&models.CaseRecord{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any case record matches the filter
func (r *CaseRecordRepositoryImpl) Exists(ctx context.Context, filter models.CaseRecordFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
