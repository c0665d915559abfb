// Package testing provides test utilities and database setup for testing the case management system
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAccount creates an active, verified staff account with the given role
func (tf *TestFixtures) CreateTestAccount(role models.Role) (*models.Account, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	account := &models.Account{
		Username:      fmt.Sprintf("staff_%s", suffix),
		PasswordHash:  string(hashedPassword),
		Email:         fmt.Sprintf("staff.%s@bank.local", suffix),
		Role:          &role,
		IsActive:      true,
		EmailVerified: true,
	}

	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create test account: %w", err)
	}

	return account, nil
}

// CreateUnverifiedAccount creates a freshly registered account with a pending OTP
func (tf *TestFixtures) CreateUnverifiedAccount(otpCode string) (*models.Account, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	account := &models.Account{
		Username:      fmt.Sprintf("pending_%s", suffix),
		PasswordHash:  string(hashedPassword),
		Email:         fmt.Sprintf("pending.%s@bank.local", suffix),
		IsActive:      false,
		EmailVerified: false,
		OTPCode:       &otpCode,
		OTPExpiresAt:  utils.UTCNowAddPtr(utils.OTPExpiry),
	}

	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create unverified account: %w", err)
	}

	return account, nil
}

// CreateTestCaseRecord creates a case record in the given status with a disbursement
func (tf *TestFixtures) CreateTestCaseRecord(status models.CaseStatus, amount float64, currency string) (*models.CaseRecord, error) {
	suffix := fmt.Sprintf("%06d", rand.Intn(900000)+100000)
	disbursed := time.Now().UTC().AddDate(0, 0, -rand.Intn(30))

	record := &models.CaseRecord{
		AccountNumber:    fmt.Sprintf("ACC%s", suffix),
		CIF:              fmt.Sprintf("CIF%s", suffix),
		CustomerName:     fmt.Sprintf("Khách hàng %s", suffix),
		DisbursedAmount:  amount,
		Currency:         currency,
		DisbursementDate: &disbursed,
		Status:           status,
		Department:       "Phòng khách hàng doanh nghiệp",
		AccountManager:   fmt.Sprintf("qlkh_%s", suffix),
		ContractNo:       fmt.Sprintf("HD-%s", suffix),
	}
	applyWorkflowFlags(record)

	if err := tf.DB.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create test case record: %w", err)
	}

	return record, nil
}

// applyWorkflowFlags backfills the handoff steps so they stay consistent with
// the requested status
func applyWorkflowFlags(record *models.CaseRecord) {
	switch record.Status {
	case models.CaseStatusNew:
	case models.CaseStatusInProgress:
		record.Handover = models.Handoff{Completed: true, Actor: "gd_test"}
	case models.CaseStatusCreditAdminRejected:
		record.Handover = models.Handoff{Completed: true, Actor: "gd_test"}
		record.Receipt = models.Handoff{Completed: false, Actor: "qttd_test", Note: "thiếu chứng từ"}
	case models.CaseStatusCreditAdminReceived:
		record.Handover = models.Handoff{Completed: true, Actor: "gd_test"}
		record.Receipt = models.Handoff{Completed: true, Actor: "qttd_test"}
	case models.CaseStatusCreditAdminReturned:
		record.Handover = models.Handoff{Completed: true, Actor: "gd_test"}
		record.Receipt = models.Handoff{Completed: true, Actor: "qttd_test"}
		record.Return = models.Handoff{Completed: true, Actor: "qttd_test"}
	case models.CaseStatusComplete:
		record.Handover = models.Handoff{Completed: true, Actor: "gd_test"}
		record.Receipt = models.Handoff{Completed: true, Actor: "qttd_test"}
		record.Return = models.Handoff{Completed: true, Actor: "qttd_test"}
		record.DocumentReceipt = models.Handoff{Completed: true, Actor: "qlkh_test"}
	case models.CaseStatusAccountManagerRejected:
		record.Handover = models.Handoff{Completed: true, Actor: "gd_test"}
		record.Receipt = models.Handoff{Completed: true, Actor: "qttd_test"}
		record.Return = models.Handoff{Completed: true, Actor: "qttd_test"}
		record.DocumentReceipt = models.Handoff{Completed: false, Actor: "qlkh_test", Note: "hồ sơ không khớp"}
	}
}
