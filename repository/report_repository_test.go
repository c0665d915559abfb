package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecord(t *testing.T, repo repository.CaseRecordRepository, account string, amount float64, currency string, status models.CaseStatus, disbursed *time.Time) {
	t.Helper()
	err := repo.Save(context.Background(), &models.CaseRecord{
		AccountNumber:    account,
		CustomerName:     "Khách hàng " + account,
		DisbursedAmount:  amount,
		Currency:         currency,
		DisbursementDate: disbursed,
		Status:           status,
	})
	require.NoError(t, err)
}

func TestTopAccountsKeepsRecordsSeparate(t *testing.T) {
	testDB, _ := setupRepoTest(t)
	caseRepo := repository.NewCaseRecordRepository(testDB.DB)
	reportRepo := repository.NewReportRepository(testDB.DB)
	ctx := context.Background()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	seedRecord(t, caseRepo, "ACC100", 300_000_000, "VND", models.CaseStatusNew, &day)
	seedRecord(t, caseRepo, "ACC100", 200_000_000, "VND", models.CaseStatusNew, &day)
	seedRecord(t, caseRepo, "ACC200", 250_000_000, "VND", models.CaseStatusNew, &day)
	seedRecord(t, caseRepo, "ACC300", 50_000_000, "VND", models.CaseStatusNew, nil)

	top, err := reportRepo.TopAccounts(ctx, nil, nil, 5)
	require.NoError(t, err)

	// Two disbursements of ACC100 stay separate and the undisbursed record
	// never ranks
	require.Len(t, top, 3)
	assert.Equal(t, "ACC100", top[0].AccountNumber)
	assert.Equal(t, 300_000_000.0, top[0].DisbursedAmount)
	assert.Equal(t, "ACC200", top[1].AccountNumber)
	assert.Equal(t, 250_000_000.0, top[1].DisbursedAmount)
	assert.Equal(t, "ACC100", top[2].AccountNumber)
	assert.Equal(t, 200_000_000.0, top[2].DisbursedAmount)
}

func TestCompletionStatsCoverUndisbursedRecords(t *testing.T) {
	testDB, _ := setupRepoTest(t)
	caseRepo := repository.NewCaseRecordRepository(testDB.DB)
	reportRepo := repository.NewReportRepository(testDB.DB)
	ctx := context.Background()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	seedRecord(t, caseRepo, "ACC100", 300_000_000, "VND", models.CaseStatusComplete, &day)
	seedRecord(t, caseRepo, "ACC200", 0, "VND", models.CaseStatusNew, nil)

	stats, err := reportRepo.CompletionStats(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Completed)
}

func TestCurrencyDistributionCoversUndisbursedRecords(t *testing.T) {
	testDB, _ := setupRepoTest(t)
	caseRepo := repository.NewCaseRecordRepository(testDB.DB)
	reportRepo := repository.NewReportRepository(testDB.DB)
	ctx := context.Background()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	seedRecord(t, caseRepo, "ACC100", 300_000_000, "VND", models.CaseStatusNew, &day)
	seedRecord(t, caseRepo, "ACC200", 100_000_000, "VND", models.CaseStatusNew, nil)
	seedRecord(t, caseRepo, "ACC300", 50_000_000, "USD", models.CaseStatusNew, nil)
	seedRecord(t, caseRepo, "ACC400", 10_000_000, "", models.CaseStatusNew, nil)

	buckets, err := reportRepo.CurrencyDistribution(ctx, nil, nil)
	require.NoError(t, err)

	// Undisbursed records count, records without a currency do not
	require.Len(t, buckets, 2)
	assert.Equal(t, "VND", buckets[0].Currency)
	assert.Equal(t, 400_000_000.0, buckets[0].TotalAmount)
	assert.Equal(t, int64(2), buckets[0].CaseCount)
	assert.Equal(t, "USD", buckets[1].Currency)
}
