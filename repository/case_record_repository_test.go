package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/repository"
	apptesting "github.com/Thien222/ManageCustomerInBank-BE/testing"
	"github.com/Thien222/ManageCustomerInBank-BE/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepoTest(t *testing.T) (*apptesting.TestDB, *apptesting.TestFixtures) {
	t.Helper()

	testDB, err := apptesting.SetupTestDB()
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("teardown warning: %v", err)
		}
	})

	return testDB, apptesting.NewTestFixtures(testDB)
}

func TestApplyTransitionGuardsStatus(t *testing.T) {
	testDB, fixtures := setupRepoTest(t)
	repo := repository.NewCaseRecordRepository(testDB.DB)
	ctx := context.Background()

	record, err := fixtures.CreateTestCaseRecord(models.CaseStatusNew, 100_000_000, "VND")
	require.NoError(t, err)

	updates := map[string]any{
		"handover_completed": true,
		"handover_actor":     "gd_01",
		"status":             models.CaseStatusInProgress,
		"updated_at":         utils.UTCNow(),
	}

	affected, err := repo.ApplyTransition(ctx, record.ID,
		[]models.CaseStatus{models.CaseStatusNew, models.CaseStatusCreditAdminRejected}, updates)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	stored, err := repo.ByID(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.CaseStatusInProgress, stored.Status)
	assert.True(t, stored.Handover.Completed)
	assert.Equal(t, "gd_01", stored.Handover.Actor)

	// The record already moved, so the same guard matches nothing
	affected, err = repo.ApplyTransition(ctx, record.ID,
		[]models.CaseStatus{models.CaseStatusNew, models.CaseStatusCreditAdminRejected}, updates)
	require.NoError(t, err)
	assert.Zero(t, affected)

	// Unknown id also reports zero rows rather than an error
	affected, err = repo.ApplyTransition(ctx, 99999,
		[]models.CaseStatus{models.CaseStatusNew}, updates)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestPendingIntakeInbox(t *testing.T) {
	testDB, fixtures := setupRepoTest(t)
	repo := repository.NewCaseRecordRepository(testDB.DB)
	ctx := context.Background()

	_, err := fixtures.CreateTestCaseRecord(models.CaseStatusNew, 100_000_000, "VND")
	require.NoError(t, err)
	pending, err := fixtures.CreateTestCaseRecord(models.CaseStatusInProgress, 200_000_000, "VND")
	require.NoError(t, err)
	_, err = fixtures.CreateTestCaseRecord(models.CaseStatusCreditAdminRejected, 300_000_000, "VND")
	require.NoError(t, err)
	_, err = fixtures.CreateTestCaseRecord(models.CaseStatusCreditAdminReceived, 400_000_000, "USD")
	require.NoError(t, err)

	count, err := repo.CountPendingCreditAdminIntake(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	rows, err := repo.ListPendingCreditAdminIntake(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pending.ID, rows[0].ID)
}

func TestCaseRecordFilters(t *testing.T) {
	testDB, fixtures := setupRepoTest(t)
	repo := repository.NewCaseRecordRepository(testDB.DB)
	ctx := context.Background()

	vnd, err := fixtures.CreateTestCaseRecord(models.CaseStatusComplete, 500_000_000, "VND")
	require.NoError(t, err)
	_, err = fixtures.CreateTestCaseRecord(models.CaseStatusNew, 10_000, "USD")
	require.NoError(t, err)

	currency := "VND"
	rows, err := repo.ByFilter(ctx, models.CaseRecordFilter{Currency: &currency}, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, vnd.ID, rows[0].ID)

	status := models.CaseStatusComplete
	count, err := repo.Count(ctx, models.CaseRecordFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Search spans account number, customer name, manager and department
	search := vnd.AccountNumber
	rows, err = repo.ByFilter(ctx, models.CaseRecordFilter{Search: &search}, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, vnd.ID, rows[0].ID)

	missing := "no-such-record"
	exists, err := repo.Exists(ctx, models.CaseRecordFilter{Search: &missing})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWithTransactionRollsBack(t *testing.T) {
	testDB, _ := setupRepoTest(t)
	repo := repository.NewCaseRecordRepository(testDB.DB)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
		if err := repo.Save(txCtx, &models.CaseRecord{
			AccountNumber: "ACCTX1",
			CustomerName:  "Công ty C",
			Status:        models.CaseStatusNew,
		}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	count, err := repo.Count(ctx, models.CaseRecordFilter{})
	require.NoError(t, err)
	assert.Zero(t, count, "rolled back insert must not persist")
}
