package businessflow_test

import (
	"context"
	"testing"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	businessflow "github.com/Thien222/ManageCustomerInBank-BE/business_flow"
	"github.com/Thien222/ManageCustomerInBank-BE/config"
	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/repository"
	apptesting "github.com/Thien222/ManageCustomerInBank-BE/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const bootstrapAdminUsername = "sysadmin"

func setupAdminFlowTest(t *testing.T) (businessflow.AdminAccountFlow, *apptesting.TestFixtures, repository.AccountRepository) {
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

	accountRepo := repository.NewAccountRepository(testDB.DB)
	ctx := context.Background()

	adminCfg := config.AdminConfig{
		Username: bootstrapAdminUsername,
		Email:    "sysadmin@bank.local",
		Password: "AdminPass123!",
	}
	require.NoError(t, businessflow.EnsureDefaultAdmin(ctx, accountRepo, adminCfg, bcrypt.MinCost, testDB.DB))

	flow := businessflow.NewAdminAccountFlow(accountRepo, bootstrapAdminUsername, bcrypt.MinCost, testDB.DB)
	return flow, apptesting.NewTestFixtures(testDB), accountRepo
}

func TestEnsureDefaultAdminIsIdempotent(t *testing.T) {
	_, _, accountRepo := setupAdminFlowTest(t)
	ctx := context.Background()

	admin, err := accountRepo.ByUsername(ctx, bootstrapAdminUsername)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.True(t, admin.IsActive)
	assert.True(t, admin.EmailVerified)
	require.NotNil(t, admin.Role)
	assert.Equal(t, models.RoleAdmin, *admin.Role)
}

func TestListAccountsExcludesBootstrapAdmin(t *testing.T) {
	flow, fixtures, _ := setupAdminFlowTest(t)
	ctx := context.Background()

	_, err := fixtures.CreateTestAccount(models.RoleAccountManager)
	require.NoError(t, err)
	creditAdmin, err := fixtures.CreateTestAccount(models.RoleCreditAdmin)
	require.NoError(t, err)
	pending, err := fixtures.CreateUnverifiedAccount("333333")
	require.NoError(t, err)

	resp, err := flow.ListAccounts(ctx, &dto.ListAccountsRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	for _, account := range resp.Accounts {
		assert.NotEqual(t, bootstrapAdminUsername, account.Username)
	}

	role := string(models.RoleCreditAdmin)
	resp, err = flow.ListAccounts(ctx, &dto.ListAccountsRequest{Role: &role}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Accounts, 1)
	assert.Equal(t, creditAdmin.Username, resp.Accounts[0].Username)

	// The approval queue shows accounts that still have no role
	pendingOnly := true
	resp, err = flow.ListAccounts(ctx, &dto.ListAccountsRequest{Pending: &pendingOnly}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Accounts, 1)
	assert.Equal(t, pending.Username, resp.Accounts[0].Username)

	bogus := "superuser"
	_, err = flow.ListAccounts(ctx, &dto.ListAccountsRequest{Role: &bogus}, nil)
	assert.True(t, businessflow.IsInvalidRole(err))
}

func TestGetAccount(t *testing.T) {
	flow, fixtures, accountRepo := setupAdminFlowTest(t)
	ctx := context.Background()

	account, err := fixtures.CreateTestAccount(models.RoleAccountManager)
	require.NoError(t, err)

	resp, err := flow.GetAccount(ctx, account.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, account.Username, resp.Account.Username)

	_, err = flow.GetAccount(ctx, 99999, nil)
	assert.True(t, businessflow.IsAccountNotFound(err))

	// The bootstrap admin is invisible even by id
	admin, err := accountRepo.ByUsername(ctx, bootstrapAdminUsername)
	require.NoError(t, err)
	_, err = flow.GetAccount(ctx, admin.ID, nil)
	assert.True(t, businessflow.IsAccountNotFound(err))
}

func TestCreateAccountDirectly(t *testing.T) {
	flow, fixtures, accountRepo := setupAdminFlowTest(t)
	ctx := context.Background()

	resp, err := flow.CreateAccount(ctx, &dto.CreateAccountRequest{
		Username: "directstaff",
		Email:    "directstaff@bank.local",
		Password: "SecurePass123!",
		Role:     string(models.RoleTransactionManager),
	}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Account.IsActive)
	assert.True(t, resp.Account.EmailVerified)

	stored, err := accountRepo.ByUsername(ctx, "directstaff")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.Role)
	assert.Equal(t, models.RoleTransactionManager, *stored.Role)
	assert.Nil(t, stored.OTPCode)

	existing, err := fixtures.CreateTestAccount(models.RoleCreditAdmin)
	require.NoError(t, err)
	_, err = flow.CreateAccount(ctx, &dto.CreateAccountRequest{
		Username: existing.Username,
		Email:    "another@bank.local",
		Password: "SecurePass123!",
		Role:     string(models.RoleCreditAdmin),
	}, nil)
	assert.True(t, businessflow.IsUsernameAlreadyExists(err))
}

func TestUpdateAccountGrantsRoleAndActivates(t *testing.T) {
	flow, fixtures, accountRepo := setupAdminFlowTest(t)
	ctx := context.Background()

	pending, err := fixtures.CreateUnverifiedAccount("444444")
	require.NoError(t, err)

	role := string(models.RoleBoardDirector)
	active := true
	resp, err := flow.UpdateAccount(ctx, pending.ID, &dto.UpdateAccountRequest{
		Role:     &role,
		IsActive: &active,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Account.Role)
	assert.Equal(t, role, *resp.Account.Role)
	assert.True(t, resp.Account.IsActive)

	stored, err := accountRepo.ByID(ctx, pending.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Role)
	assert.Equal(t, models.RoleBoardDirector, *stored.Role)
	assert.True(t, stored.IsActive)

	bogus := "superuser"
	_, err = flow.UpdateAccount(ctx, pending.ID, &dto.UpdateAccountRequest{Role: &bogus}, nil)
	assert.True(t, businessflow.IsInvalidRole(err))

	_, err = flow.UpdateAccount(ctx, 99999, &dto.UpdateAccountRequest{IsActive: &active}, nil)
	assert.True(t, businessflow.IsAccountNotFound(err))
}

func TestApproveAccountGrantsRoleAndActivates(t *testing.T) {
	flow, fixtures, accountRepo := setupAdminFlowTest(t)
	ctx := context.Background()

	pending, err := fixtures.CreateUnverifiedAccount("555555")
	require.NoError(t, err)

	// Approval carries only the role; activation is implied
	resp, err := flow.ApproveAccount(ctx, pending.ID, &dto.ApproveAccountRequest{
		Role: string(models.RoleAccountManager),
	}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Account.IsActive)

	stored, err := accountRepo.ByID(ctx, pending.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Role)
	assert.Equal(t, models.RoleAccountManager, *stored.Role)
	assert.True(t, stored.IsActive)
}

func TestApproveAccountRequiresKnownRole(t *testing.T) {
	flow, fixtures, accountRepo := setupAdminFlowTest(t)
	ctx := context.Background()

	pending, err := fixtures.CreateUnverifiedAccount("666666")
	require.NoError(t, err)

	_, err = flow.ApproveAccount(ctx, pending.ID, &dto.ApproveAccountRequest{}, nil)
	assert.True(t, businessflow.IsInvalidRole(err))

	_, err = flow.ApproveAccount(ctx, pending.ID, &dto.ApproveAccountRequest{Role: "superuser"}, nil)
	assert.True(t, businessflow.IsInvalidRole(err))

	// The failed approvals left the account untouched
	stored, err := accountRepo.ByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Role)
	assert.False(t, stored.IsActive)

	_, err = flow.ApproveAccount(ctx, 99999, &dto.ApproveAccountRequest{
		Role: string(models.RoleAccountManager),
	}, nil)
	assert.True(t, businessflow.IsAccountNotFound(err))
}

func TestBootstrapAdminIsProtected(t *testing.T) {
	flow, _, accountRepo := setupAdminFlowTest(t)
	ctx := context.Background()

	admin, err := accountRepo.ByUsername(ctx, bootstrapAdminUsername)
	require.NoError(t, err)
	require.NotNil(t, admin)

	inactive := false
	_, err = flow.UpdateAccount(ctx, admin.ID, &dto.UpdateAccountRequest{IsActive: &inactive}, nil)
	assert.True(t, businessflow.IsAdminAccountProtected(err))

	_, err = flow.ApproveAccount(ctx, admin.ID, &dto.ApproveAccountRequest{
		Role: string(models.RoleAdmin),
	}, nil)
	assert.True(t, businessflow.IsAdminAccountProtected(err))

	_, err = flow.DeleteAccount(ctx, admin.ID, nil)
	assert.True(t, businessflow.IsAdminAccountProtected(err))
}

func TestDeleteAccount(t *testing.T) {
	flow, fixtures, accountRepo := setupAdminFlowTest(t)
	ctx := context.Background()

	account, err := fixtures.CreateTestAccount(models.RoleTransactionManager)
	require.NoError(t, err)

	_, err = flow.DeleteAccount(ctx, account.ID, nil)
	require.NoError(t, err)

	stored, err := accountRepo.ByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	_, err = flow.DeleteAccount(ctx, account.ID, nil)
	assert.True(t, businessflow.IsAccountNotFound(err))
}
