package businessflow

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/repository"
	"github.com/Thien222/ManageCustomerInBank-BE/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fakeReportRepository serves canned aggregates so the flow math can be
// checked without a database
type fakeReportRepository struct {
	monthly    []repository.MonthlyBucket
	currencies []repository.CurrencyBucket
	top        []repository.AccountBucket
	completion repository.CompletionStats
	details    []*models.CaseRecord
}

func (f *fakeReportRepository) MonthlySeries(ctx context.Context, from, to *time.Time, months int) ([]repository.MonthlyBucket, error) {
	return f.monthly, nil
}

func (f *fakeReportRepository) CurrencyDistribution(ctx context.Context, from, to *time.Time) ([]repository.CurrencyBucket, error) {
	return f.currencies, nil
}

func (f *fakeReportRepository) TopAccounts(ctx context.Context, from, to *time.Time, limit int) ([]repository.AccountBucket, error) {
	return f.top, nil
}

func (f *fakeReportRepository) CompletionStats(ctx context.Context, from, to *time.Time) (*repository.CompletionStats, error) {
	stats := f.completion
	return &stats, nil
}

func (f *fakeReportRepository) RecentDetailed(ctx context.Context, from, to *time.Time, limit int) ([]*models.CaseRecord, error) {
	return f.details, nil
}

func newFakeReportRepo() *fakeReportRepository {
	disbursed := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	return &fakeReportRepository{
		// Newest first, as the database query returns them
		monthly: []repository.MonthlyBucket{
			{Year: 2024, Month: 2, TotalAmount: 500_000_000, CaseCount: 2},
			{Year: 2024, Month: 1, TotalAmount: 300_000_000, CaseCount: 3},
			{Year: 2023, Month: 12, TotalAmount: 200_000_000, CaseCount: 1},
		},
		currencies: []repository.CurrencyBucket{
			{Currency: "VND", TotalAmount: 750_000_000, CaseCount: 5},
			{Currency: "USD", TotalAmount: 250_000_000, CaseCount: 1},
		},
		// Two disbursements of the same account stay separate entries
		top: []repository.AccountBucket{
			{AccountNumber: "ACC001", CustomerName: "Công ty A", DisbursedAmount: 400_000_000},
			{AccountNumber: "ACC001", CustomerName: "Công ty A", DisbursedAmount: 100_000_000},
		},
		completion: repository.CompletionStats{Total: 6, Completed: 3},
		details: []*models.CaseRecord{
			{
				ID:               1,
				AccountNumber:    "ACC001",
				CustomerName:     "Công ty A",
				DisbursedAmount:  400_000_000,
				Currency:         "VND",
				DisbursementDate: &disbursed,
				Status:           models.CaseStatusComplete,
				Department:       "KHDN",
				AccountManager:   "qlkh_01",
			},
		},
	}
}

func TestDashboardAggregation(t *testing.T) {
	flow := NewReportFlow(newFakeReportRepo(), nil, nil)

	resp, err := flow.Dashboard(context.Background(), &dto.DashboardRequest{}, nil)
	require.NoError(t, err)

	// Series comes back oldest first with Vietnamese month labels
	require.Len(t, resp.MonthlySeries, 3)
	assert.Equal(t, "T12/2023", resp.MonthlySeries[0].Label)
	assert.Equal(t, "T1/2024", resp.MonthlySeries[1].Label)
	assert.Equal(t, "T2/2024", resp.MonthlySeries[2].Label)
	assert.Equal(t, 500_000_000.0, resp.MonthlySeries[2].TotalAmount)

	// Percentages round to whole percent
	require.Len(t, resp.CurrencyShares, 2)
	assert.Equal(t, 75.0, resp.CurrencyShares[0].Percentage)
	assert.Equal(t, 25.0, resp.CurrencyShares[1].Percentage)

	// Top disbursements are per record, never merged by account
	require.Len(t, resp.TopAccounts, 2)
	assert.Equal(t, "ACC001", resp.TopAccounts[0].AccountNumber)
	assert.Equal(t, 400_000_000.0, resp.TopAccounts[0].DisbursedAmount)
	assert.Equal(t, 100_000_000.0, resp.TopAccounts[1].DisbursedAmount)

	assert.Equal(t, 1_000_000_000.0, resp.TotalDisbursed)
	assert.Equal(t, int64(6), resp.TotalCases)
	assert.Equal(t, int64(3), resp.CompletedCases)
	assert.Equal(t, 50.0, resp.CompletionRate)
	assert.False(t, resp.FromCache)
}

func TestDashboardEmptyData(t *testing.T) {
	flow := NewReportFlow(&fakeReportRepository{}, nil, nil)

	resp, err := flow.Dashboard(context.Background(), &dto.DashboardRequest{}, nil)
	require.NoError(t, err)

	assert.Empty(t, resp.MonthlySeries)
	assert.Empty(t, resp.CurrencyShares)
	assert.Equal(t, 0.0, resp.TotalDisbursed)
	assert.Equal(t, 0.0, resp.CompletionRate)
}

func TestDashboardRejectsInvertedWindow(t *testing.T) {
	flow := NewReportFlow(newFakeReportRepo(), nil, nil)

	req := &dto.DashboardRequest{
		From: utils.ToPtr("2024-03-01"),
		To:   utils.ToPtr("2024-01-01"),
	}
	_, err := flow.Dashboard(context.Background(), req, nil)
	assert.True(t, IsStartDateAfterEndDate(err))
}

func TestParseReportWindow(t *testing.T) {
	from, to, err := parseReportWindow(utils.ToPtr("2024-01-01"), utils.ToPtr("2024-01-31"))
	require.NoError(t, err)
	require.NotNil(t, from)
	require.NotNil(t, to)

	// The end date covers the whole day
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, 2024, to.Year())
	assert.Equal(t, time.January, to.Month())
	assert.Equal(t, 31, to.Day())
	assert.Equal(t, 23, to.Hour())

	// Same day window is allowed
	_, _, err = parseReportWindow(utils.ToPtr("2024-01-15"), utils.ToPtr("2024-01-15"))
	assert.NoError(t, err)

	// Missing bounds are fine
	from, to, err = parseReportWindow(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)

	_, _, err = parseReportWindow(utils.ToPtr("not-a-date"), nil)
	assert.Error(t, err)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	flow := NewReportFlow(newFakeReportRepo(), nil, nil)

	_, err := flow.Export(context.Background(), &dto.ExportRequest{Format: "pdf"}, nil)
	assert.True(t, IsUnsupportedExportFormat(err))
}

func TestExportJSON(t *testing.T) {
	flow := NewReportFlow(newFakeReportRepo(), nil, nil)

	result, err := flow.Export(context.Background(), &dto.ExportRequest{Format: "json"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", result.Format)
	assert.Equal(t, "application/json", result.ContentType)
	require.NotNil(t, result.JSON)
	assert.Contains(t, result.JSON, "dashboard")
	assert.Contains(t, result.JSON, "details")
	assert.Empty(t, result.Content)
}

func TestExportExcel(t *testing.T) {
	flow := NewReportFlow(newFakeReportRepo(), nil, nil)

	// Empty format defaults to excel
	result, err := flow.Export(context.Background(), &dto.ExportRequest{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "excel", result.Format)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.ContentType)
	assert.Contains(t, result.FileName, "Bao-cao-tai-chinh-")
	assert.Contains(t, result.FileName, ".xlsx")
	require.NotEmpty(t, result.Content)

	f, err := excelize.OpenReader(bytes.NewReader(result.Content))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Tổng quan")
	assert.Contains(t, sheets, "Chi tiết hồ sơ")
	assert.Contains(t, sheets, "Thống kê theo loại tiền")

	value, err := f.GetCellValue("Chi tiết hồ sơ", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ACC001", value)

	date, err := f.GetCellValue("Chi tiết hồ sơ", "E2")
	require.NoError(t, err)
	assert.Equal(t, "10/02/2024", date)

	currency, err := f.GetCellValue("Thống kê theo loại tiền", "A2")
	require.NoError(t, err)
	assert.Equal(t, "VND", currency)
}
