package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	"github.com/Thien222/ManageCustomerInBank-BE/config"
	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/repository"
	"github.com/Thien222/ManageCustomerInBank-BE/utils"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
)

// ReportFlow builds the financial dashboard and report exports
type ReportFlow interface {
	Dashboard(ctx context.Context, req *dto.DashboardRequest, metadata *ClientMetadata) (*dto.DashboardResponse, error)
	Export(ctx context.Context, req *dto.ExportRequest, metadata *ClientMetadata) (*dto.ExportResult, error)
}

// ReportFlowImpl implements the reporting business flow
type ReportFlowImpl struct {
	reportRepo  repository.ReportRepository
	rc          *redis.Client
	cacheConfig *config.CacheConfig
}

// NewReportFlow creates a new report flow instance
func NewReportFlow(reportRepo repository.ReportRepository, rc *redis.Client, cacheConfig *config.CacheConfig) ReportFlow {
	return &ReportFlowImpl{
		reportRepo:  reportRepo,
		rc:          rc,
		cacheConfig: cacheConfig,
	}
}

// Dashboard aggregates the dashboard widgets. Uncustomized requests are
// served from the redis cache when available.
func (s *ReportFlowImpl) Dashboard(ctx context.Context, req *dto.DashboardRequest, metadata *ClientMetadata) (*dto.DashboardResponse, error) {
	from, to, err := parseReportWindow(req.From, req.To)
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_VALIDATION_FAILED", "Dashboard validation failed", err)
	}

	// Only the default window is cached; custom windows hit the database
	cacheable := from == nil && to == nil
	if cacheable {
		if cached := s.readCachedDashboard(ctx); cached != nil {
			cached.FromCache = true
			return cached, nil
		}
	}

	resp, err := s.buildDashboard(ctx, from, to)
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Dashboard aggregation failed", err)
	}

	if cacheable {
		s.writeCachedDashboard(ctx, resp)
	}

	return resp, nil
}

func (s *ReportFlowImpl) buildDashboard(ctx context.Context, from, to *time.Time) (*dto.DashboardResponse, error) {
	monthly, err := s.reportRepo.MonthlySeries(ctx, from, to, utils.MonthlySeriesLimit)
	if err != nil {
		return nil, err
	}

	currencies, err := s.reportRepo.CurrencyDistribution(ctx, from, to)
	if err != nil {
		return nil, err
	}

	top, err := s.reportRepo.TopAccounts(ctx, from, to, utils.TopAccountsLimit)
	if err != nil {
		return nil, err
	}

	completion, err := s.reportRepo.CompletionStats(ctx, from, to)
	if err != nil {
		return nil, err
	}

	// The query returns newest month first; the chart wants oldest first
	series := make([]dto.MonthlyPointDTO, 0, len(monthly))
	for i := len(monthly) - 1; i >= 0; i-- {
		b := monthly[i]
		series = append(series, dto.MonthlyPointDTO{
			Label:       fmt.Sprintf("T%d/%d", b.Month, b.Year),
			Year:        b.Year,
			Month:       b.Month,
			TotalAmount: b.TotalAmount,
			CaseCount:   b.CaseCount,
		})
	}

	var grandTotal float64
	for _, c := range currencies {
		grandTotal += c.TotalAmount
	}

	shares := make([]dto.CurrencyShareDTO, 0, len(currencies))
	for _, c := range currencies {
		pct := 0.0
		if grandTotal > 0 {
			pct = math.Round(c.TotalAmount / grandTotal * 100)
		}
		shares = append(shares, dto.CurrencyShareDTO{
			Currency:    c.Currency,
			TotalAmount: c.TotalAmount,
			CaseCount:   c.CaseCount,
			Percentage:  pct,
		})
	}

	topAccounts := make([]dto.TopAccountDTO, 0, len(top))
	for _, t := range top {
		topAccounts = append(topAccounts, dto.TopAccountDTO{
			AccountNumber:   t.AccountNumber,
			CustomerName:    t.CustomerName,
			DisbursedAmount: t.DisbursedAmount,
		})
	}

	completionRate := 0.0
	if completion.Total > 0 {
		completionRate = math.Round(float64(completion.Completed) / float64(completion.Total) * 100)
	}

	return &dto.DashboardResponse{
		Message:          "Dashboard retrieved",
		MonthlySeries:    series,
		CurrencyShares:   shares,
		TopAccounts:      topAccounts,
		TotalDisbursed:   grandTotal,
		TotalCases:       completion.Total,
		CompletedCases:   completion.Completed,
		CompletionRate:   completionRate,
		GeneratedAtLabel: utils.UTCNow().Format(time.RFC3339),
	}, nil
}

// Export renders the financial report as an excel workbook or a JSON payload
func (s *ReportFlowImpl) Export(ctx context.Context, req *dto.ExportRequest, metadata *ClientMetadata) (*dto.ExportResult, error) {
	format := req.Format
	if format == "" {
		format = "excel"
	}
	if format != "excel" && format != "json" {
		return nil, NewBusinessError("EXPORT_VALIDATION_FAILED", "Export validation failed", ErrUnsupportedExportFormat)
	}

	from, to, err := parseReportWindow(req.From, req.To)
	if err != nil {
		return nil, NewBusinessError("EXPORT_VALIDATION_FAILED", "Export validation failed", err)
	}

	dashboard, err := s.buildDashboard(ctx, from, to)
	if err != nil {
		return nil, NewBusinessError("EXPORT_FAILED", "Export failed", err)
	}

	details, err := s.reportRepo.RecentDetailed(ctx, from, to, utils.ExportDetailLimit)
	if err != nil {
		return nil, NewBusinessError("EXPORT_FAILED", "Export failed", err)
	}

	if format == "json" {
		detailDTOs := make([]dto.CaseRecordDTO, 0, len(details))
		for _, d := range details {
			detailDTOs = append(detailDTOs, ToCaseRecordDTO(*d))
		}
		return &dto.ExportResult{
			Format:      "json",
			ContentType: "application/json",
			JSON: map[string]any{
				"dashboard": dashboard,
				"details":   detailDTOs,
			},
		}, nil
	}

	content, err := s.renderExcel(dashboard, details)
	if err != nil {
		return nil, NewBusinessError("EXPORT_FAILED", "Export failed", err)
	}

	return &dto.ExportResult{
		Format:      "excel",
		FileName:    fmt.Sprintf("Bao-cao-tai-chinh-%d.xlsx", utils.UTCNow().Unix()),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

// Sheet names of the exported workbook
const (
	sheetOverview = "Tổng quan"
	sheetDetails  = "Chi tiết hồ sơ"
	sheetCurrency = "Thống kê theo loại tiền"
)

func (s *ReportFlowImpl) renderExcel(dashboard *dto.DashboardResponse, details []*models.CaseRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F81BD"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// Overview sheet replaces the default one
	if err := f.SetSheetName(f.GetSheetName(0), sheetOverview); err != nil {
		return nil, err
	}

	overviewHeaders := []string{"Chỉ số", "Giá trị"}
	for i, h := range overviewHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetOverview, cell, h)
	}
	f.SetCellStyle(sheetOverview, "A1", "B1", headerStyle)

	overviewRows := [][]any{
		{"Tổng số tiền giải ngân", dashboard.TotalDisbursed},
		{"Tổng số hồ sơ", dashboard.TotalCases},
		{"Hồ sơ hoàn thành", dashboard.CompletedCases},
		{"Tỷ lệ hoàn thành (%)", dashboard.CompletionRate},
	}
	for i, row := range overviewRows {
		f.SetCellValue(sheetOverview, fmt.Sprintf("A%d", i+2), row[0])
		f.SetCellValue(sheetOverview, fmt.Sprintf("B%d", i+2), row[1])
	}

	// Monthly series appended below the summary block
	seriesStart := len(overviewRows) + 3
	f.SetCellValue(sheetOverview, fmt.Sprintf("A%d", seriesStart), "Tháng")
	f.SetCellValue(sheetOverview, fmt.Sprintf("B%d", seriesStart), "Số tiền giải ngân")
	f.SetCellStyle(sheetOverview, fmt.Sprintf("A%d", seriesStart), fmt.Sprintf("B%d", seriesStart), headerStyle)
	for i, p := range dashboard.MonthlySeries {
		f.SetCellValue(sheetOverview, fmt.Sprintf("A%d", seriesStart+1+i), p.Label)
		f.SetCellValue(sheetOverview, fmt.Sprintf("B%d", seriesStart+1+i), p.TotalAmount)
	}

	// Detail sheet
	if _, err := f.NewSheet(sheetDetails); err != nil {
		return nil, err
	}
	detailHeaders := []string{"Số tài khoản", "Tên khách hàng", "Số tiền giải ngân", "Loại tiền", "Ngày giải ngân", "Trạng thái", "Phòng", "QLKH"}
	for i, h := range detailHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetDetails, cell, h)
	}
	lastDetailCol, _ := excelize.CoordinatesToCellName(len(detailHeaders), 1)
	f.SetCellStyle(sheetDetails, "A1", lastDetailCol, headerStyle)
	for i, d := range details {
		row := i + 2
		disbursed := ""
		if d.DisbursementDate != nil {
			disbursed = d.DisbursementDate.Format("02/01/2006")
		}
		f.SetCellValue(sheetDetails, fmt.Sprintf("A%d", row), d.AccountNumber)
		f.SetCellValue(sheetDetails, fmt.Sprintf("B%d", row), d.CustomerName)
		f.SetCellValue(sheetDetails, fmt.Sprintf("C%d", row), d.DisbursedAmount)
		f.SetCellValue(sheetDetails, fmt.Sprintf("D%d", row), d.Currency)
		f.SetCellValue(sheetDetails, fmt.Sprintf("E%d", row), disbursed)
		f.SetCellValue(sheetDetails, fmt.Sprintf("F%d", row), string(d.Status))
		f.SetCellValue(sheetDetails, fmt.Sprintf("G%d", row), d.Department)
		f.SetCellValue(sheetDetails, fmt.Sprintf("H%d", row), d.AccountManager)
	}

	// Currency sheet
	if _, err := f.NewSheet(sheetCurrency); err != nil {
		return nil, err
	}
	currencyHeaders := []string{"Loại tiền", "Tổng số tiền", "Số hồ sơ", "Tỷ lệ (%)"}
	for i, h := range currencyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetCurrency, cell, h)
	}
	lastCurrencyCol, _ := excelize.CoordinatesToCellName(len(currencyHeaders), 1)
	f.SetCellStyle(sheetCurrency, "A1", lastCurrencyCol, headerStyle)
	for i, c := range dashboard.CurrencyShares {
		row := i + 2
		f.SetCellValue(sheetCurrency, fmt.Sprintf("A%d", row), c.Currency)
		f.SetCellValue(sheetCurrency, fmt.Sprintf("B%d", row), c.TotalAmount)
		f.SetCellValue(sheetCurrency, fmt.Sprintf("C%d", row), c.CaseCount)
		f.SetCellValue(sheetCurrency, fmt.Sprintf("D%d", row), c.Percentage)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// readCachedDashboard returns the cached default dashboard, or nil
func (s *ReportFlowImpl) readCachedDashboard(ctx context.Context) *dto.DashboardResponse {
	if s.rc == nil || s.cacheConfig == nil || !s.cacheConfig.Enabled {
		return nil
	}
	key := redisKey(*s.cacheConfig, utils.DashboardCacheKey)
	bs, err := s.rc.Get(ctx, key).Bytes()
	if err != nil || len(bs) == 0 {
		return nil
	}
	var out dto.DashboardResponse
	if err := json.Unmarshal(bs, &out); err != nil {
		return nil
	}
	return &out
}

// writeCachedDashboard stores the default dashboard with the configured TTL
func (s *ReportFlowImpl) writeCachedDashboard(ctx context.Context, resp *dto.DashboardResponse) {
	if s.rc == nil || s.cacheConfig == nil || !s.cacheConfig.Enabled {
		return
	}
	key := redisKey(*s.cacheConfig, utils.DashboardCacheKey)
	bs, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rc.Set(ctx, key, bs, s.cacheConfig.DashboardTTL).Err(); err != nil {
		log.Printf("failed to cache dashboard: %v", err)
	}
}

// parseReportWindow parses the optional from/to dates and checks their order
func parseReportWindow(fromStr, toStr *string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromStr != nil && *fromStr != "" {
		t, err := time.Parse("2006-01-02", *fromStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from date: %w", err)
		}
		from = &t
	}
	if toStr != nil && *toStr != "" {
		t, err := time.Parse("2006-01-02", *toStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to date: %w", err)
		}
		// Include the whole end day
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, ErrStartDateAfterEndDate
	}
	return from, to, nil
}
