package dto

// DashboardRequest represents the optional reporting window
type DashboardRequest struct {
	From *string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   *string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// MonthlyPointDTO is one month bucket in the dashboard series
type MonthlyPointDTO struct {
	Label       string  `json:"label"` // e.g. "T1/2024"
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	TotalAmount float64 `json:"total_amount"`
	CaseCount   int64   `json:"case_count"`
}

// CurrencyShareDTO is one currency slice of the distribution
type CurrencyShareDTO struct {
	Currency    string  `json:"currency"`
	TotalAmount float64 `json:"total_amount"`
	CaseCount   int64   `json:"case_count"`
	Percentage  float64 `json:"percentage"` // Rounded to whole percent
}

// TopAccountDTO is one entry of the top-disbursements projection
type TopAccountDTO struct {
	AccountNumber   string  `json:"account_number"`
	CustomerName    string  `json:"customer_name"`
	DisbursedAmount float64 `json:"disbursed_amount"`
}

// DashboardResponse aggregates all dashboard widgets in one payload
type DashboardResponse struct {
	Message          string             `json:"message"`
	MonthlySeries    []MonthlyPointDTO  `json:"monthly_series"`
	CurrencyShares   []CurrencyShareDTO `json:"currency_shares"`
	TopAccounts      []TopAccountDTO    `json:"top_accounts"`
	TotalDisbursed   float64            `json:"total_disbursed"`
	TotalCases       int64              `json:"total_cases"`
	CompletedCases   int64              `json:"completed_cases"`
	CompletionRate   float64            `json:"completion_rate"` // Rounded to whole percent
	FromCache        bool               `json:"from_cache"`
	GeneratedAtLabel string             `json:"generated_at"`
}

// ExportRequest represents the export endpoint parameters
type ExportRequest struct {
	Format string  `query:"format" validate:"omitempty,oneof=excel json"`
	From   *string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     *string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// ExportResult carries the rendered export back to the handler
type ExportResult struct {
	Format      string
	FileName    string
	ContentType string
	Content     []byte         // Excel bytes when Format is excel
	JSON        map[string]any // Payload when Format is json
}
