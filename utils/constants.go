package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// OTPExpiry is the time-to-live for registration OTP codes (10 minutes)
	OTPExpiry = 10 * time.Minute

	// AccessTokenTTLSeconds is AccessTokenTTL expressed in seconds for API responses
	AccessTokenTTLSeconds = int(AccessTokenTTL / time.Second)
)

// Pagination constants
const (
	// DefaultPageSize is the page size used when the client does not send one
	DefaultPageSize = 10

	// MaxPageSize caps the page size a client may request
	MaxPageSize = 100
)

// Cache keys (namespaced with the configured redis prefix)
const (
	// DashboardCacheKey stores the rendered financial dashboard payload
	DashboardCacheKey = "dashboard:financial"
)

// Reporting constants
const (
	// MonthlySeriesLimit is the number of most recent month buckets in the dashboard series
	MonthlySeriesLimit = 6

	// TopAccountsLimit is the number of records in the top-accounts projection
	TopAccountsLimit = 5

	// ExportDetailLimit caps the detail rows included in a report export
	ExportDetailLimit = 100
)
