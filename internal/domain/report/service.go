package report

import (
	"context"
	"time"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
)

// ReportService computes aggregations over stored records. Reads are not
// isolated from concurrent writes; a summary computed mid-write may
// undercount by the in-flight record.
type ReportService interface {
	// MonthlySummary aggregates one user's records for the month containing ref
	MonthlySummary(ctx context.Context, userID string, ref time.Time) (MonthlySummary, error)

	// RollingWindow returns the user's records over the last n calendar days,
	// oldest first; days without a record are simply missing from the slice
	RollingWindow(ctx context.Context, userID string, nDays int) ([]attendance.RecordResponse, error)

	// Trend returns per-day record counts and per-day late counts over the
	// last n calendar days, oldest first
	Trend(ctx context.Context, nDays int) (total []TrendPoint, late []TrendPoint, err error)

	// DepartmentRollup counts present/absent per department for a date
	DepartmentRollup(ctx context.Context, date time.Time) (map[string]DepartmentCount, error)

	// TodayStatus splits today's population into present/late/absent lists
	TodayStatus(ctx context.Context) (TodayStatus, error)

	// ManagerSummary assembles the manager dashboard payload
	ManagerSummary(ctx context.Context) (ManagerSummary, error)

	// MySummary assembles the employee's own current-month summary
	MySummary(ctx context.Context, userID string) (MySummary, error)

	// EmployeeDashboard assembles the employee dashboard payload
	EmployeeDashboard(ctx context.Context, userID string) (EmployeeDashboard, error)

	// Export renders the filtered record set as CSV
	Export(ctx context.Context, filter ExportFilter) ([]byte, error)
}
