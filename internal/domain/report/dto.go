package report

import (
	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
	"github.com/attendx/attendx-backend-go/internal/pkg/validator"
)

// ========================================
// REPORT DTOs
// ========================================

// MonthlySummary aggregates one user's records over a calendar month.
// Absent days are inferred by subtraction: days elapsed in the month minus
// distinct days holding a record, floored at zero. Weekends and holidays are
// not excluded; the count is a heuristic, not a payroll figure.
type MonthlySummary struct {
	TotalHours float64 `json:"totalHours"`
	Present    int     `json:"present"`
	Late       int     `json:"late"`
	HalfDay    int     `json:"halfDay"`
	Absent     int     `json:"absent"`
}

// TrendPoint is one day of a day-indexed count series.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DepartmentCount is a present/absent rollup for one department.
type DepartmentCount struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

// EmployeeStatus is a display row in the today-status lists.
type EmployeeStatus struct {
	Name       string            `json:"name"`
	Department string            `json:"department"`
	Status     attendance.Status `json:"status,omitempty"`
}

// TodayStatus splits today's population into present, late and absent lists.
// Late rows also appear in the present list, mirroring how the dashboards
// consume them.
type TodayStatus struct {
	Present []EmployeeStatus `json:"present"`
	Late    []EmployeeStatus `json:"late"`
	Absent  []EmployeeStatus `json:"absent"`
}

// ManagerSummary is the manager dashboard payload.
type ManagerSummary struct {
	TotalEmployees int64                      `json:"totalEmployees"`
	PresentToday   int64                      `json:"presentToday"`
	AbsentToday    int64                      `json:"absentToday"`
	LateEmployees  []EmployeeStatus           `json:"lateEmployees"`
	Trend          []TrendPoint               `json:"trend"`
	LateTrend      []TrendPoint               `json:"lateTrend"`
	Departments    map[string]DepartmentCount `json:"departments"`
}

// MySummary is the employee's own summary: current month plus the rolling
// seven-day window.
type MySummary struct {
	MonthlySummary
	Last7 []attendance.RecordResponse `json:"last7"`
}

// EmployeeDashboard is the employee dashboard payload.
type EmployeeDashboard struct {
	TodayRecord *attendance.RecordResponse  `json:"todayRecord"`
	MonthlySummary
	Last7 []attendance.RecordResponse `json:"last7"`
}

// ExportFilter bounds the CSV export.
type ExportFilter struct {
	Start  *string
	End    *string
	Status *attendance.Status
}

func (f *ExportFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Start != nil && *f.Start != "" {
		if _, ok := validator.IsValidDate(*f.Start); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start",
				Message: "start must be in YYYY-MM-DD format",
			})
		}
	}
	if f.End != nil && *f.End != "" {
		if _, ok := validator.IsValidDate(*f.End); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end",
				Message: "end must be in YYYY-MM-DD format",
			})
		}
	}
	if f.Status != nil && *f.Status != "" && !f.Status.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of present, late, half-day, absent",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
