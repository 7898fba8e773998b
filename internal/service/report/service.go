package report

import (
	"context"
	"fmt"
	"time"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
	"github.com/attendx/attendx-backend-go/internal/domain/report"
	"github.com/attendx/attendx-backend-go/internal/domain/user"
	"github.com/attendx/attendx-backend-go/internal/pkg/csv"
)

const trendDays = 14

type ReportServiceImpl struct {
	attendance.RecordRepository
	user.UserRepository
	now func() time.Time
}

func NewReportService(recordRepo attendance.RecordRepository, userRepo user.UserRepository) report.ReportService {
	return &ReportServiceImpl{
		RecordRepository: recordRepo,
		UserRepository:   userRepo,
		now:              time.Now,
	}
}

// MonthlySummary implements report.ReportService. ref is the as-of instant:
// the month aggregated is ref's month and the days considered elapsed are
// ref's day-of-month. Absent days are inferred by subtraction; weekends and
// holidays are not excluded.
func (s *ReportServiceImpl) MonthlySummary(ctx context.Context, userID string, ref time.Time) (report.MonthlySummary, error) {
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	records, err := s.RecordRepository.ListByUserAndRange(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return report.MonthlySummary{}, fmt.Errorf("failed to list month records: %w", err)
	}

	var summary report.MonthlySummary
	daysWithRecord := make(map[string]struct{})
	for _, rec := range records {
		summary.TotalHours += rec.TotalHours
		daysWithRecord[rec.Date.Format("2006-01-02")] = struct{}{}
		switch rec.Status {
		case attendance.StatusPresent:
			summary.Present++
		case attendance.StatusLate:
			summary.Late++
		case attendance.StatusHalfDay:
			summary.HalfDay++
		}
	}

	summary.Absent = ref.Day() - len(daysWithRecord)
	if summary.Absent < 0 {
		summary.Absent = 0
	}

	return summary, nil
}

// RollingWindow implements report.ReportService.
func (s *ReportServiceImpl) RollingWindow(ctx context.Context, userID string, nDays int) ([]attendance.RecordResponse, error) {
	today := attendance.NormalizeDate(s.now())
	start := today.AddDate(0, 0, -(nDays - 1))

	records, err := s.RecordRepository.ListByUserAndRange(ctx, userID, start, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list window records: %w", err)
	}

	return attendance.NewRecordResponses(records), nil
}

// Trend implements report.ReportService.
func (s *ReportServiceImpl) Trend(ctx context.Context, nDays int) ([]report.TrendPoint, []report.TrendPoint, error) {
	today := attendance.NormalizeDate(s.now())

	total := make([]report.TrendPoint, 0, nDays)
	late := make([]report.TrendPoint, 0, nDays)
	for i := nDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		label := day.Format("Jan 2")

		count, err := s.RecordRepository.CountByDate(ctx, day)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to count records for %s: %w", label, err)
		}
		total = append(total, report.TrendPoint{Date: label, Count: count})

		lateCount, err := s.RecordRepository.CountByDateAndStatus(ctx, day, attendance.StatusLate)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to count late records for %s: %w", label, err)
		}
		late = append(late, report.TrendPoint{Date: label, Count: lateCount})
	}

	return total, late, nil
}

// DepartmentRollup implements report.ReportService. Employees without a
// department land in the General bucket.
func (s *ReportServiceImpl) DepartmentRollup(ctx context.Context, date time.Time) (map[string]report.DepartmentCount, error) {
	day := attendance.NormalizeDate(date)

	employees, err := s.UserRepository.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	records, err := s.RecordRepository.ListByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for date: %w", err)
	}

	recorded := make(map[string]struct{}, len(records))
	for _, rec := range records {
		recorded[rec.UserID] = struct{}{}
	}

	departments := make(map[string]report.DepartmentCount)
	for _, emp := range employees {
		dept := emp.DepartmentOrDefault()
		count := departments[dept]
		if _, ok := recorded[emp.ID]; ok {
			count.Present++
		} else {
			count.Absent++
		}
		departments[dept] = count
	}

	return departments, nil
}

// TodayStatus implements report.ReportService.
func (s *ReportServiceImpl) TodayStatus(ctx context.Context) (report.TodayStatus, error) {
	today := attendance.NormalizeDate(s.now())

	employees, err := s.UserRepository.ListEmployees(ctx)
	if err != nil {
		return report.TodayStatus{}, fmt.Errorf("failed to list employees: %w", err)
	}
	records, err := s.RecordRepository.ListByDate(ctx, today)
	if err != nil {
		return report.TodayStatus{}, fmt.Errorf("failed to list today's records: %w", err)
	}

	status := report.TodayStatus{
		Present: make([]report.EmployeeStatus, 0, len(records)),
		Late:    make([]report.EmployeeStatus, 0),
		Absent:  make([]report.EmployeeStatus, 0),
	}

	recorded := make(map[string]struct{}, len(records))
	for _, rec := range records {
		recorded[rec.UserID] = struct{}{}
		row := report.EmployeeStatus{
			Name:       derefOrEmpty(rec.UserName),
			Department: derefOrEmpty(rec.UserDepartment),
			Status:     rec.Status,
		}
		status.Present = append(status.Present, row)
		if rec.Status == attendance.StatusLate {
			status.Late = append(status.Late, row)
		}
	}

	for _, emp := range employees {
		if _, ok := recorded[emp.ID]; ok {
			continue
		}
		status.Absent = append(status.Absent, report.EmployeeStatus{
			Name:       emp.Name,
			Department: emp.Department,
		})
	}

	return status, nil
}

// ManagerSummary implements report.ReportService.
func (s *ReportServiceImpl) ManagerSummary(ctx context.Context) (report.ManagerSummary, error) {
	today := attendance.NormalizeDate(s.now())

	totalEmployees, err := s.UserRepository.CountEmployees(ctx)
	if err != nil {
		return report.ManagerSummary{}, fmt.Errorf("failed to count employees: %w", err)
	}

	records, err := s.RecordRepository.ListByDate(ctx, today)
	if err != nil {
		return report.ManagerSummary{}, fmt.Errorf("failed to list today's records: %w", err)
	}

	var presentToday int64
	lateEmployees := make([]report.EmployeeStatus, 0)
	for _, rec := range records {
		switch rec.Status {
		case attendance.StatusPresent, attendance.StatusLate, attendance.StatusHalfDay:
			presentToday++
		}
		if rec.Status == attendance.StatusLate {
			lateEmployees = append(lateEmployees, report.EmployeeStatus{
				Name:       derefOrEmpty(rec.UserName),
				Department: derefOrEmpty(rec.UserDepartment),
				Status:     rec.Status,
			})
		}
	}

	absentToday := totalEmployees - int64(len(records))
	if absentToday < 0 {
		absentToday = 0
	}

	trend, lateTrend, err := s.Trend(ctx, trendDays)
	if err != nil {
		return report.ManagerSummary{}, err
	}

	departments, err := s.DepartmentRollup(ctx, today)
	if err != nil {
		return report.ManagerSummary{}, err
	}

	return report.ManagerSummary{
		TotalEmployees: totalEmployees,
		PresentToday:   presentToday,
		AbsentToday:    absentToday,
		LateEmployees:  lateEmployees,
		Trend:          trend,
		LateTrend:      lateTrend,
		Departments:    departments,
	}, nil
}

// MySummary implements report.ReportService.
func (s *ReportServiceImpl) MySummary(ctx context.Context, userID string) (report.MySummary, error) {
	summary, err := s.MonthlySummary(ctx, userID, s.now())
	if err != nil {
		return report.MySummary{}, err
	}

	last7, err := s.RollingWindow(ctx, userID, 7)
	if err != nil {
		return report.MySummary{}, err
	}

	return report.MySummary{MonthlySummary: summary, Last7: last7}, nil
}

// EmployeeDashboard implements report.ReportService.
func (s *ReportServiceImpl) EmployeeDashboard(ctx context.Context, userID string) (report.EmployeeDashboard, error) {
	today := attendance.NormalizeDate(s.now())

	rec, err := s.RecordRepository.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return report.EmployeeDashboard{}, fmt.Errorf("failed to get today's record: %w", err)
	}
	var todayRecord *attendance.RecordResponse
	if rec != nil {
		resp := attendance.NewRecordResponse(*rec)
		todayRecord = &resp
	}

	summary, err := s.MonthlySummary(ctx, userID, s.now())
	if err != nil {
		return report.EmployeeDashboard{}, err
	}

	last7, err := s.RollingWindow(ctx, userID, 7)
	if err != nil {
		return report.EmployeeDashboard{}, err
	}

	return report.EmployeeDashboard{
		TodayRecord:    todayRecord,
		MonthlySummary: summary,
		Last7:          last7,
	}, nil
}

// Export implements report.ReportService.
func (s *ReportServiceImpl) Export(ctx context.Context, filter report.ExportFilter) ([]byte, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.RecordRepository.List(ctx, attendance.RecordFilter{
		Start:  filter.Start,
		End:    filter.End,
		Status: filter.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records for export: %w", err)
	}

	return csv.Render(records), nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
