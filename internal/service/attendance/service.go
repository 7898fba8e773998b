package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
	"github.com/attendx/attendx-backend-go/internal/pkg/database"
	"github.com/attendx/attendx-backend-go/internal/repository/postgresql"
)

type RecordServiceImpl struct {
	attendance.RecordRepository
	now     func() time.Time
	runInTx func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewRecordService(db *database.DB, recordRepo attendance.RecordRepository) attendance.RecordService {
	return &RecordServiceImpl{
		RecordRepository: recordRepo,
		now:              time.Now,
		runInTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, func(tx pgx.Tx) error {
				return fn(context.WithValue(ctx, "tx", tx))
			})
		},
	}
}

// effectiveNow resolves the instant a lifecycle transition happened at.
// Replayed offline actions carry their own client timestamp so the derived
// status reflects when the user acted, not when connectivity returned.
func (s *RecordServiceImpl) effectiveNow(at *time.Time) time.Time {
	if at != nil && !at.IsZero() {
		return at.Local()
	}
	return s.now()
}

// CheckIn implements attendance.RecordService.
func (s *RecordServiceImpl) CheckIn(ctx context.Context, userID string, req attendance.CheckInRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.effectiveNow(req.At)
	today := attendance.NormalizeDate(now)

	rec, err := s.RecordRepository.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to look up today's record: %w", err)
	}

	if rec != nil && rec.CheckInTime != nil {
		return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
	}

	status := attendance.DeriveCheckInStatus(now)

	if rec == nil {
		created, err := s.RecordRepository.Create(ctx, attendance.Record{
			UserID:      userID,
			Date:        today,
			CheckInTime: &now,
			Status:      status,
			Device:      req.Device,
		})
		if err == nil {
			return attendance.NewRecordResponse(created), nil
		}
		if !errors.Is(err, attendance.ErrDuplicateRecord) {
			return attendance.RecordResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
		}

		// Two check-ins raced to create the same day's record and the unique
		// key rejected this one. Retry exactly once against the row the
		// winner created.
		rec, err = s.RecordRepository.GetByUserAndDate(ctx, userID, today)
		if err != nil {
			return attendance.RecordResponse{}, fmt.Errorf("failed to re-read record after duplicate create: %w", err)
		}
		if rec == nil {
			return attendance.RecordResponse{}, fmt.Errorf("record vanished after duplicate create: %w", attendance.ErrRecordNotFound)
		}
		if rec.CheckInTime != nil {
			return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
		}
	}

	// An existing record without a check-in (a mark-absent override that the
	// employee then shows up for) is re-opened in place.
	rec.CheckInTime = &now
	rec.CheckOutTime = nil
	rec.Status = status
	rec.TotalHours = 0
	rec.Device = req.Device

	if err := s.RecordRepository.Update(ctx, *rec); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return attendance.NewRecordResponse(*rec), nil
}

// CheckOut implements attendance.RecordService.
func (s *RecordServiceImpl) CheckOut(ctx context.Context, userID string, req attendance.CheckOutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.effectiveNow(req.At)
	today := attendance.NormalizeDate(now)

	rec, err := s.RecordRepository.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to look up today's record: %w", err)
	}

	if rec == nil || rec.CheckInTime == nil {
		return attendance.RecordResponse{}, attendance.ErrNotCheckedIn
	}
	if rec.CheckOutTime != nil {
		return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedOut
	}

	totalHours, err := attendance.TotalHours(*rec.CheckInTime, now)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec.CheckOutTime = &now
	rec.TotalHours = totalHours
	rec.Status = attendance.DeriveCheckOutStatus(rec.Status, totalHours)

	if err := s.RecordRepository.Update(ctx, *rec); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return attendance.NewRecordResponse(*rec), nil
}

// Today implements attendance.RecordService.
func (s *RecordServiceImpl) Today(ctx context.Context, userID string) (*attendance.RecordResponse, error) {
	today := attendance.NormalizeDate(s.now())

	rec, err := s.RecordRepository.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to get today's record: %w", err)
	}
	if rec == nil {
		return nil, nil
	}

	resp := attendance.NewRecordResponse(*rec)
	return &resp, nil
}

// MyHistory implements attendance.RecordService.
func (s *RecordServiceImpl) MyHistory(ctx context.Context, userID string, filter attendance.HistoryFilter) ([]attendance.RecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.RecordRepository.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	return attendance.NewRecordResponses(records), nil
}

// EmployeeHistory implements attendance.RecordService.
func (s *RecordServiceImpl) EmployeeHistory(ctx context.Context, userID string) ([]attendance.RecordResponse, error) {
	records, err := s.RecordRepository.ListByUser(ctx, userID, attendance.HistoryFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list employee history: %w", err)
	}

	return attendance.NewRecordResponses(records), nil
}

// List implements attendance.RecordService.
func (s *RecordServiceImpl) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.RecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.RecordRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return attendance.NewRecordResponses(records), nil
}

// MarkAbsent implements attendance.RecordService. Each user's record for the
// date ends up absent with null times and zero hours, whatever state it was
// in before. The overrides apply in one transaction so a mid-list failure
// leaves no user half-marked.
func (s *RecordServiceImpl) MarkAbsent(ctx context.Context, date time.Time, userIDs []string) ([]attendance.RecordResponse, error) {
	day := attendance.NormalizeDate(date)

	results := make([]attendance.RecordResponse, 0, len(userIDs))
	err := s.runInTx(ctx, func(ctx context.Context) error {
		for _, userID := range userIDs {
			rec, err := s.RecordRepository.UpsertAbsent(ctx, userID, day)
			if err != nil {
				return fmt.Errorf("failed to mark user %s absent: %w", userID, err)
			}
			results = append(results, attendance.NewRecordResponse(rec))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// UpdateRecord implements attendance.RecordService. Status from the patch is
// applied verbatim, allowing manual override; hours are recomputed only when
// a time field changed and both times are resolvable.
func (s *RecordServiceImpl) UpdateRecord(ctx context.Context, req attendance.UpdateRecordRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.RecordRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.RecordResponse{}, attendance.ErrRecordNotFound
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to get record: %w", err)
	}

	timesChanged := false
	if req.CheckInTime != nil {
		rec.CheckInTime = req.CheckInTime
		timesChanged = true
	}
	if req.CheckOutTime != nil {
		rec.CheckOutTime = req.CheckOutTime
		timesChanged = true
	}
	if req.Status != nil {
		rec.Status = *req.Status
	}
	if req.TotalHours != nil {
		rec.TotalHours = *req.TotalHours
	}

	if timesChanged && rec.CheckInTime != nil && rec.CheckOutTime != nil {
		totalHours, err := attendance.TotalHours(*rec.CheckInTime, *rec.CheckOutTime)
		if err != nil {
			return attendance.RecordResponse{}, err
		}
		rec.TotalHours = totalHours
	}

	if err := s.RecordRepository.Update(ctx, rec); err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.RecordResponse{}, attendance.ErrRecordNotFound
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to update record: %w", err)
	}

	return attendance.NewRecordResponse(rec), nil
}
