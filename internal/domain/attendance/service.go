package attendance

import (
	"context"
	"time"
)

// RecordService governs the per-day record state machine:
// none -> checked-in -> checked-out for employee self-service, with
// MarkAbsent and UpdateRecord as administrative overrides that exit from
// any state.
type RecordService interface {
	// CheckIn opens today's record for the user; fails once a check-in exists
	CheckIn(ctx context.Context, userID string, req CheckInRequest) (RecordResponse, error)

	// CheckOut closes today's open record and finalizes hours and status
	CheckOut(ctx context.Context, userID string, req CheckOutRequest) (RecordResponse, error)

	// Today retrieves the user's record for the current day; nil when none
	Today(ctx context.Context, userID string) (*RecordResponse, error)

	// MyHistory retrieves the user's own records within an optional range
	MyHistory(ctx context.Context, userID string, filter HistoryFilter) ([]RecordResponse, error)

	// EmployeeHistory retrieves one employee's records (manager)
	EmployeeHistory(ctx context.Context, userID string) ([]RecordResponse, error)

	// List retrieves records across users with filters (manager)
	List(ctx context.Context, filter RecordFilter) ([]RecordResponse, error)

	// MarkAbsent overwrites the given users' records for a date with absent
	// markers, regardless of any prior state (manager)
	MarkAbsent(ctx context.Context, date time.Time, userIDs []string) ([]RecordResponse, error)

	// UpdateRecord applies a restricted manager patch to a record
	UpdateRecord(ctx context.Context, req UpdateRecordRequest) (RecordResponse, error)
}
