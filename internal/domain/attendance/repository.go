package attendance

import (
	"context"
	"time"
)

// RecordRepository defines data access for attendance records. The store
// enforces the single hard consistency constraint of the system: a unique
// composite key on (user_id, date). Create surfaces a violation of that key
// as ErrDuplicateRecord so the lifecycle layer can resolve the race.
type RecordRepository interface {
	// Create inserts a new record for a (user, date) pair
	Create(ctx context.Context, rec Record) (Record, error)

	// GetByID retrieves a record with its user join fields
	GetByID(ctx context.Context, id string) (Record, error)

	// GetByUserAndDate retrieves the record for one user on one calendar day;
	// returns nil when no record exists
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Record, error)

	// Update persists a mutated record by id
	Update(ctx context.Context, rec Record) error

	// UpsertAbsent unconditionally overwrites the (user, date) record with an
	// absent marker: null times, zero hours
	UpsertAbsent(ctx context.Context, userID string, date time.Time) (Record, error)

	// List retrieves records matching the filter, newest date first, with
	// user display fields joined in
	List(ctx context.Context, filter RecordFilter) ([]Record, error)

	// ListByUser retrieves one user's records, newest date first
	ListByUser(ctx context.Context, userID string, filter HistoryFilter) ([]Record, error)

	// ListByUserAndRange retrieves one user's records within [start, end],
	// oldest date first
	ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]Record, error)

	// ListByDate retrieves every user's record for one calendar day, with
	// user display fields joined in
	ListByDate(ctx context.Context, date time.Time) ([]Record, error)

	// CountByDate counts records for one calendar day
	CountByDate(ctx context.Context, date time.Time) (int64, error)

	// CountByDateAndStatus counts records for one calendar day with a status
	CountByDateAndStatus(ctx context.Context, date time.Time, status Status) (int64, error)
}
