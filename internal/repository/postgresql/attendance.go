package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
	"github.com/attendx/attendx-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

type recordRepository struct {
	db *database.DB
}

func NewRecordRepository(db *database.DB) attendance.RecordRepository {
	return &recordRepository{db: db}
}

const recordColumns = `
	a.id, a.user_id, a.date, a.check_in_time, a.check_out_time,
	a.status, a.total_hours, a.device, a.created_at, a.updated_at`

const recordJoinColumns = recordColumns + `,
	u.name AS user_name,
	u.email AS user_email,
	u.employee_id AS user_employee_id,
	u.department AS user_department`

func scanRecord(row pgx.Row, withUser bool) (attendance.Record, error) {
	var rec attendance.Record
	dest := []interface{}{
		&rec.ID, &rec.UserID, &rec.Date, &rec.CheckInTime, &rec.CheckOutTime,
		&rec.Status, &rec.TotalHours, &rec.Device, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if withUser {
		dest = append(dest, &rec.UserName, &rec.UserEmail, &rec.UserEmployeeID, &rec.UserDepartment)
	}
	if err := row.Scan(dest...); err != nil {
		return attendance.Record{}, err
	}
	return rec, nil
}

// Create implements attendance.RecordRepository.
func (r *recordRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (
			user_id, date, check_in_time, check_out_time, status, total_hours, device
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.UserID,
		rec.Date,
		rec.CheckInTime,
		rec.CheckOutTime,
		rec.Status,
		rec.TotalHours,
		rec.Device,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return attendance.Record{}, attendance.ErrDuplicateRecord
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// GetByID implements attendance.RecordRepository.
func (r *recordRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordJoinColumns + `
		FROM attendance_records a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record by id: %w", err)
	}

	return rec, nil
}

// GetByUserAndDate implements attendance.RecordRepository.
func (r *recordRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records a
		WHERE a.user_id = $1
		  AND a.date = $2
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, userID, date), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no record for this user and day yet
		}
		return nil, fmt.Errorf("failed to get attendance record by user and date: %w", err)
	}

	return &rec, nil
}

// Update implements attendance.RecordRepository.
func (r *recordRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records
		SET check_in_time = $2,
			check_out_time = $3,
			status = $4,
			total_hours = $5,
			device = $6,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		rec.ID,
		rec.CheckInTime,
		rec.CheckOutTime,
		rec.Status,
		rec.TotalHours,
		rec.Device,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// UpsertAbsent implements attendance.RecordRepository. The overwrite is
// unconditional: an existing record for the day loses its times and hours.
func (r *recordRepository) UpsertAbsent(ctx context.Context, userID string, date time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (user_id, date, status, total_hours, device)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (user_id, date) DO UPDATE
		SET status = EXCLUDED.status,
			check_in_time = NULL,
			check_out_time = NULL,
			total_hours = 0,
			updated_at = NOW()
		RETURNING id, user_id, date, check_in_time, check_out_time,
			status, total_hours, device, created_at, updated_at
	`

	var rec attendance.Record
	err := q.QueryRow(ctx, query, userID, date, attendance.StatusAbsent, attendance.DeviceWeb).Scan(
		&rec.ID, &rec.UserID, &rec.Date, &rec.CheckInTime, &rec.CheckOutTime,
		&rec.Status, &rec.TotalHours, &rec.Device, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to upsert absent record: %w", err)
	}

	return rec, nil
}

// List implements attendance.RecordRepository.
func (r *recordRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Start != nil && *filter.Start != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.Start)
		argIdx++
	}
	if filter.End != nil && *filter.End != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.End)
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		baseWhere += fmt.Sprintf(" AND u.department = $%d", argIdx)
		args = append(args, *filter.Department)
		argIdx++
	}

	query := `
		SELECT ` + recordJoinColumns + `
		FROM attendance_records a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE ` + baseWhere + `
		ORDER BY a.date DESC, u.name ASC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows, true)
}

// ListByUser implements attendance.RecordRepository.
func (r *recordRepository) ListByUser(ctx context.Context, userID string, filter attendance.HistoryFilter) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "a.user_id = $1"
	args := []interface{}{userID}
	argIdx := 2

	if filter.Start != nil && *filter.Start != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.Start)
		argIdx++
	}
	if filter.End != nil && *filter.End != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.End)
		argIdx++
	}

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records a
		WHERE ` + baseWhere + `
		ORDER BY a.date DESC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records by user: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows, false)
}

// ListByUserAndRange implements attendance.RecordRepository.
func (r *recordRepository) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records a
		WHERE a.user_id = $1
		  AND a.date >= $2
		  AND a.date <= $3
		ORDER BY a.date ASC
	`

	rows, err := q.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records by range: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows, false)
}

// ListByDate implements attendance.RecordRepository.
func (r *recordRepository) ListByDate(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordJoinColumns + `
		FROM attendance_records a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.date = $1
		ORDER BY u.name ASC
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records by date: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows, true)
}

// CountByDate implements attendance.RecordRepository.
func (r *recordRepository) CountByDate(ctx context.Context, date time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_records WHERE date = $1`, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance records by date: %w", err)
	}
	return count, nil
}

// CountByDateAndStatus implements attendance.RecordRepository.
func (r *recordRepository) CountByDateAndStatus(ctx context.Context, date time.Time, status attendance.Status) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendance_records WHERE date = $1 AND status = $2`,
		date, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance records by status: %w", err)
	}
	return count, nil
}

func collectRecords(rows pgx.Rows, withUser bool) ([]attendance.Record, error) {
	records := make([]attendance.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows, withUser)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance records: %w", err)
	}
	return records, nil
}
