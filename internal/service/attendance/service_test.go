package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecordRepo is an in-memory attendance.RecordRepository enforcing the
// (user, date) unique key the way the database does.
type fakeRecordRepo struct {
	mu      sync.Mutex
	byID    map[string]attendance.Record
	byKey   map[string]string // userID|date -> record id
	creates int
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{
		byID:  make(map[string]attendance.Record),
		byKey: make(map[string]string),
	}
}

func key(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

func (f *fakeRecordRepo) Create(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	k := key(rec.UserID, rec.Date)
	if _, exists := f.byKey[k]; exists {
		return attendance.Record{}, attendance.ErrDuplicateRecord
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	f.byID[rec.ID] = rec
	f.byKey[k] = rec.ID
	return rec, nil
}

func (f *fakeRecordRepo) GetByID(_ context.Context, id string) (attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (f *fakeRecordRepo) GetByUserAndDate(_ context.Context, userID string, date time.Time) (*attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byKey[key(userID, date)]
	if !ok {
		return nil, nil
	}
	rec := f.byID[id]
	return &rec, nil
}

func (f *fakeRecordRepo) Update(_ context.Context, rec attendance.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[rec.ID]; !ok {
		return attendance.ErrRecordNotFound
	}
	rec.UpdatedAt = time.Now()
	f.byID[rec.ID] = rec
	return nil
}

func (f *fakeRecordRepo) UpsertAbsent(_ context.Context, userID string, date time.Time) (attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(userID, date)
	id, ok := f.byKey[k]
	if !ok {
		rec := attendance.Record{
			ID:     uuid.NewString(),
			UserID: userID,
			Date:   date,
			Status: attendance.StatusAbsent,
			Device: attendance.DeviceWeb,
		}
		f.byID[rec.ID] = rec
		f.byKey[k] = rec.ID
		return rec, nil
	}
	rec := f.byID[id]
	rec.Status = attendance.StatusAbsent
	rec.CheckInTime = nil
	rec.CheckOutTime = nil
	rec.TotalHours = 0
	f.byID[id] = rec
	return rec, nil
}

func (f *fakeRecordRepo) List(_ context.Context, _ attendance.RecordFilter) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]attendance.Record, 0, len(f.byID))
	for _, rec := range f.byID {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRecordRepo) ListByUser(_ context.Context, userID string, _ attendance.HistoryFilter) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]attendance.Record, 0)
	for _, rec := range f.byID {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) ListByUserAndRange(_ context.Context, userID string, start, end time.Time) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]attendance.Record, 0)
	for _, rec := range f.byID {
		if rec.UserID == userID && !rec.Date.Before(start) && !rec.Date.After(end) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) ListByDate(_ context.Context, date time.Time) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]attendance.Record, 0)
	for _, rec := range f.byID {
		if rec.Date.Equal(date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) CountByDate(ctx context.Context, date time.Time) (int64, error) {
	recs, _ := f.ListByDate(ctx, date)
	return int64(len(recs)), nil
}

func (f *fakeRecordRepo) CountByDateAndStatus(ctx context.Context, date time.Time, status attendance.Status) (int64, error) {
	recs, _ := f.ListByDate(ctx, date)
	var n int64
	for _, rec := range recs {
		if rec.Status == status {
			n++
		}
	}
	return n, nil
}

func newTestService(repo attendance.RecordRepository, now time.Time) *RecordServiceImpl {
	return &RecordServiceImpl{
		RecordRepository: repo,
		now:              func() time.Time { return now },
		runInTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}

func clock(hour, minute int) time.Time {
	return time.Date(2024, 5, 6, hour, minute, 0, 0, time.Local)
}

func TestCheckIn_OnTime(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newTestService(repo, clock(9, 0))
	userID := uuid.NewString()

	resp, err := svc.CheckIn(context.Background(), userID, attendance.CheckInRequest{Device: attendance.DeviceWeb})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.Equal(t, "2024-05-06", resp.Date)
	assert.NotNil(t, resp.CheckInTime)
}

func TestCheckIn_LateAfterCutoff(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newTestService(repo, clock(9, 16))
	userID := uuid.NewString()

	resp, err := svc.CheckIn(context.Background(), userID, attendance.CheckInRequest{})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, resp.Status)
	// empty device defaults to web
	assert.Equal(t, attendance.DeviceWeb, resp.Device)
}

func TestCheckIn_Twice(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newTestService(repo, clock(9, 0))
	userID := uuid.NewString()

	_, err := svc.CheckIn(context.Background(), userID, attendance.CheckInRequest{Device: attendance.DeviceMobile})
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), userID, attendance.CheckInRequest{Device: attendance.DeviceMobile})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckIn_DuplicateCreateRaceRetriesOnce(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newTestService(repo, clock(9, 0))
	userID := uuid.NewString()

	// A concurrent check-in wins the create between our existence probe and
	// our insert: simulate by inserting a checked-in row right after the
	// first probe returns empty.
	repo2 := &racingRepo{fakeRecordRepo: repo, onFirstGet: func() {
		now := clock(8, 55)
		rec := attendance.Record{UserID: userID, Date: attendance.NormalizeDate(now), CheckInTime: &now, Status: attendance.StatusPresent, Device: attendance.DeviceWeb}
		_, err := repo.Create(context.Background(), rec)
		require.NoError(t, err)
	}}
	svc = newTestService(repo2, clock(9, 0))

	_, err := svc.CheckIn(context.Background(), userID, attendance.CheckInRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	// the invariant held: one record for the (user, date) pair
	recs, err := repo.ListByUser(context.Background(), userID, attendance.HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

// racingRepo injects a concurrent writer between the existence probe and the
// create call.
type racingRepo struct {
	*fakeRecordRepo
	onFirstGet func()
	fired      bool
}

func (r *racingRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Record, error) {
	rec, err := r.fakeRecordRepo.GetByUserAndDate(ctx, userID, date)
	if !r.fired {
		r.fired = true
		r.onFirstGet()
	}
	return rec, err
}

func TestCheckOut_WithoutCheckIn(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newTestService(repo, clock(17, 0))
	userID := uuid.NewString()

	_, err := svc.CheckOut(context.Background(), userID, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOut_Twice(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newTestService(repo, clock(9, 0))
	userID := uuid.NewString()

	_, err := svc.CheckIn(context.Background(), userID, attendance.CheckInRequest{})
	require.NoError(t, err)

	svc = newTestService(repo, clock(17, 0))
	_, err = svc.CheckOut(context.Background(), userID, attendance.CheckOutRequest{})
	require.NoError(t, err)

	_, err = svc.CheckOut(context.Background(), userID, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestCheckOut_LateFullDayStaysLate(t *testing.T) {
	repo := newFakeRecordRepo()
	userID := uuid.NewString()

	svc := newTestService(repo, clock(9, 20))
	_, err := svc.CheckIn(context.Background(), userID, attendance.CheckInRequest{})
	require.NoError(t, err)

	svc = newTestService(repo, clock(17, 0))
	resp, err := svc.CheckOut(context.Background(), userID, attendance.CheckOutRequest{})
	require.NoError(t, err)
	assert.Equal(t, 7.67, resp.TotalHours)
	assert.Equal(t, attendance.StatusLate, resp.Status)
}

func TestCheckOut_ShortDayBecomesHalfDay(t *testing.T) {
	repo := newFakeRecordRepo()
	userID := uuid.NewString()

	svc := newTestService(repo, clock(10, 0))
	_, err := svc.CheckIn(context.Background(), userID, attendance.CheckInRequest{})
	require.NoError(t, err)

	svc = newTestService(repo, clock(12, 30))
	resp, err := svc.CheckOut(context.Background(), userID, attendance.CheckOutRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2.5, resp.TotalHours)
	assert.Equal(t, attendance.StatusHalfDay, resp.Status)
}

func TestCheckIn_ReplayUsesClientTimestamp(t *testing.T) {
	repo := newFakeRecordRepo()
	// replay happens at 14:00 but the user acted at 09:05
	svc := newTestService(repo, clock(14, 0))
	userID := uuid.NewString()

	at := clock(9, 5)
	resp, err := svc.CheckIn(context.Background(), userID, attendance.CheckInRequest{Device: attendance.DeviceMobile, At: &at})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
}

func TestMarkAbsent_OverridesAnyPriorState(t *testing.T) {
	repo := newFakeRecordRepo()
	userA := uuid.NewString()
	userB := uuid.NewString()

	// userA already has a full checked-out day
	svc := newTestService(repo, clock(9, 0))
	_, err := svc.CheckIn(context.Background(), userA, attendance.CheckInRequest{})
	require.NoError(t, err)
	svc = newTestService(repo, clock(17, 0))
	_, err = svc.CheckOut(context.Background(), userA, attendance.CheckOutRequest{})
	require.NoError(t, err)

	date := time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local)
	results, err := svc.MarkAbsent(context.Background(), date, []string{userA, userB})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, resp := range results {
		assert.Equal(t, attendance.StatusAbsent, resp.Status)
		assert.Nil(t, resp.CheckInTime)
		assert.Nil(t, resp.CheckOutTime)
		assert.Zero(t, resp.TotalHours)
	}

	// still one record per (user, date)
	recs, err := repo.ListByUser(context.Background(), userA, attendance.HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestUpdateRecord_RecomputesHoursWhenTimesChange(t *testing.T) {
	repo := newFakeRecordRepo()
	userID := uuid.NewString()

	svc := newTestService(repo, clock(9, 0))
	created, err := svc.CheckIn(context.Background(), userID, attendance.CheckInRequest{})
	require.NoError(t, err)

	newOut := clock(13, 30)
	late := attendance.StatusLate
	resp, err := svc.UpdateRecord(context.Background(), attendance.UpdateRecordRequest{
		ID:           created.ID,
		Status:       &late,
		CheckOutTime: &newOut,
	})
	require.NoError(t, err)
	assert.Equal(t, 4.5, resp.TotalHours)
	// patched status is applied verbatim, not re-derived
	assert.Equal(t, attendance.StatusLate, resp.Status)
}

func TestUpdateRecord_RejectsInvertedTimes(t *testing.T) {
	repo := newFakeRecordRepo()
	userID := uuid.NewString()

	svc := newTestService(repo, clock(9, 0))
	created, err := svc.CheckIn(context.Background(), userID, attendance.CheckInRequest{})
	require.NoError(t, err)

	badOut := clock(8, 0)
	_, err = svc.UpdateRecord(context.Background(), attendance.UpdateRecordRequest{
		ID:           created.ID,
		CheckOutTime: &badOut,
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidTimeRange)
}

func TestUpdateRecord_NotFound(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newTestService(repo, clock(9, 0))

	hours := 8.0
	_, err := svc.UpdateRecord(context.Background(), attendance.UpdateRecordRequest{
		ID:         uuid.NewString(),
		TotalHours: &hours,
	})
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}
