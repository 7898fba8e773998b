package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
)

func newTestQueue(t *testing.T) (*Queue, string) {
	t.Helper()
	dir := t.TempDir()

	journal, err := NewJournal(filepath.Join(dir, "journal"))
	require.NoError(t, err)
	flatfile, err := NewFlatfile(filepath.Join(dir, "queue.json"))
	require.NoError(t, err)

	return New(journal, flatfile), dir
}

func checkinAt(hour int) Action {
	return Action{
		Type:   TypeCheckIn,
		Device: attendance.DeviceWeb,
		At:     time.Date(2026, time.March, 10, hour, 0, 0, 0, time.UTC),
	}
}

func TestDrain_FIFO(t *testing.T) {
	q, _ := newTestQueue(t)

	q.Enqueue(Action{Type: TypeCheckIn, Device: attendance.DeviceWeb, At: time.Now()})
	q.Enqueue(Action{Type: TypeCheckOut, At: time.Now()})

	var replayed []Type
	err := q.Drain(context.Background(), func(ctx context.Context, a Action) error {
		replayed = append(replayed, a.Type)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []Type{TypeCheckIn, TypeCheckOut}, replayed)

	pending, err := q.Pending()
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestDrain_TransientFailureStopsAndKeeps(t *testing.T) {
	q, _ := newTestQueue(t)

	q.Enqueue(checkinAt(9))
	q.Enqueue(Action{Type: TypeCheckOut, At: time.Now()})

	// the first replay fails as transient; the checkout must not be attempted
	// because it would land before its check-in
	var attempts int
	err := q.Drain(context.Background(), func(ctx context.Context, a Action) error {
		attempts++
		return errors.New("connection refused")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)

	pending, err := q.Pending()
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
}

func TestDrain_PermanentRejectionDiscardsAndContinues(t *testing.T) {
	q, _ := newTestQueue(t)

	q.Enqueue(checkinAt(9))
	q.Enqueue(Action{Type: TypeCheckOut, At: time.Now()})

	var replayed []Type
	err := q.Drain(context.Background(), func(ctx context.Context, a Action) error {
		replayed = append(replayed, a.Type)
		if a.Type == TypeCheckIn {
			return fmt.Errorf("already checked in: %w", ErrDiscardAction)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []Type{TypeCheckIn, TypeCheckOut}, replayed)

	pending, err := q.Pending()
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestDrain_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	journal, err := NewJournal(filepath.Join(dir, "journal"))
	require.NoError(t, err)
	flatfile, err := NewFlatfile(filepath.Join(dir, "queue.json"))
	require.NoError(t, err)
	New(journal, flatfile).Enqueue(checkinAt(9))

	// fresh instances over the same directory see the queued action
	journal2, err := NewJournal(filepath.Join(dir, "journal"))
	require.NoError(t, err)
	flatfile2, err := NewFlatfile(filepath.Join(dir, "queue.json"))
	require.NoError(t, err)
	q := New(journal2, flatfile2)

	pending, err := q.Pending()
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestEnqueue_FallsBackWhenJournalFails(t *testing.T) {
	dir := t.TempDir()

	journalDir := filepath.Join(dir, "journal")
	journal, err := NewJournal(journalDir)
	require.NoError(t, err)
	flatfile, err := NewFlatfile(filepath.Join(dir, "queue.json"))
	require.NoError(t, err)
	q := New(journal, flatfile)

	// remove the journal directory so Append fails
	require.NoError(t, os.RemoveAll(journalDir))

	q.Enqueue(checkinAt(9))

	actions, err := flatfile.List()
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, TypeCheckIn, actions[0].Type)
	assert.Equal(t, "1", actions[0].ID)
}

func TestDrain_MergesBackendsByEnqueueTime(t *testing.T) {
	dir := t.TempDir()

	journalDir := filepath.Join(dir, "journal")
	journal, err := NewJournal(journalDir)
	require.NoError(t, err)
	flatfile, err := NewFlatfile(filepath.Join(dir, "queue.json"))
	require.NoError(t, err)
	q := New(journal, flatfile)

	// the check-in lands on the fallback while the journal is broken, then
	// the journal recovers and takes the later check-out
	require.NoError(t, os.RemoveAll(journalDir))
	checkin := checkinAt(9)
	checkin.EnqueuedAt = time.Date(2026, time.March, 10, 9, 0, 1, 0, time.UTC)
	q.Enqueue(checkin)

	require.NoError(t, os.MkdirAll(journalDir, 0o755))
	checkout := Action{
		Type:       TypeCheckOut,
		At:         time.Date(2026, time.March, 10, 17, 0, 0, 0, time.UTC),
		EnqueuedAt: time.Date(2026, time.March, 10, 17, 0, 1, 0, time.UTC),
	}
	q.Enqueue(checkout)

	var replayed []Type
	err = q.Drain(context.Background(), func(ctx context.Context, a Action) error {
		replayed = append(replayed, a.Type)
		return nil
	})
	require.NoError(t, err)

	// the check-out must never replay before its check-in
	assert.Equal(t, []Type{TypeCheckIn, TypeCheckOut}, replayed)

	pending, err := q.Pending()
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestDrain_ReentrantInvocationIsNoOp(t *testing.T) {
	q, _ := newTestQueue(t)
	q.Enqueue(checkinAt(9))

	entered := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = q.Drain(context.Background(), func(ctx context.Context, a Action) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered

	// second drain while the first is blocked inside its processor
	var reentrant int
	err := q.Drain(context.Background(), func(ctx context.Context, a Action) error {
		reentrant++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, reentrant)

	close(release)
	wg.Wait()
}

func TestJournal_SkipsCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	journal, err := NewJournal(dir)
	require.NoError(t, err)

	_, err = journal.Append(checkinAt(9))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "00000000000000000000000000.json"), []byte("{broken"), 0o644))

	actions, err := journal.List()
	require.NoError(t, err)
	assert.Len(t, actions, 1)
}
