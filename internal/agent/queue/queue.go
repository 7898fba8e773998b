// Package queue persists attendance actions taken while the backend is
// unreachable and replays them once connectivity returns.
//
// Two storage backends exist: the journal (one file per action, primary) and
// the flat file (single JSON document, fallback). Enqueue never fails the
// caller: if the journal rejects a write the action falls back to the flat
// file, and if both fail the action is logged and dropped.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
)

type Type string

const (
	TypeCheckIn  Type = "checkin"
	TypeCheckOut Type = "checkout"
)

// Action is one deferred attendance operation. At is the client-side instant
// the action was taken; replay sends it so the server derives status from the
// original time, not the drain time.
type Action struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	Device     attendance.Device `json:"device,omitempty"`
	At         time.Time         `json:"at"`
	EnqueuedAt time.Time         `json:"enqueuedAt"`
}

// Backend stores actions in arrival order. Append assigns the action its ID.
type Backend interface {
	Append(action Action) (Action, error)
	List() ([]Action, error)
	Remove(id string) error
}

// Processor replays one action against the backend API. Returning nil removes
// the action; an error wrapping ErrDiscardAction removes it as permanently
// rejected; any other error stops the drain with the action kept.
type Processor func(ctx context.Context, action Action) error

// ErrDiscardAction marks a replay failure as permanent. The server has
// already rejected the action (typically a conflict) and retrying cannot
// change the outcome.
var ErrDiscardAction = errors.New("action permanently rejected")

type Queue struct {
	primary  Backend
	fallback Backend

	// draining suppresses re-entrant drains; a drain already in flight will
	// pick up anything enqueued meanwhile on the next probe
	draining sync.Mutex
}

func New(primary, fallback Backend) *Queue {
	return &Queue{primary: primary, fallback: fallback}
}

// Enqueue stores the action, best effort. It never returns an error: a full
// journal falls back to the flat file, and a double failure drops the action
// with a log line, matching the behavior of a client that cannot persist.
func (q *Queue) Enqueue(action Action) {
	if action.EnqueuedAt.IsZero() {
		action.EnqueuedAt = time.Now()
	}

	stored, err := q.primary.Append(action)
	if err == nil {
		slog.Info("action queued", "id", stored.ID, "type", stored.Type)
		return
	}
	slog.Warn("journal append failed, falling back", "type", action.Type, "error", err)

	stored, err = q.fallback.Append(action)
	if err != nil {
		slog.Error("action dropped, both queue backends failed", "type", action.Type, "error", err)
		return
	}
	slog.Info("action queued on fallback", "id", stored.ID, "type", stored.Type)
}

// pendingAction pairs an action with the backend that holds it so Drain can
// remove it from the right place.
type pendingAction struct {
	Action
	backend Backend
}

// Drain replays queued actions as one sequence ordered by enqueue time, no
// matter which backend each action landed in. An action is removed only after
// its processor succeeds or marks it permanently rejected. The first
// transient failure stops the drain so a later action never lands before an
// earlier one. Concurrent drains are no-ops.
func (q *Queue) Drain(ctx context.Context, process Processor) error {
	if !q.draining.TryLock() {
		return nil
	}
	defer q.draining.Unlock()

	actions, err := q.pendingInOrder()
	if err != nil {
		return err
	}

	for _, action := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := process(ctx, action.Action)
		switch {
		case err == nil:
			slog.Info("action replayed", "id", action.ID, "type", action.Type)
		case errors.Is(err, ErrDiscardAction):
			slog.Warn("action discarded", "id", action.ID, "type", action.Type, "error", err)
		default:
			slog.Warn("drain stopped on transient failure", "id", action.ID, "type", action.Type, "error", err)
			return err
		}

		if err := action.backend.Remove(action.ID); err != nil {
			return err
		}
	}
	return nil
}

// pendingInOrder merges both backends into one enqueue-ordered sequence. A
// check-in that fell back to the flat file predates anything appended to the
// journal after it recovered, so ordering within each backend alone is not
// enough. The sort is stable and each backend already lists in enqueue
// order, so equal timestamps keep their per-backend order.
func (q *Queue) pendingInOrder() ([]pendingAction, error) {
	var merged []pendingAction
	for _, backend := range []Backend{q.primary, q.fallback} {
		actions, err := backend.List()
		if err != nil {
			return nil, err
		}
		for _, action := range actions {
			merged = append(merged, pendingAction{Action: action, backend: backend})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].EnqueuedAt.Before(merged[j].EnqueuedAt)
	})
	return merged, nil
}

// Pending reports how many actions await replay across both backends.
func (q *Queue) Pending() (int, error) {
	primary, err := q.primary.List()
	if err != nil {
		return 0, err
	}
	fallback, err := q.fallback.List()
	if err != nil {
		return 0, err
	}
	return len(primary) + len(fallback), nil
}
