// Package reconcile drives the offline queue back into the server. A
// connectivity probe drains the queue whenever the server is reachable and
// actions are pending, so a replay that failed mid-drain is retried on the
// next probe rather than waiting for the link to flap.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/attendx/attendx-backend-go/internal/agent/api"
	"github.com/attendx/attendx-backend-go/internal/agent/queue"
)

type Reconciler struct {
	client *api.Client
	queue  *queue.Queue

	// last observed connectivity; starts offline so the first successful
	// probe after startup drains whatever survived the restart
	online bool
}

func New(client *api.Client, q *queue.Queue) *Reconciler {
	return &Reconciler{client: client, queue: q}
}

// Probe checks connectivity and drains the queue whenever the server is
// reachable and actions are pending. Actions kept after a partial drain, for
// example when the replay endpoint itself keeps failing while the ping
// succeeds, are retried on the next probe. It is meant to run as an interval
// job; the scheduler runs each job on a single goroutine, so online needs no
// lock.
func (r *Reconciler) Probe(ctx context.Context) error {
	err := r.client.Ping(ctx)
	if err != nil {
		if r.online {
			slog.Warn("connection lost", "error", err)
		}
		r.online = false
		return nil
	}

	wasOffline := !r.online
	r.online = true

	pending, err := r.queue.Pending()
	if err != nil {
		return fmt.Errorf("failed to inspect queue: %w", err)
	}
	if wasOffline {
		slog.Info("connection restored", "pending_actions", pending)
	}
	if pending == 0 {
		return nil
	}

	return r.queue.Drain(ctx, r.Replay)
}

// Replay maps one queued action to its API call, carrying the recorded
// instant so the server derives status from when the action was taken. A
// server-side rejection marks the action for discard; transport failures
// leave it queued.
func (r *Reconciler) Replay(ctx context.Context, action queue.Action) error {
	var err error
	switch action.Type {
	case queue.TypeCheckIn:
		err = r.client.CheckIn(ctx, action.Device, action.At)
	case queue.TypeCheckOut:
		err = r.client.CheckOut(ctx, action.At)
	default:
		return fmt.Errorf("unknown action type %q: %w", action.Type, queue.ErrDiscardAction)
	}

	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrRejected) {
		return fmt.Errorf("%v: %w", err, queue.ErrDiscardAction)
	}
	return err
}
