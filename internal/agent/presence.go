package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/attendx/attendx-backend-go/internal/agent/api"
)

const idleReminderAfter = 10 * time.Minute

// Presence observes the current day's session and logs a live elapsed time
// while a check-in is open, plus a reminder once the record has sat unchanged
// past the idle threshold. It only reads; the queue and the store are never
// touched from here.
type Presence struct {
	client *api.Client
	now    func() time.Time

	lastCheckIn   string
	lastChange    time.Time
	reminderFired bool
}

func NewPresence(client *api.Client) *Presence {
	return &Presence{client: client, now: time.Now}
}

// Tick is the interval job body.
func (p *Presence) Tick(ctx context.Context) error {
	record, err := p.client.Today(ctx)
	if err != nil {
		// presence is best effort; connectivity problems belong to the probe
		return nil
	}
	if record == nil || record.CheckInTime == nil {
		p.lastCheckIn = ""
		return nil
	}

	if *record.CheckInTime != p.lastCheckIn {
		p.lastCheckIn = *record.CheckInTime
		p.lastChange = p.now()
		p.reminderFired = false
	}

	if record.CheckOutTime != nil {
		return nil
	}

	checkIn, err := time.Parse(time.RFC3339, *record.CheckInTime)
	if err != nil {
		return nil
	}
	elapsed := p.now().Sub(checkIn).Truncate(time.Second)
	slog.Info("session open", "elapsed", elapsed, "status", record.Status)

	if !p.reminderFired && p.now().Sub(p.lastChange) >= idleReminderAfter {
		p.reminderFired = true
		slog.Info("still checked in, remember to check out when you finish")
	}
	return nil
}
