package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/attendx/attendx-backend-go/internal/agent"
	"github.com/attendx/attendx-backend-go/internal/agent/api"
	"github.com/attendx/attendx-backend-go/internal/agent/queue"
	"github.com/attendx/attendx-backend-go/internal/agent/reconcile"
	"github.com/attendx/attendx-backend-go/internal/pkg/cron"
)

func main() {
	configPath := flag.String("config", "agent.yaml", "path to the agent config file")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: agent [-config agent.yaml] <checkin|checkout|run>")
		os.Exit(2)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := agent.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.Server.URL, cfg.Server.Token)

	journal, err := queue.NewJournal(filepath.Join(cfg.Queue.Dir, "journal"))
	if err != nil {
		slog.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	flatfile, err := queue.NewFlatfile(filepath.Join(cfg.Queue.Dir, "queue.json"))
	if err != nil {
		slog.Error("failed to open queue file", "error", err)
		os.Exit(1)
	}
	q := queue.New(journal, flatfile)

	switch flag.Arg(0) {
	case "checkin":
		record(client, q, queue.Action{Type: queue.TypeCheckIn, Device: cfg.Device, At: time.Now()})
	case "checkout":
		record(client, q, queue.Action{Type: queue.TypeCheckOut, At: time.Now()})
	case "run":
		run(cfg, client, q)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
		os.Exit(2)
	}
}

// record tries the live call first and queues the action when the server is
// unreachable. A deliberate rejection (already checked in, no open session)
// is final and reported to the user, not queued.
func record(client *api.Client, q *queue.Queue, action queue.Action) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	switch action.Type {
	case queue.TypeCheckIn:
		err = client.CheckIn(ctx, action.Device, action.At)
	case queue.TypeCheckOut:
		err = client.CheckOut(ctx, action.At)
	}

	switch {
	case err == nil:
		slog.Info("recorded", "type", action.Type, "at", action.At)
	case errors.Is(err, api.ErrRejected):
		slog.Error("rejected by server", "type", action.Type, "error", err)
		os.Exit(1)
	default:
		q.Enqueue(action)
		slog.Info("server unreachable, action queued for replay", "type", action.Type, "error", err)
	}
}

func run(cfg *agent.Config, client *api.Client, q *queue.Queue) {
	reconciler := reconcile.New(client, q)
	presence := agent.NewPresence(client)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("connectivity-probe", cfg.ProbeInterval(), reconciler.Probe)
	scheduler.AddJob("presence", cfg.PresenceInterval(), presence.Tick)
	scheduler.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	scheduler.Stop()
}
