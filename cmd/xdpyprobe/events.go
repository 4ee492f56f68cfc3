package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"deedles.dev/xdpy"
	"deedles.dev/xsync/cq"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Log events as the server sends them",
	Long: `events drains the connection's event queue and logs every event
it sees until interrupted. The server only sends events that some
client asked for, so a quiet display produces no output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := connect()
		if err != nil {
			return err
		}
		defer d.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		queue := cq.New(func(evs []xdpy.Event) []xdpy.Event { return evs })
		defer queue.Stop()

		go pump(ctx, cancel, d, queue)

		for {
			select {
			case <-ctx.Done():
				return d.Err()
			case batch := <-queue.Get():
				for _, ev := range batch {
					logEvent(ev)
				}
			}
		}
	},
}

// pump moves events from the connection into the queue until the
// connection dies or ctx is cancelled. Under a non-blocking Config
// the wait turns into a sleepy poll.
func pump(ctx context.Context, cancel context.CancelFunc, d xdpy.Display, queue *cq.BulkQueue[xdpy.Event, []xdpy.Event]) {
	for {
		ev, err := d.WaitForEvent()
		switch {
		case errors.Is(err, xdpy.ErrWouldBlock):
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Millisecond):
			}
			continue

		case err != nil:
			var xerr *xdpy.X11Error
			if errors.As(err, &xerr) {
				logger.Error("request failed", "code", xerr.Code, "seq", xerr.Sequence, "major", xerr.Major)
				continue
			}
			if ctx.Err() == nil {
				logger.Error("event wait failed", "err", err)
			}
			cancel()
			return
		}

		select {
		case queue.Add() <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func logEvent(ev xdpy.Event) {
	switch {
	case ev.Generic():
		logger.Info("generic event",
			"extension", ev.GenericExtension(),
			"type", ev.GenericType(),
			"seq", ev.Sequence(),
			"size", len(ev),
		)
	default:
		logger.Info("event",
			"code", ev.Code(),
			"seq", ev.Sequence(),
			"synthetic", ev.Synthetic(),
		)
	}
}
